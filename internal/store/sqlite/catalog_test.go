package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/foodgramapp/foodgram-server/internal/domain"
	"github.com/foodgramapp/foodgram-server/internal/store"
)

func TestIngredients_CreateGetList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	flour := mustCreateIngredient(t, s, "Flour", "g")
	mustCreateIngredient(t, s, "flour", "cup")
	mustCreateIngredient(t, s, "Sugar", "g")
	mustCreateIngredient(t, s, "100%_juice", "ml")

	got, err := s.GetIngredient(ctx, flour.ID)
	if err != nil {
		t.Fatalf("GetIngredient: %v", err)
	}
	if got.Name != "Flour" || got.MeasurementUnit != "g" {
		t.Errorf("got %+v", got)
	}

	all, err := s.ListIngredients(ctx, "")
	if err != nil {
		t.Fatalf("ListIngredients: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("all: got %d, want 4", len(all))
	}

	fl, err := s.ListIngredients(ctx, "FL")
	if err != nil {
		t.Fatalf("ListIngredients(FL): %v", err)
	}
	if len(fl) != 2 {
		t.Fatalf("prefix FL: got %d, want 2", len(fl))
	}
	// Same name, ordered by unit.
	if fl[0].MeasurementUnit != "cup" || fl[1].MeasurementUnit != "g" {
		t.Errorf("prefix order: got %q, %q", fl[0].MeasurementUnit, fl[1].MeasurementUnit)
	}

	// Wildcards in the prefix match literally.
	pct, err := s.ListIngredients(ctx, "100%_")
	if err != nil {
		t.Fatalf("ListIngredients(100%%_): %v", err)
	}
	if len(pct) != 1 {
		t.Errorf("literal prefix: got %d, want 1", len(pct))
	}
	none, err := s.ListIngredients(ctx, "_")
	if err != nil {
		t.Fatalf("ListIngredients(_): %v", err)
	}
	if len(none) != 0 {
		t.Errorf("underscore prefix matched %d rows", len(none))
	}
}

func TestIngredients_DuplicateNameUnit(t *testing.T) {
	s := newTestStore(t)
	mustCreateIngredient(t, s, "Salt", "g")

	err := s.CreateIngredient(context.Background(), &domain.Ingredient{Name: "Salt", MeasurementUnit: "g"})
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestMissingIngredientIDs(t *testing.T) {
	s := newTestStore(t)
	a := mustCreateIngredient(t, s, "Egg", "pcs")
	b := mustCreateIngredient(t, s, "Milk", "ml")

	missing, err := s.MissingIngredientIDs(context.Background(), []int64{a.ID, 77, b.ID, 88})
	if err != nil {
		t.Fatalf("MissingIngredientIDs: %v", err)
	}
	if len(missing) != 2 || missing[0] != 77 || missing[1] != 88 {
		t.Errorf("missing: got %v, want [77 88]", missing)
	}

	none, err := s.MissingIngredientIDs(context.Background(), nil)
	if err != nil || len(none) != 0 {
		t.Errorf("empty input: got %v, %v", none, err)
	}
}

func TestTags_CRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	lunch := mustCreateTag(t, s, "lunch")
	mustCreateTag(t, s, "breakfast")

	got, err := s.GetTag(ctx, lunch.ID)
	if err != nil {
		t.Fatalf("GetTag: %v", err)
	}
	if got.Slug != "lunch" || got.Color != lunch.Color {
		t.Errorf("got %+v", got)
	}

	tags, err := s.ListTags(ctx)
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}
	if len(tags) != 2 || tags[0].Slug != "breakfast" {
		t.Errorf("ListTags order: %+v", tags)
	}

	dup := &domain.Tag{Name: "Other", Color: "#000001", Slug: "lunch"}
	if err := s.CreateTag(ctx, dup); !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("duplicate slug: expected ErrAlreadyExists, got %v", err)
	}

	if err := s.DeleteTag(ctx, lunch.ID); err != nil {
		t.Fatalf("DeleteTag: %v", err)
	}
	if _, err := s.GetTag(ctx, lunch.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeleteTag(ctx, lunch.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}

	missing, err := s.MissingTagIDs(ctx, []int64{lunch.ID})
	if err != nil {
		t.Fatalf("MissingTagIDs: %v", err)
	}
	if len(missing) != 1 {
		t.Errorf("deleted tag should be missing, got %v", missing)
	}
}
