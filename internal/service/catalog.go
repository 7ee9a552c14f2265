package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/foodgramapp/foodgram-server/internal/domain"
	domainerrors "github.com/foodgramapp/foodgram-server/internal/errors"
	"github.com/foodgramapp/foodgram-server/internal/slug"
	"github.com/foodgramapp/foodgram-server/internal/store"
)

// CatalogService manages the ingredient and tag reference data. Reads are
// open to everyone; writes are admin only.
type CatalogService struct {
	store  store.Store
	logger *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(store store.Store, logger *slog.Logger) *CatalogService {
	return &CatalogService{store: store, logger: orDiscard(logger)}
}

// CreateTagRequest describes a new tag. An empty slug is derived from the name.
type CreateTagRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Color string `json:"color" validate:"required,hexcolor"`
	Slug  string `json:"slug,omitempty" validate:"omitempty,max=200,slug"`
}

// CreateIngredientRequest describes a new catalog ingredient.
type CreateIngredientRequest struct {
	Name            string `json:"name" validate:"required,max=200"`
	MeasurementUnit string `json:"measurement_unit" validate:"required,max=200"`
}

// ListTags returns every tag ordered by name.
func (s *CatalogService) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// GetTag returns a tag by ID.
func (s *CatalogService) GetTag(ctx context.Context, id int64) (*domain.Tag, error) {
	tag, err := s.store.GetTag(ctx, id)
	if err != nil {
		return nil, translateStoreErr(err, "tag")
	}
	return tag, nil
}

// CreateTag adds a tag. Name, color and slug must each be unused.
func (s *CatalogService) CreateTag(ctx context.Context, actor domain.Actor, req CreateTagRequest) (*domain.Tag, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.createTag(ctx, req)
}

func (s *CatalogService) createTag(ctx context.Context, req CreateTagRequest) (*domain.Tag, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Color = strings.ToUpper(strings.TrimSpace(req.Color))
	if req.Slug == "" {
		req.Slug = slug.Make(req.Name)
	}

	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	tag := &domain.Tag{Name: req.Name, Color: req.Color, Slug: req.Slug}
	if err := s.store.CreateTag(ctx, tag); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflict("tag name, color or slug already in use").WithCause(err)
		}
		return nil, fmt.Errorf("create tag: %w", err)
	}

	s.logger.Info("tag created", "tag_id", tag.ID, "slug", tag.Slug)
	return tag, nil
}

// DeleteTag removes a tag and its recipe links.
func (s *CatalogService) DeleteTag(ctx context.Context, actor domain.Actor, id int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.store.DeleteTag(ctx, id); err != nil {
		return translateStoreErr(err, "tag")
	}
	s.logger.Info("tag deleted", "tag_id", id)
	return nil
}

// ListIngredients returns ingredients ordered by name, optionally restricted
// to names starting with prefix (case-insensitive).
func (s *CatalogService) ListIngredients(ctx context.Context, prefix string) ([]*domain.Ingredient, error) {
	ingredients, err := s.store.ListIngredients(ctx, strings.TrimSpace(prefix))
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	return ingredients, nil
}

// GetIngredient returns an ingredient by ID.
func (s *CatalogService) GetIngredient(ctx context.Context, id int64) (*domain.Ingredient, error) {
	ing, err := s.store.GetIngredient(ctx, id)
	if err != nil {
		return nil, translateStoreErr(err, "ingredient")
	}
	return ing, nil
}

// CreateIngredient adds an ingredient. The (name, unit) pair must be unused.
func (s *CatalogService) CreateIngredient(ctx context.Context, actor domain.Actor, req CreateIngredientRequest) (*domain.Ingredient, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.createIngredient(ctx, req)
}

func (s *CatalogService) createIngredient(ctx context.Context, req CreateIngredientRequest) (*domain.Ingredient, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.MeasurementUnit = strings.TrimSpace(req.MeasurementUnit)

	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	ing := &domain.Ingredient{Name: req.Name, MeasurementUnit: req.MeasurementUnit}
	if err := s.store.CreateIngredient(ctx, ing); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflictf("ingredient %q in %q already exists", req.Name, req.MeasurementUnit).WithCause(err)
		}
		return nil, fmt.Errorf("create ingredient: %w", err)
	}

	s.logger.Debug("ingredient created", "ingredient_id", ing.ID, "name", ing.Name)
	return ing, nil
}
