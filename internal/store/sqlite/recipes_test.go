package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/foodgramapp/foodgram-server/internal/domain"
	"github.com/foodgramapp/foodgram-server/internal/store"
)

func TestCreateAndGetRecipe(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice")
	egg := mustCreateIngredient(t, s, "Egg", "pcs")
	milk := mustCreateIngredient(t, s, "Milk", "ml")
	breakfast := mustCreateTag(t, s, "breakfast")

	r := mustCreateRecipe(t, s, alice.ID, "Omelette",
		[]domain.RecipeIngredient{line(milk, 50), line(egg, 3)}, breakfast)
	if r.ID == 0 {
		t.Fatal("expected ID to be assigned")
	}
	if r.CreatedAt.IsZero() || !r.CreatedAt.Equal(r.UpdatedAt) {
		t.Errorf("timestamps: created %v updated %v", r.CreatedAt, r.UpdatedAt)
	}

	got, err := s.GetRecipe(ctx, r.ID)
	if err != nil {
		t.Fatalf("GetRecipe: %v", err)
	}
	if got.Name != "Omelette" || got.AuthorID != alice.ID || got.CookingTime != 10 {
		t.Errorf("scalars: %+v", got)
	}
	if len(got.Ingredients) != 2 {
		t.Fatalf("Ingredients: got %d, want 2", len(got.Ingredients))
	}
	// Lines keep draft order and carry catalog name and unit.
	if got.Ingredients[0].Name != "Milk" || got.Ingredients[0].MeasurementUnit != "ml" || got.Ingredients[0].Amount != 50 {
		t.Errorf("first line: %+v", got.Ingredients[0])
	}
	if got.Ingredients[1].IngredientID != egg.ID || got.Ingredients[1].Amount != 3 {
		t.Errorf("second line: %+v", got.Ingredients[1])
	}
	if len(got.Tags) != 1 || got.Tags[0].Slug != "breakfast" {
		t.Errorf("Tags: %+v", got.Tags)
	}
}

func TestGetRecipe_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetRecipe(context.Background(), 1)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateRecipe_AtomicOnBadReference(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice")
	egg := mustCreateIngredient(t, s, "Egg", "pcs")

	r := &domain.Recipe{
		AuthorID:    alice.ID,
		Name:        "Broken",
		Text:        "x",
		CookingTime: 5,
		Ingredients: []domain.RecipeIngredient{line(egg, 1), {IngredientID: 999, Amount: 1}},
	}
	err := s.CreateRecipe(ctx, r)
	if !errors.Is(err, store.ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference, got %v", err)
	}

	all, err := s.ListAllRecipes(ctx)
	if err != nil {
		t.Fatalf("ListAllRecipes: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("partial recipe persisted: %d rows", len(all))
	}

	var lines int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM recipe_ingredients`).Scan(&lines); err != nil {
		t.Fatalf("count lines: %v", err)
	}
	if lines != 0 {
		t.Errorf("orphan ingredient lines: %d", lines)
	}
}

func TestUpdateRecipe_ClearAndRebuild(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice")
	egg := mustCreateIngredient(t, s, "Egg", "pcs")
	milk := mustCreateIngredient(t, s, "Milk", "ml")
	flour := mustCreateIngredient(t, s, "Flour", "g")
	breakfast := mustCreateTag(t, s, "breakfast")
	dinner := mustCreateTag(t, s, "dinner")

	r := mustCreateRecipe(t, s, alice.ID, "Pancakes",
		[]domain.RecipeIngredient{line(egg, 2), line(milk, 200)}, breakfast)

	r.Name = "Crepes"
	r.CookingTime = 20
	r.Ingredients = []domain.RecipeIngredient{line(flour, 100), line(egg, 1)}
	r.Tags = []domain.Tag{*dinner}
	if err := s.UpdateRecipe(ctx, r); err != nil {
		t.Fatalf("UpdateRecipe: %v", err)
	}

	got, err := s.GetRecipe(ctx, r.ID)
	if err != nil {
		t.Fatalf("GetRecipe: %v", err)
	}
	if got.Name != "Crepes" || got.CookingTime != 20 {
		t.Errorf("scalars not updated: %+v", got)
	}
	if len(got.Ingredients) != 2 || got.Ingredients[0].IngredientID != flour.ID || got.Ingredients[1].Amount != 1 {
		t.Errorf("lines not rebuilt: %+v", got.Ingredients)
	}
	if len(got.Tags) != 1 || got.Tags[0].ID != dinner.ID {
		t.Errorf("tags not rebuilt: %+v", got.Tags)
	}
	if got.UpdatedAt.Before(got.CreatedAt) {
		t.Errorf("UpdatedAt %v before CreatedAt %v", got.UpdatedAt, got.CreatedAt)
	}
}

func TestUpdateRecipe_FailureLeavesRecipeIntact(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice")
	egg := mustCreateIngredient(t, s, "Egg", "pcs")
	r := mustCreateRecipe(t, s, alice.ID, "Boiled egg", []domain.RecipeIngredient{line(egg, 2)})

	broken := *r
	broken.Name = "Changed"
	broken.Ingredients = []domain.RecipeIngredient{{IngredientID: 12345, Amount: 1}}
	if err := s.UpdateRecipe(ctx, &broken); !errors.Is(err, store.ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference, got %v", err)
	}

	got, err := s.GetRecipe(ctx, r.ID)
	if err != nil {
		t.Fatalf("GetRecipe: %v", err)
	}
	if got.Name != "Boiled egg" {
		t.Errorf("name changed despite rollback: %q", got.Name)
	}
	if len(got.Ingredients) != 1 || got.Ingredients[0].Amount != 2 {
		t.Errorf("lines changed despite rollback: %+v", got.Ingredients)
	}
}

func TestUpdateRecipe_NotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.UpdateRecipe(context.Background(), &domain.Recipe{ID: 77, Name: "x", Text: "x", CookingTime: 1})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteRecipe_Cascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice")
	bob := mustCreateUser(t, s, "bob")
	egg := mustCreateIngredient(t, s, "Egg", "pcs")
	tag := mustCreateTag(t, s, "snack")
	r := mustCreateRecipe(t, s, alice.ID, "Egg", []domain.RecipeIngredient{line(egg, 1)}, tag)

	for _, kind := range []domain.RelationKind{domain.RelationFavorite, domain.RelationCart} {
		if err := s.AddRecipeRelation(ctx, &domain.RecipeRelation{Kind: kind, UserID: bob.ID, RecipeID: r.ID}); err != nil {
			t.Fatalf("AddRecipeRelation(%s): %v", kind, err)
		}
	}

	if err := s.DeleteRecipe(ctx, r.ID); err != nil {
		t.Fatalf("DeleteRecipe: %v", err)
	}
	if err := s.DeleteRecipe(ctx, r.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}

	for _, table := range []string{"recipe_ingredients", "recipe_tags", "recipe_relations"} {
		var n int
		if err := s.db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if n != 0 {
			t.Errorf("%s: %d rows left after delete", table, n)
		}
	}

	// Catalog rows survive.
	if _, err := s.GetIngredient(ctx, egg.ID); err != nil {
		t.Errorf("ingredient removed: %v", err)
	}
}

func TestListRecipes_Filters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice")
	bob := mustCreateUser(t, s, "bob")
	egg := mustCreateIngredient(t, s, "Egg", "pcs")
	breakfast := mustCreateTag(t, s, "breakfast")
	lunch := mustCreateTag(t, s, "lunch")
	dinner := mustCreateTag(t, s, "dinner")

	r1 := mustCreateRecipe(t, s, alice.ID, "One", []domain.RecipeIngredient{line(egg, 1)}, breakfast)
	r2 := mustCreateRecipe(t, s, alice.ID, "Two", []domain.RecipeIngredient{line(egg, 2)}, lunch)
	r3 := mustCreateRecipe(t, s, bob.ID, "Three", []domain.RecipeIngredient{line(egg, 3)}, dinner, breakfast)

	ids := func(res *store.PaginatedResult[*domain.Recipe]) []int64 {
		out := make([]int64, len(res.Items))
		for i, r := range res.Items {
			out[i] = r.ID
		}
		return out
	}
	equal := func(got []int64, want ...int64) bool {
		if len(got) != len(want) {
			return false
		}
		for i := range got {
			if got[i] != want[i] {
				return false
			}
		}
		return true
	}

	all, err := s.ListRecipes(ctx, domain.RecipeFilter{}, store.DefaultPaginationParams())
	if err != nil {
		t.Fatalf("ListRecipes: %v", err)
	}
	if !equal(ids(all), r3.ID, r2.ID, r1.ID) {
		t.Errorf("newest first: got %v", ids(all))
	}

	byAuthor, err := s.ListRecipes(ctx, domain.RecipeFilter{AuthorID: alice.ID}, store.DefaultPaginationParams())
	if err != nil {
		t.Fatalf("ListRecipes(author): %v", err)
	}
	if byAuthor.Total != 2 || !equal(ids(byAuthor), r2.ID, r1.ID) {
		t.Errorf("author filter: got %v (total %d)", ids(byAuthor), byAuthor.Total)
	}

	byTags, err := s.ListRecipes(ctx, domain.RecipeFilter{TagSlugs: []string{"breakfast", "lunch"}}, store.DefaultPaginationParams())
	if err != nil {
		t.Fatalf("ListRecipes(tags): %v", err)
	}
	if !equal(ids(byTags), r3.ID, r2.ID, r1.ID) {
		t.Errorf("tag filter should match any slug: got %v", ids(byTags))
	}

	if err := s.AddRecipeRelation(ctx, &domain.RecipeRelation{Kind: domain.RelationFavorite, UserID: bob.ID, RecipeID: r1.ID}); err != nil {
		t.Fatalf("AddRecipeRelation: %v", err)
	}
	if err := s.AddRecipeRelation(ctx, &domain.RecipeRelation{Kind: domain.RelationCart, UserID: bob.ID, RecipeID: r2.ID}); err != nil {
		t.Fatalf("AddRecipeRelation: %v", err)
	}

	favs, err := s.ListRecipes(ctx, domain.RecipeFilter{FavoritedBy: bob.ID}, store.DefaultPaginationParams())
	if err != nil {
		t.Fatalf("ListRecipes(favorited): %v", err)
	}
	if !equal(ids(favs), r1.ID) {
		t.Errorf("favorited filter: got %v", ids(favs))
	}

	cart, err := s.ListRecipes(ctx, domain.RecipeFilter{InCartOf: bob.ID, AuthorID: alice.ID}, store.DefaultPaginationParams())
	if err != nil {
		t.Fatalf("ListRecipes(cart): %v", err)
	}
	if !equal(ids(cart), r2.ID) {
		t.Errorf("cart+author filter: got %v", ids(cart))
	}

	page, err := s.ListRecipes(ctx, domain.RecipeFilter{}, store.PaginationParams{Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("ListRecipes(page 2): %v", err)
	}
	if page.Total != 3 || page.HasMore || !equal(ids(page), r1.ID) {
		t.Errorf("page 2: got %v total %d hasMore %v", ids(page), page.Total, page.HasMore)
	}
}

func TestGetRecipesByIDs_KeepsOrder(t *testing.T) {
	s := newTestStore(t)
	alice := mustCreateUser(t, s, "alice")
	egg := mustCreateIngredient(t, s, "Egg", "pcs")
	r1 := mustCreateRecipe(t, s, alice.ID, "One", []domain.RecipeIngredient{line(egg, 1)})
	r2 := mustCreateRecipe(t, s, alice.ID, "Two", []domain.RecipeIngredient{line(egg, 1)})

	got, err := s.GetRecipesByIDs(context.Background(), []int64{r2.ID, 999, r1.ID})
	if err != nil {
		t.Fatalf("GetRecipesByIDs: %v", err)
	}
	if len(got) != 2 || got[0].ID != r2.ID || got[1].ID != r1.ID {
		t.Errorf("order not kept: %+v", got)
	}
	if len(got[0].Ingredients) != 1 {
		t.Errorf("children not loaded: %+v", got[0])
	}
}

func TestAuthorRecipeSummariesAndCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice")
	egg := mustCreateIngredient(t, s, "Egg", "pcs")
	for _, name := range []string{"A", "B", "C"} {
		mustCreateRecipe(t, s, alice.ID, name, []domain.RecipeIngredient{line(egg, 1)})
	}

	limited, err := s.ListAuthorRecipeSummaries(ctx, alice.ID, 2)
	if err != nil {
		t.Fatalf("ListAuthorRecipeSummaries: %v", err)
	}
	if len(limited) != 2 || limited[0].Name != "C" {
		t.Errorf("limited: %+v", limited)
	}

	unlimited, err := s.ListAuthorRecipeSummaries(ctx, alice.ID, 0)
	if err != nil {
		t.Fatalf("ListAuthorRecipeSummaries(0): %v", err)
	}
	if len(unlimited) != 3 {
		t.Errorf("unlimited: got %d, want 3", len(unlimited))
	}

	n, err := s.CountAuthorRecipes(ctx, alice.ID)
	if err != nil {
		t.Fatalf("CountAuthorRecipes: %v", err)
	}
	if n != 3 {
		t.Errorf("count: got %d, want 3", n)
	}
}

func TestListRecipeStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice")
	bob := mustCreateUser(t, s, "bob")
	egg := mustCreateIngredient(t, s, "Egg", "pcs")
	quiet := mustCreateRecipe(t, s, alice.ID, "Quiet", []domain.RecipeIngredient{line(egg, 1)})
	popular := mustCreateRecipe(t, s, alice.ID, "Popular", []domain.RecipeIngredient{line(egg, 1)})

	for _, u := range []int64{alice.ID, bob.ID} {
		if err := s.AddRecipeRelation(ctx, &domain.RecipeRelation{Kind: domain.RelationFavorite, UserID: u, RecipeID: popular.ID}); err != nil {
			t.Fatalf("AddRecipeRelation: %v", err)
		}
	}
	if err := s.AddRecipeRelation(ctx, &domain.RecipeRelation{Kind: domain.RelationCart, UserID: bob.ID, RecipeID: popular.ID}); err != nil {
		t.Fatalf("AddRecipeRelation: %v", err)
	}

	stats, err := s.ListRecipeStats(ctx, store.DefaultPaginationParams())
	if err != nil {
		t.Fatalf("ListRecipeStats: %v", err)
	}
	if len(stats.Items) != 2 {
		t.Fatalf("Items: got %d, want 2", len(stats.Items))
	}
	top := stats.Items[0]
	if top.RecipeID != popular.ID || top.FavoritesCount != 2 || top.CartCount != 1 {
		t.Errorf("top: %+v", top)
	}
	if stats.Items[1].RecipeID != quiet.ID || stats.Items[1].FavoritesCount != 0 {
		t.Errorf("second: %+v", stats.Items[1])
	}
}
