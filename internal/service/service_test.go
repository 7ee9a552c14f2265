package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/foodgramapp/foodgram-server/internal/auth"
	"github.com/foodgramapp/foodgram-server/internal/domain"
	domainerrors "github.com/foodgramapp/foodgram-server/internal/errors"
	"github.com/foodgramapp/foodgram-server/internal/media/images"
	"github.com/foodgramapp/foodgram-server/internal/search"
	"github.com/foodgramapp/foodgram-server/internal/store/sqlite"
)

// testEnv wires every service onto a fresh temp-dir store.
type testEnv struct {
	store    *sqlite.Store
	images   *images.Storage
	search   *SearchService
	auth     *AuthService
	users    *UserService
	catalog  *CatalogService
	recipes  *RecipeService
	ledger   *LedgerService
	shopping *ShoppingListService
	admin    *AdminService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	st, err := sqlite.Open(filepath.Join(dir, "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	imgs, err := images.NewStorage(filepath.Join(dir, "media"))
	require.NoError(t, err)

	index, err := search.NewSearchIndex(search.Options{DataPath: filepath.Join(dir, "search")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	tokens, err := auth.NewTokenService(bytes.Repeat([]byte{7}, 32), time.Hour)
	require.NoError(t, err)

	searchSvc := NewSearchService(index, st, nil)
	return &testEnv{
		store:    st,
		images:   imgs,
		search:   searchSvc,
		auth:     NewAuthService(st, tokens, nil),
		users:    NewUserService(st, nil),
		catalog:  NewCatalogService(st, nil),
		recipes:  NewRecipeService(st, imgs, searchSvc, nil),
		ledger:   NewLedgerService(st, nil),
		shopping: NewShoppingListService(st, nil),
		admin:    NewAdminService(st, searchSvc, nil),
	}
}

// user creates an account and returns its actor.
func (e *testEnv) user(t *testing.T, name string) domain.Actor {
	t.Helper()
	u := &domain.User{
		Email:        name + "@example.com",
		Username:     name,
		FirstName:    name,
		LastName:     "Test",
		PasswordHash: "$argon2id$unused",
	}
	require.NoError(t, e.store.CreateUser(context.Background(), u))
	return domain.ActorFor(u)
}

// admin creates an account with the admin role and returns its actor.
func (e *testEnv) adminUser(t *testing.T, name string) domain.Actor {
	t.Helper()
	actor := e.user(t, name)
	require.NoError(t, e.store.SetUserRole(context.Background(), actor.UserID, domain.RoleAdmin))
	actor.Admin = true
	return actor
}

func (e *testEnv) ingredient(t *testing.T, name, unit string) *domain.Ingredient {
	t.Helper()
	ing := &domain.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, e.store.CreateIngredient(context.Background(), ing))
	return ing
}

func (e *testEnv) tag(t *testing.T, slug string) *domain.Tag {
	t.Helper()
	h := fnv.New32a()
	h.Write([]byte(slug))
	tag := &domain.Tag{Name: slug, Color: fmt.Sprintf("#%06X", h.Sum32()&0xFFFFFF), Slug: slug}
	require.NoError(t, e.store.CreateTag(context.Background(), tag))
	return tag
}

// recipe composes a recipe through the service and fails the test on error.
func (e *testEnv) recipe(t *testing.T, actor domain.Actor, name string, lines []domain.IngredientAmount, tags ...*domain.Tag) *RecipeView {
	t.Helper()
	view, err := e.recipes.Create(context.Background(), actor, draft(name, lines, tags...))
	require.NoError(t, err)
	return view
}

func draft(name string, lines []domain.IngredientAmount, tags ...*domain.Tag) domain.RecipeDraft {
	d := domain.RecipeDraft{
		Name:        name,
		Text:        "Combine and cook.",
		CookingTime: 20,
		Ingredients: lines,
		Tags:        []int64{},
		Image:       "https://cdn.example.com/" + name + ".jpg",
	}
	for _, tag := range tags {
		d.Tags = append(d.Tags, tag.ID)
	}
	return d
}

func amount(ing *domain.Ingredient, n int) domain.IngredientAmount {
	return domain.IngredientAmount{ID: ing.ID, Amount: n}
}

// pngDataURI returns a small valid PNG as a base64 data URI.
func pngDataURI(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := range 8 {
		for y := range 8 {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

// requireCode asserts err is a domain error with the given code.
func requireCode(t *testing.T, err error, code domainerrors.Code) *domainerrors.Error {
	t.Helper()
	require.Error(t, err)
	var domErr *domainerrors.Error
	require.True(t, errors.As(err, &domErr), "expected domain error, got %T: %v", err, err)
	require.Equal(t, code, domErr.Code, "message: %s", domErr.Message)
	return domErr
}

// fieldErrors returns the field map of a validation error.
func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	domErr := requireCode(t, err, domainerrors.CodeValidation)
	fields, ok := domErr.Details.(map[string]string)
	require.True(t, ok, "details should be a field map, got %T", domErr.Details)
	return fields
}

func ingredientAmounts(view *RecipeView) map[int64]int {
	out := make(map[int64]int, len(view.Ingredients))
	for _, line := range view.Ingredients {
		out[line.IngredientID] = line.Amount
	}
	return out
}

func tagIDs(view *RecipeView) []int64 {
	ids := make([]int64, len(view.Tags))
	for i, tag := range view.Tags {
		ids[i] = tag.ID
	}
	return ids
}
