package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgramapp/foodgram-server/internal/auth"
	"github.com/foodgramapp/foodgram-server/internal/domain"
	"github.com/foodgramapp/foodgram-server/internal/media/images"
	"github.com/foodgramapp/foodgram-server/internal/search"
	"github.com/foodgramapp/foodgram-server/internal/service"
	"github.com/foodgramapp/foodgram-server/internal/store/sqlite"
)

// testServer bundles a fully wired server with a humatest client.
type testServer struct {
	server  *Server
	api     humatest.TestAPI
	store   *sqlite.Store
	cleanup func()
}

// testEnvelope decodes the response envelope with typed data.
type testEnvelope[T any] struct {
	Version int            `json:"v"`
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

// setupTestServer creates a server over a temp-dir store, media root and
// search index.
func setupTestServer(t *testing.T, opts ...Options) *testServer {
	t.Helper()
	dir := t.TempDir()

	st, err := sqlite.Open(filepath.Join(dir, "test.db"), nil)
	require.NoError(t, err)

	imgs, err := images.NewStorage(filepath.Join(dir, "media"))
	require.NoError(t, err)

	index, err := search.NewSearchIndex(search.Options{DataPath: filepath.Join(dir, "search")})
	require.NoError(t, err)

	tokens, err := auth.NewTokenService(bytes.Repeat([]byte{42}, 32), time.Hour)
	require.NoError(t, err)

	searchSvc := service.NewSearchService(index, st, nil)
	services := &Services{
		Auth:     service.NewAuthService(st, tokens, nil),
		User:     service.NewUserService(st, nil),
		Catalog:  service.NewCatalogService(st, nil),
		Recipe:   service.NewRecipeService(st, imgs, searchSvc, nil),
		Ledger:   service.NewLedgerService(st, nil),
		Shopping: service.NewShoppingListService(st, nil),
		Search:   searchSvc,
		Admin:    service.NewAdminService(st, searchSvc, nil),
	}

	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	server := NewServer(st, services, &StorageServices{Recipes: imgs}, o, nil)

	return &testServer{
		server: server,
		api:    humatest.Wrap(t, server.api),
		store:  st,
		cleanup: func() {
			_ = server.Shutdown() //nolint:errcheck // test cleanup
			_ = index.Close()     //nolint:errcheck // test cleanup
			_ = st.Close()        //nolint:errcheck // test cleanup
		},
	}
}

// decode unmarshals a recorded response body into an envelope.
func decode[T any](t *testing.T, body []byte) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(body, &env), "body: %s", body)
	return env
}

func bearer(token string) string {
	return "Authorization: Bearer " + token
}

// testUser is a registered account with a live token.
type testUser struct {
	ID    int64
	Token string
}

// registerUser signs up through the API and logs in.
func (ts *testServer) registerUser(t *testing.T, name string) testUser {
	t.Helper()
	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":      name + "@example.com",
		"username":   name,
		"first_name": name,
		"last_name":  "Cook",
		"password":   "correct-horse-battery",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    name + "@example.com",
		"password": "correct-horse-battery",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[AuthResponse](t, resp.Body.Bytes())
	require.NotEmpty(t, env.Data.AccessToken)
	return testUser{ID: env.Data.User.ID, Token: env.Data.AccessToken}
}

// registerAdmin signs up and grants the admin role. Roles are read per
// request, so the existing token picks it up.
func (ts *testServer) registerAdmin(t *testing.T, name string) testUser {
	t.Helper()
	u := ts.registerUser(t, name)
	require.NoError(t, ts.store.SetUserRole(context.Background(), u.ID, domain.RoleAdmin))
	return u
}

func (ts *testServer) ingredient(t *testing.T, name, unit string) *domain.Ingredient {
	t.Helper()
	ing := &domain.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, ts.store.CreateIngredient(context.Background(), ing))
	return ing
}

func (ts *testServer) tag(t *testing.T, slug, color string) *domain.Tag {
	t.Helper()
	tag := &domain.Tag{Name: slug, Color: color, Slug: slug}
	require.NoError(t, ts.store.CreateTag(context.Background(), tag))
	return tag
}

// createRecipe posts a valid recipe and returns its projection.
func (ts *testServer) createRecipe(t *testing.T, owner testUser, name string, lines map[int64]int, tags ...int64) RecipeResponse {
	t.Helper()
	ingredients := make([]map[string]any, 0, len(lines))
	for id, amount := range lines {
		ingredients = append(ingredients, map[string]any{"id": id, "amount": amount})
	}
	if tags == nil {
		tags = []int64{}
	}
	resp := ts.api.Post("/api/v1/recipes", bearer(owner.Token), map[string]any{
		"name":         name,
		"text":         "Mix everything and bake.",
		"cooking_time": 25,
		"ingredients":  ingredients,
		"tags":         tags,
		"image":        fmt.Sprintf("https://cdn.example.com/%s.jpg", name),
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decode[RecipeResponse](t, resp.Body.Bytes()).Data
}

func TestServer_Routes(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{name: "health check", method: http.MethodGet, path: "/health", expectedStatus: http.StatusOK},
		{name: "tags", method: http.MethodGet, path: "/api/v1/tags", expectedStatus: http.StatusOK},
		{name: "ingredients", method: http.MethodGet, path: "/api/v1/ingredients", expectedStatus: http.StatusOK},
		{name: "recipes", method: http.MethodGet, path: "/api/v1/recipes", expectedStatus: http.StatusOK},
		{name: "users", method: http.MethodGet, path: "/api/v1/users", expectedStatus: http.StatusOK},
		{name: "metrics", method: http.MethodGet, path: "/metrics", expectedStatus: http.StatusOK},
		{name: "openapi", method: http.MethodGet, path: "/openapi.json", expectedStatus: http.StatusOK},
		{name: "unknown route", method: http.MethodGet, path: "/api/v1/nonexistent", expectedStatus: http.StatusNotFound},
		{name: "missing media", method: http.MethodGet, path: "/media/recipes/missing.png", expectedStatus: http.StatusNotFound},
		{name: "me requires auth", method: http.MethodGet, path: "/api/v1/users/me", expectedStatus: http.StatusUnauthorized},
		{name: "shopping cart requires auth", method: http.MethodGet, path: "/api/v1/recipes/shopping_cart", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Do(tt.method, tt.path)
			assert.Equal(t, tt.expectedStatus, resp.Code, resp.Body.String())
		})
	}
}

func TestServer_NotFoundEnvelope(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Get("/api/v1/nonexistent")
	require.Equal(t, http.StatusNotFound, resp.Code)

	env := decode[any](t, resp.Body.Bytes())
	assert.Equal(t, EnvelopeVersion, env.Version)
	assert.False(t, env.Success)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestServer_InvalidTokenIsAnonymous(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	// Public reads still work with a garbage token.
	resp := ts.api.Get("/api/v1/tags", bearer("v4.local.garbage"))
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/users/me", bearer("v4.local.garbage"))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestServer_MediaServesStoredImage(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	name := "8f14e45f-ceea-467f-a0e6-7b6c3c1a9e21.png"
	require.NoError(t, ts.server.storage.Recipes.Save(name, []byte("\x89PNG\r\n\x1a\nfake")))

	resp := ts.api.Get("/media/recipes/" + name)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, CacheOneWeek, resp.Header().Get("Cache-Control"))
}
