package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/foodgramapp/foodgram-server/internal/domain"
	"github.com/foodgramapp/foodgram-server/internal/service"
)

func (s *Server) registerRecipeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listRecipes",
		Method:      http.MethodGet,
		Path:        "/api/v1/recipes",
		Summary:     "List recipes",
		Description: "Returns a page of recipes, newest first. Favorite and cart filters refer to the caller and match nothing for anonymous callers.",
		Tags:        []string{"Recipes"},
	}, s.handleListRecipes)

	huma.Register(s.api, huma.Operation{
		OperationID: "getRecipe",
		Method:      http.MethodGet,
		Path:        "/api/v1/recipes/{id}",
		Summary:     "Get recipe",
		Description: "Returns a recipe annotated for the caller",
		Tags:        []string{"Recipes"},
	}, s.handleGetRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createRecipe",
		Method:        http.MethodPost,
		Path:          "/api/v1/recipes",
		Summary:       "Create recipe",
		Description:   "Publishes a recipe authored by the caller. The image is a base64 data URI.",
		Tags:          []string{"Recipes"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
		MaxBodyBytes:  s.opts.MaxBodyBytes,
	}, s.handleCreateRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID:  "updateRecipe",
		Method:       http.MethodPatch,
		Path:         "/api/v1/recipes/{id}",
		Summary:      "Update recipe",
		Description:  "Replaces a recipe's content, ingredient lines and tags. Owner or admin only. An omitted image keeps the current one.",
		Tags:         []string{"Recipes"},
		Security:     []map[string][]string{{"bearer": {}}},
		MaxBodyBytes: s.opts.MaxBodyBytes,
	}, s.handleUpdateRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteRecipe",
		Method:        http.MethodDelete,
		Path:          "/api/v1/recipes/{id}",
		Summary:       "Delete recipe",
		Description:   "Deletes a recipe with its lines, tags, favorites and cart entries. Owner or admin only.",
		Tags:          []string{"Recipes"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteRecipe)
}

// === DTOs ===

// IngredientLineRequest is one ingredient line of a draft.
type IngredientLineRequest struct {
	ID     int64 `json:"id,omitempty" doc:"Ingredient ID"`
	Amount int   `json:"amount,omitempty" doc:"Amount in the ingredient's unit, at least 1"`
}

// RecipeDraftRequest is the request body for creating or replacing a recipe.
type RecipeDraftRequest struct {
	Name        string                  `json:"name,omitempty" doc:"Recipe name, at most 200 characters"`
	Text        string                  `json:"text,omitempty" doc:"Description"`
	CookingTime int                     `json:"cooking_time,omitempty" doc:"Cooking time in minutes, at least 1"`
	Ingredients []IngredientLineRequest `json:"ingredients,omitempty" doc:"At least one line; each ingredient at most once"`
	Tags        []int64                 `json:"tags,omitempty" doc:"Tag IDs, no duplicates"`
	Image       string                  `json:"image,omitempty" doc:"Base64 data URI (data:image/png;base64,...) or an existing image URL"`
}

// Draft converts the request into the domain draft.
func (r RecipeDraftRequest) Draft() domain.RecipeDraft {
	lines := make([]domain.IngredientAmount, len(r.Ingredients))
	for i, line := range r.Ingredients {
		lines[i] = domain.IngredientAmount{ID: line.ID, Amount: line.Amount}
	}
	return domain.RecipeDraft{
		Name:        r.Name,
		Text:        r.Text,
		CookingTime: r.CookingTime,
		Ingredients: lines,
		Tags:        r.Tags,
		Image:       r.Image,
	}
}

// ListRecipesInput contains parameters for listing recipes.
type ListRecipesInput struct {
	PaginationInput
	Author           int64    `query:"author" doc:"Only recipes by this author"`
	Tags             []string `query:"tags,explode" doc:"Tag slugs; recipes with any of them match"`
	IsFavorited      bool     `query:"is_favorited" doc:"Only recipes in the caller's favorites"`
	IsInShoppingCart bool     `query:"is_in_shopping_cart" doc:"Only recipes in the caller's shopping cart"`
}

// RecipePageOutput wraps a page of recipes for Huma.
type RecipePageOutput struct {
	Body PageResponse[RecipeResponse]
}

// RecipeIDInput addresses a single recipe.
type RecipeIDInput struct {
	ID int64 `path:"id" doc:"Recipe ID"`
}

// CreateRecipeInput wraps the create request for Huma.
type CreateRecipeInput struct {
	Body RecipeDraftRequest
}

// UpdateRecipeInput wraps the update request for Huma.
type UpdateRecipeInput struct {
	ID   int64 `path:"id" doc:"Recipe ID"`
	Body RecipeDraftRequest
}

// RecipeOutput wraps a recipe for Huma.
type RecipeOutput struct {
	Body RecipeResponse
}

// === Handlers ===

func (s *Server) handleListRecipes(ctx context.Context, input *ListRecipesInput) (*RecipePageOutput, error) {
	page, err := s.services.Recipe.List(ctx, ActorFrom(ctx), service.RecipeQuery{
		AuthorID:         input.Author,
		Tags:             input.Tags,
		IsFavorited:      input.IsFavorited,
		IsInShoppingCart: input.IsInShoppingCart,
	}, input.Params())
	if err != nil {
		return nil, err
	}
	return &RecipePageOutput{Body: mapPage(page, mapRecipe)}, nil
}

func (s *Server) handleGetRecipe(ctx context.Context, input *RecipeIDInput) (*RecipeOutput, error) {
	view, err := s.services.Recipe.Get(ctx, ActorFrom(ctx), input.ID)
	if err != nil {
		return nil, err
	}
	return &RecipeOutput{Body: mapRecipe(view)}, nil
}

func (s *Server) handleCreateRecipe(ctx context.Context, input *CreateRecipeInput) (*RecipeOutput, error) {
	view, err := s.services.Recipe.Create(ctx, ActorFrom(ctx), input.Body.Draft())
	if err != nil {
		return nil, err
	}
	return &RecipeOutput{Body: mapRecipe(view)}, nil
}

func (s *Server) handleUpdateRecipe(ctx context.Context, input *UpdateRecipeInput) (*RecipeOutput, error) {
	view, err := s.services.Recipe.Update(ctx, ActorFrom(ctx), input.ID, input.Body.Draft())
	if err != nil {
		return nil, err
	}
	return &RecipeOutput{Body: mapRecipe(view)}, nil
}

func (s *Server) handleDeleteRecipe(ctx context.Context, input *RecipeIDInput) (*struct{}, error) {
	return nil, s.services.Recipe.Delete(ctx, ActorFrom(ctx), input.ID)
}
