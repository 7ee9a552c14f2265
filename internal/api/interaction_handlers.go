package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/foodgramapp/foodgram-server/internal/domain"
)

func (s *Server) registerInteractionRoutes() {
	for _, rel := range []struct {
		kind domain.RelationKind
		path string
		tag  string
	}{
		{domain.RelationFavorite, "favorite", "Favorites"},
		{domain.RelationCart, "shopping_cart", "Shopping cart"},
	} {
		huma.Register(s.api, huma.Operation{
			OperationID:   "add_" + rel.path,
			Method:        http.MethodPost,
			Path:          "/api/v1/recipes/{id}/" + rel.path,
			Summary:       "Add to " + rel.kind.Label(),
			Description:   fmt.Sprintf("Adds a recipe to the caller's %s. Adding twice is a conflict.", rel.kind.Label()),
			Tags:          []string{rel.tag},
			Security:      []map[string][]string{{"bearer": {}}},
			DefaultStatus: http.StatusCreated,
		}, s.addRelationHandler(rel.kind))

		huma.Register(s.api, huma.Operation{
			OperationID:   "remove_" + rel.path,
			Method:        http.MethodDelete,
			Path:          "/api/v1/recipes/{id}/" + rel.path,
			Summary:       "Remove from " + rel.kind.Label(),
			Description:   fmt.Sprintf("Removes a recipe from the caller's %s. Removing an absent recipe is an error.", rel.kind.Label()),
			Tags:          []string{rel.tag},
			Security:      []map[string][]string{{"bearer": {}}},
			DefaultStatus: http.StatusNoContent,
		}, s.removeRelationHandler(rel.kind))
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "getShoppingCart",
		Method:      http.MethodGet,
		Path:        "/api/v1/recipes/shopping_cart",
		Summary:     "Get shopping list",
		Description: "Returns the caller's cart aggregated by ingredient name and unit",
		Tags:        []string{"Shopping cart"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetShoppingCart)

	huma.Register(s.api, huma.Operation{
		OperationID: "downloadShoppingCart",
		Method:      http.MethodGet,
		Path:        "/api/v1/recipes/download_shopping_cart",
		Summary:     "Download shopping list",
		Description: "Returns the aggregated shopping list as a plain-text attachment, one 'name: total unit' line per item",
		Tags:        []string{"Shopping cart"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDownloadShoppingCart)
}

// === DTOs ===

// RecipeSummaryOutput wraps the minimal recipe projection for Huma.
type RecipeSummaryOutput struct {
	Body *domain.RecipeSummary
}

// ShoppingListOutput wraps the aggregated items for Huma.
type ShoppingListOutput struct {
	Body []domain.ShoppingListItem
}

// ShoppingListFileOutput is the raw text attachment.
type ShoppingListFileOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	CacheControl       string `header:"Cache-Control"`
	Body               []byte
}

// === Handlers ===

func (s *Server) addRelationHandler(kind domain.RelationKind) func(context.Context, *RecipeIDInput) (*RecipeSummaryOutput, error) {
	return func(ctx context.Context, input *RecipeIDInput) (*RecipeSummaryOutput, error) {
		summary, err := s.services.Ledger.AddRelation(ctx, ActorFrom(ctx), kind, input.ID)
		if err != nil {
			return nil, err
		}
		return &RecipeSummaryOutput{Body: summary}, nil
	}
}

func (s *Server) removeRelationHandler(kind domain.RelationKind) func(context.Context, *RecipeIDInput) (*struct{}, error) {
	return func(ctx context.Context, input *RecipeIDInput) (*struct{}, error) {
		return nil, s.services.Ledger.RemoveRelation(ctx, ActorFrom(ctx), kind, input.ID)
	}
}

func (s *Server) handleGetShoppingCart(ctx context.Context, _ *struct{}) (*ShoppingListOutput, error) {
	items, err := s.services.Shopping.Items(ctx, ActorFrom(ctx))
	if err != nil {
		return nil, err
	}
	return &ShoppingListOutput{Body: items}, nil
}

func (s *Server) handleDownloadShoppingCart(ctx context.Context, _ *struct{}) (*ShoppingListFileOutput, error) {
	body, err := s.services.Shopping.Export(ctx, ActorFrom(ctx))
	if err != nil {
		return nil, err
	}
	return &ShoppingListFileOutput{
		ContentType:        "text/plain; charset=utf-8",
		ContentDisposition: fmt.Sprintf("attachment; filename=%q", s.opts.ShoppingListFileName),
		CacheControl:       CacheNoStore,
		Body:               body,
	}, nil
}
