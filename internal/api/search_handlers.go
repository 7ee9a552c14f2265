package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/foodgramapp/foodgram-server/internal/errors"
	"github.com/foodgramapp/foodgram-server/internal/search"
	"github.com/foodgramapp/foodgram-server/internal/service"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchRecipes",
		Method:      http.MethodGet,
		Path:        "/api/v1/recipes/search",
		Summary:     "Search recipes",
		Description: "Full-text search over recipe names, descriptions and ingredients with tag and cooking-time filters",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// === DTOs ===

// SearchInput contains parameters for searching recipes.
type SearchInput struct {
	PaginationInput
	Query          string   `query:"q" maxLength:"200" doc:"Search query; empty lists recipes by the other filters"`
	Tags           []string `query:"tags,explode" doc:"Tag slugs; recipes with any of them match"`
	Author         int64    `query:"author" doc:"Only recipes by this author"`
	MaxCookingTime int      `query:"max_cooking_time" doc:"Only recipes cooked in at most this many minutes"`
	Sort           string   `query:"sort" enum:"relevance,recent,name,cooking_time" doc:"Result order (default relevance, or recent without a query)"`
}

// SearchResponse is one page of matching recipes.
type SearchResponse struct {
	Query   string              `json:"query" doc:"The query as received"`
	Total   int                 `json:"total" doc:"Matches across all pages"`
	Page    int                 `json:"page" doc:"Current page"`
	Limit   int                 `json:"limit" doc:"Page size"`
	HasMore bool                `json:"has_more" doc:"Whether a next page exists"`
	TookMs  int64               `json:"took_ms" doc:"Index time in milliseconds"`
	Recipes []RecipeResponse    `json:"recipes" doc:"Matching recipes annotated for the caller"`
	Tags    []search.FacetCount `json:"tags,omitempty" doc:"Tag slug counts over all matches"`
}

// SearchOutput wraps the search response for Huma.
type SearchOutput struct {
	Body SearchResponse
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	if s.services.Search == nil {
		return nil, domainerrors.Internal("search is not available")
	}

	start := time.Now()
	result, err := s.services.Search.Search(ctx, ActorFrom(ctx), service.SearchRequest{
		Query:          input.Query,
		Tags:           input.Tags,
		AuthorID:       input.Author,
		MaxCookingTime: input.MaxCookingTime,
		Sort:           input.Sort,
		Page:           input.Page,
		Limit:          input.Limit,
	})
	if err != nil {
		s.logger.Error("search failed", "error", err, "query", input.Query)
		return nil, err
	}

	s.logger.Debug("search completed",
		"query", input.Query,
		"total", result.Total,
		"duration", time.Since(start),
	)

	recipes := make([]RecipeResponse, len(result.Recipes))
	for i, view := range result.Recipes {
		recipes[i] = mapRecipe(view)
	}

	return &SearchOutput{Body: SearchResponse{
		Query:   result.Query,
		Total:   result.Total,
		Page:    result.Page,
		Limit:   result.Limit,
		HasMore: result.HasMore,
		TookMs:  result.TookMs,
		Recipes: recipes,
		Tags:    result.Tags,
	}}, nil
}
