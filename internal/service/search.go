package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/foodgramapp/foodgram-server/internal/domain"
	domainerrors "github.com/foodgramapp/foodgram-server/internal/errors"
	"github.com/foodgramapp/foodgram-server/internal/metrics"
	"github.com/foodgramapp/foodgram-server/internal/search"
	"github.com/foodgramapp/foodgram-server/internal/store"
)

// SearchService keeps the recipe search index in step with the store and
// answers full-text queries.
//
// The index is derived data: indexing failures are logged and never fail
// the write that triggered them. A nil *SearchService is valid and does
// nothing, which keeps search optional for the recipe service.
type SearchService struct {
	index  *search.SearchIndex
	store  store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, store store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{index: index, store: store, logger: orDiscard(logger)}
}

// SearchRequest is a full-text recipe query.
type SearchRequest struct {
	Query          string   `json:"q" validate:"max=200"`
	Tags           []string `json:"tags"`
	AuthorID       int64    `json:"author" validate:"gte=0"`
	MaxCookingTime int      `json:"max_cooking_time" validate:"gte=0"`
	Sort           string   `json:"sort" validate:"omitempty,oneof=relevance recent name cooking_time"`
	Page           int      `json:"page"`
	Limit          int      `json:"limit"`
}

// SearchResponse is one page of matching recipes annotated for the actor.
type SearchResponse struct {
	Query   string              `json:"query"`
	Total   int                 `json:"total"`
	Page    int                 `json:"page"`
	Limit   int                 `json:"limit"`
	HasMore bool                `json:"has_more"`
	TookMs  int64               `json:"took_ms"`
	Recipes []*RecipeView       `json:"recipes"`
	Tags    []search.FacetCount `json:"tags,omitempty"`
}

// Search runs a query and hydrates the hits from the store. Hits whose
// recipe has since been deleted are dropped.
func (s *SearchService) Search(ctx context.Context, actor domain.Actor, req SearchRequest) (*SearchResponse, error) {
	if s == nil || s.index == nil {
		return nil, domainerrors.Internal("search is not available")
	}
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	params := store.PaginationParams{Page: req.Page, Limit: req.Limit}
	params.Validate()

	sortBy := req.Sort
	if sortBy == "" {
		sortBy = search.SortRelevance
		if strings.TrimSpace(req.Query) == "" {
			sortBy = search.SortRecent
		}
	}

	result, err := s.index.Search(ctx, search.SearchParams{
		Query:          req.Query,
		TagSlugs:       req.Tags,
		AuthorID:       req.AuthorID,
		MaxCookingTime: req.MaxCookingTime,
		Limit:          params.Limit,
		Offset:         params.Offset(),
		SortBy:         sortBy,
		IncludeFacets:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	metrics.SearchQueries.Inc()

	ids := make([]int64, len(result.Hits))
	for i, hit := range result.Hits {
		ids[i] = hit.RecipeID
	}
	recipes, err := s.store.GetRecipesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load recipes: %w", err)
	}
	views, err := buildRecipeViews(ctx, s.store, actor, recipes)
	if err != nil {
		return nil, err
	}

	total := int(result.Total)
	return &SearchResponse{
		Query:   req.Query,
		Total:   total,
		Page:    params.Page,
		Limit:   params.Limit,
		HasMore: params.Offset()+len(result.Hits) < total,
		TookMs:  result.TookMs,
		Recipes: views,
		Tags:    result.Tags,
	}, nil
}

// IndexRecipe adds or replaces a recipe in the index.
func (s *SearchService) IndexRecipe(recipe *domain.Recipe) {
	if s == nil || s.index == nil {
		return
	}
	if err := s.index.IndexRecipe(recipe); err != nil {
		s.logger.Warn("failed to index recipe", "recipe_id", recipe.ID, "error", err)
	}
}

// RemoveRecipe drops a recipe from the index.
func (s *SearchService) RemoveRecipe(recipeID int64) {
	if s == nil || s.index == nil {
		return
	}
	if err := s.index.DeleteRecipe(recipeID); err != nil {
		s.logger.Warn("failed to remove recipe from index", "recipe_id", recipeID, "error", err)
	}
}

// Reindex rebuilds the index from every recipe in the store and returns how
// many were indexed.
func (s *SearchService) Reindex(ctx context.Context) (int, error) {
	if s == nil || s.index == nil {
		return 0, nil
	}

	recipes, err := s.store.ListAllRecipes(ctx)
	if err != nil {
		return 0, fmt.Errorf("list recipes: %w", err)
	}
	if err := s.index.Rebuild(); err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}
	if err := s.index.IndexRecipes(recipes); err != nil {
		return 0, fmt.Errorf("index recipes: %w", err)
	}

	s.logger.Info("search index rebuilt", "recipes", len(recipes))
	return len(recipes), nil
}

// EnsureIndexed reindexes when the index was created empty on open, e.g.
// on first start or after a mapping change.
func (s *SearchService) EnsureIndexed(ctx context.Context) error {
	if s == nil || s.index == nil || !s.index.Created() {
		return nil
	}
	_, err := s.Reindex(ctx)
	return err
}

// Healthy reports whether the index answers a document count.
func (s *SearchService) Healthy() bool {
	if s == nil || s.index == nil {
		return false
	}
	_, err := s.index.DocumentCount()
	return err == nil
}
