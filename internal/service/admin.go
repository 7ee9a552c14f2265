package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/foodgramapp/foodgram-server/internal/domain"
	"github.com/foodgramapp/foodgram-server/internal/store"
)

// AdminService is the reporting side of the admin surface. It only reads,
// apart from rebuilding the derived search index.
type AdminService struct {
	store  store.Store
	search *SearchService
	logger *slog.Logger
}

// NewAdminService creates a new admin service.
func NewAdminService(store store.Store, search *SearchService, logger *slog.Logger) *AdminService {
	return &AdminService{store: store, search: search, logger: orDiscard(logger)}
}

// RecipeStats returns favorite and cart counts per recipe, most favorited
// first.
func (s *AdminService) RecipeStats(ctx context.Context, actor domain.Actor, params store.PaginationParams) (*store.PaginatedResult[domain.RecipeStats], error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	page, err := s.store.ListRecipeStats(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list recipe stats: %w", err)
	}
	return page, nil
}

// ReindexSearch rebuilds the search index from the store.
func (s *AdminService) ReindexSearch(ctx context.Context, actor domain.Actor) (int, error) {
	if err := requireAdmin(actor); err != nil {
		return 0, err
	}
	n, err := s.search.Reindex(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Info("search reindex requested", "user_id", actor.UserID, "recipes", n)
	return n, nil
}
