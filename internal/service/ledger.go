package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/foodgramapp/foodgram-server/internal/domain"
	domainerrors "github.com/foodgramapp/foodgram-server/internal/errors"
	"github.com/foodgramapp/foodgram-server/internal/metrics"
	"github.com/foodgramapp/foodgram-server/internal/store"
)

// LedgerService records favorites, shopping cart entries and subscriptions.
// Every toggle is a single transaction in the store; duplicates surface as
// CONFLICT and removing an absent entry as NOT_PRESENT.
type LedgerService struct {
	store  store.Store
	logger *slog.Logger
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(store store.Store, logger *slog.Logger) *LedgerService {
	return &LedgerService{store: store, logger: orDiscard(logger)}
}

// SubscriptionView is a followed author with their recipes.
type SubscriptionView struct {
	domain.Author
	Recipes      []domain.RecipeSummary `json:"recipes"`
	RecipesCount int                    `json:"recipes_count"`
}

// AddFavorite saves a recipe to the actor's favorites.
func (s *LedgerService) AddFavorite(ctx context.Context, actor domain.Actor, recipeID int64) (*domain.RecipeSummary, error) {
	return s.AddRelation(ctx, actor, domain.RelationFavorite, recipeID)
}

// RemoveFavorite removes a recipe from the actor's favorites.
func (s *LedgerService) RemoveFavorite(ctx context.Context, actor domain.Actor, recipeID int64) error {
	return s.RemoveRelation(ctx, actor, domain.RelationFavorite, recipeID)
}

// AddToCart puts a recipe in the actor's shopping cart.
func (s *LedgerService) AddToCart(ctx context.Context, actor domain.Actor, recipeID int64) (*domain.RecipeSummary, error) {
	return s.AddRelation(ctx, actor, domain.RelationCart, recipeID)
}

// RemoveFromCart takes a recipe out of the actor's shopping cart.
func (s *LedgerService) RemoveFromCart(ctx context.Context, actor domain.Actor, recipeID int64) error {
	return s.RemoveRelation(ctx, actor, domain.RelationCart, recipeID)
}

// AddRelation records a favorite or cart entry and returns the recipe's
// minimal projection.
func (s *LedgerService) AddRelation(ctx context.Context, actor domain.Actor, kind domain.RelationKind, recipeID int64) (*domain.RecipeSummary, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}

	err := s.store.AddRecipeRelation(ctx, &domain.RecipeRelation{
		Kind:     kind,
		UserID:   actor.UserID,
		RecipeID: recipeID,
	})
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		metrics.RecordLedger(string(kind), "add", metrics.OutcomeNotFound)
		return nil, domainerrors.NotFound("recipe not found")
	case errors.Is(err, store.ErrAlreadyExists):
		metrics.RecordLedger(string(kind), "add", metrics.OutcomeConflict)
		return nil, domainerrors.Conflictf("recipe is already in %s", kind.Label())
	default:
		metrics.RecordLedger(string(kind), "add", metrics.OutcomeError)
		return nil, fmt.Errorf("add %s: %w", kind, err)
	}

	recipe, err := s.store.GetRecipe(ctx, recipeID)
	if err != nil {
		return nil, translateStoreErr(err, "recipe")
	}

	metrics.RecordLedger(string(kind), "add", metrics.OutcomeOK)
	s.logger.Info("recipe relation added", "kind", kind, "recipe_id", recipeID, "user_id", actor.UserID)

	summary := recipe.Summary()
	return &summary, nil
}

// RemoveRelation deletes a favorite or cart entry.
func (s *LedgerService) RemoveRelation(ctx context.Context, actor domain.Actor, kind domain.RelationKind, recipeID int64) error {
	if err := requireAuthenticated(actor); err != nil {
		return err
	}

	removed, err := s.store.RemoveRecipeRelation(ctx, kind, actor.UserID, recipeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.RecordLedger(string(kind), "remove", metrics.OutcomeNotFound)
			return domainerrors.NotFound("recipe not found")
		}
		metrics.RecordLedger(string(kind), "remove", metrics.OutcomeError)
		return fmt.Errorf("remove %s: %w", kind, err)
	}
	if !removed {
		metrics.RecordLedger(string(kind), "remove", metrics.OutcomeNotPresent)
		return domainerrors.NotPresentf("recipe is not in %s", kind.Label())
	}

	metrics.RecordLedger(string(kind), "remove", metrics.OutcomeOK)
	s.logger.Info("recipe relation removed", "kind", kind, "recipe_id", recipeID, "user_id", actor.UserID)
	return nil
}

// Subscribe makes the actor follow an author. Following oneself is a
// validation error whatever the current state.
func (s *LedgerService) Subscribe(ctx context.Context, actor domain.Actor, authorID int64, recipesLimit int) (*SubscriptionView, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}
	if authorID == actor.UserID {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{
			"author": "cannot subscribe to yourself",
		})
	}
	if err := checkRecipesLimit(recipesLimit); err != nil {
		return nil, err
	}

	err := s.store.Subscribe(ctx, &domain.Subscription{
		SubscriberID: actor.UserID,
		AuthorID:     authorID,
	})
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		metrics.RecordLedger("subscription", "add", metrics.OutcomeNotFound)
		return nil, domainerrors.NotFound("author not found")
	case errors.Is(err, store.ErrAlreadyExists):
		metrics.RecordLedger("subscription", "add", metrics.OutcomeConflict)
		return nil, domainerrors.Conflict("already subscribed to this author")
	default:
		metrics.RecordLedger("subscription", "add", metrics.OutcomeError)
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	author, err := s.store.GetUser(ctx, authorID)
	if err != nil {
		return nil, translateStoreErr(err, "author")
	}

	metrics.RecordLedger("subscription", "add", metrics.OutcomeOK)
	s.logger.Info("subscribed", "author_id", authorID, "user_id", actor.UserID)

	return s.subscriptionView(ctx, author, recipesLimit)
}

// Unsubscribe stops the actor following an author.
func (s *LedgerService) Unsubscribe(ctx context.Context, actor domain.Actor, authorID int64) error {
	if err := requireAuthenticated(actor); err != nil {
		return err
	}

	removed, err := s.store.Unsubscribe(ctx, actor.UserID, authorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.RecordLedger("subscription", "remove", metrics.OutcomeNotFound)
			return domainerrors.NotFound("author not found")
		}
		metrics.RecordLedger("subscription", "remove", metrics.OutcomeError)
		return fmt.Errorf("unsubscribe: %w", err)
	}
	if !removed {
		metrics.RecordLedger("subscription", "remove", metrics.OutcomeNotPresent)
		return domainerrors.NotPresent("not subscribed to this author")
	}

	metrics.RecordLedger("subscription", "remove", metrics.OutcomeOK)
	s.logger.Info("unsubscribed", "author_id", authorID, "user_id", actor.UserID)
	return nil
}

// ListSubscriptions returns one page of the authors the actor follows, each
// with up to recipesLimit of their newest recipes (all when zero).
func (s *LedgerService) ListSubscriptions(ctx context.Context, actor domain.Actor, params store.PaginationParams, recipesLimit int) (*store.PaginatedResult[*SubscriptionView], error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}
	if err := checkRecipesLimit(recipesLimit); err != nil {
		return nil, err
	}

	page, err := s.store.ListSubscriptions(ctx, actor.UserID, params)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}

	views := make([]*SubscriptionView, 0, len(page.Items))
	for _, author := range page.Items {
		view, err := s.subscriptionView(ctx, author, recipesLimit)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}

	return &store.PaginatedResult[*SubscriptionView]{
		Items:   views,
		Total:   page.Total,
		Page:    page.Page,
		Limit:   page.Limit,
		HasMore: page.HasMore,
	}, nil
}

func (s *LedgerService) subscriptionView(ctx context.Context, author *domain.User, recipesLimit int) (*SubscriptionView, error) {
	recipes, err := s.store.ListAuthorRecipeSummaries(ctx, author.ID, recipesLimit)
	if err != nil {
		return nil, fmt.Errorf("list author recipes: %w", err)
	}
	count, err := s.store.CountAuthorRecipes(ctx, author.ID)
	if err != nil {
		return nil, fmt.Errorf("count author recipes: %w", err)
	}
	if recipes == nil {
		recipes = []domain.RecipeSummary{}
	}

	return &SubscriptionView{
		Author:       domain.Author{User: *author, IsSubscribed: true},
		Recipes:      recipes,
		RecipesCount: count,
	}, nil
}

func checkRecipesLimit(limit int) error {
	if limit < 0 {
		return domainerrors.ValidationWithDetails("validation failed", map[string]string{
			"recipes_limit": "must be greater than or equal to 0",
		})
	}
	return nil
}
