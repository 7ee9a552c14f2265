package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/foodgramapp/foodgram-server/internal/domain"
	"github.com/foodgramapp/foodgram-server/internal/metrics"
	"github.com/foodgramapp/foodgram-server/internal/store"
)

// ShoppingListService aggregates the ingredients of every recipe in a
// user's cart.
type ShoppingListService struct {
	store  store.Store
	logger *slog.Logger
}

// NewShoppingListService creates a new shopping list service.
func NewShoppingListService(store store.Store, logger *slog.Logger) *ShoppingListService {
	return &ShoppingListService{store: store, logger: orDiscard(logger)}
}

// Items returns the actor's shopping list: one item per (ingredient name,
// unit) with amounts summed across the cart, ordered by name then unit.
// An empty cart yields an empty list.
func (s *ShoppingListService) Items(ctx context.Context, actor domain.Actor) ([]domain.ShoppingListItem, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}
	items, err := s.store.ShoppingList(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("aggregate shopping list: %w", err)
	}
	return items, nil
}

// Export renders the actor's shopping list as plain text.
func (s *ShoppingListService) Export(ctx context.Context, actor domain.Actor) ([]byte, error) {
	items, err := s.Items(ctx, actor)
	if err != nil {
		return nil, err
	}

	metrics.RecordShoppingListExport(len(items))
	s.logger.Debug("shopping list exported", "user_id", actor.UserID, "items", len(items))

	return RenderText(items), nil
}

// RenderText writes one "{name}: {total} {unit}" line per item. No items
// renders as an empty body.
func RenderText(items []domain.ShoppingListItem) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, 32*len(items)))
	for _, item := range items {
		buf.WriteString(item.Name)
		buf.WriteString(": ")
		buf.WriteString(strconv.FormatInt(item.TotalAmount, 10))
		buf.WriteByte(' ')
		buf.WriteString(item.MeasurementUnit)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
