package sqlite

import (
	"context"

	"github.com/foodgramapp/foodgram-server/internal/domain"
)

// shoppingListQuery sums every ingredient line of every recipe in a user's
// cart, grouped by ingredient name and unit. Two catalog rows with the same
// name and unit collapse into one item.
const shoppingListQuery = `
	SELECT i.name, i.measurement_unit, SUM(ri.amount) AS total
	FROM recipe_relations rr
	JOIN recipe_ingredients ri ON ri.recipe_id = rr.recipe_id
	JOIN ingredients i ON i.id = ri.ingredient_id
	WHERE rr.kind = ? AND rr.user_id = ?
	GROUP BY i.name, i.measurement_unit
	ORDER BY i.name, i.measurement_unit`

// ShoppingList returns the aggregated shopping list for a user's cart.
// An empty cart yields an empty, non-nil slice.
func (s *Store) ShoppingList(ctx context.Context, userID int64) ([]domain.ShoppingListItem, error) {
	rows, err := s.db.QueryContext(ctx, shoppingListQuery, string(domain.RelationCart), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.ShoppingListItem{}
	for rows.Next() {
		var item domain.ShoppingListItem
		if err := rows.Scan(&item.Name, &item.MeasurementUnit, &item.TotalAmount); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
