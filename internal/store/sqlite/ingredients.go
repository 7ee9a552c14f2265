package sqlite

import (
	"context"
	"strings"

	"github.com/foodgramapp/foodgram-server/internal/domain"
)

// CreateIngredient inserts a catalog ingredient and sets its ID.
// Returns store.ErrAlreadyExists if the (name, unit) pair exists.
func (s *Store) CreateIngredient(ctx context.Context, ingredient *domain.Ingredient) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO ingredients (name, measurement_unit) VALUES (?, ?)`,
		ingredient.Name, ingredient.MeasurementUnit)
	if err != nil {
		return translateWriteErr(err)
	}
	ingredient.ID, err = res.LastInsertId()
	return err
}

// GetIngredient retrieves an ingredient by ID.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) GetIngredient(ctx context.Context, id int64) (*domain.Ingredient, error) {
	var ing domain.Ingredient
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, measurement_unit FROM ingredients WHERE id = ?`, id,
	).Scan(&ing.ID, &ing.Name, &ing.MeasurementUnit)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &ing, nil
}

// ListIngredients returns ingredients ordered by name. A non-empty prefix
// restricts results to names starting with it, case-insensitively.
func (s *Store) ListIngredients(ctx context.Context, namePrefix string) ([]*domain.Ingredient, error) {
	query := `SELECT id, name, measurement_unit FROM ingredients`
	var args []any
	if prefix := strings.TrimSpace(namePrefix); prefix != "" {
		query += ` WHERE name LIKE ? ESCAPE '\'`
		args = append(args, escapeLike(prefix)+"%")
	}
	query += ` ORDER BY name COLLATE NOCASE, measurement_unit`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Ingredient{}
	for rows.Next() {
		var ing domain.Ingredient
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.MeasurementUnit); err != nil {
			return nil, err
		}
		out = append(out, &ing)
	}
	return out, rows.Err()
}

// MissingIngredientIDs returns the ids that do not name a catalog ingredient.
func (s *Store) MissingIngredientIDs(ctx context.Context, ids []int64) ([]int64, error) {
	return s.missingIDs(ctx, "ingredients", ids)
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
