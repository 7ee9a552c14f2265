package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/foodgramapp/foodgram-server/internal/domain"
	"github.com/foodgramapp/foodgram-server/internal/store"
)

// recipesTable and usersTable name the tables checked by rowExists.
const (
	recipesTable = "recipes"
	usersTable   = "users"
)

// AddRecipeRelation records a favorite or cart entry. The recipe existence
// check and the insert share one transaction.
// Returns store.ErrNotFound if the recipe does not exist and
// store.ErrAlreadyExists if the pair is already recorded.
func (s *Store) AddRecipeRelation(ctx context.Context, rel *domain.RecipeRelation) error {
	if !rel.Kind.Valid() {
		return fmt.Errorf("unknown relation kind %q", rel.Kind)
	}
	if rel.CreatedAt.IsZero() {
		rel.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	exists, err := rowExists(ctx, tx, recipesTable, rel.RecipeID)
	if err != nil {
		return err
	}
	if !exists {
		return store.ErrNotFound.WithMessage("recipe not found")
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO recipe_relations (kind, user_id, recipe_id, created_at)
		VALUES (?, ?, ?, ?)`,
		string(rel.Kind), rel.UserID, rel.RecipeID, formatTime(rel.CreatedAt))
	if err != nil {
		return translateWriteErr(err)
	}

	return tx.Commit()
}

// RemoveRecipeRelation deletes a favorite or cart entry and reports whether
// one existed.
// Returns store.ErrNotFound if the recipe itself does not exist.
func (s *Store) RemoveRecipeRelation(ctx context.Context, kind domain.RelationKind, userID, recipeID int64) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	exists, err := rowExists(ctx, tx, recipesTable, recipeID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, store.ErrNotFound.WithMessage("recipe not found")
	}

	res, err := tx.ExecContext(ctx, `
		DELETE FROM recipe_relations WHERE kind = ? AND user_id = ? AND recipe_id = ?`,
		string(kind), userID, recipeID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return n > 0, nil
}

// RelatedRecipeIDs reports which of recipeIDs the user has in the given
// relation. Recipes not in the relation are absent from the map.
func (s *Store) RelatedRecipeIDs(ctx context.Context, kind domain.RelationKind, userID int64, recipeIDs []int64) (map[int64]bool, error) {
	out := make(map[int64]bool)
	if userID == 0 || len(recipeIDs) == 0 {
		return out, nil
	}

	in, args := inClause(recipeIDs)
	args = append([]any{string(kind), userID}, args...)

	rows, err := s.db.QueryContext(ctx, `
		SELECT recipe_id FROM recipe_relations
		WHERE kind = ? AND user_id = ? AND recipe_id IN (`+in+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}
