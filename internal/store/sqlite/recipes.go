package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/foodgramapp/foodgram-server/internal/domain"
	"github.com/foodgramapp/foodgram-server/internal/store"
)

// recipeColumns is the ordered list of columns selected in recipe queries.
// Must match the scan order in scanRecipe.
const recipeColumns = `r.id, r.author_id, r.name, r.text, r.cooking_time,
	r.image, r.image_blurhash, r.created_at, r.updated_at`

// scanRecipe scans the scalar recipe columns. Ingredient lines and tags are
// loaded separately by loadRecipeChildren.
func scanRecipe(scanner interface{ Scan(dest ...any) error }) (*domain.Recipe, error) {
	var (
		r         domain.Recipe
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&r.ID,
		&r.AuthorID,
		&r.Name,
		&r.Text,
		&r.CookingTime,
		&r.Image,
		&r.ImageBlurHash,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if r.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	r.Ingredients = []domain.RecipeIngredient{}
	r.Tags = []domain.Tag{}
	return &r, nil
}

// CreateRecipe inserts a recipe together with its ingredient lines and tag
// links in one transaction, and sets the recipe's ID and timestamps.
// Only IngredientID and Amount of each line and ID of each tag are read.
// Returns store.ErrInvalidReference if an ingredient, tag or the author is missing.
func (s *Store) CreateRecipe(ctx context.Context, recipe *domain.Recipe) error {
	now := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx, `
		INSERT INTO recipes (
			author_id, name, text, cooking_time, image, image_blurhash, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		recipe.AuthorID,
		recipe.Name,
		recipe.Text,
		recipe.CookingTime,
		recipe.Image,
		recipe.ImageBlurHash,
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		return translateWriteErr(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	if err := insertRecipeChildren(ctx, tx, id, recipe); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	recipe.ID = id
	recipe.CreatedAt = now
	recipe.UpdatedAt = now
	return nil
}

// UpdateRecipe replaces a recipe's scalar fields, ingredient lines and tag
// links in one transaction. Existing lines and links are cleared and rebuilt
// from the recipe value; nothing is merged.
// Returns store.ErrNotFound if the recipe does not exist.
func (s *Store) UpdateRecipe(ctx context.Context, recipe *domain.Recipe) error {
	now := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx, `
		UPDATE recipes SET
			name = ?,
			text = ?,
			cooking_time = ?,
			image = ?,
			image_blurhash = ?,
			updated_at = ?
		WHERE id = ?`,
		recipe.Name,
		recipe.Text,
		recipe.CookingTime,
		recipe.Image,
		recipe.ImageBlurHash,
		formatTime(now),
		recipe.ID,
	)
	if err != nil {
		return translateWriteErr(err)
	}
	if err := expectAffected(res); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_ingredients WHERE recipe_id = ?`, recipe.ID); err != nil {
		return fmt.Errorf("clear ingredient lines: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_tags WHERE recipe_id = ?`, recipe.ID); err != nil {
		return fmt.Errorf("clear tag links: %w", err)
	}

	if err := insertRecipeChildren(ctx, tx, recipe.ID, recipe); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	recipe.UpdatedAt = now
	return nil
}

// insertRecipeChildren writes the ingredient lines and tag links of recipe under id.
func insertRecipeChildren(ctx context.Context, tx *sql.Tx, id int64, recipe *domain.Recipe) error {
	for pos, line := range recipe.Ingredients {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO recipe_ingredients (recipe_id, ingredient_id, amount, position)
			VALUES (?, ?, ?, ?)`,
			id, line.IngredientID, line.Amount, pos)
		if err != nil {
			return translateWriteErr(err)
		}
	}

	for _, tag := range recipe.Tags {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO recipe_tags (recipe_id, tag_id) VALUES (?, ?)`, id, tag.ID)
		if err != nil {
			return translateWriteErr(err)
		}
	}
	return nil
}

// DeleteRecipe removes a recipe. Ingredient lines, tag links, favorites and
// cart entries cascade.
// Returns store.ErrNotFound if the recipe does not exist.
func (s *Store) DeleteRecipe(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// GetRecipe retrieves a recipe with its ingredient lines and tags.
// Returns store.ErrNotFound if the recipe does not exist.
func (s *Store) GetRecipe(ctx context.Context, id int64) (*domain.Recipe, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes r WHERE r.id = ?`, id)

	r, err := scanRecipe(row)
	if err != nil {
		return nil, notFoundOr(err)
	}

	if err := s.loadRecipeChildren(ctx, []*domain.Recipe{r}); err != nil {
		return nil, err
	}
	return r, nil
}

// GetRecipesByIDs returns the recipes that exist among ids, in the order of ids.
func (s *Store) GetRecipesByIDs(ctx context.Context, ids []int64) ([]*domain.Recipe, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	in, args := inClause(ids)
	recipes, err := s.queryRecipes(ctx,
		`SELECT `+recipeColumns+` FROM recipes r WHERE r.id IN (`+in+`)`, args...)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]*domain.Recipe, len(recipes))
	for _, r := range recipes {
		byID[r.ID] = r
	}
	ordered := make([]*domain.Recipe, 0, len(recipes))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			ordered = append(ordered, r)
		}
	}
	return ordered, nil
}

// ListRecipes returns one page of recipes matching filter, newest first.
// Multiple tag slugs match recipes carrying any of them.
func (s *Store) ListRecipes(ctx context.Context, filter domain.RecipeFilter, params store.PaginationParams) (*store.PaginatedResult[*domain.Recipe], error) {
	params.Validate()

	where, args := recipeFilterClause(filter)

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM recipes r`+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	pageArgs := append(append([]any{}, args...), params.Limit, params.Offset())
	recipes, err := s.queryRecipes(ctx,
		`SELECT `+recipeColumns+` FROM recipes r`+where+
			` ORDER BY r.created_at DESC, r.id DESC LIMIT ? OFFSET ?`,
		pageArgs...)
	if err != nil {
		return nil, err
	}

	return store.NewPaginatedResult(recipes, total, params), nil
}

// recipeFilterClause builds the WHERE clause for a recipe filter.
func recipeFilterClause(filter domain.RecipeFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if filter.AuthorID != 0 {
		conds = append(conds, `r.author_id = ?`)
		args = append(args, filter.AuthorID)
	}

	if len(filter.TagSlugs) > 0 {
		placeholders := make([]string, len(filter.TagSlugs))
		for i, slug := range filter.TagSlugs {
			placeholders[i] = "?"
			args = append(args, slug)
		}
		conds = append(conds, `r.id IN (
			SELECT rt.recipe_id FROM recipe_tags rt
			JOIN tags t ON t.id = rt.tag_id
			WHERE t.slug IN (`+strings.Join(placeholders, ", ")+`))`)
	}

	if filter.FavoritedBy != 0 {
		conds = append(conds, `r.id IN (
			SELECT recipe_id FROM recipe_relations WHERE kind = ? AND user_id = ?)`)
		args = append(args, string(domain.RelationFavorite), filter.FavoritedBy)
	}

	if filter.InCartOf != 0 {
		conds = append(conds, `r.id IN (
			SELECT recipe_id FROM recipe_relations WHERE kind = ? AND user_id = ?)`)
		args = append(args, string(domain.RelationCart), filter.InCartOf)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListAllRecipes returns every recipe with children, used to rebuild the search index.
func (s *Store) ListAllRecipes(ctx context.Context) ([]*domain.Recipe, error) {
	return s.queryRecipes(ctx, `SELECT `+recipeColumns+` FROM recipes r ORDER BY r.id`)
}

// queryRecipes runs a recipe SELECT and hydrates ingredient lines and tags.
func (s *Store) queryRecipes(ctx context.Context, query string, args ...any) ([]*domain.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipes []*domain.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadRecipeChildren(ctx, recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

// loadRecipeChildren fills Ingredients and Tags for the given recipes using
// one query per child table.
func (s *Store) loadRecipeChildren(ctx context.Context, recipes []*domain.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}

	byID := make(map[int64]*domain.Recipe, len(recipes))
	ids := make([]int64, len(recipes))
	for i, r := range recipes {
		byID[r.ID] = r
		ids[i] = r.ID
	}
	in, args := inClause(ids)

	lineRows, err := s.db.QueryContext(ctx, `
		SELECT ri.recipe_id, i.id, i.name, i.measurement_unit, ri.amount
		FROM recipe_ingredients ri
		JOIN ingredients i ON i.id = ri.ingredient_id
		WHERE ri.recipe_id IN (`+in+`)
		ORDER BY ri.recipe_id, ri.position`, args...)
	if err != nil {
		return fmt.Errorf("load ingredient lines: %w", err)
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var (
			recipeID int64
			line     domain.RecipeIngredient
		)
		if err := lineRows.Scan(&recipeID, &line.IngredientID, &line.Name, &line.MeasurementUnit, &line.Amount); err != nil {
			return err
		}
		byID[recipeID].Ingredients = append(byID[recipeID].Ingredients, line)
	}
	if err := lineRows.Err(); err != nil {
		return err
	}

	tagRows, err := s.db.QueryContext(ctx, `
		SELECT rt.recipe_id, t.id, t.name, t.color, t.slug
		FROM recipe_tags rt
		JOIN tags t ON t.id = rt.tag_id
		WHERE rt.recipe_id IN (`+in+`)
		ORDER BY rt.recipe_id, t.id`, args...)
	if err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	defer tagRows.Close()

	for tagRows.Next() {
		var (
			recipeID int64
			tag      domain.Tag
		)
		if err := tagRows.Scan(&recipeID, &tag.ID, &tag.Name, &tag.Color, &tag.Slug); err != nil {
			return err
		}
		byID[recipeID].Tags = append(byID[recipeID].Tags, tag)
	}
	return tagRows.Err()
}

// ListAuthorRecipeSummaries returns an author's newest recipes in minimal
// form. A limit of zero or less returns all of them.
func (s *Store) ListAuthorRecipeSummaries(ctx context.Context, authorID int64, limit int) ([]domain.RecipeSummary, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, image, cooking_time FROM recipes
		WHERE author_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, authorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.RecipeSummary{}
	for rows.Next() {
		var sum domain.RecipeSummary
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.Image, &sum.CookingTime); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// CountAuthorRecipes returns how many recipes an author has published.
func (s *Store) CountAuthorRecipes(ctx context.Context, authorID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM recipes WHERE author_id = ?`, authorID).Scan(&n)
	return n, err
}

// ListRecipeStats returns favorite and cart counts per recipe, most
// favorited first.
func (s *Store) ListRecipeStats(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[domain.RecipeStats], error) {
	params.Validate()

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&total); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.name, r.author_id,
			COALESCE(SUM(CASE WHEN rr.kind = 'favorite' THEN 1 ELSE 0 END), 0) AS favorites,
			COALESCE(SUM(CASE WHEN rr.kind = 'cart' THEN 1 ELSE 0 END), 0) AS carts
		FROM recipes r
		LEFT JOIN recipe_relations rr ON rr.recipe_id = r.id
		GROUP BY r.id
		ORDER BY favorites DESC, r.id
		LIMIT ? OFFSET ?`, params.Limit, params.Offset())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []domain.RecipeStats
	for rows.Next() {
		var st domain.RecipeStats
		if err := rows.Scan(&st.RecipeID, &st.Name, &st.AuthorID, &st.FavoritesCount, &st.CartCount); err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return store.NewPaginatedResult(stats, total, params), nil
}
