package sqlite

import (
	"context"

	"github.com/foodgramapp/foodgram-server/internal/domain"
)

// CreateTag inserts a tag and sets its ID.
// Returns store.ErrAlreadyExists if the name, color or slug is taken.
func (s *Store) CreateTag(ctx context.Context, tag *domain.Tag) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tags (name, color, slug) VALUES (?, ?, ?)`,
		tag.Name, tag.Color, tag.Slug)
	if err != nil {
		return translateWriteErr(err)
	}
	tag.ID, err = res.LastInsertId()
	return err
}

// GetTag retrieves a tag by ID.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) GetTag(ctx context.Context, id int64) (*domain.Tag, error) {
	var t domain.Tag
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, color, slug FROM tags WHERE id = ?`, id,
	).Scan(&t.ID, &t.Name, &t.Color, &t.Slug)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &t, nil
}

// ListTags returns all tags ordered by name.
func (s *Store) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, color, slug FROM tags ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Tag{}
	for rows.Next() {
		var t domain.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.Slug); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

// DeleteTag removes a tag; recipe links to it cascade.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) DeleteTag(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// MissingTagIDs returns the ids that do not name a tag.
func (s *Store) MissingTagIDs(ctx context.Context, ids []int64) ([]int64, error) {
	return s.missingIDs(ctx, "tags", ids)
}
