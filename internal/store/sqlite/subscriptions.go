package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/foodgramapp/foodgram-server/internal/domain"
	"github.com/foodgramapp/foodgram-server/internal/store"
)

// Subscribe records that a user follows an author. The author existence
// check and the insert share one transaction.
// Returns store.ErrNotFound if the author does not exist and
// store.ErrAlreadyExists on a duplicate subscription.
func (s *Store) Subscribe(ctx context.Context, sub *domain.Subscription) error {
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	exists, err := rowExists(ctx, tx, usersTable, sub.AuthorID)
	if err != nil {
		return err
	}
	if !exists {
		return store.ErrNotFound.WithMessage("author not found")
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO subscriptions (subscriber_id, author_id, created_at)
		VALUES (?, ?, ?)`,
		sub.SubscriberID, sub.AuthorID, formatTime(sub.CreatedAt))
	if err != nil {
		return translateWriteErr(err)
	}

	return tx.Commit()
}

// Unsubscribe removes a subscription and reports whether one existed.
// Returns store.ErrNotFound if the author does not exist.
func (s *Store) Unsubscribe(ctx context.Context, subscriberID, authorID int64) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	exists, err := rowExists(ctx, tx, usersTable, authorID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, store.ErrNotFound.WithMessage("author not found")
	}

	res, err := tx.ExecContext(ctx,
		`DELETE FROM subscriptions WHERE subscriber_id = ? AND author_id = ?`,
		subscriberID, authorID)
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

// SubscribedAuthorIDs reports which of authorIDs the subscriber follows.
func (s *Store) SubscribedAuthorIDs(ctx context.Context, subscriberID int64, authorIDs []int64) (map[int64]bool, error) {
	out := make(map[int64]bool)
	if subscriberID == 0 || len(authorIDs) == 0 {
		return out, nil
	}

	in, args := inClause(authorIDs)
	args = append([]any{subscriberID}, args...)

	rows, err := s.db.QueryContext(ctx, `
		SELECT author_id FROM subscriptions
		WHERE subscriber_id = ? AND author_id IN (`+in+`)`, args...)
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

// ListSubscriptions returns one page of the authors a user follows, most
// recently followed first.
func (s *Store) ListSubscriptions(ctx context.Context, subscriberID int64, params store.PaginationParams) (*store.PaginatedResult[*domain.User], error) {
	params.Validate()

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = ?`, subscriberID,
	).Scan(&total); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM subscriptions sub
		JOIN users u ON u.id = sub.author_id
		WHERE sub.subscriber_id = ?
		ORDER BY sub.created_at DESC, u.id
		LIMIT ? OFFSET ?`,
		subscriberID, params.Limit, params.Offset())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var authors []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		authors = append(authors, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return store.NewPaginatedResult(authors, total, params), nil
}
