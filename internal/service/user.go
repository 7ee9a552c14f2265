package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/foodgramapp/foodgram-server/internal/domain"
	domainerrors "github.com/foodgramapp/foodgram-server/internal/errors"
	"github.com/foodgramapp/foodgram-server/internal/store"
)

// UserService serves user profiles annotated for the viewer.
type UserService struct {
	store  store.Store
	logger *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(store store.Store, logger *slog.Logger) *UserService {
	return &UserService{store: store, logger: orDiscard(logger)}
}

// List returns one page of users, each annotated with whether the actor
// follows them.
func (s *UserService) List(ctx context.Context, actor domain.Actor, params store.PaginationParams) (*store.PaginatedResult[*domain.Author], error) {
	page, err := s.store.ListUsers(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	authors, err := annotateAuthors(ctx, s.store, actor, page.Items)
	if err != nil {
		return nil, err
	}

	return &store.PaginatedResult[*domain.Author]{
		Items:   authors,
		Total:   page.Total,
		Page:    page.Page,
		Limit:   page.Limit,
		HasMore: page.HasMore,
	}, nil
}

// Get returns one user annotated for the actor.
func (s *UserService) Get(ctx context.Context, actor domain.Actor, userID int64) (*domain.Author, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, translateStoreErr(err, "user")
	}
	authors, err := annotateAuthors(ctx, s.store, actor, []*domain.User{user})
	if err != nil {
		return nil, err
	}
	return authors[0], nil
}

// Me returns the acting user's own profile.
func (s *UserService) Me(ctx context.Context, actor domain.Actor) (*domain.Author, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}
	user, err := s.store.GetUser(ctx, actor.UserID)
	if err != nil {
		return nil, translateStoreErr(err, "user")
	}
	return &domain.Author{User: *user}, nil
}

// SetRole changes a user's role. Admin only.
func (s *UserService) SetRole(ctx context.Context, actor domain.Actor, userID int64, role domain.Role) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if role != domain.RoleUser && role != domain.RoleAdmin {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{
			"role": "must be one of: user admin",
		})
	}

	if err := s.store.SetUserRole(ctx, userID, role); err != nil {
		return nil, translateStoreErr(err, "user")
	}
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, translateStoreErr(err, "user")
	}

	s.logger.Info("user role changed", "user_id", userID, "role", role, "by", actor.UserID)
	return user, nil
}

// annotateAuthors wraps users with the actor's subscription state. Anonymous
// actors follow nobody.
func annotateAuthors(ctx context.Context, st store.Store, actor domain.Actor, users []*domain.User) ([]*domain.Author, error) {
	ids := make([]int64, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}

	subscribed := map[int64]bool{}
	if actor.Authenticated {
		var err error
		subscribed, err = st.SubscribedAuthorIDs(ctx, actor.UserID, ids)
		if err != nil {
			return nil, fmt.Errorf("load subscriptions: %w", err)
		}
	}

	authors := make([]*domain.Author, len(users))
	for i, u := range users {
		authors[i] = &domain.Author{User: *u, IsSubscribed: subscribed[u.ID]}
	}
	return authors, nil
}
