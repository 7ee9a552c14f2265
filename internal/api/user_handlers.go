package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/foodgramapp/foodgram-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listUsers",
		Method:      http.MethodGet,
		Path:        "/api/v1/users",
		Summary:     "List users",
		Description: "Returns a page of users with the caller's subscription state",
		Tags:        []string{"Users"},
	}, s.handleListUsers)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Description: "Returns the authenticated user's profile",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}",
		Summary:     "Get user",
		Description: "Returns a user by ID",
		Tags:        []string{"Users"},
	}, s.handleGetUser)

	huma.Register(s.api, huma.Operation{
		OperationID:   "setPassword",
		Method:        http.MethodPost,
		Path:          "/api/v1/users/set_password",
		Summary:       "Change password",
		Description:   "Changes the caller's password and revokes all of their sessions",
		Tags:          []string{"Users"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusNoContent,
	}, s.handleSetPassword)
}

// === DTOs ===

// ListUsersInput contains parameters for listing users.
type ListUsersInput struct {
	PaginationInput
}

// UserPageOutput wraps a page of users for Huma.
type UserPageOutput struct {
	Body PageResponse[UserResponse]
}

// GetUserInput contains parameters for getting a user.
type GetUserInput struct {
	ID int64 `path:"id" doc:"User ID"`
}

// SetPasswordRequest is the request body for changing the password.
type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password,omitempty" doc:"Current password"`
	NewPassword     string `json:"new_password,omitempty" doc:"New password, at least 8 characters"`
}

// SetPasswordInput wraps the password change for Huma.
type SetPasswordInput struct {
	Body SetPasswordRequest
}

// === Handlers ===

func (s *Server) handleListUsers(ctx context.Context, input *ListUsersInput) (*UserPageOutput, error) {
	page, err := s.services.User.List(ctx, ActorFrom(ctx), input.Params())
	if err != nil {
		return nil, err
	}
	return &UserPageOutput{Body: mapPage(page, mapAuthor)}, nil
}

func (s *Server) handleGetCurrentUser(ctx context.Context, _ *struct{}) (*UserOutput, error) {
	me, err := s.services.User.Me(ctx, ActorFrom(ctx))
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: mapAuthor(me)}, nil
}

func (s *Server) handleGetUser(ctx context.Context, input *GetUserInput) (*UserOutput, error) {
	author, err := s.services.User.Get(ctx, ActorFrom(ctx), input.ID)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: mapAuthor(author)}, nil
}

func (s *Server) handleSetPassword(ctx context.Context, input *SetPasswordInput) (*struct{}, error) {
	err := s.services.Auth.ChangePassword(ctx, ActorFrom(ctx), service.ChangePasswordRequest{
		CurrentPassword: input.Body.CurrentPassword,
		NewPassword:     input.Body.NewPassword,
	})
	return nil, err
}
