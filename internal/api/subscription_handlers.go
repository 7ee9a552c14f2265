package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerSubscriptionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listSubscriptions",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/subscriptions",
		Summary:     "List subscriptions",
		Description: "Returns the authors the caller follows, each with a preview of their recipes",
		Tags:        []string{"Subscriptions"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListSubscriptions)

	huma.Register(s.api, huma.Operation{
		OperationID:   "subscribe",
		Method:        http.MethodPost,
		Path:          "/api/v1/users/{id}/subscribe",
		Summary:       "Subscribe to author",
		Description:   "Follows an author. Following yourself is rejected; following twice is a conflict.",
		Tags:          []string{"Subscriptions"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleSubscribe)

	huma.Register(s.api, huma.Operation{
		OperationID:   "unsubscribe",
		Method:        http.MethodDelete,
		Path:          "/api/v1/users/{id}/subscribe",
		Summary:       "Unsubscribe from author",
		Description:   "Stops following an author",
		Tags:          []string{"Subscriptions"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusNoContent,
	}, s.handleUnsubscribe)
}

// === DTOs ===

// ListSubscriptionsInput contains parameters for listing subscriptions.
type ListSubscriptionsInput struct {
	PaginationInput
	RecipesLimit int `query:"recipes_limit" doc:"Recipes to include per author; 0 includes all"`
}

// SubscriptionPageOutput wraps a page of subscriptions for Huma.
type SubscriptionPageOutput struct {
	Body PageResponse[SubscriptionResponse]
}

// SubscribeInput contains parameters for subscribing.
type SubscribeInput struct {
	ID           int64 `path:"id" doc:"Author ID"`
	RecipesLimit int   `query:"recipes_limit" doc:"Recipes to include in the response; 0 includes all"`
}

// SubscriptionOutput wraps a single subscription for Huma.
type SubscriptionOutput struct {
	Body SubscriptionResponse
}

// UnsubscribeInput contains parameters for unsubscribing.
type UnsubscribeInput struct {
	ID int64 `path:"id" doc:"Author ID"`
}

// === Handlers ===

func (s *Server) handleListSubscriptions(ctx context.Context, input *ListSubscriptionsInput) (*SubscriptionPageOutput, error) {
	page, err := s.services.Ledger.ListSubscriptions(ctx, ActorFrom(ctx), input.Params(), input.RecipesLimit)
	if err != nil {
		return nil, err
	}
	return &SubscriptionPageOutput{Body: mapPage(page, mapSubscription)}, nil
}

func (s *Server) handleSubscribe(ctx context.Context, input *SubscribeInput) (*SubscriptionOutput, error) {
	view, err := s.services.Ledger.Subscribe(ctx, ActorFrom(ctx), input.ID, input.RecipesLimit)
	if err != nil {
		return nil, err
	}
	return &SubscriptionOutput{Body: mapSubscription(view)}, nil
}

func (s *Server) handleUnsubscribe(ctx context.Context, input *UnsubscribeInput) (*struct{}, error) {
	return nil, s.services.Ledger.Unsubscribe(ctx, ActorFrom(ctx), input.ID)
}
