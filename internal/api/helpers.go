package api

import (
	"time"

	"github.com/foodgramapp/foodgram-server/internal/domain"
	"github.com/foodgramapp/foodgram-server/internal/service"
	"github.com/foodgramapp/foodgram-server/internal/store"
)

// === Shared DTOs ===

// PaginationInput is the page-number pagination accepted by list endpoints.
type PaginationInput struct {
	Page  int `query:"page" doc:"1-based page number (default 1)"`
	Limit int `query:"limit" doc:"Page size (default 6, at most 100)"`
}

// Params converts the query into clamped store pagination.
func (p PaginationInput) Params() store.PaginationParams {
	params := store.PaginationParams{Page: p.Page, Limit: p.Limit}
	params.Validate()
	return params
}

// PageResponse is one page of a listing.
type PageResponse[T any] struct {
	Items   []T  `json:"items" doc:"Items on this page"`
	Total   int  `json:"total" doc:"Items across all pages"`
	Page    int  `json:"page" doc:"Current page"`
	Limit   int  `json:"limit" doc:"Page size"`
	HasMore bool `json:"has_more" doc:"Whether a next page exists"`
}

// mapPage converts a store page, mapping each item.
func mapPage[T, R any](page *store.PaginatedResult[T], mapItem func(T) R) PageResponse[R] {
	items := make([]R, len(page.Items))
	for i, item := range page.Items {
		items[i] = mapItem(item)
	}
	return PageResponse[R]{
		Items:   items,
		Total:   page.Total,
		Page:    page.Page,
		Limit:   page.Limit,
		HasMore: page.HasMore,
	}
}

// UserResponse is the public projection of a user.
type UserResponse struct {
	ID           int64  `json:"id" doc:"User ID"`
	Email        string `json:"email" doc:"Email address"`
	Username     string `json:"username" doc:"Unique username"`
	FirstName    string `json:"first_name" doc:"First name"`
	LastName     string `json:"last_name" doc:"Last name"`
	IsSubscribed bool   `json:"is_subscribed" doc:"Whether the caller follows this user"`
}

func mapUser(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func mapAuthor(a *domain.Author) UserResponse {
	resp := mapUser(&a.User)
	resp.IsSubscribed = a.IsSubscribed
	return resp
}

// RecipeResponse is a recipe as seen by the caller.
type RecipeResponse struct {
	ID               int64                     `json:"id" doc:"Recipe ID"`
	Tags             []domain.Tag              `json:"tags" doc:"Tags in ID order"`
	Author           UserResponse              `json:"author" doc:"Recipe author"`
	Ingredients      []domain.RecipeIngredient `json:"ingredients" doc:"Ingredient lines in authored order"`
	IsFavorited      bool                      `json:"is_favorited" doc:"In the caller's favorites"`
	IsInShoppingCart bool                      `json:"is_in_shopping_cart" doc:"In the caller's shopping cart"`
	Name             string                    `json:"name" doc:"Recipe name"`
	Image            string                    `json:"image" doc:"Image URL"`
	ImageBlurHash    string                    `json:"image_blurhash,omitempty" doc:"BlurHash placeholder for the image"`
	Text             string                    `json:"text" doc:"Description"`
	CookingTime      int                       `json:"cooking_time" doc:"Cooking time in minutes"`
	CreatedAt        time.Time                 `json:"created_at" doc:"Publication time"`
}

func mapRecipe(v *service.RecipeView) RecipeResponse {
	resp := RecipeResponse{
		ID:               v.ID,
		Tags:             v.Tags,
		Ingredients:      v.Ingredients,
		IsFavorited:      v.IsFavorited,
		IsInShoppingCart: v.IsInShoppingCart,
		Name:             v.Name,
		Image:            v.Image,
		ImageBlurHash:    v.ImageBlurHash,
		Text:             v.Text,
		CookingTime:      v.CookingTime,
		CreatedAt:        v.CreatedAt,
	}
	if v.Author != nil {
		resp.Author = mapAuthor(v.Author)
	}
	if resp.Tags == nil {
		resp.Tags = []domain.Tag{}
	}
	return resp
}

// SubscriptionResponse is a followed author with a preview of their recipes.
type SubscriptionResponse struct {
	UserResponse
	Recipes      []domain.RecipeSummary `json:"recipes" doc:"Most recent recipes, up to recipes_limit"`
	RecipesCount int                    `json:"recipes_count" doc:"Total recipes by this author"`
}

func mapSubscription(v *service.SubscriptionView) SubscriptionResponse {
	return SubscriptionResponse{
		UserResponse: mapAuthor(&v.Author),
		Recipes:      v.Recipes,
		RecipesCount: v.RecipesCount,
	}
}
