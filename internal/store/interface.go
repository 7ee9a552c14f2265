// Package store defines the persistence interface for the Foodgram server.
package store

import (
	"context"
	"time"

	"github.com/foodgramapp/foodgram-server/internal/domain"
)

// Store defines the interface for all persistence operations.
// Every mutating method that touches more than one row runs in a single
// transaction; callers never observe partial writes.
type Store interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetUsersByIDs(ctx context.Context, ids []int64) (map[int64]*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ListUsers(ctx context.Context, params PaginationParams) (*PaginatedResult[*domain.User], error)
	UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error
	SetUserRole(ctx context.Context, id int64, role domain.Role) error

	// Auth Sessions
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteUserSessions(ctx context.Context, userID int64) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error)

	// Ingredient catalog
	CreateIngredient(ctx context.Context, ingredient *domain.Ingredient) error
	GetIngredient(ctx context.Context, id int64) (*domain.Ingredient, error)
	ListIngredients(ctx context.Context, namePrefix string) ([]*domain.Ingredient, error)
	MissingIngredientIDs(ctx context.Context, ids []int64) ([]int64, error)

	// Tag catalog
	CreateTag(ctx context.Context, tag *domain.Tag) error
	GetTag(ctx context.Context, id int64) (*domain.Tag, error)
	ListTags(ctx context.Context) ([]*domain.Tag, error)
	DeleteTag(ctx context.Context, id int64) error
	MissingTagIDs(ctx context.Context, ids []int64) ([]int64, error)

	// Recipes
	CreateRecipe(ctx context.Context, recipe *domain.Recipe) error
	UpdateRecipe(ctx context.Context, recipe *domain.Recipe) error
	DeleteRecipe(ctx context.Context, id int64) error
	GetRecipe(ctx context.Context, id int64) (*domain.Recipe, error)
	GetRecipesByIDs(ctx context.Context, ids []int64) ([]*domain.Recipe, error)
	ListRecipes(ctx context.Context, filter domain.RecipeFilter, params PaginationParams) (*PaginatedResult[*domain.Recipe], error)
	ListAllRecipes(ctx context.Context) ([]*domain.Recipe, error)
	ListAuthorRecipeSummaries(ctx context.Context, authorID int64, limit int) ([]domain.RecipeSummary, error)
	CountAuthorRecipes(ctx context.Context, authorID int64) (int, error)
	ListRecipeStats(ctx context.Context, params PaginationParams) (*PaginatedResult[domain.RecipeStats], error)

	// Favorites and shopping cart
	AddRecipeRelation(ctx context.Context, rel *domain.RecipeRelation) error
	RemoveRecipeRelation(ctx context.Context, kind domain.RelationKind, userID, recipeID int64) (bool, error)
	RelatedRecipeIDs(ctx context.Context, kind domain.RelationKind, userID int64, recipeIDs []int64) (map[int64]bool, error)

	// Subscriptions
	Subscribe(ctx context.Context, sub *domain.Subscription) error
	Unsubscribe(ctx context.Context, subscriberID, authorID int64) (bool, error)
	SubscribedAuthorIDs(ctx context.Context, subscriberID int64, authorIDs []int64) (map[int64]bool, error)
	ListSubscriptions(ctx context.Context, subscriberID int64, params PaginationParams) (*PaginatedResult[*domain.User], error)

	// Shopping list
	ShoppingList(ctx context.Context, userID int64) ([]domain.ShoppingListItem, error)
}
