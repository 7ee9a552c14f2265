package api

import (
	"github.com/foodgramapp/foodgram-server/internal/media/images"
	"github.com/foodgramapp/foodgram-server/internal/service"
)

// Services groups all business logic services used by the API server.
type Services struct {
	Auth     *service.AuthService
	User     *service.UserService
	Catalog  *service.CatalogService
	Recipe   *service.RecipeService
	Ledger   *service.LedgerService
	Shopping *service.ShoppingListService
	Search   *service.SearchService // nil disables /recipes/search
	Admin    *service.AdminService
}

// StorageServices groups file storage handlers used by the API server.
type StorageServices struct {
	Recipes *images.Storage // uploaded recipe images
}
