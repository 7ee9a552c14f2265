package domain

import "time"

// RelationKind distinguishes the user-to-recipe relations that share one
// storage shape: a unique (user, recipe) pair with a timestamp.
type RelationKind string

const (
	// RelationFavorite marks a recipe the user saved to favorites.
	RelationFavorite RelationKind = "favorite"
	// RelationCart marks a recipe in the user's shopping cart.
	RelationCart RelationKind = "cart"
)

// Valid reports whether k is a known relation kind.
func (k RelationKind) Valid() bool {
	return k == RelationFavorite || k == RelationCart
}

// Label is the human-readable collection name used in messages.
func (k RelationKind) Label() string {
	if k == RelationCart {
		return "shopping cart"
	}
	return "favorites"
}

// RecipeRelation is one favorite or cart entry.
type RecipeRelation struct {
	Kind      RelationKind `json:"kind"`
	UserID    int64        `json:"user_id"`
	RecipeID  int64        `json:"recipe_id"`
	CreatedAt time.Time    `json:"created_at"`
}

// Subscription records that Subscriber follows Author. Subscriber never
// equals Author.
type Subscription struct {
	SubscriberID int64     `json:"subscriber_id"`
	AuthorID     int64     `json:"author_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// ShoppingListItem is one aggregated line of a shopping list: the total
// amount of an ingredient (by name and unit) across every recipe in the cart.
type ShoppingListItem struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	TotalAmount     int64  `json:"total_amount"`
}
