package domain

import "time"

// Recipe is an authored dish with its ingredient lines and tag set.
// Lines and tags are always replaced as a whole, never patched.
type Recipe struct {
	ID            int64              `json:"id"`
	AuthorID      int64              `json:"author_id"`
	Name          string             `json:"name"`
	Text          string             `json:"text"`
	CookingTime   int                `json:"cooking_time"` // minutes, >= 1
	Image         string             `json:"image"`
	ImageBlurHash string             `json:"image_blurhash,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	Ingredients   []RecipeIngredient `json:"ingredients"`
	Tags          []Tag              `json:"tags"`
}

// RecipeIngredient is one ingredient line of a recipe, denormalized with the
// catalog name and unit for display.
type RecipeIngredient struct {
	IngredientID    int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// IngredientAmount is an ingredient line as supplied by the author.
type IngredientAmount struct {
	ID     int64 `json:"id" validate:"gt=0"`
	Amount int   `json:"amount" validate:"gte=1"`
}

// RecipeDraft is the author-supplied payload for creating or replacing a recipe.
// The author is never part of the draft; it comes from the acting user.
type RecipeDraft struct {
	Name        string             `json:"name" validate:"required,max=200"`
	Text        string             `json:"text" validate:"required"`
	CookingTime int                `json:"cooking_time" validate:"gte=1"`
	Ingredients []IngredientAmount `json:"ingredients" validate:"required,min=1,dive"`
	Tags        []int64            `json:"tags" validate:"dive,gt=0"`
	Image       string             `json:"image,omitempty"`
}

// IngredientIDs returns the referenced ingredient IDs in draft order.
func (d *RecipeDraft) IngredientIDs() []int64 {
	ids := make([]int64, len(d.Ingredients))
	for i, line := range d.Ingredients {
		ids[i] = line.ID
	}
	return ids
}

// DuplicateIngredientID reports the first ingredient listed more than once.
func (d *RecipeDraft) DuplicateIngredientID() (int64, bool) {
	return firstDuplicate(d.IngredientIDs())
}

// DuplicateTagID reports the first tag listed more than once.
func (d *RecipeDraft) DuplicateTagID() (int64, bool) {
	return firstDuplicate(d.Tags)
}

func firstDuplicate(ids []int64) (int64, bool) {
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return id, true
		}
		seen[id] = struct{}{}
	}
	return 0, false
}

// RecipeSummary is the minimal projection returned by favorite and cart
// toggles and embedded in subscription listings.
type RecipeSummary struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// Summary projects the recipe to its minimal form.
func (r *Recipe) Summary() RecipeSummary {
	return RecipeSummary{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}

// RecipeFilter narrows recipe listings. Zero values mean "no constraint".
type RecipeFilter struct {
	AuthorID    int64
	TagSlugs    []string
	FavoritedBy int64 // only recipes in this user's favorites
	InCartOf    int64 // only recipes in this user's shopping cart
}

// RecipeStats reports how often a recipe has been saved by users.
type RecipeStats struct {
	RecipeID       int64  `json:"recipe_id"`
	Name           string `json:"name"`
	AuthorID       int64  `json:"author_id"`
	FavoritesCount int    `json:"favorites_count"`
	CartCount      int    `json:"cart_count"`
}
