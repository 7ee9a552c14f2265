// Package search provides full-text recipe search backed by a Bleve index.
// The index is a derived view of the relational store; it can be dropped and
// rebuilt from the store at any time.
package search

import (
	"strconv"

	"github.com/foodgramapp/foodgram-server/internal/domain"
)

// RecipeDocument is the indexed form of a recipe. Ingredient names and tag
// slugs are denormalized so one query covers them.
type RecipeDocument struct {
	ID          string   `json:"id"` // recipe ID in decimal
	Name        string   `json:"name"`
	Text        string   `json:"text,omitempty"`
	Ingredients []string `json:"ingredients,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	AuthorID    int64    `json:"author_id"`
	CookingTime int      `json:"cooking_time"`
	CreatedAt   int64    `json:"created_at"` // Unix milliseconds
}

// DocumentID returns the index key of a recipe.
func DocumentID(recipeID int64) string {
	return strconv.FormatInt(recipeID, 10)
}

// NewRecipeDocument projects a recipe into its index document.
func NewRecipeDocument(r *domain.Recipe) *RecipeDocument {
	doc := &RecipeDocument{
		ID:          DocumentID(r.ID),
		Name:        r.Name,
		Text:        r.Text,
		AuthorID:    r.AuthorID,
		CookingTime: r.CookingTime,
		CreatedAt:   r.CreatedAt.UnixMilli(),
	}
	for _, line := range r.Ingredients {
		doc.Ingredients = append(doc.Ingredients, line.Name)
	}
	for _, tag := range r.Tags {
		doc.Tags = append(doc.Tags, tag.Slug)
	}
	return doc
}

// ToMap converts the document to the field layout the mapping expects.
// Numeric fields are float64, which is what Bleve stores.
func (d *RecipeDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":           d.ID,
		"name":         d.Name,
		"author_id":    float64(d.AuthorID),
		"cooking_time": float64(d.CookingTime),
		"created_at":   float64(d.CreatedAt),
	}
	if d.Text != "" {
		m["text"] = d.Text
	}
	if len(d.Ingredients) > 0 {
		m["ingredients"] = d.Ingredients
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	return m
}
