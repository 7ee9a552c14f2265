package domain

// Tag is admin-managed reference data used to categorize recipes.
// Name, color and slug are each unique across all tags.
type Tag struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"` // hex, e.g. "#E26C2D"
	Slug  string `json:"slug"`
}

// Ingredient is immutable reference data: a name paired with the unit its
// amounts are measured in. The same name may exist with different units.
type Ingredient struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}
