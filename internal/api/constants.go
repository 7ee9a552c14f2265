package api

// API limits and constants.
const (
	// MaxUploadSize is the default body cap for recipe writes, which carry
	// base64 images (10 MB).
	MaxUploadSize = 10 << 20

	// DefaultShoppingListFileName names the shopping list attachment.
	DefaultShoppingListFileName = "shopping_list.txt"
)

// Cache-Control header values.
const (
	CacheOneWeek = "public, max-age=604800"
	CacheNoStore = "no-store"
)
