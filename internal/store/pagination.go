package store

// Page size bounds for list endpoints.
const (
	DefaultPageLimit = 6
	MaxPageLimit     = 100
)

// PaginationParams selects one page of a listing. Pages are 1-based.
type PaginationParams struct {
	Page  int
	Limit int
}

// PaginatedResult contains one page of items and the total across all pages.
type PaginatedResult[T any] struct {
	Items   []T  `json:"items"`
	Total   int  `json:"total"`
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	HasMore bool `json:"has_more"`
}

// DefaultPaginationParams returns the first page with the default size.
func DefaultPaginationParams() PaginationParams {
	return PaginationParams{Page: 1, Limit: DefaultPageLimit}
}

// Validate clamps page and limit into range.
func (p *PaginationParams) Validate() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
}

// Offset returns the number of rows to skip for this page.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// NewPaginatedResult assembles a page from its items and the overall total.
func NewPaginatedResult[T any](items []T, total int, p PaginationParams) *PaginatedResult[T] {
	if items == nil {
		items = []T{}
	}
	return &PaginatedResult[T]{
		Items:   items,
		Total:   total,
		Page:    p.Page,
		Limit:   p.Limit,
		HasMore: p.Offset()+len(items) < total,
	}
}
