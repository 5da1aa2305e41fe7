package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many rows any list query can request.
	MaxLimit = 100
)

// Params holds offset pagination inputs from controllers or services.
type Params struct {
	Page     int
	PageSize int
}

// Page is one slice of an ordered result set.
type Page[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	HasNext  bool  `json:"has_next"`
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Normalize clamps page to >= 1 and the page size to the allowed range.
func (p Params) Normalize() Params {
	page := p.Page
	if page < 1 {
		page = 1
	}
	return Params{Page: page, PageSize: NormalizeLimit(p.PageSize)}
}

// Offset returns the row offset for the page.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

// NewPage assembles a page from the fetched rows and the unpaginated total.
func NewPage[T any](items []T, total int64, params Params) Page[T] {
	n := params.Normalize()
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:    items,
		Total:    total,
		Page:     n.Page,
		PageSize: n.PageSize,
		HasNext:  int64(n.Page*n.PageSize) < total,
	}
}

// Map converts a page of one type into a page of another, keeping the
// pagination metadata.
func Map[T, U any](in Page[T], fn func(T) U) Page[U] {
	out := make([]U, 0, len(in.Items))
	for _, item := range in.Items {
		out = append(out, fn(item))
	}
	return Page[U]{
		Items:    out,
		Total:    in.Total,
		Page:     in.Page,
		PageSize: in.PageSize,
		HasNext:  in.HasNext,
	}
}
