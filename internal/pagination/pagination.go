// Package pagination provides the offset/limit window arithmetic shared by
// every list operation. Pages are 1-based. Out-of-range inputs are clamped
// rather than rejected: page below 1 becomes 1, limit below 1 becomes the
// default of 10, and limit above 100 becomes 100.
package pagination

const (
	// DefaultLimit is applied when a caller does not request a page size.
	DefaultLimit = 10
	// MaxLimit caps the page size to prevent unbounded reads.
	MaxLimit = 100
)

// Params describes the requested window of a listing.
type Params struct {
	Page  int
	Limit int
}

// Normalize clamps the parameters into their documented bounds.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Offset returns the number of items preceding the requested page.
func (p Params) Offset() int {
	p = p.Normalize()
	return (p.Page - 1) * p.Limit
}

// Window returns the [start, end) slice bounds for a collection of n items.
// Both bounds are clamped to n, so slicing with them is always valid; an
// out-of-range page yields an empty window.
func (p Params) Window(n int) (start, end int) {
	p = p.Normalize()
	start = p.Offset()
	if start > n {
		start = n
	}
	end = start + p.Limit
	if end > n {
		end = n
	}
	return start, end
}

// Meta is the page metadata returned alongside every listing. It carries
// enough for a caller to compute whether further pages exist.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// MetaFor computes page metadata for a listing of total items.
func (p Params) MetaFor(total int) Meta {
	p = p.Normalize()
	if total < 0 {
		total = 0
	}
	pages := total / p.Limit
	if total%p.Limit != 0 {
		pages++
	}
	return Meta{
		Page:       p.Page,
		Limit:      p.Limit,
		TotalItems: total,
		TotalPages: pages,
	}
}
