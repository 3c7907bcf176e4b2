package repository

import "math"

// Paging defaults for the admin user directory and audit trail listings.
// MaxPageSize caps how much an admin query can pull in one round trip.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type PageRequest struct {
	Page     int
	PageSize int
}

// offset converts the 1-based page number into a row offset for the query.
// Call clamp first; a raw request may carry a zero or negative page.
func (p PageRequest) offset() int {
	return (p.Page - 1) * p.PageSize
}

// clamp normalizes out-of-range paging input instead of rejecting it, so a
// stale admin UI link still resolves to a sensible page.
func (p PageRequest) clamp() PageRequest {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

type PageResult[T any] struct {
	Items      []T
	Page       int
	PageSize   int
	Total      int64
	TotalPages int
}

func calcTotalPages(total int64, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(pageSize)))
}
