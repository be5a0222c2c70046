package models

import (
	"math"
	"time"
)

// PageRequest selects one page of a collection. Page numbers start at 1.
type PageRequest struct {
	Page     int
	PageSize int
}

// Addressable reports whether the page's offset fits in an int.
func (p PageRequest) Addressable() bool {
	if p.Page < 1 || p.PageSize < 1 {
		return false
	}
	return p.Page-1 <= math.MaxInt/p.PageSize
}

func (p PageRequest) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// Page is the paginated collection envelope returned by list endpoints.
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// UserFilter narrows a user listing.
type UserFilter struct {
	Search      string
	IsStaff     *bool
	IsSuperuser *bool
	IsActive    *bool
	Created     CreatedRange
}

// TaskFilter narrows a task listing.
type TaskFilter struct {
	Search      string
	Completed   *bool
	CreatedByID *uint
	Created     CreatedRange
}

// CreatedRange bounds created_at: After is inclusive, Before exclusive.
type CreatedRange struct {
	After  *time.Time
	Before *time.Time
}
