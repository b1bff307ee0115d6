package utils

import (
	"strconv"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

// Pagination is a parsed page/limit pair
type Pagination struct {
	Page  int
	Limit int
}

// ParsePagination reads page and limit query values, falling back to page 1 and
// DefaultPageSize on missing or invalid input and capping limit at MaxPageSize.
func ParsePagination(pageValue, limitValue string) Pagination {
	page, err := strconv.Atoi(pageValue)
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(limitValue)
	if err != nil || limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return Pagination{Page: page, Limit: limit}
}

// Offset returns the number of rows to skip
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages returns the page count for total rows
func (p Pagination) TotalPages(total int64) int {
	if total == 0 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}
