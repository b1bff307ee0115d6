package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name   string
		page   string
		limit  string
		expect Pagination
	}{
		{"defaults", "", "", Pagination{Page: 1, Limit: DefaultPageSize}},
		{"explicit values", "3", "20", Pagination{Page: 3, Limit: 20}},
		{"negative page", "-2", "5", Pagination{Page: 1, Limit: 5}},
		{"garbage values", "abc", "xyz", Pagination{Page: 1, Limit: DefaultPageSize}},
		{"limit capped", "1", "1000", Pagination{Page: 1, Limit: MaxPageSize}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, ParsePagination(tt.page, tt.limit))
		})
	}
}

func TestPaginationMath(t *testing.T) {
	p := Pagination{Page: 3, Limit: 10}

	assert.Equal(t, 20, p.Offset())
	assert.Equal(t, 0, p.TotalPages(0))
	assert.Equal(t, 1, p.TotalPages(10))
	assert.Equal(t, 3, p.TotalPages(21))
}
