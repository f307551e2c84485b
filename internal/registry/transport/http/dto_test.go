package http

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	items := make([]int, 25)
	for i := range items {
		items[i] = i
	}

	tests := []struct {
		name       string
		page       int
		limit      int
		wantLen    int
		wantFirst  int
		wantTotal  int
		wantPages  int
	}{
		{"first page", 1, 10, 10, 0, 25, 3},
		{"second page", 2, 10, 10, 10, 25, 3},
		{"last partial page", 3, 10, 5, 20, 25, 3},
		{"page past the end", 4, 10, 0, 0, 25, 3},
		{"limit larger than total", 1, 100, 25, 0, 25, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			page, meta := paginate(items, tc.page, tc.limit)
			assert.Len(t, page, tc.wantLen)
			if tc.wantLen > 0 {
				assert.Equal(t, tc.wantFirst, page[0])
			}
			assert.Equal(t, tc.page, meta.Page)
			assert.Equal(t, tc.limit, meta.Limit)
			assert.Equal(t, tc.wantTotal, meta.Total)
			assert.Equal(t, tc.wantPages, meta.TotalPages)
		})
	}
}

func TestPaginate_Empty(t *testing.T) {
	page, meta := paginate([]string{}, 1, 10)
	assert.Empty(t, page)
	assert.Equal(t, 0, meta.Total)
	assert.Equal(t, 0, meta.TotalPages)
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
	}{
		{"defaults", "", 1, 10},
		{"explicit", "?page=3&limit=5", 3, 5},
		{"garbage falls back", "?page=abc&limit=-2", 1, 10},
		{"zero falls back", "?page=0&limit=0", 1, 10},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/projects"+tc.query, nil)
			page, limit := parsePagination(r)
			assert.Equal(t, tc.wantPage, page)
			assert.Equal(t, tc.wantLimit, limit)
		})
	}
}
