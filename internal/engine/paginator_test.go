package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/skuquery/internal/query"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	tests := []struct {
		name    string
		w       query.Window
		want    []int
		hasMore bool
	}{
		{"first page", query.Window{Offset: 0, Limit: 2}, []int{1, 2}, true},
		{"middle page", query.Window{Offset: 2, Limit: 2}, []int{3, 4}, true},
		{"last partial page", query.Window{Offset: 4, Limit: 2}, []int{5}, false},
		{"exact fit", query.Window{Offset: 0, Limit: 5}, []int{1, 2, 3, 4, 5}, false},
		{"limit beyond end", query.Window{Offset: 0, Limit: 100}, []int{1, 2, 3, 4, 5}, false},
		{"offset at end", query.Window{Offset: 5, Limit: 2}, []int{}, false},
		{"offset past end", query.Window{Offset: 50, Limit: 2}, []int{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := Paginate(items, tt.w)
			assert.Equal(t, tt.want, page.Items)
			assert.Equal(t, 5, page.Total)
			assert.Equal(t, tt.hasMore, page.HasMore)
			assert.Equal(t, tt.w.Offset+len(page.Items) < page.Total, page.HasMore)
		})
	}
}

func TestPaginateEmpty(t *testing.T) {
	page := Paginate([]string{}, query.Window{Offset: 0, Limit: 10})
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.Total)
	assert.False(t, page.HasMore)
}

func TestPaginateHugeLimit(t *testing.T) {
	page := Paginate([]int{1, 2, 3}, query.Window{Offset: 1, Limit: int(^uint(0) >> 1)})
	assert.Equal(t, []int{2, 3}, page.Items)
	assert.False(t, page.HasMore)
}
