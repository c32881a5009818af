package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	page, info := Paginate(items, 2, 3)
	assert.Equal(t, []int{4, 5, 6}, page)
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, int64(7), info.TotalItems)

	page, info = Paginate(items, 3, 3)
	assert.Equal(t, []int{7}, page)
	assert.Equal(t, 3, info.CurrentPage)

	page, info = Paginate(items, 9, 3)
	assert.Empty(t, page)
	assert.Equal(t, 3, info.CurrentPage)
}

func TestPaginate_Empty(t *testing.T) {
	page, info := Paginate([]string{}, 1, 0)
	assert.Empty(t, page)
	assert.Equal(t, 1, info.TotalPages)
	assert.Equal(t, DefaultPageSize, info.PageSize)
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 2*time.Hour, ParseDuration("2h", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("soon", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("", time.Minute))
}
