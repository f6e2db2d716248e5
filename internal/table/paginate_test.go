package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestPaginateEmpty(t *testing.T) {
	for _, page := range []int{-3, 0, 1, 7} {
		for _, size := range []int{1, 10, 50} {
			got := Paginate([]int{}, page, size)
			assert.Equal(t, 1, got.PageCount)
			assert.Equal(t, 1, got.Page)
			assert.Equal(t, 0, got.Total)
			assert.Empty(t, got.Items)
			assert.NotNil(t, got.Items)
		}
	}
}

func TestPaginateClampsPage(t *testing.T) {
	items := seq(23)

	got := Paginate(items, 0, 10)
	assert.Equal(t, 1, got.Page)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, got.Items)

	got = Paginate(items, 99, 10)
	assert.Equal(t, 3, got.Page)
	assert.Equal(t, 3, got.PageCount)
	assert.Equal(t, []int{21, 22, 23}, got.Items)
}

func TestPaginatePageSizeShrink(t *testing.T) {
	items := seq(30)
	got := Paginate(items, 3, 25)
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, 2, got.PageCount)
	assert.Len(t, got.Items, 5)
}

func TestPaginateNonPositiveSizeUsesDefault(t *testing.T) {
	got := Paginate(seq(12), 1, 0)
	assert.Len(t, got.Items, DefaultPageSize)
	assert.Equal(t, 2, got.PageCount)
}

func TestPaginateConcatenationReconstructsInput(t *testing.T) {
	for _, n := range []int{0, 1, 9, 10, 11, 49, 50, 51, 137} {
		for _, size := range []int{1, 3, 10, 25, 50} {
			items := seq(n)
			first := Paginate(items, 1, size)
			var joined []int
			for p := 1; p <= first.PageCount; p++ {
				page := Paginate(items, p, size)
				require.LessOrEqual(t, len(page.Items), size)
				require.Equal(t, p, page.Page)
				joined = append(joined, page.Items...)
			}
			if n == 0 {
				assert.Empty(t, joined)
				continue
			}
			assert.Equal(t, items, joined, "n=%d size=%d", n, size)
		}
	}
}

func TestPaginateDoesNotAliasInput(t *testing.T) {
	items := seq(5)
	got := Paginate(items, 1, 2)
	got.Items[0] = 99
	assert.Equal(t, 1, items[0])
}

func TestPageNavigation(t *testing.T) {
	got := Paginate(seq(21), 2, 10)
	assert.True(t, got.HasPrev())
	assert.True(t, got.HasNext())
	last := Paginate(seq(21), 3, 10)
	assert.False(t, last.HasNext())
}
