package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginator_Clamp(t *testing.T) {
	p := NewPaginator(1, 7)

	assert.Equal(t, 1, p.GoToPage(0), "below range clamps to first page")
	assert.Equal(t, 1, p.GoToPage(-3))
	assert.Equal(t, 7, p.GoToPage(12), "above range clamps to last page")
	assert.Equal(t, 4, p.GoToPage(4))
}

func TestPaginator_Target(t *testing.T) {
	p := NewPaginator(2, 5)

	assert.Equal(t, 5, p.Target(9))
	assert.Equal(t, 1, p.Target(0))
	assert.Equal(t, 3, p.Target(3))
	assert.Equal(t, 2, p.Page(), "Target never moves the paginator")
}

func TestPaginator_NextPrev(t *testing.T) {
	p := NewPaginator(1, 3)

	assert.False(t, p.PrevPage(), "prev on first page is a no-op")
	assert.Equal(t, 1, p.Page())

	assert.True(t, p.NextPage())
	assert.True(t, p.NextPage())
	assert.Equal(t, 3, p.Page())

	assert.False(t, p.NextPage(), "next on last page is a no-op")
	assert.Equal(t, 3, p.Page())

	assert.True(t, p.PrevPage())
	assert.Equal(t, 2, p.Page())
}

func TestPaginator_SingleAndEmpty(t *testing.T) {
	single := NewPaginator(1, 1)
	assert.False(t, single.HasNextPage())
	assert.False(t, single.HasPrevPage())

	// Zero total pages: stay pinned to page 1 with nowhere to go.
	empty := NewPaginator(5, 0)
	assert.Equal(t, 5, empty.Page())
	assert.False(t, empty.HasNextPage())

	empty.SetTotalPages(2)
	assert.Equal(t, 2, empty.Page(), "re-clamped after the page count arrives")
}
