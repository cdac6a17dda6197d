package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNeighborsFindsSameCellInsert(t *testing.T) {
	g := NewCellList([3]float64{10, 10, 10}, 2)
	g.Insert(0, [3]float64{0, 0, 0})
	g.Insert(1, [3]float64{0.1, 0, 0})
	assert.ElementsMatch(t, []int{0, 1}, g.Neighbors([3]float64{0, 0, 0}))
}

func TestNeighborsWrapsAcrossPeriodicBoundary(t *testing.T) {
	g := NewCellList([3]float64{10, 10, 10}, 2)
	g.Insert(0, [3]float64{4.9, 0, 0})
	// -4.9 sits in the cell adjacent to 4.9's across the periodic seam.
	found := g.Neighbors([3]float64{-4.9, 0, 0})
	assert.Contains(t, found, 0)
}

func TestNeighborsExcludesDistantCell(t *testing.T) {
	g := NewCellList([3]float64{20, 20, 20}, 2)
	g.Insert(0, [3]float64{9, 9, 9})
	assert.NotContains(t, g.Neighbors([3]float64{0, 0, 0}), 0)
}

func TestClearEmptiesBuckets(t *testing.T) {
	g := NewCellList([3]float64{10, 10, 10}, 2)
	g.Insert(0, [3]float64{0, 0, 0})
	g.Clear()
	assert.Empty(t, g.Neighbors([3]float64{0, 0, 0}))
}

func TestNewCellListRejectsNonPositiveCellSize(t *testing.T) {
	g := NewCellList([3]float64{10, 10, 10}, 0)
	// falls back to a cell size of 1 rather than dividing by zero.
	g.Insert(0, [3]float64{0, 0, 0})
	assert.Contains(t, g.Neighbors([3]float64{0, 0, 0}), 0)
}
