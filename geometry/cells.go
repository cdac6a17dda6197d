package geometry

// CellList buckets particle indices into a uniform 3D grid so energy terms
// that only need short-ranged pairs can skip the N^2 sweep. It stores plain
// indices, not positions -- callers look positions up themselves, the same
// division of responsibility as a broadphase grid that only ever sees
// opaque ids and leaves exact-distance filtering to the caller.
type CellList struct {
	cellSize float64
	length   [3]float64
	cells    map[[3]int][]int
}

// NewCellList builds an empty grid over a cell of the given side lengths
// with buckets of side cellSize. cellSize should be >= the longest cutoff
// any term using this list intends to query.
func NewCellList(length [3]float64, cellSize float64) *CellList {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &CellList{
		cellSize: cellSize,
		length:   length,
		cells:    make(map[[3]int][]int),
	}
}

// Clear empties all buckets without discarding the backing map.
func (g *CellList) Clear() {
	for k := range g.cells {
		delete(g.cells, k)
	}
}

// Insert buckets particle index idx at position pos (already wrapped into
// the primary image).
func (g *CellList) Insert(idx int, pos [3]float64) {
	key := g.cellIndex(pos)
	g.cells[key] = append(g.cells[key], idx)
}

// Neighbors returns every bucketed index within the 3x3x3 block of cells
// centered on pos, including pos's own cell and wrapping across periodic
// boundaries. The caller still must apply an exact cutoff test.
func (g *CellList) Neighbors(pos [3]float64) []int {
	cx, cy, cz := g.cellCoords(pos)
	nx, ny, nz := g.cellCount(0), g.cellCount(1), g.cellCount(2)

	var out []int
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				key := [3]int{
					wrapCell(cx+dx, nx),
					wrapCell(cy+dy, ny),
					wrapCell(cz+dz, nz),
				}
				out = append(out, g.cells[key]...)
			}
		}
	}
	return out
}

func (g *CellList) cellCoords(pos [3]float64) (int, int, int) {
	return g.axisCell(pos, 0), g.axisCell(pos, 1), g.axisCell(pos, 2)
}

// cellCount is the number of cells along axis a: as many as fit while each
// stays at least cellSize wide, and never fewer than one.
func (g *CellList) cellCount(a int) int { return max(1, int(g.length[a]/g.cellSize)) }

// axisCell maps pos onto one of cellCount(a) equal-width cells along axis a.
func (g *CellList) axisCell(pos [3]float64, a int) int {
	n := g.cellCount(a)
	return wrapCell(int((pos[a]+g.length[a]/2)*float64(n)/g.length[a]), n)
}

func (g *CellList) cellIndex(pos [3]float64) [3]int {
	cx, cy, cz := g.cellCoords(pos)
	return [3]int{cx, cy, cz}
}

func wrapCell(i, n int) int {
	if n <= 0 {
		return 0
	}
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
