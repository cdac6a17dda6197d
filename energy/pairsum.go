package energy

import (
	"github.com/molsim/mcengine/change"
	"github.com/molsim/mcengine/geometry"
	"github.com/molsim/mcengine/space"
)

// changedIndices returns the global particle indices c says changed. It is
// the shared incremental-summation helper every pair term uses to satisfy
// "restrict pair sums to particles touched by change".
func changedIndices(s *space.Space, c *change.Change) []int {
	var out []int
	for _, gc := range c.Groups {
		g := &s.Groups[gc.Index]
		if gc.All {
			for i := g.Begin; i < g.ActiveEnd(); i++ {
				out = append(out, i)
			}
			continue
		}
		for _, rel := range gc.RelIndex {
			if rel < g.Size { // slots past Size are inactive in this Space
				out = append(out, g.Begin+rel)
			}
		}
	}
	return out
}

// allActiveIndices lists every currently active particle index, used by
// terms reevaluating globally (change.All or change.DV).
func allActiveIndices(s *space.Space) []int {
	var out []int
	for i := range s.Groups {
		g := &s.Groups[i]
		for j := g.Begin; j < g.ActiveEnd(); j++ {
			out = append(out, j)
		}
	}
	return out
}

// pairSum computes sum_{i in subset, j active, j != i} f(i,j), counting
// each unordered pair once. subset may be a strict subset of all active
// particles (the incremental path) or equal to it (the global path); in
// the incremental path a pair where both i and j are in subset would
// double count if summed naively, so pairSum tracks which indices are
// "new" (in subset) vs "old" (active but not in subset) and only sums
// new-new pairs once and new-old pairs once, never old-old (those didn't
// change).
func pairSum(s *space.Space, subset []int, f func(i, j int) float64) float64 {
	inSubset := make(map[int]struct{}, len(subset))
	for _, i := range subset {
		inSubset[i] = struct{}{}
	}

	var total float64
	for gi := range subset {
		i := subset[gi]
		// new-new: pair with subsequent subset members only, to count once.
		for gj := gi + 1; gj < len(subset); gj++ {
			j := subset[gj]
			total += f(i, j)
		}
		// new-old: pair with every active particle not itself in subset.
		for k := range s.Groups {
			g := &s.Groups[k]
			for j := g.Begin; j < g.ActiveEnd(); j++ {
				if _, isNew := inSubset[j]; isNew {
					continue
				}
				total += f(i, j)
			}
		}
	}
	return total
}

// cellPairSum is pairSum restricted to candidates a geometry.CellList
// returns for each subset particle, for pair terms with a finite
// interaction range (hard-sphere contact, not the unbounded Debye-Huckel
// tail). cellSize must be at least the term's longest cutoff or the grid
// will silently miss in-range pairs across a cell boundary.
func cellPairSum(s *space.Space, subset []int, cellSize float64, f func(i, j int) float64) float64 {
	length := s.Geo.GetLength()
	cl := geometry.NewCellList([3]float64{length.X(), length.Y(), length.Z()}, cellSize)

	active := allActiveIndices(s)
	pos := make(map[int][3]float64, len(active))
	for _, idx := range active {
		p := s.Particles[idx].Pos
		arr := [3]float64{p.X(), p.Y(), p.Z()}
		pos[idx] = arr
		cl.Insert(idx, arr)
	}

	inSubset := make(map[int]struct{}, len(subset))
	for _, i := range subset {
		inSubset[i] = struct{}{}
	}

	var total float64
	counted := make(map[[2]int]struct{})
	for _, i := range subset {
		for _, j := range cl.Neighbors(pos[i]) {
			if j == i {
				continue
			}
			if _, jNew := inSubset[j]; jNew && j < i {
				continue // new-new pair already counted from j's side
			}
			key := [2]int{i, j}
			if i > j {
				key = [2]int{j, i}
			}
			if _, done := counted[key]; done {
				continue
			}
			counted[key] = struct{}{}
			total += f(i, j)
		}
	}
	return total
}
