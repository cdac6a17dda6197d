package energy

import (
	"github.com/molsim/mcengine/change"
	"github.com/molsim/mcengine/space"
)

// HardSphere rejects any configuration where two particles' radii overlap.
// Radii come from the atom table's Sigma field interpreted as a diameter,
// matching the sigma convention of a Lennard-Jones-style potential without
// needing the full LJ term to express hard-core exclusion.
//
// CellSize, when positive, buckets the pair search through a
// geometry.CellList instead of scanning every active particle: contact
// exclusion is a strictly finite-range interaction (no pair beyond the
// largest sigma sum can ever overlap), so a broadphase grid sized to that
// largest sigma sum never misses a true contact. Leave it zero for small
// systems where the grid's bookkeeping outweighs the O(N) scan it replaces.
type HardSphere struct {
	CellSize float64
}

func (HardSphere) Name() string { return "hardsphere" }

func (HardSphere) Internal(s *space.Space, groupIdx int) float64 { return 0 }

func (HardSphere) UpdateState(s *space.Space, c *change.Change) {}

func (h HardSphere) Energy(s *space.Space, c *change.Change) float64 {
	var subset []int
	if c.All || c.DV {
		subset = allActiveIndices(s)
	} else {
		subset = changedIndices(s, c)
	}
	if len(subset) == 0 {
		return 0
	}
	overlap := func(i, j int) float64 {
		pi, pj := &s.Particles[i], &s.Particles[j]
		ai, ok1 := s.Atoms.ByID(pi.ID)
		aj, ok2 := s.Atoms.ByID(pj.ID)
		if !ok1 || !ok2 || (ai.Sigma <= 0 && aj.Sigma <= 0) {
			return 0
		}
		minDist := 0.5 * (ai.Sigma + aj.Sigma)
		if s.Geo.Sqdist(pi.Pos, pj.Pos) < minDist*minDist {
			return Inf
		}
		return 0
	}
	if h.CellSize > 0 {
		return cellPairSum(s, subset, h.CellSize, overlap)
	}
	return pairSum(s, subset, overlap)
}
