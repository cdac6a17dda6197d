package energy

import (
	"github.com/molsim/mcengine/change"
	"github.com/molsim/mcengine/space"
)

// Bonded sums harmonic intramolecular bonds declared in the molecule
// table. It is the "internal-only energy term" the change descriptor's
// Internal flag exists for: a single-atom move inside a rigid molecule
// only needs its own group's bonds recomputed, never the full system.
type Bonded struct{}

func (Bonded) Name() string { return "bonded" }

func (Bonded) UpdateState(s *space.Space, c *change.Change) {}

// Energy recomputes the bond energy of every group that the change
// touches (All, Internal, or with any changed atom), plus, on a global
// reevaluation, every group in the system.
func (b Bonded) Energy(s *space.Space, c *change.Change) float64 {
	if c.All || c.DV {
		var total float64
		for gi := range s.Groups {
			total += b.Internal(s, gi)
		}
		return total
	}
	var total float64
	for _, gc := range c.Groups {
		if gc.All || gc.Internal || len(gc.RelIndex) > 0 {
			total += b.Internal(s, gc.Index)
		}
	}
	return total
}

// Internal computes one group's own bond energy: 0 if the group is
// inactive, atomic (no bonds), or its molecule type declares none.
func (Bonded) Internal(s *space.Space, groupIdx int) float64 {
	g := &s.Groups[groupIdx]
	if g.Size == 0 || g.Atomic {
		return 0
	}
	mt, ok := s.Molecules.ByID(g.Molecule)
	if !ok || len(mt.Bonds) == 0 {
		return 0
	}
	var total float64
	for _, bond := range mt.Bonds {
		pi := s.Particles[g.Begin+bond.I]
		pj := s.Particles[g.Begin+bond.J]
		d := s.Geo.Vdist(pi.Pos, pj.Pos).Len()
		dr := d - bond.Req
		total += 0.5 * bond.K * dr * dr
	}
	return total
}
