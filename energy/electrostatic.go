package energy

import (
	"math"

	"github.com/molsim/mcengine/change"
	"github.com/molsim/mcengine/space"
)

// DebyeHuckel is a screened-Coulomb pair term in units of kT:
// u(r) = Bjerrum * q_i * q_j * exp(-kappa*r) / r. kappa=0 recovers bare
// Coulomb. This is the minimal electrostatics needed to run the salt
// dissociation and acid/base scenarios end to end; a real simulation
// would swap this for an Ewald or reaction-field collaborator behind the
// same Term interface.
type DebyeHuckel struct {
	Bjerrum float64
	Kappa   float64
}

func (DebyeHuckel) Name() string { return "debyehuckel" }

func (DebyeHuckel) Internal(s *space.Space, groupIdx int) float64 { return 0 }

func (DebyeHuckel) UpdateState(s *space.Space, c *change.Change) {}

func (d DebyeHuckel) Energy(s *space.Space, c *change.Change) float64 {
	var subset []int
	if c.All || c.DV {
		subset = allActiveIndices(s)
	} else {
		subset = changedIndices(s, c)
	}
	if len(subset) == 0 {
		return 0
	}
	return pairSum(s, subset, func(i, j int) float64 {
		pi, pj := &s.Particles[i], &s.Particles[j]
		if pi.Charge == 0 || pj.Charge == 0 {
			return 0
		}
		r := math.Sqrt(s.Geo.Sqdist(pi.Pos, pj.Pos))
		if r <= 0 {
			return Inf
		}
		screen := 1.0
		if d.Kappa > 0 {
			screen = math.Exp(-d.Kappa * r)
		}
		return d.Bjerrum * pi.Charge * pj.Charge * screen / r
	})
}
