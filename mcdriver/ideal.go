package mcdriver

import (
	"math"

	"github.com/molsim/mcengine/change"
	"github.com/molsim/mcengine/space"
)

// idealTerm computes the ideal-gas correction for a particle-count-
// changing move: -sum_species ln( Nold! / Nnew! * V^(Nnew-Nold) ), using
// lgamma so the factorials never literally overflow even for a large
// reservoir. It is what lets insertion/deletion moves equilibrate to a
// configured activity instead of to an arbitrary reference state.
//
// It is symmetric under swapping (trial, accepted) and the implied
// negation of every species' (Nnew-Nold): the lgamma difference and the
// volume-power term both flip sign, so idealTerm(trial, accepted, c) ==
// -idealTerm(accepted, trial, c).
func idealTerm(accepted, trial *space.Space, c *change.Change) float64 {
	if !c.DN || len(c.DeltaN) == 0 {
		return 0
	}
	V := trial.Geo.GetVolume()
	var total float64
	for molID := range c.DeltaN {
		Nold := accepted.CountActive(molID)
		Nnew := trial.CountActive(molID)
		if Nold == Nnew {
			continue
		}
		lgOld, _ := math.Lgamma(float64(Nold) + 1)
		lgNew, _ := math.Lgamma(float64(Nnew) + 1)
		total += -((lgOld - lgNew) + float64(Nnew-Nold)*math.Log(V))
	}
	return total
}
