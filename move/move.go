// Package move implements every concrete trial move and the shared Move
// contract the propagator and driver dispatch through. Moves never
// evaluate energy themselves; Move fills a Change and the driver's
// Hamiltonian does the rest.
package move

import (
	"github.com/molsim/mcengine/change"
	"github.com/molsim/mcengine/internal/rng"
	"github.com/molsim/mcengine/space"
)

// Move is the capability set every concrete move exposes: polymorphism
// over moves and energy terms via a narrow interface, dispatched through a
// table at simulation start rather than a class hierarchy.
type Move interface {
	Name() string

	// Propose picks a random sub-action, mutates trial in place, and
	// fills c. It must not evaluate energy.
	Propose(trial *space.Space, rng *rng.Pair, c *change.Change)

	// Bias returns the extra delta-U the Hamiltonian doesn't capture
	// (configurational-bias correction, volume-move isobaric term,
	// reaction +/-lnK). uold/unew are the Hamiltonian
	// energies of the accepted/trial states restricted to c.
	Bias(c *change.Change, uold, unew float64) float64

	// Accept/Reject update move-local statistics only; state
	// synchronization is the driver's job.
	Accept(c *change.Change)
	Reject(c *change.Change)
}

// Stats tracks per-move acceptance counters, shared by embedding into each
// concrete move.
type Stats struct {
	Tried    int64
	Accepted int64
}

func (s *Stats) Accept() {
	s.Tried++
	s.Accepted++
}

func (s *Stats) Reject() {
	s.Tried++
}

// AcceptanceRatio returns Accepted/Tried, or 0 before any trial has run.
func (s *Stats) AcceptanceRatio() float64 {
	if s.Tried == 0 {
		return 0
	}
	return float64(s.Accepted) / float64(s.Tried)
}
