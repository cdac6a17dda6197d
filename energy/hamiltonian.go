// Package energy implements the Term interface, the Hamiltonian dispatch,
// and two concrete terms (hard-sphere overlap, screened Coulomb) needed to
// run end-to-end simulations without an external pair-potential library.
// The concrete pair-potential zoo is otherwise out of scope; Term is the
// only contract real potentials need to satisfy.
package energy

import (
	"math"

	"github.com/molsim/mcengine/change"
	"github.com/molsim/mcengine/space"
)

// Term is the capability every energy contribution exposes. energy(change)
// must restrict its pair sum to particles mentioned in change unless
// change.All or change.DV is set, in which case it must reevaluate
// globally. A term untouched by change may return 0 without inspecting
// anything else.
type Term interface {
	Name() string
	Energy(s *space.Space, c *change.Change) float64
	// Internal returns the self-energy of a single group -- used by
	// grand-canonical/speciation corrections for matter that has no
	// representation in the main pair sum while inactive.
	Internal(s *space.Space, groupIdx int) float64
	// UpdateState refreshes any term-local cache (e.g. a structure
	// factor) after a change has been accepted. Most terms no-op.
	UpdateState(s *space.Space, c *change.Change)
}

// Inf is the sentinel the core treats as "reject this move unconditionally"
// -- returned by terms on hard overlap or on non-finite overflow.
var Inf = math.Inf(1)

// Hamiltonian is an ordered list of terms; Energy sums them, short-
// circuiting to Inf the moment any term returns a non-finite value.
type Hamiltonian struct {
	Terms []Term
}

func New(terms ...Term) *Hamiltonian {
	return &Hamiltonian{Terms: terms}
}

// Energy sums every term's contribution over c. Non-finite values
// (overflow, or a term's own Inf sentinel) propagate as Inf rather than
// NaN, so the acceptance test always sees a well-ordered comparison.
func (h *Hamiltonian) Energy(s *space.Space, c *change.Change) float64 {
	var total float64
	for _, t := range h.Terms {
		e := t.Energy(s, c)
		if math.IsInf(e, 0) || math.IsNaN(e) {
			return Inf
		}
		total += e
	}
	return total
}

// Internal sums every term's internal self-energy for one group. The
// speciation move does not call it: the bonded energy of molecules that
// appear or disappear already enters uNew-uOld through Bonded.Energy.
func (h *Hamiltonian) Internal(s *space.Space, groupIdx int) float64 {
	var total float64
	for _, t := range h.Terms {
		total += t.Internal(s, groupIdx)
	}
	return total
}

// UpdateState notifies every term that c has been accepted.
func (h *Hamiltonian) UpdateState(s *space.Space, c *change.Change) {
	for _, t := range h.Terms {
		t.UpdateState(s, c)
	}
}
