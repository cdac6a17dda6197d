// Package group implements Group: a contiguous, resizable-within-capacity
// window over Space's flat particle array, representing one molecule or
// one atomic reservoir.
package group

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/molsim/mcengine/topology"
)

// Filter selects which groups findMolecules should yield.
type Filter int

const (
	Active Filter = iota // size > 0
	Inactive              // size == 0
	All
)

// Group is a [Begin, Begin+Capacity) window into Space's particle slice.
// Capacity is fixed at allocation; Size is the number of *active* slots at
// the front of the window -- for a molecular group Size is always 0 or
// Capacity, for an atomic reservoir it is anything in between.
type Group struct {
	Molecule topology.MoleculeID
	Begin    int
	Capacity int
	Size     int

	Atomic bool // true: atomic reservoir, false: molecular group

	CM          mgl64.Vec3 // mass-center, meaningful only while Size>0 and !Atomic
	Orientation mgl64.Quat // accumulated rigid-body rotation; see Rotation
	ConfID      int        // last-assigned conformation index, for molecular groups
}

// Rotation returns g.Orientation, treating the Go zero value (an invalid,
// non-unit quaternion no rotation ever produces) as the identity rotation.
// This lets every existing Group literal -- tests, topology population,
// restored checkpoints predating this field -- start unrotated without
// each call site having to remember to set Orientation explicitly.
func (g *Group) Rotation() mgl64.Quat {
	if g.Orientation.W == 0 && g.Orientation.V == (mgl64.Vec3{}) {
		return mgl64.QuatIdent()
	}
	return g.Orientation
}

// End returns the exclusive end of the window.
func (g *Group) End() int { return g.Begin + g.Capacity }

// ActiveEnd returns the exclusive end of the *active* sub-window.
func (g *Group) ActiveEnd() int { return g.Begin + g.Size }

// IsActive reports whether the group currently has any active particles.
// For molecular groups this is equivalent to "fully active".
func (g *Group) IsActive() bool { return g.Size > 0 }

// MatchesFilter reports whether the group satisfies f.
func (g *Group) MatchesFilter(f Filter) bool {
	switch f {
	case Active:
		return g.Size > 0
	case Inactive:
		return g.Size == 0
	case All:
		return true
	default:
		return false
	}
}

// Contains reports whether the global particle index i falls inside this
// group's window (active or not).
func (g *Group) Contains(i int) bool {
	return i >= g.Begin && i < g.End()
}

// RelIndex converts a global particle index into an index relative to
// Begin. Panics if i is outside the window -- a programmer error.
func (g *Group) RelIndex(i int) int {
	if !g.Contains(i) {
		panic(fmt.Sprintf("group: index %d outside window [%d,%d)", i, g.Begin, g.End()))
	}
	return i - g.Begin
}

// Activate sets the group's Size to n: a molecular group goes from inactive
// to fully active (n must equal Capacity), an atomic group takes any n in
// [0, Capacity].
func (g *Group) Activate(n int) {
	if !g.Atomic && n != g.Capacity {
		panic("group: molecular group size must be 0 or Capacity")
	}
	if n < 0 || n > g.Capacity {
		panic("group: size out of range")
	}
	g.Size = n
}

// Deactivate sets Size to 0 (for a molecular group, the only legal
// deactivated state).
func (g *Group) Deactivate() {
	g.Size = 0
}
