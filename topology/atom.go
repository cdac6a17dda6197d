// Package topology holds the process-wide, immutable-after-load tables:
// atom traits, molecule templates (including rigid conformation
// libraries), and reactions. Once a simulation starts, the only field that
// mutates is each Reaction's NReservoir, which the speciation move updates
// on accept; everything else is only read by Space and the moves.
package topology

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/molsim/mcengine/particle"
)

// AtomType is one row of the atom table: id -> static traits.
type AtomType struct {
	ID      particle.AtomID
	Name    string
	Sigma   float64
	Epsilon float64
	Mass    float64
	Charge  float64 // template charge for freshly inserted particles
	Shape   particle.Shape
}

// AtomTable maps atom id to its traits. Built once at topology load and
// never mutated afterward.
type AtomTable struct {
	byID   map[particle.AtomID]AtomType
	byName map[string]particle.AtomID
}

func NewAtomTable() *AtomTable {
	return &AtomTable{
		byID:   make(map[particle.AtomID]AtomType),
		byName: make(map[string]particle.AtomID),
	}
}

// Add registers an atom type. Returns a ConfigError-shaped error if the
// name is already registered.
func (t *AtomTable) Add(a AtomType) error {
	if _, dup := t.byName[a.Name]; dup {
		return fmt.Errorf("atomlist: duplicate atom name %q", a.Name)
	}
	t.byID[a.ID] = a
	t.byName[a.Name] = a.ID
	return nil
}

func (t *AtomTable) ByID(id particle.AtomID) (AtomType, bool) {
	a, ok := t.byID[id]
	return a, ok
}

func (t *AtomTable) ByName(name string) (AtomType, bool) {
	id, ok := t.byName[name]
	if !ok {
		return AtomType{}, false
	}
	a, ok := t.byID[id]
	return a, ok
}

func (t *AtomTable) MustByID(id particle.AtomID) AtomType {
	a, ok := t.ByID(id)
	if !ok {
		panic(fmt.Sprintf("topology: unknown atom id %d", id))
	}
	return a
}

// All returns every registered atom type sorted by ID, for checkpointing.
func (t *AtomTable) All() []AtomType {
	out := make([]AtomType, 0, len(t.byID))
	for _, a := range t.byID {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// NewParticle instantiates a particle from this atom type's template,
// placed at pos. Used by insertion moves and initial topology load.
func (a AtomType) NewParticle(pos mgl64.Vec3) particle.Particle {
	return particle.Particle{
		ID:     a.ID,
		Pos:    pos,
		Charge: a.Charge,
		Shape:  a.Shape,
	}
}
