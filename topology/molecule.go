package topology

import (
	"fmt"
	"sort"

	"github.com/molsim/mcengine/particle"
)

// MoleculeID indexes into the molecule table.
type MoleculeID int

// Bond is a harmonic (or otherwise pluggable) intramolecular bond between
// two atom slots local to a molecule's constituent list.
type Bond struct {
	I, J     int // indices into MoleculeType.AtomIDs
	K        float64
	Req      float64
}

// Conformation is one entry in a molecule's rigid-conformation library:
// atom positions relative to the molecule's mass-center, and optionally a
// per-conformation charge set (for conformations that also change
// protonation state, as some library-style insertion schemes do).
type Conformation struct {
	RelPos  [][3]float64 // len == len(MoleculeType.AtomIDs)
	Charges []float64    // optional override, same length or nil
	Weight  float64
}

// InsertionPolicy controls how newly activated copies of a molecule are
// placed; the core only needs to know whether placement is random-uniform
// (the only policy the reactive move and the grand-canonical scenarios
// require) versus templated at a fixed site.
type InsertionPolicy int

const (
	InsertRandom InsertionPolicy = iota
	InsertFixed
)

// MoleculeType is one row of the molecule table.
type MoleculeType struct {
	ID       MoleculeID
	Name     string
	Atomic   bool // true: one group is a reservoir of this atom id
	AtomIDs  []particle.AtomID
	Bonds    []Bond
	Confs    []Conformation // rigid-conformation library with weights
	Insert   InsertionPolicy
}

// MoleculeTable maps molecule id to its definition.
type MoleculeTable struct {
	byID   map[MoleculeID]MoleculeType
	byName map[string]MoleculeID
}

func NewMoleculeTable() *MoleculeTable {
	return &MoleculeTable{
		byID:   make(map[MoleculeID]MoleculeType),
		byName: make(map[string]MoleculeID),
	}
}

func (t *MoleculeTable) Add(m MoleculeType) error {
	if _, dup := t.byName[m.Name]; dup {
		return fmt.Errorf("moleculelist: duplicate molecule name %q", m.Name)
	}
	if m.Atomic && len(m.AtomIDs) != 1 {
		return fmt.Errorf("moleculelist: atomic molecule %q must declare exactly one atom id", m.Name)
	}
	t.byID[m.ID] = m
	t.byName[m.Name] = m.ID
	return nil
}

func (t *MoleculeTable) ByID(id MoleculeID) (MoleculeType, bool) {
	m, ok := t.byID[id]
	return m, ok
}

func (t *MoleculeTable) ByName(name string) (MoleculeType, bool) {
	id, ok := t.byName[name]
	if !ok {
		return MoleculeType{}, false
	}
	m, ok := t.byID[id]
	return m, ok
}

func (t *MoleculeTable) MustByID(id MoleculeID) MoleculeType {
	m, ok := t.ByID(id)
	if !ok {
		panic(fmt.Sprintf("topology: unknown molecule id %d", id))
	}
	return m
}

// ByAtomicSpecies finds the atomic molecule type (Atomic==true) hosting
// atomID, i.e. the one whose single AtomIDs entry is atomID. A speciation
// swap move flips a reservoir slot's stored atom id in place without
// relocating it to a different group, so a caller displaying that slot's
// current species (rather than the group's original species) needs this
// reverse lookup instead of ByID.
func (t *MoleculeTable) ByAtomicSpecies(atomID particle.AtomID) (MoleculeType, bool) {
	for _, m := range t.byID {
		if m.Atomic && len(m.AtomIDs) == 1 && m.AtomIDs[0] == atomID {
			return m, true
		}
	}
	return MoleculeType{}, false
}

// All returns every registered molecule type sorted by ID, for
// checkpointing.
func (t *MoleculeTable) All() []MoleculeType {
	out := make([]MoleculeType, 0, len(t.byID))
	for _, m := range t.byID {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// PickConformation draws a conformation index weighted by Confs[i].Weight.
func (m MoleculeType) PickConformation(u float64) int {
	if len(m.Confs) == 0 {
		return -1
	}
	var total float64
	for _, c := range m.Confs {
		total += c.Weight
	}
	target := u * total
	var acc float64
	for i, c := range m.Confs {
		acc += c.Weight
		if target <= acc {
			return i
		}
	}
	return len(m.Confs) - 1
}
