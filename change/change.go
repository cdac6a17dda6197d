// Package change implements the Change descriptor: a structured summary of
// what a move altered since the last accepted state. Energy terms use it
// to restrict pair sums; the driver uses it to sync the accepted/trial
// Space pair in O(|change|) instead of O(N).
package change

import (
	"sort"

	"github.com/molsim/mcengine/topology"
)

// GroupChange records what happened inside one group.
type GroupChange struct {
	Index int // group index in Space's group slice

	All          bool // every particle in the group changed (conformation swap, full rotation, deletion/insertion of a molecular group)
	Internal     bool // change affects the group's internal (intra-group) energy terms, e.g. a single-atom move inside a molecule
	AtomicCountChanged bool // the group's active size changed (atomic reservoir grow/shrink)

	// RelIndex lists relative atom indices into this group that changed,
	// sorted ascending. Energy terms intersect against this list, so the
	// ordering is a hard requirement, not just tidiness.
	RelIndex []int
}

// AddAtom records that the atom at relative index idx changed, keeping
// RelIndex sorted and deduplicated.
func (g *GroupChange) AddAtom(idx int) {
	i := sort.SearchInts(g.RelIndex, idx)
	if i < len(g.RelIndex) && g.RelIndex[i] == idx {
		return
	}
	g.RelIndex = append(g.RelIndex, 0)
	copy(g.RelIndex[i+1:], g.RelIndex[i:])
	g.RelIndex[i] = idx
}

// Change is the full descriptor passed from a move to the Hamiltonian and
// to Space.Sync.
type Change struct {
	DV    bool // the cell volume changed
	All   bool // every particle in every group changed (full re-evaluation required)
	DN    bool // the total particle count changed (speciation insertion/deletion)

	Groups []GroupChange // sorted by Index; required by energy terms

	// DeltaN records, per species touched by a particle-count-changing
	// move, that its count changed (the sign and magnitude are re-derived
	// by recounting accepted vs. trial Space -- this map only says which
	// species to recount). Only meaningful when DN is set.
	DeltaN map[topology.MoleculeID]struct{}
}

// TouchSpecies records that molID's count changed in this Change.
func (c *Change) TouchSpecies(molID topology.MoleculeID) {
	if c.DeltaN == nil {
		c.DeltaN = make(map[topology.MoleculeID]struct{})
	}
	c.DeltaN[molID] = struct{}{}
}

// Clear resets c to "no change", reusing its backing storage.
func (c *Change) Clear() {
	c.DV = false
	c.All = false
	c.DN = false
	c.Groups = c.Groups[:0]
	c.DeltaN = nil
}

// Empty reports whether nothing changed -- the sentinel a move returns on
// an expected rejection (e.g. speciation infeasibility).
func (c *Change) Empty() bool {
	return !c.DV && !c.All && !c.DN && len(c.Groups) == 0
}

// Group returns a pointer to the GroupChange entry for group index idx,
// creating one (in sorted position) if it doesn't exist yet.
func (c *Change) Group(idx int) *GroupChange {
	i := sort.Search(len(c.Groups), func(i int) bool { return c.Groups[i].Index >= idx })
	if i < len(c.Groups) && c.Groups[i].Index == idx {
		return &c.Groups[i]
	}
	c.Groups = append(c.Groups, GroupChange{})
	copy(c.Groups[i+1:], c.Groups[i:])
	c.Groups[i] = GroupChange{Index: idx}
	return &c.Groups[i]
}

// Sort orders per-group entries by Index and their RelIndex lists
// ascending. Groups built exclusively through Group/AddAtom are already in
// this order; Sort exists for code paths (mainly the reactive move) that
// build several GroupChange values before assembling the final Change.
func (c *Change) Sort() {
	sort.Slice(c.Groups, func(i, j int) bool { return c.Groups[i].Index < c.Groups[j].Index })
	for i := range c.Groups {
		sort.Ints(c.Groups[i].RelIndex)
	}
}

// TouchesGroup reports whether group idx is mentioned at all -- either
// because DV/All is set (every group is implicitly touched) or because it
// has its own GroupChange entry.
func (c *Change) TouchesGroup(idx int) bool {
	if c.All || c.DV {
		return true
	}
	i := sort.Search(len(c.Groups), func(i int) bool { return c.Groups[i].Index >= idx })
	return i < len(c.Groups) && c.Groups[i].Index == idx
}
