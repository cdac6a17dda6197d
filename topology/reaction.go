package topology

import "fmt"

// SpeciesRef names one side-of-reaction entry by molecule id (for an
// atomic species, the id of its atomic reservoir molecule), with a
// stoichiometric multiplicity.
type SpeciesRef struct {
	Molecule MoleculeID
	Count    int
}

// Reaction is one row of the reaction table: reactants ⇌ products, with
// the equilibrium constant expressed as lnK (natural log, matching the
// config surface), a canonic reservoir flag, and a swap flag.
type Reaction struct {
	Name       string
	Reactants  []SpeciesRef
	Products   []SpeciesRef
	LnK        float64
	Canonic    bool
	Swap       bool

	// NReservoir bounds total matter transferable under this reaction
	// when Canonic is set; it is mutated by the speciation move's
	// accept step and must never go negative.
	NReservoir int
}

// ReactionTable lists every configured reaction.
type ReactionTable struct {
	reactions []Reaction
}

func NewReactionTable() *ReactionTable {
	return &ReactionTable{}
}

// Add validates and appends a reaction. A swap reaction must have exactly
// one species of multiplicity 1 on each side.
func (t *ReactionTable) Add(r Reaction, mols *MoleculeTable) error {
	if len(r.Reactants) == 0 || len(r.Products) == 0 {
		return fmt.Errorf("reactionlist[%s]: both sides must be non-empty", r.Name)
	}
	if r.Swap {
		if len(r.Reactants) != 1 || len(r.Products) != 1 {
			return fmt.Errorf("reactionlist[%s]: swap reactions must have exactly one species per side", r.Name)
		}
		if r.Reactants[0].Count != 1 || r.Products[0].Count != 1 {
			return fmt.Errorf("reactionlist[%s]: multi-atom swaps are not supported", r.Name)
		}
	}
	for _, side := range [][]SpeciesRef{r.Reactants, r.Products} {
		for _, ref := range side {
			if _, ok := mols.ByID(ref.Molecule); !ok {
				return fmt.Errorf("reactionlist[%s]: unknown molecule id %d", r.Name, ref.Molecule)
			}
			if ref.Count <= 0 {
				return fmt.Errorf("reactionlist[%s]: non-positive multiplicity", r.Name)
			}
		}
	}
	if r.Canonic && r.NReservoir < 0 {
		return fmt.Errorf("reactionlist[%s]: canonic reservoir must start >= 0", r.Name)
	}
	t.reactions = append(t.reactions, r)
	return nil
}

func (t *ReactionTable) Len() int { return len(t.reactions) }

func (t *ReactionTable) At(i int) *Reaction { return &t.reactions[i] }

func (t *ReactionTable) All() []Reaction { return t.reactions }

// ByName returns a pointer into the live table for in-place mutation (e.g.
// restoring a checkpointed NReservoir), not a copy.
func (t *ReactionTable) ByName(name string) (*Reaction, bool) {
	for i := range t.reactions {
		if t.reactions[i].Name == name {
			return &t.reactions[i], true
		}
	}
	return nil, false
}
