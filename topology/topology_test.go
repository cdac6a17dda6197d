package topology

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/molsim/mcengine/particle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomTableAddAndLookup(t *testing.T) {
	table := NewAtomTable()
	require.NoError(t, table.Add(AtomType{ID: 0, Name: "Na", Sigma: 2.0, Charge: 1}))

	at, ok := table.ByName("Na")
	require.True(t, ok)
	assert.Equal(t, particle.AtomID(0), at.ID)

	require.Error(t, table.Add(AtomType{ID: 1, Name: "Na"}), "duplicate name must be rejected")
}

func TestAtomTypeNewParticleUsesTemplateCharge(t *testing.T) {
	at := AtomType{ID: 5, Name: "Cl", Charge: -1}
	p := at.NewParticle(mgl64.Vec3{1, 2, 3})
	assert.Equal(t, -1.0, p.Charge)
	assert.Equal(t, particle.AtomID(5), p.ID)
}

func TestMoleculeTableRejectsMultiAtomAtomicSpecies(t *testing.T) {
	table := NewMoleculeTable()
	err := table.Add(MoleculeType{ID: 0, Name: "bad", Atomic: true, AtomIDs: []particle.AtomID{0, 1}})
	require.Error(t, err)
}

func TestPickConformationRespectsWeights(t *testing.T) {
	mt := MoleculeType{Confs: []Conformation{
		{RelPos: [][3]float64{{0, 0, 0}}, Weight: 1},
		{RelPos: [][3]float64{{0, 0, 0}}, Weight: 3},
	}}
	// Total weight 4: u in [0, 0.25] picks conf 0, (0.25, 1) picks conf 1.
	assert.Equal(t, 0, mt.PickConformation(0.1))
	assert.Equal(t, 1, mt.PickConformation(0.9))
}

func TestReactionTableAddValidatesSwapShape(t *testing.T) {
	mols := NewMoleculeTable()
	require.NoError(t, mols.Add(MoleculeType{ID: 0, Name: "HA", Atomic: true, AtomIDs: []particle.AtomID{0}}))
	require.NoError(t, mols.Add(MoleculeType{ID: 1, Name: "A", Atomic: true, AtomIDs: []particle.AtomID{1}}))
	require.NoError(t, mols.Add(MoleculeType{ID: 2, Name: "H", Atomic: true, AtomIDs: []particle.AtomID{2}}))

	table := NewReactionTable()
	bad := Reaction{
		Name:      "bad-swap",
		Swap:      true,
		Reactants: []SpeciesRef{{Molecule: 0, Count: 2}},
		Products:  []SpeciesRef{{Molecule: 1, Count: 1}},
	}
	require.Error(t, table.Add(bad, mols), "swap reaction with multiplicity != 1 must be rejected")

	good := Reaction{
		Name:      "HA<=>A+H",
		Reactants: []SpeciesRef{{Molecule: 0, Count: 1}},
		Products:  []SpeciesRef{{Molecule: 1, Count: 1}, {Molecule: 2, Count: 1}},
		LnK:       -5,
	}
	require.NoError(t, table.Add(good, mols))
	assert.Equal(t, 1, table.Len())
}

func TestReactionTableRejectsUnknownMolecule(t *testing.T) {
	mols := NewMoleculeTable()
	table := NewReactionTable()
	r := Reaction{
		Name:      "ghost",
		Reactants: []SpeciesRef{{Molecule: 99, Count: 1}},
		Products:  []SpeciesRef{{Molecule: 98, Count: 1}},
	}
	require.Error(t, table.Add(r, mols))
}
