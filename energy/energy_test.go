package energy

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/molsim/mcengine/change"
	"github.com/molsim/mcengine/geometry"
	"github.com/molsim/mcengine/group"
	"github.com/molsim/mcengine/particle"
	"github.com/molsim/mcengine/space"
	"github.com/molsim/mcengine/topology"
	"github.com/stretchr/testify/assert"
)

func twoAtomSpace(sep float64, q1, q2, sigma float64) *space.Space {
	geo := geometry.NewCube(100)
	atoms := topology.NewAtomTable()
	_ = atoms.Add(topology.AtomType{ID: 0, Name: "A", Sigma: sigma, Charge: q1})
	_ = atoms.Add(topology.AtomType{ID: 1, Name: "B", Sigma: sigma, Charge: q2})
	mols := topology.NewMoleculeTable()
	s := space.New(geo, atoms, mols)
	s.Particles = []particle.Particle{
		{ID: 0, Pos: mgl64.Vec3{0, 0, 0}, Charge: q1},
		{ID: 1, Pos: mgl64.Vec3{sep, 0, 0}, Charge: q2},
	}
	s.Groups = []group.Group{
		{Molecule: 0, Begin: 0, Capacity: 1, Size: 1, Atomic: true},
		{Molecule: 1, Begin: 1, Capacity: 1, Size: 1, Atomic: true},
	}
	return s
}

func changeBoth() *change.Change {
	var c change.Change
	c.Group(0).AddAtom(0)
	c.Group(1).AddAtom(0)
	return &c
}

func TestHardSphereRejectsOverlap(t *testing.T) {
	s := twoAtomSpace(0.5, 0, 0, 2.0)
	hs := HardSphere{}
	e := hs.Energy(s, changeBoth())
	assert.True(t, math.IsInf(e, 1))
}

func TestHardSphereAllowsSeparatedParticles(t *testing.T) {
	s := twoAtomSpace(5.0, 0, 0, 2.0)
	hs := HardSphere{}
	e := hs.Energy(s, changeBoth())
	assert.Equal(t, 0.0, e)
}

func TestHardSphereCellListMatchesBruteForce(t *testing.T) {
	overlap := twoAtomSpace(0.5, 0, 0, 2.0)
	assert.True(t, math.IsInf(HardSphere{CellSize: 2.0}.Energy(overlap, changeBoth()), 1))

	clear := twoAtomSpace(5.0, 0, 0, 2.0)
	assert.Equal(t, 0.0, HardSphere{CellSize: 2.0}.Energy(clear, changeBoth()))
}

func TestHardSphereCellListFindsOverlapAcrossManyParticles(t *testing.T) {
	geo := geometry.NewCube(30)
	atoms := topology.NewAtomTable()
	_ = atoms.Add(topology.AtomType{ID: 0, Name: "A", Sigma: 1.0})
	mols := topology.NewMoleculeTable()
	s := space.New(geo, atoms, mols)
	s.Particles = []particle.Particle{
		{ID: 0, Pos: mgl64.Vec3{0, 0, 0}},
		{ID: 0, Pos: mgl64.Vec3{10, 10, 10}},
		{ID: 0, Pos: mgl64.Vec3{0.2, 0, 0}}, // overlaps particle 0, far from particle 1
	}
	s.Groups = []group.Group{
		{Molecule: 0, Begin: 0, Capacity: 3, Size: 3, Atomic: true},
	}
	var c change.Change
	c.Group(0).All = true

	withGrid := HardSphere{CellSize: 1.0}.Energy(s, &c)
	withoutGrid := HardSphere{}.Energy(s, &c)
	assert.True(t, math.IsInf(withGrid, 1))
	assert.Equal(t, withoutGrid, withGrid, "the broadphase grid must find every overlap the brute-force scan does")
}

func TestDebyeHuckelMatchesBareCoulombWithZeroKappa(t *testing.T) {
	s := twoAtomSpace(2.0, 1, -1, 0)
	dh := DebyeHuckel{Bjerrum: 7.0, Kappa: 0}
	e := dh.Energy(s, changeBoth())
	assert.InDelta(t, -3.5, e, 1e-9)
}

func TestDebyeHuckelScreeningReducesMagnitude(t *testing.T) {
	s := twoAtomSpace(2.0, 1, -1, 0)
	bare := DebyeHuckel{Bjerrum: 7.0, Kappa: 0}.Energy(s, changeBoth())
	screened := DebyeHuckel{Bjerrum: 7.0, Kappa: 1.0}.Energy(s, changeBoth())
	assert.Less(t, math.Abs(screened), math.Abs(bare))
}

func TestDebyeHuckelSkipsNeutralPairs(t *testing.T) {
	s := twoAtomSpace(2.0, 0, 0, 0)
	dh := DebyeHuckel{Bjerrum: 7.0}
	assert.Equal(t, 0.0, dh.Energy(s, changeBoth()))
}

func TestHamiltonianShortCircuitsOnInf(t *testing.T) {
	s := twoAtomSpace(0.1, 1, -1, 2.0)
	h := New(HardSphere{}, DebyeHuckel{Bjerrum: 7.0})
	e := h.Energy(s, changeBoth())
	assert.True(t, math.IsInf(e, 1), "hard-sphere overlap must dominate any finite electrostatic term")
}

func TestHamiltonianSumsFiniteTerms(t *testing.T) {
	s := twoAtomSpace(10.0, 1, -1, 0)
	h := New(DebyeHuckel{Bjerrum: 7.0})
	e := h.Energy(s, changeBoth())
	assert.InDelta(t, -0.7, e, 1e-9)
}

func twoBondedSpace(req, k, d float64) *space.Space {
	geo := geometry.NewCube(100)
	atoms := topology.NewAtomTable()
	_ = atoms.Add(topology.AtomType{ID: 0, Name: "A"})
	mols := topology.NewMoleculeTable()
	_ = mols.Add(topology.MoleculeType{
		ID: 0, Name: "dimer",
		AtomIDs: []particle.AtomID{0, 0},
		Bonds:   []topology.Bond{{I: 0, J: 1, K: k, Req: req}},
	})
	s := space.New(geo, atoms, mols)
	s.Particles = []particle.Particle{
		{ID: 0, Pos: mgl64.Vec3{0, 0, 0}},
		{ID: 0, Pos: mgl64.Vec3{d, 0, 0}},
	}
	s.Groups = []group.Group{{Molecule: 0, Begin: 0, Capacity: 2, Size: 2}}
	return s
}

func TestBondedInternalZeroAtEquilibrium(t *testing.T) {
	s := twoBondedSpace(1.0, 100.0, 1.0)
	b := Bonded{}
	assert.InDelta(t, 0, b.Internal(s, 0), 1e-12)
}

func TestBondedInternalHarmonicAwayFromEquilibrium(t *testing.T) {
	s := twoBondedSpace(1.0, 100.0, 1.5)
	b := Bonded{}
	// 0.5 * k * dr^2 = 0.5 * 100 * 0.25 = 12.5
	assert.InDelta(t, 12.5, b.Internal(s, 0), 1e-9)
}

func TestBondedInternalZeroForInactiveGroup(t *testing.T) {
	s := twoBondedSpace(1.0, 100.0, 1.5)
	s.Groups[0].Size = 0
	b := Bonded{}
	assert.Equal(t, 0.0, b.Internal(s, 0))
}

func TestBondedEnergyGlobalSumsAllGroups(t *testing.T) {
	s := twoBondedSpace(1.0, 100.0, 2.0)
	b := Bonded{}
	c := &change.Change{All: true}
	assert.InDelta(t, b.Internal(s, 0), b.Energy(s, c), 1e-12)
}
