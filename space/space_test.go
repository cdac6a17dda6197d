package space

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/molsim/mcengine/change"
	"github.com/molsim/mcengine/geometry"
	"github.com/molsim/mcengine/group"
	"github.com/molsim/mcengine/particle"
	"github.com/molsim/mcengine/topology"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSpace() *Space {
	geo := geometry.NewCube(20)
	atoms := topology.NewAtomTable()
	mols := topology.NewMoleculeTable()
	s := New(geo, atoms, mols)
	s.Particles = []particle.Particle{
		{ID: 0, Pos: mgl64.Vec3{1, 0, 0}},
		{ID: 0, Pos: mgl64.Vec3{2, 0, 0}},
		{ID: 1, Pos: mgl64.Vec3{5, 0, 0}},
	}
	s.Groups = []group.Group{
		{Molecule: 0, Begin: 0, Capacity: 2, Size: 2},
		{Molecule: 1, Begin: 2, Capacity: 1, Size: 1, Atomic: true},
	}
	return s
}

func TestCloneIsIndependent(t *testing.T) {
	s := newTestSpace()
	cp := s.Clone()
	cp.Particles[0].Pos = mgl64.Vec3{99, 99, 99}
	assert.Equal(t, mgl64.Vec3{1, 0, 0}, s.Particles[0].Pos, "mutating the clone must not affect the original")
	assert.NotSame(t, s.Geo, cp.Geo)
}

func TestFindMoleculesFiltersByIDAndActivity(t *testing.T) {
	s := newTestSpace()
	active := s.FindMolecules(0, group.Active)
	require.Len(t, active, 1)
	assert.Equal(t, 0, active[0])

	none := s.FindMolecules(0, group.Inactive)
	assert.Empty(t, none)
}

func TestFindAtomsOnlyReturnsActiveSlots(t *testing.T) {
	s := newTestSpace()
	s.Groups[1].Size = 0 // deactivate the atomic reservoir
	out := s.FindAtoms(1)
	assert.Empty(t, out)
}

func TestFindGroupContaining(t *testing.T) {
	s := newTestSpace()
	assert.Equal(t, 0, s.FindGroupContaining(1))
	assert.Equal(t, 1, s.FindGroupContaining(2))
	assert.Equal(t, -1, s.FindGroupContaining(99))
}

func TestCountActiveMolecularVsAtomic(t *testing.T) {
	s := newTestSpace()
	assert.Equal(t, 1, s.CountActive(0))
	assert.Equal(t, 1, s.CountActive(1))
}

func TestRecomputeCMOfEmptyGroupIsZero(t *testing.T) {
	s := newTestSpace()
	s.Groups[0].Size = 0
	cm := s.RecomputeCM(0)
	assert.Equal(t, mgl64.Vec3{}, cm)
}

func TestSyncCopiesOnlyTouchedGroup(t *testing.T) {
	accepted := newTestSpace()
	trial := accepted.Clone()
	trial.Particles[0].Pos = mgl64.Vec3{7, 7, 7}
	trial.Particles[2].Pos = mgl64.Vec3{8, 8, 8}

	var c change.Change
	c.Group(0).AddAtom(0)

	accepted.Sync(trial, &c)

	assert.Equal(t, mgl64.Vec3{7, 7, 7}, accepted.Particles[0].Pos, "touched slot must be copied")
	assert.Equal(t, mgl64.Vec3{5, 0, 0}, accepted.Particles[2].Pos, "untouched group must stay as it was")
}

func TestSyncAllReplacesEverything(t *testing.T) {
	accepted := newTestSpace()
	trial := accepted.Clone()
	trial.Particles[2].Pos = mgl64.Vec3{42, 0, 0}

	c := change.Change{All: true}
	accepted.Sync(trial, &c)

	assert.Equal(t, mgl64.Vec3{42, 0, 0}, accepted.Particles[2].Pos)
}
