package traj

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/molsim/mcengine/geometry"
	"github.com/molsim/mcengine/group"
	"github.com/molsim/mcengine/particle"
	"github.com/molsim/mcengine/space"
	"github.com/molsim/mcengine/topology"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSpace() *space.Space {
	geo := geometry.NewCube(10)
	atoms := topology.NewAtomTable()
	_ = atoms.Add(topology.AtomType{ID: 0, Name: "Na", Sigma: 2.0, Mass: 23})
	mols := topology.NewMoleculeTable()
	_ = mols.Add(topology.MoleculeType{ID: 0, Name: "Na+", Atomic: true, AtomIDs: []particle.AtomID{0}})
	s := space.New(geo, atoms, mols)
	s.Particles = []particle.Particle{
		{ID: 0, Pos: mgl64.Vec3{1.5, -2.25, 0.125}, Charge: 1},
		{ID: 0, Pos: mgl64.Vec3{0, 0, 0}}, // inactive tail slot
	}
	s.Groups = []group.Group{{Molecule: 0, Begin: 0, Capacity: 2, Size: 1, Atomic: true}}
	return s
}

func TestBinaryWriterReaderRoundTrip(t *testing.T) {
	s := sampleSpace()
	var buf bytes.Buffer
	w := NewBinaryWriter(&buf)
	require.NoError(t, w.WriteFrame(s))

	r := NewBinaryReader(&buf)
	box, positions, err := r.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, [3]float64{10, 10, 10}, box)
	require.Len(t, positions, 2)
	assert.InDelta(t, 1.5, positions[0][0], 1e-3)
	assert.InDelta(t, -2.25, positions[0][1], 1e-3)
	assert.InDelta(t, 0.125, positions[0][2], 1e-3)
}

func TestBinaryReaderReportsEOFAtStreamEnd(t *testing.T) {
	var buf bytes.Buffer
	r := NewBinaryReader(&buf)
	_, _, err := r.ReadFrame()
	assert.Error(t, err)
}

func TestPropertyWriterZerosInactiveSlots(t *testing.T) {
	s := sampleSpace()
	var buf bytes.Buffer
	w := NewPropertyWriter(&buf)
	require.NoError(t, w.WriteFrame(s))

	var n uint32
	require.NoError(t, binary.Read(&buf, binary.LittleEndian, &n))
	assert.Equal(t, uint32(2), n)

	var pair0 [2]float32
	require.NoError(t, binary.Read(&buf, binary.LittleEndian, &pair0))
	assert.InDelta(t, 1.0, pair0[0], 1e-6, "active slot carries its real charge")

	var pair1 [2]float32
	require.NoError(t, binary.Read(&buf, binary.LittleEndian, &pair1))
	assert.Equal(t, [2]float32{0, 0}, pair1, "inactive slot must be zeroed")
}

func TestWriteXYZSkipsInactiveSlots(t *testing.T) {
	s := sampleSpace()
	var buf bytes.Buffer
	require.NoError(t, WriteXYZ(&buf, s))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Equal(t, "1", lines[0])
	assert.Contains(t, lines[2], "Na")
}

func TestWritePQREndsWithEndRecord(t *testing.T) {
	s := sampleSpace()
	var buf bytes.Buffer
	require.NoError(t, WritePQR(&buf, s))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Equal(t, "END", lines[len(lines)-1])
	assert.Contains(t, lines[0], "Na+")
}

func TestWritePQRReportsSwappedSpeciesNotGroupOrigin(t *testing.T) {
	geo := geometry.NewCube(10)
	atoms := topology.NewAtomTable()
	_ = atoms.Add(topology.AtomType{ID: 0, Name: "HA"})
	_ = atoms.Add(topology.AtomType{ID: 1, Name: "A"})
	mols := topology.NewMoleculeTable()
	_ = mols.Add(topology.MoleculeType{ID: 0, Name: "HA", Atomic: true, AtomIDs: []particle.AtomID{0}})
	_ = mols.Add(topology.MoleculeType{ID: 1, Name: "A", Atomic: true, AtomIDs: []particle.AtomID{1}})
	s := space.New(geo, atoms, mols)
	s.Particles = []particle.Particle{{ID: 1, Pos: mgl64.Vec3{0, 0, 0}}} // swapped in place to species 1
	s.Groups = []group.Group{{Molecule: 0, Begin: 0, Capacity: 1, Size: 1, Atomic: true}}

	var buf bytes.Buffer
	require.NoError(t, WritePQR(&buf, s))
	assert.NotContains(t, buf.String(), "HA",
		"residue name must reflect the slot's current species after an in-place identity swap, not the group's original molecule")
}

func TestWriteGROIncludesBoxVectorLine(t *testing.T) {
	s := sampleSpace()
	var buf bytes.Buffer
	require.NoError(t, WriteGRO(&buf, s))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Contains(t, lines[len(lines)-1], "10.00000")
}

func TestWriteAAMRowCountMatchesActiveParticles(t *testing.T) {
	s := sampleSpace()
	var buf bytes.Buffer
	require.NoError(t, WriteAAM(&buf, s))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Equal(t, "1", lines[0])
	assert.Len(t, lines, 2)
}
