// Package statefile encodes and decodes the structured state document a
// checkpoint round-trips: topology, geometry, the particle array, the
// group array, and an optional RNG checkpoint. Textual encoding is YAML
// (gopkg.in/yaml.v3, via the same stack config uses); binary encoding is
// encoding/gob, chosen by file extension -- gob is the canonical encoding
// for floating-point fidelity, YAML exists for human inspection and
// diffing.
package statefile

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/molsim/mcengine/group"
	"github.com/molsim/mcengine/internal/mcerr"
	"github.com/molsim/mcengine/internal/rng"
	"github.com/molsim/mcengine/particle"
	"github.com/molsim/mcengine/space"
	"github.com/molsim/mcengine/topology"
)

// Document is the full serializable snapshot of a run: everything needed
// to resume a simulation bit-for-bit (modulo RNG, which is only present
// when the caller asks to save it).
type Document struct {
	RunID string `yaml:"run_id"`

	Topology  TopologyRecord   `yaml:"topology"`
	Length    [3]float64       `yaml:"length"`
	Particles []ParticleRecord `yaml:"particles"`
	Groups    []GroupRecord    `yaml:"groups"`

	RNG *RNGRecord `yaml:"rng,omitempty"`
}

// TopologyRecord mirrors the process-wide atom/molecule/reaction tables.
// Atoms and molecules never mutate after load, so round-tripping them is
// mostly a consistency check against the config the caller rebuilds the
// topology from before calling RestoreInto -- but each Reaction's
// NReservoir is mutated by the speciation move's accept step, and is the
// one piece of topology state a checkpoint would otherwise silently lose.
type TopologyRecord struct {
	Atoms     []AtomRecord     `yaml:"atoms"`
	Molecules []MoleculeRecord `yaml:"molecules"`
	Reactions []ReactionRecord `yaml:"reactions"`
}

type AtomRecord struct {
	ID      int         `yaml:"id"`
	Name    string      `yaml:"name"`
	Sigma   float64     `yaml:"sigma"`
	Epsilon float64     `yaml:"epsilon"`
	Mass    float64     `yaml:"mass"`
	Charge  float64     `yaml:"charge"`
	Shape   ShapeRecord `yaml:"shape"`
}

type BondRecord struct {
	I   int     `yaml:"i"`
	J   int     `yaml:"j"`
	K   float64 `yaml:"k"`
	Req float64 `yaml:"req"`
}

type ConformationRecord struct {
	RelPos  [][3]float64 `yaml:"rel_pos"`
	Charges []float64    `yaml:"charges,omitempty"`
	Weight  float64      `yaml:"weight"`
}

type MoleculeRecord struct {
	ID      int                  `yaml:"id"`
	Name    string               `yaml:"name"`
	Atomic  bool                 `yaml:"atomic"`
	AtomIDs []int                `yaml:"atom_ids"`
	Bonds   []BondRecord         `yaml:"bonds,omitempty"`
	Confs   []ConformationRecord `yaml:"confs,omitempty"`
	Insert  int                  `yaml:"insert"`
}

type SpeciesRefRecord struct {
	Molecule int `yaml:"molecule"`
	Count    int `yaml:"count"`
}

type ReactionRecord struct {
	Name       string             `yaml:"name"`
	Reactants  []SpeciesRefRecord `yaml:"reactants"`
	Products   []SpeciesRefRecord `yaml:"products"`
	LnK        float64            `yaml:"ln_k"`
	Canonic    bool               `yaml:"canonic"`
	Swap       bool               `yaml:"swap"`
	NReservoir int                `yaml:"n_reservoir"`
}

type ParticleRecord struct {
	AtomID int        `yaml:"atom_id"`
	Pos    [3]float64 `yaml:"pos"`
	Charge float64    `yaml:"charge"`
	Shape  ShapeRecord `yaml:"shape"`
}

// ShapeRecord mirrors particle.Shape field-for-field; kept as a distinct
// type so the wire format doesn't depend on mathgl's own (un)marshaling.
type ShapeRecord struct {
	Kind            int        `yaml:"kind"`
	Dipole          [3]float64 `yaml:"dipole"`
	DipoleMag       float64    `yaml:"dipole_mag"`
	Quadrupole      [3][3]float64 `yaml:"quadrupole"`
	CigarAxis       [3]float64 `yaml:"cigar_axis"`
	CigarHalfLength float64    `yaml:"cigar_half_length"`
}

type GroupRecord struct {
	Molecule    int        `yaml:"molecule"`
	Begin       int        `yaml:"begin"`
	Capacity    int        `yaml:"capacity"`
	Size        int        `yaml:"size"`
	Atomic      bool       `yaml:"atomic"`
	CM          [3]float64 `yaml:"cm"`
	Orientation [4]float64 `yaml:"orientation"` // {W, X, Y, Z}
	ConfID      int        `yaml:"conf_id"`
}

// RNGRecord is the checkpointed move/global stream state, present only
// when the run was started (or is being saved) with saverandom=true.
type RNGRecord struct {
	MoveSeed    int64  `yaml:"move_seed"`
	MoveDraws   uint64 `yaml:"move_draws"`
	GlobalSeed  int64  `yaml:"global_seed"`
	GlobalDraws uint64 `yaml:"global_draws"`
}

// Snapshot builds a Document from a live Space and its topology tables,
// optionally attaching rg's checkpoint when saveRandom is true. runID
// should be the run's uuid, freshly minted at startup or carried over from
// a resumed checkpoint.
func Snapshot(s *space.Space, atoms *topology.AtomTable, mols *topology.MoleculeTable, reactions *topology.ReactionTable, rg *rng.Pair, saveRandom bool, runID string) *Document {
	if runID == "" {
		runID = uuid.NewString()
	}
	doc := &Document{
		RunID:    runID,
		Topology: topologyToRecord(atoms, mols, reactions),
		Length:   vec3ToArray(s.Geo.GetLength()),
	}
	for _, p := range s.Particles {
		doc.Particles = append(doc.Particles, ParticleRecord{
			AtomID: int(p.ID),
			Pos:    vec3ToArray(p.Pos),
			Charge: p.Charge,
			Shape:  shapeToRecord(p.Shape),
		})
	}
	for _, g := range s.Groups {
		doc.Groups = append(doc.Groups, GroupRecord{
			Molecule: int(g.Molecule), Begin: g.Begin, Capacity: g.Capacity, Size: g.Size,
			Atomic: g.Atomic, CM: vec3ToArray(g.CM), Orientation: quatToArray(g.Rotation()), ConfID: g.ConfID,
		})
	}
	if saveRandom && rg != nil {
		mv, gl := rg.Move.Checkpoint(), rg.Global.Checkpoint()
		doc.RNG = &RNGRecord{MoveSeed: mv.Seed, MoveDraws: mv.Draws, GlobalSeed: gl.Seed, GlobalDraws: gl.Draws}
	}
	return doc
}

func topologyToRecord(atoms *topology.AtomTable, mols *topology.MoleculeTable, reactions *topology.ReactionTable) TopologyRecord {
	var rec TopologyRecord
	if atoms != nil {
		for _, a := range atoms.All() {
			rec.Atoms = append(rec.Atoms, AtomRecord{
				ID: int(a.ID), Name: a.Name, Sigma: a.Sigma, Epsilon: a.Epsilon,
				Mass: a.Mass, Charge: a.Charge, Shape: shapeToRecord(a.Shape),
			})
		}
	}
	if mols != nil {
		for _, m := range mols.All() {
			atomIDs := make([]int, len(m.AtomIDs))
			for i, id := range m.AtomIDs {
				atomIDs[i] = int(id)
			}
			var bonds []BondRecord
			for _, b := range m.Bonds {
				bonds = append(bonds, BondRecord{I: b.I, J: b.J, K: b.K, Req: b.Req})
			}
			var confs []ConformationRecord
			for _, c := range m.Confs {
				confs = append(confs, ConformationRecord{RelPos: c.RelPos, Charges: c.Charges, Weight: c.Weight})
			}
			rec.Molecules = append(rec.Molecules, MoleculeRecord{
				ID: int(m.ID), Name: m.Name, Atomic: m.Atomic, AtomIDs: atomIDs,
				Bonds: bonds, Confs: confs, Insert: int(m.Insert),
			})
		}
	}
	if reactions != nil {
		for _, r := range reactions.All() {
			rec.Reactions = append(rec.Reactions, ReactionRecord{
				Name: r.Name, Reactants: refsToRecord(r.Reactants), Products: refsToRecord(r.Products),
				LnK: r.LnK, Canonic: r.Canonic, Swap: r.Swap, NReservoir: r.NReservoir,
			})
		}
	}
	return rec
}

func refsToRecord(refs []topology.SpeciesRef) []SpeciesRefRecord {
	out := make([]SpeciesRefRecord, len(refs))
	for i, r := range refs {
		out[i] = SpeciesRefRecord{Molecule: int(r.Molecule), Count: r.Count}
	}
	return out
}

func shapeToRecord(s particle.Shape) ShapeRecord {
	return ShapeRecord{
		Kind:            int(s.Kind),
		Dipole:          vec3ToArray(s.Dipole),
		DipoleMag:       s.DipoleMag,
		Quadrupole:      mat3ToArray(s.Quadrupole),
		CigarAxis:       vec3ToArray(s.CigarAxis),
		CigarHalfLength: s.CigarHalfLength,
	}
}

func recordToShape(r ShapeRecord) particle.Shape {
	return particle.Shape{
		Kind:            particle.ShapeKind(r.Kind),
		Dipole:          arrayToVec3(r.Dipole),
		DipoleMag:       r.DipoleMag,
		Quadrupole:      arrayToMat3(r.Quadrupole),
		CigarAxis:       arrayToVec3(r.CigarAxis),
		CigarHalfLength: r.CigarHalfLength,
	}
}

func vec3ToArray(v mgl64.Vec3) [3]float64 { return [3]float64{v.X(), v.Y(), v.Z()} }
func arrayToVec3(a [3]float64) mgl64.Vec3 { return mgl64.Vec3{a[0], a[1], a[2]} }

func quatToArray(q mgl64.Quat) [4]float64 {
	return [4]float64{q.W, q.V.X(), q.V.Y(), q.V.Z()}
}

func arrayToQuat(a [4]float64) mgl64.Quat {
	return mgl64.Quat{W: a[0], V: mgl64.Vec3{a[1], a[2], a[3]}}
}

// mat3ToArray/arrayToMat3 convert to/from mgl64's flat column-major [9]float64
// layout: m[col*3+row] is the element at (row, col).
func mat3ToArray(m mgl64.Mat3) [3][3]float64 {
	var out [3][3]float64
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			out[row][col] = m[col*3+row]
		}
	}
	return out
}

func arrayToMat3(a [3][3]float64) mgl64.Mat3 {
	var m mgl64.Mat3
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			m[col*3+row] = a[row][col]
		}
	}
	return m
}

// RestoreInto populates an already-constructed Space (geometry + topology
// tables already set, Particles/Groups empty) from doc, applies doc's
// checkpointed per-reaction NReservoir onto reactions (matched by name --
// the rest of the topology is expected to already match doc.Topology,
// since it is rebuilt from the same configuration the run was saved
// under), and returns the restored RNG pair when doc.RNG is present (nil
// otherwise).
func RestoreInto(s *space.Space, reactions *topology.ReactionTable, doc *Document) *rng.Pair {
	s.Geo.SetLength(arrayToVec3(doc.Length))
	if reactions != nil {
		for _, rr := range doc.Topology.Reactions {
			if r, ok := reactions.ByName(rr.Name); ok {
				r.NReservoir = rr.NReservoir
			}
		}
	}
	s.Particles = make([]particle.Particle, len(doc.Particles))
	for i, pr := range doc.Particles {
		s.Particles[i] = particle.Particle{
			ID:     particle.AtomID(pr.AtomID),
			Pos:    arrayToVec3(pr.Pos),
			Charge: pr.Charge,
			Shape:  recordToShape(pr.Shape),
		}
	}
	s.Groups = make([]group.Group, len(doc.Groups))
	for i, gr := range doc.Groups {
		s.Groups[i] = group.Group{
			Molecule: topology.MoleculeID(gr.Molecule), Begin: gr.Begin, Capacity: gr.Capacity,
			Size: gr.Size, Atomic: gr.Atomic, CM: arrayToVec3(gr.CM),
			Orientation: arrayToQuat(gr.Orientation), ConfID: gr.ConfID,
		}
	}
	if doc.RNG == nil {
		return nil
	}
	return &rng.Pair{
		Move:   rng.Restore(rng.State{Seed: doc.RNG.MoveSeed, Draws: doc.RNG.MoveDraws}),
		Global: rng.Restore(rng.State{Seed: doc.RNG.GlobalSeed, Draws: doc.RNG.GlobalDraws}),
	}
}

// Write encodes doc to path; the extension selects the codec: ".gob" (or
// no recognized textual extension) writes binary, anything else (".yaml",
// ".yml") writes YAML.
func Write(path string, doc *Document) error {
	if isBinaryExt(path) {
		var buf bytes.Buffer
		if err := gob.NewEncoder(&buf).Encode(doc); err != nil {
			return fmt.Errorf("statefile: gob encode: %w", err)
		}
		return os.WriteFile(path, buf.Bytes(), 0o644)
	}
	b, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("statefile: yaml encode: %w", err)
	}
	return os.WriteFile(path, b, 0o644)
}

// Read decodes a Document from path, dispatching on extension the same way
// Write does.
func Read(path string) (*Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc Document
	if isBinaryExt(path) {
		if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&doc); err != nil {
			return nil, mcerr.NewConfigError("statefile", path, fmt.Sprintf("gob decode: %v", err))
		}
		return &doc, nil
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, mcerr.NewConfigError("statefile", path, fmt.Sprintf("yaml decode: %v", err))
	}
	return &doc, nil
}

func isBinaryExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return false
	default:
		return true
	}
}
