package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/molsim/mcengine/energy"
	"github.com/molsim/mcengine/geometry"
	"github.com/molsim/mcengine/group"
	"github.com/molsim/mcengine/internal/mclog"
	"github.com/molsim/mcengine/internal/mcerr"
	"github.com/molsim/mcengine/internal/rng"
	"github.com/molsim/mcengine/mcdriver"
	"github.com/molsim/mcengine/move"
	"github.com/molsim/mcengine/particle"
	"github.com/molsim/mcengine/propagator"
	"github.com/molsim/mcengine/space"
	"github.com/molsim/mcengine/topology"
)

// Engine bundles every object Build constructs from a Document, in case a
// caller needs direct access to a piece (e.g. cmd/mcrun writing a state
// file header from Atoms/Molecules) beyond what the Driver exposes.
type Engine struct {
	Driver    *mcdriver.Driver
	Atoms     *topology.AtomTable
	Molecules *topology.MoleculeTable
	Reactions *topology.ReactionTable
	RNG       *rng.Pair
}

// Build constructs every runtime object a Document describes: topology
// tables, geometry, an initial populated Space (cloned into accepted/trial),
// the Hamiltonian, the Propagator of configured moves, and an rng.Pair
// seeded per the "random" policy. It returns the first *mcerr.ConfigError
// encountered; there is no partial initialization.
func Build(doc *Document, logger mclog.Logger) (*Engine, error) {
	if logger == nil {
		logger = mclog.NewNop()
	}

	geo, err := buildGeometry(doc.Geometry)
	if err != nil {
		return nil, err
	}

	atoms, atomByName, err := buildAtoms(doc.AtomList)
	if err != nil {
		return nil, err
	}

	mols, molByName, err := buildMolecules(doc.MoleculeList, atoms, atomByName)
	if err != nil {
		return nil, err
	}

	reactions, err := buildReactions(doc.ReactionList, mols, molByName)
	if err != nil {
		return nil, err
	}

	accepted := space.New(geo, atoms, mols)
	if err := populate(accepted, doc.InsertMolecules, mols, molByName, atoms); err != nil {
		return nil, err
	}
	trial := accepted.Clone()

	h, err := buildHamiltonian(doc.Energy)
	if err != nil {
		return nil, err
	}

	prop, err := buildPropagator(doc.Moves, molByName, reactions)
	if err != nil {
		return nil, err
	}

	rg := buildRNG(doc.Random)

	driver := mcdriver.New(accepted, trial, h, prop, rg, logger)
	return &Engine{Driver: driver, Atoms: atoms, Molecules: mols, Reactions: reactions, RNG: rg}, nil
}

func buildGeometry(g GeometrySpec) (*geometry.Cuboid, error) {
	if g.Type != "" && g.Type != "cuboid" {
		return nil, mcerr.NewConfigError("geometry", "type", fmt.Sprintf("unsupported geometry type %q", g.Type))
	}
	if len(g.Length) != 3 {
		return nil, mcerr.NewConfigError("geometry", "length", "must list exactly 3 side lengths")
	}
	for i, l := range g.Length {
		if l <= 0 {
			return nil, mcerr.NewConfigError("geometry", "length", fmt.Sprintf("axis %d must be positive", i))
		}
	}
	return geometry.NewCuboid(mgl64.Vec3{g.Length[0], g.Length[1], g.Length[2]}), nil
}

func buildAtoms(specs []AtomSpec) (*topology.AtomTable, map[string]particle.AtomID, error) {
	table := topology.NewAtomTable()
	byName := make(map[string]particle.AtomID, len(specs))
	for i, s := range specs {
		if s.Name == "" {
			return nil, nil, mcerr.NewConfigError("atomlist", strconv.Itoa(i), "missing name")
		}
		id := particle.AtomID(i)
		at := topology.AtomType{
			ID: id, Name: s.Name, Sigma: s.Sigma, Epsilon: s.Epsilon, Mass: s.Mass, Charge: s.Charge,
		}
		if err := table.Add(at); err != nil {
			return nil, nil, mcerr.NewConfigError("atomlist", s.Name, err.Error())
		}
		byName[s.Name] = id
	}
	return table, byName, nil
}

func buildMolecules(specs []MoleculeSpec, atoms *topology.AtomTable, atomByName map[string]particle.AtomID) (*topology.MoleculeTable, map[string]topology.MoleculeID, error) {
	table := topology.NewMoleculeTable()
	byName := make(map[string]topology.MoleculeID, len(specs))
	for i, s := range specs {
		if s.Name == "" {
			return nil, nil, mcerr.NewConfigError("moleculelist", strconv.Itoa(i), "missing name")
		}
		atomIDs := make([]particle.AtomID, len(s.Atoms))
		for j, name := range s.Atoms {
			id, ok := atomByName[name]
			if !ok {
				return nil, nil, mcerr.NewConfigError("moleculelist", s.Name, fmt.Sprintf("unknown atom %q", name))
			}
			atomIDs[j] = id
		}
		bonds := make([]topology.Bond, len(s.Bonds))
		for j, b := range s.Bonds {
			if b.I < 0 || b.I >= len(atomIDs) || b.J < 0 || b.J >= len(atomIDs) {
				return nil, nil, mcerr.NewConfigError("moleculelist", s.Name, fmt.Sprintf("bond %d references an out-of-range atom index", j))
			}
			bonds[j] = topology.Bond{I: b.I, J: b.J, K: b.K, Req: b.Req}
		}
		confs := make([]topology.Conformation, len(s.Confs))
		for j, c := range s.Confs {
			if len(c.RelPos) != len(atomIDs) {
				return nil, nil, mcerr.NewConfigError("moleculelist", s.Name, fmt.Sprintf("conformation %d has %d positions, want %d", j, len(c.RelPos), len(atomIDs)))
			}
			weight := c.Weight
			if weight <= 0 {
				weight = 1
			}
			confs[j] = topology.Conformation{RelPos: c.RelPos, Charges: c.Charges, Weight: weight}
		}
		mt := topology.MoleculeType{
			ID: topology.MoleculeID(i), Name: s.Name, Atomic: s.Atomic,
			AtomIDs: atomIDs, Bonds: bonds, Confs: confs, Insert: topology.InsertRandom,
		}
		if err := table.Add(mt); err != nil {
			return nil, nil, mcerr.NewConfigError("moleculelist", s.Name, err.Error())
		}
		byName[s.Name] = mt.ID
	}
	return table, byName, nil
}

// populate allocates the accepted Space's particle/group arrays from
// InsertMolecules: one reservoir Group per atomic species (Capacity equal
// to its configured N, Size either N or 0 per Inactive), and N independent
// molecular Groups per non-atomic species (each Capacity == len(AtomIDs),
// Size either Capacity or 0).
func populate(s *space.Space, specs map[string]InsertSpec, mols *topology.MoleculeTable, molByName map[string]topology.MoleculeID, atoms *topology.AtomTable) error {
	for name, spec := range specs {
		molID, ok := molByName[name]
		if !ok {
			return mcerr.NewConfigError("insertmolecules", name, "unknown molecule")
		}
		mt := mols.MustByID(molID)
		if spec.N < 0 {
			return mcerr.NewConfigError("insertmolecules", name, "n must be >= 0")
		}

		if mt.Atomic {
			begin := len(s.Particles)
			size := spec.N
			if spec.Inactive {
				size = 0
			}
			at := atoms.MustByID(mt.AtomIDs[0])
			for i := 0; i < spec.N; i++ {
				pos := s.Geo.Randompos(deterministicPlacer{})
				if i < size {
					s.Particles = append(s.Particles, at.NewParticle(pos))
				} else {
					s.Particles = append(s.Particles, particle.Particle{})
				}
			}
			s.Groups = append(s.Groups, group.Group{
				Molecule: molID, Begin: begin, Capacity: spec.N, Size: size, Atomic: true,
			})
			continue
		}

		for i := 0; i < spec.N; i++ {
			begin := len(s.Particles)
			capacity := len(mt.AtomIDs)
			cm := s.Geo.Randompos(deterministicPlacer{})
			for j, atomID := range mt.AtomIDs {
				at := atoms.MustByID(atomID)
				pos := cm
				if len(mt.Confs) > 0 {
					rel := mt.Confs[0].RelPos[j]
					pos = cm.Add(mgl64.Vec3{rel[0], rel[1], rel[2]})
				}
				s.Particles = append(s.Particles, at.NewParticle(pos))
			}
			size := capacity
			if spec.Inactive {
				size = 0
			}
			s.Groups = append(s.Groups, group.Group{
				Molecule: molID, Begin: begin, Capacity: capacity, Size: size, Atomic: false, CM: cm,
			})
		}
	}
	return nil
}

// deterministicPlacer satisfies geometry.Cuboid.Randompos's rng parameter
// with a fixed value; initial placement at load time does not need to
// consume the simulation's own RNG streams (whose draw counts are part of
// the checkpoint contract), and real configs normally follow up initial
// placement with enough equilibration sweeps that the exact starting
// layout is immaterial.
type deterministicPlacer struct{}

func (p deterministicPlacer) Float64() float64 {
	return 0.5
}

func buildReactions(specs []ReactionSpec, mols *topology.MoleculeTable, molByName map[string]topology.MoleculeID) (*topology.ReactionTable, error) {
	table := topology.NewReactionTable()
	for _, s := range specs {
		lhs, rhs, err := parseEquation(s.Equation)
		if err != nil {
			return nil, mcerr.NewConfigError("reactionlist", s.Name, err.Error())
		}
		reactants, err := toSpeciesRefs(lhs, molByName)
		if err != nil {
			return nil, mcerr.NewConfigError("reactionlist", s.Name, err.Error())
		}
		products, err := toSpeciesRefs(rhs, molByName)
		if err != nil {
			return nil, mcerr.NewConfigError("reactionlist", s.Name, err.Error())
		}
		rxn := topology.Reaction{
			Name: s.Name, Reactants: reactants, Products: products,
			LnK: s.LnK, Canonic: s.Canonic, Swap: s.Swap, NReservoir: s.NReservoir,
		}
		if err := table.Add(rxn, mols); err != nil {
			return nil, mcerr.NewConfigError("reactionlist", s.Name, err.Error())
		}
	}
	return table, nil
}

func toSpeciesRefs(terms []string, molByName map[string]topology.MoleculeID) ([]topology.SpeciesRef, error) {
	out := make([]topology.SpeciesRef, 0, len(terms))
	for _, t := range terms {
		count, name, err := parseTerm(t)
		if err != nil {
			return nil, err
		}
		molID, ok := molByName[name]
		if !ok {
			return nil, fmt.Errorf("unknown species %q", name)
		}
		out = append(out, topology.SpeciesRef{Molecule: molID, Count: count})
	}
	return out, nil
}

func buildHamiltonian(specs []EnergyTermSpec) (*energy.Hamiltonian, error) {
	terms := make([]energy.Term, 0, len(specs))
	for _, s := range specs {
		switch s.Type {
		case "hardsphere":
			terms = append(terms, energy.HardSphere{CellSize: s.CellSize})
		case "debyehuckel":
			terms = append(terms, energy.DebyeHuckel{Bjerrum: s.Bjerrum, Kappa: s.Kappa})
		case "bonded":
			terms = append(terms, energy.Bonded{})
		default:
			return nil, mcerr.NewConfigError("energy", s.Type, "unrecognized energy term type")
		}
	}
	return energy.New(terms...), nil
}

func buildPropagator(specs []MoveSpec, molByName map[string]topology.MoleculeID, reactions *topology.ReactionTable) (*propagator.Propagator, error) {
	var totalRepeat int
	for _, s := range specs {
		if s.Repeat > 0 {
			totalRepeat += s.Repeat
		} else {
			totalRepeat++
		}
	}
	prop := propagator.New(totalRepeat)
	for _, s := range specs {
		repeat := s.Repeat
		if repeat <= 0 {
			repeat = 1
		}
		var mv move.Move
		var molID topology.MoleculeID
		if s.Molecule != "" {
			id, ok := molByName[s.Molecule]
			if !ok {
				return nil, mcerr.NewConfigError("moves", s.Type, fmt.Sprintf("unknown molecule %q", s.Molecule))
			}
			molID = id
		}
		switch s.Type {
		case "moltransrot":
			mv = &move.MolTransRot{Molecule: molID, Dp: s.Dp, Dprot: s.Dprot, Dir: dirOrAll(s.Dir)}
		case "transrot":
			mv = &move.AtomicTransRot{Molecule: molID, Dp: s.Dp, Dir: dirOrAll(s.Dir)}
		case "volume":
			method, ok := parseScaleMethod(s.Method)
			if !ok {
				return nil, mcerr.NewConfigError("moves", s.Type, fmt.Sprintf("unknown volume method %q", s.Method))
			}
			if method == geometry.Isochoric {
				// Isochoric holds V fixed by construction; Volume's Bias
				// always prices in the (N+1)lnV term for whatever vNew it
				// drew, so feeding it a method that never actually changes
				// the volume would silently apply a nonzero isobaric
				// correction to a move that changed nothing. A true
				// isochoric shape move belongs in its own Move that calls
				// Geometry.SetLength directly and skips Bias's volume term
				// entirely; nothing in this package implements one yet.
				return nil, mcerr.NewConfigError("moves", s.Type, "isochoric method is not supported by the volume move")
			}
			mv = &move.Volume{DV: s.DV, Method: method, Pressure: s.Pressure}
		case "conformationswap":
			mv = &move.ConformationSwap{Molecule: molID}
		case "rcmc":
			mv = move.NewSpeciation(reactions)
		default:
			return nil, mcerr.NewConfigError("moves", s.Type, "unrecognized move type")
		}
		prop.Register(mv, float64(repeat))
	}
	return prop, nil
}

func dirOrAll(d [3]float64) [3]float64 {
	if d == ([3]float64{}) {
		return [3]float64{1, 1, 1}
	}
	return d
}

func parseScaleMethod(s string) (geometry.ScaleMethod, bool) {
	switch s {
	case "", "isotropic":
		return geometry.Isotropic, true
	case "xy":
		return geometry.AnisotropicXY, true
	case "isochoric":
		return geometry.Isochoric, true
	default:
		return geometry.Isotropic, false
	}
}

// buildRNG interprets the "random" policy: "default" seeds from wall-clock
// time, "fixed" (or any other non-numeric string) falls back to a literal
// zero seed for reproducibility, and an integer string seeds with that
// literal value. Move and global streams are seeded from two distinct
// derived values so neither stream's draw sequence can collide with the
// other's.
func buildRNG(policy string) *rng.Pair {
	var seed int64
	switch policy {
	case "", "default":
		seed = time.Now().UnixNano()
	case "fixed":
		seed = 0
	default:
		if n, err := strconv.ParseInt(policy, 10, 64); err == nil {
			seed = n
		} else {
			seed = 0
		}
	}
	return rng.NewPair(seed, seed+1)
}
