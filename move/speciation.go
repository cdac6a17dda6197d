package move

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/molsim/mcengine/change"
	"github.com/molsim/mcengine/group"
	"github.com/molsim/mcengine/internal/rng"
	"github.com/molsim/mcengine/space"
	"github.com/molsim/mcengine/topology"
)

// Speciation is the reactive/rcmc move: it adds, removes, and swaps
// particles between coupled group reservoirs to sample chemical
// equilibria. It is the hardest move in the engine -- see the package doc
// comment on Propose for the procedure.
type Speciation struct {
	Stats
	Reactions *topology.ReactionTable

	perReaction map[string]*Stats

	// State captured by Propose, consumed by Bias/Accept/Reject for the
	// single in-flight trial. Single-threaded, one trial in flight at a
	// time, so plain fields are sufficient -- the same pattern Volume
	// uses for vOld/vNew.
	proposed bool
	rxnIdx   int
	forward  bool
}

func NewSpeciation(reactions *topology.ReactionTable) *Speciation {
	return &Speciation{Reactions: reactions, perReaction: make(map[string]*Stats)}
}

func (m *Speciation) Name() string { return "rcmc" }

func (m *Speciation) statsFor(name string) *Stats {
	s, ok := m.perReaction[name]
	if !ok {
		s = &Stats{}
		m.perReaction[name] = s
	}
	return s
}

// PerReactionStats exposes the acceptance ratio for a given reaction name,
// used by analyses/logging.
func (m *Speciation) PerReactionStats(name string) *Stats {
	return m.statsFor(name)
}

// Propose picks a reaction and direction, checks feasibility, then
// deletes/inserts/swaps matter between reservoirs.
// On any infeasibility it leaves c empty -- the driver short-circuits an
// empty Change straight to Reject without evaluating energy.
func (m *Speciation) Propose(trial *space.Space, rg *rng.Pair, c *change.Change) {
	m.proposed = false
	if m.Reactions.Len() == 0 {
		return
	}

	m.rxnIdx = rg.Move.Intn(m.Reactions.Len())
	rxn := m.Reactions.At(m.rxnIdx)
	m.forward = rg.Move.Bool()

	addSet, removeSet := rxn.Products, rxn.Reactants
	if !m.forward {
		addSet, removeSet = rxn.Reactants, rxn.Products
	}

	if rxn.Canonic && m.forward && rxn.NReservoir <= 0 {
		return // reservoir exhausted in the chosen direction: no change
	}

	if rxn.Swap {
		m.proposeSwap(trial, rg, c, rxn)
		return
	}

	if !feasible(trial, removeSet, addSet) {
		return
	}

	for _, ref := range removeSet {
		for k := 0; k < ref.Count; k++ {
			removeOne(trial, rg, c, ref.Molecule)
		}
	}
	for _, ref := range addSet {
		for k := 0; k < ref.Count; k++ {
			addOne(trial, rg, c, ref.Molecule)
		}
	}

	c.DN = true
	for _, ref := range removeSet {
		c.TouchSpecies(ref.Molecule)
	}
	for _, ref := range addSet {
		c.TouchSpecies(ref.Molecule)
	}
	c.Sort()
	m.proposed = true
}

// feasible checks that both sides of the reaction have enough matter
// available (reservoir groups large enough to remove from, atom-id
// reservoirs with room to insert into) before any mutation happens.
func feasible(s *space.Space, removeSet, addSet []topology.SpeciesRef) bool {
	for _, ref := range removeSet {
		mt := s.Molecules.MustByID(ref.Molecule)
		if mt.Atomic {
			gidxs := s.FindMolecules(ref.Molecule, group.All)
			if len(gidxs) != 1 || s.Groups[gidxs[0]].Size < ref.Count {
				return false
			}
		} else {
			if len(s.FindMolecules(ref.Molecule, group.Active)) < ref.Count {
				return false
			}
		}
	}
	for _, ref := range addSet {
		mt := s.Molecules.MustByID(ref.Molecule)
		if mt.Atomic {
			gidxs := s.FindMolecules(ref.Molecule, group.All)
			if len(gidxs) != 1 {
				return false
			}
			g := &s.Groups[gidxs[0]]
			if g.Capacity-g.Size < ref.Count {
				return false
			}
		} else {
			if len(s.FindMolecules(ref.Molecule, group.Inactive)) < ref.Count {
				return false
			}
		}
	}
	return true
}

// removeOne deletes one instance of molID from s, recording the change. The
// bonded-energy effect of deactivating a molecular group is not tracked
// here: Bonded.Energy's per-group restricted path already recomputes it
// from the Change alone (the deactivated group evaluates to zero internal
// energy, the still-active accepted-side group evaluates to its old bond
// energy), so the ordinary uNew-uOld difference already carries it.
func removeOne(s *space.Space, rg *rng.Pair, c *change.Change, molID topology.MoleculeID) {
	mt := s.Molecules.MustByID(molID)
	if mt.Atomic {
		gidxs := s.FindMolecules(molID, group.All)
		gi := gidxs[0]
		g := &s.Groups[gi]
		if g.Size == 0 {
			panic(fmt.Sprintf("speciation: infeasible deletion from empty reservoir %q", mt.Name))
		}
		randRel := rg.Move.Intn(g.Size)
		lastRel := g.Size - 1
		s.Particles[g.Begin+randRel], s.Particles[g.Begin+lastRel] =
			s.Particles[g.Begin+lastRel], s.Particles[g.Begin+randRel]
		g.Size--

		gc := c.Group(gi)
		gc.AddAtom(randRel)
		gc.AddAtom(lastRel)
		gc.AtomicCountChanged = true
		return
	}

	gidxs := s.FindMolecules(molID, group.Active)
	gi := gidxs[rg.Move.Intn(len(gidxs))]
	s.Groups[gi].Deactivate()
	c.Group(gi).All = true
}

// addOne activates one instance of molID in s, recording the change.
func addOne(s *space.Space, rg *rng.Pair, c *change.Change, molID topology.MoleculeID) {
	mt := s.Molecules.MustByID(molID)
	if mt.Atomic {
		gidxs := s.FindMolecules(molID, group.All)
		gi := gidxs[0]
		g := &s.Groups[gi]
		newRel := g.Size
		pos := s.Geo.Randompos(rg.Move)
		at := s.Atoms.MustByID(mt.AtomIDs[0])
		s.Particles[g.Begin+newRel] = at.NewParticle(pos)
		g.Size++

		gc := c.Group(gi)
		gc.AddAtom(newRel)
		gc.AtomicCountChanged = true
		return
	}

	gidxs := s.FindMolecules(molID, group.Inactive)
	gi := gidxs[rg.Move.Intn(len(gidxs))]
	g := &s.Groups[gi]

	oldCM := g.CM
	newCM := s.Geo.Randompos(rg.Move)
	axis := randomUnitVector(rg.Move)
	angle := rg.Move.Uniform(0, 2*math.Pi)
	quat := mgl64.QuatRotate(angle, axis)

	for i := g.Begin; i < g.End(); i++ {
		s.Particles[i].Rotate(oldCM, quat)
	}
	delta := newCM.Sub(oldCM)
	for i := g.Begin; i < g.End(); i++ {
		s.Particles[i].Pos = s.Particles[i].Pos.Add(delta)
	}
	g.CM = newCM
	g.Activate(g.Capacity)
	c.Group(gi).All = true
}

// proposeSwap implements the swap sub-case: exactly one atom species
// changes id in place. The outgoing atom is found by scanning for any
// currently active particle carrying its atom id -- swap reactions are
// expected to share one physical group of titratable sites between the
// reactant and product atomic molecule types, so the sites themselves
// never move, only their stored atom id flips.
func (m *Speciation) proposeSwap(trial *space.Space, rg *rng.Pair, c *change.Change, rxn *topology.Reaction) {
	outSpecies, inSpecies := rxn.Reactants[0], rxn.Products[0]
	if !m.forward {
		outSpecies, inSpecies = rxn.Products[0], rxn.Reactants[0]
	}
	outMT := trial.Molecules.MustByID(outSpecies.Molecule)
	inMT := trial.Molecules.MustByID(inSpecies.Molecule)

	candidates := trial.FindAtoms(outMT.AtomIDs[0])
	if len(candidates) == 0 {
		return
	}
	idx := candidates[rg.Move.Intn(len(candidates))]
	trial.Particles[idx].ID = inMT.AtomIDs[0]

	gi := trial.FindGroupContaining(idx)
	g := &trial.Groups[gi]
	gc := c.Group(gi)
	gc.AddAtom(g.RelIndex(idx))

	c.DN = true
	c.TouchSpecies(outSpecies.Molecule)
	c.TouchSpecies(inSpecies.Molecule)
	c.Sort()
	m.proposed = true
}

// Bias returns +/-lnK: the sign is - for the forward direction (products
// forming) and + for backward, matching the convention idealTerm uses for
// the complementary ideal-gas correction. Any bonded-energy change from an
// activated/deactivated molecular group is already present in uNew-uOld via
// Bonded.Energy's own per-group restricted evaluation, so Bias doesn't
// need to add it again.
func (m *Speciation) Bias(c *change.Change, uold, unew float64) float64 {
	if !m.proposed {
		return 0
	}
	rxn := m.Reactions.At(m.rxnIdx)
	if m.forward {
		return -rxn.LnK
	}
	return rxn.LnK
}

func (m *Speciation) Accept(c *change.Change) {
	if !m.proposed {
		m.Stats.Reject()
		return
	}
	rxn := m.Reactions.At(m.rxnIdx)
	m.Stats.Accept()
	m.statsFor(rxn.Name).Accept()
	if rxn.Canonic {
		if m.forward {
			rxn.NReservoir--
		} else {
			rxn.NReservoir++
		}
		if rxn.NReservoir < 0 {
			panic(fmt.Sprintf("speciation: canonic reservoir for %q went negative", rxn.Name))
		}
	}
}

func (m *Speciation) Reject(c *change.Change) {
	m.Stats.Reject()
	if m.proposed {
		m.statsFor(m.Reactions.At(m.rxnIdx).Name).Reject()
	}
}
