package move

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/molsim/mcengine/change"
	"github.com/molsim/mcengine/group"
	"github.com/molsim/mcengine/internal/rng"
	"github.com/molsim/mcengine/space"
	"github.com/molsim/mcengine/topology"
)

// ConformationSwap replaces one active molecular group's relative-position
// (and optionally charge) layout with a weighted-random draw from its
// molecule's rigid-conformation library, preserving the group's current
// mass-center and orientation -- the template's RelPos is rotated by
// Group.Rotation() before being placed, the same accumulated quaternion
// MolTransRot updates, so a conformation swap never snaps a group back to
// its topology-file reference orientation. The chosen conformation index
// is stored on the group so analyses (e.g. a reaction-coordinate
// histogram) can read it back directly via Group.ConfID.
type ConformationSwap struct {
	Stats
	Molecule topology.MoleculeID
}

func (m *ConformationSwap) Name() string { return "conformationswap" }

func (m *ConformationSwap) Propose(trial *space.Space, rg *rng.Pair, c *change.Change) {
	groups := trial.FindMolecules(m.Molecule, group.Active)
	if len(groups) == 0 {
		return
	}
	gi := groups[rg.Move.Intn(len(groups))]
	g := &trial.Groups[gi]

	mt := trial.Molecules.MustByID(g.Molecule)
	if len(mt.Confs) == 0 {
		return
	}
	confIdx := mt.PickConformation(rg.Move.Float64())
	conf := mt.Confs[confIdx]

	cm := g.CM
	orient := g.Rotation()
	for i := 0; i < g.Capacity; i++ {
		p := &trial.Particles[g.Begin+i]
		rel := conf.RelPos[i]
		p.Pos = cm.Add(orient.Rotate(mgl64.Vec3{rel[0], rel[1], rel[2]}))
		if conf.Charges != nil {
			p.Charge = conf.Charges[i]
		}
	}
	g.ConfID = confIdx

	gc := c.Group(gi)
	gc.All = true
	gc.Internal = true
}

func (m *ConformationSwap) Bias(c *change.Change, uold, unew float64) float64 { return 0 }
func (m *ConformationSwap) Accept(c *change.Change)                          { m.Stats.Accept() }
func (m *ConformationSwap) Reject(c *change.Change)                          { m.Stats.Reject() }
