package move

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/molsim/mcengine/change"
	"github.com/molsim/mcengine/group"
	"github.com/molsim/mcengine/internal/rng"
	"github.com/molsim/mcengine/space"
	"github.com/molsim/mcengine/topology"
)

// dirVector turns a {1,1,1}-style mask into the Vec3 used to zero out
// excluded axes of a displacement.
func dirVector(dir [3]float64) mgl64.Vec3 {
	return mgl64.Vec3{dir[0], dir[1], dir[2]}
}

func cubeDisplacement(rg *rng.Stream, dp float64, dir mgl64.Vec3) mgl64.Vec3 {
	d := mgl64.Vec3{
		rg.Uniform(-dp, dp),
		rg.Uniform(-dp, dp),
		rg.Uniform(-dp, dp),
	}
	return mgl64.Vec3{d.X() * dir.X(), d.Y() * dir.Y(), d.Z() * dir.Z()}
}

// AtomicTransRot displaces one active atom of the configured molecule id by
// a uniform cube of half-width Dp masked by Dir, rewrapping it into the
// cell. If the atom belongs to a molecular group, the group's mass-center
// is recomputed and the change is flagged Internal so intramolecular terms
// (Bonded) recompute the group as well; pair terms re-evaluate the moved
// atom either way.
type AtomicTransRot struct {
	Stats
	Molecule topology.MoleculeID
	Dp       float64
	Dir      [3]float64
}

func (m *AtomicTransRot) Name() string { return "transrot" }

func (m *AtomicTransRot) Propose(trial *space.Space, rg *rng.Pair, c *change.Change) {
	groups := trial.FindMolecules(m.Molecule, group.Active)
	if len(groups) == 0 {
		return
	}
	gi := groups[rg.Move.Intn(len(groups))]
	g := &trial.Groups[gi]
	if g.Size == 0 {
		return
	}
	rel := rg.Move.Intn(g.Size)
	idx := g.Begin + rel

	disp := cubeDisplacement(rg.Move, m.Dp, dirVector(m.Dir))
	p := &trial.Particles[idx]
	p.Pos = p.Pos.Add(disp)
	trial.Geo.Boundary(&p.Pos)

	gc := c.Group(gi)
	gc.AddAtom(rel)
	if !g.Atomic {
		gc.Internal = true
		g.CM = trial.RecomputeCM(gi)
	}
}

func (m *AtomicTransRot) Bias(c *change.Change, uold, unew float64) float64 { return 0 }
func (m *AtomicTransRot) Accept(c *change.Change)                          { m.Stats.Accept() }
func (m *AtomicTransRot) Reject(c *change.Change)                          { m.Stats.Reject() }

// MolTransRot translates one active group's mass-center (masked, half-width
// Dp) and rotates every atom in it by a random quaternion about the
// mass-center, angle uniform in [-Dprot/2, +Dprot/2]. The whole group is
// flagged in the change, Internal=false (the group's external pair
// interactions may have changed).
type MolTransRot struct {
	Stats
	Molecule topology.MoleculeID
	Dp       float64
	Dprot    float64
	Dir      [3]float64
}

func (m *MolTransRot) Name() string { return "moltransrot" }

func (m *MolTransRot) Propose(trial *space.Space, rg *rng.Pair, c *change.Change) {
	groups := trial.FindMolecules(m.Molecule, group.Active)
	if len(groups) == 0 {
		return
	}
	gi := groups[rg.Move.Intn(len(groups))]
	g := &trial.Groups[gi]
	if g.Size == 0 {
		return
	}

	disp := cubeDisplacement(rg.Move, m.Dp, dirVector(m.Dir))
	axis := randomUnitVector(rg.Move)
	angle := rg.Move.Uniform(-m.Dprot/2, m.Dprot/2)
	quat := mgl64.QuatRotate(angle, axis)

	cm := g.CM.Add(disp)

	for i := g.Begin; i < g.ActiveEnd(); i++ {
		p := &trial.Particles[i]
		p.Pos = p.Pos.Add(disp)
		p.Rotate(cm, quat)
	}
	trial.Geo.Boundary(&cm)
	g.CM = cm
	g.Orientation = quat.Mul(g.Rotation())

	gc := c.Group(gi)
	gc.All = true
	gc.Internal = false
}

func (m *MolTransRot) Bias(c *change.Change, uold, unew float64) float64 { return 0 }
func (m *MolTransRot) Accept(c *change.Change)                          { m.Stats.Accept() }
func (m *MolTransRot) Reject(c *change.Change)                          { m.Stats.Reject() }

// randomUnitVector draws a uniform point on the unit sphere via the
// Marsaglia method, avoiding the polar bias a naive spherical-coordinate
// sample would introduce.
func randomUnitVector(rg *rng.Stream) mgl64.Vec3 {
	for {
		x := rg.Uniform(-1, 1)
		y := rg.Uniform(-1, 1)
		s := x*x + y*y
		if s >= 1 {
			continue
		}
		factor := 2 * math.Sqrt(1-s)
		return mgl64.Vec3{x * factor, y * factor, 1 - 2*s}
	}
}
