package move

import (
	"math"

	"github.com/molsim/mcengine/change"
	"github.com/molsim/mcengine/geometry"
	"github.com/molsim/mcengine/internal/rng"
	"github.com/molsim/mcengine/space"
)

// Volume proposes a log-volume step and rescales the whole system. The
// bias carries the isobaric correction; the driver never needs a special
// case for it, since the move's Bias hook is the only place NPT's
// (N+1)lnV term is allowed to live.
type Volume struct {
	Stats
	DV       float64 // half-width of the uniform ln(V) step
	Method   geometry.ScaleMethod
	Pressure float64 // beta*P, in 1/Å^3

	vOld, vNew float64 // captured by Propose, consumed by Bias
	nBodies    int     // independent rigid bodies: active atoms + active molecular groups
}

func (m *Volume) Name() string { return "volume" }

func (m *Volume) Propose(trial *space.Space, rg *rng.Pair, c *change.Change) {
	m.vOld = trial.Geo.GetVolume()
	dlnV := rg.Move.Uniform(-m.DV, m.DV)
	m.vNew = m.vOld * math.Exp(dlnV)

	trial.ScaleVolume(m.vNew, m.Method)

	m.nBodies = 0
	for i := range trial.Groups {
		g := &trial.Groups[i]
		if g.Size == 0 {
			continue
		}
		if g.Atomic {
			m.nBodies += g.Size
		} else {
			m.nBodies++
		}
	}

	c.DV = true
	c.All = true
}

// Bias returns the isobaric correction -(N+1)*ln(Vnew/Vold) +
// beta*P*(Vnew-Vold), using the volume and body count captured by the
// immediately preceding Propose. uold/unew are ignored: the correction
// depends only on the volume change itself, not on the pair-energy delta
// the Hamiltonian already captured.
func (m *Volume) Bias(c *change.Change, uold, unew float64) float64 {
	return -float64(m.nBodies+1)*math.Log(m.vNew/m.vOld) + m.Pressure*(m.vNew-m.vOld)
}

func (m *Volume) Accept(c *change.Change) { m.Stats.Accept() }
func (m *Volume) Reject(c *change.Change) { m.Stats.Reject() }
