package propagator

import (
	"testing"

	"github.com/molsim/mcengine/change"
	"github.com/molsim/mcengine/internal/rng"
	"github.com/molsim/mcengine/space"
	"github.com/stretchr/testify/assert"
)

type namedMove string

func (n namedMove) Name() string                                        { return string(n) }
func (n namedMove) Propose(*space.Space, *rng.Pair, *change.Change)      {}
func (n namedMove) Bias(*change.Change, float64, float64) float64        { return 0 }
func (n namedMove) Accept(*change.Change)                                {}
func (n namedMove) Reject(*change.Change)                                {}

func TestSampleReturnsNilWithNoEntries(t *testing.T) {
	p := New(10)
	assert.Nil(t, p.Sample(rng.NewPair(1, 2)))
}

func TestSampleHonorsWeightDistribution(t *testing.T) {
	p := New(1000)
	p.Register(namedMove("light"), 1)
	p.Register(namedMove("heavy"), 9)

	rg := rng.NewPair(42, 43)
	counts := map[string]int{}
	for i := 0; i < 1000; i++ {
		m := p.Sample(rg)
		counts[m.Name()]++
	}
	assert.Greater(t, counts["heavy"], counts["light"]*3, "a 9x heavier weight should draw substantially more often")
}

func TestRegisterReplacesNonPositiveWeightWithOne(t *testing.T) {
	p := New(1)
	p.Register(namedMove("only"), 0)
	rg := rng.NewPair(1, 2)
	assert.Equal(t, "only", p.Sample(rg).Name(), "a non-positive weight falls back to 1, not to exclusion")
}

func TestMovesReturnsRegistrationOrder(t *testing.T) {
	p := New(1)
	p.Register(namedMove("first"), 1)
	p.Register(namedMove("second"), 1)
	got := p.Moves()
	assert.Equal(t, []string{"first", "second"}, []string{got[0].Name(), got[1].Name()})
}
