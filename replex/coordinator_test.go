package replex

import (
	"context"
	"testing"

	"github.com/molsim/mcengine/internal/rng"
	"github.com/molsim/mcengine/mcdriver"
	"github.com/stretchr/testify/assert"
)

type fakeTransport struct {
	peer ExchangeInfo
	err  error
}

func (f fakeTransport) RequestExchange(ctx context.Context, local ExchangeInfo) (ExchangeInfo, error) {
	return f.peer, f.err
}

func (f fakeTransport) Close() error { return nil }

func newTestCoordinator(beta float64, peer ExchangeInfo) *Coordinator {
	return &Coordinator{
		Driver:    &mcdriver.Driver{RNG: rng.NewPair(1, 2), UTotal: 0},
		Transport: fakeTransport{peer: peer},
		ReplicaID: "r0",
		Beta:      beta,
	}
}

func TestAttemptExchangeAcceptsWhenDeltaIsZero(t *testing.T) {
	c := newTestCoordinator(0.5, ExchangeInfo{})
	c.Driver.UTotal = 10
	c.Transport = fakeTransport{peer: ExchangeInfo{ReplicaID: "r1", Beta: 0.5, Energy: 0}}
	c.attemptExchange(context.Background())
	assert.Equal(t, 0.5, c.Beta)
}

func TestAttemptExchangeAdoptsPeerBetaOnFavorableDelta(t *testing.T) {
	c := newTestCoordinator(1.0, ExchangeInfo{})
	c.Driver.UTotal = 0
	// delta = (1.0-0.1)*(-50-0) < 0, a favorable swap that must always be taken.
	c.Transport = fakeTransport{peer: ExchangeInfo{ReplicaID: "r1", Beta: 0.1, Energy: -50}}
	c.attemptExchange(context.Background())
	assert.Equal(t, 0.1, c.Beta)
}

func TestAttemptExchangeRejectsOnExtremeUnfavorableDelta(t *testing.T) {
	c := newTestCoordinator(1.0, ExchangeInfo{})
	c.Driver.UTotal = 0
	c.Transport = fakeTransport{peer: ExchangeInfo{ReplicaID: "r1", Beta: 0.0, Energy: 1e9}}
	c.attemptExchange(context.Background())
	assert.Equal(t, 1.0, c.Beta, "an astronomically unfavorable delta must be rejected regardless of the RNG draw")
}

func TestAttemptExchangeNoopOnNoPeer(t *testing.T) {
	c := newTestCoordinator(0.7, ExchangeInfo{})
	c.Transport = fakeTransport{err: ErrNoPeer}
	c.attemptExchange(context.Background())
	assert.Equal(t, 0.7, c.Beta, "no peer available must leave this replica's beta untouched")
}
