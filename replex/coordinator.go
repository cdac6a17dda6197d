package replex

import (
	"context"
	"math"
	"time"

	channerics "github.com/niceyeti/channerics/channels"

	"github.com/molsim/mcengine/internal/mclog"
	"github.com/molsim/mcengine/mcdriver"
)

// Coordinator runs a Driver's sweeps and, at a fixed wall-clock cadence,
// attempts a parallel-tempering exchange with whatever Transport it was
// built with. A NoopTransport makes this degrade to running the Driver
// with no exchange attempts at all.
type Coordinator struct {
	Driver    *mcdriver.Driver
	Transport Transport
	ReplicaID string
	Beta      float64 // this replica's inverse temperature
	Logger    mclog.Logger

	// ExchangeEvery paces exchange attempts; a channerics ticker drives the
	// attempt loop off a ticker channel.
	ExchangeEvery time.Duration
}

// Run performs macro outer sweeps of micro Steps each, attempting an
// exchange between sweeps whenever the ticker fires. It returns on ctx
// cancellation or the first Driver error.
func (c *Coordinator) Run(ctx context.Context, macro, micro int) error {
	ticker := channerics.NewTicker(ctx.Done(), c.ExchangeEvery)
	for i := 0; i < macro; i++ {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if err := c.Driver.Sweep(micro); err != nil {
			return err
		}
		select {
		case <-ticker:
			c.attemptExchange(ctx)
		default:
		}
	}
	return nil
}

// attemptExchange runs one rendezvous round: trade (energy, beta) with the
// peer, and if both sides accept, swap the two replicas' temperatures by
// exchanging this replica's ensemble beta for the peer's -- the config-
// and-driver layer is expected to re-read Coordinator.Beta afterward and
// re-weight any beta-dependent move bias, since the dual-state particle
// data itself never crosses the wire.
func (c *Coordinator) attemptExchange(ctx context.Context) {
	local := ExchangeInfo{ReplicaID: c.ReplicaID, Energy: c.Driver.UTotal, Beta: c.Beta}
	peer, err := c.Transport.RequestExchange(ctx, local)

	var logger mclog.Logger
	if c.Logger != nil {
		logger = c.Logger.WithPrefix(c.ReplicaID)
	}

	if err != nil {
		if logger != nil && err != ErrNoPeer {
			logger.Warnf("exchange attempt failed: %v", err)
		}
		return
	}

	delta := (c.Beta - peer.Beta) * (peer.Energy - local.Energy)
	accept := delta <= 0 || c.Driver.RNG.Global.Float64() < math.Exp(-delta)
	if accept {
		if logger != nil {
			logger.Infof("exchange accepted with %s (beta %.4g <-> %.4g)", peer.ReplicaID, c.Beta, peer.Beta)
		}
		c.Beta = peer.Beta
	} else if logger != nil {
		logger.Debugf("exchange rejected with %s", peer.ReplicaID)
	}
}
