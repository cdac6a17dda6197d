// Package replex is the concrete, swappable implementation of a
// replica-exchange transport ("replicas communicate only at explicit
// exchange steps"): a WebSocket rendezvous (github.com/gorilla/websocket)
// for replicas running as separate processes, and a no-op transport for a
// replica running without a configured peer.
package replex

import (
	"context"
	"errors"
)

// ExchangeInfo is what two replicas trade at an exchange attempt: just
// enough to decide and execute a parallel-tempering swap without either
// side sending its full particle state.
type ExchangeInfo struct {
	ReplicaID string  `json:"replica_id"`
	Energy    float64 `json:"energy"`
	Beta      float64 `json:"beta"`
}

// Transport is the rendezvous hook: RequestExchange blocks until the
// peer's ExchangeInfo for this round is available, ctx is done, or the
// transport errors.
type Transport interface {
	RequestExchange(ctx context.Context, local ExchangeInfo) (ExchangeInfo, error)
	Close() error
}

// ErrNoPeer is what NoopTransport always returns: a replica running without
// a configured peer runs its own Metropolis loop independently and never
// exchanges.
var ErrNoPeer = errors.New("replex: no peer configured")

type NoopTransport struct{}

func (NoopTransport) RequestExchange(ctx context.Context, local ExchangeInfo) (ExchangeInfo, error) {
	return ExchangeInfo{}, ErrNoPeer
}

func (NoopTransport) Close() error { return nil }
