// Package propagator implements the weighted-random move selector that
// runs repeat times per sweep.
package propagator

import (
	"github.com/molsim/mcengine/internal/rng"
	"github.com/molsim/mcengine/move"
)

// entry pairs one move with its selection weight; over a sweep's draws the
// move is picked in proportion to that weight.
type entry struct {
	mv     move.Move
	weight float64
}

// Propagator holds (move, weight) pairs and draws from the weighted
// categorical distribution they define, Repeat times per sweep.
type Propagator struct {
	entries []entry
	total   float64
	Repeat  int
}

func New(repeat int) *Propagator {
	return &Propagator{Repeat: repeat}
}

// Register adds mv to the selection pool with the given weight (typically
// the move's configured `repeat` count, so a move configured to run 5x as
// often as another gets proportionally more draws).
func (p *Propagator) Register(mv move.Move, weight float64) {
	if weight <= 0 {
		weight = 1
	}
	p.entries = append(p.entries, entry{mv: mv, weight: weight})
	p.total += weight
}

// Sample draws one move according to the registered weights. Random picks
// use the same RNG stream as other move randomness -- they are not
// pre-committed, so a rejected step never advances the deterministic
// replay any differently than an accepted one would.
func (p *Propagator) Sample(rg *rng.Pair) move.Move {
	if len(p.entries) == 0 {
		return nil
	}
	target := rg.Move.Float64() * p.total
	var acc float64
	for _, e := range p.entries {
		acc += e.weight
		if target <= acc {
			return e.mv
		}
	}
	return p.entries[len(p.entries)-1].mv
}

// Moves returns every registered move, in registration order -- used by
// the driver to report per-move statistics at the end of a run.
func (p *Propagator) Moves() []move.Move {
	out := make([]move.Move, len(p.entries))
	for i, e := range p.entries {
		out[i] = e.mv
	}
	return out
}
