// Package rng provides the two RNG streams the engine needs: a "move" RNG
// consumed by every move's random choices, and a "global" RNG consumed by
// analyses and initial particle placement. Both are explicit state objects
// (never package-level globals) so a checkpoint can capture and restore
// them bit-for-bit when saverandom=true.
package rng

import (
	"encoding/binary"
	"math/rand"
)

// Stream wraps math/rand.Rand with a checkpointable seed/state pair. The
// underlying generator is not itself serializable, so State round-trips by
// reseeding from the recorded seed and replaying the recorded draw count --
// sufficient for the engine's own replay needs, since no stream is ever
// rewound mid-sweep, only saved between sweeps.
type Stream struct {
	seed  int64
	draws uint64
	r     *rand.Rand
}

// NewStream seeds a stream. Policy "default" in the config layer maps to a
// time-derived seed chosen by the caller; "fixed"/integer maps to that
// literal value.
func NewStream(seed int64) *Stream {
	return &Stream{seed: seed, r: rand.New(rand.NewSource(seed))}
}

func (s *Stream) Float64() float64 {
	s.draws++
	return s.r.Float64()
}

// Uniform returns a sample in [lo, hi).
func (s *Stream) Uniform(lo, hi float64) float64 {
	return lo + s.Float64()*(hi-lo)
}

// Intn returns a sample in [0, n). Built on Float64 rather than
// *rand.Rand's own Intn (which consumes a variable, rejection-sampled
// number of underlying draws) so every Stream method advances the
// generator by exactly one Float64 draw -- the invariant Restore's
// fast-forward-by-replaying-Float64 depends on.
func (s *Stream) Intn(n int) int {
	return int(s.Float64() * float64(n))
}

// Bool returns a fair coin flip.
func (s *Stream) Bool() bool {
	return s.Float64() < 0.5
}

// State is the checkpointed form of a Stream.
type State struct {
	Seed  int64
	Draws uint64
}

// Checkpoint captures the stream's seed and draw count.
func (s *Stream) Checkpoint() State {
	return State{Seed: s.seed, Draws: s.draws}
}

// Restore reseeds the stream and fast-forwards it to the recorded draw
// count, so two restores from the same State produce the same subsequent
// sequence.
func Restore(st State) *Stream {
	s := NewStream(st.Seed)
	for i := uint64(0); i < st.Draws; i++ {
		s.r.Float64()
	}
	s.draws = st.Draws
	return s
}

// Bytes/FromBytes support embedding a stream's checkpoint in a binary state
// file without reflecting on the State struct.
func (st State) Bytes() []byte {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint64(b[0:8], uint64(st.Seed))
	binary.LittleEndian.PutUint64(b[8:16], st.Draws)
	return b
}

func StateFromBytes(b []byte) State {
	return State{
		Seed:  int64(binary.LittleEndian.Uint64(b[0:8])),
		Draws: binary.LittleEndian.Uint64(b[8:16]),
	}
}

// Pair bundles the move RNG and the global RNG the concurrency model
// requires: moves consume Move, analyses and initial placement consume
// Global.
type Pair struct {
	Move   *Stream
	Global *Stream
}

func NewPair(moveSeed, globalSeed int64) *Pair {
	return &Pair{Move: NewStream(moveSeed), Global: NewStream(globalSeed)}
}
