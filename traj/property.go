package traj

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/molsim/mcengine/space"
)

// PropertyWriter is the charge/radius companion to BinaryWriter: a reactive
// (rcmc swap) move can change a particle's atom id in place, which changes
// its charge and radius without moving it, so these are tracked as their
// own per-frame stream rather than assumed constant from the topology
// alone.
type PropertyWriter struct {
	w io.Writer
}

func NewPropertyWriter(w io.Writer) *PropertyWriter {
	return &PropertyWriter{w: w}
}

// WriteFrame encodes one frame: a uint32 count followed by that many
// (charge, radius) float32 pairs, little-endian, index-aligned with the
// corresponding BinaryWriter frame. Radius is sigma/2 of the particle's
// current atom type; inactive slots are written as (0, 0) rather than
// whatever stale atom id they last held.
func (pw *PropertyWriter) WriteFrame(s *space.Space) error {
	n := uint32(len(s.Particles))
	if err := binary.Write(pw.w, binary.LittleEndian, n); err != nil {
		return fmt.Errorf("traj: write property header: %w", err)
	}
	active := make([]bool, len(s.Particles))
	for gi := range s.Groups {
		g := &s.Groups[gi]
		for i := g.Begin; i < g.ActiveEnd(); i++ {
			active[i] = true
		}
	}
	pair := make([]float32, 2)
	for i, p := range s.Particles {
		if active[i] {
			at := s.Atoms.MustByID(p.ID)
			pair[0], pair[1] = float32(p.Charge), float32(at.Sigma/2)
		} else {
			pair[0], pair[1] = 0, 0
		}
		if err := binary.Write(pw.w, binary.LittleEndian, pair); err != nil {
			return fmt.Errorf("traj: write property body: %w", err)
		}
	}
	return nil
}
