// Package traj writes particle trajectories in a small fixed-point binary
// format and in a handful of minimal textual formats (PQR, XYZ, GRO, AAM).
// The binary writer mirrors the explicit little-endian packing style of the
// teacher's archetype hashing (ecs.go's binary.LittleEndian.PutUint64) and
// its chunked vox.go readers: every frame is a flat sequence of
// binary.Write calls against a fixed field layout, no reflection, no
// versioned envelope.
package traj

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/molsim/mcengine/space"
)

// fixedScale is the binary encoder's quantization step: one unit is
// 10^-3 length-unit (e.g. Angstrom when the rest of the engine is in
// Angstrom), stored as a signed 32-bit integer.
const fixedScale = 1000.0

// BinaryWriter appends fixed-point frames to an io.Writer. Every active and
// inactive slot is written (inactive slots carry whatever stale position
// they were last placed at): the frame is purely positional and
// index-aligned with the particle array, so a reader pairs it with the
// state file's group table to know which indices are live in a given frame.
type BinaryWriter struct {
	w io.Writer
}

func NewBinaryWriter(w io.Writer) *BinaryWriter {
	return &BinaryWriter{w: w}
}

// WriteFrame encodes one frame: the box length (three float64 components),
// a uint32 particle count, then that many (x,y,z) int32 triples, each
// position component quantized to fixedScale and written little-endian.
// Inactive slots are written along with active ones -- the frame is purely
// positional and index-aligned with the particle array, so a reader pairs
// it with the state file's group table to know which indices are live.
func (bw *BinaryWriter) WriteFrame(s *space.Space) error {
	l := s.Geo.GetLength()
	box := [3]float64{l.X(), l.Y(), l.Z()}
	if err := binary.Write(bw.w, binary.LittleEndian, box); err != nil {
		return fmt.Errorf("traj: write frame box: %w", err)
	}
	n := uint32(len(s.Particles))
	if err := binary.Write(bw.w, binary.LittleEndian, n); err != nil {
		return fmt.Errorf("traj: write frame header: %w", err)
	}
	buf := make([]int32, 3)
	for _, p := range s.Particles {
		buf[0] = int32(p.Pos.X() * fixedScale)
		buf[1] = int32(p.Pos.Y() * fixedScale)
		buf[2] = int32(p.Pos.Z() * fixedScale)
		if err := binary.Write(bw.w, binary.LittleEndian, buf); err != nil {
			return fmt.Errorf("traj: write frame body: %w", err)
		}
	}
	return nil
}

// BinaryReader reads frames written by BinaryWriter back into plain
// position slices (one []Vec3-shaped triple array per frame).
type BinaryReader struct {
	r io.Reader
}

func NewBinaryReader(r io.Reader) *BinaryReader {
	return &BinaryReader{r: r}
}

// ReadFrame reads the next frame's box length and positions, dequantizing
// positions back to floating point. Returns io.EOF when the stream is
// exhausted (checked at the box-length read, the first field of a frame).
func (br *BinaryReader) ReadFrame() (box [3]float64, positions [][3]float64, err error) {
	if err = binary.Read(br.r, binary.LittleEndian, &box); err != nil {
		return box, nil, err
	}
	var n uint32
	if err = binary.Read(br.r, binary.LittleEndian, &n); err != nil {
		return box, nil, fmt.Errorf("traj: read frame header: %w", err)
	}
	out := make([][3]float64, n)
	buf := make([]int32, 3)
	for i := range out {
		if rerr := binary.Read(br.r, binary.LittleEndian, buf); rerr != nil {
			return box, nil, fmt.Errorf("traj: read frame body: %w", rerr)
		}
		out[i] = [3]float64{
			float64(buf[0]) / fixedScale,
			float64(buf[1]) / fixedScale,
			float64(buf[2]) / fixedScale,
		}
	}
	return box, out, nil
}
