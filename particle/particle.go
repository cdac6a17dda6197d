// Package particle defines the Particle value type and its optional shape
// payload. Traits looked up by atom id (mass, sigma, epsilon, ...) live in
// package topology's AtomTable; Particle itself only carries the
// per-instance mutable state a move can touch.
package particle

import "github.com/go-gl/mathgl/mgl64"

// AtomID indexes into the process-wide atom table.
type AtomID int

// Shape is a tagged variant over the optional extra payload a particle can
// carry, modeled as a sum type rather than an inheritance hierarchy:
// vector-valued members (dipole, cigar axis) rotate with a quaternion,
// tensor-valued members (quadrupole, polarizability) rotate with the
// similarity transform R*T*R^T.
type ShapeKind int

const (
	ShapeNone ShapeKind = iota
	ShapeDipole
	ShapePolarizable
	ShapeQuadrupole
	ShapeCigar
)

// Shape holds every possible shape field; Kind says which ones are
// meaningful. This keeps Particle a flat, fixed-size struct suitable for a
// contiguous slice, at the cost of a few unused fields for particles with a
// simpler shape (e.g. a point charge still carries an unused orientation
// quaternion).
type Shape struct {
	Kind ShapeKind

	Dipole    mgl64.Vec3 // unit direction
	DipoleMag float64

	Polarizability mgl64.Mat3
	InducedDipole  mgl64.Vec3

	Quadrupole mgl64.Mat3

	CigarAxis       mgl64.Vec3 // unit direction
	CigarHalfLength float64
}

// Rotate applies quat to every vector member and the corresponding
// rotation matrix (derived from quat) to every tensor member. Particles
// with ShapeNone are a no-op.
func (s *Shape) Rotate(quat mgl64.Quat) {
	if s.Kind == ShapeNone {
		return
	}
	switch s.Kind {
	case ShapeDipole:
		s.Dipole = quat.Rotate(s.Dipole)
	case ShapePolarizable:
		s.InducedDipole = quat.Rotate(s.InducedDipole)
		R := QuatToMat3(quat)
		s.Polarizability = R.Mul3(s.Polarizability).Mul3(R.Transpose())
	case ShapeQuadrupole:
		R := QuatToMat3(quat)
		s.Quadrupole = R.Mul3(s.Quadrupole).Mul3(R.Transpose())
	case ShapeCigar:
		s.CigarAxis = quat.Rotate(s.CigarAxis)
	}
}

// QuatToMat3 extracts the rotation submatrix from a quaternion's Mat4,
// avoiding a direct Mat3 constructor that mathgl's Quat does not expose.
func QuatToMat3(q mgl64.Quat) mgl64.Mat3 {
	m4 := q.Mat4()
	return mgl64.Mat3{
		m4[0], m4[1], m4[2],
		m4[4], m4[5], m4[6],
		m4[8], m4[9], m4[10],
	}
}

// Particle is one slot in Space's flat particle array.
type Particle struct {
	ID       AtomID
	Pos      mgl64.Vec3
	Charge   float64
	Shape    Shape
}

// Rotate rotates the particle's position relative to origin and its shape
// payload in place by quat; callers translate to/about the rotation center
// before and after as needed (atomic rotation has no orientation of its
// own -- only molecular/group rotation calls this on a per-atom basis about
// a shared mass-center).
func (p *Particle) Rotate(origin mgl64.Vec3, quat mgl64.Quat) {
	rel := p.Pos.Sub(origin)
	p.Pos = origin.Add(quat.Rotate(rel))
	p.Shape.Rotate(quat)
}

// Clone returns a value copy -- Particle has no pointer fields, so a plain
// assignment already deep-copies it, but Clone documents the intent at
// call sites that care (sync, deletion-swap bookkeeping).
func (p Particle) Clone() Particle {
	return p
}
