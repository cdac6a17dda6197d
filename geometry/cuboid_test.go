package geometry

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVdistMinimumImage(t *testing.T) {
	c := NewCube(10)
	v := c.Vdist(mgl64.Vec3{4.9, 0, 0}, mgl64.Vec3{-4.9, 0, 0})
	assert.InDelta(t, -0.2, v.X(), 1e-9, "wrap-around distance should be the short way around")
}

func TestBoundaryWrapsIntoPrimaryImage(t *testing.T) {
	c := NewCube(10)
	p := mgl64.Vec3{6, -6, 0}
	c.Boundary(&p)
	assert.InDelta(t, -4, p.X(), 1e-9)
	assert.InDelta(t, 4, p.Y(), 1e-9)
}

func TestScaleVolumeIsotropicPreservesAspectRatio(t *testing.T) {
	c := NewCube(10)
	scale := c.ScaleVolume(8000, Isotropic)
	assert.InDelta(t, scale.X(), scale.Y(), 1e-9)
	assert.InDelta(t, scale.X(), scale.Z(), 1e-9)
	assert.InDelta(t, 8000, c.GetVolume(), 1e-6)
}

func TestScaleVolumeRejectsNonPositive(t *testing.T) {
	c := NewCube(10)
	require.Panics(t, func() { c.ScaleVolume(0, Isotropic) })
	require.Panics(t, func() { c.ScaleVolume(-5, Isotropic) })
}

func TestNewCuboidRejectsDegenerateLength(t *testing.T) {
	require.Panics(t, func() { NewCuboid(mgl64.Vec3{0, 1, 1}) })
}

func TestRandomposStaysInsideCell(t *testing.T) {
	c := NewCuboid(mgl64.Vec3{4, 6, 8})
	fixed := fixedFloat{v: 0.9}
	p := c.Randompos(fixed)
	assert.Less(t, p.X(), 2.0)
	assert.Less(t, p.Y(), 3.0)
	assert.Less(t, p.Z(), 4.0)
}

type fixedFloat struct{ v float64 }

func (f fixedFloat) Float64() float64 { return f.v }
