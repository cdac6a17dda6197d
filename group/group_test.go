package group

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMolecularGroupActivateRequiresFullCapacity(t *testing.T) {
	g := Group{Begin: 0, Capacity: 3}
	require.Panics(t, func() { g.Activate(2) }, "molecular group must activate all-or-nothing")
	g.Activate(3)
	assert.True(t, g.IsActive())
	assert.Equal(t, 3, g.ActiveEnd())
}

func TestAtomicGroupActivatePartial(t *testing.T) {
	g := Group{Begin: 10, Capacity: 5, Atomic: true}
	g.Activate(2)
	assert.Equal(t, 2, g.Size)
	assert.Equal(t, 12, g.ActiveEnd())
	assert.True(t, g.MatchesFilter(Active))
}

func TestDeactivateZeroesSize(t *testing.T) {
	g := Group{Begin: 0, Capacity: 4}
	g.Activate(4)
	g.Deactivate()
	assert.False(t, g.IsActive())
	assert.True(t, g.MatchesFilter(Inactive))
}

func TestContainsAndRelIndex(t *testing.T) {
	g := Group{Begin: 20, Capacity: 4}
	assert.True(t, g.Contains(20))
	assert.True(t, g.Contains(23))
	assert.False(t, g.Contains(24))
	assert.Equal(t, 3, g.RelIndex(23))
}

func TestRelIndexPanicsOutsideWindow(t *testing.T) {
	g := Group{Begin: 20, Capacity: 4}
	require.Panics(t, func() { g.RelIndex(24) })
}

func TestMatchesFilterAll(t *testing.T) {
	active := Group{Begin: 0, Capacity: 1, Size: 1}
	inactive := Group{Begin: 0, Capacity: 1, Size: 0}
	assert.True(t, active.MatchesFilter(All))
	assert.True(t, inactive.MatchesFilter(All))
}

func TestRotationDefaultsToIdentity(t *testing.T) {
	g := Group{Begin: 0, Capacity: 1}
	assert.Equal(t, mgl64.QuatIdent(), g.Rotation())
}

func TestRotationReturnsExplicitOrientation(t *testing.T) {
	quat := mgl64.QuatRotate(1.0, mgl64.Vec3{0, 1, 0})
	g := Group{Begin: 0, Capacity: 1, Orientation: quat}
	assert.Equal(t, quat, g.Rotation())
}
