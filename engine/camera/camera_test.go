package camera

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertVecInDelta(t *testing.T, want, got mgl32.Vec3, delta float64) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], delta, "component %d of %v", i, got)
	}
}

func TestOrbitControllerStartsBelowTarget(t *testing.T) {
	cc := NewOrbitController(WithRadius(100), WithElevation(0), WithTarget(mgl32.Vec3{10, 0, 0}))
	pos := cc.Position()
	assert.InDelta(t, 10, pos[0], 1e-3)
	assert.InDelta(t, -100, pos[1], 1e-3)
	assert.InDelta(t, 0, pos[2], 1e-3)
}

func TestOrbitControllerClampsRadiusAndElevation(t *testing.T) {
	cc := NewOrbitController(WithRadius(100), WithRadiusBounds(50, 200), WithZoomSpeed(10))
	cc.Zoom(10)
	assert.Equal(t, float32(50), cc.Radius())
	cc.Zoom(-100)
	assert.Equal(t, float32(200), cc.Radius())

	cc.Orbit(0, 1e6)
	assert.Less(t, cc.Elevation(), float32(math32.Pi/2))
	assert.InDelta(t, 200, cc.Position().Sub(cc.Target()).Len(), 1e-2)
}

func TestPanMovesEyeAndTargetTogether(t *testing.T) {
	cc := NewOrbitController(WithRadius(100), WithElevation(0), WithPanSpeed(0.01))
	offset := cc.Position().Sub(cc.Target())
	cc.Pan(10, 0)
	assert.InDelta(t, -10, cc.Target()[0], 1e-3, "dragging right moves the view left")
	assertVecInDelta(t, offset, cc.Position().Sub(cc.Target()), 1e-3)
}

func TestCameraAxesAndPickRay(t *testing.T) {
	c := NewCamera(
		WithViewport(200, 100),
		WithController(NewOrbitController(WithRadius(100), WithElevation(0))),
	)
	assertVecInDelta(t, mgl32.Vec3{0, 1, 0}, c.Forward(), 1e-5)
	assertVecInDelta(t, mgl32.Vec3{1, 0, 0}, c.Right(), 1e-5)
	assertVecInDelta(t, mgl32.Vec3{0, 0, 1}, c.Up(), 1e-5)
	assert.Equal(t, float32(2), c.Aspect())

	center := c.PickRay(100, 50)
	assertVecInDelta(t, mgl32.Vec3{0, 1, 0}, center.Direction, 1e-5)
	assertVecInDelta(t, mgl32.Vec3{0, -100, 0}, center.Origin, 1e-3)

	// With a 90 degree fov the top edge is 45 degrees up.
	top := c.PickRay(100, 0)
	assert.InDelta(t, top.Direction[1], top.Direction[2], 1e-5)

	right := c.PickRay(200, 50)
	assert.InDelta(t, 2*right.Direction[1], right.Direction[0], 1e-5)
}

func TestViewProjectionMapsTargetToDepthRange(t *testing.T) {
	c := NewCamera(WithViewport(100, 100), WithController(NewOrbitController(WithRadius(100), WithElevation(0))))
	clip := c.ViewProjection().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	ndc := clip.Vec3().Mul(1 / clip.W())
	assert.InDelta(t, 0, ndc[0], 1e-5)
	assert.InDelta(t, 0, ndc[1], 1e-5)
	assert.Greater(t, ndc[2], float32(0))
	assert.Less(t, ndc[2], float32(1))

	require.InDelta(t, 2/float32(100), c.PixelSize(), 1e-6)
}
