package common

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestIdentityFrustum(t *testing.T) {
	f := ExtractFrustum(mgl32.Ident4())

	assert.True(t, f.ContainsPoint(mgl32.Vec3{0, 0, 0.5}))
	assert.True(t, f.ContainsPoint(mgl32.Vec3{1, -1, 1}), "points on a plane are inside")
	assert.False(t, f.ContainsPoint(mgl32.Vec3{2, 0, 0.5}))
	assert.False(t, f.ContainsPoint(mgl32.Vec3{0, 0, -0.5}), "depth starts at zero")

	assert.True(t, f.IntersectsAABB(mgl32.Vec3{0.5, 0.5, 0.5}, mgl32.Vec3{3, 3, 3}), "partial overlap")
	assert.False(t, f.IntersectsAABB(mgl32.Vec3{2, 2, 0}, mgl32.Vec3{3, 3, 1}))
}

func TestPerspectiveFrustum(t *testing.T) {
	proj := mgl32.Perspective(mgl32.DegToRad(90), 1, 1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})
	f := ExtractFrustum(proj.Mul4(view))

	assert.True(t, f.ContainsPoint(mgl32.Vec3{0, 0, -10}))
	assert.False(t, f.ContainsPoint(mgl32.Vec3{0, 0, 10}), "behind the camera")
	assert.False(t, f.ContainsPoint(mgl32.Vec3{0, 0, -200}), "past the far plane")
	assert.False(t, f.IntersectsAABB(mgl32.Vec3{50, -1, -11}, mgl32.Vec3{52, 1, -9}))
	assert.True(t, f.IntersectsAABB(mgl32.Vec3{-1, -1, -11}, mgl32.Vec3{1, 1, -9}))
}
