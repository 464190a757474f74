package common

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Plane represents a plane in 3D space using the equation: n·p + d = 0.
type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

// Frustum represents the six planes of a view frustum for culling.
// Planes are oriented so that positive half-space is inside the frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumPlane indices for clarity
const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// ExtractFrustum extracts frustum planes from a combined view-projection matrix
// using the Gribb/Hartmann method.
//
// Reference: https://www8.cs.umu.se/kurser/5DV051/HT12/lab/plane_extraction.pdf
//
// Parameters:
//   - viewProj: the projection * view matrix
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes
func ExtractFrustum(viewProj mgl32.Mat4) Frustum {
	row := func(i int) mgl32.Vec4 { return viewProj.Row(i) }
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	combos := [6]mgl32.Vec4{
		r3.Add(r0), // left
		r3.Sub(r0), // right
		r3.Add(r1), // bottom
		r3.Sub(r1), // top
		r2,         // near; WebGPU clip space depth is [0, 1]
		r3.Sub(r2), // far
	}

	var f Frustum
	for i, c := range combos {
		n := c.Vec3()
		length := n.Len()
		if length > 0 {
			f.Planes[i] = Plane{Normal: n.Mul(1 / length), Distance: c[3] / length}
		}
	}
	return f
}

// ContainsPoint reports whether p lies inside or on every plane.
func (f Frustum) ContainsPoint(p mgl32.Vec3) bool {
	for _, pl := range f.Planes {
		if pl.Normal.Dot(p)+pl.Distance < 0 {
			return false
		}
	}
	return true
}

// IntersectsAABB reports whether the box is at least partially inside the frustum.
// Uses the positive vertex test, which may report false positives near frustum corners.
func (f Frustum) IntersectsAABB(minB, maxB mgl32.Vec3) bool {
	for _, pl := range f.Planes {
		positive := minB
		for axis := 0; axis < 3; axis++ {
			if pl.Normal[axis] >= 0 {
				positive[axis] = maxB[axis]
			}
		}
		if pl.Normal.Dot(positive)+pl.Distance < 0 {
			return false
		}
	}
	return true
}
