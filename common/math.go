package common

import (
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Epsilon is the tolerance used by the intersection helpers.
const Epsilon float32 = 1e-6

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), int(size)*len(data))
}

// StructToBytes reinterprets a pointer to a struct as a raw byte slice using unsafe.
//
// Parameters:
//   - v: pointer to the struct to reinterpret
//
// Returns:
//   - []byte: byte slice view of the struct's memory
func StructToBytes[T any](v *T) []byte {
	size := unsafe.Sizeof(*v)
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), int(size))
}

// Ray is a half line used for picking.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// PointAt returns the point at distance t along the ray.
func (r Ray) PointAt(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// IntersectPlane intersects the ray with the plane through point with the given normal.
//
// Parameters:
//   - point: any point on the plane
//   - normal: the plane normal, need not be normalized
//
// Returns:
//   - float32: the distance along the ray
//   - bool: false if the ray is parallel to the plane or the hit lies behind the origin
func (r Ray) IntersectPlane(point, normal mgl32.Vec3) (float32, bool) {
	denom := normal.Dot(r.Direction)
	if math32.Abs(denom) < Epsilon {
		return 0, false
	}
	t := point.Sub(r.Origin).Dot(normal) / denom
	if t < 0 {
		return 0, false
	}
	return t, true
}

// IntersectPolygon intersects the ray with a convex planar polygon given in winding order.
// Both windings are accepted.
//
// Parameters:
//   - vertices: the polygon corners, at least three
//
// Returns:
//   - float32: the distance along the ray
//   - bool: true if the ray hits the polygon
func (r Ray) IntersectPolygon(vertices []mgl32.Vec3) (float32, bool) {
	if len(vertices) < 3 {
		return 0, false
	}
	normal := PolygonNormal(vertices)
	if normal.Len() < Epsilon {
		return 0, false
	}
	t, ok := r.IntersectPlane(vertices[0], normal)
	if !ok {
		return 0, false
	}
	hit := r.PointAt(t)
	for i := range vertices {
		a := vertices[i]
		b := vertices[(i+1)%len(vertices)]
		if b.Sub(a).Cross(hit.Sub(a)).Dot(normal) < -Epsilon {
			return 0, false
		}
	}
	return t, true
}

// IntersectAABB performs a slab test against an axis aligned box.
//
// Parameters:
//   - minB: the minimum corner
//   - maxB: the maximum corner
//
// Returns:
//   - float32: the entry distance, clamped to zero when the origin is inside the box
//   - bool: true if the ray hits the box
func (r Ray) IntersectAABB(minB, maxB mgl32.Vec3) (float32, bool) {
	tMin := float32(0)
	tMax := float32(math32.MaxFloat32)
	for axis := 0; axis < 3; axis++ {
		d := r.Direction[axis]
		o := r.Origin[axis]
		if math32.Abs(d) < Epsilon {
			if o < minB[axis] || o > maxB[axis] {
				return 0, false
			}
			continue
		}
		inv := 1 / d
		t1 := (minB[axis] - o) * inv
		t2 := (maxB[axis] - o) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math32.Max(tMin, t1)
		tMax = math32.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}
	return tMin, true
}

// PolygonNormal returns the normalized Newell normal of a polygon, or the zero vector
// for degenerate input.
func PolygonNormal(vertices []mgl32.Vec3) mgl32.Vec3 {
	var n mgl32.Vec3
	for i := range vertices {
		cur := vertices[i]
		next := vertices[(i+1)%len(vertices)]
		n[0] += (cur[1] - next[1]) * (cur[2] + next[2])
		n[1] += (cur[2] - next[2]) * (cur[0] + next[0])
		n[2] += (cur[0] - next[0]) * (cur[1] + next[1])
	}
	if n.Len() < Epsilon {
		return mgl32.Vec3{}
	}
	return n.Normalize()
}

// Snap rounds every component of v to the nearest multiple of size. A size of zero or less
// returns v unchanged.
func Snap(v mgl32.Vec3, size float32) mgl32.Vec3 {
	if size <= 0 {
		return v
	}
	return mgl32.Vec3{
		math32.Round(v[0]/size) * size,
		math32.Round(v[1]/size) * size,
		math32.Round(v[2]/size) * size,
	}
}
