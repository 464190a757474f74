package document

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// BBox is an axis aligned bounding box.
type BBox struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// EmptyBBox returns an inverted box that any Merge call will replace.
func EmptyBBox() BBox {
	return BBox{
		Min: mgl32.Vec3{math32.MaxFloat32, math32.MaxFloat32, math32.MaxFloat32},
		Max: mgl32.Vec3{-math32.MaxFloat32, -math32.MaxFloat32, -math32.MaxFloat32},
	}
}

// Empty reports whether the box has been merged with nothing yet.
func (b BBox) Empty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// MergePoint grows the box to contain p.
func (b BBox) MergePoint(p mgl32.Vec3) BBox {
	for i := 0; i < 3; i++ {
		b.Min[i] = math32.Min(b.Min[i], p[i])
		b.Max[i] = math32.Max(b.Max[i], p[i])
	}
	return b
}

// Merge grows the box to contain o.
func (b BBox) Merge(o BBox) BBox {
	if o.Empty() {
		return b
	}
	return b.MergePoint(o.Min).MergePoint(o.Max)
}

// Translate offsets both corners by delta.
func (b BBox) Translate(delta mgl32.Vec3) BBox {
	return BBox{Min: b.Min.Add(delta), Max: b.Max.Add(delta)}
}

// Center returns the midpoint of the box.
func (b BBox) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the extent of the box along each axis.
func (b BBox) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Vertices returns the 12 outline edges of the box as 24 line-list vertices.
func (b BBox) Vertices() []mgl32.Vec3 {
	lo, hi := b.Min, b.Max
	c := [8]mgl32.Vec3{
		{lo[0], lo[1], lo[2]},
		{hi[0], lo[1], lo[2]},
		{hi[0], hi[1], lo[2]},
		{lo[0], hi[1], lo[2]},
		{lo[0], lo[1], hi[2]},
		{hi[0], lo[1], hi[2]},
		{hi[0], hi[1], hi[2]},
		{lo[0], hi[1], hi[2]},
	}
	edges := [12][2]int{
		{0, 1}, {1, 2}, {2, 3}, {3, 0}, // bottom
		{4, 5}, {5, 6}, {6, 7}, {7, 4}, // top
		{0, 4}, {1, 5}, {2, 6}, {3, 7}, // sides
	}
	out := make([]mgl32.Vec3, 0, 24)
	for _, e := range edges {
		out = append(out, c[e[0]], c[e[1]])
	}
	return out
}
