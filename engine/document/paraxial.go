package document

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// GridSize is the world size of one grid overlay cell.
const GridSize float32 = 16

// TexAttribs are the per-face texture alignment attributes.
type TexAttribs struct {
	Offset   mgl32.Vec2
	Scale    mgl32.Vec2
	Rotation float32 // degrees
}

// DefaultTexAttribs returns unit scale, no offset and no rotation.
func DefaultTexAttribs() TexAttribs {
	return TexAttribs{Scale: mgl32.Vec2{1, 1}}
}

// paraxialAxes holds, for each of the six axis-aligned planes, the plane normal
// followed by its texture X and Y projection axes.
var paraxialAxes = [6][3]mgl32.Vec3{
	{{0, 0, 1}, {1, 0, 0}, {0, -1, 0}},  // floor
	{{0, 0, -1}, {1, 0, 0}, {0, -1, 0}}, // ceiling
	{{1, 0, 0}, {0, 1, 0}, {0, 0, -1}},  // west wall
	{{-1, 0, 0}, {0, 1, 0}, {0, 0, -1}}, // east wall
	{{0, 1, 0}, {1, 0, 0}, {0, 0, -1}},  // south wall
	{{0, -1, 0}, {1, 0, 0}, {0, 0, -1}}, // north wall
}

// ParaxialAxes returns the texture projection axes for a face normal. The plane
// whose normal is closest to the face normal wins, earlier planes win ties.
func ParaxialAxes(normal mgl32.Vec3) (xAxis, yAxis mgl32.Vec3) {
	best := 0
	bestDot := float32(-1)
	for i, axes := range paraxialAxes {
		if d := normal.Dot(axes[0]); d > bestDot+1e-6 {
			best, bestDot = i, d
		}
	}
	return paraxialAxes[best][1], paraxialAxes[best][2]
}

// ParaxialTexCoords projects a position onto the face's paraxial plane and applies
// rotation, scale and offset, normalized by the texture size.
//
// Parameters:
//   - normal: the face normal
//   - position: the world position to project
//   - attribs: texture alignment
//   - width, height: texture size in pixels
//
// Returns:
//   - mgl32.Vec2: normalized texture coordinates
func ParaxialTexCoords(normal, position mgl32.Vec3, attribs TexAttribs, width, height float32) mgl32.Vec2 {
	xAxis, yAxis := ParaxialAxes(normal)
	u := position.Dot(xAxis)
	v := position.Dot(yAxis)

	if attribs.Rotation != 0 {
		rad := mgl32.DegToRad(attribs.Rotation)
		sin, cos := math32.Sincos(rad)
		u, v = u*cos-v*sin, u*sin+v*cos
	}

	scaleX := attribs.Scale[0]
	if scaleX == 0 {
		scaleX = 1
	}
	scaleY := attribs.Scale[1]
	if scaleY == 0 {
		scaleY = 1
	}

	return mgl32.Vec2{
		(u/scaleX + attribs.Offset[0]) / width,
		(v/scaleY + attribs.Offset[1]) / height,
	}
}

// ParaxialGridCoords projects a position onto the face's paraxial plane in grid cell units.
func ParaxialGridCoords(normal, position mgl32.Vec3) mgl32.Vec2 {
	xAxis, yAxis := ParaxialAxes(normal)
	return mgl32.Vec2{position.Dot(xAxis) / GridSize, position.Dot(yAxis) / GridSize}
}
