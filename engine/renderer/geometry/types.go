// Package geometry keeps the vertex data of the map's brushes and entity bounds in GPU buffers.
//
// Geometry is split into three buffer groups (faces, edges, entity bounds), each holding one
// partition per state class (normal, selected, locked). Partitions belong to aspects that are
// invalidated by document changes and rebuilt as a whole by Validate.
package geometry

import (
	"strings"

	"github.com/Carmen-Shannon/oxy-map/engine/document"
)

const (
	// FaceVertexStride is the size of a face vertex: grid coordinate, texture coordinate and position.
	FaceVertexStride = 2*4 + 2*4 + 3*4

	// EdgeVertexStride is the size of an edge or bounds vertex: RGBA8 color and position.
	EdgeVertexStride = 4 + 3*4

	// BoundsVerticesPerEntity is the number of line vertices emitted for one entity box.
	BoundsVerticesPerEntity = 24
)

// StateClass is the display state a partition holds.
type StateClass int

const (
	StateNormal StateClass = iota
	StateSelected
	StateLocked

	stateClassCount
)

// String returns a readable name for logging.
func (c StateClass) String() string {
	switch c {
	case StateNormal:
		return "normal"
	case StateSelected:
		return "selected"
	case StateLocked:
		return "locked"
	}
	return "unknown"
}

// Aspect is one independently invalidated unit of cached geometry.
type Aspect uint8

const (
	// AspectGeometry covers the normal face and edge partitions.
	AspectGeometry Aspect = iota
	// AspectSelectedGeometry covers the selected face and edge partitions.
	AspectSelectedGeometry
	// AspectLockedGeometry covers the locked face and edge partitions.
	AspectLockedGeometry
	// AspectEntityBounds covers the normal entity bounds partition.
	AspectEntityBounds
	// AspectSelectedEntityBounds covers the selected entity bounds partition.
	AspectSelectedEntityBounds
	// AspectLockedEntityBounds covers the locked entity bounds partition.
	AspectLockedEntityBounds

	aspectCount
)

var aspectNames = [aspectCount]string{
	"geometry",
	"selected-geometry",
	"locked-geometry",
	"entity-bounds",
	"selected-entity-bounds",
	"locked-entity-bounds",
}

// String returns a readable name for logging.
func (a Aspect) String() string {
	if a < aspectCount {
		return aspectNames[a]
	}
	return "unknown"
}

// GeometryAspect returns the face and edge aspect of a state class.
func GeometryAspect(c StateClass) Aspect {
	return AspectGeometry + Aspect(c)
}

// EntityBoundsAspect returns the entity bounds aspect of a state class.
func EntityBoundsAspect(c StateClass) Aspect {
	return AspectEntityBounds + Aspect(c)
}

// AspectSet is a set of aspects.
type AspectSet uint16

// AllAspects contains every aspect.
const AllAspects AspectSet = 1<<aspectCount - 1

// NewAspectSet returns a set holding aspects.
func NewAspectSet(aspects ...Aspect) AspectSet {
	var s AspectSet
	for _, a := range aspects {
		s = s.With(a)
	}
	return s
}

// With returns s plus a.
func (s AspectSet) With(a Aspect) AspectSet { return s | 1<<a }

// Has reports whether a is in s.
func (s AspectSet) Has(a Aspect) bool { return s&(1<<a) != 0 }

// Empty reports whether s holds nothing.
func (s AspectSet) Empty() bool { return s == 0 }

// Aspects returns the members of s in declaration order.
func (s AspectSet) Aspects() []Aspect {
	var out []Aspect
	for a := Aspect(0); a < aspectCount; a++ {
		if s.Has(a) {
			out = append(out, a)
		}
	}
	return out
}

// String lists the member names.
func (s AspectSet) String() string {
	names := make([]string, 0, aspectCount)
	for _, a := range s.Aspects() {
		names = append(names, a.String())
	}
	return "{" + strings.Join(names, ",") + "}"
}

// FaceRenderInfo describes the triangles of one texture inside a face partition.
// It is valid only while the owning partition is valid.
type FaceRenderInfo struct {
	Texture *document.Texture
	// BufferOffset is the byte offset of the partition in the face buffer.
	BufferOffset uint64
	// FirstVertex is the index of the first vertex relative to BufferOffset.
	FirstVertex int
	VertexCount int
}

// EdgeRenderInfo describes the line vertices of an edge or entity bounds partition.
type EdgeRenderInfo struct {
	BufferOffset uint64
	VertexCount  int
}

// Empty reports whether there is nothing to draw.
func (i EdgeRenderInfo) Empty() bool { return i.VertexCount == 0 }
