package document

import (
	"github.com/go-gl/mathgl/mgl32"
)

// vertexWeldTolerance is the distance under which two polygon corners are treated as one vertex.
const vertexWeldTolerance = 1e-3

// Brush is a convex solid made of planar faces. Vertices and edges are shared between the
// faces that touch them.
type Brush struct {
	entity   *Entity
	faces    []*Face
	edges    []*Edge
	vertices []*Vertex
	state    EditState
}

// NewBrush builds a brush from polygons given in counter-clockwise winding when viewed from
// outside. Coincident corners are welded and shared edges are created once.
// Polygons are not validated here; the renderer rejects faces with fewer than three vertices.
//
// Parameters:
//   - polygons: the face polygons
//   - texture: the initial texture of every face, may be nil
//
// Returns:
//   - *Brush: the brush, not yet attached to an entity
func NewBrush(polygons [][]mgl32.Vec3, texture *Texture) *Brush {
	b := &Brush{}
	for _, poly := range polygons {
		f := &Face{
			brush:   b,
			texture: texture,
			attribs: DefaultTexAttribs(),
		}
		for _, p := range poly {
			f.vertices = append(f.vertices, b.weld(p))
		}
		if len(f.vertices) > 1 {
			for i := range f.vertices {
				f.edges = append(f.edges, b.edge(f.vertices[i], f.vertices[(i+1)%len(f.vertices)]))
			}
		}
		b.faces = append(b.faces, f)
	}
	return b
}

// NewCuboidBrush builds an axis aligned box brush spanning min to max.
func NewCuboidBrush(min, max mgl32.Vec3, texture *Texture) *Brush {
	x0, y0, z0 := min[0], min[1], min[2]
	x1, y1, z1 := max[0], max[1], max[2]
	return NewBrush([][]mgl32.Vec3{
		{{x0, y0, z0}, {x0, y1, z0}, {x1, y1, z0}, {x1, y0, z0}}, // -z
		{{x0, y0, z1}, {x1, y0, z1}, {x1, y1, z1}, {x0, y1, z1}}, // +z
		{{x0, y0, z0}, {x0, y0, z1}, {x0, y1, z1}, {x0, y1, z0}}, // -x
		{{x1, y0, z0}, {x1, y1, z0}, {x1, y1, z1}, {x1, y0, z1}}, // +x
		{{x0, y0, z0}, {x1, y0, z0}, {x1, y0, z1}, {x0, y0, z1}}, // -y
		{{x0, y1, z0}, {x0, y1, z1}, {x1, y1, z1}, {x1, y1, z0}}, // +y
	}, texture)
}

func (b *Brush) weld(p mgl32.Vec3) *Vertex {
	for _, v := range b.vertices {
		if v.Position.ApproxEqualThreshold(p, vertexWeldTolerance) {
			return v
		}
	}
	v := &Vertex{Position: p}
	b.vertices = append(b.vertices, v)
	return v
}

func (b *Brush) edge(start, end *Vertex) *Edge {
	for _, e := range b.edges {
		if (e.Start == start && e.End == end) || (e.Start == end && e.End == start) {
			return e
		}
	}
	e := &Edge{Start: start, End: end}
	b.edges = append(b.edges, e)
	return e
}

// Entity returns the owning entity, or nil if the brush is detached.
func (b *Brush) Entity() *Entity { return b.entity }

// Faces returns the brush faces.
func (b *Brush) Faces() []*Face { return b.faces }

// Edges returns the unique brush edges.
func (b *Brush) Edges() []*Edge { return b.edges }

// Vertices returns the unique brush vertices.
func (b *Brush) Vertices() []*Vertex { return b.vertices }

// EditState returns the brush's own edit state.
func (b *Brush) EditState() EditState { return b.state }

// Selected reports whether the brush itself is selected.
func (b *Brush) Selected() bool { return b.state == EditStateSelected }

// Locked reports whether the brush itself is locked.
func (b *Brush) Locked() bool { return b.state == EditStateLocked }

// Hidden reports whether the brush itself is hidden.
func (b *Brush) Hidden() bool { return b.state == EditStateHidden }

// SelectedFaceCount returns the number of individually selected faces.
func (b *Brush) SelectedFaceCount() int {
	n := 0
	for _, f := range b.faces {
		if f.selected {
			n++
		}
	}
	return n
}

// PartiallySelected reports whether at least one but not every face is selected.
func (b *Brush) PartiallySelected() bool {
	n := b.SelectedFaceCount()
	return n > 0 && n < len(b.faces)
}

// Bounds returns the box enclosing every vertex.
func (b *Brush) Bounds() BBox {
	box := EmptyBBox()
	for _, v := range b.vertices {
		box = box.MergePoint(v.Position)
	}
	return box
}

// Translate moves every vertex by delta.
func (b *Brush) Translate(delta mgl32.Vec3) {
	for _, v := range b.vertices {
		v.Position = v.Position.Add(delta)
	}
}
