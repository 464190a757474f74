package document

import (
	"github.com/Carmen-Shannon/oxy-map/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is a brush corner shared by every face that touches it.
type Vertex struct {
	Position mgl32.Vec3
}

// Edge connects two brush vertices.
type Edge struct {
	Start *Vertex
	End   *Vertex
}

// Face is one convex polygon of a brush.
type Face struct {
	brush    *Brush
	vertices []*Vertex
	edges    []*Edge
	texture  *Texture
	attribs  TexAttribs
	selected bool
}

// Brush returns the owning brush.
func (f *Face) Brush() *Brush { return f.brush }

// Vertices returns the polygon vertices in winding order.
func (f *Face) Vertices() []*Vertex { return f.vertices }

// Edges returns the polygon edges in winding order.
func (f *Face) Edges() []*Edge { return f.edges }

// Texture returns the face texture, which may be nil.
func (f *Face) Texture() *Texture { return f.texture }

// SetTexture replaces the face texture.
func (f *Face) SetTexture(t *Texture) { f.texture = t }

// Attribs returns the texture alignment.
func (f *Face) Attribs() TexAttribs { return f.attribs }

// SetAttribs replaces the texture alignment.
func (f *Face) SetAttribs(a TexAttribs) { f.attribs = a }

// Selected reports whether the face itself is selected.
func (f *Face) Selected() bool { return f.selected }

// Positions returns the world positions of the polygon vertices.
func (f *Face) Positions() []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(f.vertices))
	for i, v := range f.vertices {
		out[i] = v.Position
	}
	return out
}

// Normal returns the polygon normal.
func (f *Face) Normal() mgl32.Vec3 {
	return common.PolygonNormal(f.Positions())
}

// TexCoords returns one texture coordinate per vertex.
func (f *Face) TexCoords() []mgl32.Vec2 {
	normal := f.Normal()
	w, h := f.texture.Width(), f.texture.Height()
	out := make([]mgl32.Vec2, len(f.vertices))
	for i, v := range f.vertices {
		out[i] = ParaxialTexCoords(normal, v.Position, f.attribs, w, h)
	}
	return out
}

// GridCoords returns one grid overlay coordinate per vertex.
func (f *Face) GridCoords() []mgl32.Vec2 {
	normal := f.Normal()
	out := make([]mgl32.Vec2, len(f.vertices))
	for i, v := range f.vertices {
		out[i] = ParaxialGridCoords(normal, v.Position)
	}
	return out
}
