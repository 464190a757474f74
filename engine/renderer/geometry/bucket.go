package geometry

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-map/engine/document"
)

// faceGroup holds the faces of one texture in first-seen order.
type faceGroup struct {
	texture     *document.Texture
	faces       []*document.Face
	vertexCount int
}

// faceBucket groups faces by texture. Faces of the same texture tend to be contiguous, so the
// most recently used group is checked before the index.
type faceBucket struct {
	groups      []*faceGroup
	index       map[*document.Texture]*faceGroup
	last        *faceGroup
	vertexCount int
}

func (b *faceBucket) add(texture *document.Texture, f *document.Face) {
	if b.last == nil || b.last.texture != texture {
		g, ok := b.index[texture]
		if !ok {
			if b.index == nil {
				b.index = make(map[*document.Texture]*faceGroup)
			}
			g = &faceGroup{texture: texture}
			b.index[texture] = g
			b.groups = append(b.groups, g)
		}
		b.last = g
	}
	n := 3*len(f.Vertices()) - 6
	b.last.faces = append(b.last.faces, f)
	b.last.vertexCount += n
	b.vertexCount += n
}

// edgeSource is the brush or face whose edges go into an edge partition, with the color
// chosen for them.
type edgeSource struct {
	edges []*document.Edge
	color [4]byte
}

type edgeBucket struct {
	sources     []edgeSource
	vertexCount int
}

func (b *edgeBucket) add(edges []*document.Edge, color [4]byte) {
	b.sources = append(b.sources, edgeSource{edges: edges, color: color})
	b.vertexCount += 2 * len(edges)
}

// sceneBuckets is the routing of every visible brush, face and entity of a map snapshot.
type sceneBuckets struct {
	faces    [stateClassCount]faceBucket
	edges    [stateClassCount]edgeBucket
	entities [stateClassCount][]*document.Entity
}

// brushClass routes a brush with precedence selected over locked over normal.
func brushClass(e *document.Entity, b *document.Brush) StateClass {
	switch {
	case e.Selected() || b.Selected():
		return StateSelected
	case e.Locked() || b.Locked():
		return StateLocked
	}
	return StateNormal
}

// faceClass routes a face. A selected face of an otherwise normal brush is drawn selected.
func faceClass(e *document.Entity, b *document.Brush, f *document.Face) StateClass {
	if f.Selected() {
		return StateSelected
	}
	return brushClass(e, b)
}

// entityClass routes an entity. Entities holding any selected brush are drawn selected.
func entityClass(e *document.Entity) StateClass {
	switch {
	case e.Selected() || e.PartiallySelected():
		return StateSelected
	case e.Locked():
		return StateLocked
	}
	return StateNormal
}

// edgeColor is the definition color of non-world brush entities, else the fallback color.
func edgeColor(e *document.Entity, fallback [4]byte) [4]byte {
	def := e.Definition()
	if !e.Worldspawn() && def != nil && def.Type == document.BrushEntity {
		return def.Color.RGBA8()
	}
	return fallback
}

// collectBrushes routes every visible brush and face of m.
//
// Parameters:
//   - m: the map snapshot
//   - filter: the visibility filter
//   - dummy: the texture used for faces without one
//   - fallbackEdge: the edge color of world brushes
//   - out: the buckets to fill
func collectBrushes(m *document.Map, filter document.Filter, dummy *document.Texture, fallbackEdge [4]byte, out *sceneBuckets) {
	for _, e := range m.Entities() {
		color := edgeColor(e, fallbackEdge)
		for _, b := range e.Brushes() {
			if !filter.BrushVisible(b) {
				continue
			}

			class := brushClass(e, b)
			out.edges[class].add(b.Edges(), color)
			if class != StateSelected && b.SelectedFaceCount() > 0 {
				for _, f := range b.Faces() {
					if f.Selected() {
						out.edges[StateSelected].add(f.Edges(), color)
					}
				}
			}

			for i, f := range b.Faces() {
				if n := len(f.Vertices()); n < 3 {
					panic(fmt.Sprintf("face %d of a %s brush has %d vertices, at least 3 are required", i, e.Classname(), n))
				}
				texture := f.Texture()
				if texture == nil {
					texture = dummy
				}
				out.faces[faceClass(e, b, f)].add(texture, f)
			}
		}
	}
}

// collectEntities routes every visible entity of m.
func collectEntities(m *document.Map, filter document.Filter, out *sceneBuckets) {
	for _, e := range m.Entities() {
		if filter.EntityVisible(e) {
			c := entityClass(e)
			out.entities[c] = append(out.entities[c], e)
		}
	}
}

// StateClassOf maps an edit state to the class its objects are drawn in. Hidden objects are
// not drawn.
func StateClassOf(s document.EditState) (StateClass, bool) {
	switch s {
	case document.EditStateDefault:
		return StateNormal, true
	case document.EditStateSelected:
		return StateSelected, true
	case document.EditStateLocked:
		return StateLocked, true
	}
	return 0, false
}

// EntityClass returns the state class an entity's bounds, model and label are drawn in.
func EntityClass(e *document.Entity) StateClass {
	return entityClass(e)
}

// BrushClasses returns every state class holding geometry of b. A partially selected brush
// lives in its own class and contributes selected faces to the selected class.
func BrushClasses(b *document.Brush) []StateClass {
	class := brushClass(b.Entity(), b)
	if class != StateSelected && b.SelectedFaceCount() > 0 {
		return []StateClass{class, StateSelected}
	}
	return []StateClass{class}
}
