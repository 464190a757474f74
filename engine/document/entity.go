package document

import (
	"fmt"
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// WorldspawnClassname is the classname of the entity holding the world brushes.
	WorldspawnClassname = "worldspawn"

	// PropertyClassname, PropertyOrigin, PropertySkin and PropertyFrame are well known entity keys.
	PropertyClassname = "classname"
	PropertyOrigin    = "origin"
	PropertySkin      = "skin"
	PropertyFrame     = "frame"

	// defaultPointSize is the edge length of the box drawn for point entities without a definition.
	defaultPointSize float32 = 16
)

// Entity is a map object with key/value properties and optional brushes.
type Entity struct {
	classname  string
	properties map[string]string
	brushes    []*Brush
	definition *EntityDefinition
	state      EditState
	origin     mgl32.Vec3
}

// NewEntity creates an entity. The origin property is parsed when present.
//
// Parameters:
//   - classname: the entity class
//   - properties: additional key/value pairs, copied
//
// Returns:
//   - *Entity: the entity
func NewEntity(classname string, properties map[string]string) *Entity {
	e := &Entity{
		classname:  classname,
		properties: make(map[string]string, len(properties)+1),
	}
	for k, v := range properties {
		e.SetProperty(k, v)
	}
	e.properties[PropertyClassname] = classname
	return e
}

// Classname returns the entity class.
func (e *Entity) Classname() string { return e.classname }

// Worldspawn reports whether this is the world entity.
func (e *Entity) Worldspawn() bool { return e.classname == WorldspawnClassname }

// Property returns a property value and whether it is set.
func (e *Entity) Property(key string) (string, bool) {
	v, ok := e.properties[key]
	return v, ok
}

// IntProperty returns a property parsed as an integer.
func (e *Entity) IntProperty(key string) (int, bool) {
	v, ok := e.properties[key]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SetProperty sets a property. Setting origin also moves the entity; malformed origins are ignored.
func (e *Entity) SetProperty(key, value string) {
	switch key {
	case PropertyOrigin:
		var x, y, z float32
		if _, err := fmt.Sscanf(value, "%g %g %g", &x, &y, &z); err == nil {
			e.origin = mgl32.Vec3{x, y, z}
		}
	case PropertyClassname:
		e.classname = value
	}
	e.properties[key] = value
}

// Properties returns a copy of every property.
func (e *Entity) Properties() map[string]string {
	out := make(map[string]string, len(e.properties))
	for k, v := range e.properties {
		out[k] = v
	}
	return out
}

// Origin returns the entity origin.
func (e *Entity) Origin() mgl32.Vec3 { return e.origin }

// SetOrigin moves the entity and updates its origin property.
func (e *Entity) SetOrigin(o mgl32.Vec3) {
	e.origin = o
	e.properties[PropertyOrigin] = fmt.Sprintf("%g %g %g", o[0], o[1], o[2])
}

// Definition returns the entity definition, or nil.
func (e *Entity) Definition() *EntityDefinition { return e.definition }

// SetDefinition attaches a definition.
func (e *Entity) SetDefinition(d *EntityDefinition) { e.definition = d }

// Brushes returns the entity's brushes.
func (e *Entity) Brushes() []*Brush { return e.brushes }

// AddBrush attaches a brush, detaching it from any previous owner.
func (e *Entity) AddBrush(b *Brush) {
	if b.entity != nil {
		b.entity.RemoveBrush(b)
	}
	b.entity = e
	e.brushes = append(e.brushes, b)
}

// RemoveBrush detaches a brush. It reports false if the brush is not owned by e.
func (e *Entity) RemoveBrush(b *Brush) bool {
	for i, other := range e.brushes {
		if other == b {
			e.brushes = append(e.brushes[:i], e.brushes[i+1:]...)
			b.entity = nil
			return true
		}
	}
	return false
}

// EditState returns the entity's edit state.
func (e *Entity) EditState() EditState { return e.state }

// Selected reports whether the entity is selected.
func (e *Entity) Selected() bool { return e.state == EditStateSelected }

// Locked reports whether the entity is locked.
func (e *Entity) Locked() bool { return e.state == EditStateLocked }

// Hidden reports whether the entity is hidden.
func (e *Entity) Hidden() bool { return e.state == EditStateHidden }

// PartiallySelected reports whether any brush is selected or partially selected.
func (e *Entity) PartiallySelected() bool {
	for _, b := range e.brushes {
		if b.Selected() || b.PartiallySelected() {
			return true
		}
	}
	return false
}

// Bounds returns the union of the brush bounds. Point entities use their definition bounds
// around the origin, or a small cube when no definition is attached.
func (e *Entity) Bounds() BBox {
	if len(e.brushes) > 0 {
		box := EmptyBBox()
		for _, b := range e.brushes {
			box = box.Merge(b.Bounds())
		}
		return box
	}
	if e.definition != nil && !e.definition.Bounds.Empty() {
		return e.definition.Bounds.Translate(e.origin)
	}
	half := defaultPointSize / 2
	return BBox{
		Min: e.origin.Sub(mgl32.Vec3{half, half, half}),
		Max: e.origin.Add(mgl32.Vec3{half, half, half}),
	}
}

// Translate moves the origin and every brush by delta.
func (e *Entity) Translate(delta mgl32.Vec3) {
	if len(e.brushes) == 0 || e.properties[PropertyOrigin] != "" {
		e.SetOrigin(e.origin.Add(delta))
	}
	for _, b := range e.brushes {
		b.Translate(delta)
	}
}
