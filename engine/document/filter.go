package document

// Filter decides which objects take part in rendering and picking.
type Filter interface {
	BrushVisible(b *Brush) bool
	EntityVisible(e *Entity) bool
}

// DefaultFilter hides hidden objects. The world entity has no visible bounds or model of its own.
type DefaultFilter struct{}

var _ Filter = DefaultFilter{}

// BrushVisible reports whether neither the brush nor its entity is hidden.
func (DefaultFilter) BrushVisible(b *Brush) bool {
	if b.Hidden() {
		return false
	}
	return b.entity == nil || !b.entity.Hidden()
}

// EntityVisible reports whether the entity is a visible non-world entity.
func (DefaultFilter) EntityVisible(e *Entity) bool {
	return !e.Hidden() && !e.Worldspawn()
}

// FilterFuncs narrows DefaultFilter with optional predicates. Hidden objects stay excluded and
// nil functions add no restriction.
type FilterFuncs struct {
	Brush  func(*Brush) bool
	Entity func(*Entity) bool
}

var _ Filter = FilterFuncs{}

// BrushVisible applies the default rules, then the brush function.
func (f FilterFuncs) BrushVisible(b *Brush) bool {
	if !(DefaultFilter{}).BrushVisible(b) {
		return false
	}
	return f.Brush == nil || f.Brush(b)
}

// EntityVisible applies the default rules, then the entity function.
func (f FilterFuncs) EntityVisible(e *Entity) bool {
	if !(DefaultFilter{}).EntityVisible(e) {
		return false
	}
	return f.Entity == nil || f.Entity(e)
}
