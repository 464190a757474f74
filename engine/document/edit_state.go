package document

// EditState is the editing state of an entity or brush.
type EditState int

const (
	// EditStateDefault is an unselected, unlocked, visible object.
	EditStateDefault EditState = iota

	// EditStateSelected is a selected object.
	EditStateSelected

	// EditStateLocked is an object that cannot be selected or modified.
	EditStateLocked

	// EditStateHidden is an object excluded from rendering and picking.
	EditStateHidden
)

// String returns a readable name for logging.
func (s EditState) String() string {
	switch s {
	case EditStateDefault:
		return "default"
	case EditStateSelected:
		return "selected"
	case EditStateLocked:
		return "locked"
	case EditStateHidden:
		return "hidden"
	}
	return "unknown"
}

// EntityStateChange records a single entity's state transition.
type EntityStateChange struct {
	Entity *Entity
	From   EditState
	To     EditState
}

// BrushStateChange records a single brush's state transition.
type BrushStateChange struct {
	Brush *Brush
	From  EditState
	To    EditState
}

// EditStateChangeSet collects the state transitions produced by one document mutation.
// The zero value is an empty change set ready to use.
type EditStateChangeSet struct {
	entities             []EntityStateChange
	brushes              []BrushStateChange
	faceSelectionChanged bool
}

// AddEntity records an entity transition. Transitions to the same state are ignored.
func (c *EditStateChangeSet) AddEntity(e *Entity, from, to EditState) {
	if from == to {
		return
	}
	c.entities = append(c.entities, EntityStateChange{Entity: e, From: from, To: to})
}

// AddBrush records a brush transition. Transitions to the same state are ignored.
func (c *EditStateChangeSet) AddBrush(b *Brush, from, to EditState) {
	if from == to {
		return
	}
	c.brushes = append(c.brushes, BrushStateChange{Brush: b, From: from, To: to})
}

// SetFaceSelectionChanged marks that at least one face changed its selection flag.
func (c *EditStateChangeSet) SetFaceSelectionChanged() {
	c.faceSelectionChanged = true
}

// Merge appends every transition of o to c.
func (c *EditStateChangeSet) Merge(o EditStateChangeSet) {
	c.entities = append(c.entities, o.entities...)
	c.brushes = append(c.brushes, o.brushes...)
	c.faceSelectionChanged = c.faceSelectionChanged || o.faceSelectionChanged
}

// Empty reports whether nothing changed.
func (c EditStateChangeSet) Empty() bool {
	return len(c.entities) == 0 && len(c.brushes) == 0 && !c.faceSelectionChanged
}

// EntityChanges returns every recorded entity transition in order.
func (c EditStateChangeSet) EntityChanges() []EntityStateChange { return c.entities }

// BrushChanges returns every recorded brush transition in order.
func (c EditStateChangeSet) BrushChanges() []BrushStateChange { return c.brushes }

// FaceSelectionChanged reports whether any face selection flag changed.
func (c EditStateChangeSet) FaceSelectionChanged() bool { return c.faceSelectionChanged }

// EntityStateChangedFrom reports whether any entity left state s.
func (c EditStateChangeSet) EntityStateChangedFrom(s EditState) bool {
	for _, ch := range c.entities {
		if ch.From == s {
			return true
		}
	}
	return false
}

// EntityStateChangedTo reports whether any entity entered state s.
func (c EditStateChangeSet) EntityStateChangedTo(s EditState) bool {
	for _, ch := range c.entities {
		if ch.To == s {
			return true
		}
	}
	return false
}

// BrushStateChangedFrom reports whether any brush left state s.
func (c EditStateChangeSet) BrushStateChangedFrom(s EditState) bool {
	for _, ch := range c.brushes {
		if ch.From == s {
			return true
		}
	}
	return false
}

// BrushStateChangedTo reports whether any brush entered state s.
func (c EditStateChangeSet) BrushStateChangedTo(s EditState) bool {
	for _, ch := range c.brushes {
		if ch.To == s {
			return true
		}
	}
	return false
}

// EntitiesFrom returns the entities that left state s.
func (c EditStateChangeSet) EntitiesFrom(s EditState) []*Entity {
	var out []*Entity
	for _, ch := range c.entities {
		if ch.From == s {
			out = append(out, ch.Entity)
		}
	}
	return out
}

// EntitiesTo returns the entities that entered state s.
func (c EditStateChangeSet) EntitiesTo(s EditState) []*Entity {
	var out []*Entity
	for _, ch := range c.entities {
		if ch.To == s {
			out = append(out, ch.Entity)
		}
	}
	return out
}
