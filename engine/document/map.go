package document

import (
	"errors"
	"slices"
)

// ErrUnknownEntity is returned when an operation names an entity that is not part of the map.
var ErrUnknownEntity = errors.New("entity is not part of the map")

// ErrDuplicateEntity is returned when an entity is added twice.
var ErrDuplicateEntity = errors.New("entity is already part of the map")

// Map is the set of entities being edited. The first entity is always the world entity.
// Its edit state methods form the edit state manager: every state mutation goes through them
// and returns the transitions it caused.
type Map struct {
	entities []*Entity
}

// NewMap creates a map holding only an empty world entity.
func NewMap() *Map {
	return &Map{entities: []*Entity{NewEntity(WorldspawnClassname, nil)}}
}

// Entities returns every entity, world entity first.
func (m *Map) Entities() []*Entity { return m.entities }

// Worldspawn returns the world entity.
func (m *Map) Worldspawn() *Entity { return m.entities[0] }

// Contains reports whether e is part of the map.
func (m *Map) Contains(e *Entity) bool {
	return slices.Contains(m.entities, e)
}

// AddEntity appends an entity.
func (m *Map) AddEntity(e *Entity) error {
	if m.Contains(e) {
		return ErrDuplicateEntity
	}
	m.entities = append(m.entities, e)
	return nil
}

// RemoveEntity removes an entity. The world entity cannot be removed.
func (m *Map) RemoveEntity(e *Entity) error {
	i := slices.Index(m.entities, e)
	if i <= 0 {
		return ErrUnknownEntity
	}
	m.entities = slices.Delete(m.entities, i, i+1)
	return nil
}

// Brushes returns every brush of every entity.
func (m *Map) Brushes() []*Brush {
	var out []*Brush
	for _, e := range m.entities {
		out = append(out, e.brushes...)
	}
	return out
}

// SetEntityState moves entities to state s.
//
// Parameters:
//   - entities: the entities to change
//   - s: the target state
//
// Returns:
//   - EditStateChangeSet: the transitions, excluding entities already in s
func (m *Map) SetEntityState(entities []*Entity, s EditState) EditStateChangeSet {
	var changes EditStateChangeSet
	for _, e := range entities {
		changes.AddEntity(e, e.state, s)
		e.state = s
	}
	return changes
}

// SetBrushState moves brushes to state s.
func (m *Map) SetBrushState(brushes []*Brush, s EditState) EditStateChangeSet {
	var changes EditStateChangeSet
	for _, b := range brushes {
		changes.AddBrush(b, b.state, s)
		b.state = s
	}
	return changes
}

// SelectObjects selects entities and brushes. Locked and hidden objects are skipped.
// With replace set, the previous selection including any face selection is cleared first.
func (m *Map) SelectObjects(entities []*Entity, brushes []*Brush, replace bool) EditStateChangeSet {
	var changes EditStateChangeSet
	if replace {
		changes.Merge(m.DeselectAll())
	}
	for _, e := range entities {
		if e.state == EditStateDefault {
			changes.Merge(m.SetEntityState([]*Entity{e}, EditStateSelected))
		}
	}
	for _, b := range brushes {
		if b.state == EditStateDefault && (b.entity == nil || b.entity.state == EditStateDefault) {
			changes.Merge(m.SetBrushState([]*Brush{b}, EditStateSelected))
		}
	}
	return changes
}

// DeselectObjects returns selected entities and brushes to the default state.
func (m *Map) DeselectObjects(entities []*Entity, brushes []*Brush) EditStateChangeSet {
	var changes EditStateChangeSet
	for _, e := range entities {
		if e.state == EditStateSelected {
			changes.Merge(m.SetEntityState([]*Entity{e}, EditStateDefault))
		}
	}
	for _, b := range brushes {
		if b.state == EditStateSelected {
			changes.Merge(m.SetBrushState([]*Brush{b}, EditStateDefault))
		}
	}
	return changes
}

// SelectFaces marks faces selected. Faces of locked or hidden brushes are skipped.
// With replace set, every other face is deselected first.
func (m *Map) SelectFaces(faces []*Face, replace bool) EditStateChangeSet {
	var changes EditStateChangeSet
	if replace {
		changes.Merge(m.DeselectFaces(m.SelectedFaces()))
	}
	for _, f := range faces {
		if f.selected || !faceSelectable(f) {
			continue
		}
		f.selected = true
		changes.SetFaceSelectionChanged()
	}
	return changes
}

// DeselectFaces clears the selection flag of faces.
func (m *Map) DeselectFaces(faces []*Face) EditStateChangeSet {
	var changes EditStateChangeSet
	for _, f := range faces {
		if f.selected {
			f.selected = false
			changes.SetFaceSelectionChanged()
		}
	}
	return changes
}

func faceSelectable(f *Face) bool {
	b := f.brush
	if b == nil || b.state == EditStateLocked || b.state == EditStateHidden {
		return false
	}
	if e := b.entity; e != nil && (e.state == EditStateLocked || e.state == EditStateHidden) {
		return false
	}
	return true
}

// DeselectAll clears every entity, brush and face selection.
func (m *Map) DeselectAll() EditStateChangeSet {
	var changes EditStateChangeSet
	changes.Merge(m.SetEntityState(m.SelectedEntities(), EditStateDefault))
	changes.Merge(m.SetBrushState(m.SelectedBrushes(), EditStateDefault))
	changes.Merge(m.DeselectFaces(m.SelectedFaces()))
	return changes
}

// LockEntities locks entities, dropping any selection they or their brushes hold.
func (m *Map) LockEntities(entities []*Entity) EditStateChangeSet {
	var changes EditStateChangeSet
	for _, e := range entities {
		var selectedBrushes []*Brush
		var selectedFaces []*Face
		for _, b := range e.brushes {
			if b.Selected() {
				selectedBrushes = append(selectedBrushes, b)
			}
			for _, f := range b.faces {
				if f.selected {
					selectedFaces = append(selectedFaces, f)
				}
			}
		}
		changes.Merge(m.SetBrushState(selectedBrushes, EditStateDefault))
		changes.Merge(m.DeselectFaces(selectedFaces))
	}
	changes.Merge(m.SetEntityState(entities, EditStateLocked))
	return changes
}

// UnlockAll returns every locked entity and brush to the default state.
func (m *Map) UnlockAll() EditStateChangeSet {
	var entities []*Entity
	var brushes []*Brush
	for _, e := range m.entities {
		if e.Locked() {
			entities = append(entities, e)
		}
		for _, b := range e.brushes {
			if b.Locked() {
				brushes = append(brushes, b)
			}
		}
	}
	changes := m.SetEntityState(entities, EditStateDefault)
	changes.Merge(m.SetBrushState(brushes, EditStateDefault))
	return changes
}

// HideEntities hides entities.
func (m *Map) HideEntities(entities []*Entity) EditStateChangeSet {
	return m.SetEntityState(entities, EditStateHidden)
}

// SelectedEntities returns every selected entity.
func (m *Map) SelectedEntities() []*Entity {
	var out []*Entity
	for _, e := range m.entities {
		if e.Selected() {
			out = append(out, e)
		}
	}
	return out
}

// SelectedBrushes returns every individually selected brush.
func (m *Map) SelectedBrushes() []*Brush {
	var out []*Brush
	for _, e := range m.entities {
		for _, b := range e.brushes {
			if b.Selected() {
				out = append(out, b)
			}
		}
	}
	return out
}

// SelectedFaces returns every individually selected face.
func (m *Map) SelectedFaces() []*Face {
	var out []*Face
	for _, e := range m.entities {
		for _, b := range e.brushes {
			for _, f := range b.faces {
				if f.selected {
					out = append(out, f)
				}
			}
		}
	}
	return out
}

// HasSelection reports whether any entity, brush or face is selected.
func (m *Map) HasSelection() bool {
	return len(m.SelectedEntities()) > 0 || len(m.SelectedBrushes()) > 0 || len(m.SelectedFaces()) > 0
}
