package document

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// SelectObjectsCommand selects entities and brushes, optionally replacing the current selection.
type SelectObjectsCommand struct {
	Entities []*Entity
	Brushes  []*Brush
	Replace  bool
}

func (c SelectObjectsCommand) Name() string { return "select objects" }

func (c SelectObjectsCommand) Perform(m *Map) (Result, error) {
	return Result{Changes: m.SelectObjects(c.Entities, c.Brushes, c.Replace)}, nil
}

// DeselectObjectsCommand deselects entities and brushes.
type DeselectObjectsCommand struct {
	Entities []*Entity
	Brushes  []*Brush
}

func (c DeselectObjectsCommand) Name() string { return "deselect objects" }

func (c DeselectObjectsCommand) Perform(m *Map) (Result, error) {
	return Result{Changes: m.DeselectObjects(c.Entities, c.Brushes)}, nil
}

// SelectFacesCommand selects faces, optionally replacing the current face selection.
// With Deselect set the faces are deselected instead.
type SelectFacesCommand struct {
	Faces    []*Face
	Replace  bool
	Deselect bool
}

func (c SelectFacesCommand) Name() string {
	if c.Deselect {
		return "deselect faces"
	}
	return "select faces"
}

func (c SelectFacesCommand) Perform(m *Map) (Result, error) {
	if c.Deselect {
		return Result{Changes: m.DeselectFaces(c.Faces)}, nil
	}
	return Result{Changes: m.SelectFaces(c.Faces, c.Replace)}, nil
}

// DeselectAllCommand clears the whole selection.
type DeselectAllCommand struct{}

func (DeselectAllCommand) Name() string { return "deselect all" }

func (DeselectAllCommand) Perform(m *Map) (Result, error) {
	return Result{Changes: m.DeselectAll()}, nil
}

// ChangeEditStateCommand moves entities and brushes to a state. Locking entities drops their
// selection first.
type ChangeEditStateCommand struct {
	Entities []*Entity
	Brushes  []*Brush
	State    EditState
}

func (c ChangeEditStateCommand) Name() string { return "change edit state to " + c.State.String() }

func (c ChangeEditStateCommand) Perform(m *Map) (Result, error) {
	var changes EditStateChangeSet
	if c.State == EditStateLocked {
		changes.Merge(m.LockEntities(c.Entities))
	} else {
		changes.Merge(m.SetEntityState(c.Entities, c.State))
	}
	changes.Merge(m.SetBrushState(c.Brushes, c.State))
	return Result{Changes: changes}, nil
}

// UnlockAllCommand unlocks every locked entity and brush.
type UnlockAllCommand struct{}

func (UnlockAllCommand) Name() string { return "unlock all" }

func (UnlockAllCommand) Perform(m *Map) (Result, error) {
	return Result{Changes: m.UnlockAll()}, nil
}

// TranslateObjectsCommand moves entities and brushes by Delta. Brushes owned by a moved
// entity are moved once.
type TranslateObjectsCommand struct {
	Entities []*Entity
	Brushes  []*Brush
	Delta    mgl32.Vec3
}

func (c TranslateObjectsCommand) Name() string { return "translate objects" }

func (c TranslateObjectsCommand) Perform(m *Map) (Result, error) {
	if c.Delta == (mgl32.Vec3{}) {
		return Result{}, nil
	}

	moved := make(map[*Entity]bool, len(c.Entities))
	var result Result
	for _, e := range c.Entities {
		if !m.Contains(e) {
			return Result{}, fmt.Errorf("%w: %s", ErrUnknownEntity, e.Classname())
		}
		e.Translate(c.Delta)
		moved[e] = true
		result.ChangedEntities = append(result.ChangedEntities, e)
		result.ChangedBrushes = append(result.ChangedBrushes, e.brushes...)
	}
	changed := make(map[*Entity]bool)
	for _, b := range c.Brushes {
		if b.entity != nil && moved[b.entity] {
			continue
		}
		b.Translate(c.Delta)
		result.ChangedBrushes = append(result.ChangedBrushes, b)
		if b.entity != nil && !changed[b.entity] {
			changed[b.entity] = true
			result.ChangedEntities = append(result.ChangedEntities, b.entity)
		}
	}
	return result, nil
}

// AddEntitiesCommand adds entities to the map.
type AddEntitiesCommand struct {
	Entities []*Entity
}

func (c AddEntitiesCommand) Name() string { return "add entities" }

func (c AddEntitiesCommand) Perform(m *Map) (Result, error) {
	for _, e := range c.Entities {
		if m.Contains(e) {
			return Result{}, fmt.Errorf("%w: %s", ErrDuplicateEntity, e.Classname())
		}
	}
	for _, e := range c.Entities {
		_ = m.AddEntity(e)
	}
	return Result{Added: c.Entities}, nil
}

// RemoveEntitiesCommand removes entities from the map.
type RemoveEntitiesCommand struct {
	Entities []*Entity
}

func (c RemoveEntitiesCommand) Name() string { return "remove entities" }

func (c RemoveEntitiesCommand) Perform(m *Map) (Result, error) {
	for _, e := range c.Entities {
		if e == m.Worldspawn() || !m.Contains(e) {
			return Result{}, fmt.Errorf("%w: %s", ErrUnknownEntity, e.Classname())
		}
	}
	for _, e := range c.Entities {
		_ = m.RemoveEntity(e)
	}
	return Result{Removed: c.Entities}, nil
}
