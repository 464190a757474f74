package document

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-map/common"
)

// Observer receives the notifications published by a Document after every mutation.
// Notifications are delivered on the goroutine that submitted the command, outside the
// document lock, so observers may read the map.
type Observer interface {
	// EntitiesAdded is called with the entities a command added.
	EntitiesAdded(entities []*Entity)

	// EntitiesRemoved is called with the entities a command removed.
	EntitiesRemoved(entities []*Entity)

	// EditStateChanged is called with the edit state transitions a command caused.
	EditStateChanged(changes EditStateChangeSet)

	// ObjectsChanged is called when the geometry of entities or brushes changed.
	ObjectsChanged(entities []*Entity, brushes []*Brush)

	// MapLoaded is called after a new map replaced the current one.
	MapLoaded(m *Map)

	// MapCleared is called before the current map is dropped.
	MapCleared()
}

// Result describes what a command changed.
type Result struct {
	Changes         EditStateChangeSet
	Added           []*Entity
	Removed         []*Entity
	ChangedEntities []*Entity
	ChangedBrushes  []*Brush
}

// Command is a document mutation.
type Command interface {
	// Name returns a short human readable description.
	Name() string

	// Perform applies the command to the map.
	Perform(m *Map) (Result, error)
}

// Document owns the map being edited and publishes changes to its observers.
type Document interface {
	// Map returns the current map.
	Map() *Map

	// Subscribe registers an observer. Observers are notified in registration order.
	Subscribe(o Observer)

	// Submit performs a command and notifies every observer of its result.
	//
	// Parameters:
	//   - cmd: the command to perform
	//
	// Returns:
	//   - error: the command error; observers are not notified when it fails
	Submit(cmd Command) error

	// Load replaces the current map and notifies MapCleared then MapLoaded.
	Load(m *Map)

	// Clear replaces the current map with an empty one.
	Clear()
}

var _ Document = &document{}

type document struct {
	m         *Map
	observers []Observer
	mu        *sync.Mutex
}

// NewDocument creates a document holding an empty map.
func NewDocument() Document {
	return &document{
		m:  NewMap(),
		mu: &sync.Mutex{},
	}
}

func (d *document) Map() *Map {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.m
}

func (d *document) Subscribe(o Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers = append(d.observers, o)
}

func (d *document) Submit(cmd Command) error {
	d.mu.Lock()
	result, err := cmd.Perform(d.m)
	observers := append([]Observer(nil), d.observers...)
	d.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to perform %s: %w", cmd.Name(), err)
	}

	common.Logger().Debug("command performed", "command", cmd.Name(),
		"added", len(result.Added), "removed", len(result.Removed))

	for _, o := range observers {
		if len(result.Added) > 0 {
			o.EntitiesAdded(result.Added)
		}
		if len(result.Removed) > 0 {
			o.EntitiesRemoved(result.Removed)
		}
		if !result.Changes.Empty() {
			o.EditStateChanged(result.Changes)
		}
		if len(result.ChangedEntities) > 0 || len(result.ChangedBrushes) > 0 {
			o.ObjectsChanged(result.ChangedEntities, result.ChangedBrushes)
		}
	}
	return nil
}

func (d *document) Load(m *Map) {
	d.mu.Lock()
	d.m = m
	observers := append([]Observer(nil), d.observers...)
	d.mu.Unlock()

	common.Logger().Info("map loaded", "entities", len(m.Entities()))
	for _, o := range observers {
		o.MapCleared()
		o.MapLoaded(m)
	}
}

func (d *document) Clear() {
	d.mu.Lock()
	d.m = NewMap()
	observers := append([]Observer(nil), d.observers...)
	d.mu.Unlock()

	common.Logger().Info("map cleared")
	for _, o := range observers {
		o.MapCleared()
	}
}
