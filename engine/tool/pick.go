package tool

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-map/common"
	"github.com/Carmen-Shannon/oxy-map/engine/document"
	"github.com/go-gl/mathgl/mgl32"
)

// HitType classifies what a pick ray hit.
type HitType int

const (
	// HitTypeFace is a brush face.
	HitTypeFace HitType = iota
	// HitTypeEntity is the bounding box of a point entity.
	HitTypeEntity
)

// Hit is one intersection of a pick ray with the map.
type Hit struct {
	Type     HitType
	Distance float32
	Point    mgl32.Vec3

	// Face and Brush are set for face hits.
	Face  *document.Face
	Brush *document.Brush
	// Entity is the hit point entity, or the owner of the hit brush.
	Entity *document.Entity
}

// Locked reports whether the hit object cannot be edited.
func (h Hit) Locked() bool {
	if h.Brush != nil && h.Brush.Locked() {
		return true
	}
	return h.Entity != nil && h.Entity.Locked()
}

// Selected reports whether the hit object is part of the object selection. A face hit counts
// when its brush or the brush's entity is selected.
func (h Hit) Selected() bool {
	if h.Brush != nil && h.Brush.Selected() {
		return true
	}
	return h.Entity != nil && !h.Entity.Worldspawn() && h.Entity.Selected()
}

// PickResult collects the hits of a pick ray, ordered by distance.
type PickResult struct {
	hits   []Hit
	sorted bool
}

// AddHit records a hit.
func (r *PickResult) AddHit(h Hit) {
	r.hits = append(r.hits, h)
	r.sorted = false
}

// Hits returns every hit, nearest first. Hits at equal distance keep their insertion order.
func (r *PickResult) Hits() []Hit {
	if !r.sorted {
		slices.SortStableFunc(r.hits, func(a, b Hit) int {
			switch {
			case a.Distance < b.Distance:
				return -1
			case a.Distance > b.Distance:
				return 1
			}
			return 0
		})
		r.sorted = true
	}
	return r.hits
}

// Len returns the number of hits.
func (r *PickResult) Len() int { return len(r.hits) }

// First returns the nearest hit accepted by match.
//
// Parameters:
//   - match: the hit predicate, nil accepts every hit
//
// Returns:
//   - Hit: the nearest accepted hit
//   - bool: false if no hit was accepted
func (r *PickResult) First(match func(Hit) bool) (Hit, bool) {
	for _, h := range r.Hits() {
		if match == nil || match(h) {
			return h, true
		}
	}
	return Hit{}, false
}

// Unlocked accepts hits on editable objects.
func Unlocked(h Hit) bool { return !h.Locked() }

// Picker intersects pick rays with the map.
type Picker interface {
	// Pick intersects a ray with every visible brush face and point entity box.
	//
	// Parameters:
	//   - ray: the pick ray
	//   - m: the map
	//   - filter: decides which objects are visible
	//
	// Returns:
	//   - PickResult: the hits, nearest first
	Pick(ray common.Ray, m *document.Map, filter document.Filter) PickResult
}

var _ Picker = picker{}

type picker struct{}

// NewPicker creates the map picker.
func NewPicker() Picker {
	return picker{}
}

func (picker) Pick(ray common.Ray, m *document.Map, filter document.Filter) PickResult {
	var result PickResult
	if m == nil {
		return result
	}
	if filter == nil {
		filter = document.DefaultFilter{}
	}
	for _, e := range m.Entities() {
		// The world is never visible as an entity but its brushes are.
		if !e.Worldspawn() && !filter.EntityVisible(e) {
			continue
		}
		if len(e.Brushes()) == 0 {
			if e.Worldspawn() {
				continue
			}
			bounds := e.Bounds()
			if t, ok := ray.IntersectAABB(bounds.Min, bounds.Max); ok {
				result.AddHit(Hit{Type: HitTypeEntity, Distance: t, Point: ray.PointAt(t), Entity: e})
			}
			continue
		}
		for _, b := range e.Brushes() {
			if !filter.BrushVisible(b) {
				continue
			}
			for _, f := range b.Faces() {
				if t, ok := ray.IntersectPolygon(f.Positions()); ok {
					result.AddHit(Hit{Type: HitTypeFace, Distance: t, Point: ray.PointAt(t), Face: f, Brush: b, Entity: e})
				}
			}
		}
	}
	result.Hits()
	return result
}
