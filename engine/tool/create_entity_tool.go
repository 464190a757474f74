package tool

import (
	"github.com/Carmen-Shannon/oxy-map/common"
	"github.com/Carmen-Shannon/oxy-map/engine/document"
	"github.com/go-gl/mathgl/mgl32"
)

// defaultDropDistance is how far along the pick ray an entity is placed when nothing is hit.
const defaultDropDistance float32 = 256

// CreateEntityTool places point entities dragged into the view from an entity browser. The
// payload of the drag is the classname. The new entity follows the cursor while the payload
// moves over the view, is removed again when it leaves, and stays selected when dropped.
type CreateEntityTool struct {
	ToolAdapter

	doc         document.Document
	definitions document.DefinitionSet
	gridSize    float32

	entity *document.Entity
}

var _ Tool = &CreateEntityTool{}

// NewCreateEntityTool creates the entity placement tool.
//
// Parameters:
//   - doc: the edited document
//   - definitions: attached to created entities by classname, may be nil
//   - gridSize: the snap size of the placement
//
// Returns:
//   - *CreateEntityTool: the tool
func NewCreateEntityTool(doc document.Document, definitions document.DefinitionSet, gridSize float32) *CreateEntityTool {
	return &CreateEntityTool{
		doc:         doc,
		definitions: definitions,
		gridSize:    gridSize,
	}
}

// placement returns the snapped point under the cursor: the nearest face hit, or a point at a
// fixed distance along the pick ray.
func (t *CreateEntityTool) placement(input *InputState) mgl32.Vec3 {
	p := input.PickRay.PointAt(defaultDropDistance)
	if hit, ok := input.Pick().First(func(h Hit) bool { return h.Type == HitTypeFace }); ok {
		p = hit.Point
	}
	return common.Snap(p, t.gridSize)
}

func (t *CreateEntityTool) DragEnter(input *InputState, payload string) bool {
	if payload == "" || payload == document.WorldspawnClassname {
		return false
	}
	if def, ok := t.definitions[payload]; ok && def.Type != document.PointEntity {
		return false
	}

	e := document.NewEntity(payload, nil)
	if def, ok := t.definitions[payload]; ok {
		e.SetDefinition(def)
	}
	e.SetOrigin(t.placement(input))
	if err := t.doc.Submit(document.AddEntitiesCommand{Entities: []*document.Entity{e}}); err != nil {
		common.Logger().Warn("failed to add dragged entity", "classname", payload, "error", err)
		return false
	}
	if err := t.doc.Submit(document.SelectObjectsCommand{Entities: []*document.Entity{e}, Replace: true}); err != nil {
		common.Logger().Warn("failed to select dragged entity", "classname", payload, "error", err)
	}
	t.entity = e
	return true
}

func (t *CreateEntityTool) DragMove(input *InputState) bool {
	if t.entity == nil {
		return false
	}
	delta := t.placement(input).Sub(t.entity.Origin())
	if delta == (mgl32.Vec3{}) {
		return true
	}
	cmd := document.TranslateObjectsCommand{Entities: []*document.Entity{t.entity}, Delta: delta}
	if err := t.doc.Submit(cmd); err != nil {
		common.Logger().Warn("failed to move dragged entity", "error", err)
		return false
	}
	return true
}

func (t *CreateEntityTool) DragLeave(*InputState) {
	t.remove()
}

func (t *CreateEntityTool) DragDrop(*InputState) bool {
	if t.entity == nil {
		return false
	}
	common.Logger().Debug("entity placed", "classname", t.entity.Classname(), "origin", t.entity.Origin())
	t.entity = nil
	return true
}

// Cancel removes an entity that is still being dragged.
func (t *CreateEntityTool) Cancel() bool {
	return t.remove()
}

func (t *CreateEntityTool) remove() bool {
	if t.entity == nil {
		return false
	}
	e := t.entity
	t.entity = nil
	if err := t.doc.Submit(document.RemoveEntitiesCommand{Entities: []*document.Entity{e}}); err != nil {
		common.Logger().Warn("failed to remove dragged entity", "error", err)
	}
	return true
}
