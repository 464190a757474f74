package tool

import (
	"github.com/Carmen-Shannon/oxy-map/common"
	"github.com/Carmen-Shannon/oxy-map/engine/document"
)

// SelectionTool selects objects and faces with the left button.
//
// A click selects the nearest unlocked brush or point entity and replaces the selection.
// Control toggles the clicked object instead. Shift works on faces rather than objects.
// Clicking empty space deselects everything. A double click on a brush of a brush entity
// selects all of the entity's brushes, or with Shift every face of the brush. Dragging with
// Control held paints the selection onto every object under the cursor.
type SelectionTool struct {
	ToolAdapter

	doc    document.Document
	picker Picker
	filter document.Filter

	painting bool
}

var _ Tool = &SelectionTool{}

// NewSelectionTool creates a selection tool that submits its commands to doc.
//
// Parameters:
//   - doc: the edited document
//
// Returns:
//   - *SelectionTool: the tool
func NewSelectionTool(doc document.Document) *SelectionTool {
	return &SelectionTool{
		doc:    doc,
		picker: NewPicker(),
		filter: document.DefaultFilter{},
	}
}

func (t *SelectionTool) submit(cmd document.Command) {
	if err := t.doc.Submit(cmd); err != nil {
		common.Logger().Warn("selection command failed", "command", cmd.Name(), "error", err)
	}
}

func (t *SelectionTool) MouseClick(input *InputState, button common.MouseButton) bool {
	if button != common.MouseButtonLeft {
		return false
	}
	faceMode := input.Modifiers.Has(common.ModShift)
	toggle := input.Modifiers.Has(common.ModControl)
	if input.Modifiers&^(common.ModShift|common.ModControl) != 0 {
		return false
	}

	hit, ok := input.Pick().First(Unlocked)
	if faceMode {
		hit, ok = input.Pick().First(func(h Hit) bool { return h.Type == HitTypeFace && !h.Locked() })
	}
	if !ok {
		if !toggle {
			t.submit(document.DeselectAllCommand{})
		}
		return true
	}

	if faceMode {
		switch {
		case toggle && hit.Face.Selected():
			t.submit(document.SelectFacesCommand{Faces: []*document.Face{hit.Face}, Deselect: true})
		default:
			t.submit(document.SelectFacesCommand{Faces: []*document.Face{hit.Face}, Replace: !toggle})
		}
		return true
	}

	entities, brushes := hitObjects(hit)
	if toggle && hit.Selected() {
		t.submit(document.DeselectObjectsCommand{Entities: entities, Brushes: brushes})
	} else {
		t.submit(document.SelectObjectsCommand{Entities: entities, Brushes: brushes, Replace: !toggle})
	}
	return true
}

func (t *SelectionTool) MouseDoubleClick(input *InputState, button common.MouseButton) bool {
	if button != common.MouseButtonLeft {
		return false
	}
	hit, ok := input.Pick().First(func(h Hit) bool { return h.Type == HitTypeFace && !h.Locked() })
	if !ok {
		return false
	}
	toggle := input.Modifiers.Has(common.ModControl)

	if input.Modifiers.Has(common.ModShift) {
		t.submit(document.SelectFacesCommand{Faces: hit.Brush.Faces(), Replace: !toggle})
		return true
	}
	if hit.Entity == nil || hit.Entity.Worldspawn() {
		return false
	}
	t.submit(document.SelectObjectsCommand{Brushes: hit.Entity.Brushes(), Replace: !toggle})
	return true
}

func (t *SelectionTool) StartMouseDrag(input *InputState) bool {
	if !input.OnlyButtonDown(common.MouseButtonLeft) || !input.ModifierKeysPressed(common.ModControl) {
		return false
	}
	t.painting = true
	t.paint(input)
	return true
}

func (t *SelectionTool) MouseDrag(input *InputState) bool {
	if !t.painting {
		return false
	}
	t.paint(input)
	return true
}

func (t *SelectionTool) paint(input *InputState) {
	result := t.picker.Pick(input.PickRay, t.doc.Map(), t.filter)
	hit, ok := result.First(Unlocked)
	if !ok || hit.Selected() {
		return
	}
	entities, brushes := hitObjects(hit)
	t.submit(document.SelectObjectsCommand{Entities: entities, Brushes: brushes})
}

func (t *SelectionTool) EndMouseDrag(*InputState) {
	t.painting = false
}

// CancelMouseDrag stops painting. Objects painted so far stay selected.
func (t *SelectionTool) CancelMouseDrag() {
	t.painting = false
}

// hitObjects returns the selectable object of a hit: the brush of a face hit or the entity of
// an entity hit.
func hitObjects(h Hit) ([]*document.Entity, []*document.Brush) {
	if h.Type == HitTypeFace {
		return nil, []*document.Brush{h.Brush}
	}
	return []*document.Entity{h.Entity}, nil
}
