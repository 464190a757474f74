package tool

import (
	"github.com/Carmen-Shannon/oxy-map/common"
	"github.com/Carmen-Shannon/oxy-map/engine/document"
	"github.com/Carmen-Shannon/oxy-map/engine/renderer"
	"github.com/go-gl/mathgl/mgl32"
)

// MoveObjectsTool drags the selected objects with the left button. The drag starts on a
// selected object and moves it on the horizontal plane through the hit point, or with Alt held
// on the vertical plane facing the camera. Movement snaps to the grid and is submitted as
// translate commands while the drag is in progress.
type MoveObjectsTool struct {
	ToolAdapter

	doc        document.Document
	gridSize   float32
	guideColor common.Color

	dragging    bool
	origin      mgl32.Vec3
	planeNormal mgl32.Vec3
	total       mgl32.Vec3
}

var _ Tool = &MoveObjectsTool{}

// NewMoveObjectsTool creates a move tool.
//
// Parameters:
//   - doc: the edited document
//   - gridSize: the snap size, zero disables snapping
//   - guideColor: the color of the drag guide lines
//
// Returns:
//   - *MoveObjectsTool: the tool
func NewMoveObjectsTool(doc document.Document, gridSize float32, guideColor common.Color) *MoveObjectsTool {
	return &MoveObjectsTool{
		doc:        doc,
		gridSize:   gridSize,
		guideColor: guideColor,
	}
}

// Dragging reports whether a move is in progress.
func (t *MoveObjectsTool) Dragging() bool {
	return t.dragging
}

// Delta returns the snapped movement of the current drag.
func (t *MoveObjectsTool) Delta() mgl32.Vec3 {
	return t.total
}

func (t *MoveObjectsTool) StartMouseDrag(input *InputState) bool {
	if !input.OnlyButtonDown(common.MouseButtonLeft) {
		return false
	}
	if !input.ModifierKeysPressed(common.ModNone) && !input.ModifierKeysPressed(common.ModAlt) {
		return false
	}
	hit, ok := input.Pick().First(Unlocked)
	if !ok || !hit.Selected() {
		return false
	}

	t.planeNormal = mgl32.Vec3{0, 0, 1}
	if input.Modifiers.Has(common.ModAlt) {
		t.planeNormal = verticalPlaneNormal(input)
	}
	t.origin = hit.Point
	t.total = mgl32.Vec3{}
	t.dragging = true
	return true
}

// verticalPlaneNormal returns the horizontal direction towards the camera, or +X when the
// camera looks straight down.
func verticalPlaneNormal(input *InputState) mgl32.Vec3 {
	if input.Camera == nil {
		return mgl32.Vec3{1, 0, 0}
	}
	f := input.Camera.Forward()
	n := mgl32.Vec3{-f.X(), -f.Y(), 0}
	if n.Len() < common.Epsilon {
		return mgl32.Vec3{1, 0, 0}
	}
	return n.Normalize()
}

func (t *MoveObjectsTool) MouseDrag(input *InputState) bool {
	if !t.dragging {
		return false
	}
	dist, ok := input.PickRay.IntersectPlane(t.origin, t.planeNormal)
	if !ok {
		return true
	}
	delta := input.PickRay.PointAt(dist).Sub(t.origin)
	if t.gridSize > 0 {
		delta = common.Snap(delta, t.gridSize)
	}
	if step := delta.Sub(t.total); step != (mgl32.Vec3{}) {
		if t.translate(step) {
			t.total = delta
		}
	}
	return true
}

func (t *MoveObjectsTool) translate(delta mgl32.Vec3) bool {
	m := t.doc.Map()
	var entities []*document.Entity
	for _, e := range m.SelectedEntities() {
		if !e.Worldspawn() {
			entities = append(entities, e)
		}
	}
	cmd := document.TranslateObjectsCommand{Entities: entities, Brushes: m.SelectedBrushes(), Delta: delta}
	if err := t.doc.Submit(cmd); err != nil {
		common.Logger().Warn("move failed", "error", err)
		return false
	}
	return true
}

func (t *MoveObjectsTool) EndMouseDrag(*InputState) {
	if t.total != (mgl32.Vec3{}) {
		common.Logger().Debug("moved objects", "delta", t.total)
	}
	t.dragging = false
	t.total = mgl32.Vec3{}
}

// CancelMouseDrag moves the selection back to where the drag started.
func (t *MoveObjectsTool) CancelMouseDrag() {
	if t.total != (mgl32.Vec3{}) {
		t.translate(t.total.Mul(-1))
	}
	t.dragging = false
	t.total = mgl32.Vec3{}
}

// Render draws the drag guide: a line from the start point to the moved point, plus the
// movement projected on each axis.
func (t *MoveObjectsTool) Render(_ *InputState, _ *renderer.RenderContext, sink renderer.RenderSink) {
	if !t.dragging || t.total == (mgl32.Vec3{}) {
		return
	}
	end := t.origin.Add(t.total)
	x := t.origin.Add(mgl32.Vec3{t.total.X(), 0, 0})
	xy := x.Add(mgl32.Vec3{0, t.total.Y(), 0})
	sink.AddLines(t.guideColor, t.origin, end)
	sink.AddLines(t.guideColor.WithAlpha(t.guideColor.A()*0.5), t.origin, x, x, xy, xy, end)
}
