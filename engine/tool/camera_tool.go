package tool

import (
	"github.com/Carmen-Shannon/oxy-map/common"
)

// CameraTool navigates the view. The wheel zooms, a right button drag orbits around the
// camera target and a middle button drag pans.
type CameraTool struct {
	ToolAdapter

	orbiting bool
	panning  bool
}

var _ Tool = &CameraTool{}

// NewCameraTool creates the navigation tool.
func NewCameraTool() *CameraTool {
	return &CameraTool{}
}

func (t *CameraTool) Scroll(input *InputState) {
	if input.Camera == nil || input.ScrollDelta == 0 {
		return
	}
	input.Camera.Controller().Zoom(input.ScrollDelta)
	input.Camera.Update()
}

func (t *CameraTool) StartMouseDrag(input *InputState) bool {
	if input.Camera == nil {
		return false
	}
	switch {
	case input.OnlyButtonDown(common.MouseButtonRight):
		t.orbiting = true
	case input.OnlyButtonDown(common.MouseButtonMiddle):
		t.panning = true
	default:
		return false
	}
	return true
}

func (t *CameraTool) MouseDrag(input *InputState) bool {
	controller := input.Camera.Controller()
	switch {
	case t.orbiting:
		controller.Orbit(input.DeltaX, input.DeltaY)
	case t.panning:
		controller.Pan(input.DeltaX, input.DeltaY)
	default:
		return false
	}
	input.Camera.Update()
	return true
}

func (t *CameraTool) EndMouseDrag(*InputState) {
	t.orbiting, t.panning = false, false
}

// CancelMouseDrag keeps the view where the drag left it.
func (t *CameraTool) CancelMouseDrag() {
	t.orbiting, t.panning = false, false
}
