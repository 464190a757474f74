package tool

import (
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-map/common"
	"github.com/Carmen-Shannon/oxy-map/engine/camera"
	"github.com/Carmen-Shannon/oxy-map/engine/document"
	"github.com/Carmen-Shannon/oxy-map/engine/renderer"
	"github.com/chewxy/math32"
)

// ToolBox turns raw window input into chain events. It tracks the input state, picks the map
// under the cursor, tells clicks from drags and double clicks, and routes a drag to the tool
// that claimed it until the drag ends.
type ToolBox struct {
	chain  *Chain
	doc    document.Document
	picker Picker
	filter document.Filter

	input InputState

	dragTool      Tool
	dropTool      Tool
	pressX        float32
	pressY        float32
	dragAttempted bool
	dragged       bool

	lastClick       time.Time
	lastClickButton common.MouseButton

	dragThreshold       float32
	doubleClickInterval time.Duration
	now                 func() time.Time

	mu *sync.Mutex
}

// NewToolBox creates a tool box driving a chain.
//
// Parameters:
//   - chain: the tools, in dispatch order
//   - cam: the view camera, used for pick rays
//   - doc: the document picked against
//   - options: functional options such as WithPicker and WithDragThreshold
//
// Returns:
//   - *ToolBox: the tool box
func NewToolBox(chain *Chain, cam camera.Camera, doc document.Document, options ...ToolBoxBuilderOption) *ToolBox {
	tb := &ToolBox{
		chain:               chain,
		doc:                 doc,
		picker:              NewPicker(),
		filter:              document.DefaultFilter{},
		input:               InputState{Camera: cam},
		lastClickButton:     common.MouseButtonNone,
		dragThreshold:       3,
		doubleClickInterval: 400 * time.Millisecond,
		now:                 time.Now,
		mu:                  &sync.Mutex{},
	}
	for _, opt := range options {
		opt(tb)
	}
	return tb
}

// Chain returns the tool chain.
func (tb *ToolBox) Chain() *Chain {
	return tb.chain
}

// InputState returns a copy of the current input state.
func (tb *ToolBox) InputState() InputState {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.input
}

// Dragging reports whether a tool owns a mouse drag.
func (tb *ToolBox) Dragging() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.dragTool != nil
}

// updatePick recomputes the pick ray and result for the cursor. Caller must hold the mutex.
func (tb *ToolBox) updatePick() {
	if tb.input.Camera == nil {
		tb.input.PickResult = &PickResult{}
		return
	}
	tb.input.PickRay = tb.input.Camera.PickRay(tb.input.MouseX, tb.input.MouseY)
	result := tb.picker.Pick(tb.input.PickRay, tb.doc.Map(), tb.filter)
	tb.chain.Pick(&tb.input, &result)
	tb.input.PickResult = &result
}

// MouseDown records a pressed button and forwards it to every tool.
func (tb *ToolBox) MouseDown(button common.MouseButton) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.input.Buttons |= MouseButtonBit(button)
	tb.pressX, tb.pressY = tb.input.MouseX, tb.input.MouseY
	tb.dragAttempted = false
	tb.dragged = false
	tb.updatePick()
	tb.chain.MouseDown(&tb.input, button)
}

// MouseUp ends a drag, or reports a click or double click when the cursor did not move
// beyond the drag threshold.
func (tb *ToolBox) MouseUp(button common.MouseButton) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if tb.dragTool != nil {
		tb.dragTool.EndMouseDrag(&tb.input)
		tb.dragTool = nil
	} else if !tb.dragged {
		tb.updatePick()
		now := tb.now()
		if button == tb.lastClickButton && now.Sub(tb.lastClick) <= tb.doubleClickInterval {
			tb.chain.MouseDoubleClick(&tb.input, button)
			tb.lastClickButton = common.MouseButtonNone
		} else {
			tb.chain.MouseClick(&tb.input, button)
			tb.lastClick = now
			tb.lastClickButton = button
		}
	}
	tb.chain.MouseUp(&tb.input, button)
	tb.input.Buttons &^= MouseButtonBit(button)
	tb.dragged = false
}

// MouseMove moves the cursor. While a button is held and the cursor leaves the drag threshold
// the chain is offered a drag; the accepting tool receives every later move until MouseUp.
func (tb *ToolBox) MouseMove(x, y float32) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.input.DeltaX, tb.input.DeltaY = x-tb.input.MouseX, y-tb.input.MouseY
	tb.input.MouseX, tb.input.MouseY = x, y

	if tb.dragTool != nil {
		tb.input.PickRay = tb.pickRay()
		if !tb.dragTool.MouseDrag(&tb.input) {
			tb.dragTool.EndMouseDrag(&tb.input)
			tb.dragTool = nil
		}
		return
	}

	if tb.input.Buttons != 0 && !tb.dragAttempted &&
		math32.Hypot(x-tb.pressX, y-tb.pressY) > tb.dragThreshold {
		tb.dragAttempted = true
		tb.dragged = true
		tb.dragTool = tb.chain.StartMouseDrag(&tb.input)
		if tb.dragTool != nil {
			return
		}
	}

	tb.updatePick()
	tb.chain.MouseMove(&tb.input)
}

func (tb *ToolBox) pickRay() common.Ray {
	if tb.input.Camera == nil {
		return common.Ray{}
	}
	return tb.input.Camera.PickRay(tb.input.MouseX, tb.input.MouseY)
}

// Scroll forwards a wheel movement to every tool.
func (tb *ToolBox) Scroll(delta float32) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.input.ScrollDelta = delta
	tb.updatePick()
	tb.chain.Scroll(&tb.input)
	tb.input.ScrollDelta = 0
}

// KeyDown tracks modifier keys. Escape cancels the current drag, or asks the chain to cancel.
//
// Parameters:
//   - keyCode: the GLFW key code
//
// Returns:
//   - bool: true if the key was consumed
func (tb *ToolBox) KeyDown(keyCode uint32) bool {
	if keyCode == common.KeyEsc {
		return tb.Cancel()
	}
	mod := common.ModifierForKey(keyCode)
	if mod == common.ModNone {
		return false
	}

	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.input.Modifiers |= mod
	tb.chain.ModifierKeyChange(&tb.input)
	return true
}

// KeyUp tracks released modifier keys.
func (tb *ToolBox) KeyUp(keyCode uint32) bool {
	mod := common.ModifierForKey(keyCode)
	if mod == common.ModNone {
		return false
	}

	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.input.Modifiers &^= mod
	tb.chain.ModifierKeyChange(&tb.input)
	return true
}

// Cancel abandons the current drag. Without a drag the first tool with pending state cancels.
//
// Returns:
//   - bool: true if anything was cancelled
func (tb *ToolBox) Cancel() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if tb.dragTool != nil {
		tb.dragTool.CancelMouseDrag()
		tb.dragTool = nil
		return true
	}
	return tb.chain.Cancel()
}

// DragEnter offers an external payload at a cursor position to the chain.
//
// Returns:
//   - bool: true if a tool accepted the payload
func (tb *ToolBox) DragEnter(payload string, x, y float32) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.input.MouseX, tb.input.MouseY = x, y
	tb.updatePick()
	tb.dropTool = tb.chain.DragEnter(&tb.input, payload)
	return tb.dropTool != nil
}

// DragMove moves an accepted payload.
func (tb *ToolBox) DragMove(x, y float32) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if tb.dropTool == nil {
		return false
	}
	tb.input.MouseX, tb.input.MouseY = x, y
	tb.updatePick()
	return tb.dropTool.DragMove(&tb.input)
}

// DragLeave abandons an accepted payload.
func (tb *ToolBox) DragLeave() {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if tb.dropTool != nil {
		tb.dropTool.DragLeave(&tb.input)
		tb.dropTool = nil
	}
}

// DragDrop drops an accepted payload.
//
// Returns:
//   - bool: true if the accepting tool performed the drop
func (tb *ToolBox) DragDrop(x, y float32) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if tb.dropTool == nil {
		return false
	}
	tb.input.MouseX, tb.input.MouseY = x, y
	tb.updatePick()
	dropped := tb.dropTool.DragDrop(&tb.input)
	tb.dropTool = nil
	return dropped
}

// SetRenderOptions lets every tool adjust the render context of the next frame.
func (tb *ToolBox) SetRenderOptions(ctx *renderer.RenderContext) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.chain.SetRenderOptions(&tb.input, ctx)
}

// Render lets every tool draw its feedback into sink.
func (tb *ToolBox) Render(ctx *renderer.RenderContext, sink renderer.RenderSink) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.chain.Render(&tb.input, ctx, sink)
}
