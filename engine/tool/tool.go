// Package tool implements the editing tools of the map view and the chain that dispatches input
// to them. Observational events reach every tool in order; decisions such as which tool handles
// a click or owns a drag go to the first tool that accepts them.
package tool

import (
	"github.com/Carmen-Shannon/oxy-map/common"
	"github.com/Carmen-Shannon/oxy-map/engine/renderer"
)

// Tool is an interactive editing handler. Embed ToolAdapter to implement only the events a tool
// cares about.
type Tool interface {
	// Pick adds tool specific hits, such as handles, to the pick result of the cursor ray.
	Pick(input *InputState, result *PickResult)

	// ModifierKeyChange is called when a modifier key is pressed or released.
	ModifierKeyChange(input *InputState)

	// MouseDown is called when a mouse button is pressed.
	MouseDown(input *InputState, button common.MouseButton)

	// MouseUp is called when a mouse button is released.
	MouseUp(input *InputState, button common.MouseButton)

	// MouseClick is called when a button is released without a drag.
	//
	// Returns:
	//   - bool: true if the tool handled the click; later tools are not asked
	MouseClick(input *InputState, button common.MouseButton) bool

	// MouseDoubleClick is called for the second click of a double click.
	//
	// Returns:
	//   - bool: true if the tool handled the click; later tools are not asked
	MouseDoubleClick(input *InputState, button common.MouseButton) bool

	// Scroll is called when the mouse wheel moves.
	Scroll(input *InputState)

	// MouseMove is called when the cursor moves while no drag is in progress.
	MouseMove(input *InputState)

	// StartMouseDrag offers the tool a drag that begins at the pressed cursor position.
	//
	// Returns:
	//   - bool: true if the tool owns the drag until it ends or is cancelled
	StartMouseDrag(input *InputState) bool

	// MouseDrag is called on the owning tool for every cursor move of a drag.
	//
	// Returns:
	//   - bool: false to end the drag early
	MouseDrag(input *InputState) bool

	// EndMouseDrag is called on the owning tool when the drag button is released.
	EndMouseDrag(input *InputState)

	// CancelMouseDrag is called on the owning tool when the drag is abandoned. The tool must undo
	// what the drag changed.
	CancelMouseDrag()

	// DragEnter offers the tool an external drag and drop payload, such as an entity classname.
	//
	// Returns:
	//   - bool: true if the tool accepts the payload
	DragEnter(input *InputState, payload string) bool

	// DragMove is called on the accepting tool while the payload moves over the view.
	DragMove(input *InputState) bool

	// DragLeave is called on the accepting tool when the payload leaves the view.
	DragLeave(input *InputState)

	// DragDrop is called on the accepting tool when the payload is dropped.
	//
	// Returns:
	//   - bool: true if the drop was performed
	DragDrop(input *InputState) bool

	// Cancel asks the tool to drop its pending state and return to rest.
	//
	// Returns:
	//   - bool: true if the tool had something to cancel
	Cancel() bool

	// SetRenderOptions adjusts the render context before the map is drawn.
	SetRenderOptions(input *InputState, ctx *renderer.RenderContext)

	// Render draws tool feedback on top of the map.
	Render(input *InputState, ctx *renderer.RenderContext, sink renderer.RenderSink)
}

// ToolAdapter implements every Tool method as a no-op that declines all decisions.
type ToolAdapter struct{}

var _ Tool = ToolAdapter{}

func (ToolAdapter) Pick(*InputState, *PickResult)                                    {}
func (ToolAdapter) ModifierKeyChange(*InputState)                                    {}
func (ToolAdapter) MouseDown(*InputState, common.MouseButton)                        {}
func (ToolAdapter) MouseUp(*InputState, common.MouseButton)                          {}
func (ToolAdapter) MouseClick(*InputState, common.MouseButton) bool                  { return false }
func (ToolAdapter) MouseDoubleClick(*InputState, common.MouseButton) bool            { return false }
func (ToolAdapter) Scroll(*InputState)                                               {}
func (ToolAdapter) MouseMove(*InputState)                                            {}
func (ToolAdapter) StartMouseDrag(*InputState) bool                                  { return false }
func (ToolAdapter) MouseDrag(*InputState) bool                                       { return false }
func (ToolAdapter) EndMouseDrag(*InputState)                                         {}
func (ToolAdapter) CancelMouseDrag()                                                 {}
func (ToolAdapter) DragEnter(*InputState, string) bool                               { return false }
func (ToolAdapter) DragMove(*InputState) bool                                        { return false }
func (ToolAdapter) DragLeave(*InputState)                                            {}
func (ToolAdapter) DragDrop(*InputState) bool                                        { return false }
func (ToolAdapter) Cancel() bool                                                     { return false }
func (ToolAdapter) SetRenderOptions(*InputState, *renderer.RenderContext)            {}
func (ToolAdapter) Render(*InputState, *renderer.RenderContext, renderer.RenderSink) {}
