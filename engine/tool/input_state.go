package tool

import (
	"github.com/Carmen-Shannon/oxy-map/common"
	"github.com/Carmen-Shannon/oxy-map/engine/camera"
)

// MouseButtons is a bit set of held mouse buttons.
type MouseButtons uint8

// MouseButtonBit returns the bit of a button in a MouseButtons set.
func MouseButtonBit(b common.MouseButton) MouseButtons {
	if b < 0 {
		return 0
	}
	return 1 << uint(b)
}

// InputState is the snapshot of the input devices and the cursor pick that every tool event
// receives.
type InputState struct {
	Modifiers common.ModifierKeys
	Buttons   MouseButtons

	// MouseX and MouseY are the cursor position in pixels from the top left corner.
	MouseX, MouseY float32
	// DeltaX and DeltaY are the cursor movement since the previous event.
	DeltaX, DeltaY float32
	// ScrollDelta is the wheel movement of a Scroll event, positive away from the user.
	ScrollDelta float32

	// PickRay is the ray from the eye through the cursor.
	PickRay common.Ray
	// PickResult holds the hits of PickRay. It is refreshed before every non-drag event.
	PickResult *PickResult

	Camera camera.Camera
}

// ButtonDown reports whether a mouse button is held.
func (s InputState) ButtonDown(b common.MouseButton) bool {
	return s.Buttons&MouseButtonBit(b) != 0
}

// OnlyButtonDown reports whether b is the only held mouse button.
func (s InputState) OnlyButtonDown(b common.MouseButton) bool {
	return s.Buttons == MouseButtonBit(b)
}

// ModifierKeysPressed reports whether exactly the modifiers in m are held.
func (s InputState) ModifierKeysPressed(m common.ModifierKeys) bool {
	return s.Modifiers == m
}

// Pick returns the pick result, never nil.
func (s InputState) Pick() *PickResult {
	if s.PickResult == nil {
		return &PickResult{}
	}
	return s.PickResult
}
