package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyA         = 65  // A key (ASCII)
	KeyD         = 68  // D key (ASCII)
	KeyE         = 69  // E key (ASCII)
	KeyF         = 70  // F key (ASCII)
	KeyL         = 76  // L key (ASCII)
	KeyQ         = 81  // Q key (ASCII)
	KeyS         = 83  // S key (ASCII)
	KeyT         = 84  // T key (ASCII)
	KeyU         = 85  // U key (ASCII)
	KeyW         = 87  // W key (ASCII)
	KeySpace     = 32  // Spacebar (ASCII)
	KeyDelete    = 261 // Delete key (GLFW)
	KeyBackspace = 259 // Backspace key (GLFW)
	KeyEsc       = 256 // Escape key (GLFW)
	KeyF5        = 294 // F5 key (GLFW)

	KeyLeftShift    = 340 // Left Shift (GLFW)
	KeyLeftControl  = 341 // Left Control (GLFW)
	KeyLeftAlt      = 342 // Left Alt (GLFW)
	KeyLeftSuper    = 343 // Left Super (GLFW)
	KeyRightShift   = 344 // Right Shift (GLFW)
	KeyRightControl = 345 // Right Control (GLFW)
	KeyRightAlt     = 346 // Right Alt (GLFW)
	KeyRightSuper   = 347 // Right Super (GLFW)
)

// ModifierKeys is a bit set of held modifier keys. Bit values match glfw.ModifierKey.
type ModifierKeys uint8

const (
	ModNone    ModifierKeys = 0
	ModShift   ModifierKeys = 0x0001
	ModControl ModifierKeys = 0x0002
	ModAlt     ModifierKeys = 0x0004
	ModSuper   ModifierKeys = 0x0008
)

// Has reports whether every modifier in m is held.
func (k ModifierKeys) Has(m ModifierKeys) bool {
	return k&m == m
}

// MouseButton identifies a mouse button. Values match glfw.MouseButton.
type MouseButton int

const (
	MouseButtonLeft   MouseButton = 0
	MouseButtonRight  MouseButton = 1
	MouseButtonMiddle MouseButton = 2
	MouseButtonNone   MouseButton = -1
)

// ModifierForKey maps a modifier key code to its bit, or ModNone for any other key.
func ModifierForKey(keyCode uint32) ModifierKeys {
	switch keyCode {
	case KeyLeftShift, KeyRightShift:
		return ModShift
	case KeyLeftControl, KeyRightControl:
		return ModControl
	case KeyLeftAlt, KeyRightAlt:
		return ModAlt
	case KeyLeftSuper, KeyRightSuper:
		return ModSuper
	}
	return ModNone
}
