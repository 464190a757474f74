package tool

import (
	"time"

	"github.com/Carmen-Shannon/oxy-map/engine/document"
)

// ToolBoxBuilderOption is a functional option applied to a tool box during construction via NewToolBox.
type ToolBoxBuilderOption func(*ToolBox)

// WithPicker replaces the map picker.
func WithPicker(p Picker) ToolBoxBuilderOption {
	return func(tb *ToolBox) {
		tb.picker = p
	}
}

// WithFilter sets the filter that decides which objects can be picked.
func WithFilter(f document.Filter) ToolBoxBuilderOption {
	return func(tb *ToolBox) {
		tb.filter = f
	}
}

// WithDragThreshold sets how far in pixels the cursor must move with a button held before a
// drag starts.
//
// Parameters:
//   - pixels: the threshold distance
//
// Returns:
//   - ToolBoxBuilderOption: a function that sets the threshold
func WithDragThreshold(pixels float32) ToolBoxBuilderOption {
	return func(tb *ToolBox) {
		tb.dragThreshold = pixels
	}
}

// WithDoubleClickInterval sets the longest time between two clicks of a double click.
func WithDoubleClickInterval(d time.Duration) ToolBoxBuilderOption {
	return func(tb *ToolBox) {
		tb.doubleClickInterval = d
	}
}

// WithClock replaces the time source used for double click detection.
func WithClock(now func() time.Time) ToolBoxBuilderOption {
	return func(tb *ToolBox) {
		tb.now = now
	}
}
