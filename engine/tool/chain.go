package tool

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-map/common"
	"github.com/Carmen-Shannon/oxy-map/engine/renderer"
)

// Chain is an ordered, append-only sequence of tools. The end of the chain is the position
// after the last tool; it holds no tool.
type Chain struct {
	tools []Tool
}

// NewChain creates a chain holding tools in order.
//
// Parameters:
//   - tools: the initial tools, none of them nil
//
// Returns:
//   - *Chain: the chain
func NewChain(tools ...Tool) *Chain {
	c := &Chain{}
	for _, t := range tools {
		c.Append(t)
	}
	return c
}

// Append adds a tool at the end of the chain. Appending nil panics.
func (c *Chain) Append(t Tool) {
	if t == nil {
		panic("tool: cannot append a nil tool to a chain")
	}
	c.tools = append(c.tools, t)
}

// Len returns the number of tools.
func (c *Chain) Len() int {
	return len(c.tools)
}

// Walk visits every position of the chain in order, ending with the terminal position where
// index == Len() and t is nil.
//
// Parameters:
//   - fn: called per position; returning false stops the walk
func (c *Chain) Walk(fn func(index int, t Tool, terminal bool) bool) {
	for i, t := range c.tools {
		if !fn(i, t, false) {
			return
		}
	}
	fn(len(c.tools), nil, true)
}

// Validate checks that every position before the end holds a tool and that exactly one
// terminal position exists.
//
// Returns:
//   - error: a description of the first violation
func (c *Chain) Validate() error {
	terminals := 0
	var err error
	c.Walk(func(i int, t Tool, terminal bool) bool {
		switch {
		case terminal:
			terminals++
			if i != len(c.tools) {
				err = fmt.Errorf("terminal position %d is not at the end of a chain of %d tools", i, len(c.tools))
			}
		case t == nil:
			err = fmt.Errorf("position %d holds no tool", i)
			return false
		}
		return true
	})
	if err == nil && terminals != 1 {
		err = fmt.Errorf("chain has %d terminal positions", terminals)
	}
	return err
}

func (c *Chain) Pick(input *InputState, result *PickResult) {
	for _, t := range c.tools {
		t.Pick(input, result)
	}
}

func (c *Chain) ModifierKeyChange(input *InputState) {
	for _, t := range c.tools {
		t.ModifierKeyChange(input)
	}
}

func (c *Chain) MouseDown(input *InputState, button common.MouseButton) {
	for _, t := range c.tools {
		t.MouseDown(input, button)
	}
}

func (c *Chain) MouseUp(input *InputState, button common.MouseButton) {
	for _, t := range c.tools {
		t.MouseUp(input, button)
	}
}

func (c *Chain) MouseMove(input *InputState) {
	for _, t := range c.tools {
		t.MouseMove(input)
	}
}

func (c *Chain) Scroll(input *InputState) {
	for _, t := range c.tools {
		t.Scroll(input)
	}
}

func (c *Chain) SetRenderOptions(input *InputState, ctx *renderer.RenderContext) {
	for _, t := range c.tools {
		t.SetRenderOptions(input, ctx)
	}
}

func (c *Chain) Render(input *InputState, ctx *renderer.RenderContext, sink renderer.RenderSink) {
	for _, t := range c.tools {
		t.Render(input, ctx, sink)
	}
}

// MouseClick offers a click to each tool in order and stops at the first that handles it.
func (c *Chain) MouseClick(input *InputState, button common.MouseButton) bool {
	for _, t := range c.tools {
		if t.MouseClick(input, button) {
			return true
		}
	}
	return false
}

// MouseDoubleClick offers a double click to each tool in order and stops at the first that
// handles it.
func (c *Chain) MouseDoubleClick(input *InputState, button common.MouseButton) bool {
	for _, t := range c.tools {
		if t.MouseDoubleClick(input, button) {
			return true
		}
	}
	return false
}

// StartMouseDrag returns the first tool that accepts the drag, or nil.
func (c *Chain) StartMouseDrag(input *InputState) Tool {
	for _, t := range c.tools {
		if t.StartMouseDrag(input) {
			return t
		}
	}
	return nil
}

// DragEnter returns the first tool that accepts the payload, or nil.
func (c *Chain) DragEnter(input *InputState, payload string) Tool {
	for _, t := range c.tools {
		if t.DragEnter(input, payload) {
			return t
		}
	}
	return nil
}

// Cancel asks each tool in order to cancel and stops at the first that had pending state.
func (c *Chain) Cancel() bool {
	for _, t := range c.tools {
		if t.Cancel() {
			return true
		}
	}
	return false
}
