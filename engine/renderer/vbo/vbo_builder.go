package vbo

// VboBuilderOption is a functional option applied to a buffer during construction via NewVbo.
type VboBuilderOption func(*vbo)

// WithLabel sets the debug label of the GPU buffer.
//
// Parameters:
//   - label: the buffer label
//
// Returns:
//   - VboBuilderOption: a function that sets the label
func WithLabel(label string) VboBuilderOption {
	return func(v *vbo) {
		v.label = label
	}
}

// WithInitialCapacity sets the starting buffer size in bytes. The buffer doubles when full.
//
// Parameters:
//   - size: the initial size in bytes, must be positive
//
// Returns:
//   - VboBuilderOption: a function that sets the initial capacity
func WithInitialCapacity(size int) VboBuilderOption {
	return func(v *vbo) {
		if size > 0 {
			v.initialSize = size
		}
	}
}
