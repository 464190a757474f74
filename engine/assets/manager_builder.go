package assets

// ManagerBuilderOption is a functional option applied to a manager during construction via NewManager.
type ManagerBuilderOption func(*manager)

// WithModelBufferCapacity sets the initial size in bytes of the model vertex buffer.
//
// Parameters:
//   - size: the initial buffer size
//
// Returns:
//   - ManagerBuilderOption: a function that sets the buffer capacity
func WithModelBufferCapacity(size int) ManagerBuilderOption {
	return func(m *manager) {
		m.bufferCapacity = size
	}
}
