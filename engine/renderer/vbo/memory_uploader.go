package vbo

import (
	"fmt"
	"sync"
)

var _ BufferUploader = &MemoryUploader{}

// MemoryUploader keeps vertex buffers in host memory. It backs headless rendering and tests.
type MemoryUploader struct {
	buffers map[Handle][]byte
	next    Handle
	creates int
	writes  int
	mu      sync.Mutex
}

// NewMemoryUploader creates an empty in-memory uploader.
func NewMemoryUploader() *MemoryUploader {
	return &MemoryUploader{buffers: make(map[Handle][]byte)}
}

// CreateVertexBuffer allocates a zeroed host buffer.
func (m *MemoryUploader) CreateVertexBuffer(label string, size uint64) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	m.creates++
	m.buffers[m.next] = make([]byte, size)
	return m.next, nil
}

// WriteVertexBuffer copies data into a host buffer.
func (m *MemoryUploader) WriteVertexBuffer(h Handle, offset uint64, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf, ok := m.buffers[h]
	if !ok {
		return fmt.Errorf("unknown vertex buffer %d", h)
	}
	if offset+uint64(len(data)) > uint64(len(buf)) {
		return fmt.Errorf("write of %d bytes at %d overflows vertex buffer %d of %d bytes", len(data), offset, h, len(buf))
	}
	copy(buf[offset:], data)
	m.writes++
	return nil
}

// ReleaseVertexBuffer drops a host buffer.
func (m *MemoryUploader) ReleaseVertexBuffer(h Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.buffers, h)
}

// Buffer returns the contents of a host buffer.
func (m *MemoryUploader) Buffer(h Handle) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buffers[h]
}

// Live returns the number of buffers not yet released.
func (m *MemoryUploader) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buffers)
}

// Creates returns how many buffers were created.
func (m *MemoryUploader) Creates() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creates
}

// Writes returns how many uploads were performed.
func (m *MemoryUploader) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
