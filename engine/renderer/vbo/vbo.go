// Package vbo provides a growable vertex buffer with a CPU shadow copy and a first-fit block
// allocator. Blocks are written between Map and Unmap; Unmap uploads the dirty byte range to
// the GPU through a BufferUploader.
package vbo

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// blockAlignment is the byte alignment of every allocated block.
const blockAlignment = 4

// Handle identifies a GPU vertex buffer created by a BufferUploader.
type Handle uint64

// BufferUploader creates and writes GPU vertex buffers.
type BufferUploader interface {
	// CreateVertexBuffer allocates a GPU vertex buffer of size bytes.
	CreateVertexBuffer(label string, size uint64) (Handle, error)

	// WriteVertexBuffer copies data into the buffer at offset.
	WriteVertexBuffer(h Handle, offset uint64, data []byte) error

	// ReleaseVertexBuffer destroys a buffer.
	ReleaseVertexBuffer(h Handle)
}

// Vbo is a vertex buffer with scoped write access.
type Vbo interface {
	// Map opens the buffer for writing. Mapping an already mapped buffer panics.
	Map()

	// Unmap closes the write scope and uploads everything written since Map.
	//
	// Returns:
	//   - error: error if the GPU buffer could not be created or written
	Unmap() error

	// Mapped runs fn between Map and Unmap. The buffer is unmapped on every exit path,
	// including when fn returns an error or panics.
	//
	// Parameters:
	//   - fn: the write callback
	//
	// Returns:
	//   - error: the callback error joined with any upload error
	Mapped(fn func() error) error

	// IsMapped reports whether the buffer is inside a write scope.
	IsMapped() bool

	// AllocBlock reserves size bytes. The buffer grows when no free region fits.
	// Allocating zero bytes or allocating outside a write scope panics.
	//
	// Parameters:
	//   - size: the block size in bytes
	//
	// Returns:
	//   - *Block: the reserved block, positioned at its first byte
	AllocBlock(size int) *Block

	// Handle returns the current GPU buffer. It changes when the buffer grows.
	Handle() Handle

	// Capacity returns the buffer size in bytes.
	Capacity() int

	// Used returns the number of bytes held by live blocks.
	Used() int

	// Blocks returns the number of live blocks.
	Blocks() int

	// Release destroys the GPU buffer and frees every block.
	Release()
}

var _ Vbo = &vbo{}

type region struct {
	offset int
	size   int
}

type vbo struct {
	label    string
	uploader BufferUploader

	shadow []byte
	free   []region
	live   map[*Block]struct{}

	handle      Handle
	hasHandle   bool
	recreate    bool
	dirtyStart  int
	dirtyEnd    int
	mapped      bool
	initialSize int

	mu *sync.Mutex
}

// NewVbo creates an empty vertex buffer. The GPU buffer is created on the first Unmap.
//
// Parameters:
//   - uploader: the GPU buffer backend
//   - options: functional options such as WithLabel and WithInitialCapacity
//
// Returns:
//   - Vbo: the buffer
func NewVbo(uploader BufferUploader, options ...VboBuilderOption) Vbo {
	v := &vbo{
		label:       "Vertex Buffer",
		uploader:    uploader,
		live:        make(map[*Block]struct{}),
		initialSize: 64 * 1024,
		mu:          &sync.Mutex{},
	}
	for _, opt := range options {
		opt(v)
	}
	v.shadow = make([]byte, alignUp(v.initialSize))
	v.free = []region{{offset: 0, size: len(v.shadow)}}
	v.recreate = true
	v.resetDirty()
	return v
}

func alignUp(n int) int {
	return (n + blockAlignment - 1) &^ (blockAlignment - 1)
}

func (v *vbo) resetDirty() {
	v.dirtyStart = len(v.shadow)
	v.dirtyEnd = 0
}

func (v *vbo) markDirty(start, end int) {
	v.dirtyStart = min(v.dirtyStart, start)
	v.dirtyEnd = max(v.dirtyEnd, end)
}

func (v *vbo) Map() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.mapped {
		panic(fmt.Sprintf("vbo %q is already mapped", v.label))
	}
	v.mapped = true
}

func (v *vbo) Unmap() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.mapped {
		panic(fmt.Sprintf("vbo %q is not mapped", v.label))
	}
	v.mapped = false
	return v.upload()
}

func (v *vbo) upload() error {
	if v.uploader == nil {
		v.resetDirty()
		return nil
	}

	if v.recreate {
		if v.hasHandle {
			v.uploader.ReleaseVertexBuffer(v.handle)
			v.hasHandle = false
		}
		h, err := v.uploader.CreateVertexBuffer(v.label, uint64(len(v.shadow)))
		if err != nil {
			return fmt.Errorf("failed to create vertex buffer %s: %w", v.label, err)
		}
		v.handle = h
		v.hasHandle = true
		v.recreate = false
		v.dirtyStart, v.dirtyEnd = 0, len(v.shadow)
	}

	if v.dirtyEnd > v.dirtyStart {
		start := v.dirtyStart &^ (blockAlignment - 1)
		end := alignUp(v.dirtyEnd)
		if err := v.uploader.WriteVertexBuffer(v.handle, uint64(start), v.shadow[start:end]); err != nil {
			return fmt.Errorf("failed to write vertex buffer %s: %w", v.label, err)
		}
	}
	v.resetDirty()
	return nil
}

func (v *vbo) Mapped(fn func() error) (err error) {
	v.Map()
	defer func() {
		if uerr := v.Unmap(); uerr != nil {
			err = errors.Join(err, uerr)
		}
	}()
	return fn()
}

func (v *vbo) IsMapped() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mapped
}

func (v *vbo) AllocBlock(size int) *Block {
	v.mu.Lock()
	defer v.mu.Unlock()

	if size <= 0 {
		panic(fmt.Sprintf("vbo %q: cannot allocate a block of %d bytes", v.label, size))
	}
	if !v.mapped {
		panic(fmt.Sprintf("vbo %q: cannot allocate a block outside a mapping", v.label))
	}

	need := alignUp(size)
	idx := v.firstFit(need)
	if idx < 0 {
		v.grow(need)
		idx = v.firstFit(need)
	}

	r := v.free[idx]
	if r.size == need {
		v.free = append(v.free[:idx], v.free[idx+1:]...)
	} else {
		v.free[idx] = region{offset: r.offset + need, size: r.size - need}
	}

	b := &Block{vbo: v, offset: r.offset, size: size}
	v.live[b] = struct{}{}
	return b
}

func (v *vbo) firstFit(size int) int {
	for i, r := range v.free {
		if r.size >= size {
			return i
		}
	}
	return -1
}

// grow enlarges the shadow copy so that a block of size bytes fits at the end.
func (v *vbo) grow(size int) {
	oldLen := len(v.shadow)
	tail := 0
	if n := len(v.free); n > 0 && v.free[n-1].offset+v.free[n-1].size == oldLen {
		tail = v.free[n-1].size
	}
	newLen := max(oldLen*2, oldLen-tail+size)
	newLen = alignUp(newLen)

	shadow := make([]byte, newLen)
	copy(shadow, v.shadow)
	v.shadow = shadow
	v.release(region{offset: oldLen, size: newLen - oldLen})
	v.recreate = true
}

// release returns a region to the free list, merging it with its neighbors.
func (v *vbo) release(r region) {
	i := sort.Search(len(v.free), func(i int) bool { return v.free[i].offset > r.offset })
	v.free = append(v.free, region{})
	copy(v.free[i+1:], v.free[i:])
	v.free[i] = r

	if i+1 < len(v.free) && v.free[i].offset+v.free[i].size == v.free[i+1].offset {
		v.free[i].size += v.free[i+1].size
		v.free = append(v.free[:i+1], v.free[i+2:]...)
	}
	if i > 0 && v.free[i-1].offset+v.free[i-1].size == v.free[i].offset {
		v.free[i-1].size += v.free[i].size
		v.free = append(v.free[:i], v.free[i+1:]...)
	}
}

func (v *vbo) freeBlock(b *Block) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.live[b]; !ok {
		return
	}
	delete(v.live, b)
	v.release(region{offset: b.offset, size: alignUp(b.size)})
}

func (v *vbo) Handle() Handle {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.handle
}

func (v *vbo) Capacity() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.shadow)
}

func (v *vbo) Used() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	used := 0
	for b := range v.live {
		used += alignUp(b.size)
	}
	return used
}

func (v *vbo) Blocks() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.live)
}

func (v *vbo) Release() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.hasHandle && v.uploader != nil {
		v.uploader.ReleaseVertexBuffer(v.handle)
	}
	v.hasHandle = false
	v.handle = 0
	v.live = make(map[*Block]struct{})
	v.free = []region{{offset: 0, size: len(v.shadow)}}
	v.recreate = true
	v.resetDirty()
}
