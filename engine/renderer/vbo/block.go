package vbo

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-map/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Block is a region of a Vbo. Writes append at the block cursor and are only legal while the
// owning buffer is mapped. A block is written by the goroutine that mapped its buffer.
type Block struct {
	vbo    *vbo
	offset int
	size   int
	pos    int
}

// Offset returns the byte offset of the block in its buffer.
func (b *Block) Offset() int { return b.offset }

// Size returns the requested block size in bytes.
func (b *Block) Size() int { return b.size }

// Pos returns the write cursor relative to the block start.
func (b *Block) Pos() int { return b.pos }

// Seek moves the write cursor.
func (b *Block) Seek(pos int) {
	if pos < 0 || pos > b.size {
		panic(fmt.Sprintf("vbo block seek to %d outside [0, %d]", pos, b.size))
	}
	b.pos = pos
}

func (b *Block) reserve(n int) []byte {
	if !b.vbo.mapped {
		panic(fmt.Sprintf("vbo %q: block written outside a mapping", b.vbo.label))
	}
	if b.pos+n > b.size {
		panic(fmt.Sprintf("vbo %q: write of %d bytes at %d overflows block of %d bytes", b.vbo.label, n, b.pos, b.size))
	}
	start := b.offset + b.pos
	b.pos += n
	b.vbo.markDirty(start, start+n)
	return b.vbo.shadow[start : start+n]
}

// WriteBytes copies raw bytes.
func (b *Block) WriteBytes(p []byte) {
	copy(b.reserve(len(p)), p)
}

// WriteFloat32 writes one little endian float.
func (b *Block) WriteFloat32(f float32) {
	binary.LittleEndian.PutUint32(b.reserve(4), math.Float32bits(f))
}

// WriteVec2 writes two floats.
func (b *Block) WriteVec2(v mgl32.Vec2) {
	dst := b.reserve(8)
	binary.LittleEndian.PutUint32(dst[0:], math.Float32bits(v[0]))
	binary.LittleEndian.PutUint32(dst[4:], math.Float32bits(v[1]))
}

// WriteVec3 writes three floats.
func (b *Block) WriteVec3(v mgl32.Vec3) {
	dst := b.reserve(12)
	binary.LittleEndian.PutUint32(dst[0:], math.Float32bits(v[0]))
	binary.LittleEndian.PutUint32(dst[4:], math.Float32bits(v[1]))
	binary.LittleEndian.PutUint32(dst[8:], math.Float32bits(v[2]))
}

// WriteColor writes a color as four normalized bytes.
func (b *Block) WriteColor(c common.Color) {
	rgba := c.RGBA8()
	copy(b.reserve(4), rgba[:])
}

// Bytes returns the block contents as held in the CPU shadow copy.
func (b *Block) Bytes() []byte {
	return b.vbo.shadow[b.offset : b.offset+b.size]
}

// Free returns the block to its buffer. Freeing twice is a no-op.
func (b *Block) Free() {
	b.vbo.freeBlock(b)
}
