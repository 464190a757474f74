package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-map/common"
	"github.com/Carmen-Shannon/oxy-map/engine/renderer/geometry"
	"github.com/Carmen-Shannon/oxy-map/engine/renderer/vbo"
	"github.com/go-gl/mathgl/mgl32"
)

// RenderSink collects feedback geometry, such as drag guides, that tools draw on top of the map.
// Everything added is drawn once by the next frame and then discarded.
type RenderSink interface {
	// AddLines adds line segments. Points are consumed in pairs; a trailing odd point is ignored.
	//
	// Parameters:
	//   - color: the line color
	//   - points: segment endpoints
	AddLines(color common.Color, points ...mgl32.Vec3)
}

var _ RenderSink = &lineOverlay{}

// lineOverlay buffers tool lines until the frame that draws them.
type lineOverlay struct {
	buffer   vbo.Vbo
	block    *vbo.Block
	vertices []byte
	count    int
	mu       *sync.Mutex
}

func newLineOverlay(uploader vbo.BufferUploader) *lineOverlay {
	return &lineOverlay{
		buffer: vbo.NewVbo(uploader, vbo.WithLabel("Overlay Line Buffer"), vbo.WithInitialCapacity(0xFF*geometry.EdgeVertexStride)),
		mu:     &sync.Mutex{},
	}
}

func (o *lineOverlay) AddLines(color common.Color, points ...mgl32.Vec3) {
	o.mu.Lock()
	defer o.mu.Unlock()
	rgba := color.RGBA8()
	for i := 0; i+1 < len(points); i += 2 {
		for _, p := range points[i : i+2] {
			o.vertices = append(o.vertices, rgba[:]...)
			o.vertices = append(o.vertices, common.SliceToBytes(p[:])...)
			o.count++
		}
	}
}

// flush uploads the pending lines and resets the overlay for the next frame.
//
// Returns:
//   - vbo.Handle: the buffer holding the lines
//   - uint64: the byte offset of the lines
//   - int: the vertex count, zero when nothing was added
//   - error: error if the upload failed
func (o *lineOverlay) flush() (vbo.Handle, uint64, int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.block != nil {
		o.block.Free()
		o.block = nil
	}
	if o.count == 0 {
		return 0, 0, 0, nil
	}

	vertices, count := o.vertices, o.count
	o.vertices, o.count = o.vertices[:0:0], 0

	err := o.buffer.Mapped(func() error {
		o.block = o.buffer.AllocBlock(len(vertices))
		o.block.WriteBytes(vertices)
		return nil
	})
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to upload overlay lines: %w", err)
	}
	return o.buffer.Handle(), uint64(o.block.Offset()), count, nil
}

func (o *lineOverlay) release() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.block = nil
	o.vertices, o.count = nil, 0
	o.buffer.Release()
}
