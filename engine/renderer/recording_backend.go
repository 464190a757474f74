package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-map/common"
	"github.com/Carmen-Shannon/oxy-map/engine/document"
	"github.com/Carmen-Shannon/oxy-map/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-map/engine/renderer/vbo"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	errNoFrame        = errors.New("no frame in progress")
	errFrameInProcess = errors.New("previous frame not yet ended")
)

var _ RendererBackend = &RecordingBackend{}

// RecordingBackend is a headless RendererBackend. Buffers live in memory and every draw of the
// last frame is recorded, which makes it suitable for tests and offscreen validation.
type RecordingBackend struct {
	*vbo.MemoryUploader

	pipelines map[string]pipeline.Pipeline
	textures  map[string]*document.Texture

	frameOpen      bool
	frames         int
	clearColor     common.Color
	viewProjection mgl32.Mat4
	draws          []DrawCall
	width, height  int
	presentMode    PresentMode

	mu *sync.Mutex
}

// NewRecordingBackend creates an empty recording backend.
func NewRecordingBackend() *RecordingBackend {
	return &RecordingBackend{
		MemoryUploader: vbo.NewMemoryUploader(),
		pipelines:      make(map[string]pipeline.Pipeline),
		textures:       make(map[string]*document.Texture),
		mu:             &sync.Mutex{},
	}
}

func (b *RecordingBackend) RegisterPipeline(p pipeline.Pipeline) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.pipelines[p.PipelineKey()]; ok {
		return fmt.Errorf("pipeline %s already registered", p.PipelineKey())
	}
	p.SetRenderPipeline(p.PipelineKey())
	b.pipelines[p.PipelineKey()] = p
	return nil
}

func (b *RecordingBackend) InitTexture(t *document.Texture) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if t.Dummy() || len(t.Staging().Pixels) == 0 {
		return fmt.Errorf("texture %s has no pixels", t.Name())
	}
	b.textures[t.Name()] = t
	return nil
}

func (b *RecordingBackend) HasTexture(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.textures[name]
	return ok
}

func (b *RecordingBackend) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.width, b.height = width, height
}

func (b *RecordingBackend) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.presentMode = mode
}

func (b *RecordingBackend) BeginFrame(clear common.Color, viewProjection mgl32.Mat4) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.frameOpen {
		return errFrameInProcess
	}
	b.frameOpen = true
	b.clearColor = clear
	b.viewProjection = viewProjection
	b.draws = b.draws[:0]
	return nil
}

// Draw validates the call against the registered pipelines, initialized textures and live
// buffers, then records it.
func (b *RecordingBackend) Draw(call DrawCall) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.frameOpen {
		return errNoFrame
	}
	p, ok := b.pipelines[call.Pipeline]
	if !ok {
		return fmt.Errorf("unknown pipeline %s", call.Pipeline)
	}
	if call.Texture != "" {
		if _, ok := b.textures[call.Texture]; !ok {
			return fmt.Errorf("texture %s is not initialized", call.Texture)
		}
	}
	data := b.Buffer(call.Buffer)
	end := call.BufferOffset + uint64((call.FirstVertex+call.VertexCount)*p.VertexFormat().Stride())
	if data == nil || end > uint64(len(data)) {
		return fmt.Errorf("draw %s reads past buffer %d", call.Pipeline, call.Buffer)
	}
	b.draws = append(b.draws, call)
	return nil
}

func (b *RecordingBackend) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.frameOpen {
		return errNoFrame
	}
	b.frameOpen = false
	b.frames++
	return nil
}

func (b *RecordingBackend) Present() {}

func (b *RecordingBackend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.pipelines)
	clear(b.textures)
	b.draws = nil
}

// Draws returns the draws of the current or last frame in submission order.
func (b *RecordingBackend) Draws() []DrawCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]DrawCall(nil), b.draws...)
}

// Frames returns the number of ended frames.
func (b *RecordingBackend) Frames() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frames
}

// ClearColor returns the background color of the last frame.
func (b *RecordingBackend) ClearColor() common.Color {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.clearColor
}

// ViewProjection returns the camera matrix of the last frame.
func (b *RecordingBackend) ViewProjection() mgl32.Mat4 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.viewProjection
}

// Texture returns an initialized texture by name.
func (b *RecordingBackend) Texture(name string) *document.Texture {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.textures[name]
}
