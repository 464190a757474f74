package text

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-map/common"
	"github.com/Carmen-Shannon/oxy-map/engine/renderer/vbo"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// LabelVertexStride is the size of a label vertex: position, atlas coordinate and RGBA8 color.
const LabelVertexStride = 3*4 + 2*4 + 4

// Anchor supplies the world position a label is attached to. It is evaluated on every render
// so labels follow moving objects.
type Anchor interface {
	Position() mgl32.Vec3
}

// AnchorFunc adapts a function to Anchor.
type AnchorFunc func() mgl32.Vec3

// Position calls f.
func (f AnchorFunc) Position() mgl32.Vec3 { return f() }

// View is the camera state labels are built for.
type View struct {
	Eye   mgl32.Vec3
	Right mgl32.Vec3
	Up    mgl32.Vec3
	// PixelSize is the world size of one screen pixel at distance one. Zero draws glyphs one
	// world unit per pixel.
	PixelSize float32
}

// Batch is the uploaded label geometry of one render.
type Batch struct {
	Buffer       vbo.Handle
	BufferOffset uint64
	VertexCount  int
}

// Empty reports whether there is nothing to draw.
func (b Batch) Empty() bool { return b.VertexCount == 0 }

// Renderer keeps keyed labels and builds their quads for a view.
type Renderer[K comparable] interface {
	// AddString adds or replaces the label of key.
	//
	// Parameters:
	//   - key: the label owner
	//   - s: the label text
	//   - anchor: where the label is drawn
	AddString(key K, s string, anchor Anchor)

	// RemoveString removes the label of key. Unknown keys are ignored.
	RemoveString(key K)

	// TransferString moves the label of key into dst.
	//
	// Returns:
	//   - bool: false if this renderer has no label for key
	TransferString(key K, dst Renderer[K]) bool

	// Has reports whether key has a label.
	Has(key K) bool

	// Clear removes every label and frees the uploaded geometry.
	Clear()

	// Len returns the number of labels.
	Len() int

	// FadeDistance returns the distance at which labels disappear.
	FadeDistance() float32

	// Atlas returns the glyph atlas the quads sample.
	Atlas() *Atlas

	// Render uploads camera-facing quads for every label within the fade distance. Alpha
	// falls off linearly over the last fade width units.
	//
	// Parameters:
	//   - view: the camera
	//   - visible: optional predicate hiding labels, nil shows all
	//
	// Returns:
	//   - Batch: the uploaded vertices, empty when nothing is in range
	//   - error: error if the upload failed
	Render(view View, visible func(K) bool) (Batch, error)

	// Release frees the label vertex buffer.
	Release()
}

type label[K comparable] struct {
	key    K
	text   string
	anchor Anchor
}

type settings struct {
	name         string
	fadeDistance float32
	fadeWidth    float32
	atlas        *Atlas
}

type renderer[K comparable] struct {
	settings

	labels []label[K]
	index  map[K]int

	buffer vbo.Vbo
	block  *vbo.Block

	mu *sync.Mutex
}

// NewRenderer creates an empty label renderer.
//
// Parameters:
//   - uploader: the GPU buffer backend
//   - options: functional options such as WithFadeDistance
//
// Returns:
//   - Renderer[K]: the renderer
func NewRenderer[K comparable](uploader vbo.BufferUploader, options ...RendererBuilderOption) Renderer[K] {
	r := &renderer[K]{
		settings: settings{
			name:         "labels",
			fadeDistance: 400,
			fadeWidth:    10,
		},
		index: make(map[K]int),
		mu:    &sync.Mutex{},
	}
	for _, opt := range options {
		opt(&r.settings)
	}
	if r.atlas == nil {
		r.atlas = DefaultAtlas()
	}
	r.buffer = vbo.NewVbo(uploader, vbo.WithLabel(fmt.Sprintf("%s Label Buffer", r.name)), vbo.WithInitialCapacity(0xFFF*LabelVertexStride))
	return r
}

func (r *renderer[K]) AddString(key K, s string, anchor Anchor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i, ok := r.index[key]; ok {
		r.labels[i] = label[K]{key: key, text: s, anchor: anchor}
		return
	}
	r.index[key] = len(r.labels)
	r.labels = append(r.labels, label[K]{key: key, text: s, anchor: anchor})
}

func (r *renderer[K]) RemoveString(key K) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remove(key)
}

func (r *renderer[K]) remove(key K) (label[K], bool) {
	i, ok := r.index[key]
	if !ok {
		return label[K]{}, false
	}
	removed := r.labels[i]
	last := len(r.labels) - 1
	if i != last {
		r.labels[i] = r.labels[last]
		r.index[r.labels[i].key] = i
	}
	r.labels = r.labels[:last]
	delete(r.index, key)
	return removed, true
}

func (r *renderer[K]) TransferString(key K, dst Renderer[K]) bool {
	r.mu.Lock()
	l, ok := r.remove(key)
	r.mu.Unlock()
	if !ok {
		return false
	}
	dst.AddString(l.key, l.text, l.anchor)
	return true
}

func (r *renderer[K]) Has(key K) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.index[key]
	return ok
}

func (r *renderer[K]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.labels = nil
	clear(r.index)
	r.freeBlock()
}

func (r *renderer[K]) freeBlock() {
	if r.block != nil {
		r.block.Free()
		r.block = nil
	}
}

func (r *renderer[K]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.labels)
}

func (r *renderer[K]) FadeDistance() float32 { return r.fadeDistance }

func (r *renderer[K]) Atlas() *Atlas { return r.atlas }

func (r *renderer[K]) Render(view View, visible func(K) bool) (Batch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.freeBlock()

	var vertices []byte
	for _, l := range r.labels {
		if visible != nil && !visible(l.key) {
			continue
		}
		vertices = r.appendLabel(vertices, l, view)
	}
	if len(vertices) == 0 {
		return Batch{}, nil
	}

	err := r.buffer.Mapped(func() error {
		r.block = r.buffer.AllocBlock(len(vertices))
		r.block.WriteBytes(vertices)
		return nil
	})
	if err != nil {
		return Batch{}, fmt.Errorf("failed to upload %s: %w", r.name, err)
	}
	return Batch{
		Buffer:       r.buffer.Handle(),
		BufferOffset: uint64(r.block.Offset()),
		VertexCount:  len(vertices) / LabelVertexStride,
	}, nil
}

// appendLabel appends two triangles per glyph, centered horizontally on the anchor.
func (r *renderer[K]) appendLabel(out []byte, l label[K], view View) []byte {
	pos := l.anchor.Position()
	delta := pos.Sub(view.Eye)
	dist := math32.Sqrt(delta.Dot(delta))
	alpha := FadeAlpha(dist, r.fadeDistance, r.fadeWidth)
	if alpha <= 0 || l.text == "" {
		return out
	}

	scale := float32(1)
	if view.PixelSize > 0 {
		scale = dist * view.PixelSize
	}
	color := common.Color{1, 1, 1, alpha}.RGBA8()
	cellW, cellH := r.atlas.CellSize()
	right := view.Right.Mul(scale)
	up := view.Up.Mul(scale)

	x := -float32(r.atlas.Measure(l.text)) / 2
	for _, ch := range l.text {
		uv0, uv1 := r.atlas.Glyph(ch)
		x0, x1 := x, x+float32(cellW)
		p00 := pos.Add(right.Mul(x0))
		p10 := pos.Add(right.Mul(x1))
		p01 := p00.Add(up.Mul(float32(cellH)))
		p11 := p10.Add(up.Mul(float32(cellH)))

		// Texture rows grow downwards, so the top of the quad samples uv0.Y.
		out = appendLabelVertex(out, p00, mgl32.Vec2{uv0[0], uv1[1]}, color)
		out = appendLabelVertex(out, p10, mgl32.Vec2{uv1[0], uv1[1]}, color)
		out = appendLabelVertex(out, p11, mgl32.Vec2{uv1[0], uv0[1]}, color)
		out = appendLabelVertex(out, p00, mgl32.Vec2{uv0[0], uv1[1]}, color)
		out = appendLabelVertex(out, p11, mgl32.Vec2{uv1[0], uv0[1]}, color)
		out = appendLabelVertex(out, p01, mgl32.Vec2{uv0[0], uv0[1]}, color)
		x = x1
	}
	return out
}

func appendLabelVertex(out []byte, p mgl32.Vec3, uv mgl32.Vec2, color [4]byte) []byte {
	out = append(out, common.SliceToBytes([]float32{p[0], p[1], p[2], uv[0], uv[1]})...)
	return append(out, color[:]...)
}

func (r *renderer[K]) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.block = nil
	r.buffer.Release()
}

// FadeAlpha returns the label opacity at a distance: one up to fadeDistance-fadeWidth, falling
// linearly to zero at fadeDistance.
//
// Parameters:
//   - dist: the distance from the camera
//   - fadeDistance: the distance at which labels vanish
//   - fadeWidth: the length of the fade band
//
// Returns:
//   - float32: the alpha in [0, 1]
func FadeAlpha(dist, fadeDistance, fadeWidth float32) float32 {
	if dist >= fadeDistance {
		return 0
	}
	if fadeWidth <= 0 {
		return 1
	}
	return common.Clamp((fadeDistance-dist)/fadeWidth, 0, 1)
}
