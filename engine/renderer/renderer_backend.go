package renderer

import (
	"github.com/Carmen-Shannon/oxy-map/common"
	"github.com/Carmen-Shannon/oxy-map/engine/document"
	"github.com/Carmen-Shannon/oxy-map/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-map/engine/renderer/vbo"
	"github.com/go-gl/mathgl/mgl32"
)

// PresentMode controls how rendered frames are delivered to the display.
type PresentMode int

const (
	// PresentModeVSync synchronizes presentation with the display refresh rate.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames as fast as possible without waiting for vertical sync.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples per pixel for multisample anti-aliasing.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing.
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4x multisample anti-aliasing.
	MSAA4x MSAASampleCount = 4
)

// ColorMode selects where a draw's base color comes from.
type ColorMode uint32

const (
	// ColorModeVertex uses the per-vertex color.
	ColorModeVertex ColorMode = iota
	// ColorModeUniform uses DrawUniforms.Color.
	ColorModeUniform
	// ColorModeTexture samples the bound texture.
	ColorModeTexture
	// ColorModeTextureAlpha multiplies DrawUniforms.Color by the vertex color and the texture alpha.
	ColorModeTextureAlpha
)

// TintMode selects how DrawUniforms.Tint is applied to the base color.
type TintMode uint32

const (
	// TintNone leaves the base color untouched.
	TintNone TintMode = iota
	// TintModulate multiplies the RGB by the tint RGB and alpha, then doubles it.
	TintModulate
	// TintReplaceAlpha modulates like TintModulate and replaces the alpha with the tint alpha.
	TintReplaceAlpha
)

// Edge offsets pull line geometry towards the camera so it wins the depth test against the faces
// it lies on.
const (
	EdgeOffsetNone     float32 = 0
	EdgeOffsetDefault  float32 = 0.01
	EdgeOffsetSelected float32 = 0.02
)

// DrawUniforms is the per-draw shader state. The same vertex data serves tinted and untinted
// draws; only the uniforms differ.
type DrawUniforms struct {
	Transform   mgl32.Mat4
	Color       common.Color
	Tint        common.Color
	ColorMode   ColorMode
	TintMode    TintMode
	DepthOffset float32
}

// DrawCall draws a vertex range of a buffer with a registered pipeline.
type DrawCall struct {
	Pipeline string
	Buffer   vbo.Handle
	// BufferOffset is the byte offset of the block the vertices live in.
	BufferOffset uint64
	// FirstVertex is relative to BufferOffset.
	FirstVertex int
	VertexCount int
	// Texture names an initialized texture, empty for untextured draws.
	Texture  string
	Uniforms DrawUniforms
}

// RendererBackend is the GPU abstraction the map renderer draws through. It creates the vertex
// buffers of every Vbo and executes the draws of one frame.
type RendererBackend interface {
	vbo.BufferUploader

	// RegisterPipeline creates the backend pipeline object of a description.
	//
	// Parameters:
	//   - p: the pipeline description
	//
	// Returns:
	//   - error: error if the pipeline could not be created
	RegisterPipeline(p pipeline.Pipeline) error

	// InitTexture uploads a texture's pixels under its name. Initializing a name twice replaces
	// the texture.
	//
	// Parameters:
	//   - t: the texture
	//
	// Returns:
	//   - error: error if the texture has no pixels or could not be created
	InitTexture(t *document.Texture) error

	// HasTexture reports whether a texture of that name is initialized.
	HasTexture(name string) bool

	// ConfigureSurface (re)creates the render targets for a framebuffer size.
	ConfigureSurface(width, height int)

	// SetPresentMode sets the present mode used by the next ConfigureSurface.
	SetPresentMode(mode PresentMode)

	// BeginFrame acquires a render target and starts the frame's render pass.
	//
	// Parameters:
	//   - clear: the background color
	//   - viewProjection: the camera matrix shared by every draw of the frame
	//
	// Returns:
	//   - error: error if a frame is already open or no target could be acquired
	BeginFrame(clear common.Color, viewProjection mgl32.Mat4) error

	// Draw records one draw into the open frame.
	//
	// Returns:
	//   - error: error if no frame is open, or the pipeline or texture is unknown
	Draw(call DrawCall) error

	// EndFrame finishes and submits the frame's commands.
	EndFrame() error

	// Present shows the submitted frame.
	Present()

	// Release destroys every GPU object the backend created.
	Release()
}

// DrawUniformsSize is the packed size of DrawUniforms as laid out by Bytes.
const DrawUniformsSize = 64 + 16 + 16 + 16

// Bytes packs the uniforms in WGSL uniform layout: the transform column major, the color and
// tint, then color mode, tint mode and depth offset padded to 16 bytes.
func (u DrawUniforms) Bytes() []byte {
	transform := u.Transform
	if transform == (mgl32.Mat4{}) {
		transform = mgl32.Ident4()
	}
	g := gpuDrawUniforms{
		Transform:   transform,
		Color:       u.Color,
		Tint:        u.Tint,
		ColorMode:   uint32(u.ColorMode),
		TintMode:    uint32(u.TintMode),
		DepthOffset: u.DepthOffset,
	}
	return append(make([]byte, 0, DrawUniformsSize), common.StructToBytes(&g)...)
}

// gpuDrawUniforms mirrors the Draw struct of the editor shader.
type gpuDrawUniforms struct {
	Transform   [16]float32
	Color       [4]float32
	Tint        [4]float32
	ColorMode   uint32
	TintMode    uint32
	DepthOffset float32
	_           float32
}
