// Package assets caches entity models and the renderers built from them.
package assets

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-map/common"
	"github.com/Carmen-Shannon/oxy-map/engine/document"
	"github.com/Carmen-Shannon/oxy-map/engine/renderer/vbo"
)

// ModelVertexStride is the size of a model vertex: position and texture coordinate.
const ModelVertexStride = 3*4 + 2*4

// ModelSpecification identifies one renderable form of a model.
type ModelSpecification struct {
	Path  string
	Skin  int
	Frame int
}

// String formats the specification for logging.
func (s ModelSpecification) String() string {
	return fmt.Sprintf("%s[skin=%d,frame=%d]", s.Path, s.Skin, s.Frame)
}

// ModelLoader loads models from the current asset source. Loaders are compared by identity,
// so implementations should be pointer types.
type ModelLoader interface {
	// LoadModel loads the model at path.
	LoadModel(path string) (Model, error)
}

// Model is a loaded model.
type Model interface {
	// BuildRenderer creates a renderer for a skin and frame. It returns nil if the skin or
	// frame does not exist or the frame has no geometry.
	BuildRenderer(skin, frame int) ModelRenderer
}

// ModelRenderer draws one skin and frame of a model.
type ModelRenderer interface {
	// Prepare writes the renderer's vertices into v. It is called inside a write scope of v.
	Prepare(v vbo.Vbo) error

	// Prepared reports whether Prepare has completed.
	Prepared() bool

	// Draws returns the draw ranges, valid once prepared.
	Draws() []ModelDraw

	// Bounds returns the model-space bounds.
	Bounds() document.BBox
}

// ModelDraw is one textured triangle range of a prepared model.
type ModelDraw struct {
	// Texture is the skin, or nil to draw with Color.
	Texture      *document.Texture
	Color        common.Color
	BufferOffset uint64
	FirstVertex  int
	VertexCount  int
}
