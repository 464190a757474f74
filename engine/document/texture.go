package document

import (
	"github.com/Carmen-Shannon/oxy-map/common"
)

// DefaultTextureSize is used for texture coordinate scaling when a texture has no pixel data.
const DefaultTextureSize = 64

// Texture is a named face texture. A dummy texture has no pixels and is drawn with a flat color.
type Texture struct {
	name         string
	dummy        bool
	staging      common.TextureStagingData
	averageColor common.Color
}

// NewTexture creates a texture from decoded pixel data and computes its average color.
//
// Parameters:
//   - name: the texture name, used as the GPU cache key
//   - staging: RGBA8 pixels and dimensions
//
// Returns:
//   - *Texture: the texture
func NewTexture(name string, staging common.TextureStagingData) *Texture {
	return &Texture{
		name:         name,
		staging:      staging,
		averageColor: staging.AverageColor(),
	}
}

// NewDummyTexture creates a placeholder texture with no pixel data.
func NewDummyTexture(name string) *Texture {
	return &Texture{
		name:         name,
		dummy:        true,
		averageColor: common.Color{1, 1, 1, 1},
	}
}

// Name returns the texture name.
func (t *Texture) Name() string { return t.name }

// Dummy reports whether the texture is a pixel-less placeholder.
func (t *Texture) Dummy() bool { return t.dummy }

// AverageColor returns the mean color of the texture pixels.
func (t *Texture) AverageColor() common.Color { return t.averageColor }

// Staging returns the pixel data pending GPU upload.
func (t *Texture) Staging() common.TextureStagingData { return t.staging }

// Width returns the pixel width, or DefaultTextureSize for textures without pixels.
func (t *Texture) Width() float32 {
	if t == nil || t.staging.Width == 0 {
		return DefaultTextureSize
	}
	return float32(t.staging.Width)
}

// Height returns the pixel height, or DefaultTextureSize for textures without pixels.
func (t *Texture) Height() float32 {
	if t == nil || t.staging.Height == 0 {
		return DefaultTextureSize
	}
	return float32(t.staging.Height)
}
