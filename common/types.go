// package common contains common types that are used throughout the editor. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	_ "golang.org/x/image/bmp"
)

// Color is a linear RGBA color with components in [0, 1].
type Color [4]float32

// R returns the red component.
func (c Color) R() float32 { return c[0] }

// G returns the green component.
func (c Color) G() float32 { return c[1] }

// B returns the blue component.
func (c Color) B() float32 { return c[2] }

// A returns the alpha component.
func (c Color) A() float32 { return c[3] }

// WithAlpha returns a copy of c with its alpha replaced.
func (c Color) WithAlpha(a float32) Color {
	c[3] = a
	return c
}

// Vec4 returns the color as a vector, for uniform uploads.
func (c Color) Vec4() mgl32.Vec4 {
	return mgl32.Vec4(c)
}

// RGBA8 packs the color into four unsigned bytes, clamping each channel.
func (c Color) RGBA8() [4]byte {
	var out [4]byte
	for i, v := range c {
		out[i] = byte(math32.Round(Clamp(v, 0, 1) * 255))
	}
	return out
}

// TextureStagingData holds RGBA pixel data for a texture pending GPU upload.
type TextureStagingData struct {
	// Pixels is the RGBA8 pixel data, 4 bytes per pixel, row-major.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
}

// ImportedTexture represents image data either embedded in a model file or found on disk.
// For embedded textures (GLB), the Data field contains raw image bytes.
// For external textures, the Path field contains the file path.
type ImportedTexture struct {
	// Name is an identifier for this texture.
	Name string

	// Path is the file path for external textures (empty for embedded).
	Path string

	// Data contains raw image bytes for embedded textures.
	Data []byte

	// MimeType indicates the image format (e.g., "image/png", "image/bmp").
	MimeType string
}

// Decode decodes the texture to raw RGBA pixel data.
// Uses either embedded Data bytes or loads from Path on disk.
// Supports PNG, JPEG and BMP.
//
// Returns:
//   - TextureStagingData: the decoded pixels and dimensions
//   - error: error if decoding fails
func (t *ImportedTexture) Decode() (TextureStagingData, error) {
	if t == nil {
		return TextureStagingData{}, fmt.Errorf("texture is nil")
	}

	var img image.Image
	var err error

	switch {
	case len(t.Data) > 0:
		img, _, err = image.Decode(bytes.NewReader(t.Data))
		if err != nil {
			return TextureStagingData{}, fmt.Errorf("failed to decode embedded image %s: %w", t.Name, err)
		}
	case t.Path != "":
		file, fileErr := os.Open(t.Path)
		if fileErr != nil {
			return TextureStagingData{}, fmt.Errorf("failed to open texture file %s: %w", t.Path, fileErr)
		}
		defer file.Close()

		img, _, err = image.Decode(file)
		if err != nil {
			return TextureStagingData{}, fmt.Errorf("failed to decode texture file %s: %w", t.Path, err)
		}
	default:
		return TextureStagingData{}, fmt.Errorf("texture %s has neither data nor path", t.Name)
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	return TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}, nil
}

// AverageColor returns the mean color of the staged pixels, or opaque white when empty.
func (s TextureStagingData) AverageColor() Color {
	pixelCount := len(s.Pixels) / 4
	if pixelCount == 0 {
		return Color{1, 1, 1, 1}
	}
	var sum [4]float64
	for i := 0; i < pixelCount*4; i += 4 {
		for c := 0; c < 4; c++ {
			sum[c] += float64(s.Pixels[i+c])
		}
	}
	var out Color
	for c := 0; c < 4; c++ {
		out[c] = float32(sum[c] / float64(pixelCount) / 255)
	}
	return out
}
