// Package text draws camera-facing string labels, such as entity classnames, in the 3D view.
package text

import (
	"image"
	"sync"

	"github.com/Carmen-Shannon/oxy-map/common"
	"github.com/Carmen-Shannon/oxy-map/engine/document"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// AtlasTextureName is the texture name of the default glyph atlas.
const AtlasTextureName = "__label_atlas__"

const (
	firstGlyph   = ' '
	lastGlyph    = '~'
	atlasColumns = 16
	fallbackRune = '?'
)

// Atlas is a fixed-cell glyph texture for printable ASCII.
type Atlas struct {
	face    font.Face
	texture *document.Texture

	cellWidth  int
	cellHeight int
	columns    int
	width      int
	height     int
}

var defaultAtlas = sync.OnceValue(func() *Atlas {
	return NewAtlas(basicfont.Face7x13, AtlasTextureName)
})

// DefaultAtlas returns the shared atlas built from the basic 7x13 bitmap face.
func DefaultAtlas() *Atlas {
	return defaultAtlas()
}

// NewAtlas rasterizes the printable ASCII range of a fixed-width face into a texture.
//
// Parameters:
//   - face: a monospaced face
//   - name: the texture name
//
// Returns:
//   - *Atlas: the atlas
func NewAtlas(face font.Face, name string) *Atlas {
	metrics := face.Metrics()
	a := &Atlas{
		face:       face,
		cellWidth:  font.MeasureString(face, "M").Ceil(),
		cellHeight: metrics.Height.Ceil(),
		columns:    atlasColumns,
	}
	glyphs := int(lastGlyph-firstGlyph) + 1
	rows := (glyphs + a.columns - 1) / a.columns
	a.width = a.columns * a.cellWidth
	a.height = rows * a.cellHeight

	img := image.NewRGBA(image.Rect(0, 0, a.width, a.height))
	drawer := &font.Drawer{Dst: img, Src: image.White, Face: face}
	ascent := metrics.Ascent.Ceil()
	for r := firstGlyph; r <= lastGlyph; r++ {
		col, row := a.cell(r)
		drawer.Dot = fixed.P(col*a.cellWidth, row*a.cellHeight+ascent)
		drawer.DrawString(string(r))
	}

	a.texture = document.NewTexture(name, common.TextureStagingData{
		Pixels: img.Pix,
		Width:  uint32(a.width),
		Height: uint32(a.height),
	})
	return a
}

func (a *Atlas) cell(r rune) (col, row int) {
	if r < firstGlyph || r > lastGlyph {
		r = fallbackRune
	}
	i := int(r - firstGlyph)
	return i % a.columns, i / a.columns
}

// Texture returns the atlas texture.
func (a *Atlas) Texture() *document.Texture { return a.texture }

// CellSize returns the pixel size of one glyph cell.
func (a *Atlas) CellSize() (width, height int) { return a.cellWidth, a.cellHeight }

// Measure returns the pixel width of s.
func (a *Atlas) Measure(s string) int {
	return font.MeasureString(a.face, s).Ceil()
}

// Glyph returns the texture coordinates of the cell holding r. Runes outside the atlas map
// to '?'.
//
// Parameters:
//   - r: the rune
//
// Returns:
//   - mgl32.Vec2: the top-left texture coordinate
//   - mgl32.Vec2: the bottom-right texture coordinate
func (a *Atlas) Glyph(r rune) (mgl32.Vec2, mgl32.Vec2) {
	col, row := a.cell(r)
	w, h := float32(a.width), float32(a.height)
	x0, y0 := float32(col*a.cellWidth), float32(row*a.cellHeight)
	return mgl32.Vec2{x0 / w, y0 / h}, mgl32.Vec2{(x0 + float32(a.cellWidth)) / w, (y0 + float32(a.cellHeight)) / h}
}
