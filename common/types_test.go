package common

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestColorHelpers(t *testing.T) {
	c := Color{0.25, 0.5, 0.75, 1}
	assert.Equal(t, float32(0.25), c.R())
	assert.Equal(t, float32(0.5), c.G())
	assert.Equal(t, float32(0.75), c.B())
	assert.Equal(t, float32(1), c.A())
	assert.Equal(t, float32(0.3), c.WithAlpha(0.3).A())
	assert.Equal(t, float32(1), c.A(), "WithAlpha returns a copy")

	assert.Equal(t, [4]byte{255, 128, 0, 255}, Color{1, 0.5, -1, 2}.RGBA8())
}

func TestImportedTextureDecode(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(1, 0, color.RGBA{B: 255, A: 255})
	data := encodePNG(t, img)

	embedded := &ImportedTexture{Name: "embedded", Data: data, MimeType: "image/png"}
	staged, err := embedded.Decode()
	require.NoError(t, err)
	assert.Equal(t, uint32(2), staged.Width)
	assert.Equal(t, uint32(1), staged.Height)
	assert.Len(t, staged.Pixels, 8)

	avg := staged.AverageColor()
	assert.InDelta(t, 0.5, avg.R(), 1e-3)
	assert.InDelta(t, 0, avg.G(), 1e-3)
	assert.InDelta(t, 0.5, avg.B(), 1e-3)
	assert.InDelta(t, 1, avg.A(), 1e-3)

	path := filepath.Join(t.TempDir(), "red.png")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	onDisk, err := (&ImportedTexture{Name: "red", Path: path}).Decode()
	require.NoError(t, err)
	assert.Equal(t, staged.Pixels, onDisk.Pixels)
}

func TestImportedTextureDecodeErrors(t *testing.T) {
	var missing *ImportedTexture
	_, err := missing.Decode()
	assert.Error(t, err)

	_, err = (&ImportedTexture{Name: "empty"}).Decode()
	assert.Error(t, err)

	_, err = (&ImportedTexture{Name: "garbage", Data: []byte("not an image")}).Decode()
	assert.Error(t, err)

	_, err = (&ImportedTexture{Name: "gone", Path: filepath.Join(t.TempDir(), "gone.png")}).Decode()
	assert.Error(t, err)
}

func TestAverageColorOfNothingIsWhite(t *testing.T) {
	assert.Equal(t, Color{1, 1, 1, 1}, TextureStagingData{}.AverageColor())
}
