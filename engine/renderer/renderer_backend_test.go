package renderer

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-map/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float32At(b []byte, i int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
}

func TestDrawUniformsBytes(t *testing.T) {
	u := DrawUniforms{
		Transform:   mgl32.Translate3D(1, 2, 3),
		Color:       common.Color{0.1, 0.2, 0.3, 0.4},
		Tint:        common.Color{1, 0, 0, 0.5},
		ColorMode:   ColorModeTexture,
		TintMode:    TintReplaceAlpha,
		DepthOffset: EdgeOffsetSelected,
	}
	b := u.Bytes()
	require.Len(t, b, DrawUniformsSize)

	assert.Equal(t, float32(1), float32At(b, 12), "translation is stored in the last column")
	assert.Equal(t, float32(3), float32At(b, 14))
	assert.Equal(t, float32(0.3), float32At(b, 18))
	assert.Equal(t, float32(0.5), float32At(b, 23))
	assert.Equal(t, uint32(ColorModeTexture), binary.LittleEndian.Uint32(b[24*4:]))
	assert.Equal(t, uint32(TintReplaceAlpha), binary.LittleEndian.Uint32(b[25*4:]))
	assert.Equal(t, EdgeOffsetSelected, float32At(b, 26))
}

func TestDrawUniformsBytesDefaultsToIdentity(t *testing.T) {
	b := DrawUniforms{}.Bytes()
	for i := 0; i < 16; i++ {
		want := float32(0)
		if i%5 == 0 {
			want = 1
		}
		assert.Equal(t, want, float32At(b, i), "element %d", i)
	}
}
