package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-map/engine/assets"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

// triangleBuffer holds three glTF positions followed by three unsigned short indices.
func triangleBuffer() []byte {
	var buf bytes.Buffer
	positions := []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}
	_ = binary.Write(&buf, binary.LittleEndian, positions)
	_ = binary.Write(&buf, binary.LittleEndian, []uint16{0, 1, 2})
	buf.Write([]byte{0, 0})
	return buf.Bytes()
}

// triangleJSON describes one red triangle. An empty uri leaves the buffer to the GLB chunk.
func triangleJSON(uri string, extra string) string {
	bufferURI := ""
	if uri != "" {
		bufferURI = fmt.Sprintf(`"uri": %q,`, uri)
	}
	return fmt.Sprintf(`{
  "asset": {"version": "2.0"},
  "scene": 0,
  "scenes": [{"nodes": [0]}],
  "nodes": [{"mesh": 0}],
  "buffers": [{%s "byteLength": 44}],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 36},
    {"buffer": 0, "byteOffset": 36, "byteLength": 6}
  ],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
    {"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
  ],
  "meshes": [{"name": "tri", "primitives": [{"attributes": {"POSITION": 0}, "indices": 1, "material": 0}]}],
  %s
}`, bufferURI, extra)
}

const redMaterial = `"materials": [{"name": "paint", "pbrMetallicRoughness": {"baseColorFactor": [1, 0, 0, 1]}}]`

func dataURI(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func solidImage(c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func pngBytes(t *testing.T, c color.RGBA) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solidImage(c)))
	return buf.Bytes()
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func glbContainer(jsonText string, bin []byte) []byte {
	jsonChunk := []byte(jsonText)
	for len(jsonChunk)%4 != 0 {
		jsonChunk = append(jsonChunk, ' ')
	}
	for len(bin)%4 != 0 {
		bin = append(bin, 0)
	}

	var buf bytes.Buffer
	total := 12 + 8 + len(jsonChunk) + 8 + len(bin)
	_ = binary.Write(&buf, binary.LittleEndian, gltfGLBHeader{Magic: gltfGLBMagic, Version: gltfGLBVersion, Length: uint32(total)})
	_ = binary.Write(&buf, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(jsonChunk)), ChunkType: gltfGLBChunkJSON})
	buf.Write(jsonChunk)
	_ = binary.Write(&buf, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(bin)), ChunkType: gltfGLBChunkBIN})
	buf.Write(bin)
	return buf.Bytes()
}

func TestLoadModelFromSearchPath(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "models", "tri.gltf"), []byte(triangleJSON(dataURI("application/octet-stream", triangleBuffer()), redMaterial)))

	l := NewLoader(WithRoots(root))
	model, err := l.LoadModel("models/tri.gltf")
	require.NoError(t, err)

	mesh, ok := model.(*assets.MeshModel)
	require.True(t, ok)
	assert.Equal(t, 1, mesh.Frames())
	assert.Equal(t, 1, mesh.Skins())

	r := model.BuildRenderer(0, 0)
	require.NotNil(t, r)
	bounds := r.Bounds()
	assert.True(t, bounds.Min.ApproxEqual(mgl32.Vec3{0, 0, 0}), "min %v", bounds.Min)
	assert.True(t, bounds.Max.ApproxEqual(mgl32.Vec3{1, 0, 1}), "max %v", bounds.Max)

	assert.Nil(t, model.BuildRenderer(1, 0))
	assert.Nil(t, model.BuildRenderer(0, 1))
}

func TestLoadModelReaderGLB(t *testing.T) {
	glb := glbContainer(triangleJSON("", redMaterial), triangleBuffer())

	model, err := NewLoader().LoadModelReader("tri.glb", bytes.NewReader(glb))
	require.NoError(t, err)
	require.NotNil(t, model.BuildRenderer(0, 0))
}

func TestLoadModelErrors(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "broken.gltf"), []byte("{not json"))
	writeFile(t, filepath.Join(root, "empty.gltf"), []byte(`{"asset": {"version": "2.0"}}`))
	l := NewLoader(WithRoots(root))

	_, err := l.LoadModel("missing.gltf")
	assert.ErrorIs(t, err, ErrAssetNotFound)

	_, err = l.LoadModel("model.obj")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = l.LoadModel("broken.gltf")
	assert.Error(t, err)

	_, err = l.LoadModel("empty.gltf")
	assert.ErrorContains(t, err, "no meshes")
}

func TestSkinsFromMaterials(t *testing.T) {
	imageURI := dataURI("image/png", pngBytes(t, color.RGBA{0, 0, 255, 255}))
	extra := `"materials": [
    {"name": "paint", "pbrMetallicRoughness": {"baseColorFactor": [1, 0, 0, 1]}},
    {"pbrMetallicRoughness": {"baseColorTexture": {"index": 0}}}
  ],
  "textures": [{"source": 0}],
  "images": [{"uri": "` + imageURI + `"}]`

	parser := newGLTFParser()
	require.NoError(t, parser.ParseReader(bytes.NewReader([]byte(triangleJSON(dataURI("", triangleBuffer()), extra))), false))

	skins, err := newGLTFMaterialExtractor(parser, "tri").ExtractAllSkins()
	require.NoError(t, err)
	require.Len(t, skins, 2)

	assert.Equal(t, "paint", skins[0].Name)
	assert.Nil(t, skins[0].Texture)
	assert.InDelta(t, 1, skins[0].Color[0], 1e-6)
	assert.InDelta(t, 0, skins[0].Color[1], 1e-6)

	assert.Equal(t, "skin_1", skins[1].Name)
	require.NotNil(t, skins[1].Texture)
	assert.Equal(t, "tri#skin_1", skins[1].Texture.Name())
	assert.InDelta(t, 1, skins[1].Texture.AverageColor()[2], 1e-6)
}

func TestIndicesOutOfRangeAreRejected(t *testing.T) {
	buf := triangleBuffer()
	binary.LittleEndian.PutUint16(buf[40:], 7)

	parser := newGLTFParser()
	require.NoError(t, parser.ParseReader(bytes.NewReader([]byte(triangleJSON(dataURI("", buf), redMaterial))), false))

	_, err := newGLTFMeshExtractor(parser).ExtractAllFrames()
	assert.ErrorContains(t, err, "out of range")
}

func TestDecodeDataURI(t *testing.T) {
	data, mediaType, err := decodeDataURI(dataURI("image/png", []byte("abc")))
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), data)
	assert.Equal(t, "image/png", mediaType)

	_, _, err = decodeDataURI("data:text/plain,abc")
	assert.ErrorIs(t, err, errInvalidDataURI)

	_, _, err = decodeDataURI("file.bin")
	assert.ErrorIs(t, err, errInvalidDataURI)
}

func TestSearchPathPrefersEarlierRoots(t *testing.T) {
	mod, base := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(base, "textures", "stone.png"), []byte("base"))
	writeFile(t, filepath.Join(base, "textures", "wood.png"), []byte("base"))
	writeFile(t, filepath.Join(mod, "textures", "stone.png"), []byte("mod"))

	sp := NewSearchPath(mod, "", base)
	assert.Equal(t, []string{filepath.Clean(mod), filepath.Clean(base)}, sp.Roots())

	p, err := sp.Resolve("textures/stone.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(mod, "textures", "stone.png"), p)

	p, err = sp.Resolve("textures/wood.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "textures", "wood.png"), p)

	abs := filepath.Join(base, "textures", "wood.png")
	p, err = sp.Resolve(abs)
	require.NoError(t, err)
	assert.Equal(t, abs, p)

	_, err = sp.Resolve("textures")
	assert.ErrorIs(t, err, ErrAssetNotFound)
}

func TestLoadTexture(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "textures", "base", "red.png"), pngBytes(t, color.RGBA{255, 0, 0, 255}))

	var bmpData bytes.Buffer
	require.NoError(t, bmp.Encode(&bmpData, solidImage(color.RGBA{0, 255, 0, 255})))
	writeFile(t, filepath.Join(root, "textures", "green.bmp"), bmpData.Bytes())

	l := NewLoader(WithRoots(root))

	red, err := l.LoadTexture("textures/base/red.png")
	require.NoError(t, err)
	assert.Equal(t, "textures/base/red", red.Name())
	assert.Equal(t, float32(2), red.Width())
	assert.InDelta(t, 1, red.AverageColor()[0], 1e-6)

	green, err := l.LoadTexture("textures/green.bmp")
	require.NoError(t, err)
	assert.InDelta(t, 1, green.AverageColor()[1], 1e-6)

	_, err = l.LoadTexture("textures/red.tga")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = l.LoadTexture("textures/blue.png")
	assert.ErrorIs(t, err, ErrAssetNotFound)
}

func TestIsAssetFile(t *testing.T) {
	assert.True(t, isAssetFile("/a/b/model.GLB"))
	assert.True(t, isAssetFile("tex.png"))
	assert.True(t, isAssetFile("model.bin"))
	assert.False(t, isAssetFile("notes.txt"))
	assert.False(t, isAssetFile("textures"))
}

func TestWatcherReportsAssetChanges(t *testing.T) {
	root := t.TempDir()
	w, err := NewWatcher(NewSearchPath(root, filepath.Join(root, "missing")))
	require.NoError(t, err)
	defer w.Close()

	assert.False(t, w.Changed())
	writeFile(t, filepath.Join(root, "stone.png"), []byte("x"))

	assert.Eventually(t, w.Changed, 2*time.Second, 10*time.Millisecond)
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
