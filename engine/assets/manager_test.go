package assets

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-map/engine/document"
	"github.com/Carmen-Shannon/oxy-map/engine/renderer/vbo"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errMissing = errors.New("file not found")

type countingLoader struct {
	models map[string]Model
	calls  map[string]int
}

func newCountingLoader() *countingLoader {
	triangle := Mesh{Positions: []mgl32.Vec3{{0, 0, 0}, {8, 0, 0}, {0, 8, 0}}}
	return &countingLoader{
		models: map[string]Model{
			"models/box.glb": NewMeshModel([]Mesh{triangle, {}}, nil),
		},
		calls: make(map[string]int),
	}
}

func (l *countingLoader) LoadModel(path string) (Model, error) {
	l.calls[path]++
	if m, ok := l.models[path]; ok {
		return m, nil
	}
	return nil, errMissing
}

func TestModelNegativeCache(t *testing.T) {
	loader := newCountingLoader()
	m := NewManager(loader, vbo.NewMemoryUploader())

	_, err := m.Model("models/missing.glb")
	assert.ErrorIs(t, err, ErrModelUnavailable)
	assert.ErrorIs(t, err, errMissing, "the first failure carries the loader error")

	_, err = m.Model("models/missing.glb")
	assert.ErrorIs(t, err, ErrModelUnavailable)
	assert.Equal(t, 1, loader.calls["models/missing.glb"], "failed paths are not retried")

	_, err = m.Renderer(ModelSpecification{Path: "models/missing.glb"})
	assert.ErrorIs(t, err, ErrModelUnavailable)
	assert.Equal(t, 1, loader.calls["models/missing.glb"])

	_, err = m.Model("")
	assert.ErrorIs(t, err, ErrEmptyPath)

	stats := m.Stats()
	assert.Equal(t, 1, stats.LoadCalls)
	assert.Equal(t, 1, stats.FailedModels)
}

func TestModelIsMemoized(t *testing.T) {
	loader := newCountingLoader()
	m := NewManager(loader, vbo.NewMemoryUploader())

	a, err := m.Model("models/box.glb")
	require.NoError(t, err)
	b, err := m.Model("models/box.glb")
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, loader.calls["models/box.glb"])
}

func TestRendererNegativeCacheBySpec(t *testing.T) {
	m := NewManager(newCountingLoader(), vbo.NewMemoryUploader())

	r, err := m.Renderer(ModelSpecification{Path: "models/box.glb"})
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.True(t, m.NeedsPrepare())

	// Frame 1 is empty and skin 3 does not exist.
	_, err = m.Renderer(ModelSpecification{Path: "models/box.glb", Frame: 1})
	assert.ErrorIs(t, err, ErrRendererUnavailable)
	_, err = m.Renderer(ModelSpecification{Path: "models/box.glb", Frame: 1})
	assert.ErrorIs(t, err, ErrRendererUnavailable)
	_, err = m.Renderer(ModelSpecification{Path: "models/box.glb", Skin: 3})
	assert.ErrorIs(t, err, ErrRendererUnavailable)

	again, err := m.Renderer(ModelSpecification{Path: "models/box.glb"})
	require.NoError(t, err)
	assert.Same(t, r, again)

	stats := m.Stats()
	assert.Equal(t, 3, stats.BuildCalls, "each distinct spec is built once")
	assert.Equal(t, 2, stats.FailedRenderers)
	assert.Equal(t, 1, stats.Renderers)
}

func TestPrepareAllBatchesUploads(t *testing.T) {
	up := vbo.NewMemoryUploader()
	loader := newCountingLoader()
	loader.models["models/other.glb"] = NewMeshModel([]Mesh{{
		Positions: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}},
		Indices:   []uint32{0, 1, 2, 2, 1, 3},
	}}, nil)
	m := NewManager(loader, up)

	a, err := m.Renderer(ModelSpecification{Path: "models/box.glb"})
	require.NoError(t, err)
	b, err := m.Renderer(ModelSpecification{Path: "models/other.glb"})
	require.NoError(t, err)
	assert.False(t, a.Prepared())

	require.NoError(t, m.PrepareAll())
	assert.False(t, m.NeedsPrepare())
	assert.True(t, a.Prepared())
	assert.True(t, b.Prepared())
	assert.Equal(t, 1, up.Creates())
	assert.Equal(t, 1, up.Writes(), "one mapping uploads every renderer")

	require.Len(t, b.Draws(), 1)
	assert.Equal(t, 6, b.Draws()[0].VertexCount)
	assert.Equal(t, mgl32.Vec3{1, 1, 0}, b.Bounds().Max)

	writes := up.Writes()
	require.NoError(t, m.PrepareAll())
	assert.Equal(t, writes, up.Writes(), "nothing pending, nothing uploaded")
}

func TestResetAndClear(t *testing.T) {
	loader := newCountingLoader()
	m := NewManager(loader, vbo.NewMemoryUploader())
	_, _ = m.Model("models/missing.glb")
	_, err := m.Renderer(ModelSpecification{Path: "models/box.glb"})
	require.NoError(t, err)

	m.Reset(loader)
	assert.Equal(t, 1, m.Stats().Models, "same source keeps the cache")

	other := newCountingLoader()
	m.Reset(other)
	stats := m.Stats()
	assert.Zero(t, stats.Models)
	assert.Zero(t, stats.Renderers)
	assert.Zero(t, stats.FailedModels)
	assert.False(t, m.NeedsPrepare())

	_, _ = m.Model("models/missing.glb")
	assert.Equal(t, 1, other.calls["models/missing.glb"], "a new source retries failed paths")

	m.Clear()
	assert.Zero(t, m.Stats().FailedModels)
}

func TestEntityRendererOverrides(t *testing.T) {
	m := NewManager(newCountingLoader(), vbo.NewMemoryUploader())

	plain := document.NewEntity("info_null", nil)
	_, err := m.EntityRenderer(plain)
	assert.ErrorIs(t, err, ErrNoModel)

	def := &document.EntityDefinition{Name: "item", Model: &document.ModelDefinition{Path: "models/box.glb"}}
	e := document.NewEntity("item", map[string]string{"frame": "1"})
	e.SetDefinition(def)
	_, err = m.EntityRenderer(e)
	assert.ErrorIs(t, err, ErrRendererUnavailable, "the frame property selects the empty frame")

	e.SetProperty("frame", "0")
	r, err := m.EntityRenderer(e)
	require.NoError(t, err)
	assert.NotNil(t, r)
}

func TestNoLoaderIsUnavailable(t *testing.T) {
	m := NewManager(nil, vbo.NewMemoryUploader())
	_, err := m.Model("models/box.glb")
	assert.ErrorIs(t, err, ErrModelUnavailable)
}
