package renderer

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-map/common"
	"github.com/Carmen-Shannon/oxy-map/engine/assets"
	"github.com/Carmen-Shannon/oxy-map/engine/config"
	"github.com/Carmen-Shannon/oxy-map/engine/document"
	"github.com/Carmen-Shannon/oxy-map/engine/renderer/geometry"
	"github.com/Carmen-Shannon/oxy-map/engine/renderer/pipeline"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const torchPath = "models/torch.glb"

type staticCamera struct {
	eye mgl32.Vec3
	vp  mgl32.Mat4
}

func (c staticCamera) ViewProjection() mgl32.Mat4 {
	if c.vp == (mgl32.Mat4{}) {
		return mgl32.Ident4()
	}
	return c.vp
}

func (c staticCamera) Position() mgl32.Vec3 { return c.eye }
func (c staticCamera) Right() mgl32.Vec3    { return mgl32.Vec3{1, 0, 0} }
func (c staticCamera) Up() mgl32.Vec3       { return mgl32.Vec3{0, 0, 1} }
func (c staticCamera) PixelSize() float32   { return 0 }

type stubLoader struct {
	models map[string]assets.Model
	calls  int
}

func (l *stubLoader) LoadModel(path string) (assets.Model, error) {
	l.calls++
	if m, ok := l.models[path]; ok {
		return m, nil
	}
	return nil, errors.New("not found")
}

func torchLoader() *stubLoader {
	tri := assets.Mesh{Positions: []mgl32.Vec3{{-4, 0, 0}, {4, 0, 0}, {0, 0, 16}}}
	return &stubLoader{models: map[string]assets.Model{torchPath: assets.NewMeshModel([]assets.Mesh{tri}, nil)}}
}

func tetrahedron() *document.Brush {
	p0 := mgl32.Vec3{0, 0, 0}
	p1 := mgl32.Vec3{16, 0, 0}
	p2 := mgl32.Vec3{0, 16, 0}
	p3 := mgl32.Vec3{0, 0, 16}
	return document.NewBrush([][]mgl32.Vec3{
		{p0, p2, p1},
		{p0, p1, p3},
		{p0, p3, p2},
		{p1, p2, p3},
	}, nil)
}

type fixture struct {
	doc     document.Document
	r       MapRenderer
	backend *RecordingBackend
	ctx     *RenderContext
	loader  *stubLoader

	cube  *document.Brush
	tetra *document.Brush
	wall  *document.Entity
	light *document.Entity
	brick *document.Texture
}

// newFixture loads a map with two world brushes, a brush entity and a point entity with a model
// into a document observed by a recording renderer.
func newFixture(t *testing.T, loader *stubLoader) *fixture {
	t.Helper()
	f := &fixture{
		doc:     document.NewDocument(),
		backend: NewRecordingBackend(),
		loader:  loader,
	}
	m := document.NewMap()

	f.cube = document.NewCuboidBrush(mgl32.Vec3{-32, -32, -32}, mgl32.Vec3{-16, -16, -16}, nil)
	f.tetra = tetrahedron()
	f.brick = document.NewTexture("brick", common.TextureStagingData{Pixels: []byte{255, 0, 0, 255}, Width: 1, Height: 1})
	f.tetra.Faces()[1].SetTexture(f.brick)
	m.Worldspawn().AddBrush(f.cube)
	m.Worldspawn().AddBrush(f.tetra)

	f.wall = document.NewEntity("func_wall", nil)
	f.wall.SetDefinition(&document.EntityDefinition{Name: "func_wall", Type: document.BrushEntity, Color: common.Color{0, 1, 0, 1}})
	f.wall.AddBrush(document.NewCuboidBrush(mgl32.Vec3{64, 0, 0}, mgl32.Vec3{80, 16, 16}, nil))
	require.NoError(t, m.AddEntity(f.wall))

	f.light = document.NewEntity("light", map[string]string{"origin": "0 0 64"})
	f.light.SetDefinition(&document.EntityDefinition{
		Name:   "light",
		Type:   document.PointEntity,
		Color:  common.Color{1, 1, 0, 1},
		Bounds: document.BBox{Min: mgl32.Vec3{-8, -8, -8}, Max: mgl32.Vec3{8, 8, 8}},
		Model:  &document.ModelDefinition{Path: torchPath},
	})
	require.NoError(t, m.AddEntity(f.light))

	f.r = NewMapRenderer(f.doc, f.backend, WithModelLoader(loader))
	f.doc.Subscribe(f.r)
	f.doc.Load(m)
	f.ctx = NewRenderContext(staticCamera{eye: mgl32.Vec3{0, -200, 64}}, config.DefaultPreferences())
	return f
}

func (f *fixture) submit(t *testing.T, cmd document.Command) {
	t.Helper()
	require.NoError(t, f.doc.Submit(cmd))
}

func (f *fixture) render(t *testing.T) []DrawCall {
	t.Helper()
	require.NoError(t, f.r.Render(f.ctx))
	return f.backend.Draws()
}

func TestRenderDrawOrder(t *testing.T) {
	f := newFixture(t, torchLoader())
	f.submit(t, document.SelectObjectsCommand{Brushes: []*document.Brush{f.cube}})
	f.submit(t, document.SelectFacesCommand{Faces: f.tetra.Faces()[:1]})
	f.submit(t, document.ChangeEditStateCommand{Entities: []*document.Entity{f.wall}, State: document.EditStateLocked})

	draws := f.render(t)
	prefs := config.DefaultPreferences()
	faceBuf := f.r.Geometry().FaceBuffer().Handle()
	edgeBuf := f.r.Geometry().EdgeBuffer().Handle()
	boundsBuf := f.r.Geometry().EntityBoundsBuffer().Handle()

	want := []struct {
		pipeline string
		buffer   uint64
		mode     ColorMode
		tint     TintMode
		color    common.Color
		count    int
	}{
		{pipeline.KeyFaces, uint64(faceBuf), ColorModeTexture, TintNone, common.Color{}, 3},
		{pipeline.KeyFaces, uint64(faceBuf), ColorModeUniform, TintNone, prefs.FaceColor, 6},
		{pipeline.KeyFaces, uint64(faceBuf), ColorModeUniform, TintModulate, prefs.FaceColor, 6*6 + 3},
		{pipeline.KeyFaces, uint64(faceBuf), ColorModeUniform, TintReplaceAlpha, prefs.FaceColor, 6 * 6},
		{pipeline.KeyEdges, uint64(edgeBuf), ColorModeVertex, TintNone, common.Color{}, 2 * 6},
		{pipeline.KeyEdges, uint64(edgeBuf), ColorModeUniform, TintNone, prefs.LockedEdgeColor, 2 * 12},
		{pipeline.KeyEdgesOccluded, uint64(edgeBuf), ColorModeUniform, TintNone, prefs.OccludedSelectedEdgeColor, 2*12 + 2*3},
		{pipeline.KeyEdges, uint64(edgeBuf), ColorModeUniform, TintNone, prefs.SelectedEdgeColor, 2*12 + 2*3},
		{pipeline.KeyEdges, uint64(boundsBuf), ColorModeVertex, TintNone, common.Color{}, geometry.BoundsVerticesPerEntity},
		{pipeline.KeyEdges, uint64(boundsBuf), ColorModeUniform, TintNone, prefs.LockedEntityBoundsColor, geometry.BoundsVerticesPerEntity},
	}
	require.GreaterOrEqual(t, len(draws), len(want)+3)
	for i, w := range want {
		d := draws[i]
		assert.Equal(t, w.pipeline, d.Pipeline, "draw %d", i)
		assert.Equal(t, w.buffer, uint64(d.Buffer), "draw %d", i)
		assert.Equal(t, w.mode, d.Uniforms.ColorMode, "draw %d", i)
		assert.Equal(t, w.tint, d.Uniforms.TintMode, "draw %d", i)
		assert.Equal(t, w.count, d.VertexCount, "draw %d", i)
		if w.mode == ColorModeUniform {
			assert.Equal(t, w.color, d.Uniforms.Color, "draw %d", i)
		}
	}
	assert.Equal(t, "brick", draws[0].Texture)
	assert.Equal(t, prefs.SelectedFaceColor, draws[2].Uniforms.Tint)
	assert.Equal(t, prefs.LockedFaceColor, draws[3].Uniforms.Tint)
	assert.Equal(t, EdgeOffsetDefault, draws[4].Uniforms.DepthOffset)
	assert.Equal(t, EdgeOffsetSelected, draws[7].Uniforms.DepthOffset)

	model := draws[len(want)]
	assert.Equal(t, pipeline.KeyModels, model.Pipeline)
	assert.Equal(t, 3, model.VertexCount)
	assert.Equal(t, mgl32.Translate3D(0, 0, 64), model.Uniforms.Transform)

	labels := draws[len(want)+1:]
	require.Len(t, labels, 2, "light and func_wall labels; the world has none")
	assert.Equal(t, pipeline.KeyLabels, labels[0].Pipeline)
	assert.Equal(t, prefs.InfoOverlayColor, labels[0].Uniforms.Color)
	assert.Equal(t, prefs.LockedInfoOverlayColor, labels[1].Uniforms.Color)
	assert.NotNil(t, f.backend.Texture(labels[0].Texture))

	assert.Equal(t, 1, f.backend.Frames())
	assert.Equal(t, prefs.BackgroundColor, f.backend.ClearColor())
}

func TestRenderIsIdempotent(t *testing.T) {
	f := newFixture(t, torchLoader())
	first := f.render(t)
	stats := f.r.Geometry().Stats()
	writes := f.backend.Writes()

	second := f.render(t)
	assert.Equal(t, first, second)
	assert.Equal(t, stats, f.r.Geometry().Stats(), "nothing is rebuilt")
	assert.Greater(t, f.backend.Writes(), writes, "only labels are re-uploaded")
	assert.Equal(t, 1, f.loader.calls)
}

func TestFlatModeUsesAverageColor(t *testing.T) {
	f := newFixture(t, torchLoader())
	f.ctx.Textured = false
	draws := f.render(t)

	var brick []DrawCall
	for _, d := range draws {
		if d.Pipeline != pipeline.KeyFaces {
			continue
		}
		assert.Equal(t, ColorModeUniform, d.Uniforms.ColorMode)
		assert.Empty(t, d.Texture)
		if d.VertexCount == 3 {
			brick = append(brick, d)
		}
	}
	require.Len(t, brick, 1, "the brick face is the only single triangle group")
	assert.Equal(t, f.brick.AverageColor(), brick[0].Uniforms.Color)
	assert.False(t, f.backend.HasTexture("brick"), "flat mode does not upload textures")
}

func TestChangeEditStateInvalidation(t *testing.T) {
	f := newFixture(t, torchLoader())
	m := f.doc.Map()
	require.NoError(t, f.r.Validate(f.ctx))

	assertInvalid := func(t *testing.T, want ...geometry.Aspect) {
		t.Helper()
		invalid := geometry.NewAspectSet(want...)
		for _, a := range geometry.AllAspects.Aspects() {
			assert.Equal(t, !invalid.Has(a), f.r.Valid(a), a.String())
		}
	}
	assertInvalid(t)

	f.r.ChangeEditState(m.SetEntityState([]*document.Entity{f.light}, document.EditStateSelected))
	assertInvalid(t, geometry.AspectEntityBounds, geometry.AspectSelectedEntityBounds)
	require.NoError(t, f.r.Validate(f.ctx))

	f.r.ChangeEditState(m.SetEntityState([]*document.Entity{f.wall}, document.EditStateLocked))
	assertInvalid(t, geometry.AspectEntityBounds, geometry.AspectLockedEntityBounds,
		geometry.AspectGeometry, geometry.AspectLockedGeometry)
	require.NoError(t, f.r.Validate(f.ctx))

	// Selecting the cube also makes the world entity partially selected, moving its bounds.
	f.r.ChangeEditState(m.SetBrushState([]*document.Brush{f.cube}, document.EditStateSelected))
	assertInvalid(t, geometry.AspectGeometry, geometry.AspectSelectedGeometry,
		geometry.AspectEntityBounds, geometry.AspectSelectedEntityBounds)
	require.NoError(t, f.r.Validate(f.ctx))

	f.r.ChangeEditState(m.SelectFaces(f.tetra.Faces()[:1], false))
	assertInvalid(t, geometry.AspectGeometry, geometry.AspectSelectedGeometry, geometry.AspectLockedGeometry)
	require.NoError(t, f.r.Validate(f.ctx))

	f.r.ChangeEditState(document.EditStateChangeSet{})
	assertInvalid(t)
}

func TestSelectingBrushEntityRebuildsItsGeometry(t *testing.T) {
	f := newFixture(t, torchLoader())
	f.render(t)
	assert.Zero(t, f.r.Geometry().EdgeRenderInfo(geometry.StateSelected).VertexCount)

	f.submit(t, document.SelectObjectsCommand{Entities: []*document.Entity{f.wall}})
	assert.False(t, f.r.Valid(geometry.AspectGeometry))
	assert.False(t, f.r.Valid(geometry.AspectSelectedGeometry))

	f.render(t)
	assert.Equal(t, 2*12, f.r.Geometry().EdgeRenderInfo(geometry.StateSelected).VertexCount)
	assert.Equal(t, 6*6, totalFaceVertices(f.r.Geometry().FaceRenderInfos(geometry.StateSelected)))

	f.submit(t, document.ChangeEditStateCommand{Entities: []*document.Entity{f.wall}, State: document.EditStateLocked})
	assert.False(t, f.r.Valid(geometry.AspectSelectedGeometry))
	assert.False(t, f.r.Valid(geometry.AspectLockedGeometry))

	f.render(t)
	assert.Zero(t, f.r.Geometry().EdgeRenderInfo(geometry.StateSelected).VertexCount)
	assert.Equal(t, 2*12, f.r.Geometry().EdgeRenderInfo(geometry.StateLocked).VertexCount)
}

func totalFaceVertices(infos []geometry.FaceRenderInfo) int {
	n := 0
	for _, i := range infos {
		n += i.VertexCount
	}
	return n
}

func TestLabelsFollowEditState(t *testing.T) {
	f := newFixture(t, torchLoader())
	normal := f.r.Labels(geometry.StateNormal)
	selected := f.r.Labels(geometry.StateSelected)
	locked := f.r.Labels(geometry.StateLocked)
	assert.Equal(t, 2, normal.Len())

	f.submit(t, document.SelectObjectsCommand{Entities: []*document.Entity{f.light}})
	assert.True(t, selected.Has(f.light))
	assert.False(t, normal.Has(f.light))
	assert.Equal(t, 1, f.r.EntityRendererCount(geometry.StateSelected), "the model follows the label")

	f.submit(t, document.DeselectAllCommand{})
	assert.True(t, normal.Has(f.light))
	assert.Zero(t, selected.Len())

	f.submit(t, document.ChangeEditStateCommand{Entities: []*document.Entity{f.wall}, State: document.EditStateLocked})
	assert.True(t, locked.Has(f.wall))

	f.submit(t, document.UnlockAllCommand{})
	assert.True(t, normal.Has(f.wall))
	assert.Zero(t, locked.Len())

	// Selecting a brush of an entity selects the entity's label.
	f.submit(t, document.SelectObjectsCommand{Brushes: f.wall.Brushes()})
	assert.True(t, selected.Has(f.wall))
}

type snapshot struct {
	valid        []bool
	renderersOK  bool
	renderers    [stateClassCount]int
	labels       [stateClassCount]int
	faces        [stateClassCount]int
	edges        [stateClassCount]int
	entityBounds [stateClassCount]int
	models       int
	modelRenders int
	failed       int
}

func takeSnapshot(r MapRenderer) snapshot {
	var s snapshot
	for _, a := range geometry.AllAspects.Aspects() {
		s.valid = append(s.valid, r.Valid(a))
	}
	s.renderersOK = r.EntityRenderersValid()
	for c := geometry.StateNormal; c <= geometry.StateLocked; c++ {
		s.renderers[c] = r.EntityRendererCount(c)
		s.labels[c] = r.Labels(c).Len()
		s.faces[c] = len(r.Geometry().FaceRenderInfos(c))
		s.edges[c] = r.Geometry().EdgeRenderInfo(c).VertexCount
		s.entityBounds[c] = r.Geometry().EntityBoundsRenderInfo(c).VertexCount
	}
	stats := r.Assets().Stats()
	s.models = stats.Models
	s.modelRenders = stats.Renderers
	s.failed = stats.FailedModels + stats.FailedRenderers
	return s
}

func TestLoadThenClearEqualsFresh(t *testing.T) {
	fresh := NewMapRenderer(document.NewDocument(), NewRecordingBackend())
	want := takeSnapshot(fresh)

	f := newFixture(t, torchLoader())
	f.render(t)
	assert.NotEqual(t, want, takeSnapshot(f.r))

	f.doc.Clear()
	assert.Equal(t, want, takeSnapshot(f.r))
}

func TestReloadEntityModelsAfterAssetSourceChange(t *testing.T) {
	empty := &stubLoader{}
	f := newFixture(t, empty)

	f.render(t)
	assert.True(t, f.r.EntityRenderersValid())
	assert.Zero(t, f.r.EntityRendererCount(geometry.StateNormal), "a missing model is not fatal")
	calls := empty.calls

	f.render(t)
	assert.Equal(t, calls, empty.calls, "failed models are not reloaded every frame")

	f.r.AssetSourceChanged(torchLoader())
	assert.False(t, f.r.EntityRenderersValid())

	draws := f.render(t)
	assert.Equal(t, 1, f.r.EntityRendererCount(geometry.StateNormal))
	var models int
	for _, d := range draws {
		if d.Pipeline == pipeline.KeyModels {
			models++
		}
	}
	assert.Equal(t, 1, models)
}

func TestRemoveEntities(t *testing.T) {
	f := newFixture(t, torchLoader())
	f.render(t)

	f.submit(t, document.RemoveEntitiesCommand{Entities: []*document.Entity{f.light}})
	assert.False(t, f.r.Valid(geometry.AspectEntityBounds))
	assert.False(t, f.r.Labels(geometry.StateNormal).Has(f.light))
	assert.Zero(t, f.r.EntityRendererCount(geometry.StateNormal))

	f.render(t)
	assert.True(t, f.r.EntityRenderersValid())
	assert.Zero(t, f.r.EntityRendererCount(geometry.StateNormal))
	assert.Equal(t, geometry.BoundsVerticesPerEntity, f.r.Geometry().EntityBoundsRenderInfo(geometry.StateNormal).VertexCount)
}

func TestAddEntitiesRegistersLabelAndModel(t *testing.T) {
	f := newFixture(t, torchLoader())
	f.render(t)

	torch := document.NewEntity("light_torch", map[string]string{"origin": "128 0 0"})
	torch.SetDefinition(&document.EntityDefinition{Name: "light_torch", Type: document.PointEntity, Model: &document.ModelDefinition{Path: torchPath}})
	f.submit(t, document.AddEntitiesCommand{Entities: []*document.Entity{torch}})

	assert.True(t, f.r.Labels(geometry.StateNormal).Has(torch))
	assert.False(t, f.r.Valid(geometry.AspectEntityBounds))
	assert.False(t, f.r.EntityRenderersValid())

	f.render(t)
	assert.Equal(t, 2, f.r.EntityRendererCount(geometry.StateNormal))
	assert.Equal(t, 1, f.loader.calls, "both entities share the memoized model")
}

func TestObjectsChangedInvalidatesMovedGeometry(t *testing.T) {
	f := newFixture(t, torchLoader())
	f.render(t)

	f.submit(t, document.TranslateObjectsCommand{Brushes: []*document.Brush{f.tetra}, Delta: mgl32.Vec3{16, 0, 0}})
	assert.False(t, f.r.Valid(geometry.AspectGeometry))
	assert.True(t, f.r.Valid(geometry.AspectLockedGeometry))

	f.render(t)
	assert.True(t, f.r.Valid(geometry.AspectGeometry))
}

func TestOverlayLinesDrawOnce(t *testing.T) {
	f := newFixture(t, torchLoader())
	red := common.Color{1, 0, 0, 1}
	f.r.Sink().AddLines(red, mgl32.Vec3{}, mgl32.Vec3{16, 0, 0}, mgl32.Vec3{32, 0, 0})

	draws := f.render(t)
	last := draws[len(draws)-1]
	assert.Equal(t, pipeline.KeyEdgesOccluded, last.Pipeline)
	assert.Equal(t, ColorModeVertex, last.Uniforms.ColorMode)
	assert.Equal(t, 2, last.VertexCount, "the odd trailing point is ignored")

	draws = f.render(t)
	assert.Equal(t, pipeline.KeyLabels, draws[len(draws)-1].Pipeline)
}

func TestRenderReportsFrameErrors(t *testing.T) {
	f := newFixture(t, torchLoader())
	require.NoError(t, f.backend.BeginFrame(common.Color{}, mgl32.Ident4()))
	assert.ErrorIs(t, f.r.Render(f.ctx), errFrameInProcess)
}

func countPipeline(draws []DrawCall, key string) int {
	n := 0
	for _, d := range draws {
		if d.Pipeline == key {
			n++
		}
	}
	return n
}

func TestCullModelsOutsideFrustum(t *testing.T) {
	f := newFixture(t, torchLoader())
	f.ctx.CullModels = true

	assert.Zero(t, countPipeline(f.render(t), pipeline.KeyModels), "the torch at z 64 is outside the unit clip volume")

	f.ctx.Camera = staticCamera{vp: mgl32.Scale3D(1.0/256, 1.0/256, 1.0/256)}
	assert.Equal(t, 1, countPipeline(f.render(t), pipeline.KeyModels))

	f.ctx.CullModels = false
	f.ctx.Camera = staticCamera{}
	assert.Equal(t, 1, countPipeline(f.render(t), pipeline.KeyModels))
}
