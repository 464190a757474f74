package geometry

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-map/common"
	"github.com/Carmen-Shannon/oxy-map/engine/config"
	"github.com/Carmen-Shannon/oxy-map/engine/document"
	"github.com/Carmen-Shannon/oxy-map/engine/renderer/vbo"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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

func twoSidedTriangle() *document.Brush {
	q0 := mgl32.Vec3{64, 0, 0}
	q1 := mgl32.Vec3{80, 0, 0}
	q2 := mgl32.Vec3{64, 16, 0}
	return document.NewBrush([][]mgl32.Vec3{{q0, q1, q2}, {q0, q2, q1}}, nil)
}

type scene struct {
	m       *document.Map
	cube    *document.Brush
	tetra   *document.Brush
	locked  *document.Entity
	light   *document.Entity
	texture *document.Texture
	wallDef *document.EntityDefinition
}

// newScene builds a map with a selected cube, a tetrahedron with one selected face, a locked
// brush entity with two faces and an unselected point entity.
func newScene(t *testing.T) *scene {
	t.Helper()
	s := &scene{m: document.NewMap()}

	s.cube = document.NewCuboidBrush(mgl32.Vec3{-32, -32, -32}, mgl32.Vec3{-16, -16, -16}, nil)
	s.tetra = tetrahedron()
	s.texture = document.NewTexture("brick", common.TextureStagingData{Pixels: []byte{255, 0, 0, 255}, Width: 1, Height: 1})
	s.tetra.Faces()[1].SetTexture(s.texture)
	s.m.Worldspawn().AddBrush(s.cube)
	s.m.Worldspawn().AddBrush(s.tetra)

	s.wallDef = &document.EntityDefinition{Name: "func_wall", Type: document.BrushEntity, Color: common.Color{0, 1, 0, 1}}
	s.locked = document.NewEntity("func_wall", nil)
	s.locked.SetDefinition(s.wallDef)
	s.locked.AddBrush(twoSidedTriangle())
	require.NoError(t, s.m.AddEntity(s.locked))

	s.light = document.NewEntity("light", map[string]string{"origin": "0 0 64"})
	require.NoError(t, s.m.AddEntity(s.light))

	s.m.SetBrushState([]*document.Brush{s.cube}, document.EditStateSelected)
	s.m.SelectFaces(s.tetra.Faces()[:1], false)
	s.m.LockEntities([]*document.Entity{s.locked})
	return s
}

func totalVertices(infos []FaceRenderInfo) int {
	n := 0
	for _, i := range infos {
		n += i.VertexCount
	}
	return n
}

func TestValidateScenario(t *testing.T) {
	s := newScene(t)
	up := vbo.NewMemoryUploader()
	c := NewCache(up)
	prefs := config.DefaultPreferences()

	rebuilt, err := c.Validate(s.m, document.DefaultFilter{}, prefs)
	require.NoError(t, err)
	assert.Equal(t, AllAspects, rebuilt)

	// Selected edges: every edge of the cube plus the edges of the one selected tetrahedron face.
	assert.Equal(t, 2*12+2*3, c.EdgeRenderInfo(StateSelected).VertexCount)
	assert.Equal(t, 2*6, c.EdgeRenderInfo(StateNormal).VertexCount)
	assert.Equal(t, 2*3, c.EdgeRenderInfo(StateLocked).VertexCount)

	// The three unselected tetrahedron faces stay in the normal bucket, grouped by texture.
	normal := c.FaceRenderInfos(StateNormal)
	require.Len(t, normal, 2)
	assert.Same(t, s.texture, normal[0].Texture)
	assert.Equal(t, 3, normal[0].VertexCount)
	assert.Same(t, c.DummyTexture(), normal[1].Texture)
	assert.Equal(t, 6, normal[1].VertexCount)
	assert.Equal(t, 3, normal[1].FirstVertex)

	selected := c.FaceRenderInfos(StateSelected)
	require.Len(t, selected, 1)
	assert.Equal(t, 6*6+3, selected[0].VertexCount)
	assert.Equal(t, 2*3, totalVertices(c.FaceRenderInfos(StateLocked)))

	assert.Equal(t, BoundsVerticesPerEntity, c.EntityBoundsRenderInfo(StateNormal).VertexCount)
	assert.Equal(t, BoundsVerticesPerEntity, c.EntityBoundsRenderInfo(StateLocked).VertexCount)
	assert.True(t, c.EntityBoundsRenderInfo(StateSelected).Empty(), "the world entity has no bounds")

	// Locked brush entity edges use the definition color.
	info := c.EdgeRenderInfo(StateLocked)
	buf := up.Buffer(c.EdgeBuffer().Handle())
	green := s.wallDef.Color.RGBA8()
	assert.Equal(t, green[:], buf[info.BufferOffset:info.BufferOffset+4])

	// World edges use the preference color.
	info = c.EdgeRenderInfo(StateNormal)
	world := prefs.EdgeColor.RGBA8()
	assert.Equal(t, world[:], buf[info.BufferOffset:info.BufferOffset+4])
}

func TestValidateIsIdempotent(t *testing.T) {
	s := newScene(t)
	up := vbo.NewMemoryUploader()
	c := NewCache(up)

	_, err := c.Validate(s.m, document.DefaultFilter{}, config.DefaultPreferences())
	require.NoError(t, err)
	writes := up.Writes()
	stats := c.Stats()

	rebuilt, err := c.Validate(s.m, document.DefaultFilter{}, config.DefaultPreferences())
	require.NoError(t, err)
	assert.True(t, rebuilt.Empty())
	assert.Equal(t, writes, up.Writes())
	assert.Equal(t, stats, c.Stats())
	for a := Aspect(0); a < aspectCount; a++ {
		assert.True(t, c.Valid(a), a.String())
	}
}

func TestOnlyInvalidPartitionsAreRebuilt(t *testing.T) {
	s := newScene(t)
	c := NewCache(vbo.NewMemoryUploader())
	_, err := c.Validate(s.m, document.DefaultFilter{}, config.DefaultPreferences())
	require.NoError(t, err)
	normalBefore := c.FaceRenderInfos(StateNormal)
	normalEdges := c.EdgeRenderInfo(StateNormal)

	// Deselect the cube without telling the cache about the normal aspect.
	s.m.SetBrushState([]*document.Brush{s.cube}, document.EditStateDefault)
	c.Invalidate(AspectSelectedGeometry)
	assert.False(t, c.Valid(AspectSelectedGeometry))

	rebuilt, err := c.Validate(s.m, document.DefaultFilter{}, config.DefaultPreferences())
	require.NoError(t, err)
	assert.Equal(t, NewAspectSet(AspectSelectedGeometry), rebuilt)
	assert.Equal(t, normalBefore, c.FaceRenderInfos(StateNormal))
	assert.Equal(t, normalEdges, c.EdgeRenderInfo(StateNormal))
	assert.Equal(t, 2*3, c.EdgeRenderInfo(StateSelected).VertexCount)
	assert.Equal(t, 3, totalVertices(c.FaceRenderInfos(StateSelected)))
}

func TestBrushRoutingPrecedence(t *testing.T) {
	m := document.NewMap()
	e := document.NewEntity("func_door", nil)
	b := tetrahedron()
	e.AddBrush(b)
	require.NoError(t, m.AddEntity(e))

	assert.Equal(t, StateNormal, brushClass(e, b))

	m.SetEntityState([]*document.Entity{e}, document.EditStateLocked)
	assert.Equal(t, StateLocked, brushClass(e, b))

	m.SetBrushState([]*document.Brush{b}, document.EditStateSelected)
	assert.Equal(t, StateSelected, brushClass(e, b), "selected precedes locked")
	assert.Equal(t, StateSelected, entityClass(e), "a selected brush selects its entity's bounds")

	m.SetBrushState([]*document.Brush{b}, document.EditStateLocked)
	m.SetEntityState([]*document.Entity{e}, document.EditStateSelected)
	assert.Equal(t, StateSelected, brushClass(e, b))
	assert.Equal(t, StateSelected, faceClass(e, b, b.Faces()[0]))
}

func TestEveryFaceSelectedContributesFaceEdges(t *testing.T) {
	s := newScene(t)
	s.m.SelectFaces(s.tetra.Faces(), false)
	c := NewCache(vbo.NewMemoryUploader())

	_, err := c.Validate(s.m, document.DefaultFilter{}, config.DefaultPreferences())
	require.NoError(t, err)
	assert.Equal(t, 2*12+4*2*3, c.EdgeRenderInfo(StateSelected).VertexCount)
	assert.Equal(t, 2*6, c.EdgeRenderInfo(StateNormal).VertexCount, "the brush outline stays normal")
	assert.Empty(t, c.FaceRenderInfos(StateNormal))
	assert.Equal(t, []StateClass{StateNormal, StateSelected}, BrushClasses(s.tetra))
}

func TestStateClassOf(t *testing.T) {
	for state, want := range map[document.EditState]StateClass{
		document.EditStateDefault:  StateNormal,
		document.EditStateSelected: StateSelected,
		document.EditStateLocked:   StateLocked,
	} {
		got, ok := StateClassOf(state)
		assert.True(t, ok, state.String())
		assert.Equal(t, want, got, state.String())
	}
	_, ok := StateClassOf(document.EditStateHidden)
	assert.False(t, ok)
}

func TestFanTriangulation(t *testing.T) {
	pentagon := []mgl32.Vec3{{0, 0, 0}, {2, 0, 0}, {3, 2, 0}, {1, 3, 0}, {-1, 2, 0}}
	b := document.NewBrush([][]mgl32.Vec3{pentagon}, nil)
	var bucket faceBucket
	bucket.add(nil, b.Faces()[0])
	assert.Equal(t, 3*5-6, bucket.vertexCount)

	data := stageFaceGroup(bucket.groups[0])
	require.Len(t, data, 9*faceVertexFloats)

	positionAt := func(i int) mgl32.Vec3 {
		o := i*faceVertexFloats + 4
		return mgl32.Vec3{data[o], data[o+1], data[o+2]}
	}
	expected := []int{0, 1, 2, 0, 2, 3, 0, 3, 4}
	for i, vi := range expected {
		assert.Equal(t, pentagon[vi], positionAt(i), "vertex %d", i)
	}
}

func TestDegenerateFacePanics(t *testing.T) {
	m := document.NewMap()
	m.Worldspawn().AddBrush(document.NewBrush([][]mgl32.Vec3{{{0, 0, 0}, {1, 0, 0}}}, nil))
	c := NewCache(vbo.NewMemoryUploader())
	assert.Panics(t, func() {
		_, _ = c.Validate(m, document.DefaultFilter{}, config.DefaultPreferences())
	})
}

func TestEmptyMapSkipsAllocation(t *testing.T) {
	c := NewCache(vbo.NewMemoryUploader())
	rebuilt, err := c.Validate(document.NewMap(), document.DefaultFilter{}, config.DefaultPreferences())
	require.NoError(t, err)
	assert.Equal(t, AllAspects, rebuilt)
	assert.Equal(t, 0, c.FaceBuffer().Blocks())
	assert.Equal(t, 0, c.EdgeBuffer().Blocks())
	assert.Equal(t, 0, c.EntityBoundsBuffer().Blocks())
	assert.Empty(t, c.FaceRenderInfos(StateNormal))
	assert.True(t, c.EdgeRenderInfo(StateNormal).Empty())
}

func TestFilterExcludesHidden(t *testing.T) {
	s := newScene(t)
	c := NewCache(vbo.NewMemoryUploader())
	hideTetra := document.FilterFuncs{Brush: func(b *document.Brush) bool { return b != s.tetra }}
	_, err := c.Validate(s.m, hideTetra, config.DefaultPreferences())
	require.NoError(t, err)
	assert.Empty(t, c.FaceRenderInfos(StateNormal))
	assert.Equal(t, 2*12, c.EdgeRenderInfo(StateSelected).VertexCount)
	assert.Equal(t, BoundsVerticesPerEntity, c.EntityBoundsRenderInfo(StateNormal).VertexCount)
	assert.True(t, c.EntityBoundsRenderInfo(StateSelected).Empty(), "the world entity has no bounds")
}

func TestClearResetsPartitions(t *testing.T) {
	s := newScene(t)
	c := NewCache(vbo.NewMemoryUploader())
	_, err := c.Validate(s.m, document.DefaultFilter{}, config.DefaultPreferences())
	require.NoError(t, err)

	c.Clear()
	assert.Equal(t, AllAspects, c.Invalid())
	assert.Equal(t, 0, c.FaceBuffer().Blocks())
	assert.Equal(t, 0, c.EdgeBuffer().Blocks())
	assert.Equal(t, 0, c.EntityBoundsBuffer().Blocks())
	assert.Empty(t, c.FaceRenderInfos(StateSelected))
}

func TestParallelStagingMatchesSerial(t *testing.T) {
	s := newScene(t)
	serialUp := vbo.NewMemoryUploader()
	serial := NewCache(serialUp)
	parallelUp := vbo.NewMemoryUploader()
	parallel := NewCache(parallelUp, WithStagingWorkers(4))

	_, err := serial.Validate(s.m, document.DefaultFilter{}, config.DefaultPreferences())
	require.NoError(t, err)
	_, err = parallel.Validate(s.m, document.DefaultFilter{}, config.DefaultPreferences())
	require.NoError(t, err)

	assert.Equal(t, serial.FaceRenderInfos(StateNormal), parallel.FaceRenderInfos(StateNormal))
	assert.Equal(t, serialUp.Buffer(serial.FaceBuffer().Handle()), parallelUp.Buffer(parallel.FaceBuffer().Handle()))
}
