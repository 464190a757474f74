package engine

import (
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-map/common"
	"github.com/Carmen-Shannon/oxy-map/engine/config"
	"github.com/Carmen-Shannon/oxy-map/engine/document"
	"github.com/Carmen-Shannon/oxy-map/engine/renderer"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDefinitions = `
definitions:
  - name: light
    type: point
    color: [1, 1, 0, 1]
    bounds: {min: [-8, -8, -8], max: [8, 8, 8]}
  - name: func_door
    type: brush
`

type fixture struct {
	e       *engine
	backend *renderer.RecordingBackend
	light   *document.Entity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	defs, err := document.LoadDefinitions(strings.NewReader(testDefinitions))
	require.NoError(t, err)

	prefs := config.DefaultPreferences()
	prefs.Textured = false
	backend := renderer.NewRecordingBackend()
	e := NewEngine(WithBackend(backend), WithPreferences(prefs), WithDefinitions(defs)).(*engine)

	m := document.NewMap()
	m.Worldspawn().AddBrush(document.NewCuboidBrush(mgl32.Vec3{-64, -64, -16}, mgl32.Vec3{64, 64, 0}, document.NewDummyTexture("base/floor")))
	light := document.NewEntity("light", map[string]string{"origin": "0 0 32"})
	require.NoError(t, m.AddEntity(light))
	e.LoadMap(m)

	return &fixture{e: e, backend: backend, light: light}
}

func (f *fixture) selectLight(t *testing.T) {
	t.Helper()
	require.NoError(t, f.e.Document().Submit(document.SelectObjectsCommand{Entities: []*document.Entity{f.light}, Replace: true}))
}

func TestNewEngineRequiresWindowOrBackend(t *testing.T) {
	assert.Panics(t, func() { NewEngine() })
}

func TestLoadMapAppliesDefinitions(t *testing.T) {
	f := newFixture(t)
	require.NotNil(t, f.light.Definition())
	assert.Equal(t, document.PointEntity, f.light.Definition().Type)
}

func TestRenderFrameDrawsMap(t *testing.T) {
	f := newFixture(t)
	f.e.EnableProfiler()

	require.NoError(t, f.e.RenderFrame())
	assert.Equal(t, 1, f.backend.Frames())
	assert.Positive(t, f.e.Renderer().DrawCount())
	assert.Equal(t, len(f.backend.Draws()), f.e.Renderer().DrawCount())
	assert.Positive(t, f.e.profiler.LastFrame())
	assert.Equal(t, config.DefaultPreferences().BackgroundColor, f.backend.ClearColor())
}

func TestDeleteRemovesSelectedEntities(t *testing.T) {
	f := newFixture(t)

	f.e.keyDown(common.KeyDelete)
	assert.True(t, f.e.Document().Map().Contains(f.light), "nothing selected")

	f.selectLight(t)
	f.e.keyDown(common.KeyDelete)
	assert.False(t, f.e.Document().Map().Contains(f.light))
	assert.Len(t, f.e.Document().Map().Entities(), 1)
}

func TestShortcutsIgnoredWithModifiers(t *testing.T) {
	f := newFixture(t)
	f.selectLight(t)

	f.e.keyDown(common.KeyLeftControl)
	f.e.keyDown(common.KeyDelete)
	assert.True(t, f.e.Document().Map().Contains(f.light))

	f.e.toolBox.KeyUp(common.KeyLeftControl)
	f.e.keyDown(common.KeyDelete)
	assert.False(t, f.e.Document().Map().Contains(f.light))
}

func TestLockAndUnlock(t *testing.T) {
	f := newFixture(t)
	f.selectLight(t)

	f.e.keyDown(common.KeyL)
	assert.True(t, f.light.Locked())
	assert.False(t, f.e.Document().Map().HasSelection())

	f.e.keyDown(common.KeyU)
	assert.False(t, f.light.Locked())
}

func TestToggleTextured(t *testing.T) {
	f := newFixture(t)
	assert.False(t, f.e.RenderContext().Textured)
	f.e.keyDown(common.KeyT)
	assert.True(t, f.e.RenderContext().Textured)
}

func TestReloadAssetsSwapsLoader(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.e.RenderFrame())
	require.True(t, f.e.Renderer().EntityRenderersValid())

	before := f.e.Loader()
	f.e.keyDown(common.KeyF5)
	assert.NotSame(t, before, f.e.Loader())
	assert.Equal(t, before.SearchPath().Roots(), f.e.Loader().SearchPath().Roots())
	assert.False(t, f.e.Renderer().EntityRenderersValid())
}

func TestDropEntity(t *testing.T) {
	f := newFixture(t)
	before := len(f.e.Document().Map().Entities())

	f.e.dropEntity("/defs/func_door.ent", 640, 360)
	assert.Len(t, f.e.Document().Map().Entities(), before)

	f.e.dropEntity("/defs/light.ent", 640, 360)
	entities := f.e.Document().Map().Entities()
	require.Len(t, entities, before+1)
	placed := entities[len(entities)-1]
	assert.Equal(t, "light", placed.Classname())
	assert.True(t, placed.Selected())
}

func TestQuitIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.e.Quit()
	assert.NotPanics(t, f.e.Quit)
}

type trackingBackend struct {
	*renderer.RecordingBackend
	released atomic.Bool
}

func (b *trackingBackend) Release() {
	b.released.Store(true)
	b.RecordingBackend.Release()
}

func TestQuitBeforeRunReleasesImmediately(t *testing.T) {
	backend := &trackingBackend{RecordingBackend: renderer.NewRecordingBackend()}
	e := NewEngine(WithBackend(backend))
	e.Quit()
	assert.True(t, backend.released.Load())
}

func TestRunReleasesAfterTickGoroutineExits(t *testing.T) {
	backend := &trackingBackend{RecordingBackend: renderer.NewRecordingBackend()}
	e := NewEngine(WithBackend(backend)).(*engine)

	// Hold the wait group as a tick that is still reloading assets would.
	e.wg.Add(1)
	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()

	assert.Never(t, backend.released.Load, 50*time.Millisecond, 5*time.Millisecond)
	e.wg.Done()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
	assert.True(t, backend.released.Load())
}
