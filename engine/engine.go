// Package engine runs the map editor: it owns the window, the document, the map renderer and the
// tool box, and routes window input to the tools.
package engine

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-map/common"
	"github.com/Carmen-Shannon/oxy-map/engine/camera"
	"github.com/Carmen-Shannon/oxy-map/engine/config"
	"github.com/Carmen-Shannon/oxy-map/engine/document"
	"github.com/Carmen-Shannon/oxy-map/engine/loader"
	"github.com/Carmen-Shannon/oxy-map/engine/profiler"
	"github.com/Carmen-Shannon/oxy-map/engine/renderer"
	"github.com/Carmen-Shannon/oxy-map/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-map/engine/tool"
	"github.com/Carmen-Shannon/oxy-map/engine/window"
	"github.com/go-gl/mathgl/mgl32"
)

// engine implements the Engine interface.
// The window loop renders on the main thread; a ticker goroutine polls the asset watcher.
type engine struct {
	tickRateChannel chan time.Duration

	running bool
	started bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once
	releaseOnce sync.Once

	window  window.Window
	backend renderer.RendererBackend
	prefs   config.Preferences

	doc         document.Document
	definitions document.DefinitionSet
	loader      loader.Loader
	watcher     *loader.Watcher
	mapRenderer renderer.MapRenderer
	camera      camera.Camera
	chain       *tool.Chain
	toolBox     *tool.ToolBox
	renderCtx   *renderer.RenderContext

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)

	renderFrameLimit time.Duration
	lastRender       time.Time

	mu *sync.Mutex
}

// Engine is the main entry point of the editor.
type Engine interface {
	// Window returns the editor window, or nil for a headless engine.
	Window() window.Window

	// Document returns the document being edited.
	Document() document.Document

	// Renderer returns the map renderer observing the document.
	Renderer() renderer.MapRenderer

	// ToolBox returns the tool box receiving window input.
	ToolBox() *tool.ToolBox

	// Camera returns the editor camera.
	Camera() camera.Camera

	// Loader returns the current asset loader. It is replaced when watched assets change.
	Loader() loader.Loader

	// RenderContext returns the options of the next frame.
	RenderContext() *renderer.RenderContext

	// LoadMap replaces the edited map. Entity definitions are attached before observers are
	// notified.
	//
	// Parameters:
	//   - m: the new map
	LoadMap(m *document.Map)

	// RenderFrame renders one frame of the map and the tool overlays.
	//
	// Returns:
	//   - error: error if the frame could not be drawn
	RenderFrame() error

	// ReloadAssets replaces the loader with a fresh one over the same search path, so every
	// model is loaded again on the next frame.
	ReloadAssets()

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the rate at which the tick callback runs and the asset watcher is polled.
	//
	// Parameters:
	//   - fps: ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick. It runs on the tick
	// goroutine, not the window thread.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run starts the tick goroutine and the window loop. It blocks until the window closes.
	Run()

	// Quit stops the tick goroutine. The watcher and GPU resources are released once the
	// goroutine has exited.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates an editor. Without WithBackend a WebGPU backend is created for the window
// surface, so either a window or a backend is required.
//
// Parameters:
//   - options: functional options such as WithWindow, WithPreferences and WithDefinitions
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		wg:              sync.WaitGroup{},
		prefs:           config.DefaultPreferences(),
		profiler:        profiler.NewProfiler(),
		engineTickRate:  time.Second / 60,
		mu:              &sync.Mutex{},
	}

	for _, opt := range options {
		opt(e)
	}

	if e.backend == nil {
		if e.window == nil {
			panic("engine requires a window or a renderer backend")
		}
		e.backend = gpu.NewBackend(e.window.SurfaceDescriptor(), gpu.WithSampleCount(sampleCount(e.prefs.MSAA)))
	}
	if e.prefs.VSync {
		e.backend.SetPresentMode(renderer.PresentModeVSync)
	} else {
		e.backend.SetPresentMode(renderer.PresentModeUncapped)
	}

	if e.doc == nil {
		e.doc = document.NewDocument()
	}
	if e.loader == nil {
		e.loader = loader.NewLoader(loader.WithRoots(e.prefs.SearchPaths...))
	}

	width, height := 1280, 720
	if e.window != nil {
		width, height = e.window.Width(), e.window.Height()
	}
	e.backend.ConfigureSurface(width, height)
	e.camera = camera.NewCamera(
		camera.WithFov(mgl32.DegToRad(e.prefs.CameraFov)),
		camera.WithNear(e.prefs.CameraNear),
		camera.WithFar(e.prefs.CameraFar),
		camera.WithViewport(width, height),
		camera.WithController(camera.NewOrbitController(
			camera.WithMouseSensitivity(e.prefs.CameraOrbitSpeed),
			camera.WithPanSpeed(e.prefs.CameraPanSpeed),
			camera.WithZoomSpeed(e.prefs.CameraZoomSpeed),
		)),
	)

	e.mapRenderer = renderer.NewMapRenderer(e.doc, e.backend,
		renderer.WithPreferences(e.prefs),
		renderer.WithModelLoader(e.loader),
	)
	e.doc.Subscribe(e.mapRenderer)
	e.renderCtx = renderer.NewRenderContext(e.camera, e.prefs)
	e.renderCtx.CullModels = true

	e.chain = tool.NewChain(
		tool.NewCameraTool(),
		tool.NewMoveObjectsTool(e.doc, e.prefs.GridSize, e.prefs.SelectedEdgeColor),
		tool.NewCreateEntityTool(e.doc, e.definitions, e.prefs.GridSize),
		tool.NewSelectionTool(e.doc),
	)
	e.toolBox = tool.NewToolBox(e.chain, e.camera, e.doc)

	if e.prefs.WatchAssets {
		w, err := loader.NewWatcher(e.loader.SearchPath())
		if err != nil {
			common.Logger().Warn("asset watching disabled", "error", err)
		} else {
			e.watcher = w
		}
	}

	if e.window != nil {
		e.bindWindow()
	}
	return e
}

// bindWindow routes window events to the tool box and the render loop.
func (e *engine) bindWindow() {
	e.window.SetResizeCallback(e.resize)
	e.window.SetUpdateCallback(e.update)
	e.window.SetMouseDownCallback(func(button common.MouseButton, x, y int32) {
		e.toolBox.MouseMove(float32(x), float32(y))
		e.toolBox.MouseDown(button)
	})
	e.window.SetMouseUpCallback(func(button common.MouseButton, x, y int32) {
		e.toolBox.MouseMove(float32(x), float32(y))
		e.toolBox.MouseUp(button)
	})
	e.window.SetMouseMoveCallback(func(x, y int32) {
		e.toolBox.MouseMove(float32(x), float32(y))
	})
	e.window.SetScrollCallback(e.toolBox.Scroll)
	e.window.SetKeyDownCallback(func(keyCode uint32) {
		e.keyDown(keyCode)
	})
	e.window.SetKeyUpCallback(func(keyCode uint32) {
		e.toolBox.KeyUp(keyCode)
	})
	e.window.SetDropCallback(func(paths []string, x, y int32) {
		for _, p := range paths {
			e.dropEntity(p, float32(x), float32(y))
		}
	})
}

func (e *engine) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	e.backend.ConfigureSurface(width, height)
	e.camera.SetViewport(width, height)
}

// update runs once per window loop iteration.
func (e *engine) update() {
	if e.renderFrameLimit > 0 && time.Since(e.lastRender) < e.renderFrameLimit {
		return
	}
	e.lastRender = time.Now()
	if err := e.RenderFrame(); err != nil {
		common.Logger().Error("frame failed", "error", err)
	}
}

func (e *engine) RenderFrame() error {
	start := time.Now()
	e.camera.Update()

	ctx := e.RenderContext()
	e.toolBox.SetRenderOptions(ctx)
	e.toolBox.Render(ctx, e.mapRenderer.Sink())
	if err := e.mapRenderer.Render(ctx); err != nil {
		return err
	}

	if e.profilingEnabled {
		e.profiler.RecordFrame(time.Since(start), e.mapRenderer.DrawCount())
		e.profiler.Tick()
	}
	return nil
}

// keyDown gives the tool box the first look at a key and handles editor shortcuts it leaves.
func (e *engine) keyDown(keyCode uint32) {
	if e.toolBox.KeyDown(keyCode) {
		return
	}
	if e.toolBox.InputState().Modifiers != common.ModNone {
		return
	}

	m := e.doc.Map()
	var cmd document.Command
	switch keyCode {
	case common.KeyDelete, common.KeyBackspace:
		var entities []*document.Entity
		for _, ent := range m.SelectedEntities() {
			if !ent.Worldspawn() {
				entities = append(entities, ent)
			}
		}
		if len(entities) > 0 {
			cmd = document.RemoveEntitiesCommand{Entities: entities}
		}
	case common.KeyL:
		if m.HasSelection() {
			cmd = document.ChangeEditStateCommand{
				Entities: m.SelectedEntities(),
				Brushes:  m.SelectedBrushes(),
				State:    document.EditStateLocked,
			}
		}
	case common.KeyU:
		cmd = document.UnlockAllCommand{}
	case common.KeyT:
		e.mu.Lock()
		e.renderCtx.Textured = !e.renderCtx.Textured
		e.mu.Unlock()
	case common.KeyF5:
		e.ReloadAssets()
	}
	if cmd == nil {
		return
	}
	if err := e.doc.Submit(cmd); err != nil {
		common.Logger().Warn("command failed", "command", cmd.Name(), "error", err)
	}
}

// dropEntity places an entity named after a dropped file, such as light.ent.
func (e *engine) dropEntity(path string, x, y float32) {
	base := filepath.Base(path)
	classname := strings.TrimSuffix(base, filepath.Ext(base))
	if !e.toolBox.DragEnter(classname, x, y) {
		common.Logger().Debug("dropped file is not an entity", "path", path)
		return
	}
	e.toolBox.DragDrop(x, y)
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Document() document.Document {
	return e.doc
}

func (e *engine) Renderer() renderer.MapRenderer {
	return e.mapRenderer
}

func (e *engine) ToolBox() *tool.ToolBox {
	return e.toolBox
}

func (e *engine) Camera() camera.Camera {
	return e.camera
}

func (e *engine) Loader() loader.Loader {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loader
}

func (e *engine) RenderContext() *renderer.RenderContext {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.renderCtx
}

func (e *engine) LoadMap(m *document.Map) {
	if e.definitions != nil {
		e.definitions.Apply(m)
	}
	e.doc.Load(m)
	common.Logger().Info("map loaded", "entities", len(m.Entities()), "brushes", len(m.Brushes()))
}

func (e *engine) ReloadAssets() {
	e.mu.Lock()
	e.loader = loader.NewLoader(loader.WithSearchPath(e.loader.SearchPath()))
	l := e.loader
	e.mu.Unlock()
	e.mapRenderer.AssetSourceChanged(l)
	common.Logger().Info("asset source changed", "roots", l.SearchPath().Roots())
}

func (e *engine) Run() {
	e.running = true
	e.started = true
	e.handle()
	if e.window != nil {
		e.window.ProcessMessages()
	}
	e.stop()
	e.wg.Wait()
	e.release()
}

// Quit signals the tick goroutine to stop. An engine that was never run releases its resources
// immediately; a running one releases them in Run once the tick goroutine has exited.
// Safe to call multiple times.
func (e *engine) Quit() {
	e.stop()
	if !e.started {
		e.release()
	}
}

func (e *engine) stop() {
	e.quitOnce.Do(func() {
		e.running = false
		close(e.quitChannel)
	})
}

// release closes the watcher and frees the renderer and backend. It must not run while the
// tick goroutine can still reload assets.
func (e *engine) release() {
	e.releaseOnce.Do(func() {
		if e.watcher != nil {
			if err := e.watcher.Close(); err != nil {
				common.Logger().Warn("failed to close asset watcher", "error", err)
			}
		}
		e.mapRenderer.Release()
		e.backend.Release()
	})
}

// handle launches the tick goroutine, tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(1)
	go e.handleEngine()
}

// handleEngine runs the fixed-rate tick loop in its own goroutine.
// Polls the asset watcher, fires the tick callback and listens for rate changes via
// tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if e.watcher != nil && e.watcher.Changed() {
				e.ReloadAssets()
			}
			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Second / time.Duration(fps)

	if e.running {
		// Non-blocking send; replace a pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		e.engineTickRate = newRate
	}
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Second / time.Duration(fps)
}

func sampleCount(msaa int) renderer.MSAASampleCount {
	if msaa >= 4 {
		return renderer.MSAA4x
	}
	return renderer.MSAAOff
}
