package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-map/engine/config"
	"github.com/Carmen-Shannon/oxy-map/engine/document"
	"github.com/Carmen-Shannon/oxy-map/engine/loader"
	"github.com/Carmen-Shannon/oxy-map/engine/renderer"
	"github.com/Carmen-Shannon/oxy-map/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithTickRate sets how often the asset watcher is polled and the tick callback runs.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Second / time.Duration(fps)
	}
}

// WithWindow sets the window the editor draws into and receives input from.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithBackend sets the renderer backend instead of creating a WebGPU backend for the window.
//
// Parameters:
//   - b: the backend, for example a renderer.RecordingBackend for headless use
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithBackend(b renderer.RendererBackend) EngineBuilderOption {
	return func(e *engine) {
		e.backend = b
	}
}

// WithPreferences sets the colors, camera, grid and asset settings of the editor.
//
// Parameters:
//   - prefs: the preferences
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithPreferences(prefs config.Preferences) EngineBuilderOption {
	return func(e *engine) {
		e.prefs = prefs
	}
}

// WithDocument sets the document to edit. By default the engine creates an empty one.
func WithDocument(doc document.Document) EngineBuilderOption {
	return func(e *engine) {
		e.doc = doc
	}
}

// WithDefinitions sets the entity definitions attached to loaded maps and offered for placement.
//
// Parameters:
//   - defs: the definitions keyed by classname
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithDefinitions(defs document.DefinitionSet) EngineBuilderOption {
	return func(e *engine) {
		e.definitions = defs
	}
}

// WithLoader sets the asset loader. By default a loader over the preference search paths is used.
func WithLoader(l loader.Loader) EngineBuilderOption {
	return func(e *engine) {
		e.loader = l
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Second / time.Duration(fps)
	}
}
