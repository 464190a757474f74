package renderer

import (
	"github.com/Carmen-Shannon/oxy-map/engine/assets"
	"github.com/Carmen-Shannon/oxy-map/engine/config"
	"github.com/Carmen-Shannon/oxy-map/engine/renderer/geometry"
)

// MapRendererBuilderOption is a functional option applied to a map renderer during construction via NewMapRenderer.
type MapRendererBuilderOption func(*mapRenderer)

// WithPreferences sets the colors, fade distances and staging workers the renderer uses.
//
// Parameters:
//   - prefs: the preferences
//
// Returns:
//   - MapRendererBuilderOption: a function that sets the preferences
func WithPreferences(prefs config.Preferences) MapRendererBuilderOption {
	return func(r *mapRenderer) {
		r.prefs = prefs
	}
}

// WithAssetManager injects the model cache. By default the renderer creates its own.
//
// Parameters:
//   - m: the asset manager
//
// Returns:
//   - MapRendererBuilderOption: a function that sets the asset manager
func WithAssetManager(m assets.Manager) MapRendererBuilderOption {
	return func(r *mapRenderer) {
		r.assets = m
	}
}

// WithModelLoader sets the loader of the renderer's own asset manager. It has no effect when
// WithAssetManager is used.
//
// Parameters:
//   - l: the model loader
//
// Returns:
//   - MapRendererBuilderOption: a function that sets the model loader
func WithModelLoader(l assets.ModelLoader) MapRendererBuilderOption {
	return func(r *mapRenderer) {
		r.loader = l
	}
}

// WithGeometryCache injects the brush and entity bounds cache.
func WithGeometryCache(c geometry.Cache) MapRendererBuilderOption {
	return func(r *mapRenderer) {
		r.geometry = c
	}
}

// WithStagingWorkers overrides the number of face staging workers from the preferences.
//
// Parameters:
//   - n: the worker count, zero stages serially
//
// Returns:
//   - MapRendererBuilderOption: a function that sets the worker count
func WithStagingWorkers(n int) MapRendererBuilderOption {
	return func(r *mapRenderer) {
		r.stagingWorkers = n
	}
}
