package assets

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-map/common"
	"github.com/Carmen-Shannon/oxy-map/engine/document"
	"github.com/Carmen-Shannon/oxy-map/engine/renderer/vbo"
)

var (
	// ErrEmptyPath is returned for a model request without a path.
	ErrEmptyPath = errors.New("empty model path")

	// ErrModelUnavailable is returned for a model that failed to load. Later requests for the
	// same path return it without retrying.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrRendererUnavailable is returned for a specification whose renderer could not be built.
	// Later requests for the same specification return it without retrying.
	ErrRendererUnavailable = errors.New("model renderer unavailable")

	// ErrNoModel is returned for entities whose definition names no model.
	ErrNoModel = errors.New("entity has no model")
)

// Manager memoizes models and renderers, including failed lookups.
//
// Lookups mutate the cache: a call to Model or Renderer may load, build and record results,
// successful or not. Renderers built since the last PrepareAll are uploaded together by it.
type Manager interface {
	// Model returns the model at path, loading it on first use.
	//
	// Parameters:
	//   - path: the model path
	//
	// Returns:
	//   - Model: the model, or nil
	//   - error: ErrEmptyPath, or an error wrapping ErrModelUnavailable; on the first failure it
	//     also wraps the loader error
	Model(path string) (Model, error)

	// Renderer returns the renderer for a specification, building it on first use.
	// Model errors are returned unchanged.
	//
	// Parameters:
	//   - spec: the model path, skin and frame
	//
	// Returns:
	//   - ModelRenderer: the renderer, or nil
	//   - error: a Model error or ErrRendererUnavailable
	Renderer(spec ModelSpecification) (ModelRenderer, error)

	// EntityRenderer returns the renderer for an entity's definition model. The entity's skin
	// and frame properties override the definition.
	//
	// Returns:
	//   - ModelRenderer: the renderer, or nil
	//   - error: ErrNoModel when the entity has no model, or a Renderer error
	EntityRenderer(e *document.Entity) (ModelRenderer, error)

	// Reset adopts a new loader and clears every cache. Passing the current loader is a no-op.
	Reset(loader ModelLoader)

	// Clear empties every cache, positive and negative.
	Clear()

	// PrepareAll uploads every renderer built since the last call within one buffer mapping.
	PrepareAll() error

	// NeedsPrepare reports whether renderers are waiting for PrepareAll.
	NeedsPrepare() bool

	// Buffer returns the vertex buffer holding prepared model vertices.
	Buffer() vbo.Vbo

	// Stats returns the cache counters.
	Stats() Stats

	// Release frees the model vertex buffer.
	Release()
}

// Stats are the counters of a Manager.
type Stats struct {
	LoadCalls         int
	BuildCalls        int
	Models            int
	Renderers         int
	FailedModels      int
	FailedRenderers   int
	PreparedRenderers int
}

var _ Manager = &manager{}

type manager struct {
	loader         ModelLoader
	buffer         vbo.Vbo
	bufferCapacity int

	models          map[string]Model
	renderers       map[ModelSpecification]ModelRenderer
	failedModels    map[string]struct{}
	failedRenderers map[ModelSpecification]struct{}
	needsPrepare    bool

	loadCalls  int
	buildCalls int
	prepared   int

	mu *sync.Mutex
}

// NewManager creates an empty manager.
//
// Parameters:
//   - loader: the model source, may be nil until Reset
//   - uploader: the GPU buffer backend for model vertices
//   - options: functional options such as WithModelBufferCapacity
//
// Returns:
//   - Manager: the manager
func NewManager(loader ModelLoader, uploader vbo.BufferUploader, options ...ManagerBuilderOption) Manager {
	m := &manager{
		loader:          loader,
		models:          make(map[string]Model),
		renderers:       make(map[ModelSpecification]ModelRenderer),
		failedModels:    make(map[string]struct{}),
		failedRenderers: make(map[ModelSpecification]struct{}),
		mu:              &sync.Mutex{},
	}
	for _, opt := range options {
		opt(m)
	}
	m.buffer = vbo.NewVbo(uploader, vbo.WithLabel("Model Vertex Buffer"), vbo.WithInitialCapacity(m.bufferCapacity))
	return m
}

func (m *manager) Model(path string) (Model, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.model(path)
}

func (m *manager) model(path string) (Model, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	if model, ok := m.models[path]; ok {
		return model, nil
	}
	if _, failed := m.failedModels[path]; failed {
		return nil, fmt.Errorf("%w: %s", ErrModelUnavailable, path)
	}
	if m.loader == nil {
		m.failedModels[path] = struct{}{}
		common.Logger().Debug("model unavailable, no asset source", "path", path)
		return nil, fmt.Errorf("%w: %s: no asset source", ErrModelUnavailable, path)
	}

	m.loadCalls++
	model, err := m.loader.LoadModel(path)
	if err == nil && model == nil {
		err = errors.New("loader returned no model")
	}
	if err != nil {
		m.failedModels[path] = struct{}{}
		common.Logger().Debug("model unavailable", "path", path, "error", err)
		return nil, fmt.Errorf("%w: %s: %w", ErrModelUnavailable, path, err)
	}
	m.models[path] = model
	return model, nil
}

func (m *manager) Renderer(spec ModelSpecification) (ModelRenderer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.renderer(spec)
}

func (m *manager) renderer(spec ModelSpecification) (ModelRenderer, error) {
	model, err := m.model(spec.Path)
	if err != nil {
		return nil, err
	}
	if r, ok := m.renderers[spec]; ok {
		return r, nil
	}
	if _, failed := m.failedRenderers[spec]; failed {
		return nil, fmt.Errorf("%w: %s", ErrRendererUnavailable, spec)
	}

	m.buildCalls++
	r := model.BuildRenderer(spec.Skin, spec.Frame)
	if r == nil {
		m.failedRenderers[spec] = struct{}{}
		common.Logger().Debug("model renderer unavailable", "spec", spec.String())
		return nil, fmt.Errorf("%w: %s", ErrRendererUnavailable, spec)
	}
	m.renderers[spec] = r
	m.needsPrepare = true
	return r, nil
}

func (m *manager) EntityRenderer(e *document.Entity) (ModelRenderer, error) {
	def := e.Definition()
	if def == nil || def.Model == nil || def.Model.Path == "" {
		return nil, ErrNoModel
	}
	spec := ModelSpecification{Path: def.Model.Path, Skin: def.Model.Skin, Frame: def.Model.Frame}
	if skin, ok := e.IntProperty(document.PropertySkin); ok {
		spec.Skin = skin
	}
	if frame, ok := e.IntProperty(document.PropertyFrame); ok {
		spec.Frame = frame
	}
	return m.Renderer(spec)
}

func (m *manager) Reset(loader ModelLoader) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if loader == m.loader {
		return
	}
	m.clear()
	m.loader = loader
}

func (m *manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clear()
}

func (m *manager) clear() {
	clear(m.models)
	clear(m.renderers)
	clear(m.failedModels)
	clear(m.failedRenderers)
	m.needsPrepare = false
	m.buffer.Release()
}

func (m *manager) PrepareAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.needsPrepare {
		return nil
	}

	specs := make([]ModelSpecification, 0, len(m.renderers))
	for spec, r := range m.renderers {
		if !r.Prepared() {
			specs = append(specs, spec)
		}
	}
	slices.SortFunc(specs, func(a, b ModelSpecification) int {
		return cmp.Or(cmp.Compare(a.Path, b.Path), cmp.Compare(a.Skin, b.Skin), cmp.Compare(a.Frame, b.Frame))
	})

	err := m.buffer.Mapped(func() error {
		var errs []error
		for _, spec := range specs {
			if err := m.renderers[spec].Prepare(m.buffer); err != nil {
				errs = append(errs, fmt.Errorf("failed to prepare %s: %w", spec, err))
				continue
			}
			m.prepared++
		}
		return errors.Join(errs...)
	})
	m.needsPrepare = false
	return err
}

func (m *manager) NeedsPrepare() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.needsPrepare
}

func (m *manager) Buffer() vbo.Vbo { return m.buffer }

func (m *manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{
		LoadCalls:         m.loadCalls,
		BuildCalls:        m.buildCalls,
		Models:            len(m.models),
		Renderers:         len(m.renderers),
		FailedModels:      len(m.failedModels),
		FailedRenderers:   len(m.failedRenderers),
		PreparedRenderers: m.prepared,
	}
}

func (m *manager) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buffer.Release()
}
