package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-map/common"
	"github.com/Carmen-Shannon/oxy-map/engine/assets"
	"github.com/Carmen-Shannon/oxy-map/engine/config"
	"github.com/Carmen-Shannon/oxy-map/engine/document"
	"github.com/Carmen-Shannon/oxy-map/engine/renderer/geometry"
	"github.com/Carmen-Shannon/oxy-map/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-map/engine/text"
	"github.com/go-gl/mathgl/mgl32"
)

const stateClassCount = 3

// labelHeight is the gap between the top of an entity's bounds and its classname label.
const labelHeight = 2

// MapSource gives access to the map being rendered. A document.Document is a MapSource.
type MapSource interface {
	Map() *document.Map
}

// MapRenderer draws a map and keeps its cached geometry, entity models and labels in step with
// document changes. It observes a document.Document.
type MapRenderer interface {
	document.Observer

	// Validate brings every stale aspect up to date: entity renderers first, then brush geometry
	// and entity bounds, then pending model uploads. It is the only operation that marks
	// aspects valid.
	//
	// Parameters:
	//   - ctx: supplies the filter deciding what is cached
	//
	// Returns:
	//   - error: error if an upload failed; the affected aspects stay stale
	Validate(ctx *RenderContext) error

	// Render validates and draws one frame: faces, edges, entity bounds, entity models,
	// classname labels and finally tool overlays.
	//
	// Parameters:
	//   - ctx: the camera and per-frame options
	//
	// Returns:
	//   - error: error if validation, frame setup or a draw failed
	Render(ctx *RenderContext) error

	// ChangeEditState invalidates the aspects touched by a change set and moves the labels and
	// model renderers of entities whose display class changed.
	ChangeEditState(changes document.EditStateChangeSet)

	// AddEntities registers models and labels of new entities and invalidates their geometry.
	// Model errors are not fatal; the entity is drawn without a model.
	AddEntities(entities []*document.Entity)

	// RemoveEntities drops models and labels of removed entities and invalidates their geometry.
	RemoveEntities(entities []*document.Entity)

	// LoadMap registers every entity of the current map and invalidates everything.
	LoadMap()

	// ClearMap drops every cached model, label and partition. The renderer is left in the same
	// state as a newly created one.
	ClearMap()

	// ReloadEntityModels rebuilds the model renderer maps from the live map.
	ReloadEntityModels()

	// AssetSourceChanged adopts a new model loader and schedules a model reload.
	AssetSourceChanged(loader assets.ModelLoader)

	// Valid reports whether a geometry aspect is up to date.
	Valid(a geometry.Aspect) bool

	// EntityRenderersValid reports whether the model renderer maps are up to date.
	EntityRenderersValid() bool

	// EntityRendererCount returns the number of entities with a model in a state class.
	EntityRendererCount(c geometry.StateClass) int

	// Labels returns the classname label renderer of a state class.
	Labels(c geometry.StateClass) text.Renderer[*document.Entity]

	// Geometry returns the brush and entity bounds cache.
	Geometry() geometry.Cache

	// Assets returns the model cache.
	Assets() assets.Manager

	// Sink returns the collector for tool feedback lines drawn by the next frame.
	Sink() RenderSink

	// DrawCount returns the number of draw calls issued by the last frame.
	DrawCount() int

	// Release frees every GPU buffer owned by the renderer.
	Release()
}

var _ MapRenderer = &mapRenderer{}

type mapRenderer struct {
	source  MapSource
	backend RendererBackend
	prefs   config.Preferences

	geometry geometry.Cache
	assets   assets.Manager
	overlay  *lineOverlay

	entityRenderers      [stateClassCount]map[*document.Entity]assets.ModelRenderer
	entityRenderersValid bool
	entityClasses        map[*document.Entity]geometry.StateClass
	labels               [stateClassCount]text.Renderer[*document.Entity]

	pipelinesRegistered bool
	failedTextures      map[string]struct{}

	stagingWorkers int
	loader         assets.ModelLoader
	drawCount      int

	mu *sync.Mutex
}

// NewMapRenderer creates a renderer with every aspect stale. Geometry, model and label buffers are
// created through the backend unless replaced by options.
//
// Parameters:
//   - source: the map to draw, usually the document
//   - backend: the GPU backend
//   - options: functional options such as WithPreferences and WithAssetManager
//
// Returns:
//   - MapRenderer: the renderer
func NewMapRenderer(source MapSource, backend RendererBackend, options ...MapRendererBuilderOption) MapRenderer {
	r := &mapRenderer{
		source:         source,
		backend:        backend,
		prefs:          config.DefaultPreferences(),
		entityClasses:  make(map[*document.Entity]geometry.StateClass),
		failedTextures: make(map[string]struct{}),
		stagingWorkers: -1,
		mu:             &sync.Mutex{},
	}
	for _, opt := range options {
		opt(r)
	}

	// Initialize owned collaborators after options so preferences and injected caches apply.
	if r.stagingWorkers < 0 {
		r.stagingWorkers = r.prefs.StagingWorkers
	}
	if r.geometry == nil {
		r.geometry = geometry.NewCache(backend, geometry.WithStagingWorkers(r.stagingWorkers))
	}
	if r.assets == nil {
		r.assets = assets.NewManager(r.loader, backend)
	}
	r.overlay = newLineOverlay(backend)

	for c := range r.entityRenderers {
		r.entityRenderers[c] = make(map[*document.Entity]assets.ModelRenderer)
	}
	r.labels[geometry.StateNormal] = text.NewRenderer[*document.Entity](backend,
		text.WithName("Classname"),
		text.WithFadeDistance(r.prefs.InfoOverlayFadeDistance),
		text.WithFadeWidth(r.prefs.InfoOverlayFadeWidth),
	)
	r.labels[geometry.StateSelected] = text.NewRenderer[*document.Entity](backend,
		text.WithName("Selected Classname"),
		text.WithFadeDistance(r.prefs.SelectedInfoOverlayFadeDistance),
		text.WithFadeWidth(r.prefs.InfoOverlayFadeWidth),
	)
	r.labels[geometry.StateLocked] = text.NewRenderer[*document.Entity](backend,
		text.WithName("Locked Classname"),
		text.WithFadeDistance(r.prefs.InfoOverlayFadeDistance),
		text.WithFadeWidth(r.prefs.InfoOverlayFadeWidth),
	)
	return r
}

func (r *mapRenderer) Validate(ctx *RenderContext) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.validate(ctx)
}

func (r *mapRenderer) validate(ctx *RenderContext) error {
	if !r.entityRenderersValid {
		r.reloadEntityModels()
	}
	if _, err := r.geometry.Validate(r.source.Map(), ctx.filter(), r.prefs); err != nil {
		return fmt.Errorf("failed to validate geometry: %w", err)
	}
	if r.assets.NeedsPrepare() {
		if err := r.assets.PrepareAll(); err != nil {
			return fmt.Errorf("failed to prepare entity models: %w", err)
		}
	}
	return nil
}

func (r *mapRenderer) Render(ctx *RenderContext) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.registerPipelines(); err != nil {
		return err
	}
	if err := r.validate(ctx); err != nil {
		return err
	}
	if err := r.backend.BeginFrame(r.prefs.BackgroundColor, ctx.Camera.ViewProjection()); err != nil {
		return fmt.Errorf("failed to begin frame: %w", err)
	}

	err := r.renderFrame(ctx)
	if endErr := r.backend.EndFrame(); endErr != nil {
		err = errors.Join(err, fmt.Errorf("failed to end frame: %w", endErr))
	}
	if err != nil {
		return err
	}
	r.backend.Present()
	return nil
}

func (r *mapRenderer) registerPipelines() error {
	if r.pipelinesRegistered {
		return nil
	}
	for _, p := range pipeline.EditorPipelines() {
		if err := r.backend.RegisterPipeline(p); err != nil {
			return fmt.Errorf("failed to register pipeline %s: %w", p.PipelineKey(), err)
		}
	}
	r.pipelinesRegistered = true
	return nil
}

// renderFrame issues the draws of one frame in their fixed order. Later layers are drawn over
// earlier ones.
func (r *mapRenderer) renderFrame(ctx *RenderContext) error {
	var errs []error
	r.drawCount = 0
	draw := func(call DrawCall) {
		if call.VertexCount == 0 {
			return
		}
		if call.Uniforms.Transform == (mgl32.Mat4{}) {
			call.Uniforms.Transform = mgl32.Ident4()
		}
		if err := r.backend.Draw(call); err != nil {
			errs = append(errs, err)
			return
		}
		r.drawCount++
	}

	r.renderFaces(ctx, draw)
	r.renderEdges(draw)
	r.renderEntityBounds(draw)
	if ctx.ShowEntityModels {
		r.renderEntityModels(ctx, draw)
	}
	if ctx.ShowLabels {
		if err := r.renderLabels(ctx, draw); err != nil {
			errs = append(errs, err)
		}
	}

	h, offset, count, err := r.overlay.flush()
	if err != nil {
		errs = append(errs, err)
	}
	draw(DrawCall{
		Pipeline:     pipeline.KeyEdgesOccluded,
		Buffer:       h,
		BufferOffset: offset,
		VertexCount:  count,
		Uniforms:     DrawUniforms{ColorMode: ColorModeVertex},
	})
	return errors.Join(errs...)
}

func (r *mapRenderer) renderFaces(ctx *RenderContext, draw func(DrawCall)) {
	passes := []struct {
		class    geometry.StateClass
		tint     common.Color
		tintMode TintMode
	}{
		{geometry.StateNormal, common.Color{}, TintNone},
		{geometry.StateSelected, r.prefs.SelectedFaceColor, TintModulate},
		{geometry.StateLocked, r.prefs.LockedFaceColor, TintReplaceAlpha},
	}

	buffer := r.geometry.FaceBuffer().Handle()
	for _, pass := range passes {
		for _, info := range r.geometry.FaceRenderInfos(pass.class) {
			call := DrawCall{
				Pipeline:     pipeline.KeyFaces,
				Buffer:       buffer,
				BufferOffset: info.BufferOffset,
				FirstVertex:  info.FirstVertex,
				VertexCount:  info.VertexCount,
				Uniforms: DrawUniforms{
					Tint:     pass.tint,
					TintMode: pass.tintMode,
				},
			}
			r.applySurface(ctx, &call, info.Texture, r.prefs.FaceColor)
			draw(call)
		}
	}
}

// applySurface sets the base color of a textured surface. Dummy textures and textures that
// failed to upload draw flat with fallback; flat mode uses the texture's average color.
func (r *mapRenderer) applySurface(ctx *RenderContext, call *DrawCall, t *document.Texture, fallback common.Color) {
	call.Uniforms.ColorMode = ColorModeUniform
	switch {
	case t == nil || t.Dummy():
		call.Uniforms.Color = fallback
	case ctx.Textured && r.ensureTexture(t):
		call.Uniforms.ColorMode = ColorModeTexture
		call.Texture = t.Name()
	default:
		call.Uniforms.Color = t.AverageColor()
	}
}

// ensureTexture uploads t on first use. Failures are logged once and remembered.
func (r *mapRenderer) ensureTexture(t *document.Texture) bool {
	name := t.Name()
	if r.backend.HasTexture(name) {
		return true
	}
	if _, failed := r.failedTextures[name]; failed {
		return false
	}
	if err := r.backend.InitTexture(t); err != nil {
		r.failedTextures[name] = struct{}{}
		common.Logger().Warn("texture upload failed", "texture", name, "error", err)
		return false
	}
	return true
}

func (r *mapRenderer) renderEdges(draw func(DrawCall)) {
	buffer := r.geometry.EdgeBuffer().Handle()
	line := func(key string, info geometry.EdgeRenderInfo, u DrawUniforms) {
		draw(DrawCall{Pipeline: key, Buffer: buffer, BufferOffset: info.BufferOffset, VertexCount: info.VertexCount, Uniforms: u})
	}

	normal := r.geometry.EdgeRenderInfo(geometry.StateNormal)
	locked := r.geometry.EdgeRenderInfo(geometry.StateLocked)
	selected := r.geometry.EdgeRenderInfo(geometry.StateSelected)

	line(pipeline.KeyEdges, normal, DrawUniforms{ColorMode: ColorModeVertex, DepthOffset: EdgeOffsetDefault})
	line(pipeline.KeyEdges, locked, DrawUniforms{ColorMode: ColorModeUniform, Color: r.prefs.LockedEdgeColor, DepthOffset: EdgeOffsetDefault})
	line(pipeline.KeyEdgesOccluded, selected, DrawUniforms{ColorMode: ColorModeUniform, Color: r.prefs.OccludedSelectedEdgeColor, DepthOffset: EdgeOffsetSelected})
	line(pipeline.KeyEdges, selected, DrawUniforms{ColorMode: ColorModeUniform, Color: r.prefs.SelectedEdgeColor, DepthOffset: EdgeOffsetSelected})
}

func (r *mapRenderer) renderEntityBounds(draw func(DrawCall)) {
	buffer := r.geometry.EntityBoundsBuffer().Handle()
	line := func(key string, info geometry.EdgeRenderInfo, u DrawUniforms) {
		u.DepthOffset = EdgeOffsetDefault
		draw(DrawCall{Pipeline: key, Buffer: buffer, BufferOffset: info.BufferOffset, VertexCount: info.VertexCount, Uniforms: u})
	}

	normal := r.geometry.EntityBoundsRenderInfo(geometry.StateNormal)
	locked := r.geometry.EntityBoundsRenderInfo(geometry.StateLocked)
	selected := r.geometry.EntityBoundsRenderInfo(geometry.StateSelected)

	line(pipeline.KeyEdges, normal, DrawUniforms{ColorMode: ColorModeVertex})
	line(pipeline.KeyEdges, locked, DrawUniforms{ColorMode: ColorModeUniform, Color: r.prefs.LockedEntityBoundsColor})
	line(pipeline.KeyEdgesOccluded, selected, DrawUniforms{ColorMode: ColorModeUniform, Color: r.prefs.OccludedSelectedEntityBoundsColor})
	line(pipeline.KeyEdgesLessEqual, selected, DrawUniforms{ColorMode: ColorModeUniform, Color: r.prefs.SelectedEntityBoundsColor})
}

func (r *mapRenderer) renderEntityModels(ctx *RenderContext, draw func(DrawCall)) {
	passes := []struct {
		class    geometry.StateClass
		tint     common.Color
		tintMode TintMode
	}{
		{geometry.StateNormal, common.Color{}, TintNone},
		{geometry.StateLocked, r.prefs.LockedFaceColor, TintReplaceAlpha},
		{geometry.StateSelected, r.prefs.SelectedFaceColor, TintModulate},
	}

	filter := ctx.filter()
	buffer := r.assets.Buffer().Handle()
	entities := r.source.Map().Entities()
	var frustum *common.Frustum
	if ctx.CullModels {
		f := common.ExtractFrustum(ctx.Camera.ViewProjection())
		frustum = &f
	}
	for _, pass := range passes {
		renderers := r.entityRenderers[pass.class]
		if len(renderers) == 0 {
			continue
		}
		// Walk the map rather than the renderer map so draw order is stable.
		for _, e := range entities {
			mr, ok := renderers[e]
			if !ok || !mr.Prepared() || !filter.EntityVisible(e) {
				continue
			}
			if frustum != nil {
				b := mr.Bounds()
				if !frustum.IntersectsAABB(b.Min.Add(e.Origin()), b.Max.Add(e.Origin())) {
					continue
				}
			}
			transform := mgl32.Translate3D(e.Origin()[0], e.Origin()[1], e.Origin()[2])
			for _, d := range mr.Draws() {
				call := DrawCall{
					Pipeline:     pipeline.KeyModels,
					Buffer:       buffer,
					BufferOffset: d.BufferOffset,
					FirstVertex:  d.FirstVertex,
					VertexCount:  d.VertexCount,
					Uniforms: DrawUniforms{
						Transform: transform,
						Tint:      pass.tint,
						TintMode:  pass.tintMode,
					},
				}
				r.applySurface(ctx, &call, d.Texture, d.Color)
				draw(call)
			}
		}
	}
}

func (r *mapRenderer) renderLabels(ctx *RenderContext, draw func(DrawCall)) error {
	passes := []struct {
		class geometry.StateClass
		color common.Color
	}{
		{geometry.StateNormal, r.prefs.InfoOverlayColor},
		{geometry.StateLocked, r.prefs.LockedInfoOverlayColor},
		{geometry.StateSelected, r.prefs.SelectedInfoOverlayColor},
	}

	view := ctx.labelView()
	filter := ctx.filter()
	var errs []error
	for _, pass := range passes {
		labels := r.labels[pass.class]
		if labels.Len() == 0 {
			continue
		}
		batch, err := labels.Render(view, filter.EntityVisible)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if batch.Empty() || !r.ensureTexture(labels.Atlas().Texture()) {
			continue
		}
		draw(DrawCall{
			Pipeline:     pipeline.KeyLabels,
			Buffer:       batch.Buffer,
			BufferOffset: batch.BufferOffset,
			VertexCount:  batch.VertexCount,
			Texture:      labels.Atlas().Texture().Name(),
			Uniforms:     DrawUniforms{ColorMode: ColorModeTextureAlpha, Color: pass.color},
		})
	}
	return errors.Join(errs...)
}

func (r *mapRenderer) ChangeEditState(changes document.EditStateChangeSet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changeEditState(changes)
}

func (r *mapRenderer) changeEditState(changes document.EditStateChangeSet) {
	entityAspects := []struct {
		state  document.EditState
		aspect geometry.Aspect
	}{
		{document.EditStateDefault, geometry.AspectEntityBounds},
		{document.EditStateSelected, geometry.AspectSelectedEntityBounds},
		{document.EditStateLocked, geometry.AspectLockedEntityBounds},
	}
	for _, ea := range entityAspects {
		if changes.EntityStateChangedFrom(ea.state) || changes.EntityStateChangedTo(ea.state) {
			r.geometry.Invalidate(ea.aspect)
		}
	}

	faces := changes.FaceSelectionChanged()
	brushAspects := []struct {
		state  document.EditState
		aspect geometry.Aspect
	}{
		{document.EditStateDefault, geometry.AspectGeometry},
		{document.EditStateSelected, geometry.AspectSelectedGeometry},
		{document.EditStateLocked, geometry.AspectLockedGeometry},
	}
	for _, ba := range brushAspects {
		if faces || changes.BrushStateChangedFrom(ba.state) || changes.BrushStateChangedTo(ba.state) {
			r.geometry.Invalidate(ba.aspect)
		}
	}

	// Brushes without a state of their own are drawn in their entity's class.
	for _, c := range changes.EntityChanges() {
		brushes := c.Entity.Brushes()
		if len(brushes) == 0 {
			continue
		}
		if from, ok := geometry.StateClassOf(c.From); ok {
			r.geometry.Invalidate(geometry.GeometryAspect(from))
		}
		r.invalidateBrushes(brushes)
	}

	// Brush and face selection can change the class of the owning entity, so every entity
	// touched by the change set is reclassified.
	if faces {
		for e := range r.entityClasses {
			r.reclassify(e)
		}
		return
	}
	for _, c := range changes.EntityChanges() {
		r.reclassify(c.Entity)
	}
	for _, c := range changes.BrushChanges() {
		if e := c.Brush.Entity(); e != nil {
			r.reclassify(e)
		}
	}
}

// reclassify moves an entity's label and model renderer to the state class it now belongs to,
// invalidating the entity bounds of both classes.
func (r *mapRenderer) reclassify(e *document.Entity) {
	from, known := r.entityClasses[e]
	if !known {
		return
	}
	to := geometry.EntityClass(e)
	if from == to {
		return
	}
	r.entityClasses[e] = to
	r.geometry.Invalidate(geometry.EntityBoundsAspect(from), geometry.EntityBoundsAspect(to))
	r.labels[from].TransferString(e, r.labels[to])
	if mr, ok := r.entityRenderers[from][e]; ok {
		delete(r.entityRenderers[from], e)
		r.entityRenderers[to][e] = mr
	}
}

func (r *mapRenderer) AddEntities(entities []*document.Entity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addEntities(entities)
}

func (r *mapRenderer) addEntities(entities []*document.Entity) {
	for _, e := range entities {
		c := geometry.EntityClass(e)
		r.entityClasses[e] = c
		r.geometry.Invalidate(geometry.EntityBoundsAspect(c))
		r.invalidateBrushes(e.Brushes())

		if mr, err := r.assets.EntityRenderer(e); err == nil {
			r.entityRenderers[c][e] = mr
		}
		if !e.Worldspawn() {
			r.labels[c].AddString(e, e.Classname(), labelAnchor(e))
		}
	}
	r.entityRenderersValid = false
}

func labelAnchor(e *document.Entity) text.Anchor {
	return text.AnchorFunc(func() mgl32.Vec3 {
		b := e.Bounds()
		c := b.Center()
		return mgl32.Vec3{c[0], c[1], b.Max[2] + labelHeight}
	})
}

func (r *mapRenderer) invalidateBrushes(brushes []*document.Brush) {
	for _, b := range brushes {
		for _, c := range geometry.BrushClasses(b) {
			r.geometry.Invalidate(geometry.GeometryAspect(c))
		}
	}
}

func (r *mapRenderer) RemoveEntities(entities []*document.Entity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range entities {
		if c, ok := r.entityClasses[e]; ok {
			r.geometry.Invalidate(geometry.EntityBoundsAspect(c))
		}
		r.invalidateBrushes(e.Brushes())
		delete(r.entityClasses, e)
		for c := range r.entityRenderers {
			delete(r.entityRenderers[c], e)
			r.labels[c].RemoveString(e)
		}
	}
	r.entityRenderersValid = false
}

func (r *mapRenderer) LoadMap() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addEntities(r.source.Map().Entities())
	r.geometry.InvalidateAll()
	common.Logger().Info("map loaded", "entities", len(r.entityClasses))
}

func (r *mapRenderer) ClearMap() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for c := range r.entityRenderers {
		clear(r.entityRenderers[c])
		r.labels[c].Clear()
	}
	clear(r.entityClasses)
	r.geometry.Clear()
	r.assets.Clear()
	r.entityRenderersValid = false
	common.Logger().Info("map cleared")
}

func (r *mapRenderer) ReloadEntityModels() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reloadEntityModels()
}

// reloadEntityModels rebuilds the renderer maps from scratch. Lookups are memoized by the asset
// manager, so renderers of unchanged entities are reused.
func (r *mapRenderer) reloadEntityModels() {
	var rebuilt [stateClassCount]map[*document.Entity]assets.ModelRenderer
	for c := range rebuilt {
		rebuilt[c] = make(map[*document.Entity]assets.ModelRenderer, len(r.entityRenderers[c]))
	}

	failed := 0
	for _, e := range r.source.Map().Entities() {
		mr, err := r.assets.EntityRenderer(e)
		if err != nil {
			if !errors.Is(err, assets.ErrNoModel) {
				failed++
			}
			continue
		}
		c, ok := r.entityClasses[e]
		if !ok {
			c = geometry.EntityClass(e)
		}
		rebuilt[c][e] = mr
	}
	r.entityRenderers = rebuilt
	r.entityRenderersValid = true
	if failed > 0 {
		common.Logger().Warn("entity models unavailable", "count", failed)
	}
}

func (r *mapRenderer) AssetSourceChanged(loader assets.ModelLoader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assets.Reset(loader)
	r.entityRenderersValid = false
}

func (r *mapRenderer) EntitiesAdded(entities []*document.Entity) {
	r.AddEntities(entities)
}

func (r *mapRenderer) EntitiesRemoved(entities []*document.Entity) {
	r.RemoveEntities(entities)
}

func (r *mapRenderer) EditStateChanged(changes document.EditStateChangeSet) {
	r.ChangeEditState(changes)
}

// ObjectsChanged invalidates the geometry of moved brushes and the bounds of moved entities.
// Models and labels follow their entities without a rebuild.
func (r *mapRenderer) ObjectsChanged(entities []*document.Entity, brushes []*document.Brush) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range entities {
		r.geometry.Invalidate(geometry.EntityBoundsAspect(geometry.EntityClass(e)))
		r.invalidateBrushes(e.Brushes())
	}
	for _, b := range brushes {
		r.invalidateBrushes([]*document.Brush{b})
		if e := b.Entity(); e != nil {
			r.geometry.Invalidate(geometry.EntityBoundsAspect(geometry.EntityClass(e)))
		}
	}
}

func (r *mapRenderer) MapLoaded(*document.Map) {
	r.LoadMap()
}

func (r *mapRenderer) MapCleared() {
	r.ClearMap()
}

func (r *mapRenderer) Valid(a geometry.Aspect) bool {
	return r.geometry.Valid(a)
}

func (r *mapRenderer) EntityRenderersValid() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entityRenderersValid
}

func (r *mapRenderer) EntityRendererCount(c geometry.StateClass) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entityRenderers[c])
}

func (r *mapRenderer) Labels(c geometry.StateClass) text.Renderer[*document.Entity] {
	return r.labels[c]
}

func (r *mapRenderer) Geometry() geometry.Cache { return r.geometry }

func (r *mapRenderer) Assets() assets.Manager { return r.assets }

func (r *mapRenderer) Sink() RenderSink { return r.overlay }

func (r *mapRenderer) DrawCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.drawCount
}

func (r *mapRenderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.geometry.Release()
	r.assets.Release()
	r.overlay.release()
	for _, l := range r.labels {
		l.Release()
	}
}
