package geometry

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-map/common"
	"github.com/Carmen-Shannon/oxy-map/engine/config"
	"github.com/Carmen-Shannon/oxy-map/engine/document"
	"github.com/Carmen-Shannon/oxy-map/engine/renderer/vbo"
)

// DummyTextureName is the name of the texture substituted for faces without one.
const DummyTextureName = "__dummy__"

// Cache owns the face, edge and entity bounds buffers of a map and the validity of every aspect.
type Cache interface {
	// Invalidate marks aspects stale. Their partitions are rebuilt by the next Validate.
	Invalidate(aspects ...Aspect)

	// InvalidateAll marks every aspect stale.
	InvalidateAll()

	// Valid reports whether an aspect is up to date.
	Valid(a Aspect) bool

	// Invalid returns every stale aspect.
	Invalid() AspectSet

	// Validate rebuilds every stale aspect from the map. Partitions of valid aspects are not
	// touched. Faces with fewer than three vertices panic.
	//
	// Parameters:
	//   - m: the map snapshot
	//   - filter: decides which objects are included
	//   - prefs: supplies the fallback edge and entity bounds colors
	//
	// Returns:
	//   - AspectSet: the aspects that were rebuilt
	//   - error: error if a buffer upload failed; the affected aspects stay invalid
	Validate(m *document.Map, filter document.Filter, prefs config.Preferences) (AspectSet, error)

	// FaceRenderInfos returns one record per texture of a face partition.
	FaceRenderInfos(c StateClass) []FaceRenderInfo

	// EdgeRenderInfo returns the edge partition of a state class.
	EdgeRenderInfo(c StateClass) EdgeRenderInfo

	// EntityBoundsRenderInfo returns the entity bounds partition of a state class.
	EntityBoundsRenderInfo(c StateClass) EdgeRenderInfo

	// FaceBuffer, EdgeBuffer and EntityBoundsBuffer return the underlying vertex buffers.
	FaceBuffer() vbo.Vbo
	EdgeBuffer() vbo.Vbo
	EntityBoundsBuffer() vbo.Vbo

	// DummyTexture returns the texture substituted for faces without one.
	DummyTexture() *document.Texture

	// Stats returns rebuild counters.
	Stats() Stats

	// Clear frees every partition and marks every aspect stale.
	Clear()

	// Release frees the GPU buffers. The cache must not be used afterwards.
	Release()
}

// Stats counts rebuild work.
type Stats struct {
	// Rebuilds counts aspect rebuilds since construction.
	Rebuilds int
	// Validations counts Validate calls that rebuilt at least one aspect.
	Validations int
}

var _ Cache = &cache{}

type partition struct {
	block *vbo.Block
	faces []FaceRenderInfo
	lines EdgeRenderInfo
}

func (p *partition) free() {
	if p.block != nil {
		p.block.Free()
	}
	*p = partition{}
}

type cache struct {
	faceVbo   vbo.Vbo
	edgeVbo   vbo.Vbo
	boundsVbo vbo.Vbo

	faces  [stateClassCount]partition
	edges  [stateClassCount]partition
	bounds [stateClassCount]partition

	invalid AspectSet
	dummy   *document.Texture

	stagingWorkers int
	pool           worker.DynamicWorkerPool

	stats Stats
	mu    *sync.Mutex
}

// NewCache creates a cache with every aspect invalid.
//
// Parameters:
//   - uploader: creates and writes the GPU vertex buffers
//   - options: functional options such as WithStagingWorkers
//
// Returns:
//   - Cache: the cache
func NewCache(uploader vbo.BufferUploader, options ...CacheBuilderOption) Cache {
	c := &cache{
		invalid: AllAspects,
		dummy:   document.NewDummyTexture(DummyTextureName),
		mu:      &sync.Mutex{},
	}
	for _, opt := range options {
		opt(c)
	}

	c.faceVbo = vbo.NewVbo(uploader, vbo.WithLabel("Face Vertex Buffer"), vbo.WithInitialCapacity(0xFFFF*FaceVertexStride/4))
	c.edgeVbo = vbo.NewVbo(uploader, vbo.WithLabel("Edge Vertex Buffer"), vbo.WithInitialCapacity(0xFFFF*EdgeVertexStride/4))
	c.boundsVbo = vbo.NewVbo(uploader, vbo.WithLabel("Entity Bounds Vertex Buffer"), vbo.WithInitialCapacity(0xFFF*EdgeVertexStride))

	// Initialize the staging pool after options so WithStagingWorkers can enable it.
	if c.stagingWorkers > 0 {
		c.pool = worker.NewDynamicWorkerPool(c.stagingWorkers, 256, 1*time.Second)
	}
	return c
}

func (c *cache) Invalidate(aspects ...Aspect) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, a := range aspects {
		c.invalid = c.invalid.With(a)
	}
}

func (c *cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalid = AllAspects
}

func (c *cache) Valid(a Aspect) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.invalid.Has(a)
}

func (c *cache) Invalid() AspectSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalid
}

func (c *cache) Validate(m *document.Map, filter document.Filter, prefs config.Preferences) (AspectSet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.invalid.Empty() {
		return 0, nil
	}

	var rebuilt AspectSet
	var errs []error

	geometryStale := c.staleClasses(GeometryAspect)
	if len(geometryStale) > 0 {
		var buckets sceneBuckets
		collectBrushes(m, filter, c.dummy, prefs.EdgeColor.RGBA8(), &buckets)

		if err := c.rebuildFaces(geometryStale, &buckets); err != nil {
			errs = append(errs, err)
		}
		if err := c.rebuildEdges(geometryStale, &buckets); err != nil {
			errs = append(errs, err)
		}
		if len(errs) == 0 {
			for _, sc := range geometryStale {
				rebuilt = rebuilt.With(GeometryAspect(sc))
			}
		}
	}

	boundsStale := c.staleClasses(EntityBoundsAspect)
	if len(boundsStale) > 0 {
		var buckets sceneBuckets
		collectEntities(m, filter, &buckets)
		if err := c.rebuildEntityBounds(boundsStale, &buckets, prefs.EntityBoundsColor); err != nil {
			errs = append(errs, err)
		} else {
			for _, sc := range boundsStale {
				rebuilt = rebuilt.With(EntityBoundsAspect(sc))
			}
		}
	}

	c.invalid &^= rebuilt
	if !rebuilt.Empty() {
		c.stats.Validations++
		c.stats.Rebuilds += len(rebuilt.Aspects())
		common.Logger().Debug("geometry rebuilt", "aspects", rebuilt.String())
	}
	return rebuilt, errors.Join(errs...)
}

// staleClasses returns the state classes whose aspect, as chosen by aspectOf, is invalid.
func (c *cache) staleClasses(aspectOf func(StateClass) Aspect) []StateClass {
	var out []StateClass
	for sc := StateNormal; sc < stateClassCount; sc++ {
		if c.invalid.Has(aspectOf(sc)) {
			out = append(out, sc)
		}
	}
	return out
}

func (c *cache) rebuildFaces(classes []StateClass, buckets *sceneBuckets) error {
	staged := make([][][]float32, stateClassCount)
	for _, sc := range classes {
		c.faces[sc].free()
		staged[sc] = stageFaceBucket(&buckets.faces[sc], c.pool)
	}

	err := c.faceVbo.Mapped(func() error {
		for _, sc := range classes {
			bucket := &buckets.faces[sc]
			if bucket.vertexCount == 0 {
				continue
			}
			block := c.faceVbo.AllocBlock(bucket.vertexCount * FaceVertexStride)
			c.faces[sc] = partition{block: block, faces: writeFaceBucket(bucket, staged[sc], block)}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to upload face geometry: %w", err)
	}
	return nil
}

func (c *cache) rebuildEdges(classes []StateClass, buckets *sceneBuckets) error {
	for _, sc := range classes {
		c.edges[sc].free()
	}

	err := c.edgeVbo.Mapped(func() error {
		for _, sc := range classes {
			bucket := &buckets.edges[sc]
			if bucket.vertexCount == 0 {
				continue
			}
			block := c.edgeVbo.AllocBlock(bucket.vertexCount * EdgeVertexStride)
			c.edges[sc] = partition{block: block, lines: writeEdgeBucket(bucket, block)}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to upload edge geometry: %w", err)
	}
	return nil
}

func (c *cache) rebuildEntityBounds(classes []StateClass, buckets *sceneBuckets, fallback common.Color) error {
	for _, sc := range classes {
		c.bounds[sc].free()
	}

	err := c.boundsVbo.Mapped(func() error {
		for _, sc := range classes {
			entities := buckets.entities[sc]
			if len(entities) == 0 {
				continue
			}
			block := c.boundsVbo.AllocBlock(len(entities) * BoundsVerticesPerEntity * EdgeVertexStride)
			c.bounds[sc] = partition{block: block, lines: writeEntityBounds(entities, fallback, block)}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to upload entity bounds: %w", err)
	}
	return nil
}

func (c *cache) FaceRenderInfos(sc StateClass) []FaceRenderInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.faces[sc].faces
}

func (c *cache) EdgeRenderInfo(sc StateClass) EdgeRenderInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.edges[sc].lines
}

func (c *cache) EntityBoundsRenderInfo(sc StateClass) EdgeRenderInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bounds[sc].lines
}

func (c *cache) FaceBuffer() vbo.Vbo         { return c.faceVbo }
func (c *cache) EdgeBuffer() vbo.Vbo         { return c.edgeVbo }
func (c *cache) EntityBoundsBuffer() vbo.Vbo { return c.boundsVbo }

func (c *cache) DummyTexture() *document.Texture { return c.dummy }

func (c *cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for sc := StateNormal; sc < stateClassCount; sc++ {
		c.faces[sc].free()
		c.edges[sc].free()
		c.bounds[sc].free()
	}
	c.invalid = AllAspects
}

func (c *cache) Release() {
	c.Clear()
	c.faceVbo.Release()
	c.edgeVbo.Release()
	c.boundsVbo.Release()
}
