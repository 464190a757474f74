package geometry

import (
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-map/common"
	"github.com/Carmen-Shannon/oxy-map/engine/document"
	"github.com/Carmen-Shannon/oxy-map/engine/renderer/vbo"
)

const faceVertexFloats = FaceVertexStride / 4

// stageFaceGroup triangulates every face of g as a fan anchored at vertex 0 and returns the
// interleaved vertex data.
func stageFaceGroup(g *faceGroup) []float32 {
	out := make([]float32, 0, g.vertexCount*faceVertexFloats)
	for _, f := range g.faces {
		out = appendFaceFan(out, f)
	}
	return out
}

func appendFaceFan(out []float32, f *document.Face) []float32 {
	verts := f.Vertices()
	grid := f.GridCoords()
	tex := f.TexCoords()
	put := func(i int) []float32 {
		p := verts[i].Position
		return append(out, grid[i][0], grid[i][1], tex[i][0], tex[i][1], p[0], p[1], p[2])
	}
	for j := 1; j < len(verts)-1; j++ {
		out = put(0)
		out = put(j)
		out = put(j + 1)
	}
	return out
}

// stageFaceBucket produces the vertex data of every group of a bucket, in group order.
// With a pool the groups are staged in parallel; the caller still writes them serially.
func stageFaceBucket(bucket *faceBucket, pool worker.DynamicWorkerPool) [][]float32 {
	staged := make([][]float32, len(bucket.groups))
	if pool == nil || len(bucket.groups) < 2 {
		for i, g := range bucket.groups {
			staged[i] = stageFaceGroup(g)
		}
		return staged
	}

	var wg sync.WaitGroup
	for i, g := range bucket.groups {
		wg.Add(1)
		idx, group := i, g
		pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				staged[idx] = stageFaceGroup(group)
				return nil, nil
			},
		})
	}
	wg.Wait()
	return staged
}

// writeFaceBucket copies staged groups into a block and returns one render info per group.
func writeFaceBucket(bucket *faceBucket, staged [][]float32, block *vbo.Block) []FaceRenderInfo {
	infos := make([]FaceRenderInfo, 0, len(bucket.groups))
	first := 0
	for i, g := range bucket.groups {
		block.WriteBytes(common.SliceToBytes(staged[i]))
		infos = append(infos, FaceRenderInfo{
			Texture:      g.texture,
			BufferOffset: uint64(block.Offset()),
			FirstVertex:  first,
			VertexCount:  g.vertexCount,
		})
		first += g.vertexCount
	}
	return infos
}

// writeEdgeBucket writes both endpoints of every edge with its source color.
func writeEdgeBucket(bucket *edgeBucket, block *vbo.Block) EdgeRenderInfo {
	for _, src := range bucket.sources {
		for _, e := range src.edges {
			block.WriteBytes(src.color[:])
			block.WriteVec3(e.Start.Position)
			block.WriteBytes(src.color[:])
			block.WriteVec3(e.End.Position)
		}
	}
	return EdgeRenderInfo{BufferOffset: uint64(block.Offset()), VertexCount: bucket.vertexCount}
}

// writeEntityBounds writes the box outline of every entity.
func writeEntityBounds(entities []*document.Entity, fallback common.Color, block *vbo.Block) EdgeRenderInfo {
	for _, e := range entities {
		color := fallback
		if def := e.Definition(); def != nil {
			color = def.Color.WithAlpha(fallback.A())
		}
		rgba := color.RGBA8()
		for _, v := range e.Bounds().Vertices() {
			block.WriteBytes(rgba[:])
			block.WriteVec3(v)
		}
	}
	return EdgeRenderInfo{
		BufferOffset: uint64(block.Offset()),
		VertexCount:  len(entities) * BoundsVerticesPerEntity,
	}
}
