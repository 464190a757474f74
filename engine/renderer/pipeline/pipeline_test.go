package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("p", VertexFormatFace)
	assert.Equal(t, TopologyTriangleList, p.Topology())
	assert.Equal(t, DepthLess, p.DepthCompare())
	assert.True(t, p.DepthWriteEnabled())
	assert.False(t, p.BlendEnabled())
	assert.False(t, p.CullBack())
	assert.Nil(t, p.Pipeline())

	p.SetRenderPipeline("gpu object")
	assert.Equal(t, "gpu object", p.Pipeline())
}

func TestEditorPipelines(t *testing.T) {
	pipelines := EditorPipelines()
	require.Len(t, pipelines, 6)

	seen := make(map[string]Pipeline)
	for _, p := range pipelines {
		_, dup := seen[p.PipelineKey()]
		assert.False(t, dup, "duplicate key %s", p.PipelineKey())
		seen[p.PipelineKey()] = p
		assert.NotZero(t, p.VertexFormat().Stride())
	}

	assert.Equal(t, TopologyLineList, seen[KeyEdges].Topology())
	assert.Equal(t, DepthLessEqual, seen[KeyEdgesLessEqual].DepthCompare())
	assert.Equal(t, DepthAlways, seen[KeyEdgesOccluded].DepthCompare())
	assert.False(t, seen[KeyEdgesOccluded].DepthWriteEnabled())
	assert.True(t, seen[KeyLabels].BlendEnabled())
	assert.Equal(t, 28, seen[KeyFaces].VertexFormat().Stride())
}
