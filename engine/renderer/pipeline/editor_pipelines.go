package pipeline

// Keys of the pipelines every map renderer backend registers.
const (
	KeyFaces          = "faces"
	KeyModels         = "models"
	KeyEdges          = "edges"
	KeyEdgesLessEqual = "edges_lequal"
	KeyEdgesOccluded  = "edges_occluded"
	KeyLabels         = "labels"
)

// EditorPipelines returns fresh descriptions of every pipeline the map renderer draws with.
//
// Returns:
//   - []Pipeline: the pipelines in registration order
func EditorPipelines() []Pipeline {
	return []Pipeline{
		NewPipeline(KeyFaces, VertexFormatFace, WithBlendEnabled(true)),
		NewPipeline(KeyModels, VertexFormatModel, WithBlendEnabled(true)),
		NewPipeline(KeyEdges, VertexFormatLine, WithTopology(TopologyLineList)),
		NewPipeline(KeyEdgesLessEqual, VertexFormatLine,
			WithTopology(TopologyLineList),
			WithDepthCompare(DepthLessEqual),
		),
		NewPipeline(KeyEdgesOccluded, VertexFormatLine,
			WithTopology(TopologyLineList),
			WithDepthCompare(DepthAlways),
			WithDepthWriteEnabled(false),
			WithBlendEnabled(true),
		),
		NewPipeline(KeyLabels, VertexFormatLabel,
			WithDepthCompare(DepthAlways),
			WithDepthWriteEnabled(false),
			WithBlendEnabled(true),
		),
	}
}
