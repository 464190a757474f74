// Package pipeline describes the fixed-function state of every render pass the map renderer
// issues. Descriptions are backend neutral; a backend turns each one into a GPU pipeline
// object and attaches it with SetRenderPipeline.
package pipeline

// VertexFormat identifies the layout of the vertices a pipeline consumes.
type VertexFormat int

const (
	// VertexFormatFace is grid coordinate (2f), texture coordinate (2f), position (3f).
	VertexFormatFace VertexFormat = iota
	// VertexFormatLine is RGBA8 color followed by position (3f).
	VertexFormatLine
	// VertexFormatModel is position (3f) followed by texture coordinate (2f).
	VertexFormatModel
	// VertexFormatLabel is position (3f), atlas coordinate (2f), RGBA8 color.
	VertexFormatLabel
)

// Stride returns the size of one vertex in bytes.
func (f VertexFormat) Stride() int {
	switch f {
	case VertexFormatFace:
		return 28
	case VertexFormatLine:
		return 16
	case VertexFormatModel:
		return 20
	case VertexFormatLabel:
		return 24
	}
	return 0
}

// Topology is the primitive assembly mode.
type Topology int

const (
	TopologyTriangleList Topology = iota
	TopologyLineList
)

// DepthCompare is the depth test function.
type DepthCompare int

const (
	// DepthLess passes fragments strictly closer than the stored depth.
	DepthLess DepthCompare = iota
	// DepthLessEqual also passes fragments at equal depth.
	DepthLessEqual
	// DepthAlways disables the depth test.
	DepthAlways
)

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	pipelineKey  string
	vertexFormat VertexFormat
	topology     Topology
	depthCompare DepthCompare
	depthWrite   bool
	blendEnabled bool
	cullBack     bool

	renderPipeline any
}

// Pipeline describes one render pass state: the vertex format, primitive topology, depth test
// and blending. Every draw names the pipeline it uses by key.
type Pipeline interface {
	// PipelineKey returns the unique key of the pipeline.
	//
	// Returns:
	//   - string: the key draws refer to
	PipelineKey() string

	// VertexFormat returns the layout of the vertices drawn with this pipeline.
	//
	// Returns:
	//   - VertexFormat: the vertex layout
	VertexFormat() VertexFormat

	// Topology returns the primitive topology.
	//
	// Returns:
	//   - Topology: triangles or lines
	Topology() Topology

	// DepthCompare returns the depth test function.
	//
	// Returns:
	//   - DepthCompare: the compare function, DepthAlways when the test is disabled
	DepthCompare() DepthCompare

	// DepthWriteEnabled returns whether passing fragments write depth.
	//
	// Returns:
	//   - bool: true if depth writing is enabled
	DepthWriteEnabled() bool

	// BlendEnabled returns whether alpha blending is enabled.
	//
	// Returns:
	//   - bool: true if blending is enabled
	BlendEnabled() bool

	// CullBack returns whether back-facing triangles are culled.
	//
	// Returns:
	//   - bool: true if back faces are culled
	CullBack() bool

	// Pipeline returns the backend pipeline object, or nil before registration.
	// The caller is responsible for asserting the backend type.
	//
	// Returns:
	//   - any: the backend pipeline object
	Pipeline() any

	// SetRenderPipeline attaches the backend pipeline object created for this description.
	//
	// Parameters:
	//   - p: the backend pipeline object
	SetRenderPipeline(p any)
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a pipeline description. Defaults are a depth-tested, depth-writing,
// opaque triangle list without culling.
//
// Parameters:
//   - key: the unique key of the pipeline
//   - format: the vertex layout
//   - options: functional options such as WithTopology and WithDepthCompare
//
// Returns:
//   - Pipeline: the description
func NewPipeline(key string, format VertexFormat, options ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:  key,
		vertexFormat: format,
		topology:     TopologyTriangleList,
		depthCompare: DepthLess,
		depthWrite:   true,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string        { return p.pipelineKey }
func (p *pipeline) VertexFormat() VertexFormat { return p.vertexFormat }
func (p *pipeline) Topology() Topology         { return p.topology }
func (p *pipeline) DepthCompare() DepthCompare { return p.depthCompare }
func (p *pipeline) DepthWriteEnabled() bool    { return p.depthWrite }
func (p *pipeline) BlendEnabled() bool         { return p.blendEnabled }
func (p *pipeline) CullBack() bool             { return p.cullBack }
func (p *pipeline) Pipeline() any              { return p.renderPipeline }

func (p *pipeline) SetRenderPipeline(rp any) {
	p.renderPipeline = rp
}
