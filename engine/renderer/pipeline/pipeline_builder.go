package pipeline

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithTopology sets the primitive topology.
//
// Parameters:
//   - t: the topology
//
// Returns:
//   - PipelineBuilderOption: a function that sets the topology
func WithTopology(t Topology) PipelineBuilderOption {
	return func(p *pipeline) {
		p.topology = t
	}
}

// WithDepthCompare sets the depth test function. DepthAlways disables the test.
//
// Parameters:
//   - c: the compare function
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth compare function
func WithDepthCompare(c DepthCompare) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthCompare = c
	}
}

// WithDepthWriteEnabled sets whether passing fragments write depth.
//
// Parameters:
//   - enabled: true to write depth
//
// Returns:
//   - PipelineBuilderOption: a function that sets depth writing
func WithDepthWriteEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthWrite = enabled
	}
}

// WithBlendEnabled enables standard alpha blending.
//
// Parameters:
//   - enabled: true to blend
//
// Returns:
//   - PipelineBuilderOption: a function that sets blending
func WithBlendEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendEnabled = enabled
	}
}

// WithCullBack enables back-face culling.
func WithCullBack(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullBack = enabled
	}
}
