package gpu

import (
	"github.com/Carmen-Shannon/oxy-map/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
)

// SamplerOptions configures the sampler shared by every map texture. Zero fields take the defaults
// of NewBackend: repeat addressing and nearest filtering.
type SamplerOptions struct {
	AddressModeU  wgpu.AddressMode
	AddressModeV  wgpu.AddressMode
	MagFilter     wgpu.FilterMode
	MinFilter     wgpu.FilterMode
	MaxAnisotropy uint16
}

// BackendBuilderOption is a functional option applied to a backend during construction via NewBackend.
type BackendBuilderOption func(*backend)

// WithForceFallbackAdapter requests the software adapter.
//
// Parameters:
//   - force: whether to force the fallback adapter
//
// Returns:
//   - BackendBuilderOption: a function that sets the adapter preference
func WithForceFallbackAdapter(force bool) BackendBuilderOption {
	return func(b *backend) {
		b.forceFallbackAdapter = force
	}
}

// WithSampleCount sets the MSAA sample count of the main render pass.
//
// Parameters:
//   - count: the sample count
//
// Returns:
//   - BackendBuilderOption: a function that sets the sample count
func WithSampleCount(count renderer.MSAASampleCount) BackendBuilderOption {
	return func(b *backend) {
		b.sampleCount = count
	}
}

// WithSampler overrides the texture sampler settings.
func WithSampler(opts SamplerOptions) BackendBuilderOption {
	return func(b *backend) {
		b.samplerOptions = opts
	}
}

// WithUniformCapacity sets how many draws the uniform ring holds before it has to grow.
func WithUniformCapacity(draws int) BackendBuilderOption {
	return func(b *backend) {
		b.uniformCapacity = max(draws, 1)
	}
}
