package gpu

import (
	"github.com/Carmen-Shannon/oxy-map/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// editorShader is the single module every editor pipeline is built from. Each vertex format has
// its own entry point; all of them share one fragment stage driven by the draw uniforms.
const editorShader = `
struct Camera {
	view_projection: mat4x4f,
};

struct Draw {
	transform: mat4x4f,
	color: vec4f,
	tint: vec4f,
	color_mode: u32,
	tint_mode: u32,
	depth_offset: f32,
	_pad: f32,
};

@group(0) @binding(0) var<uniform> camera: Camera;
@group(1) @binding(0) var<uniform> draw: Draw;
@group(2) @binding(0) var surface_texture: texture_2d<f32>;
@group(2) @binding(1) var surface_sampler: sampler;

struct VertexOutput {
	@builtin(position) position: vec4f,
	@location(0) color: vec4f,
	@location(1) uv: vec2f,
};

fn project(position: vec3f) -> vec4f {
	var clip = camera.view_projection * draw.transform * vec4f(position, 1.0);
	clip.z = clip.z * (1.0 - draw.depth_offset);
	return clip;
}

@vertex
fn vs_face(@location(0) grid: vec2f, @location(1) uv: vec2f, @location(2) position: vec3f) -> VertexOutput {
	var out: VertexOutput;
	out.position = project(position);
	out.color = vec4f(1.0);
	out.uv = uv;
	return out;
}

@vertex
fn vs_line(@location(0) color: vec4f, @location(1) position: vec3f) -> VertexOutput {
	var out: VertexOutput;
	out.position = project(position);
	out.color = color;
	out.uv = vec2f(0.0);
	return out;
}

@vertex
fn vs_model(@location(0) position: vec3f, @location(1) uv: vec2f) -> VertexOutput {
	var out: VertexOutput;
	out.position = project(position);
	out.color = vec4f(1.0);
	out.uv = uv;
	return out;
}

@vertex
fn vs_label(@location(0) position: vec3f, @location(1) uv: vec2f, @location(2) color: vec4f) -> VertexOutput {
	var out: VertexOutput;
	out.position = project(position);
	out.color = color;
	out.uv = uv;
	return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4f {
	let texel = textureSample(surface_texture, surface_sampler, in.uv);
	var c: vec4f;
	switch draw.color_mode {
		case 1u: {
			c = draw.color;
		}
		case 2u: {
			c = texel;
		}
		case 3u: {
			c = vec4f(draw.color.rgb * in.color.rgb, draw.color.a * in.color.a * texel.a);
		}
		default: {
			c = in.color;
		}
	}
	if (draw.tint_mode != 0u) {
		var alpha = c.a;
		if (draw.tint_mode == 2u) {
			alpha = draw.tint.a;
		}
		c = vec4f(c.rgb * draw.tint.rgb * draw.tint.a * 2.0, alpha);
	}
	return c;
}
`

// vertexEntryPoint returns the shader entry point of a vertex format.
func vertexEntryPoint(f pipeline.VertexFormat) string {
	switch f {
	case pipeline.VertexFormatLine:
		return "vs_line"
	case pipeline.VertexFormatModel:
		return "vs_model"
	case pipeline.VertexFormatLabel:
		return "vs_label"
	default:
		return "vs_face"
	}
}

// vertexLayout returns the buffer layout of a vertex format. Offsets follow the vertex writers in
// the geometry, assets and text packages.
func vertexLayout(f pipeline.VertexFormat) wgpu.VertexBufferLayout {
	var attributes []wgpu.VertexAttribute
	switch f {
	case pipeline.VertexFormatFace:
		attributes = []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 16, ShaderLocation: 2},
		}
	case pipeline.VertexFormatLine:
		attributes = []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatUnorm8x4, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 4, ShaderLocation: 1},
		}
	case pipeline.VertexFormatModel:
		attributes = []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 1},
		}
	case pipeline.VertexFormatLabel:
		attributes = []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 1},
			{Format: wgpu.VertexFormatUnorm8x4, Offset: 20, ShaderLocation: 2},
		}
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: uint64(f.Stride()),
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attributes,
	}
}

func topology(t pipeline.Topology) wgpu.PrimitiveTopology {
	if t == pipeline.TopologyLineList {
		return wgpu.PrimitiveTopologyLineList
	}
	return wgpu.PrimitiveTopologyTriangleList
}

func depthCompare(c pipeline.DepthCompare) wgpu.CompareFunction {
	switch c {
	case pipeline.DepthLessEqual:
		return wgpu.CompareFunctionLessEqual
	case pipeline.DepthAlways:
		return wgpu.CompareFunctionAlways
	default:
		return wgpu.CompareFunctionLess
	}
}

var alphaBlending = &wgpu.BlendState{
	Color: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorSrcAlpha,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
	Alpha: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
}
