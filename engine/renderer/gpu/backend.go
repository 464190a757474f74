// Package gpu implements the renderer backend on WebGPU. It owns the device, the swapchain
// surface and every buffer, texture and pipeline object the map renderer asks for.
package gpu

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-map/common"
	"github.com/Carmen-Shannon/oxy-map/engine/document"
	"github.com/Carmen-Shannon/oxy-map/engine/renderer"
	"github.com/Carmen-Shannon/oxy-map/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-map/engine/renderer/vbo"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// uniformSlot is the stride of one draw in the uniform ring. It matches the minimum uniform
// buffer offset alignment every WebGPU adapter supports.
const uniformSlot = 256

var (
	errNoFrame        = errors.New("no frame in progress")
	errFrameInProcess = errors.New("previous frame surface not yet presented")
)

type gpuTexture struct {
	texture   *wgpu.Texture
	view      *wgpu.TextureView
	bindGroup *wgpu.BindGroup
}

func (t *gpuTexture) release() {
	if t.bindGroup != nil {
		t.bindGroup.Release()
	}
	if t.view != nil {
		t.view.Release()
	}
	if t.texture != nil {
		t.texture.Release()
	}
}

type backend struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	forceFallbackAdapter bool
	samplerOptions       SamplerOptions

	surfaceFormat        *wgpu.TextureFormat
	msaaTextureView      *wgpu.TextureView
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	presentMode wgpu.PresentMode
	sampleCount renderer.MSAASampleCount

	shaderModule    *wgpu.ShaderModule
	cameraLayout    *wgpu.BindGroupLayout
	drawLayout      *wgpu.BindGroupLayout
	textureLayout   *wgpu.BindGroupLayout
	pipelineLayout  *wgpu.PipelineLayout
	sampler         *wgpu.Sampler
	cameraBuffer    *wgpu.Buffer
	cameraBindGroup *wgpu.BindGroup
	whiteTexture    *gpuTexture

	// uniformRing holds the DrawUniforms of every draw of a frame, one uniformSlot apart.
	uniformRing      *wgpu.Buffer
	uniformBindGroup *wgpu.BindGroup
	uniformCapacity  int

	buffers    map[vbo.Handle]*wgpu.Buffer
	nextHandle vbo.Handle
	pipelines  map[string]pipeline.Pipeline
	textures   map[string]*gpuTexture

	frameEncoder        *wgpu.CommandEncoder
	frameSurface        *wgpu.Texture
	frameView           *wgpu.TextureView
	frameClear          common.Color
	frameViewProjection mgl32.Mat4
	frameDraws          []renderer.DrawCall
}

var _ renderer.RendererBackend = &backend{}

// NewBackend creates the WebGPU device for a window surface and the resources shared by every
// pipeline. It panics when no adapter or device is available.
//
// Parameters:
//   - surfaceDescriptor: the platform surface of the window
//   - options: functional options such as WithSampleCount and WithForceFallbackAdapter
//
// Returns:
//   - renderer.RendererBackend: the backend, ready for ConfigureSurface
func NewBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, options ...BackendBuilderOption) renderer.RendererBackend {
	runtime.LockOSThread()
	b := &backend{
		mu:              &sync.Mutex{},
		instance:        wgpu.CreateInstance(nil),
		presentMode:     wgpu.PresentModeFifo,
		sampleCount:     renderer.MSAA4x,
		uniformCapacity: 1024,
		buffers:         make(map[vbo.Handle]*wgpu.Buffer),
		pipelines:       make(map[string]pipeline.Pipeline),
		textures:        make(map[string]*gpuTexture),
	}
	for _, opt := range options {
		opt(b)
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: b.forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		panic(err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Map Device",
	})
	if err != nil {
		panic(err)
	}
	b.device = d
	b.queue = d.GetQueue()

	if err := b.initSharedResources(); err != nil {
		panic(err)
	}
	return b
}

// initSharedResources creates the shader module, the three bind group layouts and the objects
// bound to them that do not depend on a draw.
func (b *backend) initSharedResources() error {
	var err error
	b.shaderModule, err = b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Editor Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: editorShader},
	})
	if err != nil {
		return fmt.Errorf("failed to compile editor shader: %w", err)
	}

	b.cameraLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Camera Layout",
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStageVertex,
			Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform, MinBindingSize: 64},
		}},
	})
	if err != nil {
		return err
	}
	b.drawLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Draw Layout",
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type:             wgpu.BufferBindingTypeUniform,
				HasDynamicOffset: true,
				MinBindingSize:   renderer.DrawUniformsSize,
			},
		}},
	})
	if err != nil {
		return err
	}
	b.textureLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Texture Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return err
	}

	b.pipelineLayout, err = b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Editor Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.cameraLayout, b.drawLayout, b.textureLayout},
	})
	if err != nil {
		return err
	}

	opts := b.samplerOptions
	b.sampler, err = b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Map Texture Sampler",
		AddressModeU:  common.Coalesce(opts.AddressModeU, wgpu.AddressModeRepeat),
		AddressModeV:  common.Coalesce(opts.AddressModeV, wgpu.AddressModeRepeat),
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     common.Coalesce(opts.MagFilter, wgpu.FilterModeNearest),
		MinFilter:     common.Coalesce(opts.MinFilter, wgpu.FilterModeNearest),
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: common.Coalesce(opts.MaxAnisotropy, 1),
	})
	if err != nil {
		return err
	}

	b.cameraBuffer, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Camera Buffer",
		Size:  64,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	b.cameraBindGroup, err = b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   "Camera Bind Group",
		Layout:  b.cameraLayout,
		Entries: []wgpu.BindGroupEntry{{Binding: 0, Buffer: b.cameraBuffer, Size: wgpu.WholeSize}},
	})
	if err != nil {
		return err
	}

	b.whiteTexture, err = b.createTexture("White", common.TextureStagingData{Pixels: []byte{255, 255, 255, 255}, Width: 1, Height: 1})
	if err != nil {
		return err
	}
	return b.growUniformRing(b.uniformCapacity)
}

// growUniformRing replaces the uniform ring with one holding draws slots.
func (b *backend) growUniformRing(draws int) error {
	if b.uniformBindGroup != nil {
		b.uniformBindGroup.Release()
		b.uniformBindGroup = nil
	}
	if b.uniformRing != nil {
		b.uniformRing.Release()
		b.uniformRing = nil
	}

	ring, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Draw Uniform Ring",
		Size:  uint64(draws * uniformSlot),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("failed to create uniform ring of %d draws: %w", draws, err)
	}
	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   "Draw Uniform Bind Group",
		Layout:  b.drawLayout,
		Entries: []wgpu.BindGroupEntry{{Binding: 0, Buffer: ring, Size: renderer.DrawUniformsSize}},
	})
	if err != nil {
		ring.Release()
		return err
	}
	b.uniformRing = ring
	b.uniformBindGroup = bindGroup
	b.uniformCapacity = draws
	return nil
}

func (b *backend) createTexture(label string, staging common.TextureStagingData) (*gpuTexture, error) {
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     label + " Texture",
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              staging.Width,
			Height:             staging.Height,
			DepthOrArrayLayers: 1,
		},
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, err
	}
	t := &gpuTexture{texture: tex}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		staging.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  staging.Width * 4,
			RowsPerImage: staging.Height,
		},
		&wgpu.Extent3D{
			Width:              staging.Width,
			Height:             staging.Height,
			DepthOrArrayLayers: 1,
		},
	)

	t.view, err = tex.CreateView(nil)
	if err != nil {
		t.release()
		return nil, err
	}
	t.bindGroup, err = b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  label + " Bind Group",
		Layout: b.textureLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: t.view},
			{Binding: 1, Sampler: b.sampler},
		},
	})
	if err != nil {
		t.release()
		return nil, err
	}
	return t, nil
}

func (b *backend) CreateVertexBuffer(label string, size uint64) (vbo.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  (size + 3) &^ 3,
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return 0, err
	}
	b.nextHandle++
	b.buffers[b.nextHandle] = buf
	return b.nextHandle, nil
}

func (b *backend) WriteVertexBuffer(h vbo.Handle, offset uint64, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf, ok := b.buffers[h]
	if !ok {
		return fmt.Errorf("unknown vertex buffer %d", h)
	}
	b.queue.WriteBuffer(buf, offset, data)
	return nil
}

func (b *backend) ReleaseVertexBuffer(h vbo.Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if buf, ok := b.buffers[h]; ok {
		buf.Release()
		delete(b.buffers, h)
	}
}

func (b *backend) RegisterPipeline(p pipeline.Pipeline) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.surfaceFormat == nil {
		return errors.New("surface must be configured before pipelines are registered")
	}
	if _, ok := b.pipelines[p.PipelineKey()]; ok {
		return fmt.Errorf("pipeline %s already registered", p.PipelineKey())
	}

	target := wgpu.ColorTargetState{
		Format:    *b.surfaceFormat,
		WriteMask: wgpu.ColorWriteMaskAll,
	}
	if p.BlendEnabled() {
		target.Blend = alphaBlending
	}
	cullMode := wgpu.CullModeNone
	if p.CullBack() {
		cullMode = wgpu.CullModeBack
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: b.pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     b.shaderModule,
			EntryPoint: vertexEntryPoint(p.VertexFormat()),
			Buffers:    []wgpu.VertexBufferLayout{vertexLayout(p.VertexFormat())},
		},
		Fragment: &wgpu.FragmentState{
			Module:     b.shaderModule,
			EntryPoint: "fs_main",
			Targets:    []wgpu.ColorTargetState{target},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  topology(p.Topology()),
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  cullMode,
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: p.DepthWriteEnabled(),
			DepthCompare:      depthCompare(p.DepthCompare()),
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create pipeline %s: %w", p.PipelineKey(), err)
	}

	p.SetRenderPipeline(created)
	b.pipelines[p.PipelineKey()] = p
	return nil
}

func (b *backend) InitTexture(t *document.Texture) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	staging := t.Staging()
	if t.Dummy() || len(staging.Pixels) == 0 {
		return fmt.Errorf("texture %s has no pixels", t.Name())
	}
	created, err := b.createTexture(t.Name(), staging)
	if err != nil {
		return fmt.Errorf("failed to create texture %s: %w", t.Name(), err)
	}
	if old, ok := b.textures[t.Name()]; ok {
		old.release()
	}
	b.textures[t.Name()] = created
	return nil
}

func (b *backend) HasTexture(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.textures[name]
	return ok
}

func (b *backend) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = &capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
	}

	count := uint32(b.sampleCount)
	msaaEnabled := count > 1
	size := wgpu.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1}

	if msaaEnabled {
		// The pass draws into the MSAA texture and resolves into the swapchain view.
		msaaTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         "MSAA Texture",
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        *b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			panic(err)
		}
		b.msaaTextureView, err = msaaTexture.CreateView(nil)
		if err != nil {
			panic(err)
		}
	}

	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Depth Texture",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(err)
	}
	b.depthTextureView, err = depthTexture.CreateView(nil)
	if err != nil {
		panic(err)
	}

	storeOp := wgpu.StoreOpStore
	if msaaEnabled {
		storeOp = wgpu.StoreOpDiscard
	}
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:    b.msaaTextureView,
			LoadOp:  wgpu.LoadOpClear,
			StoreOp: storeOp,
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}
}

func (b *backend) SetPresentMode(mode renderer.PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case renderer.PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
}

func (b *backend) BeginFrame(clear common.Color, viewProjection mgl32.Mat4) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface != nil {
		return errFrameInProcess
	}
	if b.renderPassDescriptor == nil {
		return errors.New("surface is not configured")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	b.frameEncoder = encoder
	b.frameSurface = surfaceTexture
	b.frameView = view
	b.frameClear = clear
	b.frameViewProjection = viewProjection
	b.frameDraws = b.frameDraws[:0]
	return nil
}

// Draw validates a draw and queues it. The render pass is encoded by EndFrame once every draw's
// uniforms are known.
func (b *backend) Draw(call renderer.DrawCall) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return errNoFrame
	}
	if _, ok := b.pipelines[call.Pipeline]; !ok {
		return fmt.Errorf("pipeline %s is not registered", call.Pipeline)
	}
	if _, ok := b.buffers[call.Buffer]; !ok {
		return fmt.Errorf("unknown vertex buffer %d", call.Buffer)
	}
	if call.Texture != "" {
		if _, ok := b.textures[call.Texture]; !ok {
			return fmt.Errorf("texture %s is not initialized", call.Texture)
		}
	}
	if call.VertexCount == 0 {
		return nil
	}
	b.frameDraws = append(b.frameDraws, call)
	return nil
}

func (b *backend) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return errNoFrame
	}
	defer func() {
		b.frameEncoder.Release()
		b.frameEncoder = nil
	}()

	if len(b.frameDraws) > b.uniformCapacity {
		if err := b.growUniformRing(max(len(b.frameDraws), b.uniformCapacity*2)); err != nil {
			b.abandonFrame()
			return err
		}
	}

	vp := b.frameViewProjection
	uniforms := make([]byte, len(b.frameDraws)*uniformSlot)
	for i, call := range b.frameDraws {
		copy(uniforms[i*uniformSlot:], call.Uniforms.Bytes())
	}
	b.queue.WriteBuffer(b.cameraBuffer, 0, common.SliceToBytes(vp[:]))
	if len(uniforms) > 0 {
		b.queue.WriteBuffer(b.uniformRing, 0, uniforms)
	}

	attachment := &b.renderPassDescriptor.ColorAttachments[0]
	if b.sampleCount > 1 {
		attachment.ResolveTarget = b.frameView
	} else {
		attachment.View = b.frameView
	}
	attachment.ClearValue = wgpu.Color{
		R: float64(b.frameClear.R()),
		G: float64(b.frameClear.G()),
		B: float64(b.frameClear.B()),
		A: float64(b.frameClear.A()),
	}

	pass := b.frameEncoder.BeginRenderPass(b.renderPassDescriptor)
	pass.SetBindGroup(0, b.cameraBindGroup, nil)
	var drawErr error
	for i, call := range b.frameDraws {
		buf, ok := b.buffers[call.Buffer]
		if !ok {
			drawErr = errors.Join(drawErr, fmt.Errorf("vertex buffer %d released during frame", call.Buffer))
			continue
		}
		tex := b.whiteTexture
		if call.Texture != "" {
			tex = b.textures[call.Texture]
		}
		pass.SetPipeline(b.pipelines[call.Pipeline].Pipeline().(*wgpu.RenderPipeline))
		pass.SetBindGroup(1, b.uniformBindGroup, []uint32{uint32(i * uniformSlot)})
		pass.SetBindGroup(2, tex.bindGroup, nil)
		pass.SetVertexBuffer(0, buf, call.BufferOffset, wgpu.WholeSize)
		pass.Draw(uint32(call.VertexCount), 1, uint32(call.FirstVertex), 0)
	}
	pass.End()

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		b.abandonFrame()
		return errors.Join(drawErr, err)
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	b.frameDraws = b.frameDraws[:0]
	return drawErr
}

// abandonFrame drops the acquired surface so the next BeginFrame can proceed.
func (b *backend) abandonFrame() {
	b.frameDraws = b.frameDraws[:0]
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

func (b *backend) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}
	b.surface.Present()
	b.abandonFrame()
}

func (b *backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.abandonFrame()
	for h, buf := range b.buffers {
		buf.Release()
		delete(b.buffers, h)
	}
	for name, t := range b.textures {
		t.release()
		delete(b.textures, name)
	}
	for key, p := range b.pipelines {
		if rp, ok := p.Pipeline().(*wgpu.RenderPipeline); ok {
			rp.Release()
		}
		delete(b.pipelines, key)
	}
	if b.whiteTexture != nil {
		b.whiteTexture.release()
	}
	if b.uniformBindGroup != nil {
		b.uniformBindGroup.Release()
	}
	if b.uniformRing != nil {
		b.uniformRing.Release()
	}
	if b.cameraBindGroup != nil {
		b.cameraBindGroup.Release()
	}
	if b.cameraBuffer != nil {
		b.cameraBuffer.Release()
	}
	if b.sampler != nil {
		b.sampler.Release()
	}
	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
	}
	b.device.Release()
	b.adapter.Release()
	b.surface.Release()
	b.instance.Release()
}
