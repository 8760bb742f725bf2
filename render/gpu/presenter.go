package gpu

import (
	"errors"
	"fmt"
	"image"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pitwall/backdrop"
	"github.com/pitwall/backdrop/render/core"
	"github.com/pitwall/backdrop/render/gpu/shaders"
)

var (
	ErrNoWindow       = errors.New("gpu: no window")
	ErrNotInitialized = errors.New("gpu: presenter not initialized")
	ErrSizeMismatch   = errors.New("gpu: frame size does not match surface")
)

// Presenter uploads the finished CPU frame into a texture and blits it to the
// window surface with a fullscreen triangle.
type Presenter struct {
	Window   *glfw.Window
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Surface  *wgpu.Surface
	Config   *wgpu.SurfaceConfiguration

	BlitModule   *wgpu.ShaderModule
	BlitPipeline *wgpu.RenderPipeline
	FrameTexture *wgpu.Texture
	FrameView    *wgpu.TextureView
	Sampler      *wgpu.Sampler
	BlitBG       *wgpu.BindGroup

	vp    core.Viewport
	ready bool
}

func NewPresenter(window *glfw.Window) *Presenter {
	return &Presenter{Window: window}
}

func (p *Presenter) Name() backdrop.RendererName { return backdrop.RendererWGPU }

// pickSurfaceFormat prefers a non-sRGB 8-bit format: the frame already holds
// display-encoded colors and must not be encoded twice.
func pickSurfaceFormat(formats []wgpu.TextureFormat) (wgpu.TextureFormat, error) {
	if len(formats) == 0 {
		return wgpu.TextureFormatUndefined, errors.New("gpu: surface reports no formats")
	}
	for _, f := range formats {
		if f == wgpu.TextureFormatBGRA8Unorm || f == wgpu.TextureFormatRGBA8Unorm {
			return f, nil
		}
	}
	return formats[0], nil
}

func (p *Presenter) Init(vp core.Viewport) (err error) {
	if p.Window == nil {
		return ErrNoWindow
	}
	if !vp.Valid() {
		return fmt.Errorf("gpu: invalid viewport %dx%d", vp.Width, vp.Height)
	}
	defer func() {
		if err != nil {
			p.Release()
		}
	}()

	// WebGPU Init
	p.Instance = wgpu.CreateInstance(nil)
	p.Surface = p.Instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(p.Window))

	p.Adapter, err = p.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: p.Surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return fmt.Errorf("gpu: request adapter: %w", err)
	}
	p.Device, err = p.Adapter.RequestDevice(nil)
	if err != nil {
		return fmt.Errorf("gpu: request device: %w", err)
	}
	p.Queue = p.Device.GetQueue()

	caps := p.Surface.GetCapabilities(p.Adapter)
	format, err := pickSurfaceFormat(caps.Formats)
	if err != nil {
		return err
	}
	if len(caps.AlphaModes) == 0 {
		return errors.New("gpu: surface reports no alpha modes")
	}
	p.Config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       uint32(vp.Width),
		Height:      uint32(vp.Height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	p.Surface.Configure(p.Adapter, p.Device, p.Config)

	p.BlitModule, err = p.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Blit",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.BlitWGSL},
	})
	if err != nil {
		return fmt.Errorf("gpu: blit shader: %w", err)
	}

	p.BlitPipeline, err = p.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Blit Pipeline",
		Vertex: wgpu.VertexState{
			Module:     p.BlitModule,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     p.BlitModule,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    format,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: blit pipeline: %w", err)
	}

	p.Sampler, err = p.Device.CreateSampler(&wgpu.SamplerDescriptor{
		MinFilter:     wgpu.FilterModeNearest,
		MagFilter:     wgpu.FilterModeNearest,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("gpu: sampler: %w", err)
	}

	if err = p.setupFrameTexture(vp); err != nil {
		return err
	}
	p.vp = vp
	p.ready = true
	return nil
}

func (p *Presenter) setupFrameTexture(vp core.Viewport) error {
	var err error
	p.FrameTexture, err = p.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Frame Tex",
		Size:          wgpu.Extent3D{Width: uint32(vp.Width), Height: uint32(vp.Height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		SampleCount:   1,
	})
	if err != nil {
		return fmt.Errorf("gpu: frame texture: %w", err)
	}
	p.FrameView, err = p.FrameTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("gpu: frame view: %w", err)
	}

	// Render BG for fullscreen blit
	p.BlitBG, err = p.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: p.BlitPipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: p.FrameView},
			{Binding: 1, Sampler: p.Sampler},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: blit bind group: %w", err)
	}
	return nil
}

// Present uploads img and draws it to the next swapchain image.
func (p *Presenter) Present(img *image.RGBA) error {
	if !p.ready {
		return ErrNotInitialized
	}
	b := img.Bounds()
	if b.Dx() != p.vp.Width || b.Dy() != p.vp.Height {
		return fmt.Errorf("%w: %dx%d vs %dx%d", ErrSizeMismatch, b.Dx(), b.Dy(), p.vp.Width, p.vp.Height)
	}

	p.Queue.WriteTexture(p.FrameTexture.AsImageCopy(), img.Pix, &wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  uint32(img.Stride),
		RowsPerImage: uint32(b.Dy()),
	}, &wgpu.Extent3D{Width: uint32(b.Dx()), Height: uint32(b.Dy()), DepthOrArrayLayers: 1})

	nextTexture, err := p.Surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("gpu: current texture: %w", err)
	}
	defer nextTexture.Release()

	view, err := nextTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("gpu: surface view: %w", err)
	}
	defer view.Release()

	encoder, err := p.Device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("gpu: command encoder: %w", err)
	}
	defer encoder.Release()

	rPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		}},
	})
	rPass.SetPipeline(p.BlitPipeline)
	rPass.SetBindGroup(0, p.BlitBG, nil)
	rPass.Draw(3, 1, 0, 0)
	if err := rPass.End(); err != nil {
		return fmt.Errorf("gpu: render pass: %w", err)
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("gpu: encoder finish: %w", err)
	}
	defer cmd.Release()
	p.Queue.Submit(cmd)
	p.Surface.Present()
	return nil
}

// Release frees GPU objects in reverse creation order. It is safe to call on
// a partially initialized or already released presenter.
func (p *Presenter) Release() {
	p.ready = false
	if p.BlitBG != nil {
		p.BlitBG.Release()
		p.BlitBG = nil
	}
	if p.FrameView != nil {
		p.FrameView.Release()
		p.FrameView = nil
	}
	if p.FrameTexture != nil {
		p.FrameTexture.Release()
		p.FrameTexture = nil
	}
	if p.Sampler != nil {
		p.Sampler.Release()
		p.Sampler = nil
	}
	if p.BlitPipeline != nil {
		p.BlitPipeline.Release()
		p.BlitPipeline = nil
	}
	if p.BlitModule != nil {
		p.BlitModule.Release()
		p.BlitModule = nil
	}
	if p.Queue != nil {
		p.Queue.Release()
		p.Queue = nil
	}
	if p.Device != nil {
		p.Device.Release()
		p.Device = nil
	}
	if p.Adapter != nil {
		p.Adapter.Release()
		p.Adapter = nil
	}
	if p.Surface != nil {
		p.Surface.Release()
		p.Surface = nil
	}
	if p.Instance != nil {
		p.Instance.Release()
		p.Instance = nil
	}
	p.Config = nil
}
