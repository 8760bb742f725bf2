package gpu

import (
	"image"
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pitwall/backdrop"
	"github.com/pitwall/backdrop/render/core"
	"github.com/pitwall/backdrop/render/gpu/shaders"
	"github.com/stretchr/testify/assert"
)

func TestPickSurfaceFormat(t *testing.T) {
	f, err := pickSurfaceFormat([]wgpu.TextureFormat{wgpu.TextureFormatBGRA8UnormSrgb, wgpu.TextureFormatBGRA8Unorm})
	assert.NoError(t, err)
	assert.Equal(t, wgpu.TextureFormatBGRA8Unorm, f)

	f, err = pickSurfaceFormat([]wgpu.TextureFormat{wgpu.TextureFormatRGBA8UnormSrgb})
	assert.NoError(t, err)
	assert.Equal(t, wgpu.TextureFormatRGBA8UnormSrgb, f, "falls back to the first format")

	_, err = pickSurfaceFormat(nil)
	assert.Error(t, err)
}

func TestPresenterWithoutWindow(t *testing.T) {
	p := NewPresenter(nil)
	assert.Equal(t, backdrop.RendererWGPU, p.Name())
	assert.ErrorIs(t, p.Init(core.Viewport{Width: 64, Height: 64}), ErrNoWindow)
	assert.ErrorIs(t, p.Present(image.NewRGBA(image.Rect(0, 0, 64, 64))), ErrNotInitialized)
	assert.NotPanics(t, func() {
		p.Release()
		p.Release()
	})
}

func TestBlitShaderEntryPoints(t *testing.T) {
	assert.True(t, strings.Contains(shaders.BlitWGSL, "fn vs_main"))
	assert.True(t, strings.Contains(shaders.BlitWGSL, "fn fs_main"))
}
