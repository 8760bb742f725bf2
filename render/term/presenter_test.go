package term

import (
	"image"
	"image/color"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/pitwall/backdrop"
	"github.com/pitwall/backdrop/render/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cell struct {
	r     rune
	style tcell.Style
}

// mockScreen records drawn cells.
type mockScreen struct {
	tcell.Screen
	width, height int
	cells         map[[2]int]cell
	shows         int
	clears        int
}

func newMockScreen(w, h int) *mockScreen {
	return &mockScreen{width: w, height: h, cells: make(map[[2]int]cell)}
}

func (m *mockScreen) Size() (int, int) { return m.width, m.height }
func (m *mockScreen) Show()            { m.shows++ }
func (m *mockScreen) Clear()           { m.clears++ }
func (m *mockScreen) SetContent(x, y int, mainc rune, combc []rune, style tcell.Style) {
	m.cells[[2]int{x, y}] = cell{r: mainc, style: style}
}

func TestViewportFor(t *testing.T) {
	assert.Equal(t, core.Viewport{Width: 80, Height: 48}, ViewportFor(newMockScreen(80, 24)))
}

func TestPresenter_Init(t *testing.T) {
	p := NewPresenter(newMockScreen(10, 5))
	assert.Equal(t, backdrop.RendererTerminal, p.Name())
	assert.NoError(t, p.Init(core.Viewport{Width: 10, Height: 10}))
	assert.NoError(t, p.Init(core.Viewport{Width: 10, Height: 9}))
	assert.Error(t, p.Init(core.Viewport{Width: 11, Height: 10}))
	assert.Error(t, p.Init(core.Viewport{Width: 10, Height: 11}))
	assert.Error(t, p.Init(core.Viewport{}))

	assert.ErrorIs(t, NewPresenter(nil).Init(core.Viewport{Width: 1, Height: 1}), ErrNoScreen)
}

func TestPresenter_HalfBlocks(t *testing.T) {
	screen := newMockScreen(2, 2)
	p := NewPresenter(screen)
	require.NoError(t, p.Init(core.Viewport{Width: 2, Height: 3}))

	img := image.NewRGBA(image.Rect(0, 0, 2, 3))
	img.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	img.SetRGBA(0, 1, color.RGBA{B: 255, A: 255})
	img.SetRGBA(1, 2, color.RGBA{G: 200, A: 255})

	require.NoError(t, p.Present(img))
	assert.Equal(t, 1, screen.shows)
	require.Len(t, screen.cells, 4)

	c := screen.cells[[2]int{0, 0}]
	assert.Equal(t, halfBlock, c.r)
	want := tcell.StyleDefault.
		Foreground(tcell.NewRGBColor(255, 0, 0)).
		Background(tcell.NewRGBColor(0, 0, 255))
	assert.Equal(t, want, c.style)

	// The last odd row has no lower pixel.
	c = screen.cells[[2]int{1, 1}]
	want = tcell.StyleDefault.
		Foreground(tcell.NewRGBColor(0, 200, 0)).
		Background(tcell.ColorBlack)
	assert.Equal(t, want, c.style)

	p.Release()
	assert.Equal(t, 1, screen.clears)
	assert.ErrorIs(t, p.Present(img), ErrNotInitialized)
}

func TestPresenter_DrivenByEngine(t *testing.T) {
	screen := newMockScreen(16, 8)
	p := NewPresenter(screen)
	e := backdrop.NewEngine(backdrop.DefaultEngineConfig(), backdrop.WithPresenter(p))
	require.NoError(t, e.Mount(ViewportFor(screen)))
	defer e.Unmount()

	require.Equal(t, backdrop.StateRunning, e.State())
	e.Loop().Pump()
	assert.Equal(t, 1, screen.shows)
	assert.Len(t, screen.cells, 16*8)
}
