package term

import (
	"errors"
	"fmt"
	"image"

	"github.com/gdamore/tcell/v2"
	"github.com/pitwall/backdrop"
	"github.com/pitwall/backdrop/render/core"
)

// halfBlock paints the upper pixel as foreground and the lower as background,
// so one cell carries two vertical pixels.
const halfBlock = '▀'

var (
	ErrNoScreen       = errors.New("term: no screen")
	ErrNotInitialized = errors.New("term: presenter not initialized")
)

// Presenter draws frames into a terminal with half-block cells. The host owns
// the screen lifecycle (Init, Fini, event polling); the presenter only draws.
type Presenter struct {
	screen tcell.Screen
	vp     core.Viewport
	ready  bool
}

func NewPresenter(screen tcell.Screen) *Presenter {
	return &Presenter{screen: screen}
}

func (p *Presenter) Name() backdrop.RendererName { return backdrop.RendererTerminal }

// ViewportFor is the pixel viewport matching the screen's current cell grid.
func ViewportFor(screen tcell.Screen) core.Viewport {
	cols, rows := screen.Size()
	return core.Viewport{Width: cols, Height: rows * 2}
}

func (p *Presenter) Init(vp core.Viewport) error {
	if p.screen == nil {
		return ErrNoScreen
	}
	if !vp.Valid() {
		return fmt.Errorf("term: invalid viewport %dx%d", vp.Width, vp.Height)
	}
	cols, rows := p.screen.Size()
	if vp.Width > cols || (vp.Height+1)/2 > rows {
		return fmt.Errorf("term: %dx%d pixels do not fit %dx%d cells", vp.Width, vp.Height, cols, rows)
	}
	p.vp = vp
	p.ready = true
	return nil
}

func rgb(img *image.RGBA, x, y int) tcell.Color {
	c := img.RGBAAt(x, y)
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func (p *Presenter) Present(img *image.RGBA) error {
	if !p.ready {
		return ErrNotInitialized
	}
	b := img.Bounds()
	w, h := min(b.Dx(), p.vp.Width), min(b.Dy(), p.vp.Height)
	for cy := 0; cy*2 < h; cy++ {
		top := b.Min.Y + cy*2
		for x := 0; x < w; x++ {
			style := tcell.StyleDefault.Foreground(rgb(img, b.Min.X+x, top))
			if cy*2+1 < h {
				style = style.Background(rgb(img, b.Min.X+x, top+1))
			} else {
				style = style.Background(tcell.ColorBlack)
			}
			p.screen.SetContent(x, cy, halfBlock, nil, style)
		}
	}
	p.screen.Show()
	return nil
}

func (p *Presenter) Release() {
	if p.ready && p.screen != nil {
		p.screen.Clear()
	}
	p.ready = false
}
