// Package desktop runs the viewer in an ebiten window: the overview on
// top, the zoomable detail below and a status panel at the bottom.
package desktop

import (
	"image/color"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"visionlab/internal/gameclient"
	"visionlab/internal/render"
	"visionlab/internal/render/raster"
	"visionlab/internal/viewer"
)

const lineHeight = 9

var (
	statusBackground = color.RGBA{R: 0x2a, G: 0x2a, B: 0x30, A: 0xff}
	statusText       = color.RGBA{R: 0xee, G: 0xee, B: 0xe6, A: 0xff}
	statusAccent     = color.RGBA{R: 0xf0, G: 0xc0, B: 0x60, A: 0xff}
)

var keymap = []struct {
	key ebiten.Key
	act viewer.Action
}{
	{ebiten.KeyArrowUp, viewer.ActErrorUp},
	{ebiten.KeyArrowDown, viewer.ActErrorDown},
	{ebiten.KeyArrowLeft, viewer.ActCloser},
	{ebiten.KeyArrowRight, viewer.ActFarther},
	{ebiten.KeyL, viewer.ActCycleLens},
	{ebiten.KeyPageUp, viewer.ActPowerUp},
	{ebiten.KeyPageDown, viewer.ActPowerDown},
	{ebiten.KeyBracketRight, viewer.ActShiftUp},
	{ebiten.KeyBracketLeft, viewer.ActShiftDown},
	{ebiten.KeyR, viewer.ActToggleRelaxed},
	{ebiten.KeyHome, viewer.ActResetView},
	{ebiten.KeyQ, viewer.ActLens1Up},
	{ebiten.KeyA, viewer.ActLens1Down},
	{ebiten.KeyW, viewer.ActLens2Up},
	{ebiten.KeyS, viewer.ActLens2Down},
	{ebiten.KeyN, viewer.ActNewRound},
	{ebiten.KeyEnter, viewer.ActAsk},
	{ebiten.KeyG, viewer.ActSubmit},
	{ebiten.KeyP, viewer.ActSpoiler},
}

const helpLine = "arrows: error/distance  L: lens  PgUp/PgDn: power  [ ]: shift  R: relaxed  Home: fit  Q/A W/S: test lenses  N new  Enter ask  G guess  P spoiler"

// Window implements ebiten.Game.
type Window struct {
	m      *viewer.Model
	async  *gameclient.Async
	logger *log.Logger

	w, h, statusH int

	overview, detail, status          *raster.Canvas
	overviewImg, detailImg, statusImg *ebiten.Image

	dirty    bool
	inDetail bool
}

// NewWindow wraps a model whose canvases are w x h pixels. async may be
// nil when no game server is configured.
func NewWindow(m *viewer.Model, async *gameclient.Async, w, h int, logger *log.Logger) *Window {
	if logger == nil {
		logger = log.Default()
	}
	statusH := lineHeight * 11
	return &Window{
		m: m, async: async, logger: logger,
		w: w, h: h, statusH: statusH,
		overview:    raster.New(w, h),
		detail:      raster.New(w, h),
		status:      raster.New(w, statusH),
		overviewImg: ebiten.NewImage(w, h),
		detailImg:   ebiten.NewImage(w, h),
		statusImg:   ebiten.NewImage(w, statusH),
		dirty:       true,
	}
}

// Run opens the window and blocks until it is closed.
func Run(win *Window, title string) error {
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(win.w, 2*win.h+win.statusH)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)
	return ebiten.RunGame(win)
}

func (g *Window) Update() error {
	if g.async != nil {
		for {
			r, ok := g.async.Poll()
			if !ok {
				break
			}
			g.m.HandleReply(r)
			g.dirty = true
		}
	}

	for _, k := range keymap {
		if inpututil.IsKeyJustPressed(k.key) {
			g.m.Apply(k.act)
			g.dirty = true
		}
	}

	cx, cy := ebiten.CursorPosition()
	x, y := float64(cx), float64(cy-g.h)
	over := ebiten.IsFocused() && cx >= 0 && cx < g.w && cy >= g.h && cy < 2*g.h
	if g.inDetail && !over {
		g.m.Leave()
	}
	g.inDetail = over

	if over {
		if _, wy := ebiten.Wheel(); wy != 0 && g.m.Wheel(x, y, wy) {
			g.dirty = true
		}
		if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
			g.m.Press(x, y)
		}
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.m.Release()
	}
	if g.m.Move(x, y) {
		g.dirty = true
	}
	return nil
}

func (g *Window) redraw() {
	if _, err := g.m.RenderOverview(g.overview); err != nil {
		g.logger.Warn("render overview", "err", err)
	}
	if _, err := g.m.RenderDetail(g.detail); err != nil {
		g.logger.Warn("render detail", "err", err)
	}

	g.status.Fill(statusBackground)
	lines := []string{g.m.Summary(), g.m.GameLine(), g.m.Status}
	for i, line := range lines {
		col := statusText
		if i == 2 {
			col = statusAccent
		}
		g.status.Text(render.Vec{X: 4, Y: float64((i + 1) * lineHeight)}, line, col)
	}
	for i, line := range g.m.Log {
		g.status.Text(render.Vec{X: 4, Y: float64((i + 4) * lineHeight)}, line, statusText)
	}
	g.status.Text(render.Vec{X: 4, Y: float64(g.statusH - 3)}, helpLine, statusAccent)

	g.overviewImg.WritePixels(g.overview.RGBA().Pix)
	g.detailImg.WritePixels(g.detail.RGBA().Pix)
	g.statusImg.WritePixels(g.status.RGBA().Pix)
}

func (g *Window) Draw(screen *ebiten.Image) {
	if g.dirty {
		g.redraw()
		g.dirty = false
	}
	screen.DrawImage(g.overviewImg, nil)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(0, float64(g.h))
	screen.DrawImage(g.detailImg, op)
	op = &ebiten.DrawImageOptions{}
	op.GeoM.Translate(0, float64(2*g.h))
	screen.DrawImage(g.statusImg, op)
}

func (g *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.w, 2*g.h + g.statusH
}
