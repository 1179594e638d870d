package render

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strings"

	"visionlab/internal/optics"
	"visionlab/internal/view"
)

// ErrMissingPrerequisite is returned when a draw cannot start: no canvas,
// an empty canvas, or a scene that was never built.
var ErrMissingPrerequisite = errors.New("render: missing prerequisite")

// Options tunes a single draw.
type Options struct {
	Title string
	// ObjectImage replaces the object arrow when set. It is drawn standing
	// on the optical axis, scaled to the object height.
	ObjectImage image.Image
	// HideCaption skips the focus text at the bottom of the canvas.
	HideCaption bool
}

// Report is what a draw tells the caller besides the pixels.
type Report struct {
	Focus     Focus
	Rays      []optics.Polyline
	Converges bool
}

// Render draws the scene through the given view. When the scene cannot be
// drawn but the canvas is usable, a placeholder is painted and the error
// still returned.
func Render(s optics.Scene, tr view.Transform, v view.ViewState, c Canvas, opts Options) (Report, error) {
	if c == nil {
		return Report{}, fmt.Errorf("%w: no canvas", ErrMissingPrerequisite)
	}
	w, h := c.Size()
	if w <= 0 || h <= 0 {
		return Report{}, fmt.Errorf("%w: canvas is %dx%d", ErrMissingPrerequisite, w, h)
	}
	if len(s.Lenses) == 0 || !(s.RetinaPositionM > 0) {
		Placeholder(c, "scene unavailable")
		return Report{}, fmt.Errorf("%w: scene was not built", ErrMissingPrerequisite)
	}
	if !(v.Zoom > 0) {
		Placeholder(c, "view unavailable")
		return Report{}, fmt.Errorf("%w: zoom %v", ErrMissingPrerequisite, v.Zoom)
	}

	d := drawer{c: c, tr: tr, v: v, bounds: rect{x0: -2, y0: -2, x1: float64(w) + 2, y1: float64(h) + 2}, w: float64(w), h: float64(h)}
	rays := optics.TraceRays(s)
	focus := DescribeFocus(s)

	c.Fill(colorBackground)
	d.axis()
	d.retina(s)
	d.object(s, opts.ObjectImage)
	for _, l := range s.Lenses {
		d.lens(l)
	}
	for _, l := range s.Lenses {
		d.crosshair(l)
	}
	d.rays(rays)
	for i := 0; i < len(s.Images)-1; i++ {
		d.imageMarker(s.Images[i], s.ImageWorldX(i), true)
	}
	d.imageMarker(s.FinalImage(), s.FinalImageWorldX(), false)

	if opts.Title != "" {
		c.Text(Vec{X: 6, Y: 10}, opts.Title, colorText)
	}
	if !opts.HideCaption {
		c.Text(Vec{X: 6, Y: float64(h) - 6}, focus.Text, colorText)
	}

	return Report{Focus: focus, Rays: rays, Converges: optics.RaysConverge(s, rays, 1e-6)}, nil
}

// Placeholder paints a neutral background with a message in place of a
// diagram. A nil or empty canvas is left alone.
func Placeholder(c Canvas, msg string) {
	if c == nil {
		return
	}
	w, h := c.Size()
	if w <= 0 || h <= 0 {
		return
	}
	c.Fill(colorPlaceBG)
	c.Text(Vec{X: 8, Y: float64(h) / 2}, msg, colorText)
}

type drawer struct {
	c      Canvas
	tr     view.Transform
	v      view.ViewState
	bounds rect
	w, h   float64
}

func (d drawer) pt(x, y float64) Vec {
	px, py := d.tr.WorldToScreen(d.v, x, y)
	return Vec{X: px, Y: py}
}

func finite(p Vec) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

func (d drawer) line(a, b Vec, s Stroke) {
	if !finite(a) || !finite(b) {
		return
	}
	a, b, ok := clipLine(a, b, d.bounds)
	if !ok {
		return
	}
	d.c.Line(a, b, s)
}

func (d drawer) axis() {
	y := d.v.PanY
	d.line(Vec{X: 0, Y: y}, Vec{X: d.w, Y: y}, Stroke{Color: colorAxis, Width: 1, Dashed: true})
}

// glyphHalf is the half-height in pixels of lens and retina glyphs. They
// follow the canvas, not the world, so they stay readable at any zoom.
func (d drawer) glyphHalf() float64 {
	return 0.38 * d.h
}

func (d drawer) retina(s optics.Scene) {
	p := d.pt(s.RetinaPositionM, 0)
	half := 0.6 * d.glyphHalf()
	d.line(Vec{X: p.X, Y: p.Y - half}, Vec{X: p.X, Y: p.Y + half}, Stroke{Color: colorRetina, Width: 3})
	if p.X >= 0 && p.X < d.w {
		d.c.Text(Vec{X: p.X + 4, Y: p.Y - half + 8}, "retina", colorRetina)
	}
}

func (d drawer) object(s optics.Scene, img image.Image) {
	x := s.Object.PositionM
	if math.IsInf(x, 0) {
		d.c.Text(Vec{X: 6, Y: d.v.PanY - 6}, "object at infinity", colorObject)
		return
	}
	base := d.pt(x, 0)
	tip := d.pt(x, s.Object.HeightM)
	if img != nil {
		b := img.Bounds()
		if b.Dx() > 0 && b.Dy() > 0 {
			hpx := base.Y - tip.Y
			wpx := hpx * float64(b.Dx()) / float64(b.Dy())
			if finite(tip) && hpx > 0 && hpx < 8*d.h && base.X+wpx/2 > 0 && base.X-wpx/2 < d.w {
				d.c.Image(img, base.X-wpx/2, tip.Y, wpx, hpx)
			}
			return
		}
	}
	d.arrow(base, tip, Stroke{Color: colorObject, Width: 2})
}

func (d drawer) arrow(base, tip Vec, s Stroke) {
	d.line(base, tip, s)
	if !finite(tip) || !finite(base) {
		return
	}
	dir := 1.0
	if tip.Y > base.Y {
		dir = -1
	}
	const head = 6
	if tip.X < -head || tip.X > d.w+head || tip.Y < -head || tip.Y > d.h+head {
		return
	}
	d.c.Polygon([]Vec{
		tip,
		{X: tip.X - head/2, Y: tip.Y + dir*head},
		{X: tip.X + head/2, Y: tip.Y + dir*head},
	}, s.Color, Stroke{Color: s.Color, Width: 1})
}

// lensOutline returns a closed lens shape centred on c: biconvex for
// positive power, biconcave for negative, a thin slab for zero.
func lensOutline(c Vec, half, powerD float64) []Vec {
	const (
		steps = 12
		thin  = 2.0
		bulge = 7.0
	)
	profile := func(t float64) float64 {
		switch {
		case powerD > 1e-9:
			return thin + bulge*(1-t*t)
		case powerD < -1e-9:
			return thin + bulge*t*t
		default:
			return thin
		}
	}
	pts := make([]Vec, 0, 2*(steps+1))
	for i := 0; i <= steps; i++ {
		t := -1 + 2*float64(i)/steps
		pts = append(pts, Vec{X: c.X + profile(t), Y: c.Y + t*half})
	}
	for i := steps; i >= 0; i-- {
		t := -1 + 2*float64(i)/steps
		pts = append(pts, Vec{X: c.X - profile(t), Y: c.Y + t*half})
	}
	return pts
}

func (d drawer) lens(l optics.LensSpec) {
	c := d.pt(l.PositionM, 0)
	if !finite(c) || c.X < -20 || c.X > d.w+20 {
		return
	}
	fill := colorLensFill
	label := fmt.Sprintf("%+.2f D", l.PowerD)
	if l.Role == optics.RoleEye {
		fill = colorEyeFill
		label = "eye " + label
	}
	half := d.glyphHalf()
	d.c.Polygon(lensOutline(c, half, l.PowerD), fill, Stroke{Color: colorLensEdge, Width: 1})
	y := c.Y - half - 4
	if l.Role == optics.RoleCorrective {
		y = c.Y + half + 10
	}
	d.c.Text(Vec{X: c.X - 12, Y: y}, label, colorLensEdge)
}

func (d drawer) crosshair(l optics.LensSpec) {
	c := d.pt(l.PositionM, 0)
	const r = 4
	s := Stroke{Color: colorCross, Width: 1}
	d.line(Vec{X: c.X - r, Y: c.Y}, Vec{X: c.X + r, Y: c.Y}, s)
	d.line(Vec{X: c.X, Y: c.Y - r}, Vec{X: c.X, Y: c.Y + r}, s)
}

func (d drawer) rays(rays []optics.Polyline) {
	idx := 0
	colors := map[string]int{}
	for _, r := range rays {
		name := strings.TrimSuffix(r.Name, "-virtual")
		ci, ok := colors[name]
		if !ok {
			ci = idx % len(rayPalette)
			colors[name] = ci
			idx++
		}
		base := rayPalette[ci]
		for i := 0; i+1 < len(r.Points); i++ {
			a := d.pt(r.Points[i].X, r.Points[i].Y)
			b := d.pt(r.Points[i+1].X, r.Points[i+1].Y)
			s := Stroke{Color: shade(base, r.Stages[i]), Width: 1.5}
			if r.Virtual {
				s.Color.A = 0xa0
				s.Dashed = true
				s.Width = 1
			}
			d.line(a, b, s)
		}
	}
}

func (d drawer) imageMarker(img optics.ImagePoint, x float64, intermediate bool) {
	if img.State != optics.ImageFinite || math.IsInf(x, 0) || math.IsNaN(x) {
		return
	}
	s := Stroke{Color: colorImage, Width: 2, Dashed: intermediate}
	if intermediate {
		s.Color.A = 0x90
		s.Width = 1
	}
	d.arrow(d.pt(x, 0), d.pt(x, img.HeightM), s)
}
