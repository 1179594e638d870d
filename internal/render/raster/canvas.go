// Package raster is an in-memory RGBA canvas for the scene renderer. It
// backs PNG output and the desktop viewer's framebuffer.
package raster

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"

	"visionlab/internal/render"
)

const (
	dashOn  = 6.0
	dashOff = 4.0
)

// Canvas draws into an *image.RGBA with alpha blending. Paths go through an
// anti-aliasing rasterizer; text is drawn pixel by pixel.
type Canvas struct {
	img  *image.RGBA
	font tinyfont.Fonter
	z    vector.Rasterizer
}

var _ render.Canvas = (*Canvas)(nil)

// New allocates a w x h canvas.
func New(w, h int) *Canvas {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return FromImage(image.NewRGBA(image.Rect(0, 0, w, h)))
}

// FromImage draws into an existing buffer, such as one band of a stacked
// image.
func FromImage(img *image.RGBA) *Canvas {
	return &Canvas{img: img, font: &tinyfont.TomThumb}
}

// RGBA returns the underlying buffer.
func (c *Canvas) RGBA() *image.RGBA { return c.img }

func (c *Canvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

// EncodePNG writes the canvas as a PNG image.
func (c *Canvas) EncodePNG(w io.Writer) error {
	return png.Encode(w, c.img)
}

func (c *Canvas) Fill(col color.RGBA) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(color.NRGBA(col)), image.Point{}, draw.Src)
}

func (c *Canvas) blend(x, y int, col color.RGBA) {
	b := c.img.Bounds()
	if x < b.Min.X || y < b.Min.Y || x >= b.Max.X || y >= b.Max.Y || col.A == 0 {
		return
	}
	off := c.img.PixOffset(x, y)
	p := c.img.Pix[off : off+4 : off+4]
	if col.A == 0xff {
		p[0], p[1], p[2], p[3] = col.R, col.G, col.B, 0xff
		return
	}
	a := uint32(col.A)
	inv := 255 - a
	p[0] = uint8((uint32(col.R)*a + uint32(p[0])*inv) / 255)
	p[1] = uint8((uint32(col.G)*a + uint32(p[1])*inv) / 255)
	p[2] = uint8((uint32(col.B)*a + uint32(p[2])*inv) / 255)
	p[3] = uint8(a + uint32(p[3])*inv/255)
}

// fill rasterizes the closed path pts with the nonzero rule. Canvas
// coordinates address pixel centres.
func (c *Canvas) fill(pts []render.Vec, col color.RGBA) {
	if len(pts) < 3 || col.A == 0 {
		return
	}
	w, h := c.Size()
	shifted := make([]render.Vec, len(pts))
	for i, p := range pts {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return
		}
		shifted[i] = render.Vec{X: p.X + 0.5, Y: p.Y + 0.5}
	}
	// The rasterizer walks every row between a path's end points, so the
	// path is cut down to the canvas first.
	poly := clipPolygon(shifted, float64(w), float64(h))
	if len(poly) < 3 {
		return
	}
	minX, minY, maxX, maxY := poly[0].X, poly[0].Y, poly[0].X, poly[0].Y
	for _, p := range poly[1:] {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	x0, y0 := int(math.Floor(minX)), int(math.Floor(minY))
	x1, y1 := int(math.Ceil(maxX)), int(math.Ceil(maxY))
	if x1 <= x0 || y1 <= y0 {
		return
	}
	c.z.Reset(x1-x0, y1-y0)
	c.z.MoveTo(float32(poly[0].X-float64(x0)), float32(poly[0].Y-float64(y0)))
	for _, p := range poly[1:] {
		c.z.LineTo(float32(p.X-float64(x0)), float32(p.Y-float64(y0)))
	}
	c.z.ClosePath()
	r := image.Rect(x0, y0, x1, y1).Add(c.img.Bounds().Min)
	c.z.Draw(c.img, r, image.NewUniform(color.NRGBA(col)), image.Point{})
}

// stroke draws a-b as a quad with square caps.
func (c *Canvas) stroke(a, b render.Vec, width float64, col color.RGBA) {
	hw := math.Max(width, 1) / 2
	dx, dy := b.X-a.X, b.Y-a.Y
	ux, uy := 1.0, 0.0
	if l := math.Hypot(dx, dy); l > 0 {
		ux, uy = dx/l, dy/l
	}
	ax, ay := a.X-ux*hw, a.Y-uy*hw
	bx, by := b.X+ux*hw, b.Y+uy*hw
	nx, ny := -uy*hw, ux*hw
	c.fill([]render.Vec{
		{X: ax + nx, Y: ay + ny},
		{X: bx + nx, Y: by + ny},
		{X: bx - nx, Y: by - ny},
		{X: ax - nx, Y: ay - ny},
	}, col)
}

// segment draws a-b and returns the dash phase to carry into the next
// segment of a polyline.
func (c *Canvas) segment(a, b render.Vec, s render.Stroke, phase float64) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if math.IsNaN(length) || math.IsInf(length, 0) {
		return phase
	}
	if !s.Dashed || length == 0 {
		c.stroke(a, b, s.Width, s.Color)
		return phase + length
	}
	at := func(t float64) render.Vec {
		return render.Vec{X: a.X + dx*t/length, Y: a.Y + dy*t/length}
	}
	for t := 0.0; t < length; {
		pos := math.Mod(phase+t, dashOn+dashOff)
		if pos >= dashOn {
			t += dashOn + dashOff - pos
			continue
		}
		end := math.Min(length, t+dashOn-pos)
		c.stroke(at(t), at(end), s.Width, s.Color)
		t = end
	}
	return phase + length
}

func (c *Canvas) Line(a, b render.Vec, s render.Stroke) {
	c.segment(a, b, s, 0)
}

func (c *Canvas) Polyline(pts []render.Vec, s render.Stroke) {
	phase := 0.0
	for i := 0; i+1 < len(pts); i++ {
		phase = c.segment(pts[i], pts[i+1], s, phase)
	}
}

// Polygon fills with the nonzero rule, then strokes the outline.
func (c *Canvas) Polygon(pts []render.Vec, fill color.RGBA, outline render.Stroke) {
	if len(pts) < 3 {
		return
	}
	c.fill(pts, fill)
	if outline.Width > 0 {
		closed := append(append([]render.Vec{}, pts...), pts[0])
		c.Polyline(closed, outline)
	}
}

// Text writes one line with its baseline at y.
func (c *Canvas) Text(at render.Vec, s string, col color.RGBA) {
	if math.IsNaN(at.X) || math.IsNaN(at.Y) || math.Abs(at.X) > math.MaxInt16 || math.Abs(at.Y) > math.MaxInt16 {
		return
	}
	tinyfont.WriteLine(display{c}, c.font, int16(at.X), int16(at.Y), s, col)
}

// TextWidth returns the pixel width of s in the canvas font.
func (c *Canvas) TextWidth(s string) int {
	_, outbox := tinyfont.LineWidth(c.font, s)
	return int(outbox)
}

// Image draws src scaled into the pixel rectangle (x, y, w, h) with
// bilinear filtering.
func (c *Canvas) Image(src image.Image, x, y, w, h float64) {
	if src == nil || !(w > 0 && h > 0) || src.Bounds().Empty() {
		return
	}
	const limit = 1 << 30
	for _, v := range []float64{x, y, x + w, y + h} {
		if math.IsNaN(v) || math.Abs(v) > limit {
			return
		}
	}
	b := c.img.Bounds()
	dr := image.Rect(int(math.Round(x)), int(math.Round(y)), int(math.Round(x+w)), int(math.Round(y+h))).Add(b.Min)
	if dr.Empty() || !dr.Overlaps(b) {
		return
	}
	draw.ApproxBiLinear.Scale(c.img, dr, src, src.Bounds(), draw.Over, nil)
}

// display adapts the canvas to the driver interface tinyfont draws on.
type display struct {
	c *Canvas
}

var _ drivers.Displayer = display{}

func (d display) Size() (x, y int16) {
	w, h := d.c.Size()
	return int16(w), int16(h)
}

func (d display) SetPixel(x, y int16, col color.RGBA) {
	d.c.blend(int(x), int(y), col)
}

func (d display) Display() error { return nil }
