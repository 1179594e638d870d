// Package render draws an optical scene onto a Canvas through a view
// transform and produces the focus description shown next to it.
package render

import (
	"image"
	"image/color"
)

// Vec is a point in canvas pixels.
type Vec struct {
	X, Y float64
}

// Stroke describes how a line is drawn.
type Stroke struct {
	Color  color.RGBA
	Width  float64
	Dashed bool
}

// Canvas is a pixel surface the renderer can draw on. Coordinates are in
// pixels with the origin at the top-left corner. Text y is the baseline.
type Canvas interface {
	Size() (w, h int)
	Fill(c color.RGBA)
	Line(a, b Vec, s Stroke)
	Polyline(pts []Vec, s Stroke)
	Polygon(pts []Vec, fill color.RGBA, outline Stroke)
	Text(at Vec, text string, c color.RGBA)
	Image(img image.Image, x, y, w, h float64)
}

var (
	colorBackground = color.RGBA{R: 0xfb, G: 0xfa, B: 0xf6, A: 0xff}
	colorAxis       = color.RGBA{R: 0x9a, G: 0x9a, B: 0x9a, A: 0xff}
	colorRetina     = color.RGBA{R: 0xb0, G: 0x30, B: 0x60, A: 0xff}
	colorObject     = color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff}
	colorLensEdge   = color.RGBA{R: 0x2a, G: 0x5d, B: 0x8f, A: 0xff}
	colorLensFill   = color.RGBA{R: 0xa8, G: 0xcc, B: 0xea, A: 0x90}
	colorEyeFill    = color.RGBA{R: 0xe9, G: 0xd6, B: 0x9a, A: 0x90}
	colorCross      = color.RGBA{R: 0x40, G: 0x40, B: 0x40, A: 0xff}
	colorImage      = color.RGBA{R: 0x7b, G: 0x2f, B: 0xbe, A: 0xff}
	colorText       = color.RGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xff}
	colorPlaceBG    = color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}

	rayPalette = []color.RGBA{
		{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
		{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
		{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
		{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	}
)

// shade darkens c a little for every propagation stage, so each segment
// of a ray can be told apart from the one before it.
func shade(c color.RGBA, stage int) color.RGBA {
	f := 1.0
	for i := 0; i < stage; i++ {
		f *= 0.72
	}
	return color.RGBA{
		R: uint8(float64(c.R) * f),
		G: uint8(float64(c.G) * f),
		B: uint8(float64(c.B) * f),
		A: c.A,
	}
}
