// Package pdf renders diagrams as vector PDF pages. One canvas pixel maps
// to one PDF point.
package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/jung-kurt/gofpdf"

	"visionlab/internal/render"
)

// Canvas is a render.Canvas writing to the current page of a PDF document.
type Canvas struct {
	doc    *gofpdf.Fpdf
	w, h   int
	images int
}

var _ render.Canvas = (*Canvas)(nil)

// New starts a document whose pages are w x h points and opens the first
// page.
func New(w, h int) *Canvas {
	doc := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "L",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: float64(w), Ht: float64(h)},
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.SetFont("Helvetica", "", 8)
	doc.SetCreator("visionlab", true)
	c := &Canvas{doc: doc, w: w, h: h}
	c.NextPage()
	return c
}

// NextPage starts a new page; later drawing goes there.
func (c *Canvas) NextPage() {
	c.doc.AddPageFormat("L", gofpdf.SizeType{Wd: float64(c.w), Ht: float64(c.h)})
}

// Write finishes the document.
func (c *Canvas) Write(w io.Writer) error {
	if err := c.doc.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func (c *Canvas) Size() (int, int) { return c.w, c.h }

func (c *Canvas) setAlpha(a uint8) {
	c.doc.SetAlpha(float64(a)/255, "Normal")
}

func (c *Canvas) Fill(col color.RGBA) {
	c.setAlpha(col.A)
	c.doc.SetFillColor(int(col.R), int(col.G), int(col.B))
	c.doc.Rect(0, 0, float64(c.w), float64(c.h), "F")
	c.setAlpha(0xff)
}

func (c *Canvas) stroke(s render.Stroke) {
	c.setAlpha(s.Color.A)
	c.doc.SetDrawColor(int(s.Color.R), int(s.Color.G), int(s.Color.B))
	w := s.Width
	if w <= 0 {
		w = 1
	}
	c.doc.SetLineWidth(w)
	if s.Dashed {
		c.doc.SetDashPattern([]float64{6, 4}, 0)
	} else {
		c.doc.SetDashPattern([]float64{}, 0)
	}
}

func (c *Canvas) reset() {
	c.doc.SetDashPattern([]float64{}, 0)
	c.setAlpha(0xff)
}

func (c *Canvas) Line(a, b render.Vec, s render.Stroke) {
	c.stroke(s)
	c.doc.Line(a.X, a.Y, b.X, b.Y)
	c.reset()
}

func (c *Canvas) Polyline(pts []render.Vec, s render.Stroke) {
	if len(pts) < 2 {
		return
	}
	c.stroke(s)
	c.doc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		c.doc.LineTo(p.X, p.Y)
	}
	c.doc.DrawPath("D")
	c.reset()
}

func (c *Canvas) Polygon(pts []render.Vec, fill color.RGBA, outline render.Stroke) {
	if len(pts) < 3 {
		return
	}
	points := make([]gofpdf.PointType, 0, len(pts))
	for _, p := range pts {
		points = append(points, gofpdf.PointType{X: p.X, Y: p.Y})
	}
	c.setAlpha(fill.A)
	c.doc.SetFillColor(int(fill.R), int(fill.G), int(fill.B))
	c.doc.Polygon(points, "F")
	if outline.Width > 0 {
		c.stroke(outline)
		c.doc.Polygon(points, "D")
	}
	c.reset()
}

func (c *Canvas) Text(at render.Vec, s string, col color.RGBA) {
	c.doc.SetTextColor(int(col.R), int(col.G), int(col.B))
	c.doc.Text(at.X, at.Y, s)
}

// Image embeds src as a PNG.
func (c *Canvas) Image(src image.Image, x, y, w, h float64) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		c.doc.SetError(fmt.Errorf("encode object image: %w", err))
		return
	}
	c.images++
	name := fmt.Sprintf("object-%d", c.images)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	c.doc.RegisterImageOptionsReader(name, opts, &buf)
	c.doc.ImageOptions(name, x, y, w, h, false, opts, 0, "")
}
