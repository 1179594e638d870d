// Package view maps world coordinates (meters on the optical axis) to
// canvas pixels and holds the per-canvas pan/zoom state.
package view

import "math"

const (
	DefaultPixelsPerMeter = 1000.0
	DefaultMinZoom        = 0.01
	DefaultMaxZoom        = 1000.0

	// FitMargin is the fraction of the canvas width left empty on each side
	// by AutoFit.
	FitMargin = 0.05
	// minSpanM keeps AutoFit away from a zero-width extent.
	minSpanM = 1e-6
)

// ViewState is the pan/zoom of one canvas. Pan is in pixels.
type ViewState struct {
	Zoom float64 `json:"zoom"`
	PanX float64 `json:"pan_x"`
	PanY float64 `json:"pan_y"`
}

// Transform carries the fixed scale and zoom bounds shared by all canvases.
type Transform struct {
	PixelsPerMeter float64
	MinZoom        float64
	MaxZoom        float64
}

// DefaultTransform returns the standard 1000 px/m transform.
func DefaultTransform() Transform {
	return Transform{
		PixelsPerMeter: DefaultPixelsPerMeter,
		MinZoom:        DefaultMinZoom,
		MaxZoom:        DefaultMaxZoom,
	}
}

func (t Transform) scale(v ViewState) float64 {
	return t.ppm() * v.Zoom
}

func (t Transform) ppm() float64 {
	if t.PixelsPerMeter <= 0 || math.IsNaN(t.PixelsPerMeter) || math.IsInf(t.PixelsPerMeter, 0) {
		return DefaultPixelsPerMeter
	}
	return t.PixelsPerMeter
}

// ClampZoom bounds z to [MinZoom, MaxZoom].
func (t Transform) ClampZoom(z float64) float64 {
	lo, hi := t.MinZoom, t.MaxZoom
	if lo <= 0 {
		lo = DefaultMinZoom
	}
	if hi < lo {
		hi = DefaultMaxZoom
	}
	if math.IsNaN(z) {
		return lo
	}
	return math.Min(hi, math.Max(lo, z))
}

// WorldToScreen maps a world point to pixels. World y points up, screen y
// points down.
func (t Transform) WorldToScreen(v ViewState, x, y float64) (px, py float64) {
	s := t.scale(v)
	return v.PanX + x*s, v.PanY - y*s
}

// ScreenToWorld is the inverse of WorldToScreen.
func (t Transform) ScreenToWorld(v ViewState, px, py float64) (x, y float64) {
	s := t.scale(v)
	return (px - v.PanX) / s, (v.PanY - py) / s
}

// Length converts a world length to pixels.
func (t Transform) Length(v ViewState, m float64) float64 {
	return m * t.scale(v)
}

// AutoFit frames the x-extents so they fill the canvas width between the
// margins, with the optical axis at mid-height. Non-finite extents are
// ignored.
func (t Transform) AutoFit(extentsM []float64, widthPx, heightPx float64) ViewState {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, x := range extentsM {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	if math.IsInf(lo, 0) {
		lo, hi = 0, 0
	}
	span := hi - lo
	if span < minSpanM {
		mid := (lo + hi) / 2
		lo, span = mid-minSpanM/2, minSpanM
	}
	if widthPx <= 0 {
		widthPx = 1
	}
	usable := widthPx * (1 - 2*FitMargin)
	zoom := t.ClampZoom(usable / (span * t.ppm()))
	return ViewState{
		Zoom: zoom,
		PanX: FitMargin*widthPx - lo*t.ppm()*zoom,
		PanY: heightPx / 2,
	}
}

// ZoomAtCursor multiplies the zoom by factor and moves the pan so the
// world point under (cx, cy) stays there. Non-positive and non-finite
// factors leave v unchanged.
func (t Transform) ZoomAtCursor(v ViewState, factor, cx, cy float64) ViewState {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return v
	}
	wx, wy := t.ScreenToWorld(v, cx, cy)
	zoom := t.ClampZoom(v.Zoom * factor)
	s := t.ppm() * zoom
	return ViewState{
		Zoom: zoom,
		PanX: cx - wx*s,
		PanY: cy + wy*s,
	}
}

// Pan shifts the view by a pixel delta. Pan is never clamped.
func Pan(v ViewState, dx, dy float64) ViewState {
	if math.IsNaN(dx) || math.IsInf(dx, 0) {
		dx = 0
	}
	if math.IsNaN(dy) || math.IsInf(dy, 0) {
		dy = 0
	}
	v.PanX += dx
	v.PanY += dy
	return v
}
