package raster

import "visionlab/internal/render"

// clipPolygon cuts pts down to the rectangle [0,w]x[0,h]
// (Sutherland-Hodgman). The result may have fewer than three points.
func clipPolygon(pts []render.Vec, w, h float64) []render.Vec {
	out := pts
	for edge := 0; edge < 4 && len(out) > 0; edge++ {
		in := out
		out = make([]render.Vec, 0, len(in)+4)
		prev := in[len(in)-1]
		for _, cur := range in {
			curIn, prevIn := inside(cur, edge, w, h), inside(prev, edge, w, h)
			switch {
			case curIn && !prevIn:
				out = append(out, crossing(prev, cur, edge, w, h), cur)
			case curIn:
				out = append(out, cur)
			case prevIn:
				out = append(out, crossing(prev, cur, edge, w, h))
			}
			prev = cur
		}
	}
	return out
}

func inside(p render.Vec, edge int, w, h float64) bool {
	switch edge {
	case 0:
		return p.X >= 0
	case 1:
		return p.X <= w
	case 2:
		return p.Y >= 0
	default:
		return p.Y <= h
	}
}

// crossing returns where a-b meets the edge; a and b lie on opposite sides.
func crossing(a, b render.Vec, edge int, w, h float64) render.Vec {
	var t float64
	switch edge {
	case 0:
		t = (0 - a.X) / (b.X - a.X)
	case 1:
		t = (w - a.X) / (b.X - a.X)
	case 2:
		t = (0 - a.Y) / (b.Y - a.Y)
	default:
		t = (h - a.Y) / (b.Y - a.Y)
	}
	p := render.Vec{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
	// Pin the clipped coordinate exactly onto the edge.
	switch edge {
	case 0:
		p.X = 0
	case 1:
		p.X = w
	case 2:
		p.Y = 0
	default:
		p.Y = h
	}
	return p
}
