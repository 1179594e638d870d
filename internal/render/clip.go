package render

const (
	outInside = 0
	outLeft   = 1 << iota
	outRight
	outBottom
	outTop
)

type rect struct {
	x0, y0, x1, y1 float64
}

func (r rect) code(p Vec) int {
	c := outInside
	switch {
	case p.X < r.x0:
		c |= outLeft
	case p.X > r.x1:
		c |= outRight
	}
	switch {
	case p.Y < r.y0:
		c |= outTop
	case p.Y > r.y1:
		c |= outBottom
	}
	return c
}

// clipLine trims the segment a-b to r (Cohen-Sutherland). ok is false
// when nothing of it is visible. Zoomed-in views put ray endpoints far
// outside the canvas, so every segment goes through here first.
func clipLine(a, b Vec, r rect) (Vec, Vec, bool) {
	ca, cb := r.code(a), r.code(b)
	for i := 0; i < 8; i++ {
		if ca|cb == 0 {
			return a, b, true
		}
		if ca&cb != 0 {
			return a, b, false
		}
		out := ca
		if out == 0 {
			out = cb
		}
		var p Vec
		switch {
		case out&outTop != 0:
			p = Vec{X: a.X + (b.X-a.X)*(r.y0-a.Y)/(b.Y-a.Y), Y: r.y0}
		case out&outBottom != 0:
			p = Vec{X: a.X + (b.X-a.X)*(r.y1-a.Y)/(b.Y-a.Y), Y: r.y1}
		case out&outRight != 0:
			p = Vec{X: r.x1, Y: a.Y + (b.Y-a.Y)*(r.x1-a.X)/(b.X-a.X)}
		default:
			p = Vec{X: r.x0, Y: a.Y + (b.Y-a.Y)*(r.x0-a.X)/(b.X-a.X)}
		}
		if out == ca {
			a, ca = p, r.code(p)
		} else {
			b, cb = p, r.code(p)
		}
	}
	return a, b, ca|cb == 0
}
