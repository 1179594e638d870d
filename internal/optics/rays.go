package optics

import "math"

// Point is a world-space position in meters; X runs along the optical axis.
type Point struct {
	X, Y float64
}

// Polyline is one traced ray. The segment Points[i] -> Points[i+1] belongs
// to propagation stage Stages[i]: 0 before the first lens, 1 between the
// first and the second lens, and so on.
type Polyline struct {
	Name    string
	Points  []Point
	Stages  []int
	Virtual bool // back-projection to a virtual image, not a physical ray
}

// End returns the last point of the polyline.
func (p Polyline) End() Point {
	if len(p.Points) == 0 {
		return Point{}
	}
	return p.Points[len(p.Points)-1]
}

func (p *Polyline) add(pt Point, stage int) {
	if len(p.Points) > 0 {
		p.Stages = append(p.Stages, stage)
	}
	p.Points = append(p.Points, pt)
}

// extensionM is how far a ray is drawn past its last lens when there is no
// finite point to converge on.
func extensionM(s Scene) float64 {
	return math.Max(0.05, 3*s.RetinaPositionM)
}

type rayStart struct {
	name  string
	x, y  float64
	slope float64
}

// TraceRays follows principal rays from the object tip through every lens
// using the thin-lens slope update s' = s - y*P. Rays that converge on a
// finite real image end on the final image plane; collimated output is
// drawn as a fixed-length extension.
func TraceRays(s Scene) []Polyline {
	if len(s.Lenses) == 0 {
		return nil
	}
	starts := principalRays(s)
	final := s.FinalImage()
	finalX := s.FinalImageWorldX()
	last := s.Lenses[len(s.Lenses)-1]

	var endX float64
	virtual := false
	switch {
	case final.AtInfinity() || math.IsInf(finalX, 0):
		endX = last.PositionM + extensionM(s)
	case finalX <= last.PositionM:
		virtual = true
		endX = math.Max(s.RetinaPositionM, last.PositionM) + extensionM(s)
	default:
		endX = finalX
	}

	rays := make([]Polyline, 0, 2*len(starts))
	for _, st := range starts {
		ray, y, slope := propagate(s, st)
		ray.add(Point{X: endX, Y: y + slope*(endX-last.PositionM)}, len(s.Lenses))
		rays = append(rays, ray)
		if virtual {
			back := Polyline{Name: st.name + "-virtual", Virtual: true}
			back.add(Point{X: last.PositionM, Y: y}, len(s.Lenses))
			back.add(Point{X: finalX, Y: y + slope*(finalX-last.PositionM)}, len(s.Lenses))
			rays = append(rays, back)
		}
	}
	return rays
}

// propagate walks a ray through every lens and returns the polyline up to
// the last lens plus the height and slope leaving it.
func propagate(s Scene, st rayStart) (Polyline, float64, float64) {
	ray := Polyline{Name: st.name}
	x, y, slope := st.x, st.y, st.slope
	ray.add(Point{X: x, Y: y}, 0)
	for i, lens := range s.Lenses {
		y += slope * (lens.PositionM - x)
		x = lens.PositionM
		ray.add(Point{X: x, Y: y}, i)
		slope -= y * lens.PowerD
	}
	return ray, y, slope
}

func principalRays(s Scene) []rayStart {
	first := s.Lenses[0]
	h := s.Object.HeightM
	objX := s.Object.PositionM

	if math.IsInf(objX, 0) || math.Abs(objX) > farDistance {
		// Parallel bundle from a distant source; both rays meet on the axis.
		run := math.Max(0.1, 4*s.RetinaPositionM)
		a := 0.3 * s.RetinaPositionM
		return []rayStart{
			{name: "parallel-upper", x: first.PositionM - run, y: a},
			{name: "parallel-lower", x: first.PositionM - run, y: -a},
		}
	}

	d := first.PositionM - objX
	starts := []rayStart{
		{name: "parallel", x: objX, y: h, slope: 0},
		{name: "chief", x: objX, y: h, slope: -h / d},
	}

	if len(s.Lenses) == 2 {
		// A ray bent by the corrective lens so that it crosses the eye-lens
		// centre; it checks the second stage independently of the first.
		gap := s.Lenses[1].PositionM - first.PositionM
		if gap > powerEpsilon {
			k := 1 - first.PowerD*gap
			den := d*k + gap
			if math.Abs(den) > powerEpsilon {
				starts = append(starts, rayStart{name: "eye-centre", x: objX, y: h, slope: -h * k / den})
			}
		}
	}
	return starts
}

// TerminalHeights returns the final height of every ray of the given kind.
func TerminalHeights(rays []Polyline, virtual bool) []float64 {
	out := make([]float64, 0, len(rays))
	for _, r := range rays {
		if r.Virtual != virtual || len(r.Points) == 0 {
			continue
		}
		out = append(out, r.End().Y)
	}
	return out
}

// RaysConverge reports whether the traced rays meet at a single point on
// the final image plane, within tol. Real rays are checked for a real
// image, back-projections for a virtual one. A collimated output never
// converges.
func RaysConverge(s Scene, rays []Polyline, tol float64) bool {
	if s.FinalImage().AtInfinity() || len(s.Lenses) == 0 {
		return false
	}
	virtual := s.FinalImageWorldX() <= s.Lenses[len(s.Lenses)-1].PositionM
	heights := TerminalHeights(rays, virtual)
	if len(heights) < 2 {
		return false
	}
	lo, hi := heights[0], heights[0]
	for _, h := range heights[1:] {
		lo = math.Min(lo, h)
		hi = math.Max(hi, h)
	}
	return hi-lo <= tol
}
