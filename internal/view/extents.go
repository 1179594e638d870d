package view

import (
	"math"

	"visionlab/internal/optics"
)

// OverviewExtents returns the x-extents of the whole optical path: the
// object, every lens, the retina and every image close enough to be
// worth framing.
func OverviewExtents(s optics.Scene) []float64 {
	out := []float64{s.RetinaPositionM}
	for _, l := range s.Lenses {
		out = append(out, l.PositionM)
	}

	objX := s.Object.PositionM
	if math.IsInf(objX, 0) || math.Abs(objX) > 1e3 {
		// Frame the start of the parallel bundle instead.
		first := 0.0
		if len(s.Lenses) > 0 {
			first = s.Lenses[0].PositionM
		}
		objX = first - math.Max(0.1, 4*s.RetinaPositionM)
	}
	out = append(out, objX)

	reach := math.Max(math.Abs(objX), s.RetinaPositionM) * 2
	for _, x := range s.ImageWorldXM {
		if !math.IsInf(x, 0) && !math.IsNaN(x) && math.Abs(x) <= reach {
			out = append(out, x)
		}
	}
	return out
}

// DetailExtents returns the x-extents of the eye region: from just before
// the first lens to just past the retina, widened to include a final
// image that lands nearby.
func DetailExtents(s optics.Scene) []float64 {
	pad := 0.25 * s.RetinaPositionM
	lo, hi := 0.0, s.RetinaPositionM
	for _, l := range s.Lenses {
		lo = math.Min(lo, l.PositionM)
	}
	if x := s.FinalImageWorldX(); !math.IsInf(x, 0) && !math.IsNaN(x) {
		if x > hi && x <= 3*s.RetinaPositionM {
			hi = x
		}
		if x < lo && x >= lo-s.RetinaPositionM {
			lo = x
		}
	}
	return []float64{lo - pad, hi + pad}
}
