package optics

import (
	"fmt"
	"math"
)

// Blur estimates the blur-circle size on the retina for the scene's final
// image: the defocus distance scaled by the pupil-to-image cone. Lower is
// sharper; +Inf when the image never converges.
func Blur(s Scene, c Constants) float64 {
	final := s.FinalImage()
	v := s.FinalImageWorldX()
	if final.AtInfinity() || math.IsInf(v, 0) {
		return math.Inf(1)
	}
	defocus := math.Abs(v - s.RetinaPositionM)
	if math.Abs(v) < powerEpsilon {
		if defocus > 1e-6 {
			return math.Inf(1)
		}
		return 0
	}
	return defocus * (c.PupilDiameterM / math.Abs(v))
}

// FormatBlur renders a blur value for display.
func FormatBlur(b float64) string {
	switch {
	case math.IsInf(b, 0) || math.IsNaN(b):
		return "Effectively Infinite"
	case b == 0:
		return "0.000000 (Perfect Focus)"
	case math.Abs(b) < 1e-6:
		return fmt.Sprintf("%.4e", b)
	default:
		return fmt.Sprintf("%.6f", b)
	}
}
