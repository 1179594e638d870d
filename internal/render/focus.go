package render

import (
	"fmt"
	"math"

	"visionlab/internal/optics"
)

// SharpToleranceMM is the largest focus offset still reported as sharp.
const SharpToleranceMM = 0.05

// FocusState classifies where the final image lands.
type FocusState string

const (
	FocusSharp    FocusState = "sharp"
	FocusFront    FocusState = "in_front"
	FocusBehind   FocusState = "behind"
	FocusInfinity FocusState = "at_infinity"
	FocusVirtual  FocusState = "virtual"
)

// Focus is the user-facing verdict on a scene.
type Focus struct {
	State    FocusState `json:"state"`
	OffsetMM float64    `json:"offset_mm"`
	Text     string     `json:"text"`
}

// DescribeFocus reports where the final image sits relative to the retina.
func DescribeFocus(s optics.Scene) Focus {
	final := s.FinalImage()
	x := s.FinalImageWorldX()
	if final.AtInfinity() || math.IsInf(x, 0) || math.IsNaN(x) {
		return Focus{State: FocusInfinity, Text: "image at infinity"}
	}
	offset := (x - s.RetinaPositionM) * 1000
	if len(s.Lenses) > 0 && x < s.Lenses[len(s.Lenses)-1].PositionM {
		return Focus{State: FocusVirtual, OffsetMM: offset, Text: "no real image: rays diverge after the eye lens"}
	}
	switch {
	case math.Abs(offset) < SharpToleranceMM:
		return Focus{State: FocusSharp, OffsetMM: offset, Text: "sharply focused"}
	case offset < 0:
		return Focus{State: FocusFront, OffsetMM: offset, Text: fmt.Sprintf("focused %.2f mm in front of the retina", -offset)}
	default:
		return Focus{State: FocusBehind, OffsetMM: offset, Text: fmt.Sprintf("focused %.2f mm behind the retina", offset)}
	}
}
