package optics

import (
	"encoding/json"
	"math"
)

const (
	// powerEpsilon is the tolerance below which a lens power or a vergence
	// difference counts as zero when picking a solver branch.
	powerEpsilon = 1e-9
	// farDistance is the object distance beyond which incoming light is
	// treated as parallel.
	farDistance = 1e9
)

// ImageState names how an ImagePoint should be read.
type ImageState int

const (
	// ImageFinite is a regular image at a finite distance from its lens.
	ImageFinite ImageState = iota
	// ImageAtInfinity means the lens collimates the light; Position is +Inf
	// and Height/Magnification carry no information.
	ImageAtInfinity
	// ImageAtLens means the object sits on the lens plane.
	ImageAtLens
	// ImagePassThrough means the lens has no power; the "image" is the
	// object itself and Position repeats the object distance.
	ImagePassThrough
)

func (s ImageState) String() string {
	switch s {
	case ImageFinite:
		return "finite"
	case ImageAtInfinity:
		return "at_infinity"
	case ImageAtLens:
		return "at_lens"
	case ImagePassThrough:
		return "pass_through"
	default:
		return "unknown"
	}
}

// ImagePoint is the result of imaging through one thin lens. Position is
// measured from that lens, positive downstream (the direction light travels).
// A negative Height means the image is inverted.
type ImagePoint struct {
	PositionM     float64
	HeightM       float64
	Magnification float64
	State         ImageState
}

// AtInfinity reports whether the image never converges.
func (p ImagePoint) AtInfinity() bool { return p.State == ImageAtInfinity }

// MarshalJSON writes infinite positions as null; encoding/json rejects them.
func (p ImagePoint) MarshalJSON() ([]byte, error) {
	var pos *float64
	if !math.IsInf(p.PositionM, 0) && !math.IsNaN(p.PositionM) {
		v := p.PositionM
		pos = &v
	}
	return json.Marshal(struct {
		PositionM     *float64 `json:"position_m"`
		HeightM       float64  `json:"height_m"`
		Magnification float64  `json:"magnification"`
		State         string   `json:"state"`
		AtInfinity    bool     `json:"at_infinity"`
	}{
		PositionM:     pos,
		HeightM:       p.HeightM,
		Magnification: p.Magnification,
		State:         p.State.String(),
		AtInfinity:    p.AtInfinity(),
	})
}

// Vergence returns the reciprocal of a signed distance, 0 for objects far
// enough away to send parallel light.
func Vergence(distanceM float64) float64 {
	if math.IsInf(distanceM, 0) || math.Abs(distanceM) > farDistance {
		return 0
	}
	return 1 / distanceM
}

// Solve images an object through a thin lens.
//
// objectDistanceM is the signed distance from the object to the lens along
// the direction of propagation: positive for a real object upstream of the
// lens, negative for a virtual object downstream of it. It may be infinite.
func Solve(objectDistanceM, objectHeightM, powerD float64) ImagePoint {
	if math.Abs(powerD) < powerEpsilon {
		return ImagePoint{
			PositionM:     objectDistanceM,
			HeightM:       objectHeightM,
			Magnification: 1,
			State:         ImagePassThrough,
		}
	}
	objectVergence := Vergence(objectDistanceM)
	if math.Abs(objectDistanceM) < powerEpsilon {
		return ImagePoint{
			PositionM:     0,
			HeightM:       objectHeightM,
			Magnification: 1,
			State:         ImageAtLens,
		}
	}
	imageVergence := powerD - objectVergence
	if math.Abs(imageVergence) < powerEpsilon {
		return ImagePoint{PositionM: math.Inf(1), State: ImageAtInfinity}
	}
	imagePosition := 1 / imageVergence
	// An object at infinity has no finite height to scale; its image sits
	// on the axis at the focal point.
	magnification := 0.0
	if objectVergence != 0 {
		magnification = -imagePosition / objectDistanceM
	}
	return ImagePoint{
		PositionM:     imagePosition,
		HeightM:       objectHeightM * magnification,
		Magnification: magnification,
		State:         ImageFinite,
	}
}
