package optics

import (
	"errors"
	"math"
)

// ErrNoCorrection is returned when no finite spectacle lens focuses the
// object on the retina.
var ErrNoCorrection = errors.New("no finite correcting lens")

// CorrectingPower returns the spectacle lens power that images the object
// of cfg onto the retina. It uses the eye Build composes for cfg with a
// corrective lens in place: the same clamps, accommodation and
// lens-to-eye distance. The lens mode and powers of cfg are ignored.
func CorrectingPower(cfg SceneConfig, c Constants) (float64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	minDistance := MinObjectDistanceM + c.LensToEyeDistanceM
	distance := cfg.ObjectDistanceM
	if math.IsNaN(distance) || distance < minDistance {
		distance = minDistance
	}
	accommodation := 0.0
	if !cfg.DisableAccommodation {
		accommodation = Vergence(distance)
	}
	eyePower := c.EmmetropicEyePowerD + cfg.InherentErrorD + accommodation

	// Object vergence the eye lens needs for its image to land on the retina.
	eyeVergence := eyePower - 1/c.RetinaDistanceM
	lensVergence := Vergence(distance - c.LensToEyeDistanceM)
	if math.Abs(eyeVergence) < powerEpsilon {
		// The eye wants parallel light: the lens has to collimate.
		return lensVergence, nil
	}
	// The spectacle lens must put its image where the eye wants its object.
	imagePosition := c.LensToEyeDistanceM - 1/eyeVergence
	if math.Abs(imagePosition) < powerEpsilon {
		return 0, ErrNoCorrection
	}
	return lensVergence + 1/imagePosition, nil
}
