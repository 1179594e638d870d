// Package optics models paraxial thin-lens imaging for an eye with an
// optional corrective lens: single-lens solves, two-stage scene
// composition, principal-ray tracing and the blur metric used by the game.
package optics

import (
	"errors"
	"fmt"
	"math"
)

// Constants holds the fixed physical parameters of a session.
// Distances are in meters, powers in diopters.
type Constants struct {
	EmmetropicEyePowerD float64 `yaml:"emmetropic_eye_power_d" json:"p_emmetropic_eye_lens_power_D"`
	LensToEyeDistanceM  float64 `yaml:"lens_to_eye_distance_m" json:"corrective_lens_to_eye_lens_distance_m"`
	RetinaDistanceM     float64 `yaml:"retina_distance_m" json:"d_retina_fixed_m"`
	GameObjectDistanceM float64 `yaml:"game_object_distance_m" json:"game_object_distance_m"`
	PupilDiameterM      float64 `yaml:"pupil_diameter_m" json:"effective_pupil_diameter_m"`
}

// ErrInvalidConstants is returned when a Constants value cannot drive a scene.
var ErrInvalidConstants = errors.New("invalid optical constants")

// DefaultConstants returns the reference eye: a 17 mm retina and the lens
// power that focuses parallel light onto it.
func DefaultConstants() Constants {
	const retina = 0.017
	return Constants{
		EmmetropicEyePowerD: 1 / retina,
		LensToEyeDistanceM:  0.012,
		RetinaDistanceM:     retina,
		GameObjectDistanceM: 6.0,
		PupilDiameterM:      0.004,
	}
}

// Validate reports the first violated invariant.
func (c Constants) Validate() error {
	positive := func(name string, v float64) error {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return fmt.Errorf("%w: %s must be a positive finite number, got %v", ErrInvalidConstants, name, v)
		}
		return nil
	}
	if err := positive("retina_distance_m", c.RetinaDistanceM); err != nil {
		return err
	}
	if err := positive("game_object_distance_m", c.GameObjectDistanceM); err != nil {
		return err
	}
	if err := positive("pupil_diameter_m", c.PupilDiameterM); err != nil {
		return err
	}
	if math.IsNaN(c.LensToEyeDistanceM) || math.IsInf(c.LensToEyeDistanceM, 0) || c.LensToEyeDistanceM < 0 {
		return fmt.Errorf("%w: lens_to_eye_distance_m must be >= 0, got %v", ErrInvalidConstants, c.LensToEyeDistanceM)
	}
	if math.IsNaN(c.EmmetropicEyePowerD) || math.IsInf(c.EmmetropicEyePowerD, 0) || c.EmmetropicEyePowerD == 0 {
		return fmt.Errorf("%w: emmetropic_eye_power_d must be finite and non-zero, got %v", ErrInvalidConstants, c.EmmetropicEyePowerD)
	}
	return nil
}
