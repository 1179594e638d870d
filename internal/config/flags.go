package config

import (
	"flag"

	"visionlab/internal/optics"
)

// SceneFlags holds the scene flags shared by the command-line tools.
type SceneFlags struct {
	errorD    float64
	distanceM float64
	heightM   float64
	lens      string
	manualD   float64
	rxD       float64
	shiftD    float64
	relaxed   bool
}

// RegisterSceneFlags adds the scene flags to fs.
func RegisterSceneFlags(fs *flag.FlagSet) *SceneFlags {
	f := &SceneFlags{}
	fs.Float64Var(&f.errorD, "error", 0, "refractive error of the eye in diopters (myopia > 0)")
	fs.Float64Var(&f.distanceM, "distance", 1, "object distance in meters")
	fs.Float64Var(&f.heightM, "object-height", optics.DefaultObjectHeightM, "object height in meters")
	fs.StringVar(&f.lens, "lens", "uncorrected", "corrective lens: uncorrected, manual or prescription")
	fs.Float64Var(&f.manualD, "manual", 0, "manual lens power in diopters")
	fs.Float64Var(&f.rxD, "rx", 0, "prescription power in diopters")
	fs.Float64Var(&f.shiftD, "shift", 0, "prescription shift in diopters")
	fs.BoolVar(&f.relaxed, "relaxed", false, "disable accommodation")
	return f
}

// Config returns the scene the flags describe.
func (f *SceneFlags) Config() optics.SceneConfig {
	return optics.SceneConfig{
		InherentErrorD:       f.errorD,
		ObjectDistanceM:      f.distanceM,
		ObjectHeightM:        f.heightM,
		LensMode:             optics.ParseLensMode(f.lens),
		ManualLensPowerD:     f.manualD,
		PrescriptionD:        f.rxD,
		PrescriptionShiftD:   f.shiftD,
		DisableAccommodation: f.relaxed,
	}
}
