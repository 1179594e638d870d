package optics

import (
	"math"
	"strings"
)

const (
	// MinObjectDistanceM is the smallest object distance handed to the solver.
	MinObjectDistanceM = 0.001
	// DefaultObjectHeightM is used when a config carries no usable height.
	DefaultObjectHeightM = 0.1
	// correctiveEpsilon is the corrective power treated as "no lens".
	correctiveEpsilon = 1e-6
)

// LensMode selects where the corrective power comes from.
type LensMode int

const (
	LensUncorrected LensMode = iota
	LensManual
	LensPrescription
)

func (m LensMode) String() string {
	switch m {
	case LensManual:
		return "manual"
	case LensPrescription:
		return "prescription"
	default:
		return "uncorrected"
	}
}

// ParseLensMode maps a form value to a LensMode, falling back to
// LensUncorrected for anything it does not recognise.
func ParseLensMode(value string) LensMode {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "manual":
		return LensManual
	case "prescription", "rx":
		return LensPrescription
	default:
		return LensUncorrected
	}
}

// LensRole tells the renderer which element a lens stands for.
type LensRole int

const (
	RoleCorrective LensRole = iota
	RoleEye
)

// LensSpec is a thin lens on the optical axis. PositionM is measured from
// the eye-lens plane.
type LensSpec struct {
	PositionM float64
	PowerD    float64
	Role      LensRole
}

// SceneConfig is what the UI controls: the eye's refractive error, the
// object and the corrective lens.
type SceneConfig struct {
	InherentErrorD       float64
	ObjectDistanceM      float64
	ObjectHeightM        float64
	LensMode             LensMode
	ManualLensPowerD     float64
	PrescriptionD        float64
	PrescriptionShiftD   float64
	DisableAccommodation bool
}

// CorrectivePower returns the lens power the mode asks for.
func (c SceneConfig) CorrectivePower() float64 {
	switch c.LensMode {
	case LensManual:
		return c.ManualLensPowerD
	case LensPrescription:
		return c.PrescriptionD + c.PrescriptionShiftD
	default:
		return 0
	}
}

// Object is the source point of a scene in world coordinates.
type Object struct {
	PositionM float64 // x of the object, negative (upstream of the eye)
	DistanceM float64 // distance to the eye lens after clamping
	HeightM   float64
}

// Scene is one fully solved optical path. Lenses and Images are in
// propagation order and always have the same length.
type Scene struct {
	Object           Object
	Lenses           []LensSpec
	Images           []ImagePoint
	ImageWorldXM     []float64 // world x of each image, +Inf when collimated
	RetinaPositionM  float64
	EyePowerD        float64
	AccommodationD   float64
	CorrectivePowerD float64
}

// Stages returns the number of lenses light passes through.
func (s Scene) Stages() int { return len(s.Lenses) }

// FinalImage returns the image formed by the eye lens.
func (s Scene) FinalImage() ImagePoint {
	if len(s.Images) == 0 {
		return ImagePoint{State: ImageAtInfinity, PositionM: math.Inf(1)}
	}
	return s.Images[len(s.Images)-1]
}

// FinalImageWorldX returns the world x of the final image.
func (s Scene) FinalImageWorldX() float64 {
	if len(s.ImageWorldXM) == 0 {
		return math.Inf(1)
	}
	return s.ImageWorldXM[len(s.ImageWorldXM)-1]
}

// ImageWorldX returns the world x of the image formed by lens i.
func (s Scene) ImageWorldX(i int) float64 {
	if i < 0 || i >= len(s.ImageWorldXM) {
		return math.NaN()
	}
	return s.ImageWorldXM[i]
}

// FocusOffsetMM returns how far the final image lies behind (positive) or
// in front of (negative) the retina. ok is false when the image is at
// infinity.
func (s Scene) FocusOffsetMM() (offset float64, ok bool) {
	x := s.FinalImageWorldX()
	if s.FinalImage().AtInfinity() || math.IsInf(x, 0) {
		return 0, false
	}
	return (x - s.RetinaPositionM) * 1000, true
}

// Build solves the optical path described by cfg. The only error is an
// invalid Constants value; every optical edge case is expressed in the
// returned ImagePoint states.
func Build(cfg SceneConfig, c Constants) (Scene, error) {
	if err := c.Validate(); err != nil {
		return Scene{}, err
	}

	corrective := cfg.CorrectivePower()
	hasCorrective := math.Abs(corrective) > correctiveEpsilon
	if !hasCorrective {
		corrective = 0
	}

	minDistance := MinObjectDistanceM
	if hasCorrective {
		// The object has to stay upstream of the spectacle plane.
		minDistance += c.LensToEyeDistanceM
	}
	distance := cfg.ObjectDistanceM
	if math.IsNaN(distance) || distance < minDistance {
		distance = minDistance
	}
	height := cfg.ObjectHeightM
	if math.IsNaN(height) || math.IsInf(height, 0) || height <= 0 {
		height = DefaultObjectHeightM
	}

	// The eye accommodates to the true object distance, with or without a
	// corrective lens in front of it.
	accommodation := 0.0
	if !cfg.DisableAccommodation {
		accommodation = Vergence(distance)
	}
	eyePower := c.EmmetropicEyePowerD + cfg.InherentErrorD + accommodation

	lenses := make([]LensSpec, 0, 2)
	if hasCorrective {
		lenses = append(lenses, LensSpec{PositionM: -c.LensToEyeDistanceM, PowerD: corrective, Role: RoleCorrective})
	}
	lenses = append(lenses, LensSpec{PositionM: 0, PowerD: eyePower, Role: RoleEye})

	scene := Scene{
		Object:           Object{PositionM: -distance, DistanceM: distance, HeightM: height},
		Lenses:           lenses,
		Images:           make([]ImagePoint, 0, len(lenses)),
		ImageWorldXM:     make([]float64, 0, len(lenses)),
		RetinaPositionM:  c.RetinaDistanceM,
		EyePowerD:        eyePower,
		AccommodationD:   accommodation,
		CorrectivePowerD: corrective,
	}

	sourceX, sourceHeight := scene.Object.PositionM, height
	// angle is the chief-ray slope of a collimated beam; a collimated
	// source has no height, so the next finite image takes its height
	// from the angle instead.
	angle := 0.0
	for _, lens := range lenses {
		objectDistance := lens.PositionM - sourceX
		img := Solve(objectDistance, sourceHeight, lens.PowerD)
		if math.IsInf(sourceX, 1) && img.State == ImageFinite {
			img.HeightM = angle * img.PositionM
		}
		if img.State == ImageAtInfinity && !math.IsInf(objectDistance, 0) && objectDistance != 0 {
			angle = -sourceHeight / objectDistance
		}
		x := imageWorldX(lens, img, sourceX)
		scene.Images = append(scene.Images, img)
		scene.ImageWorldXM = append(scene.ImageWorldXM, x)
		sourceX, sourceHeight = x, img.HeightM
	}
	return scene, nil
}

func imageWorldX(lens LensSpec, img ImagePoint, sourceX float64) float64 {
	switch img.State {
	case ImageAtInfinity:
		return math.Inf(1)
	case ImageAtLens:
		return lens.PositionM
	case ImagePassThrough:
		return sourceX
	default:
		return lens.PositionM + img.PositionM
	}
}
