package optics

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func mustBuild(t *testing.T, cfg SceneConfig) Scene {
	t.Helper()
	s, err := Build(cfg, DefaultConstants())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return s
}

func TestBuild_EmmetropicEyeFocusesOnRetina(t *testing.T) {
	s := mustBuild(t, SceneConfig{ObjectDistanceM: 1.0, LensMode: LensUncorrected})
	offset, ok := s.FocusOffsetMM()
	if !ok {
		t.Fatal("final image at infinity")
	}
	if math.Abs(offset) >= 0.05 {
		t.Errorf("offset %.4f mm, want within 0.05 mm", offset)
	}
	if s.Stages() != 1 {
		t.Errorf("stages %d, want 1", s.Stages())
	}
}

func TestBuild_ManualLensCorrectsError(t *testing.T) {
	for _, d := range []float64{1.0, 6.0} {
		s := mustBuild(t, SceneConfig{
			InherentErrorD:   -2.0,
			ObjectDistanceM:  d,
			LensMode:         LensManual,
			ManualLensPowerD: 2.0,
		})
		offset, ok := s.FocusOffsetMM()
		if !ok {
			t.Fatalf("d=%v: final image at infinity", d)
		}
		if math.Abs(offset) >= 0.05 {
			t.Errorf("d=%v: offset %.4f mm, want within 0.05 mm", d, offset)
		}
		if s.Stages() != 2 {
			t.Errorf("d=%v: stages %d, want 2", d, s.Stages())
		}
	}
}

func TestBuild_ZeroPrescriptionMatchesUncorrected(t *testing.T) {
	base := SceneConfig{InherentErrorD: 1.25, ObjectDistanceM: 2}
	rx := base
	rx.LensMode = LensPrescription
	rx.PrescriptionD = 0
	rx.PrescriptionShiftD = 0

	a := mustBuild(t, base)
	b := mustBuild(t, rx)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("prescription 0 scene differs from uncorrected:\n%+v\n%+v", b, a)
	}
}

func TestBuild_PrescriptionAddsShift(t *testing.T) {
	s := mustBuild(t, SceneConfig{
		ObjectDistanceM:    1,
		LensMode:           LensPrescription,
		PrescriptionD:      -1.5,
		PrescriptionShiftD: 0.25,
	})
	if s.CorrectivePowerD != -1.25 {
		t.Errorf("corrective %v, want -1.25", s.CorrectivePowerD)
	}
	if s.Lenses[0].Role != RoleCorrective || s.Lenses[1].Role != RoleEye {
		t.Errorf("roles %v, want corrective then eye", s.Lenses)
	}
	if s.Lenses[0].PositionM != -DefaultConstants().LensToEyeDistanceM {
		t.Errorf("corrective at %v, want %v", s.Lenses[0].PositionM, -DefaultConstants().LensToEyeDistanceM)
	}
}

func TestBuild_ClampsObjectDistance(t *testing.T) {
	for _, d := range []float64{-5, 0, math.NaN()} {
		s := mustBuild(t, SceneConfig{ObjectDistanceM: d})
		if s.Object.DistanceM != MinObjectDistanceM {
			t.Errorf("d=%v: distance %v, want %v", d, s.Object.DistanceM, MinObjectDistanceM)
		}
	}
	s := mustBuild(t, SceneConfig{ObjectDistanceM: 0, LensMode: LensManual, ManualLensPowerD: 1})
	want := MinObjectDistanceM + DefaultConstants().LensToEyeDistanceM
	if !approx(s.Object.DistanceM, want, 1e-15) {
		t.Errorf("with corrective: distance %v, want %v", s.Object.DistanceM, want)
	}
}

func TestBuild_DefaultObjectHeight(t *testing.T) {
	s := mustBuild(t, SceneConfig{ObjectDistanceM: 1, ObjectHeightM: -1})
	if s.Object.HeightM != DefaultObjectHeightM {
		t.Errorf("height %v, want %v", s.Object.HeightM, DefaultObjectHeightM)
	}
}

func TestBuild_InvalidConstants(t *testing.T) {
	_, err := Build(SceneConfig{ObjectDistanceM: 1}, Constants{})
	if !errors.Is(err, ErrInvalidConstants) {
		t.Errorf("err %v, want ErrInvalidConstants", err)
	}
}

func TestBuild_WithoutAccommodationFocusesBehindRetina(t *testing.T) {
	s := mustBuild(t, SceneConfig{ObjectDistanceM: 1, DisableAccommodation: true})
	offset, ok := s.FocusOffsetMM()
	if !ok {
		t.Fatal("final image at infinity")
	}
	if offset < 0.2 || offset > 0.4 {
		t.Errorf("offset %.4f mm, want about 0.29 mm behind the retina", offset)
	}
	if s.AccommodationD != 0 {
		t.Errorf("accommodation %v, want 0", s.AccommodationD)
	}
}

func TestBuild_MyopicEyeFocusesInFront(t *testing.T) {
	s := mustBuild(t, SceneConfig{InherentErrorD: 2, ObjectDistanceM: 6})
	offset, ok := s.FocusOffsetMM()
	if !ok {
		t.Fatal("final image at infinity")
	}
	if offset >= 0 {
		t.Errorf("offset %.4f mm, want negative (in front of the retina)", offset)
	}
}

func TestBuild_CollimatedIntermediateImage(t *testing.T) {
	c := DefaultConstants()
	// The object sits at the corrective lens' focal point.
	s := mustBuild(t, SceneConfig{
		ObjectDistanceM:  0.25 + c.LensToEyeDistanceM,
		LensMode:         LensManual,
		ManualLensPowerD: 4,
	})
	if !s.Images[0].AtInfinity() {
		t.Fatalf("intermediate state %v, want at_infinity", s.Images[0].State)
	}
	final := s.FinalImage()
	if final.State != ImageFinite {
		t.Fatalf("final state %v, want finite", final.State)
	}
	rays := TraceRays(s)
	for _, h := range TerminalHeights(rays, false) {
		if !approx(h, final.HeightM, 1e-6) {
			t.Errorf("ray terminal height %v, want %v", h, final.HeightM)
		}
	}
}

func TestParseLensMode(t *testing.T) {
	cases := map[string]LensMode{
		"manual":        LensManual,
		" Prescription": LensPrescription,
		"rx":            LensPrescription,
		"":              LensUncorrected,
		"bogus":         LensUncorrected,
	}
	for in, want := range cases {
		if got := ParseLensMode(in); got != want {
			t.Errorf("ParseLensMode(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestConstants_Validate(t *testing.T) {
	if err := DefaultConstants().Validate(); err != nil {
		t.Fatalf("default constants invalid: %v", err)
	}
	c := DefaultConstants()
	c.LensToEyeDistanceM = 0
	if err := c.Validate(); err != nil {
		t.Errorf("zero lens distance should be allowed: %v", err)
	}
	c.RetinaDistanceM = -1
	if err := c.Validate(); err == nil {
		t.Error("negative retina distance should be rejected")
	}
}

func TestCorrectingPower_FocusesOnRetina(t *testing.T) {
	c := DefaultConstants()
	for _, errD := range []float64{-4, -1.5, 0, 0.5, 2, 4.5, 6} {
		for _, distance := range []float64{0.5, 6} {
			cfg := SceneConfig{InherentErrorD: errD, ObjectDistanceM: distance}
			lens, err := CorrectingPower(cfg, c)
			if err != nil {
				t.Fatalf("error %+.2f at %v m: %v", errD, distance, err)
			}
			cfg.LensMode = LensManual
			cfg.ManualLensPowerD = lens
			s, err := Build(cfg, c)
			if err != nil {
				t.Fatal(err)
			}
			offset, ok := s.FocusOffsetMM()
			if !ok || math.Abs(offset) > 1e-6 {
				t.Errorf("error %+.2f at %v m: lens %+.4f leaves offset %v mm (ok=%v)", errD, distance, lens, offset, ok)
			}
		}
	}
}

func TestCorrectingPower_VertexDistance(t *testing.T) {
	c := DefaultConstants()
	// A strongly myopic eye needs more than the bare error once the lens
	// sits in front of it.
	lens, err := CorrectingPower(SceneConfig{InherentErrorD: 6, ObjectDistanceM: 6}, c)
	if err != nil {
		t.Fatal(err)
	}
	if !approx(lens, -6.4925, 1e-3) {
		t.Errorf("lens %v, want about -6.49", lens)
	}
	c.LensToEyeDistanceM = 0
	lens, err = CorrectingPower(SceneConfig{InherentErrorD: 6, ObjectDistanceM: 6}, c)
	if err != nil {
		t.Fatal(err)
	}
	if !approx(lens, -6, 1e-9) {
		t.Errorf("lens in contact %v, want -6", lens)
	}
}
