package optics

import (
	"math"
	"testing"
)

func TestTraceRays_RaysMeetAtComputedImage(t *testing.T) {
	configs := []SceneConfig{
		{ObjectDistanceM: 1},
		{ObjectDistanceM: 0.4, InherentErrorD: 1.5},
		{ObjectDistanceM: 1, InherentErrorD: -2, LensMode: LensManual, ManualLensPowerD: 2},
		{ObjectDistanceM: 6, InherentErrorD: 3, LensMode: LensManual, ManualLensPowerD: -3},
		{ObjectDistanceM: 0.3, InherentErrorD: -1, LensMode: LensPrescription, PrescriptionD: 5, PrescriptionShiftD: 0.5},
		{ObjectDistanceM: 2, DisableAccommodation: true, LensMode: LensManual, ManualLensPowerD: 12},
	}
	for _, cfg := range configs {
		s := mustBuild(t, cfg)
		rays := TraceRays(s)
		if !RaysConverge(s, rays, 1e-6) {
			t.Errorf("%+v: rays do not converge: %v", cfg, TerminalHeights(rays, false))
		}
		want := s.FinalImage().HeightM
		for _, r := range rays {
			if r.Virtual {
				continue
			}
			if !approx(r.End().Y, want, 1e-6) {
				t.Errorf("%+v: ray %s ends at %v, want %v", cfg, r.Name, r.End().Y, want)
			}
			if !approx(r.End().X, s.FinalImageWorldX(), 1e-12) {
				t.Errorf("%+v: ray %s ends at x=%v, want %v", cfg, r.Name, r.End().X, s.FinalImageWorldX())
			}
		}
	}
}

func TestTraceRays_RayCountAndStages(t *testing.T) {
	single := TraceRays(mustBuild(t, SceneConfig{ObjectDistanceM: 1}))
	if len(single) != 2 {
		t.Errorf("single stage: %d rays, want 2", len(single))
	}
	double := TraceRays(mustBuild(t, SceneConfig{ObjectDistanceM: 1, LensMode: LensManual, ManualLensPowerD: 1}))
	if len(double) != 3 {
		t.Fatalf("two stages: %d rays, want 3", len(double))
	}
	for _, r := range double {
		want := []int{0, 1, 2}
		if len(r.Stages) != len(want) {
			t.Fatalf("ray %s stages %v, want %v", r.Name, r.Stages, want)
		}
		for i := range want {
			if r.Stages[i] != want[i] {
				t.Errorf("ray %s stages %v, want %v", r.Name, r.Stages, want)
			}
		}
	}
}

func TestTraceRays_VirtualFinalImage(t *testing.T) {
	s := mustBuild(t, SceneConfig{ObjectDistanceM: 1, InherentErrorD: -60})
	if s.FinalImageWorldX() >= 0 {
		t.Fatalf("final image at %v, want virtual (negative)", s.FinalImageWorldX())
	}
	rays := TraceRays(s)
	virtual := TerminalHeights(rays, true)
	if len(virtual) != 2 {
		t.Fatalf("%d back-projections, want 2", len(virtual))
	}
	if !RaysConverge(s, rays, 1e-6) {
		t.Errorf("back-projections do not meet: %v", virtual)
	}
	for _, h := range virtual {
		if !approx(h, s.FinalImage().HeightM, 1e-6) {
			t.Errorf("virtual height %v, want %v", h, s.FinalImage().HeightM)
		}
	}
}

func TestTraceRays_ImageAtInfinityExtends(t *testing.T) {
	c := DefaultConstants()
	s := mustBuild(t, SceneConfig{
		ObjectDistanceM:      1,
		InherentErrorD:       1 - c.EmmetropicEyePowerD,
		DisableAccommodation: true,
	})
	if !s.FinalImage().AtInfinity() {
		t.Fatalf("final state %v, want at_infinity", s.FinalImage().State)
	}
	rays := TraceRays(s)
	if RaysConverge(s, rays, 1e-6) {
		t.Error("collimated rays should not report convergence")
	}
	for _, r := range rays {
		if !approx(r.End().X, extensionM(s), 1e-12) {
			t.Errorf("ray %s ends at x=%v, want extension %v", r.Name, r.End().X, extensionM(s))
		}
	}
}

func TestTraceRays_ObjectAtInfinity(t *testing.T) {
	s := mustBuild(t, SceneConfig{ObjectDistanceM: math.Inf(1)})
	rays := TraceRays(s)
	if len(rays) != 2 || rays[0].Name != "parallel-upper" {
		t.Fatalf("rays %v, want parallel bundle", rays)
	}
	if !RaysConverge(s, rays, 1e-9) {
		t.Errorf("parallel bundle does not converge: %v", TerminalHeights(rays, false))
	}
	offset, ok := s.FocusOffsetMM()
	if !ok || math.Abs(offset) >= 0.05 {
		t.Errorf("offset %v ok=%v, want focused on the retina", offset, ok)
	}
}
