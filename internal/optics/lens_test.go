package optics

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestSolve_VergenceIdentity(t *testing.T) {
	powers := []float64{-10, -2.5, 0.5, 3, 58.8}
	distances := []float64{0.05, 0.25, 1, 6, 100}
	checked := 0
	for _, p := range powers {
		for _, d := range distances {
			img := Solve(d, 0.1, p)
			if img.State != ImageFinite {
				continue
			}
			checked++
			got := 1/d + 1/img.PositionM
			if !approx(got, p, 1e-6) {
				t.Errorf("Solve(%v, 0.1, %v): objectVergence + 1/image = %v, want %v", d, p, got, p)
			}
		}
	}
	if checked == 0 {
		t.Fatal("no finite cases checked")
	}
}

func TestSolve_ZeroPowerPassThrough(t *testing.T) {
	for _, d := range []float64{-3, 0.2, 1, 1e12} {
		for _, h := range []float64{-0.5, 0, 0.3} {
			img := Solve(d, h, 0)
			if img.PositionM != d || img.HeightM != h || img.Magnification != 1 {
				t.Errorf("Solve(%v, %v, 0) = %+v, want pass-through", d, h, img)
			}
			if img.State != ImagePassThrough {
				t.Errorf("state %v, want %v", img.State, ImagePassThrough)
			}
		}
	}
}

func TestSolve_ObjectAtLens(t *testing.T) {
	img := Solve(0, 0.2, 5)
	if img.State != ImageAtLens {
		t.Fatalf("state %v, want at_lens", img.State)
	}
	if img.PositionM != 0 || img.Magnification != 1 || img.HeightM != 0.2 {
		t.Errorf("got %+v, want position 0, magnification 1, height 0.2", img)
	}
}

func TestSolve_ImageAtInfinity(t *testing.T) {
	img := Solve(0.5, 0.1, 2)
	if !img.AtInfinity() {
		t.Fatalf("state %v, want at_infinity", img.State)
	}
	if !math.IsInf(img.PositionM, 1) {
		t.Errorf("position %v, want +Inf", img.PositionM)
	}
}

func TestSolve_ObjectAtInfinity(t *testing.T) {
	img := Solve(math.Inf(1), 0.1, 4)
	if img.State != ImageFinite {
		t.Fatalf("state %v, want finite", img.State)
	}
	if !approx(img.PositionM, 0.25, 1e-12) {
		t.Errorf("position %v, want 0.25 (focal length)", img.PositionM)
	}
	if img.HeightM != 0 {
		t.Errorf("height %v, want 0", img.HeightM)
	}
}

func TestSolve_RealImageIsInverted(t *testing.T) {
	img := Solve(1, 0.1, 2)
	if !approx(img.PositionM, 1, 1e-12) {
		t.Errorf("position %v, want 1", img.PositionM)
	}
	if !approx(img.Magnification, -1, 1e-12) {
		t.Errorf("magnification %v, want -1", img.Magnification)
	}
	if !approx(img.HeightM, -0.1, 1e-12) {
		t.Errorf("height %v, want -0.1", img.HeightM)
	}
}

func TestSolve_VirtualObject(t *testing.T) {
	img := Solve(-0.5, 0.1, 1)
	if !approx(img.PositionM, 1.0/3, 1e-12) {
		t.Errorf("position %v, want 1/3", img.PositionM)
	}
	if img.Magnification <= 0 {
		t.Errorf("magnification %v, want upright (positive)", img.Magnification)
	}
}

func TestImagePoint_MarshalJSONAtInfinity(t *testing.T) {
	b, err := json.Marshal(Solve(0.5, 0.1, 2))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, `"position_m":null`) {
		t.Errorf("json %s, want null position", s)
	}
	if !strings.Contains(s, `"at_infinity":true`) {
		t.Errorf("json %s, want at_infinity true", s)
	}
}
