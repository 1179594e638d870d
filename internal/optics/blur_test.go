package optics

import (
	"math"
	"testing"
)

func TestBlur_FocusedIsZero(t *testing.T) {
	c := DefaultConstants()
	s := mustBuild(t, SceneConfig{ObjectDistanceM: 1})
	if b := Blur(s, c); b > 1e-9 {
		t.Errorf("blur %v, want ~0", b)
	}
}

func TestBlur_GrowsWithError(t *testing.T) {
	c := DefaultConstants()
	small := Blur(mustBuild(t, SceneConfig{ObjectDistanceM: 6, InherentErrorD: 0.5}), c)
	large := Blur(mustBuild(t, SceneConfig{ObjectDistanceM: 6, InherentErrorD: 3}), c)
	if !(small > 0 && large > small) {
		t.Errorf("blur small=%v large=%v, want 0 < small < large", small, large)
	}
}

func TestBlur_InfinityWhenCollimated(t *testing.T) {
	c := DefaultConstants()
	s := mustBuild(t, SceneConfig{
		ObjectDistanceM:      1,
		InherentErrorD:       1 - c.EmmetropicEyePowerD,
		DisableAccommodation: true,
	})
	if b := Blur(s, c); !math.IsInf(b, 1) {
		t.Errorf("blur %v, want +Inf", b)
	}
}

func TestFormatBlur(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{math.Inf(1), "Effectively Infinite"},
		{0, "0.000000 (Perfect Focus)"},
		{5e-7, "5.0000e-07"},
		{0.0123456, "0.012346"},
	}
	for _, tc := range cases {
		if got := FormatBlur(tc.in); got != tc.want {
			t.Errorf("FormatBlur(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
