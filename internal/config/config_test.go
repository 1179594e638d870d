package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"visionlab/internal/optics"
)

func TestLoadConstants_DefaultsMatchReferenceEye(t *testing.T) {
	got, err := LoadConstants("")
	if err != nil {
		t.Fatalf("LoadConstants: %v", err)
	}
	if want := optics.DefaultConstants(); got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestLoadConstants_FileOverridesSomeKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eye.yaml")
	if err := os.WriteFile(path, []byte("lens_to_eye_distance_m: 0\ngame_object_distance_m: 4.5\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := LoadConstants(path)
	if err != nil {
		t.Fatalf("LoadConstants: %v", err)
	}
	if got.LensToEyeDistanceM != 0 {
		t.Errorf("lens distance %v, want 0", got.LensToEyeDistanceM)
	}
	if got.GameObjectDistanceM != 4.5 {
		t.Errorf("game distance %v, want 4.5", got.GameObjectDistanceM)
	}
	if got.RetinaDistanceM != 0.017 {
		t.Errorf("retina %v, want default 0.017", got.RetinaDistanceM)
	}
}

func TestLoadConstants_RejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("retina_distance_m: -0.02\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := LoadConstants(path)
	if !errors.Is(err, optics.ErrInvalidConstants) {
		t.Errorf("err %v, want ErrInvalidConstants", err)
	}
}

func TestLoadConstants_MissingFile(t *testing.T) {
	if _, err := LoadConstants(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestParseFloat(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"", 7},
		{"  2.5 ", 2.5},
		{"-1,25", -1.25},
		{"+3", 3},
		{"abc", 7},
		{"NaN", 7},
		{"Inf", 7},
	}
	for _, tc := range cases {
		if got := ParseFloat(tc.in, 7); got != tc.want {
			t.Errorf("ParseFloat(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseBool(t *testing.T) {
	if !ParseBool("on", false) {
		t.Error(`ParseBool("on") = false`)
	}
	if ParseBool("0", true) {
		t.Error(`ParseBool("0") = true`)
	}
	if !ParseBool("maybe", true) {
		t.Error("unparseable input should return the fallback")
	}
}

func TestGameDuration(t *testing.T) {
	t.Setenv(EnvGameSeconds, "")
	if got := GameDuration(); got != 180*time.Second {
		t.Errorf("default %v, want 3m0s", got)
	}
	t.Setenv(EnvGameSeconds, "2")
	if got := GameDuration(); got != 10*time.Second {
		t.Errorf("clamped %v, want 10s", got)
	}
}

func TestAddr(t *testing.T) {
	t.Setenv(EnvPort, "")
	if got := Addr(); got != ":8080" {
		t.Errorf("Addr() = %q, want :8080", got)
	}
	t.Setenv(EnvPort, " 9000 ")
	if got := Addr(); got != ":9000" {
		t.Errorf("Addr() = %q, want :9000", got)
	}
}

func TestSceneFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := RegisterSceneFlags(fs)
	if err := fs.Parse([]string{"-error", "-2", "-lens", "manual", "-manual", "2", "-relaxed"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg := f.Config()
	if cfg.InherentErrorD != -2 || cfg.LensMode != optics.LensManual || cfg.ManualLensPowerD != 2 || !cfg.DisableAccommodation {
		t.Fatalf("config = %+v", cfg)
	}
	if cfg.ObjectDistanceM != 1 || cfg.ObjectHeightM != optics.DefaultObjectHeightM {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}
