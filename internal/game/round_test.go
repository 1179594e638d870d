package game

import (
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"
	"time"

	"visionlab/internal/optics"
)

var t0 = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func testRound(errD float64) *Round {
	return newRoundWithError(rand.New(rand.NewSource(1)), t0, time.Minute, optics.DefaultConstants(), errD)
}

func TestDrawPatientError_RangeAndRounding(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		v := DrawPatientError(rng)
		if v < MinPatientErrorD || v > MaxPatientErrorD {
			t.Fatalf("draw %v outside [%v, %v]", v, MinPatientErrorD, MaxPatientErrorD)
		}
		if cents := v * 100; math.Abs(cents-math.Round(cents)) > 1e-6 {
			t.Fatalf("draw %v not rounded to 0.01", v)
		}
	}
}

func TestStatement_Bands(t *testing.T) {
	cases := []struct {
		errD float64
		want string
	}{
		{1.5, "short-sighted"},
		{-1.5, "long-sighted"},
		{1.0, "close to normal"},
		{-1.0, "close to normal"},
	}
	for _, tc := range cases {
		if got := Statement(tc.errD); !strings.Contains(got, tc.want) {
			t.Errorf("Statement(%v) = %q, want it to mention %q", tc.errD, got, tc.want)
		}
	}
}

func TestNewRound_StartsInProgress(t *testing.T) {
	r := NewRound(rand.New(rand.NewSource(3)), t0, 0, optics.DefaultConstants())
	if r.ID == "" {
		t.Error("ID is empty")
	}
	if r.Status != StatusInProgress {
		t.Errorf("Status %q, want %q", r.Status, StatusInProgress)
	}
	if r.Countdown.Duration != DefaultDuration {
		t.Errorf("duration %v, want %v", r.Countdown.Duration, DefaultDuration)
	}
	if _, ok := r.Revealed(t0); ok {
		t.Error("patient error revealed while in progress")
	}
}

func TestBlurWithLens_CorrectingLensIsSharper(t *testing.T) {
	c := optics.DefaultConstants()
	good, err := BlurWithLens(2, -2, c)
	if err != nil {
		t.Fatal(err)
	}
	bare, err := BlurWithLens(2, 0, c)
	if err != nil {
		t.Fatal(err)
	}
	wrong, err := BlurWithLens(2, 1, c)
	if err != nil {
		t.Fatal(err)
	}
	if !(good < bare && bare < wrong) {
		t.Errorf("blur good=%v bare=%v wrong=%v, want good < bare < wrong", good, bare, wrong)
	}
}

func TestRound_AskPatient(t *testing.T) {
	r := testRound(2)
	fb, err := r.AskPatient(-2, 1, t0.Add(time.Second))
	if err != nil {
		t.Fatalf("AskPatient: %v", err)
	}
	if fb.RemainingSeconds != 59 {
		t.Errorf("remaining %d, want 59", fb.RemainingSeconds)
	}
	if !strings.Contains(fb.Text, "-2.00D") && !strings.Contains(fb.Text, "+1.00D") {
		t.Errorf("feedback %q does not name the lenses", fb.Text)
	}
	if r.Tests != 1 || r.LastLenses != [2]float64{-2, 1} {
		t.Errorf("tests=%d last=%v, want 1 and [-2 1]", r.Tests, r.LastLenses)
	}
}

func TestRound_AskPatientAfterTimeIsUp(t *testing.T) {
	r := testRound(2)
	_, err := r.AskPatient(0, 1, t0.Add(61*time.Second))
	if !errors.Is(err, ErrRoundExpired) {
		t.Fatalf("err %v, want ErrRoundExpired", err)
	}
	if r.Status != StatusExpired {
		t.Errorf("status %q, want expired", r.Status)
	}
	got, ok := r.Revealed(t0.Add(61 * time.Second))
	if !ok || got != 2 {
		t.Errorf("Revealed = %v, %v; want 2, true", got, ok)
	}
}

func TestRound_SubmitGuessScoring(t *testing.T) {
	// With the lens 12 mm in front of the eye, +2 D needs -2.06 D.
	const ideal = -2.06
	cases := []struct {
		guess float64
		score string
		win   bool
	}{
		{ideal, "Infinity", true},
		{ideal - 0.2, "5.00", true},
		{-2, "16.67", true},
		{ideal + 0.5, "2.00", false},
		{ideal + 5, "0.20", false},
	}
	for _, tc := range cases {
		r := testRound(2)
		res, err := r.SubmitGuess(tc.guess, t0.Add(10*time.Second))
		if err != nil {
			t.Fatalf("SubmitGuess(%v): %v", tc.guess, err)
		}
		if res.IdealCorrectionD != ideal || res.ActualErrorD != 2 {
			t.Errorf("ideal %v actual %v, want %v and 2", res.IdealCorrectionD, res.ActualErrorD, ideal)
		}
		if got := FormatScore(res.Score); got != tc.score {
			t.Errorf("guess %v: score %q, want %q", tc.guess, got, tc.score)
		}
		if res.Win != tc.win {
			t.Errorf("guess %v: win %v, want %v", tc.guess, res.Win, tc.win)
		}
		if r.Status != StatusFinished {
			t.Errorf("status %q, want finished", r.Status)
		}
	}
}

func TestIdealCorrection_IsTheSharpestLens(t *testing.T) {
	c := optics.DefaultConstants()
	for cents := int(MinPatientErrorD * 100); cents <= int(MaxPatientErrorD*100); cents += 25 {
		errD := float64(cents) / 100
		sharpest, least := 0.0, math.Inf(1)
		for step := -1200; step <= 1200; step++ {
			lens := float64(step) / 100
			b, err := BlurWithLens(errD, lens, c)
			if err != nil {
				t.Fatal(err)
			}
			if b < least {
				sharpest, least = lens, b
			}
		}
		ideal, err := IdealCorrection(errD, c)
		if err != nil {
			t.Fatalf("error %+.2f: %v", errD, err)
		}
		if math.Abs(ideal-sharpest) > LensStepD+1e-9 {
			t.Errorf("error %+.2f: ideal %+.2f, sharpest lens %+.2f", errD, ideal, sharpest)
		}
		res, err := testRound(errD).SubmitGuess(sharpest, t0)
		if err != nil {
			t.Fatal(err)
		}
		if !res.Win {
			t.Errorf("error %+.2f: sharpest lens %+.2f lost (ideal %+.2f, diff %.2f)", errD, sharpest, res.IdealCorrectionD, res.DifferenceD)
		}
	}
}

func TestIdealCorrection_EmmetropeNeedsNothing(t *testing.T) {
	ideal, err := IdealCorrection(0, optics.DefaultConstants())
	if err != nil {
		t.Fatal(err)
	}
	if ideal != 0 || math.Signbit(ideal) {
		t.Errorf("ideal %v, want +0", ideal)
	}
}

func TestRound_SubmitGuessOnlyOnce(t *testing.T) {
	r := testRound(-1)
	if _, err := r.SubmitGuess(1, t0); err != nil {
		t.Fatal(err)
	}
	if _, err := r.SubmitGuess(1, t0); !errors.Is(err, ErrRoundFinished) {
		t.Errorf("second submit err %v, want ErrRoundFinished", err)
	}
	if _, err := r.AskPatient(0, 1, t0); !errors.Is(err, ErrRoundFinished) {
		t.Errorf("ask after finish err %v, want ErrRoundFinished", err)
	}
	if _, err := r.SpoilerBlur(0); !errors.Is(err, ErrRoundFinished) {
		t.Errorf("spoiler after finish err %v, want ErrRoundFinished", err)
	}
}

func TestRound_SubmitGuessAfterExpiry(t *testing.T) {
	r := testRound(0.5)
	res, err := r.SubmitGuess(-0.5, t0.Add(5*time.Minute))
	if err != nil {
		t.Fatalf("SubmitGuess after expiry: %v", err)
	}
	if !res.Win {
		t.Errorf("guess -0.50 against ideal %+.2f should win", res.IdealCorrectionD)
	}
}

func TestRound_SnapshotCopiesResult(t *testing.T) {
	r := testRound(1)
	if _, err := r.SubmitGuess(-1, t0); err != nil {
		t.Fatal(err)
	}
	snap := r.Snapshot(t0)
	if snap.Result == nil || snap.Status != StatusFinished {
		t.Fatalf("snapshot %+v, want a finished round with a result", snap)
	}
	snap.Result.GuessD = 99
	if again := r.Snapshot(t0); again.Result.GuessD != -1 {
		t.Error("snapshot result aliases round state")
	}
}
