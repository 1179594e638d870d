// Package game runs the refraction game: a patient with a hidden
// refractive error compares pairs of test lenses, and the player has a
// fixed time to name the correcting lens.
package game

import (
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"

	"visionlab/internal/optics"
	"visionlab/pkg/realtime"
)

const (
	StatusInProgress = "in_progress"
	StatusExpired    = "expired"
	StatusFinished   = "finished"

	DefaultDuration = 180 * time.Second

	MinPatientErrorD = -4.0
	MaxPatientErrorD = 6.0
	// WinToleranceD is the largest guess error that still wins.
	WinToleranceD = 0.25
)

var (
	ErrRoundNotFound = errors.New("round not found")
	ErrRoundExpired  = errors.New("round expired")
	ErrRoundFinished = errors.New("round finished")
)

const (
	statementMyopic   = "I've been having trouble seeing things far away. I think I might be short-sighted (myopic)."
	statementHyperope = "I find it hard to focus on things up close, and sometimes distant objects are blurry too. I might be long-sighted (hyperopic)."
	statementNormal   = "I believe that my vision is close to normal."
)

// Statement is what a patient with the given error says about their sight.
func Statement(errorD float64) string {
	switch {
	case errorD > 1:
		return statementMyopic
	case errorD < -1:
		return statementHyperope
	default:
		return statementNormal
	}
}

// DrawPatientError picks a hidden error uniformly from the allowed range,
// rounded to 0.01 D.
func DrawPatientError(rng *rand.Rand) float64 {
	v := MinPatientErrorD + rng.Float64()*(MaxPatientErrorD-MinPatientErrorD)
	return math.Round(v*100) / 100
}

// Round is one game against one patient.
type Round struct {
	mu sync.Mutex

	ID        string
	CreatedAt time.Time
	Countdown realtime.Countdown
	Statement string
	Status    string
	Tests     int
	// LastLenses are the two powers of the latest comparison.
	LastLenses [2]float64

	patientErrorD float64
	constants     optics.Constants
	rng           *rand.Rand
	result        *Result
}

// NewRound starts a round at now with a freshly drawn patient.
func NewRound(rng *rand.Rand, now time.Time, duration time.Duration, c optics.Constants) *Round {
	errD := DrawPatientError(rng)
	return newRoundWithError(rng, now, duration, c, errD)
}

func newRoundWithError(rng *rand.Rand, now time.Time, duration time.Duration, c optics.Constants, errD float64) *Round {
	if duration <= 0 {
		duration = DefaultDuration
	}
	r := &Round{
		ID:            newID(),
		CreatedAt:     now,
		Countdown:     realtime.Countdown{Duration: duration},
		Statement:     Statement(errD),
		Status:        StatusInProgress,
		patientErrorD: errD,
		constants:     c,
		rng:           rng,
	}
	r.Countdown.Start(now)
	return r
}

// Feedback is the patient's answer to one lens comparison.
type Feedback struct {
	Text             string
	RemainingSeconds int
}

// AskPatient lets the patient compare two test lenses at the game
// distance.
func (r *Round) AskPatient(lens1, lens2 float64, now time.Time) (Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkPlayableLocked(now); err != nil {
		return Feedback{}, err
	}
	b1, err := BlurWithLens(r.patientErrorD, lens1, r.constants)
	if err != nil {
		return Feedback{}, err
	}
	b2, err := BlurWithLens(r.patientErrorD, lens2, r.constants)
	if err != nil {
		return Feedback{}, err
	}
	r.Tests++
	r.LastLenses = [2]float64{lens1, lens2}
	return Feedback{
		Text:             ChooseFeedback(lens1, lens2, b1, b2, r.rng.Float64()),
		RemainingSeconds: r.Countdown.RemainingSeconds(now),
	}, nil
}

// Result is the outcome of a submitted guess.
type Result struct {
	ActualErrorD     float64
	IdealCorrectionD float64
	GuessD           float64
	DifferenceD      float64
	Score            float64 // +Inf for an exact guess
	Win              bool
	Tests            int
}

// SubmitGuess grades the player's correcting lens and ends the round.
// Guesses are accepted after the timer runs out.
func (r *Round) SubmitGuess(guess float64, now time.Time) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Status == StatusFinished {
		return Result{}, ErrRoundFinished
	}
	ideal, err := IdealCorrection(r.patientErrorD, r.constants)
	if err != nil {
		return Result{}, err
	}
	r.expireLocked(now)
	diff := math.Abs(guess - ideal)
	score := math.Inf(1)
	if diff >= 1e-9 {
		score = 1 / diff
	}
	res := Result{
		ActualErrorD:     r.patientErrorD,
		IdealCorrectionD: ideal,
		GuessD:           guess,
		DifferenceD:      diff,
		Score:            score,
		Win:              diff <= WinToleranceD,
		Tests:            r.Tests,
	}
	r.result = &res
	r.Status = StatusFinished
	return res, nil
}

// SpoilerBlur returns the blur the patient would see through testLens.
// It is refused once the round has been graded.
func (r *Round) SpoilerBlur(testLens float64) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Status == StatusFinished {
		return 0, ErrRoundFinished
	}
	return BlurWithLens(r.patientErrorD, testLens, r.constants)
}

// Revealed returns the patient's error once the round is over (graded or
// out of time).
func (r *Round) Revealed(now time.Time) (float64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expireLocked(now)
	if r.Status == StatusInProgress {
		return 0, false
	}
	return r.patientErrorD, true
}

// Expire marks the round expired if its time has run out. It reports
// whether the status changed.
func (r *Round) Expire(now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.expireLocked(now)
}

func (r *Round) expireLocked(now time.Time) bool {
	if r.Status == StatusInProgress && r.Countdown.Expired(now) {
		r.Status = StatusExpired
		return true
	}
	return false
}

func (r *Round) checkPlayableLocked(now time.Time) error {
	r.expireLocked(now)
	switch r.Status {
	case StatusFinished:
		return ErrRoundFinished
	case StatusExpired:
		return ErrRoundExpired
	}
	return nil
}

// Snapshot is a consistent read of a round for rendering.
type Snapshot struct {
	ID               string
	Status           string
	Statement        string
	Tests            int
	LastLenses       [2]float64
	DurationSeconds  int
	RemainingSeconds int
	StartedAt        time.Time
	Result           *Result
}

func (r *Round) Snapshot(now time.Time) Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expireLocked(now)
	var res *Result
	if r.result != nil {
		copied := *r.result
		res = &copied
	}
	return Snapshot{
		ID:               r.ID,
		Status:           r.Status,
		Statement:        r.Statement,
		Tests:            r.Tests,
		LastLenses:       r.LastLenses,
		DurationSeconds:  int(r.Countdown.Duration / time.Second),
		RemainingSeconds: r.Countdown.RemainingSeconds(now),
		StartedAt:        r.Countdown.Started,
		Result:           res,
	}
}

// LensStepD is the finest step a test lens can be set to.
const LensStepD = 0.01

// IdealCorrection is the test lens, to the nearest LensStepD, that focuses
// the game object on the retina of an eye with errorD. It is the lens the
// patient sees sharpest through in AskPatient.
func IdealCorrection(errorD float64, c optics.Constants) (float64, error) {
	lens, err := optics.CorrectingPower(optics.SceneConfig{
		InherentErrorD:  errorD,
		ObjectDistanceM: c.GameObjectDistanceM,
	}, c)
	if err != nil {
		return 0, err
	}
	ideal := math.Round(lens/LensStepD) * LensStepD
	if ideal == 0 {
		ideal = 0 // no -0 in results
	}
	return ideal, nil
}

// BlurWithLens is the blur an eye with errorD sees at the game distance
// through a test lens worn at the spectacle plane.
func BlurWithLens(errorD, lensD float64, c optics.Constants) (float64, error) {
	s, err := optics.Build(optics.SceneConfig{
		InherentErrorD:   errorD,
		ObjectDistanceM:  c.GameObjectDistanceM,
		LensMode:         optics.LensManual,
		ManualLensPowerD: lensD,
	}, c)
	if err != nil {
		return 0, err
	}
	return optics.Blur(s, c), nil
}
