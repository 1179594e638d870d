// Package viewer holds the state of the desktop viewer: the scene
// configuration, the two canvases' views, drag state and the game panel.
// It has no window dependency; internal/desktop feeds it input.
package viewer

import (
	"errors"
	"fmt"
	"math"

	"visionlab/internal/gameclient"
	"visionlab/internal/optics"
	"visionlab/internal/render"
	"visionlab/internal/view"
)

const (
	// StepD is the diopter increment of every power control.
	StepD = 0.25
	// WheelFactor is the zoom change per wheel notch.
	WheelFactor = 1.1
	// distanceFactor scales the object distance per key press.
	distanceFactor = 1.25
	maxDistanceM   = 1e4
	maxLogLines    = 6
)

// Action is one discrete user command.
type Action int

const (
	ActNone Action = iota
	ActErrorUp
	ActErrorDown
	ActCloser
	ActFarther
	ActCycleLens
	ActPowerUp
	ActPowerDown
	ActShiftUp
	ActShiftDown
	ActToggleRelaxed
	ActResetView
	ActLens1Up
	ActLens1Down
	ActLens2Up
	ActLens2Down
	ActNewRound
	ActAsk
	ActSubmit
	ActSpoiler
)

// Game is the subset of gameclient.Async the model drives.
type Game interface {
	NewRound() uint64
	Ask(lens1, lens2 float64) uint64
	Submit(guess float64) uint64
	Spoiler(lens float64) uint64
}

// Model is the viewer state. It is not safe for concurrent use; the
// window loop owns it.
type Model struct {
	constants optics.Constants
	tr        view.Transform
	width     int
	height    int

	Config optics.SceneConfig
	Scene  optics.Scene
	Detail view.ViewState

	pan view.PanController

	game   Game
	Lens1  float64
	Lens2  float64
	Status string
	Log    []string
}

// New builds the first scene and fits the detail canvas. Each canvas is
// width x height pixels. game may be nil.
func New(c optics.Constants, cfg optics.SceneConfig, width, height int, game Game) (*Model, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: canvas is %dx%d", render.ErrMissingPrerequisite, width, height)
	}
	m := &Model{constants: c, tr: view.DefaultTransform(), width: width, height: height, Config: cfg, game: game, Lens2: StepD}
	if err := m.rebuild(); err != nil {
		return nil, err
	}
	m.ResetView()
	if game == nil {
		m.Status = "offline: game keys disabled"
	}
	return m, nil
}

func (m *Model) rebuild() error {
	s, err := optics.Build(m.Config, m.constants)
	if err != nil {
		return fmt.Errorf("build scene: %w", err)
	}
	m.Scene = s
	return nil
}

// ResetView refits the detail canvas to the eye region.
func (m *Model) ResetView() {
	m.Detail = m.tr.AutoFit(view.DetailExtents(m.Scene), float64(m.width), float64(m.height))
}

// Overview is recomputed from the scene on every call.
func (m *Model) Overview() view.ViewState {
	return m.tr.AutoFit(view.OverviewExtents(m.Scene), float64(m.width), float64(m.height))
}

// Apply runs one action and reports whether the canvases need redrawing.
func (m *Model) Apply(a Action) bool {
	cfg := m.Config
	switch a {
	case ActErrorUp:
		cfg.InherentErrorD = roundStep(cfg.InherentErrorD + StepD)
	case ActErrorDown:
		cfg.InherentErrorD = roundStep(cfg.InherentErrorD - StepD)
	case ActCloser:
		cfg.ObjectDistanceM = math.Max(optics.MinObjectDistanceM, cfg.ObjectDistanceM/distanceFactor)
	case ActFarther:
		cfg.ObjectDistanceM = math.Min(maxDistanceM, cfg.ObjectDistanceM*distanceFactor)
	case ActCycleLens:
		cfg.LensMode = (cfg.LensMode + 1) % 3
	case ActPowerUp, ActPowerDown:
		d := StepD
		if a == ActPowerDown {
			d = -StepD
		}
		switch cfg.LensMode {
		case optics.LensManual:
			cfg.ManualLensPowerD = roundStep(cfg.ManualLensPowerD + d)
		case optics.LensPrescription:
			cfg.PrescriptionD = roundStep(cfg.PrescriptionD + d)
		default:
			return false
		}
	case ActShiftUp:
		cfg.PrescriptionShiftD = roundStep(cfg.PrescriptionShiftD + StepD)
	case ActShiftDown:
		cfg.PrescriptionShiftD = roundStep(cfg.PrescriptionShiftD - StepD)
	case ActToggleRelaxed:
		cfg.DisableAccommodation = !cfg.DisableAccommodation
	case ActResetView:
		m.ResetView()
		return true
	default:
		m.applyGame(a)
		return false
	}
	prev := m.Config
	m.Config = cfg
	if err := m.rebuild(); err != nil {
		m.Config = prev
		m.Status = err.Error()
		return false
	}
	return true
}

func (m *Model) applyGame(a Action) {
	switch a {
	case ActLens1Up:
		m.Lens1 = roundStep(m.Lens1 + StepD)
	case ActLens1Down:
		m.Lens1 = roundStep(m.Lens1 - StepD)
	case ActLens2Up:
		m.Lens2 = roundStep(m.Lens2 + StepD)
	case ActLens2Down:
		m.Lens2 = roundStep(m.Lens2 - StepD)
	}
	if m.game == nil {
		return
	}
	switch a {
	case ActNewRound:
		m.game.NewRound()
		m.Status = "starting a new round..."
	case ActAsk:
		m.game.Ask(m.Lens1, m.Lens2)
		m.Status = "asking the patient..."
	case ActSubmit:
		m.game.Submit(m.Lens1)
		m.Status = "submitting..."
	case ActSpoiler:
		m.game.Spoiler(m.Lens1)
	}
}

// HandleReply shows a game server answer. Network failures land in the
// status line and leave the controls usable.
func (m *Model) HandleReply(r gameclient.Reply) {
	if r.Err != nil {
		var apiErr *gameclient.APIError
		switch {
		case errors.Is(r.Err, gameclient.ErrTimeUp) && errors.As(r.Err, &apiErr) && apiErr.PatientErrorD != nil:
			m.Status = fmt.Sprintf("Time is up! The patient's error was %+.2f D.", *apiErr.PatientErrorD)
		case errors.As(r.Err, &apiErr):
			m.Status = apiErr.Message
		default:
			m.Status = "game server unreachable: " + r.Err.Error()
		}
		return
	}
	switch r.Kind {
	case gameclient.KindNewRound:
		m.Log = nil
		m.Status = fmt.Sprintf("%ds left", r.Round.RemainingSeconds)
		m.addLog("Patient: " + r.Round.Statement)
	case gameclient.KindAsk:
		m.Status = fmt.Sprintf("%ds left", r.Answer.RemainingSeconds)
		m.addLog(r.Answer.Feedback)
	case gameclient.KindSubmit:
		verdict := "miss"
		if r.Result.Win {
			verdict = "win"
		}
		m.Status = fmt.Sprintf("%s: error %s D, ideal %s D, score %s", verdict, r.Result.ActualError, r.Result.IdealCorrection, r.Result.Score)
	case gameclient.KindSpoiler:
		m.addLog(fmt.Sprintf("spoiler %+.2f D: %s", r.Spoiler.TestLensPowerD, r.Spoiler.Blurriness))
	}
}

func (m *Model) addLog(line string) {
	m.Log = append(m.Log, line)
	if len(m.Log) > maxLogLines {
		m.Log = m.Log[len(m.Log)-maxLogLines:]
	}
}

// Wheel zooms the detail canvas at the cursor. notches > 0 zooms in.
func (m *Model) Wheel(x, y, notches float64) bool {
	if notches == 0 || math.IsNaN(notches) {
		return false
	}
	m.Detail = m.tr.ZoomAtCursor(m.Detail, math.Pow(WheelFactor, notches), x, y)
	return true
}

func (m *Model) Press(x, y float64) { m.pan.Press(x, y) }

// Move pans the detail canvas while a drag is in progress.
func (m *Model) Move(x, y float64) bool {
	dx, dy, ok := m.pan.Move(x, y)
	if !ok {
		return false
	}
	m.Detail = view.Pan(m.Detail, dx, dy)
	return true
}

func (m *Model) Release() { m.pan.Release() }

// Leave ends a drag when the pointer exits the detail canvas.
func (m *Model) Leave() { m.pan.Leave() }

func (m *Model) Panning() bool { return m.pan.Panning() }

// RenderOverview draws the whole optical path.
func (m *Model) RenderOverview(c render.Canvas) (render.Report, error) {
	return render.Render(m.Scene, m.tr, m.Overview(), c, render.Options{Title: "Overview", HideCaption: true})
}

// RenderDetail draws the eye region with the focus caption.
func (m *Model) RenderDetail(c render.Canvas) (render.Report, error) {
	return render.Render(m.Scene, m.tr, m.Detail, c, render.Options{Title: "Detail: eye"})
}

// Summary is the one-line description of the current configuration.
func (m *Model) Summary() string {
	s := fmt.Sprintf("error %+.2f D  object %.3g m  lens %s %+.2f D", m.Config.InherentErrorD, m.Scene.Object.DistanceM, m.Config.LensMode, m.Scene.CorrectivePowerD)
	if m.Config.LensMode == optics.LensPrescription {
		s += fmt.Sprintf(" (shift %+.2f)", m.Config.PrescriptionShiftD)
	}
	if m.Config.DisableAccommodation {
		s += "  relaxed"
	}
	return s + "  blur " + optics.FormatBlur(optics.Blur(m.Scene, m.constants))
}

// GameLine shows the two test lenses.
func (m *Model) GameLine() string {
	return fmt.Sprintf("test lenses %+.2f D / %+.2f D", m.Lens1, m.Lens2)
}

func roundStep(v float64) float64 {
	return math.Round(v*100) / 100
}
