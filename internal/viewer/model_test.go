package viewer

import (
	"errors"
	"math"
	"strings"
	"testing"

	"visionlab/internal/gameclient"
	"visionlab/internal/optics"
	"visionlab/internal/render"
	"visionlab/internal/render/raster"
	"visionlab/internal/view"
)

type fakeGame struct {
	asked     [][2]float64
	submitted []float64
	rounds    int
}

func (f *fakeGame) NewRound() uint64 { f.rounds++; return uint64(f.rounds) }
func (f *fakeGame) Ask(l1, l2 float64) uint64 {
	f.asked = append(f.asked, [2]float64{l1, l2})
	return uint64(len(f.asked))
}
func (f *fakeGame) Submit(g float64) uint64 {
	f.submitted = append(f.submitted, g)
	return uint64(len(f.submitted))
}
func (f *fakeGame) Spoiler(float64) uint64 { return 1 }

func newModel(t *testing.T, cfg optics.SceneConfig, g Game) *Model {
	t.Helper()
	m, err := New(optics.DefaultConstants(), cfg, 400, 200, g)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func TestNewRejectsEmptyCanvas(t *testing.T) {
	_, err := New(optics.DefaultConstants(), optics.SceneConfig{ObjectDistanceM: 1}, 0, 200, nil)
	if !errors.Is(err, render.ErrMissingPrerequisite) {
		t.Fatalf("err = %v", err)
	}
}

func TestManualLensCorrectsThroughActions(t *testing.T) {
	m := newModel(t, optics.SceneConfig{InherentErrorD: -2, ObjectDistanceM: 1}, nil)
	if m.Apply(ActPowerUp) {
		t.Fatal("power keys should do nothing without a lens")
	}
	if !m.Apply(ActCycleLens) || m.Config.LensMode != optics.LensManual {
		t.Fatalf("lens mode = %v", m.Config.LensMode)
	}
	for i := 0; i < 8; i++ {
		m.Apply(ActPowerUp)
	}
	if m.Config.ManualLensPowerD != 2 {
		t.Fatalf("manual power = %v", m.Config.ManualLensPowerD)
	}
	if f := render.DescribeFocus(m.Scene); f.State != render.FocusSharp {
		t.Fatalf("focus = %+v", f)
	}
	if !strings.Contains(m.Summary(), "lens manual +2.00 D") {
		t.Fatalf("summary = %q", m.Summary())
	}
}

func TestObjectDistanceStaysPositive(t *testing.T) {
	m := newModel(t, optics.SceneConfig{ObjectDistanceM: 0.002}, nil)
	for i := 0; i < 10; i++ {
		m.Apply(ActCloser)
	}
	if m.Config.ObjectDistanceM < optics.MinObjectDistanceM {
		t.Fatalf("distance = %v", m.Config.ObjectDistanceM)
	}
}

func TestWheelKeepsCursorPoint(t *testing.T) {
	m := newModel(t, optics.SceneConfig{ObjectDistanceM: 1}, nil)
	tr := view.DefaultTransform()
	wx, wy := tr.ScreenToWorld(m.Detail, 120, 80)
	m.Wheel(120, 80, 3)
	px, py := tr.WorldToScreen(m.Detail, wx, wy)
	if math.Abs(px-120) > 1e-6 || math.Abs(py-80) > 1e-6 {
		t.Fatalf("cursor point moved to (%v, %v)", px, py)
	}
}

func TestDragStopsOnLeave(t *testing.T) {
	m := newModel(t, optics.SceneConfig{ObjectDistanceM: 1}, nil)
	start := m.Detail
	m.Press(10, 10)
	if !m.Move(30, 5) {
		t.Fatal("move while pressed should pan")
	}
	if m.Detail.PanX != start.PanX+20 || m.Detail.PanY != start.PanY-5 {
		t.Fatalf("detail = %+v, start %+v", m.Detail, start)
	}
	m.Leave()
	if m.Move(50, 50) || m.Panning() {
		t.Fatal("pan continued after leaving the canvas")
	}
}

func TestResetViewRefits(t *testing.T) {
	m := newModel(t, optics.SceneConfig{ObjectDistanceM: 1}, nil)
	fitted := m.Detail
	m.Wheel(0, 0, 5)
	m.Apply(ActResetView)
	if m.Detail != fitted {
		t.Fatalf("detail = %+v, want %+v", m.Detail, fitted)
	}
}

func TestGameActions(t *testing.T) {
	g := &fakeGame{}
	m := newModel(t, optics.SceneConfig{ObjectDistanceM: 1}, g)
	m.Apply(ActLens1Up)
	m.Apply(ActLens1Up)
	m.Apply(ActLens2Down)
	m.Apply(ActAsk)
	m.Apply(ActSubmit)
	if len(g.asked) != 1 || g.asked[0] != [2]float64{0.5, 0} {
		t.Fatalf("asked = %v", g.asked)
	}
	if len(g.submitted) != 1 || g.submitted[0] != 0.5 {
		t.Fatalf("submitted = %v", g.submitted)
	}
}

func TestOfflineGameKeysOnlyMoveLenses(t *testing.T) {
	m := newModel(t, optics.SceneConfig{ObjectDistanceM: 1}, nil)
	m.Apply(ActLens1Up)
	m.Apply(ActAsk)
	if m.Lens1 != StepD || !strings.HasPrefix(m.Status, "offline") {
		t.Fatalf("lens1 = %v status = %q", m.Lens1, m.Status)
	}
}

func TestHandleReply(t *testing.T) {
	m := newModel(t, optics.SceneConfig{ObjectDistanceM: 1}, &fakeGame{})
	m.HandleReply(gameclient.Reply{Kind: gameclient.KindNewRound, Round: gameclient.Round{Statement: "I see fine.", RemainingSeconds: 180}})
	m.HandleReply(gameclient.Reply{Kind: gameclient.KindAsk, Answer: gameclient.Answer{Feedback: "The first lens looks better.", RemainingSeconds: 170}})
	if len(m.Log) != 2 || m.Status != "170s left" {
		t.Fatalf("log = %v status = %q", m.Log, m.Status)
	}

	errD := 1.5
	m.HandleReply(gameclient.Reply{Kind: gameclient.KindAsk, Err: &gameclient.APIError{Status: 400, Message: "Time is up!", PatientErrorD: &errD}})
	if !strings.Contains(m.Status, "+1.50 D") {
		t.Fatalf("status = %q", m.Status)
	}
	m.HandleReply(gameclient.Reply{Kind: gameclient.KindAsk, Err: errors.New("dial tcp: refused")})
	if !strings.HasPrefix(m.Status, "game server unreachable") {
		t.Fatalf("status = %q", m.Status)
	}
}

func TestRenderBothCanvases(t *testing.T) {
	m := newModel(t, optics.SceneConfig{InherentErrorD: 1, ObjectDistanceM: 2}, nil)
	if _, err := m.RenderOverview(raster.New(400, 200)); err != nil {
		t.Fatalf("overview: %v", err)
	}
	rep, err := m.RenderDetail(raster.New(400, 200))
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if rep.Focus.State != render.FocusFront {
		t.Fatalf("myopic eye focus = %v", rep.Focus.State)
	}
}
