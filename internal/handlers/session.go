package handlers

import (
	"image"
	"sync"
	"time"

	"visionlab/internal/optics"
	"visionlab/internal/view"
	"visionlab/pkg/realtime"
)

const sessionCookieName = "visionlab_session"

// DefaultSceneConfig is what a new simulator session starts with.
func DefaultSceneConfig() optics.SceneConfig {
	return optics.SceneConfig{
		ObjectDistanceM: 1.0,
		ObjectHeightM:   optics.DefaultObjectHeightM,
		LensMode:        optics.LensUncorrected,
	}
}

// SimulatorSession is the per-browser simulator state. The detail view is
// fitted once and then follows the user's zoom and pan; the canvas size it
// was fitted for is kept with it.
type SimulatorSession struct {
	mu        sync.Mutex
	config    optics.SceneConfig
	detail    view.ViewState
	detailW   int
	detailH   int
	hasDetail bool
	object    *image.RGBA
	lastSeen  time.Time
}

// Config returns the session's scene configuration.
func (s *SimulatorSession) Config() optics.SceneConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

func (s *SimulatorSession) setConfig(cfg optics.SceneConfig) {
	s.mu.Lock()
	s.config = cfg
	s.mu.Unlock()
}

// Object returns the uploaded object picture, if any.
func (s *SimulatorSession) Object() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.object
}

func (s *SimulatorSession) setObject(img *image.RGBA) {
	s.mu.Lock()
	s.object = img
	s.mu.Unlock()
}

// fitDetail must be called with s.mu held.
func (s *SimulatorSession) fitDetail(scene optics.Scene, tr view.Transform, w, h int) {
	s.detail = tr.AutoFit(view.DetailExtents(scene), float64(w), float64(h))
	s.detailW, s.detailH = w, h
	s.hasDetail = true
}

// Detail returns the detail view, fitting it to the scene on first use.
func (s *SimulatorSession) Detail(scene optics.Scene, tr view.Transform, w, h int) view.ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasDetail {
		s.fitDetail(scene, tr, w, h)
	}
	return s.detail
}

// DetailSize returns the canvas size the detail view was fitted for, or
// the default canvas before the first fit.
func (s *SimulatorSession) DetailSize() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasDetail {
		return DefaultCanvasWidth, DefaultCanvasHeight
	}
	return s.detailW, s.detailH
}

// UpdateDetail applies fn to the detail view and stores the result.
func (s *SimulatorSession) UpdateDetail(scene optics.Scene, tr view.Transform, w, h int, fn func(view.ViewState) view.ViewState) view.ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasDetail {
		s.fitDetail(scene, tr, w, h)
	}
	s.detail = fn(s.detail)
	return s.detail
}

// ResetDetail refits the detail view to the scene.
func (s *SimulatorSession) ResetDetail(scene optics.Scene, tr view.Transform, w, h int) view.ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitDetail(scene, tr, w, h)
	return s.detail
}

func (s *SimulatorSession) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *SimulatorSession) seen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// SessionStore keeps simulator sessions by cookie ID. Nothing is pushed to
// a simulator page, so its rooms carry no broadcaster.
type SessionStore struct {
	r *realtime.RoomStore[*SimulatorSession]
}

func NewSessionStore() *SessionStore {
	return &SessionStore{r: realtime.NewRoomStore[*SimulatorSession](realtime.WithoutBroadcast())}
}

// Get returns the session with id, if any.
func (s *SessionStore) Get(id string) (*SimulatorSession, bool) {
	room, ok := s.r.Get(id)
	if !ok || room.State == nil {
		return nil, false
	}
	return room.State, true
}

// Create starts a session with the default scene.
func (s *SessionStore) Create(id string, now time.Time) *SimulatorSession {
	sess := &SimulatorSession{config: DefaultSceneConfig(), lastSeen: now}
	s.r.Create(id, sess)
	return sess
}

// Prune drops sessions not seen since cutoff.
func (s *SessionStore) Prune(cutoff time.Time) int {
	var stale []string
	s.r.Each(func(room *realtime.Room[*SimulatorSession]) {
		if room.State == nil || room.State.seen().Before(cutoff) {
			stale = append(stale, room.ID)
		}
	})
	for _, id := range stale {
		s.r.Delete(id)
	}
	return len(stale)
}

func (s *SessionStore) Len() int { return s.r.Len() }
