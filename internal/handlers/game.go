package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"visionlab/internal/game"
	"visionlab/internal/optics"
	draw "visionlab/internal/render"
	"visionlab/internal/render/raster"
	"visionlab/internal/view"
	"visionlab/internal/viewmodel"
	"visionlab/internal/views"
	"visionlab/pkg/realtime"
)

const roundCookieName = "visionlab_round"

// Error texts of the game endpoints. Clients show them verbatim.
const (
	msgNotStarted      = "Game not started."
	msgTimeUp          = "Time is up!"
	msgLensNotNumbers  = "Lens powers must be numbers."
	msgInvalidGuess    = "Invalid guess format."
	msgNoSession       = "Game session not found or patient data missing."
	msgInvalidTestLens = "Invalid test lens power."
	spoilerNote        = "Lower value = less blur."
)

type GameHandler struct {
	store  *game.Store
	logger *log.Logger
}

func NewGameHandler(store *game.Store, logger *log.Logger) *GameHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &GameHandler{store: store, logger: logger}
}

func (h *GameHandler) RegisterRoutes(r chi.Router) {
	r.Route("/game", func(r chi.Router) {
		r.Get("/", h.gamePage)
		r.Post("/new", h.newRound)
		r.Post("/ask_patient", h.askPatient)
		r.Post("/submit_guess", h.submitGuess)
		r.Post("/get_spoiler_blur_info", h.spoilerBlur)
		r.Get("/stream", h.stream)
		r.Get("/spoiler.png", h.spoilerPNG)
	})
}

// startRound creates a round for the caller and points the cookie at it.
func (h *GameHandler) startRound(w http.ResponseWriter) *game.Round {
	now := time.Now().UTC()
	round := h.store.CreateRound(now)
	h.store.EnsureCountdown(round.ID)
	http.SetCookie(w, &http.Cookie{
		Name:     roundCookieName,
		Value:    round.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  now.Add(24 * time.Hour),
	})
	h.logger.Info("round started", "game", round.ID)
	return round
}

func (h *GameHandler) roundFromCookie(r *http.Request) (*game.Round, bool) {
	cookie, err := r.Cookie(roundCookieName)
	if err != nil {
		return nil, false
	}
	round, err := h.store.Lookup(cookie.Value)
	if err != nil {
		h.logger.Debug("stale round cookie", "err", err)
		return nil, false
	}
	return round, true
}

func (h *GameHandler) gamePage(w http.ResponseWriter, r *http.Request) {
	round := h.startRound(w)
	snap := round.Snapshot(time.Now().UTC())
	c := h.store.Constants()
	data := viewmodel.GamePage{
		Title:            "visionlab game",
		RoundID:          snap.ID,
		Statement:        snap.Statement,
		DurationSec:      snap.DurationSeconds,
		RemainingSec:     snap.RemainingSeconds,
		StartedMs:        snap.StartedAt.UnixMilli(),
		GameDistanceM:    c.GameObjectDistanceM,
		RetinaDistanceM:  c.RetinaDistanceM,
		EyePowerD:        c.EmmetropicEyePowerD,
		PupilDiameterMM:  c.PupilDiameterM * 1000,
		WinToleranceD:    game.WinToleranceD,
		MinPatientErrorD: game.MinPatientErrorD,
		MaxPatientErrorD: game.MaxPatientErrorD,
	}
	render(w, r, views.GamePage(data))
}

func (h *GameHandler) newRound(w http.ResponseWriter, r *http.Request) {
	round := h.startRound(w)
	snap := round.Snapshot(time.Now().UTC())
	writeJSON(w, map[string]any{
		"round_id":          snap.ID,
		"patient_statement": snap.Statement,
		"game_duration":     snap.DurationSeconds,
		"remaining_time":    snap.RemainingSeconds,
		"game_constants":    h.store.Constants(),
	})
}

func (h *GameHandler) askPatient(w http.ResponseWriter, r *http.Request) {
	round, ok := h.roundFromCookie(r)
	if !ok {
		writeError(w, http.StatusBadRequest, msgNotStarted)
		return
	}
	now := time.Now().UTC()
	switch round.Snapshot(now).Status {
	case game.StatusExpired:
		h.store.WakeCountdown(round.ID)
		h.writeTimeUp(w, round, now)
		return
	case game.StatusFinished:
		writeError(w, http.StatusBadRequest, msgNotStarted)
		return
	}
	body := decodeBody(w, r)
	lens1, ok1 := numberField(body, "lens1_power")
	lens2, ok2 := numberField(body, "lens2_power")
	if !ok1 || !ok2 {
		writeError(w, http.StatusBadRequest, msgLensNotNumbers)
		return
	}
	fb, err := round.AskPatient(lens1, lens2, now)
	switch {
	case errors.Is(err, game.ErrRoundExpired):
		h.store.WakeCountdown(round.ID)
		h.writeTimeUp(w, round, now)
		return
	case errors.Is(err, game.ErrRoundFinished):
		writeError(w, http.StatusBadRequest, msgNotStarted)
		return
	case err != nil:
		h.logger.Error("ask patient", "game", round.ID, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.logger.Debug("ask patient", "game", round.ID, "lens1", lens1, "lens2", lens2)
	writeJSON(w, map[string]any{
		"feedback":       fb.Text,
		"remaining_time": fb.RemainingSeconds,
	})
}

func (h *GameHandler) writeTimeUp(w http.ResponseWriter, round *game.Round, now time.Time) {
	payload := map[string]any{"error": msgTimeUp}
	if errD, ok := round.Revealed(now); ok {
		payload["patient_error_D"] = errD
	}
	writeJSONStatus(w, http.StatusBadRequest, payload)
}

func (h *GameHandler) submitGuess(w http.ResponseWriter, r *http.Request) {
	round, ok := h.roundFromCookie(r)
	if !ok {
		writeError(w, http.StatusBadRequest, msgNotStarted)
		return
	}
	guess, ok := numberField(decodeBody(w, r), "guess")
	if !ok {
		writeError(w, http.StatusBadRequest, msgInvalidGuess)
		return
	}
	res, err := round.SubmitGuess(guess, time.Now().UTC())
	if errors.Is(err, game.ErrRoundFinished) {
		writeError(w, http.StatusBadRequest, msgNotStarted)
		return
	}
	if err != nil {
		h.logger.Error("submit guess", "game", round.ID, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.logger.Info("submit guess", "game", round.ID, "guess", guess, "tests", res.Tests, "win", res.Win)
	h.store.WakeCountdown(round.ID)
	h.store.Publish(round.ID, realtime.Event{Name: game.EventFinished})
	writeJSON(w, resultPayload(res))
}

func resultPayload(res game.Result) map[string]any {
	return map[string]any{
		"actual_error":          fmt.Sprintf("%+.2f", res.ActualErrorD),
		"ideal_correction":      fmt.Sprintf("%+.2f", res.IdealCorrectionD),
		"your_guess":            fmt.Sprintf("%+.2f", res.GuessD),
		"difference_from_ideal": fmt.Sprintf("%+.2f", res.DifferenceD),
		"score":                 game.FormatScore(res.Score),
		"win":                   res.Win,
	}
}

func (h *GameHandler) spoilerBlur(w http.ResponseWriter, r *http.Request) {
	round, ok := h.roundFromCookie(r)
	if !ok {
		writeError(w, http.StatusForbidden, msgNoSession)
		return
	}
	body := decodeBody(w, r)
	lens := 0.0
	if _, present := body["test_lens_power_D"]; present {
		lens, ok = numberField(body, "test_lens_power_D")
		if !ok {
			writeError(w, http.StatusBadRequest, msgInvalidTestLens)
			return
		}
	}
	blur, err := round.SpoilerBlur(lens)
	if errors.Is(err, game.ErrRoundFinished) {
		writeError(w, http.StatusForbidden, msgNoSession)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, map[string]any{
		"test_lens_power_D": lens,
		"blurriness_value":  optics.FormatBlur(blur),
		"note":              spoilerNote,
	})
}

func (h *GameHandler) stream(w http.ResponseWriter, r *http.Request) {
	round, ok := h.roundFromCookie(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	hub, ok := h.store.Broadcaster(round.ID)
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	snap := round.Snapshot(time.Now().UTC())
	writeSSE(w, game.EventTimer, strconv.Itoa(snap.RemainingSeconds))
	switch snap.Status {
	case game.StatusExpired:
		writeSSE(w, game.EventExpired, "")
	case game.StatusFinished:
		writeSSE(w, game.EventFinished, "")
	}
	flusher.Flush()

	keepAlive := time.NewTicker(25 * time.Second)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-sub:
			if !open {
				return
			}
			writeSSE(w, event.Name, event.Data)
			flusher.Flush()
		case <-keepAlive.C:
			_, _ = w.Write([]byte(": keepalive\n\n"))
			flusher.Flush()
		}
	}
}

// spoilerPNG draws the patient's uncorrected eye looking at the chart. It
// is only available once the round is over.
func (h *GameHandler) spoilerPNG(w http.ResponseWriter, r *http.Request) {
	round, ok := h.roundFromCookie(r)
	if !ok {
		writeError(w, http.StatusForbidden, msgNoSession)
		return
	}
	errD, revealed := round.Revealed(time.Now().UTC())
	if !revealed {
		writeError(w, http.StatusForbidden, "The patient's error is revealed when the round ends.")
		return
	}
	c := h.store.Constants()
	scene, err := optics.Build(optics.SceneConfig{
		InherentErrorD:  errD,
		ObjectDistanceM: c.GameObjectDistanceM,
	}, c)
	canvas := raster.New(DefaultCanvasWidth, DefaultCanvasHeight)
	status := http.StatusOK
	if err == nil {
		tr := view.DefaultTransform()
		v := tr.AutoFit(view.DetailExtents(scene), DefaultCanvasWidth, DefaultCanvasHeight)
		_, err = draw.Render(scene, tr, v, canvas, draw.Options{Title: fmt.Sprintf("Patient error %+.2f D", errD)})
	}
	if err != nil {
		h.logger.Error("render spoiler", "game", round.ID, "err", err)
		draw.Placeholder(canvas, "diagram unavailable")
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = canvas.EncodePNG(w)
}
