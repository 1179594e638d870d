package handlers

import (
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"image"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"visionlab/internal/config"
	"visionlab/internal/optics"
	draw "visionlab/internal/render"
	"visionlab/internal/render/pdf"
	"visionlab/internal/render/raster"
	"visionlab/internal/view"
	"visionlab/internal/viewmodel"
	"visionlab/internal/views"
)

const (
	DefaultCanvasWidth  = 900
	DefaultCanvasHeight = 360
	minCanvasSide       = 100
	maxCanvasSide       = 2400

	maxUploadBytes = 8 << 20
)

type SimulatorHandler struct {
	sessions  *SessionStore
	constants optics.Constants
	tr        view.Transform
	logger    *log.Logger
}

func NewSimulatorHandler(sessions *SessionStore, c optics.Constants, logger *log.Logger) *SimulatorHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &SimulatorHandler{sessions: sessions, constants: c, tr: view.DefaultTransform(), logger: logger}
}

func (h *SimulatorHandler) RegisterRoutes(r chi.Router) {
	r.Route("/simulator", func(r chi.Router) {
		r.Get("/", h.simulatorPage)
		r.Get("/diagram.png", h.diagramPNG)
		r.Get("/diagram.pdf", h.diagramPDF)
		r.Get("/scene.json", h.sceneJSON)
		r.Post("/object", h.uploadObject)
		r.Post("/view/zoom", h.zoom)
		r.Post("/view/pan", h.pan)
		r.Post("/view/reset", h.reset)
	})
}

// session returns the caller's simulator session, creating it and setting
// the cookie when there is none.
func (h *SimulatorHandler) session(w http.ResponseWriter, r *http.Request) *SimulatorSession {
	now := time.Now().UTC()
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if sess, ok := h.sessions.Get(cookie.Value); ok {
			sess.touch(now)
			return sess
		}
	}
	id := newSessionID()
	sess := h.sessions.Create(id, now)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  now.Add(24 * time.Hour),
	})
	return sess
}

func (h *SimulatorHandler) simulatorPage(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	cfg := sceneConfigFromQuery(r.URL.Query(), sess.Config())
	sess.setConfig(cfg)

	scene, err := optics.Build(cfg, h.constants)
	if err != nil {
		h.logger.Error("build scene", "err", err)
		http.Error(w, "scene unavailable", http.StatusInternalServerError)
		return
	}
	focus := draw.DescribeFocus(scene)
	data := viewmodel.SimulatorPage{
		Title:            "visionlab simulator",
		InherentErrorD:   cfg.InherentErrorD,
		ObjectDistanceM:  cfg.ObjectDistanceM,
		ObjectHeightM:    cfg.ObjectHeightM,
		LensModes:        lensModeOptions(cfg.LensMode),
		ManualLensPowerD: cfg.ManualLensPowerD,
		PrescriptionD:    cfg.PrescriptionD,
		ShiftD:           cfg.PrescriptionShiftD,
		Relaxed:          cfg.DisableAccommodation,
		HasObjectImage:   sess.Object() != nil,
		Focus:            focus.Text,
		Blur:             optics.FormatBlur(optics.Blur(scene, h.constants)),
		EyePowerD:        scene.EyePowerD,
		CorrectivePowerD: scene.CorrectivePowerD,
		Stages:           stageRows(scene),
		CanvasWidth:      DefaultCanvasWidth,
		CanvasHeight:     DefaultCanvasHeight,
		QueryString:      sceneQuery(cfg).Encode(),
	}
	render(w, r, views.SimulatorPage(data))
}

// sceneFor builds the scene a diagram request asks for. Query parameters
// win over the session's stored configuration.
func (h *SimulatorHandler) sceneFor(r *http.Request, sess *SimulatorSession) (optics.Scene, error) {
	cfg := sceneConfigFromQuery(r.URL.Query(), sess.Config())
	return optics.Build(cfg, h.constants)
}

func clampSide(v int) int {
	if v < minCanvasSide {
		return minCanvasSide
	}
	if v > maxCanvasSide {
		return maxCanvasSide
	}
	return v
}

func canvasSize(q url.Values) (int, int) {
	return clampSide(config.ParseInt(q.Get("w"), DefaultCanvasWidth)), clampSide(config.ParseInt(q.Get("h"), DefaultCanvasHeight))
}

// detailCanvas is the detail canvas a view request refers to: the "w" and
// "h" of the body, else the size the session's view was fitted for.
func detailCanvas(body map[string]any, sess *SimulatorSession) (int, int) {
	w, okW := numberField(body, "w")
	h, okH := numberField(body, "h")
	if !okW || !okH {
		return sess.DetailSize()
	}
	return clampSide(int(math.Round(w))), clampSide(int(math.Round(h)))
}

// viewFor picks the overview fit or the session's detail view.
func (h *SimulatorHandler) viewFor(canvas string, scene optics.Scene, sess *SimulatorSession, w, ht int) (view.ViewState, string) {
	if canvas == "detail" {
		return sess.Detail(scene, h.tr, w, ht), "Detail: eye"
	}
	return h.tr.AutoFit(view.OverviewExtents(scene), float64(w), float64(ht)), "Overview"
}

func (h *SimulatorHandler) diagramPNG(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	q := r.URL.Query()
	width, height := canvasSize(q)
	canvas := raster.New(width, height)

	status := http.StatusOK
	scene, err := h.sceneFor(r, sess)
	if err == nil {
		v, title := h.viewFor(q.Get("canvas"), scene, sess, width, height)
		_, err = draw.Render(scene, h.tr, v, canvas, draw.Options{Title: title, ObjectImage: objectImage(sess)})
	}
	if err != nil {
		h.logger.Error("render diagram", "err", err)
		if !errors.Is(err, draw.ErrMissingPrerequisite) {
			draw.Placeholder(canvas, "diagram unavailable")
		}
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := canvas.EncodePNG(w); err != nil {
		h.logger.Warn("encode png", "err", err)
	}
}

func (h *SimulatorHandler) diagramPDF(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	width, height := canvasSize(r.URL.Query())
	scene, err := h.sceneFor(r, sess)
	if err != nil {
		h.logger.Error("build scene", "err", err)
		http.Error(w, "scene unavailable", http.StatusInternalServerError)
		return
	}

	doc := pdf.New(width, height)
	for i, canvas := range []string{"overview", "detail"} {
		if i > 0 {
			doc.NextPage()
		}
		v, title := h.viewFor(canvas, scene, sess, width, height)
		if _, err := draw.Render(scene, h.tr, v, doc, draw.Options{Title: title, ObjectImage: objectImage(sess)}); err != nil {
			h.logger.Error("render pdf", "canvas", canvas, "err", err)
			http.Error(w, "diagram unavailable", http.StatusInternalServerError)
			return
		}
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="visionlab.pdf"`)
	if err := doc.Write(w); err != nil {
		h.logger.Warn("write pdf", "err", err)
	}
}

func (h *SimulatorHandler) sceneJSON(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	scene, err := h.sceneFor(r, sess)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	rays := optics.TraceRays(scene)
	writeJSON(w, map[string]any{
		"constants": h.constants,
		"scene":     sceneSummary(scene),
		"focus":     draw.DescribeFocus(scene),
		"blur":      optics.FormatBlur(optics.Blur(scene, h.constants)),
		"rays":      raySummary(rays),
		"converges": optics.RaysConverge(scene, rays, 1e-6),
	})
}

func (h *SimulatorHandler) detailScene(sess *SimulatorSession) (optics.Scene, error) {
	return optics.Build(sess.Config(), h.constants)
}

func (h *SimulatorHandler) zoom(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	body := decodeBody(w, r)
	factor, ok := numberField(body, "factor")
	if !ok || factor <= 0 {
		writeError(w, http.StatusBadRequest, "zoom factor must be a positive number")
		return
	}
	x, okX := numberField(body, "x")
	y, okY := numberField(body, "y")
	if !okX || !okY {
		writeError(w, http.StatusBadRequest, "cursor position must be numbers")
		return
	}
	scene, err := h.detailScene(sess)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	cw, ch := detailCanvas(body, sess)
	v := sess.UpdateDetail(scene, h.tr, cw, ch, func(v view.ViewState) view.ViewState {
		return h.tr.ZoomAtCursor(v, factor, x, y)
	})
	writeJSON(w, v)
}

func (h *SimulatorHandler) pan(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	body := decodeBody(w, r)
	dx, okX := numberField(body, "dx")
	dy, okY := numberField(body, "dy")
	if !okX || !okY {
		writeError(w, http.StatusBadRequest, "pan delta must be numbers")
		return
	}
	scene, err := h.detailScene(sess)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	cw, ch := detailCanvas(body, sess)
	v := sess.UpdateDetail(scene, h.tr, cw, ch, func(v view.ViewState) view.ViewState {
		return view.Pan(v, dx, dy)
	})
	writeJSON(w, v)
}

func (h *SimulatorHandler) reset(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	body := decodeBody(w, r)
	scene, err := h.detailScene(sess)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	cw, ch := detailCanvas(body, sess)
	writeJSON(w, sess.ResetDetail(scene, h.tr, cw, ch))
}

func (h *SimulatorHandler) uploadObject(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid upload", http.StatusBadRequest)
		return
	}
	if r.FormValue("clear") != "" {
		sess.setObject(nil)
		http.Redirect(w, r, "/simulator", http.StatusSeeOther)
		return
	}
	file, _, err := r.FormFile("object")
	if err != nil {
		http.Error(w, "object image required", http.StatusBadRequest)
		return
	}
	defer file.Close()
	img, err := raster.DecodeObject(file, raster.MaxObjectSide)
	if err != nil {
		h.logger.Info("reject object image", "err", err)
		if errors.Is(err, raster.ErrImageTooLarge) {
			http.Error(w, "image too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "unsupported image", http.StatusBadRequest)
		return
	}
	sess.setObject(img)
	h.logger.Info("object image stored", "width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	http.Redirect(w, r, "/simulator", http.StatusSeeOther)
}

func objectImage(sess *SimulatorSession) image.Image {
	if img := sess.Object(); img != nil {
		return img
	}
	return nil
}

// sceneConfigFromQuery overlays form values on base. Malformed numbers
// keep the base value.
func sceneConfigFromQuery(q url.Values, base optics.SceneConfig) optics.SceneConfig {
	cfg := base
	cfg.InherentErrorD = config.ParseFloat(q.Get("error_d"), base.InherentErrorD)
	cfg.ObjectDistanceM = config.ParseFloat(q.Get("distance_m"), base.ObjectDistanceM)
	cfg.ObjectHeightM = config.ParseFloat(q.Get("height_m"), base.ObjectHeightM)
	cfg.ManualLensPowerD = config.ParseFloat(q.Get("manual_d"), base.ManualLensPowerD)
	cfg.PrescriptionD = config.ParseFloat(q.Get("rx_d"), base.PrescriptionD)
	cfg.PrescriptionShiftD = config.ParseFloat(q.Get("rx_shift_d"), base.PrescriptionShiftD)
	if q.Has("lens_mode") {
		cfg.LensMode = optics.ParseLensMode(q.Get("lens_mode"))
		// An unticked checkbox is simply absent from a submitted form.
		cfg.DisableAccommodation = config.ParseBool(q.Get("relaxed"), false)
	} else {
		cfg.DisableAccommodation = config.ParseBool(q.Get("relaxed"), base.DisableAccommodation)
	}
	return cfg
}

func sceneQuery(cfg optics.SceneConfig) url.Values {
	q := url.Values{}
	f := func(v float64) string { return fmt.Sprintf("%g", v) }
	q.Set("error_d", f(cfg.InherentErrorD))
	q.Set("distance_m", f(cfg.ObjectDistanceM))
	q.Set("height_m", f(cfg.ObjectHeightM))
	q.Set("lens_mode", cfg.LensMode.String())
	q.Set("manual_d", f(cfg.ManualLensPowerD))
	q.Set("rx_d", f(cfg.PrescriptionD))
	q.Set("rx_shift_d", f(cfg.PrescriptionShiftD))
	if cfg.DisableAccommodation {
		q.Set("relaxed", "on")
	}
	return q
}

func lensModeOptions(selected optics.LensMode) []viewmodel.LensModeOption {
	modes := []struct {
		mode  optics.LensMode
		label string
	}{
		{optics.LensUncorrected, "No lens"},
		{optics.LensManual, "Manual lens"},
		{optics.LensPrescription, "Prescription"},
	}
	out := make([]viewmodel.LensModeOption, 0, len(modes))
	for _, m := range modes {
		out = append(out, viewmodel.LensModeOption{Value: m.mode.String(), Label: m.label, Selected: m.mode == selected})
	}
	return out
}

func stageRows(s optics.Scene) []viewmodel.StageRow {
	rows := make([]viewmodel.StageRow, 0, len(s.Lenses))
	for i, lens := range s.Lenses {
		name := "Eye lens"
		if lens.Role == optics.RoleCorrective {
			name = "Corrective lens"
		}
		img := s.Images[i]
		x := s.ImageWorldX(i)
		rows = append(rows, viewmodel.StageRow{
			Lens:     name,
			PowerD:   lens.PowerD,
			Image:    describeImage(img, x, lens.PositionM),
			Position: formatPosition(x),
		})
	}
	return rows
}

func describeImage(img optics.ImagePoint, worldX, lensX float64) string {
	switch img.State {
	case optics.ImageAtInfinity:
		return "collimated (image at infinity)"
	case optics.ImagePassThrough:
		return "no power, light passes through"
	case optics.ImageAtLens:
		return "on the lens plane"
	}
	kind := "real"
	if worldX <= lensX {
		kind = "virtual"
	}
	orientation := "upright"
	if img.Magnification < 0 {
		orientation = "inverted"
	}
	return fmt.Sprintf("%s, %s, magnification %.3g", kind, orientation, img.Magnification)
}

func formatPosition(x float64) string {
	if math.IsInf(x, 0) || math.IsNaN(x) {
		return "infinity"
	}
	return fmt.Sprintf("%+.3f mm from the eye lens", x*1000)
}

type lensSummary struct {
	PositionM float64 `json:"position_m"`
	PowerD    float64 `json:"power_d"`
	Role      string  `json:"role"`
}

type pointSummary struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type raySummaryEntry struct {
	Name    string         `json:"name"`
	Virtual bool           `json:"virtual"`
	Points  []pointSummary `json:"points"`
}

func sceneSummary(s optics.Scene) map[string]any {
	lenses := make([]lensSummary, 0, len(s.Lenses))
	for _, l := range s.Lenses {
		role := "eye"
		if l.Role == optics.RoleCorrective {
			role = "corrective"
		}
		lenses = append(lenses, lensSummary{PositionM: l.PositionM, PowerD: l.PowerD, Role: role})
	}
	worldX := make([]*float64, 0, len(s.ImageWorldXM))
	for _, x := range s.ImageWorldXM {
		if math.IsInf(x, 0) || math.IsNaN(x) {
			worldX = append(worldX, nil)
			continue
		}
		v := x
		worldX = append(worldX, &v)
	}
	return map[string]any{
		"object": map[string]float64{
			"position_m": s.Object.PositionM,
			"distance_m": s.Object.DistanceM,
			"height_m":   s.Object.HeightM,
		},
		"lenses":             lenses,
		"images":             s.Images,
		"image_world_x_m":    worldX,
		"retina_position_m":  s.RetinaPositionM,
		"eye_power_d":        s.EyePowerD,
		"accommodation_d":    s.AccommodationD,
		"corrective_power_d": s.CorrectivePowerD,
	}
}

func raySummary(rays []optics.Polyline) []raySummaryEntry {
	out := make([]raySummaryEntry, 0, len(rays))
	for _, r := range rays {
		pts := make([]pointSummary, 0, len(r.Points))
		for _, p := range r.Points {
			pts = append(pts, pointSummary{X: p.X, Y: p.Y})
		}
		out = append(out, raySummaryEntry{Name: r.Name, Virtual: r.Virtual, Points: pts})
	}
	return out
}

func newSessionID() string {
	buf := make([]byte, 10)
	_, _ = rand.Read(buf)
	encoder := base32.StdEncoding.WithPadding(base32.NoPadding)
	return strings.ToLower(encoder.EncodeToString(buf))
}
