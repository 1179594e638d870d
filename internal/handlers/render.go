package handlers

import (
	"encoding/json"
	"math"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"visionlab/internal/config"
)

func render(w http.ResponseWriter, r *http.Request, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		http.Error(w, "failed to render", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, payload any) {
	writeJSONStatus(w, http.StatusOK, payload)
}

func writeJSONStatus(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSONStatus(w, status, map[string]any{"error": msg})
}

func writeSSE(w http.ResponseWriter, event string, data string) {
	_, _ = w.Write([]byte("event: " + event + "\n"))
	for _, line := range strings.Split(data, "\n") {
		_, _ = w.Write([]byte("data: " + line + "\n"))
	}
	_, _ = w.Write([]byte("\n"))
}

// decodeBody reads a JSON object. A missing or malformed body yields an
// empty map so field lookups report the value as missing.
func decodeBody(w http.ResponseWriter, r *http.Request) map[string]any {
	body := map[string]any{}
	if r.Body == nil {
		return body
	}
	_ = json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&body)
	if body == nil {
		body = map[string]any{}
	}
	return body
}

// numberField reads a finite number that may arrive as a JSON number or a
// numeric string.
func numberField(body map[string]any, key string) (float64, bool) {
	switch v := body[key].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case string:
		f := config.ParseFloat(v, math.NaN())
		if math.IsNaN(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
