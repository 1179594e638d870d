// Package gameclient talks to the game endpoints of a visionlab server.
package gameclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"visionlab/internal/optics"
)

// ErrTimeUp is matched by errors.Is when the server says the round ran out.
var ErrTimeUp = errors.New("time is up")

// APIError is a non-2xx answer carrying the server's error text.
type APIError struct {
	Status  int
	Message string
	// PatientErrorD is set when the server revealed the patient's error.
	PatientErrorD *float64
}

func (e *APIError) Error() string {
	return fmt.Sprintf("game server: %s (status %d)", e.Message, e.Status)
}

func (e *APIError) Is(target error) bool {
	return target == ErrTimeUp && e.Message == "Time is up!"
}

// Client keeps the round cookie between calls.
type Client struct {
	base string
	http *http.Client
}

// New returns a client for the server at baseURL. A nil httpClient gets a
// default one; a cookie jar is added when missing.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("cookie jar: %w", err)
		}
		httpClient.Jar = jar
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), http: httpClient}, nil
}

type Round struct {
	ID               string           `json:"round_id"`
	Statement        string           `json:"patient_statement"`
	DurationSeconds  int              `json:"game_duration"`
	RemainingSeconds int              `json:"remaining_time"`
	Constants        optics.Constants `json:"game_constants"`
}

type Answer struct {
	Feedback         string `json:"feedback"`
	RemainingSeconds int    `json:"remaining_time"`
}

// Result mirrors the server's grading; numbers arrive preformatted.
type Result struct {
	ActualError     string `json:"actual_error"`
	IdealCorrection string `json:"ideal_correction"`
	YourGuess       string `json:"your_guess"`
	Difference      string `json:"difference_from_ideal"`
	Score           string `json:"score"`
	Win             bool   `json:"win"`
}

type Spoiler struct {
	TestLensPowerD float64 `json:"test_lens_power_D"`
	Blurriness     string  `json:"blurriness_value"`
	Note           string  `json:"note"`
}

// NewRound starts a fresh patient.
func (c *Client) NewRound(ctx context.Context) (Round, error) {
	var out Round
	err := c.post(ctx, "/game/new", nil, &out)
	return out, err
}

// Ask has the patient compare two test lenses.
func (c *Client) Ask(ctx context.Context, lens1, lens2 float64) (Answer, error) {
	var out Answer
	err := c.post(ctx, "/game/ask_patient", map[string]float64{"lens1_power": lens1, "lens2_power": lens2}, &out)
	return out, err
}

// Submit grades a guess and ends the round.
func (c *Client) Submit(ctx context.Context, guess float64) (Result, error) {
	var out Result
	err := c.post(ctx, "/game/submit_guess", map[string]float64{"guess": guess}, &out)
	return out, err
}

// Spoiler asks for the blur the patient sees through lens.
func (c *Client) Spoiler(ctx context.Context, lens float64) (Spoiler, error) {
	var out Spoiler
	err := c.post(ctx, "/game/get_spoiler_blur_info", map[string]float64{"test_lens_power_D": lens}, &out)
	return out, err
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	var payload io.Reader = http.NoBody
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		payload = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, payload)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
		var decoded struct {
			Error         string   `json:"error"`
			PatientErrorD *float64 `json:"patient_error_D"`
		}
		if json.Unmarshal(data, &decoded) == nil && decoded.Error != "" {
			apiErr.Message = decoded.Error
			apiErr.PatientErrorD = decoded.PatientErrorD
		}
		return apiErr
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
