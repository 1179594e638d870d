// Package config loads the optical constants and reads process settings
// from the environment. Number parsing is lenient: bad input falls back to
// a default instead of failing.
package config

import (
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvPort        = "PORT"
	EnvBaseURL     = "BASE_URL"
	EnvConstants   = "VISIONLAB_CONSTANTS"
	EnvGameSeconds = "VISIONLAB_GAME_SECONDS"

	DefaultGameSeconds = 180
	minGameSeconds     = 10
	maxGameSeconds     = 3600
)

// GetEnv returns the trimmed value of key, or fallback when it is unset or blank.
func GetEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Addr returns the listen address built from PORT.
func Addr() string {
	return ":" + GetEnv(EnvPort, "8080")
}

// GameDuration returns the round length from VISIONLAB_GAME_SECONDS,
// clamped to a sane range.
func GameDuration() time.Duration {
	secs := ParseInt(os.Getenv(EnvGameSeconds), DefaultGameSeconds)
	if secs < minGameSeconds {
		secs = minGameSeconds
	}
	if secs > maxGameSeconds {
		secs = maxGameSeconds
	}
	return time.Duration(secs) * time.Second
}

// ParseFloat parses a user-supplied number. Empty, malformed and
// non-finite input returns fallback. A decimal comma is accepted.
func ParseFloat(value string, fallback float64) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	if !strings.Contains(value, ".") {
		value = strings.Replace(value, ",", ".", 1)
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return fallback
	}
	return parsed
}

func ParseInt(value string, fallback int) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// ParseBool accepts the usual checkbox spellings ("on", "1", "true", ...).
func ParseBool(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return fallback
	case "on", "yes", "y":
		return true
	case "off", "no", "n":
		return false
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
