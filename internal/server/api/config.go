// Package api provides the HTTP API handlers for the string piano.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/huiziwang666/ainfinite-string-piano/internal/layout"
)

// Config is the externally supplied configuration surface. Changing it
// causes a deterministic re-derivation of the string layout; none of it is
// engine-internal state.
type Config struct {
	StringCount int    `json:"stringCount"`
	PitchRange  string `json:"pitchRange"`
	Instrument  string `json:"instrument"`
}

// Validate checks the config against the supported choices.
func (c Config) Validate() error {
	if !layout.ValidCount(c.StringCount) {
		return fmt.Errorf("unsupported string count %d", c.StringCount)
	}
	if !layout.ValidRange(layout.Range(c.PitchRange)) {
		return fmt.Errorf("unsupported pitch range %q", c.PitchRange)
	}
	return nil
}

// Controller applies configuration changes to the running application.
type Controller interface {
	Config() Config
	Apply(Config) error
	Resume()
}

// ConfigHandler serves GET/PUT requests for the runtime configuration.
type ConfigHandler struct {
	controller Controller
}

// NewConfigHandler creates a ConfigHandler backed by the given controller.
func NewConfigHandler(c Controller) *ConfigHandler {
	return &ConfigHandler{controller: c}
}

// ServeHTTP implements the http.Handler interface.
func (h *ConfigHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.controller.Config())

	case http.MethodPut, http.MethodPost:
		var cfg Config
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := cfg.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := h.controller.Apply(cfg); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, h.controller.Config())

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// ResumeHandler unlocks audio playback in response to a user action.
type ResumeHandler struct {
	controller Controller
}

// NewResumeHandler creates a ResumeHandler backed by the given controller.
func NewResumeHandler(c Controller) *ResumeHandler {
	return &ResumeHandler{controller: c}
}

// ServeHTTP implements the http.Handler interface.
func (h *ResumeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	h.controller.Resume()
	writeJSON(w, http.StatusOK, map[string]string{"status": "resumed"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
