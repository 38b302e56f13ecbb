package api

import (
	"net/http"

	"github.com/huiziwang666/ainfinite-string-piano/internal/store"
)

// InstrumentsHandler serves the instrument catalog.
type InstrumentsHandler struct {
	store *store.Store
}

// NewInstrumentsHandler creates an InstrumentsHandler backed by the store.
func NewInstrumentsHandler(s *store.Store) *InstrumentsHandler {
	return &InstrumentsHandler{store: s}
}

// ServeHTTP implements the http.Handler interface.
func (h *InstrumentsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	instruments, err := h.store.Instruments().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if instruments == nil {
		instruments = []store.Instrument{}
	}

	writeJSON(w, http.StatusOK, instruments)
}
