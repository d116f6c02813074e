package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/mcdev12/nightreign/go/internal/phasetimer"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler handles WebSocket upgrade requests for timer sessions
type WebSocketHandler struct {
	connectionManager *ConnectionManager
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(cm *ConnectionManager) *WebSocketHandler {
	return &WebSocketHandler{
		connectionManager: cm,
	}
}

// HandleTimerConnection opens a timer session for one page view
func (h *WebSocketHandler) HandleTimerConnection(w http.ResponseWriter, r *http.Request) {
	if _, err := h.connectionManager.UpgradeConnection(w, r); err != nil {
		// The upgrader has already replied to the client.
		log.Error().
			Err(err).
			Str("remote_addr", r.RemoteAddr).
			Msg("failed to upgrade WebSocket connection")
		return
	}
}

// HandleConnectionStats returns statistics about active connections
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.connectionManager.GetConnectionStats())
}

// PhasesResponse describes the static phase layout
type PhasesResponse struct {
	Phases            []phasetimer.Phase `json:"phases"`
	TerminalLabel     string             `json:"terminal_label"`
	TotalDurationSec  int                `json:"total_duration_sec"`
	BoundaryFractions []float64          `json:"boundary_fractions"`
	DividerLefts      []string           `json:"divider_lefts"`
}

// HandlePhases returns the phase sequence and its divider marks
func (h *WebSocketHandler) HandlePhases(w http.ResponseWriter, r *http.Request) {
	seq := h.connectionManager.sequence
	fractions := seq.BoundaryFractions()
	lefts := make([]string, len(fractions))
	for i, f := range fractions {
		lefts[i] = cssCalc(f, DividerOffsetPx)
	}
	writeJSON(w, http.StatusOK, PhasesResponse{
		Phases:            seq.Phases(),
		TerminalLabel:     seq.TerminalLabel(),
		TotalDurationSec:  seq.TotalDuration(),
		BoundaryFractions: fractions,
		DividerLefts:      lefts,
	})
}

// RegisterRoutes registers WebSocket routes with an HTTP mux
func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/timer", h.HandleTimerConnection)
	mux.HandleFunc("/ws/stats", h.HandleConnectionStats)
	mux.HandleFunc("/api/phases", h.HandlePhases)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write JSON response")
	}
}
