package bosses

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Handler serves the catalog over HTTP
type Handler struct {
	catalog *Catalog
}

// NewHandler creates a catalog handler
func NewHandler(catalog *Catalog) *Handler {
	return &Handler{catalog: catalog}
}

// HandleList returns the names of every boss
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"bosses": h.catalog.Names()})
}

// HandlePin returns the pinned stat view for ?name=
func (h *Handler) HandlePin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "name is required"})
		return
	}

	pinned, err := h.catalog.Pin(name)
	if err != nil {
		if errors.Is(err, ErrUnknownBoss) {
			log.Warn().Str("boss", name).Msg("pin requested for unknown boss")
			writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
			return
		}
		log.Error().Err(err).Str("boss", name).Msg("failed to build pinned stat")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	log.Debug().Str("boss", name).Msg("pinned stats")
	writeJSON(w, http.StatusOK, pinned)
}

// RegisterRoutes registers the catalog routes with an HTTP mux
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/bosses", h.HandleList)
	mux.HandleFunc("/api/bosses/pin", h.HandlePin)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write JSON response")
	}
}
