// Package share serves the payload for the page's native share button.
package share

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// DefaultTitle is the share sheet title.
const DefaultTitle = "Tims Nightreign Helper"

// Data is what the page hands to the platform share sheet.
type Data struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Handler answers GET /api/share
type Handler struct {
	title     string
	publicURL string
}

// NewHandler creates a share handler. When publicURL is empty the URL is
// derived from the incoming request.
func NewHandler(title, publicURL string) *Handler {
	if title == "" {
		title = DefaultTitle
	}
	return &Handler{
		title:     title,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// Payload returns the share data for r.
func (h *Handler) Payload(r *http.Request) Data {
	return Data{Title: h.title, URL: h.pageURL(r)}
}

func (h *Handler) pageURL(r *http.Request) string {
	if h.publicURL != "" {
		return h.publicURL + "/"
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	return scheme + "://" + r.Host + "/"
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.Payload(r)); err != nil {
		log.Error().Err(err).Msg("failed to write share payload")
	}
}

// RegisterRoutes registers the share route with an HTTP mux
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/api/share", h)
}
