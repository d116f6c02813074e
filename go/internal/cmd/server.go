package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/mcdev12/nightreign/go/internal/bosses"
	"github.com/mcdev12/nightreign/go/internal/config"
	"github.com/mcdev12/nightreign/go/internal/gateway"
	"github.com/mcdev12/nightreign/go/internal/share"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// routes are the pieces served by one HTTP server.
type routes struct {
	gateway  *gateway.Service
	catalog  *bosses.Catalog
	gatherer prometheus.Gatherer // nil disables /metrics
}

func setupServer(cfg config.Config, r routes) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           newHandler(cfg, r),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

func newHandler(cfg config.Config, r routes) http.Handler {
	mux := http.NewServeMux()

	// Setup CORS middleware
	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})

	r.gateway.RegisterRoutes(mux)
	bosses.NewHandler(r.catalog).RegisterRoutes(mux)
	share.NewHandler(cfg.ShareTitle, cfg.PublicURL).RegisterRoutes(mux)

	if r.gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{}))
	}

	setupHealthCheck(mux)

	if cfg.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	return h2c.NewHandler(c.Handler(mux), &http2.Server{})
}

func setupHealthCheck(mux *http.ServeMux) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}
