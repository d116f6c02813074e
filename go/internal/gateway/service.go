package gateway

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Service is the timer gateway: it hands every page view its own timer and
// streams display frames back over a websocket
type Service struct {
	connectionManager *ConnectionManager
	wsHandler         *WebSocketHandler
}

// NewService creates a new timer gateway service
func NewService(config ConnectionConfig, deps Dependencies) *Service {
	connectionManager := NewConnectionManager(config, deps)
	return &Service{
		connectionManager: connectionManager,
		wsHandler:         NewWebSocketHandler(connectionManager),
	}
}

// Start blocks until ctx is cancelled, then disconnects every session.
func (s *Service) Start(ctx context.Context) error {
	log.Info().Msg("starting timer gateway service")

	<-ctx.Done()

	log.Info().Msg("timer gateway service shutting down")
	return s.Stop()
}

// Stop closes every session and its timer
func (s *Service) Stop() error {
	s.connectionManager.CloseAll()
	log.Info().Msg("timer gateway service stopped")
	return nil
}

// RegisterRoutes registers the gateway HTTP routes
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.wsHandler.RegisterRoutes(mux)
	log.Info().Msg("timer gateway routes registered")
}

// GetStats returns statistics about the gateway service
func (s *Service) GetStats() ConnectionStats {
	return s.connectionManager.GetConnectionStats()
}
