package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/nightreign/go/internal/bosses"
	"github.com/mcdev12/nightreign/go/internal/config"
	"github.com/mcdev12/nightreign/go/internal/events"
	"github.com/mcdev12/nightreign/go/internal/gateway"
	"github.com/mcdev12/nightreign/go/internal/metrics"
	"github.com/mcdev12/nightreign/go/internal/phasetimer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the timer websocket, boss stats and share endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.NewConfigFromEnv()
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if path, _ := cmd.Flags().GetString("phases-file"); path != "" {
				cfg.PhaseFile = path
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP port (overrides PORT)")
	return cmd
}

func runServe(ctx context.Context, cfg config.Config) error {
	seq, err := phasetimer.LoadSequence(cfg.PhaseFile)
	if err != nil {
		return fmt.Errorf("load phases: %w", err)
	}
	catalog, err := bosses.Load(cfg.BossFile)
	if err != nil {
		return fmt.Errorf("load boss catalog: %w", err)
	}

	var (
		collector metrics.MetricsCollector = &metrics.NoOpMetricsCollector{}
		gatherer  prometheus.Gatherer
	)
	if cfg.MetricsEnabled {
		collector = metrics.NewPrometheusMetrics(prometheus.DefaultRegisterer)
		gatherer = prometheus.DefaultGatherer
	}

	var publisher events.EventPublisher = events.NewLogPublisher()
	if cfg.NATSURL != "" {
		nc, err := events.ConnectNATS(cfg.NATSURL)
		if err != nil {
			return err
		}
		defer func() {
			if err := nc.Drain(); err != nil {
				log.Error().Err(err).Msg("failed to drain NATS connection")
			}
		}()
		publisher = events.NewNATSPublisher(nc, cfg.NATSSubjectPrefix)
	}

	connConfig := gateway.DefaultConnectionConfig()
	connConfig.TickInterval = cfg.TickInterval
	gatewayService := gateway.NewService(connConfig, gateway.Dependencies{
		Sequence:  seq,
		Clock:     clockwork.NewRealClock(),
		Publisher: events.NewMetricPublisher(publisher, collector),
		Metrics:   collector,
	})

	server := setupServer(cfg, routes{
		gateway:  gatewayService,
		catalog:  catalog,
		gatherer: gatherer,
	})

	log.Info().
		Str("addr", server.Addr).
		Int("phases", seq.Len()).
		Int("bosses", len(catalog.Names())).
		Bool("nats", cfg.NATSURL != "").
		Bool("metrics", cfg.MetricsEnabled).
		Msg("starting nightreign server")

	serviceCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := gatewayService.Start(serviceCtx); err != nil {
			log.Error().Err(err).Msg("gateway service failed")
		}
	}()

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	case <-ctx.Done():
		log.Info().Msg("received shutdown signal")
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	cancel()
	if err := gatewayService.Stop(); err != nil {
		log.Error().Err(err).Msg("gateway shutdown failed")
	}

	log.Info().Msg("nightreign server shutdown complete")
	return nil
}
