package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/nightreign/go/internal/metrics"
	"github.com/mcdev12/nightreign/go/internal/phasetimer"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// EventPublisher publishes timer lifecycle events
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// LogPublisher writes events to the log. Used when no broker is configured.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (p *LogPublisher) Publish(ctx context.Context, event Event) error {
	log.Info().
		Str("event_id", event.ID.String()).
		Str("event_type", event.EventType).
		Str("session_id", event.SessionID.String()).
		RawJSON("payload", event.Payload).
		Msg("timer event")
	return nil
}

// natsConn is the part of *nats.Conn the publisher uses
type natsConn interface {
	Publish(subj string, data []byte) error
}

// NATSPublisher publishes events to core NATS subjects
type NATSPublisher struct {
	nc            natsConn
	subjectPrefix string
}

func NewNATSPublisher(nc natsConn, subjectPrefix string) *NATSPublisher {
	return &NATSPublisher{
		nc:            nc,
		subjectPrefix: subjectPrefix,
	}
}

// Subject returns the subject an event type is published on.
func (p *NATSPublisher) Subject(eventType string) string {
	return fmt.Sprintf("%s.timer.%s", p.subjectPrefix, eventType)
}

func (p *NATSPublisher) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	messageBytes, err := MarshalEnvelope(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := p.Subject(event.EventType)
	if err := p.nc.Publish(subject, messageBytes); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}

	log.Debug().
		Str("subject", subject).
		Int("size", len(messageBytes)).
		Msg("published timer event to NATS")
	return nil
}

// ConnectNATS dials NATS with the reconnect policy used by every service.
func ConnectNATS(url string) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.MaxReconnects(-1), // Infinite reconnects
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return nc, nil
}

// MetricPublisher wraps an EventPublisher with metrics collection
type MetricPublisher struct {
	publisher EventPublisher
	metrics   metrics.MetricsCollector
}

func NewMetricPublisher(publisher EventPublisher, m metrics.MetricsCollector) *MetricPublisher {
	return &MetricPublisher{
		publisher: publisher,
		metrics:   m,
	}
}

func (p *MetricPublisher) Publish(ctx context.Context, event Event) error {
	start := time.Now()

	err := p.publisher.Publish(ctx, event)

	p.metrics.EventPublished(event.EventType, err == nil, time.Since(start))
	return err
}

// TimerListener forwards one session's timer transitions to a publisher.
// Publish failures are logged and never reach the timer.
type TimerListener struct {
	sessionID uuid.UUID
	publisher EventPublisher
}

func NewTimerListener(sessionID uuid.UUID, publisher EventPublisher) *TimerListener {
	return &TimerListener{
		sessionID: sessionID,
		publisher: publisher,
	}
}

// OnTimerEvent implements phasetimer.Listener.
func (l *TimerListener) OnTimerEvent(e phasetimer.Event) {
	event, err := NewTimerEvent(l.sessionID, e)
	if err != nil {
		log.Error().Err(err).Str("session_id", l.sessionID.String()).Msg("failed to build timer event")
		return
	}
	if err := l.publisher.Publish(context.Background(), event); err != nil {
		log.Error().
			Err(err).
			Str("session_id", l.sessionID.String()).
			Str("event_type", event.EventType).
			Msg("failed to publish timer event")
	}
}
