package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/nightreign/go/internal/phasetimer"
)

// Event is a timer lifecycle event ready to be published
type Event struct {
	ID        uuid.UUID       `json:"id"`
	SessionID uuid.UUID       `json:"session_id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// TimerPayload is the payload shared by every timer lifecycle event
type TimerPayload struct {
	PhaseIndex       int       `json:"phase_index"`
	PhaseName        string    `json:"phase_name"`
	PreviousPhase    int       `json:"previous_phase"`
	ElapsedSec       int       `json:"elapsed_sec"`
	PhaseTimeLeftSec int       `json:"phase_time_left_sec"`
	Running          bool      `json:"running"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// NewTimerEvent converts a timer transition into a publishable event.
func NewTimerEvent(sessionID uuid.UUID, e phasetimer.Event) (Event, error) {
	payload := TimerPayload{
		PhaseIndex:       e.State.PhaseIndex,
		PhaseName:        e.PhaseName,
		PreviousPhase:    e.PreviousPhase,
		ElapsedSec:       e.State.Elapsed,
		PhaseTimeLeftSec: e.State.PhaseTimeLeft,
		Running:          e.State.Running,
		OccurredAt:       e.At,
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", e.Kind, err)
	}

	return Event{
		ID:        uuid.New(),
		SessionID: sessionID,
		EventType: string(e.Kind),
		Payload:   payloadBytes,
		CreatedAt: e.At,
	}, nil
}

// envelope is the wire format shared by every publisher
type envelope struct {
	EventID   string          `json:"eventId"`
	EventType string          `json:"eventType"`
	SessionID string          `json:"sessionId"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// MarshalEnvelope encodes event in the published wire format.
func MarshalEnvelope(event Event) ([]byte, error) {
	return json.Marshal(envelope{
		EventID:   event.ID.String(),
		EventType: event.EventType,
		SessionID: event.SessionID.String(),
		Timestamp: event.CreatedAt,
		Payload:   event.Payload,
	})
}
