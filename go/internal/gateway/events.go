package gateway

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/nightreign/go/internal/phasetimer"
)

// MessageType is the type of a server to client message
type MessageType string

const (
	MessageTypeHello   MessageType = "hello"
	MessageTypeDisplay MessageType = "display"
	MessageTypeError   MessageType = "error"
)

// ServerMessage represents the base structure for all server messages
type ServerMessage struct {
	ID        string          `json:"id"`         // Message UUID
	SessionID string          `json:"session_id"` // Session UUID
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// CommandType is the type of a client command
type CommandType string

const (
	CommandStart  CommandType = "start"
	CommandReset  CommandType = "reset"
	CommandJump   CommandType = "jump"
	CommandResize CommandType = "resize"
	CommandSync   CommandType = "sync"
)

// ClientCommand is a user action sent by the page
type ClientCommand struct {
	Type           CommandType `json:"type"`
	Phase          *int        `json:"phase,omitempty"`           // jump target
	ContainerWidth float64     `json:"container_width,omitempty"` // progress bar width in px
}

// HelloPayload is sent once when a session opens
type HelloPayload struct {
	SessionID        string             `json:"session_id"`
	Phases           []phasetimer.Phase `json:"phases"`
	TerminalLabel    string             `json:"terminal_label"`
	TotalDurationSec int                `json:"total_duration_sec"`
}

// ErrorPayload reports a rejected command
type ErrorPayload struct {
	Command string `json:"command,omitempty"`
	Message string `json:"message"`
}

// ParseClientCommand decodes a raw client message.
func ParseClientCommand(data []byte) (ClientCommand, error) {
	var cmd ClientCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		return ClientCommand{}, fmt.Errorf("decode command: %w", err)
	}
	if cmd.Type == "" {
		return ClientCommand{}, fmt.Errorf("decode command: missing type")
	}
	return cmd, nil
}

func newServerMessage(sessionID uuid.UUID, msgType MessageType, data any, now time.Time) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	return json.Marshal(ServerMessage{
		ID:        uuid.New().String(),
		SessionID: sessionID.String(),
		Type:      msgType,
		Timestamp: now,
		Data:      payload,
	})
}
