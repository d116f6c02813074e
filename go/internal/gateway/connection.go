package gateway

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mcdev12/nightreign/go/internal/phasetimer"
	"github.com/rs/zerolog/log"
)

// Connection is one page view: a websocket plus the timer it drives
type Connection struct {
	ID      uuid.UUID
	Conn    *websocket.Conn
	Send    chan []byte
	Manager *ConnectionManager
	Timer   *phasetimer.Timer

	ConnectedAt time.Time

	mu             sync.Mutex
	closed         bool
	containerWidth float64
}

// Render implements phasetimer.Renderer. It never blocks: a client that
// cannot keep up loses the frame and is disconnected.
func (c *Connection) Render(d phasetimer.Display) {
	frame := BuildFrame(d, c.width())
	if err := c.enqueue(MessageTypeDisplay, frame); err != nil {
		return
	}
	c.Manager.metrics.TickRendered()
}

func (c *Connection) width() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.containerWidth
}

func (c *Connection) setWidth(w float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.containerWidth = w
}

// pushDisplay re-renders through the timer so the frame cannot overtake a
// newer tick frame.
func (c *Connection) pushDisplay() {
	c.Timer.Refresh()
}

func (c *Connection) sendHello() {
	seq := c.Timer.Sequence()
	_ = c.enqueue(MessageTypeHello, HelloPayload{
		SessionID:        c.ID.String(),
		Phases:           seq.Phases(),
		TerminalLabel:    seq.TerminalLabel(),
		TotalDurationSec: seq.TotalDuration(),
	})
}

func (c *Connection) sendError(command CommandType, err error) {
	_ = c.enqueue(MessageTypeError, ErrorPayload{
		Command: string(command),
		Message: err.Error(),
	})
}

var errSendBufferFull = errors.New("send buffer full")

func (c *Connection) enqueue(msgType MessageType, data any) error {
	message, err := newServerMessage(c.ID, msgType, data, c.Manager.clock.Now())
	if err != nil {
		log.Error().Err(err).Str("session_id", c.ID.String()).Msg("failed to marshal server message")
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errConnectionClosed
	}

	select {
	case c.Send <- message:
		return nil
	default:
		c.Manager.metrics.FrameDropped()
		log.Warn().
			Str("session_id", c.ID.String()).
			Str("message_type", string(msgType)).
			Msg("connection send buffer full, closing connection")
		// Render may run under the timer lock, and unregistering closes the timer.
		go func() {
			c.Manager.unregisterConnection(c)
			c.Conn.Close()
		}()
		return errSendBufferFull
	}
}

func (c *Connection) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

// handleClientMessage applies a command received from the page
func (c *Connection) handleClientMessage(message []byte) {
	cmd, err := ParseClientCommand(message)
	if err != nil {
		log.Debug().Err(err).Str("session_id", c.ID.String()).Msg("rejected client message")
		c.Manager.metrics.CommandHandled("invalid", false)
		c.sendError("", err)
		return
	}

	err = c.apply(cmd)
	c.Manager.metrics.CommandHandled(string(cmd.Type), err == nil)
	if err != nil {
		log.Debug().
			Err(err).
			Str("session_id", c.ID.String()).
			Str("command", string(cmd.Type)).
			Msg("command failed")
		c.sendError(cmd.Type, err)
		return
	}

	log.Debug().
		Str("session_id", c.ID.String()).
		Str("command", string(cmd.Type)).
		Msg("command applied")
}

func (c *Connection) apply(cmd ClientCommand) error {
	switch cmd.Type {
	case CommandStart:
		c.Timer.Start()
	case CommandReset:
		c.Timer.Reset()
	case CommandJump:
		if cmd.Phase == nil {
			return errMissingPhase
		}
		return c.Timer.JumpToPhase(*cmd.Phase)
	case CommandResize:
		if cmd.ContainerWidth > 0 {
			c.setWidth(cmd.ContainerWidth)
		}
		c.pushDisplay()
	case CommandSync:
		c.pushDisplay()
	default:
		return errUnknownCommand
	}
	return nil
}

var (
	errMissingPhase   = errors.New("jump requires a phase index")
	errUnknownCommand = errors.New("unknown command")
)

// writePump drains display, hello and error frames to the page and keeps the
// session alive with pings while the timer is idle.
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		c.Manager.unregisterConnection(c)
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if !ok {
				// Channel was closed
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("session_id", c.ID.String()).
					Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("session_id", c.ID.String()).
					Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump feeds page commands to the session timer until the page goes away.
func (c *Connection) readPump() {
	defer func() {
		c.Manager.unregisterConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("session_id", c.ID.String()).
					Msg("unexpected WebSocket close error")
			}
			break
		}

		c.handleClientMessage(message)
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}
