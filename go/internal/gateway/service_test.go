package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/nightreign/go/internal/metrics"
	"github.com/mcdev12/nightreign/go/internal/phasetimer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testGateway struct {
	clock   *clockwork.FakeClock
	service *Service
	server  *httptest.Server
}

func newTestGateway(t *testing.T) *testGateway {
	t.Helper()
	clock := clockwork.NewFakeClock()
	seq := phasetimer.MustSequence([]phasetimer.Phase{{Name: "A", Duration: 10}, {Name: "B", Duration: 5}}, "")
	svc := NewService(DefaultConnectionConfig(), Dependencies{Sequence: seq, Clock: clock})

	mux := http.NewServeMux()
	svc.RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		svc.Stop()
		srv.Close()
	})
	return &testGateway{clock: clock, service: svc, server: srv}
}

func (g *testGateway) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(g.server.URL, "http") + "/ws/timer"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) ServerMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg ServerMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func readFrame(t *testing.T, conn *websocket.Conn) DisplayFrame {
	t.Helper()
	msg := readMessage(t, conn)
	require.Equal(t, MessageTypeDisplay, msg.Type, "unexpected message %s", msg.Data)
	var frame DisplayFrame
	require.NoError(t, json.Unmarshal(msg.Data, &frame))
	return frame
}

func send(t *testing.T, conn *websocket.Conn, cmd string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(cmd)))
}

func (g *testGateway) advance(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, g.clock.BlockUntilContext(ctx, 1))
	g.clock.Advance(time.Second)
}

func TestSessionLifecycle(t *testing.T) {
	g := newTestGateway(t)
	conn := g.dial(t)

	hello := readMessage(t, conn)
	require.Equal(t, MessageTypeHello, hello.Type)
	var hp HelloPayload
	require.NoError(t, json.Unmarshal(hello.Data, &hp))
	assert.Len(t, hp.Phases, 2)
	assert.Equal(t, 15, hp.TotalDurationSec)
	assert.Equal(t, hello.SessionID, hp.SessionID)

	initial := readFrame(t, conn)
	assert.Equal(t, "A", initial.Label)
	assert.Equal(t, "00:10", initial.TimeLeft)
	assert.Equal(t, StartLabel, initial.StartButtonLabel)
	assert.Equal(t, []string{"calc(66.6667% - 1px)"}, initial.DividerLefts)

	send(t, conn, `{"type":"start"}`)
	started := readFrame(t, conn)
	assert.True(t, started.Running)
	assert.Equal(t, RunningLabel, started.StartButtonLabel)

	g.advance(t)
	ticked := readFrame(t, conn)
	assert.Equal(t, "00:09", ticked.TimeLeft)

	send(t, conn, `{"type":"resize","container_width":300}`)
	resized := readFrame(t, conn)
	assert.Equal(t, "00:09", resized.TimeLeft, "resize must not change timer state")
	require.NotNil(t, resized.IndicatorLeftPx)
	assert.InDelta(t, 300.0/15.0-6, *resized.IndicatorLeftPx, 1e-9)

	send(t, conn, `{"type":"jump","phase":1}`)
	jumped := readFrame(t, conn)
	assert.Equal(t, "B", jumped.Label)
	assert.Equal(t, "00:05", jumped.TimeLeft)
	assert.False(t, jumped.Running)
	assert.Equal(t, "calc(66.6667% - 6px)", jumped.IndicatorLeft)

	send(t, conn, `{"type":"reset"}`)
	reset := readFrame(t, conn)
	assert.Equal(t, "A", reset.Label)
	assert.Equal(t, 0.0, reset.Progress)
}

func TestSessionRejectsBadCommands(t *testing.T) {
	g := newTestGateway(t)
	conn := g.dial(t)
	readMessage(t, conn)
	readFrame(t, conn)

	for _, cmd := range []string{`{"type":"jump","phase":2}`, `{"type":"jump"}`, `{"type":"dance"}`, `garbage`} {
		send(t, conn, cmd)
		msg := readMessage(t, conn)
		assert.Equal(t, MessageTypeError, msg.Type, "command %s", cmd)
	}

	send(t, conn, `{"type":"sync"}`)
	frame := readFrame(t, conn)
	assert.Equal(t, "A", frame.Label)
	assert.Equal(t, "00:10", frame.TimeLeft)
}

func TestSessionsAreIndependent(t *testing.T) {
	g := newTestGateway(t)
	first := g.dial(t)
	second := g.dial(t)
	for _, c := range []*websocket.Conn{first, second} {
		readMessage(t, c)
		readFrame(t, c)
	}

	send(t, first, `{"type":"jump","phase":1}`)
	assert.Equal(t, "B", readFrame(t, first).Label)

	send(t, second, `{"type":"sync"}`)
	assert.Equal(t, "A", readFrame(t, second).Label)

	stats := g.service.GetStats()
	assert.Equal(t, 2, stats.TotalConnections)
	assert.Equal(t, 0, stats.RunningTimers)
}

func TestStatsAndPhasesEndpoints(t *testing.T) {
	g := newTestGateway(t)

	resp, err := http.Get(g.server.URL + "/api/phases")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var phases PhasesResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&phases))
	assert.Equal(t, 15, phases.TotalDurationSec)
	assert.Equal(t, phasetimer.DefaultTerminalLabel, phases.TerminalLabel)
	assert.Len(t, phases.BoundaryFractions, 1)

	statsResp, err := http.Get(g.server.URL + "/ws/stats")
	require.NoError(t, err)
	defer statsResp.Body.Close()
	var stats ConnectionStats
	require.NoError(t, json.NewDecoder(statsResp.Body).Decode(&stats))
	assert.Equal(t, 0, stats.TotalConnections)
}

func TestClosingConnectionStopsTimer(t *testing.T) {
	g := newTestGateway(t)
	conn := g.dial(t)
	readMessage(t, conn)
	readFrame(t, conn)

	send(t, conn, `{"type":"start"}`)
	readFrame(t, conn)
	conn.Close()

	require.Eventually(t, func() bool {
		return g.service.GetStats().TotalConnections == 0
	}, 2*time.Second, 10*time.Millisecond)

	// the session's pending tick was cancelled with it
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, g.clock.BlockUntilContext(ctx, 0))
}

func TestSyncAtFinalTickEndsOnBossFight(t *testing.T) {
	g := newTestGateway(t)
	conn := g.dial(t)
	readMessage(t, conn)
	readFrame(t, conn)

	send(t, conn, `{"type":"start"}`)
	readFrame(t, conn)
	for i := 0; i < 14; i++ {
		g.advance(t)
		readFrame(t, conn)
	}

	// the sync frame and the last tick frame race; whichever lands last must
	// show the boss fight
	send(t, conn, `{"type":"sync"}`)
	g.advance(t)
	readFrame(t, conn)
	last := readFrame(t, conn)
	assert.True(t, last.Exhausted)
	assert.Equal(t, phasetimer.DefaultTerminalLabel, last.Label)
	assert.Equal(t, phasetimer.PlaceholderTime, last.TimeLeft)
}

func TestSlowClientIsDisconnected(t *testing.T) {
	clock := clockwork.NewFakeClock()
	reg := prometheus.NewRegistry()
	config := DefaultConnectionConfig()
	config.SendBufferSize = 1
	cm := NewConnectionManager(config, Dependencies{
		Sequence: phasetimer.MustSequence(phasetimer.DefaultPhases(), ""),
		Clock:    clock,
		Metrics:  metrics.NewPrometheusMetrics(reg),
	})

	// register a session without its pumps so nothing drains the send buffer
	sessions := make(chan *Connection, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := cm.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := cm.newConnection(ws)
		cm.registerConnection(c)
		sessions <- c
	}))
	t.Cleanup(func() {
		cm.CloseAll()
		srv.Close()
	})

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	session := <-sessions

	session.Timer.Start() // fills the buffer
	assert.Equal(t, 1, cm.GetConnectionStats().TotalConnections)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(time.Second)

	require.Eventually(t, func() bool {
		return cm.GetConnectionStats().TotalConnections == 0
	}, 2*time.Second, 10*time.Millisecond)

	expected := `
# HELP nightreign_timer_dropped_frames_total Display frames dropped because a client was too slow
# TYPE nightreign_timer_dropped_frames_total counter
nightreign_timer_dropped_frames_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "nightreign_timer_dropped_frames_total"))

	// the session's timer was closed with it
	require.NoError(t, clock.BlockUntilContext(ctx, 0))
	assert.False(t, session.Timer.State().Running)
}
