package phasetimer

import (
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/nightreign/go/internal/scheduler"
	"github.com/rs/zerolog/log"
)

// Renderer receives a display update after every state change. It is called
// with the timer locked, in update order, and must not call back into the timer.
type Renderer interface {
	Render(d Display)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(d Display)

// Render calls f(d).
func (f RendererFunc) Render(d Display) { f(d) }

// EventKind names a timer lifecycle transition.
type EventKind string

const (
	EventStarted      EventKind = "TimerStarted"
	EventReset        EventKind = "TimerReset"
	EventJumped       EventKind = "PhaseJumped"
	EventPhaseChanged EventKind = "PhaseChanged"
	EventExhausted    EventKind = "BossFightReached"
)

// Event describes a lifecycle transition. Ticks that stay inside a phase do
// not produce events.
type Event struct {
	Kind          EventKind
	PreviousPhase int
	State         State
	PhaseName     string
	At            time.Time
}

// Listener is notified of lifecycle transitions, with the same locking rules
// as Renderer.
type Listener interface {
	OnTimerEvent(e Event)
}

// Option configures a Timer.
type Option func(*Timer)

// WithClock sets the clock used for scheduling ticks.
func WithClock(c scheduler.Clock) Option {
	return func(t *Timer) { t.clock = c }
}

// WithRenderer sets the render adapter.
func WithRenderer(r Renderer) Option {
	return func(t *Timer) { t.renderer = r }
}

// WithListener sets the lifecycle listener.
func WithListener(l Listener) Option {
	return func(t *Timer) { t.listener = l }
}

// WithTickInterval changes the wall-clock length of a tick. Mostly useful for
// demos; a tick always counts as one second of phase time.
func WithTickInterval(d time.Duration) Option {
	return func(t *Timer) {
		if d > 0 {
			t.interval = d
		}
	}
}

// Timer tracks progress through a phase sequence. All methods are safe for
// concurrent use; state is only mutated with mu held.
type Timer struct {
	seq      *Sequence
	clock    scheduler.Clock
	renderer Renderer
	listener Listener
	interval time.Duration

	mu    sync.Mutex
	state State
	sched *scheduler.Scheduler
}

// New creates a timer at the start of seq, stopped.
func New(seq *Sequence, opts ...Option) *Timer {
	t := &Timer{
		seq:      seq,
		clock:    clockwork.NewRealClock(),
		interval: Tick,
		state:    initialState(seq),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.sched = scheduler.New(t.clock, &t.mu)
	return t
}

// Sequence returns the phase sequence the timer runs through.
func (t *Timer) Sequence() *Sequence { return t.seq }

// State returns a snapshot of the current state.
func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Display renders the current state without changing it.
func (t *Timer) Display() Display {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Render(t.seq, t.state)
}

// Refresh sends the current display to the renderer without changing state.
// The frame is ordered with tick frames like any other update.
func (t *Timer) Refresh() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.render()
}

// Start begins ticking. It is a no-op while running. Starting an exhausted
// timer resets it first.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.Running {
		return
	}
	if t.state.Exhausted(t.seq) {
		t.resetLocked()
	}

	t.state.Running = true
	if !t.arm() {
		return
	}
	t.render()
	t.notify(EventStarted, t.state.PhaseIndex)
}

// Reset stops the timer and rewinds it to the start of the first phase.
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetLocked()
}

// JumpToPhase stops the timer and positions it at the start of phase index.
func (t *Timer) JumpToPhase(index int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.seq.ValidIndex(index) {
		return fmt.Errorf("%w: phase index %d out of range [0, %d)", ErrInvalidArgument, index, t.seq.Len())
	}

	prev := t.state.PhaseIndex
	t.sched.Cancel()
	t.state = jumpedState(t.seq, index)
	t.render()
	t.notify(EventJumped, prev)
	return nil
}

// Close cancels any pending tick for good. The timer keeps answering State
// and Display but will not tick again.
func (t *Timer) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sched.Stop()
	t.state.Running = false
}

func (t *Timer) resetLocked() {
	prev := t.state.PhaseIndex
	t.sched.Cancel()
	t.state = initialState(t.seq)
	t.render()
	t.notify(EventReset, prev)
}

// tick runs from the scheduler with mu held.
func (t *Timer) tick() {
	if !t.state.Running {
		return
	}

	prev := t.state.PhaseIndex
	changed := t.state.advance(t.seq)
	exhausted := t.state.Exhausted(t.seq)
	if exhausted {
		t.state.Running = false
	}

	t.render()

	switch {
	case exhausted:
		t.notify(EventExhausted, prev)
	case changed:
		t.notify(EventPhaseChanged, prev)
	}

	if !exhausted {
		t.arm()
	}
}

// arm schedules the next tick. On failure the timer is left stopped.
func (t *Timer) arm() bool {
	if _, err := t.sched.After(t.interval, t.tick); err != nil {
		log.Warn().Err(err).Msg("could not schedule timer tick")
		t.state.Running = false
		return false
	}
	return true
}

func (t *Timer) render() {
	if t.renderer == nil {
		return
	}
	t.renderer.Render(Render(t.seq, t.state))
}

func (t *Timer) notify(kind EventKind, prev int) {
	if t.listener == nil {
		return
	}
	e := Event{
		Kind:          kind,
		PreviousPhase: prev,
		State:         t.state,
		At:            t.clock.Now(),
	}
	if t.state.Exhausted(t.seq) {
		e.PhaseName = t.seq.TerminalLabel()
	} else {
		e.PhaseName = t.seq.Phase(t.state.PhaseIndex).Name
	}
	t.listener.OnTimerEvent(e)
}
