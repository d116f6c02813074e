package phasetimer

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidArgument is returned when a caller passes a value outside the
// accepted range, such as a jump index past the last phase.
var ErrInvalidArgument = errors.New("invalid argument")

// DefaultTerminalLabel is shown once every phase has run out.
const DefaultTerminalLabel = "Boss Fight"

// Phase is a named, fixed-duration segment of the sequence.
type Phase struct {
	Name     string `json:"name" yaml:"name"`
	Duration int    `json:"duration_sec" yaml:"duration_sec"` // whole seconds
}

// DefaultPhases returns the storm phases of an expedition day.
func DefaultPhases() []Phase {
	return []Phase{
		{Name: "Storm 1 Phase", Duration: 4*60 + 25},
		{Name: "Storm is shrinking", Duration: 2*60 + 55},
		{Name: "Storm 2 Phase", Duration: 3*60 + 25},
		{Name: "Storm is shrinking further", Duration: 2*60 + 55},
	}
}

// Sequence is an immutable, validated list of phases.
type Sequence struct {
	phases        []Phase
	offsets       []int // offsets[i] = sum of durations before phase i
	total         int
	terminalLabel string
}

// NewSequence validates phases and precomputes offsets and the total duration.
func NewSequence(phases []Phase, terminalLabel string) (*Sequence, error) {
	if len(phases) == 0 {
		return nil, fmt.Errorf("%w: phase sequence is empty", ErrInvalidArgument)
	}
	if terminalLabel == "" {
		terminalLabel = DefaultTerminalLabel
	}

	s := &Sequence{
		phases:        make([]Phase, len(phases)),
		offsets:       make([]int, len(phases)),
		terminalLabel: terminalLabel,
	}
	copy(s.phases, phases)

	for i, p := range s.phases {
		if p.Name == "" {
			return nil, fmt.Errorf("%w: phase %d has no name", ErrInvalidArgument, i)
		}
		if p.Duration <= 0 {
			return nil, fmt.Errorf("%w: phase %q has non-positive duration %d", ErrInvalidArgument, p.Name, p.Duration)
		}
		s.offsets[i] = s.total
		s.total += p.Duration
	}

	return s, nil
}

// MustSequence is NewSequence for statically known phase lists.
func MustSequence(phases []Phase, terminalLabel string) *Sequence {
	s, err := NewSequence(phases, terminalLabel)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of phases, which is also the exhausted sentinel index.
func (s *Sequence) Len() int { return len(s.phases) }

// Phase returns the phase at index i.
func (s *Sequence) Phase(i int) Phase { return s.phases[i] }

// Phases returns a copy of the phase list.
func (s *Sequence) Phases() []Phase {
	out := make([]Phase, len(s.phases))
	copy(out, s.phases)
	return out
}

// TotalDuration is the sum of all phase durations in seconds.
func (s *Sequence) TotalDuration() int { return s.total }

// TerminalLabel is the label shown after the last phase.
func (s *Sequence) TerminalLabel() string { return s.terminalLabel }

// StartOffset returns the elapsed seconds at which phase i begins.
func (s *Sequence) StartOffset(i int) int { return s.offsets[i] }

// ValidIndex reports whether i is a jumpable phase index.
func (s *Sequence) ValidIndex(i int) bool { return i >= 0 && i < len(s.phases) }

// BoundaryFractions returns the position of every phase boundary except the
// final one, as a fraction of the total duration.
func (s *Sequence) BoundaryFractions() []float64 {
	fractions := make([]float64, 0, len(s.phases)-1)
	for i := 1; i < len(s.phases); i++ {
		fractions = append(fractions, float64(s.offsets[i])/float64(s.total))
	}
	return fractions
}

// Tick is the wall-clock length of one tick.
const Tick = time.Second
