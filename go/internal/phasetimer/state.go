package phasetimer

// State is a snapshot of a timer's position in its sequence.
type State struct {
	PhaseIndex    int  `json:"phase_index"`
	PhaseTimeLeft int  `json:"phase_time_left_sec"`
	Elapsed       int  `json:"elapsed_sec"`
	Running       bool `json:"running"`
}

// Exhausted reports whether every phase has run out.
func (st State) Exhausted(seq *Sequence) bool {
	return st.PhaseIndex >= seq.Len()
}

func initialState(seq *Sequence) State {
	return State{
		PhaseIndex:    0,
		PhaseTimeLeft: seq.Phase(0).Duration,
	}
}

func jumpedState(seq *Sequence, index int) State {
	return State{
		PhaseIndex:    index,
		PhaseTimeLeft: seq.Phase(index).Duration,
		Elapsed:       seq.StartOffset(index),
	}
}

// advance applies one tick. It reports whether the phase index changed.
// The running flag is left to the caller.
func (st *State) advance(seq *Sequence) bool {
	if st.Exhausted(seq) {
		return false
	}
	if st.PhaseTimeLeft > 0 {
		st.PhaseTimeLeft--
		st.Elapsed++
	}
	if st.PhaseTimeLeft > 0 {
		return false
	}

	st.PhaseIndex++
	if st.PhaseIndex < seq.Len() {
		st.PhaseTimeLeft = seq.Phase(st.PhaseIndex).Duration
	} else {
		st.PhaseTimeLeft = 0
	}
	return true
}

// consistent checks the elapsed/time-left invariant against seq.
func (st State) consistent(seq *Sequence) bool {
	if st.PhaseIndex == seq.Len() {
		return st.Elapsed == seq.TotalDuration() && st.PhaseTimeLeft == 0
	}
	if st.PhaseIndex < 0 || st.PhaseIndex > seq.Len() {
		return false
	}
	want := seq.StartOffset(st.PhaseIndex) + seq.Phase(st.PhaseIndex).Duration - st.PhaseTimeLeft
	return st.Elapsed == want && st.PhaseTimeLeft >= 0
}
