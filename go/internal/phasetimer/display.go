package phasetimer

// Display is everything a render surface needs to draw the timer.
type Display struct {
	Label      string    `json:"label"`
	TimeLeft   string    `json:"time_left"`
	Progress   float64   `json:"progress"`
	Dividers   []float64 `json:"dividers"`
	PhaseIndex int       `json:"phase_index"`
	Running    bool      `json:"running"`
	Exhausted  bool      `json:"exhausted"`
}

// Render builds the display for st. It does not touch st.
func Render(seq *Sequence, st State) Display {
	d := Display{
		Progress:   progress(seq, st),
		Dividers:   seq.BoundaryFractions(),
		PhaseIndex: st.PhaseIndex,
		Running:    st.Running,
	}
	if st.Exhausted(seq) {
		d.Label = seq.TerminalLabel()
		d.TimeLeft = PlaceholderTime
		d.Exhausted = true
		return d
	}
	d.Label = seq.Phase(st.PhaseIndex).Name
	d.TimeLeft = FormatTime(st.PhaseTimeLeft)
	return d
}

func progress(seq *Sequence, st State) float64 {
	p := float64(st.Elapsed) / float64(seq.TotalDuration())
	if p > 1 {
		return 1
	}
	if p < 0 {
		return 0
	}
	return p
}
