// Package console draws timer displays as single text lines.
package console

import (
	"fmt"
	"io"
	"math"

	"github.com/mcdev12/nightreign/go/internal/phasetimer"
	"github.com/rs/zerolog/log"
)

// DefaultBarWidth is the number of cells in the text progress bar.
const DefaultBarWidth = 40

// Renderer writes one line per display update.
type Renderer struct {
	out      io.Writer
	barWidth int
}

// NewRenderer creates a renderer writing to out.
func NewRenderer(out io.Writer, barWidth int) *Renderer {
	if barWidth < 2 {
		barWidth = DefaultBarWidth
	}
	return &Renderer{out: out, barWidth: barWidth}
}

// Render implements phasetimer.Renderer.
func (r *Renderer) Render(d phasetimer.Display) {
	if _, err := fmt.Fprintln(r.out, FormatLine(d, r.barWidth)); err != nil {
		log.Error().Err(err).Msg("failed to write display line")
	}
}

// FormatLine renders d as "<time> [bar] <percent> <label>".
func FormatLine(d phasetimer.Display, barWidth int) string {
	return fmt.Sprintf("%s [%s] %3d%% %s", d.TimeLeft, Bar(d, barWidth), int(math.Floor(d.Progress*100)), d.Label)
}

// Bar draws the progress bar: '=' for elapsed cells, '|' for phase
// dividers and '#' for the indicator.
func Bar(d phasetimer.Display, width int) string {
	cells := make([]byte, width)
	filled := cellAt(d.Progress, width)
	for i := range cells {
		if i < filled {
			cells[i] = '='
		} else {
			cells[i] = ' '
		}
	}
	for _, f := range d.Dividers {
		cells[cellAt(f, width)] = '|'
	}
	cells[cellAt(d.Progress, width)] = '#'
	return string(cells)
}

func cellAt(fraction float64, width int) int {
	i := int(math.Round(fraction * float64(width-1)))
	return min(max(i, 0), width-1)
}
