package gateway

import (
	"fmt"
	"math"
	"strconv"

	"github.com/mcdev12/nightreign/go/internal/phasetimer"
)

const (
	// IndicatorWidthPx is the width of the progress indicator bar.
	IndicatorWidthPx = 12
	// DividerOffsetPx centers a 2px divider border on its boundary.
	DividerOffsetPx = 1

	StartLabel   = "Start"
	RunningLabel = "GL HF"
)

// DisplayFrame is the display state plus everything the page needs to lay
// it out without doing any math of its own.
type DisplayFrame struct {
	phasetimer.Display

	StartButtonLabel string   `json:"start_button_label"`
	IndicatorLeft    string   `json:"indicator_left"`
	DividerLefts     []string `json:"divider_lefts"`

	// Pixel offsets, only set once the client reported its container width.
	IndicatorLeftPx *float64  `json:"indicator_left_px,omitempty"`
	DividerLeftsPx  []float64 `json:"divider_lefts_px,omitempty"`
}

// BuildFrame lays out d. containerWidth <= 0 means unknown.
func BuildFrame(d phasetimer.Display, containerWidth float64) DisplayFrame {
	f := DisplayFrame{
		Display:          d,
		StartButtonLabel: StartLabel,
		IndicatorLeft:    cssCalc(d.Progress, IndicatorWidthPx/2),
		DividerLefts:     make([]string, len(d.Dividers)),
	}
	if d.Running {
		f.StartButtonLabel = RunningLabel
	}
	for i, frac := range d.Dividers {
		f.DividerLefts[i] = cssCalc(frac, DividerOffsetPx)
	}

	if containerWidth > 0 {
		px := d.Progress*containerWidth - IndicatorWidthPx/2
		f.IndicatorLeftPx = &px
		f.DividerLeftsPx = make([]float64, len(d.Dividers))
		for i, frac := range d.Dividers {
			f.DividerLeftsPx[i] = frac*containerWidth - DividerOffsetPx
		}
	}
	return f
}

// cssCalc renders "calc(P% - Npx)" with the percentage rounded to 4 decimals.
func cssCalc(fraction float64, offsetPx int) string {
	percent := math.Round(fraction*1e6) / 1e4
	return fmt.Sprintf("calc(%s%% - %dpx)", strconv.FormatFloat(percent, 'f', -1, 64), offsetPx)
}
