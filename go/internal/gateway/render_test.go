package gateway

import (
	"testing"

	"github.com/mcdev12/nightreign/go/internal/phasetimer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFrame(t *testing.T) {
	d := phasetimer.Display{
		Label:    "B",
		TimeLeft: "00:03",
		Progress: 0.8,
		Dividers: []float64{0.5, 0.75},
		Running:  true,
	}

	f := BuildFrame(d, 0)
	assert.Equal(t, RunningLabel, f.StartButtonLabel)
	assert.Equal(t, "calc(80% - 6px)", f.IndicatorLeft)
	assert.Equal(t, []string{"calc(50% - 1px)", "calc(75% - 1px)"}, f.DividerLefts)
	assert.Nil(t, f.IndicatorLeftPx)
	assert.Nil(t, f.DividerLeftsPx)

	f = BuildFrame(d, 400)
	require.NotNil(t, f.IndicatorLeftPx)
	assert.InDelta(t, 314.0, *f.IndicatorLeftPx, 1e-9)
	assert.InDeltaSlice(t, []float64{199, 299}, f.DividerLeftsPx, 1e-9)

	d.Running = false
	assert.Equal(t, StartLabel, BuildFrame(d, 0).StartButtonLabel)
}

func TestCSSCalcRounds(t *testing.T) {
	assert.Equal(t, "calc(0% - 6px)", cssCalc(0, 6))
	assert.Equal(t, "calc(100% - 6px)", cssCalc(1, 6))
	assert.Equal(t, "calc(66.6667% - 1px)", cssCalc(10.0/15.0, 1))
}

func TestParseClientCommand(t *testing.T) {
	cmd, err := ParseClientCommand([]byte(`{"type":"jump","phase":2}`))
	require.NoError(t, err)
	assert.Equal(t, CommandJump, cmd.Type)
	require.NotNil(t, cmd.Phase)
	assert.Equal(t, 2, *cmd.Phase)

	cmd, err = ParseClientCommand([]byte(`{"type":"resize","container_width":512.5}`))
	require.NoError(t, err)
	assert.Equal(t, 512.5, cmd.ContainerWidth)

	_, err = ParseClientCommand([]byte(`{}`))
	assert.Error(t, err)
	_, err = ParseClientCommand([]byte(`not json`))
	assert.Error(t, err)
}
