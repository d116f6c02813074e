package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/nightreign/go/internal/config"
	"github.com/mcdev12/nightreign/go/internal/console"
	"github.com/mcdev12/nightreign/go/internal/events"
	"github.com/mcdev12/nightreign/go/internal/phasetimer"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newTimerCommand() *cobra.Command {
	var (
		interval time.Duration
		phase    int
		barWidth int
	)

	cmd := &cobra.Command{
		Use:   "timer",
		Short: "Run the phase countdown in the terminal",
		Long: `Run the phase countdown in the terminal until the boss fight is reached
or the process is interrupted. Each tick prints one line.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.NewConfigFromEnv()
			if !cmd.Flags().Changed("interval") {
				interval = cfg.TickInterval
			}

			seq, err := phasetimer.LoadSequence(phaseFile(cmd, cfg))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runTimer(ctx, cmd, seq, interval, phase, barWidth)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", time.Second, "wall-clock length of one tick")
	cmd.Flags().IntVar(&phase, "phase", 0, "phase index to start from")
	cmd.Flags().IntVar(&barWidth, "width", console.DefaultBarWidth, "progress bar width in characters")
	return cmd
}

func runTimer(ctx context.Context, cmd *cobra.Command, seq *phasetimer.Sequence, interval time.Duration, phase, barWidth int) error {
	done := &doneListener{
		next: events.NewTimerListener(uuid.New(), events.NewLogPublisher()),
		ch:   make(chan struct{}),
	}

	timer := phasetimer.New(seq,
		phasetimer.WithRenderer(console.NewRenderer(cmd.OutOrStdout(), barWidth)),
		phasetimer.WithListener(done),
		phasetimer.WithTickInterval(interval),
	)
	defer timer.Close()

	if phase != 0 {
		if err := timer.JumpToPhase(phase); err != nil {
			return fmt.Errorf("--phase %d: %w", phase, err)
		}
	}
	timer.Start()

	select {
	case <-done.ch:
		log.Info().Msg("boss fight reached")
	case <-ctx.Done():
		log.Info().Msg("timer interrupted")
	}
	return nil
}

// doneListener forwards events and closes ch once the sequence is exhausted.
type doneListener struct {
	next phasetimer.Listener
	ch   chan struct{}
	once sync.Once
}

func (l *doneListener) OnTimerEvent(e phasetimer.Event) {
	l.next.OnTimerEvent(e)
	if e.Kind == phasetimer.EventExhausted {
		l.once.Do(func() { close(l.ch) })
	}
}
