package main

import (
	"fmt"

	"github.com/mcdev12/nightreign/go/internal/config"
	"github.com/mcdev12/nightreign/go/internal/phasetimer"
	"github.com/spf13/cobra"
)

func newPhasesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "phases",
		Short: "List the phase sequence and its boundaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := phasetimer.LoadSequence(phaseFile(cmd, config.NewConfigFromEnv()))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fractions := seq.BoundaryFractions()
			for i, p := range seq.Phases() {
				_, _ = fmt.Fprintf(out, "%d  %-28s %s  starts at %s\n",
					i, p.Name, phasetimer.FormatTime(p.Duration), phasetimer.FormatTime(seq.StartOffset(i)))
				if i < len(fractions) {
					_, _ = fmt.Fprintf(out, "   boundary at %.2f%%\n", fractions[i]*100)
				}
			}
			_, _ = fmt.Fprintf(out, "-  %-28s total %s\n", seq.TerminalLabel(), phasetimer.FormatTime(seq.TotalDuration()))
			return nil
		},
	}
}
