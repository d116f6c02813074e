package main

import (
	"github.com/mcdev12/nightreign/go/internal/config"
	"github.com/spf13/cobra"
)

// newRootCommand builds the command tree. Tests build a fresh tree per case.
func newRootCommand() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "nightreign",
		Short: "Nightreign helper: storm phase timer and boss stats",
		Long: `Companion service for Nightreign runs.

It serves a per-visitor storm phase countdown over websockets, the boss stat
catalog used by the pinned stat table, and the page share payload. The same
timer can also be run in a terminal.

Examples:
  nightreign serve --port 8080
  nightreign timer --phase 2
  nightreign phases`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadDotEnv()
			if !cmd.Flags().Changed("log-level") {
				logLevel = config.NewConfigFromEnv().LogLevel
			}
			config.SetupLogging(logLevel)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("phases-file", "", "YAML phase sequence (defaults to the built-in storm phases, or PHASE_FILE)")

	root.AddCommand(newServeCommand())
	root.AddCommand(newTimerCommand())
	root.AddCommand(newPhasesCommand())
	return root
}

// phaseFile resolves --phases-file, falling back to PHASE_FILE.
func phaseFile(cmd *cobra.Command, cfg config.Config) string {
	if path, _ := cmd.Flags().GetString("phases-file"); path != "" {
		return path
	}
	return cfg.PhaseFile
}
