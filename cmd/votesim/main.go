package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/electionlab/votesim/internal/config"
	"github.com/electionlab/votesim/internal/logging"
)

var version = "0.1.0-dev"

func main() {
	// Load .env if present so VOTESIM_* overrides can sit next to the config.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: loading .env: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "votesim",
		Short: "Monte Carlo simulator for replicated voting networks",
		Long: `votesim estimates end-to-end vote latency and delivery reliability
for a hierarchical replicated voting network, under calm conditions and
under denial-of-service stress.

It sweeps a grid of network configurations, draws replicated samples
from a calibrated analytical latency model and reduces each
configuration to summary statistics with confidence intervals.`,
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "Config file path (default votesim.yaml if present)")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for downstream tooling)")
	rootCmd.PersistentFlags().String("log-level", "", "Log verbosity: info, debug or trace")

	// Add subcommands
	rootCmd.AddCommand(
		newVersionCmd(),
		newSweepCmd(),
		newRunCmd(),
		newValidateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{"version": version})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "votesim version %s\n", version)
			}
		},
	}
}

// loadConfig loads the effective configuration for a command, honoring
// the persistent --config and --log-level flags.
func loadConfig(cmd *cobra.Command) (*config.SimConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}

	return cfg, nil
}

// newLoggers builds the operational logger and the sweep trace logger
// from the configuration. The trace logger is nil below debug level.
func newLoggers(cfg *config.SimConfig) (*slog.Logger, *logging.TraceLogger) {
	logger := logging.NewLogger(cfg.Logging.Level, os.Stderr)
	trace := logging.NewTraceLogger(cfg.Logging.TracePath, cfg.Logging.Level)
	return logger, trace
}
