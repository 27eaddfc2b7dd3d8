package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/electionlab/votesim/internal/config"
	"github.com/electionlab/votesim/internal/results"
	"github.com/electionlab/votesim/internal/sweep"
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Evaluate the configured parameter grid",
		Long: `Evaluate every configuration in the parameter grid and reduce the
replicate outcomes of each one to a summary row.

Rows are written to the configured sink: a CSV file, a SQLite results
database, or an aligned table on standard output.

Examples:
  votesim sweep                                # grid from votesim.yaml
  votesim sweep --replicates 1000 --seed 42    # tighter intervals
  votesim sweep --format table                 # print instead of writing
  votesim sweep --format sqlite --out runs.db  # accumulate runs`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			// Flag overrides
			if cmd.Flags().Changed("replicates") {
				cfg.Replicates, _ = cmd.Flags().GetInt("replicates")
			}
			if cmd.Flags().Changed("seed") {
				cfg.Seed, _ = cmd.Flags().GetUint64("seed")
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers, _ = cmd.Flags().GetInt("workers")
			}
			if cmd.Flags().Changed("on-invalid") {
				cfg.OnInvalid, _ = cmd.Flags().GetString("on-invalid")
			}
			if cmd.Flags().Changed("format") {
				cfg.Output.Format, _ = cmd.Flags().GetString("format")
			}
			if cmd.Flags().Changed("out") {
				cfg.Output.Path, _ = cmd.Flags().GetString("out")
			}

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			return runSweep(cmd, cfg, jsonOut)
		},
	}

	cmd.Flags().Int("replicates", 0, "Replicates per configuration (overrides config)")
	cmd.Flags().Uint64("seed", 0, "Sweep seed (overrides config)")
	cmd.Flags().Int("workers", 0, "Concurrent configuration evaluations (overrides config)")
	cmd.Flags().String("on-invalid", "", "Invalid grid handling: abort or skip (overrides config)")
	cmd.Flags().String("format", "", "Result sink: csv, sqlite or table (overrides config)")
	cmd.Flags().String("out", "", "Result destination path (overrides config)")

	return cmd
}

// runSweep executes the sweep and hands the rows to the selected sink.
func runSweep(cmd *cobra.Command, cfg *config.SimConfig, jsonOut bool) error {
	logger, trace := newLoggers(cfg)
	defer trace.Close()

	opts := cfg.SweepOptions()
	opts.Logger = logger
	opts.Trace = trace
	opts.TraceReplicates = cfg.Logging.Level == "trace"

	axes := cfg.Axes.ToAxes()

	logger.Info("starting sweep",
		"configurations", axes.Size(),
		"replicates", opts.Replicates,
		"seed", opts.Seed,
		"workers", opts.Workers,
	)
	start := time.Now()

	rows, err := sweep.Run(axes, opts)
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	logger.Info("sweep complete", "rows", len(rows), "elapsed", time.Since(start))

	if jsonOut {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(rows)
	}

	format := cfg.Output.Format
	if format == "" {
		format = "csv"
	}

	switch format {
	case "csv":
		path := cfg.Output.Path
		if path == "" {
			path = "results/sim_runs.csv"
		}
		if err := results.WriteCSVFile(path, rows); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", len(rows), path)

	case "sqlite":
		path := cfg.Output.Path
		if path == "" {
			path = "results/votesim.db"
		}
		store, err := results.OpenSQLite(path)
		if err != nil {
			return err
		}
		defer store.Close()

		info := results.NewRunInfo(opts.Seed, opts.Replicates)
		if err := store.WriteRun(cmd.Context(), info, rows); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Recorded run %s (%d rows) in %s\n", info.ID, len(rows), path)

	case "table":
		results.RenderTable(cmd.OutOrStdout(), rows)

	default:
		return fmt.Errorf("invalid output format: %s (valid: csv, sqlite, table)", format)
	}

	return nil
}
