package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		Long: `Load the configuration, apply environment overrides and check every
parameter against its documented domain.

Exits nonzero when the configuration is invalid, so it can gate
experiment scripts and CI jobs.

Examples:
  votesim validate
  votesim validate --config experiments/dos-study.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			jsonOut, _ := cmd.Flags().GetBool("json")

			if err := cfg.Validate(); err != nil {
				if jsonOut {
					json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
						"valid": false,
						"error": err.Error(),
					})
				}
				return fmt.Errorf("invalid configuration: %w", err)
			}

			size := cfg.Axes.ToAxes().Size()
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"valid":          true,
					"configurations": size,
					"replicates":     cfg.Replicates,
				})
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Configuration valid: %d configurations x %d replicates\n",
				size, cfg.Replicates)
			return nil
		},
	}
}
