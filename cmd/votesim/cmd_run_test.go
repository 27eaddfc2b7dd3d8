package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/electionlab/votesim/internal/sample"
)

func TestNewRunCmd(t *testing.T) {
	cmd := newRunCmd()
	if cmd.Use != "run" {
		t.Errorf("Use = %q, want %q", cmd.Use, "run")
	}

	for _, flag := range []string{"voters", "failure-rate", "base-latency", "dos", "replication", "replicates", "seed"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("missing --%s flag", flag)
		}
	}
}

func TestRunCmd_JSON(t *testing.T) {
	var out bytes.Buffer
	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newRunCmd())
	rootCmd.SetArgs([]string{
		"run",
		"--voters", "100",
		"--failure-rate", "0",
		"--base-latency", "10",
		"--replicates", "50",
		"--seed", "7",
		"--json",
	})
	rootCmd.SetOut(&out)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	var row map[string]any
	if err := json.Unmarshal(out.Bytes(), &row); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}

	if row["voter_count"] != float64(100) {
		t.Errorf("expected voter_count 100, got %v", row["voter_count"])
	}
	if row["replicates"] != float64(50) {
		t.Errorf("expected replicates 50, got %v", row["replicates"])
	}
	// Zero failure rate means certain delivery.
	if row["success_rate"] != float64(1) {
		t.Errorf("expected success_rate 1, got %v", row["success_rate"])
	}
	if mean, _ := row["mean_latency_ms"].(float64); mean <= 0 {
		t.Errorf("expected positive mean latency, got %v", row["mean_latency_ms"])
	}
	// Tamper detection is undefined without an attack.
	if _, ok := row["tamper_detection_rate"]; ok {
		t.Error("expected tamper detection to be omitted without an attack")
	}
}

func TestRunCmd_Table(t *testing.T) {
	var out bytes.Buffer
	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newRunCmd())
	rootCmd.SetArgs([]string{
		"run",
		"--voters", "100",
		"--failure-rate", "0.05",
		"--base-latency", "10",
		"--dos",
		"--replicates", "50",
	})
	rootCmd.SetOut(&out)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if !strings.Contains(out.String(), "DoS") {
		t.Errorf("expected DoS scenario label, got %q", out.String())
	}
}

func TestRunCmd_InvalidFlags(t *testing.T) {
	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newRunCmd())
	rootCmd.SetArgs([]string{"run", "--voters", "0"})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})

	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for zero voters")
	}

	var ce *sample.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *sample.ConfigError, got %T: %v", err, err)
	}
	if ce.Field != "voter_count" {
		t.Errorf("expected field voter_count, got %q", ce.Field)
	}
}

func TestRunCmd_Reproducible(t *testing.T) {
	args := []string{
		"run",
		"--voters", "1000",
		"--failure-rate", "0.05",
		"--base-latency", "100",
		"--dos",
		"--replicates", "200",
		"--seed", "42",
		"--json",
	}

	var first, second bytes.Buffer
	for i, out := range []*bytes.Buffer{&first, &second} {
		rootCmd := newTestRootCmd()
		rootCmd.AddCommand(newRunCmd())
		rootCmd.SetArgs(args)
		rootCmd.SetOut(out)
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("run %d failed: %v", i, err)
		}
	}

	if first.String() != second.String() {
		t.Error("expected identical output for identical flags")
	}
}
