package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeConfig writes a config file into a temp directory and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "votesim.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestNewValidateCmd(t *testing.T) {
	cmd := newValidateCmd()
	if cmd.Use != "validate" {
		t.Errorf("Use = %q, want %q", cmd.Use, "validate")
	}
}

func TestValidateCmd_Valid(t *testing.T) {
	path := writeConfig(t, "replicates: 100\n")

	var out bytes.Buffer
	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.SetArgs([]string{"validate", "--config", path})
	rootCmd.SetOut(&out)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("validate failed: %v", err)
	}

	if !strings.Contains(out.String(), "Configuration valid") {
		t.Errorf("unexpected output: %q", out.String())
	}
	// The default grid has 3*2*2*2*2 configurations.
	if !strings.Contains(out.String(), "48 configurations") {
		t.Errorf("expected grid size in output: %q", out.String())
	}
}

func TestValidateCmd_Invalid(t *testing.T) {
	path := writeConfig(t, "replicates: 1\n")

	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.SetArgs([]string{"validate", "--config", path})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})

	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for invalid config")
	}
	if !strings.Contains(err.Error(), "invalid configuration") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateCmd_JSON(t *testing.T) {
	path := writeConfig(t, "replicates: 100\nseed: 7\n")

	var out bytes.Buffer
	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.SetArgs([]string{"validate", "--config", path, "--json"})
	rootCmd.SetOut(&out)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("validate failed: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(out.Bytes(), &payload); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}
	if payload["valid"] != true {
		t.Errorf("expected valid true, got %v", payload["valid"])
	}
	if payload["configurations"] != float64(48) {
		t.Errorf("expected 48 configurations, got %v", payload["configurations"])
	}
}

func TestValidateCmd_MissingFile(t *testing.T) {
	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.SetArgs([]string{"validate", "--config", filepath.Join(t.TempDir(), "nope.yaml")})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})

	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
