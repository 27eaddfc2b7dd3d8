package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  slog.Level
	}{
		{"info", "info", slog.LevelInfo},
		{"debug", "debug", slog.LevelDebug},
		{"trace", "trace", LevelTrace},
		{"uppercase INFO", "INFO", slog.LevelInfo},
		{"uppercase DEBUG", "DEBUG", slog.LevelDebug},
		{"uppercase TRACE", "TRACE", LevelTrace},
		{"mixed case Debug", "Debug", slog.LevelDebug},
		{"unknown defaults to info", "unknown", slog.LevelInfo},
		{"empty defaults to info", "", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLevel(tt.input)
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name       string
		level      string
		logAtDebug bool
		logAtInfo  bool
	}{
		{"info filters debug", "info", false, true},
		{"debug passes debug", "debug", true, true},
		{"trace passes debug", "trace", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(tt.level, &buf)

			logger.Debug("debug message")
			hasDebug := strings.Contains(buf.String(), "debug message")
			if hasDebug != tt.logAtDebug {
				t.Errorf("debug message visible = %v, want %v (buf: %q)", hasDebug, tt.logAtDebug, buf.String())
			}

			buf.Reset()
			logger.Info("info message")
			hasInfo := strings.Contains(buf.String(), "info message")
			if hasInfo != tt.logAtInfo {
				t.Errorf("info message visible = %v, want %v (buf: %q)", hasInfo, tt.logAtInfo, buf.String())
			}
		})
	}
}

func TestLevelTrace(t *testing.T) {
	// Trace should be below debug (more verbose)
	if LevelTrace >= slog.LevelDebug {
		t.Errorf("LevelTrace (%d) should be less than LevelDebug (%d)", LevelTrace, slog.LevelDebug)
	}
}

func TestNewTraceLogger_InfoLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")
	tl := NewTraceLogger(path, "info")

	// At info level, trace logger should be nil
	if tl != nil {
		t.Error("expected nil TraceLogger at info level")
	}

	// Nil logger should still be safe to use
	tl.Log(map[string]any{"event": "test"})

	if _, err := os.Stat(path); err == nil {
		t.Error("trace file should not exist at info level")
	}
}

func TestNewTraceLogger_DebugLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")
	tl := NewTraceLogger(path, "debug")
	defer tl.Close()

	tl.Log(map[string]any{"event": "config_summarized", "mean_latency_ms": 198.5})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read trace file: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("failed to parse JSONL entry: %v", err)
	}

	if entry["event"] != "config_summarized" {
		t.Errorf("event = %v, want config_summarized", entry["event"])
	}
	if entry["mean_latency_ms"] != 198.5 {
		t.Errorf("mean_latency_ms = %v, want 198.5", entry["mean_latency_ms"])
	}
	if _, ok := entry["time"]; !ok {
		t.Error("expected 'time' field in trace entry")
	}
}

func TestNewTraceLogger_MultipleWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")
	tl := NewTraceLogger(path, "debug")
	defer tl.Close()

	tl.Log(map[string]any{"event": "config_summarized", "index": 0})
	tl.Log(map[string]any{"event": "config_summarized", "index": 1})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read trace file: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), string(data))
	}

	var first, second map[string]any
	json.Unmarshal([]byte(lines[0]), &first)
	json.Unmarshal([]byte(lines[1]), &second)

	if first["index"] != float64(0) {
		t.Errorf("first index = %v, want 0", first["index"])
	}
	if second["index"] != float64(1) {
		t.Errorf("second index = %v, want 1", second["index"])
	}
}

func TestTraceLogger_NilSafety(t *testing.T) {
	// nil TraceLogger should not panic
	var tl *TraceLogger
	tl.Log(map[string]any{"event": "should_not_panic"})
	tl.Close()
}

func TestTraceLogger_DoesNotMutateCallerMap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")
	tl := NewTraceLogger(path, "debug")
	defer tl.Close()

	event := map[string]any{"event": "test"}
	tl.Log(event)

	if _, hasTime := event["time"]; hasTime {
		t.Error("Log() should not mutate caller's map, but 'time' was injected")
	}
}

func TestTraceLogger_LogAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")
	tl := NewTraceLogger(path, "debug")

	tl.Log(map[string]any{"event": "before_close"})
	tl.Close()

	// Should be a no-op, not panic or error
	tl.Log(map[string]any{"event": "after_close"})
}

func TestNewTraceLogger_CreatesParentDir(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "sub", "dir", "trace.jsonl")

	tl := NewTraceLogger(path, "debug")
	if tl == nil {
		t.Fatal("expected non-nil TraceLogger when parent dir needs creation")
	}
	defer tl.Close()

	tl.Log(map[string]any{"event": "dir_create_test"})

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("trace file should exist after dir creation: %v", err)
	}
}

func TestTraceLogger_FilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")
	tl := NewTraceLogger(path, "debug")
	defer tl.Close()

	tl.Log(map[string]any{"event": "perm_test"})

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("failed to stat trace file: %v", err)
	}

	perm := info.Mode().Perm()
	if perm != 0600 {
		t.Errorf("file permissions = %o, want 0600", perm)
	}
}
