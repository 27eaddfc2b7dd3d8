package results

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/electionlab/votesim/internal/sweep"
)

// csvHeader is the column order for sweep result files.
var csvHeader = []string{
	"voter_count",
	"failure_rate",
	"base_latency_ms",
	"dos_active",
	"replication_factor",
	"replicates",
	"mean_latency_ms",
	"ci95_halfwidth_ms",
	"p95_latency_ms",
	"success_rate",
	"tamper_detection_rate",
}

// WriteCSV writes sweep rows to w with a header row, preserving row
// order. The tamper detection cell is left empty for configurations
// that ran without an attack.
func WriteCSV(w io.Writer, rows []sweep.Summary) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, row := range rows {
		record := []string{
			strconv.Itoa(row.VoterCount),
			formatFloat(row.FailureRate),
			formatFloat(row.BaseLatencyMS),
			strconv.FormatBool(row.DoSActive),
			strconv.Itoa(row.ReplicationFactor),
			strconv.Itoa(row.Replicates),
			formatFloat(row.MeanLatencyMS),
			formatFloat(row.CI95HalfWidthMS),
			formatFloat(row.P95LatencyMS),
			formatFloat(row.SuccessRate),
			"",
		}
		if row.TamperEvaluated {
			record[len(record)-1] = formatFloat(row.TamperRate)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes sweep rows to the file at path, creating the
// parent directory as needed. An existing file is replaced.
func WriteCSVFile(path string, rows []sweep.Summary) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating results directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating results file: %w", err)
	}

	if err := WriteCSV(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// formatFloat renders a float with full round-trip precision.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
