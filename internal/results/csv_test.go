package results

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/electionlab/votesim/internal/sweep"
)

// parseCSV reads all records back and fails the test on parse errors.
func parseCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse CSV: %v", err)
	}
	return records
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleRows()); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	records := parseCSV(t, buf.Bytes())
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d records", len(records))
	}

	if !reflect.DeepEqual(records[0], csvHeader) {
		t.Errorf("unexpected header: %v", records[0])
	}

	dosRow := records[1]
	want := []string{"1000", "0.05", "100", "true", "1", "1000", "198.96", "0.97", "224.5", "0.855", "0.979"}
	if !reflect.DeepEqual(dosRow, want) {
		t.Errorf("unexpected DoS row:\n got %v\nwant %v", dosRow, want)
	}

	calmRow := records[2]
	if calmRow[3] != "false" {
		t.Errorf("expected dos_active false, got %q", calmRow[3])
	}
	// Tamper detection is undefined without an attack.
	if calmRow[10] != "" {
		t.Errorf("expected empty tamper cell, got %q", calmRow[10])
	}
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	records := parseCSV(t, buf.Bytes())
	if len(records) != 1 {
		t.Errorf("expected header only, got %d records", len(records))
	}
}

func TestWriteCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results", "sim_runs.csv")

	if err := WriteCSVFile(path, sampleRows()); err != nil {
		t.Fatalf("WriteCSVFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read results file: %v", err)
	}

	records := parseCSV(t, data)
	if len(records) != 3 {
		t.Errorf("expected header + 2 rows, got %d records", len(records))
	}
}

func TestWriteCSVFile_Replaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim_runs.csv")

	if err := WriteCSVFile(path, sampleRows()); err != nil {
		t.Fatalf("WriteCSVFile() error = %v", err)
	}
	if err := WriteCSVFile(path, sampleRows()[:1]); err != nil {
		t.Fatalf("WriteCSVFile() rewrite error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read results file: %v", err)
	}

	records := parseCSV(t, data)
	if len(records) != 2 {
		t.Errorf("expected rewrite to replace contents, got %d records", len(records))
	}
}

func TestWriteCSV_RowOrderPreserved(t *testing.T) {
	rows := []sweep.Summary{}
	for i := 1; i <= 5; i++ {
		row := sampleRows()[1]
		row.VoterCount = i * 100
		rows = append(rows, row)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	records := parseCSV(t, buf.Bytes())
	for i := 1; i < len(records); i++ {
		want := []string{"100", "200", "300", "400", "500"}[i-1]
		if records[i][0] != want {
			t.Errorf("row %d voter_count = %q, want %q", i, records[i][0], want)
		}
	}
}
