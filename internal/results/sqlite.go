package results

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/electionlab/votesim/internal/sweep"
)

// SQLiteStore persists sweep results to a SQLite database so that runs
// accumulate and can be compared later.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates the results database at path and
// initializes the schema. The parent directory is created as needed.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create results directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite works best with single writer

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// WriteRun records one sweep invocation and its rows in a single
// transaction. Row order is preserved via the row_index column.
func (s *SQLiteStore) WriteRun(ctx context.Context, info RunInfo, rows []sweep.Summary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, seed, replicates)
		VALUES (?, ?, ?, ?)
	`, info.ID, info.CreatedAt.Format(time.RFC3339), strconv.FormatUint(info.Seed, 10), info.Replicates); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO summaries (
			run_id, row_index, voter_count, failure_rate, base_latency_ms,
			dos_active, replication_factor, replicates,
			mean_latency_ms, ci95_halfwidth_ms, p95_latency_ms,
			success_rate, tamper_detection_rate
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare summary insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		tamper := sql.NullFloat64{Float64: row.TamperRate, Valid: row.TamperEvaluated}
		if _, err := stmt.ExecContext(ctx,
			info.ID, i, row.VoterCount, row.FailureRate, row.BaseLatencyMS,
			row.DoSActive, row.ReplicationFactor, row.Replicates,
			row.MeanLatencyMS, row.CI95HalfWidthMS, row.P95LatencyMS,
			row.SuccessRate, tamper,
		); err != nil {
			return fmt.Errorf("failed to insert summary %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// Runs returns the recorded sweep invocations, oldest first.
func (s *SQLiteStore) Runs(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, seed, replicates
		FROM runs
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var infos []RunInfo
	for rows.Next() {
		var info RunInfo
		var createdAt, seed string
		if err := rows.Scan(&info.ID, &createdAt, &seed, &info.Replicates); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		info.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse run timestamp: %w", err)
		}
		info.Seed, err = strconv.ParseUint(seed, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse run seed: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// ReadRun returns the summaries recorded for one run, in their original
// output order.
func (s *SQLiteStore) ReadRun(ctx context.Context, runID string) ([]sweep.Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT voter_count, failure_rate, base_latency_ms,
		       dos_active, replication_factor, replicates,
		       mean_latency_ms, ci95_halfwidth_ms, p95_latency_ms,
		       success_rate, tamper_detection_rate
		FROM summaries
		WHERE run_id = ?
		ORDER BY row_index
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query summaries: %w", err)
	}
	defer rows.Close()

	var out []sweep.Summary
	for rows.Next() {
		var sum sweep.Summary
		var tamper sql.NullFloat64
		if err := rows.Scan(
			&sum.VoterCount, &sum.FailureRate, &sum.BaseLatencyMS,
			&sum.DoSActive, &sum.ReplicationFactor, &sum.Replicates,
			&sum.MeanLatencyMS, &sum.CI95HalfWidthMS, &sum.P95LatencyMS,
			&sum.SuccessRate, &tamper,
		); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		if tamper.Valid {
			sum.TamperRate = tamper.Float64
			sum.TamperEvaluated = true
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
