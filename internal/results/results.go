// Package results provides sinks for sweep output: CSV files, a SQLite
// database and rendered text tables.
package results

import (
	"time"

	"github.com/google/uuid"
)

// RunInfo identifies one sweep invocation in shared result sinks.
type RunInfo struct {
	// ID uniquely identifies the run.
	ID string

	// CreatedAt is when the sweep was started.
	CreatedAt time.Time

	// Seed is the global sweep seed the rows were drawn from.
	Seed uint64

	// Replicates is the per-configuration replicate count.
	Replicates int
}

// NewRunInfo stamps a fresh run identity.
func NewRunInfo(seed uint64, replicates int) RunInfo {
	return RunInfo{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now().UTC(),
		Seed:       seed,
		Replicates: replicates,
	}
}
