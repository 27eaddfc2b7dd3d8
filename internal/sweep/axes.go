package sweep

import (
	"github.com/electionlab/votesim/internal/sample"
)

// Axes holds the predeclared value sets swept over. The configuration
// grid is the Cartesian product of all five axes.
type Axes struct {
	VoterCounts        []int
	FailureRates       []float64
	BaseLatenciesMS    []float64
	DoSModes           []bool
	ReplicationFactors []int
}

// Validate rejects axes with any empty value set. Per-value domain
// checks happen during the sweep, where the invalid policy applies.
func (a Axes) Validate() error {
	axes := []struct {
		field string
		count int
	}{
		{"voter_counts", len(a.VoterCounts)},
		{"failure_rates", len(a.FailureRates)},
		{"base_latencies_ms", len(a.BaseLatenciesMS)},
		{"dos_modes", len(a.DoSModes)},
		{"replication_factors", len(a.ReplicationFactors)},
	}
	for _, ax := range axes {
		if ax.count == 0 {
			return &sample.ConfigError{Field: ax.field, Reason: "axis has no values"}
		}
	}
	return nil
}

// Size returns the number of configurations in the grid.
func (a Axes) Size() int {
	return len(a.VoterCounts) * len(a.FailureRates) * len(a.BaseLatenciesMS) *
		len(a.DoSModes) * len(a.ReplicationFactors)
}

// Configs enumerates the grid in its fixed order: voter counts
// outermost, then failure rates, base latencies, DoS modes, and
// replication factors innermost. A configuration's position in the
// returned slice is its stable index, used both for output ordering
// and for deriving its random stream.
func (a Axes) Configs() []sample.Config {
	configs := make([]sample.Config, 0, a.Size())
	for _, voters := range a.VoterCounts {
		for _, failureRate := range a.FailureRates {
			for _, baseLatency := range a.BaseLatenciesMS {
				for _, dos := range a.DoSModes {
					for _, replication := range a.ReplicationFactors {
						configs = append(configs, sample.Config{
							VoterCount:        voters,
							FailureRate:       failureRate,
							BaseLatencyMS:     baseLatency,
							DoSActive:         dos,
							ReplicationFactor: replication,
						})
					}
				}
			}
		}
	}
	return configs
}
