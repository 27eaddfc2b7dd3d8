package sample

import (
	"fmt"
	"math"
)

// Config describes one configuration of the voting network under test.
// It is a plain value type; the zero value is invalid (use Validate).
type Config struct {
	// VoterCount is the number of voters submitting ballots. Must be >= 1.
	VoterCount int `json:"voter_count"`

	// FailureRate is the baseline probability that a single vote submission
	// is lost before reaching a tally node. Must be in [0, 1].
	FailureRate float64 `json:"failure_rate"`

	// BaseLatencyMS is the uncongested mean network transit latency in
	// milliseconds. Must be > 0.
	BaseLatencyMS float64 `json:"base_latency_ms"`

	// DoSActive applies the denial-of-service stress profile: congested
	// network transit and an additional independent drop source.
	DoSActive bool `json:"dos_active"`

	// ReplicationFactor is the number of independent tally replicas each
	// vote is submitted to. Must be >= 1.
	ReplicationFactor int `json:"replication_factor"`
}

// ConfigError reports a simulation parameter outside its documented domain.
type ConfigError struct {
	Field  string // parameter name, in config-file notation
	Reason string // what the domain is and what was provided
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Validate checks every field against its domain and returns a
// *ConfigError for the first violation. Out-of-domain values are never
// clamped; the caller decides whether to abort or skip.
func (c Config) Validate() error {
	if c.VoterCount < 1 {
		return &ConfigError{Field: "voter_count", Reason: fmt.Sprintf("must be >= 1, got %d", c.VoterCount)}
	}
	if math.IsNaN(c.FailureRate) || c.FailureRate < 0 || c.FailureRate > 1 {
		return &ConfigError{Field: "failure_rate", Reason: fmt.Sprintf("must be in [0, 1], got %g", c.FailureRate)}
	}
	if math.IsNaN(c.BaseLatencyMS) || c.BaseLatencyMS <= 0 {
		return &ConfigError{Field: "base_latency_ms", Reason: fmt.Sprintf("must be > 0, got %g", c.BaseLatencyMS)}
	}
	if c.ReplicationFactor < 1 {
		return &ConfigError{Field: "replication_factor", Reason: fmt.Sprintf("must be >= 1, got %d", c.ReplicationFactor)}
	}
	return nil
}
