// Package config provides unified configuration loading for votesim.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/electionlab/votesim/internal/sample"
	"github.com/electionlab/votesim/internal/stats"
	"github.com/electionlab/votesim/internal/sweep"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the config file Load looks for in the working
// directory.
const DefaultConfigFile = "votesim.yaml"

// SimConfig contains all votesim configuration settings.
type SimConfig struct {
	// Axes defines the parameter grid evaluated by a sweep.
	Axes AxesConfig `json:"axes" yaml:"axes"`

	// Replicates is the number of outcomes drawn per grid configuration.
	// Must be at least 2 so confidence intervals are defined.
	Replicates int `json:"replicates" yaml:"replicates"`

	// Seed is the global sweep seed. Each grid configuration derives its
	// own random stream from it, so runs are reproducible.
	Seed uint64 `json:"seed" yaml:"seed"`

	// Workers caps concurrent configuration evaluation.
	// Zero or one evaluates sequentially.
	Workers int `json:"workers" yaml:"workers"`

	// OnInvalid selects handling of grid configurations that fail
	// validation: "abort" (default) or "skip".
	OnInvalid string `json:"on_invalid" yaml:"on_invalid"`

	// Model overrides the calibrated latency model constants.
	Model ModelConfig `json:"model" yaml:"model"`

	// Output selects the result sink for sweep rows.
	Output OutputConfig `json:"output" yaml:"output"`

	// Logging contains settings for operational and trace logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// AxesConfig lists the values swept along each grid axis.
type AxesConfig struct {
	// VoterCounts are the electorate sizes to evaluate.
	VoterCounts []int `json:"voter_counts" yaml:"voter_counts"`

	// FailureRates are the per-path delivery failure probabilities.
	FailureRates []float64 `json:"failure_rates" yaml:"failure_rates"`

	// BaseLatenciesMS are the uncongested network latencies in milliseconds.
	BaseLatenciesMS []float64 `json:"base_latencies_ms" yaml:"base_latencies_ms"`

	// DoSModes are the attack settings to evaluate (false = calm network).
	DoSModes []bool `json:"dos_modes" yaml:"dos_modes"`

	// ReplicationFactors are the redundant submission path counts.
	ReplicationFactors []int `json:"replication_factors" yaml:"replication_factors"`
}

// ToAxes converts the config shape to a sweep grid.
func (a AxesConfig) ToAxes() sweep.Axes {
	return sweep.Axes{
		VoterCounts:        a.VoterCounts,
		FailureRates:       a.FailureRates,
		BaseLatenciesMS:    a.BaseLatenciesMS,
		DoSModes:           a.DoSModes,
		ReplicationFactors: a.ReplicationFactors,
	}
}

// ModelConfig mirrors the latency model constants for YAML loading.
// Default() populates every field with the calibrated value, so a config
// file may override any subset and leave the rest untouched.
type ModelConfig struct {
	// EnclaveMeanMS is the mean secure-enclave processing time.
	EnclaveMeanMS float64 `json:"enclave_mean_ms" yaml:"enclave_mean_ms"`

	// VerificationMeanMS is the mean signature verification time.
	VerificationMeanMS float64 `json:"verification_mean_ms" yaml:"verification_mean_ms"`

	// MerkleCoefMS scales the log2(voter count) Merkle proof term.
	MerkleCoefMS float64 `json:"merkle_coef_ms" yaml:"merkle_coef_ms"`

	// DoSCongestionSurcharge is the fractional latency surcharge under attack.
	DoSCongestionSurcharge float64 `json:"dos_congestion_surcharge" yaml:"dos_congestion_surcharge"`

	// DoSReplicationDamping discounts the surcharge per extra path.
	DoSReplicationDamping float64 `json:"dos_replication_damping" yaml:"dos_replication_damping"`

	// DoSExtraDropRate is the additional per-path drop probability under attack.
	DoSExtraDropRate float64 `json:"dos_extra_drop_rate" yaml:"dos_extra_drop_rate"`

	// TamperDetectionRate is the probability an injected mismatch is caught.
	TamperDetectionRate float64 `json:"tamper_detection_rate" yaml:"tamper_detection_rate"`

	// JitterFrac is the half-width of the uniform latency jitter.
	JitterFrac float64 `json:"jitter_frac" yaml:"jitter_frac"`
}

// ToModel converts the config shape to a latency model.
func (m ModelConfig) ToModel() sample.Model {
	return sample.Model{
		EnclaveMeanMS:          m.EnclaveMeanMS,
		VerificationMeanMS:     m.VerificationMeanMS,
		MerkleCoefMS:           m.MerkleCoefMS,
		DoSCongestionSurcharge: m.DoSCongestionSurcharge,
		DoSReplicationDamping:  m.DoSReplicationDamping,
		DoSExtraDropRate:       m.DoSExtraDropRate,
		TamperDetectionRate:    m.TamperDetectionRate,
		JitterFrac:             m.JitterFrac,
	}
}

// OutputConfig selects where sweep results land.
type OutputConfig struct {
	// Format is the sink type: "csv", "sqlite", or "table".
	Format string `json:"format" yaml:"format"`

	// Path is the destination file. Ignored for "table", which writes
	// to standard output.
	Path string `json:"path" yaml:"path"`
}

// LoggingConfig configures votesim's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables trace logging to TracePath.
	// "trace" additionally records every replicate outcome.
	Level string `json:"level" yaml:"level"`

	// TracePath is the JSONL trace destination.
	TracePath string `json:"trace_path" yaml:"trace_path"`
}

// Default returns a SimConfig with the original study's grid and the
// calibrated model constants.
func Default() *SimConfig {
	m := sample.DefaultModel()
	return &SimConfig{
		Axes: AxesConfig{
			VoterCounts:        []int{1000, 5000, 10000},
			FailureRates:       []float64{0.0, 0.10},
			BaseLatenciesMS:    []float64{5, 25},
			DoSModes:           []bool{false, true},
			ReplicationFactors: []int{1, 3},
		},
		Replicates: 10,
		Seed:       1,
		Workers:    1,
		OnInvalid:  string(sweep.PolicyAbort),
		Model: ModelConfig{
			EnclaveMeanMS:          m.EnclaveMeanMS,
			VerificationMeanMS:     m.VerificationMeanMS,
			MerkleCoefMS:           m.MerkleCoefMS,
			DoSCongestionSurcharge: m.DoSCongestionSurcharge,
			DoSReplicationDamping:  m.DoSReplicationDamping,
			DoSExtraDropRate:       m.DoSExtraDropRate,
			TamperDetectionRate:    m.TamperDetectionRate,
			JitterFrac:             m.JitterFrac,
		},
		Output: OutputConfig{
			Format: "csv",
			Path:   "results/sim_runs.csv",
		},
		Logging: LoggingConfig{
			Level:     "info",
			TracePath: ".votesim/trace.jsonl",
		},
	}
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> votesim.yaml in the working directory -> environment variables
func Load() (*SimConfig, error) {
	config := Default()

	if _, statErr := os.Stat(DefaultConfigFile); statErr == nil {
		fileConfig, loadErr := LoadFromFile(DefaultConfigFile)
		if loadErr != nil {
			return nil, fmt.Errorf("loading config file: %w", loadErr)
		}
		config = fileConfig
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadFrom loads configuration from path when non-empty, otherwise from
// the default locations. Environment overrides apply either way.
func LoadFrom(path string) (*SimConfig, error) {
	if path == "" {
		return Load()
	}

	config, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
// Fields absent from the file keep their defaults.
func LoadFromFile(path string) (*SimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return config, nil
}

// Validate checks that the configuration is valid.
func (c *SimConfig) Validate() error {
	if err := c.Axes.ToAxes().Validate(); err != nil {
		return err
	}

	if err := c.Model.ToModel().Validate(); err != nil {
		return err
	}

	if c.Replicates < stats.MinSamplesForCI {
		return &stats.InsufficientSamplesError{Got: c.Replicates, Min: stats.MinSamplesForCI}
	}

	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}

	if c.OnInvalid != "" && !sweep.Policy(c.OnInvalid).Valid() {
		return fmt.Errorf("invalid on_invalid policy: %s (valid: abort, skip, or empty for abort)", c.OnInvalid)
	}

	validFormats := map[string]bool{"": true, "csv": true, "sqlite": true, "table": true}
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("invalid output format: %s (valid: csv, sqlite, table, or empty for csv)", c.Output.Format)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// SweepOptions assembles sweep run options from the configuration.
// Loggers are left nil for the caller to attach.
func (c *SimConfig) SweepOptions() sweep.Options {
	return sweep.Options{
		Replicates: c.Replicates,
		Seed:       c.Seed,
		Model:      c.Model.ToModel(),
		OnInvalid:  sweep.Policy(c.OnInvalid),
		Workers:    c.Workers,
	}
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *SimConfig) {
	if v := os.Getenv("VOTESIM_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			config.Seed = n
		}
	}

	if v := os.Getenv("VOTESIM_REPLICATES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Replicates = n
		}
	}

	if v := os.Getenv("VOTESIM_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Workers = n
		}
	}

	if v := os.Getenv("VOTESIM_ON_INVALID"); v != "" {
		config.OnInvalid = v
	}

	if v := os.Getenv("VOTESIM_OUTPUT_FORMAT"); v != "" {
		config.Output.Format = v
	}

	if v := os.Getenv("VOTESIM_OUTPUT_PATH"); v != "" {
		config.Output.Path = v
	}

	if v := os.Getenv("VOTESIM_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}
