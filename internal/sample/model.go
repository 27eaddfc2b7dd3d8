package sample

import (
	"fmt"
	"math"
)

// Model holds the tunable constants of the closed-form latency and
// reliability model. Latency fields are mean milliseconds; rate fields
// are probabilities.
type Model struct {
	// EnclaveMeanMS is the mean cost of trusted-enclave attestation and
	// vote sealing. Default: 4.0.
	EnclaveMeanMS float64

	// VerificationMeanMS is the mean cost of signature and authenticity
	// verification at the tally node. Default: 3.0.
	VerificationMeanMS float64

	// MerkleCoefMS scales the Merkle proof verification cost, which grows
	// with log2 of the voter count. Default: 1.2.
	MerkleCoefMS float64

	// DoSCongestionSurcharge is the fractional increase in network transit
	// latency under a flood at replication factor 1. Default: 0.8.
	DoSCongestionSurcharge float64

	// DoSReplicationDamping shrinks the congestion surcharge for each
	// replica beyond the first, as replication spreads submissions across
	// more network paths. Default: 0.1.
	DoSReplicationDamping float64

	// DoSExtraDropRate is the independent per-submission drop probability
	// the flood adds on top of the baseline failure rate. Default: 0.10.
	DoSExtraDropRate float64

	// TamperDetectionRate is the probability that a vote mismatch injected
	// during an attack is caught by the consistency checks. Default: 0.98.
	TamperDetectionRate float64

	// JitterFrac is the half-width of the uniform jitter applied to each
	// latency term, as a fraction of the term's mean. Zero disables jitter.
	// Must be in [0, 1) so every term stays non-negative. Default: 0.15.
	JitterFrac float64
}

// DefaultModel returns the calibrated default model.
func DefaultModel() Model {
	return Model{
		EnclaveMeanMS:          4.0,
		VerificationMeanMS:     3.0,
		MerkleCoefMS:           1.2,
		DoSCongestionSurcharge: 0.8,
		DoSReplicationDamping:  0.1,
		DoSExtraDropRate:       0.10,
		TamperDetectionRate:    0.98,
		JitterFrac:             0.15,
	}
}

// Validate checks every model constant against its domain and returns a
// *ConfigError for the first violation.
func (m Model) Validate() error {
	means := []struct {
		field string
		value float64
	}{
		{"enclave_mean_ms", m.EnclaveMeanMS},
		{"verification_mean_ms", m.VerificationMeanMS},
		{"merkle_coef_ms", m.MerkleCoefMS},
		{"dos_congestion_surcharge", m.DoSCongestionSurcharge},
		{"dos_replication_damping", m.DoSReplicationDamping},
	}
	for _, f := range means {
		if math.IsNaN(f.value) || f.value < 0 {
			return &ConfigError{Field: f.field, Reason: fmt.Sprintf("must be >= 0, got %g", f.value)}
		}
	}

	rates := []struct {
		field string
		value float64
	}{
		{"dos_extra_drop_rate", m.DoSExtraDropRate},
		{"tamper_detection_rate", m.TamperDetectionRate},
	}
	for _, f := range rates {
		if math.IsNaN(f.value) || f.value < 0 || f.value > 1 {
			return &ConfigError{Field: f.field, Reason: fmt.Sprintf("must be in [0, 1], got %g", f.value)}
		}
	}

	if math.IsNaN(m.JitterFrac) || m.JitterFrac < 0 || m.JitterFrac >= 1 {
		return &ConfigError{Field: "jitter_frac", Reason: fmt.Sprintf("must be in [0, 1), got %g", m.JitterFrac)}
	}
	return nil
}

// ExpectedLatencyMS returns the closed-form mean end-to-end latency for
// cfg: network transit plus the enclave, verification, and Merkle proof
// terms. Sampled latencies jitter around this value and average to it.
func (m Model) ExpectedLatencyMS(cfg Config) float64 {
	return m.networkMeanMS(cfg) + m.EnclaveMeanMS + m.VerificationMeanMS + m.merkleMeanMS(cfg)
}

// SuccessProbability returns the probability that at least one replica
// of a vote reaches a tally node: 1 - ef^r, where ef is the effective
// per-replica failure rate and r the replication factor.
func (m Model) SuccessProbability(cfg Config) float64 {
	ef := m.effectiveFailureRate(cfg)
	return 1 - math.Pow(ef, float64(cfg.ReplicationFactor))
}

// networkMeanMS returns the mean network transit latency. Under DoS the
// base latency carries a congestion surcharge that decays as replication
// spreads submissions across more paths.
func (m Model) networkMeanMS(cfg Config) float64 {
	if !cfg.DoSActive {
		return cfg.BaseLatencyMS
	}
	damp := 1 + m.DoSReplicationDamping*float64(cfg.ReplicationFactor-1)
	return cfg.BaseLatencyMS * (1 + m.DoSCongestionSurcharge/damp)
}

// merkleMeanMS returns the mean Merkle proof verification latency.
// A single-voter tree is a bare root and verifies for free.
func (m Model) merkleMeanMS(cfg Config) float64 {
	return m.MerkleCoefMS * math.Log2(float64(cfg.VoterCount))
}

// effectiveFailureRate composes the baseline loss rate with the DoS drop
// source. The two sources are independent, so survival probabilities
// multiply.
func (m Model) effectiveFailureRate(cfg Config) float64 {
	if !cfg.DoSActive {
		return cfg.FailureRate
	}
	return 1 - (1-cfg.FailureRate)*(1-m.DoSExtraDropRate)
}
