// Package sample generates single-replicate outcomes for the voting
// network model. Latency decomposes into network transit, trusted
// enclave, signature verification, and Merkle proof terms, each drawn
// with uniform jitter around its closed-form mean. Delivery success
// follows the replicated submission model, and tamper detection is
// evaluated under attack conditions only.
package sample

import (
	"fmt"
	"math/rand/v2"
)

// Outcome is the result of one simulated vote submission.
type Outcome struct {
	// LatencyMS is the end-to-end submission latency in milliseconds.
	LatencyMS float64

	// Succeeded reports whether at least one replica of the vote reached
	// a tally node.
	Succeeded bool

	// TamperDetected reports whether an injected vote mismatch was caught.
	// Only meaningful when the configuration has DoSActive; always false
	// otherwise.
	TamperDetected bool
}

// Generator draws outcomes from the closed-form model. The generator is
// stateless: all randomness comes from the *rand.Rand passed to Generate,
// so callers control reproducibility by controlling the stream.
type Generator struct {
	model Model
}

// NewGenerator creates a generator for the given model.
func NewGenerator(model Model) (*Generator, error) {
	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("creating generator: %w", err)
	}
	return &Generator{model: model}, nil
}

// Model returns the model the generator draws from.
func (g *Generator) Model() Model {
	return g.model
}

// Generate draws one outcome for cfg from rng.
//
// The variate order is fixed: one jitter draw per latency term (network,
// enclave, verification, Merkle), then one availability draw per replica,
// then one tamper draw when DoS is active. Every draw is consumed
// regardless of intermediate results, so a given (stream, config) pair
// always yields the same outcome sequence.
func (g *Generator) Generate(cfg Config, rng *rand.Rand) (Outcome, error) {
	if err := cfg.Validate(); err != nil {
		return Outcome{}, err
	}
	m := g.model

	// Step 1: draw each latency term around its closed-form mean.
	latency := jitter(m.networkMeanMS(cfg), m.JitterFrac, rng)
	latency += jitter(m.EnclaveMeanMS, m.JitterFrac, rng)
	latency += jitter(m.VerificationMeanMS, m.JitterFrac, rng)
	latency += jitter(m.merkleMeanMS(cfg), m.JitterFrac, rng)

	// Step 2: draw availability for each replica. The submission succeeds
	// if any replica gets through.
	ef := m.effectiveFailureRate(cfg)
	succeeded := false
	for i := 0; i < cfg.ReplicationFactor; i++ {
		if rng.Float64() >= ef {
			succeeded = true
		}
	}

	// Step 3: tamper detection, evaluated under attack only.
	tamperDetected := false
	if cfg.DoSActive {
		tamperDetected = rng.Float64() < m.TamperDetectionRate
	}

	return Outcome{
		LatencyMS:      latency,
		Succeeded:      succeeded,
		TamperDetected: tamperDetected,
	}, nil
}

// jitter draws uniformly from [mean*(1-frac), mean*(1+frac)]. The draw
// preserves the term mean exactly and always consumes one variate, so
// the stream layout does not depend on the jitter setting.
func jitter(mean, frac float64, rng *rand.Rand) float64 {
	u := rng.Float64()
	return mean * (1 + frac*(2*u-1))
}
