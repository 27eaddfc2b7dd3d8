// Package sweep evaluates a grid of voting network configurations and
// reduces the replicate outcomes of each one to summary statistics.
// Every configuration draws from its own seeded stream, so a sweep is
// bit-for-bit reproducible and insensitive to evaluation order.
package sweep

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/electionlab/votesim/internal/logging"
	"github.com/electionlab/votesim/internal/sample"
	"github.com/electionlab/votesim/internal/stats"
)

// Options holds the run parameters shared by every configuration of a sweep.
type Options struct {
	// Replicates is the number of outcomes drawn per configuration.
	// Must be at least stats.MinSamplesForCI.
	Replicates int

	// Seed is the global sweep seed. Each configuration derives its own
	// stream from (Seed, grid index), so equal inputs reproduce equal
	// output and configurations never share variates.
	Seed uint64

	// Model supplies the closed-form constants. Use sample.DefaultModel
	// for the calibrated defaults; the zero Model is valid but degenerate.
	Model sample.Model

	// OnInvalid selects abort or skip handling for grid configurations
	// that fail validation. Empty defaults to PolicyAbort.
	OnInvalid Policy

	// Workers caps concurrent configuration evaluation. Values below 2
	// evaluate sequentially. Concurrency never changes the output: rows
	// keep grid order and per-configuration streams are independent.
	Workers int

	// Logger receives per-configuration progress at debug level and skip
	// warnings. Nil disables operational logging.
	Logger *slog.Logger

	// Trace receives one JSONL event per summarized or skipped
	// configuration. Nil disables tracing.
	Trace *logging.TraceLogger

	// TraceReplicates additionally emits one trace event per replicate
	// outcome. Noisy; intended for the "trace" log level.
	TraceReplicates bool
}

// Summary is one reduced row of sweep output.
type Summary struct {
	sample.Config

	// Replicates is the number of outcomes reduced into this row.
	Replicates int `json:"replicates"`

	// MeanLatencyMS is the sample mean end-to-end latency over all
	// replicates, delivered or not.
	MeanLatencyMS float64 `json:"mean_latency_ms"`

	// CI95HalfWidthMS is the half-width of the normal-approximation 95%
	// confidence interval around MeanLatencyMS.
	CI95HalfWidthMS float64 `json:"ci95_halfwidth_ms"`

	// P95LatencyMS is the nearest-rank 95th percentile latency.
	P95LatencyMS float64 `json:"p95_latency_ms"`

	// SuccessRate is the fraction of replicates whose vote reached at
	// least one tally node.
	SuccessRate float64 `json:"success_rate"`

	// TamperRate is the fraction of replicates whose injected mismatch
	// was caught. Only meaningful when TamperEvaluated is set.
	TamperRate float64 `json:"tamper_detection_rate,omitempty"`

	// TamperEvaluated is true when the configuration ran under DoS;
	// without an attack there is nothing to detect and TamperRate is
	// undefined.
	TamperEvaluated bool `json:"tamper_evaluated,omitempty"`
}

// Run evaluates every configuration of the axes grid with opts and
// returns one Summary per configuration, in grid enumeration order.
//
// Invalid grid configurations are handled per opts.OnInvalid: abort
// returns the underlying *sample.ConfigError before any sampling, skip
// drops the configuration and keeps its neighbors' streams unchanged
// (streams derive from grid index, not output position).
func Run(axes Axes, opts Options) ([]Summary, error) {
	if opts.Replicates < stats.MinSamplesForCI {
		return nil, &stats.InsufficientSamplesError{Got: opts.Replicates, Min: stats.MinSamplesForCI}
	}

	policy := opts.OnInvalid
	if policy == "" {
		policy = PolicyAbort
	}
	if !policy.Valid() {
		return nil, &sample.ConfigError{Field: "on_invalid", Reason: fmt.Sprintf("unknown policy %q", policy)}
	}

	if err := axes.Validate(); err != nil {
		return nil, fmt.Errorf("validating axes: %w", err)
	}

	gen, err := sample.NewGenerator(opts.Model)
	if err != nil {
		return nil, fmt.Errorf("validating model: %w", err)
	}

	configs := axes.Configs()

	// Step 1: validate the whole grid up front, so an abort fires before
	// any sampling and skip decisions are stable.
	include := make([]bool, len(configs))
	for i, cfg := range configs {
		err := cfg.Validate()
		if err == nil {
			include[i] = true
			continue
		}
		if policy == PolicyAbort {
			return nil, fmt.Errorf("grid configuration %d: %w", i, err)
		}
		if opts.Logger != nil {
			opts.Logger.Warn("skipping invalid grid configuration", "index", i, "error", err)
		}
		opts.Trace.Log(map[string]any{
			"event": "config_skipped",
			"index": i,
			"error": err.Error(),
		})
	}

	// Step 2: evaluate configurations into indexed slots. Each worker
	// writes only its own slot, so no result synchronization is needed
	// beyond the WaitGroup.
	results := make([]Summary, len(configs))

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(configs) {
		workers = len(configs)
	}

	if workers <= 1 {
		for i := range configs {
			if !include[i] {
				continue
			}
			s, err := evaluate(gen, configs[i], i, opts)
			if err != nil {
				return nil, err
			}
			results[i] = s
			record(opts, i, s)
		}
	} else {
		jobs := make(chan int)
		var wg sync.WaitGroup
		var mu sync.Mutex
		var firstErr error

		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					s, err := evaluate(gen, configs[i], i, opts)
					if err != nil {
						mu.Lock()
						if firstErr == nil {
							firstErr = err
						}
						mu.Unlock()
						continue
					}
					results[i] = s
					record(opts, i, s)
				}
			}()
		}

		for i := range configs {
			if include[i] {
				jobs <- i
			}
		}
		close(jobs)
		wg.Wait()

		if firstErr != nil {
			return nil, firstErr
		}
	}

	// Step 3: compact skipped slots, preserving grid order.
	out := make([]Summary, 0, len(configs))
	for i := range results {
		if include[i] {
			out = append(out, results[i])
		}
	}
	return out, nil
}

// evaluate draws opts.Replicates outcomes for one grid configuration
// from its derived stream and reduces them to a Summary.
func evaluate(gen *sample.Generator, cfg sample.Config, index int, opts Options) (Summary, error) {
	rng := rand.New(rand.NewPCG(opts.Seed, uint64(index)))

	var acc stats.Accumulator
	latencies := make([]float64, 0, opts.Replicates)
	succeeded := 0
	tampered := 0

	for i := 0; i < opts.Replicates; i++ {
		out, err := gen.Generate(cfg, rng)
		if err != nil {
			return Summary{}, fmt.Errorf("grid configuration %d, replicate %d: %w", index, i, err)
		}
		acc.Add(out.LatencyMS)
		latencies = append(latencies, out.LatencyMS)
		if out.Succeeded {
			succeeded++
		}
		if out.TamperDetected {
			tampered++
		}
		if opts.TraceReplicates {
			opts.Trace.Log(map[string]any{
				"event":           "replicate_drawn",
				"index":           index,
				"replicate":       i,
				"latency_ms":      out.LatencyMS,
				"succeeded":       out.Succeeded,
				"tamper_detected": out.TamperDetected,
			})
		}
	}

	halfWidth, err := acc.CI95HalfWidth()
	if err != nil {
		return Summary{}, fmt.Errorf("grid configuration %d: %w", index, err)
	}

	sort.Float64s(latencies)

	n := float64(opts.Replicates)
	s := Summary{
		Config:          cfg,
		Replicates:      opts.Replicates,
		MeanLatencyMS:   acc.Mean(),
		CI95HalfWidthMS: halfWidth,
		P95LatencyMS:    stats.Percentile(latencies, 0.95),
		SuccessRate:     float64(succeeded) / n,
	}
	if cfg.DoSActive {
		s.TamperRate = float64(tampered) / n
		s.TamperEvaluated = true
	}
	return s, nil
}

// record emits the per-configuration progress log and trace event.
func record(opts Options, index int, s Summary) {
	if opts.Logger != nil {
		opts.Logger.Debug("configuration summarized",
			"index", index,
			"voters", s.VoterCount,
			"failure_rate", s.FailureRate,
			"base_latency_ms", s.BaseLatencyMS,
			"dos", s.DoSActive,
			"replication", s.ReplicationFactor,
			"mean_latency_ms", s.MeanLatencyMS,
			"success_rate", s.SuccessRate,
		)
	}
	event := map[string]any{
		"event":              "config_summarized",
		"index":              index,
		"voter_count":        s.VoterCount,
		"failure_rate":       s.FailureRate,
		"base_latency_ms":    s.BaseLatencyMS,
		"dos_active":         s.DoSActive,
		"replication_factor": s.ReplicationFactor,
		"replicates":         s.Replicates,
		"mean_latency_ms":    s.MeanLatencyMS,
		"ci95_halfwidth_ms":  s.CI95HalfWidthMS,
		"p95_latency_ms":     s.P95LatencyMS,
		"success_rate":       s.SuccessRate,
	}
	if s.TamperEvaluated {
		event["tamper_detection_rate"] = s.TamperRate
	}
	opts.Trace.Log(event)
}
