package sim

import (
	"context"
	"fmt"
	"math"
	"math/rand"
)

// Run advances s frame by frame for cfg.Duration seconds of frame time and
// records one Sample per frame, starting with the initial state. On
// context cancellation the partial result is returned with ctx.Err().
func Run(ctx context.Context, s *Session, cfg RunConfig) (*Result, error) {
	return run(ctx, s, cfg, nil)
}

// RunWithCallback is Run with a hook called before every frame with the
// frame time elapsed so far. Returning false ends the run early.
func RunWithCallback(ctx context.Context, s *Session, cfg RunConfig, callback func(elapsed float64, s *Session) bool) (*Result, error) {
	return run(ctx, s, cfg, callback)
}

func run(ctx context.Context, s *Session, cfg RunConfig, callback func(float64, *Session) bool) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	est := int(cfg.Duration/cfg.FrameDt) + 2
	result := &Result{
		Samples: make([]Sample, 0, est),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	var rng *rand.Rand
	if cfg.Jitter > 0 {
		rng = rand.New(rand.NewSource(cfg.Seed))
	}

	result.Samples = append(result.Samples, s.Sample())

	elapsed := 0.0
	for elapsed < cfg.Duration-1e-9 {
		select {
		case <-ctx.Done():
			collectMetrics(s, result)
			return result, ctx.Err()
		default:
		}

		if callback != nil && !callback(elapsed, s) {
			break
		}

		dt := cfg.FrameDt
		if rng != nil {
			dt *= 1 + cfg.Jitter*(2*rng.Float64()-1)
		}

		result.Steps += s.Advance(dt)
		elapsed += dt
		result.Frames++

		smp := s.Sample()
		if !smp.Attitude.IsValid() {
			result.Errors = append(result.Errors, SimError{
				Time:    smp.Time,
				Step:    smp.Step,
				Message: "invalid attitude (NaN/Inf)",
			})
			break
		}
		result.Samples = append(result.Samples, smp)
	}

	collectMetrics(s, result)
	return result, nil
}

func collectMetrics(s *Session, r *Result) {
	for _, m := range s.metrics {
		r.Metrics[m.Name()] = m.Value()
	}
}

func validateConfig(cfg RunConfig) error {
	if !(cfg.FrameDt > 0) || math.IsInf(cfg.FrameDt, 0) {
		return fmt.Errorf("frame dt must be positive, got %f", cfg.FrameDt)
	}
	if !(cfg.Duration > 0) || math.IsInf(cfg.Duration, 0) {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if cfg.Jitter < 0 || cfg.Jitter >= 1 {
		return fmt.Errorf("jitter must be in [0, 1), got %f", cfg.Jitter)
	}
	return nil
}
