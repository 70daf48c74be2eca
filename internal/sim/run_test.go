package sim

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/attsim/internal/dynamo"
)

type stepCounter struct {
	count int
}

func (c *stepCounter) Name() string { return "steps" }
func (c *stepCounter) Observe(s Sample) { c.count++ }
func (c *stepCounter) Value() float64 { return float64(c.count) }
func (c *stepCounter) Reset() { c.count = 0 }

func TestRunFixedFrames(t *testing.T) {
	s := NewSession(Options{})
	s.SetMode(dynamo.FlyByWire)
	s.SetCommand(dynamo.AxisCommand{Roll: 100})

	m := &stepCounter{}
	s.AddMetric(m)

	result, err := Run(context.Background(), s, RunConfig{FrameDt: 0.01, Duration: 1})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.Frames != 100 {
		t.Errorf("expected 100 frames, got %d", result.Frames)
	}
	if result.Steps != 100 {
		t.Errorf("expected 100 steps, got %d", result.Steps)
	}
	if len(result.Samples) != 101 {
		t.Errorf("expected 101 samples, got %d", len(result.Samples))
	}
	if result.Metrics["steps"] != 100 {
		t.Errorf("expected metric 100, got %v", result.Metrics["steps"])
	}

	final, ok := result.Final()
	if !ok {
		t.Fatal("no final sample")
	}
	if math.Abs(final.Time-1) > 1e-9 {
		t.Errorf("expected final time 1, got %v", final.Time)
	}
	if final.Attitude.RollRate <= 0 {
		t.Errorf("expected positive roll rate, got %v", final.Attitude.RollRate)
	}
}

func TestRunJitterIsSeeded(t *testing.T) {
	cfg := RunConfig{FrameDt: 1.0 / 60, Duration: 2, Jitter: 0.5, Seed: 9}

	run := func() *Result {
		s := NewSession(Options{})
		s.SetMode(dynamo.RateCommand)
		s.SetCommand(dynamo.AxisCommand{Pitch: 30, Yaw: -10})
		r, err := Run(context.Background(), s, cfg)
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}
		return r
	}

	a, b := run(), run()
	if a.Steps != b.Steps || a.Frames != b.Frames {
		t.Fatalf("same seed gave %d/%d and %d/%d steps/frames", a.Steps, a.Frames, b.Steps, b.Frames)
	}
	fa, _ := a.Final()
	fb, _ := b.Final()
	if fa != fb {
		t.Errorf("final samples differ: %+v vs %+v", fa, fb)
	}

	// Steps track frame time regardless of jitter.
	if a.Steps < 195 || a.Steps > 205 {
		t.Errorf("expected about 200 steps, got %d", a.Steps)
	}
}

func TestRunInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  RunConfig
	}{
		{"zero dt", RunConfig{FrameDt: 0, Duration: 1}},
		{"negative dt", RunConfig{FrameDt: -0.1, Duration: 1}},
		{"NaN dt", RunConfig{FrameDt: math.NaN(), Duration: 1}},
		{"zero duration", RunConfig{FrameDt: 0.1, Duration: 0}},
		{"negative duration", RunConfig{FrameDt: 0.1, Duration: -1}},
		{"jitter too large", RunConfig{FrameDt: 0.1, Duration: 1, Jitter: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Run(context.Background(), NewSession(Options{}), tt.cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := Run(ctx, NewSession(Options{}), DefaultRunConfig())
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result == nil || len(result.Samples) != 1 {
		t.Error("expected partial result with the initial sample")
	}
}

func TestRunStopsOnInvalidAttitude(t *testing.T) {
	s := NewSession(Options{})
	s.SetMode(dynamo.RateCommand)
	s.Craft().AngularVelocity = dynamo.Vec3{X: math.NaN()}

	result, err := Run(context.Background(), s, RunConfig{FrameDt: 0.01, Duration: 1})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected one error, got %v", result.Errors)
	}
	if _, ok := result.Errors[0].(SimError); !ok {
		t.Errorf("expected SimError, got %T", result.Errors[0])
	}
	if result.Frames != 1 {
		t.Errorf("expected to stop after the first frame, got %d", result.Frames)
	}
}

func TestSimError(t *testing.T) {
	err := SimError{Time: 1.5, Step: 150, Message: "test error"}
	expected := "step 150 (t=1.5000): test error"
	if err.Error() != expected {
		t.Errorf("SimError.Error() = %q, want %q", err.Error(), expected)
	}
}

func TestDefaultRunConfig(t *testing.T) {
	if err := validateConfig(DefaultRunConfig()); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestRunWithCallback(t *testing.T) {
	s := NewSession(Options{})
	var seen []float64

	result, err := RunWithCallback(context.Background(), s, RunConfig{FrameDt: 0.1, Duration: 1}, func(elapsed float64, s *Session) bool {
		seen = append(seen, elapsed)
		if len(seen) == 3 {
			s.SetCommand(dynamo.AxisCommand{Roll: 10})
		}
		return len(seen) < 5
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.Frames != 4 {
		t.Errorf("expected 4 frames before stop, got %d", result.Frames)
	}
	if len(seen) != 5 || math.Abs(seen[4]-0.4) > 1e-9 {
		t.Errorf("unexpected callback times %v", seen)
	}
	final, _ := result.Final()
	if final.Command.Roll != 10 {
		t.Errorf("callback command not applied: %+v", final.Command)
	}
}
