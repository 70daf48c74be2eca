package sim

import (
	"fmt"

	"github.com/san-kum/attsim/internal/dynamo"
	"github.com/san-kum/attsim/internal/scenario"
)

// Sample is the session state after one physics step, or after one frame
// in a headless Result.
type Sample struct {
	Step          int                `json:"step"`
	Time          float64            `json:"time"`
	Mode          dynamo.ControlMode `json:"mode"`
	Scenario      scenario.Kind      `json:"scenario"`
	Command       dynamo.AxisCommand `json:"command"`
	Attitude      dynamo.Attitude    `json:"attitude"`
	ControlTorque dynamo.Vec3        `json:"control_torque"`
	Disturbance   dynamo.Vec3        `json:"disturbance"`
	Energy        float64            `json:"energy"`
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

// Observer is notified after every physics step.
type Observer interface {
	OnStep(s Sample)
}

// FrameObserver is notified once per Advance with the number of physics
// steps taken and the accumulator left over.
type FrameObserver interface {
	OnFrame(steps int, accumulator float64)
}

// RunConfig drives a headless run. FrameDt is the nominal frame interval;
// Jitter, when positive, perturbs each frame by up to ±Jitter·FrameDt using
// Seed.
type RunConfig struct {
	FrameDt  float64
	Duration float64
	Jitter   float64
	Seed     int64
}

func DefaultRunConfig() RunConfig {
	return RunConfig{
		FrameDt:  1.0 / 60,
		Duration: 10,
		Seed:     1,
	}
}

type Result struct {
	Samples []Sample
	Frames  int
	Steps   int
	Metrics map[string]float64
	Errors  []error
}

// Final returns the last recorded sample.
func (r *Result) Final() (Sample, bool) {
	if r == nil || len(r.Samples) == 0 {
		return Sample{}, false
	}
	return r.Samples[len(r.Samples)-1], true
}

type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}
