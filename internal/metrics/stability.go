package metrics

import (
	"math"

	"github.com/san-kum/attsim/internal/sim"
)

// DefaultStableRate is the body rate in deg/s above which a step counts as
// unstable.
const DefaultStableRate = 5.0

// Stability is the fraction of steps where every body rate stays within
// the threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(smp sim.Sample) {
	s.samples++
	a := smp.Attitude
	for _, r := range [3]float64{a.RollRate, a.PitchRate, a.YawRate} {
		if math.Abs(r) > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// Standard returns the metrics attached to every headless run.
func Standard() []sim.Metric {
	return []sim.Metric{
		NewEnergy(),
		NewPeakRate(),
		NewControlEffort(),
		NewStability(DefaultStableRate),
	}
}
