package metrics

import (
	"math"

	"github.com/san-kum/attsim/internal/sim"
)

// Energy reports the mean rotational kinetic energy over a run in joules.
type Energy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(s sim.Sample) {
	e.totalEnergy += s.Energy
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// PeakRate reports the largest body-rate magnitude seen, in deg/s.
type PeakRate struct {
	name string
	peak float64
}

func NewPeakRate() *PeakRate {
	return &PeakRate{name: "peak_rate"}
}

func (p *PeakRate) Name() string { return p.name }

func (p *PeakRate) Observe(s sim.Sample) {
	p.peak = math.Max(p.peak, s.Attitude.Rates().Norm())
}

func (p *PeakRate) Value() float64 { return p.peak }

func (p *PeakRate) Reset() { p.peak = 0 }
