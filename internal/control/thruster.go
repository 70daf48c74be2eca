package control

import "math"

const (
	DefaultLowTorque     = 5.0
	DefaultHighTorque    = 15.0
	DefaultLowThreshold  = 25.0
	DefaultHighThreshold = 75.0
)

// ThrustLevel is the discrete relay output.
type ThrustLevel int

const (
	ThrustOff ThrustLevel = iota
	ThrustLow
	ThrustHigh
)

func (l ThrustLevel) String() string {
	switch l {
	case ThrustLow:
		return "LOW Thrust"
	case ThrustHigh:
		return "HIGH Thrust"
	default:
		return "No Thrust"
	}
}

// Thruster models an on/off reaction-control jet pair for one axis.
type Thruster struct {
	LowTorque     float64 // N·m
	HighTorque    float64 // N·m
	LowThreshold  float64
	HighThreshold float64
}

func DefaultThruster() Thruster {
	return Thruster{
		LowTorque:     DefaultLowTorque,
		HighTorque:    DefaultHighTorque,
		LowThreshold:  DefaultLowThreshold,
		HighThreshold: DefaultHighThreshold,
	}
}

// Level classifies a command: |cmd| < low is off, low <= |cmd| < high is
// low thrust, anything else is high thrust.
func (th Thruster) Level(cmd float32) ThrustLevel {
	abs := math.Abs(float64(cmd))
	switch {
	case abs < th.LowThreshold:
		return ThrustOff
	case abs < th.HighThreshold:
		return ThrustLow
	default:
		return ThrustHigh
	}
}

// Torque returns the signed relay torque for cmd.
func (th Thruster) Torque(cmd float32) float64 {
	sign := -1.0
	if cmd > 0 {
		sign = 1.0
	}
	switch th.Level(cmd) {
	case ThrustLow:
		return th.LowTorque * sign
	case ThrustHigh:
		return th.HighTorque * sign
	default:
		return 0
	}
}

// ThrustTorque applies the default thruster to cmd.
func ThrustTorque(cmd float32) float64 {
	return DefaultThruster().Torque(cmd)
}
