package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/attsim/internal/control"
	"github.com/san-kum/attsim/internal/dynamo"
)

const (
	DefaultTimestep     = 0.01 // s, 100 Hz
	DefaultIxx          = 1000.0
	DefaultIyy          = 1200.0
	DefaultIzz          = 800.0
	DefaultDamping      = 0.98
	DefaultDampingFloor = 0.1 // N·m
)

// Params holds the tunable constants of the rigid-body model.
type Params struct {
	Inertia      dynamo.Vec3 // principal moments Ixx, Iyy, Izz in kg·m²
	Damping      float64     // per-step rate factor on uncommanded axes
	DampingFloor float64     // |control torque| below this counts as uncommanded
	Thruster     control.Thruster
	RateGain     float64
}

func DefaultParams() Params {
	return Params{
		Inertia:      dynamo.Vec3{X: DefaultIxx, Y: DefaultIyy, Z: DefaultIzz},
		Damping:      DefaultDamping,
		DampingFloor: DefaultDampingFloor,
		Thruster:     control.DefaultThruster(),
		RateGain:     control.DefaultRateGain,
	}
}

// Spacecraft integrates rigid-body rotation with Euler's equations.
// Angular velocity is kept in deg/s, torques in N·m.
type Spacecraft struct {
	params Params

	Orientation       dynamo.Quaternion
	AngularVelocity   dynamo.Vec3
	ControlTorque     dynamo.Vec3
	DisturbanceTorque dynamo.Vec3

	fbw  *control.FlyByWire
	rate *control.RateCommand
}

func NewSpacecraft(p Params) *Spacecraft {
	s := &Spacecraft{
		params: p,
		fbw:    control.NewFlyByWire(p.Thruster),
		rate:   control.NewRateCommand(p.RateGain),
	}
	s.Reset()
	return s
}

// Params returns the active model constants.
func (s *Spacecraft) Params() Params { return s.params }

// Update advances the state by dt seconds.
func (s *Spacecraft) Update(dt float64) {
	inertia := s.params.Inertia
	omega := s.AngularVelocity.Radians()

	gyroscopic := omega.Cross(inertia.Mul(omega))
	total := s.ControlTorque.Add(s.DisturbanceTorque).Sub(gyroscopic)
	accel := total.Div(inertia).Degrees()

	w := s.AngularVelocity.Add(accel.Scale(dt))

	if math.Abs(s.ControlTorque.X) < s.params.DampingFloor {
		w.X *= s.params.Damping
	}
	if math.Abs(s.ControlTorque.Y) < s.params.DampingFloor {
		w.Y *= s.params.Damping
	}
	if math.Abs(s.ControlTorque.Z) < s.params.DampingFloor {
		w.Z *= s.params.Damping
	}
	s.AngularVelocity = w

	s.Orientation.Integrate(w.X, w.Y, w.Z, dt)
}

// SetThrusterCommands sets the control torque from cmd, through the
// thruster relay when flyByWire is set and the linear rate gain otherwise.
func (s *Spacecraft) SetThrusterCommands(cmd dynamo.AxisCommand, flyByWire bool) {
	if flyByWire {
		s.ControlTorque = s.fbw.Torque(cmd)
		return
	}
	s.ControlTorque = s.rate.Torque(cmd)
}

// SetRates forces the body rates and integrates orientation directly,
// with no torque model. Used for manual control.
func (s *Spacecraft) SetRates(rates dynamo.Vec3, dt float64) {
	s.AngularVelocity = rates
	s.Orientation.Integrate(rates.X, rates.Y, rates.Z, dt)
}

// EulerAngles returns the display angles of the current orientation.
func (s *Spacecraft) EulerAngles() (roll, pitch, yaw float64) {
	return s.Orientation.EulerAngles()
}

// Reset returns to identity orientation with zero rates and torques.
func (s *Spacecraft) Reset() {
	s.Orientation = dynamo.Identity()
	s.AngularVelocity = dynamo.Vec3{}
	s.ControlTorque = dynamo.Vec3{}
	s.DisturbanceTorque = dynamo.Vec3{}
}

// Energy returns the rotational kinetic energy in joules.
func (s *Spacecraft) Energy() float64 {
	omega := s.AngularVelocity.Radians()
	return 0.5 * omega.Dot(s.params.Inertia.Mul(omega))
}

// Momentum returns the body angular momentum I·ω in N·m·s.
func (s *Spacecraft) Momentum() dynamo.Vec3 {
	return s.params.Inertia.Mul(s.AngularVelocity.Radians())
}

func (s *Spacecraft) GetParams() map[string]float64 {
	return map[string]float64{
		"Ixx":      s.params.Inertia.X,
		"Iyy":      s.params.Inertia.Y,
		"Izz":      s.params.Inertia.Z,
		"damping":  s.params.Damping,
		"rateGain": s.params.RateGain,
		"lowThr":   s.params.Thruster.LowTorque,
		"highThr":  s.params.Thruster.HighTorque,
	}
}

// SetParam adjusts a model constant. Inertia must stay positive and damping
// in (0, 1].
func (s *Spacecraft) SetParam(n string, v float64) error {
	switch n {
	case "Ixx", "Iyy", "Izz":
		if v <= 0 {
			return fmt.Errorf("%s must be positive, got %f", n, v)
		}
		switch n {
		case "Ixx":
			s.params.Inertia.X = v
		case "Iyy":
			s.params.Inertia.Y = v
		default:
			s.params.Inertia.Z = v
		}
	case "damping":
		if v <= 0 || v > 1 {
			return fmt.Errorf("damping must be in (0,1], got %f", v)
		}
		s.params.Damping = v
	case "rateGain":
		s.params.RateGain = v
		s.rate.Gain = v
	case "lowThr":
		s.params.Thruster.LowTorque = v
		s.fbw.Thruster.LowTorque = v
	case "highThr":
		s.params.Thruster.HighTorque = v
		s.fbw.Thruster.HighTorque = v
	default:
		return fmt.Errorf("unknown parameter: %s", n)
	}
	return nil
}
