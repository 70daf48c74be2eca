package sim

import (
	"math"

	"github.com/san-kum/attsim/internal/control"
	"github.com/san-kum/attsim/internal/dynamo"
	"github.com/san-kum/attsim/internal/physics"
	"github.com/san-kum/attsim/internal/scenario"
)

// Options configures a Session. Zero values fall back to the defaults of
// the physics and control packages.
type Options struct {
	Params    physics.Params
	Scenario  *scenario.Generator
	Timestep  float64
	RateLimit float64
	Mode      dynamo.ControlMode
	// InitAttitude is roll, pitch and yaw in degrees applied at creation.
	InitAttitude dynamo.Vec3
}

// Session owns one simulated spacecraft together with its control inputs,
// disturbance scenario and physics accumulator. It is not safe for
// concurrent use.
type Session struct {
	craft    *physics.Spacecraft
	gen      *scenario.Generator
	manual   *control.Manual
	timestep float64

	mode dynamo.ControlMode
	cmd  dynamo.AxisCommand
	acc  float64

	steps int
	time  float64

	observers      []Observer
	frameObservers []FrameObserver
	metrics        []Metric
}

func NewSession(opts Options) *Session {
	p := opts.Params
	if p.Inertia == (dynamo.Vec3{}) {
		p = physics.DefaultParams()
	}
	gen := opts.Scenario
	if gen == nil {
		gen = scenario.NewGenerator(nil)
	}
	dt := opts.Timestep
	if dt <= 0 {
		dt = physics.DefaultTimestep
	}
	limit := opts.RateLimit
	if limit <= 0 {
		limit = control.DefaultRateLimit
	}

	s := &Session{
		craft:    physics.NewSpacecraft(p),
		gen:      gen,
		manual:   control.NewManual(limit),
		timestep: dt,
		mode:     opts.Mode,
	}
	if a := opts.InitAttitude; a != (dynamo.Vec3{}) {
		s.craft.Orientation = dynamo.FromEuler(a.X, a.Y, a.Z)
	}
	return s
}

func (s *Session) AddObserver(o Observer) {
	s.observers = append(s.observers, o)
	if fo, ok := o.(FrameObserver); ok {
		s.frameObservers = append(s.frameObservers, fo)
	}
}

func (s *Session) AddMetric(m Metric) { s.metrics = append(s.metrics, m) }

// AddFrameObserver registers an observer that only cares about frames.
func (s *Session) AddFrameObserver(o FrameObserver) {
	s.frameObservers = append(s.frameObservers, o)
}

func (s *Session) Mode() dynamo.ControlMode { return s.mode }
func (s *Session) Command() dynamo.AxisCommand { return s.cmd }
func (s *Session) Scenario() scenario.Kind { return s.gen.Kind() }
func (s *Session) Timestep() float64 { return s.timestep }
func (s *Session) Steps() int { return s.steps }
func (s *Session) Time() float64 { return s.time }

// Accumulator is the simulated time not yet consumed by a physics step. It
// stays in [0, Timestep) between calls to Advance.
func (s *Session) Accumulator() float64 { return s.acc }

// Craft exposes the underlying rigid body for parameter tuning.
func (s *Session) Craft() *physics.Spacecraft { return s.craft }

// SetMode switches control mode and zeroes the pending command. Orientation
// and angular velocity carry over.
func (s *Session) SetMode(m dynamo.ControlMode) {
	s.mode = m
	s.cmd = dynamo.AxisCommand{}
	s.craft.ControlTorque = dynamo.Vec3{}
}

// SetCommand sets the input used for every following physics step.
func (s *Session) SetCommand(cmd dynamo.AxisCommand) { s.cmd = cmd }

// SetScenario switches the disturbance scenario and restarts its clock.
func (s *Session) SetScenario(k scenario.Kind) { s.gen.Set(k) }

// Advance adds dt seconds of frame time and drains the accumulator in
// fixed steps. It returns the number of physics steps taken. Non-positive
// or non-finite dt is ignored.
func (s *Session) Advance(dt float64) int {
	if !(dt > 0) || math.IsInf(dt, 0) {
		s.notifyFrame(0)
		return 0
	}

	s.craft.DisturbanceTorque = s.gen.Update(dt)

	s.acc += dt
	n := 0
	for s.acc >= s.timestep {
		s.step()
		s.acc -= s.timestep
		n++
	}
	s.notifyFrame(n)
	return n
}

func (s *Session) step() {
	if s.mode == dynamo.Manual {
		s.craft.SetRates(s.manual.Rates(s.cmd), s.timestep)
	} else {
		s.craft.SetThrusterCommands(s.cmd, s.mode == dynamo.FlyByWire)
		s.craft.Update(s.timestep)
	}
	s.steps++
	s.time += s.timestep

	if len(s.observers) == 0 && len(s.metrics) == 0 {
		return
	}
	smp := s.Sample()
	for _, m := range s.metrics {
		m.Observe(smp)
	}
	for _, o := range s.observers {
		o.OnStep(smp)
	}
}

func (s *Session) notifyFrame(n int) {
	for _, o := range s.frameObservers {
		o.OnFrame(n, s.acc)
	}
}

// Readout projects the current state to display angles and rates.
func (s *Session) Readout() dynamo.Attitude {
	roll, pitch, yaw := s.craft.EulerAngles()
	w := s.craft.AngularVelocity
	return dynamo.Attitude{
		Roll:      roll,
		Pitch:     pitch,
		Yaw:       yaw,
		RollRate:  w.X,
		PitchRate: w.Y,
		YawRate:   w.Z,
	}
}

// Sample captures the current state.
func (s *Session) Sample() Sample {
	return Sample{
		Step:          s.steps,
		Time:          s.time,
		Mode:          s.mode,
		Scenario:      s.gen.Kind(),
		Command:       s.cmd,
		Attitude:      s.Readout(),
		ControlTorque: s.craft.ControlTorque,
		Disturbance:   s.craft.DisturbanceTorque,
		Energy:        s.craft.Energy(),
	}
}

// Reset returns the spacecraft to identity at rest, clears the command and
// accumulator and restarts the scenario clock. Mode and scenario are kept.
func (s *Session) Reset() {
	s.craft.Reset()
	s.cmd = dynamo.AxisCommand{}
	s.acc = 0
	s.steps = 0
	s.time = 0
	s.gen.Set(s.gen.Kind())
	for _, m := range s.metrics {
		m.Reset()
	}
}
