package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/attsim/internal/control"
	"github.com/san-kum/attsim/internal/dynamo"
	"github.com/san-kum/attsim/internal/netinput"
	"github.com/san-kum/attsim/internal/observability"
	"github.com/san-kum/attsim/internal/physics"
	"github.com/san-kum/attsim/internal/scenario"
	"github.com/san-kum/attsim/internal/sim"
)

const (
	DefaultFrameDt  = 1.0 / 60
	DefaultDuration = 10.0
	DefaultSeed     = 1
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Mode         dynamo.ControlMode `yaml:"mode"`
	Scenario     scenario.Kind      `yaml:"scenario"`
	Command      dynamo.AxisCommand `yaml:"command"`
	FrameDt      float64            `yaml:"frame_dt"`
	Duration     float64            `yaml:"duration"`
	Jitter       float64            `yaml:"jitter"`
	Seed         int64              `yaml:"seed"`
	InitAttitude AttitudeConfig     `yaml:"init_attitude"`
	Physics      PhysicsConfig      `yaml:"physics"`
	Network      NetworkConfig      `yaml:"network"`
	Log          LogConfig          `yaml:"log"`
	Metrics      MetricsConfig      `yaml:"metrics"`
	Tracing      TracingConfig      `yaml:"tracing"`
	API          APIConfig          `yaml:"api"`
}

// AttitudeConfig is an attitude in degrees.
type AttitudeConfig struct {
	Roll  float64 `yaml:"roll"`
	Pitch float64 `yaml:"pitch"`
	Yaw   float64 `yaml:"yaw"`
}

type PhysicsConfig struct {
	Timestep      float64       `yaml:"timestep"`
	Inertia       InertiaConfig `yaml:"inertia"`
	LowTorque     float64       `yaml:"low_torque"`
	HighTorque    float64       `yaml:"high_torque"`
	LowThreshold  float64       `yaml:"low_threshold"`
	HighThreshold float64       `yaml:"high_threshold"`
	Damping       float64       `yaml:"damping"`
	DampingFloor  float64       `yaml:"damping_floor"`
	RateGain      float64       `yaml:"rate_gain"`
	RateLimit     float64       `yaml:"rate_limit"`
}

type InertiaConfig struct {
	Ixx float64 `yaml:"ixx"`
	Iyy float64 `yaml:"iyy"`
	Izz float64 `yaml:"izz"`
}

type NetworkConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Addr      string  `yaml:"addr"`
	Tolerance float64 `yaml:"tolerance"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

// TracingConfig selects an OpenTelemetry exporter for headless runs.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Exporter    string  `yaml:"exporter"`
	Endpoint    string  `yaml:"endpoint"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// APIConfig enables the HTTP/WebSocket telemetry and command API of the
// live view.
type APIConfig struct {
	Addr string `yaml:"addr"`
	// StreamInterval is the telemetry push period in seconds.
	StreamInterval float64 `yaml:"stream_interval"`
}

type MetricsConfig struct {
	// Addr serves /metrics when set, e.g. ":9100".
	Addr string `yaml:"addr"`
}

func DefaultConfig() *Config {
	th := control.DefaultThruster()
	return &Config{
		Mode:     dynamo.Manual,
		Scenario: scenario.None,
		FrameDt:  DefaultFrameDt,
		Duration: DefaultDuration,
		Seed:     DefaultSeed,
		Physics: PhysicsConfig{
			Timestep: physics.DefaultTimestep,
			Inertia: InertiaConfig{
				Ixx: physics.DefaultIxx,
				Iyy: physics.DefaultIyy,
				Izz: physics.DefaultIzz,
			},
			LowTorque:     th.LowTorque,
			HighTorque:    th.HighTorque,
			LowThreshold:  th.LowThreshold,
			HighThreshold: th.HighThreshold,
			Damping:       physics.DefaultDamping,
			DampingFloor:  physics.DefaultDampingFloor,
			RateGain:      control.DefaultRateGain,
			RateLimit:     control.DefaultRateLimit,
		},
		Network: NetworkConfig{
			Addr:      fmt.Sprintf(":%d", netinput.DefaultPort),
			Tolerance: netinput.Tolerance,
		},
		Log:     LogConfig{Level: "info"},
		Tracing: TracingConfig{Exporter: "stdout", SampleRatio: 1},
		API:     APIConfig{StreamInterval: 0.1},
	}
}

// Load reads path over the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := LoadInto(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto overlays the fields present in path onto cfg.
func LoadInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the physical tunables and run settings.
func (c *Config) Validate() error {
	p := c.Physics
	switch {
	case !(p.Timestep > 0):
		return fmt.Errorf("%w: timestep must be positive, got %g", ErrInvalid, p.Timestep)
	case !(p.Inertia.Ixx > 0 && p.Inertia.Iyy > 0 && p.Inertia.Izz > 0):
		return fmt.Errorf("%w: inertia must be positive, got %+v", ErrInvalid, p.Inertia)
	case !(p.LowThreshold >= 0 && p.LowThreshold < p.HighThreshold):
		return fmt.Errorf("%w: thresholds need 0 <= low < high, got %g/%g", ErrInvalid, p.LowThreshold, p.HighThreshold)
	case p.LowTorque < 0 || p.HighTorque < 0:
		return fmt.Errorf("%w: thruster torque must not be negative", ErrInvalid)
	case !(p.Damping > 0 && p.Damping <= 1):
		return fmt.Errorf("%w: damping must be in (0,1], got %g", ErrInvalid, p.Damping)
	case p.DampingFloor < 0:
		return fmt.Errorf("%w: damping floor must not be negative", ErrInvalid)
	case !(p.RateLimit > 0):
		return fmt.Errorf("%w: rate limit must be positive, got %g", ErrInvalid, p.RateLimit)
	case !(c.FrameDt > 0):
		return fmt.Errorf("%w: frame_dt must be positive, got %g", ErrInvalid, c.FrameDt)
	case !(c.Duration > 0):
		return fmt.Errorf("%w: duration must be positive, got %g", ErrInvalid, c.Duration)
	case c.Jitter < 0 || c.Jitter >= 1:
		return fmt.Errorf("%w: jitter must be in [0,1), got %g", ErrInvalid, c.Jitter)
	case !(c.Network.Tolerance > 0):
		return fmt.Errorf("%w: network tolerance must be positive", ErrInvalid)
	case c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1:
		return fmt.Errorf("%w: tracing sample_ratio must be in [0,1], got %g", ErrInvalid, c.Tracing.SampleRatio)
	case !(c.API.StreamInterval > 0):
		return fmt.Errorf("%w: api stream_interval must be positive, got %g", ErrInvalid, c.API.StreamInterval)
	}
	return nil
}

// Params converts the physics section to model constants.
func (c *Config) Params() physics.Params {
	p := c.Physics
	return physics.Params{
		Inertia:      dynamo.Vec3{X: p.Inertia.Ixx, Y: p.Inertia.Iyy, Z: p.Inertia.Izz},
		Damping:      p.Damping,
		DampingFloor: p.DampingFloor,
		Thruster: control.Thruster{
			LowTorque:     p.LowTorque,
			HighTorque:    p.HighTorque,
			LowThreshold:  p.LowThreshold,
			HighThreshold: p.HighThreshold,
		},
		RateGain: p.RateGain,
	}
}

// NewSession builds a session in the configured mode, scenario and initial
// attitude, with the configured command applied.
func (c *Config) NewSession() *sim.Session {
	gen := scenario.NewGenerator(scenario.NewRandNoise(c.Seed))
	s := sim.NewSession(sim.Options{
		Params:    c.Params(),
		Scenario:  gen,
		Timestep:  c.Physics.Timestep,
		RateLimit: c.Physics.RateLimit,
		Mode:      c.Mode,
		InitAttitude: dynamo.Vec3{
			X: c.InitAttitude.Roll,
			Y: c.InitAttitude.Pitch,
			Z: c.InitAttitude.Yaw,
		},
	})
	s.SetScenario(c.Scenario)
	s.SetCommand(c.Command)
	return s
}

func (c *Config) RunConfig() sim.RunConfig {
	return sim.RunConfig{
		FrameDt:  c.FrameDt,
		Duration: c.Duration,
		Jitter:   c.Jitter,
		Seed:     c.Seed,
	}
}

// TracingOptions converts the tracing section for observability.InitTracing.
func (c *Config) TracingOptions() observability.TracingConfig {
	return observability.TracingConfig{
		Enabled:     c.Tracing.Enabled,
		ServiceName: "attsim",
		Exporter:    c.Tracing.Exporter,
		Endpoint:    c.Tracing.Endpoint,
		SampleRatio: c.Tracing.SampleRatio,
	}
}
