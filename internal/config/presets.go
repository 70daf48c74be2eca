package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/attsim/internal/dynamo"
	"github.com/san-kum/attsim/internal/scenario"
)

// Preset is a named starting point applied before the config file and
// flags.
type Preset struct {
	Description  string
	Mode         dynamo.ControlMode
	Scenario     scenario.Kind
	Command      dynamo.AxisCommand
	Duration     float64
	InitAttitude AttitudeConfig
}

var Presets = map[string]Preset{
	"retrofire": {
		Description: "retro-rocket burn shaking all three axes, rate command",
		Mode:        dynamo.RateCommand, Scenario: scenario.Retrofire, Duration: 30,
	},
	"tumble": {
		Description: "violent random tumble under fly-by-wire",
		Mode:        dynamo.FlyByWire, Scenario: scenario.Tumble, Duration: 20,
	},
	"stuck-thruster": {
		Description: "roll thruster stuck on at 8 N·m",
		Mode:        dynamo.FlyByWire, Scenario: scenario.ThrusterStuck, Duration: 20,
	},
	"drift": {
		Description: "slow orbital drift from a pitched attitude",
		Mode:        dynamo.RateCommand, Scenario: scenario.OrbitalDrift, Duration: 60,
		InitAttitude: AttitudeConfig{Pitch: 10},
	},
	"fbw-roll": {
		Description: "full fly-by-wire roll command for one second",
		Mode:        dynamo.FlyByWire, Command: dynamo.AxisCommand{Roll: 100}, Duration: 1,
	},
	"rate-yaw": {
		Description: "steady yaw command in rate-command mode",
		Mode:        dynamo.RateCommand, Command: dynamo.AxisCommand{Yaw: 40}, Duration: 10,
	},
}

func GetPreset(name string) (Preset, bool) {
	p, ok := Presets[name]
	return p, ok
}

// ListPresets returns the preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyPreset overlays the named preset onto c.
func (c *Config) ApplyPreset(name string) error {
	p, ok := GetPreset(name)
	if !ok {
		return fmt.Errorf("unknown preset: %s", name)
	}
	c.Mode = p.Mode
	c.Scenario = p.Scenario
	c.Command = p.Command
	if p.Duration > 0 {
		c.Duration = p.Duration
	}
	c.InitAttitude = p.InitAttitude
	return nil
}
