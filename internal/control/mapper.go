package control

import "github.com/san-kum/attsim/internal/dynamo"

// DefaultRateGain is the N·m produced per unit of rate command.
const DefaultRateGain = 0.3

// Mapper turns an axis command into a body control torque in N·m.
type Mapper interface {
	Torque(cmd dynamo.AxisCommand) dynamo.Vec3
}

// FlyByWire drives each axis through its own thruster relay.
type FlyByWire struct {
	Thruster Thruster
}

func NewFlyByWire(th Thruster) *FlyByWire {
	return &FlyByWire{Thruster: th}
}

func (f *FlyByWire) Torque(cmd dynamo.AxisCommand) dynamo.Vec3 {
	return dynamo.Vec3{
		X: f.Thruster.Torque(cmd.Roll),
		Y: f.Thruster.Torque(cmd.Pitch),
		Z: f.Thruster.Torque(cmd.Yaw),
	}
}

// Levels reports the relay state of each axis, roll first.
func (f *FlyByWire) Levels(cmd dynamo.AxisCommand) [3]ThrustLevel {
	return [3]ThrustLevel{
		f.Thruster.Level(cmd.Roll),
		f.Thruster.Level(cmd.Pitch),
		f.Thruster.Level(cmd.Yaw),
	}
}

// RateCommand scales each axis linearly.
type RateCommand struct {
	Gain float64
}

func NewRateCommand(gain float64) *RateCommand {
	return &RateCommand{Gain: gain}
}

func (r *RateCommand) Torque(cmd dynamo.AxisCommand) dynamo.Vec3 {
	return cmd.Vec3().Scale(r.Gain)
}
