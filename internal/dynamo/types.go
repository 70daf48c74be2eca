package dynamo

import (
	"fmt"
	"math"
	"strings"
)

// ControlMode selects how an AxisCommand reaches the spacecraft.
type ControlMode int

const (
	// Manual sets body rates directly from the command, bypassing torques.
	Manual ControlMode = iota
	// RateCommand maps each axis linearly to a control torque.
	RateCommand
	// FlyByWire maps each axis through the three-level thruster relay.
	FlyByWire
)

var modeNames = [...]string{"manual", "rate_command", "fly_by_wire"}

func (m ControlMode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("ControlMode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseControlMode accepts the String form plus a few short aliases.
func ParseControlMode(s string) (ControlMode, error) {
	switch strings.ToLower(strings.ReplaceAll(s, "-", "_")) {
	case "manual", "":
		return Manual, nil
	case "rate_command", "rate":
		return RateCommand, nil
	case "fly_by_wire", "fbw":
		return FlyByWire, nil
	}
	return Manual, fmt.Errorf("unknown control mode: %s", s)
}

func (m ControlMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *ControlMode) UnmarshalText(b []byte) error {
	v, err := ParseControlMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Next cycles to the following mode.
func (m ControlMode) Next() ControlMode {
	return ControlMode((int(m) + 1) % len(modeNames))
}

// Modes lists every control mode in cycle order.
func Modes() []ControlMode {
	return []ControlMode{Manual, RateCommand, FlyByWire}
}

// AxisCommand is a normalized control triple. Each axis is nominally in
// [-100, 100] whether it came from a UI slider or a network packet.
type AxisCommand struct {
	Roll  float32 `yaml:"roll" json:"roll"`
	Pitch float32 `yaml:"pitch" json:"pitch"`
	Yaw   float32 `yaml:"yaw" json:"yaw"`
}

// IsZero reports whether all three axes are zero.
func (c AxisCommand) IsZero() bool {
	return c == AxisCommand{}
}

// Vec3 widens the command to float64 components.
func (c AxisCommand) Vec3() Vec3 {
	return Vec3{float64(c.Roll), float64(c.Pitch), float64(c.Yaw)}
}

// Within reports whether every axis is finite and its magnitude does not
// exceed limit.
func (c AxisCommand) Within(limit float32) bool {
	for _, v := range [3]float32{c.Roll, c.Pitch, c.Yaw} {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
		if math.Abs(f) > float64(limit) {
			return false
		}
	}
	return true
}

// Attitude is the display readout: angles in degrees wrapped to [0, 360)
// and body rates in deg/s.
type Attitude struct {
	Roll      float64 `json:"roll"`
	Pitch     float64 `json:"pitch"`
	Yaw       float64 `json:"yaw"`
	RollRate  float64 `json:"roll_rate"`
	PitchRate float64 `json:"pitch_rate"`
	YawRate   float64 `json:"yaw_rate"`
}

// Angles returns roll, pitch and yaw as a vector.
func (a Attitude) Angles() Vec3 { return Vec3{a.Roll, a.Pitch, a.Yaw} }

// Rates returns the body rates as a vector.
func (a Attitude) Rates() Vec3 { return Vec3{a.RollRate, a.PitchRate, a.YawRate} }

// IsValid reports whether every field is finite.
func (a Attitude) IsValid() bool {
	return a.Angles().IsValid() && a.Rates().IsValid()
}
