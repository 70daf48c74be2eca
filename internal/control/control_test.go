package control

import (
	"testing"

	"github.com/san-kum/attsim/internal/dynamo"
)

func TestThrustTorque_Deadband(t *testing.T) {
	tests := []struct {
		cmd  float32
		want float64
	}{
		{0, 0},
		{24.9, 0},
		{-24.9, 0},
		{25.0, 5.0},
		{-25.0, -5.0},
		{74.9, 5.0},
		{75.0, 15.0},
		{-75.0, -15.0},
		{-80, -15.0},
		{100, 15.0},
		{150, 15.0},
	}

	for _, tt := range tests {
		if got := ThrustTorque(tt.cmd); got != tt.want {
			t.Errorf("ThrustTorque(%v) = %v, want %v", tt.cmd, got, tt.want)
		}
	}
}

func TestThruster_Level(t *testing.T) {
	th := DefaultThruster()

	tests := []struct {
		cmd  float32
		want ThrustLevel
	}{
		{10, ThrustOff},
		{-30, ThrustLow},
		{75, ThrustHigh},
		{-99, ThrustHigh},
	}
	for _, tt := range tests {
		if got := th.Level(tt.cmd); got != tt.want {
			t.Errorf("Level(%v) = %v, want %v", tt.cmd, got, tt.want)
		}
	}

	if ThrustOff.String() != "No Thrust" || ThrustHigh.String() != "HIGH Thrust" {
		t.Error("unexpected level labels")
	}
}

func TestFlyByWire_OnlyThreeLevels(t *testing.T) {
	m := NewFlyByWire(DefaultThruster())
	allowed := map[float64]bool{0: true, 5: true, -5: true, 15: true, -15: true}

	for c := float32(-150); c <= 150; c += 0.5 {
		tq := m.Torque(dynamo.AxisCommand{Roll: c, Pitch: -c, Yaw: c / 2})
		for _, v := range []float64{tq.X, tq.Y, tq.Z} {
			if !allowed[v] {
				t.Fatalf("command %v produced torque %v outside relay levels", c, v)
			}
		}
	}

	levels := m.Levels(dynamo.AxisCommand{Roll: 80, Pitch: 30, Yaw: 0})
	if levels != [3]ThrustLevel{ThrustHigh, ThrustLow, ThrustOff} {
		t.Errorf("unexpected levels %v", levels)
	}
}

func TestRateCommand_Linear(t *testing.T) {
	m := NewRateCommand(DefaultRateGain)
	tq := m.Torque(dynamo.AxisCommand{Roll: 50, Pitch: -10, Yaw: 0})

	if diff := tq.X - 15.0; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("roll torque = %v, want 15", tq.X)
	}
	if diff := tq.Y + 3.0; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("pitch torque = %v, want -3", tq.Y)
	}
	if tq.Z != 0 {
		t.Errorf("yaw torque = %v, want 0", tq.Z)
	}
}

func TestManual_Clamp(t *testing.T) {
	m := NewManual(DefaultRateLimit)
	r := m.Rates(dynamo.AxisCommand{Roll: 140, Pitch: -120, Yaw: 42})
	if r != (dynamo.Vec3{X: 100, Y: -100, Z: 42}) {
		t.Errorf("Rates = %v", r)
	}
}

func TestBlend(t *testing.T) {
	if got := Blend(0, 10, DefaultBlend); got < 3-1e-12 || got > 3+1e-12 {
		t.Errorf("Blend = %v, want 3", got)
	}

	cur := dynamo.AxisCommand{}
	target := dynamo.AxisCommand{Roll: 50, Pitch: -50}
	for i := 0; i < 100; i++ {
		cur = BlendCommand(cur, target, DefaultBlend)
	}
	if d := cur.Roll - 50; d > 1e-3 || d < -1e-3 {
		t.Errorf("blend did not converge: %v", cur)
	}
}
