package dynamo

import (
	"math"
	"testing"
)

func TestParseControlMode(t *testing.T) {
	tests := []struct {
		in   string
		want ControlMode
		ok   bool
	}{
		{"manual", Manual, true},
		{"rate_command", RateCommand, true},
		{"rate-command", RateCommand, true},
		{"FBW", FlyByWire, true},
		{"fly_by_wire", FlyByWire, true},
		{"autopilot", Manual, false},
	}
	for _, tt := range tests {
		got, err := ParseControlMode(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseControlMode(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseControlMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	for _, m := range Modes() {
		back, err := ParseControlMode(m.String())
		if err != nil || back != m {
			t.Errorf("mode %v does not survive String/Parse", m)
		}
	}
}

func TestAxisCommand_Within(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))

	tests := []struct {
		name string
		cmd  AxisCommand
		ok   bool
	}{
		{"zero", AxisCommand{}, true},
		{"nominal", AxisCommand{100, -100, 50}, true},
		{"tolerance edge", AxisCommand{150, -150, 0}, true},
		{"over tolerance", AxisCommand{0, 150.5, 0}, false},
		{"NaN", AxisCommand{nan, 0, 0}, false},
		{"Inf", AxisCommand{0, 0, inf}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cmd.Within(150); got != tt.ok {
				t.Errorf("Within(150) = %v, want %v", got, tt.ok)
			}
		})
	}
}

func TestControlMode_Text(t *testing.T) {
	b, err := FlyByWire.MarshalText()
	if err != nil || string(b) != "fly_by_wire" {
		t.Fatalf("MarshalText = %q, %v", b, err)
	}

	var m ControlMode
	if err := m.UnmarshalText([]byte("rate")); err != nil || m != RateCommand {
		t.Errorf("UnmarshalText(rate) = %v, %v", m, err)
	}
	if err := m.UnmarshalText([]byte("warp")); err == nil {
		t.Error("expected error for unknown mode")
	}

	if FlyByWire.Next() != Manual || Manual.Next() != RateCommand {
		t.Error("Next does not cycle through modes")
	}
}
