package dynamo

import (
	"math"
	"testing"
)

func TestVec3_Arithmetic(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}

	if got := a.Add(b); got != (Vec3{5, 7, 9}) {
		t.Errorf("Add failed: got %v", got)
	}
	if got := b.Sub(a); got != (Vec3{3, 3, 3}) {
		t.Errorf("Sub failed: got %v", got)
	}
	if got := a.Scale(2); got != (Vec3{2, 4, 6}) {
		t.Errorf("Scale failed: got %v", got)
	}
	if got := a.Dot(b); got != 32 {
		t.Errorf("Dot failed: got %v", got)
	}
	if got := a.Cross(b); got != (Vec3{-3, 6, -3}) {
		t.Errorf("Cross failed: got %v", got)
	}
	if got := a.Mul(b).Div(b); got != a {
		t.Errorf("Mul/Div failed: got %v", got)
	}
}

func TestVec3_CrossOrthogonal(t *testing.T) {
	a := Vec3{0.3, -1.2, 2.5}
	b := Vec3{4.1, 0.7, -0.9}
	c := a.Cross(b)
	if math.Abs(c.Dot(a)) > 1e-12 || math.Abs(c.Dot(b)) > 1e-12 {
		t.Errorf("cross product not orthogonal: %v", c)
	}
}

func TestVec3_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		v     Vec3
		valid bool
	}{
		{"zero", Vec3{}, true},
		{"normal", Vec3{1, -2, 3}, true},
		{"with NaN", Vec3{1, math.NaN(), 0}, false},
		{"with +Inf", Vec3{math.Inf(1), 0, 0}, false},
		{"with -Inf", Vec3{0, 0, math.Inf(-1)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestVec3_AngleConversion(t *testing.T) {
	v := Vec3{180, 90, -45}.Radians()
	if math.Abs(v.X-math.Pi) > 1e-12 || math.Abs(v.Y-math.Pi/2) > 1e-12 {
		t.Errorf("Radians failed: got %v", v)
	}
	back := v.Degrees()
	if math.Abs(back.Z+45) > 1e-12 {
		t.Errorf("Degrees failed: got %v", back)
	}
}
