package control

import (
	"math"

	"github.com/san-kum/attsim/internal/dynamo"
)

// DefaultRateLimit bounds manual body rates in deg/s.
const DefaultRateLimit = 100.0

// Manual passes the command straight through as body rates (deg/s),
// clamped to ±Limit. No torque or thruster model is involved.
type Manual struct {
	Limit float64
}

func NewManual(limit float64) *Manual {
	return &Manual{Limit: limit}
}

// Rates returns the clamped body rates for cmd.
func (m *Manual) Rates(cmd dynamo.AxisCommand) dynamo.Vec3 {
	v := cmd.Vec3()
	return dynamo.Vec3{
		X: Clamp(v.X, -m.Limit, m.Limit),
		Y: Clamp(v.Y, -m.Limit, m.Limit),
		Z: Clamp(v.Z, -m.Limit, m.Limit),
	}
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
