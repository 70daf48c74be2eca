package control

import "github.com/san-kum/attsim/internal/dynamo"

// DefaultBlend is the per-frame smoothing factor for UI command sliders.
const DefaultBlend = 0.3

// Blend moves current toward target by factor, an exponential smoother.
func Blend(current, target, factor float64) float64 {
	return current + (target-current)*factor
}

// BlendCommand smooths every axis of current toward target.
func BlendCommand(current, target dynamo.AxisCommand, factor float64) dynamo.AxisCommand {
	f := float32(factor)
	return dynamo.AxisCommand{
		Roll:  current.Roll + (target.Roll-current.Roll)*f,
		Pitch: current.Pitch + (target.Pitch-current.Pitch)*f,
		Yaw:   current.Yaw + (target.Yaw-current.Yaw)*f,
	}
}
