// Package physics provides the spacecraft rotational dynamics engine.
//
// [Spacecraft] holds orientation, body rates and the control and disturbance
// torques of one rigid body and advances them with Euler's rotational
// equations:
//
//	I·dω/dt = τ_control + τ_disturbance − ω × (I·ω)
//
// followed by per-axis damping on uncommanded axes and a quaternion
// integration step. Rates are kept in deg/s for display; the equations run
// in rad/s.
//
// # Usage
//
//	sc := physics.NewSpacecraft(physics.DefaultParams())
//	sc.SetThrusterCommands(dynamo.AxisCommand{Roll: 80}, true)
//	sc.Update(physics.DefaultTimestep)
//	roll, pitch, yaw := sc.EulerAngles()
//
// [Spacecraft] also exposes GetParams/SetParam for per-run overrides.
// Nothing here returns an error from the stepping path.
package physics
