// Package control maps normalized axis commands onto the spacecraft.
//
// Mappers implement [Mapper] and turn an [dynamo.AxisCommand] into a body
// control torque:
//
//   - [FlyByWire]: three-level on/off thruster relay per axis
//   - [RateCommand]: proportional torque, command times a fixed gain
//
// [Manual] bypasses torques entirely and turns the command into body rates.
//
// # Thruster relay
//
//	th := control.DefaultThruster()
//	th.Torque(24.9)  // 0
//	th.Torque(25)    // 5
//	th.Torque(-80)   // -15
//
// The deadband edge is exclusive and the high-thrust edge inclusive.
package control
