// Package dynamo provides the attitude primitives shared by every layer of
// the simulator.
//
// The package defines the value types the dynamics core is built from:
//
//   - [Vec3]: 3-vector algebra (torques, angular velocities)
//   - [Quaternion]: unit-quaternion orientation with explicit-Euler integration
//   - [AxisCommand]: normalized roll/pitch/yaw control triple
//   - [ControlMode]: which command-mapping policy is active
//   - [Attitude]: display-ready angles and rates
//
// # Display angles
//
// [Quaternion.EulerAngles] reads roll, pitch and yaw from separate rotation
// matrix entries instead of walking a roll-pitch-yaw chain, so a pitch of
// ±90° never corrupts the roll and yaw readouts:
//
//	q := dynamo.Identity()
//	q.Integrate(10, 0, 0, 0.01)   // deg/s, seconds
//	roll, pitch, yaw := q.EulerAngles()
//
// All values are plain structs with no hidden state; nothing in this package
// allocates or returns an error.
package dynamo
