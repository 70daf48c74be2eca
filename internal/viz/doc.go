// Package viz renders the live attitude indicator in the terminal with
// Bubble Tea.
//
// The view shows three dial gauges for roll, pitch and yaw, a rate panel
// with the thrust level of each axis in fly-by-wire mode, and a rolling
// chart of body rates. Commands come from the keyboard or, when an Input is
// attached, from the most recent network joystick packet.
//
// # Key Bindings
//
//	1/2/3 - Manual, rate command, fly-by-wire
//	a/d   - Roll command
//	w/s   - Pitch command
//	z/c   - Yaw command
//	0     - Zero commands
//	n     - Next disturbance scenario
//	r     - Reset attitude
//	Space - Pause/Resume
//	t     - Cycle themes
//	?     - Help overlay
package viz
