package dynamo

import "math"

// normFloor is the smallest norm Normalize will divide by.
const normFloor = 1e-10

// Quaternion is a body-to-reference orientation. It is kept at unit norm by
// Integrate.
type Quaternion struct {
	W, X, Y, Z float64
}

// Identity returns the zero-rotation quaternion.
func Identity() Quaternion {
	return Quaternion{W: 1}
}

func (q Quaternion) Norm() float64 {
	return math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
}

// Normalize scales q to unit norm. A quaternion whose norm is at or below
// 1e-10 is left unchanged.
func (q *Quaternion) Normalize() {
	n := q.Norm()
	if n <= normFloor {
		return
	}
	q.W /= n
	q.X /= n
	q.Y /= n
	q.Z /= n
}

// Mul returns the Hamilton product q ⊗ r.
func (q Quaternion) Mul(r Quaternion) Quaternion {
	return Quaternion{
		W: q.W*r.W - q.X*r.X - q.Y*r.Y - q.Z*r.Z,
		X: q.W*r.X + q.X*r.W + q.Y*r.Z - q.Z*r.Y,
		Y: q.W*r.Y - q.X*r.Z + q.Y*r.W + q.Z*r.X,
		Z: q.W*r.Z + q.X*r.Y - q.Y*r.X + q.Z*r.W,
	}
}

// RotationMatrix returns the 3x3 body-to-reference rotation matrix.
func (q Quaternion) RotationMatrix() [3][3]float64 {
	w, x, y, z := q.W, q.X, q.Y, q.Z
	return [3][3]float64{
		{1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y)},
		{2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x)},
		{2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y)},
	}
}

// EulerAngles returns roll, pitch and yaw in degrees, each wrapped to
// [0, 360).
//
// Each angle comes from its own pair of matrix entries: roll from R[1][2]
// and R[1][1], pitch from -R[0][2], yaw from R[0][1] and R[0][0]. Pitch is
// pinned to exactly ±90 when |R[0][2]| reaches 1, so rounding past the pole
// never yields NaN.
func (q Quaternion) EulerAngles() (roll, pitch, yaw float64) {
	r := q.RotationMatrix()

	roll = math.Atan2(r[1][2], r[1][1]) * radToDeg

	sinPitch := -r[0][2]
	switch {
	case sinPitch >= 1:
		pitch = 90
	case sinPitch <= -1:
		pitch = -90
	default:
		pitch = math.Asin(sinPitch) * radToDeg
	}

	yaw = math.Atan2(r[0][1], r[0][0]) * radToDeg

	return WrapDegrees(roll), WrapDegrees(pitch), WrapDegrees(yaw)
}

// Integrate advances q by one explicit-Euler step of the body angular
// velocity (wx, wy, wz), given in deg/s, over dt seconds, then renormalizes.
func (q *Quaternion) Integrate(wx, wy, wz, dt float64) {
	wx *= degToRad
	wy *= degToRad
	wz *= degToRad

	// 0.5 * q ⊗ (0, ω)
	dw := 0.5 * (-q.X*wx - q.Y*wy - q.Z*wz)
	dx := 0.5 * (q.W*wx + q.Y*wz - q.Z*wy)
	dy := 0.5 * (q.W*wy + q.Z*wx - q.X*wz)
	dz := 0.5 * (q.W*wz + q.X*wy - q.Y*wx)

	q.W += dw * dt
	q.X += dx * dt
	q.Y += dy * dt
	q.Z += dz * dt

	q.Normalize()
}

// FromEuler builds an orientation whose EulerAngles read back (roll, pitch,
// yaw) exactly for single-axis attitudes and for pitch/yaw combinations
// with |yaw| < 90. With roll combined with another axis the roll readout
// couples, since EulerAngles does not invert a rotation sequence.
func FromEuler(roll, pitch, yaw float64) Quaternion {
	qx := axisAngle(-roll*degToRad, 1, 0, 0)
	qy := axisAngle(-pitch*degToRad, 0, 1, 0)
	qz := axisAngle(-yaw*degToRad, 0, 0, 1)
	q := qx.Mul(qy).Mul(qz)
	q.Normalize()
	return q
}

func axisAngle(rad, ax, ay, az float64) Quaternion {
	s, c := math.Sincos(rad / 2)
	return Quaternion{W: c, X: ax * s, Y: ay * s, Z: az * s}
}

// WrapDegrees maps an angle into [0, 360).
func WrapDegrees(a float64) float64 {
	a = math.Mod(a+360, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a -= 360
	}
	return a
}
