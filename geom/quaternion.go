package geom

import "math"

// Quaternion is a rotation. The zero value is not a rotation; use Identity.
type Quaternion struct {
	W, X, Y, Z float64
}

func Identity() Quaternion {
	return Quaternion{W: 1}
}

// Mul is the Hamilton product q*r: apply r, then q. It doesn't commute.
func (q Quaternion) Mul(r Quaternion) Quaternion {
	return Quaternion{
		W: q.W*r.W - (q.X*r.X + q.Y*r.Y + q.Z*r.Z),
		X: q.Y*r.Z - q.Z*r.Y + q.W*r.X + r.W*q.X,
		Y: q.Z*r.X - q.X*r.Z + q.W*r.Y + r.W*q.Y,
		Z: q.X*r.Y - q.Y*r.X + q.W*r.Z + r.W*q.Z,
	}
}

// Inverse is the conjugate, which inverts unit quaternions.
func (q Quaternion) Inverse() Quaternion {
	return Quaternion{W: q.W, X: -q.X, Y: -q.Y, Z: -q.Z}
}

func (q Quaternion) Norm() float64 {
	return math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
}

// Normalize scales q to unit length. The zero quaternion becomes Identity.
func (q Quaternion) Normalize() Quaternion {
	n := q.Norm()
	if n == 0 {
		return Identity()
	}
	return Quaternion{q.W / n, q.X / n, q.Y / n, q.Z / n}
}

// FromAxisAngle rotates by theta radians about axis, which needn't be unit length.
func FromAxisAngle(theta float64, axis Vector3) Quaternion {
	if l := axis.Length(); l != 0 {
		axis = axis.Scale(1 / l)
	}
	s := math.Sin(theta / 2)
	return Quaternion{
		W: math.Cos(theta / 2),
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
	}
}

func EulerX(theta float64) Quaternion {
	return Quaternion{W: math.Cos(theta / 2), X: math.Sin(theta / 2)}
}

func EulerY(theta float64) Quaternion {
	return Quaternion{W: math.Cos(theta / 2), Y: math.Sin(theta / 2)}
}

func EulerZ(theta float64) Quaternion {
	return Quaternion{W: math.Cos(theta / 2), Z: math.Sin(theta / 2)}
}

// FromEuler composes rotations about x, then y, then z.
func FromEuler(x, y, z float64) Quaternion {
	return EulerZ(z).Mul(EulerY(y)).Mul(EulerX(x))
}

// Matrix returns the 4x4 rotation matrix in column-major order.
func (q Quaternion) Matrix() [16]float64 {
	x2, y2, z2 := q.X*2, q.Y*2, q.Z*2
	xx, yy, zz := q.X*x2, q.Y*y2, q.Z*z2
	xy, xz, yz := q.X*y2, q.X*z2, q.Y*z2
	wx, wy, wz := q.W*x2, q.W*y2, q.W*z2

	return [16]float64{
		1 - (yy + zz), xy + wz, xz - wy, 0,
		xy - wz, 1 - (xx + zz), yz + wx, 0,
		xz + wy, yz - wx, 1 - (xx + yy), 0,
		0, 0, 0, 1,
	}
}

// Rotate applies q to v.
func (q Quaternion) Rotate(v Vector3) Vector3 {
	m := q.Matrix()
	return Vector3{
		X: m[0]*v.X + m[4]*v.Y + m[8]*v.Z,
		Y: m[1]*v.X + m[5]*v.Y + m[9]*v.Z,
		Z: m[2]*v.X + m[6]*v.Y + m[10]*v.Z,
	}
}

// Heading is the local +Y axis.
func (q Quaternion) Heading() Vector3 {
	m := q.Matrix()
	return Vector3{m[4], m[5], m[6]}
}

// Left is the local +X axis.
func (q Quaternion) Left() Vector3 {
	m := q.Matrix()
	return Vector3{m[0], m[1], m[2]}
}

// Up is the local +Z axis.
func (q Quaternion) Up() Vector3 {
	m := q.Matrix()
	return Vector3{m[8], m[9], m[10]}
}
