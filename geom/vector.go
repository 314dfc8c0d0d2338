// Package geom has the vector and quaternion arithmetic the turtle moves with.
package geom

import "math"

type Vector3 struct {
	X, Y, Z float64
}

func (v Vector3) Add(w Vector3) Vector3 {
	return Vector3{v.X + w.X, v.Y + w.Y, v.Z + w.Z}
}

func (v Vector3) Sub(w Vector3) Vector3 {
	return Vector3{v.X - w.X, v.Y - w.Y, v.Z - w.Z}
}

// AddScalar adds f to every component.
func (v Vector3) AddScalar(f float64) Vector3 {
	return Vector3{v.X + f, v.Y + f, v.Z + f}
}

func (v Vector3) Scale(f float64) Vector3 {
	return Vector3{v.X * f, v.Y * f, v.Z * f}
}

func (v Vector3) Cross(w Vector3) Vector3 {
	return Vector3{
		v.Y*w.Z - v.Z*w.Y,
		v.Z*w.X - v.X*w.Z,
		v.X*w.Y - v.Y*w.X,
	}
}

func (v Vector3) Dot(w Vector3) float64 {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z
}

func (v Vector3) Length() float64 {
	return math.Sqrt(v.Dot(v))
}
