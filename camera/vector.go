package camera

import (
	"github.com/davidwyly/chart-citizen-sub001/core"
)

// Vector3 is a float32 world-space point, matching the precision the
// rendering layer consumes. Core computations stay in float64; conversion
// happens once, at this boundary.
type Vector3 struct {
	X, Y, Z float32
}

// FromVec3 converts a core float64 vector.
func FromVec3(v core.Vec3) Vector3 {
	return Vector3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}

// Add returns v + other.
func (v Vector3) Add(other Vector3) Vector3 {
	return Vector3{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z}
}

// Sub returns v - other.
func (v Vector3) Sub(other Vector3) Vector3 {
	return Vector3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Scale returns v multiplied by s.
func (v Vector3) Scale(s float32) Vector3 {
	return Vector3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Lerp interpolates linearly from v to target by t in [0, 1].
func (v Vector3) Lerp(target Vector3, t float32) Vector3 {
	return Vector3{
		X: v.X + (target.X-v.X)*t,
		Y: v.Y + (target.Y-v.Y)*t,
		Z: v.Z + (target.Z-v.Z)*t,
	}
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Vector3) Vector3 {
	return a.Add(b.Sub(a).Scale(0.5))
}
