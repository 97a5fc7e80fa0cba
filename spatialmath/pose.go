// Package spatialmath implements the rigid geometry used to place object
// boxes over LiDAR scans. Rotations are restricted to yaw about the Z axis,
// which is all the annotation format records.
package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
)

// Pose is a rigid transform: a yaw rotation about the Z axis followed by a
// translation. Applying it to a point computes Rz(yaw)*p + point.
type Pose struct {
	point r3.Vector
	yaw   float64
}

// NewPose returns a pose at the given point with the given yaw in radians.
func NewPose(point r3.Vector, yaw float64) Pose {
	return Pose{point: point, yaw: yaw}
}

// NewPoseFromPoint returns a pure translation pose.
func NewPoseFromPoint(point r3.Vector) Pose {
	return Pose{point: point}
}

// NewZeroPose returns the identity pose.
func NewZeroPose() Pose {
	return Pose{}
}

// Point returns the translation component of the pose.
func (p Pose) Point() r3.Vector {
	return p.point
}

// Yaw returns the rotation about Z in radians.
func (p Pose) Yaw() float64 {
	return p.yaw
}

// TransformPoint applies the pose to pt, rotating first and then
// translating.
func (p Pose) TransformPoint(pt r3.Vector) r3.Vector {
	return RotateZ(p.yaw, pt).Add(p.point)
}

// AlmostEqual reports whether two poses agree within epsilon in both
// translation and yaw.
func (p Pose) AlmostEqual(q Pose, epsilon float64) bool {
	return p.point.Sub(q.point).Norm() <= epsilon && math.Abs(p.yaw-q.yaw) <= epsilon
}

// Compose returns the pose equivalent to applying b first and then a.
func Compose(a, b Pose) Pose {
	return Pose{point: a.TransformPoint(b.point), yaw: a.yaw + b.yaw}
}

// PoseInverse returns the pose that undoes p.
func PoseInverse(p Pose) Pose {
	return Pose{point: RotateZ(-p.yaw, p.point.Mul(-1)), yaw: -p.yaw}
}

// RotateZ rotates pt about the Z axis by yaw radians.
func RotateZ(yaw float64, pt r3.Vector) r3.Vector {
	sin, cos := math.Sincos(yaw)
	return r3.Vector{
		X: cos*pt.X - sin*pt.Y,
		Y: sin*pt.X + cos*pt.Y,
		Z: pt.Z,
	}
}
