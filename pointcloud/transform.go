package pointcloud

import (
	"github.com/golang/geo/r3"

	"github.com/jafrado/kittinav/spatialmath"
)

// ApplyPose returns a new cloud with pose applied to every point. Point
// data is shared with the source cloud and load order is preserved.
func ApplyPose(cloud PointCloud, pose spatialmath.Pose) PointCloud {
	out := NewWithPrealloc(cloud.Size())
	cloud.Iterate(func(p r3.Vector, d Data) bool {
		out.Append(pose.TransformPoint(p), d)
		return true
	})
	return out
}

// Translate returns a new cloud with offset added to every point.
func Translate(cloud PointCloud, offset r3.Vector) PointCloud {
	return ApplyPose(cloud, spatialmath.NewPoseFromPoint(offset))
}

// RotateZ returns a new cloud rotated by yaw radians about the Z axis.
func RotateZ(cloud PointCloud, yaw float64) PointCloud {
	return ApplyPose(cloud, spatialmath.NewPose(r3.Vector{}, yaw))
}
