package tracklets

import (
	"github.com/golang/geo/r3"

	"github.com/jafrado/kittinav/pointcloud"
)

// HoverOffset is the fixed vertical lift applied to cropped tracklet
// points so their copies display above the scene.
const HoverOffset = 6.0

// Crop extracts, in load order, the points of cloud that fall inside the
// tracklet's box at the given frame.
func Crop(cloud pointcloud.PointCloud, t *Tracklet, frame int) (pointcloud.PointCloud, error) {
	box, err := t.BoxAt(frame)
	if err != nil {
		return nil, err
	}
	out := pointcloud.New()
	cloud.Iterate(func(p r3.Vector, d pointcloud.Data) bool {
		if box.Contains(p) {
			out.Append(p, d)
		}
		return true
	})
	return out, nil
}

// HoverCloud returns a copy of the cropped points raised by HoverOffset on
// Z.
func HoverCloud(cropped pointcloud.PointCloud) pointcloud.PointCloud {
	return pointcloud.Translate(cropped, r3.Vector{Z: HoverOffset})
}

// CenteredCloud re-expresses the cropped points in the tracklet's own
// frame at the given frame: first translated so the box center lands on
// the origin, then rotated to undo the yaw. The tracklet's box is axis
// aligned and centered in the result.
func CenteredCloud(cropped pointcloud.PointCloud, t *Tracklet, frame int) (pointcloud.PointCloud, error) {
	box, err := t.BoxAt(frame)
	if err != nil {
		return nil, err
	}
	translated := pointcloud.Translate(cropped, box.Pose().Point().Mul(-1))
	return pointcloud.RotateZ(translated, -box.Pose().Yaw()), nil
}
