package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// Box is an oriented rectangular prism, fully defined by a volume-centered
// pose and half extents along the box's own axes.
type Box struct {
	center   Pose
	halfSize [3]float64
}

// NewBox instantiates a box from its volume-centered pose and full
// dimensions. Negative dimensions are not allowed; zero dimensions are, for
// degenerate bounding boxes.
func NewBox(center Pose, dims r3.Vector) (Box, error) {
	if dims.X < 0 || dims.Y < 0 || dims.Z < 0 {
		return Box{}, errors.Errorf("box dimensions can not be negative, got %v", dims)
	}
	halfSize := dims.Mul(0.5)
	return Box{
		center:   center,
		halfSize: [3]float64{halfSize.X, halfSize.Y, halfSize.Z},
	}, nil
}

// NewGroundBox instantiates a box whose pose anchors the center of the
// bottom face instead of the volume center, the convention object
// annotations use for objects resting on the ground.
func NewGroundBox(ground Pose, dims r3.Vector) (Box, error) {
	center := NewPose(ground.Point().Add(r3.Vector{Z: dims.Z / 2}), ground.Yaw())
	return NewBox(center, dims)
}

// Pose returns the volume-centered pose of the box.
func (b Box) Pose() Pose {
	return b.center
}

// Dims returns the full extents of the box along its own axes.
func (b Box) Dims() r3.Vector {
	return r3.Vector{X: 2 * b.halfSize[0], Y: 2 * b.halfSize[1], Z: 2 * b.halfSize[2]}
}

// Contains reports whether pt lies inside the box. The point is expressed
// in the box's own frame and tested against the half extents; points
// exactly on a face count as inside.
func (b Box) Contains(pt r3.Vector) bool {
	local := PoseInverse(b.center).TransformPoint(pt)
	return math.Abs(local.X) <= b.halfSize[0] &&
		math.Abs(local.Y) <= b.halfSize[1] &&
		math.Abs(local.Z) <= b.halfSize[2]
}

// Vertices returns the eight corners of the box in world coordinates.
func (b Box) Vertices() []r3.Vector {
	verts := make([]r3.Vector, 0, 8)
	for _, x := range []float64{b.halfSize[0], -b.halfSize[0]} {
		for _, y := range []float64{b.halfSize[1], -b.halfSize[1]} {
			for _, z := range []float64{b.halfSize[2], -b.halfSize[2]} {
				verts = append(verts, b.center.TransformPoint(r3.Vector{X: x, Y: y, Z: z}))
			}
		}
	}
	return verts
}

// String returns a human readable string that represents the box.
func (b Box) String() string {
	center := b.center.Point()
	return fmt.Sprintf("Position: X:%.1f, Y:%.1f, Z:%.1f | Dims: X:%.1f, Y:%.1f, Z:%.1f | Yaw: %.2f",
		center.X, center.Y, center.Z, 2*b.halfSize[0], 2*b.halfSize[1], 2*b.halfSize[2], b.center.Yaw())
}

// AlmostEqual reports whether two boxes agree in pose and dimensions within
// epsilon.
func (b Box) AlmostEqual(other Box, epsilon float64) bool {
	if !b.center.AlmostEqual(other.center, epsilon) {
		return false
	}
	for i := range b.halfSize {
		if math.Abs(b.halfSize[i]-other.halfSize[i]) > epsilon {
			return false
		}
	}
	return true
}
