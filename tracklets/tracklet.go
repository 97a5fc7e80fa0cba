// Package tracklets models the object annotations of a raw recording:
// labeled boxes with one pose per frame of their lifetime, plus the
// operations that carve their points out of a frame's cloud.
package tracklets

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/jafrado/kittinav/spatialmath"
)

// Pose is one frame of a tracklet's trajectory. The translation anchors
// the bottom face of the box in sensor coordinates and Rz is the yaw about
// Z. The state, occlusion, and truncation fields mirror the annotation
// file and are carried for consumers; the geometry here uses only the
// translation and yaw.
type Pose struct {
	Tx, Ty, Tz float64
	Rx, Ry, Rz float64

	State       int
	Occlusion   int
	OcclusionKF int
	Truncation  int
}

// Point returns the ground anchor of the pose.
func (p Pose) Point() r3.Vector {
	return r3.Vector{X: p.Tx, Y: p.Ty, Z: p.Tz}
}

// Tracklet is one annotated object: a class label, fixed box dimensions,
// and a pose for every frame from FirstFrame onward. Tracklets are
// immutable once loaded.
type Tracklet struct {
	ObjectType string
	H, W, L    float64
	FirstFrame int
	Poses      []Pose
}

// LastFrame returns the final frame index at which the tracklet exists.
func (t *Tracklet) LastFrame() int {
	return t.FirstFrame + len(t.Poses) - 1
}

// ActiveAt reports whether the tracklet has a pose at the given frame.
func (t *Tracklet) ActiveAt(frame int) bool {
	return frame >= t.FirstFrame && frame <= t.LastFrame()
}

// Dims returns the box extents: length along local X, width along local Y,
// height along Z.
func (t *Tracklet) Dims() r3.Vector {
	return r3.Vector{X: t.L, Y: t.W, Z: t.H}
}

// ErrPoseOutOfRange is returned when a pose lookup misses the tracklet's
// covered frames. Callers gate lookups on ActiveAt, so hitting this error
// indicates a bookkeeping bug rather than bad data.
var ErrPoseOutOfRange = errors.New("tracklet has no pose at requested frame")

// PoseAt returns the tracklet's pose at the given frame.
func (t *Tracklet) PoseAt(frame int) (Pose, error) {
	if !t.ActiveAt(frame) {
		return Pose{}, errors.Wrapf(ErrPoseOutOfRange,
			"frame %d outside [%d, %d]", frame, t.FirstFrame, t.LastFrame())
	}
	return t.Poses[frame-t.FirstFrame], nil
}

// BoxAt returns the tracklet's oriented box at the given frame, lifted
// from the recorded ground anchor to its volume center.
func (t *Tracklet) BoxAt(frame int) (spatialmath.Box, error) {
	pose, err := t.PoseAt(frame)
	if err != nil {
		return spatialmath.Box{}, err
	}
	return spatialmath.NewGroundBox(spatialmath.NewPose(pose.Point(), pose.Rz), t.Dims())
}

// Active returns the tracklets with a pose at the given frame, in the
// same relative order as all.
func Active(all []Tracklet, frame int) []Tracklet {
	var active []Tracklet
	for _, t := range all {
		if t.ActiveAt(frame) {
			active = append(active, t)
		}
	}
	return active
}
