// Package navigation implements the selection model over a session of
// recordings: which dataset, frame, and tracklet are current, and the
// clouds and boxes derived for them.
//
// All motion goes through the Request operations. Requests clamp into
// range, load what the new position needs, and only then commit, so a
// failed load keeps the previous position on display. A Navigator is
// confined to a single goroutine.
package navigation

import (
	"fmt"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/jafrado/kittinav/pointcloud"
	"github.com/jafrado/kittinav/spatialmath"
	"github.com/jafrado/kittinav/tracklets"
)

// A Provider serves the recordings a Navigator walks over. Dataset
// arguments are positions in the Datasets list. Providers are free to
// cache; the navigator never caches across datasets itself.
type Provider interface {
	Datasets() []string
	FrameCount(dataset int) (int, error)
	FramePointCloud(dataset, frame int) (pointcloud.PointCloud, error)
	FrameImageFile(dataset, frame int) (string, error)
	Tracklets(dataset int) ([]tracklets.Tracklet, error)
}

// Range reports one navigation axis. Positions run [Min, Max] inclusive;
// Max is -1 when the axis is empty.
type Range struct {
	Min, Max int
	Current  int
}

// Entry is one annotation active in the current frame.
type Entry struct {
	// Tracklet is the index into the dataset's annotation list.
	Tracklet int
	// Label is the annotation's object class.
	Label string
	// Box places the annotation over the scan.
	Box spatialmath.Box
	// Cropped holds the scan points inside Box, raised by the hover
	// offset for display above the scene.
	Cropped pointcloud.PointCloud
}

// Navigator tracks the dataset, frame, and tracklet positions and owns
// the state loaded for them. Not safe for concurrent use.
type Navigator struct {
	provider Provider
	logger   golog.Logger
	datasets []string

	dataset  int
	frame    int
	tracklet int

	frameCount int
	annotated  []tracklets.Tracklet

	cloud     pointcloud.PointCloud
	imageFile string
	entries   []Entry
	centered  pointcloud.PointCloud
}

// NewNavigator returns a navigator over the provider's recordings with
// the first dataset loaded.
func NewNavigator(provider Provider, logger golog.Logger) (*Navigator, error) {
	return NewNavigatorAt(provider, 0, logger)
}

// NewNavigatorAt is NewNavigator starting from the given dataset. The
// index clamps into range like any other dataset request.
func NewNavigatorAt(provider Provider, dataset int, logger golog.Logger) (*Navigator, error) {
	n := &Navigator{provider: provider, logger: logger, datasets: provider.Datasets()}
	if len(n.datasets) == 0 {
		return nil, errors.New("provider has no datasets")
	}
	if err := n.loadDataset(clamp(dataset, len(n.datasets))); err != nil {
		return nil, err
	}
	return n, nil
}

// clamp pins i into [0, size-1]; an empty size pins to 0.
func clamp(i, size int) int {
	if i >= size {
		i = size - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// frameState is everything derived from one frame, staged before commit
// so a failed load leaves the previous frame on display.
type frameState struct {
	cloud     pointcloud.PointCloud
	imageFile string
	entries   []Entry
}

func (n *Navigator) loadFrame(dataset, frame int, annotated []tracklets.Tracklet) (frameState, error) {
	cloud, err := n.provider.FramePointCloud(dataset, frame)
	if err != nil {
		return frameState{}, errors.Wrapf(err, "loading frame %d of dataset %d", frame, dataset)
	}
	imageFile, err := n.provider.FrameImageFile(dataset, frame)
	if err != nil {
		return frameState{}, errors.Wrapf(err, "loading frame %d of dataset %d", frame, dataset)
	}

	var entries []Entry
	for i := range annotated {
		tk := &annotated[i]
		if !tk.ActiveAt(frame) {
			continue
		}
		box, err := tk.BoxAt(frame)
		if err != nil {
			return frameState{}, err
		}
		cropped, err := tracklets.Crop(cloud, tk, frame)
		if err != nil {
			return frameState{}, err
		}
		entries = append(entries, Entry{
			Tracklet: i,
			Label:    tk.ObjectType,
			Box:      box,
			Cropped:  tracklets.HoverCloud(cropped),
		})
	}
	return frameState{cloud: cloud, imageFile: imageFile, entries: entries}, nil
}

// centerSelection re-extracts the selected tracklet's points from the
// frame cloud and re-expresses them in the tracklet's own frame. Without
// active tracklets there is no selection and the centered cloud is nil.
func centerSelection(st frameState, annotated []tracklets.Tracklet, frame, tracklet int) (pointcloud.PointCloud, error) {
	if len(st.entries) == 0 {
		return nil, nil
	}
	tk := &annotated[st.entries[tracklet].Tracklet]
	cropped, err := tracklets.Crop(st.cloud, tk, frame)
	if err != nil {
		return nil, err
	}
	return tracklets.CenteredCloud(cropped, tk, frame)
}

func (n *Navigator) loadDataset(dataset int) error {
	frameCount, err := n.provider.FrameCount(dataset)
	if err != nil {
		return errors.Wrapf(err, "loading dataset %d", dataset)
	}
	annotated, err := n.provider.Tracklets(dataset)
	if err != nil {
		return errors.Wrapf(err, "loading dataset %d", dataset)
	}
	frame := clamp(n.frame, frameCount)
	st, err := n.loadFrame(dataset, frame, annotated)
	if err != nil {
		return err
	}
	tracklet := clamp(n.tracklet, len(st.entries))
	centered, err := centerSelection(st, annotated, frame, tracklet)
	if err != nil {
		return err
	}

	n.dataset = dataset
	n.frameCount = frameCount
	n.annotated = annotated
	n.frame = frame
	n.cloud = st.cloud
	n.imageFile = st.imageFile
	n.entries = st.entries
	n.tracklet = tracklet
	n.centered = centered
	n.logger.Debugf("dataset %d [%s]: %d frames, %d tracklets",
		dataset, n.datasets[dataset], frameCount, len(annotated))
	return nil
}

// RequestDataset switches to the given dataset, retaining the frame and
// tracklet positions as far as the new dataset allows. Requests out of
// range clamp; a request for the current position is a no-op before
// clamping, so a clamped request still reloads.
func (n *Navigator) RequestDataset(i int) error {
	if i == n.dataset {
		return nil
	}
	return n.loadDataset(clamp(i, len(n.datasets)))
}

// RequestFrame moves to the given frame of the current dataset. The
// no-op and clamping rules match RequestDataset.
func (n *Navigator) RequestFrame(i int) error {
	if i == n.frame {
		return nil
	}
	frame := clamp(i, n.frameCount)
	st, err := n.loadFrame(n.dataset, frame, n.annotated)
	if err != nil {
		return err
	}
	tracklet := clamp(n.tracklet, len(st.entries))
	centered, err := centerSelection(st, n.annotated, frame, tracklet)
	if err != nil {
		return err
	}

	n.frame = frame
	n.cloud = st.cloud
	n.imageFile = st.imageFile
	n.entries = st.entries
	n.tracklet = tracklet
	n.centered = centered
	return nil
}

// NextFrame advances one frame, stopping at the end of the dataset.
func (n *Navigator) NextFrame() error {
	return n.RequestFrame(n.frame + 1)
}

// PrevFrame steps one frame back, stopping at the start.
func (n *Navigator) PrevFrame() error {
	return n.RequestFrame(n.frame - 1)
}

// RequestTracklet selects the given entry of the current frame. The
// no-op and clamping rules match RequestDataset.
func (n *Navigator) RequestTracklet(i int) error {
	if i == n.tracklet {
		return nil
	}
	tracklet := clamp(i, len(n.entries))
	st := frameState{cloud: n.cloud, imageFile: n.imageFile, entries: n.entries}
	centered, err := centerSelection(st, n.annotated, n.frame, tracklet)
	if err != nil {
		return err
	}

	n.tracklet = tracklet
	n.centered = centered
	return nil
}

// DatasetRange reports the dataset axis.
func (n *Navigator) DatasetRange() Range {
	return Range{Min: 0, Max: len(n.datasets) - 1, Current: n.dataset}
}

// FrameRange reports the frame axis of the current dataset.
func (n *Navigator) FrameRange() Range {
	return Range{Min: 0, Max: n.frameCount - 1, Current: n.frame}
}

// TrackletRange reports the tracklet axis of the current frame.
func (n *Navigator) TrackletRange() Range {
	return Range{Min: 0, Max: len(n.entries) - 1, Current: n.tracklet}
}

// DatasetName returns the label of the current dataset.
func (n *Navigator) DatasetName() string {
	return n.datasets[n.dataset]
}

// Cloud returns the full scan of the current frame.
func (n *Navigator) Cloud() pointcloud.PointCloud {
	return n.cloud
}

// ImageFile returns the path of the camera image matching the current
// frame.
func (n *Navigator) ImageFile() string {
	return n.imageFile
}

// Tracklets returns every annotation of the current dataset.
func (n *Navigator) Tracklets() []tracklets.Tracklet {
	return n.annotated
}

// Entries returns the annotations active in the current frame in
// annotation order. Callers must not modify the returned slice.
func (n *Navigator) Entries() []Entry {
	return n.entries
}

// Selected returns the entry at the tracklet position. ok is false when
// the frame has no active tracklets.
func (n *Navigator) Selected() (Entry, bool) {
	if len(n.entries) == 0 {
		return Entry{}, false
	}
	return n.entries[n.tracklet], true
}

// CenteredCloud returns the selected tracklet's points in the tracklet's
// own frame, or nil without a selection.
func (n *Navigator) CenteredCloud() pointcloud.PointCloud {
	return n.centered
}

// DatasetLabel describes the dataset position, 1-based.
func (n *Navigator) DatasetLabel() string {
	return fmt.Sprintf("Data set: %d of %d [%s]", n.dataset+1, len(n.datasets), n.datasets[n.dataset])
}

// FrameLabel describes the frame position, 1-based.
func (n *Navigator) FrameLabel() string {
	return fmt.Sprintf("Frame: %d of %d", n.frame+1, n.frameCount)
}

// TrackletLabel describes the selected tracklet, 1-based, with its class
// and point count. Without a selection both positions read zero.
func (n *Navigator) TrackletLabel() string {
	if len(n.entries) == 0 {
		return "Tracklet: 0 of 0"
	}
	e := n.entries[n.tracklet]
	return fmt.Sprintf("Tracklet: %d of %d (%q, %d points)",
		n.tracklet+1, len(n.entries), e.Label, e.Cropped.Size())
}
