package navigation

import (
	"fmt"
	"testing"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/jafrado/kittinav/pointcloud"
	"github.com/jafrado/kittinav/tracklets"
)

// fakeProvider serves canned recordings and counts scan loads so tests
// can observe reload and no-op behavior.
type fakeProvider struct {
	datasets    []string
	frames      [][]pointcloud.PointCloud
	annotations [][]tracklets.Tracklet

	failFrameCount bool
	failCloud      bool
	failImage      bool
	failTracklets  bool

	cloudLoads int
}

func (f *fakeProvider) Datasets() []string {
	return f.datasets
}

func (f *fakeProvider) FrameCount(dataset int) (int, error) {
	if f.failFrameCount {
		return 0, errors.New("frame count unavailable")
	}
	return len(f.frames[dataset]), nil
}

func (f *fakeProvider) FramePointCloud(dataset, frame int) (pointcloud.PointCloud, error) {
	if f.failCloud {
		return nil, errors.New("scan unavailable")
	}
	if frame < 0 || frame >= len(f.frames[dataset]) {
		return nil, errors.Errorf("no frame %d", frame)
	}
	f.cloudLoads++
	return f.frames[dataset][frame], nil
}

func (f *fakeProvider) FrameImageFile(dataset, frame int) (string, error) {
	if f.failImage {
		return "", errors.New("image unavailable")
	}
	return fmt.Sprintf("image-%d-%d.png", dataset, frame), nil
}

func (f *fakeProvider) Tracklets(dataset int) ([]tracklets.Tracklet, error) {
	if f.failTracklets {
		return nil, errors.New("annotations unavailable")
	}
	return f.annotations[dataset], nil
}

func cloudOf(pts ...r3.Vector) pointcloud.PointCloud {
	cloud := pointcloud.New()
	for _, p := range pts {
		cloud.Append(p, pointcloud.NewBasicData())
	}
	return cloud
}

// testScene builds two datasets. The first has three frames, a car
// active from frame 1 on, and a pedestrian active throughout; the second
// has two frames and no annotations at all.
func testScene() *fakeProvider {
	car := tracklets.Tracklet{
		ObjectType: "Car", H: 2, W: 2, L: 4, FirstFrame: 1,
		Poses: []tracklets.Pose{
			{Tx: 10, Ty: 0, Tz: 0},
			{Tx: 10, Ty: 0, Tz: 0},
		},
	}
	ped := tracklets.Tracklet{
		ObjectType: "Pedestrian", H: 1.8, W: 0.6, L: 0.8, FirstFrame: 0,
		Poses: []tracklets.Pose{
			{Tx: -5, Ty: 5},
			{Tx: -5, Ty: 5},
			{Tx: -5, Ty: 5},
		},
	}

	ground := r3.Vector{X: 0, Y: 0, Z: 0}
	onPed := r3.Vector{X: -5, Y: 5, Z: 1}
	inCar := r3.Vector{X: 10, Y: 0, Z: 1}
	nearCar := r3.Vector{X: 9, Y: 0.5, Z: 0.5}
	far := r3.Vector{X: 20, Y: 20, Z: 0}

	return &fakeProvider{
		datasets: []string{"drive-a", "drive-b"},
		frames: [][]pointcloud.PointCloud{
			{
				cloudOf(ground, onPed, far),
				cloudOf(ground, onPed, inCar, nearCar, far),
				cloudOf(ground, onPed, inCar, nearCar, far, r3.Vector{X: 0.5}),
			},
			{
				cloudOf(r3.Vector{X: 1, Y: 1, Z: 1}),
				cloudOf(r3.Vector{X: 2, Y: 2, Z: 2}),
			},
		},
		annotations: [][]tracklets.Tracklet{
			{car, ped},
			{},
		},
	}
}

func TestNewNavigator(t *testing.T) {
	logger := golog.NewTestLogger(t)
	prov := testScene()
	nav, err := NewNavigator(prov, logger)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, nav.DatasetRange(), test.ShouldResemble, Range{Min: 0, Max: 1, Current: 0})
	test.That(t, nav.FrameRange(), test.ShouldResemble, Range{Min: 0, Max: 2, Current: 0})
	test.That(t, nav.TrackletRange(), test.ShouldResemble, Range{Min: 0, Max: 0, Current: 0})
	test.That(t, nav.DatasetName(), test.ShouldEqual, "drive-a")
	test.That(t, nav.Cloud().Size(), test.ShouldEqual, 3)
	test.That(t, nav.ImageFile(), test.ShouldEqual, "image-0-0.png")
	test.That(t, nav.Tracklets(), test.ShouldHaveLength, 2)

	// only the pedestrian exists at frame 0
	test.That(t, nav.Entries(), test.ShouldHaveLength, 1)
	e, ok := nav.Selected()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, e.Label, test.ShouldEqual, "Pedestrian")
	test.That(t, e.Tracklet, test.ShouldEqual, 1)
}

func TestNewNavigatorAt(t *testing.T) {
	logger := golog.NewTestLogger(t)
	nav, err := NewNavigatorAt(testScene(), 1, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, nav.DatasetRange().Current, test.ShouldEqual, 1)

	// a start index out of range clamps like any request
	nav, err = NewNavigatorAt(testScene(), 99, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, nav.DatasetRange().Current, test.ShouldEqual, 1)

	_, err = NewNavigator(&fakeProvider{}, logger)
	test.That(t, err, test.ShouldNotBeNil)

	prov := testScene()
	prov.failFrameCount = true
	_, err = NewNavigator(prov, logger)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestRequestFrameClamps(t *testing.T) {
	logger := golog.NewTestLogger(t)
	nav, err := NewNavigator(testScene(), logger)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, nav.RequestFrame(-5), test.ShouldBeNil)
	test.That(t, nav.FrameRange().Current, test.ShouldEqual, 0)

	test.That(t, nav.RequestFrame(9999), test.ShouldBeNil)
	test.That(t, nav.FrameRange().Current, test.ShouldEqual, 2)
	test.That(t, nav.Cloud().Size(), test.ShouldEqual, 6)

	test.That(t, nav.RequestFrame(1), test.ShouldBeNil)
	test.That(t, nav.FrameRange().Current, test.ShouldEqual, 1)
	test.That(t, nav.ImageFile(), test.ShouldEqual, "image-0-1.png")
}

func TestRequestFrameNoOpAndReload(t *testing.T) {
	logger := golog.NewTestLogger(t)
	prov := testScene()
	nav, err := NewNavigator(prov, logger)
	test.That(t, err, test.ShouldBeNil)

	// requesting the current position does not touch the provider
	before := nav.Cloud()
	loads := prov.cloudLoads
	test.That(t, nav.RequestFrame(0), test.ShouldBeNil)
	test.That(t, nav.Cloud() == before, test.ShouldBeTrue)
	test.That(t, prov.cloudLoads, test.ShouldEqual, loads)

	// an out of range request is not a no-op even when it clamps back
	// to the current position
	test.That(t, nav.RequestFrame(9999), test.ShouldBeNil)
	loads = prov.cloudLoads
	test.That(t, nav.RequestFrame(12345), test.ShouldBeNil)
	test.That(t, nav.FrameRange().Current, test.ShouldEqual, 2)
	test.That(t, prov.cloudLoads, test.ShouldEqual, loads+1)
}

func TestRequestDatasetRetainsPositions(t *testing.T) {
	logger := golog.NewTestLogger(t)
	nav, err := NewNavigator(testScene(), logger)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, nav.RequestFrame(2), test.ShouldBeNil)
	test.That(t, nav.RequestTracklet(1), test.ShouldBeNil)

	// the two-frame dataset clamps the retained frame position
	test.That(t, nav.RequestDataset(1), test.ShouldBeNil)
	test.That(t, nav.DatasetRange().Current, test.ShouldEqual, 1)
	test.That(t, nav.FrameRange().Current, test.ShouldEqual, 1)
	test.That(t, nav.TrackletRange(), test.ShouldResemble, Range{Min: 0, Max: -1, Current: 0})

	test.That(t, nav.RequestDataset(0), test.ShouldBeNil)
	test.That(t, nav.FrameRange().Current, test.ShouldEqual, 1)
	test.That(t, nav.Entries(), test.ShouldHaveLength, 2)
	test.That(t, nav.TrackletRange().Current, test.ShouldEqual, 0)
}

func TestRequestDatasetClampReloads(t *testing.T) {
	logger := golog.NewTestLogger(t)
	prov := testScene()
	nav, err := NewNavigatorAt(prov, 1, logger)
	test.That(t, err, test.ShouldBeNil)

	loads := prov.cloudLoads
	test.That(t, nav.RequestDataset(1), test.ShouldBeNil)
	test.That(t, prov.cloudLoads, test.ShouldEqual, loads)

	test.That(t, nav.RequestDataset(99), test.ShouldBeNil)
	test.That(t, nav.DatasetRange().Current, test.ShouldEqual, 1)
	test.That(t, prov.cloudLoads, test.ShouldEqual, loads+1)
}

func TestEntriesAtFrame(t *testing.T) {
	logger := golog.NewTestLogger(t)
	nav, err := NewNavigator(testScene(), logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, nav.RequestFrame(1), test.ShouldBeNil)

	entries := nav.Entries()
	test.That(t, entries, test.ShouldHaveLength, 2)

	car := entries[0]
	test.That(t, car.Tracklet, test.ShouldEqual, 0)
	test.That(t, car.Label, test.ShouldEqual, "Car")
	test.That(t, car.Box.Pose().Point(), test.ShouldResemble, r3.Vector{X: 10, Y: 0, Z: 1})
	test.That(t, car.Box.Dims(), test.ShouldResemble, r3.Vector{X: 4, Y: 2, Z: 2})

	// cropped points keep scan order and hover above the scene
	test.That(t, car.Cropped.Size(), test.ShouldEqual, 2)
	p, _ := car.Cropped.At(0)
	test.That(t, p, test.ShouldResemble, r3.Vector{X: 10, Y: 0, Z: 1 + tracklets.HoverOffset})
	p, _ = car.Cropped.At(1)
	test.That(t, p, test.ShouldResemble, r3.Vector{X: 9, Y: 0.5, Z: 0.5 + tracklets.HoverOffset})

	ped := entries[1]
	test.That(t, ped.Cropped.Size(), test.ShouldEqual, 1)
	p, _ = ped.Cropped.At(0)
	test.That(t, p, test.ShouldResemble, r3.Vector{X: -5, Y: 5, Z: 1 + tracklets.HoverOffset})
}

func TestCenteredCloud(t *testing.T) {
	logger := golog.NewTestLogger(t)
	nav, err := NewNavigator(testScene(), logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, nav.RequestFrame(1), test.ShouldBeNil)

	// car selected: its points land around the origin, unlifted
	centered := nav.CenteredCloud()
	test.That(t, centered, test.ShouldNotBeNil)
	test.That(t, centered.Size(), test.ShouldEqual, 2)
	p, _ := centered.At(0)
	test.That(t, p, test.ShouldResemble, r3.Vector{X: 0, Y: 0, Z: 0})
	p, _ = centered.At(1)
	test.That(t, p, test.ShouldResemble, r3.Vector{X: -1, Y: 0.5, Z: -0.5})

	test.That(t, nav.RequestTracklet(1), test.ShouldBeNil)
	e, ok := nav.Selected()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, e.Label, test.ShouldEqual, "Pedestrian")
	centered = nav.CenteredCloud()
	test.That(t, centered.Size(), test.ShouldEqual, 1)
	p, _ = centered.At(0)
	test.That(t, p.X, test.ShouldAlmostEqual, 0)
	test.That(t, p.Y, test.ShouldAlmostEqual, 0)
	test.That(t, p.Z, test.ShouldAlmostEqual, 0.1)

	// selection requests clamp like the other axes
	test.That(t, nav.RequestTracklet(99), test.ShouldBeNil)
	test.That(t, nav.TrackletRange().Current, test.ShouldEqual, 1)
	test.That(t, nav.RequestTracklet(-3), test.ShouldBeNil)
	test.That(t, nav.TrackletRange().Current, test.ShouldEqual, 0)
}

func TestEmptySelection(t *testing.T) {
	logger := golog.NewTestLogger(t)
	nav, err := NewNavigatorAt(testScene(), 1, logger)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, nav.Entries(), test.ShouldHaveLength, 0)
	_, ok := nav.Selected()
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, nav.CenteredCloud(), test.ShouldBeNil)
	test.That(t, nav.TrackletRange(), test.ShouldResemble, Range{Min: 0, Max: -1, Current: 0})
	test.That(t, nav.TrackletLabel(), test.ShouldEqual, "Tracklet: 0 of 0")

	// tracklet requests stay pinned at zero with nothing to select
	test.That(t, nav.RequestTracklet(5), test.ShouldBeNil)
	test.That(t, nav.TrackletRange().Current, test.ShouldEqual, 0)
	test.That(t, nav.CenteredCloud(), test.ShouldBeNil)
}

func TestFailedLoadRetainsState(t *testing.T) {
	logger := golog.NewTestLogger(t)
	prov := testScene()
	nav, err := NewNavigator(prov, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, nav.RequestFrame(1), test.ShouldBeNil)
	test.That(t, nav.RequestTracklet(1), test.ShouldBeNil)

	cloud := nav.Cloud()
	centered := nav.CenteredCloud()

	prov.failCloud = true
	err = nav.RequestFrame(2)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "scan unavailable")

	test.That(t, nav.FrameRange().Current, test.ShouldEqual, 1)
	test.That(t, nav.Cloud() == cloud, test.ShouldBeTrue)
	test.That(t, nav.CenteredCloud() == centered, test.ShouldBeTrue)
	test.That(t, nav.Entries(), test.ShouldHaveLength, 2)
	test.That(t, nav.TrackletRange().Current, test.ShouldEqual, 1)

	prov.failCloud = false
	prov.failTracklets = true
	err = nav.RequestDataset(1)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, nav.DatasetRange().Current, test.ShouldEqual, 0)
	test.That(t, nav.FrameRange().Current, test.ShouldEqual, 1)

	prov.failImage = true
	prov.failTracklets = false
	err = nav.RequestFrame(2)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, nav.FrameRange().Current, test.ShouldEqual, 1)

	// the same request succeeds once the provider recovers
	prov.failImage = false
	test.That(t, nav.RequestFrame(2), test.ShouldBeNil)
	test.That(t, nav.FrameRange().Current, test.ShouldEqual, 2)
}

func TestNextPrevFrame(t *testing.T) {
	logger := golog.NewTestLogger(t)
	nav, err := NewNavigator(testScene(), logger)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, nav.NextFrame(), test.ShouldBeNil)
	test.That(t, nav.FrameRange().Current, test.ShouldEqual, 1)
	test.That(t, nav.NextFrame(), test.ShouldBeNil)
	test.That(t, nav.NextFrame(), test.ShouldBeNil)
	test.That(t, nav.FrameRange().Current, test.ShouldEqual, 2)

	test.That(t, nav.PrevFrame(), test.ShouldBeNil)
	test.That(t, nav.PrevFrame(), test.ShouldBeNil)
	test.That(t, nav.PrevFrame(), test.ShouldBeNil)
	test.That(t, nav.FrameRange().Current, test.ShouldEqual, 0)
}

func TestStatusLabels(t *testing.T) {
	logger := golog.NewTestLogger(t)
	nav, err := NewNavigator(testScene(), logger)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, nav.DatasetLabel(), test.ShouldEqual, "Data set: 1 of 2 [drive-a]")
	test.That(t, nav.FrameLabel(), test.ShouldEqual, "Frame: 1 of 3")
	test.That(t, nav.TrackletLabel(), test.ShouldEqual, `Tracklet: 1 of 1 ("Pedestrian", 1 points)`)

	test.That(t, nav.RequestFrame(1), test.ShouldBeNil)
	test.That(t, nav.FrameLabel(), test.ShouldEqual, "Frame: 2 of 3")
	test.That(t, nav.TrackletLabel(), test.ShouldEqual, `Tracklet: 1 of 2 ("Car", 2 points)`)
}
