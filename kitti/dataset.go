package kitti

import (
	"image/color"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/jafrado/kittinav/pointcloud"
	"github.com/jafrado/kittinav/tracklets"
)

// Drive identifies one recording within the configured session.
type Drive struct {
	// Number is the drive number, e.g. 5 for ..._drive_0005_sync.
	Number int
	// Name is the drive's directory name under the date directory.
	Name string
}

// Provider serves recordings from a raw-data directory tree. It implements
// the data access surface the navigation core drives. Like the core, it is
// meant for use from a single goroutine.
type Provider struct {
	conf   Config
	logger golog.Logger

	drives      []Drive
	frameCounts map[int]int
}

// NewProvider returns a provider exposing the configured drives present on
// disk. Configured drives without velodyne data are skipped with a
// warning. An empty drive list discovers the drives on disk instead.
func NewProvider(conf Config, logger golog.Logger) (*Provider, error) {
	if err := conf.Validate(""); err != nil {
		return nil, err
	}

	numbers := conf.Drives
	if len(numbers) == 0 {
		var err error
		numbers, err = discoverDrives(conf)
		if err != nil {
			return nil, err
		}
	}

	p := &Provider{conf: conf, logger: logger, frameCounts: map[int]int{}}
	for _, n := range numbers {
		if _, err := os.Stat(conf.VelodyneDir(n)); err != nil {
			logger.Warnf("drive %04d has no velodyne data, skipping", n)
			continue
		}
		p.drives = append(p.drives, Drive{Number: n, Name: conf.DriveDirName(n)})
	}
	if len(p.drives) == 0 {
		return nil, errors.Errorf("no drives found under %s", filepath.Join(conf.Root, conf.Date))
	}
	return p, nil
}

func discoverDrives(conf Config) ([]int, error) {
	entries, err := os.ReadDir(filepath.Join(conf.Root, conf.Date))
	if err != nil {
		return nil, errors.Wrap(err, "discovering drives")
	}
	prefix := conf.Date + "_drive_"
	const suffix = "_sync"
	var numbers []int
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, prefix), suffix))
		if err != nil {
			continue
		}
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	return numbers, nil
}

// Drives returns the drives the provider exposes, in order.
func (p *Provider) Drives() []Drive {
	return p.drives
}

// DriveIndex returns the dataset index of the given drive number.
func (p *Provider) DriveIndex(number int) (int, error) {
	for i, d := range p.drives {
		if d.Number == number {
			return i, nil
		}
	}
	return 0, errors.Errorf("drive %04d is not available", number)
}

// Datasets returns one label per drive, in navigation order.
func (p *Provider) Datasets() []string {
	labels := make([]string, 0, len(p.drives))
	for _, d := range p.drives {
		labels = append(labels, d.Name)
	}
	return labels
}

func (p *Provider) drive(dataset int) (Drive, error) {
	if dataset < 0 || dataset >= len(p.drives) {
		return Drive{}, errors.Errorf("dataset index %d out of range, have %d drives",
			dataset, len(p.drives))
	}
	return p.drives[dataset], nil
}

// FrameCount returns the number of scans recorded for the dataset.
func (p *Provider) FrameCount(dataset int) (int, error) {
	d, err := p.drive(dataset)
	if err != nil {
		return 0, err
	}
	if n, ok := p.frameCounts[dataset]; ok {
		return n, nil
	}
	entries, err := os.ReadDir(p.conf.VelodyneDir(d.Number))
	if err != nil {
		return 0, errors.Wrapf(err, "counting frames of drive %04d", d.Number)
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".bin" {
			n++
		}
	}
	p.frameCounts[dataset] = n
	return n, nil
}

// FramePointCloud loads the velodyne scan of one frame.
func (p *Provider) FramePointCloud(dataset, frame int) (pointcloud.PointCloud, error) {
	d, err := p.drive(dataset)
	if err != nil {
		return nil, err
	}
	cloud, err := ReadVelodyneFile(p.conf.VelodyneFile(d.Number, frame))
	if err != nil {
		return nil, err
	}
	p.logger.Debugf("drive %04d frame %d: %d points", d.Number, frame, cloud.Size())
	return cloud, nil
}

// FrameImageFile returns the path of the camera image associated with one
// frame. The image itself is never decoded here.
func (p *Provider) FrameImageFile(dataset, frame int) (string, error) {
	d, err := p.drive(dataset)
	if err != nil {
		return "", err
	}
	return p.conf.ImageFile(d.Number, frame), nil
}

// Tracklets loads the dataset's annotations.
func (p *Provider) Tracklets(dataset int) ([]tracklets.Tracklet, error) {
	d, err := p.drive(dataset)
	if err != nil {
		return nil, err
	}
	tks, err := ReadTrackletsFile(p.conf.TrackletFile(d.Number))
	if err != nil {
		return nil, err
	}
	p.logger.Debugf("drive %04d: %d tracklets", d.Number, len(tks))
	return tks, nil
}

// ObjectTypeColor returns the display color for an annotation class.
func (p *Provider) ObjectTypeColor(objectType string) color.NRGBA {
	return ObjectTypeColor(objectType)
}
