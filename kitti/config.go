// Package kitti reads the on-disk layout of KITTI raw recordings: one
// directory per drive holding per-frame velodyne scans and camera images,
// plus a tracklet annotation file.
//
// The expected layout under Root is the standard raw-data one:
//
//	<root>/<date>/<date>_drive_<NNNN>_sync/velodyne_points/data/<frame>.bin
//	<root>/<date>/<date>_drive_<NNNN>_sync/image_<CC>/data/<frame>.png
//	<root>/<date>/<date>_drive_<NNNN>_sync/tracklet_labels.xml
package kitti

import (
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"
)

// DefaultDate is the recording session most annotated drives ship under.
const DefaultDate = "2011_09_26"

// DefaultDrives lists the 2011_09_26 drives published with tracklet
// annotations.
var DefaultDrives = []int{
	1, 2, 5, 9, 11, 13, 14, 15, 17, 18, 19, 20, 22, 23, 27, 28, 29, 32,
	35, 36, 39, 46, 48, 51, 52, 56, 57, 59, 60, 61, 64, 70, 79, 84, 86,
	87, 91, 93,
}

// Config locates a set of raw recordings on disk.
type Config struct {
	// Root is the directory holding the per-date recording directories.
	Root string `json:"root"`
	// Date selects the recording session, e.g. "2011_09_26".
	Date string `json:"date"`
	// Drives are the drive numbers to expose, in order. When empty, the
	// provider discovers the drives present on disk.
	Drives []int `json:"drives,omitempty"`
	// Camera is the image stream referenced per frame; 2 is the left
	// color camera.
	Camera int `json:"camera,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	if conf.Root == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "root")
	}
	if conf.Date == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "date")
	}
	if conf.Camera < 0 || conf.Camera > 3 {
		return goutils.NewConfigValidationError(path,
			errors.Errorf("camera must be between 0 and 3, got %d", conf.Camera))
	}
	return nil
}

// DefaultConfig returns a config for the standard raw-data layout rooted
// at the given directory.
func DefaultConfig(root string) Config {
	return Config{
		Root:   root,
		Date:   DefaultDate,
		Drives: append([]int(nil), DefaultDrives...),
		Camera: 2,
	}
}

// DriveDirName returns the directory name of a drive within the date
// directory.
func (conf *Config) DriveDirName(drive int) string {
	return fmt.Sprintf("%s_drive_%04d_sync", conf.Date, drive)
}

func (conf *Config) driveDir(drive int) string {
	return filepath.Join(conf.Root, conf.Date, conf.DriveDirName(drive))
}

// VelodyneDir returns the directory holding a drive's per-frame scans.
func (conf *Config) VelodyneDir(drive int) string {
	return filepath.Join(conf.driveDir(drive), "velodyne_points", "data")
}

// VelodyneFile returns the path of one frame's scan within a drive.
func (conf *Config) VelodyneFile(drive, frame int) string {
	return filepath.Join(conf.VelodyneDir(drive), fmt.Sprintf("%010d.bin", frame))
}

// ImageFile returns the path of one frame's camera image within a drive.
func (conf *Config) ImageFile(drive, frame int) string {
	return filepath.Join(conf.driveDir(drive),
		fmt.Sprintf("image_%02d", conf.Camera), "data", fmt.Sprintf("%010d.png", frame))
}

// TrackletFile returns the path of a drive's annotation file.
func (conf *Config) TrackletFile(drive int) string {
	return filepath.Join(conf.driveDir(drive), "tracklet_labels.xml")
}
