package kitti

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/jafrado/kittinav/pointcloud"
)

// velodyne scans are flat streams of little-endian float32 records:
// x, y, z, reflectance.
const velodyneRecordSize = 16

// ReadVelodyneFile loads one velodyne scan into an ordered point cloud,
// reflectance carried as intensity.
func ReadVelodyneFile(fn string) (_ pointcloud.PointCloud, err error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()

	cloud, err := readVelodyne(bufio.NewReader(f))
	if err != nil {
		return nil, errors.Wrapf(err, "reading velodyne scan %s", fn)
	}
	return cloud, nil
}

func readVelodyne(r io.Reader) (pointcloud.PointCloud, error) {
	cloud := pointcloud.New()
	buf := make([]byte, velodyneRecordSize)
	for {
		_, err := io.ReadFull(r, buf)
		if errors.Is(err, io.EOF) {
			return cloud, nil
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, errors.New("scan truncated mid record")
		}
		if err != nil {
			return nil, err
		}
		p := r3.Vector{
			X: float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[0:4]))),
			Y: float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[4:8]))),
			Z: float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[8:12]))),
		}
		intensity := float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[12:16])))
		cloud.Append(p, pointcloud.NewIntensityData(intensity))
	}
}
