package pointcloud

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// PCDType is the format of a pcd file.
type PCDType int

const (
	// PCDAscii ascii format for pcd.
	PCDAscii PCDType = 0
	// PCDBinary binary format for pcd.
	PCDBinary PCDType = 1
)

// ToPCD writes out a point cloud to a PCD file of the specified type.
func ToPCD(cloud PointCloud, out io.Writer, outputType PCDType) error {
	var err error

	_, err = fmt.Fprintf(out, "VERSION .7\n")
	if err != nil {
		return err
	}

	meta := cloud.MetaData()
	switch {
	case meta.HasIntensity && meta.HasColor:
		_, err = fmt.Fprintf(out, "FIELDS x y z intensity rgb\n"+
			"SIZE 4 4 4 4 4\n"+
			"TYPE F F F F I\n"+
			"COUNT 1 1 1 1 1\n")
	case meta.HasIntensity:
		_, err = fmt.Fprintf(out, "FIELDS x y z intensity\n"+
			"SIZE 4 4 4 4\n"+
			"TYPE F F F F\n"+
			"COUNT 1 1 1 1\n")
	case meta.HasColor:
		_, err = fmt.Fprintf(out, "FIELDS x y z rgb\n"+
			"SIZE 4 4 4 4\n"+
			"TYPE F F F I\n"+
			"COUNT 1 1 1 1\n")
	default:
		_, err = fmt.Fprintf(out, "FIELDS x y z\n"+
			"SIZE 4 4 4\n"+
			"TYPE F F F\n"+
			"COUNT 1 1 1\n")
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "WIDTH %d\n"+
		"HEIGHT %d\n"+
		"VIEWPOINT 0 0 0 1 0 0 0\n"+
		"POINTS %d\n",
		cloud.Size(),
		1,
		cloud.Size())
	if err != nil {
		return err
	}

	switch outputType {
	case PCDBinary:
		_, err = fmt.Fprintf(out, "DATA binary\n")
	case PCDAscii:
		_, err = fmt.Fprintf(out, "DATA ascii\n")
	default:
		return errors.Errorf("unknown pcd type %d", outputType)
	}
	if err != nil {
		return err
	}
	return writePCDData(cloud, out, outputType)
}

func writePCDData(cloud PointCloud, out io.Writer, pcdtype PCDType) error {
	meta := cloud.MetaData()
	var lastErr error
	cloud.Iterate(func(pos r3.Vector, d Data) bool {
		fields := []float64{pos.X, pos.Y, pos.Z}
		if meta.HasIntensity {
			intensity := 0.0
			if d != nil && d.HasIntensity() {
				intensity = d.Intensity()
			}
			fields = append(fields, intensity)
		}

		var err error
		switch pcdtype {
		case PCDBinary:
			buf := make([]byte, 0, 4*(len(fields)+1))
			for _, f := range fields {
				buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(f)))
			}
			if meta.HasColor {
				buf = binary.LittleEndian.AppendUint32(buf, uint32(colorToPCDInt(d)))
			}
			_, err = out.Write(buf)
		case PCDAscii:
			for i, f := range fields {
				if i > 0 {
					if _, err = fmt.Fprint(out, " "); err != nil {
						break
					}
				}
				if _, err = fmt.Fprintf(out, "%f", f); err != nil {
					break
				}
			}
			if err == nil && meta.HasColor {
				_, err = fmt.Fprintf(out, " %d", colorToPCDInt(d))
			}
			if err == nil {
				_, err = fmt.Fprint(out, "\n")
			}
		}
		if err != nil {
			lastErr = err
			return false
		}
		return true
	})
	return lastErr
}

// colorToPCDInt packs a color into the single integer field PCD uses.
func colorToPCDInt(pt Data) int {
	if pt == nil || !pt.HasColor() {
		return 0xFFFFFF
	}
	r, g, b := pt.RGB255()
	x := 0
	x |= (int(r) << 16)
	x |= (int(g) << 8)
	x |= (int(b) << 0)
	return x
}
