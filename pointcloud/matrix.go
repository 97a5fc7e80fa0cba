package pointcloud

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// CloudMatrixCol names a column of the matrix returned by CloudMatrix.
type CloudMatrixCol string

const (
	// CloudMatrixColX is the x column in the cloud matrix.
	CloudMatrixColX CloudMatrixCol = "x"
	// CloudMatrixColY is the y column in the cloud matrix.
	CloudMatrixColY CloudMatrixCol = "y"
	// CloudMatrixColZ is the z column in the cloud matrix.
	CloudMatrixColZ CloudMatrixCol = "z"
	// CloudMatrixColI is the intensity column in the cloud matrix.
	CloudMatrixColI CloudMatrixCol = "i"
	// CloudMatrixColR is the red color column in the cloud matrix.
	CloudMatrixColR CloudMatrixCol = "r"
	// CloudMatrixColG is the green color column in the cloud matrix.
	CloudMatrixColG CloudMatrixCol = "g"
	// CloudMatrixColB is the blue color column in the cloud matrix.
	CloudMatrixColB CloudMatrixCol = "b"
)

// CloudMatrix uses the metadata of the cloud to build a dense matrix with
// one row per point, along with a header describing the columns. Rows
// follow load order. An empty cloud returns nil.
func CloudMatrix(pc PointCloud) (*mat.Dense, []CloudMatrixCol) {
	if pc.Size() == 0 {
		return nil, nil
	}
	meta := pc.MetaData()
	header := []CloudMatrixCol{CloudMatrixColX, CloudMatrixColY, CloudMatrixColZ}
	pointSize := 3
	if meta.HasIntensity {
		header = append(header, CloudMatrixColI)
		pointSize++
	}
	if meta.HasColor {
		header = append(header, CloudMatrixColR, CloudMatrixColG, CloudMatrixColB)
		pointSize += 3
	}

	matData := make([]float64, 0, pc.Size()*pointSize)
	pc.Iterate(func(p r3.Vector, d Data) bool {
		matData = append(matData, p.X, p.Y, p.Z)
		if meta.HasIntensity {
			intensity := 0.0
			if d != nil && d.HasIntensity() {
				intensity = d.Intensity()
			}
			matData = append(matData, intensity)
		}
		if meta.HasColor {
			red, green, blue := 255, 255, 255
			if d != nil && d.HasColor() {
				r, g, b := d.RGB255()
				red, green, blue = int(r), int(g), int(b)
			}
			matData = append(matData, float64(red), float64(green), float64(blue))
		}
		return true
	})
	return mat.NewDense(pc.Size(), pointSize, matData), header
}
