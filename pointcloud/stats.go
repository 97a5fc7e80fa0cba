package pointcloud

import (
	"github.com/golang/geo/r3"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// CloudStats summarizes a cloud for display: point count, centroid, and
// the distribution of sensor return intensities.
type CloudStats struct {
	Size   int
	Center r3.Vector

	MinIntensity    float64
	MaxIntensity    float64
	MeanIntensity   float64
	StdDevIntensity float64
}

// StatsFromCloud computes summary statistics over the cloud. The intensity
// fields stay zero when the cloud is empty or carries no intensities.
func StatsFromCloud(pc PointCloud) (CloudStats, error) {
	cs := CloudStats{Size: pc.Size(), Center: CloudCentroid(pc)}
	if pc.Size() == 0 || !pc.MetaData().HasIntensity {
		return cs, nil
	}

	intensities := make([]float64, 0, pc.Size())
	pc.Iterate(func(p r3.Vector, d Data) bool {
		if d != nil && d.HasIntensity() {
			intensities = append(intensities, d.Intensity())
		}
		return true
	})

	minI, err := stats.Min(intensities)
	maxI, err2 := stats.Max(intensities)
	meanI, err3 := stats.Mean(intensities)
	sdI, err4 := stats.StandardDeviation(intensities)
	if err := multierr.Combine(err, err2, err3, err4); err != nil {
		return cs, errors.Wrap(err, "intensity statistics")
	}

	cs.MinIntensity = minI
	cs.MaxIntensity = maxI
	cs.MeanIntensity = meanI
	cs.StdDevIntensity = sdI
	return cs, nil
}
