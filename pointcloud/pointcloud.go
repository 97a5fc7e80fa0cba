// Package pointcloud defines ordered LiDAR point clouds along with the
// transforms and exporters built on them.
//
// The implementation here is slice backed and preserves sensor load order:
// iteration always visits points in the order they were appended, and every
// derived cloud keeps the relative order of its source.
package pointcloud

import (
	"math"

	"github.com/golang/geo/r3"
)

// MetaData is data about what's stored in the point cloud.
type MetaData struct {
	HasColor     bool
	HasIntensity bool

	MinX, MaxX float64
	MinY, MaxY float64
	MinZ, MaxZ float64

	totalX, totalY, totalZ float64
}

// PointCloud is an ordered container of points. Points are addressed by
// their position in load order, not by coordinate.
type PointCloud interface {
	// Size returns the number of points in the cloud.
	Size() int

	// MetaData returns meta data.
	MetaData() MetaData

	// At returns the point at the given position in load order along with
	// its associated data.
	At(i int) (r3.Vector, Data)

	// Append adds a point after the last one, preserving load order.
	Append(p r3.Vector, d Data)

	// Iterate iterates over all points in load order and calls the given
	// function for each one. If the supplied function returns false,
	// iteration stops.
	Iterate(fn func(p r3.Vector, d Data) bool)
}

// NewMetaData returns a new point cloud metadata with bounds ready for
// merging.
func NewMetaData() MetaData {
	return MetaData{
		MinX: math.MaxFloat64, MaxX: -math.MaxFloat64,
		MinY: math.MaxFloat64, MaxY: -math.MaxFloat64,
		MinZ: math.MaxFloat64, MaxZ: -math.MaxFloat64,
	}
}

// Merge updates the meta data with the new point.
func (meta *MetaData) Merge(v r3.Vector, data Data) {
	if data != nil {
		if data.HasColor() {
			meta.HasColor = true
		}
		if data.HasIntensity() {
			meta.HasIntensity = true
		}
	}

	if v.X > meta.MaxX {
		meta.MaxX = v.X
	}
	if v.Y > meta.MaxY {
		meta.MaxY = v.Y
	}
	if v.Z > meta.MaxZ {
		meta.MaxZ = v.Z
	}

	if v.X < meta.MinX {
		meta.MinX = v.X
	}
	if v.Y < meta.MinY {
		meta.MinY = v.Y
	}
	if v.Z < meta.MinZ {
		meta.MinZ = v.Z
	}

	meta.totalX += v.X
	meta.totalY += v.Y
	meta.totalZ += v.Z
}

// TotalX returns the sum of the X coordinates of all merged points.
func (meta *MetaData) TotalX() float64 {
	return meta.totalX
}

// TotalY returns the sum of the Y coordinates of all merged points.
func (meta *MetaData) TotalY() float64 {
	return meta.totalY
}

// TotalZ returns the sum of the Z coordinates of all merged points.
func (meta *MetaData) TotalZ() float64 {
	return meta.totalZ
}

// CloudCentroid returns the centroid of the cloud. It returns the zero
// vector for an empty cloud.
func CloudCentroid(pc PointCloud) r3.Vector {
	if pc.Size() == 0 {
		return r3.Vector{}
	}
	meta := pc.MetaData()
	n := float64(pc.Size())
	return r3.Vector{
		X: meta.TotalX() / n,
		Y: meta.TotalY() / n,
		Z: meta.TotalZ() / n,
	}
}
