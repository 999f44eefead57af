// Package grid reads gridded climate model output from NetCDF files.
package grid

import (
	"fmt"
	"math"
	"strings"

	"github.com/ctessum/sparse"
)

// Axis identifies one of the three field dimensions.
type Axis int

const (
	AxisLon Axis = iota
	AxisLat
	AxisTime
	axisUnknown
)

// axisKind classifies a dimension name. Climate model files disagree on
// coordinate naming, so the common spellings are all accepted.
func axisKind(dim string) Axis {
	switch strings.ToLower(dim) {
	case "lon", "longitude", "x":
		return AxisLon
	case "lat", "latitude", "y":
		return AxisLat
	case "time", "t":
		return AxisTime
	}
	return axisUnknown
}

// Dataset holds one 2D-over-time field together with its coordinate arrays
// and attribute metadata. A Dataset is assembled once by a Reader and not
// mutated afterwards.
type Dataset struct {
	// Path is the file the dataset was read from.
	Path string
	// Name is the field variable name.
	Name string

	Lon  []float64
	Lat  []float64
	Time []float64

	// TimeUnits is the raw time encoding, e.g. "days since 1920-01-01".
	TimeUnits string

	// Field holds the data in file storage order; DimOrder records which
	// axis each storage dimension corresponds to. The order is recorded
	// from the file, never assumed.
	Field    *sparse.DenseArray
	DimOrder []string

	// FillValue is the missing-data sentinel. HasFill is false when the
	// file defines no fill value; fill exclusion is then disabled.
	FillValue float64
	HasFill   bool

	Units    string
	LongName string

	lonAxis, latAxis, timeAxis int
}

// Validate checks that DimOrder names exactly one longitude, one latitude
// and one time dimension and that the field shape matches the coordinate
// lengths. It must be called before At or SliceAt.
func (d *Dataset) Validate() error {
	if len(d.DimOrder) != 3 {
		return fmt.Errorf("%w: %s: field %s has %d dimensions, want 3",
			ErrDimensionMismatch, d.Path, d.Name, len(d.DimOrder))
	}
	d.lonAxis, d.latAxis, d.timeAxis = -1, -1, -1
	for i, dim := range d.DimOrder {
		switch axisKind(dim) {
		case AxisLon:
			d.lonAxis = i
		case AxisLat:
			d.latAxis = i
		case AxisTime:
			d.timeAxis = i
		default:
			return fmt.Errorf("%w: %s: field %s has unrecognized dimension %q",
				ErrDimensionMismatch, d.Path, d.Name, dim)
		}
	}
	if d.lonAxis < 0 || d.latAxis < 0 || d.timeAxis < 0 {
		return fmt.Errorf("%w: %s: field %s dimensions %v do not include lon, lat and time",
			ErrDimensionMismatch, d.Path, d.Name, d.DimOrder)
	}
	want := [3]int{}
	want[d.lonAxis] = len(d.Lon)
	want[d.latAxis] = len(d.Lat)
	want[d.timeAxis] = len(d.Time)
	if len(d.Field.Shape) != 3 {
		return fmt.Errorf("%w: %s: field %s array has shape %v",
			ErrDimensionMismatch, d.Path, d.Name, d.Field.Shape)
	}
	for i, n := range want {
		if d.Field.Shape[i] != n {
			return fmt.Errorf("%w: %s: field %s dimension %s has length %d, coordinate has length %d",
				ErrDimensionMismatch, d.Path, d.Name, d.DimOrder[i], d.Field.Shape[i], n)
		}
	}
	return nil
}

// At returns the field value at the given time, latitude and longitude
// indices, mapping through the recorded storage order.
func (d *Dataset) At(t, lat, lon int) float64 {
	var idx [3]int
	idx[d.timeAxis] = t
	idx[d.latAxis] = lat
	idx[d.lonAxis] = lon
	return d.Field.Get(idx[0], idx[1], idx[2])
}

// IsFill reports whether v is missing data: either equal to the file's
// fill value or NaN.
func (d *Dataset) IsFill(v float64) bool {
	if math.IsNaN(v) {
		return true
	}
	return d.HasFill && v == d.FillValue
}

// SliceAt returns the spatial slice at time index t with shape
// (len(Lat), len(Lon)), regardless of the file storage order.
func (d *Dataset) SliceAt(t int) (*sparse.DenseArray, error) {
	if t < 0 || t >= len(d.Time) {
		return nil, fmt.Errorf("grid: %s: time index %d out of range [0, %d)", d.Path, t, len(d.Time))
	}
	out := sparse.ZerosDense(len(d.Lat), len(d.Lon))
	for j := range d.Lat {
		for i := range d.Lon {
			out.Set(d.At(t, j, i), j, i)
		}
	}
	return out, nil
}

// Summary returns summary information about the dataset suitable for
// logging.
func (d *Dataset) Summary() []any {
	return []any{
		"field", d.Name,
		"longName", d.LongName,
		"units", d.Units,
		"dims", d.DimOrder,
		"lonCnt", len(d.Lon),
		"latCnt", len(d.Lat),
		"timeCnt", len(d.Time),
		"timeUnits", d.TimeUnits,
		"hasFill", d.HasFill,
	}
}
