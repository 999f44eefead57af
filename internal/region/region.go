// Package region selects spatial subsets of a gridded field and reduces
// them to regionally averaged time series.
package region

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/cmorev/climgrid/internal/grid"
)

// Sentinel errors for regional aggregation.
var (
	// ErrEmptyRegion indicates the bounds matched no grid coordinates.
	ErrEmptyRegion = errors.New("region: no coordinates within bounds")

	// ErrAllMissing indicates every selected cell at some time step is
	// fill-valued.
	ErrAllMissing = errors.New("region: all selected cells are missing")
)

// Bounds are inclusive coordinate bounds. They must use the same longitude
// convention as the dataset (0-360 vs -180..180); a mismatched convention
// silently yields an empty or wrong selection, which Average then rejects.
type Bounds struct {
	LonMin, LonMax float64
	LatMin, LatMax float64
}

func (b Bounds) String() string {
	return fmt.Sprintf("lon [%g, %g] lat [%g, %g]", b.LonMin, b.LonMax, b.LatMin, b.LatMax)
}

// Select returns the longitude and latitude indices whose coordinates fall
// within the inclusive bounds. Either index set may be empty; callers that
// go on to average must treat that as an error, which Average enforces.
func Select(lon, lat []float64, b Bounds) (lonIdx, latIdx []int) {
	for i, v := range lon {
		if v >= b.LonMin && v <= b.LonMax {
			lonIdx = append(lonIdx, i)
		}
	}
	for j, v := range lat {
		if v >= b.LatMin && v <= b.LatMax {
			latIdx = append(latIdx, j)
		}
	}
	return lonIdx, latIdx
}

// Average reduces the dataset field to one value per time step: the
// arithmetic mean over the selected indices, excluding fill-valued cells.
// Treating fill cells as valid zeros would silently bias the mean, so they
// are never counted.
func Average(d *grid.Dataset, lonIdx, latIdx []int) ([]float64, error) {
	if len(lonIdx) == 0 || len(latIdx) == 0 {
		return nil, fmt.Errorf("%w: %s: field %s", ErrEmptyRegion, d.Path, d.Name)
	}
	out := make([]float64, len(d.Time))
	cell := make([]float64, 0, len(lonIdx)*len(latIdx))
	for t := range d.Time {
		cell = cell[:0]
		for _, j := range latIdx {
			for _, i := range lonIdx {
				v := d.At(t, j, i)
				if d.IsFill(v) {
					continue
				}
				cell = append(cell, v)
			}
		}
		if len(cell) == 0 {
			return nil, fmt.Errorf("%w: %s: field %s at time index %d", ErrAllMissing, d.Path, d.Name, t)
		}
		out[t] = stat.Mean(cell, nil)
	}
	return out, nil
}
