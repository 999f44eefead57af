// Package pipeline runs the end-to-end extraction for one input file:
// read, normalize the time axis, regionally average, resample annually.
package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/ctessum/sparse"

	"github.com/cmorev/climgrid/internal/caltime"
	"github.com/cmorev/climgrid/internal/grid"
	"github.com/cmorev/climgrid/internal/region"
	"github.com/cmorev/climgrid/internal/series"
)

// Config are the caller-supplied parameters for one run. Bounds must use
// the same longitude convention as the input file.
type Config struct {
	// Path of the NetCDF input file.
	Path string
	// Variable is the name of the 2D-over-time field to extract.
	Variable string
	// Bounds select the region to average over.
	Bounds region.Bounds
	// Calendar is the date arithmetic policy of the source model. It must
	// be supplied by the caller; the wrong calendar silently shifts dates.
	Calendar caltime.Calendar
	// SliceIndex is the time index of the spatial slice to extract.
	SliceIndex int
}

// Result is the output of one run. All values are created once and not
// mutated afterwards.
type Result struct {
	Dataset *grid.Dataset
	Series  series.TimeSeries
	Annual  series.AnnualSeries
	// Slice is the spatial slice at Config.SliceIndex, shaped (lat, lon).
	Slice *sparse.DenseArray
}

// Run executes the pipeline for one input file. Runs are fully independent
// of each other and may execute concurrently. Any error is terminal for
// the run; there is no retry.
func Run(logger *slog.Logger, cfg Config) (*Result, error) {
	r, err := grid.Open(cfg.Path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	d, err := r.Dataset(cfg.Variable)
	if err != nil {
		return nil, err
	}
	logger.Info("dataset", d.Summary()...)

	unit, origin, err := caltime.ParseUnits(d.TimeUnits)
	if err != nil {
		return nil, fmt.Errorf("%s: time axis: %w", cfg.Path, err)
	}
	dates, err := caltime.ToDates(d.Time, origin, unit, cfg.Calendar)
	if err != nil {
		return nil, fmt.Errorf("%s: time axis: %w", cfg.Path, err)
	}

	lonIdx, latIdx := region.Select(d.Lon, d.Lat, cfg.Bounds)
	logger.Info("region selection",
		"bounds", cfg.Bounds.String(),
		"lonCnt", len(lonIdx),
		"latCnt", len(latIdx),
	)
	values, err := region.Average(d, lonIdx, latIdx)
	if err != nil {
		return nil, err
	}

	ts := series.TimeSeries{Dates: dates, Values: values}
	annual := series.AnnualMeans(ts)

	slice, err := d.SliceAt(cfg.SliceIndex)
	if err != nil {
		return nil, err
	}

	return &Result{
		Dataset: d,
		Series:  ts,
		Annual:  annual,
		Slice:   slice,
	}, nil
}
