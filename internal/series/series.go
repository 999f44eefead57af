// Package series holds regionally averaged time series and their annual
// resampling.
package series

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// TimeSeries is a regionally averaged value per calendar date.
type TimeSeries struct {
	Dates  []time.Time
	Values []float64
}

// AnnualSeries is one mean value per calendar year, years ascending and
// unique.
type AnnualSeries struct {
	Year []int
	Mean []float64
}

// AnnualMeans groups the time series by calendar year and computes the
// per-year arithmetic mean. A year with a single sample yields that sample.
func AnnualMeans(ts TimeSeries) AnnualSeries {
	byYear := make(map[int][]float64)
	var years []int
	for i, d := range ts.Dates {
		y := d.Year()
		if _, ok := byYear[y]; !ok {
			years = append(years, y)
		}
		byYear[y] = append(byYear[y], ts.Values[i])
	}
	sort.Ints(years)
	out := AnnualSeries{
		Year: years,
		Mean: make([]float64, len(years)),
	}
	for i, y := range years {
		out.Mean[i] = stat.Mean(byYear[y], nil)
	}
	return out
}

// Merge combines two annual series into one, years ascending and unique.
// A year present in both, as when a historical and a scenario run overlap,
// contributes the mean of the two values.
func Merge(a, b AnnualSeries) AnnualSeries {
	byYear := make(map[int][]float64)
	var years []int
	for _, s := range []AnnualSeries{a, b} {
		for i, y := range s.Year {
			if _, ok := byYear[y]; !ok {
				years = append(years, y)
			}
			byYear[y] = append(byYear[y], s.Mean[i])
		}
	}
	sort.Ints(years)
	out := AnnualSeries{
		Year: years,
		Mean: make([]float64, len(years)),
	}
	for i, y := range years {
		out.Mean[i] = stat.Mean(byYear[y], nil)
	}
	return out
}

// Trend fits a least-squares line through the annual means and returns its
// intercept and slope, in field units per year.
func (s AnnualSeries) Trend() (intercept, slope float64) {
	xs := make([]float64, len(s.Year))
	for i, y := range s.Year {
		xs[i] = float64(y)
	}
	return stat.LinearRegression(xs, s.Mean, nil, false)
}
