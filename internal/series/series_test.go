package series

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAnnualMeans(t *testing.T) {
	tests := []struct {
		name     string
		ts       TimeSeries
		wantYear []int
		wantMean []float64
	}{
		{
			name: "two samples one year",
			ts: TimeSeries{
				Dates:  []time.Time{date(2000, time.January, 15), date(2000, time.July, 15)},
				Values: []float64{1.0, 3.0},
			},
			wantYear: []int{2000},
			wantMean: []float64{2.0},
		},
		{
			name: "years ascending and unique",
			ts: TimeSeries{
				Dates: []time.Time{
					date(1920, time.December, 15),
					date(1921, time.January, 15),
					date(1921, time.December, 15),
					date(1922, time.June, 15),
				},
				Values: []float64{1.0, 2.0, 4.0, 8.0},
			},
			wantYear: []int{1920, 1921, 1922},
			wantMean: []float64{1.0, 3.0, 8.0},
		},
		{
			// A single-sample year yields that sample as the mean.
			name: "single sample",
			ts: TimeSeries{
				Dates:  []time.Time{date(2005, time.March, 1)},
				Values: []float64{5.5},
			},
			wantYear: []int{2005},
			wantMean: []float64{5.5},
		},
		{
			name:     "empty",
			ts:       TimeSeries{},
			wantYear: nil,
			wantMean: []float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnnualMeans(tt.ts)
			assert.Equal(t, tt.wantYear, got.Year)
			assert.Equal(t, tt.wantMean, got.Mean)
		})
	}
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name     string
		a, b     AnnualSeries
		wantYear []int
		wantMean []float64
	}{
		{
			name:     "disjoint runs concatenate in year order",
			a:        AnnualSeries{Year: []int{1920, 1921}, Mean: []float64{1.0, 2.0}},
			b:        AnnualSeries{Year: []int{2006, 2007}, Mean: []float64{3.0, 4.0}},
			wantYear: []int{1920, 1921, 2006, 2007},
			wantMean: []float64{1.0, 2.0, 3.0, 4.0},
		},
		{
			// An overlap year averages the two runs rather than
			// duplicating the year.
			name:     "overlapping year",
			a:        AnnualSeries{Year: []int{2004, 2005}, Mean: []float64{1.0, 2.0}},
			b:        AnnualSeries{Year: []int{2005, 2006}, Mean: []float64{4.0, 8.0}},
			wantYear: []int{2004, 2005, 2006},
			wantMean: []float64{1.0, 3.0, 8.0},
		},
		{
			name:     "interleaved years sort ascending",
			a:        AnnualSeries{Year: []int{2001, 2003}, Mean: []float64{1.0, 3.0}},
			b:        AnnualSeries{Year: []int{2000, 2002}, Mean: []float64{0.0, 2.0}},
			wantYear: []int{2000, 2001, 2002, 2003},
			wantMean: []float64{0.0, 1.0, 2.0, 3.0},
		},
		{
			name:     "empty second run",
			a:        AnnualSeries{Year: []int{2000}, Mean: []float64{1.5}},
			b:        AnnualSeries{},
			wantYear: []int{2000},
			wantMean: []float64{1.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.a, tt.b)
			require.Len(t, got.Mean, len(got.Year))
			assert.Equal(t, tt.wantYear, got.Year)
			assert.Equal(t, tt.wantMean, got.Mean)
		})
	}
}

func TestAnnualSeriesTrend(t *testing.T) {
	s := AnnualSeries{
		Year: []int{2000, 2001, 2002, 2003, 2004},
		Mean: []float64{1.0, 2.0, 3.0, 4.0, 5.0},
	}
	intercept, slope := s.Trend()
	assert.InDelta(t, 1.0, slope, 1e-9)
	assert.InDelta(t, -1999.0, intercept, 1e-6)

	// A declining series gives a negative slope.
	s.Mean = []float64{5.0, 4.0, 3.0, 2.0, 1.0}
	_, slope = s.Trend()
	assert.InDelta(t, -1.0, slope, 1e-9)
}
