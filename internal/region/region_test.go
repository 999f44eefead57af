package region

import (
	"testing"

	"github.com/ctessum/sparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmorev/climgrid/internal/grid"
)

// Coordinate spacings typical of a coarse Earth-system model grid.
var (
	testLon = []float64{201.875, 204.375, 206.875, 209.375}
	testLat = []float64{25, 27.5, 30, 32.5}
)

func TestSelect(t *testing.T) {
	tests := []struct {
		name    string
		bounds  Bounds
		wantLon []int
		wantLat []int
	}{
		{
			name:    "inner region",
			bounds:  Bounds{LonMin: 204.2, LonMax: 208.3, LatMin: 25.8, LatMax: 30.4},
			wantLon: []int{1, 2},
			wantLat: []int{1, 2},
		},
		{
			name:    "bounds are inclusive",
			bounds:  Bounds{LonMin: 204.375, LonMax: 204.375, LatMin: 27.5, LatMax: 27.5},
			wantLon: []int{1},
			wantLat: []int{1},
		},
		{
			name:    "whole grid",
			bounds:  Bounds{LonMin: 0, LonMax: 360, LatMin: -90, LatMax: 90},
			wantLon: []int{0, 1, 2, 3},
			wantLat: []int{0, 1, 2, 3},
		},
		{
			// The -180..180 rendering of a 0..360 region matches nothing;
			// the convention mismatch surfaces as an empty selection.
			name:    "wrong longitude convention",
			bounds:  Bounds{LonMin: -155.8, LonMax: -151.7, LatMin: 25.8, LatMax: 30.4},
			wantLon: nil,
			wantLat: []int{1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lonIdx, latIdx := Select(testLon, testLat, tt.bounds)
			assert.Equal(t, tt.wantLon, lonIdx)
			assert.Equal(t, tt.wantLat, latIdx)
		})
	}
}

const fill = -999.0

// testDataset builds a 2-step dataset where every cell holds val, with a
// declared fill value of -999.
func testDataset(t *testing.T, val float64) *grid.Dataset {
	t.Helper()
	d := &grid.Dataset{
		Path:      "test.nc",
		Name:      "tas",
		Lon:       testLon,
		Lat:       testLat,
		Time:      []float64{0, 31},
		DimOrder:  []string{"time", "lat", "lon"},
		Field:     sparse.ZerosDense(2, 4, 4),
		FillValue: fill,
		HasFill:   true,
	}
	for i := range d.Field.Elements {
		d.Field.Elements[i] = val
	}
	require.NoError(t, d.Validate())
	return d
}

func TestAverage(t *testing.T) {
	d := testDataset(t, 10.0)
	d.Field.Set(16.0, 0, 1, 1)

	got, err := Average(d, []int{1, 2}, []int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []float64{11.5, 10.0}, got)
}

// TestAverage_ExcludesFill verifies that a fill-valued cell is treated as
// missing rather than as a valid sample pulling the mean toward the
// sentinel.
func TestAverage_ExcludesFill(t *testing.T) {
	d := testDataset(t, 10.0)
	d.Field.Set(fill, 0, 1, 1)

	got, err := Average(d, []int{1, 2}, []int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []float64{10.0, 10.0}, got)
}

func TestAverage_EmptyRegion(t *testing.T) {
	d := testDataset(t, 10.0)

	lonIdx, latIdx := Select(d.Lon, d.Lat, Bounds{LonMin: 100, LonMax: 110, LatMin: 25.8, LatMax: 30.4})
	require.Empty(t, lonIdx)

	_, err := Average(d, lonIdx, latIdx)
	assert.ErrorIs(t, err, ErrEmptyRegion)
}

func TestAverage_AllMissing(t *testing.T) {
	d := testDataset(t, 10.0)
	for _, j := range []int{1, 2} {
		for _, i := range []int{1, 2} {
			d.Field.Set(fill, 1, j, i)
		}
	}

	_, err := Average(d, []int{1, 2}, []int{1, 2})
	assert.ErrorIs(t, err, ErrAllMissing)
}

// TestAverage_NoDeclaredFill verifies that without a declared fill value
// every finite sample counts.
func TestAverage_NoDeclaredFill(t *testing.T) {
	d := testDataset(t, 10.0)
	d.HasFill = false
	d.Field.Set(fill, 0, 1, 1)

	got, err := Average(d, []int{1}, []int{1})
	require.NoError(t, err)
	assert.Equal(t, []float64{fill, 10.0}, got)
}

// TestAverage_Idempotent verifies Average is a pure function of its inputs.
func TestAverage_Idempotent(t *testing.T) {
	d := testDataset(t, 10.0)
	d.Field.Set(13.0, 0, 2, 2)

	first, err := Average(d, []int{1, 2}, []int{1, 2})
	require.NoError(t, err)
	second, err := Average(d, []int{1, 2}, []int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
