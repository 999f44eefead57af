// Package export renders extraction results as text for downstream
// consumers, e.g. a plotting tool or a metrics import. Results are written
// to local sinks only.
package export

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/ctessum/sparse"

	"github.com/cmorev/climgrid/internal/grid"
	"github.com/cmorev/climgrid/internal/series"
)

const measurementRE = "^[a-zA-Z0-9_]+$"

// Encoder converts series and slices into one of the supported text
// formats: "csv" or "influx" (InfluxDB line protocol).
type Encoder struct {
	measurement string
	annualRow   annualRowFunc
	sampleRow   sampleRowFunc
	cellRow     cellRowFunc
	header      headerFunc
}

// NewEncoder creates an encoder for the given format. The measurement name
// prefixes every value in the influx format and names the CSV value column.
func NewEncoder(format, measurement string) (*Encoder, error) {
	matches, err := regexp.Match(measurementRE, []byte(measurement))
	if err != nil {
		return nil, err
	}
	if !matches {
		return nil, fmt.Errorf("export: measurement %q does not match %q regular expression", measurement, measurementRE)
	}
	annualRow := annualRowFuncs[format]
	sampleRow := sampleRowFuncs[format]
	cellRow := cellRowFuncs[format]
	if annualRow == nil || sampleRow == nil || cellRow == nil {
		return nil, fmt.Errorf("export: format %q is not supported", format)
	}
	return &Encoder{
		measurement: measurement,
		annualRow:   annualRow,
		sampleRow:   sampleRow,
		cellRow:     cellRow,
		header:      headerFuncs[format],
	}, nil
}

// WriteAnnual writes one row per calendar year.
func (e *Encoder) WriteAnnual(w io.Writer, s series.AnnualSeries) error {
	var sb strings.Builder
	if e.header != nil {
		e.header(&sb, "year,"+e.measurement)
	}
	for i, y := range s.Year {
		e.annualRow(&sb, y, s.Mean[i], e.measurement)
		sb.WriteString("\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteSeries writes one row per time sample.
func (e *Encoder) WriteSeries(w io.Writer, ts series.TimeSeries) error {
	var sb strings.Builder
	if e.header != nil {
		e.header(&sb, "date,"+e.measurement)
	}
	for i, d := range ts.Dates {
		e.sampleRow(&sb, d, ts.Values[i], e.measurement)
		sb.WriteString("\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteSlice writes one row per grid cell of a spatial slice with shape
// (len(Lat), len(Lon)). Fill-valued cells are skipped.
func (e *Encoder) WriteSlice(w io.Writer, d *grid.Dataset, slice *sparse.DenseArray) error {
	var sb strings.Builder
	if e.header != nil {
		e.header(&sb, "lon,lat,"+e.measurement)
	}
	for j, la := range d.Lat {
		for i, lo := range d.Lon {
			v := slice.Get(j, i)
			if d.IsFill(v) {
				continue
			}
			e.cellRow(&sb, lo, la, v, e.measurement)
			sb.WriteString("\n")
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

type (
	headerFunc    func(*strings.Builder, string)
	annualRowFunc func(sb *strings.Builder, year int, mean float64, measurement string)
	sampleRowFunc func(sb *strings.Builder, date time.Time, value float64, measurement string)
	cellRowFunc   func(sb *strings.Builder, lon, lat, value float64, measurement string)
)

var headerFuncs = map[string]headerFunc{
	"csv": func(sb *strings.Builder, header string) {
		sb.WriteString(header)
		sb.WriteString("\n")
	},
}

var annualRowFuncs = map[string]annualRowFunc{
	"csv":    annualToCSV,
	"influx": annualToInfluxDB,
}

var sampleRowFuncs = map[string]sampleRowFunc{
	"csv":    sampleToCSV,
	"influx": sampleToInfluxDB,
}

var cellRowFuncs = map[string]cellRowFunc{
	"csv":    cellToCSV,
	"influx": cellToInfluxDB,
}

func annualToCSV(sb *strings.Builder, year int, mean float64, _ string) {
	fmt.Fprintf(sb, "%d,%g", year, mean)
}

func annualToInfluxDB(sb *strings.Builder, year int, mean float64, measurement string) {
	ts := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()
	fmt.Fprintf(sb, "%s_annual mean=%g %d", measurement, mean, ts)
}

func sampleToCSV(sb *strings.Builder, date time.Time, value float64, _ string) {
	fmt.Fprintf(sb, "%s,%g", date.Format("2006-01-02"), value)
}

func sampleToInfluxDB(sb *strings.Builder, date time.Time, value float64, measurement string) {
	fmt.Fprintf(sb, "%s value=%g %d", measurement, value, date.Unix())
}

func cellToCSV(sb *strings.Builder, lon, lat, value float64, _ string) {
	fmt.Fprintf(sb, "%g,%g,%g", lon, lat, value)
}

func cellToInfluxDB(sb *strings.Builder, lon, lat, value float64, measurement string) {
	fmt.Fprintf(sb, "%s_slice,lo=%.3f,la=%.3f value=%g", measurement, lon, lat, value)
}
