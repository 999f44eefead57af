package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/cmorev/climgrid/internal/caltime"
	"github.com/cmorev/climgrid/internal/export"
	"github.com/cmorev/climgrid/internal/pipeline"
	"github.com/cmorev/climgrid/internal/region"
	"github.com/cmorev/climgrid/internal/series"
)

var (
	histFile   = flag.String("histFile", "", "path to the historical run in NetCDF format")
	scenFile   = flag.String("scenFile", "", "optional path to a future-scenario run in NetCDF format")
	varName    = flag.String("var", "tas", "name of the 2D-over-time field to extract")
	lonMin     = flag.Float64("lonMin", 204.2, "western bound, in the longitude convention of the input files")
	lonMax     = flag.Float64("lonMax", 208.3, "eastern bound, in the longitude convention of the input files")
	latMin     = flag.Float64("latMin", 25.8, "southern bound")
	latMax     = flag.Float64("latMax", 30.4, "northern bound")
	calendar   = flag.String("calendar", "noleap", "model calendar: standard or noleap")
	sliceIndex = flag.Int("sliceIndex", 0, "time index of the spatial slice to extract")
	format     = flag.String("format", "csv", "output format: csv or influx (InfluxDB line protocol)")
	outDir     = flag.String("outDir", ".", "directory to write output files to")
)

func main() {
	flag.Parse()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cal, err := caltime.ParseCalendar(*calendar)
	if err != nil {
		logger.Error("Bad calendar flag", "err", err)
		os.Exit(1)
	}
	enc, err := export.NewEncoder(*format, *varName)
	if err != nil {
		logger.Error("Could not create an encoder", "err", err)
		os.Exit(1)
	}
	bounds := region.Bounds{
		LonMin: *lonMin, LonMax: *lonMax,
		LatMin: *latMin, LatMax: *latMax,
	}

	type run struct {
		name string
		path string
	}
	runs := []run{{name: "historical", path: *histFile}}
	if *scenFile != "" {
		runs = append(runs, run{name: "scenario", path: *scenFile})
	}

	// Pipeline runs are independent and read-only, so the historical and
	// scenario files are processed concurrently.
	results := make([]*pipeline.Result, len(runs))
	errs := make([]error, len(runs))
	var wg sync.WaitGroup
	for i, rn := range runs {
		wg.Add(1)
		go func(i int, rn run) {
			defer wg.Done()
			results[i], errs[i] = pipeline.Run(logger.With("run", rn.name), pipeline.Config{
				Path:       rn.path,
				Variable:   *varName,
				Bounds:     bounds,
				Calendar:   cal,
				SliceIndex: *sliceIndex,
			})
		}(i, rn)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			logger.Error("Extraction failed", "run", runs[i].name, "err", err)
			os.Exit(1)
		}
	}

	for i, rn := range runs {
		if err := writeResult(enc, rn.name, results[i]); err != nil {
			logger.Error("Could not write results", "run", rn.name, "err", err)
			os.Exit(1)
		}
	}

	// One comparison series across both runs, with its linear trend.
	annual := results[0].Annual
	if len(results) == 2 {
		annual = series.Merge(results[0].Annual, results[1].Annual)
		if err := writeAnnual(enc, "combined", annual); err != nil {
			logger.Error("Could not write combined series", "err", err)
			os.Exit(1)
		}
	}
	intercept, slope := annual.Trend()
	logger.Info("annual trend", "intercept", intercept, "slopePerYear", slope)
}

// fileExt maps output formats to file extensions.
var fileExt = map[string]string{
	"csv":    "csv",
	"influx": "lp",
}

func writeResult(enc *export.Encoder, name string, res *pipeline.Result) error {
	if err := writeAnnual(enc, name, res.Annual); err != nil {
		return err
	}
	if err := writeTo(name+"_series", func(f *os.File) error {
		return enc.WriteSeries(f, res.Series)
	}); err != nil {
		return err
	}
	return writeTo(name+"_slice", func(f *os.File) error {
		return enc.WriteSlice(f, res.Dataset, res.Slice)
	})
}

func writeAnnual(enc *export.Encoder, name string, s series.AnnualSeries) error {
	return writeTo(name+"_annual", func(f *os.File) error {
		return enc.WriteAnnual(f, s)
	})
}

func writeTo(name string, write func(*os.File) error) error {
	path := filepath.Join(*outDir, fmt.Sprintf("%s.%s", name, fileExt[*format]))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
