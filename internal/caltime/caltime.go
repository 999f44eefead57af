// Package caltime converts model time encodings of the form
// "<unit> since <YYYY>-<MM>-<DD>" into calendar dates.
package caltime

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Sentinel errors for time axis normalization.
var (
	// ErrUnitsParse indicates the time units string does not follow the
	// "<unit> since <date>" convention.
	ErrUnitsParse = errors.New("caltime: cannot parse time units")

	// ErrNotMonotonic indicates the raw time values are decreasing, which
	// would produce an out-of-order calendar axis.
	ErrNotMonotonic = errors.New("caltime: time values are not monotonic non-decreasing")
)

// Unit is the step size of the raw time values.
type Unit int

const (
	UnitDay Unit = iota
	UnitHour
)

func (u Unit) String() string {
	if u == UnitHour {
		return "hour"
	}
	return "day"
}

// Calendar is the date arithmetic policy of the source model. Earth-system
// models use fixed calendars that omit leap days; converting with the wrong
// calendar silently shifts every date, so the calendar is always a required
// caller input and never inferred from the file.
type Calendar int

const (
	// Standard is the Gregorian calendar, leap years observed.
	Standard Calendar = iota
	// NoLeap is the 365-day model calendar: no year contains Feb 29.
	NoLeap
)

func (c Calendar) String() string {
	if c == NoLeap {
		return "noleap"
	}
	return "standard"
}

// ParseCalendar converts a calendar name, accepting the spellings used in
// CF metadata.
func ParseCalendar(s string) (Calendar, error) {
	switch strings.ToLower(s) {
	case "standard", "gregorian", "proleptic_gregorian":
		return Standard, nil
	case "noleap", "no_leap", "365_day":
		return NoLeap, nil
	}
	return Standard, fmt.Errorf("caltime: unknown calendar %q", s)
}

// Origin is the reference date of a time encoding.
type Origin struct {
	Year  int
	Month int
	Day   int
}

// ParseUnits parses a time units string such as
// "days since 1920-01-01" or "hours since 1900-01-01 00:00:00.0".
// Any time-of-day suffix after the date token is ignored.
func ParseUnits(s string) (Unit, Origin, error) {
	fields := strings.Fields(s)
	if len(fields) < 3 || strings.ToLower(fields[1]) != "since" {
		return 0, Origin{}, fmt.Errorf("%w: %q", ErrUnitsParse, s)
	}

	var unit Unit
	switch strings.ToLower(fields[0]) {
	case "day", "days":
		unit = UnitDay
	case "hour", "hours", "hr", "hrs":
		unit = UnitHour
	default:
		return 0, Origin{}, fmt.Errorf("%w: %q: unknown unit %q", ErrUnitsParse, s, fields[0])
	}

	date := fields[2]
	// Tolerate an ISO "T" separator between date and time of day.
	if i := strings.IndexAny(date, "Tt"); i > 0 {
		date = date[:i]
	}
	parts := strings.Split(date, "-")
	if len(parts) != 3 {
		return 0, Origin{}, fmt.Errorf("%w: %q: malformed date %q", ErrUnitsParse, s, fields[2])
	}
	var o Origin
	var err error
	if o.Year, err = strconv.Atoi(parts[0]); err != nil {
		return 0, Origin{}, fmt.Errorf("%w: %q: year: %v", ErrUnitsParse, s, err)
	}
	if o.Month, err = strconv.Atoi(parts[1]); err != nil {
		return 0, Origin{}, fmt.Errorf("%w: %q: month: %v", ErrUnitsParse, s, err)
	}
	if o.Day, err = strconv.Atoi(parts[2]); err != nil {
		return 0, Origin{}, fmt.Errorf("%w: %q: day: %v", ErrUnitsParse, s, err)
	}
	if o.Month < 1 || o.Month > 12 || o.Day < 1 || o.Day > 31 {
		return 0, Origin{}, fmt.Errorf("%w: %q: date %q out of range", ErrUnitsParse, s, fields[2])
	}
	return unit, o, nil
}

// ToDates converts raw time values into UTC calendar dates by adding each
// value, in the given unit, to the origin under the given calendar. The
// result has one date per raw value and is monotonic non-decreasing; raw
// values that go backwards are rejected.
func ToDates(raw []float64, o Origin, unit Unit, cal Calendar) ([]time.Time, error) {
	dates := make([]time.Time, len(raw))
	for i, v := range raw {
		if i > 0 && v < raw[i-1] {
			return nil, fmt.Errorf("%w: value %g at index %d follows %g", ErrNotMonotonic, v, i, raw[i-1])
		}
		days := v
		if unit == UnitHour {
			days = v / 24
		}
		dates[i] = addDays(o, days, cal)
	}
	return dates, nil
}

func addDays(o Origin, days float64, cal Calendar) time.Time {
	whole := math.Floor(days)
	secs := math.Round((days - whole) * 86400)
	if secs >= 86400 {
		whole++
		secs = 0
	}

	if cal == NoLeap {
		return noLeapDate(o, int(whole), secs)
	}
	t := time.Date(o.Year, time.Month(o.Month), o.Day, 0, 0, 0, 0, time.UTC)
	return t.AddDate(0, 0, int(whole)).Add(time.Duration(secs) * time.Second)
}

// Cumulative days before the start of each month in a 365-day year.
var cumDaysNoLeap = [13]int{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334, 365}

// noLeapDate performs date arithmetic in the 365-day calendar.
// Feb 29 can never be produced.
func noLeapDate(o Origin, days int, secs float64) time.Time {
	cum := cumDaysNoLeap
	// Day count since the start of the origin year, zero-based.
	total := cum[o.Month-1] + (o.Day - 1) + days
	year := o.Year + total/365
	rem := total % 365
	if rem < 0 {
		rem += 365
		year--
	}
	month := 1
	for rem >= cum[month] {
		month++
	}
	day := rem - cum[month-1] + 1
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Add(time.Duration(secs) * time.Second)
}
