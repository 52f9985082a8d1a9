// Package doy encodes calendar dates as points on the unit circle so that
// the last day of a year and the first day of the next are neighbours.
package doy

import (
	"fmt"
	"math"
	"time"

	apperrors "roicli/internal/errors"
	"roicli/internal/table"
)

// Feature names added by AppendFeatures.
const (
	SinFeature = "doy_sin"
	CosFeature = "doy_cos"
)

// Options select the angle origin.
type Options struct {
	// OneBased maps day d to 2π·d/n instead of 2π·(d-1)/n, so January 1st
	// is not at angle zero.
	OneBased bool
}

// DaysInYear returns 366 for leap years and 365 otherwise.
func DaysInYear(year int) int {
	if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
		return 366
	}
	return 365
}

// Angle returns the position of date's day of year in radians.
func Angle(date time.Time, opts Options) float64 {
	day := float64(date.YearDay())
	if !opts.OneBased {
		day--
	}
	return 2 * math.Pi * day / float64(DaysInYear(date.Year()))
}

// Encode returns sin and cos of the day-of-year angle of every date.
func Encode(dates []time.Time, opts Options) (sin, cos []float64) {
	sin = make([]float64, len(dates))
	cos = make([]float64, len(dates))
	for i, d := range dates {
		sin[i], cos[i] = math.Sincos(Angle(d, opts))
	}
	return sin, cos
}

// AppendFeatures adds doy_sin and doy_cos columns computed from the row
// level timeLevel. The table must have a single column level.
func AppendFeatures(t *table.Table, timeLevel string, opts Options) (*table.Table, error) {
	if t.Columns().Levels() != 1 {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("day of year features need a single column level, got %d", t.Columns().Levels()))
	}
	labels, err := t.Rows().LevelValues(timeLevel)
	if err != nil {
		return nil, err
	}
	dates := make([]time.Time, len(labels))
	for i, l := range labels {
		if l.Kind() != table.TimeLabel {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("row level %q holds %s labels, want time", timeLevel, l.Kind()))
		}
		dates[i] = l.AsTime()
	}

	sin, cos := Encode(dates, opts)
	out, err := t.WithColumn(table.Key{table.String(SinFeature)}, sin)
	if err != nil {
		return nil, err
	}
	return out.WithColumn(table.Key{table.String(CosFeature)}, cos)
}
