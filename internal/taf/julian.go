package taf

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	apperrors "roicli/internal/errors"
)

var (
	// unixEpochJD is the Julian day of 1970-01-01T00:00:00Z.
	unixEpochJD = decimal.RequireFromString("2440587.5")
	halfDay     = decimal.RequireFromString("0.5")
	nanosPerDay = decimal.NewFromInt(int64(24 * time.Hour))
	maxNanos    = decimal.NewFromInt(math.MaxInt64)
)

// JulianDay converts a Julian day number given as decimal text into a UTC
// instant. The text is parsed exactly. With noonCorrection the half day by
// which the Julian epoch is offset from civil midnight is subtracted, so
// 2457350.0 decodes to 2015-11-23T00:00:00Z instead of 12:00.
func JulianDay(text string, noonCorrection bool) (time.Time, error) {
	jd, err := decimal.NewFromString(text)
	if err != nil {
		return time.Time{}, apperrors.NewParsingError(fmt.Sprintf("invalid julian day %q", text), err)
	}
	days := jd.Sub(unixEpochJD)
	if noonCorrection {
		days = days.Sub(halfDay)
	}
	nanos := days.Mul(nanosPerDay).Round(0)
	if nanos.Abs().GreaterThan(maxNanos) {
		return time.Time{}, apperrors.NewParsingError(fmt.Sprintf("julian day %q is out of range", text), nil)
	}
	return time.Unix(0, nanos.IntPart()).UTC(), nil
}

// ToJulianDay is the inverse of JulianDay.
func ToJulianDay(t time.Time, noonCorrection bool) decimal.Decimal {
	days := decimal.NewFromInt(t.UnixNano()).Div(nanosPerDay)
	jd := days.Add(unixEpochJD)
	if noonCorrection {
		jd = jd.Add(halfDay)
	}
	return jd
}
