package doy

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "roicli/internal/errors"
	"roicli/internal/shared/testutil"
	"roicli/internal/table"
	"roicli/internal/taf"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// chord is the straight-line distance between two encoded dates.
func chord(a, b time.Time, opts Options) float64 {
	s, c := Encode([]time.Time{a, b}, opts)
	return math.Hypot(s[1]-s[0], c[1]-c[0])
}

func TestDaysInYear(t *testing.T) {
	tests := []struct {
		year int
		want int
	}{
		{2015, 365},
		{2016, 366},
		{1900, 365},
		{2000, 366},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DaysInYear(tt.year), "year %d", tt.year)
	}
}

func TestAngle(t *testing.T) {
	assert.Equal(t, 0.0, Angle(date(2015, 1, 1), Options{}))
	assert.InDelta(t, 2*math.Pi*364/365, Angle(date(2015, 12, 31), Options{}), 1e-12)
	assert.InDelta(t, 2*math.Pi*365/366, Angle(date(2016, 12, 31), Options{}), 1e-12)
	assert.InDelta(t, 2*math.Pi/365, Angle(date(2015, 1, 1), Options{OneBased: true}), 1e-12)
	assert.InDelta(t, 2*math.Pi, Angle(date(2015, 12, 31), Options{OneBased: true}), 1e-12)
}

func TestEncode_FirstDayAtAngleZero(t *testing.T) {
	sin, cos := Encode([]time.Time{date(2016, 1, 1)}, Options{})
	assert.Equal(t, 0.0, sin[0])
	assert.Equal(t, 1.0, cos[0])
}

func TestEncode_SmoothAcrossYearBoundary(t *testing.T) {
	within := chord(date(2015, 6, 10), date(2015, 6, 11), Options{})
	boundary := chord(date(2014, 12, 31), date(2015, 1, 1), Options{})
	assert.InDelta(t, within, boundary, 1e-9)

	// Every adjacent pair in a non-leap year has the same step.
	d := date(2015, 1, 1)
	for i := 0; i < 364; i++ {
		assert.InDelta(t, within, chord(d, d.AddDate(0, 0, 1), Options{}), 1e-9, "day %d", i)
		d = d.AddDate(0, 0, 1)
	}
}

func TestEncode_LeapYearStepIsSmaller(t *testing.T) {
	leap := chord(date(2016, 3, 1), date(2016, 3, 2), Options{})
	common := chord(date(2015, 3, 1), date(2015, 3, 2), Options{})
	assert.Less(t, leap, common)
	assert.InDelta(t, common, leap, 1e-4)
}

func TestEncode_OneBasedVariant(t *testing.T) {
	sin, _ := Encode([]time.Time{date(2015, 1, 1), date(2015, 12, 31)}, Options{OneBased: true})
	assert.Greater(t, sin[0], 0.0)
	assert.InDelta(t, 0.0, sin[1], 1e-12)
}

func TestAppendFeatures(t *testing.T) {
	long, err := taf.ParseColumns(testutil.FixtureTAF(t), taf.DefaultOptions())
	require.NoError(t, err)

	got, err := AppendFeatures(long, taf.TimeLevel, Options{})
	require.NoError(t, err)
	_, m := got.Shape()
	assert.Equal(t, 4, m)
	assert.Equal(t, table.FloatKind, got.Kind())
	assert.Equal(t, SinFeature, got.Columns().Key(2).String())

	want := Angle(date(2015, 11, 23), Options{})
	assert.InDelta(t, math.Sin(want), got.At(0, 2), 1e-12)
	assert.InDelta(t, math.Cos(want), got.At(0, 3), 1e-12)

	_, err = AppendFeatures(long, "ID", Options{})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	_, err = AppendFeatures(long, "nope", Options{})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
