package taf

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "roicli/internal/errors"
	"roicli/internal/shared/testutil"
	"roicli/internal/table"
)

func TestJulianDay(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		noon  bool
		want  time.Time
		isErr bool
	}{
		{"noon corrected", "2457350.0000000000", true, time.Date(2015, 11, 23, 0, 0, 0, 0, time.UTC), false},
		{"astronomical", "2457350.0", false, time.Date(2015, 11, 23, 12, 0, 0, 0, time.UTC), false},
		{"fractional day", "2457633.9", true, time.Date(2016, 9, 1, 21, 36, 0, 0, time.UTC), false},
		{"unix epoch", "2440588", true, time.Unix(0, 0).UTC(), false},
		{"not a number", "abc", true, time.Time{}, true},
		{"out of range", "99999999999", true, time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := JulianDay(tt.text, tt.noon)
			if tt.isErr {
				assert.True(t, errors.Is(err, apperrors.ErrParsing))
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestToJulianDay(t *testing.T) {
	for _, noon := range []bool{true, false} {
		instant, err := JulianDay("2457362.25", noon)
		require.NoError(t, err)
		assert.Equal(t, "2457362.25", ToJulianDay(instant, noon).String())
	}
}

func TestSplitColumnName(t *testing.T) {
	tests := []struct {
		name        string
		column      string
		wantFeature string
		wantSuffix  string
		wantErr     bool
	}{
		{"simple", "Feature_1_2457350.0", "Feature_1", "2457350.0", false},
		{"many underscores", "B_MEAN_RAW_2457633.9", "B_MEAN_RAW", "2457633.9", false},
		{"no underscore", "Feature", "", "", true},
		{"trailing underscore", "Feature_", "", "", true},
		{"leading underscore only", "_2457350", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feature, suffix, err := SplitColumnName(tt.column)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFeature, feature)
			assert.Equal(t, tt.wantSuffix, suffix)
		})
	}
}

func TestParseColumns_Layout(t *testing.T) {
	taf := testutil.FixtureTAF(t)

	got, err := ParseColumns(taf, DefaultOptions())
	require.NoError(t, err)

	n, m := got.Shape()
	assert.Equal(t, 15, n)
	assert.Equal(t, 2, m)
	assert.Equal(t, []string{TimeLevel, "ID"}, got.Rows().Names())
	assert.Equal(t, []string{FeatureLevel}, got.Columns().Names())
	assert.Equal(t, table.IntKind, got.Kind())

	// Rows are sorted by time, then id.
	assert.Equal(t, "2015-11-23|ID_1", got.Rows().Key(0).String())
	assert.Equal(t, "2015-11-23|ID_5", got.Rows().Key(1).String())
	assert.Equal(t, "2015-11-23|ID_7", got.Rows().Key(2).String())

	dates := testutil.FixtureDates()
	for step, date := range dates {
		for _, id := range testutil.FixtureIDs {
			for feature := 1; feature <= 2; feature++ {
				v, ok := got.Lookup(
					table.Key{table.Time(date), table.String(id)},
					table.Key{table.String(fmt.Sprintf("Feature_%d", feature))})
				require.True(t, ok)
				assert.Equal(t, testutil.FixtureValue(id, feature, step), v)
			}
		}
	}
}

func TestParseColumns_DoesNotMutateInput(t *testing.T) {
	taf := testutil.FixtureTAF(t)
	before := taf.Copy()

	_, err := ParseColumns(taf, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, taf.Equal(before))
}

func TestParseColumns_DefaultIDLevel(t *testing.T) {
	rows := table.SingleLevel("", table.String("a"), table.String("b"))
	cols := table.SingleLevel("", table.String("x_2457350"), table.String("x_2457362"))
	taf, err := table.New(rows, cols, [][]float64{{1, 2}, {3, 4}}, table.IntKind)
	require.NoError(t, err)

	got, err := ParseColumns(taf, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{TimeLevel, DefaultIDLevel}, got.Rows().Names())
}

func TestParseColumns_CollidingTimestamps(t *testing.T) {
	rows := table.SingleLevel("ID", table.String("a"))
	cols := table.SingleLevel("", table.String("f_2457350.0"), table.String("f_2457350.00"))
	taf, err := table.New(rows, cols, [][]float64{{1, 2}}, table.IntKind)
	require.NoError(t, err)

	_, err = ParseColumns(taf, DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNonUniqueKey))
}

func TestParseColumns_DuplicateIDs(t *testing.T) {
	rows := table.SingleLevel("ID", table.String("a"), table.String("a"))
	cols := table.SingleLevel("", table.String("f_2457350"))
	taf, err := table.New(rows, cols, [][]float64{{1}, {2}}, table.IntKind)
	require.NoError(t, err)

	_, err = ParseColumns(taf, DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNonUniqueKey))
	assert.Contains(t, err.Error(), "time is not unique for each feature and id")
}

func TestParseColumns_BadColumn(t *testing.T) {
	rows := table.SingleLevel("ID", table.String("a"))
	cols := table.SingleLevel("", table.String("f_x"))
	taf, err := table.New(rows, cols, [][]float64{{1}}, table.IntKind)
	require.NoError(t, err)

	_, err = ParseColumns(taf, DefaultOptions())
	assert.True(t, errors.Is(err, apperrors.ErrParsing))
}

func TestParseColumns_NoNoonCorrection(t *testing.T) {
	got, err := ParseColumns(testutil.FixtureTAF(t), Options{NoonCorrection: false})
	require.NoError(t, err)
	first := got.Rows().Key(0)[0].AsTime()
	assert.Equal(t, 12, first.Hour())
}

func TestWideAndFlatten(t *testing.T) {
	taf := testutil.FixtureTAF(t)
	long, err := ParseColumns(taf, DefaultOptions())
	require.NoError(t, err)

	wide, err := Wide(long, "ID")
	require.NoError(t, err)
	n, m := wide.Shape()
	assert.Equal(t, 5, n)
	assert.Equal(t, 6, m)
	assert.Equal(t, []string{"ID", FeatureLevel}, wide.Columns().Names())
	assert.Equal(t, "ID_1|Feature_1", wide.Columns().Key(0).String())

	flat, err := Flatten(long, "ID", DefaultOptions())
	require.NoError(t, err)
	back, err := ParseColumns(flat, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, back.Equal(long))
}
