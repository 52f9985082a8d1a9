package exporter

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "roicli/internal/errors"
	"roicli/internal/shared/testutil"
	"roicli/internal/table"
	"roicli/internal/taf"
	"roicli/internal/trf"
)

func fixtureTRF(t *testing.T) *table.Table {
	t.Helper()
	long, err := taf.ParseColumns(testutil.FixtureTAF(t), taf.DefaultOptions())
	require.NoError(t, err)
	spec, err := trf.ParseShiftSpec("m2=-1,m1=0,p1=1")
	require.NoError(t, err)
	tr, err := trf.NewTransformer(spec, "ID")
	require.NoError(t, err)
	out, err := tr.Transform(context.Background(), long)
	require.NoError(t, err)
	return out
}

func TestWriteTable_Layout(t *testing.T) {
	rows, err := table.NewIndex([]string{"time", "ID"}, []table.Key{
		{table.Time(time.Date(2015, 11, 23, 0, 0, 0, 0, time.UTC)), table.String("ID_1")},
	})
	require.NoError(t, err)
	cols, err := table.NewIndex([]string{"feature", "label"}, []table.Key{
		{table.String("B2"), table.String("m1")},
		{table.String("B2"), table.String("p1")},
	})
	require.NoError(t, err)
	tbl, err := table.New(rows, cols, [][]float64{{0.5, math.NaN()}}, table.FloatKind)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, tbl))
	assert.Equal(t, "feature,,B2,B2\nlabel,,m1,p1\ntime,ID,,\n2015-11-23,ID_1,0.5,NA\n", buf.String())
}

func TestWriteTable_RoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		tbl       func(t *testing.T) *table.Table
		rowLevels int
		colLevels int
	}{
		{name: "trf", tbl: fixtureTRF, rowLevels: 2, colLevels: 2},
		{name: "taf", tbl: func(t *testing.T) *table.Table { return testutil.FixtureTAF(t) }, rowLevels: 1, colLevels: 1},
		{
			name: "relative steps",
			tbl: func(t *testing.T) *table.Table {
				long, err := taf.ParseColumns(testutil.FixtureTAF(t), taf.DefaultOptions())
				require.NoError(t, err)
				steps := make([]table.Label, long.Rows().Len())
				for i := range steps {
					steps[i] = table.Int(int64(i/3) - 2)
				}
				out, err := long.InsertRowLevel(1, "reltime", steps)
				require.NoError(t, err)
				return out
			},
			rowLevels: 3,
			colLevels: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := tt.tbl(t)
			var buf bytes.Buffer
			require.NoError(t, WriteTable(&buf, want))

			got, err := ReadTable(&buf, tt.rowLevels, tt.colLevels)
			require.NoError(t, err)
			assert.Equal(t, want.Rows().Names(), got.Rows().Names())
			assert.Equal(t, want.Columns().Names(), got.Columns().Names())
			assert.True(t, want.Equal(got), "round trip changed the table")
		})
	}
}

func TestWriteTable_RoundTripKeepsTextIDs(t *testing.T) {
	day := table.Time(time.Date(2015, 11, 23, 0, 0, 0, 0, time.UTC))
	rows, err := table.NewIndex([]string{"time", "ID"}, []table.Key{
		{day, table.String("001")},
		{day, table.String("1")},
		{day, table.String("+7")},
		{table.String("2015-11-23T12:00:00+02:00"), table.String("ID_1")},
	})
	require.NoError(t, err)
	tbl, err := table.New(rows, table.SingleLevel("feature", table.String("B2")),
		[][]float64{{1}, {2}, {3}, {4}}, table.IntKind)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, tbl))
	got, err := ReadTable(&buf, 2, 1)
	require.NoError(t, err)

	assert.True(t, got.Rows().IsUnique())
	assert.Equal(t, "2015-11-23|001", got.Rows().Key(0).String())
	assert.Equal(t, table.String("001"), got.Rows().Key(0)[1])
	assert.Equal(t, table.String("1"), got.Rows().Key(1)[1])
	assert.True(t, tbl.Equal(got), "round trip changed the table")
}

func TestReadTable_Errors(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		rowLevels int
		colLevels int
		wantErr   error
	}{
		{name: "no levels", text: "a\n", rowLevels: 0, colLevels: 1, wantErr: apperrors.ErrValidation},
		{name: "short header", text: "feature,,B2\n", rowLevels: 2, colLevels: 2, wantErr: apperrors.ErrParsing},
		{name: "bad cell", text: "feature,B2\nID,\nx,abc\n", rowLevels: 1, colLevels: 1, wantErr: apperrors.ErrParsing},
		{name: "ragged", text: "feature,B2\nID,\nx\n", rowLevels: 1, colLevels: 1, wantErr: apperrors.ErrParsing},
		{name: "duplicate rows", text: "feature,B2\nID,\n1,1\n1,2\n", rowLevels: 1, colLevels: 1, wantErr: apperrors.ErrNonUniqueKey},
		{name: "duplicate columns", text: "feature,B2,B2\nID,,\n1,1,2\n", rowLevels: 1, colLevels: 1, wantErr: apperrors.ErrNonUniqueKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTable(strings.NewReader(tt.text), tt.rowLevels, tt.colLevels)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestParseLabel(t *testing.T) {
	assert.Equal(t, table.Int(-2), parseLabel("-2"))
	assert.Equal(t, table.String("007"), parseLabel("007"))
	assert.Equal(t, table.String("+3"), parseLabel("+3"))
	assert.Equal(t, table.String("2016-01-01T14:00:00+02:00"), parseLabel("2016-01-01T14:00:00+02:00"))
	assert.Equal(t, table.String("ID_1"), parseLabel("ID_1"))
	assert.Equal(t, table.Time(time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)), parseLabel("2016-01-01"))
	assert.Equal(t, table.Time(time.Date(2016, 1, 1, 12, 0, 0, 0, time.UTC)), parseLabel("2016-01-01T12:00:00Z"))
}
