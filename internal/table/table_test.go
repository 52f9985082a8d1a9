package table

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "roicli/internal/errors"
)

func day(d int) Label {
	return Time(time.Date(2015, time.November, 23+d, 0, 0, 0, 0, time.UTC))
}

// longTable builds rows (time, id) x columns feature.
func longTable(t *testing.T) *Table {
	t.Helper()
	var keys []Key
	var cells [][]float64
	for step := 0; step < 3; step++ {
		for _, id := range []string{"a", "b"} {
			keys = append(keys, Key{day(12 * step), String(id)})
			base := 10.0
			if id == "b" {
				base = 20
			}
			cells = append(cells, []float64{base + float64(step), base + float64(step) + 100})
		}
	}
	rows, err := NewIndex([]string{"time", "id"}, keys)
	require.NoError(t, err)
	cols := SingleLevel("feature", String("f1"), String("f2"))
	tbl, err := New(rows, cols, cells, IntKind)
	require.NoError(t, err)
	return tbl
}

func TestLabel_Compare(t *testing.T) {
	tests := []struct {
		name string
		a, b Label
		want int
	}{
		{"ints", Int(1), Int(2), -1},
		{"equal strings", String("x"), String("x"), 0},
		{"times", day(12), day(0), 1},
		{"int before time", Int(99), day(0), -1},
		{"time before string", day(0), String(""), -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Compare(tt.b))
		})
	}
}

func TestLabel_String(t *testing.T) {
	assert.Equal(t, "2015-11-23", day(0).String())
	assert.Equal(t, "2015-11-23T12:00:00Z", Time(time.Date(2015, 11, 23, 12, 0, 0, 0, time.UTC)).String())
	assert.Equal(t, "-3", Int(-3).String())
	assert.Equal(t, "Feature_1|m1", Key{String("Feature_1"), String("m1")}.String())
}

func TestNewIndex_Validation(t *testing.T) {
	_, err := NewIndex([]string{"a", "a"}, nil)
	assert.True(t, errors.Is(err, apperrors.ErrNonUniqueKey))

	_, err = NewIndex([]string{"a", "b"}, []Key{{Int(1)}})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestIndex_Duplicates(t *testing.T) {
	ix := SingleLevel("id", String("b"), String("a"), String("b"), String("c"), String("a"))
	dups := ix.Duplicates()
	require.Len(t, dups, 2)
	assert.Equal(t, "a", dups[0].String())
	assert.Equal(t, "b", dups[1].String())
	assert.False(t, ix.IsUnique())
	assert.True(t, SingleLevel("id", String("a"), String("b")).IsUnique())
}

func TestIndex_DistinctAndReorder(t *testing.T) {
	tbl := longTable(t)
	ids, err := tbl.Rows().Distinct("id")
	require.NoError(t, err)
	assert.Equal(t, []Label{String("a"), String("b")}, ids)

	_, err = tbl.Rows().Distinct("nope")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	re, err := tbl.Rows().Reorder("id", "time")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "time"}, re.Names())
	assert.Equal(t, "a|2015-11-23", re.Key(0).String())

	_, err = tbl.Rows().Reorder("id")
	assert.Error(t, err)
}

func TestKind_DistinctFromLabelConstructors(t *testing.T) {
	assert.Equal(t, "int", IntKind.String())
	assert.Equal(t, "float", FloatKind.String())
	assert.Equal(t, IntLabel, Int(3).Kind())

	tbl, err := New(SingleLevel("id", Int(1)), SingleLevel("f", String("x")), [][]float64{{2}}, IntKind)
	require.NoError(t, err)
	assert.Equal(t, IntKind, tbl.Kind())
}

func TestNew_Validation(t *testing.T) {
	rows := SingleLevel("id", String("a"))
	cols := SingleLevel("f", String("x"))

	_, err := New(rows, cols, [][]float64{{1}, {2}}, FloatKind)
	assert.Error(t, err)
	_, err = New(rows, cols, [][]float64{{1, 2}}, FloatKind)
	assert.Error(t, err)
	_, err = New(rows, cols, [][]float64{{1.5}}, IntKind)
	assert.Error(t, err)
	_, err = New(rows, cols, [][]float64{{math.NaN()}}, IntKind)
	assert.Error(t, err)
}

func TestTable_CopyIsIndependent(t *testing.T) {
	tbl := longTable(t)
	cp := tbl.Copy()
	cp.set(0, 0, -1)
	assert.Equal(t, 10.0, tbl.At(0, 0))
	assert.False(t, tbl.Equal(cp))
}

func TestTable_EqualTreatsNaNAsEqual(t *testing.T) {
	rows := SingleLevel("id", String("a"))
	cols := SingleLevel("f", String("x"), String("y"))
	a, err := New(rows, cols, [][]float64{{math.NaN(), 1}}, FloatKind)
	require.NoError(t, err)
	b, err := New(rows, cols, [][]float64{{math.NaN(), 1}}, FloatKind)
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
}

func TestTable_UnstackStackRoundTrip(t *testing.T) {
	tbl := longTable(t)

	wide, err := tbl.Unstack("id")
	require.NoError(t, err)
	r, c := wide.Shape()
	assert.Equal(t, 3, r)
	assert.Equal(t, 4, c)
	assert.Equal(t, []string{"feature", "id"}, wide.Columns().Names())
	assert.Equal(t, []string{"time"}, wide.Rows().Names())

	v, ok := wide.Lookup(Key{day(12)}, Key{String("f2"), String("b")})
	require.True(t, ok)
	assert.Equal(t, 121.0, v)
	assert.Equal(t, IntKind, wide.Kind())

	back, err := wide.Stack("id")
	require.NoError(t, err)
	assert.True(t, back.Equal(tbl.SortAxes()))
}

func TestTable_StackFillsMissingCombinations(t *testing.T) {
	rows := SingleLevel("id", String("a"), String("b"))
	cols, err := NewIndex([]string{"feature", "time"}, []Key{
		{String("f"), day(0)},
		{String("f"), day(12)},
		{String("g"), day(12)},
	})
	require.NoError(t, err)
	tbl, err := New(rows, cols, [][]float64{{1, 2, 3}, {4, 5, 6}}, IntKind)
	require.NoError(t, err)

	long, err := tbl.Stack("time")
	require.NoError(t, err)
	n, m := long.Shape()
	assert.Equal(t, 4, n)
	assert.Equal(t, 2, m)
	assert.Equal(t, FloatKind, long.Kind())

	v, ok := long.Lookup(Key{String("a"), day(0)}, Key{String("g")})
	require.True(t, ok)
	assert.True(t, math.IsNaN(v))
}

func TestTable_StackErrors(t *testing.T) {
	tbl := longTable(t)
	_, err := tbl.Stack("feature")
	assert.True(t, errors.Is(err, apperrors.ErrValidation), "only column level")
	_, err = tbl.Stack("missing")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	rows, err := NewIndex([]string{"time", "id"}, []Key{{day(0), String("a")}, {day(0), String("a")}})
	require.NoError(t, err)
	dup, err := New(rows, SingleLevel("feature", String("f")), [][]float64{{1}, {2}}, IntKind)
	require.NoError(t, err)
	_, err = dup.Unstack("id")
	assert.True(t, errors.Is(err, apperrors.ErrNonUniqueKey))
}

func TestTable_Shift(t *testing.T) {
	rows := SingleLevel("time", day(0), day(12), day(24))
	cols := SingleLevel("feature", String("x"), String("keep"))
	tbl, err := New(rows, cols, [][]float64{{1, 7}, {2, 8}, {3, 9}}, IntKind)
	require.NoError(t, err)

	tests := []struct {
		name string
		n    int
		want []float64
	}{
		{"forward", 1, []float64{math.NaN(), 1, 2}},
		{"backward", -1, []float64{2, 3, math.NaN()}},
		{"beyond length", 5, []float64{math.NaN(), math.NaN(), math.NaN()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tbl.Shift(tt.n)
			assert.Equal(t, FloatKind, got.Kind())
			col := got.Column(0)
			for i, w := range tt.want {
				if math.IsNaN(w) {
					assert.True(t, math.IsNaN(col[i]), "row %d", i)
				} else {
					assert.Equal(t, w, col[i], "row %d", i)
				}
			}
		})
	}

	zero := tbl.Shift(0)
	assert.True(t, zero.Equal(tbl))
	assert.Equal(t, IntKind, zero.Kind())

	masked := tbl.ShiftMasked(1, func(k Key) bool { return k[0].AsString() == "keep" })
	assert.Equal(t, []float64{7, 8, 9}, masked.Column(1))
	assert.True(t, math.IsNaN(masked.At(0, 0)))
}

func TestConcat_AlignsColumns(t *testing.T) {
	a, err := New(SingleLevel("id", String("a")), SingleLevel("f", String("x")), [][]float64{{1}}, IntKind)
	require.NoError(t, err)
	b, err := New(SingleLevel("id", String("b")), SingleLevel("f", String("y"), String("x")), [][]float64{{2, 3}}, IntKind)
	require.NoError(t, err)

	got, err := Concat(a, b)
	require.NoError(t, err)
	assert.Equal(t, "x", got.Columns().Key(0).String())
	assert.Equal(t, "y", got.Columns().Key(1).String())
	assert.Equal(t, FloatKind, got.Kind())
	assert.Equal(t, 3.0, got.At(1, 0))
	assert.True(t, math.IsNaN(got.At(0, 1)))

	c, err := New(SingleLevel("other", String("c")), SingleLevel("f", String("x")), [][]float64{{1}}, IntKind)
	require.NoError(t, err)
	_, err = Concat(a, c)
	assert.Error(t, err)

	_, err = Concat()
	assert.Error(t, err)
}

func TestTable_AppendRowLevelAndReindex(t *testing.T) {
	tbl := longTable(t)
	tagged, err := tbl.AppendRowLevel("trf_label", String("m1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"time", "id", "trf_label"}, tagged.Rows().Names())
	assert.Equal(t, []string{"time", "id"}, tbl.Rows().Names())

	ref, err := NewIndex([]string{"time", "id"}, []Key{
		{day(24), String("b")},
		{day(99), String("z")},
		{day(0), String("a")},
	})
	require.NoError(t, err)
	sub, err := tbl.Reindex(ref)
	require.NoError(t, err)
	n, _ := sub.Shape()
	require.Equal(t, 2, n)
	assert.Equal(t, 22.0, sub.At(0, 0))
	assert.Equal(t, 10.0, sub.At(1, 0))

	_, err = tagged.Reindex(ref)
	assert.Error(t, err)
}

func TestTable_InsertRowLevel(t *testing.T) {
	tbl := longTable(t)
	labels := make([]Label, 6)
	for i := range labels {
		labels[i] = Int(int64(i / 2))
	}
	got, err := tbl.InsertRowLevel(1, "reltime", labels)
	require.NoError(t, err)
	assert.Equal(t, []string{"time", "reltime", "id"}, got.Rows().Names())
	assert.Equal(t, "2015-12-05|1|a", got.Rows().Key(2).String())

	_, err = tbl.InsertRowLevel(1, "reltime", labels[:2])
	assert.Error(t, err)
}

func TestTable_ColumnHelpers(t *testing.T) {
	tbl := longTable(t)

	sel, err := tbl.SelectColumns([]Key{{String("f2")}})
	require.NoError(t, err)
	assert.Equal(t, []float64{110, 120, 111, 121, 112, 122}, sel.Column(0))

	_, err = tbl.SelectColumns([]Key{{String("nope")}})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	only := tbl.ColumnsWhere(func(k Key) bool { return k[0].AsString() == "f1" })
	_, m := only.Shape()
	assert.Equal(t, 1, m)

	added, err := tbl.WithColumn(Key{String("f3")}, []float64{0.5, 0, 0, 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, FloatKind, added.Kind())
	assert.Equal(t, 0.5, added.At(0, 2))

	_, err = tbl.WithColumn(Key{String("f1")}, make([]float64, 6))
	assert.True(t, errors.Is(err, apperrors.ErrNonUniqueKey))

	renamed, err := tbl.RenameRowLevel("id", "original_id")
	require.NoError(t, err)
	assert.Equal(t, []string{"time", "original_id"}, renamed.Rows().Names())
}

func TestTable_SortAxes(t *testing.T) {
	rows := SingleLevel("id", String("b"), String("a"))
	cols := SingleLevel("f", String("y"), String("x"))
	tbl, err := New(rows, cols, [][]float64{{1, 2}, {3, 4}}, IntKind)
	require.NoError(t, err)

	sorted := tbl.SortAxes()
	assert.Equal(t, []float64{4, 3}, sorted.Row(0))
	assert.Equal(t, []float64{2, 1}, sorted.Row(1))
	assert.Equal(t, 1.0, tbl.At(0, 0))
}
