package table

import (
	"fmt"
	"math"

	apperrors "roicli/internal/errors"
)

// Kind is the numeric representation of a table's cells.
type Kind uint8

const (
	// IntKind tables hold whole numbers only and no missing values.
	IntKind Kind = iota
	// FloatKind tables may hold fractional values and NaN.
	FloatKind
)

// String returns the string representation of the kind
func (k Kind) String() string {
	if k == IntKind {
		return "int"
	}
	return "float"
}

// Table is a two-dimensional labeled table with composite row and column
// keys. Cells are stored row-major; NaN marks a missing value.
type Table struct {
	rows  Index
	cols  Index
	cells []float64
	kind  Kind
}

// New creates a table from row-major cells. Int tables are checked to hold
// whole numbers without NaN.
func New(rows, cols Index, cells [][]float64, kind Kind) (*Table, error) {
	if len(cells) != rows.Len() {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("got %d cell rows for %d row keys", len(cells), rows.Len()))
	}
	flat := make([]float64, 0, rows.Len()*cols.Len())
	for i, row := range cells {
		if len(row) != cols.Len() {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("row %d has %d cells for %d column keys", i, len(row), cols.Len()))
		}
		flat = append(flat, row...)
	}
	if kind == IntKind {
		for _, v := range flat {
			if math.IsNaN(v) || v != math.Trunc(v) {
				return nil, apperrors.NewValidationError("int table holds a missing or fractional value")
			}
		}
	}
	return &Table{rows: rows, cols: cols, cells: flat, kind: kind}, nil
}

// newEmpty allocates a table filled with NaN.
func newEmpty(rows, cols Index, kind Kind) *Table {
	cells := make([]float64, rows.Len()*cols.Len())
	for i := range cells {
		cells[i] = math.NaN()
	}
	return &Table{rows: rows, cols: cols, cells: cells, kind: kind}
}

// Rows returns the row index
func (t *Table) Rows() Index { return t.rows }

// Columns returns the column index
func (t *Table) Columns() Index { return t.cols }

// Kind returns the cell representation
func (t *Table) Kind() Kind { return t.kind }

// Shape returns the number of rows and columns
func (t *Table) Shape() (int, int) { return t.rows.Len(), t.cols.Len() }

// At returns the cell at row i, column j.
func (t *Table) At(i, j int) float64 {
	return t.cells[i*t.cols.Len()+j]
}

func (t *Table) set(i, j int, v float64) {
	t.cells[i*t.cols.Len()+j] = v
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []float64 {
	n := t.cols.Len()
	return append([]float64(nil), t.cells[i*n:(i+1)*n]...)
}

// Column returns a copy of column j.
func (t *Table) Column(j int) []float64 {
	out := make([]float64, t.rows.Len())
	for i := range out {
		out[i] = t.At(i, j)
	}
	return out
}

// Lookup returns the cell addressed by a row key and a column key.
func (t *Table) Lookup(row, col Key) (float64, bool) {
	i, ok := t.rows.positions()[row.hashKey()]
	if !ok {
		return 0, false
	}
	j, ok := t.cols.positions()[col.hashKey()]
	if !ok {
		return 0, false
	}
	return t.At(i, j), true
}

// Copy returns an independent deep copy.
func (t *Table) Copy() *Table {
	return &Table{
		rows:  t.rows,
		cols:  t.cols,
		cells: append([]float64(nil), t.cells...),
		kind:  t.kind,
	}
}

// Equal reports whether both tables have the same keys, kind and cells.
// Two NaN cells are equal.
func (t *Table) Equal(o *Table) bool {
	if t.kind != o.kind || !t.rows.Equal(o.rows) || !t.cols.Equal(o.cols) {
		return false
	}
	for i, v := range t.cells {
		w := o.cells[i]
		if math.IsNaN(v) && math.IsNaN(w) {
			continue
		}
		if v != w {
			return false
		}
	}
	return true
}

// CountMissing returns the number of NaN cells.
func (t *Table) CountMissing() int {
	n := 0
	for _, v := range t.cells {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}

// RenameRowLevel renames one row level.
func (t *Table) RenameRowLevel(from, to string) (*Table, error) {
	li := t.rows.Level(from)
	if li < 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("row level %q", from))
	}
	names := t.rows.Names()
	names[li] = to
	rows, err := NewIndex(names, t.rows.keys)
	if err != nil {
		return nil, err
	}
	out := t.Copy()
	out.rows = rows
	return out, nil
}

// SelectColumns returns a table holding the given columns in the given order.
func (t *Table) SelectColumns(keys []Key) (*Table, error) {
	pos := t.cols.positions()
	order := make([]int, len(keys))
	for i, k := range keys {
		j, ok := pos[k.hashKey()]
		if !ok {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("column %s", k))
		}
		order[i] = j
	}
	return t.takeColumns(order), nil
}

// ColumnsWhere returns a table holding the columns accepted by keep, in order.
func (t *Table) ColumnsWhere(keep func(Key) bool) *Table {
	order := make([]int, 0, t.cols.Len())
	for j, k := range t.cols.keys {
		if keep(k) {
			order = append(order, j)
		}
	}
	return t.takeColumns(order)
}

// WithColumn returns a table with one column appended. Fractional or
// missing values promote an Int table to Float.
func (t *Table) WithColumn(key Key, values []float64) (*Table, error) {
	if len(values) != t.rows.Len() {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("column %s has %d values for %d rows", key, len(values), t.rows.Len()))
	}
	if _, exists := t.cols.positions()[key.hashKey()]; exists {
		return nil, apperrors.NewNonUniqueKeyError(fmt.Sprintf("column %s already exists", key))
	}
	keys := append(t.cols.Keys(), key)
	cols, err := NewIndex(t.cols.names, keys)
	if err != nil {
		return nil, err
	}
	kind := t.kind
	for _, v := range values {
		if math.IsNaN(v) || v != math.Trunc(v) {
			kind = FloatKind
			break
		}
	}
	out := newEmpty(t.rows, cols, kind)
	n := t.cols.Len()
	for i := 0; i < t.rows.Len(); i++ {
		for j := 0; j < n; j++ {
			out.set(i, j, t.At(i, j))
		}
		out.set(i, n, values[i])
	}
	return out, nil
}

func (t *Table) takeColumns(order []int) *Table {
	out := newEmpty(t.rows, t.cols.take(order), t.kind)
	for i := 0; i < t.rows.Len(); i++ {
		for jj, j := range order {
			out.set(i, jj, t.At(i, j))
		}
	}
	return out
}

func (t *Table) takeRows(order []int) *Table {
	out := newEmpty(t.rows.take(order), t.cols, t.kind)
	n := t.cols.Len()
	for ii, i := range order {
		copy(out.cells[ii*n:(ii+1)*n], t.cells[i*n:(i+1)*n])
	}
	return out
}

// promoteIfMissing switches an Int table to Float when it holds NaN.
func (t *Table) promoteIfMissing() {
	if t.kind == IntKind && t.CountMissing() > 0 {
		t.kind = FloatKind
	}
}
