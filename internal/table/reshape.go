package table

import (
	"fmt"

	apperrors "roicli/internal/errors"
)

// SortRows returns a copy with rows in ascending key order.
func (t *Table) SortRows() *Table {
	return t.takeRows(t.rows.sortedOrder())
}

// SortColumns returns a copy with columns in ascending key order.
func (t *Table) SortColumns() *Table {
	return t.takeColumns(t.cols.sortedOrder())
}

// SortAxes returns a copy sorted canonically along both axes.
func (t *Table) SortAxes() *Table {
	return t.SortRows().SortColumns()
}

// requireUnique fails when either axis holds a duplicate key.
func (t *Table) requireUnique(op string) error {
	if dups := t.rows.Duplicates(); len(dups) > 0 {
		return apperrors.NewNonUniqueKeyError(fmt.Sprintf("%s: row key %s is not unique", op, dups[0])).
			WithContext("duplicates", len(dups))
	}
	if dups := t.cols.Duplicates(); len(dups) > 0 {
		return apperrors.NewNonUniqueKeyError(fmt.Sprintf("%s: column key %s is not unique", op, dups[0])).
			WithContext("duplicates", len(dups))
	}
	return nil
}

// Stack moves a column level onto the row axis as the innermost row level.
// Every row key is combined with every value of the level; combinations
// without a source cell are NaN. The result is sorted along both axes.
func (t *Table) Stack(level string) (*Table, error) {
	li := t.cols.Level(level)
	if li < 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("column level %q", level))
	}
	if t.cols.Levels() < 2 {
		return nil, apperrors.NewValidationError(fmt.Sprintf("stack: %q is the only column level", level))
	}
	if err := t.requireUnique("stack"); err != nil {
		return nil, err
	}

	colVals, _ := t.cols.LevelValues(level)
	values := distinctLabels(colVals)
	rest := make([]Key, t.cols.Len())
	for j, k := range t.cols.keys {
		rest[j] = k.without(li)
	}

	rowKeys := make([]Key, 0, t.rows.Len()*len(values))
	for _, rk := range t.rows.keys {
		for _, v := range values {
			rowKeys = append(rowKeys, rk.with(v))
		}
	}
	rows, err := NewIndex(append(t.rows.Names(), level), rowKeys)
	if err != nil {
		return nil, err
	}
	colNames := t.cols.Names()
	colNames = append(colNames[:li], colNames[li+1:]...)
	cols, err := NewIndex(colNames, distinctKeys(rest))
	if err != nil {
		return nil, err
	}

	out := newEmpty(rows, cols, t.kind)
	rowPos := rows.positions()
	colPos := cols.positions()
	for i, rk := range t.rows.keys {
		for j, ck := range t.cols.keys {
			ni := rowPos[rk.with(ck[li]).hashKey()]
			nj := colPos[rest[j].hashKey()]
			out.set(ni, nj, t.At(i, j))
		}
	}
	out.promoteIfMissing()
	return out.SortAxes(), nil
}

// Unstack moves a row level onto the column axis as the innermost column
// level. It is the inverse of Stack.
func (t *Table) Unstack(level string) (*Table, error) {
	li := t.rows.Level(level)
	if li < 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("row level %q", level))
	}
	if t.rows.Levels() < 2 {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unstack: %q is the only row level", level))
	}
	if err := t.requireUnique("unstack"); err != nil {
		return nil, err
	}

	rowVals, _ := t.rows.LevelValues(level)
	values := distinctLabels(rowVals)
	rest := make([]Key, t.rows.Len())
	for i, k := range t.rows.keys {
		rest[i] = k.without(li)
	}

	colKeys := make([]Key, 0, t.cols.Len()*len(values))
	for _, ck := range t.cols.keys {
		for _, v := range values {
			colKeys = append(colKeys, ck.with(v))
		}
	}
	cols, err := NewIndex(append(t.cols.Names(), level), colKeys)
	if err != nil {
		return nil, err
	}
	rowNames := t.rows.Names()
	rowNames = append(rowNames[:li], rowNames[li+1:]...)
	rows, err := NewIndex(rowNames, distinctKeys(rest))
	if err != nil {
		return nil, err
	}

	out := newEmpty(rows, cols, t.kind)
	rowPos := rows.positions()
	colPos := cols.positions()
	for i, rk := range t.rows.keys {
		ni := rowPos[rest[i].hashKey()]
		for j, ck := range t.cols.keys {
			nj := colPos[ck.with(rk[li]).hashKey()]
			out.set(ni, nj, t.At(i, j))
		}
	}
	out.promoteIfMissing()
	return out.SortAxes(), nil
}

// Shift moves values along the row axis: row i takes the value of row i-n.
// Cells shifted in from outside the table are NaN. A zero shift returns a copy.
func (t *Table) Shift(n int) *Table {
	return t.ShiftMasked(n, nil)
}

// ShiftMasked shifts like Shift but copies the columns accepted by keep unshifted.
func (t *Table) ShiftMasked(n int, keep func(Key) bool) *Table {
	if n == 0 {
		return t.Copy()
	}
	rowsN, colsN := t.Shape()
	out := newEmpty(t.rows, t.cols, t.kind)
	for j, ck := range t.cols.keys {
		fixed := keep != nil && keep(ck)
		for i := 0; i < rowsN; i++ {
			if fixed {
				out.set(i, j, t.At(i, j))
				continue
			}
			src := i - n
			if src >= 0 && src < rowsN {
				out.set(i, j, t.At(src, j))
			}
		}
	}
	if rowsN > 0 && colsN > 0 {
		out.promoteIfMissing()
	}
	return out
}

// AppendRowLevel adds a constant innermost row level.
func (t *Table) AppendRowLevel(name string, label Label) (*Table, error) {
	keys := make([]Key, t.rows.Len())
	for i, k := range t.rows.keys {
		keys[i] = k.with(label)
	}
	rows, err := NewIndex(append(t.rows.Names(), name), keys)
	if err != nil {
		return nil, err
	}
	out := t.Copy()
	out.rows = rows
	return out, nil
}

// InsertRowLevel adds a row level at position pos with one label per row.
func (t *Table) InsertRowLevel(pos int, name string, labels []Label) (*Table, error) {
	if pos < 0 || pos > t.rows.Levels() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("row level position %d out of range", pos))
	}
	if len(labels) != t.rows.Len() {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("got %d labels for %d rows", len(labels), t.rows.Len()))
	}
	names := t.rows.Names()
	names = append(names[:pos], append([]string{name}, names[pos:]...)...)
	keys := make([]Key, t.rows.Len())
	for i, k := range t.rows.keys {
		nk := make(Key, 0, len(k)+1)
		nk = append(nk, k[:pos]...)
		nk = append(nk, labels[i])
		keys[i] = append(nk, k[pos:]...)
	}
	rows, err := NewIndex(names, keys)
	if err != nil {
		return nil, err
	}
	out := t.Copy()
	out.rows = rows
	return out, nil
}

// Concat stacks tables along the row axis. Columns are aligned by key; the
// result holds the union of columns in first-seen order and NaN where a
// table lacks a column. All tables must share row and column level names.
func Concat(tables ...*Table) (*Table, error) {
	if len(tables) == 0 {
		return nil, apperrors.NewValidationError("concat: no tables")
	}
	first := tables[0]
	colKeys := make([]Key, 0, first.cols.Len())
	seen := make(map[string]bool)
	var rowKeys []Key
	kind := IntKind
	for n, t := range tables {
		if !sameNames(t.rows.names, first.rows.names) || !sameNames(t.cols.names, first.cols.names) {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("concat: table %d has levels %v/%v, want %v/%v",
					n, t.rows.names, t.cols.names, first.rows.names, first.cols.names))
		}
		for _, k := range t.cols.keys {
			if h := k.hashKey(); !seen[h] {
				seen[h] = true
				colKeys = append(colKeys, k)
			}
		}
		rowKeys = append(rowKeys, t.rows.keys...)
		if t.kind == FloatKind {
			kind = FloatKind
		}
	}
	rows, err := NewIndex(first.rows.names, rowKeys)
	if err != nil {
		return nil, err
	}
	cols, err := NewIndex(first.cols.names, colKeys)
	if err != nil {
		return nil, err
	}

	out := newEmpty(rows, cols, kind)
	colPos := cols.positions()
	offset := 0
	for _, t := range tables {
		for j, ck := range t.cols.keys {
			nj := colPos[ck.hashKey()]
			for i := 0; i < t.rows.Len(); i++ {
				out.set(offset+i, nj, t.At(i, j))
			}
		}
		offset += t.rows.Len()
	}
	out.promoteIfMissing()
	return out, nil
}

// ReorderRowLevels returns a copy whose row levels are arranged as names.
func (t *Table) ReorderRowLevels(names ...string) (*Table, error) {
	rows, err := t.rows.Reorder(names...)
	if err != nil {
		return nil, err
	}
	out := t.Copy()
	out.rows = rows
	return out, nil
}

// ReorderColumnLevels returns a copy whose column levels are arranged as names.
func (t *Table) ReorderColumnLevels(names ...string) (*Table, error) {
	cols, err := t.cols.Reorder(names...)
	if err != nil {
		return nil, err
	}
	out := t.Copy()
	out.cols = cols
	return out, nil
}

// Reindex restricts rows to the keys of idx, in idx order. Keys of idx that
// the table does not hold are skipped. Level names must match.
func (t *Table) Reindex(idx Index) (*Table, error) {
	if !sameNames(t.rows.names, idx.names) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("reindex: row levels %v do not match %v", t.rows.names, idx.names))
	}
	pos := t.rows.positions()
	order := make([]int, 0, idx.Len())
	for _, k := range idx.keys {
		if i, ok := pos[k.hashKey()]; ok {
			order = append(order, i)
		}
	}
	return t.takeRows(order), nil
}

func sameNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
