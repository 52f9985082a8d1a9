package dataprocessing

import (
	"fmt"
	"log/slog"
	"math"

	apperrors "roicli/internal/errors"
	"roicli/internal/table"
)

// ConcatColumns joins TAF tables on their object ids. The result holds the
// union of ids in first-seen order and every table's columns side by side,
// NaN where a table has no row for an id. Column names must be unique
// across all tables, and ids unique within each table.
func ConcatColumns(tables ...*table.Table) (*table.Table, error) {
	if len(tables) == 0 {
		return nil, apperrors.NewValidationError("concat: no tables")
	}
	first := tables[0]
	for n, t := range tables {
		if t.Rows().Levels() != 1 || t.Columns().Levels() != 1 {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("concat: table %d has %d row and %d column levels, want 1 and 1",
					n, t.Rows().Levels(), t.Columns().Levels()))
		}
	}
	if len(tables) == 1 {
		return first.Copy(), nil
	}

	idPos := make(map[string]int)
	var ids []table.Label
	colSeen := make(map[string]int)
	var columns []table.Label
	for n, t := range tables {
		local := make(map[string]bool, t.Rows().Len())
		for _, k := range t.Rows().Keys() {
			id := k.String()
			if local[id] {
				return nil, apperrors.NewNonUniqueKeyError(
					fmt.Sprintf("concat: id %q appears twice in table %d", id, n))
			}
			local[id] = true
			if _, ok := idPos[id]; !ok {
				idPos[id] = len(ids)
				ids = append(ids, k[0])
			}
		}
		for _, k := range t.Columns().Keys() {
			name := k.String()
			if prev, ok := colSeen[name]; ok {
				return nil, apperrors.NewNonUniqueKeyError(
					fmt.Sprintf("concat: column %q appears in tables %d and %d", name, prev, n))
			}
			colSeen[name] = n
			columns = append(columns, k[0])
		}
	}

	cells := make([][]float64, len(ids))
	for i := range cells {
		cells[i] = make([]float64, len(columns))
		for j := range cells[i] {
			cells[i][j] = math.NaN()
		}
	}
	kind := table.IntKind
	offset := 0
	for _, t := range tables {
		if t.Kind() == table.FloatKind {
			kind = table.FloatKind
		}
		for i, k := range t.Rows().Keys() {
			copy(cells[idPos[k.String()]][offset:], t.Row(i))
		}
		offset += t.Columns().Len()
	}
	for _, row := range cells {
		for _, v := range row {
			if math.IsNaN(v) {
				kind = table.FloatKind
			}
		}
	}

	slog.Debug("concatenated TAF tables",
		slog.Int("tables", len(tables)),
		slog.Int("ids", len(ids)),
		slog.Int("columns", len(columns)))

	return table.New(
		table.SingleLevel(first.Rows().Names()[0], ids...),
		table.SingleLevel(first.Columns().Names()[0], columns...),
		cells, kind)
}
