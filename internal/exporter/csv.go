package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"

	apperrors "roicli/internal/errors"
	"roicli/internal/table"
)

// WriteTable writes t as CSV. There is one header row per column level,
// its level name in the first cell and its labels after the row key cells,
// followed by a row holding the row level names. Missing cells read NA.
//
// With row levels (time, ID) and column levels (feature, trf_label):
//
//	feature,,B2,B2
//	trf_label,,m1,p1
//	time,ID,,
//	2015-11-23,ID_1,10,11
func WriteTable(w io.Writer, t *table.Table) error {
	writer := csv.NewWriter(w)
	rowLevels := t.Rows().Levels()
	width := rowLevels + t.Columns().Len()

	for lv, name := range t.Columns().Names() {
		record := make([]string, width)
		record[0] = name
		for j, key := range t.Columns().Keys() {
			record[rowLevels+j] = key[lv].String()
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write header %q: %w", name, err)
		}
	}
	names := make([]string, width)
	copy(names, t.Rows().Names())
	if err := writer.Write(names); err != nil {
		return fmt.Errorf("failed to write index names: %w", err)
	}

	for i, key := range t.Rows().Keys() {
		record := make([]string, 0, width)
		for _, l := range key {
			record = append(record, l.String())
		}
		for _, v := range t.Row(i) {
			record = append(record, formatCell(v))
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ReadTable reads a table written by WriteTable with the given numbers of
// row and column levels. Labels are typed by their text, see parseLabel.
// The table is Int when every cell is a whole number.
func ReadTable(r io.Reader, rowLevels, colLevels int) (*table.Table, error) {
	if rowLevels < 1 || colLevels < 1 {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("need at least one row and one column level, got %d and %d", rowLevels, colLevels))
	}
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read table csv", err)
	}
	if len(records) < colLevels+1 {
		return nil, apperrors.NewParsingError(
			fmt.Sprintf("got %d rows, want %d header rows and the index names", len(records), colLevels+1), nil)
	}
	width := len(records[0])
	if width < rowLevels {
		return nil, apperrors.NewParsingError(
			fmt.Sprintf("got %d columns for %d row levels", width, rowLevels), nil)
	}

	colNames := make([]string, colLevels)
	colKeys := make([]table.Key, width-rowLevels)
	for j := range colKeys {
		colKeys[j] = make(table.Key, colLevels)
	}
	for lv := 0; lv < colLevels; lv++ {
		colNames[lv] = records[lv][0]
		for j := range colKeys {
			colKeys[j][lv] = parseLabel(records[lv][rowLevels+j])
		}
	}
	cols, err := table.NewIndex(colNames, colKeys)
	if err != nil {
		return nil, err
	}
	if err := requireUnique("column", cols); err != nil {
		return nil, err
	}

	rowNames := records[colLevels][:rowLevels]
	body := records[colLevels+1:]
	rowKeys := make([]table.Key, len(body))
	cells := make([][]float64, len(body))
	kind := table.IntKind
	for i, record := range body {
		key := make(table.Key, rowLevels)
		for lv := range key {
			key[lv] = parseLabel(record[lv])
		}
		rowKeys[i] = key
		cells[i] = make([]float64, len(colKeys))
		for j, text := range record[rowLevels:] {
			v, err := parseCell(text)
			if err != nil {
				return nil, apperrors.NewParsingError(
					fmt.Sprintf("row %d column %d", colLevels+2+i, rowLevels+j+1), err)
			}
			if math.IsNaN(v) || v != math.Trunc(v) {
				kind = table.FloatKind
			}
			cells[i][j] = v
		}
	}
	rows, err := table.NewIndex(rowNames, rowKeys)
	if err != nil {
		return nil, err
	}
	if err := requireUnique("row", rows); err != nil {
		return nil, err
	}
	return table.New(rows, cols, cells, kind)
}

func requireUnique(axis string, idx table.Index) error {
	if idx.IsUnique() {
		return nil
	}
	return apperrors.NewNonUniqueKeyError(fmt.Sprintf("%s keys must be unique", axis)).
		WithContext("duplicate", idx.Duplicates()[0].String())
}
