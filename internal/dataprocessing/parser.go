package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "roicli/internal/errors"
	"roicli/internal/table"
)

// ColumnLevel names the single column level of a loaded TAF table.
const ColumnLevel = "column"

// missingTokens are cell texts read as a missing value, compared ignoring case.
var missingTokens = []string{"", "na", "nan", "n/a", "null"}

// ReadTAFCSV reads a TAF table from CSV. The first column holds the object
// ids and its header cell names the id level; the remaining header cells are
// the "<feature>_<julian day>" column names.
func ReadTAFCSV(r io.Reader) (*table.Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read TAF csv", err)
	}
	return fromRecords(records, "csv")
}

// ReadTAFXLSX reads a TAF table from one sheet of an Excel workbook. An
// empty sheet name selects the first sheet that holds data.
func ReadTAFXLSX(path, sheet string) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to open %s", path), err)
	}
	defer f.Close()

	rows, name, err := sheetRows(f, sheet)
	if err != nil {
		return nil, err
	}
	slog.Debug("Found TAF data in sheet",
		slog.String("path", path),
		slog.String("sheet_name", name),
		slog.Int("total_rows", len(rows)))

	// Trailing empty cells are omitted by excelize.
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	for i, row := range rows {
		for len(row) < width {
			row = append(row, "")
		}
		rows[i] = row
	}
	return fromRecords(rows, path+":"+name)
}

func sheetRows(f *excelize.File, sheet string) ([][]string, string, error) {
	if sheet != "" {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, "", apperrors.NewNotFoundError(fmt.Sprintf("sheet %q", sheet))
		}
		return rows, sheet, nil
	}
	for _, name := range f.GetSheetList() {
		if rows, err := f.GetRows(name); err == nil && len(rows) > 1 {
			return rows, name, nil
		}
	}
	return nil, "", apperrors.NewNotFoundError("sheet with TAF data")
}

// fromRecords builds a table from a header row followed by data rows.
func fromRecords(records [][]string, source string) (*table.Table, error) {
	if len(records) == 0 {
		return nil, apperrors.NewValidationError(fmt.Sprintf("%s: no header row", source))
	}
	header := records[0]
	if len(header) < 2 {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("%s: need an id column and at least one data column, got %d columns", source, len(header)))
	}

	columns := make([]table.Label, len(header)-1)
	for j, name := range header[1:] {
		columns[j] = table.String(strings.TrimSpace(name))
	}
	ids := make([]table.Label, 0, len(records)-1)
	cells := make([][]float64, 0, len(records)-1)
	kind := table.IntKind
	for i, record := range records[1:] {
		if len(record) != len(header) {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("%s: row %d has %d cells, header has %d", source, i+2, len(record), len(header)), nil)
		}
		row := make([]float64, len(columns))
		for j, text := range record[1:] {
			v, err := parseCell(text)
			if err != nil {
				return nil, apperrors.NewParsingError(
					fmt.Sprintf("%s: row %d column %q", source, i+2, header[j+1]), err)
			}
			if math.IsNaN(v) || v != math.Trunc(v) {
				kind = table.FloatKind
			}
			row[j] = v
		}
		ids = append(ids, table.String(strings.TrimSpace(record[0])))
		cells = append(cells, row)
	}

	return table.New(
		table.SingleLevel(strings.TrimSpace(header[0]), ids...),
		table.SingleLevel(ColumnLevel, columns...),
		cells, kind)
}

// parseCell reads a numeric cell. Missing markers become NaN and thousands
// separators are dropped.
func parseCell(text string) (float64, error) {
	text = strings.TrimSpace(text)
	for _, token := range missingTokens {
		if strings.EqualFold(text, token) {
			return math.NaN(), nil
		}
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", ""), 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			return 0, numErr.Err
		}
		return 0, err
	}
	if math.IsInf(v, 0) {
		return 0, fmt.Errorf("value %q is not finite", text)
	}
	return v, nil
}
