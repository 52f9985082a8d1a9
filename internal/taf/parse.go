package taf

import (
	"fmt"
	"log/slog"
	"strings"

	apperrors "roicli/internal/errors"
	"roicli/internal/table"
)

// Level names used by the parsed layouts.
const (
	DefaultIDLevel = "original_id"
	FeatureLevel   = "feature"
	TimeLevel      = "time"
)

// Options control column parsing.
type Options struct {
	// NoonCorrection subtracts half a day from every Julian day so that
	// whole day numbers decode to midnight.
	NoonCorrection bool
	Logger         *slog.Logger
}

// DefaultOptions returns options with the noon correction enabled.
func DefaultOptions() Options {
	return Options{NoonCorrection: true}
}

// SplitColumnName splits "<feature>_<suffix>" at the last underscore.
// The feature part may itself contain underscores.
func SplitColumnName(name string) (feature, suffix string, err error) {
	i := strings.LastIndex(name, "_")
	if i <= 0 || i == len(name)-1 {
		return "", "", apperrors.NewParsingError(
			fmt.Sprintf("column %q is not of the form <feature>_<julian day>", name), nil)
	}
	return name[:i], name[i+1:], nil
}

// ParseColumns turns a TAF table (rows: object id, columns: "<feature>_<jd>")
// into the intermediate layout with rows (time, id) and columns feature.
// An unnamed id level is called "original_id". The input is not modified.
func ParseColumns(t *table.Table, opts Options) (*table.Table, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if t.Rows().Levels() != 1 || t.Columns().Levels() != 1 {
		return nil, apperrors.NewValidationError(fmt.Sprintf(
			"expected a single id row level and a single column level, got %d and %d",
			t.Rows().Levels(), t.Columns().Levels()))
	}
	idLevel := t.Rows().Names()[0]
	if idLevel == "" {
		idLevel = DefaultIDLevel
	}
	if dups := t.Rows().Duplicates(); len(dups) > 0 {
		return nil, apperrors.NewNonUniqueKeyError("time is not unique for each feature and id").
			WithContext("id", dups[0].String())
	}

	source := make(map[string]string, t.Columns().Len())
	keys := make([]table.Key, t.Columns().Len())
	for j := 0; j < t.Columns().Len(); j++ {
		name := t.Columns().Key(j)[0].AsString()
		feature, suffix, err := SplitColumnName(name)
		if err != nil {
			return nil, err
		}
		instant, err := JulianDay(suffix, opts.NoonCorrection)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
		key := table.Key{table.String(feature), table.Time(instant)}
		if prev, ok := source[key.String()]; ok {
			return nil, apperrors.NewNonUniqueKeyError(fmt.Sprintf(
				"columns %q and %q both decode to (%s)", prev, name, key)).
				WithContext("feature", feature)
		}
		source[key.String()] = name
		keys[j] = key
	}

	cols, err := table.NewIndex([]string{FeatureLevel, TimeLevel}, keys)
	if err != nil {
		return nil, err
	}
	rows, err := table.NewIndex([]string{idLevel}, t.Rows().Keys())
	if err != nil {
		return nil, err
	}
	cells := make([][]float64, t.Rows().Len())
	for i := range cells {
		cells[i] = t.Row(i)
	}
	relabeled, err := table.New(rows, cols, cells, t.Kind())
	if err != nil {
		return nil, err
	}

	stacked, err := relabeled.SortAxes().Stack(TimeLevel)
	if err != nil {
		return nil, fmt.Errorf("stack time level: %w", err)
	}
	out, err := stacked.ReorderRowLevels(TimeLevel, idLevel)
	if err != nil {
		return nil, err
	}
	out = out.SortRows()
	if !out.Rows().IsUnique() {
		return nil, apperrors.NewNonUniqueKeyError("time is not unique for each feature and id")
	}

	n, m := out.Shape()
	logger.Debug("parsed TAF columns",
		slog.Int("source_columns", t.Columns().Len()),
		slog.Int("rows", n),
		slog.Int("features", m),
		slog.Bool("noon_correction", opts.NoonCorrection))
	return out, nil
}

// Wide returns the intermediate table with the id level moved onto the
// columns: rows time, columns (id, feature).
func Wide(t *table.Table, idLevel string) (*table.Table, error) {
	wide, err := t.Unstack(idLevel)
	if err != nil {
		return nil, err
	}
	wide, err = wide.ReorderColumnLevels(idLevel, FeatureLevel)
	if err != nil {
		return nil, err
	}
	return wide.SortColumns(), nil
}

// Flatten is the inverse of ParseColumns: rows id, columns "<feature>_<jd>".
func Flatten(t *table.Table, idLevel string, opts Options) (*table.Table, error) {
	wide, err := t.Unstack(TimeLevel)
	if err != nil {
		return nil, err
	}
	keys := make([]table.Label, wide.Columns().Len())
	for j := range keys {
		k := wide.Columns().Key(j)
		jd := ToJulianDay(k[1].AsTime(), opts.NoonCorrection)
		keys[j] = table.String(fmt.Sprintf("%s_%s", k[0].AsString(), jd.StringFixed(10)))
	}
	cols := table.SingleLevel("", keys...)
	rows, err := table.NewIndex([]string{idLevel}, wide.Rows().Keys())
	if err != nil {
		return nil, err
	}
	cells := make([][]float64, wide.Rows().Len())
	for i := range cells {
		cells[i] = wide.Row(i)
	}
	return table.New(rows, cols, cells, wide.Kind())
}
