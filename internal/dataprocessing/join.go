package dataprocessing

import (
	"fmt"
	"log/slog"
	"math"

	apperrors "roicli/internal/errors"
	"roicli/internal/table"
)

// JoinGroundTruth appends the columns of truth to features, matching the
// row level named level of features against the single row level of truth
// by label text. Rows without a match get NaN. truth must have one row and
// one column level; its column names fill the first column level of the
// result and the remaining levels are left empty.
func JoinGroundTruth(features, truth *table.Table, level string) (*table.Table, error) {
	if truth.Rows().Levels() != 1 || truth.Columns().Levels() != 1 {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("ground truth has %d row and %d column levels, want 1 and 1",
				truth.Rows().Levels(), truth.Columns().Levels()))
	}
	if truth.Columns().Len() == 0 {
		return nil, apperrors.NewValidationError("ground truth has no columns")
	}
	labels, err := features.Rows().LevelValues(level)
	if err != nil {
		return nil, err
	}

	truthRow := make(map[string]int, truth.Rows().Len())
	for i, k := range truth.Rows().Keys() {
		name := k.String()
		if _, ok := truthRow[name]; ok {
			return nil, apperrors.NewNonUniqueKeyError(
				fmt.Sprintf("ground truth key %q appears twice", name))
		}
		truthRow[name] = i
	}

	matched := 0
	rows := make([]int, len(labels))
	for i, l := range labels {
		r, ok := truthRow[l.String()]
		if !ok {
			r = -1
		} else {
			matched++
		}
		rows[i] = r
	}

	out := features
	levels := features.Columns().Levels()
	for j, col := range truth.Columns().Keys() {
		key := make(table.Key, levels)
		key[0] = col[0]
		for lv := 1; lv < levels; lv++ {
			key[lv] = table.String("")
		}
		values := make([]float64, len(rows))
		for i, r := range rows {
			values[i] = math.NaN()
			if r >= 0 {
				values[i] = truth.At(r, j)
			}
		}
		if out, err = out.WithColumn(key, values); err != nil {
			return nil, fmt.Errorf("ground truth column %s: %w", col, err)
		}
	}

	slog.Info("joined ground truth",
		slog.String("level", level),
		slog.Int("rows", len(rows)),
		slog.Int("matched", matched),
		slog.Int("columns", truth.Columns().Len()))
	return out, nil
}
