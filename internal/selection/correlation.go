// Package selection prunes feature columns that are strongly correlated
// with an earlier column.
package selection

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	apperrors "roicli/internal/errors"
	"roicli/internal/table"
)

// Corner directions accepted by CornerMask.
const (
	UpRight  = "up_right"
	UpLeft   = "up_left"
	LowRight = "low_right"
	LowLeft  = "low_left"
)

// CornerMask returns an n x n mask selecting one triangular corner of a
// square matrix, diagonal included. up_right and low_left split along the
// main diagonal, up_left and low_right along the anti-diagonal.
func CornerMask(n int, direction string) ([][]bool, error) {
	var in func(i, j int) bool
	switch direction {
	case UpRight:
		in = func(i, j int) bool { return j >= i }
	case LowLeft:
		in = func(i, j int) bool { return j <= i }
	case UpLeft:
		in = func(i, j int) bool { return i+j <= n-1 }
	case LowRight:
		in = func(i, j int) bool { return i+j >= n-1 }
	default:
		return nil, apperrors.NewInvalidConfigurationError(fmt.Sprintf(
			"unknown corner %q, want one of %s, %s, %s, %s", direction, UpRight, UpLeft, LowRight, LowLeft))
	}
	mask := make([][]bool, n)
	for i := range mask {
		mask[i] = make([]bool, n)
		for j := range mask[i] {
			mask[i][j] = in(i, j)
		}
	}
	return mask, nil
}

// CorrelationMatrix computes the Pearson correlation between the columns of
// t over the rows without missing values.
func CorrelationMatrix(t *table.Table) (*mat.SymDense, error) {
	rows, cols := t.Shape()
	if cols == 0 {
		return nil, apperrors.NewValidationError("correlation needs at least one column")
	}
	data := make([]float64, 0, rows*cols)
	complete := 0
	for i := 0; i < rows; i++ {
		row := t.Row(i)
		if hasNaN(row) {
			continue
		}
		data = append(data, row...)
		complete++
	}
	if complete < 2 {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("correlation needs at least two complete rows, got %d", complete))
	}

	var corr mat.SymDense
	stat.CorrelationMatrix(&corr, mat.NewDense(complete, cols, data), nil)
	return &corr, nil
}

func hasNaN(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// DropCorrelated removes every column whose correlation with some earlier
// column exceeds Threshold.
type DropCorrelated struct {
	Threshold float64
	// Absolute compares |r| instead of r.
	Absolute bool
	Logger   *slog.Logger
}

// Select returns the indices of the columns to keep, ascending.
func (d DropCorrelated) Select(corr mat.Matrix) ([]int, error) {
	n, c := corr.Dims()
	if n != c {
		return nil, apperrors.NewValidationError(fmt.Sprintf("correlation matrix is %dx%d, want square", n, c))
	}
	upper, err := CornerMask(n, UpRight)
	if err != nil {
		return nil, err
	}

	keep := make([]int, 0, n)
	for i := 0; i < n; i++ {
		drop := false
		for j := 0; j < n && !drop; j++ {
			if upper[i][j] {
				continue
			}
			r := corr.At(i, j)
			if d.Absolute {
				r = math.Abs(r)
			}
			drop = r > d.Threshold
		}
		if !drop {
			keep = append(keep, i)
		}
	}
	return keep, nil
}

// Transform returns a copy of t holding only the kept columns. corr must be
// the correlation matrix of t's columns in order.
func (d DropCorrelated) Transform(ctx context.Context, t *table.Table, corr mat.Matrix) (*table.Table, error) {
	n, _ := corr.Dims()
	if n != t.Columns().Len() {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("correlation matrix covers %d columns, table has %d", n, t.Columns().Len()))
	}
	keep, err := d.Select(corr)
	if err != nil {
		return nil, err
	}
	keys := make([]table.Key, len(keep))
	for i, j := range keep {
		keys[i] = t.Columns().Key(j)
	}

	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	dropped := n - len(keep)
	percent := 0.0
	if n > 0 {
		percent = math.Round(float64(dropped) / float64(n) * 100)
	}
	logger.InfoContext(ctx, "dropped correlated columns",
		slog.Int("dropped", dropped),
		slog.Int("columns", n),
		slog.Float64("percent", percent),
		slog.Float64("threshold", d.Threshold))

	return t.SelectColumns(keys)
}
