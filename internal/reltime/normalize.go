// Package reltime maps absolute acquisition instants onto a regular step grid.
package reltime

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	apperrors "roicli/internal/errors"
	"roicli/internal/table"
)

// StepLevel is the row level name used for relative steps.
const StepLevel = "reltime"

// Result holds the relative step of every input instant.
type Result struct {
	// Steps are aligned with the caller's instants.
	Steps     []int
	Delta     time.Duration
	Frequency Frequency
}

// Normalizer converts absolute instants into zero-based step indices.
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer creates a normalizer. A nil logger falls back to slog.Default().
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{logger: logger}
}

// Normalize uses a normalizer with the default logger.
func Normalize(ctx context.Context, instants []time.Time) (Result, error) {
	return NewNormalizer(nil).Normalize(ctx, instants)
}

// Normalize checks that the distinct instants form an even progression and
// returns (t - min) / delta for each of them in the given order.
//
// The base interval is the most frequent gap between consecutive sorted
// instants. It must also be the smallest gap, and every gap must be a whole
// multiple of it.
func (n *Normalizer) Normalize(ctx context.Context, instants []time.Time) (Result, error) {
	seen := make(map[int64]bool, len(instants))
	for _, t := range instants {
		k := t.UnixNano()
		if seen[k] {
			return Result{}, apperrors.NewNonUniqueKeyError("time index must be unique").
				WithContext("instant", t.UTC().Format(time.RFC3339Nano))
		}
		seen[k] = true
	}
	if len(instants) < 2 {
		return Result{}, apperrors.NewIrregularTimeBaseError(
			fmt.Sprintf("need at least two instants to detect a time base, got %d", len(instants)))
	}

	sorted := append([]time.Time(nil), instants...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	gaps := make([]time.Duration, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		gaps[i-1] = sorted[i].Sub(sorted[i-1])
	}
	mode, smallest := modeAndMin(gaps)
	if mode != smallest {
		return Result{}, apperrors.NewIrregularTimeBaseError(fmt.Sprintf(
			"most frequent gap %s differs from smallest gap %s between adjacent instants", mode, smallest)).
			WithContext("mode", mode.String()).
			WithContext("min", smallest.String())
	}
	for i, g := range gaps {
		if g%mode != 0 {
			return Result{}, apperrors.NewIrregularTimeBaseError(fmt.Sprintf(
				"gap %s between %s and %s is not a multiple of %s; check the timestamps for rounding or precision errors",
				g, sorted[i].Format(time.RFC3339), sorted[i+1].Format(time.RFC3339), mode))
		}
	}

	origin := sorted[0]
	steps := make([]int, len(instants))
	for i, t := range instants {
		steps[i] = int(t.Sub(origin) / mode)
	}

	freq, _ := InferFrequency([]time.Time{origin, origin.Add(mode), origin.Add(2 * mode)})
	n.logger.InfoContext(ctx, "detected time base",
		slog.String("delta", mode.String()),
		slog.String("frequency", freq.Alias()),
		slog.Int("instants", len(instants)))

	return Result{Steps: steps, Delta: mode, Frequency: freq}, nil
}

// modeAndMin returns the most frequent value (the smallest on ties) and the minimum.
func modeAndMin(values []time.Duration) (mode, smallest time.Duration) {
	counts := make(map[time.Duration]int, len(values))
	smallest = values[0]
	for _, v := range values {
		counts[v]++
		if v < smallest {
			smallest = v
		}
	}
	best := 0
	for v, c := range counts {
		if c > best || (c == best && v < mode) {
			mode, best = v, c
		}
	}
	return mode, smallest
}

// AppendStepLevel inserts a "reltime" row level right after timeLevel,
// holding the normalized step of each row's instant.
func (n *Normalizer) AppendStepLevel(ctx context.Context, t *table.Table, timeLevel string) (*table.Table, Result, error) {
	values, err := t.Rows().LevelValues(timeLevel)
	if err != nil {
		return nil, Result{}, err
	}
	distinct, err := t.Rows().Distinct(timeLevel)
	if err != nil {
		return nil, Result{}, err
	}
	instants := make([]time.Time, len(distinct))
	for i, l := range distinct {
		if l.Kind() != table.TimeLabel {
			return nil, Result{}, apperrors.NewValidationError(
				fmt.Sprintf("row level %q holds %s labels, want time", timeLevel, l.Kind()))
		}
		instants[i] = l.AsTime()
	}

	res, err := n.Normalize(ctx, instants)
	if err != nil {
		return nil, Result{}, err
	}
	stepOf := make(map[int64]int, len(instants))
	for i, t := range instants {
		stepOf[t.UnixNano()] = res.Steps[i]
	}
	labels := make([]table.Label, len(values))
	for i, v := range values {
		labels[i] = table.Int(int64(stepOf[v.AsTime().UnixNano()]))
	}
	out, err := t.InsertRowLevel(t.Rows().Level(timeLevel)+1, StepLevel, labels)
	if err != nil {
		return nil, Result{}, err
	}
	return out, res, nil
}
