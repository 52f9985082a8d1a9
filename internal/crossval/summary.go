package crossval

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	apperrors "roicli/internal/errors"
	"roicli/internal/scoring"
	"roicli/pkg/contracts/domain"
)

// Feature importance selection methods.
const (
	ByCount    = "count"
	ByFraction = "fraction"
)

// FeatureImportance averages the per-fold importances, multiplies them by
// scale and returns them sorted descending. ByCount keeps the first number
// entries. ByFraction keeps the leading entries until their cumulative share
// of the total importance exceeds threshold.
func (r *Result) FeatureImportance(method string, number int, threshold, scale float64) ([]domain.FeatureImportance, error) {
	if len(r.Folds) == 0 {
		return nil, apperrors.NewValidationError("result has no folds")
	}
	mean := make([]float64, len(r.Features))
	for _, f := range r.Folds {
		if len(f.Importance) != len(mean) {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("fold has %d importances for %d features", len(f.Importance), len(mean)))
		}
		floats.Add(mean, f.Importance)
	}
	floats.Scale(scale/float64(len(r.Folds)), mean)

	all := make([]domain.FeatureImportance, len(mean))
	for i, v := range mean {
		all[i] = domain.FeatureImportance{Feature: r.Features[i], Importance: v}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Importance > all[j].Importance })

	switch method {
	case ByCount:
		return all[:min(max(number, 0), len(all))], nil
	case ByFraction:
		total := floats.Sum(mean)
		var cum float64
		for i, fi := range all {
			cum += fi.Importance
			if cum > threshold*total {
				return all[:i+1], nil
			}
		}
		return all, nil
	default:
		return nil, apperrors.NewInvalidConfigurationError(
			fmt.Sprintf("unknown importance method %q, want %q or %q", method, ByCount, ByFraction))
	}
}

// MeanROC averages the fold ROC curves, pinned to (0, 0) and (1, 1). AUC is
// the mean of the fold AUCs.
func (r *Result) MeanROC() (domain.Curve, error) {
	xs := make([][]float64, len(r.Folds))
	ys := make([][]float64, len(r.Folds))
	aucs := make([]float64, len(r.Folds))
	for i, f := range r.Folds {
		xs[i], ys[i], aucs[i] = f.ROC.FPR, f.ROC.TPR, f.AUC
	}
	c, err := scoring.MeanCurve(xs, ys, true)
	if err != nil {
		return domain.Curve{}, err
	}
	c.AUC = stat.Mean(aucs, nil)
	return c, nil
}

// MeanPR averages the interpolated precision envelopes over recall.
func (r *Result) MeanPR() (domain.Curve, error) {
	xs := make([][]float64, len(r.Folds))
	ys := make([][]float64, len(r.Folds))
	for i, f := range r.Folds {
		ys[i], xs[i] = scoring.InterpolatePR(f.PR.Precision, f.PR.Recall)
	}
	return scoring.MeanCurve(xs, ys, false)
}

// MeanPerformance averages every measure over the folds.
func (r *Result) MeanPerformance() domain.Measures {
	if len(r.Folds) == 0 {
		return domain.Measures{}
	}
	sum := make([]float64, len(domain.MeasureNames))
	for _, f := range r.Folds {
		floats.Add(sum, f.Measures.Values())
	}
	floats.Scale(1/float64(len(r.Folds)), sum)
	return domain.MeasuresFromValues(sum)
}

// Reports returns one summary per fold.
func (r *Result) Reports() []domain.FoldReport {
	out := make([]domain.FoldReport, len(r.Folds))
	for i, f := range r.Folds {
		out[i] = domain.FoldReport{
			Fold:     i,
			Train:    len(f.Split.Train),
			Test:     len(f.Split.Test),
			Measures: f.Measures,
			ROCAUC:   f.AUC,
		}
	}
	return out
}
