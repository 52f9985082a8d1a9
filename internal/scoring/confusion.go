// Package scoring computes per-fold classification scores: confusion-matrix
// measures, Cohen's kappa, ROC and precision-recall curves, and error counts
// per stratum.
//
// The positive class always comes first, so a ConfusionMatrix reads
//
//	          pred +  pred -
//	true +     TP      FN
//	true -     FP      TN
package scoring

import (
	"fmt"
	"math"

	apperrors "roicli/internal/errors"
	"roicli/pkg/contracts/domain"
)

// ConfusionMatrix counts binary outcomes.
type ConfusionMatrix struct {
	TP, FN, FP, TN int
}

// Total returns the number of samples counted.
func (c ConfusionMatrix) Total() int {
	return c.TP + c.FN + c.FP + c.TN
}

// Add returns the element-wise sum of c and o.
func (c ConfusionMatrix) Add(o ConfusionMatrix) ConfusionMatrix {
	return ConfusionMatrix{TP: c.TP + o.TP, FN: c.FN + o.FN, FP: c.FP + o.FP, TN: c.TN + o.TN}
}

func checkLengths(a, b int, what string) error {
	if a != b {
		return apperrors.NewValidationError(fmt.Sprintf("%s: got %d truths and %d values", what, a, b))
	}
	return nil
}

// Confusion counts yPred against yTrue, true being the positive class.
func Confusion(yTrue, yPred []bool) (ConfusionMatrix, error) {
	if err := checkLengths(len(yTrue), len(yPred), "confusion matrix"); err != nil {
		return ConfusionMatrix{}, err
	}
	var cm ConfusionMatrix
	for i, t := range yTrue {
		switch {
		case t && yPred[i]:
			cm.TP++
		case t:
			cm.FN++
		case yPred[i]:
			cm.FP++
		default:
			cm.TN++
		}
	}
	return cm, nil
}

// Measures derives the scalar scores from cm. Kappa is filled in from the
// same counts. Undefined ratios are NaN.
func Measures(cm ConfusionMatrix) domain.Measures {
	tp, fn := float64(cm.TP), float64(cm.FN)
	fp, tn := float64(cm.FP), float64(cm.TN)
	nP := tp + fn
	nN := tn + fp

	m := domain.Measures{
		TrueNegativeRate: tn / nN,
		Recall:           tp / nP,
		Precision:        tp / (tp + fp),
		OverallAccuracy:  (tp + tn) / (nP + nN),
		Deviation:        (tp + fp - nP) / nP,
		Kappa:            CohenKappa(cm),
	}
	m.F = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	m.G = math.Sqrt(m.TrueNegativeRate * m.Recall)
	return m
}

// CohenKappa returns the agreement between truth and prediction corrected for
// chance.
func CohenKappa(cm ConfusionMatrix) float64 {
	n := float64(cm.Total())
	if n == 0 {
		return math.NaN()
	}
	observed := float64(cm.TP+cm.TN) / n
	truePos, trueNeg := float64(cm.TP+cm.FN), float64(cm.FP+cm.TN)
	predPos, predNeg := float64(cm.TP+cm.FP), float64(cm.FN+cm.TN)
	expected := (truePos*predPos + trueNeg*predNeg) / (n * n)
	return (observed - expected) / (1 - expected)
}
