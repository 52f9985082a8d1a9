package scoring

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	apperrors "roicli/internal/errors"
)

// Summary reduces per-stratum error counts to one number.
type Summary func([]float64) float64

// Mean is the default Summary.
func Mean(values []float64) float64 {
	return stat.Mean(values, nil)
}

// StratumErrors is the error count of one stratum.
type StratumErrors struct {
	Stratum string
	Samples int
	Errors  float64
}

// ErrorsPerStratum counts misclassified samples in every stratum, strata
// sorted ascending. When denominator is positive each count is divided by
// samples/denominator, giving errors per denominator samples. The second
// return value is summary applied to the counts; nil means Mean.
func ErrorsPerStratum(yTrue, yPred []bool, strata []string, summary Summary, denominator float64) ([]StratumErrors, float64, error) {
	if err := checkLengths(len(yTrue), len(yPred), "errors per stratum"); err != nil {
		return nil, 0, err
	}
	if len(strata) != len(yTrue) {
		return nil, 0, apperrors.NewValidationError(
			fmt.Sprintf("errors per stratum: got %d truths and %d strata", len(yTrue), len(strata)))
	}
	if len(strata) == 0 {
		return nil, 0, apperrors.NewValidationError("errors per stratum needs at least one sample")
	}
	if summary == nil {
		summary = Mean
	}

	byStratum := make(map[string]*StratumErrors)
	for i, s := range strata {
		e, ok := byStratum[s]
		if !ok {
			e = &StratumErrors{Stratum: s}
			byStratum[s] = e
		}
		e.Samples++
		if yTrue[i] != yPred[i] {
			e.Errors++
		}
	}

	out := make([]StratumErrors, 0, len(byStratum))
	for _, e := range byStratum {
		if denominator > 0 {
			e.Errors /= float64(e.Samples) / denominator
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Stratum < out[j].Stratum })

	counts := make([]float64, len(out))
	for i, e := range out {
		counts[i] = e.Errors
	}
	return out, summary(counts), nil
}
