package scoring

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"

	apperrors "roicli/internal/errors"
	"roicli/pkg/contracts/domain"
)

// GridSize is the number of points MeanCurve samples in [0, 1].
const GridSize = 100

// ROC is a receiver operating characteristic curve. Thresholds decrease;
// the first point is (0, 0) at +Inf.
type ROC struct {
	FPR        []float64
	TPR        []float64
	Thresholds []float64
}

// PR is a precision-recall curve with recall decreasing to 0. The last point
// is (recall 0, precision 1) and has no threshold.
type PR struct {
	Precision  []float64
	Recall     []float64
	Thresholds []float64
}

// cumulative sorts scores descending and returns true and false positive
// counts at each distinct threshold.
func cumulative(yTrue []bool, scores []float64) (tps, fps, thresholds []float64, err error) {
	if err := checkLengths(len(yTrue), len(scores), "curve"); err != nil {
		return nil, nil, nil, err
	}
	if len(scores) == 0 {
		return nil, nil, nil, apperrors.NewValidationError("curve needs at least one score")
	}
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	var tp, fp float64
	for k, i := range order {
		if yTrue[i] {
			tp++
		} else {
			fp++
		}
		if k+1 < len(order) && scores[order[k+1]] == scores[i] {
			continue
		}
		tps = append(tps, tp)
		fps = append(fps, fp)
		thresholds = append(thresholds, scores[i])
	}
	return tps, fps, thresholds, nil
}

func requireBothClasses(yTrue []bool, what string) error {
	var pos, neg bool
	for _, t := range yTrue {
		pos = pos || t
		neg = neg || !t
	}
	if !pos || !neg {
		return apperrors.NewValidationError(what + " is undefined when only one class is present")
	}
	return nil
}

// ROCCurve computes the ROC curve of scores, where higher means more likely
// positive. Every distinct threshold is kept.
func ROCCurve(yTrue []bool, scores []float64) (ROC, error) {
	if err := requireBothClasses(yTrue, "ROC curve"); err != nil {
		return ROC{}, err
	}
	tps, fps, thr, err := cumulative(yTrue, scores)
	if err != nil {
		return ROC{}, err
	}
	n := len(tps)
	roc := ROC{
		FPR:        make([]float64, n+1),
		TPR:        make([]float64, n+1),
		Thresholds: append([]float64{math.Inf(1)}, thr...),
	}
	for i := 0; i < n; i++ {
		roc.FPR[i+1] = fps[i] / fps[n-1]
		roc.TPR[i+1] = tps[i] / tps[n-1]
	}
	return roc, nil
}

// AUC returns the trapezoidal area under the curve.
func (r ROC) AUC() float64 {
	if len(r.FPR) < 2 {
		return math.NaN()
	}
	return integrate.Trapezoidal(r.FPR, r.TPR)
}

// ROCAUC is ROCCurve followed by AUC.
func ROCAUC(yTrue []bool, scores []float64) (float64, error) {
	roc, err := ROCCurve(yTrue, scores)
	if err != nil {
		return 0, err
	}
	return roc.AUC(), nil
}

// PrecisionRecallCurve computes precision and recall at each distinct
// threshold up to the first one reaching full recall.
func PrecisionRecallCurve(yTrue []bool, scores []float64) (PR, error) {
	tps, fps, thr, err := cumulative(yTrue, scores)
	if err != nil {
		return PR{}, err
	}
	positives := tps[len(tps)-1]
	if positives == 0 {
		return PR{}, apperrors.NewValidationError("precision-recall curve needs at least one positive")
	}

	last := len(tps) - 1
	for i, tp := range tps {
		if tp == positives {
			last = i
			break
		}
	}
	pr := PR{
		Precision:  make([]float64, 0, last+2),
		Recall:     make([]float64, 0, last+2),
		Thresholds: make([]float64, 0, last+1),
	}
	for i := last; i >= 0; i-- {
		pr.Precision = append(pr.Precision, tps[i]/(tps[i]+fps[i]))
		pr.Recall = append(pr.Recall, tps[i]/positives)
		pr.Thresholds = append(pr.Thresholds, thr[i])
	}
	pr.Precision = append(pr.Precision, 1)
	pr.Recall = append(pr.Recall, 0)
	return pr, nil
}

// InterpolatePR reverses the curve so recall increases and replaces
// precision by the best precision reachable at that recall or higher.
func InterpolatePR(precision, recall []float64) (envelope, increasingRecall []float64) {
	n := len(precision)
	envelope = make([]float64, n)
	increasingRecall = make([]float64, len(recall))
	for i := range precision {
		envelope[i] = precision[n-1-i]
	}
	for i := range recall {
		increasingRecall[i] = recall[len(recall)-1-i]
	}
	for j := n - 2; j >= 0; j-- {
		envelope[j] = math.Max(envelope[j], envelope[j+1])
	}
	return envelope, increasingRecall
}

// Interp evaluates the piecewise linear function through (xp, fp) at x.
// xp must be non-decreasing. Values outside the range clamp to the end
// points; on repeated xp the right-most point wins.
func Interp(x float64, xp, fp []float64) float64 {
	n := len(xp)
	j := sort.Search(n, func(i int) bool { return xp[i] > x }) - 1
	switch {
	case j < 0:
		return fp[0]
	case j >= n-1:
		return fp[n-1]
	}
	slope := (fp[j+1] - fp[j]) / (xp[j+1] - xp[j])
	return fp[j] + slope*(x-xp[j])
}

// MeanCurve samples every (xs[i], ys[i]) curve on GridSize points in [0, 1]
// and returns their pointwise mean and population standard deviation. With
// correctFirstLast the mean is pinned to 0 at the first point and 1 at the
// last before the deviation is taken.
func MeanCurve(xs, ys [][]float64, correctFirstLast bool) (domain.Curve, error) {
	if len(xs) == 0 || len(xs) != len(ys) {
		return domain.Curve{}, apperrors.NewValidationError("mean curve needs the same non-zero number of x and y series")
	}
	for i := range xs {
		if len(xs[i]) == 0 || len(xs[i]) != len(ys[i]) {
			return domain.Curve{}, apperrors.NewValidationError("mean curve series must be non-empty and of equal length")
		}
	}

	grid := make([]float64, GridSize)
	floats.Span(grid, 0, 1)
	samples := make([][]float64, len(xs))
	for i := range xs {
		samples[i] = make([]float64, GridSize)
		for k, x := range grid {
			samples[i][k] = Interp(x, xs[i], ys[i])
		}
	}

	n := float64(len(xs))
	mean := make([]float64, GridSize)
	for _, s := range samples {
		floats.Add(mean, s)
	}
	floats.Scale(1/n, mean)
	if correctFirstLast {
		mean[0] = 0
		mean[GridSize-1] = 1
	}

	std := make([]float64, GridSize)
	for _, s := range samples {
		for k := range s {
			d := s[k] - mean[k]
			std[k] += d * d
		}
	}
	for k := range std {
		std[k] = math.Sqrt(std[k] / n)
	}
	return domain.Curve{X: grid, Mean: mean, Std: std}, nil
}
