package crossval

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	apperrors "roicli/internal/errors"
	"roicli/internal/scoring"
	"roicli/pkg/contracts/domain"
)

// Fold holds the outcome of one train/test split.
type Fold struct {
	Split       Split
	Probability []float64
	Predicted   []bool
	Truth       []bool
	Importance  []float64
	Confusion   scoring.ConfusionMatrix
	Measures    domain.Measures
	ROC         scoring.ROC
	AUC         float64
	PR          scoring.PR
}

// Result collects the folds of a cross-validation run.
type Result struct {
	Features []string
	Folds    []Fold
}

// CrossValidator fits a fresh classifier on every fold of a view.
type CrossValidator struct {
	cfg     Config
	factory ClassifierFactory
	logger  *slog.Logger
}

// New validates cfg and returns a CrossValidator. A nil logger uses
// slog.Default.
func New(cfg Config, factory ClassifierFactory, logger *slog.Logger) (*CrossValidator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("cross-validation config: %w", err)
	}
	if factory == nil {
		return nil, apperrors.NewInvalidConfigurationError("cross-validation needs a classifier factory")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CrossValidator{cfg: cfg, factory: factory, logger: logger}, nil
}

// Config returns the configuration the validator was built with.
func (cv *CrossValidator) Config() Config { return cv.cfg }

// Run splits v with StratifiedKFold and scores every fold. Folds are fitted
// concurrently, at most Config.Jobs at a time.
func (cv *CrossValidator) Run(ctx context.Context, v View) (*Result, error) {
	if v.Len() == 0 || len(v.cols) == 0 {
		return nil, apperrors.NewValidationError("cross-validation needs a non-empty view")
	}
	y := v.Labels()
	splits, err := StratifiedKFold(y, cv.cfg.Folds, cv.cfg.Seed)
	if err != nil {
		return nil, err
	}
	x := v.Matrix()
	if !cv.cfg.Impute && HasMissing(x) {
		return nil, apperrors.NewValidationError("all values need to be finite when imputation is off")
	}

	cv.logger.InfoContext(ctx, "starting cross-validation",
		slog.Int("samples", v.Len()),
		slog.Int("features", len(v.cols)),
		slog.Int("folds", cv.cfg.Folds),
		slog.Int("jobs", cv.cfg.jobs()))

	folds := make([]Fold, len(splits))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cv.cfg.jobs())
	for i, split := range splits {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fold, err := cv.fitFold(x, y, split)
			if err != nil {
				return fmt.Errorf("fold %d: %w", i, err)
			}
			folds[i] = fold
			cv.logger.DebugContext(ctx, "fold scored",
				slog.Int("fold", i),
				slog.Int("train", len(split.Train)),
				slog.Int("test", len(split.Test)),
				slog.Float64("roc_auc", fold.AUC))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Result{Features: v.Features(), Folds: folds}, nil
}

func (cv *CrossValidator) fitFold(x *mat.Dense, y []bool, split Split) (Fold, error) {
	xTrain, yTrain := takeRows(x, y, split.Train)
	xTest, yTest := takeRows(x, y, split.Test)
	if cv.cfg.Impute {
		xTrain = ImputeMean(xTrain)
		xTest = ImputeMean(xTest)
	}
	if cv.cfg.Oversample {
		xTrain, yTrain = RandomOversample(xTrain, yTrain, cv.cfg.Seed)
	}

	fold, err := cv.score(xTrain, yTrain, xTest, yTest)
	fold.Split = split
	return fold, err
}

// PredictOther fits on train and scores test, for transferring a model
// between strata.
func (cv *CrossValidator) PredictOther(ctx context.Context, train, test View) (Fold, error) {
	if train.Len() == 0 || test.Len() == 0 {
		return Fold{}, apperrors.NewValidationError("train and test views must not be empty")
	}
	xTrain, xTest := train.Matrix(), test.Matrix()
	if _, c := xTest.Dims(); c != len(train.cols) {
		return Fold{}, apperrors.NewValidationError(
			fmt.Sprintf("train has %d features, test has %d", len(train.cols), c))
	}
	if cv.cfg.Impute {
		xTrain = ImputeMean(xTrain)
		xTest = ImputeMean(xTest)
	}
	cv.logger.InfoContext(ctx, "predicting other view",
		slog.Int("train", train.Len()),
		slog.Int("test", test.Len()))
	return cv.score(xTrain, train.Labels(), xTest, test.Labels())
}

// StrataFold is the outcome of fitting on the Train stratum and scoring the
// Test stratum.
type StrataFold struct {
	Train string
	Test  string
	Fold  Fold
}

// ByStrata fits on each stratum of v and scores every other stratum, over
// all ordered pairs of distinct strata in first-seen order. Pairs are
// fitted concurrently, at most Config.Jobs at a time.
func (cv *CrossValidator) ByStrata(ctx context.Context, v View) ([]StrataFold, error) {
	strata := v.Strata()
	if strata == nil {
		return nil, apperrors.NewValidationError("view carries no strata")
	}
	var names []string
	seen := make(map[string]bool)
	for _, s := range strata {
		if !seen[s] {
			seen[s] = true
			names = append(names, s)
		}
	}
	if len(names) < 2 {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("training on other strata needs at least two strata, got %d", len(names)))
	}

	views := make(map[string]View, len(names))
	for _, s := range names {
		views[s] = v.SelectStrata(s)
	}
	var out []StrataFold
	for _, train := range names {
		for _, test := range names {
			if train != test {
				out = append(out, StrataFold{Train: train, Test: test})
			}
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cv.cfg.jobs())
	for i := range out {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fold, err := cv.PredictOther(ctx, views[out[i].Train], views[out[i].Test])
			if err != nil {
				return fmt.Errorf("train %s, test %s: %w", out[i].Train, out[i].Test, err)
			}
			out[i].Fold = fold
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (cv *CrossValidator) score(xTrain *mat.Dense, yTrain []bool, xTest *mat.Dense, yTest []bool) (Fold, error) {
	clf := cv.factory(cv.cfg)
	if err := clf.Fit(xTrain, yTrain); err != nil {
		return Fold{}, fmt.Errorf("fit: %w", err)
	}
	proba, err := clf.PredictProba(xTest)
	if err != nil {
		return Fold{}, fmt.Errorf("predict probabilities: %w", err)
	}
	positive := -1
	for j, c := range clf.Classes() {
		if c {
			positive = j
		}
	}
	if positive < 0 {
		return Fold{}, apperrors.NewValidationError("classifier was not trained on the positive class")
	}
	predicted, err := clf.Predict(xTest)
	if err != nil {
		return Fold{}, fmt.Errorf("predict: %w", err)
	}

	fold := Fold{
		Probability: mat.Col(nil, positive, proba),
		Predicted:   predicted,
		Truth:       yTest,
		Importance:  clf.FeatureImportances(),
	}
	if fold.Confusion, err = scoring.Confusion(yTest, predicted); err != nil {
		return Fold{}, err
	}
	fold.Measures = scoring.Measures(fold.Confusion)
	if fold.ROC, err = scoring.ROCCurve(yTest, fold.Probability); err != nil {
		return Fold{}, err
	}
	fold.AUC = fold.ROC.AUC()
	if fold.PR, err = scoring.PrecisionRecallCurve(yTest, fold.Probability); err != nil {
		return Fold{}, err
	}
	return fold, nil
}

func takeRows(x *mat.Dense, y []bool, rows []int) (*mat.Dense, []bool) {
	_, c := x.Dims()
	out := mat.NewDense(len(rows), c, nil)
	labels := make([]bool, len(rows))
	for i, r := range rows {
		out.SetRow(i, x.RawRowView(r))
		labels[i] = y[r]
	}
	return out, labels
}
