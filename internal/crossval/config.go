package crossval

import (
	"runtime"

	"gonum.org/v1/gonum/mat"

	"roicli/internal/validation"
)

// Config holds the tunables of a cross-validation run. It is passed by
// value; nothing is shared between runs.
type Config struct {
	Seed  uint64 `yaml:"seed" envconfig:"SEED"`
	Folds int    `yaml:"folds" envconfig:"FOLDS" validate:"min=2"`
	// Trees is forwarded to ensemble classifiers.
	Trees int `yaml:"trees" envconfig:"TREES" validate:"min=1"`
	// Jobs bounds the number of folds fitted at once. Zero means GOMAXPROCS.
	Jobs int `yaml:"jobs" envconfig:"JOBS" validate:"min=0"`
	// Positive is the class column value treated as the positive class.
	Positive float64 `yaml:"positive" envconfig:"POSITIVE"`
	// Oversample balances the training split of every fold.
	Oversample bool `yaml:"oversample" envconfig:"OVERSAMPLE"`
	// Impute replaces missing values with the column mean, train and test
	// split separately.
	Impute bool `yaml:"impute" envconfig:"IMPUTE"`
}

// DefaultConfig returns seed 42, two folds and fifty trees.
func DefaultConfig() Config {
	return Config{
		Seed:       42,
		Folds:      2,
		Trees:      50,
		Positive:   1,
		Oversample: true,
		Impute:     true,
	}
}

// Validate checks the numeric bounds.
func (c Config) Validate() error {
	return validation.Struct(c)
}

func (c Config) jobs() int {
	if c.Jobs > 0 {
		return c.Jobs
	}
	return runtime.GOMAXPROCS(0)
}

// Classifier is a binary classification model. Implementations need not be
// safe for concurrent use; Run builds one per fold.
type Classifier interface {
	Fit(x mat.Matrix, y []bool) error
	Predict(x mat.Matrix) ([]bool, error)
	// PredictProba returns one column per entry of Classes.
	PredictProba(x mat.Matrix) (*mat.Dense, error)
	Classes() []bool
	FeatureImportances() []float64
}

// ClassifierFactory builds a fresh, unfitted classifier.
type ClassifierFactory func(Config) Classifier
