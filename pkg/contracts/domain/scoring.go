package domain

// Measures holds the scores derived from a binary confusion matrix.
type Measures struct {
	TrueNegativeRate float64 `json:"true_negative_rate" yaml:"true_negative_rate"`
	Recall           float64 `json:"recall" yaml:"recall"`
	Precision        float64 `json:"precision" yaml:"precision"`
	OverallAccuracy  float64 `json:"overall_acc" yaml:"overall_acc"`
	// Deviation is the relative over- or under-prediction of the positive class.
	Deviation float64 `json:"deviation" yaml:"deviation"`
	F         float64 `json:"F" yaml:"F"`
	G         float64 `json:"G" yaml:"G"`
	Kappa     float64 `json:"kappa" yaml:"kappa"`
}

// MeasureNames lists the measure keys in report order.
var MeasureNames = []string{
	"true_negative_rate", "recall", "precision", "overall_acc", "deviation", "F", "G", "kappa",
}

// Values returns the measures in MeasureNames order.
func (m Measures) Values() []float64 {
	return []float64{
		m.TrueNegativeRate, m.Recall, m.Precision, m.OverallAccuracy,
		m.Deviation, m.F, m.G, m.Kappa,
	}
}

// MeasuresFromValues is the inverse of Values.
func MeasuresFromValues(v []float64) Measures {
	if len(v) < len(MeasureNames) {
		return Measures{}
	}
	return Measures{
		TrueNegativeRate: v[0],
		Recall:           v[1],
		Precision:        v[2],
		OverallAccuracy:  v[3],
		Deviation:        v[4],
		F:                v[5],
		G:                v[6],
		Kappa:            v[7],
	}
}

// Curve is a curve sampled on a shared x grid, averaged over folds.
type Curve struct {
	X    []float64 `json:"x"`
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
	// AUC is the mean area under the per-fold curves, when known.
	AUC float64 `json:"auc,omitempty"`
}

// FeatureImportance is one feature's averaged importance.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// FoldReport summarises one cross-validation fold.
type FoldReport struct {
	Fold     int      `json:"fold"`
	Train    int      `json:"train"`
	Test     int      `json:"test"`
	Measures Measures `json:"measures"`
	ROCAUC   float64  `json:"roc_auc"`
}
