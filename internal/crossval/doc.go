// Package crossval runs stratified k-fold cross-validation of a binary
// classifier over a feature matrix and summarises the folds.
//
// The classifier itself is supplied by the caller through a
// ClassifierFactory; this package only splits, imputes, balances and scores.
// A Dataset is built once, usually with FromTable, and narrowed with View
// selections that share its arrays:
//
//	d, err := crossval.FromTable(trf, "class", "region", 1)
//	cv, err := crossval.New(crossval.DefaultConfig(), factory, logger)
//	res, err := cv.Run(ctx, d.View().SelectStrata("north"))
//	top, err := res.FeatureImportance(crossval.ByCount, 20, 0, 1)
package crossval
