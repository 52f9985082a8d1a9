package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"roicli/pkg/contracts/domain"
)

// FoldReportHeaders returns the header row written by WriteFoldReport.
func FoldReportHeaders() []string {
	headers := []string{"fold", "train", "test"}
	headers = append(headers, domain.MeasureNames...)
	return append(headers, "roc_auc")
}

// WriteFoldReport writes one row of measures per fold, followed by a "mean"
// row when mean is non-nil.
func WriteFoldReport(w io.Writer, folds []domain.FoldReport, mean *domain.Measures) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(FoldReportHeaders()); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for _, f := range folds {
		record := []string{strconv.Itoa(f.Fold), strconv.Itoa(f.Train), strconv.Itoa(f.Test)}
		for _, v := range f.Measures.Values() {
			record = append(record, formatCell(v))
		}
		record = append(record, formatCell(f.ROCAUC))
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write fold %d: %w", f.Fold, err)
		}
	}

	if mean != nil {
		record := []string{"mean", "", ""}
		for _, v := range mean.Values() {
			record = append(record, formatCell(v))
		}
		record = append(record, "")
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write mean row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteImportances writes feature,importance rows.
func WriteImportances(w io.Writer, importances []domain.FeatureImportance) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"feature", "importance"}); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for _, fi := range importances {
		if err := writer.Write([]string{fi.Feature, formatCell(fi.Importance)}); err != nil {
			return fmt.Errorf("failed to write %s: %w", fi.Feature, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
