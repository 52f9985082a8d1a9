// Package exporter writes tables and cross-validation reports as CSV.
//
// WriteTable lays out multi-level column keys as stacked header rows so a
// TRF table keeps its (feature, relative label) columns and its
// (time, id) rows:
//
//	err := exporter.WriteTable(f, trfTable)
//	back, err := exporter.ReadTable(f, 2, 2)
//
// WriteFoldReport and WriteImportances render crossval results.
package exporter
