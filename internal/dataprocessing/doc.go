// Package dataprocessing loads TAF tables from disk.
//
// A TAF file has one row per object and one column per feature and
// acquisition, named "<feature>_<julian day>". The first column holds the
// object ids; its header names the id level.
//
//	tbl, err := dataprocessing.ReadTAFCSV(f)
//	tbl, err := dataprocessing.ReadTAFXLSX("scene.xlsx", "")
//
// Feature files produced per scene or per feature are joined on the object
// id with ConcatColumns. Cells reading "", NA or NaN are missing; a table
// whose cells are all whole numbers keeps the Int kind.
package dataprocessing
