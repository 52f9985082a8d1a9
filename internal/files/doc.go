// Package files provides file discovery and output file helpers.
//
// Discovery finds TAF inputs by extension, recursively and ignoring case:
//
//	paths, err := files.FindByExtension("scenes", ".csv")
//
// Manager creates output files below a base directory, creating parent
// directories as needed:
//
//	m := files.NewManager("output", logger)
//	f, err := m.Create("trf.csv")
package files
