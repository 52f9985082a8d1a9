package config

import "path/filepath"

// Resolve joins a relative name onto OutputDir. Absolute names are returned
// unchanged.
func (p PathsConfig) Resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(p.OutputDir, name)
}
