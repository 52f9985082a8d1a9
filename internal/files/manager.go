package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Manager creates output files below a base directory.
type Manager struct {
	baseDir string
	logger  *slog.Logger
}

// NewManager creates a new file manager instance
func NewManager(baseDir string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{baseDir: baseDir, logger: logger}
}

// Create opens path for writing, truncating it, after creating its parent
// directories. Relative paths are resolved against the base directory.
func (m *Manager) Create(path string) (*os.File, error) {
	fullPath := m.resolvePath(path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	m.logger.Info("Writing file",
		slog.String("path", path),
		slog.String("full_path", fullPath))

	f, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", fullPath, err)
	}
	return f, nil
}

// resolvePath resolves a path relative to the base directory
func (m *Manager) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.baseDir, path)
}
