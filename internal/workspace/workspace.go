package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/figicons/internal/logfields"
)

// Ext is the extension of every scratch file.
const Ext = ".svg"

// Manager handles the scratch directory of a run.
type Manager struct {
	dir      string
	prepared bool
}

// NewManager creates a manager for dir. An empty dir disables scratch files.
func NewManager(dir string) *Manager {
	return &Manager{dir: dir}
}

// Enabled reports whether a scratch directory is configured.
func (m *Manager) Enabled() bool {
	return m != nil && m.dir != ""
}

// Prepare ensures the directory exists and removes stale markup files.
// Files with other extensions are left alone.
func (m *Manager) Prepare() error {
	if !m.Enabled() {
		return nil
	}
	if err := os.MkdirAll(m.dir, 0o750); err != nil {
		return fmt.Errorf("failed to create scratch directory: %w", err)
	}

	stale, err := m.Files()
	if err != nil {
		return err
	}
	for _, path := range stale {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove stale scratch file: %w", err)
		}
	}

	m.prepared = true
	slog.Debug("Prepared scratch directory", logfields.Path(m.dir), logfields.Count(len(stale)))
	return nil
}

// Files lists the markup files in the directory in name order, without
// preparing it.
func (m *Manager) Files() ([]string, error) {
	if !m.Enabled() {
		return nil, fmt.Errorf("scratch directory not configured")
	}
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scratch directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), Ext) {
			continue
		}
		files = append(files, filepath.Join(m.dir, e.Name()))
	}
	return files, nil
}

// GetPath returns the scratch directory ("" when disabled).
func (m *Manager) GetPath() string {
	if m == nil {
		return ""
	}
	return m.dir
}

// FilePath returns the scratch file for an icon name.
func (m *Manager) FilePath(name string) (string, error) {
	if !m.Enabled() {
		return "", fmt.Errorf("scratch directory not configured")
	}
	if !m.prepared {
		return "", fmt.Errorf("scratch directory not prepared")
	}
	return filepath.Join(m.dir, name+Ext), nil
}
