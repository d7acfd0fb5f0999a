package bundle

import (
	"fmt"
	"os"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/figicons/internal/foundation/errors"
)

// Writer persists a bundle to the internal index and the user-facing file.
type Writer struct {
	paths []string
}

// NewWriter creates a Writer for the given destinations.
func NewWriter(indexPath, outputPath string) *Writer {
	return &Writer{paths: []string{indexPath, outputPath}}
}

// Paths returns the destinations.
func (w *Writer) Paths() []string {
	return append([]string(nil), w.paths...)
}

// Write replaces every destination with the encoded bundle and returns the
// icon count. All temp files are written before any rename, so a failed
// encode or temp write leaves the destinations untouched.
func (w *Writer) Write(b *Bundle) (int, error) {
	data, err := b.Encode()
	if err != nil {
		return 0, ferrors.InternalError("failed to encode bundle").WithCause(err).Build()
	}

	tmps := make([]string, 0, len(w.paths))
	cleanup := func() {
		for _, t := range tmps {
			_ = os.Remove(t)
		}
	}

	for _, p := range w.paths {
		if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
			cleanup()
			return 0, fsError("failed to create bundle directory", p, err)
		}
		tmp := p + ".tmp"
		if err := os.WriteFile(tmp, data, 0o644); err != nil { // #nosec G306 -- bundle is meant to be read by other tools
			cleanup()
			return 0, fsError("failed to write temp bundle", tmp, err)
		}
		tmps = append(tmps, tmp)
	}

	for i, p := range w.paths {
		if err := os.Rename(tmps[i], p); err != nil {
			cleanup()
			return 0, fsError("failed to replace bundle", p, fmt.Errorf("atomic rename: %w", err))
		}
	}
	return b.Len(), nil
}

func fsError(msg, path string, err error) error {
	return ferrors.FileSystemError(msg).
		WithCause(err).
		WithContext("path", path).
		Build()
}
