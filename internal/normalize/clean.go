package normalize

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/figicons/internal/foundation/errors"
)

// CleanResult lists the files a clean pass rewrote and the ones it left alone.
type CleanResult struct {
	Cleaned []string
	Skipped []Skip
}

// CleanFiles runs the optimizer over each markup file and writes the result
// back in place. Colors are not neutralized. A file the optimizer rejects
// keeps its content and is reported as a skip; read and write failures stop
// the pass.
func (n *Normalizer) CleanFiles(paths []string) (CleanResult, error) {
	var res CleanResult
	for _, path := range paths {
		// #nosec G304 -- paths come from the scratch directory listing
		raw, err := os.ReadFile(path)
		if err != nil {
			return res, cleanError("failed to read icon", path, err)
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

		optimized, err := n.optimizer.Optimize(raw)
		if err == nil && len(bytes.TrimSpace(optimized)) == 0 {
			err = ferrors.MarkupError("optimizer produced no markup").Build()
		}
		if err != nil {
			res.Skipped = append(res.Skipped, Skip{
				Name: name,
				Err: ferrors.From(ferrors.ErrNormalizationSkip).
					WithCause(err).
					WithContext("icon", name).
					WithContext("path", path).
					Build(),
			})
			continue
		}

		if err := replaceFile(path, optimized); err != nil {
			return res, cleanError("failed to write icon", path, err)
		}
		res.Cleaned = append(res.Cleaned, path)
	}
	return res, nil
}

// replaceFile swaps in data through a temp file so a reader never sees a
// half-written icon.
func replaceFile(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, info.Mode().Perm()); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func cleanError(message, path string, cause error) error {
	return ferrors.FileSystemError(message).
		WithCause(cause).
		WithContext("path", path).
		Build()
}
