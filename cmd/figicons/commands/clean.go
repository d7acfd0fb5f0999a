package commands

import (
	"fmt"

	"git.home.luguber.info/inful/figicons/internal/config"
	ferrors "git.home.luguber.info/inful/figicons/internal/foundation/errors"
	"git.home.luguber.info/inful/figicons/internal/logfields"
	"git.home.luguber.info/inful/figicons/internal/normalize"
	"git.home.luguber.info/inful/figicons/internal/workspace"
)

// CleanCmd implements the 'clean' command.
type CleanCmd struct {
	ScratchDir string `name:"scratch-dir" help:"Directory of downloaded icons to optimize (overrides download.scratch_dir)"`
}

func (c *CleanCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	if c.ScratchDir != "" {
		cfg.Download.ScratchDir = c.ScratchDir
	}
	configureLogging(g, root, cfg)
	return RunClean(g, cfg.Download.ScratchDir)
}

// RunClean optimizes every icon in dir in place. Icons the optimizer rejects
// are reported and left as they are.
func RunClean(g *Global, dir string) error {
	if dir == "" {
		return ferrors.ConfigError("no scratch directory configured").
			WithContext("hint", "set download.scratch_dir or pass --scratch-dir").
			Build()
	}
	files, err := workspace.NewManager(dir).Files()
	if err != nil {
		return ferrors.FileSystemError("failed to list scratch directory").
			WithCause(err).
			WithContext("path", dir).
			Build()
	}

	res, err := normalize.NewNormalizer().CleanFiles(files)
	if err != nil {
		return err
	}
	for _, s := range res.Skipped {
		g.Logger.Warn("Skipping icon", logfields.Icon(s.Name), logfields.Error(s.Err))
	}

	_, _ = fmt.Fprintf(g.Stdout, "Cleaned %d icons in %s\n", len(res.Cleaned), dir)
	if len(res.Skipped) > 0 {
		_, _ = fmt.Fprintf(g.Stdout, "Skipped %d of %d icons (not optimizable)\n", len(res.Skipped), len(files))
	}
	return nil
}
