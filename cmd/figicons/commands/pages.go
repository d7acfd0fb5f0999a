package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/figicons/internal/config"
	"git.home.luguber.info/inful/figicons/internal/selector"
)

// PagesCmd implements the 'pages' command.
type PagesCmd struct {
	SelectionFlags `embed:""`
}

func (p *PagesCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	p.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	configureLogging(g, root, cfg)

	client, err := newClient(g, cfg)
	if err != nil {
		return err
	}
	file, err := client.GetFile(context.Background(), cfg.Figma.FileKey)
	if err != nil {
		return err
	}
	for _, name := range selector.Pages(file.Document) {
		_, _ = fmt.Fprintln(g.Stdout, name)
	}
	return nil
}
