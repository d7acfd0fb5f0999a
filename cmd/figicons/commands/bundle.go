package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/figicons/internal/config"
	"git.home.luguber.info/inful/figicons/internal/logfields"
	"git.home.luguber.info/inful/figicons/internal/metrics"
	"git.home.luguber.info/inful/figicons/internal/observability"
	"git.home.luguber.info/inful/figicons/internal/pipeline"
)

// BundleCmd implements the 'bundle' command.
type BundleCmd struct {
	SelectionFlags `embed:""`

	Page        string `short:"p" help:"Page to read icons from (default: first page)"`
	Size        int    `short:"s" help:"Only bundle icons of this width and height"`
	Prefix      string `help:"Only bundle icons whose name starts with this prefix"`
	Output      string `short:"o" help:"Output directory for the bundle file"`
	Format      string `help:"Bundle entry format (inline|file)"`
	ScratchDir  string `name:"scratch-dir" help:"Also write every downloaded icon to this directory"`
	Concurrency int    `help:"Maximum parallel downloads (0 = unbounded, -1 = configured value)" default:"-1"`
	Retries     int    `help:"Retry transient export failures this many times (-1 = configured value)" default:"-1"`
	Report      string `name:"report" help:"Write the run report as JSON to this file"`
	Metrics     string `name:"metrics-textfile" help:"Write Prometheus metrics to this textfile"`
}

// apply overrides configuration values with the flags that were set.
func (b *BundleCmd) apply(cfg *config.Config) {
	b.SelectionFlags.apply(cfg)
	if b.Page != "" {
		cfg.Selection.Page = b.Page
	}
	if b.Size > 0 {
		cfg.Selection.Size = b.Size
	}
	if b.Prefix != "" {
		cfg.Selection.Prefix = b.Prefix
	}
	if b.Output != "" {
		cfg.Output.Directory = b.Output
	}
	if b.Format != "" {
		cfg.Output.Format = config.BundleFormat(b.Format)
	}
	if b.ScratchDir != "" {
		cfg.Download.ScratchDir = b.ScratchDir
	}
	if b.Concurrency >= 0 {
		cfg.Download.Concurrency = b.Concurrency
	}
	if b.Retries >= 0 {
		cfg.Export.Retry.MaxRetries = b.Retries
	}
	if b.Report != "" {
		cfg.Output.ReportFile = b.Report
	}
	if b.Metrics != "" {
		cfg.Metrics.Textfile = b.Metrics
	}
}

func (b *BundleCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	b.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	configureLogging(g, root, cfg)
	return RunBundle(context.Background(), g, cfg)
}

// RunBundle executes one bundling run for cfg and prints the final count.
func RunBundle(ctx context.Context, g *Global, cfg *config.Config) error {
	shutdown, err := observability.SetupTracing(ctx, cfg.Tracing)
	if err != nil {
		g.Logger.Warn("Tracing disabled", logfields.Error(err))
	}
	defer func() { _ = shutdown(context.Background()) }()

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var prom *metrics.PrometheusRecorder
	if cfg.Metrics.Textfile != "" {
		prom = metrics.NewPrometheusRecorder(nil)
		recorder = prom
	}

	client, err := newClient(g, cfg)
	if err != nil {
		return err
	}
	deps := pipeline.ClientDeps(client)
	deps.Recorder = recorder
	deps.Logger = g.Logger

	report, runErr := pipeline.New(deps, pipeline.OptionsFromConfig(cfg)).Run(ctx)

	if prom != nil {
		if err := prom.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			g.Logger.Warn("Failed to write metrics textfile", logfields.Path(cfg.Metrics.Textfile), logfields.Error(err))
		}
	}
	if runErr != nil {
		return runErr
	}

	_, _ = fmt.Fprintf(g.Stdout, "Bundled %d icons into %s\n", report.Bundled, cfg.OutputPath())
	if dropped := report.Dropped(); dropped > 0 {
		_, _ = fmt.Fprintf(g.Stdout, "Skipped %d of %d icons (%d not exported, %d failed to download, %d not optimizable)\n",
			dropped, report.Candidates, len(report.Missing), len(report.DownloadFailures), len(report.Skipped))
	}
	return nil
}
