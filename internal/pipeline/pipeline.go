// Package pipeline runs the icon bundling stages in order: read the
// document, select candidates, resolve names, export, download, normalize
// and write the bundle.
package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/figicons/internal/bundle"
	"git.home.luguber.info/inful/figicons/internal/config"
	"git.home.luguber.info/inful/figicons/internal/export"
	"git.home.luguber.info/inful/figicons/internal/fetch"
	"git.home.luguber.info/inful/figicons/internal/figma"
	ferrors "git.home.luguber.info/inful/figicons/internal/foundation/errors"
	"git.home.luguber.info/inful/figicons/internal/logfields"
	"git.home.luguber.info/inful/figicons/internal/metrics"
	"git.home.luguber.info/inful/figicons/internal/naming"
	"git.home.luguber.info/inful/figicons/internal/normalize"
	"git.home.luguber.info/inful/figicons/internal/observability"
	"git.home.luguber.info/inful/figicons/internal/retry"
	"git.home.luguber.info/inful/figicons/internal/selector"
	"git.home.luguber.info/inful/figicons/internal/workspace"
)

// DocumentReader reads a document tree. *figma.Client implements it.
type DocumentReader interface {
	GetFile(ctx context.Context, key string) (*figma.File, error)
}

// Deps are the collaborators of a run. Document, Exporter and Downloader
// are required; the rest default to no-ops.
type Deps struct {
	Document   DocumentReader
	Exporter   export.Exporter
	Downloader fetch.Downloader
	// Optimizer replaces the SVG minifier when set.
	Optimizer normalize.Optimizer
	Recorder  metrics.Recorder
	Logger    *slog.Logger
}

// ClientDeps wires every remote capability to one API client.
func ClientDeps(c *figma.Client) Deps {
	return Deps{Document: c, Exporter: c, Downloader: c}
}

// Options are the per-run settings.
type Options struct {
	FileKey             string
	Selection           selector.Options
	Retry               retry.Policy
	DownloadConcurrency int
	ScratchDir          string
	Format              config.BundleFormat
	IndexPath           string
	OutputPath          string
	// ReportFile, when set, receives the run report as JSON.
	ReportFile string
}

// OptionsFromConfig derives run options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		FileKey: cfg.Figma.FileKey,
		Selection: selector.Options{
			PageName: cfg.Selection.Page,
			Size:     cfg.Selection.Size,
			Prefix:   cfg.Selection.Prefix,
		},
		Retry:               retry.FromConfig(cfg.Export.Retry),
		DownloadConcurrency: cfg.Download.Concurrency,
		ScratchDir:          cfg.Download.ScratchDir,
		Format:              cfg.Output.Format,
		IndexPath:           cfg.Output.IndexPath,
		OutputPath:          cfg.OutputPath(),
		ReportFile:          cfg.Output.ReportFile,
	}
}

// Pipeline executes bundling runs.
type Pipeline struct {
	deps       Deps
	opts       Options
	recorder   metrics.Recorder
	logger     *slog.Logger
	scratch    *workspace.Manager
	scheduler  *export.Scheduler
	fetcher    *fetch.Fetcher
	normalizer *normalize.Normalizer
	writer     *bundle.Writer
}

// New creates a Pipeline.
func New(deps Deps, opts Options) *Pipeline {
	p := &Pipeline{
		deps:     deps,
		opts:     opts,
		recorder: deps.Recorder,
		logger:   deps.Logger,
		scratch:  workspace.NewManager(opts.ScratchDir),
		writer:   bundle.NewWriter(opts.IndexPath, opts.OutputPath),
	}
	if p.recorder == nil {
		p.recorder = metrics.NoopRecorder{}
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.opts.Format == "" {
		p.opts.Format = config.BundleFormatInline
	}

	p.scheduler = export.NewScheduler(deps.Exporter,
		export.WithRetryPolicy(opts.Retry),
		export.WithRecorder(p.recorder),
		export.WithLogger(p.logger))
	p.fetcher = fetch.NewFetcher(deps.Downloader,
		fetch.WithConcurrency(opts.DownloadConcurrency),
		fetch.WithScratch(p.scratch),
		fetch.WithRecorder(p.recorder),
		fetch.WithLogger(p.logger))
	p.normalizer = normalize.NewNormalizer(
		normalize.WithOptimizer(deps.Optimizer),
		normalize.WithFileReferences(p.opts.Format == config.BundleFormatFile))
	return p
}

// runState carries stage outputs through a run.
type runState struct {
	report     *Report
	file       *figma.File
	candidates []selector.Candidate
	icons      []naming.Icon
	exported   export.Result
	assets     []fetch.Asset
	normalized []normalize.Icon
}

// Run executes one bundling run. The report is returned even when the run
// fails; the bundle is only written when every fatal stage succeeded.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	runID := uuid.NewString()
	report := newReport(runID, p.opts.FileKey)

	ctx = observability.WithRunID(ctx, runID)
	ctx = observability.WithFileKey(ctx, p.opts.FileKey)
	ctx, span := observability.StartRunSpan(ctx, runID, p.opts.FileKey)
	log := observability.Logger(ctx, p.logger)
	log.Info("Starting icon bundling run")

	st := &runState{report: report}
	err := p.runStages(ctx, st, p.stages())
	report.finish(err)

	p.recorder.ObserveRunDuration(report.End.Sub(report.Start))
	p.recorder.IncRunOutcome(string(report.Outcome))
	observability.EndSpan(span, err)

	if p.opts.ReportFile != "" {
		if perr := report.Persist(p.opts.ReportFile); perr != nil {
			log.Warn("Failed to persist run report", logfields.Path(p.opts.ReportFile), logfields.Error(perr))
		}
	}

	if err != nil {
		log.Error("Run failed", slog.String("outcome", string(report.Outcome)), logfields.Error(err))
		return report, err
	}
	log.Info("Run completed",
		slog.String("outcome", string(report.Outcome)),
		logfields.Count(report.Bundled),
		slog.Int("dropped", report.Dropped()),
		logfields.DurationMS(float64(report.End.Sub(report.Start).Milliseconds())))
	return report, nil
}

func (p *Pipeline) stages() []stageDef {
	return []stageDef{
		{StageFetchDocument, p.fetchDocument},
		{StageSelect, p.selectCandidates},
		{StageResolveNames, p.resolveNames},
		{StageExport, p.export},
		{StageDownload, p.download},
		{StageNormalize, p.normalize},
		{StageWriteBundle, p.writeBundle},
	}
}

func (p *Pipeline) fetchDocument(ctx context.Context, st *runState) (int, error) {
	file, err := p.deps.Document.GetFile(ctx, p.opts.FileKey)
	if err != nil {
		return 0, err
	}
	st.file = file
	return 0, nil
}

func (p *Pipeline) selectCandidates(ctx context.Context, st *runState) (int, error) {
	candidates, err := selector.Select(st.file.Document, p.opts.Selection)
	if err != nil {
		return 0, err
	}
	if len(candidates) == 0 {
		return 0, ferrors.From(ferrors.ErrNoCandidates).
			WithContext("page", p.opts.Selection.PageName).
			WithContext("size", p.opts.Selection.Size).
			WithContext("prefix", p.opts.Selection.Prefix).
			Build()
	}
	st.candidates = candidates
	st.report.Candidates = len(candidates)
	observability.Logger(ctx, p.logger).Info("Selected icon candidates", logfields.Count(len(candidates)))
	return 0, nil
}

func (p *Pipeline) resolveNames(ctx context.Context, st *runState) (int, error) {
	st.icons = naming.Resolve(st.candidates)
	renamed := 0
	for _, icon := range st.icons {
		if icon.ResolvedName != naming.BaseName(icon.OriginalName) {
			renamed++
		}
	}
	if renamed > 0 {
		observability.Logger(ctx, p.logger).Info("Resolved name collisions", logfields.Count(renamed))
	}
	return 0, nil
}

func (p *Pipeline) export(ctx context.Context, st *runState) (int, error) {
	res, err := p.scheduler.Export(ctx, p.opts.FileKey, st.icons)
	if err != nil {
		return 0, err
	}
	st.exported = res
	st.report.Batches = res.Batches
	st.report.Exported = len(res.URLs)
	st.report.Missing = res.Missing
	for range res.Missing {
		p.recorder.IncIconsSkipped("export")
	}
	return len(res.Missing), nil
}

func (p *Pipeline) download(ctx context.Context, st *runState) (int, error) {
	if err := p.scratch.Prepare(); err != nil {
		return 0, ferrors.FileSystemError("failed to prepare scratch directory").
			WithCause(err).
			WithContext("path", p.scratch.GetPath()).
			Build()
	}
	assets, failures := p.fetcher.Fetch(ctx, st.exported, st.icons)
	st.assets = assets
	st.report.Downloaded = len(assets)
	for _, f := range failures {
		st.report.DownloadFailures = append(st.report.DownloadFailures, ItemIssue{Name: f.Name, NodeID: f.NodeID, Error: f.Err.Error()})
		p.recorder.IncIconsSkipped("download")
	}
	return len(failures), nil
}

func (p *Pipeline) normalize(ctx context.Context, st *runState) (int, error) {
	icons, skips := p.normalizer.NormalizeAll(st.assets)
	st.normalized = icons
	log := observability.Logger(ctx, p.logger)
	for _, s := range skips {
		log.Warn("Skipping icon", logfields.Icon(s.Name), logfields.NodeID(s.NodeID), logfields.Error(s.Err))
		st.report.Skipped = append(st.report.Skipped, ItemIssue{Name: s.Name, NodeID: s.NodeID, Error: s.Err.Error()})
		p.recorder.IncIconsSkipped("normalize")
	}

	if p.opts.Format == config.BundleFormatFile {
		if err := p.cleanScratch(ctx, st.assets, skips); err != nil {
			return len(skips), err
		}
	}
	return len(skips), nil
}

// cleanScratch replaces the raw scratch copies of the bundled icons with
// optimized markup, so file bundles point at the same markup the content
// came from.
func (p *Pipeline) cleanScratch(ctx context.Context, assets []fetch.Asset, skips []normalize.Skip) error {
	skipped := make(map[string]bool, len(skips))
	for _, s := range skips {
		skipped[s.Name] = true
	}
	var paths []string
	for _, a := range assets {
		if a.Path != "" && !skipped[a.ResolvedName] {
			paths = append(paths, a.Path)
		}
	}

	res, err := p.normalizer.CleanFiles(paths)
	if err != nil {
		return err
	}
	log := observability.Logger(ctx, p.logger)
	for _, s := range res.Skipped {
		log.Warn("Scratch copy left unoptimized", logfields.Icon(s.Name), logfields.Error(s.Err))
	}
	log.Debug("Optimized scratch copies", logfields.Count(len(res.Cleaned)), logfields.Path(p.scratch.GetPath()))
	return nil
}

func (p *Pipeline) writeBundle(ctx context.Context, st *runState) (int, error) {
	b := bundle.Build(st.normalized)
	b.Format = p.opts.Format
	n, err := p.writer.Write(b)
	if err != nil {
		return 0, err
	}
	st.report.Bundled = n
	st.report.Outputs = p.writer.Paths()
	p.recorder.SetBundleSize(n)
	observability.Logger(ctx, p.logger).Info("Bundled icons",
		logfields.Count(n),
		logfields.Path(strings.Join(st.report.Outputs, ",")))
	return 0, nil
}
