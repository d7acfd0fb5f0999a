// Package fetch downloads exported assets, optionally keeping a copy of each
// in the scratch directory.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/figicons/internal/export"
	ferrors "git.home.luguber.info/inful/figicons/internal/foundation/errors"
	"git.home.luguber.info/inful/figicons/internal/logfields"
	"git.home.luguber.info/inful/figicons/internal/metrics"
	"git.home.luguber.info/inful/figicons/internal/naming"
	"git.home.luguber.info/inful/figicons/internal/observability"
	"git.home.luguber.info/inful/figicons/internal/taskgroup"
	"git.home.luguber.info/inful/figicons/internal/workspace"
)

// Downloader opens an asset URL for streaming. *figma.Client implements it.
type Downloader interface {
	Open(ctx context.Context, url string) (io.ReadCloser, error)
}

// Asset is the raw markup of one exported icon.
type Asset struct {
	ResolvedName string
	NodeID       string
	Raw          []byte
	// Path is the scratch copy, empty when no scratch directory is configured.
	Path string
}

// Failure records an asset that could not be downloaded. Err wraps
// errors.ErrAssetDownload.
type Failure struct {
	Name   string
	NodeID string
	Err    error
}

// Fetcher downloads assets concurrently.
type Fetcher struct {
	downloader  Downloader
	concurrency int
	scratch     *workspace.Manager
	recorder    metrics.Recorder
	logger      *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithConcurrency bounds parallel downloads; n < 1 starts one per asset.
func WithConcurrency(n int) Option {
	return func(f *Fetcher) { f.concurrency = n }
}

// WithScratch tees every download into the (prepared) scratch directory.
func WithScratch(m *workspace.Manager) Option {
	return func(f *Fetcher) { f.scratch = m }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(f *Fetcher) {
		if r != nil {
			f.recorder = r
		}
	}
}

// WithLogger sets the base logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewFetcher creates a Fetcher.
func NewFetcher(d Downloader, opts ...Option) *Fetcher {
	f := &Fetcher{
		downloader: d,
		recorder:   metrics.NoopRecorder{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads every icon present in result, keeping icon order. A failed
// download only drops that icon; it is reported in the failures.
func (f *Fetcher) Fetch(ctx context.Context, result export.Result, icons []naming.Icon) ([]Asset, []Failure) {
	type job struct {
		icon naming.Icon
		url  string
	}
	jobs := make([]job, 0, len(icons))
	for _, icon := range icons {
		if u, ok := result.URL(icon.ID); ok {
			jobs = append(jobs, job{icon: icon, url: u})
		}
	}

	log := observability.Logger(ctx, f.logger)
	results := taskgroup.Run(jobs, f.concurrency, func(_ int, j job) (Asset, error) {
		return f.download(ctx, j.icon, j.url)
	})

	assets := make([]Asset, 0, len(jobs))
	var failures []Failure
	for i, r := range results {
		icon := jobs[i].icon
		f.recorder.IncDownloadResult(r.Err == nil)
		if r.Err != nil {
			log.Warn("Asset download failed",
				logfields.Icon(icon.ResolvedName),
				logfields.NodeID(icon.ID),
				logfields.Error(r.Err))
			failures = append(failures, Failure{Name: icon.ResolvedName, NodeID: icon.ID, Err: r.Err})
			continue
		}
		assets = append(assets, r.Value)
	}
	return assets, failures
}

func (f *Fetcher) download(ctx context.Context, icon naming.Icon, url string) (Asset, error) {
	asset := Asset{ResolvedName: icon.ResolvedName, NodeID: icon.ID}

	body, err := f.downloader.Open(ctx, url)
	if err != nil {
		return asset, err
	}
	defer func() { _ = body.Close() }()

	var src io.Reader = body
	var file *os.File
	if f.scratch.Enabled() {
		path, err := f.scratch.FilePath(icon.ResolvedName)
		if err != nil {
			return asset, downloadError(err, icon, url)
		}
		file, err = os.Create(path) // #nosec G304 -- path is built from the scratch dir and a sanitized name
		if err != nil {
			return asset, downloadError(fmt.Errorf("create scratch file: %w", err), icon, url)
		}
		asset.Path = path
		src = io.TeeReader(body, file)
	}

	raw, err := io.ReadAll(src)
	if file != nil {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close scratch file: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(asset.Path)
		}
	}
	if err != nil {
		return asset, downloadError(err, icon, url)
	}
	asset.Raw = raw
	return asset, nil
}

func downloadError(cause error, icon naming.Icon, url string) error {
	return ferrors.From(ferrors.ErrAssetDownload).
		WithCause(cause).
		WithContext("icon", icon.ResolvedName).
		WithContext("node_id", icon.ID).
		WithContext("url", url).
		Build()
}
