package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	ferrors "git.home.luguber.info/inful/figicons/internal/foundation/errors"
	"git.home.luguber.info/inful/figicons/internal/logfields"
	"git.home.luguber.info/inful/figicons/internal/metrics"
	"git.home.luguber.info/inful/figicons/internal/naming"
	"git.home.luguber.info/inful/figicons/internal/observability"
	"git.home.luguber.info/inful/figicons/internal/retry"
	"git.home.luguber.info/inful/figicons/internal/taskgroup"
)

// Exporter renders node ids of a document and returns id -> asset URL.
// *figma.Client implements it.
type Exporter interface {
	ExportImages(ctx context.Context, key string, ids []string) (map[string]string, error)
}

// Result is the merged outcome of all batches.
type Result struct {
	// URLs maps node id to the exported asset URL.
	URLs map[string]string
	// Batches is the number of requests issued.
	Batches int
	// Missing lists requested ids the renderer did not answer, in input order.
	Missing []string
}

// URL returns the asset URL exported for id.
func (r Result) URL(id string) (string, bool) {
	u, ok := r.URLs[id]
	return u, ok
}

// Scheduler fans export batches out concurrently.
type Scheduler struct {
	exporter  Exporter
	batchSize int
	policy    retry.Policy
	recorder  metrics.Recorder
	logger    *slog.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithRetryPolicy enables per-batch retries of errors classified as retryable.
func WithRetryPolicy(p retry.Policy) Option {
	return func(s *Scheduler) { s.policy = p }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Scheduler) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithLogger sets the base logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// withBatchSize overrides BatchSize in tests.
func withBatchSize(n int) Option {
	return func(s *Scheduler) { s.batchSize = n }
}

// NewScheduler creates a Scheduler. Retries are off unless WithRetryPolicy
// supplies a policy with MaxRetries > 0.
func NewScheduler(exporter Exporter, opts ...Option) *Scheduler {
	s := &Scheduler{
		exporter:  exporter,
		batchSize: BatchSize,
		policy:    retry.DefaultPolicy(),
		recorder:  metrics.NoopRecorder{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Export issues every batch at once and waits for all of them. Any failed
// batch fails the whole export with the first error in batch order; no
// partial result is returned.
func (s *Scheduler) Export(ctx context.Context, key string, icons []naming.Icon) (Result, error) {
	batches := Partition(icons, s.batchSize)
	log := observability.Logger(ctx, s.logger)
	log.Debug("Exporting batches", logfields.Count(len(batches)))

	results := taskgroup.Run(batches, 0, func(_ int, b Batch) (map[string]string, error) {
		return s.exportBatch(ctx, log, key, b)
	})

	for i, r := range results {
		if r.Err != nil {
			return Result{}, fmt.Errorf("export batch %d: %w", batches[i].Index, r.Err)
		}
	}

	out := Result{URLs: make(map[string]string, len(icons)), Batches: len(batches)}
	for i, r := range results {
		for _, id := range batches[i].IDs {
			if u, ok := r.Value[id]; ok {
				out.URLs[id] = u
			} else {
				out.Missing = append(out.Missing, id)
			}
		}
	}
	if len(out.Missing) > 0 {
		log.Warn("Renderer returned no asset for some icons", logfields.Count(len(out.Missing)))
	}
	return out, nil
}

func (s *Scheduler) exportBatch(ctx context.Context, log *slog.Logger, key string, b Batch) (map[string]string, error) {
	var urls map[string]string
	attempt := func() error {
		start := time.Now()
		res, err := s.exporter.ExportImages(ctx, key, b.IDs)
		s.recorder.ObserveExportBatch(time.Since(start), err == nil)
		if err != nil {
			return err
		}
		urls = res
		return nil
	}
	onRetry := func(n int, err error) {
		s.recorder.IncExportRetry()
		log.Warn("Retrying export batch",
			logfields.Batch(b.Index),
			logfields.Attempt(n),
			logfields.Error(err))
	}
	err := s.policy.Do(ctx, attempt, ferrors.IsRetryable, onRetry)
	return urls, err
}
