package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultWarning ResultLabel = "warning"
	ResultFatal   ResultLabel = "fatal"
)

// Recorder defines observability hooks for runs, stages and individual icons.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	ObserveRunDuration(d time.Duration)
	IncRunOutcome(outcome string) // outcome: success|partial|failed
	ObserveExportBatch(d time.Duration, success bool)
	IncExportRetry()
	IncDownloadResult(success bool)
	IncIconsSkipped(reason string)
	SetBundleSize(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) ObserveRunDuration(time.Duration)           {}
func (NoopRecorder) IncRunOutcome(string)                       {}
func (NoopRecorder) ObserveExportBatch(time.Duration, bool)     {}
func (NoopRecorder) IncExportRetry()                            {}
func (NoopRecorder) IncDownloadResult(bool)                     {}
func (NoopRecorder) IncIconsSkipped(string)                     {}
func (NoopRecorder) SetBundleSize(int)                          {}
