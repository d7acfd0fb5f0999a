package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Outcome is the final state of a run.
type Outcome string

const (
	OutcomeSuccess Outcome = "success" // every candidate was bundled
	OutcomePartial Outcome = "partial" // some icons were dropped
	OutcomeFailed  Outcome = "failed"
)

// StageResult classifies how a stage ended.
type StageResult string

const (
	StageResultSuccess StageResult = "success"
	StageResultWarning StageResult = "warning" // completed, dropped some icons
	StageResultFatal   StageResult = "fatal"
)

// ItemIssue is an icon dropped by a per-item failure.
type ItemIssue struct {
	Name   string `json:"name"`
	NodeID string `json:"node_id"`
	Error  string `json:"error"`
}

// Report captures what happened during one run.
type Report struct {
	RunID          string
	FileKey        string
	Start          time.Time
	End            time.Time
	StageDurations map[StageName]time.Duration
	StageResults   map[StageName]StageResult
	// Counts per stage.
	Candidates int
	Batches    int
	Exported   int
	Downloaded int
	Bundled    int
	// Missing lists candidate ids the renderer did not export.
	Missing          []string
	DownloadFailures []ItemIssue
	Skipped          []ItemIssue
	Outputs          []string
	Outcome          Outcome
	Err              error
}

func newReport(runID, fileKey string) *Report {
	return &Report{
		RunID:          runID,
		FileKey:        fileKey,
		Start:          time.Now(),
		StageDurations: make(map[StageName]time.Duration),
		StageResults:   make(map[StageName]StageResult),
	}
}

// Dropped is the number of candidates that did not make it into the bundle.
func (r *Report) Dropped() int {
	return r.Candidates - r.Bundled
}

// finish stamps the end time and derives the outcome.
func (r *Report) finish(err error) {
	r.End = time.Now()
	r.Err = err
	switch {
	case err != nil:
		r.Outcome = OutcomeFailed
	case r.Bundled == r.Candidates:
		r.Outcome = OutcomeSuccess
	default:
		r.Outcome = OutcomePartial
	}
}

// Summary returns a one-line human readable summary.
func (r *Report) Summary() string {
	return fmt.Sprintf("outcome=%s candidates=%d bundled=%d dropped=%d duration=%s",
		r.Outcome, r.Candidates, r.Bundled, r.Dropped(), r.End.Sub(r.Start).Round(time.Millisecond))
}

// reportJSON is the persisted form of a Report.
type reportJSON struct {
	RunID            string            `json:"run_id"`
	FileKey          string            `json:"file_key"`
	Start            time.Time         `json:"start"`
	End              time.Time         `json:"end"`
	Outcome          Outcome           `json:"outcome"`
	StageDurationsMS map[string]int64  `json:"stage_durations_ms"`
	StageResults     map[string]string `json:"stage_results"`
	Candidates       int               `json:"candidates"`
	Batches          int               `json:"batches"`
	Exported         int               `json:"exported"`
	Downloaded       int               `json:"downloaded"`
	Bundled          int               `json:"bundled"`
	Missing          []string          `json:"missing,omitempty"`
	DownloadFailures []ItemIssue       `json:"download_failures,omitempty"`
	Skipped          []ItemIssue       `json:"skipped,omitempty"`
	Outputs          []string          `json:"outputs,omitempty"`
	Error            string            `json:"error,omitempty"`
}

func (r *Report) serializable() reportJSON {
	out := reportJSON{
		RunID:            r.RunID,
		FileKey:          r.FileKey,
		Start:            r.Start,
		End:              r.End,
		Outcome:          r.Outcome,
		StageDurationsMS: make(map[string]int64, len(r.StageDurations)),
		StageResults:     make(map[string]string, len(r.StageResults)),
		Candidates:       r.Candidates,
		Batches:          r.Batches,
		Exported:         r.Exported,
		Downloaded:       r.Downloaded,
		Bundled:          r.Bundled,
		Missing:          r.Missing,
		DownloadFailures: r.DownloadFailures,
		Skipped:          r.Skipped,
		Outputs:          r.Outputs,
	}
	for k, v := range r.StageDurations {
		out.StageDurationsMS[string(k)] = v.Milliseconds()
	}
	for k, v := range r.StageResults {
		out.StageResults[string(k)] = string(v)
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return out
}

// Persist writes the report as JSON to path via a temp file and rename.
func (r *Report) Persist(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("ensure dir for report: %w", err)
	}
	data, err := json.MarshalIndent(r.serializable(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write temp report json: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("atomic rename report: %w", err)
	}
	return nil
}
