package pipeline

import (
	"context"
	"fmt"
	"time"

	"git.home.luguber.info/inful/figicons/internal/logfields"
	"git.home.luguber.info/inful/figicons/internal/metrics"
	"git.home.luguber.info/inful/figicons/internal/observability"
)

// StageName identifies a pipeline stage.
type StageName string

const (
	StageFetchDocument StageName = "fetch_document"
	StageSelect        StageName = "select"
	StageResolveNames  StageName = "resolve_names"
	StageExport        StageName = "export"
	StageDownload      StageName = "download"
	StageNormalize     StageName = "normalize"
	StageWriteBundle   StageName = "write_bundle"
)

// stageFunc runs one stage and returns how many icons it dropped.
type stageFunc func(ctx context.Context, st *runState) (dropped int, err error)

type stageDef struct {
	name StageName
	fn   stageFunc
}

// runStages executes stages in order, recording timing and stopping on the
// first error.
func (p *Pipeline) runStages(ctx context.Context, st *runState, stages []stageDef) error {
	for _, s := range stages {
		sctx := observability.WithStage(ctx, string(s.name))
		sctx, span := observability.StartStageSpan(sctx, string(s.name))
		log := observability.Logger(sctx, p.logger)
		log.Debug("Stage started")

		t0 := time.Now()
		dropped, err := s.fn(sctx, st)
		dur := time.Since(t0)

		result := StageResultSuccess
		switch {
		case err != nil:
			result = StageResultFatal
		case dropped > 0:
			result = StageResultWarning
		}
		st.report.StageDurations[s.name] = dur
		st.report.StageResults[s.name] = result
		p.recorder.ObserveStageDuration(string(s.name), dur)
		p.recorder.IncStageResult(string(s.name), metricResult(result))
		observability.EndSpan(span, err)

		if err != nil {
			log.Error("Stage failed", logfields.DurationMS(float64(dur.Milliseconds())), logfields.Error(err))
			return fmt.Errorf("%s: %w", s.name, err)
		}
		log.Debug("Stage completed",
			logfields.DurationMS(float64(dur.Milliseconds())),
			logfields.Count(dropped))
	}
	return nil
}

func metricResult(r StageResult) metrics.ResultLabel {
	switch r {
	case StageResultWarning:
		return metrics.ResultWarning
	case StageResultFatal:
		return metrics.ResultFatal
	default:
		return metrics.ResultSuccess
	}
}
