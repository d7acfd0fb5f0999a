// Package metrics records run, stage and per-item metrics for bundling runs.
//
// Components receive a Recorder through their constructors and default to
// NoopRecorder, so no call site checks for nil:
//
//	scheduler := export.NewScheduler(client, export.WithRecorder(rec))
//
// PrometheusRecorder is the real implementation. A CLI run has no scrape
// endpoint, so its registry is written once at the end of the run in the
// node_exporter textfile format (WriteTextfile).
package metrics
