package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyStage      = "stage"
	KeyFileKey    = "file_key"
	KeyPage       = "page"
	KeyIcon       = "icon"
	KeyNodeID     = "node_id"
	KeyBatch      = "batch"
	KeyCount      = "count"
	KeyPath       = "path"
	KeyURL        = "url"
	KeyStatus     = "status"
	KeyAttempt    = "attempt"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func FileKey(k string) slog.Attr      { return slog.String(KeyFileKey, k) }
func Page(name string) slog.Attr      { return slog.String(KeyPage, name) }
func Icon(name string) slog.Attr      { return slog.String(KeyIcon, name) }
func NodeID(id string) slog.Attr      { return slog.String(KeyNodeID, id) }
func Batch(i int) slog.Attr           { return slog.Int(KeyBatch, i) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func Attempt(n int) slog.Attr         { return slog.Int(KeyAttempt, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
