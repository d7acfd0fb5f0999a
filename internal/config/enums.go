package config

import "git.home.luguber.info/inful/figicons/internal/foundation/normalization"

// RetryBackoffMode enumerates supported backoff strategies for retries.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

var retryBackoffNormalizer = normalization.NewNormalizer(map[string]RetryBackoffMode{
	"fixed":       RetryBackoffFixed,
	"linear":      RetryBackoffLinear,
	"exponential": RetryBackoffExponential,
}, "")

// NormalizeRetryBackoff returns "" for unknown input, which leaves the retry
// policy on its default mode.
func NormalizeRetryBackoff(raw string) RetryBackoffMode {
	return retryBackoffNormalizer.Normalize(raw)
}

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevelNormalizer = normalization.NewNormalizer(map[string]LogLevel{
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warn":    LogLevelWarn,
	"warning": LogLevelWarn,
	"error":   LogLevelError,
}, LogLevelInfo)

func NormalizeLogLevel(raw string) LogLevel {
	return logLevelNormalizer.Normalize(raw)
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormatNormalizer = normalization.NewNormalizer(map[string]LogFormat{
	"json": LogFormatJSON,
	"text": LogFormatText,
}, LogFormatText)

func NormalizeLogFormat(raw string) LogFormat {
	return logFormatNormalizer.Normalize(raw)
}

// BundleFormat selects the shape of each bundle entry.
type BundleFormat string

const (
	// BundleFormatInline writes {name, width, height, content}.
	BundleFormatInline BundleFormat = "inline"
	// BundleFormatFile writes {name, file, content}, pointing at the scratch copy.
	BundleFormatFile BundleFormat = "file"
)

var bundleFormatNormalizer = normalization.NewNormalizer(map[string]BundleFormat{
	"inline": BundleFormatInline,
	"file":   BundleFormatFile,
}, BundleFormatInline)

// ParseBundleFormat validates a user supplied bundle format.
func ParseBundleFormat(raw string) (BundleFormat, error) {
	return bundleFormatNormalizer.NormalizeWithError(raw)
}
