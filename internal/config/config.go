package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/figicons/internal/foundation/errors"
	"git.home.luguber.info/inful/figicons/internal/logfields"
)

// DefaultConfigFile is read when no configuration path is given and it exists.
const DefaultConfigFile = "figicons.yaml"

// Config represents the application configuration for one bundling run.
type Config struct {
	Figma     FigmaConfig     `yaml:"figma"`
	Selection SelectionConfig `yaml:"selection"`
	Export    ExportConfig    `yaml:"export"`
	Download  DownloadConfig  `yaml:"download"`
	Output    OutputConfig    `yaml:"output"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Tracing   TracingConfig   `yaml:"tracing"`
}

// FigmaConfig addresses the remote document and the API serving it.
type FigmaConfig struct {
	FileKey string        `yaml:"file_key" env:"FIGICONS_FILE_KEY"`
	Token   string        `yaml:"token" env:"FIGMA_TOKEN"`
	APIURL  string        `yaml:"api_url" env:"FIGICONS_API_URL"`
	Timeout time.Duration `yaml:"timeout" env:"FIGICONS_TIMEOUT"`
	// Depth limits how deep the document tree is fetched; 0 fetches everything.
	Depth int `yaml:"depth" env:"FIGICONS_DEPTH"`
}

// SelectionConfig filters the candidate icons; zero values mean unset.
type SelectionConfig struct {
	Page   string `yaml:"page,omitempty" env:"FIGICONS_PAGE"`
	Size   int    `yaml:"size,omitempty" env:"FIGICONS_SIZE"`
	Prefix string `yaml:"prefix,omitempty" env:"FIGICONS_PREFIX"`
}

// ExportConfig tunes the batch export requests.
type ExportConfig struct {
	Retry RetryConfig `yaml:"retry"`
}

// RetryConfig configures per-batch export retries. MaxRetries 0 disables them.
type RetryConfig struct {
	MaxRetries int           `yaml:"max_retries" env:"FIGICONS_EXPORT_RETRIES"`
	Backoff    string        `yaml:"backoff"`
	Initial    time.Duration `yaml:"initial"`
	Max        time.Duration `yaml:"max"`
}

// DownloadConfig tunes the asset downloads.
type DownloadConfig struct {
	// Concurrency bounds parallel downloads; 0 starts one per asset.
	Concurrency int    `yaml:"concurrency" env:"FIGICONS_DOWNLOAD_CONCURRENCY"`
	ScratchDir  string `yaml:"scratch_dir,omitempty" env:"FIGICONS_SCRATCH_DIR"`
}

// OutputConfig places the bundle and its companions.
type OutputConfig struct {
	Directory  string       `yaml:"directory" env:"FIGICONS_OUTPUT_DIR"`
	File       string       `yaml:"file"`
	IndexPath  string       `yaml:"index_path" env:"FIGICONS_INDEX_PATH"`
	Format     BundleFormat `yaml:"format" env:"FIGICONS_FORMAT"`
	ReportFile string       `yaml:"report_file,omitempty"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level" env:"FIGICONS_LOG_LEVEL"`
	Format LogFormat `yaml:"format" env:"FIGICONS_LOG_FORMAT"`
}

// MetricsConfig enables the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty" env:"FIGICONS_METRICS_TEXTFILE"`
}

// TracingConfig enables OTLP trace export when an endpoint is set.
type TracingConfig struct {
	Endpoint    string `yaml:"endpoint,omitempty" env:"FIGICONS_OTEL_ENDPOINT"`
	ServiceName string `yaml:"service_name,omitempty"`
}

// Load builds the configuration: defaults, then the YAML file, then .env and
// process environment. An empty path reads DefaultConfigFile when it exists.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	cfg := Default()

	required := path != ""
	if !required {
		path = DefaultConfigFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(data, cfg); err != nil {
			return nil, ferrors.ConfigError("failed to parse configuration file").
				WithCause(err).
				WithContext("path", path).
				Build()
		}
		slog.Debug("Loaded configuration file", logfields.Path(path))
	case errors.Is(err, os.ErrNotExist) && !required:
		slog.Debug("No configuration file, using defaults and environment", logfields.Path(path))
	default:
		return nil, ferrors.ConfigError("failed to read configuration file").
			WithCause(err).
			WithContext("path", path).
			Build()
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode expands ${VAR} references and unmarshals over the existing values, so
// keys absent from the file keep their defaults.
func decode(data []byte, cfg *Config) error {
	expanded := os.ExpandEnv(string(data))
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return ferrors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}

	data, err := yaml.Marshal(Example())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return ferrors.FileSystemError("failed to write config file").
			WithCause(err).
			WithContext("path", configPath).
			Build()
	}
	return nil
}
