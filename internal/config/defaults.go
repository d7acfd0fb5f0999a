package config

import (
	"path/filepath"
	"time"
)

const (
	DefaultAPIURL     = "https://api.figma.com/v1"
	DefaultTimeout    = 60 * time.Second
	DefaultDepth      = 2
	DefaultOutputDir  = "./icons"
	DefaultOutputFile = "icons.json"
	DefaultIndexPath  = ".figicons/index.json"
)

// Default returns a configuration with every default applied.
func Default() *Config {
	return &Config{
		Figma: FigmaConfig{
			APIURL:  DefaultAPIURL,
			Timeout: DefaultTimeout,
			Depth:   DefaultDepth,
		},
		Export: ExportConfig{
			Retry: RetryConfig{
				MaxRetries: 0,
				Backoff:    string(RetryBackoffExponential),
				Initial:    time.Second,
				Max:        10 * time.Second,
			},
		},
		Output: OutputConfig{
			Directory: DefaultOutputDir,
			File:      DefaultOutputFile,
			IndexPath: DefaultIndexPath,
			Format:    BundleFormatInline,
		},
		Logging: LoggingConfig{
			Level:  LogLevelInfo,
			Format: LogFormatText,
		},
		Tracing: TracingConfig{
			ServiceName: "figicons",
		},
	}
}

// Example returns the configuration written by Init.
func Example() *Config {
	cfg := Default()
	cfg.Figma.FileKey = "YOUR_FILE_KEY"
	cfg.Figma.Token = "${FIGMA_TOKEN}"
	cfg.Selection = SelectionConfig{Page: "Icons", Size: 24}
	return cfg
}

// OutputPath is the user-facing bundle file.
func (c *Config) OutputPath() string {
	return filepath.Join(c.Output.Directory, c.Output.File)
}
