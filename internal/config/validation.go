package config

import (
	"strings"

	ferrors "git.home.luguber.info/inful/figicons/internal/foundation/errors"
)

// Validate checks that the configuration can drive a bundling run.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Figma.FileKey) == "" {
		return ferrors.ConfigError("figma file key is required").
			WithContext("hint", "set figma.file_key, FIGICONS_FILE_KEY or --file-key").
			Build()
	}
	if strings.TrimSpace(c.Figma.Token) == "" {
		return ferrors.ConfigError("figma access token is required").
			WithContext("hint", "set figma.token, FIGMA_TOKEN or --token").
			Build()
	}
	if c.Figma.APIURL == "" {
		return ferrors.ConfigError("figma api url cannot be empty").Build()
	}
	if c.Figma.Timeout <= 0 {
		return ferrors.ConfigError("figma timeout must be positive").
			WithContext("timeout", c.Figma.Timeout.String()).
			Build()
	}
	if c.Figma.Depth < 0 {
		return ferrors.ConfigError("figma depth cannot be negative").Build()
	}
	if c.Selection.Size < 0 {
		return ferrors.ConfigError("icon size cannot be negative").
			WithContext("size", c.Selection.Size).
			Build()
	}
	if c.Export.Retry.MaxRetries < 0 {
		return ferrors.ConfigError("export retries cannot be negative").Build()
	}
	if c.Download.Concurrency < 0 {
		return ferrors.ConfigError("download concurrency cannot be negative").Build()
	}
	if c.Output.Directory == "" || c.Output.File == "" || c.Output.IndexPath == "" {
		return ferrors.ConfigError("output directory, file and index path are required").Build()
	}
	format, err := ParseBundleFormat(string(c.Output.Format))
	if err != nil {
		return ferrors.ConfigError("invalid bundle format").
			WithCause(err).
			Build()
	}
	c.Output.Format = format
	if format == BundleFormatFile && c.Download.ScratchDir == "" {
		return ferrors.ConfigError("bundle format \"file\" needs download.scratch_dir").Build()
	}
	return nil
}
