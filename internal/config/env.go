package config

import (
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	ferrors "git.home.luguber.info/inful/figicons/internal/foundation/errors"
	"git.home.luguber.info/inful/figicons/internal/logfields"
)

// envFiles are loaded in order; variables already set in the process win.
var envFiles = []string{".env", ".env.local"}

func loadEnvFiles() {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			slog.Warn("Failed to load env file", logfields.Path(f), logfields.Error(err))
			continue
		}
		slog.Debug("Loaded environment variables", logfields.Path(f))
	}
}

// applyEnv overrides configuration fields from their env tags. Unset variables
// leave the current value alone.
func applyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return ferrors.ConfigError("failed to parse environment").
			WithCause(err).
			Build()
	}
	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
	return nil
}
