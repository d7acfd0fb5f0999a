package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/figicons/internal/foundation/errors"
	"git.home.luguber.info/inful/figicons/internal/logfields"
	"git.home.luguber.info/inful/figicons/internal/testutil"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "figicons.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// clearEnv blanks the variables a developer machine may export.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"FIGMA_TOKEN", "FIGICONS_FILE_KEY", "FIGICONS_SIZE", "FIGICONS_PAGE", "FIGICONS_OUTPUT_DIR"} {
		t.Setenv(k, "")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
figma:
  file_key: abc123
  token: secret
  timeout: 5s
selection:
  page: Icons
  size: 24
  prefix: "ic/"
output:
  directory: out
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "abc123", cfg.Figma.FileKey)
	assert.Equal(t, "secret", cfg.Figma.Token)
	assert.Equal(t, 5*time.Second, cfg.Figma.Timeout)
	assert.Equal(t, DefaultAPIURL, cfg.Figma.APIURL, "absent keys keep defaults")
	assert.Equal(t, DefaultDepth, cfg.Figma.Depth)
	assert.Equal(t, SelectionConfig{Page: "Icons", Size: 24, Prefix: "ic/"}, cfg.Selection)
	assert.Equal(t, filepath.Join("out", DefaultOutputFile), cfg.OutputPath())
	assert.Equal(t, DefaultIndexPath, cfg.Output.IndexPath)
	require.NoError(t, cfg.Validate())
}

func TestLoad_LogsConfigPathField(t *testing.T) {
	clearEnv(t)
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := writeConfig(t, "figma:\n  file_key: abc123\n")
	_, err := Load(path)
	require.NoError(t, err)

	var found bool
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(line, &rec))
		if rec["msg"] == "Loaded configuration file" {
			found = true
			assert.Equal(t, path, rec[logfields.KeyPath])
		}
	}
	assert.True(t, found, "no config load record in %s", buf.String())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("FIGMA_TOKEN", "from-env")
	t.Setenv("FIGICONS_SIZE", "16")
	t.Setenv("FIGICONS_LOG_LEVEL", "DEBUG")
	path := writeConfig(t, `
figma:
  file_key: abc123
  token: from-file
selection:
  size: 24
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Figma.Token)
	assert.Equal(t, 16, cfg.Selection.Size)
	assert.Equal(t, LogLevelDebug, cfg.Logging.Level)
	assert.Equal(t, "abc123", cfg.Figma.FileKey)
}

func TestLoad_ExpandsVariables(t *testing.T) {
	t.Setenv("MY_ICON_TOKEN", "expanded")
	path := writeConfig(t, "figma:\n  file_key: k\n  token: ${MY_ICON_TOKEN}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "expanded", cfg.Figma.Token)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("explicit missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.Equal(t, ferrors.CategoryConfig, testutil.CategoryOf(err))
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := Load(writeConfig(t, "figma:\n  fiel_key: typo\n"))
		require.Error(t, err)
		assert.Equal(t, ferrors.CategoryConfig, testutil.CategoryOf(err))
	})

	t.Run("no file is fine without explicit path", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, DefaultOutputDir, cfg.Output.Directory)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Figma.FileKey = "key"
		cfg.Figma.Token = "token"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(*Config) {}, false},
		{"missing file key", func(c *Config) { c.Figma.FileKey = "" }, true},
		{"missing token", func(c *Config) { c.Figma.Token = " " }, true},
		{"negative size", func(c *Config) { c.Selection.Size = -1 }, true},
		{"negative retries", func(c *Config) { c.Export.Retry.MaxRetries = -1 }, true},
		{"negative concurrency", func(c *Config) { c.Download.Concurrency = -2 }, true},
		{"unknown format", func(c *Config) { c.Output.Format = "zip" }, true},
		{"file format without scratch dir", func(c *Config) { c.Output.Format = BundleFormatFile }, true},
		{"file format with scratch dir", func(c *Config) {
			c.Output.Format = "FILE"
			c.Download.ScratchDir = "svg"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "figicons.yaml")
	require.NoError(t, Init(path, false))

	t.Setenv("FIGMA_TOKEN", "tok")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "YOUR_FILE_KEY", cfg.Figma.FileKey)
	assert.Equal(t, "tok", cfg.Figma.Token)
	assert.Equal(t, "Icons", cfg.Selection.Page)

	require.Error(t, Init(path, false), "existing file is kept without force")
	require.NoError(t, Init(path, true))
}

func TestNormalizeEnums(t *testing.T) {
	assert.Equal(t, RetryBackoffLinear, NormalizeRetryBackoff(" LINEAR "))
	assert.Equal(t, RetryBackoffMode(""), NormalizeRetryBackoff("random"))
	assert.Equal(t, LogLevelWarn, NormalizeLogLevel("warning"))
	assert.Equal(t, LogFormatJSON, NormalizeLogFormat("Json"))
	_, err := ParseBundleFormat("tarball")
	assert.Error(t, err)
}
