package commands

import (
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/figicons/internal/config"
	"git.home.luguber.info/inful/figicons/internal/figma"
	"git.home.luguber.info/inful/figicons/internal/observability"
)

// Global is shared by every command.
type Global struct {
	Logger *slog.Logger
	Stdout io.Writer
	Stderr io.Writer
	// HTTPClient overrides the API client's transport (tests).
	HTTPClient *http.Client
}

// NewGlobal returns the process-wide defaults.
func NewGlobal() *Global {
	return &Global{Logger: slog.Default(), Stdout: os.Stdout, Stderr: os.Stderr}
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (default: ${default_config} when present)"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Bundle BundleCmd `cmd:"" help:"Export the selected icons and write the bundle"`
	Clean  CleanCmd  `cmd:"" help:"Optimize the downloaded icons in the scratch directory in place"`
	Pages  PagesCmd  `cmd:"" help:"List the pages of the document"`
	Init   InitCmd   `cmd:"" help:"Write an example configuration file"`
}

// AfterApply runs after flag parsing; set up logging once. Commands that
// load a configuration refine it with configureLogging.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	level := config.LogLevelInfo
	if c.Verbose {
		level = config.LogLevelDebug
	}
	g.Logger = observability.NewLogger(g.Stderr, level, config.LogFormatText)
	slog.SetDefault(g.Logger)
	return nil
}

// SelectionFlags are shared by commands that read the document.
type SelectionFlags struct {
	FileKey string `short:"k" name:"file-key" help:"Figma file key or file URL (overrides figma.file_key)"`
	Token   string `name:"token" help:"Figma personal access token (overrides figma.token and FIGMA_TOKEN)"`
}

func (f SelectionFlags) apply(cfg *config.Config) {
	if f.FileKey != "" {
		cfg.Figma.FileKey = f.FileKey
	}
	if f.Token != "" {
		cfg.Figma.Token = f.Token
	}
	cfg.Figma.FileKey = figma.ParseFileKey(cfg.Figma.FileKey)
}

// configureLogging applies the configured level and format; -v keeps debug.
func configureLogging(g *Global, root *CLI, cfg *config.Config) {
	level := cfg.Logging.Level
	if root.Verbose {
		level = config.LogLevelDebug
	}
	g.Logger = observability.NewLogger(g.Stderr, level, cfg.Logging.Format)
	slog.SetDefault(g.Logger)
}

// newClient builds the API client with the configured timeout.
func newClient(g *Global, cfg *config.Config) (*figma.Client, error) {
	httpClient := g.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Figma.Timeout}
	}
	return figma.NewClient(figma.ClientConfig{
		APIURL: cfg.Figma.APIURL,
		Token:  cfg.Figma.Token,
		Depth:  cfg.Figma.Depth,
	}, httpClient)
}
