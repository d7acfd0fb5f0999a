package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/figicons/cmd/figicons/commands"
	"git.home.luguber.info/inful/figicons/internal/config"
	"git.home.luguber.info/inful/figicons/internal/foundation/errors"
	"git.home.luguber.info/inful/figicons/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], commands.NewGlobal()))
}

// run parses args, executes the selected command and returns the exit code.
func run(args []string, g *commands.Global) int {
	cli := &commands.CLI{}
	exitCode := -1

	parser, err := kong.New(cli,
		kong.Name("figicons"),
		kong.Description("Bundle the icons of a Figma document into a theme-neutral JSON file."),
		kong.UsageOnError(),
		kong.Writers(g.Stdout, g.Stderr),
		kong.Exit(func(code int) { exitCode = code }),
		kong.Vars{
			"version":        version.String(),
			"default_config": config.DefaultConfigFile,
		},
		kong.Bind(g, cli),
	)
	if err != nil {
		_, _ = fmt.Fprintf(g.Stderr, "figicons: %v\n", err)
		return 1
	}

	kctx, err := parser.Parse(args)
	if exitCode >= 0 {
		// --help or --version
		return exitCode
	}
	if err != nil {
		_, _ = fmt.Fprintf(g.Stderr, "figicons: error: %v\n", err)
		return 2
	}

	if err := kctx.Run(); err != nil {
		return errors.NewCLIErrorAdapter(cli.Verbose, g.Logger).SetOutput(g.Stderr).Report(err)
	}
	return 0
}
