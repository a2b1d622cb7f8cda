package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version    kong.VersionFlag `short:"v" help:"Show version"`
	LogLevel   string           `help:"Log level (debug, info, warn, error); defaults to the scenario's log_level or info"`
	NoColor    bool             `help:"Disable colored output (also set by NO_COLOR)"`
	Roll       RollCmd          `cmd:"" help:"Roll dice notation such as 3d6+2"`
	Sequence   SequenceCmd      `cmd:"" help:"Print bounded draws from a stream"`
	Simulate   SimulateCmd      `cmd:"" help:"Run a deterministic skirmish"`
	Uniformity UniformityCmd    `cmd:"" help:"Check a stream for uniformity with a chi-square test"`
	Inspect    InspectCmd       `cmd:"" help:"Restore and describe a session snapshot"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("turncore"),
		kong.Description("Deterministic randomness and turn scheduling for tactical simulations"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)

	if cli.NoColor || os.Getenv("NO_COLOR") != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	logger, err := newLogger(cli.LogLevel)
	ctx.FatalIfErrorf(err)

	err = ctx.Run(logger, &cli)
	ctx.FatalIfErrorf(err)
}
