package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"

	"github.com/lox/turncore/internal/config"
	"github.com/lox/turncore/internal/fileutil"
	"github.com/lox/turncore/internal/order"
	"github.com/lox/turncore/internal/rng"
	"github.com/lox/turncore/internal/simulator"
)

// SimulateCmd runs one or more skirmishes from an HCL scenario.
type SimulateCmd struct {
	Config   string  `short:"c" default:"skirmish.hcl" help:"Scenario file (built-in scenario if missing)"`
	Seed     *uint64 `help:"Override the scenario seed"`
	Turns    int     `help:"Override the scenario turn limit"`
	Runs     int     `default:"1" help:"Number of skirmishes, seeded consecutively and run in parallel"`
	Format   string  `default:"text" enum:"text,json,yaml" help:"Output format (text, json, yaml)"`
	Snapshot string  `help:"Write the final session snapshot of the first run to this file (.json or .yaml)"`
	Trace    bool    `help:"Log every random draw at debug level"`
}

func (cmd *SimulateCmd) Run(logger *log.Logger, cli *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	scenario, err := config.Load(cmd.Config)
	if err != nil {
		return err
	}
	if cli.LogLevel == "" {
		if err := setLevel(logger, scenario.LogLevel); err != nil {
			return err
		}
	}
	return cmd.run(ctx, os.Stdout, logger, scenario)
}

func (cmd *SimulateCmd) run(ctx context.Context, w io.Writer, logger *log.Logger, scenario *config.Config) error {
	if cmd.Runs < 1 {
		return fmt.Errorf("runs must be positive, got %d", cmd.Runs)
	}

	cfg := simulator.FromScenario(scenario)
	cfg.Logger = logger
	if cmd.Seed != nil {
		cfg.Seed = *cmd.Seed
	}
	if cmd.Turns > 0 {
		cfg.Turns = cmd.Turns
	}
	if cmd.Trace {
		cfg.Tracer = rng.LogTracer{Logger: logger}
	}

	seeds := make([]uint64, cmd.Runs)
	for i := range seeds {
		seeds[i] = cfg.Seed + uint64(i)
	}
	logger.Info("Starting simulation", "runs", cmd.Runs, "seed", cfg.Seed, "turns", cfg.Turns, "actors", len(scenario.Actors))

	results, err := simulator.RunMany(ctx, cfg, seeds)
	if err != nil {
		return err
	}

	if cmd.Snapshot != "" {
		if err := fileutil.Save(cmd.Snapshot, results[0].Snapshot); err != nil {
			return fmt.Errorf("failed to write snapshot: %w", err)
		}
		logger.Info("Snapshot written", "path", cmd.Snapshot)
	}

	if cmd.Format != "text" {
		format, err := fileutil.ParseFormat(cmd.Format)
		if err != nil {
			return err
		}
		var v any = results
		if len(results) == 1 {
			v = results[0]
		}
		data, err := fileutil.Encode(format, v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}

	for _, r := range results {
		simulator.PrintSummary(w, r)
	}
	if len(results) > 1 {
		wins := simulator.Tally(results)
		fmt.Fprintf(w, "\n%s\n", header("TALLY"))
		for _, team := range order.SortedKeys(wins) {
			label := team
			if label == "" {
				label = "no winner"
			}
			fmt.Fprintln(w, field(label, fmt.Sprintf("%d/%d", wins[team], len(results))))
		}
	}
	return nil
}
