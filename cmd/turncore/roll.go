package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/lox/turncore/internal/rng"
)

// RollCmd rolls a dice expression on a named stream.
type RollCmd struct {
	Dice   string `arg:"" help:"Dice notation, e.g. 3d6+2"`
	Seed   uint64 `default:"12345" help:"Root seed"`
	Stream string `default:"root" help:"Stream to draw from"`
	Times  int    `short:"n" default:"1" help:"Number of rolls"`
}

func (cmd *RollCmd) Run(logger *log.Logger) error {
	return cmd.run(os.Stdout, logger)
}

func (cmd *RollCmd) run(w io.Writer, logger *log.Logger) error {
	dice, err := rng.ParseDice(cmd.Dice)
	if err != nil {
		return err
	}
	if cmd.Times < 1 {
		return fmt.Errorf("times must be positive, got %d", cmd.Times)
	}

	g := newStreams(cmd.Seed, logger).Stream(cmd.Stream)
	for i := 0; i < cmd.Times; i++ {
		v, err := dice.Roll(g, "cli roll")
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s: %d\n", dice, v)
	}
	logger.Debug("Rolled dice", "dice", dice, "range", fmt.Sprintf("%d-%d", dice.Min(), dice.Max()), "stream", g.Name(), "state", g.State())
	return nil
}

// newStreams traces every draw to the logger at debug level.
func newStreams(seed uint64, logger *log.Logger) *rng.Streams {
	return rng.NewStreams(seed, rng.WithTracer(rng.LogTracer{Logger: logger}))
}
