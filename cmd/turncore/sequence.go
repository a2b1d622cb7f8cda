package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// SequenceCmd prints Next draws one per line, suitable for golden files.
type SequenceCmd struct {
	Seed   uint64 `default:"12345" help:"Root seed"`
	Stream string `default:"root" help:"Stream to draw from"`
	Bound  int    `default:"100" help:"Exclusive upper bound"`
	Count  int    `short:"n" default:"20" help:"Number of draws"`
}

func (cmd *SequenceCmd) Run(logger *log.Logger) error {
	return cmd.run(os.Stdout, logger)
}

func (cmd *SequenceCmd) run(w io.Writer, logger *log.Logger) error {
	g := newStreams(cmd.Seed, logger).Stream(cmd.Stream)
	for i := 0; i < cmd.Count; i++ {
		v, err := g.Next(cmd.Bound, "cli sequence")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, v)
	}
	return nil
}
