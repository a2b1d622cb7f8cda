package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/lox/turncore/internal/fileutil"
	"github.com/lox/turncore/internal/schedule"
	"github.com/lox/turncore/internal/session"
)

// InspectCmd loads a snapshot written by simulate and restores it.
type InspectCmd struct {
	Snapshot string `arg:"" type:"existingfile" help:"Snapshot file (.json or .yaml)"`
	Peek     int    `default:"0" help:"Preview this many d100 draws from each stream after restoring"`
}

func (cmd *InspectCmd) Run(logger *log.Logger) error {
	return cmd.run(os.Stdout, logger)
}

func (cmd *InspectCmd) run(w io.Writer, logger *log.Logger) error {
	var snap session.Snapshot
	if err := fileutil.Load(cmd.Snapshot, &snap); err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	sess, err := session.Restore(snap, session.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to restore snapshot: %w", err)
	}

	fmt.Fprintln(w, header("SESSION"))
	fmt.Fprintln(w, field("Seed", sess.Seed()))
	fmt.Fprintln(w, field("Now", snap.Now))

	fmt.Fprintf(w, "\n%s\n", header("STREAMS"))
	for _, st := range sess.Streams().States() {
		line := field(st.Name, st.State)
		if cmd.Peek > 0 {
			g := sess.Stream(st.Name)
			draws := make([]int, cmd.Peek)
			for i := range draws {
				if draws[i], err = g.Next(100, "inspect peek"); err != nil {
					return err
				}
			}
			line += fmt.Sprintf(" next %v", draws)
		}
		fmt.Fprintln(w, line)
	}

	fmt.Fprintf(w, "\n%s\n", header("TIMELINE"))
	for _, e := range sess.Timeline().Entries() {
		fmt.Fprintln(w, field(e.Actor, fmt.Sprintf("%s (cost %s)", schedule.Format(e.Time), schedule.Format(e.Cost))))
	}
	return nil
}
