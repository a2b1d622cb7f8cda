package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
)

// newLogger writes to stderr so command output on stdout stays clean. An
// empty level means info.
func newLogger(level string) (*log.Logger, error) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "turncore",
	})
	if level == "" {
		return logger, nil
	}
	if err := setLevel(logger, level); err != nil {
		return nil, err
	}
	return logger, nil
}

func setLevel(logger *log.Logger, level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger.SetLevel(lvl)
	return nil
}
