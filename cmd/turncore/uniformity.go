package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/lox/turncore/internal/rng"
	"github.com/lox/turncore/internal/statistics"
)

// UniformityCmd draws samples from a stream and runs a chi-square test.
type UniformityCmd struct {
	Seed    uint64  `default:"12345" help:"Root seed"`
	Stream  string  `default:"root" help:"Stream to draw from"`
	Bound   int     `default:"10" help:"Number of buckets"`
	Samples int     `default:"100000" help:"Number of draws"`
	Z       float64 `default:"3.09" help:"One-sided z-score for the critical value"`
}

func (cmd *UniformityCmd) Run(logger *log.Logger) error {
	_, err := cmd.run(os.Stdout, logger)
	return err
}

func (cmd *UniformityCmd) run(w io.Writer, logger *log.Logger) (*statistics.Histogram, error) {
	h, err := statistics.NewHistogram(cmd.Bound)
	if err != nil {
		return nil, err
	}

	// Tracing every sample would flood the log, so this stream is untraced.
	g := rng.NewStreams(cmd.Seed).Stream(cmd.Stream)
	for i := 0; i < cmd.Samples; i++ {
		v, err := g.Next(cmd.Bound, "uniformity")
		if err != nil {
			return nil, err
		}
		if err := h.Add(v); err != nil {
			return nil, err
		}
	}
	if err := h.Validate(); err != nil {
		return nil, fmt.Errorf("histogram validation failed: %w", err)
	}

	critical := statistics.ChiSquareCritical(h.DegreesOfFreedom(), cmd.Z)
	lo, hi := h.ConfidenceInterval95()

	fmt.Fprintln(w, header(fmt.Sprintf("UNIFORMITY %s seed %d", g.Name(), cmd.Seed)))
	fmt.Fprintln(w, field("Samples", h.Total))
	fmt.Fprintln(w, field("Mean", fmt.Sprintf("%.4f (expected %.4f)", h.Mean(), h.ExpectedMean())))
	fmt.Fprintln(w, field("95% CI", fmt.Sprintf("[%.4f, %.4f]", lo, hi)))
	fmt.Fprintln(w, field("Std dev", fmt.Sprintf("%.4f", h.StdDev())))
	fmt.Fprintln(w, field("Low share", fmt.Sprintf("%.4f", h.LowShare())))
	fmt.Fprintln(w, field("Chi-square", fmt.Sprintf("%.3f (critical %.3f, df %d)", h.ChiSquare(), critical, h.DegreesOfFreedom())))

	if h.Uniform(cmd.Z) {
		fmt.Fprintln(w, passStyle.Render("PASS"))
	} else {
		fmt.Fprintln(w, failStyle.Render("FAIL"))
		logger.Warn("Distribution is not uniform", "chi_square", h.ChiSquare(), "critical", critical)
	}
	return h, nil
}
