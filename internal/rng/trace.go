package rng

import "github.com/charmbracelet/log"

// Draw describes one public draw. State is the generator state after the
// draw, which makes the first divergence between two runs easy to spot.
type Draw struct {
	Stream  string
	Op      string
	Context string
	Bound   int
	Result  int
	State   uint64
}

// Tracer observes draws.
type Tracer interface {
	Trace(Draw)
}

// TracerFunc adapts a function to Tracer.
type TracerFunc func(Draw)

// Trace calls f(d).
func (f TracerFunc) Trace(d Draw) { f(d) }

// LogTracer writes each draw as a debug line.
type LogTracer struct {
	Logger *log.Logger
}

// Trace implements Tracer.
func (l LogTracer) Trace(d Draw) {
	l.Logger.Debug("rng draw",
		"stream", d.Stream,
		"op", d.Op,
		"context", d.Context,
		"bound", d.Bound,
		"result", d.Result)
}

// Recorder keeps every draw in memory.
type Recorder struct {
	Draws []Draw
}

// Trace implements Tracer.
func (r *Recorder) Trace(d Draw) {
	r.Draws = append(r.Draws, d)
}

// Diff returns the index of the first draw where a and b disagree, or
// false when the recordings are identical. A shorter recording diverges at
// its length.
func Diff(a, b []Draw) (int, bool) {
	n := min(len(a), len(b))
	for i := range n {
		if a[i] != b[i] {
			return i, true
		}
	}
	if len(a) != len(b) {
		return n, true
	}
	return 0, false
}
