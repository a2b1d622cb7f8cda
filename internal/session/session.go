// Package session owns the deterministic state of one simulation: the
// random streams and the action timeline. Nothing here is global, so any
// number of sessions can run side by side in one process.
package session

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/lox/turncore/internal/rng"
	"github.com/lox/turncore/internal/schedule"
)

// Session bundles the streams and timeline of a single simulation.
type Session struct {
	streams  *rng.Streams
	timeline *schedule.Timeline[string]
	logger   *log.Logger
	opts     options
}

// Option configures a Session.
type Option func(*options)

type options struct {
	logger *log.Logger
	tracer rng.Tracer
}

// WithLogger sets the session logger. The timeline logs through it too.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTracer reports every random draw in the session.
func WithTracer(t rng.Tracer) Option {
	return func(o *options) {
		o.tracer = t
	}
}

// New creates a session rooted at seed with an empty timeline.
func New(seed uint64, opts ...Option) *Session {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}

	// Actor ids are ordered lexicographically to break time ties.
	s := &Session{
		timeline: schedule.NewOrdered[string](schedule.WithLogger(o.logger)),
		logger:   o.logger.WithPrefix("session"),
		opts:     o,
	}
	s.streams = s.newStreams(seed)
	return s
}

func (s *Session) newStreams(seed uint64) *rng.Streams {
	var rngOpts []rng.Option
	if s.opts.tracer != nil {
		rngOpts = append(rngOpts, rng.WithTracer(s.opts.tracer))
	}
	return rng.NewStreams(seed, rngOpts...)
}

// Seed returns the root seed.
func (s *Session) Seed() uint64 {
	return s.streams.Seed()
}

// Streams returns the stream registry.
func (s *Session) Streams() *rng.Streams {
	return s.streams
}

// Stream returns the named stream, forking it on first use.
func (s *Session) Stream(name string) *rng.Generator {
	return s.streams.Stream(name)
}

// Timeline returns the action timeline.
func (s *Session) Timeline() *schedule.Timeline[string] {
	return s.timeline
}

// Reset clears the timeline and recreates every stream from the seed.
// Generators obtained before Reset keep their old state; fetch them again.
func (s *Session) Reset() {
	seed := s.Seed()
	s.streams = s.newStreams(seed)
	s.timeline.Clear()
	s.logger.Debug("Session reset", "seed", seed)
}

// Snapshot captures everything needed to resume the session exactly.
func (s *Session) Snapshot() Snapshot {
	entries := s.timeline.Entries()
	states := make([]EntryState, len(entries))
	for i, e := range entries {
		states[i] = EntryState{
			Time:  schedule.Format(e.Time),
			Actor: e.Actor,
			Cost:  schedule.Format(e.Cost),
		}
	}

	return Snapshot{
		Seed:    s.Seed(),
		Streams: s.streams.States(),
		Now:     schedule.Format(s.timeline.Now()),
		Entries: states,
	}
}

// Restore rebuilds a session from a snapshot.
func Restore(snap Snapshot, opts ...Option) (*Session, error) {
	s := New(snap.Seed, opts...)
	s.streams.Restore(snap.Streams)

	now, err := schedule.Decimal(snap.Now)
	if err != nil {
		return nil, fmt.Errorf("restore now: %w", err)
	}

	entries := make([]schedule.Entry[string], len(snap.Entries))
	for i, es := range snap.Entries {
		t, err := schedule.Decimal(es.Time)
		if err != nil {
			return nil, fmt.Errorf("restore entry %s time: %w", es.Actor, err)
		}
		cost, err := schedule.Decimal(es.Cost)
		if err != nil {
			return nil, fmt.Errorf("restore entry %s cost: %w", es.Actor, err)
		}
		entries[i] = schedule.Entry[string]{Time: t, Actor: es.Actor, Cost: cost}
	}
	if err := s.timeline.Restore(now, entries); err != nil {
		return nil, err
	}

	s.logger.Debug("Session restored", "seed", snap.Seed, "streams", len(snap.Streams), "entries", len(entries))
	return s, nil
}
