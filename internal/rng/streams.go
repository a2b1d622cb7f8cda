package rng

import (
	"maps"
	"slices"
)

// StreamState is the persisted form of one named stream.
type StreamState struct {
	Name  string `json:"name" yaml:"name"`
	State uint64 `json:"state" yaml:"state"`
}

// Streams owns a root generator and its named forks. Forks are created on
// first use; because forks never depend on parent state, creation order
// does not matter.
type Streams struct {
	root  *Generator
	forks map[string]*Generator
}

// NewStreams creates a registry rooted at seed.
func NewStreams(seed uint64, opts ...Option) *Streams {
	return &Streams{
		root:  New(seed, opts...),
		forks: make(map[string]*Generator),
	}
}

// Seed returns the root seed.
func (s *Streams) Seed() uint64 {
	return s.root.Seed()
}

// Root returns the root generator.
func (s *Streams) Root() *Generator {
	return s.root
}

// Stream returns the fork called name, creating it if needed. RootStream
// and the empty name return the root generator.
func (s *Streams) Stream(name string) *Generator {
	if name == "" || name == RootStream {
		return s.root
	}
	g, ok := s.forks[name]
	if !ok {
		g = s.root.Fork(name)
		s.forks[name] = g
	}
	return g
}

// Names returns the fork names in sorted order.
func (s *Streams) Names() []string {
	return slices.Sorted(maps.Keys(s.forks))
}

// States returns the root state followed by every fork in name order.
func (s *Streams) States() []StreamState {
	states := make([]StreamState, 0, len(s.forks)+1)
	states = append(states, StreamState{Name: RootStream, State: s.root.State()})
	for _, name := range s.Names() {
		states = append(states, StreamState{Name: name, State: s.forks[name].State()})
	}
	return states
}

// Restore applies persisted states, creating forks as needed.
func (s *Streams) Restore(states []StreamState) {
	for _, st := range states {
		s.Stream(st.Name).SetState(st.State)
	}
}
