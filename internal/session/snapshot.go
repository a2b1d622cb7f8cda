package session

import "github.com/lox/turncore/internal/rng"

// Snapshot is the plain, serialisable state of a session. Times and costs
// are exact decimal strings; stream states are raw generator integers.
type Snapshot struct {
	Seed    uint64            `json:"seed" yaml:"seed"`
	Streams []rng.StreamState `json:"streams" yaml:"streams"`
	Now     string            `json:"now" yaml:"now"`
	Entries []EntryState      `json:"entries" yaml:"entries"`
}

// EntryState is one pending timeline entry.
type EntryState struct {
	Time  string `json:"time" yaml:"time"`
	Actor string `json:"actor" yaml:"actor"`
	Cost  string `json:"cost" yaml:"cost"`
}
