// Package rng provides a deterministic, seedable random number generator
// with named substreams.
//
// The core is PCG-XSH-RR: 64 bits of state, an odd 64-bit stream increment,
// 32 bits of output per step. Given the same seed and the same sequence of
// calls, a Generator produces the same values on every platform.
//
// # Streams
//
// Fork derives an independent generator from the root seed and a name. The
// parent's current state plays no part, so a "loot" stream is unaffected by
// how much "combat" randomness was drawn before it was created.
//
// # Errors
//
// Invalid arguments are programmer errors. They are returned immediately,
// wrapping ErrInvalidArgument or ErrOverflow, and never clamped.
package rng

import (
	"errors"
	"fmt"
	"math"

	"github.com/lox/turncore/internal/stablehash"
)

const (
	multiplier       = 6364136223846793005
	defaultIncrement = 1442695040888963407
)

// RootStream is the name reported by the root generator.
const RootStream = "root"

var (
	// ErrInvalidArgument reports a bound, percentage or weight outside its contract.
	ErrInvalidArgument = errors.New("rng: invalid argument")
	// ErrOverflow reports a range width or weight sum wider than 32 bits.
	ErrOverflow = errors.New("rng: capacity overflow")
)

// Generator is a PCG-XSH-RR stream. It is not safe for concurrent use;
// distinct forks may be used from different goroutines.
type Generator struct {
	state  uint64
	inc    uint64
	seed   uint64
	path   string
	tracer Tracer
}

// Option configures a Generator.
type Option func(*Generator)

// WithTracer reports every draw to t. Forks inherit the tracer.
func WithTracer(t Tracer) Option {
	return func(g *Generator) {
		g.tracer = t
	}
}

// New creates a root generator on the default stream.
func New(seed uint64, opts ...Option) *Generator {
	g := newStream(seed, defaultIncrement)
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func newStream(seed, inc uint64) *Generator {
	g := &Generator{inc: inc | 1, seed: seed}
	g.step()
	g.state += seed
	g.step()
	return g
}

func (g *Generator) step() {
	g.state = g.state*multiplier + g.inc
}

// Uint32 returns the next raw 32-bit output.
func (g *Generator) Uint32() uint32 {
	old := g.state
	g.step()
	xorshifted := uint32(((old >> 18) ^ old) >> 27)
	rot := uint32(old >> 59)
	return (xorshifted >> rot) | (xorshifted << ((-rot) & 31))
}

// bounded draws uniformly from [0, n) by rejecting raw outputs below
// 2^32 mod n, which removes modulo bias.
func (g *Generator) bounded(n uint32) uint32 {
	threshold := -n % n
	for {
		r := g.Uint32()
		if r >= threshold {
			return r % n
		}
	}
}

// Next returns a uniform integer in [0, maxExclusive).
func (g *Generator) Next(maxExclusive int, context string) (int, error) {
	if maxExclusive <= 0 {
		return 0, fmt.Errorf("%w: next(%d) bound must be positive [%s]", ErrInvalidArgument, maxExclusive, context)
	}
	if uint64(maxExclusive) > math.MaxUint32 {
		return 0, fmt.Errorf("%w: next(%d) bound exceeds 32 bits [%s]", ErrOverflow, maxExclusive, context)
	}

	v := int(g.bounded(uint32(maxExclusive)))
	g.trace("next", context, maxExclusive, v)
	return v, nil
}

// Range returns a uniform integer in [min, maxExclusive).
func (g *Generator) Range(min, maxExclusive int, context string) (int, error) {
	v, err := g.rangeInt(min, maxExclusive, context)
	if err != nil {
		return 0, err
	}
	g.trace("range", context, maxExclusive-min, v)
	return v, nil
}

func (g *Generator) rangeInt(min, maxExclusive int, context string) (int, error) {
	if min >= maxExclusive {
		return 0, fmt.Errorf("%w: range(%d, %d) is empty [%s]", ErrInvalidArgument, min, maxExclusive, context)
	}
	// Unsigned subtraction is exact for any ordered pair of int64 values.
	width := uint64(maxExclusive) - uint64(min)
	if width > math.MaxUint32 {
		return 0, fmt.Errorf("%w: range(%d, %d) wider than 32 bits [%s]", ErrOverflow, min, maxExclusive, context)
	}
	return min + int(g.bounded(uint32(width))), nil
}

// Roll returns modifier plus the sum of count dice with the given sides.
func (g *Generator) Roll(count, sides, modifier int, context string) (int, error) {
	if count < 0 {
		return 0, fmt.Errorf("%w: roll count %d is negative [%s]", ErrInvalidArgument, count, context)
	}
	if sides < 1 {
		return 0, fmt.Errorf("%w: roll needs at least one side, got %d [%s]", ErrInvalidArgument, sides, context)
	}
	if uint64(sides) > math.MaxUint32 {
		return 0, fmt.Errorf("%w: roll with %d sides [%s]", ErrOverflow, sides, context)
	}

	total := modifier
	for range count {
		v, err := g.rangeInt(1, sides+1, context)
		if err != nil {
			return 0, err
		}
		total += v
	}
	g.trace("roll", context, sides, total)
	return total, nil
}

// Check returns true with probability percent/100. It always consumes one
// draw, so Check(0) is always false and Check(100) always true.
func (g *Generator) Check(percent int, context string) (bool, error) {
	if percent < 0 || percent > 100 {
		return false, fmt.Errorf("%w: check(%d) outside [0,100] [%s]", ErrInvalidArgument, percent, context)
	}

	ok := int(g.bounded(100)) < percent
	result := 0
	if ok {
		result = 1
	}
	g.trace("check", context, percent, result)
	return ok, nil
}

// Fork derives an independent generator named name. Seed and increment
// depend only on this generator's seed and name:
//
//	seed = stablehash.Sum64(root, "seed", name)
//	inc  = stablehash.Sum64(root, "stream", name) | 1
func (g *Generator) Fork(name string) *Generator {
	child := newStream(
		stablehash.Sum64(g.seed, "seed", name),
		stablehash.Sum64(g.seed, "stream", name)|1,
	)
	child.tracer = g.tracer
	child.path = name
	if g.path != "" {
		child.path = g.path + "/" + name
	}
	return child
}

// State returns the mutable state for persistence.
func (g *Generator) State() uint64 {
	return g.state
}

// SetState restores a value previously returned by State.
func (g *Generator) SetState(state uint64) {
	g.state = state
}

// Seed returns the seed this generator was created from.
func (g *Generator) Seed() uint64 {
	return g.seed
}

// Increment returns the odd stream increment.
func (g *Generator) Increment() uint64 {
	return g.inc
}

// Name returns the fork path, or RootStream for a root generator.
func (g *Generator) Name() string {
	if g.path == "" {
		return RootStream
	}
	return g.path
}

func (g *Generator) trace(op, context string, bound, result int) {
	if g.tracer == nil {
		return
	}
	g.tracer.Trace(Draw{
		Stream:  g.Name(),
		Op:      op,
		Context: context,
		Bound:   bound,
		Result:  result,
		State:   g.state,
	})
}
