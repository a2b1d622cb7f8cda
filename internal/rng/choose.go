package rng

import (
	"fmt"
	"math"
)

// Weighted pairs an item with a positive selection weight.
type Weighted[T any] struct {
	Item   T
	Weight int
}

// Choose picks one item with probability proportional to its weight.
// Items are scanned in slice order, so callers building the slice from a
// map must sort it first.
func Choose[T any](g *Generator, items []Weighted[T], context string) (T, error) {
	var zero T
	if len(items) == 0 {
		return zero, fmt.Errorf("%w: choose from empty list [%s]", ErrInvalidArgument, context)
	}

	var total uint64
	for i, it := range items {
		if it.Weight <= 0 {
			return zero, fmt.Errorf("%w: choose weight %d at index %d must be positive [%s]", ErrInvalidArgument, it.Weight, i, context)
		}
		total += uint64(it.Weight)
		if total > math.MaxUint32 {
			return zero, fmt.Errorf("%w: choose weights sum past 32 bits [%s]", ErrOverflow, context)
		}
	}

	roll := uint64(g.bounded(uint32(total)))
	var cumulative uint64
	for i, it := range items {
		cumulative += uint64(it.Weight)
		if roll < cumulative {
			g.trace("choose", context, int(total), i)
			return it.Item, nil
		}
	}
	// Unreachable: roll < total.
	return zero, fmt.Errorf("%w: choose roll %d past total %d [%s]", ErrOverflow, roll, total, context)
}
