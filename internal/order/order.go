// Package order provides orderings that do not depend on how a container
// happens to iterate. Map iteration in Go is randomised per run, so any
// gameplay-visible order must come from an explicit sort.
package order

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
)

// SortStableBy sorts items in place by key. Items with equal keys keep their
// input order, so repeated sorts of the same input always agree.
func SortStableBy[T any, K cmp.Ordered](items []T, key func(T) K) {
	slices.SortStableFunc(items, func(a, b T) int {
		return cmp.Compare(key(a), key(b))
	})
}

// SortedStableBy returns a sorted copy and leaves items untouched.
func SortedStableBy[T any, K cmp.Ordered](items []T, key func(T) K) []T {
	out := slices.Clone(items)
	SortStableBy(out, key)
	return out
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	return slices.Sorted(maps.Keys(m))
}

// Intner is the part of a generator Shuffle needs. *rng.Generator
// satisfies it.
type Intner interface {
	Next(maxExclusive int, context string) (int, error)
}

// Shuffle permutes items in place with Fisher-Yates, drawing only from src.
// The same generator state always yields the same permutation.
func Shuffle[T any](src Intner, items []T, context string) error {
	for i := len(items) - 1; i > 0; i-- {
		j, err := src.Next(i+1, context)
		if err != nil {
			return fmt.Errorf("shuffle: %w", err)
		}
		items[i], items[j] = items[j], items[i]
	}
	return nil
}
