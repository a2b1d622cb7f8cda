package rng

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChoose(t *testing.T) {
	items := []Weighted[string]{
		{Item: "a", Weight: 1},
		{Item: "b", Weight: 2},
		{Item: "c", Weight: 7},
	}

	g := New(12345)
	var got []string
	for range 10 {
		v, err := Choose(g, items, "loot table")
		require.NoError(t, err)
		got = append(got, v)
	}
	assert.Equal(t, []string{"c", "c", "c", "c", "c", "a", "b", "b", "c", "c"}, got)
}

func TestChooseRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		items   []Weighted[string]
		wantErr error
	}{
		{
			name:    "empty",
			items:   nil,
			wantErr: ErrInvalidArgument,
		},
		{
			name:    "zero weight",
			items:   []Weighted[string]{{"A", 1}, {"B", 0}},
			wantErr: ErrInvalidArgument,
		},
		{
			name:    "negative weight",
			items:   []Weighted[string]{{"A", -3}},
			wantErr: ErrInvalidArgument,
		},
		{
			name:    "sum past 32 bits",
			items:   []Weighted[string]{{"A", math.MaxUint32}, {"B", 1}},
			wantErr: ErrOverflow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(1)
			before := g.State()
			_, err := Choose(g, tt.items, "bad")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, g.State(), "failed choose must not draw")
		})
	}
}

func TestChooseProportions(t *testing.T) {
	g := New(42)
	items := []Weighted[int]{{0, 1}, {1, 3}}
	counts := [2]int{}
	for range 40000 {
		v, err := Choose(g, items, "ratio")
		require.NoError(t, err)
		counts[v]++
	}
	// sd ~ 87
	assert.InDelta(t, 10000, counts[0], 600)
	assert.InDelta(t, 30000, counts[1], 600)
}

func TestChooseSingleItem(t *testing.T) {
	v, err := Choose(New(3), []Weighted[string]{{"only", 5}}, "single")
	require.NoError(t, err)
	assert.Equal(t, "only", v)
}
