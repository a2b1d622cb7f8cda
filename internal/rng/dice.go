package rng

import (
	"fmt"
	"strconv"
	"strings"
)

// Dice is a parsed dice expression such as 3d6+2.
type Dice struct {
	Count    int
	Sides    int
	Modifier int
}

// ParseDice parses [count]d<sides>[+|-modifier]. A missing count means 1.
func ParseDice(s string) (Dice, error) {
	expr := strings.ToLower(strings.TrimSpace(s))
	countPart, rest, ok := strings.Cut(expr, "d")
	if !ok {
		return Dice{}, fmt.Errorf("%w: dice %q has no 'd'", ErrInvalidArgument, s)
	}

	d := Dice{Count: 1}
	if countPart != "" {
		n, err := strconv.Atoi(countPart)
		if err != nil || n < 0 {
			return Dice{}, fmt.Errorf("%w: dice %q has invalid count", ErrInvalidArgument, s)
		}
		d.Count = n
	}

	sidesPart := rest
	if i := strings.IndexAny(rest, "+-"); i >= 0 {
		sidesPart = rest[:i]
		mod, err := strconv.Atoi(rest[i:])
		if err != nil {
			return Dice{}, fmt.Errorf("%w: dice %q has invalid modifier", ErrInvalidArgument, s)
		}
		d.Modifier = mod
	}

	sides, err := strconv.Atoi(sidesPart)
	if err != nil || sides < 1 {
		return Dice{}, fmt.Errorf("%w: dice %q has invalid sides", ErrInvalidArgument, s)
	}
	d.Sides = sides
	return d, nil
}

// MustParseDice is ParseDice for literals; it panics on error.
func MustParseDice(s string) Dice {
	d, err := ParseDice(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Roll rolls the expression on g.
func (d Dice) Roll(g *Generator, context string) (int, error) {
	return g.Roll(d.Count, d.Sides, d.Modifier, context)
}

// Min returns the lowest possible total.
func (d Dice) Min() int {
	return d.Count + d.Modifier
}

// Max returns the highest possible total.
func (d Dice) Max() int {
	return d.Count*d.Sides + d.Modifier
}

func (d Dice) String() string {
	switch {
	case d.Modifier > 0:
		return fmt.Sprintf("%dd%d+%d", d.Count, d.Sides, d.Modifier)
	case d.Modifier < 0:
		return fmt.Sprintf("%dd%d%d", d.Count, d.Sides, d.Modifier)
	default:
		return fmt.Sprintf("%dd%d", d.Count, d.Sides)
	}
}
