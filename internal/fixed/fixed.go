// Package fixed implements Q16.16 fixed-point numbers for gameplay math.
//
// A Fixed stores value × 2^16 in a signed 32-bit integer. Every operation
// is plain integer arithmetic so results are identical on every platform,
// compiler and optimisation level. Float64 exists only for display; its
// output must never be fed back into gameplay.
package fixed

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FracBits is the number of fractional bits.
const FracBits = 16

const (
	scale    = 1 << FracBits
	fracMask = scale - 1
	// 10^16 / 2^16, used to render the fractional part exactly.
	fracToDecimal = 152587890625
	fracDigits    = 16
)

var (
	// ErrDivideByZero is returned by Div when the divisor is zero.
	ErrDivideByZero = errors.New("fixed: division by zero")
	// ErrOverflow reports a result outside the representable range.
	ErrOverflow = errors.New("fixed: overflow")
)

// Fixed is a Q16.16 fixed-point value.
type Fixed int32

// Common values.
const (
	Zero Fixed = 0
	One  Fixed = scale
	Half Fixed = scale / 2
)

// Whole-number range of a Fixed.
const (
	MinInt = math.MinInt16
	MaxInt = math.MaxInt16
)

// Extremes of the raw representation.
const (
	MinValue Fixed = math.MinInt32
	MaxValue Fixed = math.MaxInt32
)

// FromInt converts a whole number in [MinInt, MaxInt]. Values outside that
// range wrap; use FromIntChecked for anything not known at compile time.
func FromInt(n int) Fixed {
	return Fixed(int32(n) << FracBits)
}

// FromIntChecked converts a whole number, returning ErrOverflow when n is
// outside [MinInt, MaxInt].
func FromIntChecked(n int) (Fixed, error) {
	if n < MinInt || n > MaxInt {
		return 0, fmt.Errorf("%w: %d outside [%d, %d]", ErrOverflow, n, MinInt, MaxInt)
	}
	return FromInt(n), nil
}

// FromRaw wraps a raw scaled integer.
func FromRaw(raw int32) Fixed {
	return Fixed(raw)
}

// FromRatio returns num/den, truncated toward zero. ErrOverflow is
// returned when the quotient is out of range or |num| exceeds 2^47.
func FromRatio(num, den int) (Fixed, error) {
	if den == 0 {
		return 0, ErrDivideByZero
	}
	if num > 1<<47 || num < -(1<<47) {
		return 0, fmt.Errorf("%w: numerator %d", ErrOverflow, num)
	}
	return narrow((int64(num) << FracBits) / int64(den))
}

// FromFloat converts a float, rounding to the nearest representable value.
// Values beyond the range saturate at MinValue or MaxValue and NaN becomes
// Zero. Use it for literals in tests and tooling only.
func FromFloat(f float64) Fixed {
	r := math.Round(f * scale)
	switch {
	case math.IsNaN(r):
		return Zero
	case r <= math.MinInt32:
		return MinValue
	case r >= math.MaxInt32:
		return MaxValue
	}
	return Fixed(int32(r))
}

// Raw returns the scaled integer representation.
func (f Fixed) Raw() int32 {
	return int32(f)
}

// Int truncates toward zero.
func (f Fixed) Int() int {
	if f < 0 {
		return -int(-int64(f) >> FracBits)
	}
	return int(int32(f) >> FracBits)
}

// Float64 is for display only.
func (f Fixed) Float64() float64 {
	return float64(f) / scale
}

// Add returns f + g.
func (f Fixed) Add(g Fixed) Fixed {
	return f + g
}

// Sub returns f - g.
func (f Fixed) Sub(g Fixed) Fixed {
	return f - g
}

// Mul returns f × g using a 64-bit intermediate.
func (f Fixed) Mul(g Fixed) Fixed {
	return Fixed((int64(f) * int64(g)) >> FracBits)
}

// Div returns f / g. The dividend is widened before dividing so no
// fractional precision is lost; the quotient truncates toward zero.
// ErrOverflow is returned when the quotient is out of range.
func (f Fixed) Div(g Fixed) (Fixed, error) {
	if g == 0 {
		return 0, ErrDivideByZero
	}
	return narrow((int64(f) << FracBits) / int64(g))
}

func narrow(raw int64) (Fixed, error) {
	if raw < math.MinInt32 || raw > math.MaxInt32 {
		return 0, fmt.Errorf("%w: raw value %d", ErrOverflow, raw)
	}
	return Fixed(raw), nil
}

// Neg returns -f.
func (f Fixed) Neg() Fixed {
	return -f
}

// Abs returns |f|.
func (f Fixed) Abs() Fixed {
	if f < 0 {
		return -f
	}
	return f
}

// Cmp returns -1, 0 or +1.
func (f Fixed) Cmp(g Fixed) int {
	switch {
	case f < g:
		return -1
	case f > g:
		return 1
	default:
		return 0
	}
}

// Less reports whether f < g.
func (f Fixed) Less(g Fixed) bool {
	return f < g
}

// Min returns the smaller of a and b.
func Min(a, b Fixed) Fixed {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max(a, b Fixed) Fixed {
	if a > b {
		return a
	}
	return b
}

// Clamp limits f to [lo, hi].
func (f Fixed) Clamp(lo, hi Fixed) Fixed {
	return Max(lo, Min(f, hi))
}

// String renders the exact decimal value, computed with integers only.
func (f Fixed) String() string {
	v := int64(f)
	neg := v < 0
	if neg {
		v = -v
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(strconv.FormatInt(v>>FracBits, 10))

	frac := uint64(v&fracMask) * fracToDecimal
	if frac != 0 {
		digits := strconv.FormatUint(frac, 10)
		digits = strings.Repeat("0", fracDigits-len(digits)) + digits
		b.WriteByte('.')
		b.WriteString(strings.TrimRight(digits, "0"))
	}
	return b.String()
}

// MarshalText encodes the raw integer so persisted values round-trip exactly.
func (f Fixed) MarshalText() ([]byte, error) {
	return strconv.AppendInt(nil, int64(f), 10), nil
}

// UnmarshalText decodes the raw integer form written by MarshalText.
func (f *Fixed) UnmarshalText(text []byte) error {
	raw, err := strconv.ParseInt(string(text), 10, 32)
	if err != nil {
		return err
	}
	*f = Fixed(raw)
	return nil
}
