package schedule

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"

	"github.com/lox/turncore/internal/fixed"
)

// Decimal parses an exact decimal such as "1.37".
func Decimal(s string) (*apd.Decimal, error) {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: parse decimal %q: %v", ErrInvalidArgument, s, err)
	}
	if d.Form != apd.Finite {
		return nil, fmt.Errorf("%w: decimal %q is not finite", ErrInvalidArgument, s)
	}
	return d, nil
}

// MustDecimal is Decimal for literals; it panics on error.
func MustDecimal(s string) *apd.Decimal {
	d, err := Decimal(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Int returns n as a decimal.
func Int(n int64) *apd.Decimal {
	return apd.New(n, 0)
}

// FromFixed converts a fixed-point value exactly. Every Q16.16 value has a
// finite decimal expansion of at most 26 significant digits.
func FromFixed(f fixed.Fixed) *apd.Decimal {
	d := new(apd.Decimal)
	ctx := apd.BaseContext.WithPrecision(DefaultPrecision)
	// Division by a non-zero constant within precision cannot fail.
	_, _ = ctx.Quo(d, apd.New(int64(f.Raw()), 0), apd.New(1<<fixed.FracBits, 0))
	return d
}

// Format renders d in plain notation without trailing zeros.
func Format(d *apd.Decimal) string {
	if d == nil {
		return "<nil>"
	}
	reduced, _ := new(apd.Decimal).Reduce(d)
	return reduced.Text('f')
}
