// Package money provides a fixed-point monetary amount stored in integer
// minor units (cents).
//
// Amounts never pass through binary floating point. Text and JSON input is
// parsed with shopspring/decimal and rejected if it carries more precision
// than one cent.
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places of a Money value.
const Scale = 2

var (
	// ErrSubCentPrecision is returned when a value has more than Scale decimal places.
	ErrSubCentPrecision = errors.New("amount has more than two decimal places")
	// ErrOutOfRange is returned when a value exceeds MaxAmount in magnitude
	// or arithmetic on amounts overflows.
	ErrOutOfRange = errors.New("amount out of range")
)

// Money is an amount in cents. Zero is a valid amount.
type Money int64

// MaxAmount is the largest magnitude accepted from parsed input, ten
// trillion in major units. Sums of many such amounts still fit in int64.
const MaxAmount Money = 1_000_000_000_000_000

// FromCents returns the Money value for the given number of cents.
func FromCents(cents int64) Money {
	return Money(cents)
}

// FromDecimal converts d to Money. It fails if d is not a whole number of cents.
func FromDecimal(d decimal.Decimal) (Money, error) {
	cents := d.Shift(Scale)
	if !cents.Equal(cents.Truncate(0)) {
		return 0, fmt.Errorf("%w: %s", ErrSubCentPrecision, d.String())
	}
	if cents.Abs().GreaterThan(decimal.NewFromInt(int64(MaxAmount))) {
		return 0, fmt.Errorf("%w: %s", ErrOutOfRange, d.String())
	}
	return Money(cents.IntPart()), nil
}

// Parse parses a decimal string such as "12.50" or "-3".
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return FromDecimal(d)
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Cents returns the amount in minor units.
func (m Money) Cents() int64 {
	return int64(m)
}

// Decimal returns the amount as a decimal in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -Scale)
}

// String formats the amount with exactly two decimal places.
func (m Money) String() string {
	return m.Decimal().StringFixed(Scale)
}

func (m Money) IsZero() bool     { return m == 0 }
func (m Money) IsPositive() bool { return m > 0 }
func (m Money) IsNegative() bool { return m < 0 }

// Min returns the smaller of a and b.
func Min(a, b Money) Money {
	if a < b {
		return a
	}
	return b
}

// Add returns a + b. It fails with ErrOutOfRange if the result overflows.
func Add(a, b Money) (Money, error) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, fmt.Errorf("%w: %d + %d cents", ErrOutOfRange, a, b)
	}
	return sum, nil
}

// Sub returns a - b. It fails with ErrOutOfRange if the result overflows.
func Sub(a, b Money) (Money, error) {
	diff := a - b
	if (b > 0 && diff > a) || (b < 0 && diff < a) {
		return 0, fmt.Errorf("%w: %d - %d cents", ErrOutOfRange, a, b)
	}
	return diff, nil
}

// MarshalJSON encodes the amount as a JSON number with two decimal places.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	v, err := FromDecimal(d)
	if err != nil {
		return err
	}
	*m = v
	return nil
}
