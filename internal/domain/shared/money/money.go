package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount = errors.New("money: invalid amount")
	ErrNegative      = errors.New("money: amount cannot be negative")
)

// Scale is the number of fractional digits kept for stored amounts.
const Scale = 2

// Money keeps amounts as fixed-point decimals to avoid floating point drift.
type Money struct {
	Amount decimal.Decimal
}

// Zero returns a zero amount.
func Zero() Money {
	return Money{Amount: decimal.Zero}
}

// FromDecimal wraps a decimal value.
func FromDecimal(d decimal.Decimal) Money {
	return Money{Amount: d}
}

// Parse reads a decimal string such as "12.50".
func Parse(raw string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return Money{Amount: d}, nil
}

// Must parses raw and panics on failure; useful in tests and fixtures.
func Must(raw string) Money {
	m, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return m
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{Amount: m.Amount.Add(other.Amount)}
}

// Multiply multiplies the amount by an integer factor.
func (m Money) Multiply(times int64) Money {
	return Money{Amount: m.Amount.Mul(decimal.NewFromInt(times))}
}

// Percent returns percent/100 of the amount, rounded to Scale.
func (m Money) Percent(percent decimal.Decimal) Money {
	return Money{Amount: m.Amount.Mul(percent).Div(decimal.NewFromInt(100)).Round(Scale)}
}

// Round rounds half away from zero to Scale digits.
func (m Money) Round() Money {
	return Money{Amount: m.Amount.Round(Scale)}
}

// WithinScale reports whether the amount has no digits beyond Scale.
func (m Money) WithinScale() bool {
	return m.Amount.Equal(m.Amount.Round(Scale))
}

func (m Money) IsNegative() bool {
	return m.Amount.IsNegative()
}

func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

func (m Money) Equal(other Money) bool {
	return m.Amount.Equal(other.Amount)
}

// String renders the amount with exactly Scale fractional digits.
func (m Money) String() string {
	return m.Amount.StringFixed(Scale)
}

// MarshalText renders the amount as a fixed-point string.
func (m Money) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalText(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
