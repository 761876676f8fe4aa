package messenger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is a monetary value. It marshals as a bare JSON number with a dot
// separator and keeps the scale it was created with, so "12.50" stays 12.50.
type Amount struct {
	decimal.Decimal
}

// NewAmount parses a decimal string such as "29.95".
func NewAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("messenger: amount %q: %w", s, err)
	}
	return Amount{Decimal: d}, nil
}

// MustAmount is NewAmount for literals; it panics on bad input.
func MustAmount(s string) Amount {
	a, err := NewAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Cents builds an amount from minor units, e.g. Cents(1999) is 19.99.
func Cents(minor int64) Amount {
	return Amount{Decimal: decimal.New(minor, -2)}
}

// Ptr returns a pointer to a copy of a, for optional fields.
func (a Amount) Ptr() *Amount { return &a }

func (a Amount) MarshalJSON() ([]byte, error) {
	places := int32(0)
	if exp := a.Exponent(); exp < 0 {
		places = -exp
	}
	return []byte(a.StringFixed(places)), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	return a.Decimal.UnmarshalJSON(data)
}

// Bool returns a pointer to v, for optional flags where false must be sent.
func Bool(v bool) *bool { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
