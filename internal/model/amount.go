package model

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a user-entered monetary value that remembers whether it parsed.
// An invalid Amount counts as zero in totals but blocks posting.
type Amount struct {
	Value   decimal.Decimal
	Raw     string // original input, kept when Invalid
	Invalid bool
}

// NewAmount wraps an already-parsed decimal.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Value: d}
}

// ParseAmount parses user input. Blank input is a valid zero.
// Garbage, NaN, infinities and negative values are flagged invalid.
func ParseAmount(s string) Amount {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Amount{}
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil || d.IsNegative() {
		return Amount{Raw: s, Invalid: true}
	}
	return Amount{Value: d}
}

// AmountFromFloat converts a float from an upstream source.
func AmountFromFloat(f float64) Amount {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return Amount{Raw: strconv.FormatFloat(f, 'g', -1, 64), Invalid: true}
	}
	return Amount{Value: decimal.NewFromFloat(f)}
}

// Decimal returns the value used for totals: zero when invalid.
func (a Amount) Decimal() decimal.Decimal {
	if a.Invalid {
		return decimal.Zero
	}
	return a.Value
}

// IsZero reports whether the amount contributes nothing to totals.
func (a Amount) IsZero() bool {
	return a.Decimal().IsZero()
}

// IsPositive reports whether the amount is a valid value greater than zero.
func (a Amount) IsPositive() bool {
	return !a.Invalid && a.Value.IsPositive()
}

// Blank reports whether nothing meaningful was entered.
func (a Amount) Blank() bool {
	return !a.Invalid && a.Value.IsZero()
}

// String formats valid amounts with two decimals and echoes invalid input.
func (a Amount) String() string {
	if a.Invalid {
		return a.Raw
	}
	return a.Value.StringFixed(2)
}
