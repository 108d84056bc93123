// Package money holds the fixed-point helpers shared by every ledger path.
package money

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits persisted for currency amounts.
const Scale = 2

var hundred = decimal.NewFromInt(100)

// Round rounds half away from zero to the persisted currency scale.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// Percent returns amount * pct / 100 rounded to the currency scale.
func Percent(amount, pct decimal.Decimal) decimal.Decimal {
	return Round(amount.Mul(pct).Div(hundred))
}

// Floor truncates d toward negative infinity at the currency scale.
func Floor(d decimal.Decimal) decimal.Decimal {
	return d.RoundFloor(Scale)
}

// Share returns amount * pct / 100 floored to the currency scale, so the
// result never exceeds the exact share.
func Share(amount, pct decimal.Decimal) decimal.Decimal {
	return Floor(amount.Mul(pct).Div(hundred))
}

// NonNegative clamps d at zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Min returns the smallest of the given amounts.
func Min(first decimal.Decimal, rest ...decimal.Decimal) decimal.Decimal {
	return decimal.Min(first, rest...)
}

// Sum adds amounts together.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// ToMinorUnits converts a rupee amount into paise.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// FromMinorUnits converts paise into a rupee amount.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -Scale)
}

// Lenient decodes amounts sent as JSON numbers, numeric strings, empty strings
// or null. Empty values decode to zero.
type Lenient struct {
	decimal.Decimal
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *Lenient) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		l.Decimal = decimal.Zero
		return nil
	}
	raw := strings.TrimSpace(strings.Trim(string(trimmed), `"`))
	raw = strings.ReplaceAll(raw, ",", "")
	if raw == "" {
		l.Decimal = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	l.Decimal = d
	return nil
}

// MarshalJSON implements json.Marshaler.
func (l Lenient) MarshalJSON() ([]byte, error) {
	return l.Decimal.MarshalJSON()
}
