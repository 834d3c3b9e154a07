package domain

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Money is an amount of currency in minor units (paise). All ledger
// arithmetic happens on this type; floating point never touches a balance.
type Money int64

// MaxMoney is the largest representable amount.
const MaxMoney = Money(math.MaxInt64)

// MinMoney is the smallest representable amount.
const MinMoney = Money(math.MinInt64)

var hundred = decimal.NewFromInt(100)

// ParseMoney converts a decimal currency string (e.g. "123.45") into minor
// units, rounding half away from zero beyond two decimal places.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	minor := d.Mul(hundred).Round(0)
	if !minor.BigInt().IsInt64() {
		return 0, fmt.Errorf("%w: %q exceeds representable range", ErrInvalidAmount, s)
	}

	return Money(minor.IntPart()), nil
}

// Add returns m + other, failing closed on signed 64-bit overflow.
func (m Money) Add(other Money) (Money, error) {
	if other > 0 && m > MaxMoney-other {
		return 0, fmt.Errorf("%w: %d + %d", ErrOverflow, m, other)
	}
	if other < 0 && m < MinMoney-other {
		return 0, fmt.Errorf("%w: %d + %d", ErrUnderflow, m, other)
	}
	return m + other, nil
}

// Sub returns m - other, failing closed on signed 64-bit overflow.
func (m Money) Sub(other Money) (Money, error) {
	if other == MinMoney {
		return 0, fmt.Errorf("%w: negating %d", ErrOverflow, other)
	}
	return m.Add(-other)
}

// PercentOf computes rate% of amount using a scaled-integer intermediate:
// the rate is shifted to basis points so the result stays exact to the
// minor unit without any floating arithmetic.
func PercentOf(amount Money, rate decimal.Decimal) Money {
	basisPoints := rate.Mul(hundred).IntPart()
	return Money(int64(amount) * basisPoints / 10000)
}

// Decimal returns the amount in major units as an exact decimal.
func (m Money) Decimal() decimal.Decimal {
	return decimal.NewFromInt(int64(m)).Div(hundred)
}

// Format renders the amount for display, e.g. "Rs.123.45". Presentation
// only; never fed back into arithmetic.
func (m Money) Format() string {
	return "Rs." + m.Decimal().StringFixed(2)
}

func (m Money) String() string {
	return m.Format()
}
