// Package balance implements the chain's native token amount.
//
// Amounts are stored as an unsigned count of rao, the smallest unit.
// One tao (τ) is 10^9 rao.
package balance

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// Decimals is the number of fractional digits in one tao.
	Decimals = 9
	// RaoPerTao is the number of rao in one tao.
	RaoPerTao uint64 = 1_000_000_000
	// Symbol is the display symbol for tao.
	Symbol = "τ"
)

var (
	// ErrOverflow is returned when an amount does not fit in 64 bits of rao.
	ErrOverflow = errors.New("balance overflow")
	// ErrNegative is returned when a negative amount is parsed.
	ErrNegative = errors.New("negative amount")
)

var maxRao = decimal.NewFromBigInt(new(big.Int).SetUint64(^uint64(0)), 0)

// Balance is an immutable amount of the native token.
type Balance struct {
	rao uint64
}

// Zero is the zero balance.
var Zero = Balance{}

// FromRao creates a balance from a rao count.
func FromRao(rao uint64) Balance {
	return Balance{rao: rao}
}

// FromTao parses a decimal tao amount such as "1.5" or "τ0.25".
// Digits beyond nine decimals are rounded half away from zero.
func FromTao(s string) (Balance, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), Symbol))
	if s == "" {
		return Zero, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return FromDecimal(d)
}

// FromDecimal converts a tao amount to a balance.
func FromDecimal(tao decimal.Decimal) (Balance, error) {
	if tao.IsNegative() {
		return Zero, ErrNegative
	}
	rao := tao.Shift(Decimals).Round(0)
	if rao.GreaterThan(maxRao) {
		return Zero, ErrOverflow
	}
	return Balance{rao: rao.BigInt().Uint64()}, nil
}

// FromTaoFloat converts a floating point tao amount to a balance.
func FromTaoFloat(tao float64) (Balance, error) {
	return FromDecimal(decimal.NewFromFloat(tao))
}

// Rao returns the amount in rao.
func (b Balance) Rao() uint64 {
	return b.rao
}

// Tao returns the amount in tao as an exact decimal.
func (b Balance) Tao() decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(b.rao), -Decimals)
}

// TaoFloat returns the amount in tao as a float64. Precision is lost
// above 2^53 rao.
func (b Balance) TaoFloat() float64 {
	return float64(b.rao) / float64(RaoPerTao)
}

// IsZero reports whether the balance is zero.
func (b Balance) IsZero() bool {
	return b.rao == 0
}

// Add returns b + o, or ErrOverflow.
func (b Balance) Add(o Balance) (Balance, error) {
	sum := b.rao + o.rao
	if sum < b.rao {
		return Zero, ErrOverflow
	}
	return Balance{rao: sum}, nil
}

// Sub returns the signed difference b - o.
func (b Balance) Sub(o Balance) Delta {
	if b.rao >= o.rao {
		return Delta{mag: b.rao - o.rao}
	}
	return Delta{neg: true, mag: o.rao - b.rao}
}

// SaturatingSub returns b - o, clamped at zero.
func (b Balance) SaturatingSub(o Balance) Balance {
	if o.rao >= b.rao {
		return Zero
	}
	return Balance{rao: b.rao - o.rao}
}

// Cmp compares b and o and returns -1, 0 or +1.
func (b Balance) Cmp(o Balance) int {
	switch {
	case b.rao < o.rao:
		return -1
	case b.rao > o.rao:
		return 1
	default:
		return 0
	}
}

// LessThan reports whether b < o.
func (b Balance) LessThan(o Balance) bool { return b.rao < o.rao }

// GreaterThan reports whether b > o.
func (b Balance) GreaterThan(o Balance) bool { return b.rao > o.rao }

// String formats the balance in tao with all nine decimals, e.g. "τ1.500000000".
func (b Balance) String() string {
	return fmt.Sprintf("%s%d.%09d", Symbol, b.rao/RaoPerTao, b.rao%RaoPerTao)
}

// RaoString formats the balance as a plain rao count.
func (b Balance) RaoString() string {
	return fmt.Sprintf("%d", b.rao)
}

// Sum adds all balances, failing on overflow.
func Sum(bs ...Balance) (Balance, error) {
	total := Zero
	for _, b := range bs {
		var err error
		if total, err = total.Add(b); err != nil {
			return Zero, err
		}
	}
	return total, nil
}

// Delta is a signed difference between two balances.
type Delta struct {
	neg bool
	mag uint64
}

// Negative reports whether the delta is below zero.
func (d Delta) Negative() bool {
	return d.neg && d.mag != 0
}

// Magnitude returns the absolute value of the delta.
func (d Delta) Magnitude() Balance {
	return Balance{rao: d.mag}
}

// Balance returns the delta as a balance when it is non-negative.
func (d Delta) Balance() (Balance, bool) {
	if d.Negative() {
		return Zero, false
	}
	return Balance{rao: d.mag}, true
}

// String formats the delta with an explicit sign.
func (d Delta) String() string {
	sign := "+"
	if d.Negative() {
		sign = "-"
	}
	return sign + Balance{rao: d.mag}.String()
}
