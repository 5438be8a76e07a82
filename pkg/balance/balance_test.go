package balance

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"
)

func TestFromTao(t *testing.T) {
	tests := []struct {
		in   string
		want uint64
	}{
		{"1", 1_000_000_000},
		{"1.5", 1_500_000_000},
		{"τ0.25", 250_000_000},
		{"0.000000001", 1},
		{"0.0000000005", 1},
		{"0.0000000004", 0},
		{"  2.000000000 ", 2_000_000_000},
		{"18446744073.709551615", math.MaxUint64},
	}
	for _, tt := range tests {
		got, err := FromTao(tt.in)
		if err != nil {
			t.Fatalf("FromTao(%q) error: %v", tt.in, err)
		}
		if got.Rao() != tt.want {
			t.Errorf("FromTao(%q) = %d rao, want %d", tt.in, got.Rao(), tt.want)
		}
	}
}

func TestFromTao_Invalid(t *testing.T) {
	if _, err := FromTao(""); err == nil {
		t.Error("empty amount should fail")
	}
	if _, err := FromTao("abc"); err == nil {
		t.Error("non-numeric amount should fail")
	}
	if _, err := FromTao("-1"); !errors.Is(err, ErrNegative) {
		t.Errorf("negative amount error = %v, want ErrNegative", err)
	}
	if _, err := FromTao("18446744073.709551616"); !errors.Is(err, ErrOverflow) {
		t.Errorf("overflow error = %v, want ErrOverflow", err)
	}
}

func TestBalance_String(t *testing.T) {
	if got := FromRao(1_500_000_000).String(); got != "τ1.500000000" {
		t.Errorf("String() = %q", got)
	}
	if got := FromRao(1).String(); got != "τ0.000000001" {
		t.Errorf("String() = %q", got)
	}
	if got := FromRao(42).RaoString(); got != "42" {
		t.Errorf("RaoString() = %q", got)
	}
}

func TestBalance_AddOverflow(t *testing.T) {
	_, err := FromRao(math.MaxUint64).Add(FromRao(1))
	if !errors.Is(err, ErrOverflow) {
		t.Fatalf("Add() error = %v, want ErrOverflow", err)
	}
	if _, err := Sum(FromRao(1), FromRao(math.MaxUint64)); !errors.Is(err, ErrOverflow) {
		t.Fatalf("Sum() error = %v, want ErrOverflow", err)
	}
}

func TestBalance_Sub(t *testing.T) {
	d := FromRao(30).Sub(FromRao(100))
	if !d.Negative() {
		t.Fatal("30 - 100 should be negative")
	}
	if d.Magnitude().Rao() != 70 {
		t.Errorf("magnitude = %d, want 70", d.Magnitude().Rao())
	}
	if _, ok := d.Balance(); ok {
		t.Error("negative delta should not convert to a balance")
	}
	if got := d.String(); got != "-τ0.000000070" {
		t.Errorf("String() = %q", got)
	}

	d = FromRao(100).Sub(FromRao(100))
	if d.Negative() {
		t.Error("zero delta should not be negative")
	}
	if got := FromRao(5).SaturatingSub(FromRao(9)); !got.IsZero() {
		t.Errorf("SaturatingSub() = %v, want zero", got)
	}
}

func TestBalance_AddMatchesRaoSum(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		x := rapid.Uint64().Draw(t, "x")
		y := rapid.Uint64Range(0, math.MaxUint64-x).Draw(t, "y")

		sum, err := FromRao(x).Add(FromRao(y))
		if err != nil {
			t.Fatalf("Add() error: %v", err)
		}
		if sum != FromRao(x+y) {
			t.Fatalf("%d + %d = %d", x, y, sum.Rao())
		}
	})
}

func TestBalance_TaoRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rao := rapid.Uint64().Draw(t, "rao")
		b := FromRao(rao)

		back, err := FromDecimal(b.Tao())
		if err != nil {
			t.Fatalf("FromDecimal() error: %v", err)
		}
		if back.Rao() != rao {
			t.Fatalf("round trip %d -> %s -> %d", rao, b.Tao(), back.Rao())
		}
	})
}

func TestFromTao_RoundsToNearestRao(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		whole := rapid.Int64Range(0, 1_000_000).Draw(t, "whole")
		frac := rapid.Int64Range(0, 999_999_999_999).Draw(t, "frac")
		amount := decimal.New(whole, 0).Add(decimal.New(frac, -12))

		b, err := FromDecimal(amount)
		if err != nil {
			t.Fatalf("FromDecimal(%s) error: %v", amount, err)
		}
		want := amount.Shift(Decimals).Round(0).BigInt().Uint64()
		if b.Rao() != want {
			t.Fatalf("FromDecimal(%s) = %d, want %d", amount, b.Rao(), want)
		}
		diff := b.Tao().Sub(amount).Abs()
		if diff.GreaterThan(decimal.New(5, -10)) {
			t.Fatalf("FromDecimal(%s) off by %s tao", amount, diff)
		}
	})
}
