package wallet

import (
	"strings"
	"testing"
)

// testMnemonic is the well-known development phrase behind //Alice.
const testMnemonic = "bottom drive obey lake curtain smoke basket hold race lonely fit walk"

func TestGenerateMnemonic_WordCounts(t *testing.T) {
	for _, n := range []int{12, 15, 18, 21, 24} {
		m, err := GenerateMnemonic(n)
		if err != nil {
			t.Fatalf("GenerateMnemonic(%d) error: %v", n, err)
		}
		if got := len(strings.Fields(m)); got != n {
			t.Errorf("GenerateMnemonic(%d) has %d words", n, got)
		}
		if !ValidateMnemonic(m) {
			t.Errorf("GenerateMnemonic(%d) produced an invalid mnemonic", n)
		}
	}
}

func TestGenerateMnemonic_BadWordCount(t *testing.T) {
	for _, n := range []int{0, 11, 13, 27} {
		if _, err := GenerateMnemonic(n); err == nil {
			t.Errorf("GenerateMnemonic(%d) should fail", n)
		}
	}
}

func TestValidateMnemonic(t *testing.T) {
	tests := []struct {
		name     string
		mnemonic string
		valid    bool
	}{
		{"dev phrase", testMnemonic, true},
		{"extra whitespace and case", "  Bottom drive  obey lake curtain smoke basket hold race lonely fit WALK ", true},
		{"empty", "", false},
		{"not words", "not a valid mnemonic phrase at all", false},
		{"bad checksum", "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateMnemonic(tt.mnemonic); got != tt.valid {
				t.Errorf("ValidateMnemonic() = %v, want %v", got, tt.valid)
			}
		})
	}
}
