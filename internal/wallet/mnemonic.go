// Package wallet manages coldkeys and hotkeys on disk.
//
// A wallet is a directory <path>/<name> holding an encrypted coldkey,
// its public address in coldkeypub.txt, and any number of hotkeys under
// hotkeys/. Keys are sr25519 pairs derived from BIP-39 mnemonics.
package wallet

import (
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

// DefaultWords is the mnemonic length used for new keys.
const DefaultWords = 12

// GenerateMnemonic creates a new BIP-39 mnemonic with the given number of
// words (12, 15, 18, 21 or 24).
func GenerateMnemonic(words int) (string, error) {
	if words%3 != 0 || words < 12 || words > 24 {
		return "", fmt.Errorf("mnemonic must have 12, 15, 18, 21 or 24 words, got %d", words)
	}
	entropy, err := bip39.NewEntropy(words / 3 * 32)
	if err != nil {
		return "", fmt.Errorf("generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("generate mnemonic: %w", err)
	}
	return mnemonic, nil
}

// NormalizeMnemonic collapses whitespace and lowercases the words.
func NormalizeMnemonic(mnemonic string) string {
	return strings.ToLower(strings.Join(strings.Fields(mnemonic), " "))
}

// ValidateMnemonic checks if a mnemonic is valid per BIP-39
// (correct word count, valid words, valid checksum).
func ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(NormalizeMnemonic(mnemonic))
}
