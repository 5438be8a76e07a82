// Package ss58 encodes, decodes and validates SS58 account addresses.
package ss58

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
)

const (
	// DefaultFormat is the network prefix used by the chain (generic Substrate).
	DefaultFormat uint16 = 42
	// PublicKeySize is the length of an sr25519/ed25519 public key.
	PublicKeySize = 32

	checksumSize = 2
	maxFormat    = 16383
)

var checksumPrefix = []byte("SS58PRE")

var (
	ErrInvalidChecksum = errors.New("ss58: invalid checksum")
	ErrInvalidLength   = errors.New("ss58: invalid length")
	ErrInvalidFormat   = errors.New("ss58: invalid format")
)

// Encode returns the SS58 address of a 32-byte public key under format.
func Encode(pub []byte, format uint16) (string, error) {
	if len(pub) != PublicKeySize {
		return "", fmt.Errorf("%w: public key is %d bytes", ErrInvalidLength, len(pub))
	}
	if format > maxFormat || format == 46 || format == 47 {
		return "", fmt.Errorf("%w: %d", ErrInvalidFormat, format)
	}

	var buf []byte
	if format < 64 {
		buf = append(buf, byte(format))
	} else {
		buf = append(buf,
			byte((format&0x00fc)>>2)|0x40,
			byte(format>>8)|byte((format&0x0003)<<6),
		)
	}
	buf = append(buf, pub...)
	sum := checksum(buf)
	buf = append(buf, sum[:checksumSize]...)
	return base58.Encode(buf), nil
}

// MustEncode is like Encode but panics on error. Only use with keys that
// are known to be 32 bytes.
func MustEncode(pub []byte) string {
	s, err := Encode(pub, DefaultFormat)
	if err != nil {
		panic(err)
	}
	return s
}

// Decode parses an SS58 address into its public key and network format.
func Decode(addr string) ([]byte, uint16, error) {
	data, err := base58.Decode(addr)
	if err != nil {
		return nil, 0, fmt.Errorf("ss58: base58: %w", err)
	}
	if len(data) < 2 {
		return nil, 0, ErrInvalidLength
	}

	var (
		format    uint16
		prefixLen int
	)
	switch {
	case data[0] < 64:
		format, prefixLen = uint16(data[0]), 1
	case data[0] < 128:
		lower := (data[0] << 2) | (data[1] >> 6)
		upper := data[1] & 0x3f
		format, prefixLen = uint16(lower)|uint16(upper)<<8, 2
	default:
		return nil, 0, ErrInvalidFormat
	}

	if len(data) != prefixLen+PublicKeySize+checksumSize {
		return nil, 0, fmt.Errorf("%w: %d bytes", ErrInvalidLength, len(data))
	}

	body := data[:prefixLen+PublicKeySize]
	sum := checksum(body)
	if !bytes.Equal(sum[:checksumSize], data[len(body):]) {
		return nil, 0, ErrInvalidChecksum
	}

	pub := make([]byte, PublicKeySize)
	copy(pub, data[prefixLen:])
	return pub, format, nil
}

// PublicKey resolves an SS58 address or a hex public key to the raw
// 32-byte key.
func PublicKey(addr string) ([]byte, error) {
	if strings.HasPrefix(addr, "0x") || len(addr) == 2*PublicKeySize {
		pub, err := hex.DecodeString(strings.TrimPrefix(addr, "0x"))
		if err != nil {
			return nil, fmt.Errorf("ss58: invalid hex public key: %w", err)
		}
		if !IsValidPublicKey(pub) {
			return nil, fmt.Errorf("%w: public key is %d bytes", ErrInvalidLength, len(pub))
		}
		return pub, nil
	}
	pub, _, err := Decode(addr)
	return pub, err
}

// IsValidAddress reports whether addr is a well-formed SS58 address for
// the given network format.
func IsValidAddress(addr string, format uint16) bool {
	_, got, err := Decode(addr)
	return err == nil && got == format
}

// IsValidPublicKey reports whether pub has the length of an account key.
func IsValidPublicKey(pub []byte) bool {
	return len(pub) == PublicKeySize
}

// IsValidHexPublicKey reports whether s is a hex-encoded 32-byte public
// key, with or without a 0x prefix.
func IsValidHexPublicKey(s string) bool {
	switch len(s) {
	case 2 * PublicKeySize:
	case 2*PublicKeySize + 2:
		if !strings.HasPrefix(s, "0x") {
			return false
		}
		s = s[2:]
	default:
		return false
	}
	pub, err := hex.DecodeString(s)
	return err == nil && IsValidPublicKey(pub)
}

// IsValidDestination reports whether addr can receive funds: either an
// SS58 address in the chain's format or a hex public key.
func IsValidDestination(addr string) bool {
	if strings.HasPrefix(addr, "0x") || len(addr) == 2*PublicKeySize {
		return IsValidHexPublicKey(addr)
	}
	return IsValidAddress(addr, DefaultFormat)
}

func checksum(body []byte) [blake2b.Size]byte {
	data := make([]byte, 0, len(checksumPrefix)+len(body))
	data = append(data, checksumPrefix...)
	data = append(data, body...)
	return blake2b.Sum512(data)
}
