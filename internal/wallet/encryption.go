package wallet

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Sealed secret layout:
//
//	version(1) | salt(16) | memory(4) | iterations(4) | parallelism(1) | nonce(24) | ciphertext
const (
	sealVersion = 1
	saltSize    = 16
	headerSize  = 1 + saltSize + 4 + 4 + 1
)

// ErrWrongPassphrase is returned when a keyfile cannot be opened with the
// given passphrase.
var ErrWrongPassphrase = errors.New("wrong passphrase")

// KDFParams holds the Argon2id cost parameters stored with each keyfile.
type KDFParams struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
}

// DefaultKDF returns the Argon2id parameters used for new keyfiles.
func DefaultKDF() KDFParams {
	return KDFParams{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 4,
	}
}

func deriveKey(passphrase, salt []byte, p KDFParams) []byte {
	return argon2.IDKey(passphrase, salt, p.Iterations, p.Memory, p.Parallelism, chacha20poly1305.KeySize)
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Seal encrypts secret under passphrase with Argon2id and
// XChaCha20-Poly1305.
func Seal(secret, passphrase []byte, p KDFParams) ([]byte, error) {
	buf := make([]byte, headerSize+chacha20poly1305.NonceSizeX)
	buf[0] = sealVersion
	salt := buf[1 : 1+saltSize]
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	binary.LittleEndian.PutUint32(buf[1+saltSize:], p.Memory)
	binary.LittleEndian.PutUint32(buf[5+saltSize:], p.Iterations)
	buf[9+saltSize] = p.Parallelism
	nonce := buf[headerSize:]
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	key := deriveKey(passphrase, salt, p)
	defer wipe(key)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	// The header is authenticated so KDF parameters cannot be downgraded.
	return aead.Seal(buf, nonce, secret, buf[:headerSize]), nil
}

// Open decrypts a secret produced by Seal.
func Open(sealed, passphrase []byte) ([]byte, error) {
	if len(sealed) < headerSize+chacha20poly1305.NonceSizeX+chacha20poly1305.Overhead {
		return nil, fmt.Errorf("sealed secret too short: %d bytes", len(sealed))
	}
	if sealed[0] != sealVersion {
		return nil, fmt.Errorf("unsupported keyfile encryption version %d", sealed[0])
	}
	salt := sealed[1 : 1+saltSize]
	p := KDFParams{
		Memory:      binary.LittleEndian.Uint32(sealed[1+saltSize:]),
		Iterations:  binary.LittleEndian.Uint32(sealed[5+saltSize:]),
		Parallelism: sealed[9+saltSize],
	}
	if p.Iterations == 0 || p.Parallelism == 0 {
		return nil, fmt.Errorf("corrupt keyfile header")
	}
	nonce := sealed[headerSize : headerSize+chacha20poly1305.NonceSizeX]
	ciphertext := sealed[headerSize+chacha20poly1305.NonceSizeX:]

	key := deriveKey(passphrase, salt, p)
	defer wipe(key)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	plain, err := aead.Open(nil, nonce, ciphertext, sealed[:headerSize])
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return plain, nil
}
