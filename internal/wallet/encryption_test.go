package wallet

import (
	"bytes"
	"errors"
	"testing"
)

// fastKDF returns low-cost Argon2 params for fast tests.
func fastKDF() KDFParams {
	return KDFParams{Memory: 64, Iterations: 1, Parallelism: 1}
}

func TestSealOpen_Roundtrip(t *testing.T) {
	secret := []byte(testMnemonic)
	sealed, err := Seal(secret, []byte("hunter2"), fastKDF())
	if err != nil {
		t.Fatalf("Seal() error: %v", err)
	}
	if bytes.Contains(sealed, secret) {
		t.Fatal("sealed output contains the plaintext")
	}

	got, err := Open(sealed, []byte("hunter2"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if !bytes.Equal(got, secret) {
		t.Errorf("Open() = %q, want %q", got, secret)
	}
}

func TestOpen_WrongPassphrase(t *testing.T) {
	sealed, _ := Seal([]byte("secret"), []byte("right"), fastKDF())
	if _, err := Open(sealed, []byte("wrong")); !errors.Is(err, ErrWrongPassphrase) {
		t.Fatalf("Open() error = %v, want ErrWrongPassphrase", err)
	}
}

func TestOpen_TamperedHeader(t *testing.T) {
	sealed, _ := Seal([]byte("secret"), []byte("pw"), fastKDF())
	// Bump the stored iteration count; the header is authenticated.
	sealed[1+saltSize+4]++
	if _, err := Open(sealed, []byte("pw")); err == nil {
		t.Fatal("Open() accepted a tampered header")
	}
}

func TestOpen_Truncated(t *testing.T) {
	if _, err := Open(make([]byte, headerSize), []byte("pw")); err == nil {
		t.Fatal("Open() accepted truncated data")
	}
}

func TestOpen_UnknownVersion(t *testing.T) {
	sealed, _ := Seal([]byte("secret"), []byte("pw"), fastKDF())
	sealed[0] = 9
	if _, err := Open(sealed, []byte("pw")); err == nil {
		t.Fatal("Open() accepted an unknown version")
	}
}

func TestSeal_FreshSaltAndNonce(t *testing.T) {
	a, _ := Seal([]byte("same"), []byte("pw"), fastKDF())
	b, _ := Seal([]byte("same"), []byte("pw"), fastKDF())
	if bytes.Equal(a, b) {
		t.Fatal("two seals of the same secret are identical")
	}
}
