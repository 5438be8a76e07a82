package wallet

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"

	"github.com/jungoai/jungo-cli/pkg/ss58"
)

// ErrKeyNotFound is returned when a coldkey or hotkey file is missing.
var ErrKeyNotFound = errors.New("key not found")

// keyFile is the on-disk JSON format of a single key.
type keyFile struct {
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	Address   string    `json:"ss58_address"`
	PublicKey string    `json:"public_key"` // hex
	Encrypted bool      `json:"encrypted"`
	// Secret is the mnemonic or secret URI, sealed when Encrypted.
	Secret []byte `json:"secret"`
}

// Keypair derives the sr25519 keypair for a mnemonic or secret URI
// (e.g. "//Alice").
func Keypair(secret string) (signature.KeyringPair, error) {
	kp, err := signature.KeyringPairFromSecret(secret, ss58.DefaultFormat)
	if err != nil {
		return signature.KeyringPair{}, fmt.Errorf("derive keypair: %w", err)
	}
	return kp, nil
}

// newKeyFile derives the keypair for secret and builds its keyfile. A nil
// passphrase stores the secret unencrypted.
func newKeyFile(secret string, passphrase []byte, kdf KDFParams) (*keyFile, error) {
	kp, err := Keypair(secret)
	if err != nil {
		return nil, err
	}
	kf := &keyFile{
		Version:   1,
		CreatedAt: time.Now().UTC(),
		Address:   kp.Address,
		PublicKey: hex.EncodeToString(kp.PublicKey),
		Secret:    []byte(secret),
	}
	if passphrase != nil {
		sealed, err := Seal([]byte(secret), passphrase, kdf)
		if err != nil {
			return nil, fmt.Errorf("encrypt key: %w", err)
		}
		kf.Secret = sealed
		kf.Encrypted = true
	}
	return kf, nil
}

// open returns the keypair stored in kf, asking for a passphrase when the
// secret is sealed.
func (kf *keyFile) open(ask func() ([]byte, error)) (signature.KeyringPair, error) {
	secret := kf.Secret
	if kf.Encrypted {
		pass, err := ask()
		if err != nil {
			return signature.KeyringPair{}, fmt.Errorf("read passphrase: %w", err)
		}
		secret, err = Open(kf.Secret, pass)
		wipe(pass)
		if err != nil {
			return signature.KeyringPair{}, err
		}
		defer wipe(secret)
	}
	kp, err := Keypair(string(secret))
	if err != nil {
		return signature.KeyringPair{}, err
	}
	if kp.Address != kf.Address {
		return signature.KeyringPair{}, fmt.Errorf("keyfile address %s does not match its secret", kf.Address)
	}
	return kp, nil
}

func writeKeyFile(path string, kf *keyFile, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create key dir: %w", err)
	}
	data, err := json.MarshalIndent(kf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal key: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write key: %w", err)
	}
	return nil
}

func readKeyFile(path string) (*keyFile, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read key: %w", err)
	}
	var kf keyFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("parse key %s: %w", path, err)
	}
	if kf.Version != 1 {
		return nil, fmt.Errorf("unsupported key version: %d", kf.Version)
	}
	if !ss58.IsValidAddress(kf.Address, ss58.DefaultFormat) {
		return nil, fmt.Errorf("key %s has an invalid address %q", path, kf.Address)
	}
	return &kf, nil
}
