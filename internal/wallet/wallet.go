package wallet

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"

	"github.com/jungoai/jungo-cli/internal/log"
	"github.com/jungoai/jungo-cli/pkg/ss58"
)

const (
	coldkeyFile    = "coldkey"
	coldkeyPubFile = "coldkeypub.txt"
	hotkeysDir     = "hotkeys"
)

// PassphraseFunc asks the user for a passphrase.
type PassphraseFunc func(prompt string) ([]byte, error)

// Wallet is a handle on a wallet directory. Unlocked keys are cached for
// the lifetime of the handle so a flow prompts at most once per key.
type Wallet struct {
	path   string
	name   string
	hotkey string
	ask    PassphraseFunc

	mu      sync.Mutex
	coldkey *signature.KeyringPair
	hotPair *signature.KeyringPair
}

// New returns a handle on <path>/<name> using the named hotkey.
func New(path, name, hotkey string, ask PassphraseFunc) *Wallet {
	return &Wallet{path: path, name: name, hotkey: hotkey, ask: ask}
}

// Name returns the wallet name.
func (w *Wallet) Name() string { return w.name }

// HotkeyName returns the selected hotkey name.
func (w *Wallet) HotkeyName() string { return w.hotkey }

// Dir returns the wallet directory.
func (w *Wallet) Dir() string { return filepath.Join(w.path, w.name) }

func (w *Wallet) coldkeyPath() string    { return filepath.Join(w.Dir(), coldkeyFile) }
func (w *Wallet) coldkeyPubPath() string { return filepath.Join(w.Dir(), coldkeyPubFile) }
func (w *Wallet) hotkeyPath(name string) string {
	return filepath.Join(w.Dir(), hotkeysDir, name)
}

// Exists reports whether the wallet has a coldkey or a public coldkey file.
func (w *Wallet) Exists() bool {
	for _, p := range []string{w.coldkeyPubPath(), w.coldkeyPath()} {
		if _, err := os.Stat(p); err == nil {
			return true
		}
	}
	return false
}

// ColdkeyAddress returns the coldkey's SS58 address without unlocking it.
func (w *Wallet) ColdkeyAddress() (string, error) {
	data, err := os.ReadFile(w.coldkeyPubPath())
	if err == nil {
		addr := strings.TrimSpace(string(data))
		if !ss58.IsValidAddress(addr, ss58.DefaultFormat) {
			return "", fmt.Errorf("wallet %s: invalid address in %s", w.name, coldkeyPubFile)
		}
		return addr, nil
	}
	if !os.IsNotExist(err) {
		return "", fmt.Errorf("read %s: %w", coldkeyPubFile, err)
	}
	kf, err := readKeyFile(w.coldkeyPath())
	if err != nil {
		return "", fmt.Errorf("wallet %s: %w", w.name, err)
	}
	return kf.Address, nil
}

// HotkeyAddress returns the selected hotkey's SS58 address without
// unlocking it.
func (w *Wallet) HotkeyAddress() (string, error) {
	kf, err := readKeyFile(w.hotkeyPath(w.hotkey))
	if err != nil {
		return "", fmt.Errorf("wallet %s hotkey %s: %w", w.name, w.hotkey, err)
	}
	return kf.Address, nil
}

// Coldkey unlocks and returns the coldkey pair.
func (w *Wallet) Coldkey() (signature.KeyringPair, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.coldkey != nil {
		return *w.coldkey, nil
	}
	kf, err := readKeyFile(w.coldkeyPath())
	if err != nil {
		return signature.KeyringPair{}, fmt.Errorf("wallet %s: %w", w.name, err)
	}
	kp, err := kf.open(w.prompt(fmt.Sprintf("Enter password to unlock coldkey %q: ", w.name)))
	if err != nil {
		return signature.KeyringPair{}, fmt.Errorf("unlock coldkey: %w", err)
	}
	log.Wallet.Debug().Str("wallet", w.name).Str("address", kp.Address).Msg("coldkey unlocked")
	w.coldkey = &kp
	return kp, nil
}

// Hotkey unlocks and returns the selected hotkey pair.
func (w *Wallet) Hotkey() (signature.KeyringPair, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.hotPair != nil {
		return *w.hotPair, nil
	}
	kf, err := readKeyFile(w.hotkeyPath(w.hotkey))
	if err != nil {
		return signature.KeyringPair{}, fmt.Errorf("wallet %s hotkey %s: %w", w.name, w.hotkey, err)
	}
	kp, err := kf.open(w.prompt(fmt.Sprintf("Enter password to unlock hotkey %q: ", w.hotkey)))
	if err != nil {
		return signature.KeyringPair{}, fmt.Errorf("unlock hotkey: %w", err)
	}
	w.hotPair = &kp
	return kp, nil
}

func (w *Wallet) prompt(msg string) func() ([]byte, error) {
	return func() ([]byte, error) {
		if w.ask == nil {
			return nil, fmt.Errorf("key is encrypted and no passphrase source is available")
		}
		return w.ask(msg)
	}
}

// CreateColdkey writes an encrypted coldkey for the mnemonic (or secret
// URI) and its public address file. Returns the coldkey address.
func (w *Wallet) CreateColdkey(secret string, passphrase []byte, kdf KDFParams, overwrite bool) (string, error) {
	if passphrase == nil {
		return "", fmt.Errorf("coldkeys must be encrypted")
	}
	kf, err := newKeyFile(normalizeSecret(secret), passphrase, kdf)
	if err != nil {
		return "", err
	}
	if err := writeKeyFile(w.coldkeyPath(), kf, overwrite); err != nil {
		return "", err
	}
	if err := os.WriteFile(w.coldkeyPubPath(), []byte(kf.Address), 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", coldkeyPubFile, err)
	}
	log.Wallet.Info().Str("wallet", w.name).Str("address", kf.Address).Msg("coldkey created")
	return kf.Address, nil
}

// CreateHotkey writes the selected hotkey for the mnemonic (or secret URI).
// A nil passphrase stores the hotkey unencrypted.
func (w *Wallet) CreateHotkey(secret string, passphrase []byte, kdf KDFParams, overwrite bool) (string, error) {
	kf, err := newKeyFile(normalizeSecret(secret), passphrase, kdf)
	if err != nil {
		return "", err
	}
	if err := writeKeyFile(w.hotkeyPath(w.hotkey), kf, overwrite); err != nil {
		return "", err
	}
	log.Wallet.Info().Str("wallet", w.name).Str("hotkey", w.hotkey).Str("address", kf.Address).Msg("hotkey created")
	return kf.Address, nil
}

// Hotkeys returns the names of all hotkeys in the wallet.
func (w *Wallet) Hotkeys() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(w.Dir(), hotkeysDir))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read hotkeys: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// List returns the names of all wallets under path that have a coldkey.
func List(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read wallet dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if New(path, e.Name(), "", nil).Exists() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// normalizeSecret tidies mnemonics and leaves secret URIs untouched.
func normalizeSecret(secret string) string {
	if strings.HasPrefix(strings.TrimSpace(secret), "/") || strings.HasPrefix(secret, "0x") {
		return strings.TrimSpace(secret)
	}
	return NormalizeMnemonic(secret)
}
