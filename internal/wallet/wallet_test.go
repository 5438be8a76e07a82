package wallet

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jungoai/jungo-cli/pkg/ss58"
)

const aliceAddress = "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"

// staticPass returns a PassphraseFunc that always answers pass and counts
// how often it was asked.
func staticPass(pass string, calls *int) PassphraseFunc {
	return func(string) ([]byte, error) {
		*calls++
		return []byte(pass), nil
	}
}

func TestKeypair_DevURI(t *testing.T) {
	kp, err := Keypair("//Alice")
	if err != nil {
		t.Fatalf("Keypair() error: %v", err)
	}
	if kp.Address != aliceAddress {
		t.Errorf("Address = %s, want %s", kp.Address, aliceAddress)
	}
}

func TestWallet_CreateAndUnlockColdkey(t *testing.T) {
	var calls int
	w := New(t.TempDir(), "default", "default", staticPass("pw", &calls))

	addr, err := w.CreateColdkey("//Alice", []byte("pw"), fastKDF(), false)
	if err != nil {
		t.Fatalf("CreateColdkey() error: %v", err)
	}
	if addr != aliceAddress {
		t.Errorf("CreateColdkey() = %s, want %s", addr, aliceAddress)
	}

	pub, err := w.ColdkeyAddress()
	if err != nil {
		t.Fatalf("ColdkeyAddress() error: %v", err)
	}
	if pub != aliceAddress {
		t.Errorf("ColdkeyAddress() = %s", pub)
	}
	if calls != 0 {
		t.Errorf("ColdkeyAddress() prompted %d times", calls)
	}

	for i := 0; i < 2; i++ {
		kp, err := w.Coldkey()
		if err != nil {
			t.Fatalf("Coldkey() error: %v", err)
		}
		if kp.Address != aliceAddress {
			t.Errorf("Coldkey().Address = %s", kp.Address)
		}
	}
	if calls != 1 {
		t.Errorf("passphrase asked %d times, want 1", calls)
	}
}

func TestWallet_ColdkeyWrongPassphrase(t *testing.T) {
	dir := t.TempDir()
	var calls int
	if _, err := New(dir, "w", "h", nil).CreateColdkey(testMnemonic, []byte("right"), fastKDF(), false); err != nil {
		t.Fatal(err)
	}
	_, err := New(dir, "w", "h", staticPass("wrong", &calls)).Coldkey()
	if !errors.Is(err, ErrWrongPassphrase) {
		t.Fatalf("Coldkey() error = %v, want ErrWrongPassphrase", err)
	}
}

func TestWallet_ColdkeyNoPassphraseSource(t *testing.T) {
	dir := t.TempDir()
	w := New(dir, "w", "h", nil)
	if _, err := w.CreateColdkey(testMnemonic, []byte("pw"), fastKDF(), false); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Coldkey(); err == nil {
		t.Fatal("Coldkey() without a passphrase source should fail")
	}
}

func TestWallet_CreateColdkeyRequiresPassphrase(t *testing.T) {
	w := New(t.TempDir(), "w", "h", nil)
	if _, err := w.CreateColdkey(testMnemonic, nil, fastKDF(), false); err == nil {
		t.Fatal("unencrypted coldkey accepted")
	}
}

func TestWallet_NoOverwrite(t *testing.T) {
	w := New(t.TempDir(), "w", "h", nil)
	if _, err := w.CreateColdkey(testMnemonic, []byte("pw"), fastKDF(), false); err != nil {
		t.Fatal(err)
	}
	if _, err := w.CreateColdkey("//Bob", []byte("pw"), fastKDF(), false); err == nil {
		t.Fatal("CreateColdkey() overwrote an existing key")
	}
	if _, err := w.CreateColdkey("//Bob", []byte("pw"), fastKDF(), true); err != nil {
		t.Fatalf("CreateColdkey(overwrite) error: %v", err)
	}
}

func TestWallet_UnencryptedHotkey(t *testing.T) {
	var calls int
	w := New(t.TempDir(), "w", "miner", staticPass("pw", &calls))

	addr, err := w.CreateHotkey(testMnemonic, nil, fastKDF(), false)
	if err != nil {
		t.Fatalf("CreateHotkey() error: %v", err)
	}
	if !ss58.IsValidAddress(addr, ss58.DefaultFormat) {
		t.Fatalf("hotkey address %q is not SS58", addr)
	}

	got, err := w.HotkeyAddress()
	if err != nil || got != addr {
		t.Fatalf("HotkeyAddress() = %s, %v", got, err)
	}
	kp, err := w.Hotkey()
	if err != nil {
		t.Fatalf("Hotkey() error: %v", err)
	}
	if kp.Address != addr {
		t.Errorf("Hotkey().Address = %s, want %s", kp.Address, addr)
	}
	if calls != 0 {
		t.Errorf("unencrypted hotkey prompted %d times", calls)
	}
}

func TestWallet_MissingHotkey(t *testing.T) {
	w := New(t.TempDir(), "w", "nope", nil)
	if _, err := w.HotkeyAddress(); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("HotkeyAddress() error = %v, want ErrKeyNotFound", err)
	}
}

func TestWallet_FilePermissions(t *testing.T) {
	w := New(t.TempDir(), "w", "h", nil)
	if _, err := w.CreateColdkey(testMnemonic, []byte("pw"), fastKDF(), false); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(filepath.Join(w.Dir(), coldkeyFile))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("coldkey permissions = %o, want 600", perm)
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"beta", "alpha"} {
		if _, err := New(dir, name, "default", nil).CreateColdkey(testMnemonic, []byte("pw"), fastKDF(), false); err != nil {
			t.Fatal(err)
		}
	}
	os.MkdirAll(filepath.Join(dir, "empty"), 0700)

	names, err := List(dir)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(names) != 2 || names[0] != "alpha" || names[1] != "beta" {
		t.Errorf("List() = %v, want [alpha beta]", names)
	}

	names, err = List(filepath.Join(dir, "missing"))
	if err != nil || len(names) != 0 {
		t.Errorf("List(missing) = %v, %v", names, err)
	}
}

func TestWallet_Hotkeys(t *testing.T) {
	dir := t.TempDir()
	for _, hk := range []string{"h2", "h1"} {
		if _, err := New(dir, "w", hk, nil).CreateHotkey("//Alice", nil, fastKDF(), false); err != nil {
			t.Fatal(err)
		}
	}
	names, err := New(dir, "w", "", nil).Hotkeys()
	if err != nil {
		t.Fatalf("Hotkeys() error: %v", err)
	}
	if len(names) != 2 || names[0] != "h1" || names[1] != "h2" {
		t.Errorf("Hotkeys() = %v", names)
	}
}
