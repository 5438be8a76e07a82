package config

import (
	"path/filepath"
	"time"
)

// Default wallet and subnet settings.
const (
	DefaultWalletName = "default"
	DefaultHotkey     = "default"
	DefaultNetuid     = 1
)

// Default returns the built-in configuration.
func Default() *Config {
	base := DefaultDataDir()
	return &Config{
		Network:      Finney,
		WalletPath:   filepath.Join(base, "wallets"),
		WalletName:   DefaultWalletName,
		WalletHotkey: DefaultHotkey,
		UseCache:     true,
		CacheDir:     filepath.Join(base, "cache"),
		CacheTTL:     time.Hour,
		DelegatesURL: DelegatesURL,
		Submit: SubmitConfig{
			WaitForInclusion:    true,
			WaitForFinalization: false,
			Timeout:             2 * time.Minute,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}
