package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Network != Finney {
		t.Errorf("Network = %q, want %q", cfg.Network, Finney)
	}
	if cfg.WalletName != DefaultWalletName || cfg.WalletHotkey != DefaultHotkey {
		t.Errorf("wallet = %s/%s, want default/default", cfg.WalletName, cfg.WalletHotkey)
	}
	if !cfg.Submit.WaitForInclusion {
		t.Error("WaitForInclusion should default to true")
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate(defaults) error: %v", err)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	data := `network: local
wallet_name: miner
wallet_hotkey: hk1
use_cache: false
submit:
  wait_for_finalization: true
  timeout: 30s
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Network != Local || cfg.Endpoint() != "ws://127.0.0.1:9944" {
		t.Errorf("network = %q endpoint = %q", cfg.Network, cfg.Endpoint())
	}
	if cfg.WalletName != "miner" || cfg.WalletHotkey != "hk1" {
		t.Errorf("wallet = %s/%s", cfg.WalletName, cfg.WalletHotkey)
	}
	if cfg.UseCache {
		t.Error("UseCache = true, want false")
	}
	if !cfg.Submit.WaitForFinalization || cfg.Submit.Timeout != 30*time.Second {
		t.Errorf("submit = %+v", cfg.Submit)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %q", cfg.Log.Level)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("JCLI_NETWORK", "devnet")
	t.Setenv("JCLI_LOG_LEVEL", "error")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.yml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Network != Devnet {
		t.Errorf("Network = %q, want devnet", cfg.Network)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("log.level = %q, want error", cfg.Log.Level)
	}
}

func TestSet_PersistsAndValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yml")

	if err := Set(path, "network", "local"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := Set(path, "wallet_name", "alice"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Network != Local || cfg.WalletName != "alice" {
		t.Errorf("cfg = %s/%s", cfg.Network, cfg.WalletName)
	}

	if err := Set(path, "network", "mainnet"); err == nil {
		t.Error("Set() accepted an unknown network")
	}
	cfg, _ = Load(path)
	if cfg.Network != Local {
		t.Errorf("rejected Set() changed the file: network = %q", cfg.Network)
	}

	if err := Set(path, "colour", "red"); err == nil || !strings.Contains(err.Error(), "unknown config key") {
		t.Errorf("Set(unknown key) error = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"unknown network", func(c *Config) { c.Network = "mainnet" }, true},
		{"custom endpoint", func(c *Config) { c.Network = "custom"; c.ChainEndpoint = "wss://node.example:443" }, false},
		{"http endpoint", func(c *Config) { c.ChainEndpoint = "http://node.example" }, true},
		{"endpoint without host", func(c *Config) { c.ChainEndpoint = "ws://" }, true},
		{"empty wallet name", func(c *Config) { c.WalletName = "" }, true},
		{"wallet name with slash", func(c *Config) { c.WalletName = "../x" }, true},
		{"negative timeout", func(c *Config) { c.Submit.Timeout = -time.Second }, true},
		{"bad delegates url", func(c *Config) { c.DelegatesURL = "ftp://x" }, true},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyFlags(t *testing.T) {
	cfg := Default()
	cfg.ChainEndpoint = "wss://from-file:443"

	var f Flags
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.Register(fs)
	if err := fs.Parse([]string{"--network", "local", "--wallet-name", "bob", "--no-cache", "--wait-for-finalization"}); err != nil {
		t.Fatal(err)
	}
	ApplyFlags(cfg, fs, &f)

	if cfg.Network != Local || cfg.ChainEndpoint != "" {
		t.Errorf("network = %q endpoint = %q", cfg.Network, cfg.ChainEndpoint)
	}
	if cfg.WalletName != "bob" {
		t.Errorf("WalletName = %q", cfg.WalletName)
	}
	if cfg.WalletHotkey != DefaultHotkey {
		t.Errorf("unset flag changed WalletHotkey to %q", cfg.WalletHotkey)
	}
	if cfg.UseCache {
		t.Error("--no-cache did not disable the cache")
	}
	if !cfg.Submit.WaitForFinalization {
		t.Error("--wait-for-finalization not applied")
	}
}

func TestEndpointAndExplorer(t *testing.T) {
	cfg := Default()
	cfg.Network = Local
	if cfg.ExplorerURL() == "" {
		t.Error("local network should have an explorer link")
	}
	cfg.ChainEndpoint = "ws://10.0.0.1:9944"
	if cfg.Endpoint() != "ws://10.0.0.1:9944" {
		t.Errorf("Endpoint() = %q", cfg.Endpoint())
	}
}
