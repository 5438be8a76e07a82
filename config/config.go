// Package config handles jcli configuration.
//
// Settings are layered: built-in defaults, then the YAML config file
// (~/.jungoai/config.yml), then JCLI_* environment variables, then
// command-line flags.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Network names understood by the client.
const (
	Finney = "finney"
	Test   = "test"
	Devnet = "devnet"
	Local  = "local"
)

// Networks maps each known network to its default websocket endpoint.
var Networks = map[string]string{
	Finney: "wss://devnet-rpc.jungoai.xyz",
	Test:   "wss://devnet-rpc.jungoai.xyz",
	Devnet: "wss://devnet-rpc.jungoai.xyz",
	Local:  "ws://127.0.0.1:9944",
}

// Explorers maps networks to a block explorer URL template. %s is the
// block hash. Networks without an explorer are absent.
var Explorers = map[string]string{
	Finney: "https://polkadot.js.org/apps/?rpc=wss://devnet-rpc.jungoai.xyz#/explorer/query/%s",
	Devnet: "https://polkadot.js.org/apps/?rpc=wss://devnet-rpc.jungoai.xyz#/explorer/query/%s",
	Local:  "https://polkadot.js.org/apps/?rpc=ws://127.0.0.1:9944#/explorer/query/%s",
}

// DelegatesURL is the default location of the public delegate directory.
const DelegatesURL = "https://raw.githubusercontent.com/opentensor/bittensor-delegates/main/public/delegates.json"

// Config holds the client configuration.
type Config struct {
	Network       string `mapstructure:"network"`
	ChainEndpoint string `mapstructure:"chain_endpoint"`

	WalletPath   string `mapstructure:"wallet_path"`
	WalletName   string `mapstructure:"wallet_name"`
	WalletHotkey string `mapstructure:"wallet_hotkey"`

	UseCache     bool          `mapstructure:"use_cache"`
	CacheDir     string        `mapstructure:"cache_dir"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	DelegatesURL string        `mapstructure:"delegates_url"`

	Submit SubmitConfig `mapstructure:"submit"`
	Log    LogConfig    `mapstructure:"log"`
}

// SubmitConfig controls how long the client waits after submitting an
// extrinsic.
type SubmitConfig struct {
	WaitForInclusion    bool          `mapstructure:"wait_for_inclusion"`
	WaitForFinalization bool          `mapstructure:"wait_for_finalization"`
	Timeout             time.Duration `mapstructure:"timeout"`
}

// LogConfig holds diagnostic logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
	File  string `mapstructure:"file"`
}

// DefaultDataDir returns the client's base directory (~/.jungoai).
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".jungoai"
	}
	return filepath.Join(home, ".jungoai")
}

// DefaultConfigFile returns the default config file path.
func DefaultConfigFile() string {
	return filepath.Join(DefaultDataDir(), "config.yml")
}

// Endpoint returns the websocket endpoint to dial. An explicit
// chain_endpoint wins over the network's default.
func (c *Config) Endpoint() string {
	if c.ChainEndpoint != "" {
		return c.ChainEndpoint
	}
	return Networks[c.Network]
}

// ExplorerURL returns the explorer link for a block on the configured
// network, or "" when the network has none.
func (c *Config) ExplorerURL() string {
	return Explorers[c.Network]
}

// ExpandPath resolves a leading ~ to the user's home directory.
func ExpandPath(p string) string {
	if p == "~" || len(p) > 1 && p[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, p[1:])
	}
	return p
}
