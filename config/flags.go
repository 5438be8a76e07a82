package config

import (
	"github.com/spf13/pflag"
)

// Flags holds the global command-line overrides.
type Flags struct {
	Config   string
	Network  string
	Endpoint string

	WalletPath   string
	WalletName   string
	WalletHotkey string

	NoCache bool

	WaitForInclusion    bool
	WaitForFinalization bool

	LogLevel string
	LogJSON  bool
	LogFile  string
}

// Register binds the flags to fs.
func (f *Flags) Register(fs *pflag.FlagSet) {
	fs.StringVar(&f.Config, "config", DefaultConfigFile(), "Config file")
	fs.StringVar(&f.Network, "network", "", "Network: finney, test, devnet, local")
	fs.StringVar(&f.Endpoint, "chain", "", "Chain endpoint (ws:// or wss://), overrides --network")

	fs.StringVar(&f.WalletPath, "wallet-path", "", "Directory holding wallets")
	fs.StringVar(&f.WalletName, "wallet-name", "", "Wallet (coldkey) name")
	fs.StringVar(&f.WalletHotkey, "wallet-hotkey", "", "Hotkey name")

	fs.BoolVar(&f.NoCache, "no-cache", false, "Do not use the local delegate cache")

	fs.BoolVar(&f.WaitForInclusion, "wait-for-inclusion", true, "Wait until the extrinsic is included in a block")
	fs.BoolVar(&f.WaitForFinalization, "wait-for-finalization", false, "Wait until the extrinsic is finalized")

	fs.StringVar(&f.LogLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Log in JSON format")
	fs.StringVar(&f.LogFile, "log-file", "", "Also write logs to this file")
}

// ApplyFlags overrides cfg with every flag the user set explicitly.
func ApplyFlags(cfg *Config, fs *pflag.FlagSet, f *Flags) {
	changed := func(name string) bool {
		fl := fs.Lookup(name)
		return fl != nil && fl.Changed
	}

	if changed("network") {
		cfg.Network = f.Network
		// A network switch drops an endpoint that came from the file.
		if !changed("chain") {
			cfg.ChainEndpoint = ""
		}
	}
	if changed("chain") {
		cfg.ChainEndpoint = f.Endpoint
	}
	if changed("wallet-path") {
		cfg.WalletPath = ExpandPath(f.WalletPath)
	}
	if changed("wallet-name") {
		cfg.WalletName = f.WalletName
	}
	if changed("wallet-hotkey") {
		cfg.WalletHotkey = f.WalletHotkey
	}
	if changed("no-cache") {
		cfg.UseCache = !f.NoCache
	}
	if changed("wait-for-inclusion") {
		cfg.Submit.WaitForInclusion = f.WaitForInclusion
	}
	if changed("wait-for-finalization") {
		cfg.Submit.WaitForFinalization = f.WaitForFinalization
	}
	if changed("log-level") {
		cfg.Log.Level = f.LogLevel
	}
	if changed("log-json") {
		cfg.Log.JSON = f.LogJSON
	}
	if changed("log-file") {
		cfg.Log.File = ExpandPath(f.LogFile)
	}
}
