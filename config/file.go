package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. JCLI_NETWORK.
const EnvPrefix = "JCLI"

// Keys lists every settable configuration key.
var Keys = []string{
	"network",
	"chain_endpoint",
	"wallet_path",
	"wallet_name",
	"wallet_hotkey",
	"use_cache",
	"cache_dir",
	"cache_ttl",
	"delegates_url",
	"submit.wait_for_inclusion",
	"submit.wait_for_finalization",
	"submit.timeout",
	"log.level",
	"log.json",
	"log.file",
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("network", d.Network)
	v.SetDefault("chain_endpoint", d.ChainEndpoint)
	v.SetDefault("wallet_path", d.WalletPath)
	v.SetDefault("wallet_name", d.WalletName)
	v.SetDefault("wallet_hotkey", d.WalletHotkey)
	v.SetDefault("use_cache", d.UseCache)
	v.SetDefault("cache_dir", d.CacheDir)
	v.SetDefault("cache_ttl", d.CacheTTL)
	v.SetDefault("delegates_url", d.DelegatesURL)
	v.SetDefault("submit.wait_for_inclusion", d.Submit.WaitForInclusion)
	v.SetDefault("submit.wait_for_finalization", d.Submit.WaitForFinalization)
	v.SetDefault("submit.timeout", d.Submit.Timeout)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.json", d.Log.JSON)
	v.SetDefault("log.file", d.Log.File)
	return v
}

// Load reads the configuration file at path, layered over defaults and
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	v := newViper(path)
	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("stat config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	cfg.WalletPath = ExpandPath(cfg.WalletPath)
	cfg.CacheDir = ExpandPath(cfg.CacheDir)
	cfg.Log.File = ExpandPath(cfg.Log.File)
	return &cfg, nil
}

// Set persists a single key to the config file at path, creating the
// file and its directory if needed.
func Set(path, key, value string) error {
	if !knownKey(key) {
		return fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(Keys, ", "))
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}
	v.Set(key, value)

	// Validate the merged result before replacing the real file.
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	tmp := filepath.Join(filepath.Dir(path), ".config.tmp.yml")
	if err := v.WriteConfigAs(tmp); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	cfg, err := Load(tmp)
	if err == nil {
		err = Validate(cfg)
	}
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return os.Rename(tmp, path)
}

// Settings returns the effective configuration as sorted key/value pairs.
func Settings(cfg *Config) [][2]string {
	m := map[string]string{
		"network":                      cfg.Network,
		"chain_endpoint":               cfg.ChainEndpoint,
		"wallet_path":                  cfg.WalletPath,
		"wallet_name":                  cfg.WalletName,
		"wallet_hotkey":                cfg.WalletHotkey,
		"use_cache":                    fmt.Sprint(cfg.UseCache),
		"cache_dir":                    cfg.CacheDir,
		"cache_ttl":                    cfg.CacheTTL.String(),
		"delegates_url":                cfg.DelegatesURL,
		"submit.wait_for_inclusion":    fmt.Sprint(cfg.Submit.WaitForInclusion),
		"submit.wait_for_finalization": fmt.Sprint(cfg.Submit.WaitForFinalization),
		"submit.timeout":               cfg.Submit.Timeout.String(),
		"log.level":                    cfg.Log.Level,
		"log.json":                     fmt.Sprint(cfg.Log.JSON),
		"log.file":                     cfg.Log.File,
	}
	out := make([][2]string, 0, len(m))
	for k, v := range m {
		out = append(out, [2]string{k, v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

func knownKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}
