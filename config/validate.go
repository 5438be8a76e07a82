package config

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/jungoai/jungo-cli/internal/log"
)

// Validate checks the configuration for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if _, ok := Networks[cfg.Network]; !ok && cfg.ChainEndpoint == "" {
		return fmt.Errorf("network must be one of %s (or set chain_endpoint)", strings.Join(NetworkNames(), ", "))
	}
	if cfg.ChainEndpoint != "" {
		u, err := url.Parse(cfg.ChainEndpoint)
		if err != nil {
			return fmt.Errorf("chain_endpoint: %w", err)
		}
		if u.Scheme != "ws" && u.Scheme != "wss" {
			return fmt.Errorf("chain_endpoint must be a ws:// or wss:// URL, got %q", cfg.ChainEndpoint)
		}
		if u.Host == "" {
			return fmt.Errorf("chain_endpoint has no host: %q", cfg.ChainEndpoint)
		}
	}
	if cfg.WalletPath == "" {
		return fmt.Errorf("wallet_path must not be empty")
	}
	if cfg.WalletName == "" {
		return fmt.Errorf("wallet_name must not be empty")
	}
	if strings.ContainsAny(cfg.WalletName, `/\`) || strings.ContainsAny(cfg.WalletHotkey, `/\`) {
		return fmt.Errorf("wallet and hotkey names must not contain path separators")
	}
	if cfg.Submit.Timeout < 0 {
		return fmt.Errorf("submit.timeout must not be negative")
	}
	if cfg.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl must not be negative")
	}
	if cfg.DelegatesURL != "" {
		u, err := url.Parse(cfg.DelegatesURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("delegates_url must be an http(s) URL, got %q", cfg.DelegatesURL)
		}
	}
	if !log.ValidLevel(cfg.Log.Level) {
		return fmt.Errorf("log.level must be trace, debug, info, warn, or error")
	}
	return nil
}

// NetworkNames returns the known network names in sorted order.
func NetworkNames() []string {
	names := make([]string, 0, len(Networks))
	for n := range Networks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
