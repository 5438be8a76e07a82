package main

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jungoai/jungo-cli/config"
	"github.com/jungoai/jungo-cli/internal/chain"
	"github.com/jungoai/jungo-cli/internal/flows"
	"github.com/jungoai/jungo-cli/internal/log"
	"github.com/jungoai/jungo-cli/internal/registry"
	"github.com/jungoai/jungo-cli/internal/storage"
	"github.com/jungoai/jungo-cli/internal/ui"
	"github.com/jungoai/jungo-cli/internal/wallet"
	"github.com/jungoai/jungo-cli/pkg/balance"
)

// registryPrefix namespaces the delegate directory inside the cache.
var registryPrefix = []byte("registry/")

// app is the state shared by every command.
type app struct {
	flags    config.Flags
	noPrompt bool
	noColor  bool

	cfg     *config.Config
	console *ui.Console
	prompt  *ui.Prompter
	dial    chain.Dialer

	// kdf is used when a command encrypts a new key.
	kdf wallet.KDFParams
}

func newApp(in io.Reader, out, errw io.Writer, dial chain.Dialer) *app {
	return &app{
		console: ui.NewConsole(out, errw),
		prompt:  ui.NewPrompter(in, errw),
		dial:    dial,
		kdf:     wallet.DefaultKDF(),
	}
}

// load reads the config file and applies the command-line overrides.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.flags.Config)
	if err != nil {
		return err
	}
	config.ApplyFlags(cfg, cmd.Flags(), &a.flags)
	if a.noColor {
		ui.DisableColor()
	}
	a.cfg = cfg
	return nil
}

// setup is the pre-run of every chain and wallet command.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := a.load(cmd); err != nil {
		return err
	}
	if err := config.Validate(a.cfg); err != nil {
		return err
	}
	if err := log.Init(a.cfg.Log.Level, a.cfg.Log.JSON, a.cfg.Log.File); err != nil {
		return err
	}
	log.CLI.Debug().
		Str("network", a.cfg.Network).
		Str("endpoint", a.cfg.Endpoint()).
		Str("wallet", a.cfg.WalletName).
		Msg("config loaded")
	return nil
}

// wallet opens the configured wallet.
func (a *app) wallet() *wallet.Wallet {
	return a.walletNamed(a.cfg.WalletName)
}

func (a *app) walletNamed(name string) *wallet.Wallet {
	return wallet.New(a.cfg.WalletPath, name, a.cfg.WalletHotkey, a.prompt.Password)
}

// withSession connects to the configured endpoint for the duration of fn.
func (a *app) withSession(ctx context.Context, fn func(*chain.Session) error) error {
	a.console.Status("Syncing with chain: %s ...", a.cfg.Endpoint())
	done := log.Timed(log.CLI, "session")
	defer done()
	return chain.Use(ctx, a.dial, a.cfg.Endpoint(), fn)
}

// env builds the environment of a state-changing flow.
func (a *app) env(s *chain.Session, keys flows.Keys) flows.Env {
	var prompt flows.Prompter
	if !a.noPrompt {
		prompt = a.prompt
	}
	return flows.Env{
		Session: s,
		Wallet:  keys,
		Sink:    a.console,
		Prompt:  prompt,
		Wait: chain.WaitPolicy{
			Inclusion:    a.cfg.Submit.WaitForInclusion,
			Finalization: a.cfg.Submit.WaitForFinalization,
			Timeout:      a.cfg.Submit.Timeout,
		},
		Network:  a.cfg.Network,
		Explorer: a.cfg.ExplorerURL(),
	}
}

// flow runs a state-changing flow against the configured wallet.
func (a *app) flow(ctx context.Context, fn func(flows.Env) error) error {
	w := a.wallet()
	if !w.Exists() {
		return errWalletMissing(w)
	}
	return a.withSession(ctx, func(s *chain.Session) error {
		return fn(a.env(s, w))
	})
}

func (a *app) cachePath() string {
	return filepath.Join(a.cfg.CacheDir, "badger")
}

// clearCache removes the registry namespace from the cache.
func (a *app) clearCache() error {
	db, err := storage.NewBadger(a.cachePath())
	if err != nil {
		return err
	}
	defer db.Close()
	return storage.NewPrefixDB(db, registryPrefix).DeleteAll()
}

// directory returns the delegate directory, cached on disk when enabled.
// The returned func releases the cache.
func (a *app) directory() (registry.Source, func()) {
	if !a.cfg.UseCache {
		return registry.New(a.cfg.DelegatesURL), func() {}
	}
	db, err := storage.NewBadger(a.cachePath())
	if err != nil {
		log.Cache.Warn().Err(err).Msg("cache unavailable, fetching directly")
		return registry.New(a.cfg.DelegatesURL), func() {}
	}
	dir := registry.New(a.cfg.DelegatesURL,
		registry.WithCache(storage.NewPrefixDB(db, registryPrefix), a.cfg.CacheTTL))
	return dir, func() {
		if err := db.Close(); err != nil {
			log.Cache.Warn().Err(err).Msg("close cache")
		}
	}
}

// parseAmount parses a τ amount flag.
func parseAmount(s string) (balance.Balance, error) {
	return balance.FromTao(strings.TrimSpace(s))
}
