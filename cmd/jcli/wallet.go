package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jungoai/jungo-cli/internal/chain"
	"github.com/jungoai/jungo-cli/internal/ui"
	"github.com/jungoai/jungo-cli/internal/wallet"
)

func errWalletMissing(w *wallet.Wallet) error {
	return fmt.Errorf("wallet %q not found in %s (create one with \"jcli wallet create\")", w.Name(), w.Dir())
}

func newWalletCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Create, restore and inspect wallets",
	}
	cmd.AddCommand(
		newWalletCreateCmd(a),
		newWalletRegenCmd(a, "regen-coldkey", "Restore a coldkey from its mnemonic", true),
		newWalletRegenCmd(a, "regen-hotkey", "Restore a hotkey from its mnemonic", false),
		newWalletNewHotkeyCmd(a),
		newWalletListCmd(a),
		newWalletBalanceCmd(a),
	)
	return cmd
}

func newWalletCreateCmd(a *app) *cobra.Command {
	var words int
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new coldkey and hotkey",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := a.wallet()
			cold, err := wallet.GenerateMnemonic(words)
			if err != nil {
				return fmt.Errorf("generate mnemonic: %w", err)
			}
			a.console.Info("Coldkey mnemonic (write this down!):")
			a.console.Info("  %s\n", cold)

			passphrase, err := a.prompt.NewPassword("Enter a passphrase for the coldkey: ")
			if err != nil {
				return err
			}
			coldAddr, err := w.CreateColdkey(cold, passphrase, a.kdf, overwrite)
			if err != nil {
				return err
			}

			hot, err := wallet.GenerateMnemonic(words)
			if err != nil {
				return fmt.Errorf("generate mnemonic: %w", err)
			}
			hotAddr, err := w.CreateHotkey(hot, nil, a.kdf, overwrite)
			if err != nil {
				return err
			}
			a.console.Info("Hotkey mnemonic (write this down!):")
			a.console.Info("  %s\n", hot)

			a.console.Success("Wallet created: %s", w.Name())
			a.console.Info("Coldkey: %s", coldAddr)
			a.console.Info("Hotkey %s: %s", w.HotkeyName(), hotAddr)
			return nil
		},
	}
	cmd.Flags().IntVar(&words, "words", wallet.DefaultWords, "Mnemonic length: 12, 15, 18, 21 or 24")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing keys")
	return cmd
}

// readSecret takes the mnemonic (or secret URI) from the flag or asks.
func (a *app) readSecret(flag string) (string, error) {
	secret := strings.TrimSpace(flag)
	if secret == "" {
		var err error
		secret, err = a.prompt.Ask("Enter mnemonic, seed or secret URI: ")
		if err != nil {
			return "", err
		}
	}
	if secret == "" {
		return "", errors.New("no mnemonic given")
	}
	if !strings.HasPrefix(secret, "/") && !strings.HasPrefix(secret, "0x") && !wallet.ValidateMnemonic(secret) {
		return "", errors.New("invalid mnemonic")
	}
	return secret, nil
}

func newWalletRegenCmd(a *app, use, short string, coldkey bool) *cobra.Command {
	var mnemonic string
	var overwrite, encrypt bool
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := a.wallet()
			secret, err := a.readSecret(mnemonic)
			if err != nil {
				return err
			}
			var passphrase []byte
			if coldkey || encrypt {
				if passphrase, err = a.prompt.NewPassword("Enter a passphrase: "); err != nil {
					return err
				}
			}
			if coldkey {
				addr, err := w.CreateColdkey(secret, passphrase, a.kdf, overwrite)
				if err != nil {
					return err
				}
				a.console.Success("Coldkey restored: %s", addr)
				return nil
			}
			addr, err := w.CreateHotkey(secret, passphrase, a.kdf, overwrite)
			if err != nil {
				return err
			}
			a.console.Success("Hotkey %s restored: %s", w.HotkeyName(), addr)
			return nil
		},
	}
	cmd.Flags().StringVar(&mnemonic, "mnemonic", "", "Mnemonic, hex seed or secret URI")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing key")
	if !coldkey {
		cmd.Flags().BoolVar(&encrypt, "encrypt", false, "Encrypt the hotkey with a passphrase")
	}
	return cmd
}

func newWalletNewHotkeyCmd(a *app) *cobra.Command {
	var words int
	var overwrite, encrypt bool
	cmd := &cobra.Command{
		Use:   "new-hotkey",
		Short: "Create a hotkey in an existing wallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := a.wallet()
			if !w.Exists() {
				return errWalletMissing(w)
			}
			secret, err := wallet.GenerateMnemonic(words)
			if err != nil {
				return fmt.Errorf("generate mnemonic: %w", err)
			}
			var passphrase []byte
			if encrypt {
				if passphrase, err = a.prompt.NewPassword("Enter a passphrase for the hotkey: "); err != nil {
					return err
				}
			}
			addr, err := w.CreateHotkey(secret, passphrase, a.kdf, overwrite)
			if err != nil {
				return err
			}
			a.console.Info("Hotkey mnemonic (write this down!):")
			a.console.Info("  %s\n", secret)
			a.console.Success("Hotkey %s created: %s", w.HotkeyName(), addr)
			return nil
		},
	}
	cmd.Flags().IntVar(&words, "words", wallet.DefaultWords, "Mnemonic length")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing hotkey")
	cmd.Flags().BoolVar(&encrypt, "encrypt", false, "Encrypt the hotkey with a passphrase")
	return cmd
}

func newWalletListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List wallets and their hotkeys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, err := wallet.List(a.cfg.WalletPath)
			if err != nil {
				return err
			}
			rows := make([]ui.WalletRow, 0, len(names))
			for _, name := range names {
				w := a.walletNamed(name)
				row := ui.WalletRow{Name: name}
				if row.Coldkey, err = w.ColdkeyAddress(); err != nil {
					row.Coldkey = "?"
				}
				if row.Hotkeys, err = w.Hotkeys(); err != nil {
					return err
				}
				rows = append(rows, row)
			}
			ui.Wallets(a.console.Out(), a.cfg.WalletPath, rows)
			return nil
		},
	}
}

func newWalletBalanceCmd(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the free balance of the wallet's coldkey",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names := []string{a.cfg.WalletName}
			if all {
				var err error
				if names, err = wallet.List(a.cfg.WalletPath); err != nil {
					return err
				}
			}
			var rows []ui.BalanceRow
			var addrs []string
			for _, name := range names {
				w := a.walletNamed(name)
				if !w.Exists() {
					return errWalletMissing(w)
				}
				addr, err := w.ColdkeyAddress()
				if err != nil {
					return err
				}
				rows = append(rows, ui.BalanceRow{Wallet: name, Coldkey: addr})
				addrs = append(addrs, addr)
			}
			err := a.withSession(cmd.Context(), func(s *chain.Session) error {
				at, err := s.ChainHead(cmd.Context())
				if err != nil {
					return err
				}
				free, err := s.Balances(cmd.Context(), addrs, at)
				if err != nil {
					return err
				}
				for i := range rows {
					rows[i].Free = free[rows[i].Coldkey]
				}
				return nil
			})
			if err != nil {
				return err
			}
			ui.Balances(a.console.Out(), rows)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Show every wallet under the wallet path")
	return cmd
}
