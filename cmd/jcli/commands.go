package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jungoai/jungo-cli/config"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:               "jcli",
		Short:             "Command-line client for the subtensor chain",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	pf := root.PersistentFlags()
	a.flags.Register(pf)
	pf.BoolVarP(&a.noPrompt, "no-prompt", "y", false, "Do not ask for confirmation")
	pf.BoolVar(&a.noColor, "no-color", false, "Disable coloured output")

	root.AddCommand(
		newWalletCmd(a),
		newTransferCmd(a),
		newStakeCmd(a),
		newRootNetCmd(a),
		newSubnetCmd(a),
		newConfigCmd(a),
	)
	return root
}

// ── Config ──────────────────────────────────────────────────────────────

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the configuration file",
		// Config commands must work even when the current file is invalid.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Persist a configuration value",
		Long:  "Persist a configuration value. Known keys: " + fmt.Sprint(config.Keys),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Set(a.flags.Config, args[0], args[1]); err != nil {
				return err
			}
			a.console.Success("%s = %s (%s)", args[0], args[1], a.flags.Config)
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.console.Info("# %s", a.flags.Config)
			for _, kv := range config.Settings(a.cfg) {
				a.console.Info("%s: %s", kv[0], kv[1])
			}
			return nil
		},
	}

	purge := &cobra.Command{
		Use:   "clear-cache",
		Short: "Drop the cached delegate directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.clearCache(); err != nil {
				return err
			}
			a.console.Success("Cache cleared")
			return nil
		},
	}

	cmd.AddCommand(set, show, purge)
	return cmd
}
