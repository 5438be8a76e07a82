package main

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/jungoai/jungo-cli/config"
	"github.com/jungoai/jungo-cli/internal/chain"
	"github.com/jungoai/jungo-cli/internal/flows"
	"github.com/jungoai/jungo-cli/internal/registry"
	"github.com/jungoai/jungo-cli/internal/ui"
	"github.com/jungoai/jungo-cli/internal/views"
	"github.com/jungoai/jungo-cli/internal/wallet"
)

func newRootNetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "root",
		Short: "Root network, senate and delegates",
	}
	cmd.AddCommand(
		newRootRegisterCmd(a),
		newSetTakeCmd(a),
		newNominateCmd(a),
		newVoteCmd(a),
		newSetWeightsCmd(a),
		newAdjustWeightCmd(a, "boost", "Raise one subnet's root weight", flows.BoostWeight),
		newAdjustWeightCmd(a, "slash", "Lower one subnet's root weight", flows.SlashWeight),
		newGetWeightsCmd(a),
		newRootListCmd(a),
		newSenateCmd(a),
		newProposalsCmd(a),
		newDelegatesCmd(a),
		newMyDelegatesCmd(a),
	)
	return cmd
}

func newSubnetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subnets",
		Short: "Subnet registration",
	}
	var netuid uint16
	register := &cobra.Command{
		Use:   "register",
		Short: "Register the hotkey on a subnet by burning τ",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.flow(cmd.Context(), func(env flows.Env) error {
				return flows.BurnedRegister(cmd.Context(), env, netuid)
			})
		},
	}
	register.Flags().Uint16Var(&netuid, "netuid", config.DefaultNetuid, "Subnet to register on")
	cmd.AddCommand(register)
	return cmd
}

// ── State-changing ──────────────────────────────────────────────────────

func newRootRegisterCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Register the hotkey on the root network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.flow(cmd.Context(), func(env flows.Env) error {
				return flows.BurnedRegister(cmd.Context(), env, chain.RootNetuid)
			})
		},
	}
}

func newSetTakeCmd(a *app) *cobra.Command {
	var take float64
	cmd := &cobra.Command{
		Use:   "set-take",
		Short: "Set the delegate take (0 to 0.18)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.flow(cmd.Context(), func(env flows.Env) error {
				return flows.SetTake(cmd.Context(), env, take)
			})
		},
	}
	cmd.Flags().Float64Var(&take, "take", 0, "New take as a fraction, e.g. 0.1")
	cmd.MarkFlagRequired("take")
	return cmd
}

func newNominateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "nominate",
		Short: "Become a delegate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.flow(cmd.Context(), func(env flows.Env) error {
				return flows.Nominate(cmd.Context(), env)
			})
		},
	}
}

func newVoteCmd(a *app) *cobra.Command {
	var proposal string
	var aye, nay bool
	cmd := &cobra.Command{
		Use:   "vote",
		Short: "Vote on a senate proposal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := flows.VoteRequest{Proposal: proposal}
			switch {
			case aye && nay:
				return errors.New("--aye and --nay are mutually exclusive")
			case aye || nay:
				req.Approve = &aye
			case a.noPrompt:
				return errors.New("specify --aye or --nay with --no-prompt")
			}
			return a.flow(cmd.Context(), func(env flows.Env) error {
				return flows.SenateVote(cmd.Context(), env, req)
			})
		},
	}
	cmd.Flags().StringVar(&proposal, "proposal", "", "Proposal hash")
	cmd.Flags().BoolVar(&aye, "aye", false, "Vote in favour")
	cmd.Flags().BoolVar(&nay, "nay", false, "Vote against")
	return cmd
}

func toNetuids(vs []uint) ([]uint16, error) {
	out := make([]uint16, len(vs))
	for i, v := range vs {
		if v > math.MaxUint16 {
			return nil, fmt.Errorf("netuid %d out of range", v)
		}
		out[i] = uint16(v)
	}
	return out, nil
}

func newSetWeightsCmd(a *app) *cobra.Command {
	var netuids []uint
	var weights []float64
	cmd := &cobra.Command{
		Use:     "weights",
		Short:   "Set the hotkey's root weights",
		Example: "  jcli root weights --netuids 1,2,3 --weights 0.5,0.3,0.2",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ids, err := toNetuids(netuids)
			if err != nil {
				return err
			}
			return a.flow(cmd.Context(), func(env flows.Env) error {
				return flows.SetRootWeights(cmd.Context(), env, flows.WeightsRequest{Netuids: ids, Weights: weights})
			})
		},
	}
	cmd.Flags().UintSliceVar(&netuids, "netuids", nil, "Subnet ids")
	cmd.Flags().Float64SliceVar(&weights, "weights", nil, "Weights, one per netuid")
	cmd.MarkFlagRequired("netuids")
	cmd.MarkFlagRequired("weights")
	return cmd
}

type adjustFlow func(ctx context.Context, env flows.Env, req flows.AdjustRequest) error

func newAdjustWeightCmd(a *app, use, short string, run adjustFlow) *cobra.Command {
	var netuid uint16
	var amount float64
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.flow(cmd.Context(), func(env flows.Env) error {
				return run(cmd.Context(), env, flows.AdjustRequest{Netuid: netuid, Amount: amount})
			})
		},
	}
	cmd.Flags().Uint16Var(&netuid, "netuid", 0, "Subnet whose weight changes")
	cmd.Flags().Float64Var(&amount, "amount", 0, "Weight change")
	cmd.MarkFlagRequired("netuid")
	cmd.MarkFlagRequired("amount")
	return cmd
}

// ── Read views ──────────────────────────────────────────────────────────

// view runs fn on a session with the delegate directory at hand.
func (a *app) view(cmd *cobra.Command, fn func(*chain.Session, registry.Source) error) error {
	dir, release := a.directory()
	defer release()
	return a.withSession(cmd.Context(), func(s *chain.Session) error {
		return fn(s, dir)
	})
}

func newGetWeightsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get-weights",
		Short: "Show the root weight matrix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd.Context(), func(s *chain.Session) error {
				t, err := views.RootWeights(cmd.Context(), s)
				if err != nil {
					return err
				}
				ui.Weights(a.console.Out(), t)
				return nil
			})
		},
	}
}

func newRootListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the root network's neurons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.view(cmd, func(s *chain.Session, dir registry.Source) error {
				rows, err := views.RootList(cmd.Context(), s, dir)
				if errors.Is(err, views.ErrNoNeurons) {
					a.console.Error("No neurons exist on the root network")
					return nil
				}
				if err != nil {
					return err
				}
				ui.RootList(a.console.Out(), rows)
				return nil
			})
		},
	}
}

func newSenateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "senate",
		Short: "List the senate members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.view(cmd, func(s *chain.Session, dir registry.Source) error {
				rows, err := views.Senate(cmd.Context(), s, dir)
				if err != nil {
					return err
				}
				ui.Senate(a.console.Out(), rows)
				return nil
			})
		},
	}
}

func newProposalsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "proposals",
		Short: "List the open senate proposals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.view(cmd, func(s *chain.Session, dir registry.Source) error {
				v, err := views.Proposals(cmd.Context(), s, dir)
				if err != nil {
					return err
				}
				ui.Proposals(a.console.Out(), v)
				return nil
			})
		},
	}
}

func (a *app) warnAll(warnings []string) {
	for _, w := range warnings {
		a.console.Warn("%s", w)
	}
}

func newDelegatesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delegates",
		Short: "List the delegates with their stake and returns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.view(cmd, func(s *chain.Session, dir registry.Source) error {
				v, err := views.Delegates(cmd.Context(), s, dir)
				if err != nil {
					return err
				}
				a.warnAll(v.Warnings)
				ui.Delegates(a.console.Out(), v)
				return nil
			})
		},
	}
}

func newMyDelegatesCmd(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "my-delegates",
		Short: "Show the delegations of the wallet's coldkey",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names := []string{a.cfg.WalletName}
			if all {
				var err error
				if names, err = wallet.List(a.cfg.WalletPath); err != nil {
					return err
				}
			}
			refs := make([]views.WalletRef, 0, len(names))
			for _, name := range names {
				w := a.walletNamed(name)
				if !w.Exists() {
					return errWalletMissing(w)
				}
				addr, err := w.ColdkeyAddress()
				if err != nil {
					return err
				}
				refs = append(refs, views.WalletRef{Name: name, Coldkey: addr})
			}
			return a.view(cmd, func(s *chain.Session, dir registry.Source) error {
				v, err := views.MyDelegates(cmd.Context(), s, dir, refs)
				if err != nil {
					return err
				}
				a.warnAll(v.Warnings)
				ui.MyDelegates(a.console.Out(), v)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&all, "all-wallets", "a", false, "Include every wallet under the wallet path")
	return cmd
}
