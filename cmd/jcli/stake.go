package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/jungoai/jungo-cli/internal/flows"
)

func newTransferCmd(a *app) *cobra.Command {
	var dest, amount string
	var keepAlive bool
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Send τ from the wallet's coldkey",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			amt, err := parseAmount(amount)
			if err != nil {
				return err
			}
			return a.flow(cmd.Context(), func(env flows.Env) error {
				return flows.Transfer(cmd.Context(), env, flows.TransferRequest{
					Dest:      dest,
					Amount:    amt,
					KeepAlive: keepAlive,
				})
			})
		},
	}
	cmd.Flags().StringVar(&dest, "dest", "", "Destination SS58 address or hex public key")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount in τ")
	cmd.Flags().BoolVar(&keepAlive, "keep-alive", true, "Keep the existential deposit on the sender")
	cmd.MarkFlagRequired("dest")
	cmd.MarkFlagRequired("amount")
	return cmd
}

func newStakeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stake",
		Short: "Delegate stake to, or undelegate from, a delegate hotkey",
	}
	cmd.AddCommand(
		newStakeMoveCmd(a, "add", "Delegate stake from the coldkey", flows.DelegateStake),
		newStakeMoveCmd(a, "remove", "Undelegate stake back to the coldkey", flows.DelegateUnstake),
	)
	return cmd
}

type stakeFlow func(ctx context.Context, env flows.Env, req flows.StakeRequest) error

func newStakeMoveCmd(a *app, use, short string, run stakeFlow) *cobra.Command {
	var delegate, amount string
	var all bool
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := flows.StakeRequest{Delegate: delegate}
			switch {
			case all && amount != "":
				return errors.New("--amount and --all are mutually exclusive")
			case all:
			case amount == "":
				return errors.New("specify --amount or --all")
			default:
				amt, err := parseAmount(amount)
				if err != nil {
					return err
				}
				req.Amount = &amt
			}
			return a.flow(cmd.Context(), func(env flows.Env) error {
				return run(cmd.Context(), env, req)
			})
		},
	}
	cmd.Flags().StringVar(&delegate, "delegate", "", "Delegate hotkey SS58 address")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount in τ")
	cmd.Flags().BoolVar(&all, "all", false, "Move the whole balance (or the whole stake)")
	cmd.MarkFlagRequired("delegate")
	return cmd
}
