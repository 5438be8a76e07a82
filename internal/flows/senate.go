package flows

import (
	"context"
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"

	"github.com/jungoai/jungo-cli/internal/chain"
)

// VoteRequest votes on a senate proposal.
type VoteRequest struct {
	Proposal string
	// Approve is nil to ask the user.
	Approve *bool
}

// SenateVote casts the hotkey's vote on a proposal.
func SenateVote(ctx context.Context, env Env, req VoteRequest) error {
	if req.Proposal == "" {
		env.Sink.Error(`Aborting: Proposal hash not specified. View all proposals with the "proposals" command.`)
		return fmt.Errorf("%w: no hash given", ErrProposalNotFound)
	}
	proposal, err := chain.HashFromHex(req.Proposal)
	if err != nil {
		env.Sink.Error("Failed: %v", err)
		return fmt.Errorf("%w: %v", ErrProposalNotFound, err)
	}
	hotkey, err := env.hotkeyAddress()
	if err != nil {
		return err
	}

	at, err := env.Session.ChainHead(ctx)
	if err != nil {
		return err
	}
	member, err := env.Session.IsSenateMember(ctx, hotkey, at)
	if err != nil {
		return err
	}
	if !member {
		env.Sink.Error("Aborting: Hotkey %s isn't a senate member.", hotkey)
		return fmt.Errorf("%w: %s", ErrNotSenateMember, hotkey)
	}
	votes, ok, err := env.Session.ProposalVotes(ctx, proposal, at)
	if err != nil {
		return err
	}
	if !ok {
		env.Sink.Error("Failed: Proposal not found.")
		return fmt.Errorf("%w: %s", ErrProposalNotFound, proposal)
	}

	var approve bool
	switch {
	case req.Approve != nil:
		approve = *req.Approve
	case env.Prompt != nil:
		if approve, err = env.Prompt.Confirm("Desired vote for proposal (aye?)"); err != nil {
			return fmt.Errorf("prompt: %w", err)
		}
	default:
		return fmt.Errorf("no vote given for proposal %s", proposal)
	}
	if err := env.confirm("Cast a vote of %t?", approve); err != nil {
		return err
	}

	hk, err := accountArg("hotkey", hotkey)
	if err != nil {
		return err
	}
	call, err := env.compose(ctx, "vote",
		hk,
		chain.Arg{Name: "proposal", Value: types.H256(proposal)},
		chain.Arg{Name: "index", Value: types.NewUCompactFromUInt(uint64(votes.Index))},
		chain.Arg{Name: "approve", Value: types.NewBool(approve)},
	)
	if err != nil {
		return err
	}
	res, err := env.submit(ctx, call)
	if err != nil {
		return err
	}
	if res.Outcome == chain.NotAwaited {
		return nil
	}

	after, ok, err := env.Session.ProposalVotes(ctx, proposal, chain.BlockHash{})
	if err != nil {
		return err
	}
	if _, voted := after.HasVoted(hotkey); !ok || !voted {
		env.Sink.Error("Unknown error. Couldn't find vote.")
		return fmt.Errorf("%w: vote of %s on %s", ErrUnknownOutcome, hotkey, proposal)
	}
	env.Sink.Success("Vote cast.")
	return nil
}
