package flows

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jungoai/jungo-cli/internal/chain"
	"github.com/jungoai/jungo-cli/pkg/balance"
)

// StakeWithholding is kept back from every stake to keep the coldkey
// alive. Amounts at or below it are staked in full.
var StakeWithholding = balance.FromRao(1000)

// StakeRequest adds or removes stake on a delegate hotkey.
type StakeRequest struct {
	Delegate string
	// Amount is nil to stake the whole free balance (or unstake the whole
	// stake).
	Amount *balance.Balance
}

// StakeAmount applies the withholding to a requested stake.
func StakeAmount(requested balance.Balance) balance.Balance {
	if requested.GreaterThan(StakeWithholding) {
		return requested.SaturatingSub(StakeWithholding)
	}
	return requested
}

type stakeState struct {
	balance balance.Balance
	owner   string
	stake   balance.Balance
}

func readStake(ctx context.Context, s *chain.Session, delegate, coldkey string, at chain.BlockHash, withOwner bool) (stakeState, error) {
	var st stakeState
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		st.balance, err = s.Balance(gctx, coldkey, at)
		return err
	})
	g.Go(func() (err error) {
		st.stake, err = s.Stake(gctx, delegate, coldkey, at)
		return err
	})
	if withOwner {
		g.Go(func() (err error) {
			st.owner, _, err = s.HotkeyOwner(gctx, delegate, at)
			return err
		})
	}
	return st, g.Wait()
}

// DelegateStake stakes from the coldkey to a delegate.
func DelegateStake(ctx context.Context, env Env, req StakeRequest) error {
	return delegation(ctx, env, req, true)
}

// DelegateUnstake removes stake from a delegate back to the coldkey.
func DelegateUnstake(ctx context.Context, env Env, req StakeRequest) error {
	return delegation(ctx, env, req, false)
}

func delegation(ctx context.Context, env Env, req StakeRequest, add bool) error {
	if err := validAddress(req.Delegate); err != nil {
		env.Sink.Error("Invalid delegate address: %s", req.Delegate)
		return err
	}
	coldkey, err := env.coldkeyAddress()
	if err != nil {
		return err
	}

	at, err := env.Session.ChainHead(ctx)
	if err != nil {
		return err
	}
	isDelegate, err := env.Session.IsHotkeyDelegate(ctx, req.Delegate, at)
	if err != nil {
		return err
	}
	if !isDelegate {
		env.Sink.Error("Hotkey: %s is not a delegate.", req.Delegate)
		return fmt.Errorf("%w: %s", ErrNotDelegate, req.Delegate)
	}

	before, err := readStake(ctx, env.Session, req.Delegate, coldkey, at, true)
	if err != nil {
		return err
	}

	verb, function, argName := "delegate", "add_stake", "amount_staked"
	var amount balance.Balance
	if add {
		amount = before.balance
		if req.Amount != nil {
			amount = *req.Amount
		}
		amount = StakeAmount(amount)
		if amount.GreaterThan(before.balance) {
			env.Sink.Error("Not enough balance:\n  balance: %s\n  amount: %s\n  coldkey: %s", before.balance, amount, env.Wallet.Name())
			return fmt.Errorf("%w: have %s, need %s", ErrInsufficientBalance, before.balance, amount)
		}
	} else {
		verb, function, argName = "undelegate", "remove_stake", "amount_unstaked"
		amount = before.stake
		if req.Amount != nil {
			amount = *req.Amount
		}
		if amount.GreaterThan(before.stake) {
			env.Sink.Error("Not enough stake:\n  stake: %s\n  amount: %s\n  coldkey: %s", before.stake, amount, env.Wallet.Name())
			return fmt.Errorf("%w: have %s, need %s", ErrInsufficientStake, before.stake, amount)
		}
	}

	if err := env.confirm("Do you want to %s:\n  amount: %s\n  to: %s\n  owner: %s", verb, amount, req.Delegate, before.owner); err != nil {
		return err
	}

	hotkey, err := accountArg("hotkey", req.Delegate)
	if err != nil {
		return err
	}
	call, err := env.compose(ctx, function, hotkey, u64Arg(argName, amount.Rao()))
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

	head, err := env.Session.ChainHead(ctx)
	if err != nil {
		return err
	}
	after, err := readStake(ctx, env.Session, req.Delegate, coldkey, head, false)
	if err != nil {
		return err
	}
	env.Sink.Info("Balance:\n  %s → %s\nStake:\n  %s → %s", before.balance, after.balance, before.stake, after.stake)
	return nil
}
