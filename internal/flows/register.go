package flows

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jungoai/jungo-cli/internal/chain"
	"github.com/jungoai/jungo-cli/pkg/balance"
)

// BurnedRegister registers the wallet's hotkey on netuid by recycling the
// current burn cost. It is a no-op when the hotkey is already registered.
func BurnedRegister(ctx context.Context, env Env, netuid uint16) error {
	coldkey, hotkey, err := env.addresses()
	if err != nil {
		return err
	}
	at, err := env.Session.ChainHead(ctx)
	if err != nil {
		return err
	}
	exists, err := env.Session.SubnetExists(ctx, netuid, at)
	if err != nil {
		return err
	}
	if !exists {
		env.Sink.Error("Subnet %d does not exist", netuid)
		return fmt.Errorf("%w: %d", ErrSubnetNotFound, netuid)
	}

	var (
		burn, bal  balance.Balance
		uid        uint16
		registered bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		burn, err = env.Session.Burn(gctx, netuid, at)
		return err
	})
	g.Go(func() (err error) {
		bal, err = env.Session.Balance(gctx, coldkey, at)
		return err
	})
	g.Go(func() (err error) {
		uid, registered, err = env.Session.UID(gctx, netuid, hotkey, at)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if registered {
		env.Sink.Success("Already Registered:\nuid: %d\nnetuid: %d\nhotkey: %s\ncoldkey: %s", uid, netuid, hotkey, coldkey)
		return nil
	}
	if bal.LessThan(burn) {
		env.Sink.Error("Insufficient balance %s to register neuron. Current recycle is %s", bal, burn)
		return fmt.Errorf("%w: have %s, need %s", ErrInsufficientBalance, bal, burn)
	}
	if err := env.confirm("Your balance is: %s\nThe cost to register by recycle is %s\nDo you want to continue?", bal, burn); err != nil {
		return err
	}

	hk, err := accountArg("hotkey", hotkey)
	if err != nil {
		return err
	}
	call, err := env.compose(ctx, "burned_register", u16Arg("netuid", netuid), hk)
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
	var after balance.Balance
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		after, err = env.Session.Balance(gctx, coldkey, head)
		return err
	})
	g.Go(func() (err error) {
		uid, registered, err = env.Session.UID(gctx, netuid, hotkey, head)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	env.Sink.Info("Balance:\n  %s → %s", bal, after)
	if !registered {
		env.Sink.Error("Unknown error. Neuron not found.")
		return fmt.Errorf("%w: hotkey %s not found on subnet %d", ErrUnknownOutcome, hotkey, netuid)
	}
	env.Sink.Success("Registered with uid %d", uid)
	return nil
}
