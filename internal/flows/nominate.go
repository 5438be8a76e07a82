package flows

import (
	"context"
	"fmt"

	"github.com/jungoai/jungo-cli/internal/chain"
)

// Nominate makes the wallet's hotkey a delegate.
func Nominate(ctx context.Context, env Env) error {
	hotkey, err := env.hotkeyAddress()
	if err != nil {
		return err
	}
	isDelegate, err := env.Session.IsHotkeyDelegate(ctx, hotkey, chain.BlockHash{})
	if err != nil {
		return err
	}
	if isDelegate {
		env.Sink.Error("Aborting: Hotkey %s is already a delegate.", hotkey)
		return fmt.Errorf("%w: %s", ErrAlreadyDelegate, hotkey)
	}
	if err := env.confirm("Become a delegate with hotkey %s?", hotkey); err != nil {
		return err
	}

	hk, err := accountArg("hotkey", hotkey)
	if err != nil {
		return err
	}
	call, err := env.compose(ctx, "become_delegate", hk)
	if err != nil {
		return err
	}
	res, err := env.submit(ctx, call)
	if err != nil {
		env.Sink.Error("Could not become a delegate on %s", env.Network)
		return err
	}
	if res.Outcome == chain.NotAwaited {
		return nil
	}

	isDelegate, err = env.Session.IsHotkeyDelegate(ctx, hotkey, chain.BlockHash{})
	if err != nil {
		return err
	}
	if !isDelegate {
		env.Sink.Error("Could not become a delegate on %s", env.Network)
		return fmt.Errorf("%w: %s is not a delegate", ErrUnknownOutcome, hotkey)
	}
	env.Sink.Success("Successfully became a delegate on %s", env.Network)
	return nil
}
