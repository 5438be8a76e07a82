package flows

import (
	"context"
	"fmt"
	"math"

	"github.com/jungoai/jungo-cli/internal/chain"
)

// MaxTake is the highest delegate take the client will submit.
const MaxTake = 0.18

// TakeToU16 converts a take fraction to the chain's u16 scale. The
// fraction is truncated, matching takes already set on chain: 0.10 is 6553.
func TakeToU16(take float64) uint16 {
	return uint16(take * chain.MaxTakeU16)
}

// TakeDirection is the extrinsic a take change needs.
type TakeDirection int

const (
	TakeUnchanged TakeDirection = iota
	TakeIncrease
	TakeDecrease
)

// DecideTake compares the requested and current take in u16 units.
func DecideTake(current, requested uint16) TakeDirection {
	switch {
	case requested == current:
		return TakeUnchanged
	case requested > current:
		return TakeIncrease
	default:
		return TakeDecrease
	}
}

// SetTake changes the delegate take of the wallet's hotkey.
func SetTake(ctx context.Context, env Env, take float64) error {
	if take < 0 || math.IsNaN(take) {
		env.Sink.Error("ERROR: Take value must not be negative")
		return fmt.Errorf("%w: %v", ErrInvalidTake, take)
	}
	if take > MaxTake {
		env.Sink.Error("ERROR: Take value should not exceed 18%%")
		return fmt.Errorf("%w: %v", ErrTakeTooHigh, take)
	}
	hotkey, err := env.hotkeyAddress()
	if err != nil {
		return err
	}
	at, err := env.Session.ChainHead(ctx)
	if err != nil {
		return err
	}
	current, isDelegate, err := env.Session.DelegateTake(ctx, hotkey, at)
	if err != nil {
		return err
	}
	if !isDelegate {
		env.Sink.Error("Aborting: Hotkey %s is NOT a delegate.", hotkey)
		return fmt.Errorf("%w: %s", ErrNotDelegate, hotkey)
	}

	requested := TakeToU16(take)
	function := "increase_take"
	switch DecideTake(current, requested) {
	case TakeUnchanged:
		env.Sink.Info("Nothing to do, take hasn't changed")
		return nil
	case TakeIncrease:
		env.Sink.Info("Current take is lower than the new one. Will use increase_take")
	case TakeDecrease:
		env.Sink.Info("Current take is higher than the new one. Will use decrease_take")
		function = "decrease_take"
	}
	if err := env.confirm("Set take of %s from %.2f%% to %.2f%%?", hotkey,
		float64(current)/chain.MaxTakeU16*100, float64(requested)/chain.MaxTakeU16*100); err != nil {
		return err
	}

	hk, err := accountArg("hotkey", hotkey)
	if err != nil {
		return err
	}
	call, err := env.compose(ctx, function, hk, u16Arg("take", requested))
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

	now, isDelegate, err := env.Session.DelegateTake(ctx, hotkey, chain.BlockHash{})
	if err != nil {
		return err
	}
	if !isDelegate || now != requested {
		env.Sink.Error("Could not set the take on %s", env.Network)
		return fmt.Errorf("%w: take is %d, expected %d", ErrUnknownOutcome, now, requested)
	}
	env.Sink.Success("Successfully set the take on %s", env.Network)
	return nil
}
