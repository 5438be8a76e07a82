// Package flows implements the state-changing operations of the client.
//
// Every flow follows the same steps: validate locally, read the chain state
// it needs at one pinned block, decide, optionally confirm with the user,
// submit, then re-read and report the change. Flows never retry; a failed
// submission is returned to the caller.
package flows

import (
	"context"
	"errors"
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"

	"github.com/jungoai/jungo-cli/internal/chain"
	"github.com/jungoai/jungo-cli/pkg/ss58"
)

var (
	ErrInvalidAddress      = errors.New("invalid address")
	ErrSubnetNotFound      = errors.New("subnet does not exist")
	ErrNotDelegate         = errors.New("hotkey is not a delegate")
	ErrAlreadyDelegate     = errors.New("hotkey is already a delegate")
	ErrTakeTooHigh         = errors.New("take exceeds the 18% ceiling")
	ErrInvalidTake         = errors.New("take must not be negative")
	ErrInsufficientBalance = errors.New("not enough balance")
	ErrInsufficientStake   = errors.New("not enough stake")
	ErrRejected            = errors.New("aborted by user")
	ErrNotSenateMember     = errors.New("hotkey is not a senate member")
	ErrProposalNotFound    = errors.New("proposal not found")
	ErrNotRegistered       = errors.New("hotkey is not registered")
	ErrInvalidWeights      = errors.New("invalid weights")
	// ErrUnknownOutcome is returned when a submission reported success but
	// the expected state change is not visible on the chain.
	ErrUnknownOutcome = errors.New("unknown error: submission succeeded but the change is not visible")
)

// Sink receives user-facing output.
type Sink interface {
	Info(format string, args ...any)
	Success(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Prompter asks the user yes/no questions.
type Prompter interface {
	Confirm(question string) (bool, error)
}

// Keys is the wallet as seen by the flows. Addresses are available
// without unlocking; Coldkey and Hotkey may prompt for a passphrase.
type Keys interface {
	Name() string
	ColdkeyAddress() (string, error)
	HotkeyAddress() (string, error)
	Coldkey() (signature.KeyringPair, error)
	Hotkey() (signature.KeyringPair, error)
}

// Env carries what every flow needs.
type Env struct {
	Session *chain.Session
	Wallet  Keys
	Sink    Sink
	// Prompt is nil when confirmation is disabled.
	Prompt  Prompter
	Wait    chain.WaitPolicy
	Network string
	// Explorer is a block explorer URL format taking the block hash, or "".
	Explorer string
}

func (e Env) confirm(question string, args ...any) error {
	if e.Prompt == nil {
		return nil
	}
	ok, err := e.Prompt.Confirm(fmt.Sprintf(question, args...))
	if err != nil {
		return fmt.Errorf("prompt: %w", err)
	}
	if !ok {
		return ErrRejected
	}
	return nil
}

// submit signs call with the coldkey and submits it. Chain rejections are
// reported to the sink and returned as the dispatch error.
func (e Env) submit(ctx context.Context, call chain.Call) (chain.SubmissionResult, error) {
	signer, err := e.Wallet.Coldkey()
	if err != nil {
		return chain.SubmissionResult{}, fmt.Errorf("unlock coldkey: %w", err)
	}
	res, err := e.Session.SignAndSubmit(ctx, call, signer, e.Wait)
	if err != nil {
		e.Sink.Error("Failed: %v", err)
		return res, err
	}
	if !res.Success() {
		if res.Err == nil {
			res.Err = &chain.DispatchError{}
		}
		e.Sink.Error("Failed: %v", res.Err)
		return res, res.Err
	}
	if res.Outcome != chain.NotAwaited {
		e.Sink.Success("Finalized")
	}
	return res, nil
}

func (e Env) compose(ctx context.Context, function string, args ...chain.Arg) (chain.Call, error) {
	return e.Session.ComposeCall(ctx, chain.ModuleSubtensor, function, args...)
}

func (e Env) addresses() (coldkey, hotkey string, err error) {
	if coldkey, err = e.Wallet.ColdkeyAddress(); err != nil {
		return "", "", fmt.Errorf("coldkey address: %w", err)
	}
	if hotkey, err = e.Wallet.HotkeyAddress(); err != nil {
		return "", "", fmt.Errorf("hotkey address: %w", err)
	}
	return coldkey, hotkey, nil
}

func (e Env) coldkeyAddress() (string, error) {
	addr, err := e.Wallet.ColdkeyAddress()
	if err != nil {
		return "", fmt.Errorf("coldkey address: %w", err)
	}
	return addr, nil
}

func (e Env) hotkeyAddress() (string, error) {
	addr, err := e.Wallet.HotkeyAddress()
	if err != nil {
		return "", fmt.Errorf("hotkey address: %w", err)
	}
	return addr, nil
}

func validAddress(addr string) error {
	if !ss58.IsValidDestination(addr) {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	return nil
}

func accountArg(name, addr string) (chain.Arg, error) {
	id, err := chain.AccountID(addr)
	if err != nil {
		return chain.Arg{}, err
	}
	return chain.Arg{Name: name, Value: id}, nil
}

func u16Arg(name string, v uint16) chain.Arg {
	return chain.Arg{Name: name, Value: types.NewU16(v)}
}

func u64Arg(name string, v uint64) chain.Arg {
	return chain.Arg{Name: name, Value: types.NewU64(v)}
}
