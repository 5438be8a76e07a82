package chain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTimeout is returned when a submission wait exceeds its timeout.
	// The extrinsic may still land; its outcome is unknown.
	ErrTimeout = errors.New("timed out waiting for extrinsic")
	// ErrUnknownConstant is returned for a runtime constant that the
	// metadata does not define.
	ErrUnknownConstant = errors.New("unknown runtime constant")
)

// DispatchError is a chain-side rejection of an extrinsic.
type DispatchError struct {
	Module string   // pallet name, e.g. "SubtensorModule"
	Name   string   // error variant, e.g. "NotEnoughBalanceToStake"
	Docs   []string // variant documentation from metadata
	// Raw describes errors that could not be resolved to a pallet error
	// (bad origin, dropped, invalid, ...).
	Raw string
}

func (e *DispatchError) Error() string {
	if e.Name == "" {
		if e.Raw == "" {
			return "extrinsic failed"
		}
		return e.Raw
	}
	desc := strings.TrimSpace(strings.Join(e.Docs, " "))
	if desc == "" {
		desc = "no description available"
	}
	return fmt.Sprintf("Subtensor returned `%s (%s)` error. This means: `%s`", e.Name, e.Module, desc)
}
