package chain

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// BlockHash identifies a block. The zero value means "current head".
type BlockHash [32]byte

// IsZero reports whether h is the zero hash.
func (h BlockHash) IsZero() bool {
	return h == BlockHash{}
}

// Hex returns the 0x-prefixed hex form.
func (h BlockHash) Hex() string {
	return "0x" + hex.EncodeToString(h[:])
}

func (h BlockHash) String() string {
	return h.Hex()
}

// HashFromHex parses a 0x-prefixed (or bare) 32-byte hex hash.
func HashFromHex(s string) (BlockHash, error) {
	var h BlockHash
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return h, fmt.Errorf("invalid hash %q: %w", s, err)
	}
	if len(b) != len(h) {
		return h, fmt.Errorf("invalid hash %q: %d bytes", s, len(b))
	}
	copy(h[:], b)
	return h, nil
}

// Arg is a named call argument. Value must be SCALE-encodable.
type Arg struct {
	Name  string
	Value any
}

// Call is an unsigned call of a runtime module function.
type Call struct {
	Module   string
	Function string
	Args     []Arg
}

// NewCall builds a Call.
func NewCall(module, function string, args ...Arg) Call {
	return Call{Module: module, Function: function, Args: args}
}

// Name returns "Module.function".
func (c Call) Name() string {
	return c.Module + "." + c.Function
}

// Arg returns the value of the named argument.
func (c Call) Arg(name string) (any, bool) {
	for _, a := range c.Args {
		if a.Name == name {
			return a.Value, true
		}
	}
	return nil, false
}

// Values returns the argument values in order.
func (c Call) Values() []any {
	out := make([]any, len(c.Args))
	for i, a := range c.Args {
		out[i] = a.Value
	}
	return out
}

// Extrinsic is a signed call ready for submission. It is consumed by a
// single Submit.
type Extrinsic struct {
	Call   Call
	Signer string // SS58 address of the signer
	// Payload is the backend's signed representation.
	Payload any
}

// Outcome is the terminal state of a submission.
type Outcome int

const (
	// NotAwaited means the extrinsic was handed to the node and the caller
	// chose not to wait. Nothing is known about its fate.
	NotAwaited Outcome = iota
	// Included means the extrinsic succeeded in a block.
	Included
	// Finalized means the extrinsic succeeded in a finalized block.
	Finalized
	// Failed means the chain rejected the extrinsic.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case NotAwaited:
		return "not-awaited"
	case Included:
		return "included"
	case Finalized:
		return "finalized"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// SubmissionResult reports what happened to a submitted extrinsic.
type SubmissionResult struct {
	Outcome       Outcome
	BlockHash     BlockHash // zero unless Included, Finalized or Failed in a block
	ExtrinsicHash string
	// Err describes the rejection when Outcome is Failed. It is usually a
	// *DispatchError.
	Err error
}

// Success reports whether the submission did not fail. NotAwaited counts
// as success.
func (r SubmissionResult) Success() bool {
	return r.Outcome != Failed
}

// WaitPolicy selects how long Submit blocks.
type WaitPolicy struct {
	Inclusion    bool
	Finalization bool
	// Timeout bounds the wait. Zero means wait for the context only.
	Timeout time.Duration
}

// Awaits reports whether the policy waits for any chain event.
func (w WaitPolicy) Awaits() bool {
	return w.Inclusion || w.Finalization
}

// Lookup tags the state of a storage read.
type Lookup int

const (
	// Missing means the key has no value.
	Missing Lookup = iota
	// Found means the value was present and decoded.
	Found
	// Malformed means a value was present but did not decode.
	Malformed
)

func (l Lookup) String() string {
	switch l {
	case Missing:
		return "missing"
	case Found:
		return "found"
	case Malformed:
		return "malformed"
	default:
		return fmt.Sprintf("lookup(%d)", int(l))
	}
}

// Result is a decoded storage value.
type Result[T any] struct {
	Value  T
	Lookup Lookup
	// Err is the decode error for Malformed values.
	Err error
}

// Found reports whether the value was present and decoded.
func (r Result[T]) Found() bool {
	return r.Lookup == Found
}

// Or returns the value when found and def otherwise.
func (r Result[T]) Or(def T) T {
	if r.Lookup == Found {
		return r.Value
	}
	return def
}

// StorageKey addresses a storage item. Args are the SCALE-encoded map keys;
// the backend applies the item's hashers.
type StorageKey struct {
	Module string
	Item   string
	Args   [][]byte
}

func (k StorageKey) String() string {
	parts := make([]string, 0, len(k.Args)+1)
	parts = append(parts, k.Module+"."+k.Item)
	for _, a := range k.Args {
		parts = append(parts, hex.EncodeToString(a))
	}
	return strings.Join(parts, "/")
}

// RawValue is an undecoded storage value.
type RawValue struct {
	Data    []byte
	Present bool
}
