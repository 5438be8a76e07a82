// Package chain is the client's session with a Substrate node.
//
// A Session wraps a Backend (the transport) and adds typed storage
// queries, fee estimation with a fallback, and the submission model used
// by every extrinsic flow. Sessions are opened for one flow or view and
// closed on every exit path; see Use.
package chain

import (
	"context"

	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"
)

// Backend is the raw transport to a node. Implementations must be safe
// for concurrent use.
type Backend interface {
	ChainHead(ctx context.Context) (BlockHash, error)
	BlockHash(ctx context.Context, number uint64) (BlockHash, error)
	BlockNumber(ctx context.Context, hash BlockHash) (uint64, error)

	// Storage reads one key at block at (zero = head).
	Storage(ctx context.Context, key StorageKey, at BlockHash) (RawValue, error)
	// StorageMulti reads several keys at the same block in one round trip.
	// Results are in key order.
	StorageMulti(ctx context.Context, keys []StorageKey, at BlockHash) ([]RawValue, error)
	// Constant returns the SCALE-encoded value of a runtime constant.
	Constant(ctx context.Context, module, name string) ([]byte, error)

	// EncodeCall SCALE-encodes a call against the runtime metadata.
	EncodeCall(ctx context.Context, call Call) ([]byte, error)
	// DescribeCall renders an encoded call as "Module.function(args)".
	DescribeCall(ctx context.Context, encoded []byte) (string, error)
	// StateCall invokes a runtime API method.
	StateCall(ctx context.Context, method string, data []byte, at BlockHash) ([]byte, error)

	Sign(ctx context.Context, call Call, signer signature.KeyringPair) (Extrinsic, error)
	// Submit sends ext and, per wait, blocks until inclusion or
	// finalization and inspects the block's events. The returned error is
	// a transport failure; chain rejections are reported in the result.
	Submit(ctx context.Context, ext Extrinsic, wait WaitPolicy) (SubmissionResult, error)

	// RPC invokes a custom JSON-RPC method.
	RPC(ctx context.Context, result any, method string, params ...any) error

	Close() error
}

// Dialer opens a Backend for an endpoint.
type Dialer func(ctx context.Context, endpoint string) (Backend, error)
