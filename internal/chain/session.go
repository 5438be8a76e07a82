package chain

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	"github.com/rs/zerolog"

	"github.com/jungoai/jungo-cli/internal/log"
	"github.com/jungoai/jungo-cli/pkg/balance"
)

// DefaultFee is used when the node cannot estimate a fee (0.02 τ).
var DefaultFee = balance.FromRao(20_000_000)

const feeRuntimeAPI = "TransactionPaymentCallApi_query_call_info"

// Session is a connection to one node, used for one flow or view.
type Session struct {
	backend  Backend
	endpoint string
	log      zerolog.Logger
}

// NewSession wraps an open backend.
func NewSession(b Backend, endpoint string) *Session {
	return &Session{
		backend:  b,
		endpoint: endpoint,
		log:      log.Chain.With().Str("endpoint", endpoint).Logger(),
	}
}

// Open dials endpoint and returns a session. The caller must Close it.
func Open(ctx context.Context, dial Dialer, endpoint string) (*Session, error) {
	b, err := dial(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", endpoint, err)
	}
	return NewSession(b, endpoint), nil
}

// Use opens a session, runs fn and closes the session whether fn
// succeeds, fails or panics.
func Use(ctx context.Context, dial Dialer, endpoint string, fn func(*Session) error) (err error) {
	s, err := Open(ctx, dial, endpoint)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			s.log.Debug().Err(cerr).Msg("close session")
		}
	}()
	return fn(s)
}

// Endpoint returns the endpoint the session is connected to.
func (s *Session) Endpoint() string {
	return s.endpoint
}

// Close releases the connection.
func (s *Session) Close() error {
	return s.backend.Close()
}

// ChainHead returns the hash of the current best block.
func (s *Session) ChainHead(ctx context.Context) (BlockHash, error) {
	h, err := s.backend.ChainHead(ctx)
	if err != nil {
		return BlockHash{}, fmt.Errorf("get chain head: %w", err)
	}
	return h, nil
}

// BlockHash returns the hash of block number n.
func (s *Session) BlockHash(ctx context.Context, n uint64) (BlockHash, error) {
	h, err := s.backend.BlockHash(ctx, n)
	if err != nil {
		return BlockHash{}, fmt.Errorf("get block hash %d: %w", n, err)
	}
	return h, nil
}

// BlockNumber returns the number of the block with the given hash.
func (s *Session) BlockNumber(ctx context.Context, h BlockHash) (uint64, error) {
	n, err := s.backend.BlockNumber(ctx, h)
	if err != nil {
		return 0, fmt.Errorf("get block number of %s: %w", h, err)
	}
	return n, nil
}

func encodeParams(params []any) ([][]byte, error) {
	out := make([][]byte, len(params))
	for i, p := range params {
		b, err := codec.Encode(p)
		if err != nil {
			return nil, fmt.Errorf("encode storage key %d: %w", i, err)
		}
		out[i] = b
	}
	return out, nil
}

func decodeValue[T any](raw RawValue) Result[T] {
	var r Result[T]
	if !raw.Present {
		return r
	}
	if err := codec.Decode(raw.Data, &r.Value); err != nil {
		var zero T
		r.Value = zero
		r.Lookup = Malformed
		r.Err = err
		return r
	}
	r.Lookup = Found
	return r
}

// Query reads module.item[params...] at block at (zero = head) and
// decodes it as T.
func Query[T any](ctx context.Context, s *Session, at BlockHash, module, item string, params ...any) (Result[T], error) {
	args, err := encodeParams(params)
	if err != nil {
		return Result[T]{}, err
	}
	key := StorageKey{Module: module, Item: item, Args: args}
	raw, err := s.backend.Storage(ctx, key, at)
	if err != nil {
		return Result[T]{}, fmt.Errorf("query %s.%s: %w", module, item, err)
	}
	r := decodeValue[T](raw)
	if r.Lookup == Malformed {
		s.log.Warn().Err(r.Err).Str("key", key.String()).Msg("malformed storage value")
	}
	return r, nil
}

// QueryMultiple reads module.item for every parameter list in keys at the
// same block, in one round trip. Results are in key order.
func QueryMultiple[T any](ctx context.Context, s *Session, at BlockHash, module, item string, keys [][]any) ([]Result[T], error) {
	if len(keys) == 0 {
		return nil, nil
	}
	storageKeys := make([]StorageKey, len(keys))
	for i, params := range keys {
		args, err := encodeParams(params)
		if err != nil {
			return nil, err
		}
		storageKeys[i] = StorageKey{Module: module, Item: item, Args: args}
	}
	raws, err := s.backend.StorageMulti(ctx, storageKeys, at)
	if err != nil {
		return nil, fmt.Errorf("query %s.%s (%d keys): %w", module, item, len(keys), err)
	}
	if len(raws) != len(keys) {
		return nil, fmt.Errorf("query %s.%s: got %d values for %d keys", module, item, len(raws), len(keys))
	}
	out := make([]Result[T], len(raws))
	for i, raw := range raws {
		out[i] = decodeValue[T](raw)
	}
	return out, nil
}

// Constant reads and decodes a runtime constant.
func Constant[T any](ctx context.Context, s *Session, module, name string) (T, error) {
	var v T
	data, err := s.backend.Constant(ctx, module, name)
	if err != nil {
		return v, fmt.Errorf("constant %s.%s: %w", module, name, err)
	}
	if err := codec.Decode(data, &v); err != nil {
		return v, fmt.Errorf("decode constant %s.%s: %w", module, name, err)
	}
	return v, nil
}

// ComposeCall builds a call and checks that it encodes against the
// runtime metadata.
func (s *Session) ComposeCall(ctx context.Context, module, function string, args ...Arg) (Call, error) {
	c := NewCall(module, function, args...)
	if _, err := s.backend.EncodeCall(ctx, c); err != nil {
		return Call{}, fmt.Errorf("compose %s: %w", c.Name(), err)
	}
	return c, nil
}

// DescribeCall renders an encoded call for display.
func (s *Session) DescribeCall(ctx context.Context, encoded []byte) (string, error) {
	return s.backend.DescribeCall(ctx, encoded)
}

// Fee is a fee estimate. When the node could not estimate, Amount is
// DefaultFee, Estimated is false and Err holds the cause.
type Fee struct {
	Amount    balance.Balance
	Estimated bool
	Err       error
}

type weightV2 struct {
	RefTime   types.UCompact
	ProofSize types.UCompact
}

// dispatchInfo mirrors RuntimeDispatchInfo with the chain's u64 balance.
type dispatchInfo struct {
	Weight     weightV2
	Class      types.U8
	PartialFee types.U64
}

// PaymentInfo estimates the fee payer would pay for call. It never fails;
// see Fee.
func (s *Session) PaymentInfo(ctx context.Context, call Call, payer string) Fee {
	amount, err := s.estimateFee(ctx, call)
	if err != nil {
		s.log.Warn().Err(err).Str("call", call.Name()).Str("payer", payer).
			Msg("fee estimate failed, using default")
		return Fee{Amount: DefaultFee, Err: err}
	}
	return Fee{Amount: amount, Estimated: true}
}

func (s *Session) estimateFee(ctx context.Context, call Call) (balance.Balance, error) {
	encoded, err := s.backend.EncodeCall(ctx, call)
	if err != nil {
		return balance.Zero, err
	}
	data := binary.LittleEndian.AppendUint32(append([]byte(nil), encoded...), uint32(len(encoded)))
	out, err := s.backend.StateCall(ctx, feeRuntimeAPI, data, BlockHash{})
	if err != nil {
		return balance.Zero, err
	}
	var info dispatchInfo
	if err := codec.Decode(out, &info); err != nil {
		return balance.Zero, fmt.Errorf("decode dispatch info: %w", err)
	}
	return balance.FromRao(uint64(info.PartialFee)), nil
}

// Sign signs call with signer.
func (s *Session) Sign(ctx context.Context, call Call, signer signature.KeyringPair) (Extrinsic, error) {
	ext, err := s.backend.Sign(ctx, call, signer)
	if err != nil {
		return Extrinsic{}, fmt.Errorf("sign %s: %w", call.Name(), err)
	}
	return ext, nil
}

// Submit sends ext and waits per wait. Without any wait flag it returns a
// NotAwaited result as soon as the node accepts the extrinsic. Nothing is
// retried.
func (s *Session) Submit(ctx context.Context, ext Extrinsic, wait WaitPolicy) (SubmissionResult, error) {
	if wait.Awaits() && wait.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, wait.Timeout)
		defer cancel()
	}
	done := log.Timed(s.log, "submit "+ext.Call.Name())
	res, err := s.backend.Submit(ctx, ext, wait)
	done()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = ErrTimeout
		}
		return SubmissionResult{}, fmt.Errorf("submit %s: %w", ext.Call.Name(), err)
	}
	if !wait.Awaits() && res.Outcome != Failed {
		res.Outcome = NotAwaited
	}
	s.log.Debug().
		Str("call", ext.Call.Name()).
		Str("outcome", res.Outcome.String()).
		Str("block", res.BlockHash.Hex()).
		Msg("submitted")
	return res, nil
}

// SignAndSubmit signs call with signer and submits it.
func (s *Session) SignAndSubmit(ctx context.Context, call Call, signer signature.KeyringPair, wait WaitPolicy) (SubmissionResult, error) {
	ext, err := s.Sign(ctx, call, signer)
	if err != nil {
		return SubmissionResult{}, err
	}
	return s.Submit(ctx, ext, wait)
}

// RPC invokes a custom JSON-RPC method.
func (s *Session) RPC(ctx context.Context, result any, method string, params ...any) error {
	if err := s.backend.RPC(ctx, result, method, params...); err != nil {
		return fmt.Errorf("rpc %s: %w", method, err)
	}
	return nil
}
