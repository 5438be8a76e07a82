// Package chaintest provides an in-memory chain.Backend for tests.
package chaintest

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"

	"github.com/jungoai/jungo-cli/internal/chain"
	"github.com/jungoai/jungo-cli/pkg/balance"
)

// DefaultHead is the head block number of a new Backend.
const DefaultHead = 10_000

// RPCHandler answers a custom RPC call. The returned value is
// JSON-encoded into the caller's result.
type RPCHandler func(params []any) (any, error)

// SubmitHook decides the outcome of a submission. It runs with the
// backend unlocked, so it may mutate state.
type SubmitHook func(ext chain.Extrinsic, wait chain.WaitPolicy) (chain.SubmissionResult, error)

// Backend is a fake node. The zero value is not usable; use New.
type Backend struct {
	mu        sync.Mutex
	head      uint64
	storage   map[string]map[string][]byte // block hex -> key -> value
	constants map[string][]byte
	rpc       map[string]RPCHandler
	calls     map[string]string // encoded call hex -> description
	fee       func(chain.Call) (balance.Balance, error)
	encodeErr map[string]error
	onSubmit  SubmitHook

	submitted []chain.Extrinsic
	closed    bool
}

// New returns a fake node with a zero existential deposit and a fixed
// fee of 0.
func New() *Backend {
	b := &Backend{
		head:      DefaultHead,
		storage:   make(map[string]map[string][]byte),
		constants: make(map[string][]byte),
		rpc:       make(map[string]RPCHandler),
		calls:     make(map[string]string),
		encodeErr: make(map[string]error),
	}
	b.SetConstant(chain.ModuleBalances, "ExistentialDeposit", types.NewU64(0))
	return b
}

// Dialer returns a chain.Dialer that always hands out b.
func (b *Backend) Dialer() chain.Dialer {
	return func(context.Context, string) (chain.Backend, error) {
		b.mu.Lock()
		b.closed = false
		b.mu.Unlock()
		return b, nil
	}
}

// Session opens a session on b.
func (b *Backend) Session() *chain.Session {
	return chain.NewSession(b, "fake://node")
}

// HashOf returns the fake hash of block n.
func HashOf(n uint64) chain.BlockHash {
	var h chain.BlockHash
	binary.BigEndian.PutUint64(h[:8], n)
	h[31] = 0xfe
	return h
}

func numberOf(h chain.BlockHash) (uint64, bool) {
	if h[31] != 0xfe {
		return 0, false
	}
	return binary.BigEndian.Uint64(h[:8]), true
}

// SetHead sets the head block number.
func (b *Backend) SetHead(n uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.head = n
}

func storageKey(module, item string, args ...any) string {
	k := chain.StorageKey{Module: module, Item: item}
	for _, a := range args {
		enc, err := codec.Encode(a)
		if err != nil {
			panic(fmt.Sprintf("chaintest: encode key arg: %v", err))
		}
		k.Args = append(k.Args, enc)
	}
	return k.String()
}

// SetStorage stores value at module.item[args...] for every block.
func (b *Backend) SetStorage(module, item string, value any, args ...any) {
	b.SetStorageAt(chain.BlockHash{}, module, item, value, args...)
}

// SetStorageAt stores value at module.item[args...] as seen at block at.
// Reads at a block fall back to the values set without a block.
func (b *Backend) SetStorageAt(at chain.BlockHash, module, item string, value any, args ...any) {
	enc, err := codec.Encode(value)
	if err != nil {
		panic(fmt.Sprintf("chaintest: encode value: %v", err))
	}
	b.SetRaw(at, storageKey(module, item, args...), enc)
}

// SetRaw stores raw bytes under a rendered chain.StorageKey.
func (b *Backend) SetRaw(at chain.BlockHash, key string, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, ok := b.storage[at.Hex()]
	if !ok {
		m = make(map[string][]byte)
		b.storage[at.Hex()] = m
	}
	m[key] = data
}

// DeleteStorage removes module.item[args...] from the default view.
func (b *Backend) DeleteStorage(module, item string, args ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.storage[chain.BlockHash{}.Hex()], storageKey(module, item, args...))
}

// SetBalance sets the free balance of addr.
func (b *Backend) SetBalance(addr string, rao uint64) {
	id, err := chain.AccountID(addr)
	if err != nil {
		panic(err)
	}
	info := chain.AccountInfo{Data: chain.AccountData{Free: types.NewU64(rao)}}
	b.SetStorage(chain.ModuleSystem, "Account", info, id)
}

// SetBalanceAt sets the free balance of addr as seen at block at.
func (b *Backend) SetBalanceAt(at chain.BlockHash, addr string, rao uint64) {
	id, err := chain.AccountID(addr)
	if err != nil {
		panic(err)
	}
	info := chain.AccountInfo{Data: chain.AccountData{Free: types.NewU64(rao)}}
	b.SetStorageAt(at, chain.ModuleSystem, "Account", info, id)
}

// SetConstant sets a runtime constant.
func (b *Backend) SetConstant(module, name string, value any) {
	enc, err := codec.Encode(value)
	if err != nil {
		panic(fmt.Sprintf("chaintest: encode constant: %v", err))
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.constants[module+"."+name] = enc
}

// SetFee makes fee estimates return rao for every call.
func (b *Backend) SetFee(rao uint64) {
	b.SetFeeFunc(func(chain.Call) (balance.Balance, error) {
		return balance.FromRao(rao), nil
	})
}

// SetFeeFunc installs a fee estimator.
func (b *Backend) SetFeeFunc(fn func(chain.Call) (balance.Balance, error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fee = fn
}

// SetEncodeError makes EncodeCall fail for the named call ("Module.fn").
func (b *Backend) SetEncodeError(call string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.encodeErr[call] = err
}

// HandleRPC installs a handler for a custom RPC method.
func (b *Backend) HandleRPC(method string, h RPCHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rpc[method] = h
}

// RegisterCall records the description DescribeCall returns for encoded.
func (b *Backend) RegisterCall(encoded []byte, description string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[hex.EncodeToString(encoded)] = description
}

// OnSubmit installs a submission hook. Without one every submission is
// Included at the head.
func (b *Backend) OnSubmit(h SubmitHook) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onSubmit = h
}

// Submitted returns the extrinsics submitted so far.
func (b *Backend) Submitted() []chain.Extrinsic {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]chain.Extrinsic(nil), b.submitted...)
}

// Closed reports whether the last session was closed.
func (b *Backend) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

func (b *Backend) ChainHead(ctx context.Context) (chain.BlockHash, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return HashOf(b.head), nil
}

func (b *Backend) BlockHash(ctx context.Context, number uint64) (chain.BlockHash, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if number > b.head {
		return chain.BlockHash{}, fmt.Errorf("block %d is beyond head %d", number, b.head)
	}
	return HashOf(number), nil
}

func (b *Backend) BlockNumber(ctx context.Context, hash chain.BlockHash) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if hash.IsZero() {
		return b.head, nil
	}
	n, ok := numberOf(hash)
	if !ok {
		return 0, fmt.Errorf("unknown block %s", hash)
	}
	return n, nil
}

func (b *Backend) read(key chain.StorageKey, at chain.BlockHash) chain.RawValue {
	k := key.String()
	if !at.IsZero() {
		if v, ok := b.storage[at.Hex()][k]; ok {
			return chain.RawValue{Data: v, Present: true}
		}
	}
	if v, ok := b.storage[chain.BlockHash{}.Hex()][k]; ok {
		return chain.RawValue{Data: v, Present: true}
	}
	return chain.RawValue{}
}

func (b *Backend) Storage(ctx context.Context, key chain.StorageKey, at chain.BlockHash) (chain.RawValue, error) {
	if err := ctx.Err(); err != nil {
		return chain.RawValue{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.read(key, at), nil
}

func (b *Backend) StorageMulti(ctx context.Context, keys []chain.StorageKey, at chain.BlockHash) ([]chain.RawValue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]chain.RawValue, len(keys))
	for i, k := range keys {
		out[i] = b.read(k, at)
	}
	return out, nil
}

func (b *Backend) Constant(ctx context.Context, module, name string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.constants[module+"."+name]
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", module, name, chain.ErrUnknownConstant)
	}
	return v, nil
}

// EncodeCall encodes the call name followed by its SCALE-encoded args.
func (b *Backend) EncodeCall(ctx context.Context, call chain.Call) ([]byte, error) {
	b.mu.Lock()
	err := b.encodeErr[call.Name()]
	b.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out, err := codec.Encode(types.NewBytes([]byte(call.Name())))
	if err != nil {
		return nil, err
	}
	for _, a := range call.Args {
		enc, err := codec.Encode(a.Value)
		if err != nil {
			return nil, fmt.Errorf("encode arg %s: %w", a.Name, err)
		}
		out = append(out, enc...)
	}
	return out, nil
}

func (b *Backend) DescribeCall(ctx context.Context, encoded []byte) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.calls[hex.EncodeToString(encoded)]
	if !ok {
		return "", errors.New("unknown call")
	}
	return d, nil
}

// StateCall answers the fee runtime API from the installed fee function.
func (b *Backend) StateCall(ctx context.Context, method string, data []byte, at chain.BlockHash) ([]byte, error) {
	if !strings.HasPrefix(method, "TransactionPaymentCallApi_") {
		return nil, fmt.Errorf("unsupported runtime api %s", method)
	}
	b.mu.Lock()
	fee := b.fee
	b.mu.Unlock()
	var amount balance.Balance
	if fee != nil {
		call, err := b.decodeCallName(data)
		if err != nil {
			return nil, err
		}
		if amount, err = fee(call); err != nil {
			return nil, err
		}
	}
	// Weight (two compacts), class, partial fee.
	out := []byte{0, 0, 0}
	return binary.LittleEndian.AppendUint64(out, amount.Rao()), nil
}

func (b *Backend) decodeCallName(data []byte) (chain.Call, error) {
	var name types.Bytes
	if err := codec.Decode(data, &name); err != nil {
		return chain.Call{}, fmt.Errorf("decode call: %w", err)
	}
	module, fn, _ := strings.Cut(string(name), ".")
	return chain.NewCall(module, fn), nil
}

func (b *Backend) Sign(ctx context.Context, call chain.Call, signer signature.KeyringPair) (chain.Extrinsic, error) {
	return chain.Extrinsic{Call: call, Signer: signer.Address, Payload: call.Name()}, nil
}

func (b *Backend) Submit(ctx context.Context, ext chain.Extrinsic, wait chain.WaitPolicy) (chain.SubmissionResult, error) {
	if err := ctx.Err(); err != nil {
		return chain.SubmissionResult{}, err
	}
	b.mu.Lock()
	b.submitted = append(b.submitted, ext)
	hook := b.onSubmit
	head := b.head
	b.mu.Unlock()
	if hook != nil {
		return hook(ext, wait)
	}
	res := chain.SubmissionResult{Outcome: chain.Included, BlockHash: HashOf(head)}
	if wait.Finalization {
		res.Outcome = chain.Finalized
	}
	return res, nil
}

// RPC dispatches to the installed handler and JSON-round-trips its result.
func (b *Backend) RPC(ctx context.Context, result any, method string, params ...any) error {
	b.mu.Lock()
	h, ok := b.rpc[method]
	b.mu.Unlock()
	if !ok {
		return fmt.Errorf("method %s not found", method)
	}
	v, err := h(params)
	if err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, result)
}

func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// Failure returns a SubmitHook that rejects every extrinsic with a
// module error.
func Failure(module, name string, docs ...string) SubmitHook {
	return func(chain.Extrinsic, chain.WaitPolicy) (chain.SubmissionResult, error) {
		return chain.SubmissionResult{
			Outcome: chain.Failed,
			Err:     &chain.DispatchError{Module: module, Name: name, Docs: docs},
		}, nil
	}
}

// BytesAsInts renders SCALE bytes the way the delegate-info RPCs do.
func BytesAsInts(b []byte) []int {
	out := make([]int, len(b))
	for i, v := range b {
		out[i] = int(v)
	}
	return out
}
