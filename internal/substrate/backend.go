// Package substrate implements chain.Backend over a Substrate node's
// websocket JSON-RPC using go-substrate-rpc-client.
package substrate

import (
	"context"
	"errors"
	"fmt"

	gsrpc "github.com/centrifuge/go-substrate-rpc-client/v4"
	"github.com/centrifuge/go-substrate-rpc-client/v4/registry/retriever"
	"github.com/centrifuge/go-substrate-rpc-client/v4/registry/state"
	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/blake2b"

	"github.com/jungoai/jungo-cli/internal/chain"
	"github.com/jungoai/jungo-cli/internal/log"
)

// Backend is a live node connection.
type Backend struct {
	api     *gsrpc.SubstrateAPI
	meta    metadata
	genesis types.Hash
	events  retriever.EventRetriever
	log     zerolog.Logger
}

var _ chain.Backend = (*Backend)(nil)

// Dial connects to endpoint and loads the runtime metadata. It satisfies
// chain.Dialer.
func Dial(ctx context.Context, endpoint string) (chain.Backend, error) {
	type dialed struct {
		b   *Backend
		err error
	}
	ch := make(chan dialed, 1)
	go func() {
		b, err := dial(endpoint)
		ch <- dialed{b, err}
	}()
	select {
	case <-ctx.Done():
		// Close the connection if it completes after we gave up.
		go func() {
			if d := <-ch; d.b != nil {
				_ = d.b.Close()
			}
		}()
		return nil, ctx.Err()
	case d := <-ch:
		return d.b, d.err
	}
}

func dial(endpoint string) (*Backend, error) {
	l := log.Chain.With().Str("endpoint", endpoint).Logger()
	done := log.Timed(l, "dial")
	defer done()

	api, err := gsrpc.NewSubstrateAPI(endpoint)
	if err != nil {
		return nil, err
	}
	b := &Backend{api: api, log: l}
	meta, err := api.RPC.State.GetMetadataLatest()
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("load metadata: %w", err)
	}
	b.meta = metadata{raw: meta}
	if b.genesis, err = api.RPC.Chain.GetBlockHash(0); err != nil {
		b.Close()
		return nil, fmt.Errorf("get genesis hash: %w", err)
	}
	b.events, err = retriever.NewDefaultEventRetriever(state.NewEventProvider(api.RPC.State), api.RPC.State)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("event retriever: %w", err)
	}
	return b, nil
}

func (b *Backend) ChainHead(ctx context.Context) (chain.BlockHash, error) {
	h, err := b.api.RPC.Chain.GetBlockHashLatest()
	if err != nil {
		return chain.BlockHash{}, err
	}
	return chain.BlockHash(h), nil
}

func (b *Backend) BlockHash(ctx context.Context, number uint64) (chain.BlockHash, error) {
	h, err := b.api.RPC.Chain.GetBlockHash(number)
	if err != nil {
		return chain.BlockHash{}, err
	}
	return chain.BlockHash(h), nil
}

func (b *Backend) BlockNumber(ctx context.Context, hash chain.BlockHash) (uint64, error) {
	var (
		header *types.Header
		err    error
	)
	if hash.IsZero() {
		header, err = b.api.RPC.Chain.GetHeaderLatest()
	} else {
		header, err = b.api.RPC.Chain.GetHeader(types.Hash(hash))
	}
	if err != nil {
		return 0, err
	}
	return uint64(header.Number), nil
}

func (b *Backend) storageKey(key chain.StorageKey) (types.StorageKey, error) {
	k, err := types.CreateStorageKey(b.meta.raw, key.Module, key.Item, key.Args...)
	if err != nil {
		return nil, fmt.Errorf("storage key %s: %w", key, err)
	}
	return k, nil
}

func (b *Backend) Storage(ctx context.Context, key chain.StorageKey, at chain.BlockHash) (chain.RawValue, error) {
	k, err := b.storageKey(key)
	if err != nil {
		return chain.RawValue{}, err
	}
	var raw *types.StorageDataRaw
	if at.IsZero() {
		raw, err = b.api.RPC.State.GetStorageRawLatest(k)
	} else {
		raw, err = b.api.RPC.State.GetStorageRaw(k, types.Hash(at))
	}
	if err != nil {
		return chain.RawValue{}, err
	}
	if raw == nil || len(*raw) == 0 {
		return chain.RawValue{}, nil
	}
	return chain.RawValue{Data: *raw, Present: true}, nil
}

func (b *Backend) StorageMulti(ctx context.Context, keys []chain.StorageKey, at chain.BlockHash) ([]chain.RawValue, error) {
	sks := make([]types.StorageKey, len(keys))
	for i, key := range keys {
		k, err := b.storageKey(key)
		if err != nil {
			return nil, err
		}
		sks[i] = k
	}
	var (
		sets []types.StorageChangeSet
		err  error
	)
	if at.IsZero() {
		sets, err = b.api.RPC.State.QueryStorageAtLatest(sks)
	} else {
		sets, err = b.api.RPC.State.QueryStorageAt(sks, types.Hash(at))
	}
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]chain.RawValue, len(keys))
	for _, set := range sets {
		for _, c := range set.Changes {
			if c.HasStorageData && len(c.StorageData) > 0 {
				byKey[codec.HexEncodeToString(c.StorageKey)] = chain.RawValue{Data: c.StorageData, Present: true}
			}
		}
	}
	out := make([]chain.RawValue, len(keys))
	for i, k := range sks {
		out[i] = byKey[codec.HexEncodeToString(k)]
	}
	return out, nil
}

func (b *Backend) Constant(ctx context.Context, module, name string) ([]byte, error) {
	return b.meta.constant(module, name)
}

func (b *Backend) newCall(call chain.Call) (types.Call, error) {
	return types.NewCall(b.meta.raw, call.Name(), call.Values()...)
}

func (b *Backend) EncodeCall(ctx context.Context, call chain.Call) ([]byte, error) {
	c, err := b.newCall(call)
	if err != nil {
		return nil, err
	}
	return codec.Encode(c)
}

func (b *Backend) DescribeCall(ctx context.Context, encoded []byte) (string, error) {
	return b.meta.describeCall(encoded)
}

func (b *Backend) StateCall(ctx context.Context, method string, data []byte, at chain.BlockHash) ([]byte, error) {
	params := []any{method, codec.HexEncodeToString(data)}
	if !at.IsZero() {
		params = append(params, at.Hex())
	}
	var res string
	if err := b.api.Client.Call(&res, "state_call", params...); err != nil {
		return nil, err
	}
	return codec.HexDecodeString(res)
}

// Sign builds an immortal extrinsic signed by signer at its next nonce.
func (b *Backend) Sign(ctx context.Context, call chain.Call, signer signature.KeyringPair) (chain.Extrinsic, error) {
	c, err := b.newCall(call)
	if err != nil {
		return chain.Extrinsic{}, err
	}
	rv, err := b.api.RPC.State.GetRuntimeVersionLatest()
	if err != nil {
		return chain.Extrinsic{}, fmt.Errorf("runtime version: %w", err)
	}
	var nonce uint64
	if err := b.api.Client.Call(&nonce, "system_accountNextIndex", signer.Address); err != nil {
		return chain.Extrinsic{}, fmt.Errorf("next nonce of %s: %w", signer.Address, err)
	}
	ext := types.NewExtrinsic(c)
	opts := types.SignatureOptions{
		BlockHash:          b.genesis,
		Era:                types.ExtrinsicEra{IsMortalEra: false},
		GenesisHash:        b.genesis,
		Nonce:              types.NewUCompactFromUInt(nonce),
		SpecVersion:        rv.SpecVersion,
		Tip:                types.NewUCompactFromUInt(0),
		TransactionVersion: rv.TransactionVersion,
	}
	if err := ext.Sign(signer, opts); err != nil {
		return chain.Extrinsic{}, err
	}
	b.log.Debug().Str("call", call.Name()).Uint64("nonce", nonce).Msg("signed")
	return chain.Extrinsic{Call: call, Signer: signer.Address, Payload: ext}, nil
}

func extrinsicHash(ext types.Extrinsic) ([32]byte, error) {
	enc, err := codec.Encode(ext)
	if err != nil {
		return [32]byte{}, err
	}
	return blake2b.Sum256(enc), nil
}

func (b *Backend) Submit(ctx context.Context, e chain.Extrinsic, wait chain.WaitPolicy) (chain.SubmissionResult, error) {
	ext, ok := e.Payload.(types.Extrinsic)
	if !ok {
		return chain.SubmissionResult{}, fmt.Errorf("extrinsic was not signed by this backend")
	}
	hash, err := extrinsicHash(ext)
	if err != nil {
		return chain.SubmissionResult{}, err
	}
	res := chain.SubmissionResult{ExtrinsicHash: codec.HexEncodeToString(hash[:])}

	if !wait.Awaits() {
		if _, err := b.api.RPC.Author.SubmitExtrinsic(ext); err != nil {
			return chain.SubmissionResult{}, err
		}
		res.Outcome = chain.NotAwaited
		return res, nil
	}

	sub, err := b.api.RPC.Author.SubmitAndWatchExtrinsic(ext)
	if err != nil {
		return chain.SubmissionResult{}, err
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return chain.SubmissionResult{}, ctx.Err()
		case err := <-sub.Err():
			return chain.SubmissionResult{}, err
		case status := <-sub.Chan():
			switch {
			case status.IsInBlock:
				b.log.Debug().Str("block", status.AsInBlock.Hex()).Msg("in block")
				if wait.Finalization {
					continue
				}
				return b.inspect(res, hash, chain.BlockHash(status.AsInBlock), chain.Included)
			case status.IsFinalized:
				return b.inspect(res, hash, chain.BlockHash(status.AsFinalized), chain.Finalized)
			case status.IsDropped:
				return failed(res, "extrinsic dropped"), nil
			case status.IsInvalid:
				return failed(res, "extrinsic invalid"), nil
			case status.IsUsurped:
				return failed(res, "extrinsic usurped"), nil
			}
		}
	}
}

func failed(res chain.SubmissionResult, reason string) chain.SubmissionResult {
	res.Outcome = chain.Failed
	res.Err = &chain.DispatchError{Raw: reason}
	return res
}

// inspect finds the extrinsic in block and reads its success or failure
// event.
func (b *Backend) inspect(res chain.SubmissionResult, hash [32]byte, block chain.BlockHash, ok chain.Outcome) (chain.SubmissionResult, error) {
	res.BlockHash = block
	blk, err := b.api.RPC.Chain.GetBlock(types.Hash(block))
	if err != nil {
		return res, fmt.Errorf("get block %s: %w", block, err)
	}
	index := -1
	for i, x := range blk.Block.Extrinsics {
		h, err := extrinsicHash(x)
		if err == nil && h == hash {
			index = i
			break
		}
	}
	if index < 0 {
		return res, fmt.Errorf("extrinsic %s not found in block %s", res.ExtrinsicHash, block)
	}

	events, err := b.events.GetEvents(types.Hash(block))
	if err != nil {
		return res, fmt.Errorf("get events of %s: %w", block, err)
	}
	for _, ev := range events {
		if ev.Phase == nil || !ev.Phase.IsApplyExtrinsic || int(ev.Phase.AsApplyExtrinsic) != index {
			continue
		}
		switch ev.Name {
		case eventSuccess:
			res.Outcome = ok
			return res, nil
		case eventFailed:
			res.Outcome = chain.Failed
			if pallet, idx, found := moduleErrorIndex(ev.Fields); found {
				res.Err = b.meta.moduleError(pallet, idx)
			} else {
				res.Err = &chain.DispatchError{Raw: describeFields(ev.Fields)}
			}
			return res, nil
		}
	}
	return res, errors.New("no outcome event for extrinsic")
}

func (b *Backend) RPC(ctx context.Context, result any, method string, params ...any) error {
	return b.api.Client.Call(result, method, params...)
}

func (b *Backend) Close() error {
	b.api.Client.Close()
	return nil
}
