package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"

	"github.com/jungoai/jungo-cli/pkg/balance"
)

// Custom delegate-info RPC methods.
const (
	rpcGetDelegate  = "delegateInfo_getDelegate"
	rpcGetDelegates = "delegateInfo_getDelegates"
	rpcGetDelegated = "delegateInfo_getDelegated"
)

// MaxTakeU16 is the u16 scale of a take of 1.0.
const MaxTakeU16 = 65535

type nominatorSCALE struct {
	Nominator types.AccountID
	Stake     types.UCompact
}

type delegateInfoSCALE struct {
	Delegate         types.AccountID
	Take             types.UCompact
	Nominators       []nominatorSCALE
	Owner            types.AccountID
	Registrations    []types.UCompact
	ValidatorPermits []types.UCompact
	ReturnPer1000    types.UCompact
	TotalDailyReturn types.UCompact
}

type delegatedSCALE struct {
	Info  delegateInfoSCALE
	Stake types.UCompact
}

// Nominator is one staker on a delegate.
type Nominator struct {
	Address string
	Stake   balance.Balance
}

// DelegateInfo describes a delegate hotkey.
type DelegateInfo struct {
	Hotkey           string
	Owner            string
	TakeU16          uint16
	Nominators       []Nominator
	TotalStake       balance.Balance
	Registrations    []uint16
	ValidatorPermits []uint16
	ReturnPer1000    balance.Balance
	TotalDailyReturn balance.Balance
}

// Take returns the take as a fraction in [0, 1].
func (d DelegateInfo) Take() float64 {
	return float64(d.TakeU16) / MaxTakeU16
}

// StakeOf returns the stake nominator holds on the delegate.
func (d DelegateInfo) StakeOf(nominator string) balance.Balance {
	for _, n := range d.Nominators {
		if n.Address == nominator {
			return n.Stake
		}
	}
	return balance.Zero
}

// DelegatedInfo is a delegate together with the caller's stake on it.
type DelegatedInfo struct {
	DelegateInfo
	Stake balance.Balance
}

func compactU64(c types.UCompact) uint64 {
	b := big.Int(c)
	return b.Uint64()
}

func compactsU16(cs []types.UCompact) []uint16 {
	out := make([]uint16, len(cs))
	for i, c := range cs {
		out[i] = uint16(compactU64(c))
	}
	return out
}

func (d delegateInfoSCALE) info() DelegateInfo {
	out := DelegateInfo{
		Hotkey:           Address(d.Delegate),
		Owner:            Address(d.Owner),
		TakeU16:          uint16(compactU64(d.Take)),
		Registrations:    compactsU16(d.Registrations),
		ValidatorPermits: compactsU16(d.ValidatorPermits),
		ReturnPer1000:    balance.FromRao(compactU64(d.ReturnPer1000)),
		TotalDailyReturn: balance.FromRao(compactU64(d.TotalDailyReturn)),
	}
	var total uint64
	for _, n := range d.Nominators {
		stake := compactU64(n.Stake)
		total += stake
		out.Nominators = append(out.Nominators, Nominator{
			Address: Address(n.Nominator),
			Stake:   balance.FromRao(stake),
		})
	}
	out.TotalStake = balance.FromRao(total)
	return out
}

// The delegate-info RPCs return SCALE bytes as a JSON array of ints.
func bytesFromInts(ints []int) ([]byte, error) {
	out := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("byte %d out of range: %d", i, v)
		}
		out[i] = byte(v)
	}
	return out, nil
}

func intsFromBytes(b []byte) []int {
	out := make([]int, len(b))
	for i, v := range b {
		out[i] = int(v)
	}
	return out
}

func blockParams(at BlockHash, params ...any) []any {
	if !at.IsZero() {
		params = append(params, at.Hex())
	}
	return params
}

// DecodeDelegateInfo decodes one SCALE-encoded DelegateInfo.
func DecodeDelegateInfo(data []byte) (DelegateInfo, error) {
	var d delegateInfoSCALE
	if err := codec.Decode(data, &d); err != nil {
		return DelegateInfo{}, fmt.Errorf("decode delegate info: %w", err)
	}
	return d.info(), nil
}

// EncodeDelegateInfo is the inverse of DecodeDelegateInfo.
func EncodeDelegateInfo(d DelegateInfo) ([]byte, error) {
	return codec.Encode(toSCALE(d))
}

// EncodeDelegateInfos SCALE-encodes a delegate list.
func EncodeDelegateInfos(ds []DelegateInfo) ([]byte, error) {
	out := make([]delegateInfoSCALE, len(ds))
	for i, d := range ds {
		out[i] = toSCALE(d)
	}
	return codec.Encode(out)
}

// EncodeDelegated SCALE-encodes a delegated list.
func EncodeDelegated(ds []DelegatedInfo) ([]byte, error) {
	out := make([]delegatedSCALE, len(ds))
	for i, d := range ds {
		out[i] = delegatedSCALE{Info: toSCALE(d.DelegateInfo), Stake: types.NewUCompactFromUInt(d.Stake.Rao())}
	}
	return codec.Encode(out)
}

func toSCALE(d DelegateInfo) delegateInfoSCALE {
	mustID := func(addr string) types.AccountID {
		id, _ := AccountID(addr)
		return id
	}
	compacts := func(vs []uint16) []types.UCompact {
		out := make([]types.UCompact, len(vs))
		for i, v := range vs {
			out[i] = types.NewUCompactFromUInt(uint64(v))
		}
		return out
	}
	s := delegateInfoSCALE{
		Delegate:         mustID(d.Hotkey),
		Take:             types.NewUCompactFromUInt(uint64(d.TakeU16)),
		Owner:            mustID(d.Owner),
		Registrations:    compacts(d.Registrations),
		ValidatorPermits: compacts(d.ValidatorPermits),
		ReturnPer1000:    types.NewUCompactFromUInt(d.ReturnPer1000.Rao()),
		TotalDailyReturn: types.NewUCompactFromUInt(d.TotalDailyReturn.Rao()),
	}
	for _, n := range d.Nominators {
		s.Nominators = append(s.Nominators, nominatorSCALE{
			Nominator: mustID(n.Address),
			Stake:     types.NewUCompactFromUInt(n.Stake.Rao()),
		})
	}
	return s
}

func (s *Session) rpcBytes(ctx context.Context, method string, params ...any) ([]byte, error) {
	var ints []int
	if err := s.RPC(ctx, &ints, method, params...); err != nil {
		return nil, err
	}
	return bytesFromInts(ints)
}

// Delegate returns the delegate info of hotkey, if it is a delegate.
func (s *Session) Delegate(ctx context.Context, hotkey string, at BlockHash) (DelegateInfo, bool, error) {
	id, err := AccountID(hotkey)
	if err != nil {
		return DelegateInfo{}, false, err
	}
	data, err := s.rpcBytes(ctx, rpcGetDelegate, blockParams(at, intsFromBytes(id[:]))...)
	if err != nil || len(data) == 0 {
		return DelegateInfo{}, false, err
	}
	d, err := DecodeDelegateInfo(data)
	if err != nil {
		return DelegateInfo{}, false, err
	}
	return d, true, nil
}

// Delegates returns every delegate at block at.
func (s *Session) Delegates(ctx context.Context, at BlockHash) ([]DelegateInfo, error) {
	data, err := s.rpcBytes(ctx, rpcGetDelegates, blockParams(at)...)
	if err != nil || len(data) == 0 {
		return nil, err
	}
	var ds []delegateInfoSCALE
	if err := codec.Decode(data, &ds); err != nil {
		return nil, fmt.Errorf("decode delegates: %w", err)
	}
	out := make([]DelegateInfo, len(ds))
	for i, d := range ds {
		out[i] = d.info()
	}
	return out, nil
}

// Delegated returns the delegates coldkey has stake on.
func (s *Session) Delegated(ctx context.Context, coldkey string, at BlockHash) ([]DelegatedInfo, error) {
	id, err := AccountID(coldkey)
	if err != nil {
		return nil, err
	}
	data, err := s.rpcBytes(ctx, rpcGetDelegated, blockParams(at, intsFromBytes(id[:]))...)
	if err != nil || len(data) == 0 {
		return nil, err
	}
	var ds []delegatedSCALE
	if err := codec.Decode(data, &ds); err != nil {
		return nil, fmt.Errorf("decode delegated: %w", err)
	}
	out := make([]DelegatedInfo, len(ds))
	for i, d := range ds {
		out[i] = DelegatedInfo{DelegateInfo: d.Info.info(), Stake: balance.FromRao(compactU64(d.Stake))}
	}
	return out, nil
}
