package chain

import (
	"context"
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"

	"github.com/jungoai/jungo-cli/pkg/balance"
	"github.com/jungoai/jungo-cli/pkg/ss58"
)

// Runtime module names.
const (
	ModuleSubtensor   = "SubtensorModule"
	ModuleBalances    = "Balances"
	ModuleSystem      = "System"
	ModuleSenate      = "SenateMembers"
	ModuleTriumvirate = "Triumvirate"
)

// RootNetuid is the root network.
const RootNetuid uint16 = 0

// AccountID converts an SS58 address or hex public key to an account id.
func AccountID(addr string) (types.AccountID, error) {
	var id types.AccountID
	pub, err := ss58.PublicKey(addr)
	if err != nil {
		return id, fmt.Errorf("invalid account %q: %w", addr, err)
	}
	copy(id[:], pub)
	return id, nil
}

// Address returns the SS58 form of an account id.
func Address(id types.AccountID) string {
	return ss58.MustEncode(id[:])
}

// AccountData is the balance part of System.Account. The chain's Balance
// type is u64.
type AccountData struct {
	Free     types.U64
	Reserved types.U64
	Frozen   types.U64
}

// AccountInfo mirrors System.Account up to the balance data.
type AccountInfo struct {
	Nonce       types.U32
	Consumers   types.U32
	Providers   types.U32
	Sufficients types.U32
	Data        AccountData
}

// Balance returns the free balance of addr at block at.
func (s *Session) Balance(ctx context.Context, addr string, at BlockHash) (balance.Balance, error) {
	id, err := AccountID(addr)
	if err != nil {
		return balance.Zero, err
	}
	r, err := Query[AccountInfo](ctx, s, at, ModuleSystem, "Account", id)
	if err != nil {
		return balance.Zero, err
	}
	return balance.FromRao(uint64(r.Or(AccountInfo{}).Data.Free)), nil
}

// Balances returns the free balances of several addresses at one block.
func (s *Session) Balances(ctx context.Context, addrs []string, at BlockHash) (map[string]balance.Balance, error) {
	keys := make([][]any, len(addrs))
	for i, a := range addrs {
		id, err := AccountID(a)
		if err != nil {
			return nil, err
		}
		keys[i] = []any{id}
	}
	rs, err := QueryMultiple[AccountInfo](ctx, s, at, ModuleSystem, "Account", keys)
	if err != nil {
		return nil, err
	}
	out := make(map[string]balance.Balance, len(addrs))
	for i, r := range rs {
		out[addrs[i]] = balance.FromRao(uint64(r.Or(AccountInfo{}).Data.Free))
	}
	return out, nil
}

// ExistentialDeposit returns the minimum balance an account must keep.
func (s *Session) ExistentialDeposit(ctx context.Context) (balance.Balance, error) {
	ed, err := Constant[types.U64](ctx, s, ModuleBalances, "ExistentialDeposit")
	if err != nil {
		return balance.Zero, err
	}
	return balance.FromRao(uint64(ed)), nil
}

// SubnetExists reports whether netuid is a registered subnet.
func (s *Session) SubnetExists(ctx context.Context, netuid uint16, at BlockHash) (bool, error) {
	r, err := Query[types.Bool](ctx, s, at, ModuleSubtensor, "NetworksAdded", types.NewU16(netuid))
	if err != nil {
		return false, err
	}
	return bool(r.Or(false)), nil
}

// DelegateTake returns the hotkey's delegate take in u16 units, and
// whether the hotkey is a delegate at all.
func (s *Session) DelegateTake(ctx context.Context, hotkey string, at BlockHash) (uint16, bool, error) {
	id, err := AccountID(hotkey)
	if err != nil {
		return 0, false, err
	}
	r, err := Query[types.U16](ctx, s, at, ModuleSubtensor, "Delegates", id)
	if err != nil {
		return 0, false, err
	}
	return uint16(r.Value), r.Found(), nil
}

// IsHotkeyDelegate reports whether hotkey has been nominated as a delegate.
func (s *Session) IsHotkeyDelegate(ctx context.Context, hotkey string, at BlockHash) (bool, error) {
	_, ok, err := s.DelegateTake(ctx, hotkey, at)
	return ok, err
}

// HotkeyOwner returns the coldkey that owns hotkey, if any.
func (s *Session) HotkeyOwner(ctx context.Context, hotkey string, at BlockHash) (string, bool, error) {
	id, err := AccountID(hotkey)
	if err != nil {
		return "", false, err
	}
	r, err := Query[types.AccountID](ctx, s, at, ModuleSubtensor, "Owner", id)
	if err != nil || !r.Found() {
		return "", false, err
	}
	return Address(r.Value), true, nil
}

// Stake returns the stake coldkey holds on hotkey.
func (s *Session) Stake(ctx context.Context, hotkey, coldkey string, at BlockHash) (balance.Balance, error) {
	hk, err := AccountID(hotkey)
	if err != nil {
		return balance.Zero, err
	}
	ck, err := AccountID(coldkey)
	if err != nil {
		return balance.Zero, err
	}
	r, err := Query[types.U64](ctx, s, at, ModuleSubtensor, "Stake", hk, ck)
	if err != nil {
		return balance.Zero, err
	}
	return balance.FromRao(uint64(r.Or(0))), nil
}

// TotalHotkeyStake returns the total stake on each hotkey.
func (s *Session) TotalHotkeyStake(ctx context.Context, hotkeys []string, at BlockHash) (map[string]balance.Balance, error) {
	keys := make([][]any, len(hotkeys))
	for i, hk := range hotkeys {
		id, err := AccountID(hk)
		if err != nil {
			return nil, err
		}
		keys[i] = []any{id}
	}
	rs, err := QueryMultiple[types.U64](ctx, s, at, ModuleSubtensor, "TotalHotkeyStake", keys)
	if err != nil {
		return nil, err
	}
	out := make(map[string]balance.Balance, len(hotkeys))
	for i, r := range rs {
		out[hotkeys[i]] = balance.FromRao(uint64(r.Or(0)))
	}
	return out, nil
}

// Burn returns the current recycle cost of registering on netuid.
func (s *Session) Burn(ctx context.Context, netuid uint16, at BlockHash) (balance.Balance, error) {
	r, err := Query[types.U64](ctx, s, at, ModuleSubtensor, "Burn", types.NewU16(netuid))
	if err != nil {
		return balance.Zero, err
	}
	return balance.FromRao(uint64(r.Or(0))), nil
}

// UID returns the hotkey's UID on netuid, if registered.
func (s *Session) UID(ctx context.Context, netuid uint16, hotkey string, at BlockHash) (uint16, bool, error) {
	id, err := AccountID(hotkey)
	if err != nil {
		return 0, false, err
	}
	r, err := Query[types.U16](ctx, s, at, ModuleSubtensor, "Uids", types.NewU16(netuid), id)
	if err != nil {
		return 0, false, err
	}
	return uint16(r.Value), r.Found(), nil
}

// SubnetworkN returns the number of UIDs on netuid.
func (s *Session) SubnetworkN(ctx context.Context, netuid uint16, at BlockHash) (uint16, error) {
	r, err := Query[types.U16](ctx, s, at, ModuleSubtensor, "SubnetworkN", types.NewU16(netuid))
	if err != nil {
		return 0, err
	}
	return uint16(r.Or(0)), nil
}

// TotalNetworks returns the number of subnets.
func (s *Session) TotalNetworks(ctx context.Context, at BlockHash) (uint16, error) {
	r, err := Query[types.U16](ctx, s, at, ModuleSubtensor, "TotalNetworks")
	if err != nil {
		return 0, err
	}
	return uint16(r.Or(0)), nil
}

// Hotkeys returns the hotkey of every UID on netuid, indexed by UID.
// Empty slots are "".
func (s *Session) Hotkeys(ctx context.Context, netuid uint16, at BlockHash) ([]string, error) {
	n, err := s.SubnetworkN(ctx, netuid, at)
	if err != nil {
		return nil, err
	}
	keys := make([][]any, n)
	for uid := range keys {
		keys[uid] = []any{types.NewU16(netuid), types.NewU16(uint16(uid))}
	}
	rs, err := QueryMultiple[types.AccountID](ctx, s, at, ModuleSubtensor, "Keys", keys)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(rs))
	for uid, r := range rs {
		if r.Found() {
			out[uid] = Address(r.Value)
		}
	}
	return out, nil
}

// WeightEntry is one (destination, weight) pair of a weight vector.
type WeightEntry struct {
	Dest   types.U16
	Weight types.U16
}

// Weights returns the weight vector set by uid on netuid.
func (s *Session) Weights(ctx context.Context, netuid, uid uint16, at BlockHash) ([]WeightEntry, error) {
	r, err := Query[[]WeightEntry](ctx, s, at, ModuleSubtensor, "Weights", types.NewU16(netuid), types.NewU16(uid))
	if err != nil {
		return nil, err
	}
	return r.Or(nil), nil
}

// WeightMatrix returns the weight vectors of every UID on netuid, keyed by
// UID. UIDs without weights are absent.
func (s *Session) WeightMatrix(ctx context.Context, netuid uint16, at BlockHash) (map[uint16][]WeightEntry, error) {
	n, err := s.SubnetworkN(ctx, netuid, at)
	if err != nil {
		return nil, err
	}
	keys := make([][]any, n)
	for uid := range keys {
		keys[uid] = []any{types.NewU16(netuid), types.NewU16(uint16(uid))}
	}
	rs, err := QueryMultiple[[]WeightEntry](ctx, s, at, ModuleSubtensor, "Weights", keys)
	if err != nil {
		return nil, err
	}
	out := make(map[uint16][]WeightEntry)
	for uid, r := range rs {
		if r.Found() {
			out[uint16(uid)] = r.Value
		}
	}
	return out, nil
}

// SenateMembers returns the addresses of the current senate.
func (s *Session) SenateMembers(ctx context.Context, at BlockHash) ([]string, error) {
	r, err := Query[[]types.AccountID](ctx, s, at, ModuleSenate, "Members")
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(r.Value))
	for _, id := range r.Or(nil) {
		out = append(out, Address(id))
	}
	return out, nil
}

// IsSenateMember reports whether hotkey sits on the senate.
func (s *Session) IsSenateMember(ctx context.Context, hotkey string, at BlockHash) (bool, error) {
	members, err := s.SenateMembers(ctx, at)
	if err != nil {
		return false, err
	}
	for _, m := range members {
		if m == hotkey {
			return true, nil
		}
	}
	return false, nil
}

// Votes mirrors Triumvirate.Voting.
type Votes struct {
	Index     types.U32
	Threshold types.U32
	Ayes      []types.AccountID
	Nays      []types.AccountID
	End       types.U32
}

// ProposalVotes is the decoded vote state of a proposal.
type ProposalVotes struct {
	Index     uint32
	Threshold uint32
	Ayes      []string
	Nays      []string
	End       uint32
}

// HasVoted reports whether addr voted aye (true, true), nay (false, true)
// or not at all (_, false).
func (v ProposalVotes) HasVoted(addr string) (aye bool, voted bool) {
	for _, a := range v.Ayes {
		if a == addr {
			return true, true
		}
	}
	for _, n := range v.Nays {
		if n == addr {
			return false, true
		}
	}
	return false, false
}

func toProposalVotes(v Votes) ProposalVotes {
	out := ProposalVotes{
		Index:     uint32(v.Index),
		Threshold: uint32(v.Threshold),
		End:       uint32(v.End),
	}
	for _, id := range v.Ayes {
		out.Ayes = append(out.Ayes, Address(id))
	}
	for _, id := range v.Nays {
		out.Nays = append(out.Nays, Address(id))
	}
	return out
}

// ProposalHashes returns the hashes of all open proposals.
func (s *Session) ProposalHashes(ctx context.Context, at BlockHash) ([]BlockHash, error) {
	r, err := Query[[]types.H256](ctx, s, at, ModuleTriumvirate, "Proposals")
	if err != nil {
		return nil, err
	}
	out := make([]BlockHash, 0, len(r.Value))
	for _, h := range r.Or(nil) {
		out = append(out, BlockHash(h))
	}
	return out, nil
}

// ProposalVotes returns the vote state of a proposal, if it exists.
func (s *Session) ProposalVotes(ctx context.Context, proposal BlockHash, at BlockHash) (ProposalVotes, bool, error) {
	r, err := Query[Votes](ctx, s, at, ModuleTriumvirate, "Voting", types.H256(proposal))
	if err != nil || !r.Found() {
		return ProposalVotes{}, false, err
	}
	return toProposalVotes(r.Value), true, nil
}

// ProposalCall returns the encoded call behind a proposal.
func (s *Session) ProposalCall(ctx context.Context, proposal BlockHash, at BlockHash) ([]byte, bool, error) {
	args, err := encodeParams([]any{types.H256(proposal)})
	if err != nil {
		return nil, false, err
	}
	raw, err := s.backend.Storage(ctx, StorageKey{Module: ModuleTriumvirate, Item: "ProposalOf", Args: args}, at)
	if err != nil {
		return nil, false, fmt.Errorf("query %s.ProposalOf: %w", ModuleTriumvirate, err)
	}
	return raw.Data, raw.Present, nil
}
