package chain_test

import (
	"context"
	"testing"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jungoai/jungo-cli/internal/chain"
	"github.com/jungoai/jungo-cli/internal/chain/chaintest"
	"github.com/jungoai/jungo-cli/pkg/balance"
)

func mustID(t *testing.T, addr string) types.AccountID {
	t.Helper()
	id, err := chain.AccountID(addr)
	require.NoError(t, err)
	return id
}

func TestDelegateTake(t *testing.T) {
	fake := chaintest.New()
	s := fake.Session()
	ctx := context.Background()
	fake.SetStorage(chain.ModuleSubtensor, "Delegates", types.NewU16(11_796), mustID(t, alice))

	take, ok, err := s.DelegateTake(ctx, alice, chain.BlockHash{})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint16(11_796), take)

	isDelegate, err := s.IsHotkeyDelegate(ctx, bob, chain.BlockHash{})
	require.NoError(t, err)
	assert.False(t, isDelegate)
}

func TestHotkeyOwnerAndStake(t *testing.T) {
	fake := chaintest.New()
	s := fake.Session()
	ctx := context.Background()
	fake.SetStorage(chain.ModuleSubtensor, "Owner", mustID(t, alice), mustID(t, bob))
	fake.SetStorage(chain.ModuleSubtensor, "Stake", types.NewU64(4_000), mustID(t, bob), mustID(t, alice))

	owner, ok, err := s.HotkeyOwner(ctx, bob, chain.BlockHash{})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, alice, owner)

	stake, err := s.Stake(ctx, bob, alice, chain.BlockHash{})
	require.NoError(t, err)
	assert.Equal(t, uint64(4_000), stake.Rao())

	stake, err = s.Stake(ctx, alice, bob, chain.BlockHash{})
	require.NoError(t, err)
	assert.True(t, stake.IsZero())
}

func TestHotkeysAndWeights(t *testing.T) {
	fake := chaintest.New()
	s := fake.Session()
	ctx := context.Background()
	root := types.NewU16(chain.RootNetuid)
	fake.SetStorage(chain.ModuleSubtensor, "SubnetworkN", types.NewU16(3), root)
	fake.SetStorage(chain.ModuleSubtensor, "Keys", mustID(t, alice), root, types.NewU16(0))
	fake.SetStorage(chain.ModuleSubtensor, "Keys", mustID(t, bob), root, types.NewU16(2))
	fake.SetStorage(chain.ModuleSubtensor, "Weights", []chain.WeightEntry{
		{Dest: 1, Weight: 100}, {Dest: 2, Weight: 300},
	}, root, types.NewU16(0))

	keys, err := s.Hotkeys(ctx, chain.RootNetuid, chain.BlockHash{})
	require.NoError(t, err)
	assert.Equal(t, []string{alice, "", bob}, keys)

	m, err := s.WeightMatrix(ctx, chain.RootNetuid, chain.BlockHash{})
	require.NoError(t, err)
	require.Len(t, m, 1)
	assert.Equal(t, []chain.WeightEntry{{Dest: 1, Weight: 100}, {Dest: 2, Weight: 300}}, m[0])

	w, err := s.Weights(ctx, chain.RootNetuid, 1, chain.BlockHash{})
	require.NoError(t, err)
	assert.Empty(t, w)
}

func TestSenateAndProposals(t *testing.T) {
	fake := chaintest.New()
	s := fake.Session()
	ctx := context.Background()
	proposal := chaintest.HashOf(7)

	fake.SetStorage(chain.ModuleSenate, "Members", []types.AccountID{mustID(t, alice)})
	fake.SetStorage(chain.ModuleTriumvirate, "Proposals", []types.H256{types.H256(proposal)})
	fake.SetStorage(chain.ModuleTriumvirate, "Voting", chain.Votes{
		Index:     3,
		Threshold: 2,
		Ayes:      []types.AccountID{mustID(t, alice)},
		End:       12_000,
	}, types.H256(proposal))

	member, err := s.IsSenateMember(ctx, alice, chain.BlockHash{})
	require.NoError(t, err)
	assert.True(t, member)
	member, err = s.IsSenateMember(ctx, bob, chain.BlockHash{})
	require.NoError(t, err)
	assert.False(t, member)

	hashes, err := s.ProposalHashes(ctx, chain.BlockHash{})
	require.NoError(t, err)
	assert.Equal(t, []chain.BlockHash{proposal}, hashes)

	votes, ok, err := s.ProposalVotes(ctx, proposal, chain.BlockHash{})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint32(3), votes.Index)
	assert.Equal(t, uint32(2), votes.Threshold)

	aye, voted := votes.HasVoted(alice)
	assert.True(t, voted)
	assert.True(t, aye)
	_, voted = votes.HasVoted(bob)
	assert.False(t, voted)

	_, ok, err = s.ProposalVotes(ctx, chaintest.HashOf(8), chain.BlockHash{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDelegates_RPC(t *testing.T) {
	fake := chaintest.New()
	s := fake.Session()
	ctx := context.Background()
	d := chain.DelegateInfo{
		Hotkey:  alice,
		Owner:   bob,
		TakeU16: 11_796,
		Nominators: []chain.Nominator{
			{Address: bob, Stake: balance.FromRao(1_000)},
			{Address: alice, Stake: balance.FromRao(500)},
		},
		Registrations:    []uint16{0, 1},
		ValidatorPermits: []uint16{1},
		ReturnPer1000:    balance.FromRao(3),
		TotalDailyReturn: balance.FromRao(99),
	}
	one, err := chain.EncodeDelegateInfo(d)
	require.NoError(t, err)
	all, err := chain.EncodeDelegateInfos([]chain.DelegateInfo{d})
	require.NoError(t, err)

	fake.HandleRPC("delegateInfo_getDelegate", func(params []any) (any, error) {
		return chaintest.BytesAsInts(one), nil
	})
	fake.HandleRPC("delegateInfo_getDelegates", func([]any) (any, error) {
		return chaintest.BytesAsInts(all), nil
	})

	got, ok, err := s.Delegate(ctx, alice, chain.BlockHash{})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, bob, got.Owner)
	assert.Equal(t, uint64(1_500), got.TotalStake.Rao())
	assert.Equal(t, uint64(1_000), got.StakeOf(bob).Rao())
	assert.InDelta(t, 0.18, got.Take(), 0.0001)

	list, err := s.Delegates(ctx, chaintest.HashOf(1))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []uint16{0, 1}, list[0].Registrations)
}

func TestDelegate_NotADelegate(t *testing.T) {
	fake := chaintest.New()
	fake.HandleRPC("delegateInfo_getDelegate", func([]any) (any, error) {
		return []int{}, nil
	})
	_, ok, err := fake.Session().Delegate(context.Background(), alice, chain.BlockHash{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDelegated_RPC(t *testing.T) {
	fake := chaintest.New()
	d := chain.DelegatedInfo{
		DelegateInfo: chain.DelegateInfo{Hotkey: bob, Owner: bob},
		Stake:        balance.FromRao(777),
	}
	enc, err := chain.EncodeDelegated([]chain.DelegatedInfo{d})
	require.NoError(t, err)
	fake.HandleRPC("delegateInfo_getDelegated", func([]any) (any, error) {
		return chaintest.BytesAsInts(enc), nil
	})

	got, err := fake.Session().Delegated(context.Background(), alice, chain.BlockHash{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, bob, got[0].Hotkey)
	assert.Equal(t, uint64(777), got[0].Stake.Rao())
}
