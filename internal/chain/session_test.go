package chain_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jungoai/jungo-cli/internal/chain"
	"github.com/jungoai/jungo-cli/internal/chain/chaintest"
	"github.com/jungoai/jungo-cli/pkg/balance"
)

const (
	alice = "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"
	bob   = "5FHneW46xGXgs5mUiveU4sbTyGBzmstUspZC92UhjJM694ty"
)

func TestQuery_FoundMissingMalformed(t *testing.T) {
	fake := chaintest.New()
	s := fake.Session()
	ctx := context.Background()

	fake.SetStorage(chain.ModuleSubtensor, "Burn", types.NewU64(1_000_000_000), types.NewU16(1))
	fake.SetRaw(chain.BlockHash{}, chain.StorageKey{Module: chain.ModuleSubtensor, Item: "Burn", Args: [][]byte{{2, 0}}}.String(), []byte{1})

	r, err := chain.Query[types.U64](ctx, s, chain.BlockHash{}, chain.ModuleSubtensor, "Burn", types.NewU16(1))
	require.NoError(t, err)
	assert.Equal(t, chain.Found, r.Lookup)
	assert.EqualValues(t, 1_000_000_000, r.Value)

	r, err = chain.Query[types.U64](ctx, s, chain.BlockHash{}, chain.ModuleSubtensor, "Burn", types.NewU16(2))
	require.NoError(t, err)
	assert.Equal(t, chain.Malformed, r.Lookup)
	assert.Error(t, r.Err)
	assert.EqualValues(t, 7, r.Or(7))

	r, err = chain.Query[types.U64](ctx, s, chain.BlockHash{}, chain.ModuleSubtensor, "Burn", types.NewU16(3))
	require.NoError(t, err)
	assert.Equal(t, chain.Missing, r.Lookup)
	assert.False(t, r.Found())
}

func TestQueryMultiple_KeyOrder(t *testing.T) {
	fake := chaintest.New()
	s := fake.Session()
	fake.SetBalance(alice, 100)
	fake.SetBalance(bob, 200)

	bals, err := s.Balances(context.Background(), []string{bob, alice, "5DAAnrj7VHTznn2AWBemMuyBwZWs6FNFjdyVXUeYum3PTXFy"}, chain.BlockHash{})
	require.NoError(t, err)
	assert.Equal(t, uint64(200), bals[bob].Rao())
	assert.Equal(t, uint64(100), bals[alice].Rao())
	assert.True(t, bals["5DAAnrj7VHTznn2AWBemMuyBwZWs6FNFjdyVXUeYum3PTXFy"].IsZero())
}

func TestQuery_AtBlock(t *testing.T) {
	fake := chaintest.New()
	s := fake.Session()
	ctx := context.Background()
	old := chaintest.HashOf(chaintest.DefaultHead - 1200)

	fake.SetBalance(alice, 500)
	fake.SetBalanceAt(old, alice, 300)

	now, err := s.Balance(ctx, alice, chain.BlockHash{})
	require.NoError(t, err)
	then, err := s.Balance(ctx, alice, old)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), now.Rao())
	assert.Equal(t, uint64(300), then.Rao())
}

func TestBalance_InvalidAddress(t *testing.T) {
	s := chaintest.New().Session()
	_, err := s.Balance(context.Background(), "not-an-address", chain.BlockHash{})
	assert.Error(t, err)
}

func TestExistentialDeposit(t *testing.T) {
	fake := chaintest.New()
	fake.SetConstant(chain.ModuleBalances, "ExistentialDeposit", types.NewU64(500))
	ed, err := fake.Session().ExistentialDeposit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(500), ed.Rao())
}

func TestPaymentInfo(t *testing.T) {
	fake := chaintest.New()
	s := fake.Session()
	call := chain.NewCall(chain.ModuleBalances, "transfer_allow_death")

	fake.SetFee(12_345)
	fee := s.PaymentInfo(context.Background(), call, alice)
	assert.True(t, fee.Estimated)
	assert.Equal(t, uint64(12_345), fee.Amount.Rao())

	fake.SetFeeFunc(func(chain.Call) (balance.Balance, error) {
		return balance.Zero, errors.New("runtime api unavailable")
	})
	fee = s.PaymentInfo(context.Background(), call, alice)
	assert.False(t, fee.Estimated)
	assert.Equal(t, chain.DefaultFee, fee.Amount)
	assert.Error(t, fee.Err)
	assert.Equal(t, uint64(20_000_000), fee.Amount.Rao())
}

func TestComposeCall_EncodeError(t *testing.T) {
	fake := chaintest.New()
	fake.SetEncodeError("SubtensorModule.add_stake", errors.New("bad args"))

	_, err := fake.Session().ComposeCall(context.Background(), chain.ModuleSubtensor, "add_stake")
	assert.ErrorContains(t, err, "compose SubtensorModule.add_stake")
}

func aliceKey(t *testing.T) signature.KeyringPair {
	t.Helper()
	kp, err := signature.KeyringPairFromSecret("//Alice", 42)
	require.NoError(t, err)
	return kp
}

func TestSubmit_WaitPolicy(t *testing.T) {
	fake := chaintest.New()
	s := fake.Session()
	ctx := context.Background()
	call := chain.NewCall(chain.ModuleSubtensor, "become_delegate")

	res, err := s.SignAndSubmit(ctx, call, aliceKey(t), chain.WaitPolicy{})
	require.NoError(t, err)
	assert.Equal(t, chain.NotAwaited, res.Outcome)
	assert.True(t, res.Success())

	res, err = s.SignAndSubmit(ctx, call, aliceKey(t), chain.WaitPolicy{Inclusion: true})
	require.NoError(t, err)
	assert.Equal(t, chain.Included, res.Outcome)

	res, err = s.SignAndSubmit(ctx, call, aliceKey(t), chain.WaitPolicy{Finalization: true})
	require.NoError(t, err)
	assert.Equal(t, chain.Finalized, res.Outcome)

	require.Len(t, fake.Submitted(), 3)
	assert.Equal(t, alice, fake.Submitted()[0].Signer)
}

func TestSubmit_Failure(t *testing.T) {
	fake := chaintest.New()
	fake.OnSubmit(chaintest.Failure(chain.ModuleSubtensor, "NotEnoughBalanceToStake", "The caller does not have enough balance."))

	res, err := fake.Session().SignAndSubmit(context.Background(), chain.NewCall(chain.ModuleSubtensor, "add_stake"), aliceKey(t), chain.WaitPolicy{Inclusion: true})
	require.NoError(t, err)
	assert.Equal(t, chain.Failed, res.Outcome)
	assert.False(t, res.Success())
	assert.Equal(t,
		"Subtensor returned `NotEnoughBalanceToStake (SubtensorModule)` error. This means: `The caller does not have enough balance.`",
		res.Err.Error())
}

func TestSubmit_Timeout(t *testing.T) {
	fake := chaintest.New()
	fake.OnSubmit(func(chain.Extrinsic, chain.WaitPolicy) (chain.SubmissionResult, error) {
		return chain.SubmissionResult{}, context.DeadlineExceeded
	})
	_, err := fake.Session().SignAndSubmit(context.Background(), chain.NewCall(chain.ModuleSubtensor, "add_stake"), aliceKey(t),
		chain.WaitPolicy{Inclusion: true, Timeout: time.Second})
	assert.ErrorIs(t, err, chain.ErrTimeout)
}

func TestUse_ClosesOnError(t *testing.T) {
	fake := chaintest.New()
	boom := errors.New("boom")
	err := chain.Use(context.Background(), fake.Dialer(), "fake://node", func(*chain.Session) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.True(t, fake.Closed())
}

func TestUse_ClosesOnPanic(t *testing.T) {
	fake := chaintest.New()
	assert.Panics(t, func() {
		_ = chain.Use(context.Background(), fake.Dialer(), "fake://node", func(*chain.Session) error {
			panic("boom")
		})
	})
	assert.True(t, fake.Closed())
}

func TestDispatchError_Message(t *testing.T) {
	tests := []struct {
		err  *chain.DispatchError
		want string
	}{
		{&chain.DispatchError{Module: "Balances", Name: "InsufficientBalance", Docs: []string{"Balance too low."}},
			"Subtensor returned `InsufficientBalance (Balances)` error. This means: `Balance too low.`"},
		{&chain.DispatchError{Module: "Balances", Name: "Other"},
			"Subtensor returned `Other (Balances)` error. This means: `no description available`"},
		{&chain.DispatchError{Raw: "BadOrigin"}, "BadOrigin"},
		{&chain.DispatchError{}, "extrinsic failed"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Error())
	}
}

func TestHashFromHex(t *testing.T) {
	h := chaintest.HashOf(42)
	got, err := chain.HashFromHex(h.Hex())
	require.NoError(t, err)
	assert.Equal(t, h, got)

	_, err = chain.HashFromHex("0x1234")
	assert.Error(t, err)
	assert.True(t, chain.BlockHash{}.IsZero())
}
