package flows

import (
	"context"
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"golang.org/x/sync/errgroup"

	"github.com/jungoai/jungo-cli/internal/chain"
	"github.com/jungoai/jungo-cli/pkg/balance"
)

// TransferRequest moves Amount from the wallet's coldkey to Dest.
type TransferRequest struct {
	Dest   string
	Amount balance.Balance
	// KeepAlive requires the sender to retain the existential deposit.
	KeepAlive bool
}

// TransferQuote is the balance check of a transfer.
type TransferQuote struct {
	Balance            balance.Balance
	Fee                chain.Fee
	ExistentialDeposit balance.Balance
	Required           balance.Balance
}

// Sufficient reports whether the balance covers amount, fee and deposit.
func (q TransferQuote) Sufficient() bool {
	return !q.Balance.LessThan(q.Required)
}

// RequiredBalance is amount + fee + existential deposit, with the deposit
// waived when keepAlive is false.
func RequiredBalance(amount, fee, ed balance.Balance, keepAlive bool) (balance.Balance, error) {
	if !keepAlive {
		ed = balance.Zero
	}
	return balance.Sum(amount, fee, ed)
}

func transferCall(ctx context.Context, s *chain.Session, req TransferRequest) (chain.Call, error) {
	id, err := chain.AccountID(req.Dest)
	if err != nil {
		return chain.Call{}, err
	}
	return s.ComposeCall(ctx, chain.ModuleBalances, "transfer_allow_death",
		chain.Arg{Name: "dest", Value: types.MultiAddress{IsID: true, AsID: id}},
		chain.Arg{Name: "value", Value: types.NewUCompactFromUInt(req.Amount.Rao())},
	)
}

// Transfer sends a balance transfer.
func Transfer(ctx context.Context, env Env, req TransferRequest) error {
	if err := validAddress(req.Dest); err != nil {
		env.Sink.Error("Invalid destination address: %s", req.Dest)
		return err
	}
	from, err := env.coldkeyAddress()
	if err != nil {
		return err
	}
	call, err := transferCall(ctx, env.Session, req)
	if err != nil {
		return err
	}

	at, err := env.Session.ChainHead(ctx)
	if err != nil {
		return err
	}
	var q TransferQuote
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		q.Balance, err = env.Session.Balance(gctx, from, at)
		return err
	})
	g.Go(func() (err error) {
		q.ExistentialDeposit, err = env.Session.ExistentialDeposit(gctx)
		return err
	})
	g.Go(func() error {
		q.Fee = env.Session.PaymentInfo(gctx, call, from)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	if q.Fee.Err != nil {
		env.Sink.Warn("Failed to get payment info: %v\n  Defaulting to default transfer fee: %s", q.Fee.Err, q.Fee.Amount)
	}

	q.Required, err = RequiredBalance(req.Amount, q.Fee.Amount, q.ExistentialDeposit, req.KeepAlive)
	if err != nil || !q.Sufficient() {
		env.Sink.Error("Not enough balance:\n  balance: %s\n  amount: %s\n  for fee: %s", q.Balance, req.Amount, q.Fee.Amount)
		return fmt.Errorf("%w: have %s, need %s", ErrInsufficientBalance, q.Balance, q.Required)
	}

	if err := env.confirm("Do you want to transfer:\n  amount: %s\n  from: %s:%s\n  to: %s\n  for fee: %s",
		req.Amount, env.Wallet.Name(), from, req.Dest, q.Fee.Amount); err != nil {
		return err
	}

	res, err := env.submit(ctx, call)
	if err != nil {
		return err
	}
	if res.Outcome != chain.NotAwaited {
		env.Sink.Success("Block Hash: %s", res.BlockHash)
		if env.Explorer != "" {
			env.Sink.Success("Explorer Link: %s", fmt.Sprintf(env.Explorer, res.BlockHash))
		}
	}

	after, err := env.Session.Balance(ctx, from, chain.BlockHash{})
	if err != nil {
		return err
	}
	env.Sink.Info("Balance:\n  %s → %s", q.Balance, after)
	return nil
}
