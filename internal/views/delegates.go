package views

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/jungoai/jungo-cli/internal/chain"
	"github.com/jungoai/jungo-cli/internal/log"
	"github.com/jungoai/jungo-cli/internal/registry"
	"github.com/jungoai/jungo-cli/pkg/balance"
)

// HistoryBlocks is how far back the stake change of the delegates view
// looks: 1200 blocks of 12s, four hours.
const HistoryBlocks = 1200

// DelegateShare is the share of daily return the delegate keeps, used for
// the delegate's own 24h return column.
const DelegateShare = 0.18

// Delegate is one row of the delegates listing.
type Delegate struct {
	Name        string
	URL         string
	Description string
	Hotkey      string
	// Nominators counts nominators with a non-zero stake.
	Nominators int
	OwnerStake balance.Balance
	TotalStake balance.Balance
	// Change is the percent change of TotalStake over HistoryBlocks, nil
	// when the delegate has no history.
	Change           *float64
	Registrations    []uint16
	ValidatorPermits []uint16
	Take             float64
	// NominatorReturn is the daily return per 1000 τ staked, in τ.
	NominatorReturn float64
	// DelegateReturn is the delegate's daily cut, in τ.
	DelegateReturn float64
}

// DelegatesView lists every delegate, largest total stake first.
type DelegatesView struct {
	Block     uint64
	Delegates []Delegate
	Warnings  []string
}

// Delegates lists the delegates on the chain with their 4h stake change.
// The history read is best effort.
func Delegates(ctx context.Context, s *chain.Session, dir registry.Source) (DelegatesView, error) {
	var view DelegatesView

	var (
		at    chain.BlockHash
		names registry.Directory
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		at, err = s.ChainHead(gctx)
		return err
	})
	g.Go(func() error {
		names = dir.Lookup(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return view, err
	}

	number, err := s.BlockNumber(ctx, at)
	if err != nil {
		return view, err
	}
	view.Block = number
	current, err := s.Delegates(ctx, at)
	if err != nil {
		return view, err
	}

	prev, err := delegatesAt(ctx, s, historicBlock(number))
	if err != nil {
		log.Chain.Warn().Err(err).Uint64("block", number).Msg("delegate history unavailable")
		view.Warnings = append(view.Warnings, "Could not fetch delegates history")
	}
	if len(names) == 0 {
		view.Warnings = append(view.Warnings, directoryWarning)
	}

	sortByStake(current)
	prevStake := make(map[string]balance.Balance, len(prev))
	for _, d := range prev {
		prevStake[d.Hotkey] = d.TotalStake
	}
	for _, d := range current {
		row := delegateRow(d, names)
		if before, ok := prevStake[d.Hotkey]; ok {
			c := StakeChange(before, d.TotalStake)
			row.Change = &c
		}
		view.Delegates = append(view.Delegates, row)
	}
	return view, nil
}

func historicBlock(n uint64) uint64 {
	if n < HistoryBlocks {
		return 0
	}
	return n - HistoryBlocks
}

func delegatesAt(ctx context.Context, s *chain.Session, n uint64) ([]chain.DelegateInfo, error) {
	h, err := s.BlockHash(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("hash of block %d: %w", n, err)
	}
	return s.Delegates(ctx, h)
}

func sortByStake(ds []chain.DelegateInfo) {
	sort.SliceStable(ds, func(i, j int) bool {
		return ds[j].TotalStake.LessThan(ds[i].TotalStake)
	})
}

// StakeChange is the percent change from before to now. A delegate that
// had no stake counts as a 100% increase.
func StakeChange(before, now balance.Balance) float64 {
	if before.IsZero() {
		return 100
	}
	return 100 * (now.TaoFloat() - before.TaoFloat()) / before.TaoFloat()
}

// ReturnPer1000 is the daily return per 1000 τ of stake.
func ReturnPer1000(daily, total balance.Balance) float64 {
	return daily.TaoFloat() * 1000 / (0.001 + total.TaoFloat())
}

func delegateRow(d chain.DelegateInfo, names registry.Directory) Delegate {
	details := names[d.Hotkey]
	row := Delegate{
		Name:             details.Name,
		URL:              details.URL,
		Description:      details.Description,
		Hotkey:           d.Hotkey,
		OwnerStake:       d.StakeOf(d.Owner),
		TotalStake:       d.TotalStake,
		Registrations:    d.Registrations,
		ValidatorPermits: d.ValidatorPermits,
		Take:             d.Take(),
		NominatorReturn:  ReturnPer1000(d.TotalDailyReturn, d.TotalStake),
		DelegateReturn:   d.TotalDailyReturn.TaoFloat() * DelegateShare,
	}
	for _, n := range d.Nominators {
		if !n.Stake.IsZero() {
			row.Nominators++
		}
	}
	return row
}

// WalletRef names a coldkey whose delegations are listed.
type WalletRef struct {
	Name    string
	Coldkey string
}

// Delegation is one delegate a wallet has stake on.
type Delegation struct {
	Wallet string
	Delegate
	// Staked is the wallet's stake on the delegate.
	Staked balance.Balance
	// Daily is the wallet's share of the delegate's daily return, in τ.
	Daily float64
	// AllNominators counts every nominator, including zero stakes.
	AllNominators int
}

// MyDelegatesView lists the delegations of one or more wallets.
type MyDelegatesView struct {
	Delegations    []Delegation
	TotalDelegated balance.Balance
	Warnings       []string
}

// MyDelegates lists the delegates each wallet's coldkey has stake on.
func MyDelegates(ctx context.Context, s *chain.Session, dir registry.Source, wallets []WalletRef) (MyDelegatesView, error) {
	var view MyDelegatesView
	at, err := s.ChainHead(ctx)
	if err != nil {
		return view, err
	}

	delegated := make([][]chain.DelegatedInfo, len(wallets))
	var names registry.Directory
	g, gctx := errgroup.WithContext(ctx)
	for i, w := range wallets {
		g.Go(func() (err error) {
			delegated[i], err = s.Delegated(gctx, w.Coldkey, at)
			if err != nil {
				return fmt.Errorf("wallet %s: %w", w.Name, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		names = dir.Lookup(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return view, err
	}
	if len(names) == 0 {
		view.Warnings = append(view.Warnings, directoryWarning)
	}

	var total []balance.Balance
	for i, w := range wallets {
		ds := delegated[i]
		sort.SliceStable(ds, func(a, b int) bool {
			return ds[b].TotalStake.LessThan(ds[a].TotalStake)
		})
		for _, d := range ds {
			staked := d.StakeOf(w.Coldkey)
			if staked.IsZero() {
				staked = d.Stake
			}
			if staked.IsZero() {
				continue
			}
			total = append(total, staked)
			var daily float64
			if !d.TotalStake.IsZero() {
				daily = d.TotalDailyReturn.TaoFloat() * staked.TaoFloat() / d.TotalStake.TaoFloat()
			}
			view.Delegations = append(view.Delegations, Delegation{
				Wallet:        w.Name,
				Delegate:      delegateRow(d.DelegateInfo, names),
				Staked:        staked,
				Daily:         daily,
				AllNominators: len(d.Nominators),
			})
		}
	}
	view.TotalDelegated, err = balance.Sum(total...)
	if err != nil {
		return view, err
	}
	return view, nil
}
