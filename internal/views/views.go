// Package views reads chain state into display rows. Every view pins its
// reads to a single block; internal/ui renders the rows.
package views

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/jungoai/jungo-cli/internal/chain"
	"github.com/jungoai/jungo-cli/internal/log"
	"github.com/jungoai/jungo-cli/internal/registry"
	"github.com/jungoai/jungo-cli/pkg/balance"
)

// ErrNoNeurons is returned by RootList when the root network is empty.
var ErrNoNeurons = errors.New("no neurons detected on the root network")

// directoryWarning is attached to views whose names come from an empty
// delegate directory.
const directoryWarning = "Could not get delegate info from the delegate directory."

// RootNeuron is one row of the root network listing.
type RootNeuron struct {
	UID     uint16
	Name    string
	Hotkey  string
	Stake   balance.Balance
	Senator bool
}

// RootList lists the neurons registered on the root network.
func RootList(ctx context.Context, s *chain.Session, dir registry.Source) ([]RootNeuron, error) {
	at, err := s.ChainHead(ctx)
	if err != nil {
		return nil, err
	}

	var (
		hotkeys []string
		senate  []string
		names   registry.Directory
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		hotkeys, err = s.Hotkeys(gctx, chain.RootNetuid, at)
		return err
	})
	g.Go(func() (err error) {
		senate, err = s.SenateMembers(gctx, at)
		return err
	})
	g.Go(func() error {
		names = dir.Lookup(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	present := make([]string, 0, len(hotkeys))
	for _, hk := range hotkeys {
		if hk != "" {
			present = append(present, hk)
		}
	}
	if len(present) == 0 {
		return nil, ErrNoNeurons
	}
	stakes, err := s.TotalHotkeyStake(ctx, present, at)
	if err != nil {
		return nil, err
	}

	members := make(map[string]bool, len(senate))
	for _, m := range senate {
		members[m] = true
	}
	rows := make([]RootNeuron, 0, len(present))
	for uid, hk := range hotkeys {
		if hk == "" {
			continue
		}
		rows = append(rows, RootNeuron{
			UID:     uint16(uid),
			Name:    names.Name(hk),
			Hotkey:  hk,
			Stake:   stakes[hk],
			Senator: members[hk],
		})
	}
	return rows, nil
}

// SenateMember is one row of the senate listing.
type SenateMember struct {
	Name    string
	Address string
}

// Senate lists the senate members.
func Senate(ctx context.Context, s *chain.Session, dir registry.Source) ([]SenateMember, error) {
	var (
		members []string
		names   registry.Directory
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		members, err = s.SenateMembers(gctx, chain.BlockHash{})
		return err
	})
	g.Go(func() error {
		names = dir.Lookup(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	rows := make([]SenateMember, len(members))
	for i, m := range members {
		rows[i] = SenateMember{Name: names.Name(m), Address: m}
	}
	return rows, nil
}

// Vote is one senator's vote on a proposal. Voter is the senator's
// directory name, or the address when unnamed.
type Vote struct {
	Voter string
	Aye   bool
}

// Proposal is one open senate proposal.
type Proposal struct {
	Hash      chain.BlockHash
	Threshold uint32
	Ayes      int
	Nays      int
	Votes     []Vote
	End       uint32
	// Call is the decoded call, or its hex when it cannot be decoded.
	Call string
}

// ProposalsView lists the open proposals.
type ProposalsView struct {
	SenateSize int
	Proposals  []Proposal
}

// Proposals lists the open senate proposals with their votes.
func Proposals(ctx context.Context, s *chain.Session, dir registry.Source) (ProposalsView, error) {
	var view ProposalsView
	at, err := s.ChainHead(ctx)
	if err != nil {
		return view, err
	}

	var (
		senate []string
		hashes []chain.BlockHash
		names  registry.Directory
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		senate, err = s.SenateMembers(gctx, at)
		return err
	})
	g.Go(func() (err error) {
		hashes, err = s.ProposalHashes(gctx, at)
		return err
	})
	g.Go(func() error {
		names = dir.Lookup(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return view, err
	}
	view.SenateSize = len(senate)

	proposals := make([]*Proposal, len(hashes))
	g, gctx = errgroup.WithContext(ctx)
	for i, h := range hashes {
		g.Go(func() error {
			p, ok, err := readProposal(gctx, s, h, at, names)
			if err != nil {
				return fmt.Errorf("proposal %s: %w", h, err)
			}
			if ok {
				proposals[i] = &p
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return view, err
	}
	for _, p := range proposals {
		if p != nil {
			view.Proposals = append(view.Proposals, *p)
		}
	}
	return view, nil
}

func readProposal(ctx context.Context, s *chain.Session, h, at chain.BlockHash, names registry.Directory) (Proposal, bool, error) {
	votes, ok, err := s.ProposalVotes(ctx, h, at)
	if err != nil || !ok {
		return Proposal{}, false, err
	}
	p := Proposal{
		Hash:      h,
		Threshold: votes.Threshold,
		Ayes:      len(votes.Ayes),
		Nays:      len(votes.Nays),
		End:       votes.End,
	}
	for _, a := range votes.Ayes {
		p.Votes = append(p.Votes, Vote{Voter: voterName(names, a), Aye: true})
	}
	for _, n := range votes.Nays {
		p.Votes = append(p.Votes, Vote{Voter: voterName(names, n)})
	}

	call, present, err := s.ProposalCall(ctx, h, at)
	if err != nil {
		return Proposal{}, false, err
	}
	if present {
		p.Call, err = s.DescribeCall(ctx, call)
		if err != nil {
			log.Chain.Debug().Err(err).Str("proposal", h.Hex()).Msg("undecodable proposal call")
			p.Call = fmt.Sprintf("0x%x", call)
		}
	}
	return p, true, nil
}

func voterName(names registry.Directory, addr string) string {
	if n := names.Name(addr); n != "" {
		return n
	}
	return addr
}

// NormalizeWeights maps each destination to value / max(sum, 1).
func NormalizeWeights(entries []chain.WeightEntry) map[uint16]float64 {
	out := make(map[uint16]float64, len(entries))
	var sum float64
	for _, e := range entries {
		sum += float64(e.Weight)
	}
	if sum < 1 {
		sum = 1
	}
	for _, e := range entries {
		out[uint16(e.Dest)] = float64(e.Weight) / sum
	}
	return out
}

// WeightRow is the normalized weight vector of one root UID.
type WeightRow struct {
	UID     uint16
	Weights map[uint16]float64
}

// WeightTable is the root weight matrix. Netuids is the sorted union of
// every destination.
type WeightTable struct {
	Netuids []uint16
	Rows    []WeightRow
}

// RootWeights reads the root network weight matrix.
func RootWeights(ctx context.Context, s *chain.Session) (WeightTable, error) {
	var table WeightTable
	at, err := s.ChainHead(ctx)
	if err != nil {
		return table, err
	}
	matrix, err := s.WeightMatrix(ctx, chain.RootNetuid, at)
	if err != nil {
		return table, err
	}

	netuids := make(map[uint16]bool)
	for uid, entries := range matrix {
		row := WeightRow{UID: uid, Weights: NormalizeWeights(entries)}
		for n := range row.Weights {
			netuids[n] = true
		}
		table.Rows = append(table.Rows, row)
	}
	sort.Slice(table.Rows, func(i, j int) bool { return table.Rows[i].UID < table.Rows[j].UID })
	for n := range netuids {
		table.Netuids = append(table.Netuids, n)
	}
	sort.Slice(table.Netuids, func(i, j int) bool { return table.Netuids[i] < table.Netuids[j] })
	return table, nil
}
