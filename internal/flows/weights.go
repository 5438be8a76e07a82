package flows

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"golang.org/x/sync/errgroup"

	"github.com/jungoai/jungo-cli/internal/chain"
)

// WeightsRequest sets the hotkey's root weights.
type WeightsRequest struct {
	Netuids []uint16
	Weights []float64
}

// MaxUpscale converts float weights to u16 so that the largest becomes
// 65535. Zero weights are dropped.
func MaxUpscale(netuids []uint16, weights []float64) ([]uint16, []uint16, error) {
	if len(netuids) != len(weights) {
		return nil, nil, fmt.Errorf("%w: %d netuids for %d weights", ErrInvalidWeights, len(netuids), len(weights))
	}
	top := 0.0
	for _, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, nil, fmt.Errorf("%w: weight %v", ErrInvalidWeights, w)
		}
		top = math.Max(top, w)
	}
	if top == 0 {
		return nil, nil, fmt.Errorf("%w: all weights are zero", ErrInvalidWeights)
	}
	var dests, vals []uint16
	for i, w := range weights {
		v := uint16(math.Round(w / top * math.MaxUint16))
		if v == 0 {
			continue
		}
		dests = append(dests, netuids[i])
		vals = append(vals, v)
	}
	return dests, vals, nil
}

func u16Vec(vs []uint16) []types.U16 {
	out := make([]types.U16, len(vs))
	for i, v := range vs {
		out[i] = types.NewU16(v)
	}
	return out
}

// SetRootWeights sets the hotkey's weights on the root network.
func SetRootWeights(ctx context.Context, env Env, req WeightsRequest) error {
	dests, vals, err := MaxUpscale(req.Netuids, req.Weights)
	if err != nil {
		env.Sink.Error("Failed: %v", err)
		return err
	}
	hotkey, err := env.hotkeyAddress()
	if err != nil {
		return err
	}
	at, err := env.Session.ChainHead(ctx)
	if err != nil {
		return err
	}
	before, err := readRootState(ctx, env.Session, hotkey, at)
	if err != nil {
		return err
	}
	return setRootWeights(ctx, env, hotkey, before, dests, vals)
}

func setRootWeights(ctx context.Context, env Env, hotkey string, before rootState, dests, vals []uint16) error {
	if !before.registered {
		env.Sink.Error("Your hotkey: %s is not registered to the root network", hotkey)
		return fmt.Errorf("%w: %s on root", ErrNotRegistered, hotkey)
	}

	if err := env.confirm("Do you want to set root weights:\n  netuids: %v\n  weights: %s?", dests, formatWeights(vals)); err != nil {
		return err
	}

	hk, err := accountArg("hotkey", hotkey)
	if err != nil {
		return err
	}
	call, err := env.compose(ctx, "set_root_weights",
		u16Arg("netuid", chain.RootNetuid),
		hk,
		chain.Arg{Name: "dests", Value: u16Vec(dests)},
		chain.Arg{Name: "weights", Value: u16Vec(vals)},
		u64Arg("version_key", 0),
	)
	if err != nil {
		return err
	}
	res, err := env.submit(ctx, call)
	if err != nil {
		return err
	}
	if res.Outcome == chain.NotAwaited {
		return nil
	}
	env.Sink.Success("Set weights on root network")

	after, err := readRootState(ctx, env.Session, hotkey, chain.BlockHash{})
	if err != nil {
		return err
	}
	env.Sink.Info("Root weights:\n  %s → %s", formatDense(before.weights), formatDense(after.weights))
	return nil
}

// rootState is a hotkey's standing on the root network at one block.
type rootState struct {
	uid        uint16
	registered bool
	// weights is dense over every subnet and sums to 1 (or is all zero).
	weights []float64
}

// readRootState reads the hotkey's UID and the subnet count concurrently,
// then its weight vector, all at block at.
func readRootState(ctx context.Context, s *chain.Session, hotkey string, at chain.BlockHash) (rootState, error) {
	var (
		st       rootState
		networks uint16
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		st.uid, st.registered, err = s.UID(gctx, chain.RootNetuid, hotkey, at)
		return err
	})
	g.Go(func() (err error) {
		networks, err = s.TotalNetworks(gctx, at)
		return err
	})
	if err := g.Wait(); err != nil {
		return rootState{}, err
	}
	if !st.registered {
		return st, nil
	}
	entries, err := s.Weights(ctx, chain.RootNetuid, st.uid, at)
	if err != nil {
		return rootState{}, err
	}
	st.weights = DenseWeights(int(networks), entries)
	return st, nil
}

func formatDense(ws []float64) string {
	parts := make([]string, len(ws))
	for i, w := range ws {
		parts[i] = fmt.Sprintf("%.4f", w)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func formatWeights(vals []uint16) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprintf("%.4f", float64(v)/math.MaxUint16)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// DenseWeights expands a weight vector to n slots normalized to sum 1.
func DenseWeights(n int, entries []chain.WeightEntry) []float64 {
	out := make([]float64, n)
	var sum float64
	for _, e := range entries {
		if int(e.Dest) < n {
			out[e.Dest] = float64(e.Weight)
			sum += float64(e.Weight)
		}
	}
	if sum > 0 {
		for i := range out {
			out[i] /= sum
		}
	}
	return out
}

// MyRootWeights reads the hotkey's root weights as a dense vector over
// every subnet.
func MyRootWeights(ctx context.Context, s *chain.Session, hotkey string) ([]float64, error) {
	at, err := s.ChainHead(ctx)
	if err != nil {
		return nil, err
	}
	st, err := readRootState(ctx, s, hotkey, at)
	if err != nil {
		return nil, err
	}
	if !st.registered {
		return nil, fmt.Errorf("%w: %s on root", ErrNotRegistered, hotkey)
	}
	return st.weights, nil
}

// AdjustRequest boosts or slashes one netuid's root weight.
type AdjustRequest struct {
	Netuid uint16
	Amount float64
}

// BoostWeight raises one netuid's root weight by Amount.
func BoostWeight(ctx context.Context, env Env, req AdjustRequest) error {
	return adjustWeight(ctx, env, req, 1)
}

// SlashWeight lowers one netuid's root weight by Amount, clamping at 0.
func SlashWeight(ctx context.Context, env Env, req AdjustRequest) error {
	return adjustWeight(ctx, env, req, -1)
}

func adjustWeight(ctx context.Context, env Env, req AdjustRequest, sign float64) error {
	if req.Amount < 0 || math.IsNaN(req.Amount) {
		return fmt.Errorf("%w: amount %v", ErrInvalidWeights, req.Amount)
	}
	hotkey, err := env.hotkeyAddress()
	if err != nil {
		return err
	}
	at, err := env.Session.ChainHead(ctx)
	if err != nil {
		return err
	}
	before, err := readRootState(ctx, env.Session, hotkey, at)
	if err != nil {
		return err
	}
	if !before.registered {
		env.Sink.Error("Your hotkey: %s is not registered to the root network", hotkey)
		return fmt.Errorf("%w: %s on root", ErrNotRegistered, hotkey)
	}
	if int(req.Netuid) >= len(before.weights) {
		env.Sink.Error("Subnet %d does not exist", req.Netuid)
		return fmt.Errorf("%w: %d", ErrSubnetNotFound, req.Netuid)
	}
	weights := append([]float64(nil), before.weights...)
	prev := weights[req.Netuid]
	weights[req.Netuid] = math.Max(0, prev+sign*req.Amount)
	verb := "Boosting"
	if sign < 0 {
		verb = "Slashing"
	}
	env.Sink.Info("%s weight for netuid %d from %.4f -> %.4f", verb, req.Netuid, prev, weights[req.Netuid])

	netuids := make([]uint16, len(weights))
	for i := range netuids {
		netuids[i] = uint16(i)
	}
	dests, vals, err := MaxUpscale(netuids, weights)
	if err != nil {
		env.Sink.Error("Failed: %v", err)
		return err
	}
	return setRootWeights(ctx, env, hotkey, before, dests, vals)
}
