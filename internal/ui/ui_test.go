package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/jungoai/jungo-cli/internal/chain"
	"github.com/jungoai/jungo-cli/internal/views"
	"github.com/jungoai/jungo-cli/pkg/balance"
)

func init() {
	DisableColor()
}

func TestConsole_Streams(t *testing.T) {
	var out, errs bytes.Buffer
	c := NewConsole(&out, &errs)
	c.Info("balance: %s", balance.FromRao(1_500_000_000))
	c.Success("Finalized")
	c.Warn("fee fallback")
	c.Error("Failed: %v", errors.New("boom"))

	if got := out.String(); !strings.Contains(got, "balance: τ1.500000000") || !strings.Contains(got, "✓ Finalized") {
		t.Errorf("stdout = %q", got)
	}
	if got := errs.String(); !strings.Contains(got, "⚠ fee fallback") || !strings.Contains(got, "✗ Failed: boom") {
		t.Errorf("stderr = %q", got)
	}
}

func TestPrompter_Confirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"maybe\n", false},
		{"y", true},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		p := NewPrompter(strings.NewReader(tt.input), &out)
		got, err := p.Confirm("Continue?")
		if err != nil {
			t.Fatalf("Confirm(%q) error: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if !strings.Contains(out.String(), "Continue? [y/n]") {
			t.Errorf("question not written: %q", out.String())
		}
	}
}

func TestPrompter_EOF(t *testing.T) {
	p := NewPrompter(strings.NewReader(""), &bytes.Buffer{})
	if _, err := p.Confirm("Continue?"); !errors.Is(err, ErrNoInput) {
		t.Errorf("Confirm on empty input error = %v, want ErrNoInput", err)
	}
}

func TestPrompter_PasswordFromPipe(t *testing.T) {
	p := NewPrompter(strings.NewReader("hunter2\nhunter2\n"), &bytes.Buffer{})
	if p.Interactive() {
		t.Fatal("a reader is not a terminal")
	}
	pw, err := p.NewPassword("Passphrase: ")
	if err != nil {
		t.Fatalf("NewPassword() error: %v", err)
	}
	if string(pw) != "hunter2" {
		t.Errorf("password = %q", pw)
	}

	p = NewPrompter(strings.NewReader("one\ntwo\n"), &bytes.Buffer{})
	if _, err := p.NewPassword("Passphrase: "); err == nil {
		t.Error("mismatched passphrases accepted")
	}
}

func TestRootList_Render(t *testing.T) {
	var buf bytes.Buffer
	RootList(&buf, []views.RootNeuron{
		{UID: 0, Name: "Validator", Hotkey: "5FHneW46xGXgs5mUiveU4sbTyGBzmstUspZC92UhjJM694ty", Stake: balance.FromRao(2_500_000_000), Senator: true},
	})
	got := buf.String()
	for _, want := range []string{"Root Network", "UID", "Validator", "2.50000", "Yes"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestWeights_Render(t *testing.T) {
	var buf bytes.Buffer
	Weights(&buf, views.WeightTable{
		Netuids: []uint16{1, 2},
		Rows: []views.WeightRow{
			{UID: 0, Weights: map[uint16]float64{1: 0.75, 2: 0.25}},
			{UID: 3, Weights: map[uint16]float64{}},
		},
	})
	got := buf.String()
	for _, want := range []string{"75.00%", "25.00%", "~"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestProposals_Render(t *testing.T) {
	var buf bytes.Buffer
	Proposals(&buf, views.ProposalsView{
		SenateSize: 3,
		Proposals: []views.Proposal{{
			Hash:      chain.BlockHash{0xab},
			Threshold: 2,
			Ayes:      1,
			Votes:     []views.Vote{{Voter: "Bob", Aye: true}},
			End:       100,
			Call:      "SubtensorModule.sudo_set_tempo(netuid: 1)",
		}},
	})
	got := buf.String()
	for _, want := range []string{"Active Proposals: 1", "Senate Size: 3", "Bob: Aye", "0xab00", "sudo_set_tempo"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestDelegates_Render(t *testing.T) {
	up := 12.5
	var buf bytes.Buffer
	Delegates(&buf, views.DelegatesView{
		Block: 42,
		Delegates: []views.Delegate{
			{Name: "Bob", Hotkey: "5FHneW46xGXgs5mUiveU4sbTyGBzmstUspZC92UhjJM694ty", Change: &up, Take: 0.18, Registrations: []uint16{0, 1}},
			{Name: "New", Hotkey: "5DAAnrj7VHTznn2AWBemMuyBwZWs6FNFjdyVXUeYum3PTXFy"},
		},
	})
	got := buf.String()
	for _, want := range []string{"block 42", "5FHneW46...", "12.50%", "NA", "18.0%", "[0, 1]", "2 delegates"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestPermits(t *testing.T) {
	d := views.Delegate{Registrations: []uint16{0, 1, 3}, ValidatorPermits: []uint16{1, 3}}
	if got := permits(d); got != "[, *, *]" {
		t.Errorf("permits = %q", got)
	}
}
