package ui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/jungoai/jungo-cli/internal/views"
	"github.com/jungoai/jungo-cli/pkg/balance"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true).PaddingRight(2)
	cellStyle   = lipgloss.NewStyle().PaddingRight(2)

	blue   = lipgloss.Color("#32A3DB")
	yellow = lipgloss.Color("3")
	green  = lipgloss.Color("2")
	red    = lipgloss.Color("1")
)

// column describes how one column of a table is drawn.
type column struct {
	header string
	color  lipgloss.TerminalColor
	right  bool
}

func render(w io.Writer, title string, cols []column, rows [][]string, footer string) {
	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.header
	}
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(false).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			s := cellStyle
			if col < len(cols) {
				if cols[col].color != nil {
					s = s.Foreground(cols[col].color)
				}
				if cols[col].right {
					s = s.Align(lipgloss.Right)
				}
			}
			return s
		})
	if title != "" {
		fmt.Fprintln(w, titleStyle.Render(title))
	}
	fmt.Fprintln(w, t.Render())
	if footer != "" {
		fmt.Fprintln(w, footer)
	}
}

// tao formats a balance as τ with five decimals.
func tao(b balance.Balance) string {
	return fmt.Sprintf("%.5f", b.TaoFloat())
}

func shorten(addr string) string {
	if len(addr) <= 8 {
		return addr
	}
	return addr[:8] + "..."
}

func uints(vs []uint16) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.Itoa(int(v))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// RootList renders the root network listing.
func RootList(w io.Writer, rows []views.RootNeuron) {
	cols := []column{
		{header: "UID", color: blue},
		{header: "NAME", color: blue},
		{header: "ADDRESS", color: yellow},
		{header: "STAKE(τ)", color: green, right: true},
		{header: "SENATOR", color: green},
	}
	data := make([][]string, len(rows))
	for i, r := range rows {
		data[i] = []string{strconv.Itoa(int(r.UID)), r.Name, r.Hotkey, tao(r.Stake), yesNo(r.Senator)}
	}
	render(w, "Root Network", cols, data, "")
}

// Weights renders the root weight matrix. Missing weights show as "~".
func Weights(w io.Writer, t views.WeightTable) {
	cols := []column{{header: "UID", color: blue}}
	for _, n := range t.Netuids {
		cols = append(cols, column{header: strconv.Itoa(int(n)), color: green, right: true})
	}
	data := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		row := []string{strconv.Itoa(int(r.UID))}
		for _, n := range t.Netuids {
			if v, ok := r.Weights[n]; ok {
				row = append(row, fmt.Sprintf("%0.2f%%", v*100))
			} else {
				row = append(row, "~")
			}
		}
		data[i] = row
	}
	render(w, "Root Network Weights", cols, data, "")
}

// Senate renders the senate members.
func Senate(w io.Writer, rows []views.SenateMember) {
	cols := []column{{header: "NAME", color: blue}, {header: "ADDRESS", color: yellow}}
	data := make([][]string, len(rows))
	for i, r := range rows {
		data[i] = []string{r.Name, r.Address}
	}
	render(w, "Senate", cols, data, "")
}

// Proposals renders the open proposals.
func Proposals(w io.Writer, v views.ProposalsView) {
	cols := []column{
		{header: "HASH", color: yellow},
		{header: "THRESHOLD"},
		{header: "AYES", color: green},
		{header: "NAYS", color: red},
		{header: "VOTES", color: blue},
		{header: "END", color: blue},
		{header: "CALLDATA"},
	}
	data := make([][]string, len(v.Proposals))
	for i, p := range v.Proposals {
		votes := make([]string, len(p.Votes))
		for j, vote := range p.Votes {
			verdict := "Nay"
			if vote.Aye {
				verdict = "Aye"
			}
			votes[j] = vote.Voter + ": " + verdict
		}
		data[i] = []string{
			p.Hash.Hex(),
			strconv.Itoa(int(p.Threshold)),
			strconv.Itoa(p.Ayes),
			strconv.Itoa(p.Nays),
			strings.Join(votes, "\n"),
			strconv.Itoa(int(p.End)),
			p.Call,
		}
	}
	title := fmt.Sprintf("Proposals\t\tActive Proposals: %d\t\tSenate Size: %d", len(v.Proposals), v.SenateSize)
	render(w, title, cols, data, "")
}

func change(c *float64) string {
	switch {
	case c == nil:
		return "NA"
	case *c == 0:
		return "0%"
	default:
		return fmt.Sprintf("%.2f%%", *c)
	}
}

// Delegates renders the delegates listing.
func Delegates(w io.Writer, v views.DelegatesView) {
	cols := []column{
		{header: "INDEX"},
		{header: "DELEGATE", color: blue},
		{header: "SS58", color: yellow},
		{header: "NOMINATORS", color: green},
		{header: "DELEGATE STAKE(τ)", right: true},
		{header: "TOTAL STAKE(τ)", color: green, right: true},
		{header: "CHANGE/(4h)"},
		{header: "VPERMIT", right: true},
		{header: "TAKE"},
		{header: "NOMINATOR/(24h)/kτ", color: green},
		{header: "DELEGATE/(24h)", color: green},
		{header: "Desc", color: blue},
	}
	data := make([][]string, len(v.Delegates))
	for i, d := range v.Delegates {
		data[i] = []string{
			strconv.Itoa(i),
			d.Name,
			shorten(d.Hotkey),
			strconv.Itoa(d.Nominators),
			tao(d.OwnerStake),
			tao(d.TotalStake),
			change(d.Change),
			uints(d.Registrations),
			fmt.Sprintf("%.1f%%", d.Take*100),
			fmt.Sprintf("τ%.4f", d.NominatorReturn),
			fmt.Sprintf("τ%.4f", d.DelegateReturn),
			d.Description,
		}
	}
	render(w, fmt.Sprintf("Delegates at block %d", v.Block), cols, data, fmt.Sprintf("%d delegates", len(v.Delegates)))
}

func permits(d views.Delegate) string {
	held := make(map[uint16]bool, len(d.ValidatorPermits))
	for _, p := range d.ValidatorPermits {
		held[p] = true
	}
	marks := make([]string, len(d.Registrations))
	for i, r := range d.Registrations {
		if held[r] {
			marks[i] = "*"
		}
	}
	return "[" + strings.Join(marks, ", ") + "]"
}

// MyDelegates renders the delegations of the selected wallets.
func MyDelegates(w io.Writer, v views.MyDelegatesView) {
	cols := []column{
		{header: "Wallet"},
		{header: "OWNER", color: blue},
		{header: "SS58", color: yellow},
		{header: "Delegation", color: green},
		{header: "τ/24h", color: green},
		{header: "NOMS", color: green},
		{header: "OWNER STAKE(τ)", right: true},
		{header: "TOTAL STAKE(τ)", color: green, right: true},
		{header: "SUBNETS", right: true},
		{header: "VPERMIT", right: true},
		{header: "24h/kτ", color: green},
		{header: "Desc", color: blue},
	}
	data := make([][]string, len(v.Delegations))
	for i, d := range v.Delegations {
		data[i] = []string{
			d.Wallet,
			d.Name,
			shorten(d.Hotkey),
			tao(d.Staked),
			fmt.Sprintf("%.4f", d.Daily),
			strconv.Itoa(d.AllNominators),
			tao(d.OwnerStake),
			tao(d.TotalStake),
			uints(d.Registrations),
			permits(d.Delegate),
			fmt.Sprintf("%.4f", d.NominatorReturn),
			d.Description,
		}
	}
	render(w, "My Delegates", cols, data, "Total delegated Tao: "+v.TotalDelegated.String())
}

// WalletRow is one wallet in the wallet listing.
type WalletRow struct {
	Name    string
	Coldkey string
	Hotkeys []string
}

// Wallets renders the wallets under the wallet path.
func Wallets(w io.Writer, path string, rows []WalletRow) {
	cols := []column{{header: "WALLET", color: blue}, {header: "COLDKEY", color: yellow}, {header: "HOTKEYS", color: green}}
	data := make([][]string, len(rows))
	for i, r := range rows {
		data[i] = []string{r.Name, r.Coldkey, strings.Join(r.Hotkeys, ", ")}
	}
	render(w, "Wallets in "+path, cols, data, "")
}

// BalanceRow is one wallet in the balance listing.
type BalanceRow struct {
	Wallet  string
	Coldkey string
	Free    balance.Balance
}

// Balances renders free balances with a total.
func Balances(w io.Writer, rows []BalanceRow) {
	cols := []column{{header: "WALLET", color: blue}, {header: "COLDKEY", color: yellow}, {header: "FREE(τ)", color: green, right: true}}
	data := make([][]string, len(rows))
	total := balance.Zero
	for i, r := range rows {
		data[i] = []string{r.Wallet, r.Coldkey, tao(r.Free)}
		if t, err := total.Add(r.Free); err == nil {
			total = t
		}
	}
	render(w, "Wallet Balances", cols, data, "Total: "+total.String())
}
