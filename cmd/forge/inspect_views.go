package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/rxtech-lab/argo-forge/internal/types"
)

// runItem implements list.Item for an exported run.
type runItem struct {
	stats types.RunStats
}

func (i runItem) Title() string {
	if i.stats.Strategy == "" {
		return i.stats.ID
	}

	return fmt.Sprintf("%s  %s", i.stats.Strategy, HelpStyle.Render(i.stats.ID))
}

func (i runItem) Description() string {
	return fmt.Sprintf("%s | return %s | win rate %.2f%% | %d signals | %s",
		i.stats.Timestamp.Format("2006-01-02 15:04"),
		FormatPercentWithSign(i.stats.Metrics.TotalReturn),
		i.stats.Metrics.WinRate,
		i.stats.Metrics.TradeCount,
		i.stats.DataPath,
	)
}

func (i runItem) FilterValue() string { return i.stats.Strategy + " " + i.stats.ID }

// NewRunList creates the list of exported runs.
func NewRunList(runs []types.RunStats) list.Model {
	items := make([]list.Item, 0, len(runs))
	for _, run := range runs {
		items = append(items, runItem{stats: run})
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true

	l := list.New(items, delegate, 0, 0)
	l.Title = "Select Run"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return l
}

// NewFilterInput creates the text input that narrows the table rows.
func NewFilterInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "BUY, node id, reason..."
	ti.CharLimit = 64
	ti.Width = 40
	ti.Prompt = "/ "

	return ti
}

// Table kinds shown for a run.
const (
	TableSignals = iota
	TableTrades
)

func signalColumns() []table.Column {
	return []table.Column{
		{Title: "ID", Width: 8},
		{Title: "Time", Width: 17},
		{Title: "Type", Width: 6},
		{Title: "Price", Width: 14},
		{Title: "Node", Width: 14},
		{Title: "Reason", Width: 20},
	}
}

func tradeColumns() []table.Column {
	return []table.Column{
		{Title: "Side", Width: 6},
		{Title: "Entry", Width: 17},
		{Title: "Exit", Width: 17},
		{Title: "Entry Price", Width: 12},
		{Title: "Exit Price", Width: 12},
		{Title: "PnL", Width: 12},
		{Title: "Return", Width: 12},
	}
}

// NewDataTable creates an empty table styled for run data.
func NewDataTable() table.Model {
	t := table.New(
		table.WithColumns(signalColumns()),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	t.SetStyles(s)

	return t
}

func matchesFilter(filter string, fields ...string) bool {
	if filter == "" {
		return true
	}

	filter = strings.ToLower(filter)

	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), filter) {
			return true
		}
	}

	return false
}

// SignalRows renders the signals matching filter.
func SignalRows(signals []types.TradeSignal, filter string) []table.Row {
	rows := make([]table.Row, 0, len(signals))

	for _, s := range signals {
		if !matchesFilter(filter, string(s.Type), s.NodeID, s.Reason) {
			continue
		}

		rows = append(rows, table.Row{
			s.ID,
			s.Timestamp.Format("2006-01-02 15:04"),
			string(s.Type),
			fmt.Sprintf("%.4f", s.Price),
			s.NodeID,
			s.Reason,
		})
	}

	return rows
}

// TradeRows renders the trades matching filter.
func TradeRows(trades []types.Trade, filter string) []table.Row {
	rows := make([]table.Row, 0, len(trades))

	for _, t := range trades {
		if !matchesFilter(filter, string(t.Side), t.EntrySignalID, t.ExitSignalID) {
			continue
		}

		rows = append(rows, table.Row{
			string(t.Side),
			t.EntryTime.Format("2006-01-02 15:04"),
			t.ExitTime.Format("2006-01-02 15:04"),
			fmt.Sprintf("%.4f", t.EntryPrice),
			fmt.Sprintf("%.4f", t.ExitPrice),
			fmt.Sprintf("%.2f", t.PnL),
			FormatPercentWithSign(t.ReturnPct),
		})
	}

	return rows
}
