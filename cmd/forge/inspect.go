package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rxtech-lab/argo-forge/internal/results"
	"github.com/rxtech-lab/argo-forge/internal/types"
	"github.com/urfave/cli/v3"
)

// Application states.
const (
	StateRunSelect = iota
	StateRunDetail
	StateFilterInput
)

// RunLoader reads the signal and trade tables of an exported run.
type RunLoader func(stats types.RunStats) ([]types.TradeSignal, []types.Trade, error)

// Model is the Bubble Tea model for browsing exported runs.
type Model struct {
	state       int
	runList     list.Model
	filterInput textinput.Model
	dataTable   table.Model
	runs        []types.RunStats
	selected    types.RunStats
	signals     []types.TradeSignal
	trades      []types.Trade
	tableKind   int
	filter      string
	loader      RunLoader
	err         error
	width       int
	height      int
}

// NewModel creates a model listing runs, newest first.
func NewModel(runs []types.RunStats, loader RunLoader) Model {
	return Model{
		state:       StateRunSelect,
		runList:     NewRunList(runs),
		filterInput: NewFilterInput(),
		dataTable:   NewDataTable(),
		runs:        runs,
		loader:      loader,
	}
}

// loadParquetRun reads a run from the parquet files its stats point at.
func loadParquetRun(stats types.RunStats) ([]types.TradeSignal, []types.Trade, error) {
	reader, err := results.NewReader()
	if err != nil {
		return nil, nil, err
	}
	defer reader.Close()

	signals, err := reader.Signals(stats.SignalsFilePath)
	if err != nil {
		return nil, nil, err
	}

	trades, err := reader.Trades(stats.TradesFilePath)
	if err != nil {
		return nil, nil, err
	}

	return signals, trades, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.state != StateFilterInput {
				return m, tea.Quit
			}
		case "esc":
			return m.handleEsc()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.runList.SetSize(msg.Width, msg.Height-4)
		m.dataTable.SetWidth(msg.Width)
		m.dataTable.SetHeight(msg.Height - 8)

		return m, nil

	case RunLoadedMsg:
		m.signals = msg.Signals
		m.trades = msg.Trades
		m.err = nil
		m.state = StateRunDetail
		m.refreshTable()

		return m, nil

	case LoadErrorMsg:
		m.err = msg.Err

		return m, nil
	}

	switch m.state {
	case StateRunSelect:
		return m.updateRunSelect(msg)
	case StateRunDetail:
		return m.updateRunDetail(msg)
	case StateFilterInput:
		return m.updateFilterInput(msg)
	}

	return m, nil
}

func (m Model) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case StateFilterInput:
		m.filterInput.Blur()
		m.state = StateRunDetail
	case StateRunDetail:
		m.signals = nil
		m.trades = nil
		m.filter = ""
		m.filterInput.Reset()
		m.tableKind = TableSignals
		m.err = nil
		m.state = StateRunSelect
	}

	return m, nil
}

func (m Model) updateRunSelect(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		if item, ok := m.runList.SelectedItem().(runItem); ok {
			m.selected = item.stats

			return m, m.loadRun(item.stats)
		}
	}

	var cmd tea.Cmd
	m.runList, cmd = m.runList.Update(msg)

	return m, cmd
}

func (m Model) updateRunDetail(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab":
			m.tableKind = (m.tableKind + 1) % 2
			m.refreshTable()

			return m, nil
		case "/":
			m.state = StateFilterInput
			m.filterInput.Focus()

			return m, textinput.Blink
		}
	}

	var cmd tea.Cmd
	m.dataTable, cmd = m.dataTable.Update(msg)

	return m, cmd
}

func (m Model) updateFilterInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		m.filter = strings.TrimSpace(m.filterInput.Value())
		m.filterInput.Blur()
		m.state = StateRunDetail
		m.refreshTable()

		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)

	return m, cmd
}

func (m Model) loadRun(stats types.RunStats) tea.Cmd {
	loader := m.loader

	return func() tea.Msg {
		signals, trades, err := loader(stats)
		if err != nil {
			return LoadErrorMsg{Err: err}
		}

		return RunLoadedMsg{RunID: stats.ID, Signals: signals, Trades: trades}
	}
}

// refreshTable swaps columns and rows for the current table kind and filter.
// Rows are cleared first so they never outnumber the columns.
func (m *Model) refreshTable() {
	m.dataTable.SetRows(nil)

	if m.tableKind == TableTrades {
		m.dataTable.SetColumns(tradeColumns())
		m.dataTable.SetRows(TradeRows(m.trades, m.filter))
	} else {
		m.dataTable.SetColumns(signalColumns())
		m.dataTable.SetRows(SignalRows(m.signals, m.filter))
	}

	m.dataTable.GotoTop()
}

// View implements tea.Model.
func (m Model) View() string {
	var s strings.Builder

	switch m.state {
	case StateRunSelect:
		s.WriteString(TitleStyle.Render("Argo Forge - Runs"))
		s.WriteString("\n\n")

		if len(m.runs) == 0 {
			s.WriteString("No runs found.\n")
		} else {
			s.WriteString(m.runList.View())
		}

		if m.err != nil {
			s.WriteString("\n")
			s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		}

		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("Press Enter to open, q to quit"))

	case StateRunDetail, StateFilterInput:
		kind := "Signals"
		if m.tableKind == TableTrades {
			kind = "Trades"
		}

		s.WriteString(TitleStyle.Render(fmt.Sprintf("%s - %s", m.selected.Strategy, kind)))
		s.WriteString("\n")
		s.WriteString(HelpStyle.Render(fmt.Sprintf("run %s | return %s | drawdown %.2f%% | sharpe %.2f",
			m.selected.ID,
			FormatPercentWithSign(m.selected.Metrics.TotalReturn),
			m.selected.Metrics.MaxDrawdown,
			m.selected.Metrics.SharpeRatio)))
		s.WriteString("\n\n")
		s.WriteString(m.dataTable.View())
		s.WriteString("\n")

		if m.state == StateFilterInput {
			s.WriteString(m.filterInput.View())
			s.WriteString("\n")
		} else if m.filter != "" {
			s.WriteString(HelpStyle.Render("filter: " + m.filter))
			s.WriteString("\n")
		}

		s.WriteString(HelpStyle.Render("tab: signals/trades | /: filter | Esc: back | q: quit"))
	}

	return s.String()
}

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Usage: "Browse exported runs in the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "Results directory",
				Value:   "results",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			runs, err := results.ListRuns(cmd.String("dir"))
			if err != nil {
				return err
			}

			program := tea.NewProgram(NewModel(runs, loadParquetRun), tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := program.Run(); err != nil {
				return fmt.Errorf("inspect failed: %w", err)
			}

			return nil
		},
	}
}
