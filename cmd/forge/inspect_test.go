package main

import (
	"bytes"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/rxtech-lab/argo-forge/internal/types"
	"github.com/stretchr/testify/assert"
)

var inspectBase = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func sampleRuns() []types.RunStats {
	return []types.RunStats{
		{
			ID:        "run-b",
			Strategy:  "squeeze hunter",
			Timestamp: inspectBase.Add(time.Hour),
			Metrics:   types.BacktestMetrics{TotalReturn: 4.2, WinRate: 60, TradeCount: 5},
		},
		{
			ID:        "run-a",
			Strategy:  "trend reversal",
			Timestamp: inspectBase,
			Metrics:   types.BacktestMetrics{TotalReturn: -1.3, TradeCount: 2},
		},
	}
}

func sampleTables() ([]types.TradeSignal, []types.Trade) {
	signals := []types.TradeSignal{
		{ID: "1", Timestamp: inspectBase, Type: types.SignalTypeBuy, Price: 100, Reason: "FundingAnomaly", NodeID: "process-1"},
		{ID: "2", Timestamp: inspectBase.Add(time.Hour), Type: types.SignalTypeSell, Price: 110, Reason: "rsi_gt_70", NodeID: "process-2"},
	}
	trades := []types.Trade{
		{Side: types.PositionStateLong, EntrySignalID: "1", ExitSignalID: "2", EntryTime: inspectBase, ExitTime: inspectBase.Add(time.Hour), EntryPrice: 100, ExitPrice: 110, PnL: 100, ReturnPct: 10},
	}

	return signals, trades
}

func staticLoader(stats types.RunStats) ([]types.TradeSignal, []types.Trade, error) {
	signals, trades := sampleTables()

	return signals, trades, nil
}

func TestNewModel(t *testing.T) {
	m := NewModel(sampleRuns(), staticLoader)

	assert.Equal(t, StateRunSelect, m.state)
	assert.Len(t, m.runs, 2)
	assert.Equal(t, TableSignals, m.tableKind)
	assert.Empty(t, m.filter)
}

func TestSignalRowsFilter(t *testing.T) {
	signals, _ := sampleTables()

	tests := []struct {
		name     string
		filter   string
		expected int
	}{
		{name: "no filter", filter: "", expected: 2},
		{name: "by type", filter: "buy", expected: 1},
		{name: "by node", filter: "process-2", expected: 1},
		{name: "by reason", filter: "funding", expected: 1},
		{name: "no match", filter: "absorption", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, SignalRows(signals, tt.filter), tt.expected)
		})
	}
}

func TestTradeRows(t *testing.T) {
	_, trades := sampleTables()

	rows := TradeRows(trades, "")
	assert.Len(t, rows, 1)
	assert.Equal(t, "LONG", rows[0][0])
	assert.Equal(t, "10.00% ▲", rows[0][6])

	assert.Empty(t, TradeRows(trades, "short"))
}

func TestRunSelection(t *testing.T) {
	m := NewModel(sampleRuns(), staticLoader)
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(100, 30))

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("squeeze hunter"))
	}, teatest.WithDuration(2*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Signals")) && bytes.Contains(bts, []byte("FundingAnomaly"))
	}, teatest.WithDuration(2*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyTab})

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Trades")) && bytes.Contains(bts, []byte("LONG"))
	}, teatest.WithDuration(2*time.Second))

	err := tm.Quit()
	assert.NoError(t, err)
}

func TestNoRuns(t *testing.T) {
	m := NewModel(nil, staticLoader)
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("No runs found"))
	}, teatest.WithDuration(2*time.Second))

	err := tm.Quit()
	assert.NoError(t, err)
}

func TestStateTransitions(t *testing.T) {
	t.Run("run loaded opens the detail view", func(t *testing.T) {
		signals, trades := sampleTables()
		m := NewModel(sampleRuns(), staticLoader)

		newModel, _ := m.Update(RunLoadedMsg{RunID: "run-b", Signals: signals, Trades: trades})
		updated := newModel.(Model)

		assert.Equal(t, StateRunDetail, updated.state)
		assert.Len(t, updated.dataTable.Rows(), 2)
	})

	t.Run("tab switches to trades", func(t *testing.T) {
		signals, trades := sampleTables()
		m := NewModel(sampleRuns(), staticLoader)

		newModel, _ := m.Update(RunLoadedMsg{Signals: signals, Trades: trades})
		newModel, _ = newModel.(Model).Update(tea.KeyMsg{Type: tea.KeyTab})
		updated := newModel.(Model)

		assert.Equal(t, TableTrades, updated.tableKind)
		assert.Len(t, updated.dataTable.Rows(), 1)
		assert.Len(t, updated.dataTable.Columns(), len(tradeColumns()))
	})

	t.Run("filter narrows the rows", func(t *testing.T) {
		signals, trades := sampleTables()
		m := NewModel(sampleRuns(), staticLoader)

		newModel, _ := m.Update(RunLoadedMsg{Signals: signals, Trades: trades})
		newModel, _ = newModel.(Model).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
		assert.Equal(t, StateFilterInput, newModel.(Model).state)

		for _, r := range "sell" {
			newModel, _ = newModel.(Model).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		}

		newModel, _ = newModel.(Model).Update(tea.KeyMsg{Type: tea.KeyEnter})
		updated := newModel.(Model)

		assert.Equal(t, StateRunDetail, updated.state)
		assert.Equal(t, "sell", updated.filter)
		assert.Len(t, updated.dataTable.Rows(), 1)
	})

	t.Run("q types into the filter instead of quitting", func(t *testing.T) {
		m := NewModel(sampleRuns(), staticLoader)
		m.state = StateFilterInput
		m.filterInput.Focus()

		newModel, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
		assert.Equal(t, "q", newModel.(Model).filterInput.Value())
		assert.Equal(t, StateFilterInput, newModel.(Model).state)
	})

	t.Run("Esc from detail clears the run", func(t *testing.T) {
		signals, trades := sampleTables()
		m := NewModel(sampleRuns(), staticLoader)
		m.filter = "buy"

		newModel, _ := m.Update(RunLoadedMsg{Signals: signals, Trades: trades})
		newModel, _ = newModel.(Model).Update(tea.KeyMsg{Type: tea.KeyEsc})
		updated := newModel.(Model)

		assert.Equal(t, StateRunSelect, updated.state)
		assert.Nil(t, updated.signals)
		assert.Nil(t, updated.trades)
		assert.Empty(t, updated.filter)
	})

	t.Run("load error stays on the run list", func(t *testing.T) {
		m := NewModel(sampleRuns(), func(types.RunStats) ([]types.TradeSignal, []types.Trade, error) {
			return nil, nil, errors.New("missing parquet")
		})

		cmd := m.loadRun(sampleRuns()[0])
		msg := cmd()

		newModel, _ := m.Update(msg)
		updated := newModel.(Model)

		assert.Equal(t, StateRunSelect, updated.state)
		assert.EqualError(t, updated.err, "missing parquet")
	})
}
