package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rxtech-lab/argo-forge/internal/types"
)

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for secondary text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	// ErrorStyle for error messages.
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

	// PassStyle and FailStyle mark outcomes.
	PassStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	FailStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

	labelStyle = lipgloss.NewStyle().Width(18).Foreground(lipgloss.Color("245"))
	boxStyle   = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// FormatPercentWithSign renders a percentage with an arrow for its direction.
func FormatPercentWithSign(value float64) string {
	text := fmt.Sprintf("%.2f%%", value)

	switch {
	case value > 0:
		return text + " ▲"
	case value < 0:
		return text + " ▼"
	default:
		return text
	}
}

func formatProfitFactor(pf float64) string {
	if math.IsInf(pf, 1) {
		return "∞"
	}

	return fmt.Sprintf("%.2f", pf)
}

// renderSummary draws the headline numbers of a run in a box.
func renderSummary(title string, stats types.RunStats) string {
	rows := [][2]string{
		{"Run", stats.ID},
		{"Signals", fmt.Sprintf("%d", stats.Metrics.TradeCount)},
		{"Realized trades", fmt.Sprintf("%d", stats.Metrics.RealizedTrades)},
		{"Win rate", fmt.Sprintf("%.2f%%", stats.Metrics.WinRate)},
		{"Total return", FormatPercentWithSign(stats.Metrics.TotalReturn)},
		{"Buy & hold", FormatPercentWithSign(stats.BuyAndHoldReturn)},
		{"Max drawdown", fmt.Sprintf("%.2f%%", stats.Metrics.MaxDrawdown)},
		{"Sharpe", fmt.Sprintf("%.2f", stats.Metrics.SharpeRatio)},
		{"SQN", fmt.Sprintf("%.2f", stats.Metrics.SQN)},
		{"Profit factor", formatProfitFactor(stats.Metrics.ProfitFactor)},
		{"Final equity", fmt.Sprintf("%.2f", stats.FinalEquity)},
	}

	var sb strings.Builder

	sb.WriteString(TitleStyle.Render(title))

	for _, row := range rows {
		sb.WriteString("\n")
		sb.WriteString(labelStyle.Render(row[0]))
		sb.WriteString(row[1])
	}

	return boxStyle.Render(sb.String())
}
