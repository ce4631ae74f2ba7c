package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

func formatFixed(v float64, decimals int) string {
	if math.IsInf(v, 1) {
		return "∞"
	}

	return strconv.FormatFloat(v, 'f', decimals, 64)
}

func winRateGrade(winRate float64) string {
	if winRate >= 50 {
		return "🟢 Positive"
	}

	return "🔴 Negative"
}

func profitFactorGrade(pf float64) string {
	switch {
	case pf >= 1.5:
		return "🟢 Good"
	case pf >= 1:
		return "🟡 Marginal"
	default:
		return "🔴 Losing"
	}
}

// RenderMarkdown renders an Analysis as a markdown report.
func RenderMarkdown(a Analysis) string {
	var sb strings.Builder

	m := a.Metrics

	direction := "📈"
	if m.TotalReturn < 0 {
		direction = "📉"
	}

	sb.WriteString("## 📊 EXECUTIVE SUMMARY\n\n")
	sb.WriteString(fmt.Sprintf("> Strategy completed with **%d trades** and %s **%s%%** return.\n", m.TradeCount, direction, formatFixed(m.TotalReturn, 2)))
	sb.WriteString(fmt.Sprintf("> Scenario: **%s** | Manipulation Risk: **%s**\n\n", a.Scenario, a.ManipulationRisk))
	sb.WriteString("---\n\n")

	sb.WriteString("## 🔍 MECHANICS ANALYSIS\n\n")
	sb.WriteString(fmt.Sprintf("- **Scenario Detected:** %s\n", a.Scenario))
	sb.WriteString(fmt.Sprintf("- **Market Structure:** %s\n", a.MarketStructure))
	sb.WriteString(fmt.Sprintf("- **Manipulation Risk:** %s\n", a.ManipulationRisk))
	sb.WriteString(fmt.Sprintf("- **OI Change:** %s%%\n", formatFixed(a.Market.OpenInterestChange, 1)))
	sb.WriteString(fmt.Sprintf("- **Avg Funding:** %s%%\n\n", formatFixed(a.Market.FundingRateAverage*100, 4)))
	sb.WriteString("---\n\n")

	sb.WriteString("## ⚖️ RISK PROFILE\n\n")
	sb.WriteString("| Metric | Value | Grade |\n")
	sb.WriteString("|--------|-------|-------|\n")
	sb.WriteString(fmt.Sprintf("| SQN | %s | %s |\n", formatFixed(m.SQN, 2), a.SQNGrade))
	sb.WriteString(fmt.Sprintf("| Sharpe | %s | %s |\n", formatFixed(m.SharpeRatio, 2), a.SharpeGrade))
	sb.WriteString(fmt.Sprintf("| Max DD | %s%% | %s |\n", formatFixed(m.MaxDrawdown, 1), a.DrawdownGrade))
	sb.WriteString(fmt.Sprintf("| Win Rate | %s%% | %s |\n", formatFixed(m.WinRate, 1), winRateGrade(m.WinRate)))
	sb.WriteString(fmt.Sprintf("| Profit Factor | %s | %s |\n\n", formatFixed(m.ProfitFactor, 2), profitFactorGrade(m.ProfitFactor)))
	sb.WriteString("---\n\n")

	sb.WriteString("## ⚠️ RED FLAGS\n\n")

	if len(a.RedFlags) == 0 {
		sb.WriteString("- ✅ No critical issues detected\n")
	}

	for _, flag := range a.RedFlags {
		sb.WriteString("- " + flag + "\n")
	}

	sb.WriteString("\n---\n\n")

	icon := "❌"
	if a.Verdict == VerdictDeploy {
		icon = "✅"
	}

	sb.WriteString(fmt.Sprintf("## %s VERDICT\n\n", icon))
	sb.WriteString(fmt.Sprintf("**[%s]** - %s", a.Verdict, a.Reason))

	return sb.String()
}
