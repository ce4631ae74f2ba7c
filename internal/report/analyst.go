// Package report grades a backtest result, classifies the market regime of
// its candles and renders the verdict as a markdown report.
package report

import (
	"math"
	"strings"

	"github.com/rxtech-lab/argo-forge/internal/logger"
	"github.com/rxtech-lab/argo-forge/internal/synth"
	"github.com/rxtech-lab/argo-forge/internal/types"
	"go.uber.org/zap"
)

// Verdict is the deployment recommendation.
type Verdict string

const (
	VerdictDeploy Verdict = "DEPLOY"
	VerdictReject Verdict = "REJECT"
)

// Risk is the estimated manipulation risk of the market regime.
type Risk string

const (
	RiskLow    Risk = "LOW"
	RiskMedium Risk = "MEDIUM"
	RiskHigh   Risk = "HIGH"
)

// Funding thresholds are fractions per funding period (-0.0001 = -0.01%).
const (
	squeezeFundingThreshold  = -0.0001
	negativeFundingRedFlag   = -0.0005
	spotPremiumThresholdPct  = 0.3
	minStatisticalTrades     = 30
	tradableSQN              = 1.6
	excellentSQN             = 2.5
	acceptableDrawdownForGo  = 15
	criticalFlagMarker       = "🚨"
	unacceptableFlagFragment = "Unacceptable"
)

// MarketMetrics summarises the derivatives readings of a candle series.
type MarketMetrics struct {
	// OpenInterestChange is the first-to-last OI change in percent.
	OpenInterestChange float64 `json:"openInterestChange"`
	// FundingRateAverage is the mean funding rate as a fraction.
	FundingRateAverage float64 `json:"fundingRateAverage"`
	// SpotFuturesSpread is the spot premium of the last candle in percent.
	SpotFuturesSpread float64 `json:"spotFuturesSpread"`
	// NetInflow is the summed net inflow.
	NetInflow float64 `json:"netInflow"`
	// PriceChange is the first-to-last close change in percent.
	PriceChange float64 `json:"priceChange"`
}

// Analysis is everything the report states about one run.
type Analysis struct {
	Metrics          types.BacktestMetrics `json:"metrics"`
	Market           MarketMetrics         `json:"market"`
	Scenario         synth.Scenario        `json:"scenario"`
	ManipulationRisk Risk                  `json:"manipulationRisk"`
	MarketStructure  string                `json:"marketStructure"`
	SQNGrade         string                `json:"sqnGrade"`
	SharpeGrade      string                `json:"sharpeGrade"`
	DrawdownGrade    string                `json:"drawdownGrade"`
	RedFlags         []string              `json:"redFlags"`
	Verdict          Verdict               `json:"verdict"`
	Reason           string                `json:"reason"`
}

// GradeSQN grades a system quality number on the Van Tharp scale.
func GradeSQN(sqn float64) string {
	switch {
	case sqn >= 7:
		return "🚨 Holy Grail"
	case sqn >= 3:
		return "🟣 Superb"
	case sqn >= 2.5:
		return "🟢 Excellent"
	case sqn >= 2:
		return "🟡 Good"
	case sqn >= 1.6:
		return "🟠 Average"
	default:
		return "🔴 Poor"
	}
}

func GradeSharpe(sharpe float64) string {
	switch {
	case sharpe >= 3:
		return "🟣 Excellent"
	case sharpe >= 2:
		return "🟢 Very Good"
	case sharpe >= 1:
		return "🟡 Good"
	default:
		return "🔴 Sub-optimal"
	}
}

func GradeDrawdown(dd float64) string {
	switch {
	case dd <= 5:
		return "🟢 Excellent"
	case dd <= 15:
		return "🟡 Acceptable"
	case dd <= 30:
		return "🟠 High"
	default:
		return "🔴 Unacceptable"
	}
}

// ComputeMarketMetrics reads the derivatives summary of candles. Fewer
// than two candles yield zeros.
func ComputeMarketMetrics(candles []types.Candle) MarketMetrics {
	if len(candles) < 2 {
		return MarketMetrics{}
	}

	first, last := candles[0], candles[len(candles)-1]

	var market MarketMetrics

	if first.Close != 0 {
		market.PriceChange = (last.Close - first.Close) / first.Close * 100
	}

	var firstOI, lastOI float64
	if first.Metrics != nil {
		firstOI = first.Metrics.OpenInterest
	}

	if last.Metrics != nil {
		lastOI = last.Metrics.OpenInterest
	}

	if firstOI > 0 {
		market.OpenInterestChange = (lastOI - firstOI) / firstOI * 100
	}

	fundingSum, fundingCount := 0.0, 0

	for _, candle := range candles {
		if candle.Metrics == nil {
			continue
		}

		fundingSum += candle.Metrics.FundingRate
		fundingCount++
		market.NetInflow += candle.Metrics.NetInflow
	}

	if fundingCount > 0 {
		market.FundingRateAverage = fundingSum / float64(fundingCount)
	}

	spot := last.Close
	if last.SpotPrice != nil {
		spot = last.SpotPrice.Close
	}

	if last.Close != 0 {
		market.SpotFuturesSpread = (spot - last.Close) / last.Close * 100
	}

	return market
}

// DetectScenario classifies the regime the candles were drawn from.
func DetectScenario(market MarketMetrics) synth.Scenario {
	switch {
	case market.PriceChange > 2 && market.OpenInterestChange < -10 && market.FundingRateAverage < squeezeFundingThreshold:
		return synth.ScenarioShortSqueeze
	case market.NetInflow > 0 && market.SpotFuturesSpread > spotPremiumThresholdPct:
		return synth.ScenarioSpotPump
	case math.Abs(market.PriceChange) < 2 && market.OpenInterestChange > 10:
		return synth.ScenarioAccumulation
	case market.PriceChange < 0 && market.OpenInterestChange < -5 && market.NetInflow < 0:
		return synth.ScenarioDistribution
	default:
		return synth.ScenarioNormal
	}
}

func manipulationRisk(scenario synth.Scenario) Risk {
	switch scenario {
	case synth.ScenarioNormal:
		return RiskLow
	case synth.ScenarioShortSqueeze, synth.ScenarioDistribution:
		return RiskHigh
	default:
		return RiskMedium
	}
}

func marketStructure(market MarketMetrics) string {
	if market.SpotFuturesSpread > 0 {
		return "Spot Premium - Organic demand (Bullish bias)"
	}

	return "Futures Premium - Speculative demand (Caution advised)"
}

// RedFlags lists the warnings raised by the metrics and the regime.
func RedFlags(metrics types.BacktestMetrics, scenario synth.Scenario, market MarketMetrics) []string {
	flags := []string{}

	if metrics.WinRate > 90 {
		flags = append(flags, "⚠️ Win Rate > 90% - Possible Look-Ahead Bias or Overfitting")
	}

	if metrics.MaxDrawdown > 30 {
		flags = append(flags, "⚠️ Max Drawdown > 30% - Unacceptable risk level")
	}

	if metrics.TradeCount < minStatisticalTrades {
		flags = append(flags, "⚠️ Trade Count < 30 - Statistically insignificant")
	}

	if metrics.ProfitFactor < 1 {
		flags = append(flags, "⚠️ Profit Factor < 1 - Losses exceed gains")
	}

	if metrics.SQN > 5 {
		flags = append(flags, "🚨 SQN > 5.0 - Check for overfitting or data errors")
	}

	if scenario == synth.ScenarioShortSqueeze {
		flags = append(flags, "📉 Negative funding during rally indicates forced liquidations")
	}

	if market.FundingRateAverage < negativeFundingRedFlag {
		flags = append(flags, "⚡ Funding consistently negative ("+formatFixed(market.FundingRateAverage*100, 3)+"% avg)")
	}

	return flags
}

// Decide turns the metrics and red flags into a verdict and its reason.
func Decide(metrics types.BacktestMetrics, flags []string) (Verdict, string) {
	for _, flag := range flags {
		if strings.Contains(flag, criticalFlagMarker) || strings.Contains(flag, unacceptableFlagFragment) {
			return VerdictReject, "Critical red flags detected. Review and fix before deployment."
		}
	}

	switch {
	case metrics.SQN < tradableSQN:
		return VerdictReject, "System quality below tradable threshold (SQN < 1.6)."
	case metrics.ProfitFactor < 1:
		return VerdictReject, "Negative expectancy - system loses money."
	case len(flags) >= 3:
		return VerdictReject, "Multiple warnings indicate unreliable backtest."
	case metrics.SQN >= excellentSQN && metrics.MaxDrawdown < acceptableDrawdownForGo:
		return VerdictDeploy, "Excellent risk-adjusted returns with acceptable drawdown."
	default:
		return VerdictDeploy, "System shows positive expectancy. Deploy with tight risk management."
	}
}

// Analyst produces reports for finished runs.
type Analyst struct {
	log *logger.Logger
}

// NewAnalyst creates an analyst. A nil logger discards output.
func NewAnalyst(log *logger.Logger) *Analyst {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Analyst{log: log.Named("analyst")}
}

// Analyze grades result against the candles it was run on.
func (a *Analyst) Analyze(result types.BacktestResult, candles []types.Candle) Analysis {
	market := ComputeMarketMetrics(candles)
	scenario := DetectScenario(market)
	flags := RedFlags(result.Metrics, scenario, market)
	verdict, reason := Decide(result.Metrics, flags)

	a.log.Debug("Analyzed run",
		zap.String("run_id", result.RunID),
		zap.String("scenario", string(scenario)),
		zap.String("verdict", string(verdict)),
		zap.Int("red_flags", len(flags)),
	)

	return Analysis{
		Metrics:          result.Metrics,
		Market:           market,
		Scenario:         scenario,
		ManipulationRisk: manipulationRisk(scenario),
		MarketStructure:  marketStructure(market),
		SQNGrade:         GradeSQN(result.Metrics.SQN),
		SharpeGrade:      GradeSharpe(result.Metrics.SharpeRatio),
		DrawdownGrade:    GradeDrawdown(result.Metrics.MaxDrawdown),
		RedFlags:         flags,
		Verdict:          verdict,
		Reason:           reason,
	}
}

// Generate analyzes result and renders the markdown report.
func (a *Analyst) Generate(result types.BacktestResult, candles []types.Candle) string {
	return RenderMarkdown(a.Analyze(result, candles))
}
