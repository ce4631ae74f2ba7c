package types

import (
	"sort"
	"time"
)

// SpotPrice is the spot market reference for a futures candle.
type SpotPrice struct {
	Open   float64 `json:"open" yaml:"open"`
	Close  float64 `json:"close" yaml:"close"`
	Volume float64 `json:"volume" yaml:"volume"`
}

// LongShortRatio is the ratio of long to short holders, by account count and by position size.
type LongShortRatio struct {
	Accounts  float64 `json:"accounts" yaml:"accounts"`
	Positions float64 `json:"positions" yaml:"positions"`
}

// Metrics carries the derivatives and flow readings attached to a candle.
type Metrics struct {
	// OpenInterest is the outstanding notional of open contracts.
	OpenInterest float64 `json:"openInterest" yaml:"open_interest"`
	// FundingRate is the periodic perpetual funding rate (0.0001 = 0.01%).
	FundingRate float64 `json:"fundingRate" yaml:"funding_rate"`
	// NetInflow is exchange inflow minus outflow for the spot asset.
	NetInflow float64 `json:"netInflow" yaml:"net_inflow"`
	// CVD is the cumulative volume delta of aggressive buyers over sellers.
	CVD            float64         `json:"cvd" yaml:"cvd"`
	LongShortRatio *LongShortRatio `json:"longShortRatio,omitempty" yaml:"long_short_ratio,omitempty"`
}

// Candle is one bar of market data. Optional sections are nil when the
// upstream source did not provide them.
type Candle struct {
	Timestamp   time.Time  `json:"timestamp" yaml:"timestamp"`
	Open        float64    `json:"open" yaml:"open"`
	High        float64    `json:"high" yaml:"high"`
	Low         float64    `json:"low" yaml:"low"`
	Close       float64    `json:"close" yaml:"close"`
	Volume      float64    `json:"volume" yaml:"volume"`
	QuoteVolume *float64   `json:"quoteVolume,omitempty" yaml:"quote_volume,omitempty"`
	SpotPrice   *SpotPrice `json:"spotPrice,omitempty" yaml:"spot_price,omitempty"`
	Metrics     *Metrics   `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// HasMetrics reports whether the candle carries derivatives metrics.
func (c Candle) HasMetrics() bool {
	return c.Metrics != nil
}

// SortCandles returns a copy of candles ordered ascending by timestamp.
// Candles sharing a timestamp keep their input order.
func SortCandles(candles []Candle) []Candle {
	sorted := make([]Candle, len(candles))
	copy(sorted, candles)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	return sorted
}

// ExecutionContext is the per-candle view handed to node evaluators.
// Prior is ordered oldest first and must not be modified.
type ExecutionContext struct {
	Current Candle
	Prior   []Candle
}

// Previous returns the candle immediately before the current one.
func (c ExecutionContext) Previous() (Candle, bool) {
	if len(c.Prior) == 0 {
		return Candle{}, false
	}

	return c.Prior[len(c.Prior)-1], true
}

// Back returns the candle n steps before the current one (n=1 is the previous candle).
func (c ExecutionContext) Back(n int) (Candle, bool) {
	if n <= 0 || n > len(c.Prior) {
		return Candle{}, false
	}

	return c.Prior[len(c.Prior)-n], true
}

// Window returns the prior candles followed by the current candle.
func (c ExecutionContext) Window() []Candle {
	window := make([]Candle, 0, len(c.Prior)+1)
	window = append(window, c.Prior...)

	return append(window, c.Current)
}
