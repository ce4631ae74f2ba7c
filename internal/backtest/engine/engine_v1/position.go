package engine

import (
	"time"

	"github.com/rxtech-lab/argo-forge/internal/types"
)

// positionBook owns the single position of a run and the account equity.
// It applies signals with the BUY/SELL/EXIT state machine and records every
// realized round trip.
type positionBook struct {
	position     types.Position
	equity       float64
	positionSize float64
	slippage     float64
	commission   float64
	entryFee     float64
	ids          SignalIDGenerator

	signals []types.TradeSignal
	trades  []types.Trade
	fees    float64
}

func newPositionBook(config BacktestConfig, ids SignalIDGenerator) *positionBook {
	return &positionBook{
		position:     types.Position{State: types.PositionStateFlat},
		equity:       config.InitialCapital,
		positionSize: config.PositionSize,
		slippage:     config.effectiveSlippage(),
		commission:   config.effectiveCommission(),
		ids:          ids,
	}
}

// Apply runs signal through the state machine. Signals that would not change
// the position are dropped and Apply returns false.
func (b *positionBook) Apply(signal types.TradeSignal, candle types.Candle) (types.TradeSignal, bool) {
	var target types.PositionState

	switch signal.Type {
	case types.SignalTypeBuy:
		if b.position.State == types.PositionStateLong {
			return signal, false
		}

		target = types.PositionStateLong
	case types.SignalTypeSell:
		if b.position.State == types.PositionStateShort {
			return signal, false
		}

		target = types.PositionStateShort
	case types.SignalTypeExit:
		if !b.position.IsOpen() {
			return signal, false
		}

		target = types.PositionStateFlat
	default:
		return signal, false
	}

	signal.ID = b.ids.Next()

	if b.position.IsOpen() {
		b.close(signal, candle)
	}

	if target != types.PositionStateFlat {
		b.open(target, signal, candle)
	}

	b.signals = append(b.signals, signal)

	return signal, true
}

// fill is the execution price of a trade in the given direction; buyers pay
// up and sellers receive less.
func (b *positionBook) fill(buy bool, price float64) float64 {
	if buy {
		return price * (1 + b.slippage)
	}

	return price * (1 - b.slippage)
}

func (b *positionBook) charge() float64 {
	fee := b.commission * b.positionSize * b.equity
	b.equity -= fee
	b.fees += fee

	return fee
}

func (b *positionBook) open(state types.PositionState, signal types.TradeSignal, candle types.Candle) {
	b.position = types.Position{
		State:         state,
		EntryPrice:    b.fill(state == types.PositionStateLong, candle.Close),
		EntryTime:     candle.Timestamp,
		EntrySignalID: signal.ID,
	}
	b.entryFee = b.charge()
}

func (b *positionBook) close(signal types.TradeSignal, candle types.Candle) {
	// Closing a short buys back; closing a long sells.
	exitPrice := b.fill(b.position.State == types.PositionStateShort, candle.Close)
	notional := b.positionSize * b.equity
	gross := b.position.UnrealizedReturn(exitPrice) * notional
	b.equity += gross

	exitFee := b.charge()
	fees := b.entryFee + exitFee
	net := gross - fees

	var returnPct float64
	if notional != 0 {
		returnPct = net / notional * 100
	}

	b.trades = append(b.trades, types.Trade{
		Side:          b.position.State,
		EntrySignalID: b.position.EntrySignalID,
		ExitSignalID:  signal.ID,
		EntryTime:     b.position.EntryTime,
		ExitTime:      candle.Timestamp,
		EntryPrice:    b.position.EntryPrice,
		ExitPrice:     exitPrice,
		PnL:           net,
		ReturnPct:     returnPct,
		Fees:          fees,
	})

	b.position = types.Position{State: types.PositionStateFlat}
	b.entryFee = 0
}

// MarkToMarket values the account at the candle close.
func (b *positionBook) MarkToMarket(at time.Time, price float64) types.EquityPoint {
	unrealized := b.position.UnrealizedReturn(price) * b.positionSize * b.equity

	return types.EquityPoint{Time: at, Equity: b.equity + unrealized}
}
