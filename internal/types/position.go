package types

import "time"

type PositionState string

const (
	PositionStateFlat  PositionState = "FLAT"
	PositionStateLong  PositionState = "LONG"
	PositionStateShort PositionState = "SHORT"
)

// Position is the single open position of a simulation run.
type Position struct {
	State         PositionState `json:"state" yaml:"state"`
	EntryPrice    float64       `json:"entryPrice" yaml:"entry_price"`
	EntryTime     time.Time     `json:"entryTime" yaml:"entry_time"`
	EntrySignalID string        `json:"entrySignalId" yaml:"entry_signal_id"`
}

// IsOpen reports whether the position is long or short.
func (p Position) IsOpen() bool {
	return p.State == PositionStateLong || p.State == PositionStateShort
}

// UnrealizedReturn is the fractional gain of the position at the given price.
// Short positions gain when the price falls.
func (p Position) UnrealizedReturn(price float64) float64 {
	if !p.IsOpen() || p.EntryPrice == 0 {
		return 0
	}

	change := (price - p.EntryPrice) / p.EntryPrice
	if p.State == PositionStateShort {
		return -change
	}

	return change
}
