package types

import (
	"fmt"
	"strings"
	"time"
)

type SignalType string

const (
	// SignalTypeBuy opens a long position, closing any short first.
	SignalTypeBuy SignalType = "BUY"
	// SignalTypeSell opens a short position, closing any long first.
	SignalTypeSell SignalType = "SELL"
	// SignalTypeExit closes whatever position is open and goes flat.
	SignalTypeExit SignalType = "EXIT"
)

// ParseSignalType accepts BUY, SELL or EXIT in any letter case.
func ParseSignalType(raw string) (SignalType, error) {
	switch SignalType(strings.ToUpper(strings.TrimSpace(raw))) {
	case SignalTypeBuy:
		return SignalTypeBuy, nil
	case SignalTypeSell:
		return SignalTypeSell, nil
	case SignalTypeExit:
		return SignalTypeExit, nil
	default:
		return "", fmt.Errorf("unknown signal type %q", raw)
	}
}

// TradeSignal is an instruction emitted by a node whose condition passed.
// ID is assigned by the engine when the signal is applied.
type TradeSignal struct {
	ID        string     `json:"id" yaml:"id"`
	Timestamp time.Time  `json:"timestamp" yaml:"timestamp"`
	Type      SignalType `json:"type" yaml:"type"`
	Price     float64    `json:"price" yaml:"price"`
	Reason    string     `json:"reason" yaml:"reason"`
	NodeID    string     `json:"nodeId" yaml:"node_id"`
}
