package node

import (
	"github.com/rxtech-lab/argo-forge/internal/types"
)

// ResultReason is the reason recorded on signals emitted by result nodes.
const ResultReason = "Result triggered"

type resultSignalConfig struct {
	SignalType types.SignalType `json:"signal_type" jsonschema:"title=Signal Type,enum=BUY,enum=SELL,enum=EXIT,default=BUY"`
}

func (c *resultSignalConfig) normalize() error {
	signalType, err := types.ParseSignalType(string(c.SignalType))
	if err != nil {
		return err
	}

	c.SignalType = signalType

	return nil
}

func resultSignal() Definition {
	return Define(types.NodeKindResult, SubtypeSignal,
		"Emits a trade signal when its first input is truthy",
		func() resultSignalConfig { return resultSignalConfig{SignalType: types.SignalTypeBuy} },
		func(cfg resultSignalConfig, inputs []Value, ctx types.ExecutionContext) (Output, error) {
			if len(inputs) == 0 || !inputs[0].Truthy() {
				return Output{}, nil
			}

			return Output{
				Value:  NumberValue(1),
				Passed: true,
				Signal: &types.TradeSignal{
					Timestamp: ctx.Current.Timestamp,
					Type:      cfg.SignalType,
					Price:     ctx.Current.Close,
					Reason:    ResultReason,
				},
			}, nil
		})
}
