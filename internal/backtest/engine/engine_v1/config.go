package engine

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-forge/internal/metrics"
	"github.com/rxtech-lab/argo-forge/pkg/errors"
	"gopkg.in/yaml.v3"
)

type BacktestConfig struct {
	InitialCapital float64                    `yaml:"initial_capital" json:"initial_capital" validate:"gt=0" jsonschema:"title=Initial Capital,description=Starting capital for the simulation in USD,exclusiveMinimum=0,default=10000"`
	PositionSize   float64                    `yaml:"position_size" json:"position_size" validate:"gt=0,lte=1" jsonschema:"title=Position Size,description=Fraction of equity committed per position,exclusiveMinimum=0,maximum=1,default=0.1"`
	Slippage       float64                    `yaml:"slippage" json:"slippage" validate:"gte=0,lt=1" jsonschema:"title=Slippage,description=Fractional price slippage applied against the trader on every fill,minimum=0,exclusiveMaximum=1,default=0.001"`
	Commission     float64                    `yaml:"commission" json:"commission" validate:"gte=0,lt=1" jsonschema:"title=Commission,description=Commission rate charged on the committed notional of every fill,minimum=0,exclusiveMaximum=1,default=0.001"`
	ApplyCosts     bool                       `yaml:"apply_costs" json:"apply_costs" jsonschema:"title=Apply Costs,description=Apply slippage and commission; when false fills happen at the close,default=true"`
	HistoryWindow  int                        `yaml:"history_window" json:"history_window" validate:"gte=1" jsonschema:"title=History Window,description=Number of prior candles visible to nodes,minimum=1,default=200"`
	StrictGraph    bool                       `yaml:"strict_graph" json:"strict_graph" jsonschema:"title=Strict Graph,description=Reject graphs containing cycles instead of skipping the cyclic nodes,default=false"`
	WinRateMode    metrics.WinRateMode        `yaml:"win_rate_mode" json:"win_rate_mode" validate:"oneof=positional realized" jsonschema:"title=Win Rate Mode,enum=positional,enum=realized,default=positional"`
	StartTime      optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional start time; earlier candles are skipped"`
	EndTime        optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional end time; later candles are skipped"`
}

// configFields mirrors BacktestConfig with plain optional times for decoding.
type configFields struct {
	InitialCapital float64             `yaml:"initial_capital" json:"initial_capital"`
	PositionSize   float64             `yaml:"position_size" json:"position_size"`
	Slippage       float64             `yaml:"slippage" json:"slippage"`
	Commission     float64             `yaml:"commission" json:"commission"`
	ApplyCosts     bool                `yaml:"apply_costs" json:"apply_costs"`
	HistoryWindow  int                 `yaml:"history_window" json:"history_window"`
	StrictGraph    bool                `yaml:"strict_graph" json:"strict_graph"`
	WinRateMode    metrics.WinRateMode `yaml:"win_rate_mode" json:"win_rate_mode"`
	StartTime      *time.Time          `yaml:"start_time" json:"start_time"`
	EndTime        *time.Time          `yaml:"end_time" json:"end_time"`
}

func (c *BacktestConfig) fields() configFields {
	fields := configFields{
		InitialCapital: c.InitialCapital,
		PositionSize:   c.PositionSize,
		Slippage:       c.Slippage,
		Commission:     c.Commission,
		ApplyCosts:     c.ApplyCosts,
		HistoryWindow:  c.HistoryWindow,
		StrictGraph:    c.StrictGraph,
		WinRateMode:    c.WinRateMode,
	}

	if c.StartTime.IsSome() {
		start := c.StartTime.Unwrap()
		fields.StartTime = &start
	}

	if c.EndTime.IsSome() {
		end := c.EndTime.Unwrap()
		fields.EndTime = &end
	}

	return fields
}

func (c *BacktestConfig) apply(fields configFields) {
	c.InitialCapital = fields.InitialCapital
	c.PositionSize = fields.PositionSize
	c.Slippage = fields.Slippage
	c.Commission = fields.Commission
	c.ApplyCosts = fields.ApplyCosts
	c.HistoryWindow = fields.HistoryWindow
	c.StrictGraph = fields.StrictGraph
	c.WinRateMode = fields.WinRateMode
	c.StartTime = optional.FromNillable(fields.StartTime)
	c.EndTime = optional.FromNillable(fields.EndTime)
}

// UnmarshalYAML decodes the config over its current values, so fields
// missing from the document keep their defaults.
func (c *BacktestConfig) UnmarshalYAML(value *yaml.Node) error {
	fields := c.fields()
	if err := value.Decode(&fields); err != nil {
		return err
	}

	c.apply(fields)

	return nil
}

// UnmarshalJSON decodes the config over its current values.
func (c *BacktestConfig) UnmarshalJSON(data []byte) error {
	fields := c.fields()
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	c.apply(fields)

	return nil
}

// MarshalJSON writes unset optional times as null.
func (c BacktestConfig) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.fields())
}

// MarshalYAML writes unset optional times as null.
func (c BacktestConfig) MarshalYAML() (any, error) {
	return c.fields(), nil
}

// Validate checks value ranges and the time window.
func (c BacktestConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid backtest config", err)
	}

	if c.StartTime.IsSome() && c.EndTime.IsSome() && c.EndTime.Unwrap().Before(c.StartTime.Unwrap()) {
		return errors.New(errors.ErrCodeInvalidConfiguration, "end_time must not be before start_time")
	}

	return nil
}

// GenerateSchema generates a JSON schema for the BacktestConfig
func (c *BacktestConfig) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == reflect.TypeOf(optional.Option[time.Time]{}) {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "simulation-engine-v1-config"
	schema.Description = "Configuration schema for SimulationEngineV1"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the BacktestConfig
func (c *BacktestConfig) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal schema: %w", err)
	}

	return string(schemaBytes), nil
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() BacktestConfig {
	return BacktestConfig{
		InitialCapital: 10000,
		PositionSize:   0.1,
		Slippage:       0.001,
		Commission:     0.001,
		ApplyCosts:     true,
		HistoryWindow:  200,
		StrictGraph:    false,
		WinRateMode:    metrics.WinRateModePositional,
		StartTime:      optional.None[time.Time](),
		EndTime:        optional.None[time.Time](),
	}
}

// FrictionlessConfig returns the defaults with slippage and commission disabled.
func FrictionlessConfig() BacktestConfig {
	config := DefaultConfig()
	config.ApplyCosts = false

	return config
}

// EmptyConfig returns a BacktestConfig with zero values and no time window.
func EmptyConfig() BacktestConfig {
	return BacktestConfig{
		StartTime: optional.None[time.Time](),
		EndTime:   optional.None[time.Time](),
	}
}

func (c BacktestConfig) effectiveSlippage() float64 {
	if !c.ApplyCosts {
		return 0
	}

	return c.Slippage
}

func (c BacktestConfig) effectiveCommission() float64 {
	if !c.ApplyCosts {
		return 0
	}

	return c.Commission
}

func (c BacktestConfig) inWindow(t time.Time) bool {
	if c.StartTime.IsSome() && t.Before(c.StartTime.Unwrap()) {
		return false
	}

	if c.EndTime.IsSome() && t.After(c.EndTime.Unwrap()) {
		return false
	}

	return true
}
