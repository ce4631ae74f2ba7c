package synth

import (
	"strings"

	"github.com/rxtech-lab/argo-forge/pkg/errors"
)

// Scenario labels a market regime the synthesizer can reproduce.
type Scenario string

const (
	// ScenarioNormal is the control series: noise around a flat price.
	ScenarioNormal Scenario = "NORMAL"
	// ScenarioShortSqueeze rallies hard against negative funding while OI unwinds.
	ScenarioShortSqueeze Scenario = "SHORT_SQUEEZE"
	// ScenarioSpotPump climbs in steps whose dips are bought by spot inflow.
	ScenarioSpotPump Scenario = "SPOT_PUMP"
	// ScenarioAccumulation holds price flat while OI and CVD build.
	ScenarioAccumulation Scenario = "ACCUMULATION"
	// ScenarioDistribution rallies in short legs that fail while OI bleeds out.
	ScenarioDistribution Scenario = "DISTRIBUTION"
)

// AllScenarios lists every scenario in a stable order.
var AllScenarios = []Scenario{
	ScenarioNormal,
	ScenarioShortSqueeze,
	ScenarioSpotPump,
	ScenarioAccumulation,
	ScenarioDistribution,
}

// ParseScenario resolves a scenario name case-insensitively. Dashes and
// spaces are accepted in place of underscores.
func ParseScenario(raw string) (Scenario, error) {
	name := strings.ToUpper(strings.TrimSpace(raw))
	name = strings.NewReplacer("-", "_", " ", "_").Replace(name)

	for _, scenario := range AllScenarios {
		if string(scenario) == name {
			return scenario, nil
		}
	}

	return "", errors.Newf(errors.ErrCodeUnknownScenario, "unknown scenario %q", raw)
}

// drift is the deterministic shape of one candle after the warm-up.
// Price and OI are fractional changes of their curves; the rest are levels.
type drift struct {
	price   float64
	oi      float64
	funding float64
	// inflow and cvd are expressed in units of the base volume.
	inflow float64
	cvd    float64
	volume float64
	spot   float64
	// spread is the spot premium over the futures close.
	spread float64
	// quiet scales the price noise down for scenarios that must stay flat.
	quiet bool
}

var warmUpDrift = drift{funding: 0.0001, volume: 1, spot: 1, spread: -0.0005}

// driftFor returns the drift of the step-th candle after the warm-up.
func driftFor(scenario Scenario, step int) drift {
	switch scenario {
	case ScenarioShortSqueeze:
		return drift{price: 0.02, oi: -0.01, funding: -0.0005, inflow: 0.05, cvd: 0.3, volume: 2.5, spot: 1.5, spread: -0.0005}
	case ScenarioSpotPump:
		price := 0.015
		if step%3 == 2 {
			price = -0.015
		}

		return drift{price: price, oi: 0.002, funding: 0.0001, inflow: 0.4, cvd: 0.1, volume: 1.5, spot: 3, spread: 0.005}
	case ScenarioAccumulation:
		return drift{price: 0, oi: 0.03, funding: 0.0001, inflow: 0.05, cvd: 0.5, volume: 2, spot: 1, spread: -0.0005, quiet: true}
	case ScenarioDistribution:
		price := 0.003
		if step%6 == 5 {
			price = -0.02
		}

		return drift{price: price, oi: -0.01, funding: 0.0003, inflow: -0.1, cvd: -0.2, volume: 1.2, spot: 0.8, spread: -0.0005}
	default:
		return warmUpDrift
	}
}
