package marketdata

import (
	"encoding/json"
	"sort"

	"github.com/invopop/jsonschema"
	"github.com/rxtech-lab/argo-forge/pkg/errors"
)

// ProviderInfo contains metadata about a market data provider.
type ProviderInfo struct {
	Name         string `json:"name"`
	DisplayName  string `json:"displayName"`
	Description  string `json:"description"`
	RequiresAuth bool   `json:"requiresAuth"`
}

// providerRegistry holds metadata about all supported providers.
var providerRegistry = map[ProviderType]ProviderInfo{
	ProviderPolygon: {
		Name:         string(ProviderPolygon),
		DisplayName:  "Polygon.io",
		Description:  "US stock market data provider with historical OHLCV aggregates, without derivatives metrics",
		RequiresAuth: true,
	},
	ProviderBinance: {
		Name:         string(ProviderBinance),
		DisplayName:  "Binance",
		Description:  "Cryptocurrency exchange; futures klines with spot prices, funding rates, open interest and CVD",
		RequiresAuth: false,
	},
}

// GetSupportedProviders returns a list of all supported provider names.
func GetSupportedProviders() []string {
	providers := make([]string, 0, len(providerRegistry))
	for providerType := range providerRegistry {
		providers = append(providers, string(providerType))
	}

	sort.Strings(providers)

	return providers
}

// GetProviderInfo returns metadata for a specific provider.
func GetProviderInfo(providerName string) (ProviderInfo, error) {
	info, exists := providerRegistry[ProviderType(providerName)]
	if !exists {
		return ProviderInfo{}, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported provider: %s", providerName)
	}

	return info, nil
}

// GetDownloadConfigSchema returns the JSON schema of a FetchConfig pinned to
// one provider. Polygon documents additionally require an API key.
func GetDownloadConfigSchema(providerName string) (string, error) {
	if _, err := GetProviderInfo(providerName); err != nil {
		return "", err
	}

	reflector := jsonschema.Reflector{ExpandedStruct: true}
	//nolint:exhaustruct // Empty struct is intentional for schema generation
	schema := reflector.Reflect(&FetchConfig{})

	if property, ok := schema.Properties.Get("provider"); ok {
		property.Enum = nil
		property.Default = nil
		property.Const = providerName
	}

	if ProviderType(providerName) == ProviderPolygon {
		schema.Required = append(schema.Required, "apiKey")
	}

	data, err := json.Marshal(schema)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeUnknown, "failed to marshal schema", err)
	}

	return string(data), nil
}
