package datasource

import (
	"encoding/json"
	"os"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-forge/internal/types"
	"github.com/rxtech-lab/argo-forge/pkg/errors"
)

// JSONDataSource serves candles from a JSON array held in memory.
type JSONDataSource struct {
	candles []types.Candle
}

// NewJSONDataSource reads a JSON array of candles from path.
func NewJSONDataSource(path string) (*JSONDataSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to read candle file %s", path)
	}

	candles, err := DecodeCandles(data)
	if err != nil {
		return nil, err
	}

	return &JSONDataSource{candles: types.SortCandles(candles)}, nil
}

// DecodeCandles parses a JSON array of candles.
func DecodeCandles(data []byte) ([]types.Candle, error) {
	var candles []types.Candle
	if err := json.Unmarshal(data, &candles); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to decode candle JSON", err)
	}

	return candles, nil
}

func (j *JSONDataSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	count := 0

	for _, candle := range j.candles {
		if inWindow(candle.Timestamp, start, end) {
			count++
		}
	}

	return count, nil
}

func (j *JSONDataSource) Load(start optional.Option[time.Time], end optional.Option[time.Time]) ([]types.Candle, error) {
	candles := make([]types.Candle, 0, len(j.candles))

	for _, candle := range j.candles {
		if inWindow(candle.Timestamp, start, end) {
			candles = append(candles, candle)
		}
	}

	return candles, nil
}

func (j *JSONDataSource) Close() error {
	return nil
}
