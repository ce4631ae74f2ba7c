package writer

import (
	"fmt"

	"github.com/rxtech-lab/argo-forge/internal/types"
)

// MarketDataWriter defines the interface for writing candles to a destination.
type MarketDataWriter interface {
	// Initialize sets up the writer, potentially creating tables or files.
	Initialize() error
	// Write persists a single candle.
	Write(candle types.Candle) error
	// Finalize completes the writing process (e.g., commits transactions, exports files).
	Finalize() (outputPath string, err error)
	// Close releases any resources held by the writer.
	Close() error
	// GetOutputPath returns the configured output file path.
	GetOutputPath() string
}

// WriteAll writes candles with an initialized writer and finalizes it.
// The caller still closes the writer.
func WriteAll(w MarketDataWriter, candles []types.Candle) (string, error) {
	for i, candle := range candles {
		if err := w.Write(candle); err != nil {
			return "", fmt.Errorf("failed to write candle %d: %w", i, err)
		}
	}

	return w.Finalize()
}
