// Package datasource loads candle series from files on disk.
package datasource

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-forge/internal/logger"
	"github.com/rxtech-lab/argo-forge/internal/types"
	"github.com/rxtech-lab/argo-forge/pkg/errors"
)

// DataSource is a read-only candle store. Start and end bound the
// returned candles inclusively when set.
type DataSource interface {
	// Count returns the number of candles in the window.
	Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error)
	// Load returns the candles in the window ordered by timestamp.
	Load(start optional.Option[time.Time], end optional.Option[time.Time]) ([]types.Candle, error)
	Close() error
}

// Format identifies the on-disk layout of a candle file.
type Format string

const (
	FormatParquet Format = "parquet"
	FormatCSV     Format = "csv"
	FormatJSON    Format = "json"
)

// DetectFormat infers the format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return FormatParquet, nil
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", errors.Newf(errors.ErrCodeDataSourceUnavailable, "unsupported candle file %q (want .parquet, .csv or .json)", path)
	}
}

// Open picks a data source for path by its extension.
func Open(path string, log *logger.Logger) (DataSource, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	if format == FormatJSON {
		return NewJSONDataSource(path)
	}

	return NewDuckDBDataSource(path, format, log)
}

// LoadAll opens path, reads every candle in the window and closes the source.
func LoadAll(path string, start optional.Option[time.Time], end optional.Option[time.Time], log *logger.Logger) ([]types.Candle, error) {
	source, err := Open(path, log)
	if err != nil {
		return nil, err
	}
	defer source.Close()

	return source.Load(start, end)
}

func inWindow(ts time.Time, start optional.Option[time.Time], end optional.Option[time.Time]) bool {
	if start.IsSome() && ts.Before(start.Unwrap()) {
		return false
	}

	if end.IsSome() && ts.After(end.Unwrap()) {
		return false
	}

	return true
}
