package results

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/rxtech-lab/argo-forge/internal/types"
	"github.com/rxtech-lab/argo-forge/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ListRuns reads the stats of every exported run under outputDir, newest
// first. Directories without a stats file are skipped.
func ListRuns(outputDir string) ([]types.RunStats, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to read results directory %s", outputDir)
	}

	runs := make([]types.RunStats, 0, len(entries))

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		stats, err := ReadRunStats(filepath.Join(outputDir, entry.Name(), StatsFileName))
		if errors.HasCode(err, errors.ErrCodeDataNotFound) {
			continue
		}

		if err != nil {
			return nil, err
		}

		runs = append(runs, stats)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})

	return runs, nil
}

// ReadRunStats reads the first entry of a stats file.
func ReadRunStats(path string) (types.RunStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.RunStats{}, errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to read %s", path)
	}

	var stats []types.RunStats
	if err := yaml.Unmarshal(data, &stats); err != nil {
		return types.RunStats{}, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to parse %s", path)
	}

	if len(stats) == 0 {
		return types.RunStats{}, errors.Newf(errors.ErrCodeDataNotFound, "%s holds no runs", path)
	}

	return stats[0], nil
}

// Reader queries the parquet tables of an exported run.
type Reader struct {
	db *sql.DB
	sq squirrel.StatementBuilderType
}

// NewReader opens an in-memory DuckDB connection for reading run tables.
func NewReader() (*Reader, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open DuckDB connection", err)
	}

	return &Reader{
		db: db,
		sq: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// Close releases the connection.
func (r *Reader) Close() error {
	return r.db.Close()
}

func parquetSource(path string) string {
	return fmt.Sprintf("read_parquet('%s')", strings.ReplaceAll(path, "'", "''"))
}

// Signals reads a signals table ordered by time.
func (r *Reader) Signals(path string) ([]types.TradeSignal, error) {
	query, args, err := r.sq.
		Select("id", "timestamp", "type", "price", "reason", "node_id").
		From(parquetSource(path)).
		OrderBy("timestamp", "id").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build signals query", err)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to query %s", path)
	}
	defer rows.Close()

	signals := []types.TradeSignal{}

	for rows.Next() {
		var (
			signal     types.TradeSignal
			signalType string
		)

		if err := rows.Scan(&signal.ID, &signal.Timestamp, &signalType, &signal.Price, &signal.Reason, &signal.NodeID); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan signal", err)
		}

		signal.Type = types.SignalType(signalType)
		signals = append(signals, signal)
	}

	return signals, rows.Err()
}

// Trades reads a trades table ordered by exit time.
func (r *Reader) Trades(path string) ([]types.Trade, error) {
	query, args, err := r.sq.
		Select("side", "entry_signal_id", "exit_signal_id", "entry_time", "exit_time",
			"entry_price", "exit_price", "pnl", "return_pct", "fees").
		From(parquetSource(path)).
		OrderBy("exit_time").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build trades query", err)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to query %s", path)
	}
	defer rows.Close()

	trades := []types.Trade{}

	for rows.Next() {
		var (
			trade types.Trade
			side  string
		)

		err := rows.Scan(&side, &trade.EntrySignalID, &trade.ExitSignalID, &trade.EntryTime, &trade.ExitTime,
			&trade.EntryPrice, &trade.ExitPrice, &trade.PnL, &trade.ReturnPct, &trade.Fees)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan trade", err)
		}

		trade.Side = types.PositionState(side)
		trades = append(trades, trade)
	}

	return trades, rows.Err()
}
