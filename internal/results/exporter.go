package results

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-forge/internal/logger"
	"github.com/rxtech-lab/argo-forge/internal/types"
	"github.com/rxtech-lab/argo-forge/pkg/errors"
	"go.uber.org/zap"
)

const (
	StatsFileName   = "stats.yaml"
	SignalsFileName = "signals.parquet"
	TradesFileName  = "trades.parquet"
	EquityFileName  = "equity.parquet"
)

// table is one exported parquet file.
type table struct {
	name   string
	schema string
	insert string
	file   string
	rows   func(stmt *sql.Stmt) error
}

// Exporter writes run results under a directory, one subdirectory per run.
type Exporter struct {
	outputDir string
	logger    *logger.Logger
}

// NewExporter creates an exporter rooted at outputDir.
func NewExporter(outputDir string, log *logger.Logger) *Exporter {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Exporter{
		outputDir: outputDir,
		logger:    log.Named("results"),
	}
}

// RunDir is the directory the given run is written to.
func (e *Exporter) RunDir(runID string) string {
	return filepath.Join(e.outputDir, runID)
}

// Export writes the parquet tables and stats.yaml for result and returns
// the stats with the file paths filled in.
func (e *Exporter) Export(info RunInfo, result types.BacktestResult, candles []types.Candle) (types.RunStats, error) {
	if result.RunID == "" {
		return types.RunStats{}, errors.New(errors.ErrCodeMissingParameter, "result has no run id")
	}

	if info.Timestamp.IsZero() {
		info.Timestamp = time.Now().UTC()
	}

	dir := e.RunDir(result.RunID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return types.RunStats{}, errors.Wrap(errors.ErrCodeWriteFailed, "failed to create result directory", err)
	}

	stats := Summarize(info, result, candles)
	stats.SignalsFilePath = filepath.Join(dir, SignalsFileName)
	stats.TradesFilePath = filepath.Join(dir, TradesFileName)
	stats.EquityFilePath = filepath.Join(dir, EquityFileName)

	if err := e.writeTables(result, stats); err != nil {
		return types.RunStats{}, err
	}

	if err := types.WriteRunStats(filepath.Join(dir, StatsFileName), []types.RunStats{stats}); err != nil {
		return types.RunStats{}, errors.Wrap(errors.ErrCodeWriteFailed, "failed to write run stats", err)
	}

	e.logger.Info("Exported run results",
		zap.String("run_id", result.RunID),
		zap.String("dir", dir),
		zap.Int("signals", len(result.Signals)),
		zap.Int("trades", len(result.Trades)),
	)

	return stats, nil
}

func (e *Exporter) writeTables(result types.BacktestResult, stats types.RunStats) error {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open DuckDB connection", err)
	}
	defer db.Close()

	tables := []table{
		{
			name: "signals",
			schema: `
				id TEXT,
				timestamp TIMESTAMP,
				type TEXT,
				price DOUBLE,
				reason TEXT,
				node_id TEXT`,
			insert: "INSERT INTO signals VALUES (?, ?, ?, ?, ?, ?)",
			file:   stats.SignalsFilePath,
			rows: func(stmt *sql.Stmt) error {
				for _, s := range result.Signals {
					if _, err := stmt.Exec(s.ID, s.Timestamp, string(s.Type), s.Price, s.Reason, s.NodeID); err != nil {
						return err
					}
				}

				return nil
			},
		},
		{
			name: "trades",
			schema: `
				side TEXT,
				entry_signal_id TEXT,
				exit_signal_id TEXT,
				entry_time TIMESTAMP,
				exit_time TIMESTAMP,
				entry_price DOUBLE,
				exit_price DOUBLE,
				pnl DOUBLE,
				return_pct DOUBLE,
				fees DOUBLE`,
			insert: "INSERT INTO trades VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			file:   stats.TradesFilePath,
			rows: func(stmt *sql.Stmt) error {
				for _, t := range result.Trades {
					_, err := stmt.Exec(string(t.Side), t.EntrySignalID, t.ExitSignalID, t.EntryTime, t.ExitTime,
						t.EntryPrice, t.ExitPrice, t.PnL, t.ReturnPct, t.Fees)
					if err != nil {
						return err
					}
				}

				return nil
			},
		},
		{
			name: "equity",
			schema: `
				time TIMESTAMP,
				equity DOUBLE`,
			insert: "INSERT INTO equity VALUES (?, ?)",
			file:   stats.EquityFilePath,
			rows: func(stmt *sql.Stmt) error {
				for _, p := range result.EquityCurve {
					if _, err := stmt.Exec(p.Time, p.Equity); err != nil {
						return err
					}
				}

				return nil
			},
		},
	}

	for _, t := range tables {
		if err := writeTable(db, t); err != nil {
			return errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to export %s", t.name)
		}
	}

	return nil
}

func writeTable(db *sql.DB, t table) error {
	if _, err := db.Exec(fmt.Sprintf("CREATE TABLE %s (%s)", t.name, t.schema)); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(t.insert)
	if err != nil {
		tx.Rollback()

		return fmt.Errorf("failed to prepare statement: %w", err)
	}

	if err := t.rows(stmt); err != nil {
		stmt.Close()
		tx.Rollback()

		return fmt.Errorf("failed to insert row: %w", err)
	}

	stmt.Close()

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	path := strings.ReplaceAll(t.file, "'", "''")
	if _, err := db.Exec(fmt.Sprintf("COPY %s TO '%s' (FORMAT PARQUET)", t.name, path)); err != nil {
		return fmt.Errorf("failed to export to parquet: %w", err)
	}

	return nil
}
