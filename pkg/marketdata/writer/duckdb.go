package writer

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-forge/internal/types"
)

// DuckDBWriter collects candles in an in-memory DuckDB table and exports
// them as a parquet file whose columns the candle data source reads back.
type DuckDBWriter struct {
	db         *sql.DB
	tx         *sql.Tx
	stmt       *sql.Stmt
	outputPath string
}

// NewDuckDBWriter creates a new DuckDBWriter.
// outputPath is the parquet file written by Finalize.
func NewDuckDBWriter(outputPath string) *DuckDBWriter {
	return &DuckDBWriter{
		outputPath: outputPath,
	}
}

// Initialize opens the database, creates the candles table and prepares
// the insert inside a transaction.
func (w *DuckDBWriter) Initialize() (err error) {
	w.db, err = sql.Open("duckdb", ":memory:")
	if err != nil {
		return fmt.Errorf("failed to open DuckDB connection: %w", err)
	}

	_, err = w.db.Exec(`
		CREATE TABLE IF NOT EXISTS candles (
			time TIMESTAMP,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE,
			volume DOUBLE,
			quote_volume DOUBLE,
			spot_open DOUBLE,
			spot_close DOUBLE,
			spot_volume DOUBLE,
			open_interest DOUBLE,
			funding_rate DOUBLE,
			net_inflow DOUBLE,
			cvd DOUBLE,
			long_short_accounts DOUBLE,
			long_short_positions DOUBLE
		)
	`)
	if err != nil {
		w.db.Close()

		return fmt.Errorf("failed to create table: %w", err)
	}

	w.tx, err = w.db.Begin()
	if err != nil {
		w.db.Close()

		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	w.stmt, err = w.tx.Prepare(`
		INSERT INTO candles VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		w.tx.Rollback()
		w.db.Close()

		return fmt.Errorf("failed to prepare statement: %w", err)
	}

	return nil
}

// Write inserts one candle. Missing optional sections are written as NULL.
func (w *DuckDBWriter) Write(candle types.Candle) error {
	if w.stmt == nil {
		return fmt.Errorf("writer not initialized or statement is nil")
	}

	var quote any
	if candle.QuoteVolume != nil {
		quote = *candle.QuoteVolume
	}

	var spotOpen, spotClose, spotVolume any
	if s := candle.SpotPrice; s != nil {
		spotOpen, spotClose, spotVolume = s.Open, s.Close, s.Volume
	}

	var openInterest, funding, inflow, cvd, lsAccounts, lsPositions any
	if m := candle.Metrics; m != nil {
		openInterest, funding, inflow, cvd = m.OpenInterest, m.FundingRate, m.NetInflow, m.CVD

		if m.LongShortRatio != nil {
			lsAccounts, lsPositions = m.LongShortRatio.Accounts, m.LongShortRatio.Positions
		}
	}

	_, err := w.stmt.Exec(
		candle.Timestamp,
		candle.Open,
		candle.High,
		candle.Low,
		candle.Close,
		candle.Volume,
		quote,
		spotOpen, spotClose, spotVolume,
		openInterest, funding, inflow, cvd,
		lsAccounts, lsPositions,
	)
	if err != nil {
		return fmt.Errorf("failed to insert candle: %w", err)
	}

	return nil
}

// Finalize commits the transaction and exports the table to parquet.
func (w *DuckDBWriter) Finalize() (string, error) {
	if w.tx == nil {
		return "", fmt.Errorf("writer not initialized or transaction is nil")
	}

	if err := w.stmt.Close(); err != nil {
		return "", fmt.Errorf("failed to close statement: %w", err)
	}

	w.stmt = nil

	if err := w.tx.Commit(); err != nil {
		w.tx.Rollback()
		w.tx = nil

		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.tx = nil

	path := strings.ReplaceAll(w.outputPath, "'", "''")
	if _, err := w.db.Exec(fmt.Sprintf(`COPY (SELECT * FROM candles ORDER BY time) TO '%s' (FORMAT PARQUET)`, path)); err != nil {
		return "", fmt.Errorf("failed to export to Parquet: %w", err)
	}

	return w.outputPath, nil
}

// Close releases the statement, any open transaction and the database.
func (w *DuckDBWriter) Close() error {
	var closeErrors []string

	if w.stmt != nil {
		if err := w.stmt.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Sprintf("failed to close statement: %v", err))
		}

		w.stmt = nil
	}

	if w.tx != nil {
		if err := w.tx.Rollback(); err != nil {
			closeErrors = append(closeErrors, fmt.Sprintf("failed to rollback transaction: %v", err))
		}

		w.tx = nil
	}

	if w.db != nil {
		if err := w.db.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Sprintf("failed to close db connection: %v", err))
		}

		w.db = nil
	}

	if len(closeErrors) > 0 {
		return fmt.Errorf("errors occurred during close:\n- %s", strings.Join(closeErrors, "\n- "))
	}

	return nil
}

// GetOutputPath returns the parquet file path.
func (w *DuckDBWriter) GetOutputPath() string {
	return w.outputPath
}
