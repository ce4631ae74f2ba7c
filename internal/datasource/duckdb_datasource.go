package datasource

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-forge/internal/logger"
	"github.com/rxtech-lab/argo-forge/internal/types"
	"github.com/rxtech-lab/argo-forge/pkg/errors"
	"go.uber.org/zap"
)

const viewName = "candles"

// Optional columns. A candle gets a SpotPrice when any spot column is
// non-null and Metrics when any metric column is non-null.
var (
	spotColumns   = []string{"spot_open", "spot_close", "spot_volume"}
	metricColumns = []string{"open_interest", "funding_rate", "net_inflow", "cvd"}
	ratioColumns  = []string{"long_short_accounts", "long_short_positions"}
)

// DuckDBDataSource reads parquet or CSV candle files through an in-memory
// DuckDB view.
type DuckDBDataSource struct {
	db       *sql.DB
	logger   *logger.Logger
	sq       squirrel.StatementBuilderType
	timeCol  string
	optional map[string]bool
}

// NewDuckDBDataSource opens path and exposes it as the candles view.
func NewDuckDBDataSource(path string, format Format, log *logger.Logger) (*DuckDBDataSource, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	_, err = db.Exec(`
		SET memory_limit = '1GB';
		SET threads = 4;
	`)
	if err != nil {
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to configure duckdb", err)
	}

	d := &DuckDBDataSource{
		db:       db,
		logger:   log.Named("datasource"),
		sq:       squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		optional: map[string]bool{},
	}

	if err := d.initialize(path, format); err != nil {
		db.Close()

		return nil, err
	}

	return d, nil
}

func (d *DuckDBDataSource) initialize(path string, format Format) error {
	var reader string

	escaped := strings.ReplaceAll(path, "'", "''")

	switch format {
	case FormatParquet:
		reader = fmt.Sprintf("read_parquet('%s')", escaped)
	case FormatCSV:
		reader = fmt.Sprintf("read_csv_auto('%s', header = true)", escaped)
	default:
		return errors.Newf(errors.ErrCodeDataSourceUnavailable, "duckdb cannot read %s files", format)
	}

	_, err := d.db.Exec(fmt.Sprintf("CREATE OR REPLACE VIEW %s AS SELECT * FROM %s", viewName, reader))
	if err != nil {
		return errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to open candle file %s", path)
	}

	columns, err := d.columns()
	if err != nil {
		return err
	}

	switch {
	case columns["time"]:
		d.timeCol = "time"
	case columns["timestamp"]:
		d.timeCol = `"timestamp"`
	default:
		return errors.Newf(errors.ErrCodeDataNotFound, "candle file %s has no time or timestamp column", path)
	}

	for _, required := range []string{"open", "high", "low", "close", "volume"} {
		if !columns[required] {
			return errors.Newf(errors.ErrCodeDataNotFound, "candle file %s is missing column %s", path, required)
		}
	}

	for name := range columns {
		d.optional[name] = true
	}

	d.logger.Debug("Opened candle file",
		zap.String("path", path),
		zap.String("format", string(format)),
		zap.Int("columns", len(columns)),
	)

	return nil
}

func (d *DuckDBDataSource) columns() (map[string]bool, error) {
	query, args, err := d.sq.
		Select("column_name").
		From("information_schema.columns").
		Where(squirrel.Eq{"table_name": viewName}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build column query", err)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to list columns", err)
	}
	defer rows.Close()

	columns := map[string]bool{}

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan column name", err)
		}

		columns[strings.ToLower(name)] = true
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating columns", err)
	}

	return columns, nil
}

func (d *DuckDBDataSource) window(builder squirrel.SelectBuilder, start optional.Option[time.Time], end optional.Option[time.Time]) squirrel.SelectBuilder {
	if start.IsSome() {
		builder = builder.Where(squirrel.GtOrEq{d.timeCol: start.Unwrap()})
	}

	if end.IsSome() {
		builder = builder.Where(squirrel.LtOrEq{d.timeCol: end.Unwrap()})
	}

	return builder
}

// Count implements DataSource.
func (d *DuckDBDataSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	query, args, err := d.window(d.sq.Select("COUNT(*)").From(viewName), start, end).ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build count query", err)
	}

	var count int
	if err := d.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count candles", err)
	}

	return count, nil
}

// Load implements DataSource.
func (d *DuckDBDataSource) Load(start optional.Option[time.Time], end optional.Option[time.Time]) ([]types.Candle, error) {
	extra := d.presentColumns()

	selected := []string{fmt.Sprintf("CAST(%s AS TIMESTAMP)", d.timeCol)}
	for _, name := range append([]string{"open", "high", "low", "close", "volume"}, extra...) {
		selected = append(selected, fmt.Sprintf("CAST(%s AS DOUBLE)", name))
	}

	query, args, err := d.window(d.sq.Select(selected...).From(viewName), start, end).
		OrderBy(d.timeCol + " ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build candle query", err)
	}

	d.logger.Debug("Loading candles", zap.String("query", query))

	stmt, err := d.db.Prepare(query)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to prepare candle query", err)
	}
	defer stmt.Close()

	rows, err := stmt.Query(args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query candles", err)
	}
	defer rows.Close()

	candles := make([]types.Candle, 0, 1024)

	for rows.Next() {
		var candle types.Candle

		values := make([]sql.NullFloat64, len(extra))
		dest := []any{&candle.Timestamp, &candle.Open, &candle.High, &candle.Low, &candle.Close, &candle.Volume}

		for i := range values {
			dest = append(dest, &values[i])
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan candle", err)
		}

		byName := make(map[string]sql.NullFloat64, len(extra))
		for i, name := range extra {
			byName[name] = values[i]
		}

		applyOptional(&candle, byName)
		candles = append(candles, candle)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating candles", err)
	}

	return candles, nil
}

// Close releases the DuckDB handle.
func (d *DuckDBDataSource) Close() error {
	return d.db.Close()
}

func (d *DuckDBDataSource) presentColumns() []string {
	var present []string

	for _, group := range [][]string{{"quote_volume"}, spotColumns, metricColumns, ratioColumns} {
		for _, name := range group {
			if d.optional[name] {
				present = append(present, name)
			}
		}
	}

	return present
}

func applyOptional(candle *types.Candle, values map[string]sql.NullFloat64) {
	if v := values["quote_volume"]; v.Valid {
		quote := v.Float64
		candle.QuoteVolume = &quote
	}

	if anyValid(values, spotColumns) {
		candle.SpotPrice = &types.SpotPrice{
			Open:   values["spot_open"].Float64,
			Close:  values["spot_close"].Float64,
			Volume: values["spot_volume"].Float64,
		}
	}

	if anyValid(values, metricColumns) {
		candle.Metrics = &types.Metrics{
			OpenInterest: values["open_interest"].Float64,
			FundingRate:  values["funding_rate"].Float64,
			NetInflow:    values["net_inflow"].Float64,
			CVD:          values["cvd"].Float64,
		}

		if anyValid(values, ratioColumns) {
			candle.Metrics.LongShortRatio = &types.LongShortRatio{
				Accounts:  values["long_short_accounts"].Float64,
				Positions: values["long_short_positions"].Float64,
			}
		}
	}
}

func anyValid(values map[string]sql.NullFloat64, names []string) bool {
	for _, name := range names {
		if values[name].Valid {
			return true
		}
	}

	return false
}
