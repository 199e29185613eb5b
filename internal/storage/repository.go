// Package storage owns the SQLite persistence layer: the append-only runs
// log, the idempotent prices table, the meta key/value bookkeeping, and the
// per-symbol provider metadata.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/guttosm/bistpulse/internal/domain/models"
)

// SchemaVersion is recorded in the meta table on migration.
const SchemaVersion = "1"

const timestampLayout = "2006-01-02 15:04:05"

// PricesRepository defines the contract for store operations.
type PricesRepository interface {
	// PersistRun writes the run record, upserts all price rows keyed by
	// (ticker, timestamp, interval), updates the meta bookkeeping keys, and
	// replaces symbol metadata, all inside one transaction.
	PersistRun(run models.Run, rows []models.PriceRow, metas []models.SymbolMeta) error
	GetTickerSummary(ticker, interval string, from, to *time.Time) (*models.TickerSummary, error)
	GetMeta(key string) (string, error)
	Ping() error
}

type pricesRepository struct {
	db *sql.DB
}

// NewPricesRepository wraps an open database handle. Migrate must have been
// run against the same database.
func NewPricesRepository(db *sql.DB) PricesRepository {
	return &pricesRepository{db: db}
}

// Migrate creates the schema if it does not exist and stamps the schema
// version. Safe to run on every startup.
func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id     TEXT PRIMARY KEY,
			range_str  TEXT NOT NULL,
			interval   TEXT NOT NULL,
			started_at TEXT NOT NULL,
			requested  INTEGER NOT NULL,
			succeeded  INTEGER NOT NULL,
			row_count  INTEGER NOT NULL,
			csv_path   TEXT,
			xlsx_path  TEXT,
			note       TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS prices (
			ticker        TEXT NOT NULL,
			timestamp_utc TEXT NOT NULL,
			interval      TEXT NOT NULL,
			open          REAL,
			high          REAL,
			low           REAL,
			close         REAL,
			volume        REAL,
			adjclose      REAL,
			range_str     TEXT,
			ingested_at   TEXT NOT NULL,
			run_id        TEXT NOT NULL,
			PRIMARY KEY (ticker, timestamp_utc, interval)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_prices_ticker ON prices(ticker)`,
		`CREATE INDEX IF NOT EXISTS idx_prices_ts ON prices(timestamp_utc)`,

		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS symbol_meta (
			symbol                TEXT PRIMARY KEY,
			currency              TEXT,
			exchange_name         TEXT,
			full_exchange_name    TEXT,
			instrument_type       TEXT,
			timezone              TEXT,
			gmtoffset             INTEGER,
			regular_market_price  REAL,
			fifty_two_week_high   REAL,
			fifty_two_week_low    REAL,
			regular_market_volume REAL,
			long_name             TEXT,
			short_name            TEXT,
			previous_close        REAL,
			ingested_at           TEXT,
			run_id                TEXT
		)`,
	}

	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	if _, err := db.Exec(
		`INSERT INTO meta (key, value) VALUES ('schema_version', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		SchemaVersion,
	); err != nil {
		return fmt.Errorf("stamp schema version: %w", err)
	}
	return nil
}

const upsertPriceSQL = `
	INSERT INTO prices (
		ticker, timestamp_utc, interval,
		open, high, low, close, volume, adjclose,
		range_str, ingested_at, run_id
	) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
	ON CONFLICT(ticker, timestamp_utc, interval) DO UPDATE SET
		open        = excluded.open,
		high        = excluded.high,
		low         = excluded.low,
		close       = excluded.close,
		volume      = excluded.volume,
		adjclose    = excluded.adjclose,
		range_str   = excluded.range_str,
		ingested_at = excluded.ingested_at,
		run_id      = excluded.run_id`

const upsertSymbolMetaSQL = `
	INSERT INTO symbol_meta (
		symbol, currency, exchange_name, full_exchange_name, instrument_type,
		timezone, gmtoffset, regular_market_price, fifty_two_week_high,
		fifty_two_week_low, regular_market_volume, long_name, short_name,
		previous_close, ingested_at, run_id
	) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
	ON CONFLICT(symbol) DO UPDATE SET
		currency              = excluded.currency,
		exchange_name         = excluded.exchange_name,
		full_exchange_name    = excluded.full_exchange_name,
		instrument_type       = excluded.instrument_type,
		timezone              = excluded.timezone,
		gmtoffset             = excluded.gmtoffset,
		regular_market_price  = excluded.regular_market_price,
		fifty_two_week_high   = excluded.fifty_two_week_high,
		fifty_two_week_low    = excluded.fifty_two_week_low,
		regular_market_volume = excluded.regular_market_volume,
		long_name             = excluded.long_name,
		short_name            = excluded.short_name,
		previous_close        = excluded.previous_close,
		ingested_at           = excluded.ingested_at,
		run_id                = excluded.run_id`

const upsertMetaSQL = `
	INSERT INTO meta (key, value) VALUES (?,?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value`

// PersistRun writes everything a run produced in one transaction. If the
// process dies mid-persist, at most this run's writes are lost or partial;
// committed runs are never touched.
func (r *pricesRepository) PersistRun(run models.Run, rows []models.PriceRow, metas []models.SymbolMeta) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	ingestedAt := time.Now().UTC().Format(timestampLayout)

	if _, err := tx.Exec(
		`INSERT INTO runs (run_id, range_str, interval, started_at, requested, succeeded, row_count, csv_path, xlsx_path, note)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		run.ID, run.Range, run.Interval, run.StartedAt.UTC().Format(timestampLayout),
		run.Requested, run.Succeeded, run.RowCount, run.CSVPath, run.XLSXPath, run.Note,
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(upsertPriceSQL)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare price upsert: %w", err)
	}
	for _, row := range rows {
		if _, err := stmt.Exec(
			row.Ticker, row.Timestamp.UTC().Format(timestampLayout), row.Interval,
			row.Open, row.High, row.Low, row.Close, row.Volume, row.AdjClose,
			row.Range, ingestedAt, run.ID,
		); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return fmt.Errorf("upsert price %s@%s: %w", row.Ticker, row.Timestamp, err)
		}
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("close price stmt: %w", err)
	}

	mstmt, err := tx.Prepare(upsertSymbolMetaSQL)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare symbol_meta upsert: %w", err)
	}
	for _, m := range metas {
		if _, err := mstmt.Exec(
			m.Symbol, m.Currency, m.ExchangeName, m.FullExchangeName, m.InstrumentType,
			m.Timezone, m.GMTOffset, m.RegularMarketPrice, m.FiftyTwoWeekHigh,
			m.FiftyTwoWeekLow, m.RegularMarketVolume, m.LongName, m.ShortName,
			m.PreviousClose, ingestedAt, run.ID,
		); err != nil {
			_ = mstmt.Close()
			_ = tx.Rollback()
			return fmt.Errorf("upsert symbol_meta %s: %w", m.Symbol, err)
		}
	}
	if err := mstmt.Close(); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("close symbol_meta stmt: %w", err)
	}

	bookkeeping := [][2]string{
		{"last_run_id", run.ID},
		{"last_run_at", run.StartedAt.UTC().Format(timestampLayout)},
		{"last_run_rows", fmt.Sprintf("%d", run.RowCount)},
	}
	for _, kv := range bookkeeping {
		if _, err := tx.Exec(upsertMetaSQL, kv[0], kv[1]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upsert meta %s: %w", kv[0], err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetTickerSummary aggregates the stored bars for one ticker/interval pair,
// optionally bounded by [from, to]. Returns (nil, nil) when no bars match.
func (r *pricesRepository) GetTickerSummary(ticker, interval string, from, to *time.Time) (*models.TickerSummary, error) {
	conditions := "ticker = ? AND interval = ?"
	args := []interface{}{ticker, interval}
	if from != nil {
		conditions += " AND timestamp_utc >= ?"
		args = append(args, from.UTC().Format(timestampLayout))
	}
	if to != nil {
		conditions += " AND timestamp_utc <= ?"
		args = append(args, to.UTC().Format(timestampLayout))
	}

	query := fmt.Sprintf(`
		SELECT
			COUNT(*),
			MIN(timestamp_utc),
			MAX(timestamp_utc),
			MIN(low),
			MAX(high),
			SUM(volume),
			(SELECT close FROM prices WHERE %s ORDER BY timestamp_utc DESC LIMIT 1)
		FROM prices
		WHERE %s`, conditions, conditions)

	// condition args appear twice: once for the subquery, once for the outer query
	allArgs := append(append([]interface{}{}, args...), args...)

	var (
		bars      int64
		firstTS   sql.NullString
		lastTS    sql.NullString
		minLow    sql.NullFloat64
		maxHigh   sql.NullFloat64
		totalVol  sql.NullFloat64
		lastClose sql.NullFloat64
	)
	err := r.db.QueryRow(query, allArgs...).Scan(&bars, &firstTS, &lastTS, &minLow, &maxHigh, &totalVol, &lastClose)
	if err != nil {
		return nil, fmt.Errorf("summary query: %w", err)
	}
	if bars == 0 {
		return nil, nil
	}

	return &models.TickerSummary{
		Ticker:         ticker,
		Interval:       interval,
		Bars:           bars,
		FirstTimestamp: firstTS.String,
		LastTimestamp:  lastTS.String,
		MinLow:         minLow.Float64,
		MaxHigh:        maxHigh.Float64,
		LastClose:      lastClose.Float64,
		TotalVolume:    totalVol.Float64,
	}, nil
}

// GetMeta returns the value for one bookkeeping key, or "" when unset.
func (r *pricesRepository) GetMeta(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("meta query: %w", err)
	}
	return value, nil
}

// Ping reports store reachability; used by the readiness probe.
func (r *pricesRepository) Ping() error {
	return r.db.Ping()
}
