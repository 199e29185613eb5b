package app

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/guttosm/bistpulse/config"
	"github.com/guttosm/bistpulse/internal/storage"

	_ "modernc.org/sqlite" // pure-Go SQLite driver for database/sql
)

// sqlOpener is an indirection for unit testing; defaults to sql.Open
var sqlOpener = sql.Open

// InitSQLite opens (creating if necessary) the SQLite store at the configured
// path and brings the schema up to date.
//
// Behavior:
//   - Creates the parent directory of the DB file if missing.
//   - Opens a database handle with sql.Open.
//   - Enables WAL journaling for concurrent readers.
//   - Pings the database to validate the handle.
//   - Applies the schema via storage.Migrate.
//
// Returns:
//   - *sql.DB: an open database handle (safe for concurrent use).
//   - error: if opening, pinging, or migrating fails.
func InitSQLite(cfg config.Config) (*sql.DB, error) {
	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create db directory: %w", err)
		}
	}

	db, err := sqlOpener("sqlite", cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}

	if err := storage.Migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return db, nil
}

// sqliteOpener is an indirection used by InitializeApp; overridden in tests to avoid touching disk.
var sqliteOpener = InitSQLite
