// Package store provides SQLite access for domain records.
//
// The theming core never imports this package; it is the page shell's
// persistence collaborator.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"builder-platform/internal/logging"
)

// Options configure a database handle.
type Options struct {
	// Path of the SQLite file; ":memory:" opens a private in-memory database.
	Path string
	// Verbose logs every statement at debug level. Errors are always logged.
	Verbose bool
	Logger  *zerolog.Logger
}

// DB wraps *sql.DB with statement logging.
type DB struct {
	sql     *sql.DB
	logger  zerolog.Logger
	verbose bool
}

var (
	sharedOnce sync.Once
	shared     *DB
	sharedErr  error
)

// Shared returns the process-wide handle, opening it on first use. Later
// calls ignore opts and return the same handle (or the same error).
func Shared(ctx context.Context, opts Options) (*DB, error) {
	sharedOnce.Do(func() {
		shared, sharedErr = Open(opts)
		if sharedErr != nil {
			return
		}
		if _, err := shared.MigrateUp(ctx); err != nil {
			_ = shared.Close()
			shared, sharedErr = nil, err
		}
	})
	return shared, sharedErr
}

// Open opens a new, non-shared handle.
func Open(opts Options) (*DB, error) {
	if opts.Path == "" {
		return nil, errors.New("database path is required")
	}

	dsn := opts.Path
	if opts.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o700); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		dsn = "file:" + opts.Path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if opts.Path == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		sqlDB.SetMaxOpenConns(1)
	}
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger := logging.Component("store")
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &DB{sql: sqlDB, logger: logger, verbose: opts.Verbose}, nil
}

// OpenInMemory opens a private in-memory database, mainly for tests.
func OpenInMemory() (*DB, error) {
	nop := zerolog.Nop()
	return Open(Options{Path: ":memory:", Logger: &nop})
}

func (db *DB) Close() error {
	return db.sql.Close()
}

func (db *DB) PingContext(ctx context.Context) error {
	return db.sql.PingContext(ctx)
}

func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	started := time.Now()
	res, err := db.sql.ExecContext(ctx, query, args...)
	db.logStatement(query, started, err)
	return res, err
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	started := time.Now()
	rows, err := db.sql.QueryContext(ctx, query, args...)
	db.logStatement(query, started, err)
	return rows, err
}

func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	started := time.Now()
	row := db.sql.QueryRowContext(ctx, query, args...)
	db.logStatement(query, started, row.Err())
	return row
}

func (db *DB) logStatement(query string, started time.Time, err error) {
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		db.logger.Error().Err(err).Str("event", "query_failed").Str("query", query).Msg("statement failed")
		return
	}
	if db.verbose {
		db.logger.Debug().
			Str("event", "query").
			Str("query", query).
			Dur("duration", time.Since(started)).
			Msg("statement executed")
	}
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS records (
		id TEXT PRIMARY KEY,
		domain TEXT NOT NULL,
		title TEXT NOT NULL,
		body TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_records_domain ON records(domain, created_at)`,
}

// MigrateUp applies the schema and returns the number of statements run.
func (db *DB) MigrateUp(ctx context.Context) (int, error) {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return i, fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return len(migrations), nil
}
