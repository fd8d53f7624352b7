package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema_sqlite.sql
var sqliteSchemaSQL string

//go:embed schema_postgres.sql
var postgresSchemaSQL string

// Options configures how a Store connects to its database.
type Options struct {
	// Driver is the database/sql driver name: "sqlite3" or "pgx".
	Driver string

	// DSN is the data source name passed to the driver.
	// For sqlite3 this is a file path (or ":memory:").
	DSN string

	// MaxOpenConns caps the connection pool. Ignored for SQLite,
	// which always runs with a single connection.
	MaxOpenConns int

	// CreateSchema applies the embedded schema after connecting.
	CreateSchema bool
}

// Store is the access facade over the relational store the frames run against.
// It owns the connection pool and the prepared statement cache; transaction
// boundaries belong to the caller (see Begin and RunInTx).
type Store struct {
	db      *sql.DB
	dialect Dialect
	stmts   *StatementCache
}

// Open connects to the database described by opts.
//
// SQLite connections are configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - a single open connection (SQLite has one writer)
func Open(ctx context.Context, opts Options) (*Store, error) {
	dialect, err := DialectFor(opts.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(opts.Driver, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	switch dialect {
	case DialectSQLite:
		db.SetMaxOpenConns(1) // Single writer to avoid SQLITE_BUSY errors
		db.SetMaxIdleConns(1)
		if err := applyPragmas(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragmas: %w", err)
		}
	default:
		if opts.MaxOpenConns > 0 {
			db.SetMaxOpenConns(opts.MaxOpenConns)
			db.SetMaxIdleConns(opts.MaxOpenConns)
		}
	}

	s := &Store{
		db:      db,
		dialect: dialect,
		stmts:   NewStatementCache(db, dialect),
	}

	if opts.CreateSchema {
		if err := s.ApplySchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}

	return s, nil
}

// Close releases prepared statements and the connection pool.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	if err := s.stmts.Close(); err != nil {
		s.db.Close()
		return fmt.Errorf("close statements: %w", err)
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - frames must go through Tx and the statement catalogue.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect reports which SQL dialect the store speaks.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Statements exposes the statement cache, mainly for diagnostics.
func (s *Store) Statements() *StatementCache {
	return s.stmts
}

// ApplySchema creates the frame tables if they don't exist.
// This function is idempotent.
func (s *Store) ApplySchema(ctx context.Context) error {
	ddl := sqliteSchemaSQL
	if s.dialect == DialectPostgres {
		ddl = postgresSchemaSQL
	}
	for _, stmt := range splitStatements(ddl) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// ExecScript runs semicolon-separated statements outside any frame.
// Used to seed fixtures; statements must not contain literal semicolons.
func (s *Store) ExecScript(ctx context.Context, script string) error {
	for _, stmt := range splitStatements(script) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec script: %w", err)
		}
	}
	return nil
}

// Query executes an ad-hoc query and returns the resulting rows.
// Callers are responsible for closing the returned rows.
func (s *Store) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// splitStatements breaks a script on semicolons, dropping blank pieces and
// full-line "--" comments.
func splitStatements(script string) []string {
	var out []string
	for _, part := range strings.Split(script, ";") {
		var lines []string
		for _, line := range strings.Split(part, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "--") {
				continue
			}
			lines = append(lines, line)
		}
		stmt := strings.TrimSpace(strings.Join(lines, "\n"))
		if stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
