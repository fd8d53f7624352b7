package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownQuery is returned when a QueryID has no catalogue entry.
var ErrUnknownQuery = errors.New("unknown query id")

// StatementCache maps catalogue query ids to prepared statements.
//
// The whole catalogue is prepared once, on first use, behind a single mutex.
// A failed build leaves the cache empty so the next caller retries; once a
// build succeeds the map is read-only until Close.
type StatementCache struct {
	db      *sql.DB
	dialect Dialect

	mu    sync.Mutex
	stmts map[QueryID]*sql.Stmt
}

// NewStatementCache returns an unbuilt cache for db.
func NewStatementCache(db *sql.DB, dialect Dialect) *StatementCache {
	return &StatementCache{db: db, dialect: dialect}
}

// Ensure prepares every catalogued statement if that hasn't happened yet.
//
// Must be called outside any open transaction: with SQLite's single
// connection, preparing while a Tx holds the connection would block.
func (c *StatementCache) Ensure(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stmts != nil {
		return nil
	}

	built := make(map[QueryID]*sql.Stmt, len(catalogue))
	for id, st := range catalogue {
		stmt, err := c.db.PrepareContext(ctx, st.textFor(c.dialect))
		if err != nil {
			for _, s := range built {
				s.Close()
			}
			return fmt.Errorf("prepare %s: %w", id, err)
		}
		built[id] = stmt
	}
	c.stmts = built
	return nil
}

// Built reports whether the catalogue has been prepared.
func (c *StatementCache) Built() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stmts != nil
}

// lookup returns the prepared statement and catalogue entry for id.
func (c *StatementCache) lookup(id QueryID) (*sql.Stmt, statement, error) {
	st, ok := catalogue[id]
	if !ok {
		return nil, statement{}, fmt.Errorf("%w: %s", ErrUnknownQuery, id)
	}

	c.mu.Lock()
	stmt := c.stmts[id]
	c.mu.Unlock()

	if stmt == nil {
		return nil, statement{}, fmt.Errorf("statement cache not built: %s", id)
	}
	return stmt, st, nil
}

// Close releases every prepared statement. The cache may be rebuilt afterwards.
func (c *StatementCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for _, stmt := range c.stmts {
		if err := stmt.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.stmts = nil
	return errors.Join(errs...)
}
