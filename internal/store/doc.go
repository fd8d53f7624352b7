// Package store is the access facade between the frames and the relational
// database they run against.
//
// The store provides:
//   - Open: a connection pool for SQLite (mattn/go-sqlite3) or Postgres (pgx)
//   - a catalogue of every statement the frames use, each tagged with its
//     operation kind (select, insert, update, delete)
//   - StatementCache: the catalogue prepared once, on first use
//   - Tx: a caller-owned transaction that runs catalogue statements by id
//
// # Statement kinds
//
// Selects and writes with RETURNING run through Query or QueryRow; inserts,
// updates and deletes run through Exec. Calling the wrong method fails with
// ErrKindMismatch wrapped in a *StatementError, so a failure always names
// the statement and its kind.
//
// # Dialects
//
// Catalogue texts use $n placeholders numbered in order of first use, which
// both drivers bind positionally. Date arithmetic, day-of-month extraction
// and list binding differ per dialect and are overridden per entry.
//
// # Database Configuration (SQLite)
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - a single open connection
package store
