package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrKindMismatch is returned when a statement is run through the wrong
// method for its kind (e.g. Exec on a select).
var ErrKindMismatch = errors.New("statement kind mismatch")

// StatementError reports a failed catalogue statement along with the kind of
// operation that failed.
type StatementError struct {
	QueryID QueryID
	Kind    Kind
	Err     error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.QueryID, e.Err)
}

func (e *StatementError) Unwrap() error {
	return e.Err
}

// Tx is a caller-owned transaction that runs catalogue statements.
type Tx struct {
	tx    *sql.Tx
	stmts *StatementCache
}

// Begin prepares the statement cache (first call only) and opens a transaction.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	if err := s.stmts.Ensure(ctx); err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	return &Tx{tx: tx, stmts: s.stmts}, nil
}

// RunInTx runs fn inside a transaction, committing when fn returns nil and
// rolling back otherwise.
func (s *Store) RunInTx(ctx context.Context, fn func(*Tx) error) error {
	tx, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback() // No-op if committed

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction. Calling it after Commit is a no-op that
// returns sql.ErrTxDone.
func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

// Query runs a select (or a write with RETURNING) and returns its rows.
// Callers are responsible for closing the returned rows.
func (t *Tx) Query(ctx context.Context, id QueryID, args ...any) (*sql.Rows, error) {
	stmt, st, err := t.bind(ctx, id, true)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, &StatementError{QueryID: id, Kind: st.Kind, Err: err}
	}
	return rows, nil
}

// QueryRow runs a select expected to return at most one row. A missing row
// surfaces as sql.ErrNoRows from Scan.
func (t *Tx) QueryRow(ctx context.Context, id QueryID, args ...any) *Row {
	stmt, st, err := t.bind(ctx, id, true)
	if err != nil {
		return &Row{id: id, err: err}
	}
	return &Row{id: id, kind: st.Kind, row: stmt.QueryRowContext(ctx, args...)}
}

// Exec runs an insert, update or delete and returns the rows affected.
func (t *Tx) Exec(ctx context.Context, id QueryID, args ...any) (int64, error) {
	stmt, st, err := t.bind(ctx, id, false)
	if err != nil {
		return 0, err
	}
	res, err := stmt.ExecContext(ctx, args...)
	if err != nil {
		return 0, &StatementError{QueryID: id, Kind: st.Kind, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, &StatementError{QueryID: id, Kind: st.Kind, Err: fmt.Errorf("rows affected: %w", err)}
	}
	return n, nil
}

// bind fetches the prepared statement for id and checks that the caller's
// method suits its kind.
func (t *Tx) bind(ctx context.Context, id QueryID, wantRows bool) (*sql.Stmt, statement, error) {
	stmt, st, err := t.stmts.lookup(id)
	if err != nil {
		return nil, statement{}, err
	}
	yieldsRows := st.Kind == KindSelect || st.Returning
	if yieldsRows != wantRows {
		return nil, statement{}, &StatementError{QueryID: id, Kind: st.Kind, Err: ErrKindMismatch}
	}
	return t.tx.StmtContext(ctx, stmt), st, nil
}

// Row is the result of QueryRow.
type Row struct {
	id   QueryID
	kind Kind
	row  *sql.Row
	err  error
}

// Scan copies the row's columns into dest. It returns sql.ErrNoRows
// (unwrapped) when the statement matched nothing.
func (r *Row) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	err := r.row.Scan(dest...)
	if err == nil || errors.Is(err, sql.ErrNoRows) {
		return err
	}
	return &StatementError{QueryID: r.id, Kind: r.kind, Err: err}
}
