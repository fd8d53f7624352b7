package frame

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/osdldbt/dbt5-sub001/internal/store"
)

// steps runs a frame's statements and turns their failures into
// FRAME_STEP_FAILED errors attributed to that frame.
type steps struct {
	frame string
	q     Querier
}

// one scans the first row of a select into dest. No row is a step failure.
func (s steps) one(ctx context.Context, step string, id store.QueryID, args []any, dest ...any) error {
	err := s.q.QueryRow(ctx, id, args...).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return newStepError(s.frame, step, id, nil)
	}
	if err != nil {
		return newStepError(s.frame, step, id, err)
	}
	return nil
}

// exec runs a write. Rows affected is not checked: the predicate is trusted.
func (s steps) exec(ctx context.Context, step string, id store.QueryID, args ...any) error {
	if _, err := s.q.Exec(ctx, id, args...); err != nil {
		return newStepError(s.frame, step, id, err)
	}
	return nil
}

// column reads every row of a single-column select. Rows are drained before
// returning so the caller can issue writes on the same transaction.
func column[T any](ctx context.Context, s steps, step string, id store.QueryID, args ...any) ([]T, error) {
	rows, err := s.q.Query(ctx, id, args...)
	if err != nil {
		return nil, newStepError(s.frame, step, id, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var v T
		if err := rows.Scan(&v); err != nil {
			return nil, newStepError(s.frame, step, id, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, newStepError(s.frame, step, id, err)
	}
	return out, nil
}

// trimChar drops the blank padding fixed-width CHAR columns carry on Postgres.
func trimChar(s string) string {
	return strings.TrimRight(s, " ")
}
