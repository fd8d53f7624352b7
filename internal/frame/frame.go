package frame

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/osdldbt/dbt5-sub001/internal/store"
)

// Frame names as they are invoked by callers.
const (
	DataMaintenanceFrame1 = "DataMaintenanceFrame1"
	TradeCleanupFrame1    = "TradeCleanupFrame1"
	BrokerVolumeFrame1    = "BrokerVolumeFrame1"
)

// Querier runs catalogue statements inside the caller's transaction.
type Querier interface {
	Query(ctx context.Context, id store.QueryID, args ...any) (*sql.Rows, error)
	QueryRow(ctx context.Context, id store.QueryID, args ...any) *store.Row
	Exec(ctx context.Context, id store.QueryID, args ...any) (int64, error)
}

var _ Querier = (*store.Tx)(nil)

// Output is the single row a frame hands back to its caller.
type Output struct {
	Columns []string `json:"columns"`
	Values  []string `json:"values"`
}

// Get returns the value of a named column and whether it exists.
func (o Output) Get(column string) (string, bool) {
	for i, c := range o.Columns {
		if c == column {
			return o.Values[i], true
		}
	}
	return "", false
}

// Map returns the output as a column → value map.
func (o Output) Map() map[string]string {
	m := make(map[string]string, len(o.Columns))
	for i, c := range o.Columns {
		m[c] = o.Values[i]
	}
	return m
}

// StatusOutput is the output row of frames that only report a status.
func StatusOutput(status int32) Output {
	return Output{
		Columns: []string{"status"},
		Values:  []string{strconv.FormatInt(int64(status), 10)},
	}
}

// Executor runs frames. It holds no per-invocation state and is safe for
// concurrent use; each call runs to completion on the caller's goroutine.
type Executor struct {
	now    func() time.Time
	logger *slog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithClock sets the wall clock used for history and exchange timestamps.
func WithClock(now func() time.Time) ExecutorOption {
	return func(x *Executor) {
		x.now = now
	}
}

// WithLogger sets the logger used for per-step debug records.
func WithLogger(logger *slog.Logger) ExecutorOption {
	return func(x *Executor) {
		x.logger = logger
	}
}

// NewExecutor creates an Executor using time.Now and a discarding logger
// unless overridden.
func NewExecutor(opts ...ExecutorOption) *Executor {
	x := &Executor{
		now:    time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}
