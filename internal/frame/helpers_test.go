package frame

import (
	"context"
	"testing"

	"github.com/osdldbt/dbt5-sub001/internal/store"
	"github.com/osdldbt/dbt5-sub001/internal/testutil"
)

// frameEnv bundles a seeded SQLite store with a deterministic executor.
type frameEnv struct {
	t     *testing.T
	store *store.Store
	clock *testutil.DeterministicClock
	exec  *Executor
}

func newFrameEnv(t *testing.T, seed ...string) *frameEnv {
	t.Helper()
	s := testutil.NewStore(t)
	testutil.Exec(t, s, seed...)
	clock := testutil.NewDeterministicClock()
	return &frameEnv{
		t:     t,
		store: s,
		clock: clock,
		exec:  NewExecutor(WithClock(clock.Now)),
	}
}

// inTx runs fn in a transaction that commits only when fn succeeds.
func (e *frameEnv) inTx(fn func(ctx context.Context, q Querier) error) error {
	ctx := context.Background()
	return e.store.RunInTx(ctx, func(tx *store.Tx) error {
		return fn(ctx, tx)
	})
}

func (e *frameEnv) maintain(req DataMaintenanceRequest) error {
	return e.inTx(func(ctx context.Context, q Querier) error {
		status, err := e.exec.DataMaintenance(ctx, q, req)
		if err == nil && status != 0 {
			e.t.Fatalf("status = %d, want 0", status)
		}
		return err
	})
}

func (e *frameEnv) str(query string, args ...any) string {
	e.t.Helper()
	return testutil.QueryString(e.t, e.store, query, args...)
}

func (e *frameEnv) num(query string, args ...any) int64 {
	e.t.Helper()
	return testutil.QueryInt(e.t, e.store, query, args...)
}
