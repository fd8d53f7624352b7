package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/osdldbt/dbt5-sub001/internal/store"
)

const brokerSeed = `
INSERT INTO sector (sc_id, sc_name) VALUES ('TC', 'Tech');
INSERT INTO industry (in_id, in_name, in_sc_id) VALUES ('SW', 'Software', 'TC');
INSERT INTO company (co_id, co_name, co_in_id, co_sp_rate) VALUES (1, 'Acme Software', 'SW', 'AAA');
INSERT INTO security (s_symb, s_co_id, s_exch_date) VALUES ('ACME', 1, '2026-01-01');
INSERT INTO broker (b_id, b_name) VALUES (1, 'Alice');
INSERT INTO broker (b_id, b_name) VALUES (2, 'Bob');
INSERT INTO trade_request (tr_t_id, tr_s_symb, tr_qty, tr_bid_price, tr_b_id) VALUES (1, 'ACME', 10, 50, 1);
INSERT INTO trade_request (tr_t_id, tr_s_symb, tr_qty, tr_bid_price, tr_b_id) VALUES (2, 'ACME', 20, 60, 2);
`

const cleanupSeed = `
INSERT INTO trade_request (tr_t_id, tr_s_symb, tr_qty, tr_bid_price, tr_b_id) VALUES (5, 'ACME', 10, 20.00, 1);
INSERT INTO trade (t_id, t_dts, t_st_id) VALUES (100, '2026-01-01 00:00:00', 'SBMT');
INSERT INTO trade (t_id, t_dts, t_st_id) VALUES (101, '2026-01-01 00:00:00', 'CMPT');
`

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// seededDB creates a SQLite database file with the schema and scripts applied.
func seededDB(t *testing.T, scripts ...string) string {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "dbt5.db")
	ctx := context.Background()

	st, err := store.Open(ctx, store.Options{
		Driver:       store.DriverSQLite,
		DSN:          dsn,
		CreateSchema: true,
	})
	require.NoError(t, err)
	for _, script := range scripts {
		require.NoError(t, st.ExecScript(ctx, script))
	}
	require.NoError(t, st.Close())
	return dsn
}

// queryInt runs a single-value query against the database at dsn.
func queryInt(t *testing.T, dsn, query string) int {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(ctx, store.Options{Driver: store.DriverSQLite, DSN: dsn})
	require.NoError(t, err)
	defer st.Close()

	var n int
	require.NoError(t, st.DB().QueryRowContext(ctx, query).Scan(&n))
	return n
}
