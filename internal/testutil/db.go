package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/osdldbt/dbt5-sub001/internal/store"
)

// NewStore opens a fresh SQLite store with the frame schema applied in a
// temporary directory. It is closed when the test ends.
func NewStore(t testing.TB) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), store.Options{
		Driver:       store.DriverSQLite,
		DSN:          filepath.Join(t.TempDir(), "dbt5.db"),
		CreateSchema: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// Exec runs seed statements directly against the store's database.
func Exec(t testing.TB, s *store.Store, statements ...string) {
	t.Helper()
	for _, stmt := range statements {
		_, err := s.DB().ExecContext(context.Background(), stmt)
		require.NoError(t, err, "seed: %s", stmt)
	}
}

// QueryString reads a single text value. Fails the test if no row matches.
func QueryString(t testing.TB, s *store.Store, query string, args ...any) string {
	t.Helper()
	var v string
	require.NoError(t, s.DB().QueryRowContext(context.Background(), query, args...).Scan(&v), "query: %s", query)
	return v
}

// QueryInt reads a single integer value. Fails the test if no row matches.
func QueryInt(t testing.TB, s *store.Store, query string, args ...any) int64 {
	t.Helper()
	var v int64
	require.NoError(t, s.DB().QueryRowContext(context.Background(), query, args...).Scan(&v), "query: %s", query)
	return v
}
