package store

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect identifies the SQL flavour of the connected database.
type Dialect string

const (
	// DialectSQLite is used with the mattn/go-sqlite3 driver.
	DialectSQLite Dialect = "sqlite"

	// DialectPostgres is used with the pgx stdlib driver.
	DialectPostgres Dialect = "postgres"
)

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// DialectFor maps a database/sql driver name to its dialect.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case DriverSQLite:
		return DialectSQLite, nil
	case DriverPostgres:
		return DialectPostgres, nil
	default:
		return "", fmt.Errorf("unsupported driver %q: must be %q or %q", driver, DriverSQLite, DriverPostgres)
	}
}

// Rebind rewrites "?" placeholders to "$n" for Postgres.
// SQLite accepts "?" natively and is returned unchanged.
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
