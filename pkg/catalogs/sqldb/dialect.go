package sqldb

import (
	"fmt"
	"strings"
	"time"
)

// Dialect is the SQL flavour of the underlying database.
type Dialect string

// Supported dialects.
const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// driverName returns the database/sql driver registered for the dialect.
func (d Dialect) driverName() string {
	if d == DialectPostgres {
		return "pgx"
	}
	return "sqlite"
}

// placeholder returns the nth (1-based) bind parameter.
func (d Dialect) placeholder(n int) string {
	if d == DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// quote quotes a validated identifier. Both dialects accept double quotes,
// which also preserves the mixed-case SIMPLE table names on Postgres.
func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// condition renders one equality filter and its bind argument, if any.
// SQLite stores dates as text in several layouts, so time values are
// compared by julian day instead of by string.
func (d Dialect) condition(column string, value any, n int) (string, any, bool) {
	col := quote(column)
	if value == nil {
		return col + " IS NULL", nil, false
	}
	if t, ok := value.(time.Time); ok && d == DialectSQLite {
		return fmt.Sprintf("julianday(%s) = julianday(%s)", col, d.placeholder(n)), t.UTC().Format("2006-01-02 15:04:05.000"), true
	}
	return fmt.Sprintf("%s = %s", col, d.placeholder(n)), value, true
}

// DialectFor picks the dialect for a DSN.
func DialectFor(dsn string) Dialect {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return DialectPostgres
	}
	return DialectSQLite
}
