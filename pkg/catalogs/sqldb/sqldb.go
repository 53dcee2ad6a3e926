// Package sqldb provides a read-only catalog over database/sql. SQLite
// files are opened with modernc.org/sqlite in read-only mode; postgres://
// DSNs use the pgx stdlib driver.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sort"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // register sqlite as a database/sql driver

	"github.com/agentstation/sedmap/pkg/catalogs"
	"github.com/agentstation/sedmap/pkg/errors"
	"github.com/agentstation/sedmap/pkg/spectra"
)

// Catalog is a read-only catalog backed by a SQL database.
type Catalog struct {
	db      *sql.DB
	dialect Dialect
	reader  *spectra.Reader
	columns map[string]map[string]bool // table -> column set
}

var _ catalogs.Catalog = (*Catalog)(nil)

// Option configures a Catalog.
type Option func(*Catalog)

// WithSpectraReader sets the reader used to resolve spectrum payloads.
func WithSpectraReader(r *spectra.Reader) Option {
	return func(c *Catalog) {
		if r != nil {
			c.reader = r
		}
	}
}

// Open connects to dsn and loads the schema. A DSN that is not a
// postgres URL is treated as a SQLite file path.
func Open(ctx context.Context, dsn string, opts ...Option) (*Catalog, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.NewConfigError("database", "dsn cannot be empty", nil)
	}
	dialect := DialectFor(dsn)

	source := dsn
	if dialect == DialectSQLite {
		path := strings.TrimPrefix(dsn, "file:")
		if i := strings.IndexByte(path, '?'); i >= 0 {
			path = path[:i]
		}
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return nil, errors.NewNotFoundError("database", path)
			}
			return nil, errors.WrapIO("open", path, err)
		}
		source = "file:" + path + "?mode=ro"
	}

	db, err := sql.Open(dialect.driverName(), source)
	if err != nil {
		return nil, errors.WrapResource("open", "catalog", dsn, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close() //nolint:errcheck
		return nil, errors.WrapResource("open", "catalog", dsn, err)
	}

	c, err := New(ctx, db, dialect, opts...)
	if err != nil {
		db.Close() //nolint:errcheck
		return nil, err
	}
	return c, nil
}

// New wraps an open database. The caller keeps ownership of db unless it
// calls Close on the returned Catalog.
func New(ctx context.Context, db *sql.DB, dialect Dialect, opts ...Option) (*Catalog, error) {
	c := &Catalog{db: db, dialect: dialect}
	for _, opt := range opts {
		opt(c)
	}
	if c.reader == nil {
		c.reader = spectra.NewReader()
	}
	if err := c.loadSchema(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Close closes the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Dialect returns the SQL dialect in use.
func (c *Catalog) Dialect() Dialect {
	return c.dialect
}

// Tables returns every table name, sorted.
func (c *Catalog) Tables() []string {
	tables := make([]string, 0, len(c.columns))
	for t := range c.columns {
		tables = append(tables, t)
	}
	sort.Strings(tables)
	return tables
}

// HasColumn reports whether table has column.
func (c *Catalog) HasColumn(table, column string) bool {
	return c.columns[table][column]
}

func (c *Catalog) loadSchema(ctx context.Context) error {
	var query string
	switch c.dialect {
	case DialectPostgres:
		query = `SELECT table_name, column_name FROM information_schema.columns
			WHERE table_schema = current_schema() ORDER BY table_name, ordinal_position`
	default:
		query = `SELECT m.name, p.name FROM sqlite_master m, pragma_table_info(m.name) p
			WHERE m.type = 'table' AND m.name NOT LIKE 'sqlite_%' ORDER BY m.name, p.cid`
	}

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return errors.WrapQuery("schema", query, err)
	}
	defer rows.Close() //nolint:errcheck

	c.columns = make(map[string]map[string]bool)
	for rows.Next() {
		var table, column string
		if err := rows.Scan(&table, &column); err != nil {
			return errors.WrapQuery("schema", query, err)
		}
		if c.columns[table] == nil {
			c.columns[table] = make(map[string]bool)
		}
		c.columns[table][column] = true
	}
	if err := rows.Err(); err != nil {
		return errors.WrapQuery("schema", query, err)
	}
	return nil
}

// likeEscaper makes LIKE wildcards in a search name match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// SearchObject returns the Sources rows whose source, or any Names alias,
// contains name case-insensitively.
func (c *Catalog) SearchObject(ctx context.Context, name string) ([]catalogs.Row, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.NewValidationError("name", name, "search name cannot be empty")
	}
	if !c.HasColumn(catalogs.TableSources, catalogs.ColSource) {
		return nil, errors.NewNotFoundError("table", catalogs.TableSources)
	}

	pattern := "%" + likeEscaper.Replace(strings.ToLower(name)) + "%"
	where := fmt.Sprintf(`LOWER(%s) LIKE %s ESCAPE '\'`, quote(catalogs.ColSource), c.dialect.placeholder(1))
	args := []any{pattern}
	if c.HasColumn(catalogs.TableNames, catalogs.ColOtherName) {
		where += fmt.Sprintf(` OR %s IN (SELECT %s FROM %s WHERE LOWER(%s) LIKE %s ESCAPE '\')`,
			quote(catalogs.ColSource), quote(catalogs.ColSource), quote(catalogs.TableNames),
			quote(catalogs.ColOtherName), c.dialect.placeholder(2))
		args = append(args, pattern)
	}
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s ORDER BY %s",
		quote(catalogs.TableSources), where, quote(catalogs.ColSource))

	return c.query(ctx, catalogs.TableSources, query, args)
}

// Inventory returns the rows of every table with a source column whose
// source equals name.
func (c *Catalog) Inventory(ctx context.Context, name string) (catalogs.Inventory, error) {
	inv := make(catalogs.Inventory)
	for _, table := range c.Tables() {
		if !c.HasColumn(table, catalogs.ColSource) {
			continue
		}
		rows, err := c.Query(ctx, catalogs.Query{
			Table:   table,
			Filters: []catalogs.Filter{catalogs.Eq(catalogs.ColSource, name)},
		})
		if err != nil {
			return nil, err
		}
		if len(rows) > 0 {
			inv[table] = rows
		}
	}
	return inv, nil
}

// Query implements catalogs.Catalog.
func (c *Catalog) Query(ctx context.Context, q catalogs.Query) ([]catalogs.Row, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if _, ok := c.columns[q.Table]; !ok {
		return nil, errors.NewNotFoundError("table", q.Table)
	}

	cols := "*"
	if len(q.Columns) > 0 {
		quoted := make([]string, len(q.Columns))
		for i, col := range q.Columns {
			quoted[i] = quote(col)
		}
		cols = strings.Join(quoted, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", cols, quote(q.Table))
	var args []any
	for i, f := range q.Filters {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		cond, arg, bind := c.dialect.condition(f.Column, f.Value, len(args)+1)
		b.WriteString(cond)
		if bind {
			args = append(args, arg)
		}
	}
	if q.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", q.Limit)
	}

	return c.query(ctx, q.Table, b.String(), args)
}

// Spectra runs q and reads the payload referenced by each matching row.
func (c *Catalog) Spectra(ctx context.Context, q catalogs.Query) ([]*spectra.Spectrum, error) {
	q.Columns = nil
	rows, err := c.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	return catalogs.ReadSpectra(ctx, c.reader, rows)
}

func (c *Catalog) query(ctx context.Context, table, query string, args []any) ([]catalogs.Row, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.WrapQuery(table, query, err)
	}
	defer rows.Close() //nolint:errcheck

	cols, err := rows.Columns()
	if err != nil {
		return nil, errors.WrapQuery(table, query, err)
	}

	var out []catalogs.Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.WrapQuery(table, query, err)
		}
		row := make(catalogs.Row, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapQuery(table, query, err)
	}
	return out, nil
}
