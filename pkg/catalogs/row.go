package catalogs

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Row is one catalog record keyed by column name. Values keep whatever
// representation the driver produced (int64, float64, []byte, string,
// bool, time.Time or nil).
type Row map[string]any

// Value returns the raw value for column and whether the column exists.
func (r Row) Value(column string) (any, bool) {
	v, ok := r[column]
	return v, ok
}

// Has reports whether column exists with a non-nil value.
func (r Row) Has(column string) bool {
	v, ok := r[column]
	return ok && v != nil
}

// Float returns column as a float64. Strings and byte slices are parsed;
// nil, booleans and unparsable values report false.
func (r Row) Float(column string) (float64, bool) {
	switch v := r[column].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case []byte:
		return parseFloat(string(v))
	case string:
		return parseFloat(v)
	default:
		return 0, false
	}
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// String returns column rendered as text; nil and missing columns are "".
// Dates without a time of day render as YYYY-MM-DD.
func (r Row) String(column string) string {
	return formatValue(r[column])
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return v.Format(time.DateOnly)
		}
		return v.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Truthy reports whether column holds a true value. Booleans are used as
// is, numbers are true when non-zero and strings follow strconv.ParseBool,
// falling back to non-empty.
func (r Row) Truthy(column string) bool {
	switch v := r[column].(type) {
	case nil:
		return false
	case bool:
		return v
	case int64:
		return v != 0
	case int:
		return v != 0
	case int32:
		return v != 0
	case float64:
		return v != 0
	case []byte:
		return truthyString(string(v))
	case string:
		return truthyString(v)
	default:
		return true
	}
}

func truthyString(s string) bool {
	s = strings.TrimSpace(s)
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s != ""
}

// Columns returns the row's column names sorted.
func (r Row) Columns() []string {
	cols := make([]string, 0, len(r))
	for c := range r {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// Inventory groups an object's rows by table name.
type Inventory map[string][]Row

// Tables returns the table names present, sorted.
func (inv Inventory) Tables() []string {
	tables := make([]string, 0, len(inv))
	for t := range inv {
		tables = append(tables, t)
	}
	sort.Strings(tables)
	return tables
}

// Rows returns the rows for table and whether the table is present.
func (inv Inventory) Rows(table string) ([]Row, bool) {
	rows, ok := inv[table]
	return rows, ok
}

// Count returns the total number of rows across all tables.
func (inv Inventory) Count() int {
	n := 0
	for _, rows := range inv {
		n += len(rows)
	}
	return n
}
