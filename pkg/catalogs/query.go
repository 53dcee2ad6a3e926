package catalogs

import (
	"fmt"
	"regexp"

	"github.com/agentstation/sedmap/pkg/errors"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateIdentifier checks that name is safe to splice into SQL as a table
// or column name.
func ValidateIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return errors.NewValidationError("identifier", name, fmt.Sprintf("invalid identifier %q", name))
	}
	return nil
}

// Filter is an equality condition. A nil Value matches NULL.
type Filter struct {
	Column string
	Value  any
}

// Eq returns a filter matching column = value.
func Eq(column string, value any) Filter {
	return Filter{Column: column, Value: value}
}

// Query selects rows from one table. Empty Columns selects every column;
// Limit <= 0 means no limit.
type Query struct {
	Table   string
	Columns []string
	Filters []Filter
	Limit   int
}

// Validate checks every identifier in the query.
func (q Query) Validate() error {
	if err := ValidateIdentifier(q.Table); err != nil {
		return err
	}
	for _, c := range q.Columns {
		if err := ValidateIdentifier(c); err != nil {
			return err
		}
	}
	for _, f := range q.Filters {
		if err := ValidateIdentifier(f.Column); err != nil {
			return err
		}
	}
	return nil
}

// Matches reports whether row satisfies every filter. Values are compared
// through their text rendering so driver representations of the same value
// (int64 vs float64, []byte vs string, time.Time vs date string) agree.
func (q Query) Matches(row Row) bool {
	for _, f := range q.Filters {
		if f.Value == nil {
			if row.Has(f.Column) {
				return false
			}
			continue
		}
		if !row.Has(f.Column) {
			return false
		}
		if row.String(f.Column) != formatValue(f.Value) {
			return false
		}
	}
	return true
}

// Project returns a copy of row restricted to q.Columns.
func (q Query) Project(row Row) Row {
	if len(q.Columns) == 0 {
		out := make(Row, len(row))
		for k, v := range row {
			out[k] = v
		}
		return out
	}
	out := make(Row, len(q.Columns))
	for _, c := range q.Columns {
		out[c] = row[c]
	}
	return out
}

// String renders the query for logs and errors.
func (q Query) String() string {
	s := "SELECT "
	if len(q.Columns) == 0 {
		s += "*"
	} else {
		for i, c := range q.Columns {
			if i > 0 {
				s += ", "
			}
			s += c
		}
	}
	s += " FROM " + q.Table
	for i, f := range q.Filters {
		if i == 0 {
			s += " WHERE "
		} else {
			s += " AND "
		}
		if f.Value == nil {
			s += f.Column + " IS NULL"
		} else {
			s += fmt.Sprintf("%s = %q", f.Column, formatValue(f.Value))
		}
	}
	if q.Limit > 0 {
		s += fmt.Sprintf(" LIMIT %d", q.Limit)
	}
	return s
}
