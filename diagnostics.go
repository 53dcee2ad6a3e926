package sedmap

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// NoRow marks a diagnostic or record result that concerns a whole table.
const NoRow = 0

// Diagnostic is an advisory message about one load. Diagnostics never
// abort a load.
type Diagnostic struct {
	Tag     string        `json:"tag" yaml:"tag"`
	Object  string        `json:"object" yaml:"object"`
	Table   string        `json:"table,omitempty" yaml:"table,omitempty"`
	Row     int           `json:"row,omitempty" yaml:"row,omitempty"` // 1-based, NoRow for the table
	Level   zerolog.Level `json:"level" yaml:"level"`
	Message string        `json:"message" yaml:"message"`
	Err     error         `json:"-" yaml:"-"`
}

// String renders the diagnostic as "[TAG] object: Table row N: message: err".
func (d Diagnostic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s: ", d.Tag, d.Object)
	if d.Table != "" {
		b.WriteString(d.Table)
		if d.Row != NoRow {
			fmt.Fprintf(&b, " row %d", d.Row)
		}
		b.WriteString(": ")
	}
	b.WriteString(d.Message)
	if d.Err != nil {
		fmt.Fprintf(&b, ": %v", d.Err)
	}
	return b.String()
}

// diagnose records d, writes it to the log and fires hooks.
func (a *Adapter) diagnose(level zerolog.Level, table string, row int, err error, format string, args ...any) {
	d := Diagnostic{
		Tag:     a.config.tag,
		Object:  a.name,
		Table:   table,
		Row:     row,
		Level:   level,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
	a.diagnostics = append(a.diagnostics, d)

	event := a.logger.WithLevel(level).Str("object", d.Object)
	if table != "" {
		event = event.Str("table", table)
	}
	if row != NoRow {
		event = event.Int("row", row)
	}
	if err != nil {
		event = event.Err(err)
	}
	event.Msg(d.Message)

	a.config.hooks.triggerDiagnostic(d)
}
