// Package alerts prints short status notices on stderr next to command
// output, such as the count of records a load could not use.
package alerts

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Level is an alert's severity.
type Level int

// Severities, most severe first.
const (
	LevelError Level = iota
	LevelWarning
	LevelInfo
)

var styles = [...]struct {
	name, icon, color string
}{
	LevelError:   {"error", "✗", "\033[31m"},
	LevelWarning: {"warning", "!", "\033[33m"},
	LevelInfo:    {"info", "i", "\033[36m"},
}

const reset = "\033[0m"

func (l Level) valid() bool { return l >= 0 && int(l) < len(styles) }

func (l Level) String() string {
	if !l.valid() {
		return fmt.Sprintf("unknown(%d)", int(l))
	}
	return styles[l].name
}

// Icon is the symbol that opens the alert's headline.
func (l Level) Icon() string {
	if !l.valid() {
		return "?"
	}
	return styles[l].icon
}

// Alert is one notice: a headline plus optional detail lines.
type Alert struct {
	Level   Level
	Message string
	Details []string
}

// NewError returns an error alert.
func NewError(message string) *Alert { return &Alert{Level: LevelError, Message: message} }

// NewWarning returns a warning alert.
func NewWarning(message string) *Alert { return &Alert{Level: LevelWarning, Message: message} }

// NewInfo returns an info alert.
func NewInfo(message string) *Alert { return &Alert{Level: LevelInfo, Message: message} }

// WithDetails appends detail lines and returns a.
func (a *Alert) WithDetails(details ...string) *Alert {
	a.Details = append(a.Details, details...)
	return a
}

// String is the headline without details.
func (a *Alert) String() string {
	return a.Level.Icon() + " " + a.Message
}

// Writer prints alerts, each headline followed by its indented details.
type Writer struct {
	w       io.Writer
	color   bool
	details bool
}

// NewWriter returns a Writer for w that colors headlines only when w is a
// terminal and NO_COLOR is unset.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, color: isTerminal(w) && os.Getenv("NO_COLOR") == "", details: true}
}

// WithDetails turns detail lines on or off and returns aw.
func (aw *Writer) WithDetails(show bool) *Writer {
	aw.details = show
	return aw
}

// Write prints alert.
func (aw *Writer) Write(alert *Alert) error {
	var b strings.Builder
	headline := alert.String()
	if aw.color && alert.Level.valid() {
		headline = styles[alert.Level].color + headline + reset
	}
	b.WriteString(headline)
	b.WriteByte('\n')
	if aw.details {
		for _, d := range alert.Details {
			b.WriteString("   ")
			b.WriteString(d)
			b.WriteByte('\n')
		}
	}
	_, err := io.WriteString(aw.w, b.String())
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
