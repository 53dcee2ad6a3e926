// Package logging builds the zerolog loggers sedmap writes diagnostics to.
// Loader diagnostics are ordinary events carrying the diagnostic tag, the
// object name and, where it applies, the table and row index.
//
//	logger, _ := logging.New(logging.Options{Level: zerolog.InfoLevel})
//	logger.Warn().Str("object", "TWA 27").Str("table", "Spectra").Int("row", 2).Msg("spectrum not loaded")
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/agentstation/sedmap/pkg/constants"
)

// Format selects how events are rendered.
type Format string

// Output formats. FormatAuto picks console on a terminal and JSON otherwise.
const (
	FormatAuto    Format = "auto"
	FormatJSON    Format = "json"
	FormatConsole Format = "console"
)

// Options configures New.
type Options struct {
	Level   zerolog.Level
	Format  Format
	Output  string // stderr (default), stdout, discard or a file path
	NoColor bool
}

var defaultLogger = fromEnv()

// Default returns the process-wide logger, configured from LOG_LEVEL and
// LOG_FORMAT at startup. Libraries fall back to it when no logger is given.
func Default() *zerolog.Logger {
	return &defaultLogger
}

func fromEnv() zerolog.Logger {
	level, ok := ParseLevel(os.Getenv("LOG_LEVEL"))
	if !ok {
		level = zerolog.InfoLevel
	}
	logger, _ := New(Options{Level: level, Format: Format(os.Getenv("LOG_FORMAT"))})
	return logger
}

// New builds a logger from opts. Debug and trace loggers also record the
// caller. If Output names a file that cannot be opened, the returned logger
// writes to stderr and the open error is returned with it.
func New(opts Options) (zerolog.Logger, error) {
	out, err := openOutput(opts.Output)
	logger := zerolog.New(render(out, opts)).
		Level(opts.Level).
		With().
		Timestamp().
		Logger()
	if opts.Level <= zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}
	return logger, err
}

// ParseLevel maps a level name to a zerolog level. Names are case
// insensitive; "warning" and "off" are accepted next to zerolog's own names.
func ParseLevel(name string) (zerolog.Level, bool) {
	switch name = strings.ToLower(strings.TrimSpace(name)); name {
	case "":
		return zerolog.InfoLevel, false
	case "warning":
		return zerolog.WarnLevel, true
	case "off", "none":
		return zerolog.Disabled, true
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.InfoLevel, false
	}
	return level, true
}

func openOutput(output string) (io.Writer, error) {
	switch strings.ToLower(output) {
	case "", "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	case "discard", "none":
		return io.Discard, nil
	}
	f, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return os.Stderr, err
	}
	return f, nil
}

func render(out io.Writer, opts Options) io.Writer {
	format := Format(strings.ToLower(string(opts.Format)))
	if format == "" || format == FormatAuto {
		format = FormatJSON
		if f, ok := out.(*os.File); ok && isTerminal(f) {
			format = FormatConsole
		}
	}
	if format != FormatConsole && format != "pretty" {
		return out
	}
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.Kitchen,
		NoColor:    opts.NoColor || os.Getenv("NO_COLOR") != "",
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
