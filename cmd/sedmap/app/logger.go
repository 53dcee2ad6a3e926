package app

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/agentstation/sedmap/pkg/logging"
)

// NewLogger builds the CLI logger. The level comes from the first of these
// that is set: --log-level, --quiet, --verbose, LOG_LEVEL. Quiet wins over
// verbose when both are given. Problems with the settings are logged as
// warnings rather than failing the command.
func NewLogger(config *Config) zerolog.Logger {
	level, warning := logLevel(config)
	logger, err := logging.New(logging.Options{
		Level:   level,
		Format:  logging.Format(config.LogFormat),
		Output:  config.LogOutput,
		NoColor: config.NoColor,
	})
	if warning != "" {
		logger.Warn().Msg(warning)
	}
	if err != nil {
		logger.Warn().Err(err).Str("output", config.LogOutput).Msg("Logging to stderr instead")
	}
	return logger
}

func logLevel(config *Config) (zerolog.Level, string) {
	switch {
	case config.LogLevel != "":
		if level, ok := logging.ParseLevel(config.LogLevel); ok {
			return level, ""
		}
		return zerolog.InfoLevel, fmt.Sprintf("Invalid log level %q, using info", config.LogLevel)
	case config.Quiet && config.Verbose:
		return zerolog.WarnLevel, "Both --verbose and --quiet given, using --quiet"
	case config.Quiet:
		return zerolog.WarnLevel, ""
	case config.Verbose:
		return zerolog.DebugLevel, ""
	}
	if level, ok := logging.ParseLevel(config.envLogLevel); ok {
		return level, ""
	}
	return zerolog.InfoLevel, ""
}
