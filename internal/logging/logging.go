// Package logging holds the shared logger and its configuration.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogFormat is the output format of DefaultLogger.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"

	// DefaultLogFormat is the format used when none is configured.
	DefaultLogFormat = LogFormatText

	// DefaultLogLevel is the level used when none is configured.
	DefaultLogLevel = logrus.WarnLevel
)

// DefaultLogger is the base logger. Packages derive their own entries from it
// with a LogSubsys field.
var DefaultLogger = initializeDefaultLogger()

func initializeDefaultLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(GetFormatter(DefaultLogFormat))
	logger.SetLevel(DefaultLogLevel)
	return logger
}

// GetFormatter returns a configured logrus.Formatter with some specific values
// we want to have.
func GetFormatter(format LogFormat) logrus.Formatter {
	switch format {
	case LogFormatJSON:
		return &logrus.JSONFormatter{DisableTimestamp: true}
	default:
		return &logrus.TextFormatter{DisableTimestamp: true, DisableColors: true}
	}
}

// ParseLevel parses a level name, case insensitively.
func ParseLevel(level string) (logrus.Level, error) {
	l, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return DefaultLogLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return l, nil
}

// ParseFormat parses a format name, case insensitively.
func ParseFormat(format string) (LogFormat, error) {
	switch f := LogFormat(strings.ToLower(strings.TrimSpace(format))); f {
	case LogFormatText, LogFormatJSON:
		return f, nil
	case "":
		return DefaultLogFormat, nil
	default:
		return DefaultLogFormat, fmt.Errorf("invalid log format %q", format)
	}
}

// SetupLogging configures DefaultLogger. debug overrides level.
func SetupLogging(w io.Writer, level, format string, debug bool) error {
	l, err := ParseLevel(level)
	if err != nil {
		return err
	}
	f, err := ParseFormat(format)
	if err != nil {
		return err
	}
	if debug {
		l = logrus.DebugLevel
	}
	if w != nil {
		DefaultLogger.SetOutput(w)
	}
	DefaultLogger.SetLevel(l)
	DefaultLogger.SetFormatter(GetFormatter(f))
	return nil
}
