// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// ConfigFromEnv builds a Config from LOG_LEVEL and LOG_PRETTY, starting from
// DefaultConfig. getenv is usually os.Getenv.
func ConfigFromEnv(getenv func(string) string) Config {
	cfg := DefaultConfig()

	if level := getenv("LOG_LEVEL"); level != "" {
		cfg.Level = LogLevel(strings.ToLower(level))
	}

	if pretty, err := strconv.ParseBool(getenv("LOG_PRETTY")); err == nil {
		cfg.Pretty = pretty
	}

	return cfg
}

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger

	return logger
}

// parseLevel converts LogLevel to zerolog.Level.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: per-request detail
//   - Batch start
//   - Each successful fetch (url, status_code, duration)
//   - Body read or decode degraded to empty text
//
// Info: normal operation events
//   - Batch completion (total, succeeded, failed, duration)
//   - Reports stored
//   - Server startup/shutdown
//
// Warn: failures that do not stop the batch
//   - Each failed fetch (url, status_code, error_class)
//   - Report store errors (the fetch result is still returned)
//
// Error: conditions requiring attention
//   - Server failures
//   - Configuration errors
//
// Context Fields:
//   - component: batch-fetcher, report-store, fetch-server
//   - index: position of the URL in the batch
//   - url: requested or final URL
//   - status_code: HTTP status code, 0 when none was received
//   - error_class: client, server, network, timeout, task
//   - duration: request or batch duration
//   - report_id: stored batch report ID
