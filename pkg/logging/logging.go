package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options controls where log output goes.
type Options struct {
	// Verbosity is the number of -v flags given on the command line.
	Verbosity int
	// LogFile receives a JSON copy of every log event. Empty disables it.
	LogFile string
	// Console is the human-readable sink, stderr when nil.
	Console io.Writer
	// NoColor disables ANSI colors on the console sink.
	NoColor bool
}

// LevelForVerbosity maps a -v count to a zerolog level.
func LevelForVerbosity(verbosity int) zerolog.Level {
	switch verbosity {
	case 0:
		return zerolog.WarnLevel
	case 1:
		return zerolog.InfoLevel
	case 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// SetupLogger configures the global logger based on verbosity.
// It sets up dual output to both console and a log file.
func SetupLogger(opts Options) {
	zerolog.SetGlobalLevel(LevelForVerbosity(opts.Verbosity))

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	writers := []io.Writer{zerolog.ConsoleWriter{
		Out:        console,
		TimeFormat: time.Kitchen,
		NoColor:    opts.NoColor,
	}}

	var fileErr error
	if opts.LogFile != "" {
		var handle *os.File
		handle, fileErr = setupLogFile(opts.LogFile)
		if fileErr == nil {
			writers = append(writers, handle)
		}
	}

	log.Logger = zerolog.New(io.MultiWriter(writers...)).With().Timestamp().Logger()

	if fileErr != nil {
		log.Warn().Err(fileErr).Str("path", opts.LogFile).Msg("Failed to create log file, logging to console only")
	}

	if opts.Verbosity >= 2 {
		log.Logger = log.Logger.With().Caller().Logger()
	}

	log.Debug().Int("verbosity", opts.Verbosity).Str("logFile", opts.LogFile).Msg("Logger initialized")
}

// GetLogger returns a contextualized logger with the given name
func GetLogger(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// setupLogFile creates the log file and its parent directories
func setupLogFile(logPath string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return file, nil
}

// LogOperationStart logs the start of an operation and returns a function to log its completion
func LogOperationStart(logger zerolog.Logger, operation string) func() {
	start := time.Now()
	logger.Debug().
		Str("operation", operation).
		Msg("Operation started")

	return func() {
		logger.Debug().
			Str("operation", operation).
			Dur("duration", time.Since(start)).
			Msg("Operation completed")
	}
}
