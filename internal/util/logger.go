package util

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Logger = zerolog.Logger

// LogLevel represents available log levels
type LogLevel = int

// Log levels
const (
	TraceLevel LogLevel = iota
	DebugLevel
	InfoLevel
	WarnLevel
	ErrorLevel
)

// Verbosity bounds accepted by [VerboseToLevel]; 1 is error only, 5 is trace.
const (
	MinVerbose = 1
	MaxVerbose = 5
)

// VerboseToLevel maps a 1 (error) .. 5 (trace) verbosity onto a LogLevel.
// Out of range values are clamped.
func VerboseToLevel(verbose int) LogLevel {
	verbose = max(MinVerbose, min(verbose, MaxVerbose))
	lvls := [MaxVerbose]LogLevel{ErrorLevel, WarnLevel, InfoLevel, DebugLevel, TraceLevel}
	return lvls[verbose-1]
}

// ZerologLevel converts a LogLevel to the matching zerolog level.
// Unknown levels map to info.
func ZerologLevel(level LogLevel) zerolog.Level {
	switch level {
	case TraceLevel:
		return zerolog.TraceLevel
	case DebugLevel:
		return zerolog.DebugLevel
	case InfoLevel:
		return zerolog.InfoLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// InitializeLogger sets up the global logger writing to stdout
func InitializeLogger(level LogLevel) {
	InitializeLoggerTo(os.Stdout, level)
}

// InitializeLoggerTo sets up the global logger with a console writer on out.
// Embedders running the filesystem inside tests usually pass io.Discard or
// a testing writer here.
func InitializeLoggerTo(out io.Writer, level LogLevel) {
	// Set time format to ISO8601
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(ZerologLevel(level))

	// Only colorize when writing to the terminal
	output := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: out != os.Stdout}

	ctx := zerolog.New(output).With().Timestamp()
	if level == TraceLevel {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger()
	log.Debug().Msg("Logger initialized")
}

// GetLogger returns a configured logger for a specific component
func GetLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}
