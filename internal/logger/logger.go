// Package logger holds the process-wide zerolog loggers.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const logFilename = "traveller.log"

// Logger is the application logger; HttpLogger receives one line per request.
// Both discard output until Init is called.
var (
	Logger     = zerolog.Nop()
	HttpLogger = zerolog.Nop()
)

// Init configures console logging at the given level.  Levels use the
// logrus numbering (0 panic .. 6 trace) so existing deployments keep their
// LOG_LEVEL values; unknown values fall back to info.
func Init(logLevel string) {
	InitWriter(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.DateTime}, logLevel)
}

// InitWriter is Init with an explicit destination.
func InitWriter(w io.Writer, logLevel string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	level := ParseLevel(logLevel)
	Logger = zerolog.New(w).Level(level).With().Timestamp().Logger()
	HttpLogger = Logger.With().Str("component", "http").Logger()
	if level <= zerolog.DebugLevel {
		Logger = Logger.With().Caller().Logger()
	}
}

// ParseLevel maps a logrus-style numeric level to zerolog.
func ParseLevel(logLevel string) zerolog.Level {
	level, err := strconv.Atoi(logLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	switch level {
	case 6:
		return zerolog.TraceLevel
	case 5:
		return zerolog.DebugLevel
	case 4:
		return zerolog.InfoLevel
	case 3:
		return zerolog.WarnLevel
	case 2:
		return zerolog.ErrorLevel
	case 1:
		return zerolog.FatalLevel
	case 0:
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}

// AddFileLogger tees the application log into a rotating file under dir.
// It returns the file path.
func AddFileLogger(dir, logLevel string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, logFilename)
	fileLogger := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    20, // megabytes
		MaxAge:     3,
		MaxBackups: 3,
	}
	console := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.DateTime}
	InitWriter(zerolog.MultiLevelWriter(console, fileLogger), logLevel)
	return path, nil
}
