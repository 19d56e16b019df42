// Package logger provides a small leveled logging interface.
package logger

import (
	"log"
	"os"
	"strings"
	"sync"
)

// Logger defines the logging interface used across the application.
type Logger interface {
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})
	Info(v ...interface{})
	Infof(format string, v ...interface{})
	Warn(v ...interface{})
	Warnf(format string, v ...interface{})
	Error(v ...interface{})
	Errorf(format string, v ...interface{})
	Fatal(v ...interface{})
	Fatalf(format string, v ...interface{})
}

// Level represents logging levels.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

type leveledLogger struct {
	level   Level
	loggers map[Level]*log.Logger
	mu      sync.RWMutex
}

// New creates a logger whose minimum level is read from LOG_LEVEL.
func New() Logger {
	return NewWithLevel(ParseLevel(os.Getenv("LOG_LEVEL")))
}

// NewWithLevel creates a logger with an explicit minimum level.
func NewWithLevel(level Level) Logger {
	return &leveledLogger{
		level: level,
		loggers: map[Level]*log.Logger{
			LevelDebug: log.New(os.Stdout, "[DEBUG] ", log.LstdFlags|log.Lshortfile),
			LevelInfo:  log.New(os.Stdout, "[INFO] ", log.LstdFlags),
			LevelWarn:  log.New(os.Stdout, "[WARN] ", log.LstdFlags),
			LevelError: log.New(os.Stderr, "[ERROR] ", log.LstdFlags|log.Lshortfile),
		},
	}
}

// ParseLevel converts a string log level to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l *leveledLogger) shouldLog(level Level) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return level >= l.level
}

func (l *leveledLogger) output(level Level, v ...interface{}) {
	if !l.shouldLog(level) {
		return
	}
	l.loggers[level].Println(v...)
}

func (l *leveledLogger) outputf(level Level, format string, v ...interface{}) {
	if !l.shouldLog(level) {
		return
	}
	l.loggers[level].Printf(format, v...)
}

func (l *leveledLogger) Debug(v ...interface{})                 { l.output(LevelDebug, v...) }
func (l *leveledLogger) Debugf(format string, v ...interface{}) { l.outputf(LevelDebug, format, v...) }
func (l *leveledLogger) Info(v ...interface{})                  { l.output(LevelInfo, v...) }
func (l *leveledLogger) Infof(format string, v ...interface{})  { l.outputf(LevelInfo, format, v...) }
func (l *leveledLogger) Warn(v ...interface{})                  { l.output(LevelWarn, v...) }
func (l *leveledLogger) Warnf(format string, v ...interface{})  { l.outputf(LevelWarn, format, v...) }
func (l *leveledLogger) Error(v ...interface{})                 { l.output(LevelError, v...) }
func (l *leveledLogger) Errorf(format string, v ...interface{}) { l.outputf(LevelError, format, v...) }

func (l *leveledLogger) Fatal(v ...interface{}) {
	l.loggers[LevelError].Println(v...)
	os.Exit(1)
}

func (l *leveledLogger) Fatalf(format string, v ...interface{}) {
	l.loggers[LevelError].Printf(format, v...)
	os.Exit(1)
}
