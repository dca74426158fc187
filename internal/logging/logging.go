// Package logging provides logging functionality.
package logging

import (
	"context"
	"io"
	"log/slog"
)

// Logger is a logging implementation.
type Logger struct {
	logger *slog.Logger
}

// Attr is a logging attribute.
type Attr = slog.Attr

// Level is a logging level.
type Level = slog.Level

// Levels supported by the Logger.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// NewLogger creates a new Logger that writes text records at info level to w.
func NewLogger(w io.Writer) *Logger {
	return NewLoggerWithLevel(w, LevelInfo)
}

// NewLoggerWithLevel creates a new Logger that writes text records at the given level to w.
func NewLoggerWithLevel(w io.Writer, level Level) *Logger {
	return &Logger{slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))}
}

// NewConsoleLogger creates a new Logger with colored, human-friendly output. Meant for development.
func NewConsoleLogger(w io.Writer, level Level) *Logger {
	return &Logger{slog.New(NewConsoleHandler(w, level))}
}

// ParseLevel parses a level name like "debug" or "WARN". Unknown names fall back to info.
func ParseLevel(s string) Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return LevelInfo
	}

	return level
}

// Slog returns the underlying slog.Logger.
func (l *Logger) Slog() *slog.Logger {
	return l.logger
}

// Debug logs a debug message.
func (l *Logger) Debug(ctx context.Context, msg string, attrs ...Attr) {
	l.logger.LogAttrs(ctx, LevelDebug, msg, attrs...)
}

// Info logs an info message.
func (l *Logger) Info(ctx context.Context, msg string, attrs ...Attr) {
	l.logger.LogAttrs(ctx, LevelInfo, msg, attrs...)
}

// Warn logs a warning message.
func (l *Logger) Warn(ctx context.Context, msg string, attrs ...Attr) {
	l.logger.LogAttrs(ctx, LevelWarn, msg, attrs...)
}

// Error logs an error message.
func (l *Logger) Error(ctx context.Context, msg string, attrs ...Attr) {
	l.logger.LogAttrs(ctx, LevelError, msg, attrs...)
}

// String creates a new attribute with the given key and value.
func String(key, value string) Attr {
	return slog.String(key, value)
}

// Int creates a new attribute with the given key and int value.
func Int(key string, value int) Attr {
	return slog.Int(key, value)
}

// Bool creates a new attribute with the given key and bool value.
func Bool(key string, value bool) Attr {
	return slog.Bool(key, value)
}

// ErrAttr creates a new attribute with the key "err" and the given error value.
func ErrAttr(value error) Attr { return slog.Any("err", value) }
