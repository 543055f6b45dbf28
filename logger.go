package handodds

import (
	"io"
	"log"
	"os"
)

// DefaultLogger implements Logger on top of a standard library *log.Logger
type DefaultLogger struct {
	out   *log.Logger
	debug bool
}

// NewDefaultLogger writes to w; Debug lines are dropped unless debug is set.
func NewDefaultLogger(w io.Writer, debug bool) *DefaultLogger {
	if w == nil {
		w = os.Stderr
	}
	return &DefaultLogger{out: log.New(w, "handodds ", log.LstdFlags), debug: debug}
}

func (l *DefaultLogger) logger() *log.Logger {
	if l.out == nil {
		return log.Default()
	}
	return l.out
}

// Info logs an info message
func (l *DefaultLogger) Info(msg string, args ...any) {
	l.logger().Printf("[INFO] "+msg, args...)
}

// Error logs an error message
func (l *DefaultLogger) Error(msg string, args ...any) {
	l.logger().Printf("[ERROR] "+msg, args...)
}

// Debug logs a debug message
func (l *DefaultLogger) Debug(msg string, args ...any) {
	if !l.debug {
		return
	}
	l.logger().Printf("[DEBUG] "+msg, args...)
}

// SilentLogger implements Logger interface but does not output any logs
// This is useful for testing environments where log output is not desired
type SilentLogger struct{}

// NewSilentLogger creates a new silent logger instance
func NewSilentLogger() *SilentLogger {
	return &SilentLogger{}
}

func (l *SilentLogger) Info(msg string, args ...any)  {}
func (l *SilentLogger) Error(msg string, args ...any) {}
func (l *SilentLogger) Debug(msg string, args ...any) {}
