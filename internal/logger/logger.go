// Package logger is the diagnostic log shared by the setup stages. Status
// lines for the operator go through ui.Printer; this log carries detail
// that only matters when something goes wrong.
package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// Logger takes printf-style messages at four levels.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// DebugEnv turns on debug output for every logger when non-empty.
const DebugEnv = "GEOREP_DEBUG"

type stdLogger struct {
	prefix string
	debug  bool
}

// NewLogger writes through the standard log package with prefix in front of
// each line. Debug lines appear when debug is set (--verbose) or DebugEnv is.
func NewLogger(prefix string, debug bool) Logger {
	return &stdLogger{prefix: prefix, debug: debug}
}

func (l *stdLogger) print(tag, format string, args []interface{}) {
	log.Print(l.prefix + " " + tag + fmt.Sprintf(format, args...))
}

func (l *stdLogger) Debug(format string, args ...interface{}) {
	if l.debug || os.Getenv(DebugEnv) != "" {
		l.print("", format, args)
	}
}

func (l *stdLogger) Info(format string, args ...interface{})  { l.print("", format, args) }
func (l *stdLogger) Warn(format string, args ...interface{})  { l.print("WARN: ", format, args) }
func (l *stdLogger) Error(format string, args ...interface{}) { l.print("ERROR: ", format, args) }

type noopLogger struct{}

// Noop discards everything.
func Noop() Logger { return noopLogger{} }

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}

// LogMessage is one line kept by a BufferLogger.
type LogMessage struct {
	Level   string
	Message string
}

// BufferLogger keeps every message in memory for tests to assert on.
type BufferLogger struct {
	Messages []LogMessage
}

func NewBufferLogger() *BufferLogger {
	return &BufferLogger{Messages: []LogMessage{}}
}

func (l *BufferLogger) add(level, format string, args []interface{}) {
	l.Messages = append(l.Messages, LogMessage{Level: level, Message: fmt.Sprintf(format, args...)})
}

func (l *BufferLogger) Debug(format string, args ...interface{}) { l.add("debug", format, args) }
func (l *BufferLogger) Info(format string, args ...interface{})  { l.add("info", format, args) }
func (l *BufferLogger) Warn(format string, args ...interface{})  { l.add("warn", format, args) }
func (l *BufferLogger) Error(format string, args ...interface{}) { l.add("error", format, args) }

// HasLevel reports whether anything was logged at level.
func (l *BufferLogger) HasLevel(level string) bool {
	return l.find(func(m LogMessage) bool { return m.Level == level })
}

// Contains reports whether any message contains substr.
func (l *BufferLogger) Contains(substr string) bool {
	return l.find(func(m LogMessage) bool { return strings.Contains(m.Message, substr) })
}

func (l *BufferLogger) find(match func(LogMessage) bool) bool {
	for _, m := range l.Messages {
		if match(m) {
			return true
		}
	}
	return false
}

// Clear drops the kept messages.
func (l *BufferLogger) Clear() {
	l.Messages = l.Messages[:0]
}

var defaultLogger = NewLogger("", false)

// Default is the process-wide logger. The CLI replaces it once flags are
// parsed.
func Default() Logger {
	return defaultLogger
}

// SetDefault replaces the process-wide logger.
func SetDefault(l Logger) {
	defaultLogger = l
}
