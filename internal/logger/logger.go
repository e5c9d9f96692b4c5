// Package logger provides a small leveled logging interface for vu1
// components. Packages log through the Logger interface so they are not
// coupled to a specific logging implementation, and tests can capture
// messages with a BufferLogger.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Logger defines the interface for logging operations.
// All methods accept a format string and arguments, similar to fmt.Printf.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
	Critical(format string, args ...interface{})
}

// Level orders log severities from most to least verbose.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
)

// String returns the upper-case level name used in log lines.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARNING"
	case LevelError:
		return "ERROR"
	case LevelCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a config value like "info" or "WARNING" into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "critical":
		return LevelCritical, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// timeLayout matches "2006-01-02 15:04:05,000".
const timeLayout = "2006-01-02 15:04:05.000"

// writerLogger writes "<time> - <name> - <LEVEL> - <message>" lines.
// Messages below the minimum level are dropped. VU1_DEBUG forces debug.
type writerLogger struct {
	mu    sync.Mutex
	out   io.Writer
	name  string
	level Level
	now   func() time.Time
}

// New creates a logger named name writing to out at the given minimum level.
func New(out io.Writer, name string, level Level) Logger {
	if os.Getenv("VU1_DEBUG") != "" {
		level = LevelDebug
	}
	return &writerLogger{out: out, name: name, level: level, now: time.Now}
}

// NewEnvLogger creates a stdout logger at info level that respects VU1_DEBUG.
func NewEnvLogger(name string) Logger {
	return New(os.Stdout, name, LevelInfo)
}

func (l *writerLogger) log(level Level, format string, args ...interface{}) {
	if level < l.level {
		return
	}
	ts := strings.Replace(l.now().Format(timeLayout), ".", ",", 1)
	msg := fmt.Sprintf(format, args...)

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "%s - %s - %s - %s\n", ts, l.name, level, msg)
}

func (l *writerLogger) Debug(format string, args ...interface{}) {
	l.log(LevelDebug, format, args...)
}

func (l *writerLogger) Info(format string, args ...interface{}) {
	l.log(LevelInfo, format, args...)
}

func (l *writerLogger) Warn(format string, args ...interface{}) {
	l.log(LevelWarn, format, args...)
}

func (l *writerLogger) Error(format string, args ...interface{}) {
	l.log(LevelError, format, args...)
}

func (l *writerLogger) Critical(format string, args ...interface{}) {
	l.log(LevelCritical, format, args...)
}

// noopLogger implements Logger but discards all messages.
type noopLogger struct{}

// Noop returns a logger that discards all messages.
func Noop() Logger {
	return &noopLogger{}
}

func (l *noopLogger) Debug(format string, args ...interface{})    {}
func (l *noopLogger) Info(format string, args ...interface{})     {}
func (l *noopLogger) Warn(format string, args ...interface{})     {}
func (l *noopLogger) Error(format string, args ...interface{})    {}
func (l *noopLogger) Critical(format string, args ...interface{}) {}

// LogMessage represents a captured log message.
type LogMessage struct {
	Level   string
	Message string
}

// BufferLogger captures log messages for testing.
type BufferLogger struct {
	mu       sync.Mutex
	Messages []LogMessage
}

// NewBufferLogger creates a logger that captures messages for inspection.
func NewBufferLogger() *BufferLogger {
	return &BufferLogger{
		Messages: make([]LogMessage, 0),
	}
}

func (l *BufferLogger) add(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = append(l.Messages, LogMessage{Level: level, Message: fmt.Sprintf(format, args...)})
}

func (l *BufferLogger) Debug(format string, args ...interface{}) {
	l.add("debug", format, args...)
}

func (l *BufferLogger) Info(format string, args ...interface{}) {
	l.add("info", format, args...)
}

func (l *BufferLogger) Warn(format string, args ...interface{}) {
	l.add("warn", format, args...)
}

func (l *BufferLogger) Error(format string, args ...interface{}) {
	l.add("error", format, args...)
}

func (l *BufferLogger) Critical(format string, args ...interface{}) {
	l.add("critical", format, args...)
}

// HasLevel returns true if any message was logged at the given level.
func (l *BufferLogger) HasLevel(level string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.Messages {
		if m.Level == level {
			return true
		}
	}
	return false
}

// Contains returns true if any message at level contains substr.
func (l *BufferLogger) Contains(level, substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.Messages {
		if m.Level == level && strings.Contains(m.Message, substr) {
			return true
		}
	}
	return false
}

// Clear removes all captured messages.
func (l *BufferLogger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = l.Messages[:0]
}

// defaultLogger is the package-level default logger.
var defaultLogger = NewEnvLogger("vu1")

// Default returns the default logger for the package.
func Default() Logger {
	return defaultLogger
}

// SetDefault sets the default logger for the package.
func SetDefault(l Logger) {
	defaultLogger = l
}
