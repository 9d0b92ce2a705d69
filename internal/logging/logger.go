// Package logging provides the leveled, key/value logger used across nodewars.
// Console output meant for the user goes through the presenter package; this
// logger writes diagnostics to stderr and is quiet unless --verbose is set.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
)

// Level represents a log level.
type Level int

const (
	// LevelDebug is for request/poll tracing.
	LevelDebug Level = iota
	// LevelInfo is for lifecycle transitions and other notable events.
	LevelInfo
	// LevelWarn is for recoverable problems.
	LevelWarn
	// LevelError is for failures that abort a command.
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel maps a level name (case-insensitive) to a Level.
func ParseLevel(name string) (Level, error) {
	for lvl, n := range levelNames {
		if strings.EqualFold(n, name) {
			return lvl, nil
		}
	}
	return LevelWarn, fmt.Errorf("unknown log level %q", name)
}

// Logger is a leveled logger carrying context fields. Loggers derived with
// With/WithFields share the parent's level and output.
type Logger struct {
	core   *core
	fields map[string]interface{}
}

type core struct {
	mu       sync.RWMutex
	minLevel Level
	output   *log.Logger
}

var defaultLogger = New()

// New creates a Logger writing to stderr at warn level.
func New() *Logger {
	return &Logger{
		core: &core{
			minLevel: LevelWarn,
			output:   log.New(os.Stderr, "", log.LstdFlags),
		},
		fields: map[string]interface{}{},
	}
}

// Default returns the package-level logger.
func Default() *Logger {
	return defaultLogger
}

// SetLevel sets the minimum level for this logger and everything derived from it.
func (l *Logger) SetLevel(level Level) {
	l.core.mu.Lock()
	defer l.core.mu.Unlock()
	l.core.minLevel = level
}

// SetOutput redirects output, e.g. to a buffer in tests.
func (l *Logger) SetOutput(w io.Writer) {
	l.core.mu.Lock()
	defer l.core.mu.Unlock()
	l.core.output = log.New(w, "", 0)
}

// Enabled reports whether messages at level would be written.
func (l *Logger) Enabled(level Level) bool {
	l.core.mu.RLock()
	defer l.core.mu.RUnlock()
	return level >= l.core.minLevel
}

// With returns a derived Logger with one more context field.
func (l *Logger) With(key string, value interface{}) *Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithFields returns a derived Logger with additional context fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Logger{core: l.core, fields: merged}
}

func (l *Logger) log(level Level, msg string, keyVals ...interface{}) {
	if !l.Enabled(level) {
		return
	}

	all := make(map[string]interface{}, len(l.fields)+len(keyVals)/2)
	for k, v := range l.fields {
		all[k] = v
	}
	for i := 0; i+1 < len(keyVals); i += 2 {
		if key, ok := keyVals[i].(string); ok {
			all[key] = keyVals[i+1]
		}
	}

	var sb strings.Builder
	sb.WriteString(level.String())
	sb.WriteString(": ")
	sb.WriteString(msg)

	if len(all) > 0 {
		keys := make([]string, 0, len(all))
		for k := range all {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteString(" |")
		for _, k := range keys {
			sb.WriteString(" ")
			sb.WriteString(k)
			sb.WriteString("=")
			sb.WriteString(formatValue(all[k]))
		}
	}

	l.core.mu.RLock()
	out := l.core.output
	l.core.mu.RUnlock()
	out.Print(sb.String())
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		if val == "" || strings.ContainsAny(val, " \t\n\"") {
			return fmt.Sprintf("%q", val)
		}
		return val
	case error:
		return fmt.Sprintf("%q", val.Error())
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(v)
	}
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, keyVals ...interface{}) { l.log(LevelDebug, msg, keyVals...) }

// Info logs at info level.
func (l *Logger) Info(msg string, keyVals ...interface{}) { l.log(LevelInfo, msg, keyVals...) }

// Warn logs at warn level.
func (l *Logger) Warn(msg string, keyVals ...interface{}) { l.log(LevelWarn, msg, keyVals...) }

// Error logs at error level.
func (l *Logger) Error(msg string, keyVals ...interface{}) { l.log(LevelError, msg, keyVals...) }

// SetLevel sets the level of the default logger.
func SetLevel(level Level) { defaultLogger.SetLevel(level) }

// SetOutput sets the output of the default logger.
func SetOutput(w io.Writer) { defaultLogger.SetOutput(w) }

// With derives from the default logger.
func With(key string, value interface{}) *Logger { return defaultLogger.With(key, value) }

// WithFields derives from the default logger.
func WithFields(fields map[string]interface{}) *Logger { return defaultLogger.WithFields(fields) }

// Debug logs at debug level using the default logger.
func Debug(msg string, keyVals ...interface{}) { defaultLogger.Debug(msg, keyVals...) }

// Info logs at info level using the default logger.
func Info(msg string, keyVals ...interface{}) { defaultLogger.Info(msg, keyVals...) }

// Warn logs at warn level using the default logger.
func Warn(msg string, keyVals ...interface{}) { defaultLogger.Warn(msg, keyVals...) }

// Error logs at error level using the default logger.
func Error(msg string, keyVals ...interface{}) { defaultLogger.Error(msg, keyVals...) }
