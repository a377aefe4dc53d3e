// Package logger wraps logrus with component-scoped entries and the
// output/format/rotation settings from the logging config section.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Fields type alias for logrus.Fields.
type Fields map[string]interface{}

// Log wraps logrus.Logger. It owns the file behind a file output and
// closes it when the output is replaced or Close is called.
type Log struct {
	*logrus.Logger

	mu  sync.Mutex
	out io.Closer
}

// Entry wraps logrus.Entry.
type Entry struct {
	*logrus.Entry
}

var globalLogger = New()

// New returns a JSON logger at info level writing to stderr.
func New() *Log {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(jsonFormatter())
	return &Log{Logger: l}
}

// Get returns the process-wide logger.
func Get() *Log {
	return globalLogger
}

// Discard returns a logger that writes nothing. Useful in tests.
func Discard() *Log {
	l := New()
	l.SetOutput(io.Discard)
	return l
}

func callerPrettyfier(f *runtime.Frame) (string, string) {
	return "", fmt.Sprintf("%s:%d", filepath.Base(f.File), f.Line)
}

func jsonFormatter() logrus.Formatter {
	return &logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
		CallerPrettyfier: callerPrettyfier,
	}
}

func (l *Log) WithComponent(component string) *Entry {
	return &Entry{Entry: l.Logger.WithField("component", component)}
}

func (l *Log) WithFields(fields Fields) *Entry {
	return &Entry{Entry: l.Logger.WithFields(logrus.Fields(fields))}
}

func (l *Log) WithError(err error) *Entry {
	return &Entry{Entry: l.Logger.WithError(err)}
}

func (e *Entry) WithComponent(component string) *Entry {
	return &Entry{Entry: e.Entry.WithField("component", component)}
}

func (e *Entry) WithFields(fields Fields) *Entry {
	return &Entry{Entry: e.Entry.WithFields(logrus.Fields(fields))}
}

func (e *Entry) WithField(key string, value interface{}) *Entry {
	return &Entry{Entry: e.Entry.WithField(key, value)}
}

func (e *Entry) WithError(err error) *Entry {
	return &Entry{Entry: e.Entry.WithError(err)}
}

// Configure applies level, format ("json" or "text") and output ("stdout",
// "stderr" or a file path). File output rotates when maxAge is positive.
// LOG_LEVEL in the environment overrides level.
func (l *Log) Configure(level, format, output string, maxAge int) error {
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		level = env
	}
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level '%s'", level)
	}
	l.SetLevel(lvl)

	switch format {
	case "json", "":
		l.SetFormatter(jsonFormatter())
	case "text":
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:    true,
			TimestampFormat:  time.RFC3339,
			CallerPrettyfier: callerPrettyfier,
		})
	default:
		return fmt.Errorf("invalid log format '%s'", format)
	}

	var (
		w      io.Writer
		closer io.Closer
	)
	switch output {
	case "stderr", "":
		w = os.Stderr
	case "stdout":
		w = os.Stdout
	default:
		if maxAge > 0 {
			lj := &lumberjack.Logger{
				Filename: output,
				MaxAge:   maxAge,
				MaxSize:  100,
				Compress: true,
			}
			w, closer = lj, lj
		} else {
			file, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return fmt.Errorf("failed to open log file '%s': %w", output, err)
			}
			w, closer = file, file
		}
	}
	return l.swapOutput(w, closer)
}

// swapOutput installs w and closes the file of the previous output, if any.
func (l *Log) swapOutput(w io.Writer, closer io.Closer) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.SetOutput(w)
	prev := l.out
	l.out = closer
	if prev != nil {
		if err := prev.Close(); err != nil {
			return fmt.Errorf("failed to close previous log output: %w", err)
		}
	}
	return nil
}

// Close releases the log file, if any, and falls back to stderr.
func (l *Log) Close() error {
	return l.swapOutput(os.Stderr, nil)
}

// LogDuration records how long an operation took.
func (e *Entry) LogDuration(operation string, started time.Time, fields Fields) {
	if fields == nil {
		fields = make(Fields)
	}
	fields["duration_ms"] = float64(time.Since(started).Nanoseconds()) / 1e6
	fields["operation"] = operation
	e.WithFields(fields).Debug("operation finished")
}
