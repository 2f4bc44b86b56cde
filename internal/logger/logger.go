package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// global holds the process-wide logger. It starts as a stderr logger and is
// replaced by Init.
var global atomic.Pointer[log.Logger]

func init() {
	global.Store(New(os.Stderr, log.InfoLevel))
}

// Config holds logger configuration
type Config struct {
	Debug bool
	// Dir receives logs/timesheet.log. Empty logs to stderr only.
	Dir string
	// Stderr mirrors file output to stderr even without Debug (used by serve).
	Stderr bool
}

// Init initializes the global logger with the given configuration
func Init(cfg Config) error {
	level := log.InfoLevel
	if cfg.Debug {
		level = log.DebugLevel
	}

	var writer io.Writer = os.Stderr
	if cfg.Dir != "" {
		logDir := filepath.Join(cfg.Dir, "logs")
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return err
		}
		fileWriter := &lumberjack.Logger{
			Filename:   filepath.Join(logDir, "timesheet.log"),
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		if cfg.Debug || cfg.Stderr {
			writer = io.MultiWriter(os.Stderr, fileWriter)
		} else {
			writer = fileWriter
		}
	}

	l := New(writer, level)
	l.SetReportCaller(cfg.Debug)
	global.Store(l)
	return nil
}

// New builds a logger writing to w. Components take a *log.Logger so tests
// can pass their own.
func New(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           level,
		Prefix:          "timesheet",
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// Get returns the global logger, or a stderr logger if Init was not called.
func Get() *log.Logger {
	return global.Load()
}

// Debug logs a debug message
func Debug(msg string, keyvals ...interface{}) {
	Get().Debug(msg, keyvals...)
}

// Info logs an info message
func Info(msg string, keyvals ...interface{}) {
	Get().Info(msg, keyvals...)
}

// Warn logs a warning message
func Warn(msg string, keyvals ...interface{}) {
	Get().Warn(msg, keyvals...)
}

// Error logs an error message
func Error(msg string, keyvals ...interface{}) {
	Get().Error(msg, keyvals...)
}
