package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Fields type is an alias for logrus.Fields
type Fields = logrus.Fields

// Logger is a wrapper around logrus.Logger carrying a module tag
type Logger struct {
	*logrus.Logger
	module string
}

// Global logger instance
var globalLogger *Logger

// Config for the logger
type Config struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Module     string `mapstructure:"module"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// Init initializes the global logger with the provided configuration
func Init(config Config) error {
	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %v", err)
	}

	log := logrus.StandardLogger()
	log.SetLevel(level)

	if config.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:          true,
			DisableSorting:         true,
			DisableLevelTruncation: true,
			PadLevelText:           true,
			TimestampFormat:        "2006-01-02 15:04:05",
		})
	}

	outputs := []io.Writer{os.Stderr}

	logPath := getDefaultLogPath()
	logDir := filepath.Dir(logPath)
	if err := os.MkdirAll(logDir, 0o755); err == nil {
		rotateLogger := &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    config.MaxSize,
			MaxAge:     config.MaxAge,
			MaxBackups: config.MaxBackups,
			Compress:   config.Compress,
		}
		outputs = append(outputs, rotateLogger)
	}

	if len(outputs) > 1 {
		log.SetOutput(io.MultiWriter(outputs...))
	} else {
		log.SetOutput(outputs[0])
	}

	globalLogger = &Logger{
		Logger: log,
		module: config.Module,
	}
	return nil
}

// getDefaultLogPath returns the default log file path
func getDefaultLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "wheelvend.log"
	}
	return filepath.Join(home, ".wheelvend", "wheelvend.log")
}

// NewLogger creates a new logger instance with the specified module.
// Falls back to a plain stderr logger when Init has not run, so tests and
// one-off callers never panic.
func NewLogger(module string) *Logger {
	if globalLogger == nil {
		return &Logger{Logger: logrus.StandardLogger(), module: module}
	}
	return &Logger{
		Logger: globalLogger.Logger,
		module: module,
	}
}

// withModule adds the module field to the entry
func (l *Logger) withModule(fields Fields) *logrus.Entry {
	if l.module != "" {
		if fields == nil {
			fields = Fields{}
		}
		fields["module"] = l.module
	}
	return l.Logger.WithFields(fields)
}

// Debugf logs a formatted message at the debug level
func (l *Logger) Debugf(format string, args ...any) {
	l.withModule(nil).Debugf(format, args...)
}

// Infof logs a formatted message at the info level
func (l *Logger) Infof(format string, args ...any) {
	l.withModule(nil).Infof(format, args...)
}

// Warnf logs a formatted message at the warn level
func (l *Logger) Warnf(format string, args ...any) {
	l.withModule(nil).Warnf(format, args...)
}

// Errorf logs a formatted message at the error level
func (l *Logger) Errorf(format string, args ...any) {
	l.withModule(nil).Errorf(format, args...)
}

// Fatalf logs a formatted message at the fatal level and then exits
func (l *Logger) Fatalf(format string, args ...any) {
	l.withModule(nil).Fatalf(format, args...)
}

// WithFields adds fields to the logger
func (l *Logger) WithFields(fields Fields) *logrus.Entry {
	return l.withModule(fields)
}

// WithError adds an error to the logger
func (l *Logger) WithError(err error) *logrus.Entry {
	return l.withModule(Fields{"error": err})
}

// Fatalf logs through the global logger when initialized, else to stderr.
func Fatalf(format string, args ...any) {
	if globalLogger != nil {
		globalLogger.Fatalf(format, args...)
		return
	}
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
