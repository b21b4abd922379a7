package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger *log.Logger

	// stderr receives a copy of file logs in verbose mode
	stderr io.Writer = os.Stderr
)

// Init initializes the logger
func Init(verbose bool) {
	logLevel, err := log.ParseLevel(config.GetString("log.level"))
	if err != nil {
		logLevel = log.InfoLevel
	}
	if verbose {
		logLevel = log.DebugLevel
	}

	path := config.GetString("log.file")
	w := newWriter(path)
	if verbose && path != "" {
		w = io.MultiWriter(w, stderr)
	}

	logger = log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "pulse",
	})
	logger.SetLevel(logLevel)
}

// newWriter returns a rotating file writer, or stderr when no file is configured
func newWriter(path string) io.Writer {
	if path == "" {
		return stderr
	}

	maxSize := config.GetInt("log.max_size_mb")
	if maxSize <= 0 {
		maxSize = 10
	}

	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSize,
		MaxBackups: config.GetInt("log.max_backups"),
		MaxAge:     7,
		Compress:   true,
	}
}

// SetOutput redirects the logger, creating it at debug level if needed
func SetOutput(w io.Writer) {
	if logger == nil {
		logger = log.New(w)
		logger.SetLevel(log.DebugLevel)
		return
	}
	logger.SetOutput(w)
}

// Debug logs a debug message
func Debug(msg string, args ...interface{}) {
	if logger != nil {
		logger.Debug(msg, args...)
	}
}

// Info logs an info message
func Info(msg string, args ...interface{}) {
	if logger != nil {
		logger.Info(msg, args...)
	}
}

// Warn logs a warning message
func Warn(msg string, args ...interface{}) {
	if logger != nil {
		logger.Warn(msg, args...)
	}
}

// Error logs an error message
func Error(msg string, args ...interface{}) {
	if logger != nil {
		logger.Error(msg, args...)
	}
}
