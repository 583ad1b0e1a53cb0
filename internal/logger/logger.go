package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"frizo/futures_calculator/pkg/utils"
)

// Logger wraps slog.Logger with additional functionality.
type Logger struct {
	*slog.Logger
	closer io.Closer
}

// Options file sink is optional, stderr always receives output.
type Options struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	JSON       bool
	// Output defaults to os.Stderr, stdout is reserved for results
	Output io.Writer
}

// ParseLevel unknown names fall back to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a new logger with the specified level.
func New(level string) *Logger {
	l, _ := NewWithOptions(Options{Level: level})
	return l
}

// NewWithOptions adds a rotating file sink when opts.File is set.
func NewWithOptions(opts Options) (*Logger, error) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	var closer io.Closer
	if opts.File != "" {
		if err := utils.EnsureDir(filepath.Dir(opts.File)); err != nil {
			return nil, err
		}
		maxSize := opts.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 10
		}
		maxBackups := opts.MaxBackups
		if maxBackups <= 0 {
			maxBackups = 3
		}
		file := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxSize,
			MaxBackups: maxBackups,
			Compress:   true,
		}
		out = io.MultiWriter(out, file)
		closer = file
	}

	handlerOpts := &slog.HandlerOptions{
		Level: ParseLevel(opts.Level),
	}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}

	return &Logger{Logger: slog.New(handler), closer: closer}, nil
}

// WithFields returns a new logger with the given fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{Logger: l.Logger.With(args...), closer: l.closer}
}

// Close flushes the file sink if any.
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

var defaultLogger = New("info")

// Default returns the default logger.
func Default() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger.
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
