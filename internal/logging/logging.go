// Package logging builds the process logger.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where log output goes.
type Options struct {
	Level string
	// File, when set, receives log output through a rotating writer.
	File string
	// Quiet keeps logs off the terminal. Used while a TUI owns the screen.
	Quiet bool
	// DefaultFile is used when Quiet is set and File is empty.
	DefaultFile string
}

// Logger wraps a charmbracelet logger and the file writer behind it.
type Logger struct {
	*log.Logger
	file *lumberjack.Logger
}

// New returns a logger writing to stderr, or to a rotating file when one is
// configured. An unknown level falls back to info with a warning.
func New(opts Options) (*Logger, error) {
	var (
		w    io.Writer = os.Stderr
		file *lumberjack.Logger
	)

	path := opts.File
	if path == "" && opts.Quiet {
		path = opts.DefaultFile
	}
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
		file = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			LocalTime:  true,
		}
		w = file
	} else if opts.Quiet {
		w = io.Discard
	}

	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "rendercards",
	})

	level, ok := ParseLevel(opts.Level)
	l.SetLevel(level)
	if !ok {
		l.Warn("unknown log level, using info", "level", opts.Level)
	}

	return &Logger{Logger: l, file: file}, nil
}

// ParseLevel maps a level name to a log level. The second result is false
// when the name is not recognised, in which case InfoLevel is returned.
func ParseLevel(s string) (log.Level, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return log.InfoLevel, true
	}
	if s == "warning" {
		s = "warn"
	}
	level, err := log.ParseLevel(s)
	if err != nil {
		return log.InfoLevel, false
	}
	return level, true
}

// Close flushes and closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
