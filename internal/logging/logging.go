// Package logging builds the leveled loggers used by taskpage.
//
// The terminal belongs to the TUI, so the client logs to a rotating file.
// The dev server logs to stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits for the client log file.
const (
	MaxSizeMB  = 5
	MaxBackups = 3
	MaxAgeDays = 28
)

// Options configures a logger.
type Options struct {
	Level  log.Level
	Prefix string
}

// NewFile returns a logger writing to a rotating file at path. The returned
// closer releases the file and must be closed by the caller.
func NewFile(path string, opts Options) (*log.Logger, io.Closer, error) {
	if path == "" {
		return nil, nil, fmt.Errorf("log file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}

	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    MaxSizeMB,
		MaxBackups: MaxBackups,
		MaxAge:     MaxAgeDays,
		Compress:   true,
	}
	return newLogger(rotator, opts, log.LogfmtFormatter), rotator, nil
}

// NewConsole returns a logger writing to w with timestamps.
func NewConsole(w io.Writer, opts Options) *log.Logger {
	return newLogger(w, opts, log.TextFormatter)
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

func newLogger(w io.Writer, opts Options, formatter log.Formatter) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           opts.Level,
		Formatter:       formatter,
		ReportTimestamp: true,
		Prefix:          opts.Prefix,
	})
}
