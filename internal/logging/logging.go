// Package logging sets up the rotating file logger. The terminal belongs to
// the TUI, so nothing is ever written to stdout or stderr from here.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/jask/dropselect/internal/config"
)

// Logger writes to a lumberjack-rotated file.
type Logger struct {
	*log.Logger
	out io.WriteCloser
}

// New opens the log file described by cfg, creating its directory.
func New(cfg config.LogConfig) (*Logger, error) {
	if cfg.Path == "" {
		return Discard(), nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir log dir: %w", err)
	}
	out := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB, // megabytes
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays, // days
		Compress:   cfg.Compress,
	}
	return &Logger{
		Logger: log.New(out, "", log.LstdFlags),
		out:    out,
	}, nil
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{Logger: log.New(io.Discard, "", 0)}
}

func (l *Logger) Close() error {
	if l == nil || l.out == nil {
		return nil
	}
	return l.out.Close()
}
