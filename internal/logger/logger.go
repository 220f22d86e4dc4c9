// Package logger provides the leveled logger threaded through the
// pipeline.
package logger

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// Logger is implemented by every logging backend.
type Logger interface {
	Debug(message string, keyvals ...any)
	Info(message string, keyvals ...any)
	Warn(message string, keyvals ...any)
	Error(message string, keyvals ...any)
}

// Level is a logging threshold.
type Level = log.Level

const (
	DebugLevel = log.DebugLevel
	InfoLevel  = log.InfoLevel
	WarnLevel  = log.WarnLevel
	ErrorLevel = log.ErrorLevel
)

// ParseLevel converts "debug", "info", "warn" or "error". Anything else is
// info.
func ParseLevel(s string) Level {
	level, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return InfoLevel
	}
	return level
}

// New returns a logger writing to w with timestamps.
func New(w io.Writer, level Level) Logger {
	return &charm{logger: log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})}
}

// charm adapts *log.Logger, whose methods take the message as any.
type charm struct {
	logger *log.Logger
}

func (c *charm) Debug(message string, keyvals ...any) { c.logger.Debug(message, keyvals...) }
func (c *charm) Info(message string, keyvals ...any)  { c.logger.Info(message, keyvals...) }
func (c *charm) Warn(message string, keyvals ...any)  { c.logger.Warn(message, keyvals...) }
func (c *charm) Error(message string, keyvals ...any) { c.logger.Error(message, keyvals...) }

// Nop returns a logger that discards everything.
func Nop() Logger { return nop{} }

type nop struct{}

func (nop) Debug(string, ...any) {}
func (nop) Info(string, ...any)  {}
func (nop) Warn(string, ...any)  {}
func (nop) Error(string, ...any) {}
