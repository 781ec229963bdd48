// Package logging provides the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// logger is swapped whole so paho and HTTP goroutines can call Logger
// while SetLevel or SetOutput runs.
var logger atomic.Pointer[zerolog.Logger]

func init() {
	store(New(os.Stderr))
}

func store(l zerolog.Logger) {
	logger.Store(&l)
}

// New returns a console logger writing to w with RFC3339 timestamps.
func New(w io.Writer) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
}

// Logger returns the package logger.
func Logger() zerolog.Logger {
	return *logger.Load()
}

// SetOutput replaces the package logger's destination.
func SetOutput(w io.Writer) {
	store(New(w).Level(Logger().GetLevel()))
}

// SetLevel parses level ("debug", "info", "warn", "error") and applies it.
// An empty string leaves the level unchanged.
func SetLevel(level string) error {
	if level == "" {
		return nil
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	store(Logger().Level(lvl))
	return nil
}
