// Package logger holds the logger shared by every fractal4d package.
package logger

import (
	"context"
	"log/slog"
	"sync/atomic"
)

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger replaces the shared logger. Nothing is logged until it is called.
// Passing nil silences logging again.
//
// Levels in use:
//   - [slog.LevelDebug]: per-event diagnostics (rejected input, sweep start/stop, GL debug output)
//   - [slog.LevelInfo]: lifecycle (GL version, program loads, saved images)
//   - [slog.LevelWarn]: recoverable failures (recompile failed, previous program kept)
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the shared logger. Safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
