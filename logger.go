package hwcompose

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely,
// making disabled logging effectively zero-cost in the frame path.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine,
// including hardware-completion threads advancing fence timelines.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := newNopLogger()
	loggerPtr.Store(l)
}

// SetLogger configures the logger for hwcompose and all its sub-packages.
// By default, hwcompose produces no log output. Pass nil to disable
// logging again (restore the default silent behavior).
//
// SetLogger is safe for concurrent use: it stores the new logger
// atomically.
//
// Log levels used by hwcompose:
//   - [slog.LevelDebug]: per-frame diagnostics (filter stage changes,
//     blanking slot churn)
//   - [slog.LevelInfo]: lifecycle events (timeline created, registry opened)
//   - [slog.LevelWarn]: tolerated anomalies (redundant geometry-change
//     flag, stale timeline target)
//   - [slog.LevelError]: kernel/driver failures (fence create, merge,
//     timeline advance)
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger used by hwcompose. Sub-packages
// (timeline/, filter/, blank/, registry/) call this to share the same
// logger configuration without introducing import cycles.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
