package kernelview

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/wgpu"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for kernelview, all its sub-packages
// and the wgpu device stack underneath compute.
// By default nothing is logged. Pass nil to restore the silent default.
//
// Log levels used:
//   - [slog.LevelDebug]: buffer sizes, dispatch geometry, backend probing
//   - [slog.LevelInfo]: adapter selected, surface created, loop terminated
//   - [slog.LevelWarn]: non-fatal issues (release errors, optional compute failed)
//
// Example:
//
//	kernelview.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	// Device-side diagnostics (adapter probing, dispatch and validation
	// errors) come from the wgpu stack.
	wgpu.SetLogger(l)
}

// Logger returns the current logger.
// Sub-packages (compute/, present/) call this to share one logger
// configuration without import cycles.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
