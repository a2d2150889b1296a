package hybridwall

import (
	"log/slog"
	"sync/atomic"
)

// Component names attached to every record as the "component" attribute.
const (
	logScheduler  = "scheduler"
	logCompositor = "compositor"
	logPresenter  = "presenter"
	logExport     = "export"
)

var (
	silent    = slog.New(slog.DiscardHandler)
	loggerPtr atomic.Pointer[slog.Logger]
)

func init() { loggerPtr.Store(silent) }

// SetLogger sets the logger used by hybridwall, its project package and the
// hybridwall command. Records are silent until it is called; nil silences
// them again. Safe to call while passes are running.
//
// Levels:
//   - [slog.LevelDebug]: pass start, finish and cancellation with timings
//     and buffer sizes
//   - [slog.LevelInfo]: export written
//   - [slog.LevelWarn]: aborted passes (draw errors, panics), export
//     failures, ignored project keys
//
// Every record carries a "component" attribute: scheduler, compositor,
// presenter, export or project.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// logFor returns the current logger tagged with component.
func logFor(component string) *slog.Logger {
	return Logger().With("component", component)
}
