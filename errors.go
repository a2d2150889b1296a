package hybridwall

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrCanceled is returned when a pass is cancelled. It is not a failure:
	// the pass simply produces no output and prior state stays intact.
	ErrCanceled = errors.New("hybridwall: canceled")

	// ErrNoOutputDir is returned by Export when neither the project's
	// wall-images directory nor the fallback directory exists.
	ErrNoOutputDir = errors.New("hybridwall: no output directory")

	// ErrInvalidExportName is returned by Export for names that would place
	// the file outside the output directory.
	ErrInvalidExportName = errors.New("hybridwall: invalid export name")

	// ErrInvalidGeometry is returned for wall geometries with non-positive
	// resolutions or tile counts.
	ErrInvalidGeometry = errors.New("hybridwall: invalid wall geometry")

	// ErrUnknownParameter is returned by the ParameterStore for names that
	// are not RenderParameters fields.
	ErrUnknownParameter = errors.New("hybridwall: unknown parameter")
)

// DrawError reports a draw callback that failed or panicked mid-pass.
// The pass is aborted and the previously published frame stays visible.
type DrawError struct {
	Layer Layer
	Err   error
}

func (e *DrawError) Error() string {
	return fmt.Sprintf("hybridwall: draw %s layer: %v", e.Layer, e.Err)
}

func (e *DrawError) Unwrap() error { return e.Err }

// ExportError reports a failure to write an exported frame.
type ExportError struct {
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("hybridwall: export %s: %v", e.Path, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// panicError wraps a value recovered from a panicking callback.
type panicError struct {
	value any
}

func (e panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}
