package hybridwall

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	imgpkg "github.com/gogpu/hybridwall/internal/image"
)

// WallImagesDir is the project subdirectory exports go to when it exists.
const WallImagesDir = "wall-images"

// DefaultExportName is used when an ExportRequest has no Name.
const DefaultExportName = "hybrid"

// ExportRequest describes a full-resolution export.
type ExportRequest struct {
	Geometry  WallGeometry
	Params    RenderParameters
	Callbacks DrawCallbacks

	// ProjectDir is the directory of the project file. Its wall-images
	// subdirectory is preferred when it exists.
	ProjectDir string

	// Dir is used when the project has no wall-images directory.
	Dir string

	// Name is appended to the timestamp in the file name. It must not
	// contain path separators.
	Name string

	// Time stamps the file name. Zero means now.
	Time time.Time

	// Pool runs the filters. Nil means the shared default pool.
	Pool *WorkerPool
}

// ExportResult is the outcome of an export that got as far as a frame.
type ExportResult struct {
	Frame *Frame
	Path  string
}

// OutputDir picks the export directory: projectDir/wall-images if it is a
// directory, else dir if it is one.
func OutputDir(projectDir, dir string) (string, error) {
	if projectDir != "" {
		d := filepath.Join(projectDir, WallImagesDir)
		if isDir(d) {
			return d, nil
		}
	}
	if dir != "" && isDir(dir) {
		return dir, nil
	}
	return "", ErrNoOutputDir
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// validExportName reports whether name stays a plain file name component.
func validExportName(name string) bool {
	return !strings.ContainsAny(name, `/\`)
}

// ExportFileName returns the file name for an export made at t, in the form
// yyyyMMdd_HHmmss_<name>.png.
func ExportFileName(t time.Time, name string) string {
	if name == "" {
		name = DefaultExportName
	}
	return t.Format("20060102_150405") + "_" + name + ".png"
}

// Export renders the whole wall once at full resolution and writes it as a
// PNG. It runs on private buffers and may overlap interactive rendering.
//
// Progress goes through 0, 100, 200, 400 and 800 while compositing and 1000
// once the file is written; pm is closed on return. Cancellation through
// ctx or pm returns ErrCanceled and writes nothing. A write failure is
// reported through pm and returned as an *ExportError together with the
// result, whose Frame stays valid. The file is written atomically, so a
// failed export leaves no partial file.
func Export(ctx context.Context, req ExportRequest, pm ProgressMonitor) (*ExportResult, error) {
	if pm == nil {
		pm = NopProgress{}
	}
	defer pm.Close()

	if err := req.Geometry.Validate(); err != nil {
		return nil, err
	}
	if !validExportName(req.Name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidExportName, req.Name)
	}
	dir, err := OutputDir(req.ProjectDir, req.Dir)
	if err != nil {
		pm.SetNote("No output directory")
		return nil, err
	}

	wall := req.Geometry.Size()
	logFor(logExport).Debug("start",
		"wall", wall,
		"bytes", imgpkg.ByteSize(wall.W, wall.H),
		"dir", dir)

	comp := NewCompositor(req.Pool)
	defer comp.Release()
	frame, err := comp.Render(ctx, Job{
		Params:    req.Params,
		Wall:      wall,
		Target:    WallTarget(wall),
		Callbacks: req.Callbacks,
		Progress:  pm,
	})
	if err != nil {
		if !errors.Is(err, ErrCanceled) {
			logFor(logExport).Warn("render failed", "err", err)
		}
		return nil, err
	}
	if ctx.Err() != nil || pm.Canceled() {
		return nil, ErrCanceled
	}

	t := req.Time
	if t.IsZero() {
		t = time.Now()
	}
	path := filepath.Join(dir, ExportFileName(t, req.Name))
	res := &ExportResult{Frame: frame, Path: path}

	pm.SetNote(NoteWrite)
	if err := imgpkg.SavePNG(path, frame.Image); err != nil {
		pm.SetNote(fmt.Sprintf("Export failed: %v", err))
		logFor(logExport).Warn("write failed", "path", path, "err", err)
		return res, &ExportError{Path: path, Err: err}
	}
	pm.SetProgress(ProgressWritten)

	logFor(logExport).Info("frame written", "path", path, "elapsed", frame.Elapsed)
	return res, nil
}
