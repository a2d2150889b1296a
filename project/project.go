// Package project reads and writes hybrid image project files and wall
// geometry files.
//
// Both are flat TOML documents. A project file stores the render parameters
// under their parameter names together with three paths: the wall geometry
// (a geometry file or a preset name), the near image and the far image.
// Paths are written relative to the project file's directory and resolved
// against it on load, so a project directory can be moved as a whole.
//
//	displayPath = "walls/wild.toml"
//	nearImagePath = "images/detail.png"
//	farImagePath = "images/overview.png"
//	hipassRadius = 30.0
//	blurRadius = 30.0
//	drawBezels = true
package project

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/hybridwall"
)

// FileExtension is the conventional extension of project files.
const FileExtension = ".hybrid.toml"

// Project is a saved hybrid image setup.
type Project struct {
	// Path is the file the project was loaded from or last saved to.
	Path string

	// DisplayPath is a geometry file or a preset name. Empty means
	// hybridwall.DefaultGeometry.
	DisplayPath   string
	NearImagePath string
	FarImagePath  string

	Params hybridwall.RenderParameters
}

// file is the on-disk layout.
type file struct {
	DisplayPath   string `toml:"displayPath"`
	NearImagePath string `toml:"nearImagePath"`
	FarImagePath  string `toml:"farImagePath"`

	hybridwall.RenderParameters
}

// New returns an unsaved project with default parameters.
func New() *Project {
	return &Project{Params: hybridwall.DefaultParameters()}
}

// Dir returns the directory paths are relative to: the project file's
// directory, or the working directory for an unsaved project.
func (p *Project) Dir() string {
	if p.Path == "" {
		return "."
	}
	return filepath.Dir(p.Path)
}

// Load reads a project file. Relative paths in it are resolved against the
// file's directory.
func Load(path string) (*Project, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("project: read: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}
	p, err := Decode(bytes.NewReader(data), filepath.Dir(abs))
	if err != nil {
		return nil, fmt.Errorf("project: %s: %w", path, err)
	}
	p.Path = abs
	return p, nil
}

// Decode reads a project from r, resolving relative paths against dir.
// Missing parameters keep their defaults. Unknown keys, such as settings of
// features this package does not support, are logged and ignored.
func Decode(r io.Reader, dir string) (*Project, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f := file{RenderParameters: hybridwall.DefaultParameters()}
	if err := decodeFlat(data, &f); err != nil {
		return nil, err
	}

	p := &Project{Params: f.RenderParameters}
	if p.DisplayPath, err = resolveDisplay(dir, f.DisplayPath); err != nil {
		return nil, err
	}
	if p.NearImagePath, err = Resolve(dir, f.NearImagePath); err != nil {
		return nil, err
	}
	if p.FarImagePath, err = Resolve(dir, f.FarImagePath); err != nil {
		return nil, err
	}
	return p, nil
}

// Save writes the project to path and makes path its new location. Paths
// are stored relative to path's directory where possible.
func (p *Project) Save(path string) error {
	path, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("project: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("project: %w", err)
	}
	var buf bytes.Buffer
	if err := p.Encode(&buf, filepath.Dir(abs)); err != nil {
		return err
	}
	if err := os.WriteFile(abs, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("project: write: %w", err)
	}
	p.Path = abs
	hybridwall.Logger().Debug("saved", "component", "project", "path", abs)
	return nil
}

// Encode writes the project as TOML with paths relative to dir.
func (p *Project) Encode(w io.Writer, dir string) error {
	f := file{
		DisplayPath:      relativize(dir, p.DisplayPath),
		NearImagePath:    relativize(dir, p.NearImagePath),
		FarImagePath:     relativize(dir, p.FarImagePath),
		RenderParameters: p.Params,
	}
	if _, err := io.WriteString(w, "# Hybrid image project\n"); err != nil {
		return fmt.Errorf("project: encode: %w", err)
	}
	if err := toml.NewEncoder(w).Encode(f); err != nil {
		return fmt.Errorf("project: encode: %w", err)
	}
	return nil
}

// Geometry returns the wall geometry named by DisplayPath.
func (p *Project) Geometry() (hybridwall.WallGeometry, error) {
	return OpenGeometry(p.DisplayPath)
}

// Resolve expands a leading ~ and makes path absolute against dir. An empty
// path stays empty.
func Resolve(dir, path string) (string, error) {
	if path == "" {
		return "", nil
	}
	path, err := homedir.Expand(path)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	return filepath.Clean(path), nil
}

// resolveDisplay resolves a display path unless it names a preset.
func resolveDisplay(dir, path string) (string, error) {
	if _, ok := hybridwall.Preset(path); ok {
		return path, nil
	}
	return Resolve(dir, path)
}

// relativize returns path relative to dir when both are absolute and a
// relative form exists; otherwise path unchanged.
func relativize(dir, path string) string {
	if path == "" || !filepath.IsAbs(path) || !filepath.IsAbs(dir) {
		return path
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// decodeFlat decodes data strictly first so that unknown keys can be
// reported, then leniently.
func decodeFlat(data []byte, v any) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	err := dec.Decode(v)
	var missing *toml.StrictMissingError
	if errors.As(err, &missing) {
		hybridwall.Logger().Warn("ignoring unknown keys", "component", "project", "detail", missing.String())
		err = toml.Unmarshal(data, v)
	}
	var de *toml.DecodeError
	if errors.As(err, &de) {
		row, col := de.Position()
		return fmt.Errorf("line %d column %d: %w", row, col, err)
	}
	return err
}
