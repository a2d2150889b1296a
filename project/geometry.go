package project

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/hybridwall"
)

// OpenGeometry returns the preset called name, or else the geometry stored
// in the file at name. An empty name gives hybridwall.DefaultGeometry.
func OpenGeometry(name string) (hybridwall.WallGeometry, error) {
	if name == "" {
		return hybridwall.DefaultGeometry(), nil
	}
	if g, ok := hybridwall.Preset(name); ok {
		return g, nil
	}
	return LoadGeometry(name)
}

// LoadGeometry reads a wall geometry file.
func LoadGeometry(path string) (hybridwall.WallGeometry, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return hybridwall.WallGeometry{}, fmt.Errorf("geometry: %w", err)
	}
	f, err := os.Open(path)
	if err != nil {
		return hybridwall.WallGeometry{}, fmt.Errorf("geometry: %w", err)
	}
	defer f.Close()

	g, err := DecodeGeometry(f)
	if err != nil {
		return hybridwall.WallGeometry{}, fmt.Errorf("geometry: %s: %w", path, err)
	}
	return g, nil
}

// DecodeGeometry reads a geometry with the keys xResolution, yResolution,
// xTiles, yTiles, pixelWidth and pixelHeight (metres), and optionally
// viewerDistance (metres, default hybridwall.DefaultViewerDistance).
func DecodeGeometry(r io.Reader) (hybridwall.WallGeometry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return hybridwall.WallGeometry{}, err
	}
	var g hybridwall.WallGeometry
	if err := decodeFlat(data, &g); err != nil {
		return hybridwall.WallGeometry{}, err
	}
	if g.ViewerDistance <= 0 {
		g.ViewerDistance = hybridwall.DefaultViewerDistance
	}
	if err := g.Validate(); err != nil {
		return hybridwall.WallGeometry{}, err
	}
	return g, nil
}

// SaveGeometry writes g to path.
func SaveGeometry(path string, g hybridwall.WallGeometry) error {
	if err := g.Validate(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := EncodeGeometry(&buf, g); err != nil {
		return err
	}
	path, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("geometry: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("geometry: write: %w", err)
	}
	return nil
}

// EncodeGeometry writes g as TOML.
func EncodeGeometry(w io.Writer, g hybridwall.WallGeometry) error {
	if err := toml.NewEncoder(w).Encode(g); err != nil {
		return fmt.Errorf("geometry: encode: %w", err)
	}
	return nil
}
