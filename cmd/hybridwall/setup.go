package main

import (
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/gogpu/hybridwall"
	imgpkg "github.com/gogpu/hybridwall/internal/image"
	"github.com/gogpu/hybridwall/project"
)

// setup is everything loaded from disk for one render.
type setup struct {
	project   *project.Project
	geometry  hybridwall.WallGeometry
	callbacks hybridwall.DrawCallbacks
}

// files returns the input files a watch should follow.
func (s *setup) files() []string {
	var out []string
	for _, f := range []string{s.project.Path, s.project.NearImagePath, s.project.FarImagePath} {
		if f != "" {
			out = append(out, f)
		}
	}
	if _, ok := hybridwall.Preset(s.project.DisplayPath); !ok && s.project.DisplayPath != "" {
		out = append(out, s.project.DisplayPath)
	}
	return out
}

// loadSetup reads the project, applies command-line overrides and loads
// the wall geometry and layer images.
func loadSetup(cfg *config) (*setup, error) {
	p := project.New()
	if cfg.project != "" {
		var err error
		if p, err = project.Load(cfg.project); err != nil {
			return nil, err
		}
	}
	if err := applyOverrides(p, cfg); err != nil {
		return nil, err
	}

	g, err := p.Geometry()
	if err != nil {
		return nil, err
	}
	cb, err := imageCallbacks(g, p.NearImagePath, p.FarImagePath)
	if err != nil {
		return nil, err
	}
	return &setup{project: p, geometry: g, callbacks: cb}, nil
}

// applyOverrides applies -near, -far, -wall and -set to p. Paths given on
// the command line are relative to the working directory.
func applyOverrides(p *project.Project, cfg *config) error {
	var err error
	if cfg.near != "" {
		if p.NearImagePath, err = absPath(cfg.near); err != nil {
			return err
		}
	}
	if cfg.far != "" {
		if p.FarImagePath, err = absPath(cfg.far); err != nil {
			return err
		}
	}
	if cfg.wall != "" {
		p.DisplayPath = cfg.wall
		if _, ok := hybridwall.Preset(cfg.wall); !ok {
			if p.DisplayPath, err = absPath(cfg.wall); err != nil {
				return err
			}
		}
	}

	store := hybridwall.NewParameterStore(p.Params)
	for _, kv := range cfg.sets {
		name, value, _ := strings.Cut(kv, "=")
		if err := store.SetString(name, value, hybridwall.OriginControl); err != nil {
			return fmt.Errorf("-set %s: %w", kv, err)
		}
	}
	p.Params = store.Get()
	return nil
}

// absPath resolves a command-line path against the working directory.
func absPath(path string) (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return project.Resolve(wd, path)
}

// imageCallbacks places the near image at one wall pixel per image pixel,
// centred on the wall, and stretches the far image over the same rectangle.
// Either path may be empty.
func imageCallbacks(g hybridwall.WallGeometry, nearPath, farPath string) (hybridwall.DrawCallbacks, error) {
	var cb hybridwall.DrawCallbacks
	near, err := loadOptional(nearPath)
	if err != nil {
		return cb, err
	}
	far, err := loadOptional(farPath)
	if err != nil {
		return cb, err
	}

	var rect hybridwall.Rect
	switch {
	case near != nil:
		rect = hybridwall.CenteredRect(g.Size(), near.Bounds())
	case far != nil:
		rect = hybridwall.CenteredRect(g.Size(), far.Bounds())
	}
	if near != nil {
		cb.Near = hybridwall.ImageLayer(near, rect)
	}
	if far != nil {
		cb.Far = hybridwall.ImageLayer(far, rect)
	}
	return cb, nil
}

func loadOptional(path string) (image.Image, error) {
	if path == "" {
		return nil, nil
	}
	img, err := imgpkg.LoadImage(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return img, nil
}
