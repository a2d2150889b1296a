// Command hybridwall renders hybrid images for tiled wall displays.
//
// A hybrid image shows a detailed near layer to viewers close to the wall
// and a coarse far layer to viewers standing back. hybridwall loads a
// project (or near and far images given directly), renders a window-sized
// preview and exports the full-resolution wall image.
//
// Usage:
//
//	hybridwall -project demo.hybrid.toml -preview preview.png
//	hybridwall -near detail.png -far overview.png -wall wild -export -out .
//	hybridwall -project demo.hybrid.toml -set blurRadius=40 -preview p.png -watch
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/muesli/termenv"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/hybridwall"
	imgpkg "github.com/gogpu/hybridwall/internal/image"
)

// config holds the parsed command line.
type config struct {
	project string
	near    string
	far     string
	wall    string
	window  hybridwall.Size
	preview string
	export  bool
	out     string
	name    string
	save    string
	sets    setFlags
	watch   bool
	verbose bool
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil && !errors.Is(err, hybridwall.ErrCanceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (*config, error) {
	cfg := &config{window: hybridwall.Size{W: 1280, H: 640}}
	fs := flag.NewFlagSet("hybridwall", flag.ContinueOnError)
	fs.StringVar(&cfg.project, "project", "", "project file")
	fs.StringVar(&cfg.near, "near", "", "near image, overrides the project")
	fs.StringVar(&cfg.far, "far", "", "far image, overrides the project")
	fs.StringVar(&cfg.wall, "wall", "", "wall geometry file or preset ("+strings.Join(hybridwall.PresetNames(), ", ")+")")
	fs.Func("window", "preview window size WxH (default 1280x640)", func(s string) error {
		size, err := parseSize(s)
		if err == nil {
			cfg.window = size
		}
		return err
	})
	fs.StringVar(&cfg.preview, "preview", "", "write the window preview to this PNG file")
	fs.BoolVar(&cfg.export, "export", false, "export the full-resolution wall image")
	fs.StringVar(&cfg.out, "out", ".", "export directory when the project has no "+hybridwall.WallImagesDir+" directory")
	fs.StringVar(&cfg.name, "name", hybridwall.DefaultExportName, "export file name suffix")
	fs.StringVar(&cfg.save, "save", "", "save the project, with -set overrides applied, to this file")
	fs.Var(&cfg.sets, "set", "override a parameter, name=value (repeatable)")
	fs.BoolVar(&cfg.watch, "watch", false, "rerender the preview whenever an input file changes")
	fs.BoolVar(&cfg.verbose, "v", false, "verbose logging")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if cfg.watch && cfg.preview == "" {
		return nil, errors.New("-watch needs -preview")
	}
	return cfg, nil
}

// parseSize parses WxH.
func parseSize(s string) (hybridwall.Size, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return hybridwall.Size{}, fmt.Errorf("size %q: want WxH", s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil {
		return hybridwall.Size{}, fmt.Errorf("size %q: %w", s, err)
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return hybridwall.Size{}, fmt.Errorf("size %q: %w", s, err)
	}
	if w <= 0 || h <= 0 {
		return hybridwall.Size{}, fmt.Errorf("size %q: must be positive", s)
	}
	return hybridwall.Size{W: w, H: h}, nil
}

// setFlags collects repeated -set name=value flags.
type setFlags []string

func (s *setFlags) String() string { return strings.Join(*s, ",") }

func (s *setFlags) Set(v string) error {
	if name, _, ok := strings.Cut(v, "="); !ok || name == "" {
		return fmt.Errorf("%q: want name=value", v)
	}
	*s = append(*s, v)
	return nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func run(ctx context.Context, cfg *config) error {
	logger := newLogger(cfg.verbose)
	hybridwall.SetLogger(logger)
	defer hybridwall.SetLogger(nil)

	s, err := loadSetup(cfg)
	if err != nil {
		return err
	}
	if cfg.save != "" {
		if err := s.project.Save(cfg.save); err != nil {
			return err
		}
		logger.Info("project saved", "path", s.project.Path)
	}

	r, err := hybridwall.NewRenderer(s.geometry, s.callbacks,
		hybridwall.WithWindowSize(cfg.window),
		hybridwall.WithParameters(s.project.Params))
	if err != nil {
		return err
	}
	defer r.Close()

	printer := message.NewPrinter(language.English)
	g := s.geometry
	logger.Info(printer.Sprintf("wall %d x %d px (%d x %d tiles), %d bytes per frame",
		g.XResolution, g.YResolution, g.XTiles, g.YTiles, imgpkg.ByteSize(g.XResolution, g.YResolution)))

	if cfg.preview != "" {
		if err := writePreview(r, cfg.preview); err != nil {
			return err
		}
		logger.Info("preview written", "path", cfg.preview, "window", cfg.window)
	}

	if cfg.export {
		req := hybridwall.ExportRequest{Dir: cfg.out, Name: cfg.name}
		if s.project.Path != "" {
			req.ProjectDir = s.project.Dir()
		}
		pm := newTermProgress(ctx, termenv.NewOutput(os.Stderr))
		res, err := r.Export(ctx, req, pm)
		if err != nil {
			return err
		}
		fmt.Println(res.Path)
	}

	if cfg.watch {
		return watch(ctx, r, cfg, s)
	}
	return nil
}

// writePreview waits for the current pass and saves the painted window.
func writePreview(r *hybridwall.Renderer, path string) error {
	r.Wait()
	return imgpkg.SavePNG(path, r.Snapshot())
}
