package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gogpu/hybridwall"
)

// debounce collapses the burst of events an editor save produces.
const debounce = 200 * time.Millisecond

// watch reloads the inputs whenever one of them changes and rewrites the
// preview after each resulting pass. It returns when ctx is done.
func watch(ctx context.Context, r *hybridwall.Renderer, cfg *config, s *setup) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	// Editors often replace files, so watch the directories and filter.
	watched := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, f := range s.files() {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("watch: %w", err)
		}
		watched[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for d := range dirs {
		if err := w.Add(d); err != nil {
			return fmt.Errorf("watch %s: %w", d, err)
		}
	}
	log := hybridwall.Logger()
	log.Info("watching for changes", "files", len(watched))

	timer := time.NewTimer(debounce)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !watched[filepath.Clean(ev.Name)] {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				log.Debug("input changed", "file", ev.Name, "op", ev.Op)
				timer.Reset(debounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "err", err)
		case <-timer.C:
			if err := reload(r, cfg); err != nil {
				log.Warn("reload failed, keeping the previous inputs", "err", err)
				continue
			}
			if err := writePreview(r, cfg.preview); err != nil {
				log.Warn("preview not written", "err", err)
				continue
			}
			log.Info("preview updated", "path", cfg.preview)
		}
	}
}

// reload rereads every input and hands the result to r.
func reload(r *hybridwall.Renderer, cfg *config) error {
	s, err := loadSetup(cfg)
	if err != nil {
		return err
	}
	if err := r.SetGeometry(s.geometry); err != nil {
		return err
	}
	r.Parameters().Set(s.project.Params, hybridwall.OriginCode)
	r.SetCallbacks(s.callbacks)
	return nil
}
