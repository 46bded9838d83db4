// Package watch monitors an inbox directory for a visits/registry export
// pair and triggers a pipeline run when both are present.
package watch

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"visit_coverage/internal/config"
	"visit_coverage/internal/runner"
)

const (
	visitsPrefix   = "visits"
	registryPrefix = "registry"
	processedDir   = "processed"
)

// Watcher monitors INBOX_DIR for dropped spreadsheet exports.
type Watcher struct {
	cfg    config.Config
	runner *runner.Runner
}

func New(cfg config.Config, r *runner.Runner) *Watcher {
	return &Watcher{cfg: cfg, runner: r}
}

// Start begins watching. The inbox is scanned once at startup and again
// whenever a file lands; a run fires once one visits file and one
// registry file are both present, and the pair is moved into processed/
// afterwards.
func (w *Watcher) Start(ctx context.Context) error {
	if !w.cfg.EnableWatcher {
		log.Println("inbox watcher disabled")
		return nil
	}
	if err := os.MkdirAll(w.cfg.InboxDir, 0o755); err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case evt := <-watcher.Events:
				if evt.Op&(fsnotify.Create|fsnotify.Rename) != 0 && isWorkbook(evt.Name) {
					w.scan(ctx)
				}
			case err := <-watcher.Errors:
				log.Printf("inbox watcher error: %v", err)
			}
		}
	}()
	if err := watcher.Add(w.cfg.InboxDir); err != nil {
		return err
	}
	log.Printf("watching %s for export pairs", w.cfg.InboxDir)
	// a pair may already be waiting from before the process started
	w.scan(ctx)
	return nil
}

func (w *Watcher) scan(ctx context.Context) {
	visits := w.find(visitsPrefix)
	registry := w.find(registryPrefix)
	if visits == "" || registry == "" {
		return
	}
	runID, err := w.runner.ProcessFiles(ctx, visits, registry)
	if err != nil {
		log.Printf("inbox pair failed: %v", err)
		return
	}
	log.Printf("inbox pair processed as run %s", runID)
	w.archive(visits)
	w.archive(registry)
}

// find returns the oldest workbook in the inbox with the given prefix.
func (w *Watcher) find(prefix string) string {
	entries, err := os.ReadDir(w.cfg.InboxDir)
	if err != nil {
		return ""
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, prefix) && isWorkbook(name) {
			return filepath.Join(w.cfg.InboxDir, name)
		}
	}
	return ""
}

func (w *Watcher) archive(path string) {
	dir := filepath.Join(w.cfg.InboxDir, processedDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("archive %s: %v", path, err)
		return
	}
	if err := os.Rename(path, filepath.Join(dir, filepath.Base(path))); err != nil {
		log.Printf("archive %s: %v", path, err)
	}
}

func isWorkbook(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return true
	default:
		return false
	}
}
