// Package app wires the service components together.
package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"visit_coverage/internal/config"
	"visit_coverage/internal/httpapi"
	"visit_coverage/internal/metrics"
	"visit_coverage/internal/runner"
	"visit_coverage/internal/store"
	"visit_coverage/internal/watch"
)

type App struct {
	cfg     config.Config
	store   *store.Store
	runner  *runner.Runner
	watcher *watch.Watcher
	mux     *http.ServeMux
}

func New(cfg config.Config) (*App, error) {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	m := metrics.New()
	run := runner.New(cfg.Domain, st, m)
	watcher := watch.New(cfg, run)
	mux := http.NewServeMux()
	httpapi.NewRouter(cfg, st, run, m).Register(mux)
	return &App{cfg: cfg, store: st, runner: run, watcher: watcher, mux: mux}, nil
}

// Run starts the watcher and HTTP server and blocks until ctx is
// cancelled or the server fails.
func (a *App) Run(ctx context.Context) error {
	if err := a.watcher.Start(ctx); err != nil {
		return err
	}
	srv := &http.Server{Addr: ":" + a.cfg.HTTPPort, Handler: a.mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Printf("http listening on :%s", a.cfg.HTTPPort)
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	if closeErr := a.store.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

func (a *App) Mux() *http.ServeMux    { return a.mux }
func (a *App) Store() *store.Store    { return a.store }
func (a *App) Runner() *runner.Runner { return a.runner }
