// Package runner executes pipeline runs end to end: reconcile, persist,
// record metrics. Both the HTTP upload handler and the inbox watcher go
// through it, so every saved run took the same path.
package runner

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"visit_coverage/internal/config"
	"visit_coverage/internal/metrics"
	"visit_coverage/internal/pipeline"
	"visit_coverage/internal/store"
)

type Runner struct {
	domain  config.Domain
	store   *store.Store
	metrics *metrics.Metrics
}

func New(domain config.Domain, st *store.Store, m *metrics.Metrics) *Runner {
	return &Runner{domain: domain, store: st, metrics: m}
}

// Params maps the domain configuration onto the pipeline contract.
func (r *Runner) Params() pipeline.Params {
	return pipeline.Params{
		Categories:            r.domain.Categories,
		BlockStatuses:         r.domain.BlockStatuses,
		VisitsSheet:           r.domain.VisitsSheet,
		VisitLicenseColumn:    r.domain.Columns.VisitLicense,
		VisitStatusColumn:     r.domain.Columns.VisitStatus,
		UniverseLicenseColumn: r.domain.Columns.UniverseLicense,
		MunicipalityColumn:    r.domain.Columns.Municipality,
	}
}

// Process runs the pipeline over the two uploads and persists the result
// as a new run. Nothing is saved when the pipeline fails.
func (r *Runner) Process(ctx context.Context, visits, registry []byte) (string, pipeline.Result, error) {
	start := time.Now()
	res, err := pipeline.Run(visits, registry, r.Params())
	if err != nil {
		r.metrics.ObserveRun(time.Since(start), 0, 0, err)
		return "", pipeline.Result{}, err
	}
	runID, err := r.store.SaveRun(ctx, res.Merged, res.Summary)
	r.metrics.ObserveRun(time.Since(start), len(res.Merged.Rows), len(res.Summary), err)
	if err != nil {
		return "", pipeline.Result{}, fmt.Errorf("save run: %w", err)
	}
	log.Printf("run %s: %d merged rows, %d summary rows in %s",
		runID, len(res.Merged.Rows), len(res.Summary), time.Since(start).Round(time.Millisecond))
	return runID, res, nil
}

// ProcessFiles runs the pipeline over a visits/registry pair on disk;
// used by the inbox watcher.
func (r *Runner) ProcessFiles(ctx context.Context, visitsPath, registryPath string) (string, error) {
	visits, err := os.ReadFile(visitsPath)
	if err != nil {
		return "", err
	}
	registry, err := os.ReadFile(registryPath)
	if err != nil {
		return "", err
	}
	runID, _, err := r.Process(ctx, visits, registry)
	return runID, err
}
