// Package httpapi exposes the coverage pipeline over HTTP: upload and
// process, scope totals with run-over-run deltas, chart series, and
// per-municipality and per-sector downloads.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"visit_coverage/internal/auth"
	"visit_coverage/internal/chart"
	"visit_coverage/internal/config"
	"visit_coverage/internal/metrics"
	"visit_coverage/internal/pipeline"
	"visit_coverage/internal/report"
	"visit_coverage/internal/runner"
	"visit_coverage/internal/store"
)

const maxUploadBytes = 64 << 20

// Router builds HTTP handlers for /api and /ops.
type Router struct {
	cfg     config.Config
	store   *store.Store
	runner  *runner.Runner
	metrics *metrics.Metrics
}

func NewRouter(cfg config.Config, st *store.Store, r *runner.Runner, m *metrics.Metrics) *Router {
	return &Router{cfg: cfg, store: st, runner: r, metrics: m}
}

func (r *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/process", r.withUser(r.process))
	mux.HandleFunc("/api/totals", r.withUser(r.totals))
	mux.HandleFunc("/api/totals/", r.withUser(r.totals))
	mux.HandleFunc("/api/chart-data", r.withUser(r.chartData))
	mux.HandleFunc("/api/chart-data/", r.withUser(r.chartData))
	mux.HandleFunc("/api/chart.png", r.withUser(r.chartImage))
	mux.HandleFunc("/api/municipality/", r.withUser(r.municipalityExcel))
	mux.HandleFunc("/api/download/sector/", r.withUser(r.sectorZip))
	mux.HandleFunc("/api/meta/sectors", r.withUser(r.metaSectors))
	mux.HandleFunc("/ops/health", r.health)
	mux.HandleFunc("/ops/status", r.status)
	mux.Handle("/metrics", r.metrics.Handler())
	mux.HandleFunc("/", r.page)
}

// withUser wraps a handler with basic-auth authentication. With no users
// configured the service runs open and every request acts as admin,
// which keeps local development and tests credential-free.
func (r *Router) withUser(h func(http.ResponseWriter, *http.Request, config.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		domain := r.cfg.Domain
		if len(domain.Users) == 0 {
			h(w, req, config.User{Name: "anonymous", Role: auth.RoleAdmin})
			return
		}
		name, password, ok := req.BasicAuth()
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="visit-coverage"`)
			respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		user, ok := auth.Authenticate(domain, name, password)
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="visit-coverage"`)
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h(w, req, user)
	}
}

// authorize resolves the request scope and applies the access predicate.
func (r *Router) authorize(w http.ResponseWriter, user config.User, scope auth.Scope) bool {
	if scope.Sector != "" {
		if _, ok := r.cfg.Domain.Sector(scope.Sector); !ok {
			respondError(w, http.StatusBadRequest, "unknown sector")
			return false
		}
	}
	if !auth.CanAccess(user, r.cfg.Domain, scope) {
		respondError(w, http.StatusForbidden, "scope not permitted for this account")
		return false
	}
	return true
}

// scopeFromPath parses trailing /sector/{key} or /municipality/{name}
// segments under base. An empty remainder is the region scope.
func scopeFromPath(path, base string) (auth.Scope, bool) {
	rest := strings.Trim(strings.TrimPrefix(path, base), "/")
	if rest == "" {
		return auth.Scope{}, true
	}
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return auth.Scope{}, false
	}
	value, err := url.PathUnescape(parts[1])
	if err != nil {
		return auth.Scope{}, false
	}
	switch parts[0] {
	case "sector":
		return auth.Scope{Sector: strings.ToLower(value)}, true
	case "municipality":
		return auth.Scope{Municipality: value}, true
	default:
		return auth.Scope{}, false
	}
}

func (r *Router) filterFor(scope auth.Scope) report.Filter {
	if scope.Municipality != "" {
		return report.Filter{Municipality: scope.Municipality}
	}
	if scope.Sector != "" {
		sector, _ := r.cfg.Domain.Sector(scope.Sector)
		munis := sector.Municipalities
		if munis == nil {
			munis = []string{}
		}
		return report.Filter{Municipalities: munis}
	}
	return report.Filter{}
}

// latestSummaries loads the newest run's summary plus the previous one's
// when it exists.
func (r *Router) latestSummaries(req *http.Request) (current []pipeline.SummaryRow, previous []pipeline.SummaryRow, hasPrevious bool, err error) {
	currentID, previousID, err := r.store.LatestRuns(req.Context())
	if err != nil {
		return nil, nil, false, err
	}
	_, current, err = r.store.LoadRun(req.Context(), currentID)
	if err != nil {
		return nil, nil, false, err
	}
	if previousID != "" {
		_, previous, err = r.store.LoadRun(req.Context(), previousID)
		if err != nil {
			return nil, nil, false, err
		}
		hasPrevious = true
	}
	return current, previous, hasPrevious, nil
}

type processResponse struct {
	RunID           string                      `json:"run_id"`
	Totals          report.Comparison           `json:"totals"`
	Municipalities  []report.MunicipalityTotals `json:"municipalities"`
	Categories      []report.CategoryTotals     `json:"categories"`
	RetainedRuns    []store.Run                 `json:"retained_runs"`
	MergedRowCount  int                         `json:"merged_row_count"`
	SummaryRowCount int                         `json:"summary_row_count"`
}

func (r *Router) process(w http.ResponseWriter, req *http.Request, user config.User) {
	if req.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if user.Role != auth.RoleAdmin {
		respondError(w, http.StatusForbidden, "processing uploads requires the admin role")
		return
	}
	req.Body = http.MaxBytesReader(w, req.Body, maxUploadBytes)
	if err := req.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "expected multipart upload with visits and registry files")
		return
	}
	visits, err := formFile(req, "visits", "raw_today")
	if err != nil {
		respondError(w, http.StatusBadRequest, "visits file missing from upload")
		return
	}
	registry, err := formFile(req, "registry", "ministry_new")
	if err != nil {
		respondError(w, http.StatusBadRequest, "registry file missing from upload")
		return
	}

	runID, res, err := r.runner.Process(req.Context(), visits, registry)
	if err != nil {
		respondPipelineError(w, err)
		return
	}

	_, previous, hasPrevious := r.previousOf(req, runID)
	resp := processResponse{
		RunID:           runID,
		Totals:          report.Compare(res.Summary, previous, hasPrevious, report.Filter{}),
		Municipalities:  report.ByMunicipality(res.Summary, report.Filter{}),
		Categories:      report.ByCategory(res.Summary, report.Filter{}),
		MergedRowCount:  len(res.Merged.Rows),
		SummaryRowCount: len(res.Summary),
	}
	if runs, err := r.store.ListRuns(req.Context()); err == nil {
		resp.RetainedRuns = runs
	}
	respondJSON(w, http.StatusOK, resp)
}

// previousOf returns the summary of the run preceding runID, when any.
func (r *Router) previousOf(req *http.Request, runID string) (string, []pipeline.SummaryRow, bool) {
	currentID, previousID, err := r.store.LatestRuns(req.Context())
	if err != nil || currentID != runID || previousID == "" {
		return "", nil, false
	}
	_, summary, err := r.store.LoadRun(req.Context(), previousID)
	if err != nil {
		log.Printf("load previous run %s: %v", previousID, err)
		return "", nil, false
	}
	return previousID, summary, true
}

type totalsResponse struct {
	Sector       string `json:"sector,omitempty"`
	Municipality string `json:"municipality,omitempty"`
	report.Comparison
}

func (r *Router) totals(w http.ResponseWriter, req *http.Request, user config.User) {
	scope, ok := scopeFromPath(req.URL.Path, "/api/totals")
	if !ok {
		http.NotFound(w, req)
		return
	}
	if !r.authorize(w, user, scope) {
		return
	}
	current, previous, hasPrevious, err := r.latestSummaries(req)
	if err != nil {
		respondRunsError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, totalsResponse{
		Sector:       scope.Sector,
		Municipality: scope.Municipality,
		Comparison:   report.Compare(current, previous, hasPrevious, r.filterFor(scope)),
	})
}

func (r *Router) chartData(w http.ResponseWriter, req *http.Request, user config.User) {
	scope, ok := scopeFromPath(req.URL.Path, "/api/chart-data")
	if !ok {
		http.NotFound(w, req)
		return
	}
	if !r.authorize(w, user, scope) {
		return
	}
	current, previous, _, err := r.latestSummaries(req)
	if err != nil {
		respondRunsError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report.CategorySeries(current, previous, r.filterFor(scope)))
}

// chartImage renders the same series as chartData as a PNG. Scope comes
// from query parameters: ?sector=key or ?municipality=name.
func (r *Router) chartImage(w http.ResponseWriter, req *http.Request, user config.User) {
	scope := auth.Scope{
		Sector:       strings.ToLower(req.URL.Query().Get("sector")),
		Municipality: req.URL.Query().Get("municipality"),
	}
	if !r.authorize(w, user, scope) {
		return
	}
	current, previous, _, err := r.latestSummaries(req)
	if err != nil {
		respondRunsError(w, err)
		return
	}
	img, err := chart.Render(report.CategorySeries(current, previous, r.filterFor(scope)))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(img)
}

func (r *Router) metaSectors(w http.ResponseWriter, req *http.Request, user config.User) {
	type sectorMeta struct {
		Label          string   `json:"label"`
		Municipalities []string `json:"municipalities"`
	}
	meta := map[string]sectorMeta{}
	for _, s := range r.cfg.Domain.Sectors {
		if !auth.CanAccess(user, r.cfg.Domain, auth.Scope{Sector: s.Key}) {
			continue
		}
		meta[s.Key] = sectorMeta{Label: s.Label, Municipalities: s.Municipalities}
	}
	respondJSON(w, http.StatusOK, meta)
}

func (r *Router) health(w http.ResponseWriter, req *http.Request) {
	if err := r.store.Health(req.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (r *Router) status(w http.ResponseWriter, req *http.Request) {
	runs, err := r.store.ListRuns(req.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"runs":        runs,
		"environment": r.cfg.Environment,
		"watcher":     r.cfg.EnableWatcher,
	})
}

func formFile(req *http.Request, names ...string) ([]byte, error) {
	for _, name := range names {
		file, _, err := req.FormFile(name)
		if err != nil {
			continue
		}
		defer file.Close()
		return io.ReadAll(file)
	}
	return nil, http.ErrMissingFile
}

func respondPipelineError(w http.ResponseWriter, err error) {
	var formatErr *pipeline.FormatError
	var dataErr *pipeline.DataError
	switch {
	case errors.As(err, &formatErr), errors.As(err, &dataErr):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func respondRunsError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNoRuns) {
		respondError(w, http.StatusBadRequest, "no runs saved; upload today's files first")
		return
	}
	respondError(w, http.StatusInternalServerError, err.Error())
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write json: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
