package httpapi

import (
	"archive/zip"
	"bytes"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"visit_coverage/internal/auth"
	"visit_coverage/internal/config"
	"visit_coverage/internal/excel"
	"visit_coverage/internal/pipeline"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// municipalityExcel serves GET /api/municipality/{name}/excel: the latest
// run's raw and summary sheets for one municipality as a workbook.
func (r *Router) municipalityExcel(w http.ResponseWriter, req *http.Request, user config.User) {
	rest := strings.TrimPrefix(req.URL.Path, "/api/municipality/")
	if !strings.HasSuffix(rest, "/excel") {
		http.NotFound(w, req)
		return
	}
	name, err := url.PathUnescape(strings.TrimSuffix(rest, "/excel"))
	if err != nil || name == "" {
		http.NotFound(w, req)
		return
	}
	if !r.authorize(w, user, auth.Scope{Municipality: name}) {
		return
	}

	merged, summary, err := r.latestRunTables(req)
	if err != nil {
		respondRunsError(w, err)
		return
	}
	data, ok, err := r.buildMunicipalityWorkbook(merged, summary, name)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		respondError(w, http.StatusNotFound,
			fmt.Sprintf("no data for municipality %q in the latest run", name))
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	// ASCII filename avoids header encoding trouble, like the dashboards expect
	w.Header().Set("Content-Disposition", `attachment; filename="municipality.xlsx"`)
	_, _ = w.Write(data)
}

// sectorZip serves GET /api/download/sector/{key}: one workbook per
// municipality in the sector, zipped. Municipalities without data are
// skipped rather than zipped empty.
func (r *Router) sectorZip(w http.ResponseWriter, req *http.Request, user config.User) {
	key := strings.ToLower(strings.Trim(strings.TrimPrefix(req.URL.Path, "/api/download/sector/"), "/"))
	if key == "" {
		http.NotFound(w, req)
		return
	}
	if !r.authorize(w, user, auth.Scope{Sector: key}) {
		return
	}
	sector, _ := r.cfg.Domain.Sector(key)

	merged, summary, err := r.latestRunTables(req)
	if err != nil {
		respondRunsError(w, err)
		return
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, muni := range sector.Municipalities {
		data, ok, err := r.buildMunicipalityWorkbook(merged, summary, muni)
		if err != nil {
			log.Printf("sector %s: workbook for %s: %v", key, muni, err)
			continue
		}
		if !ok {
			continue
		}
		entry, err := zw.Create(excel.SafeFileName(muni) + ".xlsx")
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if _, err := entry.Write(data); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	if err := zw.Close(); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="sector_%s.zip"`, key))
	_, _ = w.Write(buf.Bytes())
}

func (r *Router) latestRunTables(req *http.Request) (pipeline.Table, []pipeline.SummaryRow, error) {
	currentID, _, err := r.store.LatestRuns(req.Context())
	if err != nil {
		return pipeline.Table{}, nil, err
	}
	return r.store.LoadRun(req.Context(), currentID)
}

func (r *Router) buildMunicipalityWorkbook(merged pipeline.Table, summary []pipeline.SummaryRow, municipality string) ([]byte, bool, error) {
	sheets, ok := pipeline.ExportMunicipality(merged, summary, municipality, r.runner.Params())
	if !ok {
		return nil, false, nil
	}
	data, err := excel.BuildWorkbook(sheets)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}
