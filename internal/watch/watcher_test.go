package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"visit_coverage/internal/config"
	"visit_coverage/internal/excel"
	"visit_coverage/internal/metrics"
	"visit_coverage/internal/runner"
	"visit_coverage/internal/store"
)

func TestIsWorkbook(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"visits_20260830.xlsx", true},
		{"registry.XLSM", true},
		{"visits.csv", false},
		{"visits.xlsx.part", false},
	}
	for _, tc := range cases {
		if got := isWorkbook(tc.path); got != tc.want {
			t.Errorf("isWorkbook(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestFindByPrefix(t *testing.T) {
	inbox := t.TempDir()
	for _, name := range []string{"visits_aug.xlsx", "registry_aug.xlsx", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(inbox, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("seed inbox: %v", err)
		}
	}
	w := New(config.Config{InboxDir: inbox}, nil)

	if got := w.find(visitsPrefix); got != filepath.Join(inbox, "visits_aug.xlsx") {
		t.Errorf("find visits = %q", got)
	}
	if got := w.find(registryPrefix); got != filepath.Join(inbox, "registry_aug.xlsx") {
		t.Errorf("find registry = %q", got)
	}
	if got := w.find("ledger"); got != "" {
		t.Errorf("find ledger = %q, want none", got)
	}
}

func TestStartProcessesPairAlreadyInInbox(t *testing.T) {
	inbox := t.TempDir()
	st, err := store.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	r := runner.New(config.DefaultDomain(), st, metrics.New())
	w := New(config.Config{InboxDir: inbox, EnableWatcher: true}, r)

	seedInboxPair(t, inbox)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	// the pair predates the watcher, so no event will ever fire for it
	if _, _, err := st.LatestRuns(context.Background()); err != nil {
		t.Fatalf("pre-existing pair not processed at startup: %v", err)
	}
}

func seedInboxPair(t *testing.T, inbox string) {
	t.Helper()
	visits, err := excel.BuildWorkbook([]excel.Sheet{{
		Name: "visits",
		Grid: [][]string{{"license_no", "visit_status"}, {"100", "inspected"}},
	}})
	if err != nil {
		t.Fatalf("build visits: %v", err)
	}
	registry, err := excel.BuildWorkbook([]excel.Sheet{{
		Name: "health",
		Grid: [][]string{{"license_id", "MUNICIPALITY_EN"}, {"100", "Abha"}},
	}})
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	if err := os.WriteFile(filepath.Join(inbox, "visits_today.xlsx"), visits, 0o644); err != nil {
		t.Fatalf("drop visits: %v", err)
	}
	if err := os.WriteFile(filepath.Join(inbox, "registry_today.xlsx"), registry, 0o644); err != nil {
		t.Fatalf("drop registry: %v", err)
	}
}

func TestScanProcessesAndArchivesPair(t *testing.T) {
	inbox := t.TempDir()
	st, err := store.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	domain := config.DefaultDomain()
	r := runner.New(domain, st, metrics.New())
	w := New(config.Config{InboxDir: inbox, EnableWatcher: true}, r)

	visits, err := excel.BuildWorkbook([]excel.Sheet{{
		Name: "visits",
		Grid: [][]string{{"license_no", "visit_status"}, {"100", "inspected"}},
	}})
	if err != nil {
		t.Fatalf("build visits: %v", err)
	}
	registry, err := excel.BuildWorkbook([]excel.Sheet{{
		Name: "health",
		Grid: [][]string{{"license_id", "MUNICIPALITY_EN"}, {"100", "Abha"}},
	}})
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	if err := os.WriteFile(filepath.Join(inbox, "visits_today.xlsx"), visits, 0o644); err != nil {
		t.Fatalf("drop visits: %v", err)
	}

	// only half the pair is present, nothing should run
	w.scan(context.Background())
	if _, _, err := st.LatestRuns(context.Background()); err == nil {
		t.Fatalf("run fired before registry arrived")
	}

	if err := os.WriteFile(filepath.Join(inbox, "registry_today.xlsx"), registry, 0o644); err != nil {
		t.Fatalf("drop registry: %v", err)
	}
	w.scan(context.Background())

	if _, _, err := st.LatestRuns(context.Background()); err != nil {
		t.Fatalf("no run saved after pair scan: %v", err)
	}
	for _, name := range []string{"visits_today.xlsx", "registry_today.xlsx"} {
		if _, err := os.Stat(filepath.Join(inbox, processedDir, name)); err != nil {
			t.Errorf("%s not archived: %v", name, err)
		}
		if _, err := os.Stat(filepath.Join(inbox, name)); !os.IsNotExist(err) {
			t.Errorf("%s still in inbox", name)
		}
	}
}
