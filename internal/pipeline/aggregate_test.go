package pipeline

import "testing"

func TestSummarizeDistinctCounts(t *testing.T) {
	p := testParams()
	merged := Table{
		Columns: []string{"MUNICIPALITY_EN", ColNormalizedID, ColCategory, ColVisitLabel},
		Rows: []Row{
			// license 100 repeated in the registry, visited once
			{"MUNICIPALITY_EN": "Abha", ColNormalizedID: "100", ColCategory: "health", ColVisitLabel: LabelVisited},
			{"MUNICIPALITY_EN": "Abha", ColNormalizedID: "100", ColCategory: "health", ColVisitLabel: LabelVisited},
			{"MUNICIPALITY_EN": "Abha", ColNormalizedID: "200", ColCategory: "health", ColVisitLabel: LabelNotVisited},
			{"MUNICIPALITY_EN": "Khamis", ColNormalizedID: "300", ColCategory: "markets", ColVisitLabel: LabelVisited},
		},
	}
	summary := Summarize(merged, p)
	if len(summary) != 2 {
		t.Fatalf("summary rows = %d, want 2 groups", len(summary))
	}

	abha := summary[0]
	if abha.Municipality != "Abha" || abha.Category != "health" {
		t.Fatalf("unexpected first group: %+v", abha)
	}
	if abha.Total != 2 || abha.Visited != 1 || abha.NotVisited != 1 {
		t.Fatalf("Abha/health = %+v, want total 2 visited 1 not 1 (distinct ids)", abha)
	}

	khamis := summary[1]
	if khamis.Total != 1 || khamis.Visited != 1 || khamis.NotVisited != 0 {
		t.Fatalf("Khamis/markets = %+v", khamis)
	}
}

func TestSummarizeInvariants(t *testing.T) {
	merged, err := MergeUniverse(universeFixture(), visitsFixture(), "health", testParams(), NewClassifier(nil))
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	for _, row := range Summarize(merged, testParams()) {
		if row.Visited+row.NotVisited != row.Total {
			t.Errorf("%s/%s: visited %d + not %d != total %d",
				row.Municipality, row.Category, row.Visited, row.NotVisited, row.Total)
		}
		if row.Total < 0 || row.Visited < 0 || row.NotVisited < 0 {
			t.Errorf("%s/%s: negative count in %+v", row.Municipality, row.Category, row)
		}
	}
}

func TestSummarizeIgnoresBlankIdentifiers(t *testing.T) {
	p := testParams()
	merged := Table{
		Columns: []string{"MUNICIPALITY_EN", ColNormalizedID, ColCategory, ColVisitLabel},
		Rows: []Row{
			{"MUNICIPALITY_EN": "Abha", ColNormalizedID: "", ColCategory: "health", ColVisitLabel: LabelVisited},
			{"MUNICIPALITY_EN": "Abha", ColNormalizedID: "", ColCategory: "health", ColVisitLabel: LabelNotVisited},
			{"MUNICIPALITY_EN": "Abha", ColNormalizedID: "100", ColCategory: "health", ColVisitLabel: LabelVisited},
			{"MUNICIPALITY_EN": "Khamis", ColNormalizedID: "", ColCategory: "markets", ColVisitLabel: LabelNotVisited},
		},
	}
	summary := Summarize(merged, p)
	if len(summary) != 2 {
		t.Fatalf("summary rows = %d, want 2 groups", len(summary))
	}

	abha := summary[0]
	if abha.Total != 1 || abha.Visited != 1 || abha.NotVisited != 0 {
		t.Fatalf("Abha/health = %+v, want only license 100 counted", abha)
	}

	// a group made solely of blank-id rows still appears, at zero
	khamis := summary[1]
	if khamis.Municipality != "Khamis" || khamis.Total != 0 || khamis.Visited != 0 || khamis.NotVisited != 0 {
		t.Fatalf("Khamis/markets = %+v, want all-zero group", khamis)
	}
}

func TestSummarizeEmptyInput(t *testing.T) {
	summary := Summarize(Table{}, testParams())
	if len(summary) != 0 {
		t.Fatalf("summary of empty table = %d rows, want 0", len(summary))
	}
}
