package pipeline

import "testing"

func TestClassify(t *testing.T) {
	cls := NewClassifier([]string{"cancelled", "awaiting inspection"})

	cases := []struct {
		raw  string
		want string
	}{
		{"", LabelNotVisited},
		{"   ", LabelNotVisited},
		{"cancelled", LabelNotVisited},
		{" cancelled ", LabelNotVisited},
		{"awaiting inspection", LabelNotVisited},
		{"inspected", LabelVisited},
		{"closed - violations found", LabelVisited},
	}
	for _, tc := range cases {
		if got := cls.Classify(tc.raw); got != tc.want {
			t.Errorf("Classify(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestBlocked(t *testing.T) {
	cls := NewClassifier([]string{"cancelled"})
	if !cls.Blocked(" cancelled ") {
		t.Fatalf("expected trimmed status to match block list")
	}
	if cls.Blocked("inspected") {
		t.Fatalf("inspected must not be blocked")
	}
	if cls.Blocked("") {
		t.Fatalf("empty status is not blocked, it is merely not a visit")
	}
}
