package pipeline

import "testing"

func TestNormalizeLicense(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"12345", "12345", true},
		{"12345.0", "12345", true},
		{" 12345 ", "12345", true},
		{"12345.9", "12345", true},
		{"0", "0", true},
		{"-17", "-17", true},
		{"1e3", "1000", true},
		{"abc", "abc", true},
		{" ABC-99 ", "ABC-99", true},
		{"", "", false},
		{"   ", "", false},
		// beyond int64: kept as text instead of a garbage conversion
		{"98765432109876543210", "98765432109876543210", true},
		{"1e30", "1e30", true},
		{"-1e30", "-1e30", true},
	}
	for _, tc := range cases {
		got, ok := NormalizeLicense(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("NormalizeLicense(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestNormalizeLicenseAgreesAcrossRepresentations(t *testing.T) {
	want, _ := NormalizeLicense("12345")
	for _, in := range []string{"12345", "12345.0", " 12345.0 ", "12345.00"} {
		got, ok := NormalizeLicense(in)
		if !ok || got != want {
			t.Fatalf("NormalizeLicense(%q) = (%q, %v), want (%q, true)", in, got, ok, want)
		}
	}
}

func TestNormalizeTable(t *testing.T) {
	table := FromGrid([][]string{
		{"license_no", "note"},
		{"100.0", "a"},
		{"", "b"},
		{"xyz", "c"},
	})
	NormalizeTable(&table, "license_no")

	if !table.HasColumn(ColNormalizedID) {
		t.Fatalf("normalized column missing from header")
	}
	want := []string{"100", "", "xyz"}
	for i, row := range table.Rows {
		if row[ColNormalizedID] != want[i] {
			t.Errorf("row %d: normalized = %q, want %q", i, row[ColNormalizedID], want[i])
		}
	}
}
