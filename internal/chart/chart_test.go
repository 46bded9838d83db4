package chart

import (
	"bytes"
	"image/png"
	"testing"

	"visit_coverage/internal/report"
)

func TestRenderProducesPNG(t *testing.T) {
	data := report.ChartData{
		Labels:   []string{"health", "markets", "صحة"},
		Current:  []int{130, 50, 12},
		Previous: []int{100, 0, 8},
	}
	out, err := Render(data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not a decodable PNG: %v", err)
	}
	if img.Bounds().Dx() < minWidth || img.Bounds().Dy() != chartHeight {
		t.Fatalf("unexpected dimensions %v", img.Bounds())
	}
}

func TestRenderEmptySeries(t *testing.T) {
	out, err := Render(report.ChartData{Labels: []string{}, Current: []int{}, Previous: []int{}})
	if err != nil {
		t.Fatalf("render empty: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(out)); err != nil {
		t.Fatalf("empty chart not a PNG: %v", err)
	}
}

func TestLatinOnly(t *testing.T) {
	if !latinOnly("markets_2") {
		t.Errorf("ascii label flagged non-latin")
	}
	if latinOnly("أسواق") {
		t.Errorf("arabic label passed as latin")
	}
}
