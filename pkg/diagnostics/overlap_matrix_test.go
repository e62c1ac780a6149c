package diagnostics

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rbbox/coupling/pkg/geom"
)

func TestOverlapMatrixAtAndDensity(t *testing.T) {
	fm := geom.FeedbackMap{
		0: {0, 1},
		1: geom.UnsetFeedback,
	}
	m := NewOverlapMatrix(fm, 2)

	if !m.At(0, 0) || !m.At(0, 1) {
		t.Errorf("rank 0 should overlap both remote ranks")
	}
	if m.At(1, 0) || m.At(1, 1) {
		t.Errorf("rank 1 should overlap neither remote rank")
	}

	want := 2.0 / 4.0
	if got := m.Density(); got != want {
		t.Errorf("Density() = %g, want %g", got, want)
	}
}

func TestOverlapMatrixWriteCSV(t *testing.T) {
	fm := geom.FeedbackMap{0: {1}}
	m := NewOverlapMatrix(fm, 2)

	var buf bytes.Buffer
	if err := m.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected a header row and one data row, got %d lines: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[1], "1") {
		t.Errorf("data row should record the overlap with remote rank 1: %q", lines[1])
	}
}

func TestOverlapMatrixEmptyFeedbackMap(t *testing.T) {
	m := NewOverlapMatrix(geom.FeedbackMap{}, 3)
	if got := m.Density(); got != 0 {
		t.Errorf("Density() on an empty feedback map = %g, want 0", got)
	}
}
