package mps

import (
	"os"
	"path/filepath"
	"testing"

	"go.lp/highs/lp"
	"go.lp/highs/logging"
	"go.lp/highs/options"
)

func sampleLP() *lp.LP {
	m := lp.New(2, 1)
	m.ModelName = "SAMPLE"
	m.Astart = []int{0, 1, 2}
	m.Aindex = []int{0, 0}
	m.Avalue = []float64{1, 2}
	m.Nnz = 2
	m.ColCost = []float64{1, 2}
	m.ColLower = []float64{0, 0}
	m.ColUpper = []float64{10, lp.DefaultInfiniteBound}
	m.RowLower = []float64{-lp.DefaultInfiniteBound}
	m.RowUpper = []float64{5}
	m.RowNames = []string{"ROW1"}
	m.ColNames = []string{"X", "Y"}
	return m
}

func TestWriteThenReadMPSRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.mps")
	m := sampleLP()

	if _, err := WriteMPS(path, m, false, logging.New(os.Stdout)); err != nil {
		t.Fatalf("WriteMPS: %v", err)
	}

	opt := options.Default()
	opt.MPSParserType = options.MPSFree
	got, code, err := Read(path, opt, logging.New(os.Stdout))
	if err != nil {
		t.Fatalf("Read: %v (%v)", err, code)
	}

	if got.NumCol != m.NumCol || got.NumRow != m.NumRow {
		t.Fatalf("dims = (%d,%d), want (%d,%d)", got.NumCol, got.NumRow, m.NumCol, m.NumRow)
	}
	if got.RowUpper[0] != 5 {
		t.Fatalf("RowUpper[0] = %v, want 5", got.RowUpper[0])
	}
	if got.ColCost[0] != 1 || got.ColCost[1] != 2 {
		t.Fatalf("ColCost = %v, want [1 2]", got.ColCost)
	}
	if got.ColUpper[0] != 10 {
		t.Fatalf("ColUpper[0] = %v, want 10", got.ColUpper[0])
	}
	if !lp.InfiniteBound(got.ColUpper[1], lp.DefaultInfiniteBound) {
		t.Fatalf("ColUpper[1] = %v, want infinite", got.ColUpper[1])
	}
}

func TestReadMissingFileReportsFileNotFound(t *testing.T) {
	_, code, err := Read("/nonexistent/path.mps", options.Default(), logging.New(os.Stdout))
	if err == nil {
		t.Fatal("expected an error")
	}
	if code.String() != "FILENOTFOUND" {
		t.Fatalf("code = %v, want FILENOTFOUND", code)
	}
}

func TestWriteThenReadEMSRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.ems")
	// EMS is a flat array dump (spec.md §3's arrays, no names), so the
	// fixture here carries none either -- Equal would otherwise fail on
	// ModelName/RowNames/ColNames alone, which EMS was never meant to
	// round-trip.
	m := sampleLP()
	m.ModelName = ""
	m.RowNames = nil
	m.ColNames = nil

	if _, err := WriteEMS(path, m); err != nil {
		t.Fatalf("WriteEMS: %v", err)
	}

	got, code, err := ReadEMS(path)
	if err != nil {
		t.Fatalf("ReadEMS: %v (%v)", err, code)
	}
	if !got.Equal(m) {
		t.Fatalf("round-tripped LP does not match original:\ngot  %+v\nwant %+v", got, m)
	}
}
