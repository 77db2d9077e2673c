package lp

import "testing"

// dualizeFixtureLP is 2 cols, 1 row: x+2y=3, 0<=x,y<=5, cost 4x+1y.
func dualizeFixtureLP() *LP {
	m := New(2, 1)
	m.Astart = []int{0, 1, 2}
	m.Aindex = []int{0, 0}
	m.Avalue = []float64{1, 2}
	m.Nnz = 2
	m.ColCost = []float64{4, 1}
	m.ColLower = []float64{0, 0}
	m.ColUpper = []float64{5, 5}
	m.RowLower = []float64{3}
	m.RowUpper = []float64{3}
	return m
}

func TestDualizeEqualityProblemTransposesMatrix(t *testing.T) {
	eq := dualizeFixtureLP().TransformIntoEqualityProblem()
	dual := eq.DualizeEqualityProblem()

	if len(dual.B) != eq.NumRow {
		t.Fatalf("len(B) = %d, want %d", len(dual.B), eq.NumRow)
	}
	if len(dual.C) != eq.NumCol {
		t.Fatalf("len(C) = %d, want %d", len(dual.C), eq.NumCol)
	}
	if len(dual.ATstart) != eq.NumRow+1 {
		t.Fatalf("len(ATstart) = %d, want %d", len(dual.ATstart), eq.NumRow+1)
	}

	// Row 0 of A is [1, 2, -1] (x, y, slack); Aᵀ's column 0 must carry
	// the same three entries, in column index order.
	var gotCols []int
	var gotVals []float64
	for k := dual.ATstart[0]; k < dual.ATstart[1]; k++ {
		gotCols = append(gotCols, dual.ATindex[k])
		gotVals = append(gotVals, dual.ATvalue[k])
	}
	wantCols := []int{0, 1, 2}
	wantVals := []float64{1, 2, -1}
	if len(gotCols) != len(wantCols) {
		t.Fatalf("row 0 has %d entries, want %d", len(gotCols), len(wantCols))
	}
	for i := range wantCols {
		if gotCols[i] != wantCols[i] || gotVals[i] != wantVals[i] {
			t.Fatalf("entry %d = (%d, %v), want (%d, %v)", i, gotCols[i], gotVals[i], wantCols[i], wantVals[i])
		}
	}
}
