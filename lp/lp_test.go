package lp

import "testing"

func trivialLP() *LP {
	// min x s.t. 1<=x<=3, no rows.
	l := New(1, 0)
	l.ColCost[0] = 1
	l.ColLower[0] = 1
	l.ColUpper[0] = 3
	l.Astart[0] = 0
	return l
}

func TestAssessRejectsBadBounds(t *testing.T) {
	l := New(1, 0)
	l.ColLower[0] = 5
	l.ColUpper[0] = 1
	if err := l.Assess(DefaultAssessOptions()); err == nil {
		t.Fatal("expected error for lower > upper")
	}
}

func TestAssessCapsInfiniteBounds(t *testing.T) {
	l := trivialLP()
	l.ColUpper[0] = 1e30
	if err := l.Assess(DefaultAssessOptions()); err != nil {
		t.Fatal(err)
	}
	if l.ColUpper[0] != DefaultInfiniteBound {
		t.Fatalf("upper bound not capped: %v", l.ColUpper[0])
	}
}

func TestAssessDropsSmallEntries(t *testing.T) {
	l := New(1, 1)
	l.ColLower[0], l.ColUpper[0] = 0, 10
	l.RowLower[0], l.RowUpper[0] = 0, 10
	l.Astart = []int{0, 1}
	l.Aindex = []int{0}
	l.Avalue = []float64{1e-12}
	if err := l.Assess(DefaultAssessOptions()); err != nil {
		t.Fatal(err)
	}
	if l.Nnz != 0 {
		t.Fatalf("expected small entry dropped, nnz=%d", l.Nnz)
	}
}

func TestAddDeleteCols(t *testing.T) {
	l := New(2, 1)
	l.Astart = []int{0, 1, 2}
	l.Aindex = []int{0, 0}
	l.Avalue = []float64{1, 1}
	l.RowLower[0], l.RowUpper[0] = 0, 10

	if err := l.AddCols([]float64{5}, []float64{0}, []float64{1},
		[]int{0, 1}, []int{0}, []float64{2}, nil); err != nil {
		t.Fatal(err)
	}
	if l.NumCol != 3 || l.Nnz != 3 {
		t.Fatalf("after add: numCol=%d nnz=%d", l.NumCol, l.Nnz)
	}

	if err := l.DeleteCols([]bool{false, true, false}); err != nil {
		t.Fatal(err)
	}
	if l.NumCol != 2 {
		t.Fatalf("after delete: numCol=%d", l.NumCol)
	}
}

func TestTransformIntoEqualityProblem(t *testing.T) {
	l := New(1, 1)
	l.ColCost[0] = 1
	l.ColLower[0], l.ColUpper[0] = 0, 10
	l.RowLower[0], l.RowUpper[0] = 2, 2
	l.Astart = []int{0, 1}
	l.Aindex = []int{0}
	l.Avalue = []float64{1}

	eq := l.TransformIntoEqualityProblem()
	if eq.NumCol != 2 || eq.NumRow != 1 {
		t.Fatalf("eq dims: %d %d", eq.NumCol, eq.NumRow)
	}
	if eq.L[1] != 2 || eq.U[1] != 2 {
		t.Fatalf("slack bounds not fixed to row range: %v %v", eq.L[1], eq.U[1])
	}
}
