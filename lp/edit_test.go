package lp

import "testing"

func twoColOneRowLP() *LP {
	l := New(2, 1)
	l.Astart = []int{0, 1, 2}
	l.Aindex = []int{0, 0}
	l.Avalue = []float64{1, 1}
	l.Nnz = 2
	l.RowLower[0], l.RowUpper[0] = 0, 10
	l.ColUpper[0], l.ColUpper[1] = 5, 5
	return l
}

func TestAddColsLogsNewCols(t *testing.T) {
	l := twoColOneRowLP()
	if err := l.AddCols([]float64{1}, []float64{0}, []float64{1}, []int{0, 1}, []int{0}, []float64{1}, nil); err != nil {
		t.Fatal(err)
	}
	if !l.Log.Has(NewCols) {
		t.Fatalf("expected NewCols logged, got %v", l.Log.Entries())
	}
}

func TestAddRowsLogsNewRows(t *testing.T) {
	l := twoColOneRowLP()
	if err := l.AddRows([]float64{0}, []float64{1}, []int{0, 2}, []int{0, 1}, []float64{1, 1}); err != nil {
		t.Fatal(err)
	}
	if !l.Log.Has(NewRows) {
		t.Fatalf("expected NewRows logged, got %v", l.Log.Entries())
	}
}

func TestDeleteColsLogsDelCols(t *testing.T) {
	l := twoColOneRowLP()
	if err := l.DeleteCols([]bool{true, false}); err != nil {
		t.Fatal(err)
	}
	if !l.Log.Has(DelCols) {
		t.Fatalf("expected DelCols logged, got %v", l.Log.Entries())
	}
}

func TestDeleteRowsLogsBasisOKVariant(t *testing.T) {
	l := twoColOneRowLP()
	if err := l.DeleteRows([]bool{true}, true); err != nil {
		t.Fatal(err)
	}
	if !l.Log.Has(DelRowsBasisOK) {
		t.Fatalf("expected DelRowsBasisOK logged, got %v", l.Log.Entries())
	}
	if l.Log.Has(DelRows) {
		t.Fatalf("did not expect the unqualified DelRows alongside basisOK, got %v", l.Log.Entries())
	}

	l2 := twoColOneRowLP()
	if err := l2.DeleteRows([]bool{true}, false); err != nil {
		t.Fatal(err)
	}
	if !l2.Log.Has(DelRows) {
		t.Fatalf("expected DelRows logged, got %v", l2.Log.Entries())
	}
}

func TestChangeColsCostLogsNewCosts(t *testing.T) {
	l := twoColOneRowLP()
	if err := l.ChangeColsCost([]int{1}, []float64{3}); err != nil {
		t.Fatal(err)
	}
	if l.ColCost[1] != 3 {
		t.Fatalf("cost not updated: %v", l.ColCost)
	}
	if !l.Log.Has(NewCosts) {
		t.Fatalf("expected NewCosts logged, got %v", l.Log.Entries())
	}
}

func TestChangeColsBoundsLogsNewBounds(t *testing.T) {
	l := twoColOneRowLP()
	if err := l.ChangeColsBounds([]int{0}, []float64{1}, []float64{4}); err != nil {
		t.Fatal(err)
	}
	if l.ColLower[0] != 1 || l.ColUpper[0] != 4 {
		t.Fatalf("bounds not updated: lower=%v upper=%v", l.ColLower[0], l.ColUpper[0])
	}
	if !l.Log.Has(NewBounds) {
		t.Fatalf("expected NewBounds logged, got %v", l.Log.Entries())
	}
}

func TestLogClearRemovesEntries(t *testing.T) {
	l := twoColOneRowLP()
	l.Log.Append(NewBounds)
	l.Log.Clear()
	if len(l.Log.Entries()) != 0 {
		t.Fatalf("expected cleared log, got %v", l.Log.Entries())
	}
}
