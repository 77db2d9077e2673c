package sparse

import "testing"

// buildTestMatrix builds A = [[1,0,2],[0,1,3]] column-wise.
func buildTestMatrix() *HMatrix {
	astart := []int{0, 1, 2, 4}
	aindex := []int{0, 1, 0, 1}
	avalue := []float64{1, 1, 2, 3}
	return NewHMatrix(3, 2, astart, aindex, avalue)
}

func TestCollectAj(t *testing.T) {
	m := buildTestMatrix()
	v := NewHVector(2)
	m.CollectAj(v, 2, 1.0)
	if v.Array[0] != 2 || v.Array[1] != 3 {
		t.Fatalf("collect_aj got %v", v.Array)
	}
}

func TestPriceByColumnVsRow(t *testing.T) {
	m := buildTestMatrix()
	nonbasicFlag := []int{1, 1, 1, 0, 0} // all structural nonbasic, both logicals basic
	m.SetupRowWise(nonbasicFlag)

	rowEp := NewHVector(2)
	rowEp.Scatter(0, 1.0)
	rowEp.Scatter(1, 2.0)

	apCol := NewHVector(5)
	m.PriceByColumn(apCol, rowEp, nonbasicFlag)

	apRow := NewHVector(5)
	m.PriceByRow(apRow, rowEp, nonbasicFlag)

	for j := 0; j < 3; j++ {
		if apCol.Array[j] != apRow.Array[j] {
			t.Fatalf("col/row price mismatch at %d: %v vs %v", j, apCol.Array[j], apRow.Array[j])
		}
	}
}

func TestColumnMax(t *testing.T) {
	m := buildTestMatrix()
	if m.ColumnMax(2) != 3 {
		t.Fatalf("column max = %v, want 3", m.ColumnMax(2))
	}
}
