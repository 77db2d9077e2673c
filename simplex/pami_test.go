package simplex

import (
	"testing"

	"go.lp/highs/lp"
	"go.lp/highs/options"
	"go.lp/highs/status"
)

// pamiLP is the same 3x3 assignment-style polytope as
// highs_test.go's TestDegenerateAssignment: 9 columns, 6 rows, any one
// column per row and per column, cost 1 per assignment. None of its
// columns is a singleton, so Crash leaves every row on its logical,
// landing several rows simultaneously primal-infeasible at once --
// exactly the shape iterateMulti needs more than one row to choose
// from.
func pamiLP() *lp.LP {
	m := lp.New(9, 6)
	m.ColCost = make([]float64, 9)
	m.ColLower = make([]float64, 9)
	m.ColUpper = make([]float64, 9)
	for j := 0; j < 9; j++ {
		m.ColCost[j] = 1
		m.ColUpper[j] = 1
	}
	m.RowLower = []float64{1, 1, 1, 1, 1, 1}
	m.RowUpper = []float64{1, 1, 1, 1, 1, 1}

	var aindex []int
	var avalue []float64
	astart := make([]int, 10)
	for j := 0; j < 9; j++ {
		row, col := j/3, j%3
		astart[j] = len(aindex)
		aindex = append(aindex, row, 3+col)
		avalue = append(avalue, 1, 1)
	}
	astart[9] = len(aindex)
	m.Astart, m.Aindex, m.Avalue, m.Nnz = astart, aindex, avalue, len(aindex)
	return m
}

func TestSolveUnderPAMIMatchesSingleRowStrategy(t *testing.T) {
	m := pamiLP()

	serial := deterministicOptions()
	serial.SimplexStrategy = options.StrategyDual
	eSerial := NewEngine(m, Crash(m), serial)
	stSerial := eSerial.Solve()

	parallel := deterministicOptions()
	parallel.SimplexStrategy = options.StrategyPAMI
	parallel.PAMIWorkers = 4
	eParallel := NewEngine(m, Crash(m), parallel)
	stParallel := eParallel.Solve()

	if stSerial != status.Optimal {
		t.Fatalf("serial status = %v, want OPTIMAL", stSerial)
	}
	if stParallel != status.Optimal {
		t.Fatalf("PAMI status = %v, want OPTIMAL", stParallel)
	}

	objSerial, objParallel := 0.0, 0.0
	for j := 0; j < m.NumCol; j++ {
		objSerial += m.ColCost[j] * eSerial.W.ColumnValue(j)
		objParallel += m.ColCost[j] * eParallel.W.ColumnValue(j)
	}
	if d := objSerial - objParallel; d > 1e-7 || d < -1e-7 {
		t.Fatalf("objective mismatch: serial = %v, PAMI = %v", objSerial, objParallel)
	}
}

func TestIterateMultiFallsBackToSingleRowWhenOnlyOneInfeasible(t *testing.T) {
	m := trivialOptimalLP()
	opt := deterministicOptions()
	opt.SimplexStrategy = options.StrategyPAMI
	opt.PAMIWorkers = 8
	e := NewEngine(m, Crash(m), opt)

	got := e.Solve()
	if got != status.Optimal {
		t.Fatalf("Solve() = %v, want %v", got, status.Optimal)
	}
	if v := e.W.ColumnValue(0); v != 0 {
		t.Fatalf("x should settle at its lower bound 0, got %v", v)
	}
}
