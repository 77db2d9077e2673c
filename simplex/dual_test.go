package simplex

import (
	"testing"

	"go.lp/highs/lp"
	"go.lp/highs/options"
	"go.lp/highs/status"
)

// trivialOptimalLP is one column, one row: minimise x subject to
// 0<=x<=5 and x<=10 (the row is slack, never binding). x's singleton
// column makes Crash put x itself into the basis rather than the
// logical, so the basis Solve actually starts from is primal
// infeasible under the real bounds (x's crashed value of 10 violates
// its own upper bound of 5): one pivot swaps the logical in, landing x
// nonbasic at that upper bound, and cleanup's dual-feasibility sweep
// then flips it across to the true optimum at its lower bound 0.
func trivialOptimalLP() *lp.LP {
	m := lp.New(1, 1)
	m.Astart = []int{0, 1}
	m.Aindex = []int{0}
	m.Avalue = []float64{1}
	m.Nnz = 1
	m.ColCost = []float64{1}
	m.ColLower = []float64{0}
	m.ColUpper = []float64{5}
	m.RowLower = []float64{-lp.DefaultInfiniteBound}
	m.RowUpper = []float64{10}
	return m
}

func deterministicOptions() options.Options {
	opt := options.Default()
	opt.PerturbCosts = false
	return opt
}

func TestSolveRepairsInfeasibleCrashStartToOptimum(t *testing.T) {
	m := trivialOptimalLP()
	basis := Crash(m)
	opt := deterministicOptions()
	e := NewEngine(m, basis, opt)

	got := e.Solve()
	if got != status.Optimal {
		t.Fatalf("Solve() = %v, want %v", got, status.Optimal)
	}
	if e.iterations == 0 {
		t.Fatal("expected at least one pivot to clear the crashed basis's bound violation")
	}
	if v := e.W.ColumnValue(0); v != 0 {
		t.Fatalf("x should settle at its lower bound 0, got %v", v)
	}
}

// oneIterationLP is one column, one row: minimise -x (maximise x)
// subject to 0<=x<=5 and the binding row x<=3. Crash puts x's
// singleton column into the basis directly, landing it exactly on the
// row bound that was going to be optimal anyway, so Solve should
// confirm optimality without ever needing to pivot.
func oneIterationLP() *lp.LP {
	m := lp.New(1, 1)
	m.Astart = []int{0, 1}
	m.Aindex = []int{0}
	m.Avalue = []float64{1}
	m.Nnz = 1
	m.ColCost = []float64{-1}
	m.ColLower = []float64{0}
	m.ColUpper = []float64{5}
	m.RowLower = []float64{-lp.DefaultInfiniteBound}
	m.RowUpper = []float64{3}
	return m
}

func TestSolveRecognisesCrashedBasisAlreadyOnTheBindingRow(t *testing.T) {
	m := oneIterationLP()
	basis := Crash(m)
	opt := deterministicOptions()
	e := NewEngine(m, basis, opt)

	got := e.Solve()
	if got != status.Optimal {
		t.Fatalf("Solve() = %v, want %v", got, status.Optimal)
	}
	if diff := e.W.ColumnValue(0) - 3; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("x should sit on the binding row bound 3, got %v", e.W.ColumnValue(0))
	}
}
