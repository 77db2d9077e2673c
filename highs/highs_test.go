package highs

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"go.lp/highs/lp"
	"go.lp/highs/status"
)

// runLP passes m through Assess/Crash/Solve and returns the façade and
// its status, failing the test on any error from PassModel/Run.
func runLP(t *testing.T, m *lp.LP) (*Highs, status.Status) {
	h := New()
	if err := h.PassModel(m); err != nil {
		t.Fatalf("PassModel: %v", err)
	}
	st, err := h.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return h, st
}

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// Scenario 1: minimise x s.t. 1<=x<=3. No rows at all: x settles
// straight onto its lower bound without ever needing a pivot.
func TestTrivialOneByOne(t *testing.T) {
	m := lp.New(1, 0)
	m.ColCost = []float64{1}
	m.ColLower = []float64{1}
	m.ColUpper = []float64{3}

	h, st := runLP(t, m)
	if st != status.Optimal {
		t.Fatalf("status = %v, want OPTIMAL", st)
	}
	sol, err := h.Solution()
	if err != nil {
		t.Fatal(err)
	}
	if !approxEqual(sol.ColValue[0], 1, 1e-9) {
		t.Fatalf("x = %v, want 1", sol.ColValue[0])
	}
	if !approxEqual(sol.ObjectiveValue, 1, 1e-9) {
		t.Fatalf("obj = %v, want 1", sol.ObjectiveValue)
	}
}

// WriteSolution reports the same status/objective/column values
// Solution does, falling back to "C<j>" for an unnamed column.
func TestWriteSolutionReportsStatusAndColumns(t *testing.T) {
	m := lp.New(1, 0)
	m.ColCost = []float64{1}
	m.ColLower = []float64{1}
	m.ColUpper = []float64{3}
	m.ColNames = []string{"widgets"}

	h, st := runLP(t, m)
	if st != status.Optimal {
		t.Fatalf("status = %v, want OPTIMAL", st)
	}

	var buf bytes.Buffer
	if err := h.WriteSolution(&buf); err != nil {
		t.Fatalf("WriteSolution: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Status: OPTIMAL") {
		t.Fatalf("output missing status line: %q", out)
	}
	if !strings.Contains(out, "widgets = 1") {
		t.Fatalf("output missing named column line: %q", out)
	}
}

// After a bound-only edit, Run must reuse the previous basis instead of
// re-crashing: nextBasis only sees NewBounds in the action log, which
// does not change BasicIndex's size or meaning.
func TestRunReusesBasisAfterBoundOnlyEdit(t *testing.T) {
	m := lp.New(1, 0)
	m.ColCost = []float64{1}
	m.ColLower = []float64{1}
	m.ColUpper = []float64{3}

	h, st := runLP(t, m)
	if st != status.Optimal {
		t.Fatalf("status = %v, want OPTIMAL", st)
	}
	priorBasis := h.engine.W.Basis

	if err := m.ChangeColsBounds([]int{0}, []float64{2}, []float64{5}); err != nil {
		t.Fatal(err)
	}
	if got := h.nextBasis(); got != priorBasis {
		t.Fatalf("expected the prior basis to be reused, got a fresh one")
	}

	st2, err := h.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if st2 != status.Optimal {
		t.Fatalf("status = %v, want OPTIMAL", st2)
	}
	sol, err := h.Solution()
	if err != nil {
		t.Fatal(err)
	}
	if !approxEqual(sol.ColValue[0], 2, 1e-9) {
		t.Fatalf("x = %v, want 2 (new lower bound)", sol.ColValue[0])
	}
	if len(m.Log.Entries()) != 0 {
		t.Fatalf("expected Run to clear the action log, got %v", m.Log.Entries())
	}
}

// AddRows changes NumRow, so the action log holding NewRows must force
// a fresh crash rather than reuse a basis sized for the old dimensions.
func TestRunReCrashesAfterStructuralEdit(t *testing.T) {
	m := lp.New(1, 0)
	m.ColCost = []float64{1}
	m.ColLower = []float64{0}
	m.ColUpper = []float64{3}

	h, _ := runLP(t, m)
	priorBasis := h.engine.W.Basis

	if err := m.AddRows([]float64{0}, []float64{2}, []int{0, 1}, []int{0}, []float64{1}); err != nil {
		t.Fatal(err)
	}
	if got := h.nextBasis(); got == priorBasis {
		t.Fatalf("expected a fresh crash basis after a structural edit, got the prior one")
	}
}

// Scenario 2: minimise -x-y s.t. x+y<=4, x<=3, y<=3, x,y>=0.
func TestUpperBoundedBoundedLP(t *testing.T) {
	m := lp.New(2, 1)
	m.Astart = []int{0, 1, 2}
	m.Aindex = []int{0, 0}
	m.Avalue = []float64{1, 1}
	m.Nnz = 2
	m.ColCost = []float64{-1, -1}
	m.ColLower = []float64{0, 0}
	m.ColUpper = []float64{3, 3}
	m.RowLower = []float64{-lp.DefaultInfiniteBound}
	m.RowUpper = []float64{4}

	h, st := runLP(t, m)
	if st != status.Optimal {
		t.Fatalf("status = %v, want OPTIMAL", st)
	}
	sol, err := h.Solution()
	if err != nil {
		t.Fatal(err)
	}
	if !approxEqual(sol.ObjectiveValue, -4, 1e-7) {
		t.Fatalf("obj = %v, want -4", sol.ObjectiveValue)
	}
	x, y := sol.ColValue[0], sol.ColValue[1]
	matches31 := approxEqual(x, 3, 1e-7) && approxEqual(y, 1, 1e-7)
	matches13 := approxEqual(x, 1, 1e-7) && approxEqual(y, 3, 1e-7)
	if !matches31 && !matches13 {
		t.Fatalf("(x,y) = (%v,%v), want (3,1) or (1,3)", x, y)
	}
}

// Scenario 3: minimise x s.t. x<=-1 and x>=1 simultaneously (two rows
// both equal to the same column, with incompatible bounds).
func TestPrimalInfeasible(t *testing.T) {
	m := lp.New(1, 2)
	m.Astart = []int{0, 2}
	m.Aindex = []int{0, 1}
	m.Avalue = []float64{1, 1}
	m.Nnz = 2
	m.ColCost = []float64{1}
	m.ColLower = []float64{-lp.DefaultInfiniteBound}
	m.ColUpper = []float64{lp.DefaultInfiniteBound}
	m.RowLower = []float64{-lp.DefaultInfiniteBound, 1}
	m.RowUpper = []float64{-1, lp.DefaultInfiniteBound}

	_, st := runLP(t, m)
	if st != status.PrimalInfeasible {
		t.Fatalf("status = %v, want PRIMAL_INFEASIBLE", st)
	}
}

// Scenario 4: minimise -x s.t. x>=0. No row ever needs a pivot, so
// unboundedness can only be caught by cleanup's post-primal-feasibility
// dual-infeasibility scan, not by a CHUZC ratio-test failure.
func TestUnbounded(t *testing.T) {
	m := lp.New(1, 0)
	m.ColCost = []float64{-1}
	m.ColLower = []float64{0}
	m.ColUpper = []float64{lp.DefaultInfiniteBound}

	_, st := runLP(t, m)
	if st != status.Unbounded {
		t.Fatalf("status = %v, want UNBOUNDED", st)
	}
}

// Scenario 5: a 3x3 assignment-style polytope with multiple optimal
// bases -- any one column in each row and column, cost 1 per
// assignment, totalling exactly 3.
func TestDegenerateAssignment(t *testing.T) {
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

	h, st := runLP(t, m)
	if st != status.Optimal {
		t.Fatalf("status = %v, want OPTIMAL", st)
	}
	sol, err := h.Solution()
	if err != nil {
		t.Fatal(err)
	}
	if !approxEqual(sol.ObjectiveValue, 3, 1e-12) {
		t.Fatalf("obj = %v, want 3", sol.ObjectiveValue)
	}
}
