package simplex

import (
	"testing"

	"go.lp/highs/lp"
	"go.lp/highs/options"
	"go.lp/highs/sparse"
)

// rowsLP is dimension-only scaffolding: DualRHS only reads
// w.BaseValue/BaseLower/BaseUpper/WorkEdWt, which this test sets
// directly rather than driving a real solve.
func rowsLP(numRow int) (*lp.LP, *lp.Basis) {
	m := lp.New(0, numRow)
	basis := &lp.Basis{
		BasicIndex:   make([]int, numRow),
		NonbasicFlag: make([]int, numRow),
	}
	for i := 0; i < numRow; i++ {
		basis.BasicIndex[i] = i
	}
	return m, basis
}

func TestChooseNormalPicksLargestWeightedInfeasibility(t *testing.T) {
	m, basis := rowsLP(3)
	opt := options.Default()
	w := NewWorkspace(m, basis, opt)
	r := NewDualRHS(w)

	// Row 0: violation 1 beyond its upper bound, weight 1 -> ratio 1.
	// Row 1: violation 3 beyond its upper bound, weight 4 -> ratio 2.25.
	// Row 2: feasible.
	w.BaseLower[0], w.BaseUpper[0], w.BaseValue[0] = 0, 5, 6
	w.WorkEdWt[0] = 1
	w.BaseLower[1], w.BaseUpper[1], w.BaseValue[1] = 0, 5, 8
	w.WorkEdWt[1] = 4
	w.BaseLower[2], w.BaseUpper[2], w.BaseValue[2] = 0, 5, 2

	r.CreateInfeasList()
	if len(r.Infeasible) != 2 {
		t.Fatalf("expected 2 infeasible rows, got %d: %v", len(r.Infeasible), r.Infeasible)
	}

	row, ok := r.ChooseNormal()
	if !ok {
		t.Fatal("expected a candidate row")
	}
	if row != 1 {
		t.Fatalf("expected row 1 (higher ratio), got row %d", row)
	}
}

func TestChooseNormalReturnsFalseWhenFeasible(t *testing.T) {
	m, basis := rowsLP(2)
	opt := options.Default()
	w := NewWorkspace(m, basis, opt)
	r := NewDualRHS(w)

	w.BaseLower[0], w.BaseUpper[0], w.BaseValue[0] = 0, 5, 2
	w.BaseLower[1], w.BaseUpper[1], w.BaseValue[1] = 0, 5, 3

	r.CreateInfeasList()
	if _, ok := r.ChooseNormal(); ok {
		t.Fatal("expected no candidate when every row is feasible")
	}
}

func TestUpdateInfeasibilityAddsAndRemovesRow(t *testing.T) {
	m, basis := rowsLP(1)
	opt := options.Default()
	w := NewWorkspace(m, basis, opt)
	r := NewDualRHS(w)

	w.BaseLower[0], w.BaseUpper[0], w.BaseValue[0] = 0, 5, 2
	r.CreateInfeasList()
	if len(r.Infeasible) != 0 {
		t.Fatalf("expected feasible start, got %v", r.Infeasible)
	}

	w.BaseValue[0] = 9
	r.UpdateInfeasibility(0)
	if len(r.Infeasible) != 1 || r.Infeasible[0] != 0 {
		t.Fatalf("expected row 0 to become infeasible, got %v", r.Infeasible)
	}

	w.BaseValue[0] = 2
	r.UpdateInfeasibility(0)
	if len(r.Infeasible) != 0 {
		t.Fatalf("expected row 0 to clear back to feasible, got %v", r.Infeasible)
	}
}

func TestUpdateWeightsDSEFloorsAtOnePlusRatioSquared(t *testing.T) {
	m, basis := rowsLP(2)
	opt := options.Default()
	w := NewWorkspace(m, basis, opt)
	r := NewDualRHS(w)
	w.WorkEdWt[0] = 1
	w.WorkEdWt[1] = 1

	alpha := sparse.NewHVector(2)
	alpha.Scatter(0, 2)
	alpha.Scatter(1, 1)
	tau := sparse.NewHVector(2)

	r.UpdateWeightsDSE(0, alpha, tau)
	// gammaP=1, alphaP=2 -> weight at the pivot row becomes 1/4.
	if got, want := w.WorkEdWt[0], 0.25; got != want {
		t.Fatalf("pivot row weight = %v, want %v", got, want)
	}
	// Row 1: ratio = alpha[1]/alphaP = 0.5, tau[1]=0, floor = 1+0.25=1.25.
	if got, want := w.WorkEdWt[1], 1.25; got != want {
		t.Fatalf("row 1 weight = %v, want %v (the 1+ratio^2 floor)", got, want)
	}
}

func TestNeedsNewDevexFrameworkTracksItsOwnIterationCount(t *testing.T) {
	m, basis := rowsLP(2)
	opt := options.Default()
	opt.DevexReferenceSetIterationFloor = 2
	w := NewWorkspace(m, basis, opt)
	r := NewDualRHS(w)
	w.WorkEdWt[0] = 1
	w.WorkEdWt[1] = 1

	alpha := sparse.NewHVector(2)
	alpha.Scatter(0, 1)

	for i := 0; i < 2; i++ {
		r.UpdateWeightsDevex(0, alpha, 1e-9)
		if r.NeedsNewDevexFramework() {
			t.Fatalf("framework reset requested too early at iteration %d", i+1)
		}
	}
	r.UpdateWeightsDevex(0, alpha, 1e-9)
	if !r.NeedsNewDevexFramework() {
		t.Fatal("expected reset to be requested once the iteration floor is crossed")
	}

	r.ResetDevexFramework()
	if r.NeedsNewDevexFramework() {
		t.Fatal("expected ResetDevexFramework to clear the tracked iteration count")
	}
	if w.WorkEdWt[0] != 1 || w.WorkEdWt[1] != 1 {
		t.Fatalf("expected weights reset to 1, got %v", w.WorkEdWt)
	}
}

