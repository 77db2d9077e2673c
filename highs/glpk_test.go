//go:build glpk

// This file cross-checks the engine against github.com/lukpank/go-glpk
// on the same literal LPs highs_test.go builds directly, per spec.md
// §8's optional scenario. It needs cgo plus the system GLPK library,
// so it is excluded from the default build (see DESIGN.md) and only
// compiles under `go test -tags glpk`.
package highs

import (
	"math"
	"runtime"
	"testing"

	"github.com/lukpank/go-glpk/glpk"
	"go.lp/highs/lp"
	"go.lp/highs/status"
)

// glpkSolve solves m with GLPK's own simplex and returns its objective
// and column values, for comparison against the engine's Solution.
func glpkSolve(t *testing.T, m *lp.LP) (float64, []float64) {
	t.Helper()
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	p := glpk.New()
	defer p.Delete()

	if m.Sense == lp.Maximize {
		p.SetObjDir(glpk.MAX)
	} else {
		p.SetObjDir(glpk.MIN)
	}

	p.AddRows(m.NumRow)
	for i := 0; i < m.NumRow; i++ {
		switch {
		case m.RowLower[i] == m.RowUpper[i]:
			p.SetRowBnds(i+1, glpk.FX, m.RowLower[i], m.RowUpper[i])
		case lp.InfiniteBound(m.RowLower[i], lp.DefaultInfiniteBound):
			p.SetRowBnds(i+1, glpk.UP, 0, m.RowUpper[i])
		case lp.InfiniteBound(m.RowUpper[i], lp.DefaultInfiniteBound):
			p.SetRowBnds(i+1, glpk.LO, m.RowLower[i], 0)
		default:
			p.SetRowBnds(i+1, glpk.DB, m.RowLower[i], m.RowUpper[i])
		}
	}

	p.AddCols(m.NumCol)
	for j := 0; j < m.NumCol; j++ {
		p.SetObjCoef(j+1, m.ColCost[j])
		switch {
		case m.ColLower[j] == m.ColUpper[j]:
			p.SetColBnds(j+1, glpk.FX, m.ColLower[j], m.ColUpper[j])
		case lp.InfiniteBound(m.ColLower[j], lp.DefaultInfiniteBound) && lp.InfiniteBound(m.ColUpper[j], lp.DefaultInfiniteBound):
			p.SetColBnds(j+1, glpk.FR, 0, 0)
		case lp.InfiniteBound(m.ColUpper[j], lp.DefaultInfiniteBound):
			p.SetColBnds(j+1, glpk.LO, m.ColLower[j], 0)
		case lp.InfiniteBound(m.ColLower[j], lp.DefaultInfiniteBound):
			p.SetColBnds(j+1, glpk.UP, 0, m.ColUpper[j])
		default:
			p.SetColBnds(j+1, glpk.DB, m.ColLower[j], m.ColUpper[j])
		}

		var ind []int32
		var val []float64
		for k := m.Astart[j]; k < m.Astart[j+1]; k++ {
			ind = append(ind, int32(m.Aindex[k]+1))
			val = append(val, m.Avalue[k])
		}
		p.SetMatCol(j+1, ind, val)
	}

	if err := p.Simplex(nil); err != nil {
		t.Fatalf("glpk simplex: %v", err)
	}

	cols := make([]float64, m.NumCol)
	for j := 0; j < m.NumCol; j++ {
		cols[j] = p.ColPrimal(j + 1)
	}
	return p.ObjVal() + m.Offset, cols
}

func TestEngineMatchesGLPKOnUpperBoundedBoundedLP(t *testing.T) {
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
		t.Fatalf("engine status = %v, want OPTIMAL", st)
	}
	sol, err := h.Solution()
	if err != nil {
		t.Fatal(err)
	}

	wantObj, _ := glpkSolve(t, m)
	if math.Abs(sol.ObjectiveValue-wantObj) > 1e-6 {
		t.Fatalf("objective = %v, glpk = %v", sol.ObjectiveValue, wantObj)
	}
}
