// Package feasibility implements the augmented-Lagrangian coordinate-
// descent subsolver of spec.md §4.9 (C9): a cheap warm-start primal
// point for equality LPs, used ahead of C7 rather than in place of it.
// Grounded on original_source/src/presolve/FindFeasibility.cpp's
// outer/inner schedule and per-coordinate quadratic minimisation; the
// initial dual estimate warmStartLambda builds from
// lp.DualizeEqualityProblem has no counterpart there (that file starts
// lambda at the zero vector) and is this package's own addition.
package feasibility

import (
	"errors"
	"fmt"

	"go.lp/highs/lp"
	"gonum.org/v1/gonum/floats"
)

// ErrNotImplemented is returned for any input the subsolver was never
// designed to handle: inequality rows or a maximisation sense. The
// caller is expected to transform/dualise first, per spec.md §4.9.
var ErrNotImplemented = errors.New("feasibility: subsolver handles only equality, minimisation input")

// Result is the subsolver's outcome.
type Result struct {
	X          []float64 // length m.NumCol, the structural variables only
	Residual   float64   // ‖b-Ax‖₂ at exit
	Iterations int       // inner sweeps actually run
}

// Solve runs the outer/inner coordinate-descent loop against m,
// starting from x0 (copied, not mutated; the zero vector if x0 is
// nil). m must already be an equality LP in minimisation sense --
// RowLower[i]==RowUpper[i] for every row -- or Solve returns
// ErrNotImplemented, matching the component's documented refusal to
// transform on the caller's behalf.
func Solve(m *lp.LP, x0 []float64) (*Result, error) {
	if m.Sense != lp.Minimize {
		return nil, fmt.Errorf("feasibility: %w", ErrNotImplemented)
	}
	for i := 0; i < m.NumRow; i++ {
		if m.RowLower[i] != m.RowUpper[i] {
			return nil, fmt.Errorf("feasibility: row %d is not an equality: %w", i, ErrNotImplemented)
		}
	}

	// TransformIntoEqualityProblem's slack column for row i is fixed at
	// rowLower_i==rowUpper_i (an equality row per the check above), so
	// Ax - s = 0 with that slack already encodes Ax = rowLower exactly;
	// eq.B stays the zero vector TransformIntoEqualityProblem built.
	eq := m.TransformIntoEqualityProblem()

	x := make([]float64, eq.NumCol)
	if x0 != nil {
		copy(x, x0)
	}
	for j := 0; j < eq.NumCol; j++ {
		x[j] = clip(x[j], eq.L[j], eq.U[j])
	}

	colNormSq := make([]float64, eq.NumCol)
	for j := 0; j < eq.NumCol; j++ {
		sum := 0.0
		for k := eq.Astart[j]; k < eq.Astart[j+1]; k++ {
			sum += eq.Avalue[k] * eq.Avalue[k]
		}
		colNormSq[j] = sum
	}

	r := residual(eq, x)
	lambda := warmStartLambda(eq)
	mu := 1.0

	iterations := 0
outer:
	for k := 0; k < 30; k++ {
		for sweep := 0; sweep < 100; sweep++ {
			iterations++
			sweepCoordinates(eq, x, r, lambda, mu, colNormSq)
			if floats.Norm(r, 2) < 1e-8 {
				break outer
			}
		}
		if k%3 == 2 {
			mu *= 0.1
		} else {
			floats.ScaleTo(lambda, mu, r)
		}
	}

	return &Result{X: x[:m.NumCol], Residual: floats.Norm(r, 2), Iterations: iterations}, nil
}

// sweepCoordinates runs one coordinate-descent pass over every column
// of the augmented-Lagrangian objective
//
//	cᵀx + λᵀ(b-Ax) + (1/μ)‖b-Ax‖²    s.t.  ℓ ≤ x ≤ u
//
// Each coordinate's objective slice is an exact 1-D quadratic (the
// column's own squared norm scaled by 2/μ is constant in x_j), so the
// unconstrained minimiser is a single Newton step from the current
// gradient; clipping into [ℓ_j,u_j] afterward gives the constrained
// minimiser directly, no line search needed. r is maintained
// incrementally rather than recomputed from scratch each coordinate.
func sweepCoordinates(eq *lp.EqualityLP, x, r, lambda []float64, mu float64, colNormSq []float64) {
	for j := 0; j < eq.NumCol; j++ {
		if colNormSq[j] == 0 {
			continue
		}
		atLambda, atR := 0.0, 0.0
		for p := eq.Astart[j]; p < eq.Astart[j+1]; p++ {
			i := eq.Aindex[p]
			atLambda += eq.Avalue[p] * lambda[i]
			atR += eq.Avalue[p] * r[i]
		}
		g := eq.C[j] - atLambda - (2/mu)*atR
		h := (2 / mu) * colNormSq[j]
		newXj := clip(x[j]-g/h, eq.L[j], eq.U[j])
		delta := newXj - x[j]
		if delta == 0 {
			continue
		}
		for p := eq.Astart[j]; p < eq.Astart[j+1]; p++ {
			r[eq.Aindex[p]] -= eq.Avalue[p] * delta
		}
		x[j] = newXj
	}
}

// warmStartLambda picks a nonzero starting dual estimate, a per-row
// Jacobi approximation to the normal-equations solve of Aᵀλ≈c: each
// row's λ is c's projection onto that row's own Aᵀ entries, scaled by
// the row's squared norm. lp.DualizeEqualityProblem's row-major Aᵀ is
// the natural form for this row-at-a-time computation -- eq's own
// Astart/Aindex/Avalue is column-major and would need a transpose
// first to get the same access pattern.
func warmStartLambda(eq *lp.EqualityLP) []float64 {
	dual := eq.DualizeEqualityProblem()
	lambda := make([]float64, len(dual.B))
	for i := range lambda {
		atC, normSq := 0.0, 0.0
		for k := dual.ATstart[i]; k < dual.ATstart[i+1]; k++ {
			v := dual.ATvalue[k]
			atC += v * dual.C[dual.ATindex[k]]
			normSq += v * v
		}
		if normSq > 0 {
			lambda[i] = atC / normSq
		}
	}
	return lambda
}

func residual(eq *lp.EqualityLP, x []float64) []float64 {
	r := append([]float64{}, eq.B...)
	for j := 0; j < eq.NumCol; j++ {
		if x[j] == 0 {
			continue
		}
		for p := eq.Astart[j]; p < eq.Astart[j+1]; p++ {
			r[eq.Aindex[p]] -= eq.Avalue[p] * x[j]
		}
	}
	return r
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
