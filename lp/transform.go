package lp

import "math"

// EqualityLP is the {min cᵀx : Ax = b, ℓ ≤ x ≤ u} form consumed by the
// feasibility subsolver (C9), which refuses inequality or maximisation
// input and expects the caller to transform first.
type EqualityLP struct {
	NumCol int
	NumRow int

	Astart []int
	Aindex []int
	Avalue []float64

	C []float64
	B []float64
	L []float64
	U []float64
}

// TransformIntoEqualityProblem introduces one slack column -e_i per row,
// so row i reads Ax - s_i = 0 with s_i in [rowLower_i, rowUpper_i], and
// returns the equality-form LP; the original LP is left untouched.
func (lp *LP) TransformIntoEqualityProblem() *EqualityLP {
	eq := &EqualityLP{
		NumCol: lp.NumCol + lp.NumRow,
		NumRow: lp.NumRow,
		B:      make([]float64, lp.NumRow),
	}
	eq.Astart = make([]int, eq.NumCol+1)
	copy(eq.Astart, lp.Astart)
	eq.Aindex = append([]int{}, lp.Aindex...)
	eq.Avalue = append([]float64{}, lp.Avalue...)

	sign := lp.ObjectiveSign()
	eq.C = make([]float64, eq.NumCol)
	eq.L = make([]float64, eq.NumCol)
	eq.U = make([]float64, eq.NumCol)
	for j := 0; j < lp.NumCol; j++ {
		eq.C[j] = sign * lp.ColCost[j]
		eq.L[j] = lp.ColLower[j]
		eq.U[j] = lp.ColUpper[j]
	}

	// One slack column per row: structural column NumCol+i is -e_i, so
	// Ax - s_i = 0 with s_i in [rowLower_i, rowUpper_i].
	base := eq.Astart[lp.NumCol]
	for i := 0; i < lp.NumRow; i++ {
		col := lp.NumCol + i
		eq.Astart[col] = base + i
		eq.Aindex = append(eq.Aindex, i)
		eq.Avalue = append(eq.Avalue, -1)
		eq.L[col] = lp.RowLower[i]
		eq.U[col] = lp.RowUpper[i]
	}
	eq.Astart[eq.NumCol] = base + lp.NumRow
	return eq
}

// DualizeEqualityProblem emits the explicit LP dual of an equality LP,
// for use by the feasibility subsolver's warm start. The dual of
//
//	min cᵀx  s.t. Ax = b, ℓ ≤ x ≤ u
//
// is taken over free multipliers y with a piecewise-linear objective in
// the bounds; here we return the dual's defining data (Aᵀ, b, c) rather
// than a second EqualityLP, since the dual of a boxed primal is not
// itself a plain equality LP. Callers needing a true reformulation
// should consult FindFeasibility's use in the original engine, which
// only ever needs Aᵀ, b and c, not a solvable dual problem object.
type DualOfEquality struct {
	// ATstart/ATindex/ATvalue is Aᵀ in compressed-column form (NumRow
	// columns, NumCol rows).
	ATstart []int
	ATindex []int
	ATvalue []float64
	B       []float64
	C       []float64
}

func (eq *EqualityLP) DualizeEqualityProblem() *DualOfEquality {
	rowCounts := make([]int, eq.NumRow)
	for j := 0; j < eq.NumCol; j++ {
		for k := eq.Astart[j]; k < eq.Astart[j+1]; k++ {
			rowCounts[eq.Aindex[k]]++
		}
	}
	atStart := make([]int, eq.NumRow+1)
	for i := 0; i < eq.NumRow; i++ {
		atStart[i+1] = atStart[i] + rowCounts[i]
	}
	atIndex := make([]int, atStart[eq.NumRow])
	atValue := make([]float64, atStart[eq.NumRow])
	fill := append([]int{}, atStart[:eq.NumRow]...)
	for j := 0; j < eq.NumCol; j++ {
		for k := eq.Astart[j]; k < eq.Astart[j+1]; k++ {
			row := eq.Aindex[k]
			pos := fill[row]
			atIndex[pos] = j
			atValue[pos] = eq.Avalue[k]
			fill[row]++
		}
	}
	return &DualOfEquality{
		ATstart: atStart,
		ATindex: atIndex,
		ATvalue: atValue,
		B:       append([]float64{}, eq.B...),
		C:       append([]float64{}, eq.C...),
	}
}

// InfiniteBound reports whether v should be treated as +/-infinity.
func InfiniteBound(v, infiniteBound float64) bool {
	return math.Abs(v) >= infiniteBound
}
