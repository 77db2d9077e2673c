package simplex

import "go.lp/highs/lp"

// Crash builds an initial basis by greedy selection over structural
// columns, grounded on the bias described in spec.md §4.8: columns
// that are singletons, or that have exactly two nonzeros with one row
// still free, make numerically well-conditioned early pivots because
// their basis column is close to a unit vector. Any row nothing claims
// keeps its logical, which is always a safe fallback basis.
func Crash(lpModel *lp.LP) *lp.Basis {
	numCol, numRow := lpModel.NumCol, lpModel.NumRow
	basis := lp.NewLogicalBasis(lpModel)

	colNNZ := make([]int, numCol)
	for j := 0; j < numCol; j++ {
		colNNZ[j] = lpModel.Astart[j+1] - lpModel.Astart[j]
	}

	rowAssigned := make([]bool, numRow)
	colUsed := make([]bool, numCol)

	assign := func(row, col int) {
		logical := numCol + row
		basis.NonbasicFlag[logical] = 1
		basis.NonbasicMove[logical] = initialMoveForLogical(lpModel, row)
		basis.NonbasicFlag[col] = 0
		basis.BasicIndex[row] = col
		rowAssigned[row] = true
		colUsed[col] = true
	}

	// Pass 1: singleton structural columns claim their one row outright.
	for j := 0; j < numCol; j++ {
		if colNNZ[j] != 1 || colUsed[j] {
			continue
		}
		row := lpModel.Aindex[lpModel.Astart[j]]
		if rowAssigned[row] {
			continue
		}
		assign(row, j)
	}

	// Pass 2: columns with exactly two nonzeros, where exactly one of
	// the two candidate rows remains free, claim that row.
	for j := 0; j < numCol; j++ {
		if colNNZ[j] != 2 || colUsed[j] {
			continue
		}
		r0 := lpModel.Aindex[lpModel.Astart[j]]
		r1 := lpModel.Aindex[lpModel.Astart[j]+1]
		free0, free1 := !rowAssigned[r0], !rowAssigned[r1]
		switch {
		case free0 && !free1:
			assign(r0, j)
		case free1 && !free0:
			assign(r1, j)
		}
	}

	return basis
}

// initialMoveForLogical returns the bound the row's logical sits at
// once it has been displaced to nonbasic by Crash -- the lower bound when
// finite, else the upper bound when finite, else MoveZero (also MoveZero
// for a fixed row), matching NewLogicalBasis's rule for structural
// variables.
func initialMoveForLogical(lpModel *lp.LP, row int) lp.NonbasicMove {
	lower, upper := lpModel.RowLower[row], lpModel.RowUpper[row]
	switch {
	case lower == upper:
		return lp.MoveZero
	case !lp.InfiniteBound(lower, lp.DefaultInfiniteBound):
		return lp.MoveUp
	case !lp.InfiniteBound(upper, lp.DefaultInfiniteBound):
		return lp.MoveDown
	default:
		return lp.MoveZero
	}
}
