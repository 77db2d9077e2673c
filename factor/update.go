package factor

import (
	"math"

	"go.lp/highs/sparse"
)

// applyEtaForward applies the elementary eta matrix E = I + eta*e_pᵗ to
// v in place, where eta was built so that E*column = e_pivotRow. This
// is the single step: v_pivotRow gets divided through by the pivot
// (folded into eta's own pivotRow entry), every other touched entry
// gets the corresponding multiple of the old v_pivotRow subtracted.
func applyEtaForward(v []float64, e etaVector) {
	pivotVal := v[e.pivotRow]
	if pivotVal == 0 {
		return
	}
	for k, i := range e.index {
		v[i] += e.value[k] * pivotVal
	}
}

// applyEtaTranspose applies Eᵗ = I + e_pivotRow*etaᵗ to v in place: only
// entry pivotRow changes, picking up the full dot product of eta
// against the (pre-update) vector.
func applyEtaTranspose(v []float64, e etaVector) {
	dot := 0.0
	for k, i := range e.index {
		dot += e.value[k] * v[i]
	}
	v[e.pivotRow] += dot
}

// Update folds in a basis change that replaces the column at basis
// slot pivotRow with the already-FTRAN'd entering column (alpha =
// B^-1 a_q). It returns the invert hint the caller should act on:
// Trouble if the pivot is too small or the resulting growth factor
// exceeds the configured limit (the update is NOT committed in that
// case), UpdateLimit once the chain of updates since the last Build
// has reached cfg.UpdateLimit (committed, but the caller should
// schedule a rebuild), or NoHint otherwise.
func (f *HFactor) Update(column *sparse.HVector, pivotRow int) InvertHint {
	alphaP := column.Array[pivotRow]
	if math.Abs(alphaP) < f.cfg.TinyPivot {
		return Trouble
	}

	eta := etaVector{pivotRow: pivotRow}
	growth := 0.0
	add := func(r int, v float64) {
		var etaVal float64
		if r == pivotRow {
			etaVal = 1/alphaP - 1
		} else {
			etaVal = -v / alphaP
		}
		eta.index = append(eta.index, r)
		eta.value = append(eta.value, etaVal)
		if a := math.Abs(etaVal); a > growth {
			growth = a
		}
	}

	sawPivot := false
	if column.IndexValid {
		for i := 0; i < column.Count; i++ {
			r := column.Index[i]
			add(r, column.Array[r])
			if r == pivotRow {
				sawPivot = true
			}
		}
	} else {
		for r, v := range column.Array {
			if v == 0 {
				continue
			}
			add(r, v)
			if r == pivotRow {
				sawPivot = true
			}
		}
	}
	if !sawPivot {
		add(pivotRow, alphaP)
	}

	if growth > f.cfg.GrowthLimit {
		return Trouble
	}

	f.updates = append(f.updates, eta)
	f.fresh = false
	if growth > f.maxGrowth {
		f.maxGrowth = growth
	}

	if len(f.updates) >= f.cfg.UpdateLimit {
		return UpdateLimit
	}
	return NoHint
}
