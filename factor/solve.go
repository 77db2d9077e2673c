package factor

import "go.lp/highs/sparse"

// FTRAN solves B y = b in place. Order of operations: base LU
// forward/backward substitution first, then the chronological chain of
// rank-1 update etas (see HFactor's doc comment for why updates are
// applied around, not inside, the LU solve). Because L and U are
// stored as lists of their nonzero entries, every substitution step
// only visits entries that are actually present -- a hyper-sparse
// traversal falls out of the storage format itself rather than needing
// a separate code path keyed on b's density.
func (f *HFactor) FTRAN(b *sparse.HVector) {
	y := f.solveBaseFTRAN(b.Array)
	for _, e := range f.updates {
		applyEtaForward(y, e)
	}
	b.Clear()
	for i, v := range y {
		if v != 0 {
			b.Scatter(i, v)
		}
	}
}

// solveBaseFTRAN solves B y = rhs against the base LU, ignoring any
// later rank-1 updates. rhs and the returned vector are both indexed by
// the basis-slot space (0..n-1), which doubles as the LP's row space:
// basicIndex[p] is the variable occupying row/slot p.
func (f *HFactor) solveBaseFTRAN(rhs []float64) []float64 {
	n := f.n

	// Forward solve L z = rhs. z stays indexed by original row id: at
	// pivot step `step` the pivot row pr=rowPerm[step] is finalised (no
	// later step touches it), so subtracting its contribution from the
	// rows L[step] still has to eliminate reproduces exactly the
	// row operations elimination performed when building L.
	z := append([]float64{}, rhs...)
	for step := 0; step < n; step++ {
		pr := f.rowPerm[step]
		pivotVal := z[pr]
		if pivotVal == 0 {
			continue
		}
		lc := f.L[step]
		for k, r := range lc.index {
			z[r] -= lc.value[k] * pivotVal
		}
	}

	// Gather into pivot-step order for the triangular U solve.
	x := make([]float64, n)
	for step := 0; step < n; step++ {
		x[step] = z[f.rowPerm[step]]
	}

	// Backward solve U x = x, column by column from the last pivot to
	// the first: each U[step] column holds the rows already pivoted at
	// steps <= step, with the pivot value last.
	for step := n - 1; step >= 0; step-- {
		uc := f.U[step]
		diag := uc.value[len(uc.value)-1]
		x[step] /= diag
		for k := 0; k < len(uc.index)-1; k++ {
			j := f.invRowPerm[uc.index[k]]
			x[j] -= uc.value[k] * x[step]
		}
	}

	out := make([]float64, n)
	for step := 0; step < n; step++ {
		out[f.colPerm[step]] = x[step]
	}
	return out
}

// BTRAN solves Bᵗ y = b in place. The update etas are unwound
// (transposed, most-recent-first) before the base LU transpose-solve
// runs, mirroring FTRAN's reverse order.
func (f *HFactor) BTRAN(b *sparse.HVector) {
	y := append([]float64{}, b.Array...)
	for i := len(f.updates) - 1; i >= 0; i-- {
		applyEtaTranspose(y, f.updates[i])
	}
	x := f.solveBaseBTRAN(y)
	b.Clear()
	for i, v := range x {
		if v != 0 {
			b.Scatter(i, v)
		}
	}
}

// solveBaseBTRAN solves Bᵗ y = rhs against the base LU. With B = Rᵗ L U
// C (R, C the row/column pivot permutations), Bᵗ = Cᵗ Uᵗ Lᵗ R, so the
// solve runs U's transpose (lower triangular in pivot order) forward,
// then L's transpose (upper triangular in pivot order) backward.
func (f *HFactor) solveBaseBTRAN(rhs []float64) []float64 {
	n := f.n

	// c[step] = rhs[colPerm[step]]: gather rhs into pivot-column order.
	c := make([]float64, n)
	for step := 0; step < n; step++ {
		c[step] = rhs[f.colPerm[step]]
	}

	// Forward solve Uᵗ w = c, increasing pivot step: U[step]'s stored
	// rows (all with pivot position < step, plus the diagonal) are
	// exactly Uᵗ row `step`'s known coefficients.
	w := make([]float64, n)
	for step := 0; step < n; step++ {
		uc := f.U[step]
		sum := c[step]
		for k := 0; k < len(uc.index)-1; k++ {
			j := f.invRowPerm[uc.index[k]]
			sum -= uc.value[k] * w[j]
		}
		diag := uc.value[len(uc.value)-1]
		w[step] = sum / diag
	}

	// Backward solve Lᵗ v = w, decreasing pivot step: L[step] holds
	// rows with pivot position > step, which is exactly Lᵗ row `step`'s
	// dependence on already-solved higher-indexed entries.
	v := make([]float64, n)
	for step := n - 1; step >= 0; step-- {
		lc := f.L[step]
		sum := w[step]
		for k, r := range lc.index {
			j := f.invRowPerm[r]
			sum -= lc.value[k] * v[j]
		}
		v[step] = sum
	}

	out := make([]float64, n)
	for step := 0; step < n; step++ {
		out[f.rowPerm[step]] = v[step]
	}
	return out
}
