package simplex

import (
	"math"

	"go.lp/highs/factor"
	"go.lp/highs/options"
	"go.lp/highs/sortutil"
	"go.lp/highs/sparse"
)

// DualRow is CHUZC's state: the priced pivotal row and the bound-
// flipping ratio test (BFRT) that picks the entering column while
// sweeping boxed variables onto their opposite bound along the way.
// Grounded on spec.md's own description of the chuzc/BFRT-sweep split
// (no source file in the retrieval pack covers this procedure), folded
// into one type since this engine does not slice the row for SIP/PAMI
// by default.
type DualRow struct {
	w     *Workspace
	RowAp *sparse.HVector
}

// NewDualRow allocates CHUZC state sized to w's combined index space.
func NewDualRow(w *Workspace) *DualRow {
	return &DualRow{w: w, RowAp: sparse.NewHVector(w.NumTot)}
}

// Price computes RowAp = rowEpᵗ A over the nonbasic columns, using the
// strategy named in w.Opt.PriceStrategy.
func (d *DualRow) Price(rowEp *sparse.HVector) {
	switch d.w.Opt.PriceStrategy {
	case options.PriceColumn:
		d.w.Mat.PriceByColumn(d.RowAp, rowEp, d.w.Basis.NonbasicFlag)
	case options.PriceRowUltra:
		d.w.Mat.PriceByRowSparseResult(d.RowAp, rowEp, d.w.Basis.NonbasicFlag)
	default:
		d.w.Mat.PriceByRow(d.RowAp, rowEp, d.w.Basis.NonbasicFlag)
	}
}

// chuzcCandidate is one nonbasic column eligible to enter: its dual
// ratio test step and the priced row entry that produced it.
type chuzcCandidate struct {
	col  int
	step float64
	rho  float64
}

// ChooseColumn runs the BFRT procedure of spec.md §4.6 against the
// already-priced RowAp: it ranks dual-infeasible-on-entry candidates by
// ratio, uses a Harris two-pass tolerance to pick a numerically stable
// pivot among the tightest ratios, then sweeps the boxed candidates
// ahead of that pivot, flipping each to its opposite bound as long as
// the accumulated primal movement stays within remainingMove (the
// distance the leaving variable is allowed to travel before the next
// constraint binds). RowAp is assumed already signed by the leaving
// row's source direction (the caller scatters rowEp with that sign
// before pricing), so every entry here can be read at face value. It
// returns the entering column, the columns that were flipped (already
// nonbasic, not candidates for entry), and PossiblyDualUnbounded when
// no candidate exists.
func (d *DualRow) ChooseColumn(remainingMove float64) (enteringCol int, flipped []int, hint factor.InvertHint) {
	tol := d.w.Opt.DualFeasibilityTolerance
	var cands []chuzcCandidate
	for j := 0; j < d.w.NumTot; j++ {
		if d.w.Basis.NonbasicFlag[j] == 0 {
			continue
		}
		rho := d.RowAp.Array[j]
		if rho == 0 {
			continue
		}
		move := float64(d.w.Basis.NonbasicMove[j])
		if move*rho >= -tol {
			continue
		}
		step := d.w.WorkDual[j] / rho
		cands = append(cands, chuzcCandidate{j, step, rho})
	}
	if len(cands) == 0 {
		return -1, nil, factor.PossiblyDualUnbounded
	}

	// Sort candidates by step using the same 1-indexed max-heap the rest
	// of the pivoting code shares; heapStep/heapIdx carry a sentinel at
	// slot 0 and the candidates themselves at slots [1:n+1].
	n := len(cands)
	heapStep := make([]float64, n+1)
	heapIdx := make([]int, n+1)
	for i, c := range cands {
		heapStep[i+1] = c.step
		heapIdx[i+1] = i
	}
	sortutil.MaxHeapSort(heapStep, heapIdx, n)
	sorted := make([]chuzcCandidate, n)
	for i := 1; i <= n; i++ {
		sorted[i-1] = cands[heapIdx[i]]
	}
	// MaxHeapSort orders by step alone; within a run of equal steps the
	// sweep below needs ascending column order to pick a deterministic
	// pivot, so stabilise each such run in place.
	for i := 1; i < n; i++ {
		for j := i; j > 0 && sorted[j-1].step == sorted[j].step && sorted[j-1].col > sorted[j].col; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	cands = sorted

	// Harris pass 1: admit every candidate whose step falls within its
	// own stability-relaxed window of the tightest ratio.
	tau := cands[0].step
	pass1 := make([]chuzcCandidate, 0, len(cands))
	for _, c := range cands {
		if c.step <= tau+tol/math.Abs(c.rho) {
			pass1 = append(pass1, c)
		}
	}

	// Harris pass 2: among the admitted set, the largest |rho| pivots
	// most stably; ties go to the smaller column index.
	winner := pass1[0]
	for _, c := range pass1[1:] {
		if math.Abs(c.rho) > math.Abs(winner.rho) ||
			(math.Abs(c.rho) == math.Abs(winner.rho) && c.col < winner.col) {
			winner = c
		}
	}

	accumulated := 0.0
	enteringCol = winner.col
	for _, c := range cands {
		if c.col == winner.col {
			break
		}
		if d.w.isInfiniteBound(d.w.WorkLower[c.col]) || d.w.isInfiniteBound(d.w.WorkUpper[c.col]) {
			// Not boxed: cannot flip without leaving the nonbasic
			// set's bound-pair structure, so it cannot be swept.
			continue
		}
		delta := d.w.WorkRange[c.col] * math.Abs(c.rho)
		if accumulated+delta > remainingMove {
			enteringCol = c.col
			break
		}
		accumulated += delta
		flipped = append(flipped, c.col)
	}
	return enteringCol, flipped, factor.NoHint
}
