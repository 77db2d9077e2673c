package simplex

import (
	"math"
	"sync"

	"go.lp/highs/factor"
	"go.lp/highs/options"
	"go.lp/highs/sparse"
)

// multiCandidate is one row from the PAMI candidate set, priced with
// its own private BTRAN/PRICE scratch so it can run concurrently with
// every other candidate's pricing; only the winner ever reaches a
// basis change.
type multiCandidate struct {
	row         int
	direction   float64
	dualRow     *DualRow
	enteringCol int
	flipped     []int
	hint        factor.InvertHint
}

// iterateMulti is the PAMI counterpart of iterate: CHUZR picks a set of
// candidate rows instead of one, BTRAN+PRICE+CHUZC run for every
// candidate concurrently across a worker pool bounded by
// opt.PAMIWorkers, and exactly one candidate's basis change is applied
// afterward -- the candidate ChooseNormal's own ranking would have
// picked, not whichever goroutine happened to finish first. Grounded on
// spec.md §5's "bounded worker pool... serialised major_update".
func (e *Engine) iterateMulti() factor.InvertHint {
	e.iterations++
	e.syntheticClock++

	rows := e.RHS.ChooseMultiHGauto(e.RHS.ChLimit(), e.pamiPartitions())
	if len(rows) == 0 {
		hint := factor.PossiblyOptimal
		e.pendingHint = hint
		return hint
	}

	candidates := make([]*multiCandidate, len(rows))
	workers := e.opt.PAMIWorkers
	if workers <= 0 || workers > 32 {
		workers = 32
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for k, row := range rows {
		wg.Add(1)
		sem <- struct{}{}
		go func(k, row int) {
			defer wg.Done()
			defer func() { <-sem }()
			defer func() {
				if recover() != nil {
					candidates[k] = &multiCandidate{row: row, hint: factor.Trouble}
				}
			}()
			candidates[k] = e.priceCandidate(row)
		}(k, row)
	}
	wg.Wait()

	best := e.pickBestCandidate(candidates)
	if best == nil {
		hint := factor.PossiblyOptimal
		e.pendingHint = hint
		return hint
	}
	if best.hint != factor.NoHint {
		e.pendingHint = best.hint
		return best.hint
	}
	return e.applyMultiCandidate(best)
}

// priceCandidate runs BTRAN, PRICE and CHUZC for row against a private
// rowEp/DualRow pair. It reads e.W's factorisation and matrix, both
// left untouched until applyMultiCandidate runs, so it is safe to call
// from multiple goroutines at once.
func (e *Engine) priceCandidate(row int) *multiCandidate {
	w := e.W
	direction := 1.0
	if w.BaseValue[row] > w.BaseUpper[row] {
		direction = -1
	}
	rowEp := sparse.NewHVector(w.NumRow)
	rowEp.Scatter(row, direction)
	w.Fac.BTRAN(rowEp)

	dualRow := NewDualRow(w)
	dualRow.Price(rowEp)

	remaining := math.Abs(w.RHS_distance(row))
	enteringCol, flipped, hint := dualRow.ChooseColumn(remaining)

	return &multiCandidate{
		row:         row,
		direction:   direction,
		dualRow:     dualRow,
		enteringCol: enteringCol,
		flipped:     flipped,
		hint:        hint,
	}
}

// pickBestCandidate ranks the candidates that priced cleanly by
// CHUZR's own infeasibility/weight ratio, the same rule ChooseNormal
// uses for the single-row path.
func (e *Engine) pickBestCandidate(candidates []*multiCandidate) *multiCandidate {
	var best *multiCandidate
	bestRatio := -1.0
	for _, c := range candidates {
		if c == nil || c.hint != factor.NoHint {
			continue
		}
		wt := e.W.WorkEdWt[c.row]
		if wt <= 0 {
			wt = 1
		}
		ratio := e.RHS.WorkArray[c.row] / wt
		if best == nil || ratio > bestRatio {
			best, bestRatio = c, ratio
		}
	}
	if best != nil {
		return best
	}
	// Every candidate hit a hint (possibly from a recovered panic): hand
	// the first one back so the caller's normal hint handling still runs.
	for _, c := range candidates {
		if c != nil {
			return c
		}
	}
	return nil
}

// applyMultiCandidate performs the single serialised basis change for
// the winning candidate, replaying iterate's own pivot/verify/update
// sequence against that candidate's privately priced DualRow.
func (e *Engine) applyMultiCandidate(c *multiCandidate) factor.InvertHint {
	w := e.W
	alpha := e.pivotColumn
	alpha.Clear()
	if c.enteringCol < w.NumCol {
		w.Mat.CollectAj(alpha, c.enteringCol, 1)
	} else {
		alpha.Scatter(c.enteringCol-w.NumCol, -1)
	}
	w.Fac.FTRAN(alpha)

	alphaRow := c.dualRow.RowAp.Array[c.enteringCol]
	alphaColAtRow := c.direction * alpha.Array[c.row]
	if math.Abs(alphaRow-alphaColAtRow)/math.Max(1, math.Abs(alphaColAtRow)) > 1e-7 {
		e.pendingHint = factor.Trouble
		return factor.Trouble
	}

	if len(c.flipped) > 0 {
		e.applyBoundFlips(c.flipped)
	}

	if e.opt.DualEdgeWeightStrategy == options.WeightSteepestEdge {
		tau := e.columnDSE
		tau.Clear()
		tau.Scatter(c.row, 1)
		w.Fac.FTRAN(tau)
		e.RHS.UpdateWeightsDSE(c.row, alpha, tau)
	} else if e.opt.DualEdgeWeightStrategy == options.WeightDevex {
		e.RHS.UpdateWeightsDevex(c.row, alpha, 1e-9)
		if e.RHS.NeedsNewDevexFramework() {
			e.RHS.ResetDevexFramework()
		}
	}

	e.updatePivots(c.row, c.enteringCol, alpha, c.direction)
	updHint := w.Fac.Update(alpha, c.row)
	if updHint != factor.NoHint {
		e.pendingHint = updHint
		return updHint
	}
	return factor.NoHint
}

// pamiPartitions splits the row space into opt.PAMIWorkers contiguous
// slices for ChooseMultiHGauto's partitioned fallback; ChooseMultiGlobal
// runs instead whenever the infeasible set is small enough not to need
// partitioning, per ChooseMultiHGauto's own threshold.
func (e *Engine) pamiPartitions() [][2]int {
	n := e.W.NumRow
	workers := e.opt.PAMIWorkers
	if n == 0 || workers <= 1 {
		return nil
	}
	chunk := (n + workers - 1) / workers
	var parts [][2]int
	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		parts = append(parts, [2]int{lo, hi})
	}
	return parts
}
