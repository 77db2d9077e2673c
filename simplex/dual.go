package simplex

import (
	"math"

	"go.lp/highs/factor"
	"go.lp/highs/lp"
	"go.lp/highs/options"
	"go.lp/highs/sparse"
	"go.lp/highs/status"
)

// state is the engine's top-level position in the three-state machine
// of spec.md §4.7.
type state int

const (
	statePhase1 state = iota
	statePhase2
	stateCleanup
	stateDone
)

// Engine drives the dual revised simplex method: C4's workspace, C5's
// CHUZR, C6's CHUZC, C2's PRICE and C3's factorisation, in the
// rebuild/iterate loop of simplex/HDual.h's solve()/solvePhase1()/
// solvePhase2()/rebuild()/iterate(). Column and row vector scratch
// space lives on the Engine so a solve allocates it once.
type Engine struct {
	W    *Workspace
	RHS  *DualRHS
	Row  *DualRow
	opt  options.Options

	st state

	iterations     int
	syntheticClock int

	// pendingHint carries the invertHint that broke iterate() across to
	// the rebuild() call that follows it.
	pendingHint factor.InvertHint

	// Scratch vectors reused every iteration.
	rowEp        *sparse.HVector
	pivotColumn  *sparse.HVector
	columnBFRT   *sparse.HVector
	columnDSE    *sparse.HVector

	Status   status.Status
	ExitCode status.ExitCode

	solveBailout bool
}

// NewEngine builds an engine for lpModel using basis as the starting
// point (typically the result of Crash).
func NewEngine(lpModel *lp.LP, basis *lp.Basis, opt options.Options) *Engine {
	w := NewWorkspace(lpModel, basis, opt)
	e := &Engine{
		W:          w,
		RHS:        NewDualRHS(w),
		Row:        NewDualRow(w),
		opt:        opt,
		rowEp:       sparse.NewHVector(w.NumRow),
		pivotColumn: sparse.NewHVector(w.NumRow),
		columnBFRT:  sparse.NewHVector(w.NumRow),
		columnDSE:   sparse.NewHVector(w.NumRow),
	}
	return e
}

// syntheticClockLimit mirrors spec.md §4.7's synthetic-clock rebuild
// trigger: n_row rank-1 updates, or 100*n_row operations, whichever is
// smaller in effect (the update count is checked separately via the
// factor's own UpdateLimit; this clock instead counts iterations).
func (e *Engine) syntheticClockLimit() int {
	limit := 100 * e.W.NumRow
	if e.W.NumRow > 0 && e.W.NumRow < limit {
		limit = e.W.NumRow
	}
	if limit <= 0 {
		limit = 1000
	}
	return limit
}

// Solve runs Phase 1, Phase 2 and cleanup to completion (or until
// solveBailout / MaxIterations triggers REACHED_LIMIT).
func (e *Engine) Solve() status.Status {
	e.st = statePhase1
	e.W.InitialiseCost(e.opt.PerturbCosts)
	// InitialiseBound(Phase1) picks each one-sided/free nonbasic's
	// artificial bound to match the SIGN of its current reduced cost, so
	// workDual has to be computed for real (against the crash/logical
	// basis, with its real costs -- bounds play no part in workDual)
	// before the phase-1 bounds are installed.
	if err := e.W.Fac.Build(e.basisColumn); err != nil {
		e.Status = status.NotSet
		e.ExitCode = status.Error
		e.st = stateDone
		return e.Status
	}
	e.recomputeDual()
	e.W.InitialiseBound(Phase1)
	e.rebuild()
	for e.st != stateDone {
		switch e.st {
		case statePhase1, statePhase2:
			e.runPhase()
		case stateCleanup:
			e.cleanup()
			e.st = stateDone
		}
		if e.solveBailout {
			e.Status = status.ReachedLimit
			e.st = stateDone
		}
	}
	return e.Status
}

// runPhase executes iterations of the current phase until rebuild
// reports a terminal hint or the phase's own feasibility condition is
// reached.
func (e *Engine) runPhase() {
	phase := Phase1
	if e.st == statePhase2 {
		phase = Phase2
	}
	for {
		if e.checkBailout() {
			return
		}
		var hint factor.InvertHint
		if e.opt.SimplexStrategy == options.StrategyPAMI && e.opt.PAMIWorkers > 1 {
			hint = e.iterateMulti()
		} else {
			hint = e.iterate()
		}
		if hint == factor.NoHint {
			if e.syntheticClock > e.syntheticClockLimit() || !e.W.Fac.IsFresh() {
				if e.rebuild() {
					return
				}
			}
			continue
		}
		terminal := e.rebuild()
		if terminal {
			return
		}
		if phase == Phase1 && e.st != statePhase1 {
			return
		}
		if phase == Phase2 && e.st != statePhase2 {
			return
		}
	}
}

func (e *Engine) checkBailout() bool {
	if e.solveBailout {
		return true
	}
	if e.opt.MaxIterations > 0 && e.iterations >= e.opt.MaxIterations {
		e.solveBailout = true
		return true
	}
	return false
}

// Bailout requests the engine stop at the next safe point and report
// REACHED_LIMIT, per spec.md §5's cancellation contract.
func (e *Engine) Bailout() { e.solveBailout = true }

// Iterations reports the total major iterations Solve has run so far.
func (e *Engine) Iterations() int { return e.iterations }

// rebuild refactorises if needed, recomputes the primal and dual
// values from scratch, collects infeasibilities, and maps the
// outstanding invertHint (if any) onto the next state per spec.md
// §4.7's termination table. It returns true when the engine has
// reached a terminal state (done or moved to cleanup and finished).
func (e *Engine) rebuild() bool {
	if !e.W.Fac.IsFresh() {
		if err := e.W.Fac.Build(e.basisColumn); err != nil {
			e.Status = status.NotSet
			e.ExitCode = status.Error
			e.st = stateDone
			return true
		}
	}
	e.syntheticClock = 0
	e.recomputeDual()
	e.recomputePrimal()
	e.RHS.CreateInfeasList()

	hint := e.pendingHint
	e.pendingHint = factor.NoHint
	return e.applyTerminationMapping(hint)
}

func (e *Engine) applyTerminationMapping(hint factor.InvertHint) bool {
	switch e.st {
	case statePhase1:
		switch hint {
		case factor.PossiblyPhase1Feasible:
			e.enterPhase2()
			return false
		case factor.PossiblyDualUnbounded:
			e.Status = status.PrimalInfeasible
			e.st = stateDone
			return true
		case factor.PossiblyOptimal:
			if len(e.RHS.Infeasible) == 0 {
				e.enterPhase2()
				return false
			}
		case factor.Singular:
			e.Status = status.NotSet
			e.ExitCode = status.Error
			e.st = stateDone
			return true
		}
		if len(e.RHS.Infeasible) == 0 {
			e.enterPhase2()
			return false
		}
		return false
	case statePhase2:
		switch hint {
		case factor.PossiblyOptimal:
			if len(e.RHS.Infeasible) == 0 {
				e.Status = status.Optimal
				e.st = stateCleanup
				return false
			}
		case factor.PossiblyPrimalUnbounded:
			e.Status = status.Unbounded
			e.st = stateDone
			return true
		case factor.Singular:
			e.Status = status.NotSet
			e.ExitCode = status.Error
			e.st = stateDone
			return true
		}
		if len(e.RHS.Infeasible) == 0 {
			e.Status = status.Optimal
			e.st = stateCleanup
			return false
		}
		return false
	}
	return false
}

// enterPhase2 swaps the artificial phase-1 bounds for the real ones and
// refreshes the primal snapshot against them: InitialiseBound(Phase2)
// moves nonbasic values (and therefore every basic row's computed
// value) out from under the Infeasible list CreateInfeasList last
// built, so ChooseNormal would otherwise run CHUZR against a stale
// snapshot on its very next call.
func (e *Engine) enterPhase2() {
	e.st = statePhase2
	e.W.InitialiseBound(Phase2)
	e.recomputePrimal()
	e.RHS.CreateInfeasList()
}

// basisColumn supplies column j of the current basis matrix B, for
// HFactor.Build: column slot i holds structural/logical variable
// basicIndex[i], read from the LP's A matrix (or -e_i for a logical).
func (e *Engine) basisColumn(i int) []float64 {
	k := e.W.Basis.BasicIndex[i]
	col := make([]float64, e.W.NumRow)
	if k < e.W.NumCol {
		for p := e.W.LP.Astart[k]; p < e.W.LP.Astart[k+1]; p++ {
			col[e.W.LP.Aindex[p]] = e.W.LP.Avalue[p]
		}
	} else {
		col[k-e.W.NumCol] = -1
	}
	return col
}

func (e *Engine) recomputeDual() {
	w := e.W
	cB := make([]float64, w.NumRow)
	for i, k := range w.Basis.BasicIndex {
		cB[i] = w.WorkCost[k]
	}
	y := sparse.NewHVector(w.NumRow)
	for i, c := range cB {
		if c != 0 {
			y.Scatter(i, c)
		}
	}
	w.Fac.BTRAN(y)
	for j := 0; j < w.NumTot; j++ {
		if w.Basis.NonbasicFlag[j] == 0 {
			w.WorkDual[j] = 0
			continue
		}
		w.WorkDual[j] = w.WorkCost[j] - e.dotColumn(j, y)
	}
}

func (e *Engine) dotColumn(j int, y *sparse.HVector) float64 {
	if j < e.W.NumCol {
		sum := 0.0
		for k := e.W.LP.Astart[j]; k < e.W.LP.Astart[j+1]; k++ {
			sum += y.Array[e.W.LP.Aindex[k]] * e.W.LP.Avalue[k]
		}
		return sum
	}
	return -y.Array[j-e.W.NumCol]
}

func (e *Engine) recomputePrimal() {
	w := e.W
	rhs := sparse.NewHVector(w.NumRow)
	for j := 0; j < w.NumTot; j++ {
		if w.Basis.NonbasicFlag[j] == 0 || w.WorkValue[j] == 0 {
			continue
		}
		if j < w.NumCol {
			w.Mat.CollectAj(rhs, j, -w.WorkValue[j])
			continue
		}
		// Logical j's column in [A|-I] is -e_i, so its contribution
		// -WorkValue[j]*(-e_i) lands as +WorkValue[j] at row i.
		i := j - w.NumCol
		rhs.Scatter(i, rhs.Array[i]+w.WorkValue[j])
	}
	w.Fac.FTRAN(rhs)
	for i := 0; i < w.NumRow; i++ {
		w.BaseValue[i] = rhs.Array[i]
		w.BaseLower[i] = lp.LowerBound(w.LP, w.Basis.BasicIndex[i])
		w.BaseUpper[i] = lp.UpperBound(w.LP, w.Basis.BasicIndex[i])
	}
}

func (e *Engine) iterate() factor.InvertHint {
	e.iterations++
	e.syntheticClock++

	row, ok := e.RHS.ChooseNormal()
	if !ok {
		hint := factor.PossiblyOptimal
		e.pendingHint = hint
		return hint
	}

	// direction is the leaving row's source sign (simplex/HDual.h's
	// sourceOut): +1 when the basic variable sits below its lower bound
	// and must increase, -1 when it sits above its upper bound and must
	// decrease. Scattering rowEp with this sign instead of a bare 1
	// carries it through BTRAN and PRICE into every RowAp entry, so
	// CHUZC's candidacy test and the dual update below both see it
	// consistently.
	direction := 1.0
	if e.W.BaseValue[row] > e.W.BaseUpper[row] {
		direction = -1
	}
	e.rowEp.Clear()
	e.rowEp.Scatter(row, direction)
	e.W.Fac.BTRAN(e.rowEp)

	e.Row.Price(e.rowEp)

	remainingMove := math.Abs(e.W.RHS_distance(row))
	enteringCol, flipped, hint := e.Row.ChooseColumn(remainingMove)
	if hint != factor.NoHint {
		e.pendingHint = hint
		return hint
	}

	alpha := e.pivotColumn
	alpha.Clear()
	if enteringCol < e.W.NumCol {
		e.W.Mat.CollectAj(alpha, enteringCol, 1)
	} else {
		alpha.Scatter(enteringCol-e.W.NumCol, -1)
	}
	e.W.Fac.FTRAN(alpha)

	// Verify the pivot two ways: PRICE already gave alphaRow = rowApᵗ at
	// enteringCol (signed by direction, via rowEp above); the FTRAN above
	// gives the unsigned physical column instead, so direction brings the
	// two onto the same sign before comparing. Disagreement beyond
	// tolerance means the factorisation has drifted.
	alphaRow := e.Row.RowAp.Array[enteringCol]
	alphaColAtRow := direction * alpha.Array[row]
	if math.Abs(alphaRow-alphaColAtRow)/math.Max(1, math.Abs(alphaColAtRow)) > 1e-7 {
		e.pendingHint = factor.Trouble
		return factor.Trouble
	}

	if len(flipped) > 0 {
		e.applyBoundFlips(flipped)
	}

	if e.opt.DualEdgeWeightStrategy == options.WeightSteepestEdge {
		tau := e.columnDSE
		tau.Clear()
		tau.Scatter(row, 1)
		e.W.Fac.FTRAN(tau)
		e.RHS.UpdateWeightsDSE(row, alpha, tau)
	} else if e.opt.DualEdgeWeightStrategy == options.WeightDevex {
		e.RHS.UpdateWeightsDevex(row, alpha, 1e-9)
		if e.RHS.NeedsNewDevexFramework() {
			e.RHS.ResetDevexFramework()
		}
	}

	e.updatePivots(row, enteringCol, alpha, direction)
	updHint := e.W.Fac.Update(alpha, row)
	if updHint != factor.NoHint {
		e.pendingHint = updHint
		return updHint
	}
	return factor.NoHint
}

// RHS_distance returns how far BaseValue[row] is from the nearer
// violated bound -- the primal movement CHUZC's BFRT sweep is allowed
// to spend on bound flips before it must stop at the real pivot.
func (w *Workspace) RHS_distance(row int) float64 {
	v, lo, up := w.BaseValue[row], w.BaseLower[row], w.BaseUpper[row]
	if v < lo {
		return lo - v
	}
	if v > up {
		return v - up
	}
	return 0
}

func (e *Engine) applyBoundFlips(flipped []int) {
	w := e.W
	delta := e.columnBFRT
	delta.Clear()
	for _, j := range flipped {
		oldValue := w.WorkValue[j]
		if w.Basis.NonbasicMove[j] == lp.MoveUp {
			w.Basis.NonbasicMove[j] = lp.MoveDown
			w.WorkValue[j] = w.WorkUpper[j]
		} else {
			w.Basis.NonbasicMove[j] = lp.MoveUp
			w.WorkValue[j] = w.WorkLower[j]
		}
		change := w.WorkValue[j] - oldValue
		if change == 0 {
			continue
		}
		if j < w.NumCol {
			w.Mat.CollectAj(delta, j, -change)
		} else {
			i := j - w.NumCol
			delta.Scatter(i, delta.Array[i]+change)
		}
	}
	w.Fac.FTRAN(delta)
	for i := 0; i < w.NumRow; i++ {
		w.BaseValue[i] += delta.Array[i]
	}
}

// updatePivots performs the basis change itself: the leaving variable
// (previously basic at row) becomes nonbasic at whichever bound its
// final primal value landed on, the entering column takes its place,
// and every basic value shifts by the entering variable's step times
// the pivotal column.
func (e *Engine) updatePivots(row, enteringCol int, alpha *sparse.HVector, direction float64) {
	w := e.W
	leaving := w.Basis.BasicIndex[row]
	alphaP := alpha.Array[row]

	// thetaDual drives workDual[enteringCol] to zero and, via the loop
	// below, shifts every other nonbasic dual to match; it must use the
	// direction-signed RowAp entry (not the unsigned physical alphaP
	// used for thetaPrimal below) or the leaving variable's new reduced
	// cost comes out with the wrong sign for its new bound.
	thetaDual := w.WorkDual[enteringCol] / e.Row.RowAp.Array[enteringCol]

	leavingToLower := w.BaseValue[row] < w.BaseLower[row]
	var leavingValue float64
	if leavingToLower {
		leavingValue = w.BaseLower[row]
	} else {
		leavingValue = w.BaseUpper[row]
	}
	thetaPrimal := (w.BaseValue[row] - leavingValue) / alphaP

	for i := 0; i < w.NumRow; i++ {
		if i == row {
			continue
		}
		w.BaseValue[i] -= thetaPrimal * alpha.Array[i]
	}

	// updateDual: every nonbasic dual value (including, for now, the
	// entering column itself) shifts by thetaDual times its priced row
	// entry; at enteringCol this drives workDual to ~0, consistent with
	// it becoming basic immediately below.
	for j := 0; j < w.NumTot; j++ {
		if w.Basis.NonbasicFlag[j] == 0 {
			continue
		}
		w.WorkDual[j] -= thetaDual * e.Row.RowAp.Array[j]
	}

	w.Basis.NonbasicFlag[leaving] = 1
	if leavingToLower {
		w.Basis.NonbasicMove[leaving] = lp.MoveUp
		w.WorkValue[leaving] = w.WorkLower[leaving]
	} else {
		w.Basis.NonbasicMove[leaving] = lp.MoveDown
		w.WorkValue[leaving] = w.WorkUpper[leaving]
	}
	// Every other nonbasic dual above picked up direction through the
	// signed RowAp entry PRICE computed for it; RowAp never priced the
	// leaving column since it was still basic at the time, but its
	// entry would have been exactly direction (rowEp dotted with the
	// basis's own r-th column is 1, unsigned), so the update needs that
	// factor applied explicitly here instead.
	w.WorkDual[leaving] = -thetaDual * direction
	w.Basis.NonbasicFlag[enteringCol] = 0
	w.Basis.BasicIndex[row] = enteringCol
	w.Mat.SetupRowWise(w.Basis.NonbasicFlag)
	w.BaseValue[row] = w.WorkValue[enteringCol] + thetaPrimal
	w.BaseLower[row] = lp.LowerBound(w.LP, enteringCol)
	w.BaseUpper[row] = lp.UpperBound(w.LP, enteringCol)

	for i := 0; i < w.NumRow; i++ {
		e.RHS.UpdateInfeasibility(i)
	}
}

// cleanup removes the cost perturbation (if active) and then brings
// the basis to full dual feasibility. PossiblyOptimal only certifies
// primal feasibility; InitialiseBound(Phase2) can force a one-sided
// nonbasic onto the sole bound its real constraint allows even when
// the current reduced cost disagrees, and a pivot that displaces a
// boxed variable can leave it on the wrong side of its own bound pair
// too. Neither is a pivoting mistake -- it is resolved by flipping the
// variable to its other bound directly, which is cheaper than a pivot
// and, for a boxed variable, always available. A flip can reintroduce
// primal infeasibility elsewhere, so this alternates flipping with the
// ordinary CHUZR/CHUZC loop until neither remains.
func (e *Engine) cleanup() {
	if e.W.Perturbed {
		e.W.InitialiseCost(false)
		e.recomputeDual()
	}
	for i := 0; i < 10*(e.W.NumRow+1); i++ {
		if e.checkBailout() {
			return
		}
		if e.flipDualInfeasibilities() {
			// applyBoundFlips already propagated the primal delta into
			// BaseValue; only the infeasibility list needs a rescan.
			e.RHS.CreateInfeasList()
		}
		if len(e.RHS.Infeasible) == 0 {
			// Any dual infeasibility still standing belongs to a one-sided
			// nonbasic with no other bound to flip to: it can move in a
			// direction that keeps lowering the objective forever without
			// violating any row, which is exactly primal unboundedness --
			// never surfaced via CHUZC's PossiblyDualUnbounded hint here
			// because no row ever needed a pivot in the first place.
			if e.hasUnboundedDualInfeasibility() {
				e.Status = status.Unbounded
			}
			return
		}
		hint := e.iterate()
		if hint != factor.NoHint {
			if e.rebuild() {
				return
			}
		}
	}
}

// flipDualInfeasibilities swaps every boxed nonbasic currently sitting
// on a bound its reduced cost no longer supports over to its other
// bound, propagating the resulting primal delta through applyBoundFlips.
// It reports whether it changed anything.
func (e *Engine) flipDualInfeasibilities() bool {
	w := e.W
	tol := e.opt.DualFeasibilityTolerance
	var toFlip []int
	for j := 0; j < w.NumTot; j++ {
		if w.Basis.NonbasicFlag[j] == 0 {
			continue
		}
		if w.isInfiniteBound(w.WorkLower[j]) || w.isInfiniteBound(w.WorkUpper[j]) {
			continue
		}
		move, dual := w.Basis.NonbasicMove[j], w.WorkDual[j]
		if (move == lp.MoveUp && dual < -tol) || (move == lp.MoveDown && dual > tol) {
			toFlip = append(toFlip, j)
		}
	}
	if len(toFlip) == 0 {
		return false
	}
	e.applyBoundFlips(toFlip)
	return true
}

// hasUnboundedDualInfeasibility reports whether any one-sided nonbasic
// (exactly one of its bounds finite, so flipDualInfeasibilities could
// never have swapped it) still disagrees with its reduced cost's sign.
func (e *Engine) hasUnboundedDualInfeasibility() bool {
	w := e.W
	tol := e.opt.DualFeasibilityTolerance
	for j := 0; j < w.NumTot; j++ {
		if w.Basis.NonbasicFlag[j] == 0 {
			continue
		}
		lowerInf := w.isInfiniteBound(w.WorkLower[j])
		upperInf := w.isInfiniteBound(w.WorkUpper[j])
		if lowerInf == upperInf {
			continue // boxed (handled above) or free
		}
		move, dual := w.Basis.NonbasicMove[j], w.WorkDual[j]
		if (move == lp.MoveUp && dual < -tol) || (move == lp.MoveDown && dual > tol) {
			return true
		}
	}
	return false
}
