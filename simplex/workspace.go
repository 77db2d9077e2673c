// Package simplex implements the dual revised simplex engine: the
// perturbed-cost/bound workspace (C4), CHUZR via the dual RHS (C5),
// CHUZC via the dual row ratio test (C6), the three-state engine driver
// (C7), and the crash heuristic that seeds an initial basis (C8).
//
// Grounded throughout on simplex/HDual.h, simplex/HSimplex.h and
// simplex/HDualRHS.h of the original HiGHS sources: this package keeps
// their method names (chooseRow, chooseColumn, rebuild, cleanup,
// initialiseCost, initialiseBound) and state-machine shape, rebuilt in
// Go around the sparse/factor packages' HVector and HFactor types in
// place of HiGHS's own vector/LU classes.
package simplex

import (
	"math"
	"math/rand"

	"go.lp/highs/factor"
	"go.lp/highs/lp"
	"go.lp/highs/options"
	"go.lp/highs/sparse"
)

// Phase names the two simplex phases addressed by InitialiseBound.
type Phase int

const (
	Phase1 Phase = 1
	Phase2 Phase = 2
)

// Workspace owns the perturbed cost/bound copies and the live basis
// (HSimplex.h's HighsSimplexLpAndScale plus the per-iteration work
// arrays folded into one struct, since nothing else in this module
// needs them split).
type Workspace struct {
	LP    *lp.LP
	Basis *lp.Basis
	Scale *lp.Scale
	Mat   *sparse.HMatrix
	Fac   *factor.HFactor
	Opt   options.Options

	NumCol, NumRow, NumTot int

	// Work arrays, indexed over the combined [0,NumTot) space.
	WorkCost  []float64
	WorkLower []float64
	WorkUpper []float64
	WorkValue []float64 // defined only where NonbasicFlag[j] != 0
	WorkDual  []float64
	WorkRange []float64 // workUpper - workLower, Inf where unbounded

	// Per-basic-row-slot arrays, indexed over [0,NumRow).
	BaseValue []float64
	BaseLower []float64
	BaseUpper []float64
	WorkEdWt  []float64 // DSE/Devex edge weight per basic slot

	// originalLower/originalUpper hold the bounds InitialiseBound(Phase1)
	// overwrote, so Phase2 can restore them exactly. The move direction
	// is not saved alongside them: Phase1's artificial bounds can pick a
	// side that does not exist once the real bound is restored (an
	// artificial finite bound standing in for a real infinite one), so
	// Phase2 re-derives the move from the restored bounds instead.
	originalLower []float64
	originalUpper []float64

	// ColumnPermutation is consulted only as a tie-break key by CHUZR;
	// it never reorders the LP's own arrays.
	ColumnPermutation []int

	Perturbed bool

	ExtremeEquilibrationImprovement float64
	MeanEquilibrationImprovement    float64

	rng *rand.Rand
}

// NewWorkspace builds the combined-space work arrays from lpModel and
// basis, with the identity scaling and no perturbation.
func NewWorkspace(lpModel *lp.LP, basis *lp.Basis, opt options.Options) *Workspace {
	numCol, numRow := lpModel.NumCol, lpModel.NumRow
	numTot := numCol + numRow

	w := &Workspace{
		LP:    lpModel,
		Basis: basis,
		Scale: lp.NewScale(numCol, numRow),
		Mat:   sparse.NewHMatrix(numCol, numRow, lpModel.Astart, lpModel.Aindex, lpModel.Avalue),
		Fac:   factor.NewHFactor(numRow, factor.DefaultConfig()),
		Opt:   opt,

		NumCol: numCol,
		NumRow: numRow,
		NumTot: numTot,

		WorkCost:  make([]float64, numTot),
		WorkLower: make([]float64, numTot),
		WorkUpper: make([]float64, numTot),
		WorkValue: make([]float64, numTot),
		WorkDual:  make([]float64, numTot),
		WorkRange: make([]float64, numTot),

		BaseValue: make([]float64, numRow),
		BaseLower: make([]float64, numRow),
		BaseUpper: make([]float64, numRow),
		WorkEdWt:  make([]float64, numRow),

		rng: rand.New(rand.NewSource(opt.RandomSeed)),
	}

	sign := lpModel.ObjectiveSign()
	for j := 0; j < numCol; j++ {
		w.WorkCost[j] = sign * lpModel.ColCost[j]
		w.WorkLower[j] = lpModel.ColLower[j]
		w.WorkUpper[j] = lpModel.ColUpper[j]
	}
	for i := 0; i < numRow; i++ {
		j := numCol + i
		w.WorkCost[j] = 0
		w.WorkLower[j] = lpModel.RowLower[i]
		w.WorkUpper[j] = lpModel.RowUpper[i]
	}
	for j := 0; j < numTot; j++ {
		w.WorkRange[j] = w.WorkUpper[j] - w.WorkLower[j]
	}
	for i := range w.WorkEdWt {
		w.WorkEdWt[i] = 1
	}
	w.Mat.SetupRowWise(basis.NonbasicFlag)
	w.syncNonbasicValues()
	return w
}

// isInfiniteBound reports whether v is the large-magnitude sentinel the
// model uses in place of a real infinity (lp.InfiniteBound's
// convention), not Go's actual math.Inf -- every LP bound that reaches
// the workspace has already been capped at +/-opt.InfiniteBound by
// LP.Assess, so that is the test that matters here.
func (w *Workspace) isInfiniteBound(v float64) bool {
	return math.Abs(v) >= w.Opt.InfiniteBound
}

// chooseNonbasicMove picks the move direction nonbasic j should sit at
// given its current (already-installed) bound pair and reduced cost:
// a one-sided bound forces the only side that exists, a boxed variable
// sits on whichever side the reduced cost's sign calls for, and a free
// variable defaults to MoveZero.
func (w *Workspace) chooseNonbasicMove(j int) lp.NonbasicMove {
	lo, up := w.WorkLower[j], w.WorkUpper[j]
	switch {
	case lo == up:
		return lp.MoveZero
	case w.isInfiniteBound(lo) && w.isInfiniteBound(up):
		return lp.MoveZero
	case w.isInfiniteBound(lo):
		return lp.MoveDown
	case w.isInfiniteBound(up):
		return lp.MoveUp
	case w.WorkDual[j] >= 0:
		return lp.MoveUp
	default:
		return lp.MoveDown
	}
}

// syncNonbasicValues sets WorkValue[j] for every currently-nonbasic j
// from its bound and NonbasicMove, per §3's consistency contract.
func (w *Workspace) syncNonbasicValues() {
	for j := 0; j < w.NumTot; j++ {
		if w.Basis.NonbasicFlag[j] == 0 {
			continue
		}
		switch w.Basis.NonbasicMove[j] {
		case lp.MoveUp:
			w.WorkValue[j] = w.WorkLower[j]
		case lp.MoveDown:
			w.WorkValue[j] = w.WorkUpper[j]
		default:
			if !w.isInfiniteBound(w.WorkLower[j]) {
				w.WorkValue[j] = w.WorkLower[j]
			} else if !w.isInfiniteBound(w.WorkUpper[j]) {
				w.WorkValue[j] = w.WorkUpper[j]
			} else {
				w.WorkValue[j] = 0
			}
		}
	}
}

// ColumnValue returns j's current value regardless of whether it is
// basic or nonbasic: WorkValue only holds a meaningful number while j
// is nonbasic, so a basic j's value has to be read back out of
// BaseValue at whichever row slot BasicIndex says it occupies.
func (w *Workspace) ColumnValue(j int) float64 {
	if w.Basis.NonbasicFlag[j] != 0 {
		return w.WorkValue[j]
	}
	for i, k := range w.Basis.BasicIndex {
		if k == j {
			return w.BaseValue[i]
		}
	}
	return 0
}

// ScaleEquilibrate runs iterative geometric-mean row/column
// equilibration: each pass sets row scale to 1/sqrt(rowMin*rowMax) and
// column scale to 1/sqrt(colMin*colMax) of the currently-scaled matrix,
// stopping once a pass's improvement in the matrix's overall max/min
// ratio falls under 0.9 of the previous pass's improvement.
func (w *Workspace) ScaleEquilibrate() {
	lpModel := w.LP
	const maxPasses = 20
	prevRatio := matrixRatio(lpModel, w.Scale)
	firstRatio := prevRatio
	lastRatio := prevRatio
	for pass := 0; pass < maxPasses; pass++ {
		rowMin := make([]float64, w.NumRow)
		rowMax := make([]float64, w.NumRow)
		for i := range rowMin {
			rowMin[i] = math.Inf(1)
			rowMax[i] = 0
		}
		for j := 0; j < w.NumCol; j++ {
			for k := lpModel.Astart[j]; k < lpModel.Astart[j+1]; k++ {
				i := lpModel.Aindex[k]
				av := math.Abs(lpModel.Avalue[k]) * w.Scale.Col[j] * w.Scale.Row[i]
				if av == 0 {
					continue
				}
				if av < rowMin[i] {
					rowMin[i] = av
				}
				if av > rowMax[i] {
					rowMax[i] = av
				}
			}
		}
		for i := 0; i < w.NumRow; i++ {
			if rowMax[i] == 0 {
				continue
			}
			w.Scale.Row[i] /= math.Sqrt(rowMin[i] * rowMax[i])
		}

		colMin := make([]float64, w.NumCol)
		colMax := make([]float64, w.NumCol)
		for j := range colMin {
			colMin[j] = math.Inf(1)
			colMax[j] = 0
		}
		for j := 0; j < w.NumCol; j++ {
			for k := lpModel.Astart[j]; k < lpModel.Astart[j+1]; k++ {
				i := lpModel.Aindex[k]
				av := math.Abs(lpModel.Avalue[k]) * w.Scale.Col[j] * w.Scale.Row[i]
				if av == 0 {
					continue
				}
				if av < colMin[j] {
					colMin[j] = av
				}
				if av > colMax[j] {
					colMax[j] = av
				}
			}
		}
		for j := 0; j < w.NumCol; j++ {
			if colMax[j] == 0 {
				continue
			}
			w.Scale.Col[j] /= math.Sqrt(colMin[j] * colMax[j])
		}

		ratio := matrixRatio(lpModel, w.Scale)
		improvement := ratio / prevRatio
		lastRatio = ratio
		if pass > 0 && improvement > 0.9 {
			break
		}
		prevRatio = ratio
	}
	w.Scale.IsScaled = true
	w.ExtremeEquilibrationImprovement = firstRatio / lastRatio
	if w.NumCol > 0 {
		w.MeanEquilibrationImprovement = math.Pow(w.ExtremeEquilibrationImprovement, 1.0/float64(w.NumCol))
	}
	w.applyScaleToWorkArrays()
}

func matrixRatio(lpModel *lp.LP, sc *lp.Scale) float64 {
	lo, hi := math.Inf(1), 0.0
	for j := 0; j < lpModel.NumCol; j++ {
		for k := lpModel.Astart[j]; k < lpModel.Astart[j+1]; k++ {
			i := lpModel.Aindex[k]
			av := math.Abs(lpModel.Avalue[k]) * sc.Col[j] * sc.Row[i]
			if av == 0 {
				continue
			}
			if av < lo {
				lo = av
			}
			if av > hi {
				hi = av
			}
		}
	}
	if hi == 0 || math.IsInf(lo, 1) {
		return 1
	}
	return hi / lo
}

func (w *Workspace) applyScaleToWorkArrays() {
	for j := 0; j < w.NumCol; j++ {
		s := w.Scale.Col[j]
		w.WorkCost[j] *= s
		w.WorkLower[j] = w.scaleBound(w.WorkLower[j], 1/s)
		w.WorkUpper[j] = w.scaleBound(w.WorkUpper[j], 1/s)
	}
	for i := 0; i < w.NumRow; i++ {
		j := w.NumCol + i
		s := w.Scale.Row[i]
		w.WorkLower[j] = w.scaleBound(w.WorkLower[j], s)
		w.WorkUpper[j] = w.scaleBound(w.WorkUpper[j], s)
	}
	w.syncNonbasicValues()
}

// scaleBound leaves the infinite sentinel untouched -- scaling it by a
// finite factor would otherwise turn it into a merely-very-large bound
// that no longer reads as unbounded.
func (w *Workspace) scaleBound(v, mult float64) float64 {
	if w.isInfiniteBound(v) {
		return v
	}
	return v * mult
}

// Permute draws a random permutation of [0,NumTot) seeded from
// opt.RandomSeed, used only as a secondary tie-break key by CHUZR --
// it never reorders the LP's own column/row storage.
func (w *Workspace) Permute() {
	perm := w.rng.Perm(w.NumTot)
	w.ColumnPermutation = perm
}

// InitialiseCost recomputes WorkCost from the LP (after ObjectiveSign),
// optionally adding a perturbation proportional to |c_j|+1, signed so
// that it strengthens rather than weakens the nonbasic variable's
// dual-feasibility, with magnitude bounded by
// PrimalFeasibilityTolerance/100.
func (w *Workspace) InitialiseCost(perturb bool) {
	sign := w.LP.ObjectiveSign()
	for j := 0; j < w.NumCol; j++ {
		w.WorkCost[j] = sign * w.LP.ColCost[j]
	}
	for i := 0; i < w.NumRow; i++ {
		w.WorkCost[w.NumCol+i] = 0
	}
	w.Perturbed = false
	if !perturb {
		return
	}
	limit := w.Opt.PrimalFeasibilityTolerance / 1e2
	for j := 0; j < w.NumTot; j++ {
		if w.Basis.NonbasicFlag[j] == 0 {
			continue
		}
		magnitude := limit * w.rng.Float64() * (math.Abs(w.WorkCost[j]) + 1)
		dir := 1.0
		switch w.Basis.NonbasicMove[j] {
		case lp.MoveDown:
			dir = -1
		case lp.MoveZero:
			if w.WorkCost[j] < 0 {
				dir = -1
			}
		}
		w.WorkCost[j] += dir * magnitude
	}
	w.Perturbed = true
}

// InitialiseBound switches the work bounds between the artificial,
// trivially dual-feasible Phase 1 pair and the LP's real Phase 2
// bounds. Boxed nonbasic variables are fixed at [0,0] in Phase 1 (their
// real range plays no part in dual feasibility); one-sided or free
// variables keep whichever real bound matches the sign of their
// current reduced cost and have the other bound relaxed to infinity,
// so every nonbasic variable starts Phase 1 dual feasible by
// construction.
func (w *Workspace) InitialiseBound(phase Phase) {
	if phase == Phase2 {
		if w.originalLower != nil {
			copy(w.WorkLower, w.originalLower)
			copy(w.WorkUpper, w.originalUpper)
		}
		for j := 0; j < w.NumTot; j++ {
			w.WorkRange[j] = w.WorkUpper[j] - w.WorkLower[j]
			if w.Basis.NonbasicFlag[j] != 0 {
				w.Basis.NonbasicMove[j] = w.chooseNonbasicMove(j)
			}
		}
		w.syncNonbasicValues()
		return
	}

	w.originalLower = append([]float64{}, w.WorkLower...)
	w.originalUpper = append([]float64{}, w.WorkUpper...)

	inf := w.Opt.InfiniteBound
	for j := 0; j < w.NumTot; j++ {
		if w.Basis.NonbasicFlag[j] == 0 {
			continue
		}
		lo, up := w.WorkLower[j], w.WorkUpper[j]
		switch {
		case lo == up:
			// already fixed; nothing to do
		case !w.isInfiniteBound(lo) && !w.isInfiniteBound(up):
			w.WorkLower[j], w.WorkUpper[j] = 0, 0
			w.Basis.NonbasicMove[j] = lp.MoveZero
		case w.WorkDual[j] >= 0:
			if w.isInfiniteBound(lo) {
				lo = 0
			}
			w.WorkLower[j], w.WorkUpper[j] = lo, inf
			w.Basis.NonbasicMove[j] = lp.MoveUp
		default:
			if w.isInfiniteBound(up) {
				up = 0
			}
			w.WorkLower[j], w.WorkUpper[j] = -inf, up
			w.Basis.NonbasicMove[j] = lp.MoveDown
		}
	}
	for j := 0; j < w.NumTot; j++ {
		w.WorkRange[j] = w.WorkUpper[j] - w.WorkLower[j]
	}
	w.syncNonbasicValues()
}

// WorkArraysOk checks §3/§8's first invariant group: exactly NumRow
// basic slots, every nonbasic value consistent with its move and
// bounds to tolerance.
func (w *Workspace) WorkArraysOk() bool {
	if !w.Basis.CheckConsistency(w.NumCol, w.NumRow) {
		return false
	}
	tol := w.Opt.PrimalFeasibilityTolerance
	for j := 0; j < w.NumTot; j++ {
		if w.Basis.NonbasicFlag[j] == 0 {
			continue
		}
		v := w.WorkValue[j]
		switch w.Basis.NonbasicMove[j] {
		case lp.MoveUp:
			if math.Abs(v-w.WorkLower[j]) > tol {
				return false
			}
		case lp.MoveDown:
			if math.Abs(v-w.WorkUpper[j]) > tol {
				return false
			}
		case lp.MoveZero:
			if !w.isInfiniteBound(w.WorkLower[j]) && math.Abs(v-w.WorkLower[j]) > tol && v != 0 {
				return false
			}
		}
	}
	return true
}

// AllNonbasicMoveVsWorkArraysOk additionally checks that every
// nonbasic variable's move direction is actually consistent with its
// bound shape (MoveUp only valid when the lower bound is finite, etc).
func (w *Workspace) AllNonbasicMoveVsWorkArraysOk() bool {
	for j := 0; j < w.NumTot; j++ {
		if w.Basis.NonbasicFlag[j] == 0 {
			continue
		}
		switch w.Basis.NonbasicMove[j] {
		case lp.MoveUp:
			if lo := w.WorkLower[j]; lo < 0 && w.isInfiniteBound(lo) {
				return false
			}
		case lp.MoveDown:
			if up := w.WorkUpper[j]; up > 0 && w.isInfiniteBound(up) {
				return false
			}
		}
	}
	return w.WorkArraysOk()
}

// OkToSolve folds both predicates together; level>0 additionally
// requires the factorisation to be fresh, matching HSimplex.h's
// ok_to_solve(level, phase) gate before iterate() is allowed to run.
func (w *Workspace) OkToSolve(level int, phase Phase) bool {
	if !w.AllNonbasicMoveVsWorkArraysOk() {
		return false
	}
	if level > 0 && !w.Fac.IsFresh() {
		return false
	}
	return true
}
