package simplex

import (
	"sort"

	"go.lp/highs/sparse"
)

// DualRHS is CHUZR's state: the per-row infeasibility proxy and the
// list of rows currently above the feasibility cutoff. Grounded on
// simplex/HDualRHS.h's workArray/workIndex pairing, adapted to Go
// slices instead of a std::vector-backed pseudo-set.
type DualRHS struct {
	w *Workspace

	WorkArray []float64 // squared primal infeasibility per basic row slot
	Infeasible []int    // row slots currently above the cutoff

	chLimit int // PAMI candidate-set cap

	devex devexTracker
}

// NewDualRHS allocates CHUZR state sized to w's row count.
func NewDualRHS(w *Workspace) *DualRHS {
	return &DualRHS{
		w:         w,
		WorkArray: make([]float64, w.NumRow),
		chLimit:   32,
	}
}

// ChLimit returns the PAMI candidate-set cap used by ChooseMultiGlobal
// and ChooseMultiHGauto's callers.
func (r *DualRHS) ChLimit() int { return r.chLimit }

func (r *DualRHS) infeasibility(i int) float64 {
	w := r.w
	v, lo, up := w.BaseValue[i], w.BaseLower[i], w.BaseUpper[i]
	tol := w.Opt.PrimalFeasibilityTolerance
	switch {
	case v < lo-tol:
		d := lo - v
		return d * d
	case v > up+tol:
		d := v - up
		return d * d
	default:
		return 0
	}
}

// CreateInfeasList rescans every basic row slot and rebuilds the
// candidate list: row i qualifies iff workArray[i] exceeds the squared
// feasibility tolerance.
func (r *DualRHS) CreateInfeasList() {
	cutoff := r.w.Opt.PrimalFeasibilityTolerance * r.w.Opt.PrimalFeasibilityTolerance
	r.Infeasible = r.Infeasible[:0]
	for i := 0; i < r.w.NumRow; i++ {
		r.WorkArray[i] = r.infeasibility(i)
		if r.WorkArray[i] > cutoff {
			r.Infeasible = append(r.Infeasible, i)
		}
	}
}

// UpdateInfeasibility recomputes the single slot i, adding or removing
// it from the candidate list as needed -- used after updatePrimal
// rather than rescanning every row.
func (r *DualRHS) UpdateInfeasibility(i int) {
	cutoff := r.w.Opt.PrimalFeasibilityTolerance * r.w.Opt.PrimalFeasibilityTolerance
	r.WorkArray[i] = r.infeasibility(i)
	pos := -1
	for k, idx := range r.Infeasible {
		if idx == i {
			pos = k
			break
		}
	}
	qualifies := r.WorkArray[i] > cutoff
	if qualifies && pos == -1 {
		r.Infeasible = append(r.Infeasible, i)
	} else if !qualifies && pos != -1 {
		r.Infeasible = append(r.Infeasible[:pos], r.Infeasible[pos+1:]...)
	}
}

// ChooseNormal is the serial CHUZR: argmax workArray[i]/workEdWt[i]
// among candidates, ties broken by larger workArray[i] then by the
// workspace's column-permutation tie-break key, then by smaller index.
func (r *DualRHS) ChooseNormal() (row int, ok bool) {
	best := -1
	bestRatio := 0.0
	bestArray := 0.0
	for _, i := range r.Infeasible {
		wt := r.w.WorkEdWt[i]
		if wt <= 0 {
			wt = 1
		}
		ratio := r.WorkArray[i] / wt
		if best == -1 || ratio > bestRatio ||
			(ratio == bestRatio && r.betterTie(i, best, bestArray)) {
			best = i
			bestRatio = ratio
			bestArray = r.WorkArray[i]
		}
	}
	if best == -1 {
		return 0, false
	}
	return best, true
}

func (r *DualRHS) betterTie(candidate, current int, currentArray float64) bool {
	if r.WorkArray[candidate] != currentArray {
		return r.WorkArray[candidate] > currentArray
	}
	if r.w.ColumnPermutation != nil {
		pc := r.w.ColumnPermutation[r.w.NumCol+candidate]
		pu := r.w.ColumnPermutation[r.w.NumCol+current]
		if pc != pu {
			return pc < pu
		}
	}
	return candidate < current
}

// ChooseMultiGlobal picks up to chLimit rows globally ranked by
// workArray[i]/workEdWt[i] -- the un-partitioned PAMI candidate set.
func (r *DualRHS) ChooseMultiGlobal(chLimit int) []int {
	type cand struct {
		row   int
		ratio float64
	}
	cands := make([]cand, 0, len(r.Infeasible))
	for _, i := range r.Infeasible {
		wt := r.w.WorkEdWt[i]
		if wt <= 0 {
			wt = 1
		}
		cands = append(cands, cand{i, r.WorkArray[i] / wt})
	}
	sort.Slice(cands, func(a, b int) bool { return cands[a].ratio > cands[b].ratio })
	if len(cands) > chLimit {
		cands = cands[:chLimit]
	}
	rows := make([]int, len(cands))
	for k, c := range cands {
		rows[k] = c.row
	}
	return rows
}

// ChooseMultiHGauto chooses between the global and partitioned
// candidate selection depending on how large the infeasible set is
// relative to chLimit: a small set is cheaper to rank globally, a
// large one benefits from working only within one partition slice.
func (r *DualRHS) ChooseMultiHGauto(chLimit int, partitions [][2]int) []int {
	if len(r.Infeasible) <= 4*chLimit || len(partitions) == 0 {
		return r.ChooseMultiGlobal(chLimit)
	}
	return r.ChooseMultiHGpart(chLimit, partitions[0])
}

// ChooseMultiHGpart restricts the candidate scan to infeasible rows
// falling within [part[0], part[1]).
func (r *DualRHS) ChooseMultiHGpart(chLimit int, part [2]int) []int {
	type cand struct {
		row   int
		ratio float64
	}
	cands := make([]cand, 0)
	for _, i := range r.Infeasible {
		if i < part[0] || i >= part[1] {
			continue
		}
		wt := r.w.WorkEdWt[i]
		if wt <= 0 {
			wt = 1
		}
		cands = append(cands, cand{i, r.WorkArray[i] / wt})
	}
	sort.Slice(cands, func(a, b int) bool { return cands[a].ratio > cands[b].ratio })
	if len(cands) > chLimit {
		cands = cands[:chLimit]
	}
	rows := make([]int, len(cands))
	for k, c := range cands {
		rows[k] = c.row
	}
	return rows
}

// UpdateWeightsDSE applies the dual steepest-edge weight update of
// spec.md §4.5 after a pivot on row p with pivotal column alpha
// (=B⁻¹a_q) and FTRAN-DSE result tau (=B⁻¹(B⁻ᵗe_p)).
func (r *DualRHS) UpdateWeightsDSE(p int, alpha, tau *sparse.HVector) {
	alphaP := alpha.Array[p]
	if alphaP == 0 {
		return
	}
	gammaP := r.w.WorkEdWt[p]
	for i := 0; i < r.w.NumRow; i++ {
		if i == p {
			continue
		}
		ai := alpha.Array[i]
		if ai == 0 {
			continue
		}
		ratio := ai / alphaP
		candidate := r.w.WorkEdWt[i] - 2*ratio*tau.Array[i] + ratio*ratio*gammaP
		floor := 1 + ratio*ratio
		if candidate < floor {
			candidate = floor
		}
		r.w.WorkEdWt[i] = candidate
	}
	r.w.WorkEdWt[p] = gammaP / (alphaP * alphaP)
}

// UpdateWeightsDevex applies the Devex weight update of spec.md §4.5.
func (r *DualRHS) UpdateWeightsDevex(p int, alpha *sparse.HVector, devexEps float64) {
	alphaP := alpha.Array[p]
	if alphaP == 0 {
		return
	}
	wp := r.w.WorkEdWt[p]
	for i := 0; i < r.w.NumRow; i++ {
		if i == p {
			continue
		}
		ai := alpha.Array[i]
		if ai == 0 || (ai < 0 && -ai <= devexEps) || (ai > 0 && ai <= devexEps) {
			continue
		}
		ratio := ai / alphaP
		candidate := ratio * ratio * wp
		if candidate > r.w.WorkEdWt[i] {
			r.w.WorkEdWt[i] = candidate
		}
	}
	floor := wp
	if floor < 1 {
		floor = 1
	}
	r.w.WorkEdWt[p] = floor / (alphaP * alphaP)

	r.devex.iterations++
	r.devex.weightRatio = wp
}

// devexTracker owns the running state NeedsNewDevexFramework checks
// against: how many pivots have used the current reference framework,
// and the pivot row's weight (before its update) from the most recent
// UpdateWeightsDevex call since the last reset.
type devexTracker struct {
	iterations  int
	weightRatio float64
}

// NeedsNewDevexFramework reports whether the running weight-inaccuracy
// ratio or the iteration-count floor named in spec.md §4.5 has been
// crossed, signalling that Devex weights should be reset to the unit
// reference framework. The iteration count and weight ratio are
// r's own bookkeeping, updated by UpdateWeightsDevex and cleared by
// ResetDevexFramework, rather than state the caller has to thread
// through itself.
func (r *DualRHS) NeedsNewDevexFramework() bool {
	if r.devex.weightRatio > r.w.Opt.MaxAllowedDevexWeightRatio {
		return true
	}
	floor := r.w.Opt.DevexReferenceSetIterationFloor
	if r.w.NumRow/100 > floor {
		floor = r.w.NumRow / 100
	}
	return r.devex.iterations > floor
}

// ResetDevexFramework sets every weight back to the unit reference and
// clears the tracker NeedsNewDevexFramework checks against.
func (r *DualRHS) ResetDevexFramework() {
	for i := range r.w.WorkEdWt {
		r.w.WorkEdWt[i] = 1
	}
	r.devex = devexTracker{}
}
