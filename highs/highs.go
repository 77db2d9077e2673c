// Package highs is the model-builder façade (C14): it owns an lp.LP,
// drives C11's Assess, C8's Crash, and C7's Engine, and reports the
// solution. This is the "external collaborator" spec.md §1 defers to
// an outside caller; it is implemented here as an ordinary package
// because cmd/highs needs something to call, grounded on the
// teacher's top-level main.go driving model/simplex together.
package highs

import (
	"fmt"
	"io"

	"go.lp/highs/lp"
	"go.lp/highs/logging"
	"go.lp/highs/options"
	"go.lp/highs/simplex"
	"go.lp/highs/status"
)

// Highs owns one LP and the engine that solves it.
type Highs struct {
	Options options.Options
	Logger  *logging.Logger

	lpModel *lp.LP
	engine  *simplex.Engine
	status  status.Status
}

// New returns a façade with default options and the standard-out
// logger, matching options.Default()/logging.Default().
func New() *Highs {
	return &Highs{Options: options.Default(), Logger: logging.Default()}
}

// PassModel installs m as the LP to solve, after running C11's Assess
// to normalise bounds and the matrix in place.
func (h *Highs) PassModel(m *lp.LP) error {
	assessOpt := lp.AssessOptions{
		InfiniteBound:    h.Options.InfiniteBound,
		SmallMatrixValue: h.Options.SmallMatrixValue,
		LargeMatrixValue: h.Options.LargeMatrixValue,
		BoundTolerance:   1e-9,
	}
	if err := m.Assess(assessOpt); err != nil {
		return fmt.Errorf("highs: %w", err)
	}
	h.lpModel = m
	h.engine = nil
	h.lpModel.Log.Clear()
	return nil
}

// Run drives the engine to completion, returning the algorithmic Status
// spec.md §3 names. The first Run after PassModel always seeds a fresh
// crash basis. A later Run against the same lpModel consults the
// model's action log (appended to by lp.LP's edit methods) to decide
// whether the previous basis is still a valid starting point: an edit
// that only touched costs or bounds (NewCosts/NewBounds) leaves
// BasicIndex/NonbasicFlag's size and meaning unchanged, so that basis is
// reused instead of re-crashed; anything that changed the LP's
// dimensions (new/deleted rows or columns, or an explicit basis/scale
// reset) forces a fresh crash because the previous basis no longer
// indexes the right space.
func (h *Highs) Run() (status.Status, error) {
	if h.lpModel == nil {
		return status.NotSet, fmt.Errorf("highs: no model passed")
	}
	basis := h.nextBasis()
	h.engine = simplex.NewEngine(h.lpModel, basis, h.Options)
	h.lpModel.Log.Clear()
	h.status = h.engine.Solve()
	h.Logger.Print(logging.LevelDetailed, "highs: solve finished with status %s after %d iterations", h.status, h.engine.Iterations())
	return h.status, nil
}

// nextBasis picks the starting basis for the next Run: the prior
// engine's final basis when the action log shows only dimension-
// preserving edits since that run, a fresh crash otherwise.
func (h *Highs) nextBasis() *lp.Basis {
	if h.engine == nil {
		return simplex.Crash(h.lpModel)
	}
	entries := h.lpModel.Log.Entries()
	if len(entries) == 0 {
		return h.engine.W.Basis
	}
	for _, a := range entries {
		switch a {
		case lp.NewCosts, lp.NewBounds:
			continue
		default:
			return simplex.Crash(h.lpModel)
		}
	}
	h.Logger.Print(logging.LevelDetailed, "highs: reusing prior basis, action log held only cost/bound edits")
	return h.engine.W.Basis
}

// Solution is the reported primal/dual point: Col* length NumCol,
// Row* length NumRow (the logical variables' values and duals).
type Solution struct {
	Status        status.Status
	ObjectiveValue float64
	ColValue      []float64
	ColDual       []float64
	RowValue      []float64
	RowDual       []float64
}

// Solution reads the engine's final workspace back into the caller's
// LP-indexed arrays, using Workspace.ColumnValue so a still-basic
// variable's value is read from BaseValue rather than the stale
// WorkValue slot spec.md §3 documents as nonbasic-only.
func (h *Highs) Solution() (*Solution, error) {
	if h.engine == nil {
		return nil, fmt.Errorf("highs: Run has not completed")
	}
	w := h.engine.W
	sol := &Solution{
		Status:   h.status,
		ColValue: make([]float64, w.NumCol),
		ColDual:  make([]float64, w.NumCol),
		RowValue: make([]float64, w.NumRow),
		RowDual:  make([]float64, w.NumRow),
	}
	// The engine minimises sign*cost internally (Workspace.InitialiseCost),
	// but ColumnValue reports the physical variable value either way, so
	// the reported objective uses the LP's own cost vector directly, with
	// no sign correction, plus its offset.
	// WorkDual lives in the engine's internal sign*cost space; recovering
	// a reduced cost consistent with the LP's own cost vector takes the
	// same sign flip back, same as the objective's cost vector above.
	sign := h.lpModel.ObjectiveSign()
	obj := h.lpModel.Offset
	for j := 0; j < w.NumCol; j++ {
		v := w.ColumnValue(j)
		sol.ColValue[j] = v
		sol.ColDual[j] = sign * w.WorkDual[j]
		obj += h.lpModel.ColCost[j] * v
	}
	for i := 0; i < w.NumRow; i++ {
		logical := w.NumCol + i
		sol.RowValue[i] = w.ColumnValue(logical)
		sol.RowDual[i] = sign * w.WorkDual[logical]
	}
	sol.ObjectiveValue = obj
	return sol, nil
}

// WriteSolution prints the status, objective and column values Solution
// reports to w, one line per column, falling back to a "C<j>" name for
// any column PassModel's LP left unnamed. This is the plain-text report
// cmd/highs prints to stdout, pulled into the façade so any caller
// gets it without re-deriving the column-name fallback itself.
func (h *Highs) WriteSolution(w io.Writer) error {
	sol, err := h.Solution()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Status: %s\n", sol.Status)
	fmt.Fprintf(w, "Objective: %g\n", sol.ObjectiveValue)
	for j, v := range sol.ColValue {
		name := fmt.Sprintf("C%d", j)
		if h.lpModel != nil && j < len(h.lpModel.ColNames) && h.lpModel.ColNames[j] != "" {
			name = h.lpModel.ColNames[j]
		}
		fmt.Fprintf(w, "  %s = %g\n", name, v)
	}
	return nil
}

// Iterations reports the total major iterations the last Run spent,
// for CLI/diagnostic reporting.
func (h *Highs) Iterations() int {
	if h.engine == nil {
		return 0
	}
	return h.engine.Iterations()
}
