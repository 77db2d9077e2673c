// Package lp holds the problem data model (§3) and the LP utilities of
// component C11: dimension checks, add/delete rows and columns, and
// matrix normalisation.
package lp

import (
	"errors"
	"fmt"
	"math"
)

// Sense is the optimisation direction.
type Sense int

const (
	Minimize Sense = 1
	Maximize Sense = -1
)

// Integrality marks a column continuous or integer. Branch-and-bound is
// not implemented; the marker is carried through so the engine solves
// the LP relaxation and callers can see which columns were integer.
type Integrality int

const (
	Continuous Integrality = iota
	Integer
)

// Defaults mirror the option table in spec.md §6.
const (
	DefaultInfiniteBound    = 1e20
	DefaultInfiniteCost     = 1e20
	DefaultSmallMatrixValue = 1e-9
	DefaultLargeMatrixValue = 1e15
)

// LP is the compressed-column problem data model. Astart has length
// NumCol+1, is monotone non-decreasing, and Astart[NumCol] == Nnz;
// every index in Aindex lies in [0, NumRow).
type LP struct {
	NumCol int
	NumRow int
	NumInt int
	Nnz    int

	Astart []int
	Aindex []int
	Avalue []float64

	ColCost  []float64
	ColLower []float64
	ColUpper []float64
	RowLower []float64
	RowUpper []float64

	Integrality []Integrality

	Sense      Sense
	Offset     float64
	ModelName  string
	RowNames   []string
	ColNames   []string

	// Log records which of lp's edit operations have run since the last
	// solve, so a caller re-solving after a mutation can tell whether the
	// basis it is holding is still usable or needs rebuilding from
	// scratch.
	Log ActionLog
}

// New allocates an empty LP of the given dimensions with no nonzeros.
func New(numCol, numRow int) *LP {
	return &LP{
		NumCol:      numCol,
		NumRow:      numRow,
		Astart:      make([]int, numCol+1),
		ColCost:     make([]float64, numCol),
		ColLower:    make([]float64, numCol),
		ColUpper:    make([]float64, numCol),
		RowLower:    make([]float64, numRow),
		RowUpper:    make([]float64, numRow),
		Integrality: make([]Integrality, numCol),
		Sense:       Minimize,
	}
}

// Equal implements the round-trip equality check named in spec.md §8:
// dimensions, names, bounds, costs, and nonzeros must match exactly.
func (lp *LP) Equal(other *LP) bool {
	if other == nil {
		return false
	}
	if lp.NumCol != other.NumCol || lp.NumRow != other.NumRow ||
		lp.Nnz != other.Nnz || lp.Sense != other.Sense ||
		lp.Offset != other.Offset || lp.ModelName != other.ModelName {
		return false
	}
	if !equalStrings(lp.RowNames, other.RowNames) || !equalStrings(lp.ColNames, other.ColNames) {
		return false
	}
	if !equalFloats(lp.ColCost, other.ColCost) {
		return false
	}
	if !equalFloats(lp.ColLower, other.ColLower) || !equalFloats(lp.ColUpper, other.ColUpper) {
		return false
	}
	if !equalFloats(lp.RowLower, other.RowLower) || !equalFloats(lp.RowUpper, other.RowUpper) {
		return false
	}
	if !equalInts(lp.Astart, other.Astart) || !equalInts(lp.Aindex, other.Aindex) {
		return false
	}
	if !equalFloats(lp.Avalue, other.Avalue) {
		return false
	}
	return true
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalFloats(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// AssessOptions carries the tolerances used by Assess.
type AssessOptions struct {
	InfiniteBound    float64
	SmallMatrixValue float64
	LargeMatrixValue float64
	BoundTolerance   float64
}

// DefaultAssessOptions returns the spec.md §6 defaults.
func DefaultAssessOptions() AssessOptions {
	return AssessOptions{
		InfiniteBound:    DefaultInfiniteBound,
		SmallMatrixValue: DefaultSmallMatrixValue,
		LargeMatrixValue: DefaultLargeMatrixValue,
		BoundTolerance:   1e-9,
	}
}

// Assess normalises the LP in place per C11: rejects lower > upper +
// tolerance, caps infinite bounds at opt.InfiniteBound, drops matrix
// entries below opt.SmallMatrixValue, and rejects entries above
// opt.LargeMatrixValue.
func (lp *LP) Assess(opt AssessOptions) error {
	if err := lp.checkDimensions(); err != nil {
		return err
	}
	for j := 0; j < lp.NumCol; j++ {
		if lp.ColLower[j] > lp.ColUpper[j]+opt.BoundTolerance {
			return fmt.Errorf("lp: column %d has lower bound %g exceeding upper bound %g", j, lp.ColLower[j], lp.ColUpper[j])
		}
		lp.ColLower[j] = capBound(lp.ColLower[j], -opt.InfiniteBound)
		lp.ColUpper[j] = capBound(lp.ColUpper[j], opt.InfiniteBound)
	}
	for i := 0; i < lp.NumRow; i++ {
		if lp.RowLower[i] > lp.RowUpper[i]+opt.BoundTolerance {
			return fmt.Errorf("lp: row %d has lower bound %g exceeding upper bound %g", i, lp.RowLower[i], lp.RowUpper[i])
		}
		lp.RowLower[i] = capBound(lp.RowLower[i], -opt.InfiniteBound)
		lp.RowUpper[i] = capBound(lp.RowUpper[i], opt.InfiniteBound)
	}
	return lp.normaliseMatrix(opt)
}

func capBound(v, limit float64) float64 {
	if limit < 0 {
		if v < limit {
			return limit
		}
		return v
	}
	if v > limit {
		return limit
	}
	return v
}

func (lp *LP) normaliseMatrix(opt AssessOptions) error {
	newAindex := make([]int, 0, len(lp.Aindex))
	newAvalue := make([]float64, 0, len(lp.Avalue))
	newAstart := make([]int, lp.NumCol+1)
	for j := 0; j < lp.NumCol; j++ {
		for k := lp.Astart[j]; k < lp.Astart[j+1]; k++ {
			v := lp.Avalue[k]
			av := math.Abs(v)
			if av > opt.LargeMatrixValue {
				return fmt.Errorf("lp: entry (row %d, col %d) magnitude %g exceeds large_matrix_value", lp.Aindex[k], j, av)
			}
			if av < opt.SmallMatrixValue {
				continue
			}
			newAindex = append(newAindex, lp.Aindex[k])
			newAvalue = append(newAvalue, v)
		}
		newAstart[j+1] = len(newAindex)
	}
	lp.Astart = newAstart
	lp.Aindex = newAindex
	lp.Avalue = newAvalue
	lp.Nnz = len(newAvalue)
	return nil
}

func (lp *LP) checkDimensions() error {
	if len(lp.Astart) != lp.NumCol+1 {
		return errors.New("lp: Astart length must be NumCol+1")
	}
	for j := 0; j < lp.NumCol; j++ {
		if lp.Astart[j] > lp.Astart[j+1] {
			return fmt.Errorf("lp: Astart not monotone at column %d", j)
		}
	}
	if lp.Astart[lp.NumCol] != len(lp.Aindex) || len(lp.Aindex) != len(lp.Avalue) {
		return errors.New("lp: Astart[NumCol] must equal nnz, and Aindex/Avalue must agree in length")
	}
	for _, row := range lp.Aindex {
		if row < 0 || row >= lp.NumRow {
			return fmt.Errorf("lp: row index %d out of range [0,%d)", row, lp.NumRow)
		}
	}
	if len(lp.ColCost) != lp.NumCol || len(lp.ColLower) != lp.NumCol || len(lp.ColUpper) != lp.NumCol {
		return errors.New("lp: column array length mismatch")
	}
	if len(lp.RowLower) != lp.NumRow || len(lp.RowUpper) != lp.NumRow {
		return errors.New("lp: row array length mismatch")
	}
	return nil
}

// ObjectiveSign returns +1 for minimise, -1 for maximise; the engine
// negates costs internally to always minimise, per the open question in
// spec.md §9(a).
func (lp *LP) ObjectiveSign() float64 {
	if lp.Sense == Maximize {
		return -1
	}
	return 1
}
