package lp

// NonbasicMove gives the bound a nonbasic variable sits on.
type NonbasicMove int8

const (
	MoveDown NonbasicMove = -1 // sits on its upper bound, can only decrease
	MoveZero NonbasicMove = 0  // fixed or free
	MoveUp   NonbasicMove = 1  // sits on its lower bound, can only increase
)

// Basis is the combined structural/logical basis of §3. Structural
// variables occupy [0,NumCol); logical variables (row slacks) occupy
// [NumCol, NumCol+NumRow). BasicIndex lists the NumRow basic indices;
// NonbasicFlag is 1 for nonbasic, 0 for basic, over the full
// NumCol+NumRow space.
type Basis struct {
	BasicIndex   []int
	NonbasicFlag []int
	NonbasicMove []NonbasicMove
}

// NewLogicalBasis returns the trivial basis with every logical variable
// basic (basicIndex[i] = numCol+i) and every structural variable
// nonbasic at its lower bound when finite, else at its upper bound when
// finite, else MoveZero (fixed variables are MoveZero too).
func NewLogicalBasis(lp *LP) *Basis {
	n := lp.NumCol + lp.NumRow
	b := &Basis{
		BasicIndex:   make([]int, lp.NumRow),
		NonbasicFlag: make([]int, n),
		NonbasicMove: make([]NonbasicMove, n),
	}
	for i := 0; i < lp.NumRow; i++ {
		b.BasicIndex[i] = lp.NumCol + i
	}
	for j := 0; j < lp.NumCol; j++ {
		b.NonbasicFlag[j] = 1
		b.NonbasicMove[j] = initialMove(lp.ColLower[j], lp.ColUpper[j])
	}
	for i := 0; i < lp.NumRow; i++ {
		b.NonbasicFlag[lp.NumCol+i] = 0
	}
	return b
}

func initialMove(lower, upper float64) NonbasicMove {
	switch {
	case lower == upper:
		return MoveZero
	case !InfiniteBound(lower, DefaultInfiniteBound):
		return MoveUp
	case !InfiniteBound(upper, DefaultInfiniteBound):
		return MoveDown
	default:
		return MoveZero
	}
}

// CheckConsistency verifies the basis invariants of spec.md §3/§8:
// exactly NumRow indices have flag 0, and each basic variable appears
// once in BasicIndex.
func (b *Basis) CheckConsistency(numCol, numRow int) bool {
	if len(b.BasicIndex) != numRow {
		return false
	}
	basicCount := 0
	seen := make(map[int]bool, numRow)
	for _, idx := range b.NonbasicFlag {
		if idx == 0 {
			basicCount++
		}
	}
	if basicCount != numRow {
		return false
	}
	for _, idx := range b.BasicIndex {
		if seen[idx] {
			return false
		}
		seen[idx] = true
		if b.NonbasicFlag[idx] != 0 {
			return false
		}
	}
	return true
}

// LowerBound/UpperBound of variable k in the combined index space, for
// the given LP. A logical takes the row's own range [rowLower, rowUpper]:
// its basis column is -e_i, so each row reads Ax - s = 0 and the logical
// s carries the row activity Ax.
func LowerBound(lpModel *LP, k int) float64 {
	if k < lpModel.NumCol {
		return lpModel.ColLower[k]
	}
	return lpModel.RowLower[k-lpModel.NumCol]
}

func UpperBound(lpModel *LP, k int) float64 {
	if k < lpModel.NumCol {
		return lpModel.ColUpper[k]
	}
	return lpModel.RowUpper[k-lpModel.NumCol]
}
