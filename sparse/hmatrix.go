package sparse

import "math"

// ColPriceSwitchDensity is the accumulated row_ap density above which
// priceByRow abandons the row-wise partition and finishes the
// computation with a column-wise pass (cheaper once most columns have
// been touched).
const ColPriceSwitchDensity = 0.75

// HMatrix holds the constraint matrix A twice: once as the caller's
// column-wise compressed form (Astart/Aindex/Avalue), and once
// row-wise over the nonbasic structural columns only, which is rebuilt
// whenever the basis changes (see SetupRowWise).
type HMatrix struct {
	NumCol int
	NumRow int

	Astart []int
	Aindex []int
	Avalue []float64

	// Row-wise partition, valid after SetupRowWise. ARstart/ARindex/
	// ARvalue list nonbasic structural columns' entries by row; basic
	// columns have no entries in it.
	ARstart []int
	ARindex []int
	ARvalue []float64
}

// NewHMatrix wraps a caller-owned compressed-column matrix. The slices
// are not copied; the caller must not mutate them while the HMatrix is
// in use by a solve.
func NewHMatrix(numCol, numRow int, astart, aindex []int, avalue []float64) *HMatrix {
	return &HMatrix{
		NumCol: numCol,
		NumRow: numRow,
		Astart: astart,
		Aindex: aindex,
		Avalue: avalue,
	}
}

// CollectAj scales column j of A by alpha and adds the result into dst.
func (m *HMatrix) CollectAj(dst *HVector, j int, alpha float64) {
	if alpha == 0 {
		return
	}
	for k := m.Astart[j]; k < m.Astart[j+1]; k++ {
		row := m.Aindex[k]
		dst.Scatter(row, dst.Array[row]+alpha*m.Avalue[k])
	}
}

// SetupRowWise rebuilds the row-wise partition from the current
// nonbasicFlag (1 for nonbasic, 0 for basic), scanning only structural
// columns 0..NumCol-1 (logicals have a trivial, implicit row-wise form
// since column j=NumCol+i is -e_i and never needs a row
// partition entry).
func (m *HMatrix) SetupRowWise(nonbasicFlag []int) {
	counts := make([]int, m.NumRow)
	for j := 0; j < m.NumCol; j++ {
		if nonbasicFlag[j] == 0 {
			continue
		}
		for k := m.Astart[j]; k < m.Astart[j+1]; k++ {
			counts[m.Aindex[k]]++
		}
	}
	m.ARstart = make([]int, m.NumRow+1)
	for i := 0; i < m.NumRow; i++ {
		m.ARstart[i+1] = m.ARstart[i] + counts[i]
	}
	nnz := m.ARstart[m.NumRow]
	m.ARindex = make([]int, nnz)
	m.ARvalue = make([]float64, nnz)

	fill := append([]int{}, m.ARstart[:m.NumRow]...)
	for j := 0; j < m.NumCol; j++ {
		if nonbasicFlag[j] == 0 {
			continue
		}
		for k := m.Astart[j]; k < m.Astart[j+1]; k++ {
			row := m.Aindex[k]
			pos := fill[row]
			m.ARindex[pos] = j
			m.ARvalue[pos] = m.Avalue[k]
			fill[row]++
		}
	}
}

// PriceByColumn computes rowAp <- rowEpᵀ · A over the nonbasic
// structural columns, by iterating column-by-column. O(nnz of the
// nonbasic part). logicalBase is NumCol, the offset at which logical
// columns begin in the combined index space; rowAp is indexed over the
// full 0..NumCol+NumRow-1 space, with logical entries taken directly
// from rowEp since column NumCol+i of [A|-I] is -e_i.
func (m *HMatrix) PriceByColumn(rowAp *HVector, rowEp *HVector, nonbasicFlag []int) {
	rowAp.Clear()
	for j := 0; j < m.NumCol; j++ {
		if nonbasicFlag[j] == 0 {
			continue
		}
		sum := 0.0
		for k := m.Astart[j]; k < m.Astart[j+1]; k++ {
			sum += rowEp.Array[m.Aindex[k]] * m.Avalue[k]
		}
		if sum != 0 {
			rowAp.Scatter(j, sum)
		}
	}
	for i := 0; i < m.NumRow; i++ {
		j := m.NumCol + i
		if nonbasicFlag[j] == 0 {
			continue
		}
		v := -rowEp.Array[i]
		if v != 0 {
			rowAp.Scatter(j, v)
		}
	}
}

// PriceByRow computes the same result as PriceByColumn but iterates the
// row-wise partition driven by rowEp's nonzeros; cheaper when rowEp is
// sparse. It switches to a column-wise finish once the accumulated
// density of rowAp exceeds ColPriceSwitchDensity, matching HMatrix's
// documented hybrid strategy.
func (m *HMatrix) PriceByRow(rowAp *HVector, rowEp *HVector, nonbasicFlag []int) {
	rowAp.Clear()
	touched := map[int]bool{}
	if !rowEp.IndexValid {
		m.PriceByColumn(rowAp, rowEp, nonbasicFlag)
		return
	}
	for idx := 0; idx < rowEp.Count; idx++ {
		row := rowEp.Index[idx]
		pi := rowEp.Array[row]
		if pi == 0 {
			continue
		}
		for k := m.ARstart[row]; k < m.ARstart[row+1]; k++ {
			col := m.ARindex[k]
			rowAp.Scatter(col, rowAp.Array[col]+pi*m.ARvalue[k])
			touched[col] = true
		}
		if rowAp.Density() > ColPriceSwitchDensity {
			m.finishPriceByColumn(rowAp, rowEp, nonbasicFlag, touched)
			return
		}
	}
	for i := 0; i < m.NumRow; i++ {
		j := m.NumCol + i
		if nonbasicFlag[j] == 0 {
			continue
		}
		v := -rowEp.Array[i]
		if v != 0 {
			rowAp.Scatter(j, v)
		}
	}
}

// finishPriceByColumn recomputes the untouched nonbasic structural
// columns directly from A once PriceByRow has crossed the density
// switch point; already-touched columns are left as accumulated.
func (m *HMatrix) finishPriceByColumn(rowAp *HVector, rowEp *HVector, nonbasicFlag []int, touched map[int]bool) {
	for j := 0; j < m.NumCol; j++ {
		if nonbasicFlag[j] == 0 || touched[j] {
			continue
		}
		sum := 0.0
		for k := m.Astart[j]; k < m.Astart[j+1]; k++ {
			sum += rowEp.Array[m.Aindex[k]] * m.Avalue[k]
		}
		if sum != 0 {
			rowAp.Scatter(j, sum)
		}
	}
	for i := 0; i < m.NumRow; i++ {
		j := m.NumCol + i
		if nonbasicFlag[j] == 0 {
			continue
		}
		v := -rowEp.Array[i]
		if v != 0 {
			rowAp.Scatter(j, v)
		}
	}
}

// PriceByRowSparseResult ("ultra") behaves as PriceByRow but guarantees
// the result is returned still in indexed form even when the density
// switch would otherwise have triggered a dense finish; used by CHUZC
// candidate generation, which only ever wants the sparse pattern.
func (m *HMatrix) PriceByRowSparseResult(rowAp *HVector, rowEp *HVector, nonbasicFlag []int) {
	rowAp.Clear()
	if !rowEp.IndexValid {
		m.PriceByColumn(rowAp, rowEp, nonbasicFlag)
		rowAp.Pack()
		rowAp.Unpack()
		rowAp.rebuildIndexFromDenseScan()
		return
	}
	for idx := 0; idx < rowEp.Count; idx++ {
		row := rowEp.Index[idx]
		pi := rowEp.Array[row]
		if pi == 0 {
			continue
		}
		for k := m.ARstart[row]; k < m.ARstart[row+1]; k++ {
			col := m.ARindex[k]
			rowAp.Scatter(col, rowAp.Array[col]+pi*m.ARvalue[k])
		}
	}
	for i := 0; i < m.NumRow; i++ {
		j := m.NumCol + i
		if nonbasicFlag[j] == 0 {
			continue
		}
		v := -rowEp.Array[i]
		if v != 0 {
			rowAp.Scatter(j, v)
		}
	}
	rowAp.rebuildIndexFromDenseScan()
}

// ColumnMax returns the maximum absolute value in column j.
func (m *HMatrix) ColumnMax(j int) float64 {
	best := 0.0
	for k := m.Astart[j]; k < m.Astart[j+1]; k++ {
		if a := math.Abs(m.Avalue[k]); a > best {
			best = a
		}
	}
	return best
}
