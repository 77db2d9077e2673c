package lp

import "fmt"

// AddCols appends columns described by their own compressed-column
// triple (colAstart has length len(cost)+1) to the LP, keeping Astart
// monotone.
func (lp *LP) AddCols(cost, lower, upper []float64, colAstart, colAindex []int, colAvalue []float64, integrality []Integrality) error {
	n := len(cost)
	if len(lower) != n || len(upper) != n || len(colAstart) != n+1 {
		return fmt.Errorf("lp: AddCols dimension mismatch")
	}
	base := len(lp.Aindex)
	for k := 0; k < n; k++ {
		lp.Astart = append(lp.Astart, base+colAstart[k+1])
	}
	for _, row := range colAindex {
		if row < 0 || row >= lp.NumRow {
			return fmt.Errorf("lp: AddCols row index %d out of range", row)
		}
	}
	lp.Aindex = append(lp.Aindex, colAindex...)
	lp.Avalue = append(lp.Avalue, colAvalue...)
	lp.ColCost = append(lp.ColCost, cost...)
	lp.ColLower = append(lp.ColLower, lower...)
	lp.ColUpper = append(lp.ColUpper, upper...)
	if integrality == nil {
		integrality = make([]Integrality, n)
	}
	lp.Integrality = append(lp.Integrality, integrality...)
	if lp.ColNames != nil {
		for i := 0; i < n; i++ {
			lp.ColNames = append(lp.ColNames, "")
		}
	}
	lp.NumCol += n
	lp.Nnz = len(lp.Aindex)
	lp.Log.Append(NewCols)
	return nil
}

// AddRows appends rows given row-wise (rowAstart has length len(lower)+1,
// indexing into column space) to the LP. Because the LP is stored
// column-wise, each new row entry is spliced into the corresponding
// column's run, which is O(nnz) — acceptable for the batch sizes this
// engine expects (one MPS file's RHS/RANGES/BOUNDS-derived rows at a
// time, not a hot per-iteration path).
func (lp *LP) AddRows(lower, upper []float64, rowAstart, rowAindex []int, rowAvalue []float64) error {
	m := len(lower)
	if len(upper) != m || len(rowAstart) != m+1 {
		return fmt.Errorf("lp: AddRows dimension mismatch")
	}
	// Bucket new entries by column.
	byCol := make([][]struct {
		row int
		val float64
	}, lp.NumCol)
	for r := 0; r < m; r++ {
		for k := rowAstart[r]; k < rowAstart[r+1]; k++ {
			col := rowAindex[k]
			if col < 0 || col >= lp.NumCol {
				return fmt.Errorf("lp: AddRows column index %d out of range", col)
			}
			byCol[col] = append(byCol[col], struct {
				row int
				val float64
			}{lp.NumRow + r, rowAvalue[k]})
		}
	}

	newAindex := make([]int, 0, len(lp.Aindex)+len(rowAindex))
	newAvalue := make([]float64, 0, len(lp.Avalue)+len(rowAvalue))
	newAstart := make([]int, lp.NumCol+1)
	for j := 0; j < lp.NumCol; j++ {
		for k := lp.Astart[j]; k < lp.Astart[j+1]; k++ {
			newAindex = append(newAindex, lp.Aindex[k])
			newAvalue = append(newAvalue, lp.Avalue[k])
		}
		for _, e := range byCol[j] {
			newAindex = append(newAindex, e.row)
			newAvalue = append(newAvalue, e.val)
		}
		newAstart[j+1] = len(newAindex)
	}
	lp.Astart = newAstart
	lp.Aindex = newAindex
	lp.Avalue = newAvalue
	lp.Nnz = len(newAvalue)
	lp.RowLower = append(lp.RowLower, lower...)
	lp.RowUpper = append(lp.RowUpper, upper...)
	if lp.RowNames != nil {
		for i := 0; i < m; i++ {
			lp.RowNames = append(lp.RowNames, "")
		}
	}
	lp.NumRow += m
	lp.Log.Append(NewRows)
	return nil
}

// DeleteCols removes the columns whose index is true in mask, which
// must have length lp.NumCol.
func (lp *LP) DeleteCols(mask []bool) error {
	if len(mask) != lp.NumCol {
		return fmt.Errorf("lp: DeleteCols mask length mismatch")
	}
	newCost, newLower, newUpper := []float64{}, []float64{}, []float64{}
	newIntegrality := []Integrality{}
	var newNames []string
	if lp.ColNames != nil {
		newNames = []string{}
	}
	newAindex := make([]int, 0, len(lp.Aindex))
	newAvalue := make([]float64, 0, len(lp.Avalue))
	newAstart := []int{0}
	for j := 0; j < lp.NumCol; j++ {
		if mask[j] {
			continue
		}
		newCost = append(newCost, lp.ColCost[j])
		newLower = append(newLower, lp.ColLower[j])
		newUpper = append(newUpper, lp.ColUpper[j])
		newIntegrality = append(newIntegrality, lp.Integrality[j])
		if newNames != nil {
			newNames = append(newNames, lp.ColNames[j])
		}
		for k := lp.Astart[j]; k < lp.Astart[j+1]; k++ {
			newAindex = append(newAindex, lp.Aindex[k])
			newAvalue = append(newAvalue, lp.Avalue[k])
		}
		newAstart = append(newAstart, len(newAindex))
	}
	lp.ColCost, lp.ColLower, lp.ColUpper = newCost, newLower, newUpper
	lp.Integrality = newIntegrality
	lp.ColNames = newNames
	lp.Astart, lp.Aindex, lp.Avalue = newAstart, newAindex, newAvalue
	lp.NumCol = len(newCost)
	lp.Nnz = len(newAvalue)
	lp.Log.Append(DelCols)
	return nil
}

// DeleteRows removes the rows whose index is true in mask. basisOK
// mirrors the DEL_ROWS_BASIS_OK action-log entry: when true, the caller
// promises the current basis is still valid for the reduced problem (the
// deleted rows' logicals were all basic), which is logged as
// DelRowsBasisOK instead of the unqualified DelRows so a later solve can
// skip rebuilding basicIndex from scratch.
func (lp *LP) DeleteRows(mask []bool, basisOK bool) error {
	if len(mask) != lp.NumRow {
		return fmt.Errorf("lp: DeleteRows mask length mismatch")
	}
	remap := make([]int, lp.NumRow)
	newLower, newUpper := []float64{}, []float64{}
	var newNames []string
	if lp.RowNames != nil {
		newNames = []string{}
	}
	nr := 0
	for i := 0; i < lp.NumRow; i++ {
		if mask[i] {
			remap[i] = -1
			continue
		}
		remap[i] = nr
		nr++
		newLower = append(newLower, lp.RowLower[i])
		newUpper = append(newUpper, lp.RowUpper[i])
		if newNames != nil {
			newNames = append(newNames, lp.RowNames[i])
		}
	}
	newAindex := make([]int, 0, len(lp.Aindex))
	newAvalue := make([]float64, 0, len(lp.Avalue))
	newAstart := make([]int, lp.NumCol+1)
	for j := 0; j < lp.NumCol; j++ {
		for k := lp.Astart[j]; k < lp.Astart[j+1]; k++ {
			row := lp.Aindex[k]
			if remap[row] == -1 {
				continue
			}
			newAindex = append(newAindex, remap[row])
			newAvalue = append(newAvalue, lp.Avalue[k])
		}
		newAstart[j+1] = len(newAindex)
	}
	lp.RowLower, lp.RowUpper = newLower, newUpper
	lp.RowNames = newNames
	lp.Astart, lp.Aindex, lp.Avalue = newAstart, newAindex, newAvalue
	lp.NumRow = nr
	lp.Nnz = len(newAvalue)
	if basisOK {
		lp.Log.Append(DelRowsBasisOK)
	} else {
		lp.Log.Append(DelRows)
	}
	return nil
}

// ChangeColsCost overwrites the cost of each column named in indices,
// grounded on changeLpCosts's set-by-index-list form. Logged as
// NewCosts: this leaves dimensions and the matrix untouched, so a
// workspace built against the previous costs can be re-primed in place
// rather than re-crashed.
func (lp *LP) ChangeColsCost(indices []int, cost []float64) error {
	if len(indices) != len(cost) {
		return fmt.Errorf("lp: ChangeColsCost length mismatch")
	}
	for k, j := range indices {
		if j < 0 || j >= lp.NumCol {
			return fmt.Errorf("lp: ChangeColsCost column index %d out of range", j)
		}
		lp.ColCost[j] = cost[k]
	}
	lp.Log.Append(NewCosts)
	return nil
}

// ChangeColsBounds overwrites the lower/upper bound of each column named
// in indices, grounded on changeLpColBounds's set-by-index-list form.
// Logged as NewBounds, for the same reason ChangeColsCost logs NewCosts.
func (lp *LP) ChangeColsBounds(indices []int, lower, upper []float64) error {
	if len(indices) != len(lower) || len(indices) != len(upper) {
		return fmt.Errorf("lp: ChangeColsBounds length mismatch")
	}
	for k, j := range indices {
		if j < 0 || j >= lp.NumCol {
			return fmt.Errorf("lp: ChangeColsBounds column index %d out of range", j)
		}
		lp.ColLower[j] = lower[k]
		lp.ColUpper[j] = upper[k]
	}
	lp.Log.Append(NewBounds)
	return nil
}
