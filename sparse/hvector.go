// Package sparse provides the dense/indexed hybrid vector and the
// compressed-column matrix used throughout the simplex engine.
package sparse

import "math"

// DenseScanThreshold is the density above which HVector operations fall
// back to a dense scan instead of trusting the index list.
const DenseScanThreshold = 0.1

// HVector is a length-Size vector held as a dense array plus an index
// list of its nonzeros. When IndexValid is true, every entry of Array
// outside Index[0:Count] is exactly 0.0; callers that push density above
// DenseScanThreshold should clear IndexValid and rebuild the index with
// Pack before relying on it again.
type HVector struct {
	Size       int
	Count      int
	Index      []int
	Array      []float64
	IndexValid bool

	// PackCount/PackIndex/PackValue are set by Pack for callers that want
	// a standalone compressed copy independent of the live Array/Index.
	PackCount int
	PackIndex []int
	PackValue []float64
}

// NewHVector allocates a zeroed vector of the given size.
func NewHVector(size int) *HVector {
	return &HVector{
		Size:       size,
		Array:      make([]float64, size),
		Index:      make([]int, size),
		IndexValid: true,
	}
}

// Clear zeros the vector and resets the index list.
func (v *HVector) Clear() {
	if v.IndexValid {
		for i := 0; i < v.Count; i++ {
			v.Array[v.Index[i]] = 0
		}
	} else {
		for i := range v.Array {
			v.Array[i] = 0
		}
	}
	v.Count = 0
	v.IndexValid = true
	v.PackCount = 0
}

// Density returns Count/Size, the fraction of nonzeros in the live index.
func (v *HVector) Density() float64 {
	if v.Size == 0 {
		return 0
	}
	return float64(v.Count) / float64(v.Size)
}

// Scatter sets entry i to value and appends i to the index list if it
// was not already present. Used to expand a compressed column into the
// vector's dense array. Switches IndexValid off once density crosses
// DenseScanThreshold, since maintaining the index becomes more expensive
// than a linear rescan; after that Count still tracks the number of
// nonzeros but Index is no longer appended to.
func (v *HVector) Scatter(i int, value float64) {
	if v.Array[i] == 0 && value != 0 {
		if v.IndexValid {
			v.Index[v.Count] = i
		}
		v.Count++
	} else if v.Array[i] != 0 && value == 0 && !v.IndexValid {
		v.Count--
	}
	v.Array[i] = value
	if v.IndexValid && v.Density() > DenseScanThreshold {
		v.IndexValid = false
	}
}

func (v *HVector) rebuildIndexFromDenseScan() {
	count := 0
	for i, a := range v.Array {
		if a != 0 {
			v.Index[count] = i
			count++
		}
	}
	v.Count = count
	v.IndexValid = true
}

// Gather copies the vector's nonzero entries (dense-scanning if the
// index is not valid) into dst, returning the number of nonzeros copied.
func (v *HVector) Gather(dstIndex []int, dstValue []float64) int {
	if v.IndexValid {
		n := copy(dstIndex, v.Index[:v.Count])
		for i := 0; i < n; i++ {
			dstValue[i] = v.Array[dstIndex[i]]
		}
		return n
	}
	count := 0
	for i, a := range v.Array {
		if a != 0 {
			dstIndex[count] = i
			dstValue[count] = a
			count++
		}
	}
	return count
}

// Pack compresses the current contents into PackIndex/PackValue, useful
// when a caller wants a snapshot independent of further mutation of v.
func (v *HVector) Pack() {
	v.PackIndex = make([]int, 0, v.Count)
	v.PackValue = make([]float64, 0, v.Count)
	if v.IndexValid {
		for i := 0; i < v.Count; i++ {
			idx := v.Index[i]
			v.PackIndex = append(v.PackIndex, idx)
			v.PackValue = append(v.PackValue, v.Array[idx])
		}
		v.PackCount = v.Count
		return
	}
	for i, a := range v.Array {
		if a != 0 {
			v.PackIndex = append(v.PackIndex, i)
			v.PackValue = append(v.PackValue, a)
		}
	}
	v.PackCount = len(v.PackIndex)
}

// Unpack restores the vector's Array/Index from a prior Pack snapshot.
func (v *HVector) Unpack() {
	n := v.PackCount
	v.Clear()
	v.PackCount = n
	for i := 0; i < n; i++ {
		v.Scatter(v.PackIndex[i], v.PackValue[i])
	}
}

// Axpy adds alpha*other into v (v += alpha*other), merging index lists
// when both are still valid and falling back to a dense pass otherwise.
func (v *HVector) Axpy(alpha float64, other *HVector) {
	if alpha == 0 {
		return
	}
	if other.IndexValid {
		for i := 0; i < other.Count; i++ {
			idx := other.Index[i]
			v.Scatter(idx, v.Array[idx]+alpha*other.Array[idx])
		}
		return
	}
	v.IndexValid = false
	for i, a := range other.Array {
		if a != 0 {
			v.Array[i] += alpha * a
		}
	}
	v.rebuildIndexFromDenseScan()
}

// Norm2 returns the Euclidean norm of the vector's nonzero entries.
func (v *HVector) Norm2() float64 {
	sum := 0.0
	if v.IndexValid {
		for i := 0; i < v.Count; i++ {
			a := v.Array[v.Index[i]]
			sum += a * a
		}
	} else {
		for _, a := range v.Array {
			sum += a * a
		}
	}
	return math.Sqrt(sum)
}

// Count2 returns the number of entries whose magnitude exceeds tol,
// rescanning densely if the index is not trustworthy.
func (v *HVector) Count2(tol float64) int {
	count := 0
	if v.IndexValid {
		for i := 0; i < v.Count; i++ {
			if math.Abs(v.Array[v.Index[i]]) > tol {
				count++
			}
		}
		return count
	}
	for _, a := range v.Array {
		if math.Abs(a) > tol {
			count++
		}
	}
	return count
}
