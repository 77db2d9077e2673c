package lp

// Scale carries the per-row/per-column positive scaling factors plus a
// cost scale, applied multiplicatively to A, c, l, u. The factors are
// stored so scaling is always reversible.
type Scale struct {
	IsScaled bool
	Cost     float64
	Col      []float64
	Row      []float64

	ExtremeEquilibrationImprovement float64
	MeanEquilibrationImprovement    float64
}

// NewScale returns the identity scaling for an LP of the given size.
func NewScale(numCol, numRow int) *Scale {
	s := &Scale{
		Cost: 1,
		Col:  make([]float64, numCol),
		Row:  make([]float64, numRow),
	}
	for j := range s.Col {
		s.Col[j] = 1
	}
	for i := range s.Row {
		s.Row[i] = 1
	}
	return s
}
