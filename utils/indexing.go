package utils

type Index []int

func NewRange(rmin, rmax int) (r Index) {
	var (
		size = rmax - rmin + 1 // INCLUSIVE RANGE
	)
	r = make(Index, size)
	for i := range r {
		r[i] = i + rmin
	}
	return
}

// Gather returns v[I], one value per index
func (I Index) Gather(v []float64) (r []float64) {
	r = make([]float64, len(I))
	for i, ind := range I {
		r[i] = v[ind]
	}
	return
}
