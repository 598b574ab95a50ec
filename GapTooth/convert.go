package GapTooth

import (
	"fmt"

	"github.com/notargets/gaptooth/utils"
)

// ToPatch splits a flat state vector into nTeeth patches of equal length.
// The patches share storage with u.
func ToPatch(u []float64, nTeeth int) (uPatch [][]float64, err error) {
	if nTeeth < 1 || len(u)%nTeeth != 0 {
		err = fmt.Errorf("cannot split %d values into %d equal patches", len(u), nTeeth)
		return
	}
	length := len(u) / nTeeth
	uPatch = make([][]float64, nTeeth)
	for i := range uPatch {
		uPatch[i] = u[i*length : (i+1)*length : (i+1)*length]
	}
	return
}

// ToFlat concatenates patches into one freshly allocated vector
func ToFlat(uPatch [][]float64) (u []float64, err error) {
	if len(uPatch) == 0 {
		err = fmt.Errorf("no patches")
		return
	}
	length := len(uPatch[0])
	u = make([]float64, len(uPatch)*length)
	for i, p := range uPatch {
		if len(p) != length {
			err = fmt.Errorf("patch %d has length %d, expected %d", i, len(p), length)
			return nil, err
		}
		copy(u[i*length:(i+1)*length], p)
	}
	return
}

// ToMatrix stacks patches into the dense [tooth, micro] representation
func ToMatrix(uPatch [][]float64) (U utils.Matrix, err error) {
	return utils.NewMatrixFromRows(uPatch)
}

// FromMatrix copies every tooth row out into its own slice
func FromMatrix(U utils.Matrix) (uPatch [][]float64) {
	return U.Rows()
}
