package Bratu1D

import (
	"fmt"

	"github.com/notargets/gaptooth/RBF"
	"github.com/notargets/gaptooth/utils"
)

// EstimateSlopes fits one global interpolant through the two end points of every tooth
// and differentiates it at those same points. X holds the tooth coordinates, same shape as U.
func EstimateSlopes(U, X utils.Matrix, b *RBF.Builder) (sl Slopes, err error) {
	var (
		nTeeth, Np = U.Dims()
		nx, npx    = X.Dims()
	)
	if nx != nTeeth || npx != Np {
		err = fmt.Errorf("coordinates are %dx%d, state is %dx%d", nx, npx, nTeeth, Np)
		return
	}
	var (
		xEnd = make([]float64, 2*nTeeth)
		uEnd = make([]float64, 2*nTeeth)
	)
	for k := 0; k < nTeeth; k++ {
		xRow, uRow := X.RawRow(k), U.RawRow(k)
		xEnd[2*k], xEnd[2*k+1] = xRow[0], xRow[Np-1]
		uEnd[2*k], uEnd[2*k+1] = uRow[0], uRow[Np-1]
	}
	var in *RBF.Interpolant
	if in, err = b.New(xEnd, uEnd); err != nil {
		err = fmt.Errorf("unable to fit tooth end points: %w", err)
		return
	}
	sl = NewSlopes(nTeeth)
	for k := 0; k < nTeeth; k++ {
		sl.Left[k] = in.Derivative(xEnd[2*k])
		sl.Right[k] = in.Derivative(xEnd[2*k+1])
	}
	return
}
