package GapTooth

import (
	"fmt"

	"github.com/notargets/gaptooth/utils"
)

// Laplacian is the periodic central second difference on a tooth of Np points,
//
//	Uxx[j] = (U[j-1] - 2U[j] + U[j+1]) / dx^2, indices wrap around
//
// stored as a sparse circulant and applied to all teeth at once
type Laplacian struct {
	Np int
	Dx float64
	A  utils.CSR
}

func NewLaplacian(Np int, dx float64) (L *Laplacian, err error) {
	if Np < 3 {
		err = fmt.Errorf("periodic stencil needs at least 3 points, have %d", Np)
		return
	}
	var (
		rdx2 = 1. / (dx * dx)
		dok  = utils.NewDOK(Np, Np)
	)
	for j := 0; j < Np; j++ {
		dok.Set(j, (j-1+Np)%Np, rdx2)
		dok.Set(j, j, -2*rdx2)
		dok.Set(j, (j+1)%Np, rdx2)
	}
	dok.SetReadOnly("Laplacian")
	L = &Laplacian{
		Np: Np,
		Dx: dx,
		A:  dok.ToCSR(),
	}
	return
}

// Apply writes the second difference of every tooth row of U into Uxx
func (L *Laplacian) Apply(Uxx, U utils.Matrix) {
	L.A.MulRowsTo(Uxx, U)
}
