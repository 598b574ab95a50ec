package Bratu1D

import (
	"fmt"
	"math"

	"github.com/notargets/gaptooth/GapTooth"
	"github.com/notargets/gaptooth/utils"
)

/*
The Bratu reaction-diffusion problem in one dimension:

				∂u/∂t = ∂²u/∂x² + λ exp(u),    x ∈ [0, 1],    u(0) = u(1) = 0

Gap-tooth scheme: only the teeth are simulated. The state of all teeth is one dense
matrix U[k, j], k = tooth, j = micro grid point, and every micro step updates all teeth
at once:

				U' = U + dt (Uxx + λ exp(U))

Uxx uses a periodic central difference along each tooth, the wrapped values at both
ends of a tooth are never used because the boundary conditions overwrite them:

	Outer edges of the domain (Dirichlet):
				U'[0, 0] = 0,    U'[n-1, m-1] = 0
	Internal tooth edges (Neumann, slopes from the global interpolant through all tooth ends):
				U'[k, 0]   = U'[k, 1]   - left[k]  dx,    k = 1..n-1
				U'[k, m-1] = U'[k, m-2] + right[k] dx,    k = 0..n-2
*/

type Params struct {
	Lambda float64
}

// Slopes are the outward derivatives at both ends of every tooth, held fixed
// between re-estimations
type Slopes struct {
	Left, Right []float64
}

func NewSlopes(nTeeth int) Slopes {
	return Slopes{
		Left:  make([]float64, nTeeth),
		Right: make([]float64, nTeeth),
	}
}

type Stepper struct {
	NTeeth, Np int
	Dx         float64
	Params     Params
	Lap        *GapTooth.Laplacian
	work       [2]utils.Matrix
}

func NewStepper(nTeeth, Np int, dx float64, p Params) (s *Stepper, err error) {
	if nTeeth < 1 {
		err = fmt.Errorf("need at least one tooth, have %d", nTeeth)
		return
	}
	s = &Stepper{
		NTeeth: nTeeth,
		Np:     Np,
		Dx:     dx,
		Params: p,
	}
	if s.Lap, err = GapTooth.NewLaplacian(Np, dx); err != nil {
		return nil, err
	}
	s.work = [2]utils.Matrix{utils.NewMatrix(nTeeth, Np), utils.NewMatrix(nTeeth, Np)}
	return
}

// EulerStep writes one forward Euler step of U into dst, then enforces the boundary
// conditions. dst must not share storage with U.
func (s *Stepper) EulerStep(dst, U utils.Matrix, dt float64, sl Slopes) {
	var (
		lambda = s.Params.Lambda
	)
	s.Lap.Apply(dst, U)
	d, u := dst.Data(), U.Data()
	for i, uxx := range d {
		d[i] = u[i] + dt*(uxx+lambda*math.Exp(u[i]))
	}
	ApplyBCs(dst, s.Dx, sl)
}

// ApplyBCs overwrites the ends of every tooth: Dirichlet zero at the two ends of the
// domain, Neumann from the slopes at the internal tooth edges
func ApplyBCs(U utils.Matrix, dx float64, sl Slopes) {
	var (
		nTeeth, Np = U.Dims()
	)
	U.Set(0, 0, 0.0)
	U.Set(nTeeth-1, Np-1, 0.0)
	if nTeeth == 1 {
		return
	}
	if len(sl.Left) != nTeeth || len(sl.Right) != nTeeth {
		err := fmt.Errorf("slopes for %d, %d teeth, state has %d teeth", len(sl.Left), len(sl.Right), nTeeth)
		panic(err)
	}
	for k := 1; k < nTeeth; k++ {
		row := U.RawRow(k)
		row[0] = row[1] - sl.Left[k]*dx
	}
	for k := 0; k < nTeeth-1; k++ {
		row := U.RawRow(k)
		row[Np-1] = row[Np-2] + sl.Right[k]*dx
	}
}
