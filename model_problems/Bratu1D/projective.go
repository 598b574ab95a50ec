package Bratu1D

import (
	"github.com/notargets/gaptooth/GapTooth"
	"github.com/notargets/gaptooth/utils"
)

/*
ProjectiveCycle advances U in place by Dt using K micro Euler steps:

				U_K       = Euler^K (U)
				dU/dt    ~= (U_K - U_K-1) / dt
				U        <- U_K + (Dt - K dt) dU/dt

followed by the boundary conditions with the same slopes. Dt < K dt would extrapolate
backward in time and is rejected.
*/
func (s *Stepper) ProjectiveCycle(U utils.Matrix, dt, Dt float64, K int, sl Slopes) (err error) {
	if err = GapTooth.CheckProjection(dt, Dt, K); err != nil {
		return
	}
	var (
		prev, next = s.work[0], s.work[1]
	)
	prev.CopyFrom(U)
	for m := 0; m < K-1; m++ {
		s.EulerStep(next, prev, dt, sl)
		prev, next = next, prev
	}
	s.EulerStep(next, prev, dt, sl)

	var (
		u          = U.Data()
		uLast      = next.Data()
		uPrev      = prev.Data()
		projection = Dt - float64(K)*dt
	)
	for i := range u {
		duDt := (uLast[i] - uPrev[i]) / dt
		u[i] = uLast[i] + projection*duDt
	}
	ApplyBCs(U, s.Dx, sl)
	return
}
