package GapTooth

import (
	"errors"
	"fmt"

	"github.com/notargets/gaptooth/utils"
)

var (
	ErrBackwardProjection = errors.New("projective step shorter than the K micro steps it extrapolates from")
	ErrInvalidK           = errors.New("number of micro steps per projective cycle must be at least 1")
)

// Schedule holds the four time scales of gap-tooth projective integration
type Schedule struct {
	Dt     float64 // Micro Euler step
	DtPI   float64 // Projective (coarse) step, must cover K micro steps
	K      int     // Micro steps per projective cycle
	TPatch float64 // Horizon between re-estimation of the boundary slopes
	T      float64 // Total horizon
}

func (s Schedule) Validate() (err error) {
	switch {
	case s.Dt <= 0:
		err = fmt.Errorf("micro step dt must be positive, have %v", s.Dt)
	case s.K < 1:
		err = fmt.Errorf("%w: K = %d", ErrInvalidK, s.K)
	case s.DtPI <= 0:
		err = fmt.Errorf("projective step Dt must be positive, have %v", s.DtPI)
	case s.TPatch <= 0:
		err = fmt.Errorf("patch horizon T_patch must be positive, have %v", s.TPatch)
	case s.T < 0:
		err = fmt.Errorf("total horizon T must not be negative, have %v", s.T)
	default:
		err = CheckProjection(s.Dt, s.DtPI, s.K)
	}
	return
}

// CheckProjection rejects Dt < K*dt, allowing for round off in K*dt
func CheckProjection(dt, Dt float64, K int) error {
	if K < 1 {
		return fmt.Errorf("%w: K = %d", ErrInvalidK, K)
	}
	if Kdt := float64(K) * dt; Kdt-Dt > utils.NODETOL*Kdt {
		return fmt.Errorf("%w: K*dt = %v > Dt = %v", ErrBackwardProjection, Kdt, Dt)
	}
	return nil
}

// NPatchSteps is the number of slope re-estimations over T
func (s Schedule) NPatchSteps() int {
	return utils.RoundInt(s.T / s.TPatch)
}

// NPICycles is the number of projective cycles per patch step
func (s Schedule) NPICycles() int {
	return utils.RoundInt(s.TPatch / s.DtPI)
}

// Realized is the horizon actually covered after rounding the step counts
func (s Schedule) Realized() float64 {
	return float64(s.NPatchSteps()*s.NPICycles()) * s.DtPI
}

// WithHorizon returns a copy with total horizon T
func (s Schedule) WithHorizon(T float64) Schedule {
	s.T = T
	return s
}

func (s Schedule) Print() {
	fmt.Printf("dt = %8.3e, Dt = %8.3e, K = %d, T_patch = %8.3e, T = %8.4f\n",
		s.Dt, s.DtPI, s.K, s.TPatch, s.T)
	fmt.Printf("Patch steps = %d, PI cycles per patch step = %d\n", s.NPatchSteps(), s.NPICycles())
}
