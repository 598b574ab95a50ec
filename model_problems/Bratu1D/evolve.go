package Bratu1D

import (
	"errors"
	"fmt"

	"github.com/notargets/gaptooth/GapTooth"
	"github.com/notargets/gaptooth/RBF"
	"github.com/notargets/gaptooth/utils"
)

var ErrNonFinite = errors.New("non finite values in the patch state")

// Observer is called after every patch step with the elapsed time and the current state,
// U must not be retained or modified
type Observer func(patchStep int, time float64, U utils.Matrix)

type evolveOptions struct {
	builder  *RBF.Builder
	verbose  bool
	observer Observer
}

type Option func(*evolveOptions)

// WithBuilder sets the interpolator used for the slopes, the default is a cubic RBF
// solved by LU without factorization reuse
func WithBuilder(b *RBF.Builder) Option {
	return func(o *evolveOptions) { o.builder = b }
}

func WithVerbose(verbose bool) Option {
	return func(o *evolveOptions) { o.verbose = verbose }
}

func WithObserver(obs Observer) Option {
	return func(o *evolveOptions) { o.observer = obs }
}

/*
Evolve is the coarse time-stepper (lifting, evolution, restriction) of the gap-tooth
scheme. Starting from the patches u0 on the tooth grids x it repeats round(T/T_patch)
times:
  - estimate the boundary slopes from the current tooth ends
  - run round(T_patch/Dt) projective cycles with those slopes

and returns the final patches as freshly allocated slices.
*/
func Evolve(u0, x [][]float64, dx float64, sch GapTooth.Schedule, p Params, opts ...Option) (uPatch [][]float64, err error) {
	o := &evolveOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.builder == nil {
		o.builder = RBF.NewBuilder(RBF.Cubic, RBF.LUDirect, false)
	}
	if err = sch.Validate(); err != nil {
		return
	}
	var U, X utils.Matrix
	if U, err = GapTooth.ToMatrix(u0); err != nil {
		return nil, fmt.Errorf("initial condition: %w", err)
	}
	if X, err = GapTooth.ToMatrix(x); err != nil {
		return nil, fmt.Errorf("coordinates: %w", err)
	}
	nTeeth, Np := U.Dims()
	var s *Stepper
	if s, err = NewStepper(nTeeth, Np, dx, p); err != nil {
		return
	}
	var (
		nPatchSteps = sch.NPatchSteps()
		nPISteps    = sch.NPICycles()
		sl          Slopes
	)
	for ps := 1; ps <= nPatchSteps; ps++ {
		time := float64(ps) * sch.TPatch
		if o.verbose {
			fmt.Printf("T = %.4f\n", time)
		}
		if sl, err = EstimateSlopes(U, X, o.builder); err != nil {
			return nil, fmt.Errorf("patch step %d: %w", ps, err)
		}
		for n := 0; n < nPISteps; n++ {
			if err = s.ProjectiveCycle(U, sch.Dt, sch.DtPI, sch.K, sl); err != nil {
				return
			}
		}
		if !utils.IsFinite(U) {
			return nil, fmt.Errorf("%w at patch step %d, T = %v", ErrNonFinite, ps, time)
		}
		if o.observer != nil {
			o.observer(ps, time, U)
		}
	}
	uPatch = GapTooth.FromMatrix(U)
	return
}
