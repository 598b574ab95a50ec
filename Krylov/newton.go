package Krylov

import (
	"errors"
	"fmt"
	"math"

	"github.com/notargets/gaptooth/utils"
	"github.com/vladimir-ch/iterative"
	"gonum.org/v1/gonum/floats"
)

// Func is a vector valued function of a vector, evaluated into dst
type Func func(dst, x []float64)

var (
	ErrNotConverged = errors.New("newton iteration did not converge")
	ErrNonFinite    = errors.New("non finite residual")
	ErrLineSearch   = errors.New("line search found no acceptable step")
)

type NewtonSettings struct {
	FTol               float64 // Convergence when max |F(x)| <= FTol
	MaxIterations      int
	InnerTolerance     float64 // Relative tolerance of the BiCGStab solve for the Newton step
	InnerMaxIterations int     // 0 uses twice the dimension
	Rdiff              float64 // Relative finite difference step of the Jacobian-vector product
	MaxBacktracks      int
	Verbose            bool
}

func DefaultNewtonSettings() NewtonSettings {
	return NewtonSettings{
		FTol:           6.e-6,
		MaxIterations:  50,
		InnerTolerance: 1.e-6,
		Rdiff:          math.Sqrt(2.2e-16),
		MaxBacktracks:  10,
	}
}

type NewtonResult struct {
	X               []float64
	Iterations      int
	Residuals       []float64 // Max norm of F at every iterate, the initial guess first
	FuncEvaluations int
	InnerIterations int
	Converged       bool
}

/*
NewtonKrylov finds a root of F starting from x0, without forming the Jacobian:

	J(x) v ~= (F(x + h v) - F(x)) / h,    h = Rdiff max(1, |x|) / |v|

Each Newton step solves J dx = -F(x) with BiCGStab to InnerTolerance, then backtracks
(halving) until the Armijo condition |F(x + a dx)| <= (1 - 1e-4 a) |F(x)| holds.
*/
func NewtonKrylov(F Func, x0 []float64, s NewtonSettings) (res NewtonResult, err error) {
	var (
		n  = len(x0)
		x  = append([]float64(nil), x0...)
		fx = make([]float64, n)
		xt = make([]float64, n)
		ft = make([]float64, n)
	)
	if s.MaxBacktracks == 0 {
		s.MaxBacktracks = 10
	}
	eval := func(dst, x []float64) error {
		F(dst, x)
		res.FuncEvaluations++
		if !utils.IsFinite(dst) {
			return ErrNonFinite
		}
		return nil
	}
	res.X = x
	if err = eval(fx, x); err != nil {
		return res, fmt.Errorf("initial guess: %w", err)
	}
	fNorm := floats.Norm(fx, math.Inf(1))
	res.Residuals = append(res.Residuals, fNorm)
	jv := make([]float64, n)
	ops := iterative.MatrixOps{
		MatVec: func(dst, v []float64) {
			vNorm := floats.Norm(v, 2)
			if vNorm == 0 {
				for i := range dst {
					dst[i] = 0
				}
				return
			}
			h := s.Rdiff * math.Max(1, floats.Norm(x, 2)) / vNorm
			floats.AddScaledTo(jv, x, h, v)
			F(dst, jv)
			res.FuncEvaluations++
			floats.Sub(dst, fx)
			floats.Scale(1/h, dst)
		},
	}
	rhs := make([]float64, n)
	for res.Iterations = 0; res.Iterations < s.MaxIterations; res.Iterations++ {
		if fNorm <= s.FTol {
			break
		}
		// Unit right hand side, LinearSolve skips iterating when |b| is below the tolerance
		f2 := floats.Norm(fx, 2)
		floats.ScaleTo(rhs, -1/f2, fx)
		var (
			lin    iterative.Result
			linErr error
		)
		lin, linErr = iterative.LinearSolve(ops, rhs, &iterative.BiCGStab{},
			iterative.Settings{Tolerance: s.InnerTolerance, MaxIterations: s.InnerMaxIterations})
		res.InnerIterations += lin.Stats.Iterations
		dx := lin.X
		if dx == nil || !utils.IsFinite(dx) || floats.Norm(dx, 2) == 0 {
			return res, fmt.Errorf("newton step %d: inner solve failed: %v", res.Iterations, linErr)
		}
		floats.Scale(f2, dx)
		// An inexact step from an exhausted inner solve is still a descent candidate
		var (
			alpha  = 1.
			accept bool
		)
		for bt := 0; bt <= s.MaxBacktracks; bt++ {
			floats.AddScaledTo(xt, x, alpha, dx)
			if eval(ft, xt) == nil && floats.Norm(ft, 2) <= (1-1.e-4*alpha)*f2 {
				accept = true
				break
			}
			alpha /= 2
		}
		if !accept {
			return res, fmt.Errorf("%w at newton step %d, |F| = %g", ErrLineSearch, res.Iterations, fNorm)
		}
		copy(x, xt)
		copy(fx, ft)
		fNorm = floats.Norm(fx, math.Inf(1))
		res.Residuals = append(res.Residuals, fNorm)
		if s.Verbose {
			fmt.Printf("%d:  |F(x)| = %g; step %g\n", res.Iterations, fNorm, alpha)
		}
	}
	if fNorm <= s.FTol {
		res.Converged = true
		return
	}
	err = fmt.Errorf("%w: |F| = %g after %d iterations", ErrNotConverged, fNorm, res.Iterations)
	return
}
