package Bratu1D

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gaptooth/GapTooth"
	"github.com/notargets/gaptooth/RBF"
	"github.com/notargets/gaptooth/bratu_analytic"
	"github.com/notargets/gaptooth/utils"
)

func constMatrix(nr, nc int, val float64) (U utils.Matrix) {
	U = utils.NewMatrix(nr, nc)
	data := U.Data()
	for i := range data {
		data[i] = val
	}
	return
}

func TestApplyBCs(t *testing.T) {
	{ // Three teeth, Dirichlet ends and Neumann internal edges
		U := constMatrix(3, 4, 1)
		sl := Slopes{
			Left:  []float64{0, 1, 2},
			Right: []float64{3, 4, 0},
		}
		ApplyBCs(U, 0.1, sl)
		assert.Equal(t, 0.0, U.At(0, 0))
		assert.Equal(t, 0.0, U.At(2, 3))
		assert.InDelta(t, 0.9, U.At(1, 0), 1.e-14)
		assert.InDelta(t, 0.8, U.At(2, 0), 1.e-14)
		assert.InDelta(t, 1.3, U.At(0, 3), 1.e-14)
		assert.InDelta(t, 1.4, U.At(1, 3), 1.e-14)
		// Interior untouched
		assert.Equal(t, 1.0, U.At(1, 1))
		assert.Equal(t, 1.0, U.At(1, 2))
	}
	{ // A single tooth only carries the two Dirichlet values, slopes are ignored
		U := constMatrix(1, 5, 2)
		ApplyBCs(U, 0.1, Slopes{})
		assert.Equal(t, []float64{0, 2, 2, 2, 0}, U.Data())
	}
	{ // Mismatched slopes
		U := utils.NewMatrix(2, 4)
		assert.Panics(t, func() { ApplyBCs(U, 0.1, NewSlopes(3)) })
	}
}

func TestEulerStep(t *testing.T) {
	var (
		Np = 7
		dx = 1. / float64(Np-1)
		dt = 1.e-4
	)
	{ // Zero state stays zero without reaction
		s, err := NewStepper(1, Np, dx, Params{Lambda: 0})
		require.NoError(t, err)
		U, dst := utils.NewMatrix(1, Np), utils.NewMatrix(1, Np)
		s.EulerStep(dst, U, dt, NewSlopes(1))
		assert.Equal(t, make([]float64, Np), dst.Data())
	}
	{ // Zero state grows by dt*lambda in the interior
		lambda := 2.
		s, err := NewStepper(1, Np, dx, Params{Lambda: lambda})
		require.NoError(t, err)
		U, dst := utils.NewMatrix(1, Np), utils.NewMatrix(1, Np)
		s.EulerStep(dst, U, dt, NewSlopes(1))
		assert.Equal(t, 0.0, dst.At(0, 0))
		assert.Equal(t, 0.0, dst.At(0, Np-1))
		for j := 1; j < Np-1; j++ {
			assert.InDelta(t, dt*lambda, dst.At(0, j), 1.e-15)
		}
	}
	{ // Discrete Laplacian of a quadratic is exact in the interior
		s, err := NewStepper(2, Np, dx, Params{Lambda: 0})
		require.NoError(t, err)
		U, dst := utils.NewMatrix(2, Np), utils.NewMatrix(2, Np)
		for k := 0; k < 2; k++ {
			for j := 0; j < Np; j++ {
				x := float64(j) * dx
				U.Set(k, j, x*x)
			}
		}
		sl := Slopes{Left: []float64{0, 5}, Right: []float64{-5, 0}}
		s.EulerStep(dst, U, dt, sl)
		for k := 0; k < 2; k++ {
			for j := 1; j < Np-1; j++ {
				assert.InDelta(t, U.At(k, j)+2*dt, dst.At(k, j), 1.e-12)
			}
		}
		assert.Equal(t, 0.0, dst.At(0, 0))
		assert.Equal(t, 0.0, dst.At(1, Np-1))
		assert.InDelta(t, dst.At(1, 1)-5*dx, dst.At(1, 0), 1.e-14)
		assert.InDelta(t, dst.At(0, Np-2)-5*dx, dst.At(0, Np-1), 1.e-14)
	}
	{
		_, err := NewStepper(0, Np, dx, Params{})
		assert.Error(t, err)
		_, err = NewStepper(1, 2, dx, Params{})
		assert.Error(t, err)
	}
}

func sinePatch(nTeeth, Np int) (U utils.Matrix, dx float64) {
	dx = 1. / float64(nTeeth*Np-1)
	U = utils.NewMatrix(nTeeth, Np)
	for k := 0; k < nTeeth; k++ {
		for j := 0; j < Np; j++ {
			x := float64(k*Np+j) * dx
			U.Set(k, j, math.Sin(math.Pi*x))
		}
	}
	return
}

func TestProjectiveCycle(t *testing.T) {
	var (
		Np = 15
		p  = Params{Lambda: 1}
	)
	{ // K = 1 and Dt = dt is a single Euler step
		U, dx := sinePatch(1, Np)
		dt := 1.e-6
		s, err := NewStepper(1, Np, dx, p)
		require.NoError(t, err)
		euler := utils.NewMatrix(1, Np)
		s.EulerStep(euler, U, dt, NewSlopes(1))
		require.NoError(t, s.ProjectiveCycle(U, dt, dt, 1, NewSlopes(1)))
		assert.Equal(t, euler.Data(), U.Data())
	}
	{ // K = 2, Dt = 4dt agrees with four Euler steps
		U, dx := sinePatch(1, Np)
		var (
			dt, Dt = 1.e-6, 4.e-6
			sl     = NewSlopes(1)
		)
		s, err := NewStepper(1, Np, dx, p)
		require.NoError(t, err)
		ref, tmp := utils.NewMatrix(1, Np).CopyFrom(U), utils.NewMatrix(1, Np)
		for n := 0; n < 4; n++ {
			s.EulerStep(tmp, ref, dt, sl)
			ref.CopyFrom(tmp)
		}
		U0 := utils.NewMatrix(1, Np).CopyFrom(U)
		require.NoError(t, s.ProjectiveCycle(U, dt, Dt, 2, sl))
		var (
			u, r, u0 = U.Data(), ref.Data(), U0.Data()
		)
		for i := range u {
			change := math.Abs(r[i] - u0[i])
			assert.InDelta(t, r[i], u[i], 1.e-3*change+1.e-14)
		}
		assert.Equal(t, 0.0, U.At(0, 0))
		assert.Equal(t, 0.0, U.At(0, Np-1))
	}
	{ // Internal edges keep the Neumann relation after projection
		U, dx := sinePatch(3, Np)
		sl := Slopes{Left: []float64{0, 0.5, -0.25}, Right: []float64{1, -1, 0}}
		s, err := NewStepper(3, Np, dx, p)
		require.NoError(t, err)
		require.NoError(t, s.ProjectiveCycle(U, 1.e-6, 4.e-6, 2, sl))
		assert.Equal(t, 0.0, U.At(0, 0))
		assert.Equal(t, 0.0, U.At(2, Np-1))
		for k := 1; k < 3; k++ {
			assert.InDelta(t, U.At(k, 1)-sl.Left[k]*dx, U.At(k, 0), 1.e-14)
		}
		for k := 0; k < 2; k++ {
			assert.InDelta(t, U.At(k, Np-2)+sl.Right[k]*dx, U.At(k, Np-1), 1.e-14)
		}
	}
	{ // Backward projection and K < 1 are rejected, U is untouched
		U, dx := sinePatch(1, Np)
		U0 := utils.NewMatrix(1, Np).CopyFrom(U)
		s, err := NewStepper(1, Np, dx, p)
		require.NoError(t, err)
		err = s.ProjectiveCycle(U, 1.e-6, 1.e-6, 2, NewSlopes(1))
		assert.ErrorIs(t, err, GapTooth.ErrBackwardProjection)
		err = s.ProjectiveCycle(U, 1.e-6, 1.e-6, 0, NewSlopes(1))
		assert.ErrorIs(t, err, GapTooth.ErrInvalidK)
		assert.Equal(t, U0.Data(), U.Data())
	}
}

func TestEstimateSlopes(t *testing.T) {
	g, err := GapTooth.NewGeometry(3, 5, 2)
	require.NoError(t, err)
	U, err := GapTooth.ToMatrix(g.Lift(func(x float64) float64 { return 2*x + 1 }))
	require.NoError(t, err)
	sl, err := EstimateSlopes(U, g.X, RBF.NewBuilder(RBF.Cubic, RBF.LUDirect, false))
	require.NoError(t, err)
	for k := 0; k < g.NTeeth; k++ {
		assert.InDelta(t, 2.0, sl.Left[k], 1.e-8)
		assert.InDelta(t, 2.0, sl.Right[k], 1.e-8)
	}
	_, err = EstimateSlopes(U, utils.NewMatrix(2, 5), RBF.NewBuilder(RBF.Cubic, RBF.LUDirect, false))
	assert.Error(t, err)
}

func smallSchedule() GapTooth.Schedule {
	return GapTooth.Schedule{Dt: 1.e-5, DtPI: 4.e-5, K: 2, TPatch: 4.e-4, T: 1.2e-3}
}

func TestEvolve(t *testing.T) {
	g, err := GapTooth.NewGeometry(3, 5, 2)
	require.NoError(t, err)
	var (
		sch = smallSchedule()
		x   = g.Coordinates()
	)
	{ // Zero horizon returns a copy of the initial state
		u0 := g.Lift(math.Sin)
		u, err := Evolve(u0, x, g.Dx, sch.WithHorizon(0), Params{Lambda: 1})
		require.NoError(t, err)
		assert.Equal(t, u0, u)
		u[0][0] = 100
		assert.NotEqual(t, u0[0][0], u[0][0])
	}
	{ // Observer sees every patch step, boundaries stay Dirichlet
		var steps []int
		obs := func(ps int, time float64, U utils.Matrix) {
			steps = append(steps, ps)
			assert.InDelta(t, float64(ps)*sch.TPatch, time, 1.e-15)
		}
		u0 := g.Lift(func(x float64) float64 { return 0 })
		u, err := Evolve(u0, x, g.Dx, sch, Params{Lambda: 1}, WithObserver(obs))
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, steps)
		assert.Equal(t, 0.0, u[0][0])
		assert.Equal(t, 0.0, u[2][4])
		// Reaction drives the state up
		assert.Greater(t, u[1][2], 0.0)
	}
	{ // Backward projection is rejected before stepping
		bad := sch
		bad.DtPI = bad.Dt
		_, err := Evolve(g.Lift(math.Sin), x, g.Dx, bad, Params{Lambda: 1})
		assert.ErrorIs(t, err, GapTooth.ErrBackwardProjection)
	}
	{ // Ragged input
		u0 := g.Lift(math.Sin)
		u0[1] = u0[1][:3]
		_, err := Evolve(u0, x, g.Dx, sch, Params{Lambda: 1})
		assert.Error(t, err)
	}
	{ // Blow up is reported instead of returned
		g1, err := GapTooth.NewGeometry(1, 5, 1)
		require.NoError(t, err)
		blowUp := GapTooth.Schedule{Dt: 1.e-6, DtPI: 1.e-6, K: 1, TPatch: 1.e-5, T: 2.e-5}
		_, err = Evolve(g1.Lift(func(x float64) float64 { return 0 }), g1.Coordinates(), g1.Dx,
			blowUp, Params{Lambda: 1.e300})
		assert.ErrorIs(t, err, ErrNonFinite)
	}
}

func TestPsi(t *testing.T) {
	g, err := GapTooth.NewGeometry(3, 5, 2)
	require.NoError(t, err)
	sch := smallSchedule()
	{ // Zero is a fixed point without reaction
		ps := NewPsi(g, sch, Params{Lambda: 0}, nil)
		u, dst := make([]float64, g.Size()), make([]float64, g.Size())
		require.NoError(t, ps.Eval(dst, u))
		for _, v := range dst {
			assert.InDelta(t, 0.0, v, 1.e-14)
		}
		ps.F(dst, u)
		assert.Equal(t, 2, ps.Count())
		assert.NoError(t, ps.Err())
	}
	{ // Residual is u - Evolve(u)
		ps := NewPsi(g, sch, Params{Lambda: 1}, RBF.NewBuilder(RBF.Cubic, RBF.LUDirect, true))
		u, err := GapTooth.ToFlat(g.Lift(func(x float64) float64 { return 0.1 * math.Sin(math.Pi*x) }))
		require.NoError(t, err)
		uPatch, err := GapTooth.ToPatch(append([]float64{}, u...), g.NTeeth)
		require.NoError(t, err)
		evolved, err := Evolve(uPatch, g.Coordinates(), g.Dx, sch, Params{Lambda: 1})
		require.NoError(t, err)
		flat, err := GapTooth.ToFlat(evolved)
		require.NoError(t, err)
		dst := make([]float64, len(u))
		require.NoError(t, ps.Eval(dst, u))
		for i := range dst {
			assert.InDelta(t, u[i]-flat[i], dst[i], 1.e-12)
		}
	}
	{ // Failed evaluations fill NaN and keep the error
		ps := NewPsi(g, sch, Params{Lambda: 1}, nil)
		dst := make([]float64, 4)
		ps.F(dst, make([]float64, 4))
		assert.Error(t, ps.Err())
		assert.True(t, math.IsNaN(dst[0]))
		assert.Equal(t, 1, ps.Count())
	}
}

func TestEvolutionToSteadyState(t *testing.T) {
	if testing.Short() {
		t.Skip("long time integration")
	}
	g, err := GapTooth.NewGeometry(21, 15, 1)
	require.NoError(t, err)
	assert.Equal(t, 575, g.N)
	sch := GapTooth.Schedule{Dt: 1.e-6, DtPI: 4.e-6, K: 2, TPatch: 100 * 1.e-6, T: 0.5}
	assert.Equal(t, 5000, sch.NPatchSteps())
	assert.Equal(t, 25, sch.NPICycles())
	u, err := Evolve(g.Lift(func(x float64) float64 { return 0 }), g.Coordinates(), g.Dx, sch,
		Params{Lambda: 1}, WithBuilder(RBF.NewBuilder(RBF.Cubic, RBF.LUDirect, true)))
	require.NoError(t, err)
	bratuSteadyState, err := bratu_analytic.SteadyState(1, bratu_analytic.Lower)
	require.NoError(t, err)
	var (
		maxErr float64
		X      = g.X
	)
	for k := range u {
		for j, v := range u[k] {
			maxErr = math.Max(maxErr, math.Abs(v-bratuSteadyState(X.At(k, j))))
			// Mirror symmetry about x = 1/2
			mirror := u[g.NTeeth-1-k][g.NPointsPerTooth-1-j]
			assert.InDelta(t, v, mirror, 1.e-8)
		}
	}
	// Gap-tooth discretization error against the continuous steady state
	assert.Less(t, maxErr, 2.e-2)
	assert.InDelta(t, 0.1283472578, u[10][7], 1.e-8)
}
