package Bratu1D

import (
	"math"
	"math/cmplx"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gaptooth/InputParameters"
	"github.com/notargets/gaptooth/Krylov"
	"github.com/notargets/gaptooth/readfiles"
)

func smallDeck() *InputParameters.BratuParameters {
	ip := InputParameters.Defaults()
	ip.NTeeth = 3
	ip.NPointsPerTooth = 5
	ip.GapOverToothRatio = 2
	ip.Dt, ip.DtPI, ip.K = 1.e-5, 4.e-5, 2
	ip.TPatch = 4.e-4
	ip.FinalTime = 1.2e-3
	ip.TPsi = 4.e-4
	ip.NewtonTolerance = 1.e-9
	ip.ArnoldiEigenvalues = 3
	ip.ArnoldiKrylovSize = 15
	ip.ReuseFactorization = true
	return ip
}

func TestExperiments(t *testing.T) {
	c, err := NewBratu(smallDeck(), false)
	require.NoError(t, err)
	c.PlotDir = t.TempDir()

	uss, res, err := c.SteadyState()
	require.NoError(t, err)
	assert.True(t, res.Converged)
	assert.Len(t, uss, 15)
	// uss is a fixed point of the coarse time-stepper
	ps := c.psi()
	r := make([]float64, len(uss))
	require.NoError(t, ps.Eval(r, uss))
	for _, v := range r {
		assert.InDelta(t, 0, v, 1.e-9)
	}
	U, err := readfiles.ReadPatches(filepath.Join(c.PlotDir, "steady_state.npy"), 3, false)
	require.NoError(t, err)
	assert.Equal(t, uss, U.Data())

	c.SteadyIn = filepath.Join(c.PlotDir, "steady_state.npy")
	ev, err := c.Eigenvalues()
	require.NoError(t, err)
	require.Len(t, ev.Dense, 15)
	require.Len(t, ev.Arnoldi, 3)
	// The full Krylov space reproduces dense eigenvalues
	for _, a := range ev.Arnoldi {
		nearest := math.Inf(1)
		for _, d := range ev.Dense {
			nearest = math.Min(nearest, cmplx.Abs(a-d))
		}
		assert.Less(t, nearest, 1.e-4)
	}
	assert.LessOrEqual(t, cmplx.Abs(ev.Arnoldi[0]), cmplx.Abs(Krylov.SmallestMagnitude(ev.Dense, 1)[0])+1.e-4)
	// The two Dirichlet values are reset every step, so psi is the identity there
	var unit int
	for _, v := range ev.Dense {
		assert.Greater(t, real(v), 0.0)
		assert.LessOrEqual(t, real(v), 1.2)
		if cmplx.Abs(v-1) < 1.e-6 {
			unit++
		}
	}
	assert.GreaterOrEqual(t, unit, 2)
	assert.FileExists(t, filepath.Join(c.PlotDir, "eigenvalues.png"))
	assert.FileExists(t, filepath.Join(c.PlotDir, "eigenvalues_arnoldi.npy"))

	assert.ErrorIs(t, c.Run("sensitivity"), ErrUnsupportedExperiment)
}

func TestEigenvaluesWithComplexReference(t *testing.T) {
	ip := smallDeck()
	ip.DenseJacobian = false
	c, err := NewBratu(ip, false)
	require.NoError(t, err)
	c.PlotDir = t.TempDir()
	c.Reference = filepath.Join(c.PlotDir, "reference_eigenvalues.npy")
	require.NoError(t, readfiles.WriteComplex(c.Reference, []complex128{0.5, 0.25 + 0.1i, 0.9}))

	// The steady state is solved in place and the reference is only read as eigenvalues
	ev, err := c.Eigenvalues()
	require.NoError(t, err)
	assert.Len(t, ev.Arnoldi, 3)
	assert.Empty(t, ev.Dense)
	assert.FileExists(t, filepath.Join(c.PlotDir, "eigenvalues.png"))
	assert.NoFileExists(t, filepath.Join(c.PlotDir, "steady_state.npy"))
	require.NoError(t, c.Run(Arnoldi))
}

func TestNewBratuErrors(t *testing.T) {
	ip := smallDeck()
	ip.RBFSolver = "cholesky"
	_, err := NewBratu(ip, false)
	assert.Error(t, err)
	ip = smallDeck()
	ip.K = 3 // 3 dt > Dt = 4 dt is fine, 5 dt is not
	_, err = NewBratu(ip, false)
	assert.NoError(t, err)
	ip.K = 5
	_, err = NewBratu(ip, false)
	assert.Error(t, err)
}

func TestResidualGraph(t *testing.T) {
	assert.Equal(t, "", ResidualGraph([]float64{1}))
	g := ResidualGraph([]float64{1, 1.e-3, 1.e-8, 1.e-14})
	assert.Contains(t, g, "log10 |F(x)|")
}
