package Bratu1D

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/notargets/gaptooth/GapTooth"
	"github.com/notargets/gaptooth/InputParameters"
	"github.com/notargets/gaptooth/Krylov"
	"github.com/notargets/gaptooth/RBF"
	"github.com/notargets/gaptooth/bratu_analytic"
	"github.com/notargets/gaptooth/readfiles"
	"github.com/notargets/gaptooth/utils"
	"gonum.org/v1/gonum/floats"
)

var ErrUnsupportedExperiment = errors.New("unsupported experiment")

const (
	Evolution   = "evolution"
	SteadyState = "steady-state"
	Arnoldi     = "arnoldi"
)

/*
Bratu runs the three experiments on one gap-tooth configuration:
  - evolution: time integration from u = 0 to FinalTime
  - steady-state: Newton-Krylov on psi(u) = u - Evolve(u, T_psi), starting from u = 0
  - arnoldi: eigenvalues of the Jacobian of psi at the steady state, dense and Arnoldi
*/
type Bratu struct {
	In       *InputParameters.BratuParameters
	Geometry *GapTooth.Geometry
	Schedule GapTooth.Schedule
	Params   Params
	Builder  *RBF.Builder

	Verbose   bool
	ShowGraph bool
	PlotDir   string // PNG plots and .npy results are written here, empty disables output
	Reference string // Optional .npy dataset to compare against
	SteadyIn  string // Optional .npy steady state for the arnoldi experiment
}

func NewBratu(ip *InputParameters.BratuParameters, verbose bool) (c *Bratu, err error) {
	if err = ip.Validate(); err != nil {
		return
	}
	c = &Bratu{
		In:      ip,
		Params:  Params{Lambda: ip.Lambda},
		Verbose: verbose,
		Schedule: GapTooth.Schedule{
			Dt:     ip.Dt,
			DtPI:   ip.DtPI,
			K:      ip.K,
			TPatch: ip.TPatch,
			T:      ip.FinalTime,
		},
	}
	if err = c.Schedule.Validate(); err != nil {
		return nil, err
	}
	if c.Geometry, err = GapTooth.NewGeometry(ip.NTeeth, ip.NPointsPerTooth, ip.GapOverToothRatio); err != nil {
		return nil, err
	}
	var (
		kt RBF.KernelType
		st RBF.SolverType
	)
	if kt, err = RBF.NewKernelType(ip.RBFKernel); err != nil {
		return nil, err
	}
	if st, err = RBF.NewSolverType(ip.RBFSolver); err != nil {
		return nil, err
	}
	c.Builder = RBF.NewBuilder(kt, st, ip.ReuseFactorization)
	if ip.RBFEpsilon > 0 {
		c.Builder.Epsilon = ip.RBFEpsilon
	}
	if c.Verbose {
		fmt.Printf("Bratu Equation in 1 Dimension, Gap-Tooth with Projective Integration\n")
		c.Geometry.Print()
		c.Schedule.Print()
		fmt.Printf("Lambda = %8.4f, RBF kernel = %s, solver = %s\n\n", c.Params.Lambda, kt, st)
	}
	return
}

func (c *Bratu) Run(experiment string) (err error) {
	switch experiment {
	case Evolution:
		_, err = c.Evolution()
	case SteadyState:
		_, _, err = c.SteadyState()
	case Arnoldi:
		_, err = c.Eigenvalues()
	default:
		err = ErrUnsupportedExperiment
	}
	return
}

func (c *Bratu) output(name string) string {
	return filepath.Join(c.PlotDir, name)
}

func (c *Bratu) zeroState() [][]float64 {
	return c.Geometry.Lift(func(x float64) float64 { return 0 })
}

// Evolution integrates u = 0 to the final time
func (c *Bratu) Evolution() (u [][]float64, err error) {
	var (
		g     = c.Geometry
		opts  = []Option{WithBuilder(c.Builder), WithVerbose(c.Verbose)}
		start = time.Now()
	)
	if c.ShowGraph {
		lc := NewLiveChart(g.X, -0.01, 0.2, 50)
		opts = append(opts, WithObserver(lc.Observer()))
	}
	if u, err = Evolve(c.zeroState(), g.Coordinates(), g.Dx, c.Schedule, c.Params, opts...); err != nil {
		return
	}
	var U utils.Matrix
	if U, err = GapTooth.ToMatrix(u); err != nil {
		return
	}
	fmt.Printf("Evolution to T = %8.4f in %v, max(u) = %10.8f, %s\n",
		c.Schedule.Realized(), time.Since(start), U.Max(), utils.GetMemUsage())
	c.compareAnalytic(u)
	var ref [][]float64
	if ref, err = c.compare(u); err != nil {
		return
	}
	if c.PlotDir == "" {
		return
	}
	if err = readfiles.WritePatches(c.output("evolution.npy"), U); err != nil {
		return
	}
	err = PlotPatches(c.output("evolution.png"), "Gap-Tooth with Projective Integration",
		g.Coordinates(), u, ref, fmt.Sprintf("u(x, t=%v)", c.Schedule.T), "reference")
	return
}

func (c *Bratu) psi() *Psi {
	ps := NewPsi(c.Geometry, c.Schedule.WithHorizon(c.In.TPsi), c.Params, c.Builder)
	ps.Verbose = c.Verbose
	return ps
}

// SteadyState solves psi(u) = 0 with Newton-Krylov from u = 0, compares the result with
// the reference patches and writes it out
func (c *Bratu) SteadyState() (uss []float64, res Krylov.NewtonResult, err error) {
	if uss, res, err = c.newton(); err != nil {
		if !errors.Is(err, Krylov.ErrNotConverged) && !errors.Is(err, Krylov.ErrLineSearch) {
			return
		}
		// The last iterate is still written out and plotted
		fmt.Printf("%v\n", err)
	}
	var (
		g      = c.Geometry
		uPatch [][]float64
		ref    [][]float64
		cmpErr error
	)
	if uPatch, cmpErr = GapTooth.ToPatch(uss, g.NTeeth); cmpErr != nil {
		return uss, res, cmpErr
	}
	c.compareAnalytic(uPatch)
	if ref, cmpErr = c.compare(uPatch); cmpErr != nil {
		return uss, res, cmpErr
	}
	if c.PlotDir == "" {
		return
	}
	if cmpErr = readfiles.WriteFlat(c.output("steady_state.npy"), uss); cmpErr != nil {
		return uss, res, cmpErr
	}
	if cmpErr = PlotPatches(c.output("steady_state.png"), "Newton-Krylov steady state",
		g.Coordinates(), uPatch, ref, "Newton-Krylov", "reference"); cmpErr != nil {
		return uss, res, cmpErr
	}
	return
}

// newton runs the Newton-Krylov solve of psi(u) = 0 from u = 0 and prints its history
func (c *Bratu) newton() (uss []float64, res Krylov.NewtonResult, err error) {
	var (
		ps = c.psi()
		u0 []float64
	)
	if u0, err = GapTooth.ToFlat(c.zeroState()); err != nil {
		return
	}
	s := Krylov.DefaultNewtonSettings()
	s.FTol = c.In.NewtonTolerance
	s.MaxIterations = c.In.NewtonMaxIterations
	s.InnerTolerance = c.In.KrylovTolerance
	s.Verbose = true
	res, err = Krylov.NewtonKrylov(ps.F, u0, s)
	uss = res.X
	if psErr := ps.Err(); psErr != nil && err != nil {
		err = fmt.Errorf("%w (last psi failure: %v)", err, psErr)
	}
	fmt.Printf("Newton-Krylov: %d iterations, %d psi evaluations, %d inner iterations\n",
		res.Iterations, ps.Count(), res.InnerIterations)
	if graph := ResidualGraph(res.Residuals); graph != "" {
		fmt.Println(graph)
	}
	return
}

type EigenResult struct {
	Dense   []complex128 // All eigenvalues of the dense Jacobian, empty unless requested
	Arnoldi []complex128 // Ritz values of smallest magnitude
}

// Eigenvalues linearizes psi around the steady state, read from SteadyIn or computed
func (c *Bratu) Eigenvalues() (ev EigenResult, err error) {
	var (
		g   = c.Geometry
		ps  = c.psi()
		uss []float64
		M   = g.Size()
	)
	if c.SteadyIn != "" {
		var U utils.Matrix
		if U, err = readfiles.ReadPatches(c.SteadyIn, g.NTeeth, c.Verbose); err != nil {
			return
		}
		uss = U.Data()
	} else if uss, _, err = c.newton(); err != nil {
		if !errors.Is(err, Krylov.ErrNotConverged) && !errors.Is(err, Krylov.ErrLineSearch) {
			return
		}
		fmt.Printf("%v\n", err)
		err = nil
	}
	if len(uss) != M {
		err = fmt.Errorf("steady state has %d values, geometry has %d", len(uss), M)
		return
	}
	psiVal := make([]float64, M)
	if err = ps.Eval(psiVal, uss); err != nil {
		return
	}
	fmt.Printf("psi_val %v\n", floats.Norm(psiVal, 2))
	if c.In.DenseJacobian {
		fmt.Printf("Dense Jacobian, %d columns\n", M)
		J, jErr := Krylov.Jacobian(ps.F, uss, psiVal, c.In.Rdiff)
		if jErr != nil {
			return ev, jErr
		}
		if err = ps.Err(); err != nil {
			return
		}
		if ev.Dense, err = Krylov.Eigenvalues(J); err != nil {
			return
		}
	}
	fmt.Printf("Arnoldi Method\n")
	var ar Krylov.ArnoldiResult
	ar, err = Krylov.Arnoldi(Krylov.DirectionalDerivative(ps.F, uss, psiVal, c.In.Rdiff), M,
		Krylov.ArnoldiSettings{
			Eigenvalues: c.In.ArnoldiEigenvalues,
			KrylovSize:  c.In.ArnoldiKrylovSize,
			Seed:        1,
		})
	if err != nil {
		return
	}
	if err = ps.Err(); err != nil {
		return
	}
	ev.Arnoldi = ar.Values
	fmt.Print(FormatEigenvalues(ev.Arnoldi))
	var ref []complex128
	if c.Reference != "" {
		if ref, err = readfiles.ReadComplex(c.Reference, c.Verbose); err != nil {
			return
		}
	}
	if c.PlotDir == "" {
		return
	}
	if err = readfiles.WriteComplex(c.output("eigenvalues_arnoldi.npy"), ev.Arnoldi); err != nil {
		return
	}
	if len(ev.Dense) != 0 {
		if err = readfiles.WriteComplex(c.output("eigenvalues_dense.npy"), ev.Dense); err != nil {
			return
		}
	}
	jitter := 0.001
	err = PlotEigenvalues(c.output("eigenvalues.png"), "Jacobian Eigenvalues of Patches (GT + PI)",
		EigenSeries{Label: "Dense Jacobian QR Method", Values: ev.Dense, Color: colorSolution},
		EigenSeries{Label: "Arnoldi Method", Values: ev.Arnoldi, Offset: jitter, Color: colorArnoldi},
		EigenSeries{Label: "reference", Values: ref, Offset: -jitter, Color: colorReference, Hollow: true},
	)
	return
}

// compare reads the reference patches when one is configured and reports the difference
func (c *Bratu) compare(u [][]float64) (ref [][]float64, err error) {
	if c.Reference == "" {
		return
	}
	var R utils.Matrix
	if R, err = readfiles.ReadPatches(c.Reference, c.Geometry.NTeeth, c.Verbose); err != nil {
		return
	}
	ref = GapTooth.FromMatrix(R)
	var maxDiff float64
	for k := range u {
		if len(ref[k]) != len(u[k]) {
			return nil, fmt.Errorf("reference tooth length %d, state tooth length %d", len(ref[k]), len(u[k]))
		}
		for j := range u[k] {
			maxDiff = math.Max(maxDiff, math.Abs(u[k][j]-ref[k][j]))
		}
	}
	fmt.Printf("Max difference from reference = %10.4e\n", maxDiff)
	return
}

// compareAnalytic reports the distance to the lower branch steady state, when one exists
func (c *Bratu) compareAnalytic(u [][]float64) {
	uss, err := bratu_analytic.SteadyState(c.Params.Lambda, bratu_analytic.Lower)
	if err != nil {
		return
	}
	var (
		maxDiff float64
		X       = c.Geometry.X
	)
	for k := range u {
		for j, v := range u[k] {
			maxDiff = math.Max(maxDiff, math.Abs(v-uss(X.At(k, j))))
		}
	}
	fmt.Printf("Max difference from analytic steady state = %10.4e\n", maxDiff)
}
