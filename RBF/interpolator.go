package RBF

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/vladimir-ch/iterative"
	"gonum.org/v1/gonum/mat"
)

type SolverType uint8

const (
	LUDirect SolverType = iota
	QRDirect
	BiCGStab
)

var (
	solverNames = map[string]SolverType{
		"lu_direct": LUDirect,
		"lu":        LUDirect,
		"qr":        QRDirect,
		"qr_direct": QRDirect,
		"bicgstab":  BiCGStab,
	}
	solverPrint = []string{"lu_direct", "qr_direct", "bicgstab"}
)

func NewSolverType(label string) (st SolverType, err error) {
	var ok bool
	if st, ok = solverNames[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unknown RBF solver: %q", label)
	}
	return
}

func (st SolverType) String() string {
	if int(st) < len(solverPrint) {
		return solverPrint[st]
	}
	return fmt.Sprintf("SolverType(%d)", uint8(st))
}

var ErrSingular = errors.New("singular RBF interpolation system")

/*
Builder constructs global radial basis function interpolants through scattered 1D nodes:

	s(x) = sum_i w_i phi(|x - x_i|) [+ c0 + c1 x]

The linear tail is added for conditionally positive definite kernels (cubic, thin plate
spline) together with the moment conditions sum w_i = sum w_i x_i = 0.

With ReuseFactorization set, the factorized system is kept and reused as long as the node
coordinates are unchanged, only the right hand side is solved again. A Builder holding a
cached factorization must not be shared between goroutines.
*/
type Builder struct {
	Kernel             KernelType
	Epsilon            float64 // Shape parameter for Gaussian and multiquadric kernels
	Solver             SolverType
	ReuseFactorization bool
	Tolerance          float64 // Iterative solver tolerance, 0 uses 1e-12
	Factorizations     int     // Number of system factorizations performed, for diagnostics

	nodes []float64
	lu    *mat.LU
	qr    *mat.QR
	a     *mat.Dense
}

func NewBuilder(kernel KernelType, solver SolverType, reuse bool) *Builder {
	return &Builder{
		Kernel:             kernel,
		Epsilon:            1,
		Solver:             solver,
		ReuseFactorization: reuse,
	}
}

type Interpolant struct {
	Kernel  KernelType
	Epsilon float64
	Nodes   []float64
	Weights []float64
	Tail    []float64 // c0, c1 or empty
}

func (b *Builder) New(x, u []float64) (in *Interpolant, err error) {
	var (
		n    = len(x)
		tail = b.Kernel.ConditionallyPositive()
	)
	if n == 0 || len(u) != n {
		err = fmt.Errorf("need matching, non empty node and value arrays, have %d and %d", n, len(u))
		return
	}
	if tail && n < 2 {
		err = fmt.Errorf("%w: %v kernel needs at least 2 nodes", ErrSingular, b.Kernel)
		return
	}
	for i := range x {
		if math.IsNaN(u[i]) || math.IsInf(u[i], 0) {
			err = fmt.Errorf("non finite value %v at node %d", u[i], i)
			return
		}
	}
	size := n
	if tail {
		size += 2
	}
	rhs := mat.NewVecDense(size, nil)
	for i, val := range u {
		rhs.SetVec(i, val)
	}
	if !b.ReuseFactorization || !sameNodes(b.nodes, x) {
		b.assemble(x, size, tail)
		if err = b.factorize(); err != nil {
			return
		}
	}
	w := mat.NewVecDense(size, nil)
	if err = b.solve(w, rhs); err != nil {
		return
	}
	coef := w.RawVector().Data
	in = &Interpolant{
		Kernel:  b.Kernel,
		Epsilon: b.Epsilon,
		Nodes:   append([]float64(nil), x...),
		Weights: coef[:n:n],
	}
	if tail {
		in.Tail = coef[n:]
	}
	return
}

func (b *Builder) assemble(x []float64, size int, tail bool) {
	n := len(x)
	b.a = mat.NewDense(size, size, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			b.a.Set(i, j, b.Kernel.phi(x[i]-x[j], b.Epsilon))
		}
		if tail {
			b.a.Set(i, n, 1)
			b.a.Set(i, n+1, x[i])
			b.a.Set(n, i, 1)
			b.a.Set(n+1, i, x[i])
		}
	}
	b.nodes = append(b.nodes[:0], x...)
	b.lu, b.qr = nil, nil
}

func (b *Builder) factorize() (err error) {
	switch b.Solver {
	case QRDirect:
		b.qr = &mat.QR{}
		b.qr.Factorize(b.a)
	case BiCGStab:
	default:
		b.lu = &mat.LU{}
		b.lu.Factorize(b.a)
		if math.IsInf(b.lu.Cond(), 1) {
			b.nodes = b.nodes[:0]
			err = fmt.Errorf("%w: LU factorization has a zero pivot", ErrSingular)
		}
	}
	b.Factorizations++
	return
}

func (b *Builder) solve(w, rhs *mat.VecDense) (err error) {
	switch b.Solver {
	case QRDirect:
		err = acceptIllConditioned(b.qr.SolveVecTo(w, false, rhs))
	case BiCGStab:
		err = b.solveIterative(w, rhs)
	default:
		err = acceptIllConditioned(b.lu.SolveVecTo(w, false, rhs))
	}
	return
}

func (b *Builder) solveIterative(w, rhs *mat.VecDense) (err error) {
	var (
		A   = b.a
		tol = b.Tolerance
	)
	if tol == 0 {
		tol = 1.e-12
	}
	ops := iterative.MatrixOps{
		MatVec: func(dst, x []float64) {
			n := len(x)
			d := mat.NewVecDense(n, dst)
			d.MulVec(A, mat.NewVecDense(n, x))
		},
	}
	var res iterative.Result
	res, err = iterative.LinearSolve(ops, rhs.RawVector().Data, &iterative.BiCGStab{},
		iterative.Settings{Tolerance: tol})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSingular, err)
	}
	w.CopyVec(mat.NewVecDense(len(res.X), res.X))
	return
}

// acceptIllConditioned passes through results that gonum flags as ill conditioned but
// still computed, only an exactly singular system is an error
func acceptIllConditioned(err error) error {
	if err == nil {
		return nil
	}
	var cond mat.Condition
	if errors.As(err, &cond) && !math.IsInf(float64(cond), 1) {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrSingular, err)
}

func sameNodes(a, b []float64) bool {
	if len(a) != len(b) || len(a) == 0 {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (in *Interpolant) Eval(x float64) (s float64) {
	for i, xi := range in.Nodes {
		s += in.Weights[i] * in.Kernel.phi(x-xi, in.Epsilon)
	}
	if len(in.Tail) == 2 {
		s += in.Tail[0] + in.Tail[1]*x
	}
	return
}

func (in *Interpolant) Derivative(x float64) (ds float64) {
	for i, xi := range in.Nodes {
		ds += in.Weights[i] * in.Kernel.dphi(x-xi, in.Epsilon)
	}
	if len(in.Tail) == 2 {
		ds += in.Tail[1]
	}
	return
}
