package Krylov

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var ErrEigen = errors.New("eigenvalue decomposition did not converge")

// DirectionalDerivative is the forward difference J(x) v ~= (F(x + rdiff v) - F(x)) / rdiff,
// fx = F(x) must be supplied
func DirectionalDerivative(F Func, x, fx []float64, rdiff float64) Func {
	xv := make([]float64, len(x))
	return func(dst, v []float64) {
		floats.AddScaledTo(xv, x, rdiff, v)
		F(dst, xv)
		floats.Sub(dst, fx)
		floats.Scale(1/rdiff, dst)
	}
}

type ArnoldiSettings struct {
	Eigenvalues int    // Number of Ritz values returned, smallest magnitude first
	KrylovSize  int    // Dimension m of the Krylov subspace
	Seed        uint64 // Seed of the random start vector
}

type ArnoldiResult struct {
	Values []complex128
	H      *mat.Dense // Upper Hessenberg projection of the operator, m x m
	MatVec int
}

/*
Arnoldi builds an orthonormal basis V of the Krylov subspace span{v0, A v0, ..., A^(m-1) v0}
with modified Gram-Schmidt (one reorthogonalization pass), and the projection H = V^T A V.
The eigenvalues of H (Ritz values) approximate those of A, the requested number with the
smallest magnitude is returned. A breakdown (invariant subspace) shortens m.
*/
func Arnoldi(A Func, n int, s ArnoldiSettings) (res ArnoldiResult, err error) {
	var (
		m = s.KrylovSize
	)
	if m > n || m <= 0 {
		m = n
	}
	if s.Eigenvalues < 1 || s.Eigenvalues > m {
		err = fmt.Errorf("cannot return %d Ritz values from a Krylov space of dimension %d", s.Eigenvalues, m)
		return
	}
	V := make([][]float64, 0, m+1)
	H := mat.NewDense(m+1, m, nil)
	rng := rand.New(rand.NewPCG(s.Seed, s.Seed+1))
	v0 := make([]float64, n)
	for i := range v0 {
		v0[i] = rng.Float64() - 0.5
	}
	floats.Scale(1/floats.Norm(v0, 2), v0)
	V = append(V, v0)
	var (
		breakdown = 1.e-12
		k         int
	)
	for k = 0; k < m; k++ {
		w := make([]float64, n)
		A(w, V[k])
		res.MatVec++
		wNorm := floats.Norm(w, 2)
		for pass := 0; pass < 2; pass++ {
			for i := 0; i <= k; i++ {
				h := floats.Dot(w, V[i])
				H.Set(i, k, H.At(i, k)+h)
				floats.AddScaled(w, -h, V[i])
			}
		}
		hNext := floats.Norm(w, 2)
		if k == m-1 {
			H.Set(k+1, k, hNext)
			k++
			break
		}
		if hNext <= breakdown*math.Max(wNorm, 1) {
			k++
			break
		}
		H.Set(k+1, k, hNext)
		floats.Scale(1/hNext, w)
		V = append(V, w)
	}
	res.H = mat.DenseCopyOf(H.Slice(0, k, 0, k))
	var all []complex128
	if all, err = Eigenvalues(res.H); err != nil {
		return
	}
	if s.Eigenvalues > len(all) {
		s.Eigenvalues = len(all)
	}
	res.Values = SmallestMagnitude(all, s.Eigenvalues)
	return
}

// Eigenvalues of a square dense matrix
func Eigenvalues(A mat.Matrix) (values []complex128, err error) {
	var eig mat.Eigen
	if ok := eig.Factorize(A, mat.EigenNone); !ok {
		err = ErrEigen
		return
	}
	values = eig.Values(nil)
	return
}

// SmallestMagnitude returns the k values of smallest modulus, ordered by modulus
func SmallestMagnitude(values []complex128, k int) (sm []complex128) {
	sm = append([]complex128(nil), values...)
	sort.SliceStable(sm, func(i, j int) bool {
		return cmplx.Abs(sm[i]) < cmplx.Abs(sm[j])
	})
	if k < len(sm) {
		sm = sm[:k]
	}
	return
}
