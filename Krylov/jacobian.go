package Krylov

import (
	"fmt"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// Jacobian forms the dense forward difference Jacobian of F at x column by column,
// fx = F(x) is reused as the origin value. Evaluations are sequential, F need not be
// safe for concurrent use.
func Jacobian(F Func, x, fx []float64, step float64) (J *mat.Dense, err error) {
	if len(fx) == 0 || len(x) == 0 {
		err = fmt.Errorf("empty jacobian, len(x) = %d, len(F(x)) = %d", len(x), len(fx))
		return
	}
	J = mat.NewDense(len(fx), len(x), nil)
	fd.Jacobian(J, F, x, &fd.JacobianSettings{
		Formula:     fd.Forward,
		Step:        step,
		OriginValue: fx,
	})
	return
}
