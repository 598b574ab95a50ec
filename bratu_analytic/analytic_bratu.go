package bratu_analytic

import (
	"fmt"
	"math"
)

/*
Steady states of u_xx + λ exp(u) = 0 on [0, 1] with u(0) = u(1) = 0:

	u(x) = -2 ln( cosh((x - 1/2) θ/2) / cosh(θ/4) ),    θ = sqrt(2λ) cosh(θ/4)

Two branches exist for 0 < λ < λc = 3.513830719..., they meet at θc = 4.798714561...
*/

const (
	LambdaCritical = 3.513830719125161
	ThetaCritical  = 4.798714561030935
)

type Branch uint8

const (
	Lower Branch = iota
	Upper
)

// Theta solves the transcendental equation of the requested branch
func Theta(lambda float64, branch Branch) (theta float64, err error) {
	switch {
	case lambda == 0 && branch == Lower:
		return 0, nil
	case lambda <= 0 || lambda > LambdaCritical:
		err = fmt.Errorf("no steady state for lambda = %v, need 0 < lambda <= %v", lambda, LambdaCritical)
		return
	}
	f := func(th float64) float64 { return th - math.Sqrt(2*lambda)*math.Cosh(th/4) }
	df := func(th float64) float64 { return 1 - math.Sqrt(2*lambda)*math.Sinh(th/4)/4 }
	start := 0.5 * ThetaCritical
	if branch == Upper {
		start = 2 * ThetaCritical
	}
	if theta, err = fzero(f, df, start); err != nil {
		return
	}
	// Newton can slide to the other branch near the fold
	if (branch == Lower && theta > ThetaCritical) || (branch == Upper && theta < ThetaCritical) {
		err = fmt.Errorf("lambda = %v is too close to the fold to separate the branches", lambda)
	}
	return
}

// SteadyState returns the solution profile of the requested branch
func SteadyState(lambda float64, branch Branch) (u func(x float64) float64, err error) {
	var theta float64
	if theta, err = Theta(lambda, branch); err != nil {
		return
	}
	c := math.Cosh(theta / 4)
	u = func(x float64) float64 {
		return -2 * math.Log(math.Cosh((x-0.5)*theta/2)/c)
	}
	return
}

func fzero(f, df func(x float64) float64, start float64) (x float64, err error) {
	var (
		tol = 1.e-14
	)
	x = start
	for i := 0; i < 100; i++ {
		res := f(x)
		if math.Abs(res) <= tol*math.Max(1, math.Abs(x)) {
			return
		}
		x -= res / df(x)
	}
	err = fmt.Errorf("root finding did not converge from %v, last iterate %v", start, x)
	return
}
