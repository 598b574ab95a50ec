package Bratu1D

import (
	"fmt"
	"math"

	"github.com/notargets/gaptooth/GapTooth"
	"github.com/notargets/gaptooth/RBF"
	"gonum.org/v1/gonum/floats"
)

// Psi is the residual of the coarse time-stepper over the horizon Schedule.T:
//
//	psi(u) = u - Evolve(u)
//
// its roots are steady states of the gap-tooth scheme. The state is the flat
// concatenation of all teeth. Psi counts its evaluations and is not safe for
// concurrent use.
type Psi struct {
	Geometry *GapTooth.Geometry
	Schedule GapTooth.Schedule
	Params   Params
	Builder  *RBF.Builder
	Verbose  bool

	count   int
	lastErr error
}

func NewPsi(g *GapTooth.Geometry, sch GapTooth.Schedule, p Params, b *RBF.Builder) *Psi {
	return &Psi{
		Geometry: g,
		Schedule: sch,
		Params:   p,
		Builder:  b,
	}
}

// Count is the number of evaluations so far
func (ps *Psi) Count() int { return ps.count }

// Err is the error of the most recent failed evaluation through F
func (ps *Psi) Err() error { return ps.lastErr }

func (ps *Psi) Eval(dst, u []float64) (err error) {
	ps.count++
	if ps.Verbose {
		fmt.Printf("Evaluation %d\n", ps.count)
	}
	var (
		g = ps.Geometry
	)
	if len(u) != g.Size() || len(dst) != len(u) {
		return fmt.Errorf("psi expects vectors of length %d, have %d and %d", g.Size(), len(u), len(dst))
	}
	var u0Patch, uPatch [][]float64
	if u0Patch, err = GapTooth.ToPatch(u, g.NTeeth); err != nil {
		return
	}
	opts := []Option{}
	if ps.Builder != nil {
		opts = append(opts, WithBuilder(ps.Builder))
	}
	if uPatch, err = Evolve(u0Patch, g.Coordinates(), g.Dx, ps.Schedule, ps.Params, opts...); err != nil {
		return
	}
	var uNew []float64
	if uNew, err = GapTooth.ToFlat(uPatch); err != nil {
		return
	}
	floats.SubTo(dst, u, uNew)
	return
}

// F has the func(dst, x) shape the outer solvers consume, a failed evaluation fills dst
// with NaN and is reported by Err
func (ps *Psi) F(dst, u []float64) {
	if err := ps.Eval(dst, u); err != nil {
		ps.lastErr = err
		for i := range dst {
			dst[i] = math.NaN()
		}
	}
}
