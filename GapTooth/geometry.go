package GapTooth

import (
	"fmt"

	"github.com/notargets/gaptooth/utils"
)

/*
Geometry lays out NTeeth patches ("teeth") on a uniform global grid over [XMin, XMax].
Each tooth owns NPointsPerTooth consecutive grid points, consecutive teeth are separated
by NPointsPerGap unsimulated points:

	tooth 0        gap        tooth 1        gap    ...    tooth NTeeth-1
	x x x x x  . . . . . .  x x x x x  . . . . . .        x x x x x

The first point of tooth 0 is XMin and the last point of the last tooth is XMax.
*/
type Geometry struct {
	NTeeth, NPointsPerTooth, NPointsPerGap int
	N                                      int     // Total number of global grid points, teeth and gaps
	Dx                                     float64 // Uniform spacing of the global grid
	XGlobal                                utils.Vector
	X                                      utils.Matrix // X[k, j] = coordinate of point j in tooth k
	ToothIndex                             []utils.Index
}

// NewGeometry builds the tooth layout with NPointsPerGap = gapRatio*(nPointsPerTooth-1) - 1
func NewGeometry(nTeeth, nPointsPerTooth, gapRatio int) (g *Geometry, err error) {
	if gapRatio < 1 {
		err = fmt.Errorf("gap over tooth size ratio must be at least 1, have %d", gapRatio)
		return
	}
	return NewGeometryWithGap(nTeeth, nPointsPerTooth, gapRatio*(nPointsPerTooth-1)-1, 0, 1)
}

func NewGeometryWithGap(nTeeth, nPointsPerTooth, nPointsPerGap int, xMin, xMax float64) (g *Geometry, err error) {
	switch {
	case nTeeth < 1:
		err = fmt.Errorf("need at least one tooth, have %d", nTeeth)
	case nPointsPerTooth < 3:
		err = fmt.Errorf("a tooth needs at least 3 points to carry boundary conditions, have %d", nPointsPerTooth)
	case nPointsPerGap < 0:
		err = fmt.Errorf("negative gap size %d", nPointsPerGap)
	case xMax <= xMin:
		err = fmt.Errorf("empty domain [%v, %v]", xMin, xMax)
	}
	if err != nil {
		return
	}
	g = &Geometry{
		NTeeth:          nTeeth,
		NPointsPerTooth: nPointsPerTooth,
		NPointsPerGap:   nPointsPerGap,
		N:               nTeeth*nPointsPerTooth + (nTeeth-1)*nPointsPerGap,
	}
	g.Dx = (xMax - xMin) / float64(g.N-1)
	g.XGlobal = utils.NewVector(g.N).Linspace(xMin, xMax)
	g.X = utils.NewMatrix(nTeeth, nPointsPerTooth)
	g.ToothIndex = make([]utils.Index, nTeeth)
	xg := g.XGlobal.Data()
	for k := 0; k < nTeeth; k++ {
		start := k * (nPointsPerGap + nPointsPerTooth)
		g.ToothIndex[k] = utils.NewRange(start, start+nPointsPerTooth-1)
		copy(g.X.RawRow(k), g.ToothIndex[k].Gather(xg))
	}
	g.X.SetReadOnly("X")
	return
}

// Coordinates returns the per tooth coordinate grids as a list of patches
func (g *Geometry) Coordinates() [][]float64 {
	return g.X.Rows()
}

// Restrict samples a global field onto the teeth
func (g *Geometry) Restrict(uGlobal []float64) (uPatch [][]float64, err error) {
	if len(uGlobal) != g.N {
		err = fmt.Errorf("global field has %d points, geometry has %d", len(uGlobal), g.N)
		return
	}
	uPatch = make([][]float64, g.NTeeth)
	for k, I := range g.ToothIndex {
		uPatch[k] = I.Gather(uGlobal)
	}
	return
}

// Lift evaluates f at every tooth coordinate
func (g *Geometry) Lift(f func(x float64) float64) (uPatch [][]float64) {
	uPatch = g.X.Rows()
	for _, row := range uPatch {
		for j, x := range row {
			row[j] = f(x)
		}
	}
	return
}

// Size is the length of the flat state vector seen by the outer solvers
func (g *Geometry) Size() int {
	return g.NTeeth * g.NPointsPerTooth
}

func (g *Geometry) Print() {
	fmt.Printf("Teeth = %d, Points per tooth = %d, Points per gap = %d\n",
		g.NTeeth, g.NPointsPerTooth, g.NPointsPerGap)
	fmt.Printf("Global points N = %d, dx = %10.6e\n", g.N, g.Dx)
}
