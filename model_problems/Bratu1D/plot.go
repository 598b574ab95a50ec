package Bratu1D

import (
	"fmt"
	"image/color"
	"math"
	"math/cmplx"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/notargets/avs/chart2d"
	utils2 "github.com/notargets/avs/utils"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/notargets/gaptooth/utils"
)

var (
	colorSolution  = color.RGBA{R: 31, G: 119, B: 180, A: 255} // blue
	colorReference = color.RGBA{R: 255, G: 127, B: 14, A: 255} // orange
	colorArnoldi   = color.RGBA{R: 44, G: 160, B: 44, A: 255}  // green
)

// LiveChart redraws every tooth of the state in an avs window as the evolution proceeds
type LiveChart struct {
	chart    *chart2d.Chart2D
	colorMap *utils2.ColorMap
	X        utils.Matrix
	Every    int // Redraw interval in patch steps
}

func NewLiveChart(X utils.Matrix, fmin, fmax float32, every int) (lc *LiveChart) {
	lc = &LiveChart{
		X:     X,
		Every: every,
	}
	if lc.Every < 1 {
		lc.Every = 1
	}
	lc.chart = chart2d.NewChart2D(1920, 1280, float32(X.Min()), float32(X.Max()), fmin, fmax)
	lc.colorMap = utils2.NewColorMap(-1, 1, 1)
	go lc.chart.Plot()
	return
}

// Observer returns the per patch step callback for Evolve
func (lc *LiveChart) Observer() Observer {
	return func(patchStep int, time float64, U utils.Matrix) {
		if patchStep%lc.Every != 0 {
			return
		}
		nTeeth, _ := U.Dims()
		for k := 0; k < nTeeth; k++ {
			if err := lc.chart.AddSeries(fmt.Sprintf("Tooth %d", k), lc.X.RawRow(k), U.RawRow(k),
				chart2d.NoGlyph, chart2d.Solid, lc.colorMap.GetRGB(-0.7)); err != nil {
				panic("unable to add graph series")
			}
		}
	}
}

func toothLine(x, u []float64, c color.Color, dashed bool) (l *plotter.Line, err error) {
	pts := make(plotter.XYs, len(x))
	for j := range x {
		pts[j].X, pts[j].Y = x[j], u[j]
	}
	if l, err = plotter.NewLine(pts); err != nil {
		return
	}
	l.Color = c
	l.Width = vg.Points(1.5)
	if dashed {
		l.Dashes = []vg.Length{vg.Points(5), vg.Points(3)}
	}
	return
}

// PlotPatches saves every tooth of u as its own line segment, with an optional reference
// state of the same shape drawn underneath
func PlotPatches(filename, title string, x, u, ref [][]float64, label, refLabel string) (err error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "u"
	if ref != nil {
		if len(ref) != len(x) {
			return fmt.Errorf("reference has %d teeth, state has %d", len(ref), len(x))
		}
		for k := range ref {
			var l *plotter.Line
			if l, err = toothLine(x[k], ref[k], colorReference, false); err != nil {
				return
			}
			p.Add(l)
			if k == 0 {
				p.Legend.Add(refLabel, l)
			}
		}
	}
	for k := range u {
		var l *plotter.Line
		if l, err = toothLine(x[k], u[k], colorSolution, ref != nil); err != nil {
			return
		}
		p.Add(l)
		if k == 0 {
			p.Legend.Add(label, l)
		}
	}
	p.Legend.Top = true
	return p.Save(8*vg.Inch, 5*vg.Inch, filename)
}

// EigenSeries is one set of eigenvalues drawn as (1 - Re, Im + Offset)
type EigenSeries struct {
	Label  string
	Values []complex128
	Offset float64
	Color  color.Color
	Hollow bool
}

func PlotEigenvalues(filename, title string, series ...EigenSeries) (err error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Real Part"
	p.Y.Label.Text = "Imaginary Part"
	for _, s := range series {
		if len(s.Values) == 0 {
			continue
		}
		pts := make(plotter.XYs, len(s.Values))
		for i, v := range s.Values {
			pts[i].X, pts[i].Y = 1-real(v), imag(v)+s.Offset
		}
		var sc *plotter.Scatter
		if sc, err = plotter.NewScatter(pts); err != nil {
			return
		}
		sc.GlyphStyle.Color = s.Color
		sc.GlyphStyle.Radius = vg.Points(3)
		if s.Hollow {
			sc.GlyphStyle.Shape = draw.RingGlyph{}
		} else {
			sc.GlyphStyle.Shape = draw.CircleGlyph{}
		}
		p.Add(sc)
		p.Legend.Add(s.Label, sc)
	}
	p.Y.Min, p.Y.Max = -0.4, 0.4
	p.Legend.Top = true
	return p.Save(8*vg.Inch, 5*vg.Inch, filename)
}

// ResidualGraph renders the Newton residual history as log10 |F| in the terminal
func ResidualGraph(residuals []float64) string {
	if len(residuals) < 2 {
		return ""
	}
	data := make([]float64, len(residuals))
	for i, r := range residuals {
		data[i] = math.Log10(math.Max(r, 1.e-300))
	}
	return asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(60),
		asciigraph.Caption("log10 |F(x)| per Newton iteration"))
}

// FormatEigenvalues lists eigenvalues one per line, smallest magnitude first as given
func FormatEigenvalues(values []complex128) string {
	var b strings.Builder
	for i, v := range values {
		fmt.Fprintf(&b, "%3d: %+.10f %+.10fi  |%.3e|\n", i, real(v), imag(v), cmplx.Abs(v))
	}
	return b.String()
}
