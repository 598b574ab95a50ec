package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

type DOK struct {
	M        *sparse.DOK
	readOnly bool
	name     string
}

func NewDOK(nr, nc int) (R DOK) {
	R = DOK{
		sparse.NewDOK(nr, nc),
		false,
		"unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m DOK) Dims() (r, c int)    { return m.M.Dims() }
func (m DOK) At(i, j int) float64 { return m.M.At(i, j) }
func (m DOK) T() mat.Matrix       { return m.M.T() }

func (m DOK) Set(i, j int, val float64) DOK { // Changes receiver
	m.checkWritable()
	m.M.Set(i, j, val)
	return m
}

func (m *DOK) SetReadOnly(name ...string) DOK {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
	return *m
}

func (m DOK) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}

func (m DOK) ToCSR() CSR {
	return CSR{
		M:    m.M.ToCSR(),
		name: m.name,
	}
}

// CSR is read only once assembled
type CSR struct {
	M    *sparse.CSR
	name string
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m CSR) Dims() (r, c int)    { return m.M.Dims() }
func (m CSR) At(i, j int) float64 { return m.M.At(i, j) }
func (m CSR) T() mat.Matrix       { return m.M.T() }

// MulRowsTo applies the operator to every row of B at once: dst = B * A^T,
// where A is the receiver. Each row of B is a separate state vector.
func (m CSR) MulRowsTo(dst, B Matrix) {
	var (
		nrA, ncA = m.Dims()
		nrB, ncB = B.Dims()
		nrD, ncD = dst.Dims()
	)
	if ncB != ncA || nrD != nrB || ncD != nrA {
		err := fmt.Errorf("dimension mismatch: [%vx%v] * [%vx%v]^T -> [%vx%v]",
			nrB, ncB, nrA, ncA, nrD, ncD)
		panic(err)
	}
	dst.checkWritable()
	var (
		dataD = dst.Data()
		dataB = B.Data()
	)
	for i := range dataD {
		dataD[i] = 0
	}
	m.M.DoNonZero(func(i, j int, v float64) {
		for k := 0; k < nrB; k++ {
			dataD[k*ncD+i] += v * dataB[k*ncB+j]
		}
	})
}
