package utils

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

type Matrix struct {
	M        *mat.Dense
	readOnly bool
	name     string
}

func NewMatrix(nr, nc int, dataO ...[]float64) (R Matrix) {
	var m *mat.Dense
	if len(dataO) != 0 {
		if len(dataO[0]) != nr*nc {
			err := fmt.Errorf("mismatch in allocation: NewMatrix nr,nc = %v,%v, len(data[0]) = %v\n", nr, nc, len(dataO[0]))
			panic(err)
		}
		m = mat.NewDense(nr, nc, dataO[0])
	} else {
		m = mat.NewDense(nr, nc, make([]float64, nr*nc))
	}
	R = Matrix{
		m,
		false,
		"unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

// NewMatrixFromRows stacks equal length rows into a dense matrix, row k of the
// result is a copy of rows[k].
func NewMatrixFromRows(rows [][]float64) (R Matrix, err error) {
	if len(rows) == 0 {
		err = fmt.Errorf("no rows to stack")
		return
	}
	nc := len(rows[0])
	data := make([]float64, 0, len(rows)*nc)
	for k, row := range rows {
		if len(row) != nc {
			err = fmt.Errorf("row %d has length %d, expected %d", k, len(row), nc)
			return
		}
		data = append(data, row...)
	}
	R = NewMatrix(len(rows), nc, data)
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m Matrix) Dims() (r, c int)    { return m.M.Dims() }
func (m Matrix) At(i, j int) float64 { return m.M.At(i, j) }
func (m Matrix) T() mat.Matrix       { return m.M.T() }
func (m Matrix) Data() []float64     { return m.M.RawMatrix().Data }

// Chainable methods (extended)
func (m *Matrix) SetReadOnly(name ...string) Matrix {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
	return *m
}

func (m Matrix) CopyFrom(A Matrix) Matrix { // Changes receiver
	var (
		nr, nc = m.Dims()
		na, ma = A.Dims()
	)
	if nr != na || nc != ma {
		err := fmt.Errorf("dimension mismatch in CopyFrom: %vx%v <- %vx%v", nr, nc, na, ma)
		panic(err)
	}
	m.checkWritable()
	copy(m.Data(), A.Data())
	return m
}

// RawRow returns a view of row i, writes through the view change the receiver
func (m Matrix) RawRow(i int) []float64 {
	var (
		nr, _ = m.Dims()
	)
	return m.M.RawRowView(lim(i, nr))
}

func (m Matrix) Rows() (rows [][]float64) { // Does not change receiver
	var (
		nr, nc = m.Dims()
	)
	rows = make([][]float64, nr)
	for i := range rows {
		rows[i] = make([]float64, nc)
		copy(rows[i], m.M.RawRowView(i))
	}
	return
}

func (m Matrix) Set(i, j int, val float64) Matrix { // Changes receiver
	var (
		nr, nc = m.Dims()
	)
	i, j = lim(i, nr), lim(j, nc)
	m.checkWritable()
	m.M.Set(i, j, val)
	return m
}

func (m Matrix) Min() (min float64) {
	var (
		data = m.M.RawMatrix().Data
	)
	min = data[0]
	for _, val := range data {
		if val < min {
			min = val
		}
	}
	return
}

func (m Matrix) Max() (max float64) {
	var (
		data = m.M.RawMatrix().Data
	)
	max = data[0]
	for _, val := range data {
		if val > max {
			max = val
		}
	}
	return
}

func (m Matrix) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}

func lim(i, imax int) int {
	if i < 0 {
		return imax + i // Support indexing from end, -1 is imax
	}
	return i
}
