package readfiles

import (
	"fmt"
	"io"
	"os"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gaptooth/utils"
)

/*
Reference datasets are NumPy .npy files:
  - patch states, 2D [n_teeth, n_tooth] or flat [n_teeth*n_tooth]
  - eigenvalues, complex128 vectors
*/

// Shape returns the array shape recorded in the header of a .npy file
func Shape(filename string) (shape []int, err error) {
	var file *os.File
	if file, err = os.Open(filename); err != nil {
		return
	}
	defer file.Close()
	var r *npyio.Reader
	if r, err = npyio.NewReader(file); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	shape = append(shape, r.Header.Descr.Shape...)
	return
}

// ReadPatches reads a patch state into nTeeth rows, accepting either the 2D layout or
// the flat vector layout of the same data
func ReadPatches(filename string, nTeeth int, verbose bool) (U utils.Matrix, err error) {
	if verbose {
		fmt.Printf("Reading NumPy file named: %s\n", filename)
	}
	var file *os.File
	if file, err = os.Open(filename); err != nil {
		return
	}
	defer file.Close()
	return readPatches(file, nTeeth)
}

func readPatches(rd io.Reader, nTeeth int) (U utils.Matrix, err error) {
	var r *npyio.Reader
	if r, err = npyio.NewReader(rd); err != nil {
		return
	}
	var (
		shape = r.Header.Descr.Shape
		data  []float64
	)
	switch len(shape) {
	case 1, 2:
	default:
		err = fmt.Errorf("expected a 1D or 2D array, have shape %v", shape)
		return
	}
	if err = r.Read(&data); err != nil {
		return
	}
	if len(shape) == 2 && shape[0] != nTeeth {
		err = fmt.Errorf("array has %d rows, expected %d teeth", shape[0], nTeeth)
		return
	}
	if nTeeth < 1 || len(data)%nTeeth != 0 {
		err = fmt.Errorf("cannot split %d values into %d teeth", len(data), nTeeth)
		return
	}
	if r.Header.Descr.Fortran && len(shape) == 2 {
		// Column major storage, transpose into rows
		D := mat.NewDense(shape[1], shape[0], data)
		U = utils.NewMatrix(shape[0], shape[1])
		U.M.Copy(D.T())
		return
	}
	U = utils.NewMatrix(nTeeth, len(data)/nTeeth, data)
	return
}

func ReadComplex(filename string, verbose bool) (values []complex128, err error) {
	if verbose {
		fmt.Printf("Reading NumPy file named: %s\n", filename)
	}
	var file *os.File
	if file, err = os.Open(filename); err != nil {
		return
	}
	defer file.Close()
	err = npyio.Read(file, &values)
	return
}

// WritePatches stores the patch state in the 2D [n_teeth, n_tooth] layout
func WritePatches(filename string, U utils.Matrix) (err error) {
	var file *os.File
	if file, err = os.Create(filename); err != nil {
		return
	}
	if err = npyio.Write(file, U.M); err != nil {
		file.Close()
		return
	}
	return file.Close()
}

// WriteFlat stores a flat state vector
func WriteFlat(filename string, u []float64) (err error) {
	var file *os.File
	if file, err = os.Create(filename); err != nil {
		return
	}
	if err = npyio.Write(file, u); err != nil {
		file.Close()
		return
	}
	return file.Close()
}

func WriteComplex(filename string, values []complex128) (err error) {
	var file *os.File
	if file, err = os.Create(filename); err != nil {
		return
	}
	if err = npyio.Write(file, values); err != nil {
		file.Close()
		return
	}
	return file.Close()
}
